package page

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/arjun-iyer/flashpage/bloomfilter"
	"pgregory.net/rapid"
)

// stubPolicy is a deterministic, allocation-free FilterPolicy used to test
// the filter page format itself without depending on a real Bloom filter's
// probabilistic behavior. It "stores" the exact key set in the filter bytes
// (each key length-prefixed, in the order given) and matches only keys it
// was given — i.e. it is exact, which still satisfies FilterPolicy's
// no-false-negative contract trivially and lets the tests in this file
// assert precise bounds.
type stubPolicy struct{}

func (stubPolicy) Name() string { return "test.stubPolicy" }

func (stubPolicy) CreateFilter(keys [][]byte, buf []byte) []byte {
	for _, k := range keys {
		buf = PutLengthPrefixed(buf, k)
	}
	return buf
}

func (stubPolicy) KeyMayMatch(key []byte, filter []byte) bool {
	for len(filter) > 0 {
		n, sz, ok := GetVarint32(filter)
		if !ok {
			return true // malformed filter: conservative
		}
		filter = filter[sz:]
		stored := filter[:n]
		filter = filter[n:]
		if string(stored) == string(key) {
			return true
		}
	}
	return false
}

func TestFilterPageBasic(t *testing.T) {
	builder := NewFilterBuilder(stubPolicy{})

	builder.StartBlock(0)
	builder.AddKey([]byte("apple"))
	builder.AddKey([]byte("banana"))

	builder.StartBlock(3000) // crosses into filter index 1 (3000 >> 11 == 1)
	builder.AddKey([]byte("cherry"))

	data := builder.Finish()
	if !CheckCRC32C(data) {
		t.Fatal("CRC check failed")
	}
	if PageType(data) != FilterPage {
		t.Fatalf("page type = %v, want FilterPage", PageType(data))
	}

	reader := NewFilterReader(stubPolicy{}, data)

	if !reader.KeyMayMatch(0, []byte("apple")) {
		t.Fatal("expected apple to match at offset 0")
	}
	if !reader.KeyMayMatch(500, []byte("banana")) {
		t.Fatal("expected banana to match within the same 2KB block as offset 0")
	}
	if !reader.KeyMayMatch(3000, []byte("cherry")) {
		t.Fatal("expected cherry to match at offset 3000")
	}
	if reader.KeyMayMatch(0, []byte("cherry")) {
		t.Fatal("cherry was only added to block 1, should not match block 0")
	}
	// Far beyond any filter we generated: conservative "maybe".
	if !reader.KeyMayMatch(1<<20, []byte("anything")) {
		t.Fatal("out-of-range block offset should conservatively match")
	}
}

func TestFilterPageEmptyPayloadIsConservative(t *testing.T) {
	reader := NewFilterReader(stubPolicy{}, appendTrailer(nil, FilterPage))
	if !reader.KeyMayMatch(0, []byte("anything")) {
		t.Fatal("empty filter payload must conservatively match everything")
	}
}

func TestFilterPageEmptyBlockDoesNotMatch(t *testing.T) {
	builder := NewFilterBuilder(stubPolicy{})
	builder.StartBlock(0) // no keys added for this block
	builder.StartBlock(2048)
	builder.AddKey([]byte("only-in-block-1"))
	data := builder.Finish()

	reader := NewFilterReader(stubPolicy{}, data)
	if reader.KeyMayMatch(0, []byte("only-in-block-1")) {
		t.Fatal("block 0 had no keys and must not match")
	}
	if !reader.KeyMayMatch(2048, []byte("only-in-block-1")) {
		t.Fatal("block 1 should match its own key")
	}
}

// TestFilterPageBloomScenario is concrete scenario #5: 1000 keys spread
// across multiple 2048-byte blocks, every inserted key matches its own
// block, and the false-positive rate on random non-inserted keys is bounded.
func TestFilterPageBloomScenario(t *testing.T) {
	policy := bloomfilter.New(0.01)
	builder := NewFilterBuilder(policy)

	rng := rand.New(rand.NewSource(1))
	const numKeys = 1000
	const blockSize = 2048

	inserted := make(map[string]uint64, numKeys)
	currentBlock := uint64(0)
	builder.StartBlock(currentBlock)

	for i := 0; i < numKeys; i++ {
		if rng.Intn(4) == 0 {
			currentBlock += blockSize
			builder.StartBlock(currentBlock)
		}
		key := []byte(fmt.Sprintf("key-%06d", i))
		builder.AddKey(key)
		inserted[string(key)] = currentBlock
	}

	data := builder.Finish()
	reader := NewFilterReader(policy, data)

	for key, block := range inserted {
		if !reader.KeyMayMatch(block, []byte(key)) {
			t.Fatalf("false negative for inserted key %q at block %d", key, block)
		}
	}

	falsePositives := 0
	const numProbes = 1000
	for i := 0; i < numProbes; i++ {
		key := []byte(fmt.Sprintf("absent-%08d", rng.Int()))
		if reader.KeyMayMatch(0, key) {
			falsePositives++
		}
	}
	// Generous bound: a handful of multiplied block false-positive rates
	// should stay well under 20%.
	if falsePositives > numProbes/5 {
		t.Fatalf("false positive rate too high: %d/%d", falsePositives, numProbes)
	}
}

// TestFilterPageNoFalseNegativeProperty is P6: every key added to filter
// index i at a block offset whose (offset >> 11) == i must match.
func TestFilterPageNoFalseNegativeProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		numBlocks := rapid.IntRange(1, 5).Draw(t, "numBlocks")
		builder := NewFilterBuilder(stubPolicy{})

		type insertion struct {
			block uint64
			key   []byte
		}
		var all []insertion

		for b := 0; b < numBlocks; b++ {
			block := uint64(b) << filterBaseLg
			builder.StartBlock(block)
			numKeys := rapid.IntRange(0, 5).Draw(t, fmt.Sprintf("numKeys%d", b))
			for i := 0; i < numKeys; i++ {
				key := []byte(rapid.StringN(1, 10, -1).Draw(t, fmt.Sprintf("key%d_%d", b, i)))
				builder.AddKey(key)
				all = append(all, insertion{block: block, key: key})
			}
		}

		data := builder.Finish()
		reader := NewFilterReader(stubPolicy{}, data)

		for _, ins := range all {
			if !reader.KeyMayMatch(ins.block, ins.key) {
				t.Fatalf("false negative: key %q inserted at block %d", ins.key, ins.block)
			}
		}
	})
}

// TestFilterPageBoundsProperty is P7: any block offset whose filter index is
// out of range returns a conservative "maybe".
func TestFilterPageBoundsProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		numBlocks := rapid.IntRange(0, 4).Draw(t, "numBlocks")
		builder := NewFilterBuilder(stubPolicy{})
		for b := 0; b < numBlocks; b++ {
			builder.StartBlock(uint64(b) << filterBaseLg)
		}
		data := builder.Finish()
		reader := NewFilterReader(stubPolicy{}, data)

		outOfRangeBlock := uint64(numBlocks+1) << filterBaseLg
		if !reader.KeyMayMatch(outOfRangeBlock, []byte("anything")) {
			t.Fatalf("out-of-range block %d should conservatively match", outOfRangeBlock)
		}
	})
}
