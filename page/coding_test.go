package page

import (
	"testing"

	"pgregory.net/rapid"
)

func TestVarintRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		v := rapid.Uint64().Draw(t, "v")

		buf := PutVarint64(nil, v)
		if len(buf) != VarintLength(v) {
			t.Fatalf("VarintLength(%d) = %d, but encoding took %d bytes", v, VarintLength(v), len(buf))
		}

		got, n, ok := GetVarint64(buf)
		if !ok {
			t.Fatalf("GetVarint64 failed to decode %v", buf)
		}
		if n != len(buf) {
			t.Fatalf("GetVarint64 consumed %d bytes, want %d", n, len(buf))
		}
		if got != v {
			t.Fatalf("round trip mismatch: put %d, got %d", v, got)
		}
	})
}

func TestVarint32RoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		v := rapid.Uint32().Draw(t, "v")

		buf := PutVarint32(nil, v)
		got, n, ok := GetVarint32(buf)
		if !ok || n != len(buf) || got != v {
			t.Fatalf("round trip mismatch for %d: got=%d n=%d ok=%v", v, got, n, ok)
		}
	})
}

func TestGetVarintTruncated(t *testing.T) {
	// A continuation byte with nothing after it must fail, not panic.
	if _, _, ok := GetVarint32([]byte{0x80}); ok {
		t.Fatal("expected truncated varint to fail decoding")
	}
	if _, _, ok := GetVarint32(nil); ok {
		t.Fatal("expected empty input to fail decoding")
	}
}

func TestFixed32RoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		v := rapid.Uint32().Draw(t, "v")
		buf := PutFixed32LE(nil, v)
		if DecodeFixed32LE(buf) != v {
			t.Fatalf("fixed32 round trip mismatch for %d", v)
		}
	})
}
