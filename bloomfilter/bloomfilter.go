// Package bloomfilter implements page.FilterPolicy with a real Bloom
// filter (github.com/bits-and-blooms/bloom/v3, backed by
// github.com/bits-and-blooms/bitset). Each call to CreateFilter builds one
// bloom.BloomFilter sized for the key set it is given and serializes it
// with the library's own WriteTo wire format; KeyMayMatch reconstructs it
// with ReadFrom and probes with Test.
package bloomfilter

import (
	"bytes"

	"github.com/bits-and-blooms/bloom/v3"
)

// DefaultFalsePositiveRate is the rate used if none is given: 1%.
const DefaultFalsePositiveRate = 0.01

// Policy is a page.FilterPolicy backed by github.com/bits-and-blooms/bloom.
type Policy struct {
	falsePositiveRate float64
}

// New creates a Policy targeting the given false-positive rate. A
// non-positive rate falls back to DefaultFalsePositiveRate.
func New(falsePositiveRate float64) *Policy {
	if falsePositiveRate <= 0 {
		falsePositiveRate = DefaultFalsePositiveRate
	}
	return &Policy{falsePositiveRate: falsePositiveRate}
}

// Name identifies the policy for pages built with it.
func (p *Policy) Name() string { return "flashpage.bloomfilter.Policy" }

// CreateFilter builds a Bloom filter sized for keys and appends its
// serialized form to buf. An empty key set still appends nothing (the
// filter page builder records a zero-length filter in that case so its
// offset array stays aligned).
func (p *Policy) CreateFilter(keys [][]byte, buf []byte) []byte {
	if len(keys) == 0 {
		return buf
	}

	f := bloom.NewWithEstimates(uint(len(keys)), p.falsePositiveRate)
	for _, k := range keys {
		f.Add(k)
	}

	var out bytes.Buffer
	if _, err := f.WriteTo(&out); err != nil {
		// WriteTo over a bytes.Buffer cannot fail; guard anyway rather than
		// silently dropping the filter.
		panic("bloomfilter: unexpected WriteTo error: " + err.Error())
	}
	return append(buf, out.Bytes()...)
}

// KeyMayMatch reconstructs the Bloom filter from filter and tests key
// against it. A malformed filter is treated as a conservative "maybe".
func (p *Policy) KeyMayMatch(key []byte, filter []byte) bool {
	if len(filter) == 0 {
		return false
	}

	f := &bloom.BloomFilter{}
	if _, err := f.ReadFrom(bytes.NewReader(filter)); err != nil {
		return true
	}
	return f.Test(key)
}
