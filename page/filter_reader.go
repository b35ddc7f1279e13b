package page

// FilterReader probes a finished filter page with a data-file offset and a
// key. It stores byte offsets into the borrowed page slice rather than raw
// pointers, and bounds-checks every access — the cost is negligible since a
// probe does at most two 4-byte reads plus one FilterPolicy call.
type FilterReader struct {
	policy FilterPolicy

	data        []byte // filter bitmaps, offset 0 = start of first filter
	offsetArray []byte // the offset array itself, length 4*(num+1)
	num         int
	baseLg      uint
}

// NewFilterReader parses the payload of a filter page. A payload shorter
// than 5 bytes is treated as empty: every KeyMayMatch call on it returns
// true (conservative "maybe").
func NewFilterReader(policy FilterPolicy, pageData []byte) *FilterReader {
	contents := payload(pageData)
	n := len(contents)
	if n < 5 {
		return &FilterReader{policy: policy}
	}

	baseLg := uint(contents[n-1])
	arrayOffset := DecodeFixed32LE(contents[n-5:])
	if int(arrayOffset) > n-5 {
		return &FilterReader{policy: policy}
	}

	data := contents[:arrayOffset]
	// offsetArray spans the num real per-filter offsets plus the array_offset
	// word itself, which sits immediately after them in the buffer and
	// doubles as the implicit filter_offsets[num] sentinel (the limit of the
	// last filter). n-1 is the byte just past that word (n-1 is base_lg).
	offsetArray := contents[arrayOffset : n-1]
	num := len(offsetArray)/4 - 1

	return &FilterReader{
		policy:      policy,
		data:        data,
		offsetArray: offsetArray,
		num:         num,
		baseLg:      baseLg,
	}
}

// KeyMayMatch reports whether key might be present in the data page that
// starts at data-file offset blockOffset. A false positive is allowed; a
// false negative is not.
func (r *FilterReader) KeyMayMatch(blockOffset uint64, key []byte) bool {
	index := blockOffset >> r.baseLg
	if index >= uint64(r.num) {
		return true // conservative: out of range, assume maybe
	}

	start := DecodeFixed32LE(r.offsetArray[index*4:])
	limit := DecodeFixed32LE(r.offsetArray[index*4+4:])
	if start > limit || limit > uint32(len(r.data)) {
		return true // conservative: malformed offsets, assume maybe
	}
	if start == limit {
		return false // empty filters match nothing
	}

	return r.policy.KeyMayMatch(key, r.data[start:limit])
}
