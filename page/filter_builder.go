package page

// FilterBuilder constructs a single filter page spanning an entire table:
// one filter bitmap per 2^filterBaseLg (2048) bytes of data-file offset space.
// The sequence of calls must match (StartBlock AddKey*)* Finish, mirroring
// the write pattern of the data page builder one layer up: the caller
// tells the filter builder where each data page starts in the table, adds
// the keys written to that page, and the builder lazily materializes one
// filter per covered offset range.
type FilterBuilder struct {
	policy FilterPolicy

	buf []byte

	keys      []byte   // flattened key bytes for the filter currently accumulating
	keyStarts []int    // start index into keys of each pending key
	offsets   []uint32 // filterOffsets[i] = byte offset in buf where filter i starts
	finished  bool
}

// NewFilterBuilder creates an empty filter page builder driven by policy.
func NewFilterBuilder(policy FilterPolicy) *FilterBuilder {
	return &FilterBuilder{policy: policy}
}

// StartBlock is called each time the enclosing table writer starts a new
// data page at data-file offset blockOffset. It flushes the Bloom filter
// for any data pages between the previous call and this one that have not
// yet been generated (including empty ones, so filterOffsets stays aligned
// with filter index).
func (b *FilterBuilder) StartBlock(blockOffset uint64) {
	filterIndex := blockOffset >> filterBaseLg
	for filterIndex > uint64(len(b.offsets)) {
		b.generateFilter()
	}
}

// AddKey records a key written to the data page the most recent StartBlock
// began.
func (b *FilterBuilder) AddKey(key []byte) {
	b.keyStarts = append(b.keyStarts, len(b.keys))
	b.keys = append(b.keys, key...)
}

func (b *FilterBuilder) generateFilter() {
	numKeys := len(b.keyStarts)
	if numKeys == 0 {
		b.offsets = append(b.offsets, uint32(len(b.buf)))
		return
	}

	keys := make([][]byte, numKeys)
	ends := append(b.keyStarts, len(b.keys))
	for i := 0; i < numKeys; i++ {
		keys[i] = b.keys[ends[i]:ends[i+1]]
	}

	b.offsets = append(b.offsets, uint32(len(b.buf)))
	b.buf = b.policy.CreateFilter(keys, b.buf)

	b.keys = b.keys[:0]
	b.keyStarts = b.keyStarts[:0]
}

// Finish forces generation of any pending filter, appends the per-filter
// offset array, the offset-array's own offset, and the base_lg byte, then
// the framing trailer, and returns the finished filter page.
func (b *FilterBuilder) Finish() []byte {
	if b.finished {
		return b.buf
	}
	if len(b.keyStarts) > 0 {
		b.generateFilter()
	}

	arrayOffset := uint32(len(b.buf))
	for _, off := range b.offsets {
		b.buf = PutFixed32LE(b.buf, off)
	}
	b.buf = PutFixed32LE(b.buf, arrayOffset)
	b.buf = append(b.buf, byte(filterBaseLg))

	b.buf = appendTrailer(b.buf, FilterPage)
	b.finished = true
	return b.buf
}
