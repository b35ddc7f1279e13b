package page

import "fmt"

// DataCursor navigates a finished data page in key order. A cursor borrows
// the page's byte slice and must not outlive it; it is not safe for
// concurrent use from multiple goroutines, but independent cursors over the
// same (immutable) page slice may run concurrently on different goroutines.
//
// Slices returned by Key and Value are owned by the cursor's scratch
// buffers and are only valid until the next cursor mutation (Next, Prev,
// Seek, SeekToFirst, SeekToLast) or until the cursor itself is discarded.
type DataCursor struct {
	data       []byte // payload, trailer stripped
	comparator Comparator

	restartStart int
	restartCount int

	cur         int
	curRestart  int
	invalid     bool
	corrupt     error

	keyBuf   []byte
	valueBuf []byte
}

// NewDataCursor creates a cursor over a finished data page. page must
// already have passed CheckCRC32C; NewDataCursor does not re-validate the
// checksum.
func NewDataCursor(pageData []byte, comparator Comparator) (*DataCursor, error) {
	data := payload(pageData)
	if len(data) < 4 {
		return nil, fmt.Errorf("data cursor: %w", ErrTruncatedPage)
	}

	restartCount := int(DecodeFixed32LE(data[len(data)-4:]))
	restartStart := len(data) - 4 - restartCount*4
	if restartStart < 0 {
		return nil, fmt.Errorf("data cursor: %w", ErrTruncatedPage)
	}

	c := &DataCursor{
		data:         data[:restartStart+restartCount*4],
		comparator:   comparator,
		restartStart: restartStart,
		restartCount: restartCount,
		invalid:      true,
	}
	return c, nil
}

// Valid reports whether the cursor is positioned at a record.
func (c *DataCursor) Valid() bool {
	return !c.invalid && c.cur < c.restartStart
}

func (c *DataCursor) restartOffset(i int) int {
	return c.restartStart + i*4
}

func (c *DataCursor) restartEntry(i int) int {
	return int(DecodeFixed32LE(c.data[c.restartOffset(i):]))
}

// entrySize returns the total encoded size (prefix+suffix+value length
// varints, plus the suffix and value bytes) of the record at offset off.
func (c *DataCursor) entrySize(off int) (int, error) {
	p := c.data[off:]
	_, n1, ok := GetVarint32(p)
	if !ok {
		return 0, ErrBadVarint
	}
	p = p[n1:]
	suffixLen, n2, ok := GetVarint32(p)
	if !ok {
		return 0, ErrBadVarint
	}
	p = p[n2:]
	valueLen, n3, ok := GetVarint32(p)
	if !ok {
		return 0, ErrBadVarint
	}
	return n1 + n2 + n3 + int(suffixLen) + int(valueLen), nil
}

// restartKey returns the full key stored at restart point i (restart-point
// records always carry their full key as the suffix, prefixLen==0).
func (c *DataCursor) restartKey(i int) ([]byte, error) {
	off := c.restartEntry(i)
	p := c.data[off:]
	_, n1, ok := GetVarint32(p) // prefixLen, always 0 at a restart point
	if !ok {
		return nil, ErrBadVarint
	}
	p = p[n1:]
	suffixLen, n2, ok := GetVarint32(p)
	if !ok {
		return nil, ErrBadVarint
	}
	p = p[n2:]
	_, n3, ok := GetVarint32(p)
	if !ok {
		return nil, ErrBadVarint
	}
	p = p[n3:]
	return p[:suffixLen], nil
}

// SeekToFirst positions the cursor at the first record, if any.
func (c *DataCursor) SeekToFirst() {
	c.invalid = c.restartCount == 0
	c.cur = 0
	c.curRestart = 0
}

// SeekToLast positions the cursor at the last record, if any.
func (c *DataCursor) SeekToLast() {
	if c.restartCount == 0 {
		c.invalid = true
		return
	}
	c.curRestart = c.restartCount - 1
	curEntry := c.restartEntry(c.curRestart)
	for {
		size, err := c.entrySize(curEntry)
		if err != nil {
			c.invalid = true
			c.corrupt = err
			return
		}
		if curEntry+size >= c.restartStart {
			break
		}
		curEntry += size
	}
	c.cur = curEntry
	c.invalid = false
}

// Next advances the cursor to the following record. It is a no-op if the
// cursor is already invalid.
func (c *DataCursor) Next() {
	if !c.Valid() {
		return
	}
	size, err := c.entrySize(c.cur)
	if err != nil {
		c.invalid = true
		c.corrupt = err
		return
	}
	c.cur += size
	if c.curRestart+1 < c.restartCount && c.cur == c.restartEntry(c.curRestart+1) {
		c.curRestart++
	}
}

// Prev moves the cursor to the preceding record. Calling Prev while
// positioned at the first record is a no-op: the cursor stays put rather
// than becoming invalid.
func (c *DataCursor) Prev() {
	if !c.Valid() {
		return
	}
	if c.cur == 0 {
		return
	}
	if c.cur == c.restartEntry(c.curRestart) {
		c.curRestart--
	}
	curEntry := c.restartEntry(c.curRestart)
	for {
		size, err := c.entrySize(curEntry)
		if err != nil {
			c.invalid = true
			c.corrupt = err
			return
		}
		if curEntry+size >= c.cur {
			break
		}
		curEntry += size
	}
	c.cur = curEntry
}

// Seek positions the cursor at the first record whose key is >= target, or
// makes the cursor invalid if no such record exists. An empty page leaves
// the cursor invalid.
func (c *DataCursor) Seek(target []byte) {
	if c.restartCount == 0 {
		c.invalid = true
		return
	}

	// Lower-bound binary search: smallest restart index whose key is >=
	// target, or restartCount if every restart key is < target. Deliberately
	// kept separate from picking the linear-scan start below.
	lo, hi := 0, c.restartCount
	for lo < hi {
		mid := (lo + hi) / 2
		key, err := c.restartKey(mid)
		if err != nil {
			c.invalid = true
			c.corrupt = err
			return
		}
		if c.comparator.Compare(key, target) < 0 {
			lo = mid + 1
		} else {
			hi = mid
		}
	}

	scanFrom := lo - 1
	if scanFrom < 0 {
		scanFrom = 0
	}
	c.curRestart = scanFrom
	c.cur = c.restartEntry(scanFrom)
	c.invalid = false

	for c.Valid() {
		key, err := c.Key()
		if err != nil {
			c.invalid = true
			c.corrupt = err
			return
		}
		if c.comparator.Compare(key, target) >= 0 {
			return
		}
		c.Next()
	}
}

// Key returns the reconstructed key at the current position: the most
// recent restart point's key prefix plus the stored suffix. The returned
// slice is owned by the cursor and is invalidated by the next cursor
// mutation.
func (c *DataCursor) Key() ([]byte, error) {
	if !c.Valid() {
		return nil, ErrTruncatedPage
	}
	p := c.data[c.cur:]
	prefixLen, n1, ok := GetVarint32(p)
	if !ok {
		return nil, ErrBadVarint
	}
	p = p[n1:]
	suffixLen, n2, ok := GetVarint32(p)
	if !ok {
		return nil, ErrBadVarint
	}
	p = p[n2:]
	_, n3, ok := GetVarint32(p)
	if !ok {
		return nil, ErrBadVarint
	}
	p = p[n3:]

	restartKey, err := c.restartKey(c.curRestart)
	if err != nil {
		return nil, err
	}

	c.keyBuf = append(c.keyBuf[:0], restartKey[:prefixLen]...)
	c.keyBuf = append(c.keyBuf, p[:suffixLen]...)
	return c.keyBuf, nil
}

// Value returns the value at the current position. The returned slice is
// owned by the cursor and is invalidated by the next cursor mutation.
func (c *DataCursor) Value() ([]byte, error) {
	if !c.Valid() {
		return nil, ErrTruncatedPage
	}
	p := c.data[c.cur:]
	_, n1, ok := GetVarint32(p)
	if !ok {
		return nil, ErrBadVarint
	}
	p = p[n1:]
	suffixLen, n2, ok := GetVarint32(p)
	if !ok {
		return nil, ErrBadVarint
	}
	p = p[n2:]
	valueLen, n3, ok := GetVarint32(p)
	if !ok {
		return nil, ErrBadVarint
	}
	p = p[n3+int(suffixLen):]

	c.valueBuf = append(c.valueBuf[:0], p[:valueLen]...)
	return c.valueBuf, nil
}
