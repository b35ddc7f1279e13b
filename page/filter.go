package page

// FilterPolicy is a pluggable filter codec. CreateFilter must encode a
// filter bitmap for the given keys and append it to buf (it may append
// zero bytes for an empty key set — callers still need the offset
// recorded). KeyMayMatch must have zero false negatives: every key that was
// actually added must test true against the filter CreateFilter produced
// for it.
//
// Implementations must be pure, deterministic, and safe to call from
// multiple goroutines.
type FilterPolicy interface {
	CreateFilter(keys [][]byte, buf []byte) []byte
	KeyMayMatch(key []byte, filter []byte) bool
	Name() string
}

// filterBaseLg is the log2 of the byte interval between filters: one Bloom
// filter per 2^11 = 2048 bytes of data-file offset space.
const filterBaseLg = 11
