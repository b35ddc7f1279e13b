// Package page implements the on-disk page format for a log-structured-merge
// storage engine: a builder that packs sorted key/value records into a
// fixed-size, CRC-framed page, a cursor that navigates a finished page, and
// a Bloom-filter side index that lets a caller skip pages that cannot
// possibly contain a key.
//
// A page is a contiguous byte string. Every page, regardless of kind, ends
// in a 5-byte trailer: a one-byte Type followed by a little-endian uint32
// CRC32-C computed over everything before the checksum (payload + type
// byte). Builders never allocate beyond their internal buffer and never
// panic; callers are expected to validate a page's checksum before parsing
// it.
package page

import (
	"bytes"
	"encoding/binary"
)

// Type identifies the kind of page a trailer belongs to.
type Type uint8

const (
	DataPage   Type = 0
	IndexPage  Type = 1
	FilterPage Type = 2
)

func (t Type) String() string {
	switch t {
	case DataPage:
		return "DataPage"
	case IndexPage:
		return "IndexPage"
	case FilterPage:
		return "FilterPage"
	default:
		return "UnknownPage"
	}
}

// trailerSize is the number of bytes every page reserves for type+checksum.
const trailerSize = 1 + 4

// DefaultPageSize is the target size a builder tries to stay under. It is
// advisory: a single oversize record still produces a valid, larger page.
const DefaultPageSize = 4 * 1024

// RestartInterval is the number of records between restart points in a data
// page. It is part of the on-disk format: changing it invalidates existing
// pages.
const RestartInterval = 16

// Comparator is a total order over key bytes. Implementations must be pure
// and safe to call from multiple goroutines; a cursor or reader holds one by
// reference for its whole lifetime.
type Comparator interface {
	// Compare returns <0, 0, or >0 as a is less than, equal to, or greater
	// than b.
	Compare(a, b []byte) int
	// Name identifies the comparator for forward compatibility; pages built
	// with one comparator should not be read back with a differently named
	// one.
	Name() string
}

// BytewiseComparator orders keys by unsigned byte value, shorter-is-less on
// a shared prefix. It is the default comparator and is equivalent to
// bytes.Compare.
type BytewiseComparator struct{}

func (BytewiseComparator) Compare(a, b []byte) int { return bytes.Compare(a, b) }
func (BytewiseComparator) Name() string            { return "flashpage.BytewiseComparator" }

// FixedUint32Comparator orders keys as little-endian uint32 values. Used in
// tests and by callers storing fixed-width integer keys.
type FixedUint32Comparator struct{}

func (FixedUint32Comparator) Compare(a, b []byte) int {
	av := binary.LittleEndian.Uint32(a)
	bv := binary.LittleEndian.Uint32(b)
	switch {
	case av < bv:
		return -1
	case av > bv:
		return 1
	default:
		return 0
	}
}

func (FixedUint32Comparator) Name() string { return "flashpage.FixedUint32Comparator" }

// appendTrailer appends the type byte and CRC32-C of buf (computed over buf
// plus the type byte) and returns the extended slice. buf is the page
// payload built so far; it is not retained.
func appendTrailer(buf []byte, t Type) []byte {
	buf = append(buf, byte(t))
	crc := CRC32C(buf)
	var crcBuf [4]byte
	binary.LittleEndian.PutUint32(crcBuf[:], crc)
	return append(buf, crcBuf[:]...)
}

// CheckCRC32C validates the trailer of a finished page. It reports false for
// any page shorter than the trailer itself.
func CheckCRC32C(data []byte) bool {
	if len(data) < trailerSize {
		return false
	}
	body := data[:len(data)-4]
	want := binary.LittleEndian.Uint32(data[len(data)-4:])
	return CRC32C(body) == want
}

// PageType extracts the trailer's type byte. The caller must have already
// validated the page with CheckCRC32C; PageType does not bounds-check beyond
// what is needed to avoid a panic on a page shorter than the trailer.
func PageType(data []byte) Type {
	if len(data) < trailerSize {
		return DataPage
	}
	return Type(data[len(data)-trailerSize])
}

// payload returns the page body with the trailer stripped.
func payload(data []byte) []byte {
	if len(data) < trailerSize {
		return nil
	}
	return data[:len(data)-trailerSize]
}
