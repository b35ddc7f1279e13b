package page

import "encoding/binary"

// EncodeFixed32LE writes v into buf[0:4] little-endian. buf must be at
// least 4 bytes.
func EncodeFixed32LE(buf []byte, v uint32) {
	binary.LittleEndian.PutUint32(buf, v)
}

// DecodeFixed32LE reads a little-endian uint32 from buf[0:4].
func DecodeFixed32LE(buf []byte) uint32 {
	return binary.LittleEndian.Uint32(buf)
}

// PutFixed32LE appends a little-endian uint32 to dst.
func PutFixed32LE(dst []byte, v uint32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return append(dst, b[:]...)
}

// VarintLength returns the number of bytes needed to base-128 encode v.
func VarintLength(v uint64) int {
	n := 1
	for v >= 128 {
		v >>= 7
		n++
	}
	return n
}

// PutVarint32 appends the base-128 varint encoding of v to dst.
func PutVarint32(dst []byte, v uint32) []byte {
	return PutVarint64(dst, uint64(v))
}

// PutVarint64 appends the base-128 varint encoding of v to dst.
func PutVarint64(dst []byte, v uint64) []byte {
	const b = 128
	for v >= b {
		dst = append(dst, byte(v&(b-1))|b)
		v >>= 7
	}
	return append(dst, byte(v))
}

// GetVarint32 decodes a base-128 varint32 starting at the front of p. It
// returns the value and the number of bytes consumed, or ok=false if p is
// too short or the encoded value would overflow uint32.
func GetVarint32(p []byte) (v uint32, n int, ok bool) {
	v64, n, ok := GetVarint64(p)
	if !ok || v64 > 0xFFFFFFFF {
		return 0, 0, false
	}
	return uint32(v64), n, true
}

// GetVarint64 decodes a base-128 varint64 starting at the front of p. It
// returns the value and the number of bytes consumed, or ok=false if p ends
// before the varint does, or the varint is longer than 10 bytes (the max
// needed to encode a uint64).
func GetVarint64(p []byte) (v uint64, n int, ok bool) {
	var shift uint
	for i := 0; i < len(p) && i < 10; i++ {
		b := p[i]
		if b < 128 {
			v |= uint64(b) << shift
			return v, i + 1, true
		}
		v |= uint64(b&0x7F) << shift
		shift += 7
	}
	return 0, 0, false
}

// PutLengthPrefixed appends varint32(len(s)) followed by s to dst.
func PutLengthPrefixed(dst []byte, s []byte) []byte {
	dst = PutVarint32(dst, uint32(len(s)))
	return append(dst, s...)
}
