package page

import "hash/crc32"

// castagnoliTable is shared across all CRC32-C computation, matching the
// pack's convention of computing a package-level table once
// (SimonWaldherr-tinySQL's pager does the same for its own page checksums).
var castagnoliTable = crc32.MakeTable(crc32.Castagnoli)

// CRC32C computes the Castagnoli CRC32 of b.
func CRC32C(b []byte) uint32 {
	return crc32.Checksum(b, castagnoliTable)
}
