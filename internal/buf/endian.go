// Package buf contains helpers for endian-safe encoding of allocator metadata.
//
// Free blocks carry their list links inside their own first bytes, so the
// encoding must be explicit about width and byte order rather than leaning on
// the in-memory layout of a Go struct.
package buf

import "encoding/binary"

// U32LE reads a little-endian uint32 from b. Returns 0 when b is too short.
func U32LE(b []byte) uint32 {
	if len(b) < 4 {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

// PutU32LE writes v to b as a little-endian uint32. No-op when b is too short.
func PutU32LE(b []byte, v uint32) {
	if len(b) < 4 {
		return
	}
	binary.LittleEndian.PutUint32(b, v)
}
