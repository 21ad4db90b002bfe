//go:build !unix

package mmap

import "fmt"

// Alloc returns a zeroed heap slice on platforms without anonymous mmap
// support. The collector reclaims it once unreferenced; Free is a no-op.
func Alloc(size int) ([]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("mmap: non-positive size %d", size)
	}
	return make([]byte, size), nil
}

// Free releases a slice from Alloc. On the fallback path the heap owns the
// memory, so there is nothing to unmap.
func Free(_ []byte) error {
	return nil
}
