//go:build unix

// Package mmap provides anonymous, private page mappings for use as allocator
// chunk storage. Mapped chunks live outside the Go heap, so multi-megabyte
// arenas neither get scanned by the collector nor counted against GOGC.
//
// On non-unix platforms the package falls back to ordinary heap slices.
package mmap

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// Alloc maps size bytes of zeroed, anonymous, private memory.
func Alloc(size int) ([]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("mmap: non-positive size %d", size)
	}
	data, err := unix.Mmap(-1, 0, size,
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, fmt.Errorf("mmap: anonymous map of %d bytes: %w", size, err)
	}
	return data, nil
}

// Free unmaps a slice previously returned by Alloc.
func Free(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	err := unix.Munmap(data)
	if errors.Is(err, unix.EINVAL) {
		// Treat double-unmap as no-op for callers.
		return nil
	}
	return err
}
