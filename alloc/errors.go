package alloc

import "errors"

var (
	// ErrNoOOMHandler is the panic value raised when an allocation fails and
	// no out-of-memory handler was ever registered. A caller that installed
	// no handler has declared allocation failure unrecoverable.
	ErrNoOOMHandler = errors.New("alloc: out of memory and no OOM handler registered")
)
