// Package alloc provides a two-tier byte allocator: a segregated free-list
// pool for small, frequently recycled sizes, backed by a retrying raw
// allocator for everything else.
//
// # Overview
//
// The Pool serves requests of up to MaxBytes (128) bytes from 16 free lists,
// one per 8-byte size class. Free lists are intrusive: a free block's first
// eight bytes hold the (chunk, offset) reference of the next free block, so
// list maintenance costs no memory beyond the blocks themselves. Requests
// above MaxBytes bypass the pool entirely and go to the Raw allocator.
//
//	pool := alloc.NewPool()
//	b := pool.Allocate(24)       // 24 usable bytes, 8-aligned within its chunk
//	pool.Deallocate(b, 24)       // size must match the allocation
//
// # Chunk carving
//
// When a free list runs dry the pool refills it in batches of 20 blocks,
// carved off an arena cursor that spans the most recent raw chunk. Chunk
// requests grow with the pool's cumulative consumption, so a long-lived pool
// calls into the heap less and less often. A cursor tail too small for the
// requested class is recycled onto the free list matching its own size rather
// than leaked.
//
// # Out-of-memory protocol
//
// Raw wraps the platform heap with a bounded retry loop around a caller
// provided handler:
//
//	raw := alloc.NewRaw(alloc.WithOOMHandler(dropCaches))
//	b := raw.Allocate(n)         // nil after the retry budget is spent
//
// With no handler registered an allocation failure panics with
// ErrNoOOMHandler: a caller that never installed a handler has declared the
// condition unrecoverable.
//
// # Thread safety
//
// Neither Pool nor Raw is safe for concurrent use. Callers that share an
// allocator across goroutines must serialize access externally.
package alloc
