package alloc

import (
	"log/slog"
	"os"
	"sort"
	"unsafe"
)

// Runtime debug flag for allocation logging - controlled by MEMKIT_LOG_ALLOC env var.
var logAlloc = os.Getenv("MEMKIT_LOG_ALLOC") != ""

const (
	// defaultBatch is the number of blocks a refill tries to carve at once.
	defaultBatch = 20

	// maxChunkAttempts bounds the carve/replenish loop in chunkAlloc. Each
	// round either carves blocks or installs a fresh cursor, so the bound is
	// never reached in practice; it exists to make termination visible.
	maxChunkAttempts = 8
)

// chunkSpan records one chunk's base address for owner lookup, kept sorted by
// base so Deallocate can map a block back to (chunk, offset) in O(log n).
type chunkSpan struct {
	base uintptr
	size int
	idx  int
}

// PoolStats holds counters for instrumentation and tests.
type PoolStats struct {
	AllocCalls        int   // total Allocate() calls
	FreeCalls         int   // total Deallocate() calls
	FastPath          int   // allocations served from a free list
	SlowPath          int   // allocations that required a refill
	LargeAllocs       int   // requests above MaxBytes, bypassed to Raw
	LargeFrees        int   // frees above MaxBytes, bypassed to Raw
	ChunksGrabbed     int   // raw chunks obtained from the heap
	BytesGrabbed      int64 // total chunk bytes ever obtained
	EmergencyReuses   int   // free-list blocks repurposed as cursor material
	RemainderRecycles int   // cursor tails pushed back onto a free list
}

// Pool is the segregated-size-class allocator. Requests of up to MaxBytes are
// served from 16 free lists, one per 8-byte class, refilled by carving blocks
// off an arena cursor over chunks obtained in bulk from the heap. Larger
// requests delegate to the Raw fallback.
//
// All state - free lists, cursor, chunk table - is unsynchronized; see the
// package documentation for the threading contract.
type Pool struct {
	free [NumClasses]freeList

	// chunks holds every chunk ever obtained. Free-list refs index into it,
	// so entries are append-only and never released while the pool lives.
	chunks [][]byte
	spans  []chunkSpan // sorted by base address

	// Arena cursor: the unconsumed range [curStart, curEnd) of chunk
	// curChunk. curChunk is -1 until the first chunk arrives.
	curChunk int
	curStart int
	curEnd   int

	// grabbed is the cumulative byte count obtained from the heap. It only
	// scales future chunk requests: the more the pool has consumed, the
	// bigger the next chunk.
	grabbed int

	heap  HeapFunc
	raw   *Raw
	batch int

	stats PoolStats
}

// PoolOption configures a Pool.
type PoolOption func(*Pool)

// WithPoolHeap substitutes the heap primitive used for chunk requests.
// The Raw fallback keeps its own primitive unless replaced via WithRaw.
func WithPoolHeap(h HeapFunc) PoolOption {
	return func(p *Pool) { p.heap = h }
}

// WithRaw substitutes the fallback raw allocator.
func WithRaw(r *Raw) PoolOption {
	return func(p *Pool) { p.raw = r }
}

// WithBatch sets the refill batch target.
func WithBatch(n int) PoolOption {
	return func(p *Pool) {
		if n > 0 {
			p.batch = n
		}
	}
}

// NewPool returns an empty pool; the first allocation grabs the first chunk.
func NewPool(opts ...PoolOption) *Pool {
	p := &Pool{
		heap:     sysHeap,
		batch:    defaultBatch,
		curChunk: -1,
	}
	for i := range p.free {
		p.free[i] = newFreeList()
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.raw == nil {
		p.raw = NewRaw(WithHeap(p.heap))
	}
	return p
}

// Allocate returns size usable bytes. Blocks of up to MaxBytes come from the
// pool, 8-aligned within their chunk and capped at the rounded class size;
// larger requests delegate to the Raw fallback and inherit its OOM-retry
// semantics. Returns nil when size is non-positive or memory is exhausted.
func (p *Pool) Allocate(size int) []byte {
	if size <= 0 {
		return nil
	}
	p.stats.AllocCalls++
	if size > MaxBytes {
		p.stats.LargeAllocs++
		return p.raw.Allocate(size)
	}
	if ref, ok := p.free[classOf(size)].pop(p.chunks); ok {
		p.stats.FastPath++
		return p.block(ref, size)
	}
	p.stats.SlowPath++
	return p.refill(size)
}

// Deallocate returns a block to its size class. size must be the value passed
// to Allocate; the pool records no per-block sizes. Blocks above MaxBytes go
// back to the Raw fallback. A pointer the pool does not own is dropped (and
// logged under MEMKIT_LOG_ALLOC) rather than corrupting a free list.
func (p *Pool) Deallocate(ptr []byte, size int) {
	if len(ptr) == 0 || size <= 0 {
		return
	}
	p.stats.FreeCalls++
	if size > MaxBytes {
		p.stats.LargeFrees++
		p.raw.Deallocate(ptr, size)
		return
	}
	ref, ok := p.owner(ptr)
	if !ok {
		if logAlloc {
			slog.Warn("memkit: deallocate of block the pool does not own", "size", size)
		}
		return
	}
	p.pushFree(classOf(size), ref)
}

// Reallocate resizes a block. Both sizes rounding to the same class keeps the
// block in place, resliced to newSize usable bytes. Across classes the first
// min(oldSize, newSize) bytes are preserved before the old block is freed;
// nil is returned, with the old block intact, when the new allocation fails.
func (p *Pool) Reallocate(ptr []byte, oldSize, newSize int) []byte {
	if oldSize <= MaxBytes && newSize <= MaxBytes && newSize > 0 &&
		roundUp(oldSize) == roundUp(newSize) && roundUp(newSize) <= cap(ptr) {
		return ptr[:newSize:roundUp(newSize)]
	}
	nb := p.Allocate(newSize)
	if nb == nil {
		return nil
	}
	n := oldSize
	if newSize < n {
		n = newSize
	}
	if n > len(ptr) {
		n = len(ptr)
	}
	copy(nb, ptr[:n])
	p.Deallocate(ptr, oldSize)
	return nb
}

// Stats returns a copy of the pool's counters.
func (p *Pool) Stats() PoolStats {
	return p.stats
}

// FreeBlocks reports how many blocks sit on the free list for the given size
// class index in [0, NumClasses).
func (p *Pool) FreeBlocks(class int) int {
	if class < 0 || class >= NumClasses {
		return 0
	}
	return p.free[class].len()
}

// block builds the caller-facing slice for ref: len is the requested size,
// cap the rounded class size, so a caller can neither read a neighbor nor
// grow into one.
func (p *Pool) block(ref blockRef, size int) []byte {
	start := int(ref.off)
	return p.chunks[ref.chunk][start : start+size : start+roundUp(size)]
}

// pushFree links ref onto class k's free list, writing the link word through
// the chunk table so short caller slices cannot truncate it.
func (p *Pool) pushFree(k int, ref blockRef) {
	p.free[k].push(ref, p.chunks[ref.chunk][ref.off:])
}

// refill serves a miss for size by carving a batch of blocks. The first block
// goes to the caller; the remaining count-1 are threaded onto the class's
// free list so that the block adjacent to the returned one pops next.
func (p *Pool) refill(size int) []byte {
	blockSize := roundUp(size)
	first, count, ok := p.chunkAlloc(blockSize, p.batch)
	if !ok {
		return nil
	}
	k := classOf(blockSize)
	for i := count - 1; i >= 1; i-- {
		p.pushFree(k, blockRef{
			chunk: first.chunk,
			off:   first.off + uint32(i*blockSize),
		})
	}
	return p.block(first, size)
}

// chunkAlloc carves up to count blocks of blockSize bytes from the arena
// cursor, replenishing the cursor when it runs dry. Returns the first block's
// ref and the number of contiguous blocks actually carved, which may be less
// than requested when the cursor was nearly spent.
//
// An explicit loop rather than recursion: every round either returns carved
// blocks or installs a fresh cursor, and maxChunkAttempts makes the
// termination bound visible.
func (p *Pool) chunkAlloc(blockSize, count int) (blockRef, int, bool) {
	for attempt := 0; attempt < maxChunkAttempts; attempt++ {
		need := blockSize * count
		left := p.curEnd - p.curStart

		if left >= need {
			ref := blockRef{chunk: uint32(p.curChunk), off: uint32(p.curStart)}
			p.curStart += need
			return ref, count, true
		}
		if left >= blockSize {
			count = left / blockSize
			ref := blockRef{chunk: uint32(p.curChunk), off: uint32(p.curStart)}
			p.curStart += count * blockSize
			return ref, count, true
		}

		// The cursor cannot cover even one block. Recycle its tail onto the
		// free list matching the tail's own size, then replenish.
		if left >= Align {
			p.pushFree(classOf(left), blockRef{
				chunk: uint32(p.curChunk),
				off:   uint32(p.curStart),
			})
			p.curStart = p.curEnd
			p.stats.RemainderRecycles++
		}
		if !p.replenish(blockSize, need) {
			return nilRef, 0, false
		}
	}
	return nilRef, 0, false
}

// replenish points the cursor at fresh bytes: a new heap chunk sized by the
// adaptive policy, a spare free-list block when the heap refuses, or the raw
// allocator's OOM-retry path as the last resort.
func (p *Pool) replenish(blockSize, need int) bool {
	get := 2*need + roundUp(p.grabbed>>4)
	if b := p.heap(get); b != nil {
		p.installChunk(b, get)
		return true
	}

	// Heap refused. Any spare block of this class or above can stand in as
	// cursor material; scanning upward finds the smallest that fits.
	for sz := blockSize; sz <= MaxBytes; sz += Align {
		if ref, ok := p.free[classOf(sz)].pop(p.chunks); ok {
			p.curChunk = int(ref.chunk)
			p.curStart = int(ref.off)
			p.curEnd = int(ref.off) + sz
			p.stats.EmergencyReuses++
			if logAlloc {
				slog.Debug("memkit: emergency cursor from free list",
					"class_bytes", sz, "need", need)
			}
			return true
		}
	}

	// No spare material anywhere: hand the chunk request to the raw
	// allocator and accept its handler/retry semantics.
	b := p.raw.Allocate(get)
	if b == nil {
		p.curChunk, p.curStart, p.curEnd = -1, 0, 0
		return false
	}
	p.installChunk(b, get)
	return true
}

// installChunk appends b to the chunk table, indexes it for owner lookup, and
// spans the cursor over it.
func (p *Pool) installChunk(b []byte, get int) {
	idx := len(p.chunks)
	p.chunks = append(p.chunks, b)

	base := uintptr(unsafe.Pointer(&b[0]))
	i := sort.Search(len(p.spans), func(i int) bool { return p.spans[i].base > base })
	p.spans = append(p.spans, chunkSpan{})
	copy(p.spans[i+1:], p.spans[i:])
	p.spans[i] = chunkSpan{base: base, size: len(b), idx: idx}

	p.curChunk = idx
	p.curStart = 0
	p.curEnd = len(b)
	p.grabbed += get
	p.stats.ChunksGrabbed++
	p.stats.BytesGrabbed += int64(get)
	if logAlloc {
		slog.Debug("memkit: new chunk", "bytes", get, "total_grabbed", p.grabbed)
	}
}

// owner maps a block back to its (chunk, offset) reference by binary search
// over the address-sorted span index. ok is false for pointers the pool does
// not own, including blocks that came from the Raw bypass.
func (p *Pool) owner(ptr []byte) (blockRef, bool) {
	base := uintptr(unsafe.Pointer(&ptr[0]))
	i := sort.Search(len(p.spans), func(i int) bool { return p.spans[i].base > base })
	if i == 0 {
		return nilRef, false
	}
	span := p.spans[i-1]
	off := base - span.base
	if off >= uintptr(span.size) {
		return nilRef, false
	}
	return blockRef{chunk: uint32(span.idx), off: uint32(off)}, true
}
