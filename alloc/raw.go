package alloc

// OOMHandler is invoked when the heap refuses an allocation, before the
// allocator retries. A useful handler releases memory the application can
// spare (caches, pools); a handler that frees nothing just burns the retry
// budget.
type OOMHandler func()

// HeapFunc obtains size bytes of zeroed storage from the platform, returning
// nil when the request cannot be satisfied. It is the injectable primitive
// underneath both Raw and Pool; tests substitute failing or counting
// implementations, and internal/mmap supplies a page-mapped one.
type HeapFunc func(size int) []byte

// defaultRetries bounds the OOM handler/retry loop.
const defaultRetries = 3

// Raw is the fallback allocator: a thin wrapper over the platform heap with a
// bounded out-of-memory retry protocol. The OOM handler is state of the
// instance, not of the process, so two Raws never observe each other's
// handlers.
//
// Raw is not safe for concurrent use.
type Raw struct {
	heap    HeapFunc
	handler OOMHandler
	retries int
}

// RawOption configures a Raw allocator.
type RawOption func(*Raw)

// WithHeap substitutes the platform heap primitive.
func WithHeap(h HeapFunc) RawOption {
	return func(r *Raw) { r.heap = h }
}

// WithRetries sets the OOM retry budget.
func WithRetries(n int) RawOption {
	return func(r *Raw) {
		if n > 0 {
			r.retries = n
		}
	}
}

// WithOOMHandler installs the initial out-of-memory handler.
func WithOOMHandler(h OOMHandler) RawOption {
	return func(r *Raw) { r.handler = h }
}

// NewRaw returns a raw allocator over the Go heap.
func NewRaw(opts ...RawOption) *Raw {
	r := &Raw{
		heap:    sysHeap,
		retries: defaultRetries,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// sysHeap is the default heap primitive. A request beyond what the runtime
// can address panics inside makeslice; that surfaces here as a nil result,
// the same shape as a failed malloc.
func sysHeap(size int) (b []byte) {
	defer func() {
		if recover() != nil {
			b = nil
		}
	}()
	return make([]byte, size)
}

// Allocate returns size bytes, or nil once the retry budget is exhausted.
// Each failed attempt invokes the registered handler before retrying; with no
// handler registered the failure panics with ErrNoOOMHandler.
func (r *Raw) Allocate(size int) []byte {
	if size <= 0 {
		return nil
	}
	if b := r.heap(size); b != nil {
		return b
	}
	return r.allocateSlow(size)
}

// allocateSlow runs the handler/retry loop after a first-attempt failure.
func (r *Raw) allocateSlow(size int) []byte {
	for attempt := 0; attempt < r.retries; attempt++ {
		if r.handler == nil {
			panic(ErrNoOOMHandler)
		}
		r.handler()
		if b := r.heap(size); b != nil {
			return b
		}
	}
	return nil
}

// Deallocate releases a block obtained from Allocate. The Go heap reclaims by
// unreachability, so dropping the reference is the whole operation; the
// signature mirrors the pool's so the two remain interchangeable backings.
func (r *Raw) Deallocate(ptr []byte, size int) {
	_ = ptr
	_ = size
}

// Reallocate resizes a block, preserving the first min(oldSize, newSize)
// bytes of content. Returns nil when the new allocation fails under the OOM
// protocol; the original block is untouched in that case.
func (r *Raw) Reallocate(ptr []byte, oldSize, newSize int) []byte {
	nb := r.Allocate(newSize)
	if nb == nil {
		return nil
	}
	if oldSize < len(ptr) {
		ptr = ptr[:oldSize]
	}
	copy(nb, ptr)
	r.Deallocate(ptr, oldSize)
	return nb
}

// SetOOMHandler swaps the instance's out-of-memory handler and returns the
// previous one. Passing nil uninstalls the handler, restoring the
// panic-on-failure behavior.
func (r *Raw) SetOOMHandler(h OOMHandler) OOMHandler {
	prev := r.handler
	r.handler = h
	return prev
}
