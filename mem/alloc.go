// Package mem provides the typed allocation facade over the byte allocators
// in package alloc, plus the raw-storage construction helpers the container
// packages build on.
//
// The facade is purely a unit-translation layer: it turns "n objects of T"
// into "n*sizeof(T) bytes" against a Backing and reinterprets the result.
// Allocation never constructs objects and deallocation never destroys them;
// that is the caller's job, via the Construct/Destroy/Uninit helpers.
package mem

import (
	"reflect"
	"unsafe"

	"github.com/joshuapare/memkit/alloc"
)

// Backing is the byte allocator underneath a typed Allocator. Both
// *alloc.Pool and *alloc.Raw satisfy it; the pool is the default.
type Backing interface {
	Allocate(size int) []byte
	Deallocate(ptr []byte, size int)
}

// defaultBacking is the pool shared by allocators built with New. Like the
// allocators themselves it is single-threaded state.
var defaultBacking Backing = alloc.NewPool()

// Allocator hands out storage for values of T in units of objects rather
// than bytes. The zero value is not usable; construct with New or NewIn.
type Allocator[T any] struct {
	b        Backing
	elemSize int

	// indirect marks element types the byte pool cannot hold: pointer-bearing
	// types whose references the collector must keep seeing, and zero-size
	// types that occupy no storage at all. These route to the Go heap.
	indirect bool
}

// New returns an allocator for T over the shared default pool.
func New[T any]() Allocator[T] {
	return NewIn[T](defaultBacking)
}

// NewIn returns an allocator for T over an explicit backing, letting callers
// trade the pool's size-class caching for the raw allocator's simplicity.
func NewIn[T any](b Backing) Allocator[T] {
	t := reflect.TypeFor[T]()
	size := int(t.Size())
	return Allocator[T]{
		b:        b,
		elemSize: size,
		indirect: size == 0 || typeHasPointers(t),
	}
}

// Alloc returns storage for n values of T. The storage is raw: recycled pool
// blocks carry stale bytes, so every slot must be constructed before use.
// Returns nil when n is zero or negative, or when the backing is exhausted.
func (a Allocator[T]) Alloc(n int) []T {
	if n <= 0 {
		return nil
	}
	if a.indirect {
		return make([]T, n)
	}
	raw := a.b.Allocate(n * a.elemSize)
	if raw == nil {
		return nil
	}
	return unsafe.Slice((*T)(unsafe.Pointer(&raw[0])), n)
}

// AllocOne returns storage for a single T, or nil when the backing fails.
func (a Allocator[T]) AllocOne() *T {
	s := a.Alloc(1)
	if s == nil {
		return nil
	}
	return &s[0]
}

// Free returns storage obtained from Alloc. s must be the slice Alloc
// returned, at its original length; the backing recovers the byte size from
// it. Freeing does not destroy elements.
func (a Allocator[T]) Free(s []T) {
	if len(s) == 0 || a.indirect {
		return
	}
	size := len(s) * a.elemSize
	raw := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), size)
	a.b.Deallocate(raw, size)
}

// FreeOne returns single-object storage obtained from AllocOne.
func (a Allocator[T]) FreeOne(p *T) {
	if p == nil || a.indirect {
		return
	}
	raw := unsafe.Slice((*byte)(unsafe.Pointer(p)), a.elemSize)
	a.b.Deallocate(raw, a.elemSize)
}

// typeHasPointers reports whether values of t contain references the
// collector must trace. Such values cannot live in byte-backed pool storage,
// which the collector scans as plain bytes.
func typeHasPointers(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Uintptr,
		reflect.Float32, reflect.Float64,
		reflect.Complex64, reflect.Complex128:
		return false
	case reflect.Array:
		return typeHasPointers(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if typeHasPointers(t.Field(i).Type) {
				return true
			}
		}
		return false
	default:
		// Pointers, slices, maps, strings, chans, funcs, interfaces.
		return true
	}
}
