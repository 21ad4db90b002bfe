// Package vector implements a growable, contiguous, random-access container
// whose storage comes from a typed allocator facade rather than append. It is
// the pool allocator's primary consumer and exercises the raw-storage
// construction contract end to end.
package vector

import (
	"iter"

	"github.com/joshuapare/memkit/mem"
)

// minCapacity is the smallest non-zero capacity ever requested. The floor
// keeps small vectors from reallocating on every few pushes.
const minCapacity = 16

// Vector is an amortized-growth sequence of T. It owns one allocation,
// buf, whose length is the capacity; buf[:n] holds the live elements and
// buf[n:] is raw spare storage, allocated but not constructed.
//
// Vector is not safe for concurrent use.
type Vector[T any] struct {
	alloc mem.Allocator[T]
	buf   []T
	n     int
}

// New returns an empty vector drawing storage from the default pool.
func New[T any]() *Vector[T] {
	return &Vector[T]{alloc: mem.New[T]()}
}

// NewIn returns an empty vector drawing storage from a.
func NewIn[T any](a mem.Allocator[T]) *Vector[T] {
	return &Vector[T]{alloc: a}
}

// Repeat returns a vector of count copies of v.
func Repeat[T any](count int, v T) *Vector[T] {
	vec := New[T]()
	if count > 0 {
		vec.buf = vec.allocBuf(capacityFor(count))
		mem.UninitFill(vec.buf[:count], v)
		vec.n = count
	}
	return vec
}

// Of returns a vector holding the given values in order.
func Of[T any](values ...T) *Vector[T] {
	return FromSlice(values)
}

// FromSlice returns a vector deep-copied from s. The source's length is known
// up front, so storage is sized in one shot.
func FromSlice[T any](s []T) *Vector[T] {
	vec := New[T]()
	if len(s) > 0 {
		vec.buf = vec.allocBuf(capacityFor(len(s)))
		mem.UninitCopy(vec.buf[:len(s)], s)
		vec.n = len(s)
	}
	return vec
}

// Collect drains a single-pass sequence into a vector. The element count is
// unknowable ahead of time, so the vector grows as the sequence yields.
func Collect[T any](seq iter.Seq[T]) *Vector[T] {
	vec := New[T]()
	for v := range seq {
		vec.Push(v)
	}
	return vec
}

// Clone returns a deep copy of v sharing nothing with it.
func (v *Vector[T]) Clone() *Vector[T] {
	out := &Vector[T]{alloc: v.alloc}
	if v.n > 0 {
		out.buf = out.allocBuf(capacityFor(v.n))
		mem.UninitCopy(out.buf[:v.n], v.buf[:v.n])
		out.n = v.n
	}
	return out
}

// Len returns the number of live elements.
func (v *Vector[T]) Len() int { return v.n }

// Cap returns the capacity of the owned allocation.
func (v *Vector[T]) Cap() int { return len(v.buf) }

// Empty reports whether the vector holds no elements.
func (v *Vector[T]) Empty() bool { return v.n == 0 }

// At returns the element at index i. Panics outside [0, Len).
func (v *Vector[T]) At(i int) T {
	return v.buf[:v.n][i]
}

// Set replaces the element at index i. Panics outside [0, Len).
func (v *Vector[T]) Set(i int, x T) {
	v.buf[:v.n][i] = x
}

// Front returns the first element; ok is false when the vector is empty.
func (v *Vector[T]) Front() (x T, ok bool) {
	if v.n == 0 {
		return x, false
	}
	return v.buf[0], true
}

// Back returns the last element; ok is false when the vector is empty.
func (v *Vector[T]) Back() (x T, ok bool) {
	if v.n == 0 {
		return x, false
	}
	return v.buf[v.n-1], true
}

// Data returns the live elements as a slice aliasing the vector's storage.
// The slice is invalidated by any operation that grows or shrinks the vector.
func (v *Vector[T]) Data() []T {
	return v.buf[:v.n:v.n]
}

// Values yields the live elements in order.
func (v *Vector[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for i := 0; i < v.n; i++ {
			if !yield(v.buf[i]) {
				return
			}
		}
	}
}

// Push appends x. Amortized O(1): a full vector reallocates to twice its
// size before constructing x in place.
func (v *Vector[T]) Push(x T) {
	if v.n == len(v.buf) {
		v.reallocate(v.n + 1)
	}
	mem.ConstructAt(&v.buf[v.n], x)
	v.n++
}

// Pop removes and returns the last element; ok is false when the vector is
// empty. Capacity is untouched.
func (v *Vector[T]) Pop() (x T, ok bool) {
	if v.n == 0 {
		return x, false
	}
	v.n--
	x = v.buf[v.n]
	mem.Destroy(&v.buf[v.n])
	return x, true
}

// Insert inserts x before index i and returns i. i may equal Len, which
// appends.
func (v *Vector[T]) Insert(i int, x T) int {
	v.insert(i, 1, func(gap []T) { gap[0] = x }, nil)
	return i
}

// InsertN inserts count copies of x before index i.
func (v *Vector[T]) InsertN(i, count int, x T) {
	if count <= 0 {
		v.checkInsertIndex(i)
		return
	}
	v.insert(i, count, func(gap []T) { mem.UninitFill(gap, x) }, nil)
}

// InsertSlice inserts a copy of s before index i.
func (v *Vector[T]) InsertSlice(i int, s []T) {
	if len(s) == 0 {
		v.checkInsertIndex(i)
		return
	}
	v.insert(i, len(s), func(gap []T) { mem.UninitCopy(gap, s) }, s)
}

// Erase removes the element at index i and returns the index of the element
// that followed it.
func (v *Vector[T]) Erase(i int) int {
	return v.EraseRange(i, i+1)
}

// EraseRange removes the elements in [i, j), shifting the tail left, and
// returns the index of the element that followed the erased range.
func (v *Vector[T]) EraseRange(i, j int) int {
	if i < 0 || j < i || j > v.n {
		panic("vector: erase range out of bounds")
	}
	if i == j {
		return i
	}
	moved := copy(v.buf[i:v.n], v.buf[j:v.n])
	mem.DestroyRange(v.buf[i+moved : v.n])
	v.n = i + moved
	return i
}

// Resize grows with zero values or shrinks by erasing the tail.
func (v *Vector[T]) Resize(size int) {
	var zero T
	v.ResizeWith(size, zero)
}

// ResizeWith grows with copies of x or shrinks by erasing the tail.
func (v *Vector[T]) ResizeWith(size int, x T) {
	switch {
	case size < 0:
		panic("vector: negative resize")
	case size <= v.n:
		v.EraseRange(size, v.n)
	default:
		v.InsertN(v.n, size-v.n, x)
	}
}

// Assign replaces the contents with count copies of x, reusing owned storage
// when it is large enough.
func (v *Vector[T]) Assign(count int, x T) {
	if count < 0 {
		panic("vector: negative assign count")
	}
	v.assign(count, func(dst []T) { mem.UninitFill(dst, x) })
}

// AssignSlice replaces the contents with a copy of s.
func (v *Vector[T]) AssignSlice(s []T) {
	v.assign(len(s), func(dst []T) { mem.UninitCopy(dst, s) })
}

// CopyFrom makes v a deep copy of other. Three cases by relative size: a
// source beyond v's capacity swaps in fresh storage; a source no longer than
// v's live range overwrites and drops the tail; otherwise the live prefix is
// overwritten and the remainder constructed into spare storage.
func (v *Vector[T]) CopyFrom(other *Vector[T]) {
	if v == other {
		return
	}
	switch {
	case other.n > len(v.buf):
		nb := v.allocBuf(capacityFor(other.n))
		mem.UninitCopy(nb[:other.n], other.buf[:other.n])
		v.release()
		v.buf, v.n = nb, other.n
	case other.n <= v.n:
		copy(v.buf[:other.n], other.buf[:other.n])
		mem.DestroyRange(v.buf[other.n:v.n])
		v.n = other.n
	default:
		copy(v.buf[:v.n], other.buf[:v.n])
		mem.UninitCopy(v.buf[v.n:other.n], other.buf[v.n:other.n])
		v.n = other.n
	}
}

// Clear destroys all live elements. Capacity is untouched.
func (v *Vector[T]) Clear() {
	v.EraseRange(0, v.n)
}

// Swap exchanges the contents of two vectors in O(1); no element moves.
func (v *Vector[T]) Swap(other *Vector[T]) {
	v.alloc, other.alloc = other.alloc, v.alloc
	v.buf, other.buf = other.buf, v.buf
	v.n, other.n = other.n, v.n
}

// Release destroys all live elements and returns the storage to the
// allocator. The vector is empty afterwards and may be reused.
func (v *Vector[T]) Release() {
	v.release()
	v.buf, v.n = nil, 0
}

// allocBuf requests capacity elements of storage, panicking when the
// allocator is exhausted. The vector's operations promise the post-state they
// advertise; storage they cannot obtain is not a state they can report.
func (v *Vector[T]) allocBuf(capacity int) []T {
	nb := v.alloc.Alloc(capacity)
	if nb == nil {
		panic("vector: allocation failed")
	}
	return nb
}

// capacityFor applies the small-vector floor to a required length.
func capacityFor(need int) int {
	if need < minCapacity {
		return minCapacity
	}
	return need
}

// grownCapacity doubles the live size, floored, and never below need.
func (v *Vector[T]) grownCapacity(need int) int {
	c := 2 * v.n
	if c < minCapacity {
		c = minCapacity
	}
	if c < need {
		c = need
	}
	return c
}

// reallocate moves the live elements into a larger allocation.
func (v *Vector[T]) reallocate(need int) {
	nb := v.allocBuf(v.grownCapacity(need))
	mem.UninitCopy(nb[:v.n], v.buf[:v.n])
	v.release()
	v.buf = nb
}

// release destroys the live range and frees the owned storage, leaving buf
// and n stale; callers reassign both.
func (v *Vector[T]) release() {
	if v.buf != nil {
		mem.DestroyRange(v.buf[:v.n])
		v.alloc.Free(v.buf)
	}
}

func (v *Vector[T]) checkInsertIndex(i int) {
	if i < 0 || i > v.n {
		panic("vector: insert index out of bounds")
	}
}

// insert opens a count-wide gap before index i and fills it via fillGap.
// src, when non-nil, is the slice being inserted; it is only consulted on
// the reallocating path, where the gap lives in fresh storage and cannot
// alias it.
func (v *Vector[T]) insert(i, count int, fillGap func([]T), src []T) {
	v.checkInsertIndex(i)
	if len(v.buf)-v.n >= count {
		v.openGap(i, count)
		fillGap(v.buf[i : i+count])
		v.n += count
		return
	}

	// Spare capacity short: rebuild into a larger allocation in three
	// passes - before-gap, gap, after-gap.
	nb := v.allocBuf(v.grownCapacity(v.n + count))
	mem.UninitCopy(nb[:i], v.buf[:i])
	if src != nil {
		mem.UninitCopy(nb[i:i+count], src)
	} else {
		fillGap(nb[i : i+count])
	}
	mem.UninitCopy(nb[i+count:i+count+(v.n-i)], v.buf[i:v.n])
	v.release()
	v.buf = nb
	v.n += count
}

// openGap shifts buf[i:n] right by count slots. Elements landing beyond the
// live range move by uninitialized copy; when the tail is longer than the
// shift, the overlapping remainder moves backward in place so no element is
// overwritten before it is read.
func (v *Vector[T]) openGap(i, count int) {
	tail := v.n - i
	if tail == 0 {
		return
	}
	if count >= tail {
		mem.UninitCopy(v.buf[i+count:i+count+tail], v.buf[i:v.n])
		return
	}
	mem.UninitCopy(v.buf[v.n:v.n+count], v.buf[v.n-count:v.n])
	mem.UninitCopyBackward(v.buf[i+count:v.n], v.buf[i:v.n-count])
}

// assign implements Assign/AssignSlice: fresh storage when count exceeds
// capacity, in-place overwrite plus fill-or-destroy otherwise.
func (v *Vector[T]) assign(count int, fill func([]T)) {
	if count > len(v.buf) {
		nb := v.allocBuf(capacityFor(count))
		fill(nb[:count])
		v.release()
		v.buf, v.n = nb, count
		return
	}
	fill(v.buf[:count])
	if count < v.n {
		mem.DestroyRange(v.buf[count:v.n])
	}
	v.n = count
}
