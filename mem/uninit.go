package mem

// Construction and destruction over raw storage. "Raw" means allocated but
// not yet constructed: a recycled pool block arrives holding whatever its
// previous tenant left behind, so every slot must be written before it is
// read. Destruction zeroes, which doubles as reference release for
// heap-routed element types.

// Construct default-constructs the object at p to T's zero value.
func Construct[T any](p *T) {
	var zero T
	*p = zero
}

// ConstructAt constructs the object at p as a copy of v.
func ConstructAt[T any](p *T, v T) {
	*p = v
}

// Destroy ends the object at p, leaving its slot raw again.
func Destroy[T any](p *T) {
	var zero T
	*p = zero
}

// DestroyRange ends every object in s.
func DestroyRange[T any](s []T) {
	clear(s)
}

// UninitFill constructs a copy of v in every slot of raw storage dst.
func UninitFill[T any](dst []T, v T) {
	for i := range dst {
		dst[i] = v
	}
}

// UninitCopy constructs copies of src's elements into raw storage dst,
// returning the number constructed. dst and src must not overlap.
func UninitCopy[T any](dst, src []T) int {
	return copy(dst, src)
}

// UninitCopyBackward copies src into dst from the last element down, for
// right shifts where dst overlaps src at higher indices of the same buffer.
// len(dst) must be at least len(src).
func UninitCopyBackward[T any](dst, src []T) {
	for i := len(src) - 1; i >= 0; i-- {
		dst[i] = src[i]
	}
}
