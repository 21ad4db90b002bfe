package mem

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/memkit/alloc"
)

// countingBacking wraps a Backing and records traffic in byte units.
type countingBacking struct {
	inner  Backing
	allocs int
	frees  int
	sizes  []int
}

func (c *countingBacking) Allocate(size int) []byte {
	c.allocs++
	c.sizes = append(c.sizes, size)
	return c.inner.Allocate(size)
}

func (c *countingBacking) Deallocate(ptr []byte, size int) {
	c.frees++
	c.inner.Deallocate(ptr, size)
}

func TestAllocZeroCount(t *testing.T) {
	a := New[int]()
	require.Nil(t, a.Alloc(0))
	require.Nil(t, a.Alloc(-1))
}

func TestAllocTranslatesUnits(t *testing.T) {
	cb := &countingBacking{inner: alloc.NewPool()}
	a := NewIn[int64](cb)

	s := a.Alloc(4)
	require.Len(t, s, 4)
	require.Equal(t, 1, cb.allocs)
	require.Equal(t, []int{4 * 8}, cb.sizes, "4 int64s must become 32 bytes")

	a.Free(s)
	require.Equal(t, 1, cb.frees)
}

func TestAllocOneFreeOne(t *testing.T) {
	cb := &countingBacking{inner: alloc.NewPool()}
	a := NewIn[uint32](cb)

	p := a.AllocOne()
	require.NotNil(t, p)
	*p = 0xfeedface
	require.Equal(t, []int{4}, cb.sizes)

	a.FreeOne(p)
	require.Equal(t, 1, cb.frees)
}

// TestPoolRoundTripIdentity: freeing typed storage and allocating the same
// shape again must hit the pool's LIFO fast path and hand back the same
// bytes.
func TestPoolRoundTripIdentity(t *testing.T) {
	a := NewIn[int32](alloc.NewPool())
	s1 := a.Alloc(4) // 16 bytes
	p1 := uintptr(unsafe.Pointer(&s1[0]))
	a.Free(s1)

	s2 := a.Alloc(4)
	require.Equal(t, p1, uintptr(unsafe.Pointer(&s2[0])))
}

// TestPointerTypesBypassPool: element types the collector must trace cannot
// live in byte-backed storage and route to the heap instead.
func TestPointerTypesBypassPool(t *testing.T) {
	cb := &countingBacking{inner: alloc.NewPool()}

	sp := NewIn[*int](cb).Alloc(3)
	require.Len(t, sp, 3)
	require.Equal(t, 0, cb.allocs, "pointer elements must not touch the backing")

	ss := NewIn[string](cb).Alloc(2)
	require.Len(t, ss, 2)
	require.Equal(t, 0, cb.allocs)

	type node struct {
		next *node
		val  int
	}
	sn := NewIn[node](cb).Alloc(1)
	require.Len(t, sn, 1)
	require.Equal(t, 0, cb.allocs, "pointer-bearing structs must not touch the backing")

	// Frees on heap-routed storage are no-ops against the backing.
	NewIn[*int](cb).Free(sp)
	require.Equal(t, 0, cb.frees)
}

func TestFlatStructsUsePool(t *testing.T) {
	cb := &countingBacking{inner: alloc.NewPool()}
	type point struct {
		x, y float64
		tag  [4]byte
	}
	a := NewIn[point](cb)
	s := a.Alloc(2)
	require.Len(t, s, 2)
	require.Equal(t, 1, cb.allocs)
	require.Equal(t, []int{2 * int(unsafe.Sizeof(point{}))}, cb.sizes)

	s[0] = point{x: 1, y: 2, tag: [4]byte{'a', 'b', 'c', 'd'}}
	s[1] = point{x: 3, y: 4}
	require.Equal(t, 1.0, s[0].x)
	require.Equal(t, 4.0, s[1].y)
	a.Free(s)
}

func TestZeroSizeType(t *testing.T) {
	cb := &countingBacking{inner: alloc.NewPool()}
	a := NewIn[struct{}](cb)
	s := a.Alloc(5)
	require.Len(t, s, 5)
	require.Equal(t, 0, cb.allocs, "zero-size elements need no backing storage")
	a.Free(s)
	require.Equal(t, 0, cb.frees)
}

// TestStorageIsRaw: a recycled block arrives with whatever the previous
// tenant wrote; the facade must not be relied on to zero it.
func TestStorageIsRaw(t *testing.T) {
	a := NewIn[byte](alloc.NewPool())
	s1 := a.Alloc(8)
	for i := range s1 {
		s1[i] = 0x5a
	}
	a.Free(s1)

	s2 := a.Alloc(8)
	stale := false
	for _, b := range s2 {
		if b != 0 {
			stale = true
		}
	}
	require.True(t, stale, "expected stale bytes in recycled storage")
}
