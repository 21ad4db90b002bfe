package mem

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConstructDestroy(t *testing.T) {
	var x int
	ConstructAt(&x, 42)
	require.Equal(t, 42, x)
	Destroy(&x)
	require.Equal(t, 0, x)

	var s string
	ConstructAt(&s, "live")
	Construct(&s)
	require.Equal(t, "", s)
}

func TestDestroyRange(t *testing.T) {
	s := []int{1, 2, 3, 4}
	DestroyRange(s[1:3])
	require.Equal(t, []int{1, 0, 0, 4}, s)
}

func TestUninitFill(t *testing.T) {
	dst := []int{9, 9, 9, 9, 9}
	UninitFill(dst[1:4], 7)
	require.Equal(t, []int{9, 7, 7, 7, 9}, dst)
}

func TestUninitCopy(t *testing.T) {
	dst := make([]int, 4)
	n := UninitCopy(dst, []int{1, 2, 3})
	require.Equal(t, 3, n)
	require.Equal(t, []int{1, 2, 3, 0}, dst)
}

// TestUninitCopyBackwardOverlap: a right shift within one buffer must not
// overwrite source elements before they move.
func TestUninitCopyBackwardOverlap(t *testing.T) {
	buf := []int{1, 2, 3, 4, 0, 0}
	// Shift [0,4) right by two.
	UninitCopyBackward(buf[2:6], buf[0:4])
	require.Equal(t, []int{1, 2, 1, 2, 3, 4}, buf)
}
