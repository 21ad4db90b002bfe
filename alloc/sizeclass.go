package alloc

const (
	// Align is the block alignment and the size-class granularity.
	Align = 8

	// MaxBytes is the largest request the pool serves itself; anything
	// bigger bypasses the free lists and goes straight to the raw allocator.
	MaxBytes = 128

	// NumClasses is the number of segregated free lists.
	NumClasses = MaxBytes / Align
)

// roundUp rounds size up to the nearest multiple of Align.
func roundUp(size int) int {
	return (size + Align - 1) &^ (Align - 1)
}

// classOf maps a byte size in [1, MaxBytes] to its free-list index.
// Undefined for size <= 0; the typed facade filters zero-count requests
// before they reach the pool.
func classOf(size int) int {
	return (size+Align-1)/Align - 1
}
