package alloc

import (
	"errors"
	"math"
	"testing"
)

// failingHeap always refuses, counting attempts.
func failingHeap(attempts *int) HeapFunc {
	return func(size int) []byte {
		*attempts++
		return nil
	}
}

func TestRawAllocate(t *testing.T) {
	r := NewRaw()
	b := r.Allocate(64)
	if len(b) != 64 {
		t.Fatalf("len = %d, want 64", len(b))
	}
	b = r.Allocate(0)
	if b != nil {
		t.Fatalf("Allocate(0) = %v, want nil", b)
	}
}

// Test_Raw_OOMRetryBound verifies the handler runs exactly the retry budget
// before the allocator gives up with nil.
func Test_Raw_OOMRetryBound(t *testing.T) {
	attempts := 0
	invoked := 0
	r := NewRaw(
		WithHeap(failingHeap(&attempts)),
		WithOOMHandler(func() { invoked++ }),
	)
	b := r.Allocate(32)
	if b != nil {
		t.Fatalf("expected nil result, got %d bytes", len(b))
	}
	if invoked != defaultRetries {
		t.Fatalf("handler invoked %d times, want %d", invoked, defaultRetries)
	}
	// First attempt plus one per retry.
	if attempts != 1+defaultRetries {
		t.Fatalf("heap attempts = %d, want %d", attempts, 1+defaultRetries)
	}
}

func Test_Raw_ConfiguredRetries(t *testing.T) {
	attempts := 0
	invoked := 0
	r := NewRaw(
		WithHeap(failingHeap(&attempts)),
		WithRetries(5),
		WithOOMHandler(func() { invoked++ }),
	)
	if b := r.Allocate(32); b != nil {
		t.Fatalf("expected nil, got %d bytes", len(b))
	}
	if invoked != 5 {
		t.Fatalf("handler invoked %d times, want 5", invoked)
	}
}

// Test_Raw_NoHandlerPanics: with no handler registered, allocation failure is
// unrecoverable.
func Test_Raw_NoHandlerPanics(t *testing.T) {
	attempts := 0
	r := NewRaw(WithHeap(failingHeap(&attempts)))
	defer func() {
		v := recover()
		if v == nil {
			t.Fatal("expected panic")
		}
		err, ok := v.(error)
		if !ok || !errors.Is(err, ErrNoOOMHandler) {
			t.Fatalf("panic value = %v, want ErrNoOOMHandler", v)
		}
	}()
	r.Allocate(32)
}

// Test_Raw_HandlerRescue: a handler that actually releases memory lets the
// retry succeed.
func Test_Raw_HandlerRescue(t *testing.T) {
	rescued := false
	heap := func(size int) []byte {
		if !rescued {
			return nil
		}
		return make([]byte, size)
	}
	invoked := 0
	r := NewRaw(WithHeap(heap), WithOOMHandler(func() {
		invoked++
		rescued = true
	}))
	b := r.Allocate(32)
	if len(b) != 32 {
		t.Fatalf("len = %d, want 32", len(b))
	}
	if invoked != 1 {
		t.Fatalf("handler invoked %d times, want 1", invoked)
	}
}

// Test_Raw_UnsatisfiableSize drives the real heap primitive with a request
// larger than the runtime can address: the handler flag must flip and the
// result must be nil, not a crash.
func Test_Raw_UnsatisfiableSize(t *testing.T) {
	flagged := false
	r := NewRaw(WithOOMHandler(func() { flagged = true }))
	b := r.Allocate(math.MaxInt)
	if b != nil {
		t.Fatalf("expected nil for unsatisfiable size, got %d bytes", len(b))
	}
	if !flagged {
		t.Fatal("OOM handler never invoked")
	}
}

func Test_Raw_SetOOMHandlerSwap(t *testing.T) {
	r := NewRaw()
	calls := make([]string, 0, 2)
	first := func() { calls = append(calls, "first") }
	if prev := r.SetOOMHandler(first); prev != nil {
		t.Fatal("expected nil previous handler")
	}
	prev := r.SetOOMHandler(func() { calls = append(calls, "second") })
	if prev == nil {
		t.Fatal("expected previous handler back")
	}
	prev()
	if len(calls) != 1 || calls[0] != "first" {
		t.Fatalf("previous handler wrong: %v", calls)
	}
}

func Test_Raw_ReallocatePreserves(t *testing.T) {
	r := NewRaw()
	b := r.Allocate(16)
	for i := range b {
		b[i] = byte(i + 1)
	}

	grown := r.Reallocate(b, 16, 64)
	if len(grown) != 64 {
		t.Fatalf("grown len = %d, want 64", len(grown))
	}
	for i := 0; i < 16; i++ {
		if grown[i] != byte(i+1) {
			t.Fatalf("byte %d lost in growth: got %d", i, grown[i])
		}
	}

	shrunk := r.Reallocate(grown, 64, 8)
	if len(shrunk) != 8 {
		t.Fatalf("shrunk len = %d, want 8", len(shrunk))
	}
	for i := 0; i < 8; i++ {
		if shrunk[i] != byte(i+1) {
			t.Fatalf("byte %d lost in shrink: got %d", i, shrunk[i])
		}
	}
}
