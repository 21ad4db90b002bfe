package main

import (
	"log/slog"
	"math/rand"
	"time"

	"github.com/joshuapare/memkit/mem"
	"github.com/joshuapare/memkit/vector"
)

// benchResult is one test's outcome.
type benchResult struct {
	Name    string
	Ops     uint
	Elapsed time.Duration
}

func (r benchResult) OpsPerSec() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Ops) / r.Elapsed.Seconds()
}

// runAllocBench churns the backing with a mixed allocate/free workload: each
// step either allocates a random size or frees a random live block, keeping
// the live set around half the high-water mark so the free lists stay hot.
func runAllocBench(b mem.Backing, ops uint, maxSize int, seed int64) benchResult {
	rng := rand.New(rand.NewSource(seed))

	type block struct {
		buf  []byte
		size int
	}
	live := make([]block, 0, 1024)

	slog.Debug("alloc bench starting", "ops", ops, "max_size", maxSize)
	start := time.Now()
	for i := uint(0); i < ops; i++ {
		if len(live) > 0 && rng.Intn(2) == 0 {
			j := rng.Intn(len(live))
			b.Deallocate(live[j].buf, live[j].size)
			live[j] = live[len(live)-1]
			live = live[:len(live)-1]
			continue
		}
		size := 1 + rng.Intn(maxSize)
		buf := b.Allocate(size)
		if buf == nil {
			slog.Error("allocation failed", "size", size, "op", i)
			break
		}
		live = append(live, block{buf: buf, size: size})
	}
	elapsed := time.Since(start)

	for _, bl := range live {
		b.Deallocate(bl.buf, bl.size)
	}
	return benchResult{Name: "alloc", Ops: ops, Elapsed: elapsed}
}

// runVectorBench exercises the container on top of the backing: pushes with
// periodic mid-vector inserts and erases, then a full drain.
func runVectorBench(b mem.Backing, ops uint, seed int64) benchResult {
	rng := rand.New(rand.NewSource(seed))
	v := vector.NewIn(mem.NewIn[int64](b))

	slog.Debug("vector bench starting", "ops", ops)
	start := time.Now()
	for i := uint(0); i < ops; i++ {
		switch {
		case v.Len() > 0 && i%7 == 0:
			v.Erase(rng.Intn(v.Len()))
		case v.Len() > 0 && i%5 == 0:
			v.Insert(rng.Intn(v.Len()+1), int64(i))
		default:
			v.Push(int64(i))
		}
	}
	for !v.Empty() {
		v.Pop()
	}
	elapsed := time.Since(start)
	v.Release()

	return benchResult{Name: "vector", Ops: ops, Elapsed: elapsed}
}
