// Command membench measures allocator and container throughput against a
// selectable backing: the pooled allocator, the raw heap allocator, or the
// pooled allocator fed by anonymous memory mappings.
package main

import (
	"log/slog"
	"os"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/joshuapare/memkit/alloc"
	"github.com/joshuapare/memkit/internal/mmap"
	"github.com/joshuapare/memkit/mem"
)

func main() {
	ca := newCmdArgs(os.Stderr)
	if err := ca.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}
	if ca.help {
		ca.fs.SetOutput(os.Stdout)
		ca.fs.PrintDefaults()
		return
	}

	level := slog.LevelInfo
	if ca.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))

	backing, pool, err := buildBacking(ca)
	if err != nil {
		slog.Error("bad arguments", "error", err)
		os.Exit(2)
	}
	slog.Debug("backing selected", "backing", ca.Backing, "batch", ca.Batch)

	var results []benchResult
	for _, name := range strings.Split(ca.Tests, ",") {
		switch strings.TrimSpace(name) {
		case "alloc":
			results = append(results, runAllocBench(backing, ca.Ops, int(ca.MaxSize), ca.Seed))
		case "vector":
			results = append(results, runVectorBench(backing, ca.Ops, ca.Seed))
		case "":
		default:
			slog.Error("unknown test", "test", name)
			os.Exit(2)
		}
	}

	report(results, pool)
}

// buildBacking maps the -b flag to a backing. The pool is returned separately
// when one is in play so the report can include its counters.
func buildBacking(ca *cmdArgs) (mem.Backing, *alloc.Pool, error) {
	var opts []alloc.PoolOption
	if ca.Batch > 0 {
		opts = append(opts, alloc.WithBatch(int(ca.Batch)))
	}
	switch ca.Backing {
	case "pool":
		p := alloc.NewPool(opts...)
		return p, p, nil
	case "raw":
		return alloc.NewRaw(), nil, nil
	case "mmap":
		opts = append(opts, alloc.WithPoolHeap(mmapHeap))
		p := alloc.NewPool(opts...)
		return p, p, nil
	}
	return nil, nil, errUnknownBacking(ca.Backing)
}

type errUnknownBacking string

func (e errUnknownBacking) Error() string {
	return "unknown backing " + string(e)
}

// mmapHeap adapts anonymous mappings to the allocator's heap hook. Mapped
// memory is never unmapped here; the process owns it until exit, which is
// fine for a benchmark run.
func mmapHeap(size int) []byte {
	buf, err := mmap.Alloc(size)
	if err != nil {
		slog.Debug("mmap failed", "size", size, "error", err)
		return nil
	}
	return buf
}

func report(results []benchResult, pool *alloc.Pool) {
	pr := message.NewPrinter(language.English)
	for _, r := range results {
		pr.Printf("%-8s %d ops in %v  (%.0f ops/s)\n", r.Name, r.Ops, r.Elapsed, r.OpsPerSec())
	}
	if pool == nil {
		return
	}
	st := pool.Stats()
	pr.Printf("pool: %d allocs (%d fast, %d slow), %d frees, %d large\n",
		st.AllocCalls, st.FastPath, st.SlowPath, st.FreeCalls, st.LargeAllocs)
	pr.Printf("pool: %d chunks grabbed, %d bytes, %d emergency reuses, %d remainders recycled\n",
		st.ChunksGrabbed, st.BytesGrabbed, st.EmergencyReuses, st.RemainderRecycles)
}
