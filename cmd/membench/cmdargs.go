package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
)

type cmdArgs struct {
	fs   *flag.FlagSet
	help bool

	Backing string
	Ops     uint
	MaxSize uint
	Batch   uint
	Seed    int64
	Tests   string
	Verbose bool
}

func newCmdArgs(output io.Writer) (ca *cmdArgs) {
	ca = &cmdArgs{
		fs: flag.NewFlagSet("membench", flag.ContinueOnError),
	}
	ca.fs.SetOutput(output)
	ca.fs.BoolVar(&ca.help, "help", false, "Shows usage")
	ca.fs.StringVar(&ca.Backing, "b", "pool", "Backing allocator: pool, raw or mmap")
	ca.fs.UintVar(&ca.Ops, "n", 1000000, "Total number of operations per test")
	ca.fs.UintVar(&ca.MaxSize, "s", 128, "Maximum request size in bytes")
	ca.fs.UintVar(&ca.Batch, "r", 0, "Pool refill batch (0 = default)")
	ca.fs.Int64Var(&ca.Seed, "seed", 1, "Workload RNG seed")
	ca.fs.StringVar(&ca.Tests, "t", "alloc,vector", "Comma separated list of tests")
	ca.fs.BoolVar(&ca.Verbose, "v", false, "Verbose logging")
	return
}

func (ca *cmdArgs) Parse(arguments []string) (err error) {
	err = ca.fs.Parse(arguments)
	if err != nil {
		return
	}
	if ca.MaxSize < 1 {
		err = errors.New("-s must be at least 1")
		fmt.Fprintln(ca.fs.Output(), err)
	}
	return
}
