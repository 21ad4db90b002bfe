package main

import (
	"io"
	"testing"
)

func TestCmdArgsDefaults(t *testing.T) {
	ca := newCmdArgs(io.Discard)
	if err := ca.Parse(nil); err != nil {
		t.Fatalf("Parse(nil): %v", err)
	}
	if ca.Backing != "pool" || ca.MaxSize != 128 || ca.Tests != "alloc,vector" {
		t.Fatalf("unexpected defaults: %+v", ca)
	}
}

func TestCmdArgsRejectsZeroMaxSize(t *testing.T) {
	ca := newCmdArgs(io.Discard)
	if err := ca.Parse([]string{"-s", "0"}); err == nil {
		t.Fatal("Parse accepted -s 0")
	}
}
