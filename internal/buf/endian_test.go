package buf

import "testing"

func TestU32LERoundTrip(t *testing.T) {
	b := make([]byte, 4)
	PutU32LE(b, 0xdeadbeef)
	if got := U32LE(b); got != 0xdeadbeef {
		t.Fatalf("U32LE: got 0x%x want 0xdeadbeef", got)
	}
	if b[0] != 0xef || b[3] != 0xde {
		t.Fatalf("byte order wrong: % x", b)
	}
}

func TestShortBuffers(t *testing.T) {
	short := make([]byte, 3)
	PutU32LE(short, 1) // must not panic
	if got := U32LE(short); got != 0 {
		t.Fatalf("short U32LE: got %d want 0", got)
	}
}
