package alloc

import "github.com/joshuapare/memkit/internal/buf"

// blockRef locates a block as (chunk index, byte offset) within the pool's
// chunk table. Index zero is a valid chunk, so the nil sentinel uses an
// all-ones chunk field.
type blockRef struct {
	chunk uint32
	off   uint32
}

var nilRef = blockRef{chunk: ^uint32(0)}

func (r blockRef) isNil() bool { return r.chunk == ^uint32(0) }

// freeList is a LIFO list of free blocks of one size class. The link to the
// next free block lives in the first eight bytes of the block itself, encoded
// as two little-endian u32 words (chunk index, offset): the index-based form
// of an intrusive list, with no machine addresses stored in freed memory.
//
// While a block is linked, nothing but these operations may touch its link
// word. Popping transfers the whole block, link word included, to the caller
// as opaque storage.
type freeList struct {
	head blockRef
	n    int
}

func newFreeList() freeList {
	return freeList{head: nilRef}
}

func (f *freeList) empty() bool { return f.head.isNil() }

// len reports how many blocks are linked. Maintained for observability; the
// allocation paths only ever test emptiness.
func (f *freeList) len() int { return f.n }

// push links the block at ref as the new head. block must be the chunk-backed
// slice starting at ref's offset, at least Align bytes long.
func (f *freeList) push(ref blockRef, block []byte) {
	buf.PutU32LE(block[0:4], f.head.chunk)
	buf.PutU32LE(block[4:8], f.head.off)
	f.head = ref
	f.n++
}

// pop unlinks and returns the head block's ref. ok is false when the list is
// empty. chunks is the pool's chunk table, needed to read the head's link.
func (f *freeList) pop(chunks [][]byte) (ref blockRef, ok bool) {
	if f.head.isNil() {
		return nilRef, false
	}
	ref = f.head
	block := chunks[ref.chunk][ref.off:]
	f.head = blockRef{
		chunk: buf.U32LE(block[0:4]),
		off:   buf.U32LE(block[4:8]),
	}
	f.n--
	return ref, true
}
