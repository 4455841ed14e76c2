// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package alloc implements the block-level heap allocator: best-fit search
// with high-end split, bidirectional coalescing free, and in-place-extending
// realloc, on top of a region.Heap and a freelist.List.
package alloc

import (
	"github.com/cznic/heapalloc/block"
	"github.com/cznic/heapalloc/freelist"
	"github.com/cznic/heapalloc/region"
)

// Allocator manages allocation within a single region.Heap. It is not safe
// for concurrent use - use it from one goroutine, or guard it with a mutex
// of your own.
type Allocator struct {
	Heap region.Heap
	free *freelist.List

	// blocksStart is the header address of the first possible block: the
	// heap's head cell, W bytes, with no further padding needed since a
	// free-list link is itself W bytes here.
	blocksStart int64

	// Debug, if true, makes Free and Realloc validate their pointer
	// argument before acting instead of relying on caller discipline.
	// Off by default: spec.md documents these paths as undefined
	// behavior on a bad pointer, and validating them unconditionally
	// would mean walking block state that Alloc's fast paths don't need.
	Debug bool
}

// New returns an Allocator over heap. heap may already contain a previously
// initialized region (Size() > 0 with a valid head cell at offset 0) or be
// completely empty; initialization happens lazily on first Alloc.
func New(heap region.Heap) *Allocator {
	return &Allocator{
		Heap:        heap,
		free:        freelist.New(heap, 0),
		blocksStart: block.W,
	}
}

// Init is a no-op: a fresh Allocator needs no setup beyond what New already
// does, and the one piece of real state - the head cell - is installed
// lazily by the first Alloc call.
func (a *Allocator) Init() error { return nil }

func (a *Allocator) ensureInit() error {
	if a.Heap.Size() != 0 {
		return nil
	}

	if _, err := a.Heap.Extend(block.W); err != nil {
		return err
	}

	return a.free.SetHead(freelist.Nil)
}

// normalize turns a requested payload size into the total block size to
// search or extend for: r' = max(r, 2P), need = align_up(r'+W, W).
func normalize(r int64) int64 {
	rPrime := r
	if min := 2 * block.P; rPrime < min {
		rPrime = min
	}

	return block.AlignUp(rPrime+block.W, block.W)
}

// Stats describes the composition of the block region: total size, and how
// much of it is currently allocated versus free. Relocations is always 0:
// this allocator never moves a live block once Alloc has handed it out.
type Stats struct {
	TotalAtoms  int64 // total W-byte words across every block, header included
	AllocBytes  int64 // payload bytes currently handed to callers
	AllocAtoms  int64 // W-byte words in allocated blocks, header included
	Relocations int64 // always 0; no live block is ever moved
	FreeAtoms   int64 // W-byte words in free blocks, header included
}

// Stats walks the block region once and reports its composition. Read-only.
func (a *Allocator) Stats() (Stats, error) {
	var st Stats
	cur := a.blocksStart
	for cur < a.Heap.High() {
		size, allocated, err := block.ReadHeader(a.Heap, cur)
		if err != nil {
			return st, err
		}

		atoms := size / block.W
		st.TotalAtoms += atoms
		if allocated {
			st.AllocAtoms += atoms
			st.AllocBytes += size - block.W
		} else {
			st.FreeAtoms += atoms
		}

		cur = block.End(cur, size)
	}

	return st, nil
}

// FreeListReport returns a snapshot of every free block, in address order.
// Read-only, a finer-grained companion to Stats for callers that want the
// free list's actual composition rather than just its aggregate size.
func (a *Allocator) FreeListReport() ([]freelist.Entry, error) {
	return a.free.Report()
}
