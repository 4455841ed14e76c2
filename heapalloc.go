// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package heapalloc is a general-purpose heap memory allocator over a
// single contiguous, grow-only byte region. It exposes the same surface a C
// allocator would - Init, Alloc, Free, Realloc, Check - on top of the
// block-level machinery in package alloc: an address-ordered explicit free
// list, best-fit search with high-end split, bidirectional coalescing, and
// an in-place-extending realloc.
//
// Allocator is not safe for concurrent use - use it from one goroutine, or
// guard it with a mutex of your own.
package heapalloc

import (
	"github.com/cznic/heapalloc/alloc"
	"github.com/cznic/heapalloc/freelist"
	"github.com/cznic/heapalloc/region"
)

// Allocator is the client-facing handle to one heap region.
type Allocator struct {
	core *alloc.Allocator
}

// New returns an Allocator over a fresh in-memory region.Slice. This is the
// right choice for nearly all callers, including every test in this module.
func New() *Allocator {
	return NewWithRegion(region.NewSlice())
}

// NewWithRegion returns an Allocator over a caller-supplied region.Heap,
// e.g. a region.Mmap for a real anonymous-memory-backed heap.
func NewWithRegion(h region.Heap) *Allocator {
	return &Allocator{core: alloc.New(h)}
}

// SetDebug toggles opt-in pointer validation in Free and Realloc. See
// alloc.Allocator.Debug.
func (a *Allocator) SetDebug(on bool) { a.core.Debug = on }

// Init is idempotent and does nothing: this allocator needs no global state
// beyond what New already set up. Kept so callers that expect an explicit
// init step still have one to call.
func (a *Allocator) Init() error { return a.core.Init() }

// Alloc returns a W-aligned payload address for at least size bytes, or 0
// if the region could not be extended.
func (a *Allocator) Alloc(size int64) (int64, error) { return a.core.Alloc(size) }

// Free deallocates the block at addr, previously returned by Alloc or
// Realloc. Freeing an address Alloc/Realloc never returned is undefined
// behavior, unless Debug is enabled.
func (a *Allocator) Free(addr int64) error { return a.core.Free(addr) }

// Realloc resizes the block at addr to size bytes, returning the (possibly
// new) payload address, or 0 on extension failure. addr == 0 behaves like
// Alloc(size); size == 0 with addr != 0 frees addr and returns 0.
func (a *Allocator) Realloc(addr, size int64) (int64, error) { return a.core.Realloc(addr, size) }

// Check walks the free list and the block region once, verifying every
// structural invariant. It is read-only.
func (a *Allocator) Check() bool { return a.core.Check() }

// CheckVerbose is Check with a structured report of the first failure.
func (a *Allocator) CheckVerbose() alloc.CheckReport { return a.core.CheckVerbose() }

// Stats reports the current composition of the block region.
func (a *Allocator) Stats() (alloc.Stats, error) { return a.core.Stats() }

// FreeListReport returns a snapshot of every free block, in address order.
func (a *Allocator) FreeListReport() ([]freelist.Entry, error) { return a.core.FreeListReport() }

// Region returns the region.Heap backing this Allocator.
func (a *Allocator) Region() region.Heap { return a.core.Heap }
