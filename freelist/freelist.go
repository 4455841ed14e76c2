// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package freelist implements the doubly-linked, address-ordered list of
// free blocks that the allocator searches and splices. Per the allocator's
// deliberate layout choice, list nodes are identified by the address of a
// block's forward-link cell (block.Payload(h)), not by its header address -
// most list code touches the links, so that is the address worth calling a
// block's "identity" here. Ordering by forward-link address is equivalent
// to ordering by header address since the offset between them is constant.
package freelist

import (
	"github.com/cznic/heapalloc/block"
	"github.com/cznic/heapalloc/region"
)

// Nil is the free-list "null" address. It is the head cell's own offset, so
// it can never collide with a real forward-link address.
const Nil int64 = 0

// List is a free list rooted at a fixed head cell in a region.Heap.
type List struct {
	Heap     region.Heap
	HeadCell int64
}

// New returns a List rooted at headCell, which must have been initialized
// (by the allocator, on first use) to Nil.
func New(heap region.Heap, headCell int64) *List {
	return &List{Heap: heap, HeadCell: headCell}
}

// Head returns the forward-link address of the first free block, or Nil if
// the list is empty.
func (l *List) Head() (int64, error) {
	return region.ReadWord(l.Heap, l.HeadCell)
}

// SetHead overwrites the head cell.
func (l *List) SetHead(fwd int64) error {
	return region.WriteWord(l.Heap, l.HeadCell, fwd)
}

// Walk calls visit once per free-list node, in address order, passing each
// node's forward-link address. It stops early if visit returns false.
func (l *List) Walk(visit func(fwd int64) (cont bool, err error)) error {
	cur, err := l.Head()
	if err != nil {
		return err
	}

	for cur != Nil {
		cont, err := visit(cur)
		if err != nil {
			return err
		}

		if !cont {
			return nil
		}

		next, _, err := block.ReadLinks(l.Heap, block.HeaderFromForward(cur))
		if err != nil {
			return err
		}

		cur = next
	}

	return nil
}

// Len returns the number of nodes currently in the list. Read-only.
func (l *List) Len() (n int, err error) {
	err = l.Walk(func(int64) (bool, error) {
		n++
		return true, nil
	})
	return n, err
}

// Entry is one free block as reported by Report: its header address and
// total size, header included.
type Entry struct {
	Addr int64
	Size int64
}

// Report returns a snapshot of every free block currently in the list, in
// address order. Read-only, used by the stats and check components to print
// free-list composition without duplicating Walk's traversal.
func (l *List) Report() ([]Entry, error) {
	var entries []Entry
	err := l.Walk(func(fwd int64) (bool, error) {
		h := block.HeaderFromForward(fwd)
		size, _, err := block.ReadHeader(l.Heap, h)
		if err != nil {
			return false, err
		}

		entries = append(entries, Entry{Addr: h, Size: size})
		return true, nil
	})
	return entries, err
}

// FindInsertionPoint returns the forward-link address of the first node
// whose header address is greater than addr (the pivot), and the
// forward-link address of the node immediately preceding it (prev). Either
// may be Nil: pivot is Nil if addr is greater than every node (the new node
// belongs at the tail); prev is Nil if addr is less than every node (the new
// node belongs at the head).
func (l *List) FindInsertionPoint(addr int64) (pivot, prev int64, err error) {
	cur, err := l.Head()
	if err != nil {
		return 0, 0, err
	}

	for cur != Nil {
		if block.HeaderFromForward(cur) > addr {
			return cur, prev, nil
		}

		prev = cur
		next, _, err := block.ReadLinks(l.Heap, block.HeaderFromForward(cur))
		if err != nil {
			return 0, 0, err
		}

		cur = next
	}

	return Nil, prev, nil
}

// InsertBefore splices node in just before pivot, with prev as pivot's
// current predecessor (Nil if pivot was first, i.e. node becomes the new
// head; pivot itself may be Nil, meaning node becomes the new tail).
// prev and pivot must be exactly what FindInsertionPoint(header(node))
// returned, or list ordering will not be preserved.
func (l *List) InsertBefore(node, pivot, prev int64) error {
	if err := block.WriteLinks(l.Heap, block.HeaderFromForward(node), pivot, prev); err != nil {
		return err
	}

	if pivot != Nil {
		fwd, _, err := block.ReadLinks(l.Heap, block.HeaderFromForward(pivot))
		if err != nil {
			return err
		}

		if err := block.WriteLinks(l.Heap, block.HeaderFromForward(pivot), fwd, node); err != nil {
			return err
		}
	}

	if prev != Nil {
		_, back, err := block.ReadLinks(l.Heap, block.HeaderFromForward(prev))
		if err != nil {
			return err
		}

		return block.WriteLinks(l.Heap, block.HeaderFromForward(prev), node, back)
	}

	return l.SetHead(node)
}

// InsertOrdered finds node's address-ordered position and splices it in.
// Equivalent to FindInsertionPoint followed by InsertBefore, provided for
// callers that don't already have pivot/prev from a prior search. (Free does
// its own FindInsertionPoint, since it needs pivot/prev for coalescing.)
func (l *List) InsertOrdered(node int64) error {
	pivot, prev, err := l.FindInsertionPoint(block.HeaderFromForward(node))
	if err != nil {
		return err
	}

	return l.InsertBefore(node, pivot, prev)
}

// Unlink removes node from the list, patching its neighbors (or the head
// cell, if node was first).
func (l *List) Unlink(node int64) error {
	fwd, back, err := block.ReadLinks(l.Heap, block.HeaderFromForward(node))
	if err != nil {
		return err
	}

	if back != Nil {
		_, bBack, err := block.ReadLinks(l.Heap, block.HeaderFromForward(back))
		if err != nil {
			return err
		}

		if err := block.WriteLinks(l.Heap, block.HeaderFromForward(back), fwd, bBack); err != nil {
			return err
		}
	} else if err := l.SetHead(fwd); err != nil {
		return err
	}

	if fwd != Nil {
		fFwd, _, err := block.ReadLinks(l.Heap, block.HeaderFromForward(fwd))
		if err != nil {
			return err
		}

		if err := block.WriteLinks(l.Heap, block.HeaderFromForward(fwd), fFwd, back); err != nil {
			return err
		}
	}

	return nil
}
