// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package alloc

import "github.com/cznic/heapalloc/block"

// Realloc resizes the block at p to hold r payload bytes, returning the
// (possibly new) payload address, or 0 on extension failure.
//
// p == 0 behaves like Alloc(r). r == 0 with p != 0 frees p and returns 0,
// the conventional reading of the degenerate case.
func (a *Allocator) Realloc(p, r int64) (int64, error) {
	if p == 0 {
		return a.Alloc(r)
	}

	if r == 0 {
		if err := a.Free(p); err != nil {
			return 0, err
		}
		return 0, nil
	}

	h := p - block.W
	cur, allocated, err := block.ReadHeader(a.Heap, h)
	if err != nil {
		return 0, err
	}

	if a.Debug && !allocated {
		return 0, &ErrInvalidPointer{"Realloc", p}
	}

	newBlock := normalize(r)

	if newBlock <= cur {
		// Fast path: no in-place split for shrink, acceptable internal
		// fragmentation. No header mutation, matching L3.
		return p, nil
	}

	if grown, err := a.tryExtendIntoRightNeighbor(h, cur, newBlock); err != nil {
		return 0, err
	} else if grown {
		return p, nil
	}

	if block.End(h, cur) == a.Heap.High() {
		if _, err := a.Heap.Extend(newBlock - cur); err != nil {
			return 0, err
		}
		if err := block.WriteHeader(a.Heap, h, newBlock, true); err != nil {
			return 0, err
		}
		return p, nil
	}

	return a.reallocFallback(p, h, cur, r)
}

// tryExtendIntoRightNeighbor attempts to grow the block at h in place by
// absorbing all or part of its immediate right neighbor, if that neighbor
// exists and is free and big enough. It reports whether it did.
func (a *Allocator) tryExtendIntoRightNeighbor(h, cur, newBlock int64) (bool, error) {
	end := block.End(h, cur)
	if end >= a.Heap.High() {
		return false, nil
	}

	rsize, rallocated, err := block.ReadHeader(a.Heap, end)
	if err != nil {
		return false, err
	}

	if rallocated {
		return false, nil
	}

	need := newBlock - cur
	if rsize < need {
		return false, nil
	}

	fwd, back, err := block.ReadLinks(a.Heap, end)
	if err != nil {
		return false, err
	}

	if err := a.free.Unlink(block.Payload(end)); err != nil {
		return false, err
	}

	grown := cur + rsize // consume the neighbor entirely by default
	if remaining := rsize - need; remaining >= block.MinSize {
		// Shrink the neighbor from its low end instead: it moves up
		// by need bytes but keeps its exact list position, since
		// fwd/back were captured before the unlink above. p only
		// grows by what it asked for.
		grown = cur + need
		newNeighborH := end + need
		if err := block.WriteHeader(a.Heap, newNeighborH, remaining, false); err != nil {
			return false, err
		}
		if err := a.free.InsertBefore(block.Payload(newNeighborH), fwd, back); err != nil {
			return false, err
		}
	} // else: consume the neighbor entirely; it stays unlinked.

	if err := block.WriteHeader(a.Heap, h, grown, true); err != nil {
		return false, err
	}

	return true, nil
}

// reallocFallback implements alloc+copy+free, copying min(cur-W, r) payload
// bytes - not asked_size, which could read past the old payload.
func (a *Allocator) reallocFallback(p, h, cur, r int64) (int64, error) {
	q, err := a.Alloc(r)
	if err != nil {
		return 0, err
	}

	n := cur - block.W
	if r < n {
		n = r
	}

	buf := make([]byte, n)
	if _, err := a.Heap.ReadAt(buf, p); err != nil {
		return 0, err
	}

	if _, err := a.Heap.WriteAt(buf, q); err != nil {
		return 0, err
	}

	if err := a.Free(p); err != nil {
		return 0, err
	}

	return q, nil
}
