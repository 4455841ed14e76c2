// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package alloc

import (
	"github.com/cznic/heapalloc/block"
	"github.com/cznic/heapalloc/freelist"
)

// searchResult is what a single free-list walk in Alloc needs to decide
// between an exact match, a splittable fit, a whole-block fit, and no fit.
type searchResult struct {
	exact    bool
	found    bool
	bestFwd  int64
	bestSize int64
	tailFwd  int64
	tailSize int64
}

func (a *Allocator) search(need int64) (searchResult, error) {
	var res searchResult
	err := a.free.Walk(func(fwd int64) (bool, error) {
		h := block.HeaderFromForward(fwd)
		size, _, err := block.ReadHeader(a.Heap, h)
		if err != nil {
			return false, err
		}

		res.tailFwd, res.tailSize = fwd, size

		if size == need {
			res.exact, res.found = true, true
			res.bestFwd, res.bestSize = fwd, size
			return false, nil // exact match: accept immediately, stop
		}

		if size > need && (!res.found || size < res.bestSize) {
			res.found = true
			res.bestFwd, res.bestSize = fwd, size
		}

		return true, nil
	})
	return res, err
}

// Alloc returns a W-aligned payload address of at least r bytes, or 0 if
// the heap could not be extended. 0 is never a valid payload address (the
// first possible header sits at blocksStart >= W, so its payload is at
// least 2W), so it doubles as the conventional "allocation failed" result.
func (a *Allocator) Alloc(r int64) (int64, error) {
	if err := a.ensureInit(); err != nil {
		return 0, err
	}

	need := normalize(r)

	res, err := a.search(need)
	if err != nil {
		return 0, err
	}

	switch {
	case res.exact:
		h := block.HeaderFromForward(res.bestFwd)
		if err := a.free.Unlink(res.bestFwd); err != nil {
			return 0, err
		}
		if err := block.WriteHeader(a.Heap, h, res.bestSize, true); err != nil {
			return 0, err
		}
		return block.Payload(h), nil

	case res.found && res.bestSize-need >= block.MinSize:
		// Splittable oversized fit: split from the high end. The low
		// portion stays a free block at the same header address, so
		// it keeps its free-list position - no list mutation needed.
		h := block.HeaderFromForward(res.bestFwd)
		remainder := res.bestSize - need
		if err := block.WriteHeader(a.Heap, h, remainder, false); err != nil {
			return 0, err
		}
		allocH := h + remainder
		if err := block.WriteHeader(a.Heap, allocH, need, true); err != nil {
			return 0, err
		}
		return block.Payload(allocH), nil

	case res.found:
		// Oversized but not splittable: consume the whole block.
		h := block.HeaderFromForward(res.bestFwd)
		if err := a.free.Unlink(res.bestFwd); err != nil {
			return 0, err
		}
		if err := block.WriteHeader(a.Heap, h, res.bestSize, true); err != nil {
			return 0, err
		}
		return block.Payload(h), nil
	}

	// No fit. If the highest-address free block abuts the heap end,
	// extend by just the shortfall and reuse its header address -
	// otherwise extend by a fresh need and place a new header there.
	// When the free list is empty this also correctly covers the very
	// first Alloc call: ensureInit above has already grown the heap by
	// exactly one head cell, so tailFwd is Nil and we fall straight
	// through to a fresh extension at blocksStart.
	if res.tailFwd != freelist.Nil {
		tailH := block.HeaderFromForward(res.tailFwd)
		if block.End(tailH, res.tailSize) == a.Heap.High() {
			if _, err := a.Heap.Extend(need - res.tailSize); err != nil {
				return 0, err
			}
			if err := a.free.Unlink(res.tailFwd); err != nil {
				return 0, err
			}
			if err := block.WriteHeader(a.Heap, tailH, need, true); err != nil {
				return 0, err
			}
			return block.Payload(tailH), nil
		}
	}

	at, err := a.Heap.Extend(need)
	if err != nil {
		return 0, err
	}
	if err := block.WriteHeader(a.Heap, at, need, true); err != nil {
		return 0, err
	}
	return block.Payload(at), nil
}
