// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package alloc

import (
	"github.com/cznic/heapalloc/block"
	"github.com/cznic/heapalloc/freelist"
)

// Free deallocates the block at payload, previously returned by Alloc or
// Realloc. Freeing an unknown or already-free pointer is undefined behavior
// unless a.Debug is set.
//
// There is no block footer, so left-neighbor adjacency can't be checked by
// looking backward from the header. Instead, Free finds its insertion point
// first: prev and pivot are then, by construction, the nearest free blocks
// below and above the freed block in address order - the only two
// candidates that could be heap-adjacent to it, since invariant 6
// guarantees no two free blocks are ever already adjacent.
func (a *Allocator) Free(payload int64) error {
	h := payload - block.W
	size, allocated, err := block.ReadHeader(a.Heap, h)
	if err != nil {
		return err
	}

	if a.Debug && !allocated {
		return &ErrInvalidPointer{"Free", payload}
	}

	if err := block.WriteHeader(a.Heap, h, size, false); err != nil {
		return err
	}

	nodeFwd := block.Payload(h)
	pivot, prev, err := a.free.FindInsertionPoint(h)
	if err != nil {
		return err
	}

	if err := a.free.InsertBefore(nodeFwd, pivot, prev); err != nil {
		return err
	}

	// Coalesce right: pivot is the nearest free block above h.
	if pivot != freelist.Nil {
		pivotH := block.HeaderFromForward(pivot)
		if block.End(h, size) == pivotH {
			pivotSize, _, err := block.ReadHeader(a.Heap, pivotH)
			if err != nil {
				return err
			}

			if err := a.free.Unlink(pivot); err != nil {
				return err
			}

			size += pivotSize
			if err := block.WriteHeader(a.Heap, h, size, false); err != nil {
				return err
			}
		}
	}

	// Coalesce left: prev is the nearest free block below h.
	if prev != freelist.Nil {
		prevH := block.HeaderFromForward(prev)
		prevSize, _, err := block.ReadHeader(a.Heap, prevH)
		if err != nil {
			return err
		}

		if block.End(prevH, prevSize) == h {
			if err := a.free.Unlink(nodeFwd); err != nil {
				return err
			}

			if err := block.WriteHeader(a.Heap, prevH, prevSize+size, false); err != nil {
				return err
			}
		}
	}

	return nil
}
