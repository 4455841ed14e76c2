// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package alloc

import (
	"fmt"

	"github.com/cznic/heapalloc/block"
	"github.com/cznic/heapalloc/freelist"
)

// CheckReport is the structured result of CheckVerbose: which invariant
// failed and where. Check itself stays a plain bool for callers that only
// want a yes/no answer.
type CheckReport struct {
	OK        bool
	Invariant string // which invariant failed, empty if OK
	Addr      int64  // the offending address, if any
	Err       error  // the underlying inconsistency, if any
}

// Check walks the free list once and the block region once, verifying
// invariants 1 through 6. It is read-only and side-effect free.
func (a *Allocator) Check() bool {
	return a.CheckVerbose().OK
}

// CheckVerbose is Check with a structured report of the first failure.
func (a *Allocator) CheckVerbose() CheckReport {
	if a.Heap.Size() == 0 {
		// Nothing allocated yet: no head cell and no blocks to check.
		return CheckReport{OK: true}
	}

	entries, err := a.free.Report()
	if err != nil {
		return CheckReport{false, "freelist", -1, err}
	}

	inFreeList := make(map[int64]bool, len(entries))
	prevHeader := int64(-1)
	prevFwd := freelist.Nil
	for _, e := range entries {
		if e.Addr <= prevHeader {
			return CheckReport{false, "freelist", e.Addr, fmt.Errorf("free list addresses not strictly ascending at %#x", e.Addr)}
		}

		_, allocated, err := block.ReadHeader(a.Heap, e.Addr)
		if err != nil {
			return CheckReport{false, "freelist", e.Addr, err}
		}

		if allocated {
			return CheckReport{false, "freelist", e.Addr, fmt.Errorf("free-list node %#x has its allocated flag set", e.Addr)}
		}

		if e.Size < block.MinSize || e.Size%block.W != 0 {
			return CheckReport{false, "freelist", e.Addr, fmt.Errorf("free block %#x has invalid size %d", e.Addr, e.Size)}
		}

		_, back, err := block.ReadLinks(a.Heap, e.Addr)
		if err != nil {
			return CheckReport{false, "freelist", e.Addr, err}
		}

		if back != prevFwd {
			return CheckReport{false, "freelist", e.Addr, fmt.Errorf("backlink at %#x does not invert the forward chain", e.Addr)}
		}

		inFreeList[e.Addr] = true
		prevHeader, prevFwd = e.Addr, block.Payload(e.Addr)
	}

	cur := a.blocksStart
	sawFree := false
	for cur < a.Heap.High() {
		size, allocated, err := block.ReadHeader(a.Heap, cur)
		if err != nil {
			return CheckReport{false, "header", cur, err}
		}

		if size <= 0 || size%block.W != 0 || size < block.MinSize {
			return CheckReport{false, "size", cur, fmt.Errorf("block size %d violates invariant 1/7", size)}
		}

		switch {
		case !allocated && sawFree:
			return CheckReport{false, "adjacent-free", cur, fmt.Errorf("two free blocks adjacent at %#x", cur)}
		case !allocated && !inFreeList[cur]:
			return CheckReport{false, "membership", cur, fmt.Errorf("free block %#x is not reachable from the free list", cur)}
		case allocated && inFreeList[cur]:
			return CheckReport{false, "membership", cur, fmt.Errorf("allocated block %#x is reachable from the free list", cur)}
		}

		sawFree = !allocated
		cur = block.End(cur, size)
	}

	if cur != a.Heap.High() {
		return CheckReport{false, "boundary", cur, fmt.Errorf("block walk ended at %#x, heap ends at %#x", cur, a.Heap.High())}
	}

	return CheckReport{OK: true}
}
