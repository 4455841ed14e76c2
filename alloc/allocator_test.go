// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package alloc

import (
	"testing"

	"github.com/cznic/heapalloc/block"
	"github.com/cznic/heapalloc/region"
	"github.com/stretchr/testify/require"
)

func newAllocator(t *testing.T) *Allocator {
	t.Helper()
	return New(region.NewSlice())
}

func TestSingleAllocFreeCycle(t *testing.T) {
	a := newAllocator(t)

	p1, err := a.Alloc(24)
	require.NoError(t, err)
	require.NotZero(t, p1)
	require.True(t, a.Check())

	require.NoError(t, a.Free(p1))
	require.True(t, a.Check())

	n, err := a.freeListLen()
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestBestFitSplitAtHighEnd(t *testing.T) {
	a := newAllocator(t)

	aAddr, err := a.Alloc(64)
	require.NoError(t, err)
	_, err = a.Alloc(16)
	require.NoError(t, err)
	cAddr, err := a.Alloc(64)
	require.NoError(t, err)

	require.NoError(t, a.Free(aAddr))
	require.NoError(t, a.Free(cAddr))
	require.True(t, a.Check())

	d, err := a.Alloc(24)
	require.NoError(t, err)
	require.True(t, a.Check())

	// d must land within the original a or c block's byte span: best-fit
	// picks whichever of the two equally-sized free blocks was found
	// first, and the high-end split places the new allocation at the top
	// of that span, not necessarily at its original header address.
	aHeader, cHeader := aAddr-block.W, cAddr-block.W
	const origSpan = 72 // align_up(max(64,16)+W, W)
	dHeader := d - block.W
	inSpan := func(base int64) bool { return dHeader >= base && dHeader < base+origSpan }
	require.True(t, inSpan(aHeader) || inSpan(cHeader),
		"expected d (header %#x) inside the original a [%#x,+%d) or c [%#x,+%d) span",
		dHeader, aHeader, origSpan, cHeader, origSpan)
}

func TestCoalesceBothSides(t *testing.T) {
	a := newAllocator(t)

	x, err := a.Alloc(32)
	require.NoError(t, err)
	y, err := a.Alloc(32)
	require.NoError(t, err)
	z, err := a.Alloc(32)
	require.NoError(t, err)

	require.NoError(t, a.Free(x))
	require.NoError(t, a.Free(z))
	require.NoError(t, a.Free(y))
	require.True(t, a.Check())

	n, err := a.freeListLen()
	require.NoError(t, err)
	require.Equal(t, 1, n)

	st, err := a.Stats()
	require.NoError(t, err)
	require.Zero(t, st.AllocAtoms)
}

func TestReallocGrowsIntoRightNeighborFree(t *testing.T) {
	a := newAllocator(t)

	x, err := a.Alloc(32)
	require.NoError(t, err)
	writeAll(t, a, x, fill(32, 0xAB))

	y, err := a.Alloc(32)
	require.NoError(t, err)
	require.NoError(t, a.Free(y))

	r, err := a.Realloc(x, 48)
	require.NoError(t, err)
	require.Equal(t, x, r)
	require.True(t, a.Check())
	require.Equal(t, fill(32, 0xAB), readAll(t, a, r, 32))
}

func TestReallocGrowsAtHeapEnd(t *testing.T) {
	a := newAllocator(t)

	x, err := a.Alloc(32)
	require.NoError(t, err)

	before := a.Heap.Size()
	r, err := a.Realloc(x, 1024)
	require.NoError(t, err)
	require.Equal(t, x, r)
	require.True(t, a.Check())

	wantGrowth := block.AlignUp(1024+block.W, block.W) - block.AlignUp(32+block.W, block.W)
	require.Equal(t, wantGrowth, a.Heap.Size()-before)
}

func TestReallocFallbackCopy(t *testing.T) {
	a := newAllocator(t)

	x, err := a.Alloc(32)
	require.NoError(t, err)
	writeAll(t, a, x, fill(32, 0xCD))

	_, err = a.Alloc(32)
	require.NoError(t, err)

	r, err := a.Realloc(x, 1024)
	require.NoError(t, err)
	require.NotEqual(t, x, r)
	require.True(t, a.Check())
	require.Equal(t, fill(32, 0xCD), readAll(t, a, r, 32))
}

func TestReallocNullPointerActsLikeAlloc(t *testing.T) {
	a := newAllocator(t)
	p, err := a.Realloc(0, 16)
	require.NoError(t, err)
	require.NotZero(t, p)
	require.True(t, a.Check())
}

func TestReallocZeroSizeFreesAndReturnsZero(t *testing.T) {
	a := newAllocator(t)
	p, err := a.Alloc(16)
	require.NoError(t, err)

	r, err := a.Realloc(p, 0)
	require.NoError(t, err)
	require.Zero(t, r)
	require.True(t, a.Check())
}

func TestReallocShrinkOrEqualIsIdempotent(t *testing.T) {
	a := newAllocator(t)
	p, err := a.Alloc(64)
	require.NoError(t, err)

	h := p - block.W
	before, _, err := block.ReadHeader(a.Heap, h)
	require.NoError(t, err)

	r, err := a.Realloc(p, 16)
	require.NoError(t, err)
	require.Equal(t, p, r)

	after, _, err := block.ReadHeader(a.Heap, h)
	require.NoError(t, err)
	require.Equal(t, before, after, "L3: shrink-or-equal must not mutate the header")
}

func TestAllocReturnedPointersAreWordAligned(t *testing.T) {
	a := newAllocator(t)
	for _, n := range []int64{1, 7, 8, 9, 31, 64, 100, 4096} {
		p, err := a.Alloc(n)
		require.NoError(t, err)
		require.Zero(t, p%block.W, "payload %#x for size %d is not %d-aligned", p, n, block.W)
	}
}

func TestFreeOfEverythingLeavesWholeRegionFree(t *testing.T) {
	a := newAllocator(t)
	var ptrs []int64
	for i := 0; i < 20; i++ {
		p, err := a.Alloc(int64(8 + i*3))
		require.NoError(t, err)
		ptrs = append(ptrs, p)
	}
	require.True(t, a.Check())

	for _, p := range ptrs {
		require.NoError(t, a.Free(p))
	}
	require.True(t, a.Check())

	n, err := a.freeListLen()
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestFreeListReportMatchesLen(t *testing.T) {
	a := newAllocator(t)

	x, err := a.Alloc(32)
	require.NoError(t, err)
	y, err := a.Alloc(32)
	require.NoError(t, err)
	require.NoError(t, a.Free(x))
	require.NoError(t, a.Free(y))
	require.True(t, a.Check())

	entries, err := a.FreeListReport()
	require.NoError(t, err)

	n, err := a.freeListLen()
	require.NoError(t, err)
	require.Len(t, entries, n)

	for i := 1; i < len(entries); i++ {
		require.Less(t, entries[i-1].Addr, entries[i].Addr, "freelist report must be address-ordered")
	}
}

// --- helpers ---

func (a *Allocator) freeListLen() (int, error) {
	return a.free.Len()
}

func fill(n int, b byte) []byte {
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = b
	}
	return buf
}

func writeAll(t *testing.T, a *Allocator, addr int64, b []byte) {
	t.Helper()
	_, err := a.Heap.WriteAt(b, addr)
	require.NoError(t, err)
}

func readAll(t *testing.T, a *Allocator, addr int64, n int) []byte {
	t.Helper()
	buf := make([]byte, n)
	_, err := a.Heap.ReadAt(buf, addr)
	require.NoError(t, err)
	return buf
}
