// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package block translates between the header, payload, and free-list-node
// positions of a block given its header address and size. It is pure
// pointer/offset arithmetic plus header-word encode/decode: no allocation
// policy lives here, only the layout every other component agrees on.
//
// A block is a contiguous range of a region.Heap beginning with a header
// word whose low bit is the allocated flag and whose remaining bits are the
// total block size in bytes (including the header). Free blocks additionally
// carry two link words immediately after the header; used blocks do not.
package block

import (
	"fmt"

	"github.com/cznic/heapalloc/region"
)

// W is the machine word size; P is the size of a free-list link, here equal
// to W since links are stored as region.Heap offsets (int64).
const (
	W = region.W
	P = region.W

	// MinSize is the smallest legal block: header plus room for both
	// free-list links.
	MinSize = W + 2*P

	flagMask = int64(1)
	sizeMask = ^flagMask
)

// AlignUp rounds n up to the next multiple of w.
func AlignUp(n, w int64) int64 {
	return (n + w - 1) / w * w
}

// Payload returns the address of the first payload byte of the block at h -
// for a free block this also the address of its forward link.
func Payload(h int64) int64 { return h + W }

// Backlink returns the address of the backward link of the free block at h.
// Only meaningful for free blocks.
func Backlink(h int64) int64 { return h + W + P }

// End returns the header address of the block immediately following the one
// at h with total size size - or one-past-heap if h is the last block.
func End(h, size int64) int64 { return h + size }

// ErrCorruptHeader reports a header whose size field fails the block-size
// invariants (positive multiple of W, at least MinSize).
type ErrCorruptHeader struct {
	Addr int64
	Raw  int64
}

func (e *ErrCorruptHeader) Error() string {
	return fmt.Sprintf("block: corrupt header at %#x: raw size field %#x", e.Addr, e.Raw)
}

// ReadHeader reads and decodes the header word at h, returning the total
// block size (header included) and whether the allocated flag is set.
func ReadHeader(h region.Heap, addr int64) (size int64, allocated bool, err error) {
	raw, err := region.ReadWord(h, addr)
	if err != nil {
		return 0, false, err
	}

	size = raw &^ flagMask
	allocated = raw&flagMask != 0
	if size <= 0 || size%W != 0 || size < MinSize {
		return 0, false, &ErrCorruptHeader{addr, raw}
	}

	return size, allocated, nil
}

// WriteHeader encodes size and the allocated flag into the header word at h.
func WriteHeader(heap region.Heap, addr int64, size int64, allocated bool) error {
	raw := size &^ flagMask
	if allocated {
		raw |= flagMask
	}

	return region.WriteWord(heap, addr, raw)
}

// ReadLinks reads the forward and backward free-list links of the free block
// at h.
func ReadLinks(heap region.Heap, h int64) (fwd, back int64, err error) {
	if fwd, err = region.ReadWord(heap, Payload(h)); err != nil {
		return 0, 0, err
	}

	if back, err = region.ReadWord(heap, Backlink(h)); err != nil {
		return 0, 0, err
	}

	return fwd, back, nil
}

// WriteLinks writes the forward and backward free-list links of the free
// block at h.
func WriteLinks(heap region.Heap, h int64, fwd, back int64) error {
	if err := region.WriteWord(heap, Payload(h), fwd); err != nil {
		return err
	}

	return region.WriteWord(heap, Backlink(h), back)
}

// HeaderFromForward recovers a block's header address from the free-list
// "node identity" address - the address of its forward link - the
// deliberate choice to store list nodes at the forward-link position
// rather than the header.
func HeaderFromForward(fwd int64) int64 { return fwd - W }
