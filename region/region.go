// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package region provides the grow-only byte region the allocator package
// builds on top of. A Heap is the sole source of address space: the only
// mutation it supports is extending itself by N bytes, modeling sbrk(2).
package region

import (
	"encoding/binary"
	"fmt"
)

// W is the machine word size in bytes that every block size and every
// returned payload address is a multiple of.
const W = 8

// ErrExtend reports a failed attempt to grow a Heap.
type ErrExtend struct {
	Delta int64
	Cause error
}

func (e *ErrExtend) Error() string {
	return fmt.Sprintf("region: extend by %d bytes failed: %v", e.Delta, e.Cause)
}

func (e *ErrExtend) Unwrap() error { return e.Cause }

// Heap is a []byte-like model of a single contiguous, grow-only memory
// region. It is not safe for concurrent use: callers must serialize access
// themselves.
//
// Addresses are int64 byte offsets from the region's start, not raw
// pointers - the "arena-with-indices" representation. Offset 0 is reserved
// for the allocator's free-list head cell and therefore never denotes a
// valid block.
type Heap interface {
	// Low is the address of the first byte of the region. It is stable
	// for the lifetime of the Heap.
	Low() int64

	// High is the address one past the last valid byte currently in the
	// region (i.e. Low()+Size()).
	High() int64

	// Size is High() - Low().
	Size() int64

	// Extend grows the region by delta bytes and returns the address of
	// the first new byte. On failure it returns a non-nil error and the
	// region is left exactly as it was.
	Extend(delta int64) (int64, error)

	// ReadAt and WriteAt address absolute region offsets, like
	// os.File.ReadAt/WriteAt. Both off and off+len(b) must be in
	// [Low(), High()].
	ReadAt(b []byte, off int64) (int, error)
	WriteAt(b []byte, off int64) (int, error)
}

// ReadWord reads the W-byte, little-endian word at off.
func ReadWord(h Heap, off int64) (int64, error) {
	var b [W]byte
	if _, err := h.ReadAt(b[:], off); err != nil {
		return 0, err
	}

	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// WriteWord writes v as a W-byte, little-endian word at off.
func WriteWord(h Heap, off int64, v int64) error {
	var b [W]byte
	binary.LittleEndian.PutUint64(b[:], uint64(v))
	_, err := h.WriteAt(b[:], off)
	return err
}
