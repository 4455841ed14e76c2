// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// A memory-backed Heap, backed by one flat, growable []byte rather than a
// sparse page map - an arena has no notion of holes to punch or a file to
// make sparse.

package region

import "fmt"

var _ Heap = (*Slice)(nil)

// Slice is a Heap backed by a single growable []byte. It is the default
// region used by the allocator package and by all of its tests.
type Slice struct {
	buf []byte
	low int64
}

// NewSlice returns an empty Slice. Its Low() is always 0.
func NewSlice() *Slice {
	return &Slice{}
}

// Low implements Heap.
func (s *Slice) Low() int64 { return s.low }

// High implements Heap.
func (s *Slice) High() int64 { return s.low + int64(len(s.buf)) }

// Size implements Heap.
func (s *Slice) Size() int64 { return int64(len(s.buf)) }

// Extend implements Heap. It always succeeds unless delta is negative.
func (s *Slice) Extend(delta int64) (int64, error) {
	if delta < 0 {
		return 0, &ErrExtend{delta, fmt.Errorf("negative extend")}
	}

	at := s.High()
	s.buf = append(s.buf, make([]byte, delta)...)
	return at, nil
}

// ReadAt implements Heap.
func (s *Slice) ReadAt(b []byte, off int64) (int, error) {
	o := off - s.low
	if o < 0 || o+int64(len(b)) > int64(len(s.buf)) {
		return 0, fmt.Errorf("region: ReadAt out of range: off=%d len=%d size=%d", off, len(b), len(s.buf))
	}

	return copy(b, s.buf[o:o+int64(len(b))]), nil
}

// WriteAt implements Heap.
func (s *Slice) WriteAt(b []byte, off int64) (int, error) {
	o := off - s.low
	if o < 0 || o+int64(len(b)) > int64(len(s.buf)) {
		return 0, fmt.Errorf("region: WriteAt out of range: off=%d len=%d size=%d", off, len(b), len(s.buf))
	}

	return copy(s.buf[o:o+int64(len(b))], b), nil
}
