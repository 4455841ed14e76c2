// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// A os.File backed Heap: no transactional guarantees, intended for a
// persistent or oversized region rather than structural-integrity-critical
// storage.

package region

import (
	"fmt"
	"os"

	"github.com/cznic/mathutil"
)

var _ Heap = (*File)(nil)

// File is a Heap backed by an os.File, growing the file with Truncate.
// Low() is always 0: a region File owns the whole underlying file, there is
// no notion of sharing it with other data.
type File struct {
	f    *os.File
	size int64
}

// NewFile returns a File over f, whose current size becomes the region's
// initial Size(). f is not truncated to zero - passing a non-empty,
// previously-populated file resumes the region it holds.
func NewFile(f *os.File) (*File, error) {
	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}

	return &File{f: f, size: fi.Size()}, nil
}

// Low implements Heap.
func (r *File) Low() int64 { return 0 }

// High implements Heap.
func (r *File) High() int64 { return r.size }

// Size implements Heap.
func (r *File) Size() int64 { return r.size }

// Extend implements Heap. It grows the file with Truncate.
func (r *File) Extend(delta int64) (int64, error) {
	if delta < 0 {
		return 0, &ErrExtend{delta, fmt.Errorf("negative extend")}
	}

	at := r.size
	newSize := r.size + delta
	if err := r.f.Truncate(newSize); err != nil {
		return 0, &ErrExtend{delta, err}
	}

	r.size = newSize
	return at, nil
}

// ReadAt implements Heap.
func (r *File) ReadAt(b []byte, off int64) (int, error) {
	if off < 0 || off+int64(len(b)) > r.size {
		return 0, fmt.Errorf("region: ReadAt out of range: off=%d len=%d size=%d", off, len(b), r.size)
	}

	return r.f.ReadAt(b, off)
}

// WriteAt implements Heap. A write that would reach past Size() is rejected
// before anything is written; size is then kept at the high watermark via
// mathutil.MaxInt64, which after that range check never raises it.
func (r *File) WriteAt(b []byte, off int64) (int, error) {
	if off < 0 || off+int64(len(b)) > r.size {
		return 0, fmt.Errorf("region: WriteAt out of range: off=%d len=%d size=%d", off, len(b), r.size)
	}

	n, err := r.f.WriteAt(b, off)
	r.size = mathutil.MaxInt64(r.size, off+int64(n))
	return n, err
}

// Sync flushes the underlying file.
func (r *File) Sync() error { return r.f.Sync() }

// Close closes the underlying file.
func (r *File) Close() error { return r.f.Close() }
