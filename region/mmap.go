// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !windows

// A Heap backed by a single anonymous mmap(2) reservation. extend is
// implemented as a watermark bump within the reservation rather than a real
// remap, the same trick sbrk(2) itself plays against the kernel's notion of
// the process break.

package region

import (
	"fmt"

	"golang.org/x/sys/unix"
)

var _ Heap = (*Mmap)(nil)

// Mmap is a Heap backed by one fixed-size anonymous mapping. Extend fails
// once the watermark would exceed the reservation; callers that expect to
// grow past it should size reserveBytes generously, there is no remapping.
type Mmap struct {
	data []byte // the full reservation
	used int64  // watermark: bytes currently "extended"
}

// NewMmap reserves reserveBytes of anonymous memory and returns a Heap over
// it. The reservation itself does not count toward Size(); only bytes handed
// out via Extend do.
func NewMmap(reserveBytes int) (*Mmap, error) {
	data, err := unix.Mmap(-1, 0, reserveBytes, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, fmt.Errorf("region: mmap reserve %d bytes: %w", reserveBytes, err)
	}

	return &Mmap{data: data}, nil
}

// Close unmaps the reservation. The Mmap must not be used afterward.
func (m *Mmap) Close() error {
	return unix.Munmap(m.data)
}

// Low implements Heap.
func (m *Mmap) Low() int64 { return 0 }

// High implements Heap.
func (m *Mmap) High() int64 { return m.used }

// Size implements Heap.
func (m *Mmap) Size() int64 { return m.used }

// Extend implements Heap.
func (m *Mmap) Extend(delta int64) (int64, error) {
	if delta < 0 {
		return 0, &ErrExtend{delta, fmt.Errorf("negative extend")}
	}

	if m.used+delta > int64(len(m.data)) {
		return 0, &ErrExtend{delta, fmt.Errorf("reservation of %d bytes exhausted at watermark %d", len(m.data), m.used)}
	}

	at := m.used
	m.used += delta
	return at, nil
}

// ReadAt implements Heap.
func (m *Mmap) ReadAt(b []byte, off int64) (int, error) {
	if off < 0 || off+int64(len(b)) > m.used {
		return 0, fmt.Errorf("region: ReadAt out of range: off=%d len=%d used=%d", off, len(b), m.used)
	}

	return copy(b, m.data[off:off+int64(len(b))]), nil
}

// WriteAt implements Heap.
func (m *Mmap) WriteAt(b []byte, off int64) (int, error) {
	if off < 0 || off+int64(len(b)) > m.used {
		return 0, fmt.Errorf("region: WriteAt out of range: off=%d len=%d used=%d", off, len(b), m.used)
	}

	return copy(m.data[off:off+int64(len(b))], b), nil
}
