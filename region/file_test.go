// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package region

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestFile(t *testing.T) *File {
	t.Helper()
	f, err := os.CreateTemp("", "heapalloc-region-*")
	require.NoError(t, err)
	t.Cleanup(func() { os.Remove(f.Name()) })

	r, err := NewFile(f)
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func TestFileExtendGrows(t *testing.T) {
	r := newTestFile(t)
	require.Equal(t, int64(0), r.Size())

	at, err := r.Extend(16)
	require.NoError(t, err)
	require.Equal(t, int64(0), at)
	require.Equal(t, int64(16), r.Size())
	require.Equal(t, int64(16), r.High())

	at, err = r.Extend(8)
	require.NoError(t, err)
	require.Equal(t, int64(16), at)
	require.Equal(t, int64(24), r.Size())
}

func TestFileReadWriteRoundTrip(t *testing.T) {
	r := newTestFile(t)
	_, err := r.Extend(32)
	require.NoError(t, err)

	want := []byte("abcdefgh")
	_, err = r.WriteAt(want, 8)
	require.NoError(t, err)

	got := make([]byte, len(want))
	_, err = r.ReadAt(got, 8)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestFileOutOfRangeAccess(t *testing.T) {
	r := newTestFile(t)
	_, err := r.Extend(8)
	require.NoError(t, err)

	_, err = r.ReadAt(make([]byte, 4), 8)
	require.Error(t, err)

	_, err = r.WriteAt(make([]byte, 4), -1)
	require.Error(t, err)
}

func TestFileExtendRejectsNegative(t *testing.T) {
	r := newTestFile(t)
	_, err := r.Extend(-1)
	require.Error(t, err)
}

func TestFileResumesExistingContent(t *testing.T) {
	f, err := os.CreateTemp("", "heapalloc-region-*")
	require.NoError(t, err)
	defer os.Remove(f.Name())

	r1, err := NewFile(f)
	require.NoError(t, err)
	_, err = r1.Extend(16)
	require.NoError(t, err)
	_, err = r1.WriteAt([]byte("persisted"), 0)
	require.NoError(t, err)
	require.NoError(t, r1.Sync())
	require.NoError(t, r1.Close())

	f2, err := os.OpenFile(f.Name(), os.O_RDWR, 0)
	require.NoError(t, err)
	r2, err := NewFile(f2)
	require.NoError(t, err)
	defer r2.Close()

	require.Equal(t, int64(16), r2.Size())
	got := make([]byte, len("persisted"))
	_, err = r2.ReadAt(got, 0)
	require.NoError(t, err)
	require.Equal(t, "persisted", string(got))
}
