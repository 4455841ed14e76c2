// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package region

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSliceExtendGrows(t *testing.T) {
	s := NewSlice()
	require.Equal(t, int64(0), s.Size())

	at, err := s.Extend(16)
	require.NoError(t, err)
	require.Equal(t, int64(0), at)
	require.Equal(t, int64(16), s.Size())
	require.Equal(t, int64(16), s.High())

	at, err = s.Extend(8)
	require.NoError(t, err)
	require.Equal(t, int64(16), at)
	require.Equal(t, int64(24), s.Size())
}

func TestSliceReadWriteRoundTrip(t *testing.T) {
	s := NewSlice()
	_, err := s.Extend(32)
	require.NoError(t, err)

	want := []byte("abcdefgh")
	_, err = s.WriteAt(want, 8)
	require.NoError(t, err)

	got := make([]byte, len(want))
	_, err = s.ReadAt(got, 8)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestSliceOutOfRangeAccess(t *testing.T) {
	s := NewSlice()
	_, err := s.Extend(8)
	require.NoError(t, err)

	_, err = s.ReadAt(make([]byte, 4), 8)
	require.Error(t, err)

	_, err = s.WriteAt(make([]byte, 4), -1)
	require.Error(t, err)
}

func TestSliceExtendRejectsNegative(t *testing.T) {
	s := NewSlice()
	_, err := s.Extend(-1)
	require.Error(t, err)
}
