// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package alloc

import "fmt"

// ErrInvalidPointer reports a pointer rejected by the opt-in Debug checks in
// Free and Realloc (see Allocator.Debug). Outside of Debug mode, passing an
// invalid pointer to Free or Realloc is undefined behavior.
type ErrInvalidPointer struct {
	Name string
	Addr int64
}

func (e *ErrInvalidPointer) Error() string {
	return fmt.Sprintf("alloc: %s: invalid pointer %#x", e.Name, e.Addr)
}
