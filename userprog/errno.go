// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package userprog

import (
	"errors"
	"fmt"
)

var (
	ErrSegFault    = errors.New("segmentation fault")
	ErrNoFile      = errors.New("too many open files")
	ErrNotExist    = errors.New("file does not exist")
	ErrInvalidName = errors.New("invalid file name")
	ErrNoProgram   = errors.New("no such program")
	ErrHalted      = errors.New("machine halted")
)

// A Fault is a user address the kernel refused to dereference.
// The kernel raises it with panic at the point of the access;
// the process that supplied the address is killed with ExitFail.
type Fault uint32

func (f Fault) Error() string {
	return fmt.Sprintf("page fault at %#08x", uint32(f))
}

func (f Fault) Is(target error) bool {
	return target == ErrSegFault
}

// catch recovers a Fault raised by fn and returns it.
// Any other panic continues.
func catch(fn func()) (fault error) {
	defer func() {
		if e := recover(); e != nil {
			f, ok := e.(Fault)
			if !ok {
				panic(e)
			}
			fault = f
		}
	}()
	fn()
	return nil
}
