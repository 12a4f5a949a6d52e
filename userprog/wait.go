// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package userprog

import (
	"sync"
	"sync/atomic"
)

// An exitCell hands a child's exit status to its parent.
//
// A cell has two holders: the parent's Child record and the child's
// link to its parent. The child writes the status once, at exit; the
// parent reads it at most once, at wait. Each holder drops its
// reference exactly once, and the last to do so frees the cell.
type exitCell struct {
	refs   atomic.Int32
	status atomic.Int32
	once   sync.Once
	done   chan struct{} // closed once status is set

	freed func() // called when the last reference is dropped
}

func newExitCell(freed func()) *exitCell {
	c := &exitCell{done: make(chan struct{}), freed: freed}
	c.refs.Store(2)
	return c
}

// set records status. Only the first call has any effect.
func (c *exitCell) set(status int32) {
	c.once.Do(func() {
		c.status.Store(status)
		close(c.done)
	})
}

// get returns the status and whether it has been set.
func (c *exitCell) get() (int32, bool) {
	select {
	case <-c.done:
		return c.status.Load(), true
	default:
		return 0, false
	}
}

// wait blocks until the status is set or stop is closed.
func (c *exitCell) wait(stop <-chan struct{}) (int32, bool) {
	select {
	case <-c.done:
		return c.status.Load(), true
	case <-stop:
		return c.get()
	}
}

// release drops one reference and reports whether it was the last.
func (c *exitCell) release() bool {
	switch n := c.refs.Add(-1); {
	case n == 0:
		if c.freed != nil {
			c.freed()
		}
		return true
	case n < 0:
		panic("exitCell: released too many times")
	}
	return false
}

// A Child is a parent's record of one child process it has spawned.
type Child struct {
	Pid  int
	cell *exitCell
}

// Status returns the child's exit status and whether it has exited.
func (c *Child) Status() (int32, bool) { return c.cell.get() }

// Children is a process's registry of the children it has not yet
// waited for. A registry belongs to one process and is never shared;
// the only thing a child touches is the exitCell.
type Children struct {
	list []*Child
}

// Register records a newly spawned child.
// It returns nil if pid is already registered.
func (cs *Children) Register(pid int, cell *exitCell) *Child {
	if cs.Find(pid) != nil {
		return nil
	}
	c := &Child{Pid: pid, cell: cell}
	cs.list = append(cs.list, c)
	return c
}

// Find returns the record for pid, or nil.
func (cs *Children) Find(pid int) *Child {
	for _, c := range cs.list {
		if c.Pid == pid {
			return c
		}
	}
	return nil
}

// Remove detaches c and drops the parent's reference to its cell.
func (cs *Children) Remove(c *Child) {
	for i, c1 := range cs.list {
		if c1 == c {
			cs.list = append(cs.list[:i], cs.list[i+1:]...)
			c.cell.release()
			return
		}
	}
}

// RemoveAll detaches every record, disowning children that are
// still running. Their cells are freed when they exit.
func (cs *Children) RemoveAll() {
	for _, c := range cs.list {
		c.cell.release()
	}
	cs.list = nil
}

// Len returns the number of registered children.
func (cs *Children) Len() int { return len(cs.list) }
