// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package userprog

import "testing"

func TestExitCell(t *testing.T) {
	freed := 0
	c := newExitCell(func() { freed++ })
	if _, ok := c.get(); ok {
		t.Fatalf("new cell has a status")
	}
	c.set(5)
	c.set(6)
	if s, ok := c.get(); !ok || s != 5 {
		t.Fatalf("get = %d, %v, want 5, true", s, ok)
	}
	if c.release() || freed != 0 {
		t.Fatalf("first release freed the cell")
	}
	if !c.release() || freed != 1 {
		t.Fatalf("second release did not free the cell")
	}
}

func TestExitCellWait(t *testing.T) {
	c := newExitCell(nil)
	go c.set(-200)
	if s, ok := c.wait(nil); !ok || s != -200 {
		t.Fatalf("wait = %d, %v, want -200, true", s, ok)
	}

	stop := make(chan struct{})
	close(stop)
	if _, ok := newExitCell(nil).wait(stop); ok {
		t.Fatalf("wait on stopped machine reported a status")
	}
}

func TestChildren(t *testing.T) {
	var cs Children
	freed := 0
	cells := make([]*exitCell, 3)
	for i := range cells {
		cells[i] = newExitCell(func() { freed++ })
		if cs.Register(10+i, cells[i]) == nil {
			t.Fatalf("Register(%d) failed", 10+i)
		}
	}
	if cs.Register(11, newExitCell(nil)) != nil {
		t.Fatalf("Register of a duplicate pid succeeded")
	}
	if cs.Find(99) != nil {
		t.Fatalf("Find(99) found a child")
	}

	c := cs.Find(11)
	if c == nil || c.Pid != 11 {
		t.Fatalf("Find(11) = %v", c)
	}
	cells[1].set(3)
	if s, ok := c.Status(); !ok || s != 3 {
		t.Fatalf("Status = %d, %v, want 3, true", s, ok)
	}
	cells[1].release() // the child's reference
	cs.Remove(c)
	if freed != 1 || cs.Len() != 2 || cs.Find(11) != nil {
		t.Fatalf("after Remove: freed=%d len=%d", freed, cs.Len())
	}

	// Children still running are disowned; their cells outlive the parent.
	cs.RemoveAll()
	if cs.Len() != 0 || freed != 1 {
		t.Fatalf("after RemoveAll: freed=%d len=%d, want 1, 0", freed, cs.Len())
	}
	cells[0].release()
	cells[2].release()
	if freed != 3 {
		t.Fatalf("freed = %d after children exit, want 3", freed)
	}
}

func TestClampStatus(t *testing.T) {
	for _, tt := range []struct{ in, out int32 }{
		{5, 5}, {0, 0}, {-1, -1}, {-200, -1}, {-1 << 31, -1},
	} {
		if have := clampStatus(tt.in); have != tt.out {
			t.Errorf("clampStatus(%d) = %d, want %d", tt.in, have, tt.out)
		}
	}
}
