// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package userprog

import (
	"slices"
	"testing"
)

func openN(t *testing.T, d *Disk, tab *FileTable, name string, n int) []int {
	t.Helper()
	var fds []int
	for i := 0; i < n; i++ {
		f, err := d.Open(name)
		if err != nil {
			t.Fatal(err)
		}
		fds = append(fds, tab.Alloc(f))
	}
	return fds
}

func TestFileTableMonotonic(t *testing.T) {
	_, _, d := newTestSystem(t)
	tab := NewFileTable(0)
	fds := openN(t, d, &tab, "real.txt", 3)
	if !slices.Equal(fds, []int{2, 3, 4}) {
		t.Fatalf("fds = %v, want [2 3 4]", fds)
	}
	if !tab.Close(3) {
		t.Fatalf("Close(3) = false, want true")
	}
	fds = openN(t, d, &tab, "real.txt", 2)
	if !slices.Equal(fds, []int{5, 6}) {
		t.Fatalf("fds after close = %v, want [5 6]", fds)
	}
	if have := tab.FDs(); !slices.Equal(have, []int{2, 4, 5, 6}) {
		t.Fatalf("FDs() = %v, want [2 4 5 6]", have)
	}
}

func TestFileTableCloseTwice(t *testing.T) {
	_, _, d := newTestSystem(t)
	tab := NewFileTable(0)
	openN(t, d, &tab, "real.txt", 2)
	if !tab.Close(2) {
		t.Fatalf("first Close(2) = false, want true")
	}
	// diskFile.Close panics if called twice.
	if tab.Close(2) {
		t.Fatalf("second Close(2) = true, want false")
	}
	if n := d.OpenCount("real.txt"); n != 1 {
		t.Fatalf("open count = %d, want 1", n)
	}
	if tab.Get(2) != nil || tab.Get(3) == nil {
		t.Fatalf("Get after close: fd 2 open = %v, fd 3 open = %v", tab.Get(2) != nil, tab.Get(3) != nil)
	}
}

func TestFileTableCloseAll(t *testing.T) {
	_, _, d := newTestSystem(t)
	tab := NewFileTable(0)
	openN(t, d, &tab, "sample.txt", 3)
	if !tab.Close(CloseAll) {
		t.Fatalf("Close(CloseAll) = false, want true")
	}
	if tab.Len() != 0 || d.OpenCount("sample.txt") != 0 {
		t.Fatalf("after CloseAll: %d entries, %d open files, want 0, 0", tab.Len(), d.OpenCount("sample.txt"))
	}
	if tab.Close(CloseAll) {
		t.Fatalf("second Close(CloseAll) = true, want false")
	}
	if fds := openN(t, d, &tab, "sample.txt", 1); fds[0] != 5 {
		t.Fatalf("fd after CloseAll = %d, want 5", fds[0])
	}
}

func TestFileTableFull(t *testing.T) {
	_, _, d := newTestSystem(t)
	tab := NewFileTable(2)
	if fds := openN(t, d, &tab, "empty", 2); !slices.Equal(fds, []int{2, 3}) {
		t.Fatalf("fds = %v, want [2 3]", fds)
	}
	f, err := d.Open("empty")
	if err != nil {
		t.Fatal(err)
	}
	if fd := tab.Alloc(f); fd != -1 {
		t.Fatalf("Alloc on full table = %d, want -1", fd)
	}
	f.Close()
	tab.Close(2)
	if fds := openN(t, d, &tab, "empty", 1); fds[0] != 4 {
		t.Fatalf("fd after freeing a slot = %d, want 4", fds[0])
	}
}
