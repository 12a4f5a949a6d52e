// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package userprog

/*
 * A FileTable maps a process's descriptors to its open files.
 * Descriptors come from a per-process counter that starts at
 * FirstFD and only goes up: a closed descriptor is never handed
 * out again. Entries are kept in the order they were opened.
 * A table belongs to one process and is never shared.
 */
type FileTable struct {
	next    int
	max     int
	entries []fileEntry
}

type fileEntry struct {
	fd   int
	file File
}

// NewFileTable returns an empty table holding at most max files.
// A max of zero or less means NOFILE.
func NewFileTable(max int) FileTable {
	if max <= 0 {
		max = NOFILE
	}
	return FileTable{next: FirstFD, max: max}
}

// Alloc takes ownership of f and returns its new descriptor,
// or -1 if the table is full. On failure f is left open.
func (t *FileTable) Alloc(f File) int {
	if len(t.entries) >= t.max {
		return -1
	}
	fd := t.next
	t.next++
	t.entries = append(t.entries, fileEntry{fd, f})
	return fd
}

/*
 * Convert a user supplied
 * file descriptor into an open file.
 */
func (t *FileTable) Get(fd int) File {
	for _, e := range t.entries {
		if e.fd == fd {
			return e.file
		}
	}
	return nil
}

// Close closes fd and removes its entry, reporting whether fd was open.
// Close(CloseAll) closes every open file, in the order they were opened.
func (t *FileTable) Close(fd int) bool {
	if fd == CloseAll {
		n := len(t.entries)
		for _, e := range t.entries {
			e.file.Close()
		}
		t.entries = nil
		return n > 0
	}
	for i, e := range t.entries {
		if e.fd == fd {
			t.entries = append(t.entries[:i], t.entries[i+1:]...)
			e.file.Close()
			return true
		}
	}
	return false
}

// Len returns the number of open files.
func (t *FileTable) Len() int { return len(t.entries) }

// FDs returns the open descriptors in the order they were opened.
func (t *FileTable) FDs() []int {
	fds := make([]int, len(t.entries))
	for i, e := range t.entries {
		fds[i] = e.fd
	}
	return fds
}
