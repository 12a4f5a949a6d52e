// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package userprog

import "io"

/*
 * open system call
 */
func (p *Proc) open(name string) int32 {
	fd := -1
	p.Sys.withFS(func() {
		f, err := p.Sys.FS.Open(name)
		if err != nil {
			return
		}
		if fd = p.Files.Alloc(f); fd < 0 {
			f.Close()
		}
	})
	return int32(fd)
}

/*
 * filesize system call
 */
func (p *Proc) filesize(fd int) int32 {
	f := p.Files.Get(fd)
	if f == nil {
		return -1
	}
	var n int
	p.Sys.withFS(func() {
		n = f.Size()
	})
	return int32(n)
}

/*
 * read system call.
 * Descriptor 0 reads the console.
 */
func (p *Proc) read(fd int, buf [][]byte) int32 {
	if fd == STDIN_FILENO {
		return p.Sys.readConsole(buf)
	}
	f := p.Files.Get(fd)
	if f == nil {
		return -1
	}
	var n int
	p.Sys.withFS(func() {
		n = rdwr(f.Read, buf)
	})
	return int32(n)
}

/*
 * write system call.
 * Descriptor 1 writes the console.
 */
func (p *Proc) write(fd int, buf [][]byte) int32 {
	if fd == STDOUT_FILENO {
		return p.Sys.writeConsole(buf)
	}
	f := p.Files.Get(fd)
	if f == nil {
		return -1
	}
	var n int
	p.Sys.withFS(func() {
		n = rdwr(f.Write, buf)
	})
	return int32(n)
}

// rdwr applies op to each segment of buf until one comes up short.
func rdwr(op func([]byte) (int, error), buf [][]byte) int {
	total := 0
	for _, b := range buf {
		n, err := op(b)
		total += n
		if err != nil || n < len(b) {
			break
		}
	}
	return total
}

/*
 * seek system call
 */
func (p *Proc) seek(fd int, pos uint32) {
	f := p.Files.Get(fd)
	if f == nil {
		return
	}
	p.Sys.withFS(func() {
		f.SetOffset(int(pos))
	})
}

/*
 * tell system call
 */
func (p *Proc) tell(fd int) int32 {
	f := p.Files.Get(fd)
	if f == nil {
		return -1
	}
	var off int
	p.Sys.withFS(func() {
		off = f.Offset()
	})
	return int32(off)
}

/*
 * close system call.
 * Only real descriptors can be closed from user mode;
 * CloseAll in particular is ignored.
 */
func (p *Proc) close(fd int) {
	if fd < FirstFD {
		return
	}
	p.Sys.withFS(func() {
		p.Files.Close(fd)
	})
}

func (sys *System) readConsole(buf [][]byte) int32 {
	if sys.Input == nil {
		return 0
	}
	sys.inMu.Lock()
	defer sys.inMu.Unlock()
	total := 0
	for _, b := range buf {
		n, err := io.ReadFull(sys.Input, b)
		total += n
		if err != nil {
			break
		}
	}
	return int32(total)
}

func (sys *System) writeConsole(buf [][]byte) int32 {
	sys.conMu.Lock()
	defer sys.conMu.Unlock()
	total := 0
	for _, b := range buf {
		n, err := sys.Console.Write(b)
		total += n
		if err != nil {
			break
		}
	}
	return int32(total)
}
