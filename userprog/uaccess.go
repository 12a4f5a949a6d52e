// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package userprog

import "rsc.io/pintos/ia32"

// Access to user memory from kernel mode.
//
// Every address a user program hands the kernel passes through
// translate before it is read or written. None of these routines
// block or take locks, so they may run while the file system is busy.

// Dereferenceable reports whether the kernel may dereference addr
// on behalf of p: addr must lie in [UserBase, PhysBase) and be mapped.
func (p *Proc) Dereferenceable(addr uint32) bool {
	return addr >= ia32.UserBase && ia32.IsUserVaddr(addr) && p.Pagedir.GetPage(addr) != nil
}

// translate returns the kernel view of the user page holding addr,
// from addr to the end of the page.
// If addr is not dereferenceable, translate panics with Fault(addr).
func (p *Proc) translate(addr uint32) []byte {
	if addr < ia32.UserBase {
		panic(Fault(addr))
	}
	b := p.Pagedir.GetPage(addr)
	if b == nil {
		panic(Fault(addr))
	}
	return b
}

// translateW is translate for an address the kernel will store into.
func (p *Proc) translateW(addr uint32) []byte {
	b := p.translate(addr)
	if !p.Pagedir.Writable(addr) {
		panic(Fault(addr))
	}
	return b
}

// word reads the machine word at addr.
// The word may straddle a page boundary; each byte is validated.
func (p *Proc) word(addr uint32) uint32 {
	var v uint32
	for i := uint32(0); i < ia32.WORD; i++ {
		if addr+i < addr {
			panic(Fault(addr + i))
		}
		v |= uint32(p.translate(addr + i)[0]) << (8 * i)
	}
	return v
}

// str returns the NUL-terminated string at addr.
// The string may cross any number of pages; it must end in mapped memory.
func (p *Proc) str(addr uint32) string {
	var s []byte
	for a := addr; ; {
		b := p.translate(a)
		for i, c := range b {
			if c == 0 {
				return string(append(s, b[:i]...))
			}
		}
		s = append(s, b...)
		a += uint32(len(b))
		if a < addr {
			panic(Fault(a))
		}
	}
}

// buf validates the user buffer [addr, addr+n) and returns the kernel
// views of its pages in order. If write is set, every page must be writable.
// The returned slices alias user memory.
func (p *Proc) buf(addr, n uint32, write bool) [][]byte {
	if addr+n < addr {
		panic(Fault(addr))
	}
	var segs [][]byte
	for a, end := addr, addr+n; a < end; {
		var b []byte
		if write {
			b = p.translateW(a)
		} else {
			b = p.translate(a)
		}
		if rem := end - a; uint32(len(b)) > rem {
			b = b[:rem]
		}
		segs = append(segs, b)
		a += uint32(len(b))
	}
	return segs
}

// args reads the n words just above the return address at esp.
// Word i comes from esp + (i+1) words.
func (p *Proc) args(esp uint32, n int) []uint32 {
	a := make([]uint32, n)
	for i := range a {
		off := uint32(i+1) * ia32.WORD
		if esp+off < esp {
			panic(Fault(esp))
		}
		a[i] = p.word(esp + off)
	}
	return a
}
