// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package userprog

import (
	"errors"
	"fmt"

	"rsc.io/pintos/ia32"
)

// A User is a process as seen from user mode: its memory,
// its stack, and the trap instruction. A Program receives one.
//
// User-mode accesses to unmapped or read-only memory kill the
// process with ExitFail, as a page fault would.
type User struct {
	p    *Proc
	Args []string // argv, read back from the initial stack
	sp   uint32   // stack pointer
	brk  uint32   // next free data address
}

var errArgs = errors.New("arguments do not fit on the stack")

// newUser maps p's stack page and lays out argv on it
// the way the C startup code expects:
//
//	argv strings, word alignment, argv[argc] = 0,
//	argv[argc-1] ... argv[0], argv, argc, fake return address.
func newUser(p *Proc, argv []string) (*User, error) {
	u := &User{p: p, sp: ia32.PhysBase, brk: ia32.UserBase}
	stack := ia32.PhysBase - ia32.PGSIZE
	if err := p.Pagedir.Map(stack, true); err != nil {
		return nil, err
	}

	size := 0
	for _, s := range argv {
		size += len(s) + 1
	}
	size = (size+ia32.WORD-1)&^(ia32.WORD-1) + (len(argv)+4)*ia32.WORD
	if size > ia32.PGSIZE {
		return nil, errArgs
	}

	ptrs := make([]uint32, len(argv))
	for i := len(argv) - 1; i >= 0; i-- {
		u.sp -= uint32(len(argv[i]) + 1)
		u.store(u.sp, append([]byte(argv[i]), 0))
		ptrs[i] = u.sp
	}
	u.sp &^= ia32.WORD - 1
	u.push(0)
	for i := len(ptrs) - 1; i >= 0; i-- {
		u.push(ptrs[i])
	}
	u.push(u.sp)
	u.push(uint32(len(argv)))
	u.push(0)

	argc := u.word(u.sp + ia32.WORD)
	av := u.word(u.sp + 2*ia32.WORD)
	for i := uint32(0); i < argc; i++ {
		u.Args = append(u.Args, u.cstring(u.word(av+i*ia32.WORD)))
	}
	return u, nil
}

// Pid returns the process id.
func (u *User) Pid() int { return u.p.Pid }

// Name returns the process name.
func (u *User) Name() string { return u.p.Name }

// Mem returns the process's memory, for raw user-mode access.
func (u *User) Mem() ia32.Memory { return u.p.Pagedir }

// SP returns the current stack pointer.
func (u *User) SP() uint32 { return u.sp }

// Map maps the page containing addr.
func (u *User) Map(addr uint32, writable bool) error {
	return u.p.Pagedir.Map(ia32.PgRoundDown(addr), writable)
}

// Alloc reserves n bytes of zeroed data memory and returns its address.
func (u *User) Alloc(n int) uint32 {
	addr := u.brk
	end := addr + uint32(n)
	for pg := ia32.PgRoundDown(addr); pg < end; pg += ia32.PGSIZE {
		if u.p.Pagedir.GetPage(pg) != nil {
			continue
		}
		if err := u.p.Pagedir.Map(pg, true); err != nil {
			panic(Fault(pg))
		}
	}
	u.brk = end
	return addr
}

// String copies s into data memory as a NUL-terminated string.
func (u *User) String(s string) uint32 {
	addr := u.Alloc(len(s) + 1)
	u.store(addr, []byte(s))
	return addr
}

// Bytes copies b into data memory.
func (u *User) Bytes(b []byte) uint32 {
	addr := u.Alloc(len(b))
	u.store(addr, b)
	return addr
}

// Load reads n bytes at addr.
func (u *User) Load(addr uint32, n int) []byte {
	b := make([]byte, n)
	for i := range b {
		c, err := u.p.Pagedir.ReadB(addr + uint32(i))
		if err != nil {
			panic(Fault(addr + uint32(i)))
		}
		b[i] = c
	}
	return b
}

// Store writes b at addr.
func (u *User) Store(addr uint32, b []byte) { u.store(addr, b) }

func (u *User) store(addr uint32, b []byte) {
	for i, c := range b {
		if err := u.p.Pagedir.WriteB(addr+uint32(i), c); err != nil {
			panic(Fault(addr + uint32(i)))
		}
	}
}

func (u *User) word(addr uint32) uint32 {
	v, err := u.p.Pagedir.ReadW(addr)
	if err != nil {
		panic(Fault(addr))
	}
	return v
}

func (u *User) cstring(addr uint32) string {
	var s []byte
	for {
		c, err := u.p.Pagedir.ReadB(addr)
		if err != nil {
			panic(Fault(addr))
		}
		if c == 0 {
			return string(s)
		}
		s = append(s, c)
		addr++
	}
}

func (u *User) push(v uint32) {
	u.sp -= ia32.WORD
	if err := u.p.Pagedir.WriteW(u.sp, v); err != nil {
		panic(Fault(u.sp))
	}
}

// Syscall pushes args in reverse order, then the call number,
// and traps with the stack pointer at the number.
// It returns the accumulator after the trap.
func (u *User) Syscall(no uint32, args ...uint32) int32 {
	sp := u.sp
	for i := len(args) - 1; i >= 0; i-- {
		u.push(args[i])
	}
	u.push(no)
	r := u.Trap(u.sp)
	u.sp = sp
	return r
}

// Trap traps into the kernel with the stack pointer set to esp.
func (u *User) Trap(esp uint32) int32 {
	f := &ia32.IntrFrame{VecNo: ia32.SyscallVec}
	f.R[ia32.ESP] = esp
	Trap(u.p, f)
	return f.Return()
}

func (u *User) Halt() { u.Syscall(SYS_HALT) }

func (u *User) Exit(status int32) { u.Syscall(SYS_EXIT, uint32(status)) }

func (u *User) Exec(cmdline string) int32 {
	return u.Syscall(SYS_EXEC, u.String(cmdline))
}

func (u *User) Wait(pid int32) int32 { return u.Syscall(SYS_WAIT, uint32(pid)) }

func (u *User) Open(name string) int32 {
	return u.Syscall(SYS_OPEN, u.String(name))
}

func (u *User) Filesize(fd int32) int32 { return u.Syscall(SYS_FILESIZE, uint32(fd)) }

// Read reads up to n bytes from fd into user memory at buf.
func (u *User) Read(fd int32, buf uint32, n int) int32 {
	return u.Syscall(SYS_READ, uint32(fd), buf, uint32(n))
}

// Write copies b into user memory and writes it to fd.
func (u *User) Write(fd int32, b []byte) int32 {
	return u.Syscall(SYS_WRITE, uint32(fd), u.Bytes(b), uint32(len(b)))
}

func (u *User) Seek(fd int32, pos int) { u.Syscall(SYS_SEEK, uint32(fd), uint32(pos)) }

func (u *User) Tell(fd int32) int32 { return u.Syscall(SYS_TELL, uint32(fd)) }

func (u *User) Close(fd int32) { u.Syscall(SYS_CLOSE, uint32(fd)) }

// Printf formats to descriptor 1.
func (u *User) Printf(format string, args ...any) {
	u.Write(STDOUT_FILENO, []byte(fmt.Sprintf(format, args...)))
}
