// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package userprog

import "fmt"

// A call is a decoded system call whose arguments have all been
// read and validated. Each supported call has its own type;
// sysUnsupported stands for every number the kernel does not implement.
type call interface {
	fmt.Stringer
}

type sysHalt struct{}

type sysExit struct{ status int32 }

type sysExec struct{ cmdline string }

type sysWait struct{ pid int }

type sysOpen struct{ name string }

type sysFilesize struct{ fd int }

type sysRead struct {
	fd   int
	addr uint32
	n    uint32
	buf  [][]byte // writable pages of [addr, addr+n)
}

type sysWrite struct {
	fd   int
	addr uint32
	n    uint32
	buf  [][]byte // pages of [addr, addr+n)
}

type sysSeek struct {
	fd  int
	pos uint32
}

type sysTell struct{ fd int }

type sysClose struct{ fd int }

type sysUnsupported struct{ no uint32 }

func (sysHalt) String() string          { return "halt()" }
func (c sysExit) String() string        { return fmt.Sprintf("exit(%d)", c.status) }
func (c sysExec) String() string        { return fmt.Sprintf("exec(%q)", c.cmdline) }
func (c sysWait) String() string        { return fmt.Sprintf("wait(%d)", c.pid) }
func (c sysOpen) String() string        { return fmt.Sprintf("open(%q)", c.name) }
func (c sysFilesize) String() string    { return fmt.Sprintf("filesize(%d)", c.fd) }
func (c sysRead) String() string        { return fmt.Sprintf("read(%d, %#08x, %d)", c.fd, c.addr, c.n) }
func (c sysWrite) String() string       { return fmt.Sprintf("write(%d, %#08x, %d)", c.fd, c.addr, c.n) }
func (c sysSeek) String() string        { return fmt.Sprintf("seek(%d, %d)", c.fd, c.pos) }
func (c sysTell) String() string        { return fmt.Sprintf("tell(%d)", c.fd) }
func (c sysClose) String() string       { return fmt.Sprintf("close(%d)", c.fd) }
func (c sysUnsupported) String() string { return fmt.Sprintf("%s()", sysname(c.no)) }

type sysentry struct {
	args   int
	name   string
	decode func(p *Proc, a []uint32) call // nil: not implemented
}

var sysent = [NSYSCALL]sysentry{
	SYS_HALT: {0, "halt", func(p *Proc, a []uint32) call {
		return sysHalt{}
	}},
	SYS_EXIT: {1, "exit", func(p *Proc, a []uint32) call {
		return sysExit{int32(a[0])}
	}},
	SYS_EXEC: {1, "exec", func(p *Proc, a []uint32) call {
		return sysExec{p.str(a[0])}
	}},
	SYS_WAIT: {1, "wait", func(p *Proc, a []uint32) call {
		return sysWait{int(int32(a[0]))}
	}},
	SYS_CREATE: {2, "create", nil},
	SYS_REMOVE: {1, "remove", nil},
	SYS_OPEN: {1, "open", func(p *Proc, a []uint32) call {
		return sysOpen{p.str(a[0])}
	}},
	SYS_FILESIZE: {1, "filesize", func(p *Proc, a []uint32) call {
		return sysFilesize{fdarg(a[0])}
	}},
	SYS_READ: {3, "read", func(p *Proc, a []uint32) call {
		return sysRead{fdarg(a[0]), a[1], a[2], p.buf(a[1], a[2], true)}
	}},
	SYS_WRITE: {3, "write", func(p *Proc, a []uint32) call {
		return sysWrite{fdarg(a[0]), a[1], a[2], p.buf(a[1], a[2], false)}
	}},
	SYS_SEEK: {2, "seek", func(p *Proc, a []uint32) call {
		return sysSeek{fdarg(a[0]), a[1]}
	}},
	SYS_TELL: {1, "tell", func(p *Proc, a []uint32) call {
		return sysTell{fdarg(a[0])}
	}},
	SYS_CLOSE: {1, "close", func(p *Proc, a []uint32) call {
		return sysClose{fdarg(a[0])}
	}},
}

func fdarg(w uint32) int { return int(int32(w)) }

func sysname(no uint32) string {
	if no < NSYSCALL {
		return sysent[no].name
	}
	return fmt.Sprintf("sys%d", no)
}

// decode reads the call number at esp, then the call's arguments,
// then validates any strings or buffers they point to.
// A bad address anywhere panics with a Fault before any call runs.
func (p *Proc) decode(esp uint32) call {
	no := p.word(esp)
	if no >= NSYSCALL || sysent[no].decode == nil {
		return sysUnsupported{no}
	}
	sys := &sysent[no]
	return sys.decode(p, p.args(esp, sys.args))
}
