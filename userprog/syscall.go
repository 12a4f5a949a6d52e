// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package userprog

import (
	"errors"
	"fmt"
	"runtime"

	"rsc.io/pintos/ia32"
	"rsc.io/pintos/ktrace"
)

// Trap handles a system call trap from p, whose registers are saved in f.
// It must run on p's own goroutine.
//
// Calls that produce a value store it in f's accumulator.
// Calls that end the process (exit, halt, or any bad address)
// do not return: the goroutine is stopped after teardown.
// Call numbers the kernel does not implement are ignored.
func Trap(p *Proc, f *ia32.IntrFrame) {
	sys := p.Sys
	if sys.Halted() {
		runtime.Goexit()
	}

	var c call
	if err := catch(func() { c = p.decode(f.SP()) }); err != nil {
		var fault Fault
		errors.As(err, &fault)
		p.kill(fault)
		runtime.Goexit()
	}

	switch c := c.(type) {
	case sysHalt:
		sys.trace(p, c, "")
		sys.halt(p)
		runtime.Goexit()
	case sysExit:
		sys.trace(p, c, "")
		p.exit(c.status)
		runtime.Goexit()
	case sysUnsupported:
		sys.trace(p, c, "")
		return
	}

	ret, ok := p.execute(c)
	if sys.Halted() {
		runtime.Goexit()
	}
	if ok {
		f.SetReturn(ret)
		sys.trace(p, c, fmt.Sprintf(" = %d", ret))
	} else {
		sys.trace(p, c, "")
	}
}

// execute runs a call that returns to user code.
// It reports the result and whether the call produces one.
func (p *Proc) execute(c call) (int32, bool) {
	switch c := c.(type) {
	case sysExec:
		return p.exec(c.cmdline), true
	case sysWait:
		return p.wait(c.pid), true
	case sysOpen:
		return p.open(c.name), true
	case sysFilesize:
		return p.filesize(c.fd), true
	case sysRead:
		return p.read(c.fd, c.buf), true
	case sysWrite:
		return p.write(c.fd, c.buf), true
	case sysSeek:
		p.seek(c.fd, c.pos)
		return 0, false
	case sysTell:
		return p.tell(c.fd), true
	case sysClose:
		p.close(c.fd)
		return 0, false
	}
	panic(fmt.Sprintf("execute %T", c))
}

// kill ends p for handing the kernel a bad address.
func (p *Proc) kill(addr Fault) {
	sys := p.Sys
	sys.logger().Info("fault", "pid", p.Pid, "proc", p.Name, "addr", fmt.Sprintf("%#08x", uint32(addr)))
	sys.record(ktrace.Event{Pid: p.Pid, Proc: p.Name, Kind: ktrace.KindFault, Addr: uint32(addr)})
	p.exit(ExitFail)
}

func (sys *System) trace(p *Proc, c call, result string) {
	desc := c.String() + result
	sys.logger().Debug("syscall", "pid", p.Pid, "call", desc)
	sys.record(ktrace.Event{Pid: p.Pid, Proc: p.Name, Kind: ktrace.KindSyscall, Call: desc})
}
