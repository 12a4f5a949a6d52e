// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package testprog

import (
	"fmt"

	"rsc.io/pintos/ia32"
	"rsc.io/pintos/userprog"
)

// Tests is the test set.
var Tests = []Test{
	{
		Name: "halt",
		Main: func(t *T) {
			t.Halt()
			t.Fail("should have halted")
		},
		Want: "(halt) begin\n",
	},
	{
		Name: "exit",
		Main: func(t *T) {
			t.Exit(57)
			t.Fail("should have called exit(57)")
		},
		Want: "(exit) begin\n" + exits("exit", 57),
	},
	{
		Name:    "args-many",
		Cmdline: "args-many a b c d e f g h i j k l m n o p q r s t u v",
		Main: func(t *T) {
			t.Msg("argc = %d", len(t.Args))
			for i, a := range t.Args {
				t.Msg("argv[%d] = '%s'", i, a)
			}
			t.Msg("argv[%d] = null", len(t.Args))
		},
		Want: func() string {
			lines := []string{msg("args-many", "argc = 23"), msg("args-many", "argv[0] = 'args-many'")}
			for c := 'a'; c <= 'v'; c++ {
				lines = append(lines, msg("args-many", fmt.Sprintf("argv[%d] = '%c'", c-'a'+1, c)))
			}
			lines = append(lines, msg("args-many", "argv[23] = null"))
			return out("args-many", lines...)
		}(),
	},

	{
		Name: "open-normal",
		Main: func(t *T) {
			t.Check(t.Open("sample.txt") > 1, "open \"sample.txt\"")
		},
		Want: out("open-normal", msg("open-normal", `open "sample.txt"`)),
	},
	{
		Name: "open-missing",
		Main: func(t *T) {
			if h := t.Open("no-such-file"); h != -1 {
				t.Fail("open() returned %d", h)
			}
		},
		Want: out("open-missing"),
	},
	{
		Name: "open-null",
		Main: func(t *T) {
			t.Syscall(userprog.SYS_OPEN, 0)
			t.Fail("should have exited with -1")
		},
		Want: killed("open-null"),
	},
	{
		Name: "open-bad-ptr",
		Main: func(t *T) {
			t.Msg("open(0x20101234): %d", t.Syscall(userprog.SYS_OPEN, 0x20101234))
			t.Fail("should have called exit(-1)")
		},
		Want: killed("open-bad-ptr"),
	},
	{
		Name: "open-boundary",
		Main: func(t *T) {
			h := t.Syscall(userprog.SYS_OPEN, acrossBoundary(t, "sample.txt"))
			t.Check(h > 1, "open \"sample.txt\"")
		},
		Want: out("open-boundary", msg("open-boundary", `open "sample.txt"`)),
	},
	{
		Name: "open-twice",
		Main: func(t *T) {
			h1 := t.Open("sample.txt")
			t.Check(h1 > 1, "open \"sample.txt\" once")
			h2 := t.Open("sample.txt")
			t.Check(h2 > 1, "open \"sample.txt\" again")
			if h1 == h2 {
				t.Fail("open() returned %d both times", h1)
			}
		},
		Want: out("open-twice",
			msg("open-twice", `open "sample.txt" once`),
			msg("open-twice", `open "sample.txt" again`)),
	},
	{
		Name: "open-empty",
		Main: func(t *T) {
			if h := t.Open(""); h != -1 {
				t.Fail("open(\"\") returned %d", h)
			}
		},
		Want: out("open-empty"),
	},

	{
		Name: "close-normal",
		Main: func(t *T) {
			h := t.Open("sample.txt")
			t.Check(h > 1, "open \"sample.txt\"")
			t.Msg("close \"sample.txt\"")
			t.Close(h)
		},
		Want: out("close-normal",
			msg("close-normal", `open "sample.txt"`),
			msg("close-normal", `close "sample.txt"`)),
	},
	{
		Name: "close-twice",
		Main: func(t *T) {
			h := t.Open("sample.txt")
			t.Check(h > 1, "open \"sample.txt\"")
			t.Msg("close \"sample.txt\"")
			t.Close(h)
			t.Msg("close \"sample.txt\" again")
			t.Close(h)
		},
		Want: out("close-twice",
			msg("close-twice", `open "sample.txt"`),
			msg("close-twice", `close "sample.txt"`),
			msg("close-twice", `close "sample.txt" again`)),
	},
	{
		Name: "close-stdin",
		Main: func(t *T) { t.Close(userprog.STDIN_FILENO) },
		Want: out("close-stdin"),
	},
	{
		Name: "close-bad-fd",
		Main: func(t *T) { t.Close(0x20101234) },
		Want: out("close-bad-fd"),
	},

	{
		Name: "read-normal",
		Main: func(t *T) { checkFile(t, "sample.txt", sample) },
		Want: out("read-normal",
			msg("read-normal", `open "sample.txt" for verification`),
			msg("read-normal", `verified contents of "sample.txt"`),
			msg("read-normal", `close "sample.txt"`)),
	},
	{
		Name: "read-bad-ptr",
		Main: func(t *T) {
			h := t.Open("sample.txt")
			t.Check(h > 1, "open \"sample.txt\"")
			t.Syscall(userprog.SYS_READ, uint32(h), 0xc0100000, 123)
			t.Fail("should not have survived read()")
		},
		Want: killed("read-bad-ptr", msg("read-bad-ptr", `open "sample.txt"`)),
	},
	{
		Name: "read-boundary",
		Main: func(t *T) {
			h := t.Open("sample.txt")
			t.Check(h > 1, "open \"sample.txt\"")
			buf := boundary(t) - uint32(len(sample)/2)
			if n := t.Read(h, buf, len(sample)); n != int32(len(sample)) {
				t.Fail("read() returned %d instead of %d", n, len(sample))
			}
			if string(t.Load(buf, len(sample))) != string(sample) {
				t.Fail("read across page boundary differs")
			}
		},
		Want: out("read-boundary", msg("read-boundary", `open "sample.txt"`)),
	},
	{
		Name: "read-zero",
		Main: func(t *T) {
			h := t.Open("sample.txt")
			t.Check(h > 1, "open \"sample.txt\"")
			if n := t.Syscall(userprog.SYS_READ, uint32(h), 0, 0); n != 0 {
				t.Fail("read() returned %d instead of 0", n)
			}
		},
		Want: out("read-zero", msg("read-zero", `open "sample.txt"`)),
	},
	{
		Name: "read-stdout",
		Main: func(t *T) {
			buf := t.Alloc(16)
			t.Read(userprog.STDOUT_FILENO, buf, 16)
		},
		Want: out("read-stdout"),
	},
	{
		Name: "read-bad-fd",
		Main: func(t *T) {
			buf := t.Alloc(16)
			for _, fd := range []int32{0x20101234, 5, 1234, -1, -1024} {
				if n := t.Read(fd, buf, 16); n != -1 {
					t.Fail("read(%d) returned %d", fd, n)
				}
			}
		},
		Want: out("read-bad-fd"),
	},

	{
		Name: "write-normal",
		Main: func(t *T) {
			h := t.Open("sample.txt")
			t.Check(h > 1, "open \"sample.txt\"")
			t.Msg("write \"sample.txt\"")
			if n := t.Write(h, sample); n != int32(len(sample)) {
				t.Fail("write() returned %d instead of %d", n, len(sample))
			}
		},
		Want: out("write-normal",
			msg("write-normal", `open "sample.txt"`),
			msg("write-normal", `write "sample.txt"`)),
	},
	{
		Name: "write-bad-ptr",
		Main: func(t *T) {
			h := t.Open("sample.txt")
			t.Check(h > 1, "open \"sample.txt\"")
			t.Syscall(userprog.SYS_WRITE, uint32(h), 0x10123420, 123)
			t.Fail("should have exited with -1")
		},
		Want: killed("write-bad-ptr", msg("write-bad-ptr", `open "sample.txt"`)),
	},
	{
		Name: "write-stdin",
		Main: func(t *T) {
			t.Write(userprog.STDIN_FILENO, []byte("x"))
		},
		Want: out("write-stdin"),
	},
	{
		Name: "write-bad-fd",
		Main: func(t *T) {
			for _, fd := range []int32{0x20101234, 7, 2546, -5, -8192} {
				if n := t.Write(fd, []byte("x")); n != -1 {
					t.Fail("write(%d) returned %d", fd, n)
				}
			}
		},
		Want: out("write-bad-fd"),
	},

	{
		Name: "exec-once",
		Main: func(t *T) {
			t.Msg("I'm your father")
			t.Wait(t.Exec("child-simple"))
		},
		Want: out("exec-once",
			msg("exec-once", "I'm your father"),
			msg("child-simple", "run"),
			exits("child-simple", 81)),
	},
	{
		Name: "exec-arg",
		Main: func(t *T) {
			t.Wait(t.Exec("child-args childarg"))
		},
		Want: out("exec-arg",
			msg("args", "begin"),
			msg("args", "argc = 2"),
			msg("args", "argv[0] = 'child-args'"),
			msg("args", "argv[1] = 'childarg'"),
			msg("args", "argv[2] = null"),
			msg("args", "end"),
			exits("child-args", 0)),
	},
	{
		Name: "exec-missing",
		Main: func(t *T) {
			t.Msg("exec(\"no-such-file\"): %d", t.Exec("no-such-file"))
		},
		Want: out("exec-missing", msg("exec-missing", `exec("no-such-file"): -1`)),
	},
	{
		Name: "exec-bad-ptr",
		Main: func(t *T) {
			t.Syscall(userprog.SYS_EXEC, 0x20101234)
			t.Fail("should have exited with -1")
		},
		Want: killed("exec-bad-ptr"),
	},

	{
		Name: "wait-simple",
		Main: func(t *T) {
			t.Msg("wait(exec()) = %d", t.Wait(t.Exec("child-simple")))
		},
		Want: out("wait-simple",
			msg("child-simple", "run"),
			exits("child-simple", 81),
			msg("wait-simple", "wait(exec()) = 81")),
	},
	{
		Name: "wait-twice",
		Main: func(t *T) {
			pid := t.Exec("child-simple")
			t.Msg("wait(exec()) = %d", t.Wait(pid))
			t.Msg("wait(exec()) = %d", t.Wait(pid))
		},
		Want: out("wait-twice",
			msg("child-simple", "run"),
			exits("child-simple", 81),
			msg("wait-twice", "wait(exec()) = 81"),
			msg("wait-twice", "wait(exec()) = -1")),
	},
	{
		Name: "wait-killed",
		Main: func(t *T) {
			t.Msg("wait(exec()) = %d", t.Wait(t.Exec("child-bad")))
		},
		Want: out("wait-killed",
			msg("child-bad", "begin"),
			exits("child-bad", -1),
			msg("wait-killed", "wait(exec()) = -1")),
	},
	{
		Name: "wait-bad-pid",
		Main: func(t *T) {
			t.Msg("wait(0x0c020301) = %d", t.Wait(0x0c020301))
		},
		Want: out("wait-bad-pid", msg("wait-bad-pid", "wait(0x0c020301) = -1")),
	},
	{
		Name: "wait-negative",
		Main: func(t *T) {
			t.Msg("wait(exec()) = %d", t.Wait(t.Exec("child-neg")))
		},
		Want: out("wait-negative",
			exits("child-neg", -200),
			msg("wait-negative", "wait(exec()) = -1")),
	},

	{
		Name: "sc-bad-sp",
		Main: func(t *T) {
			t.Trap(ia32.UserBase - 64<<20)
			t.Fail("should have called exit(-1)")
		},
		Want: killed("sc-bad-sp"),
	},
	{
		Name: "sc-bad-arg",
		Main: func(t *T) {
			esp := ia32.PhysBase - ia32.WORD
			t.Store(esp, le(userprog.SYS_EXIT))
			t.Trap(esp)
			t.Fail("should have called exit(-1)")
		},
		Want: killed("sc-bad-arg"),
	},
	{
		Name: "sc-boundary",
		Main: func(t *T) {
			esp := boundary(t) - ia32.WORD
			t.Store(esp, le(userprog.SYS_EXIT))
			t.Store(esp+ia32.WORD, le(42))
			t.Trap(esp)
			t.Fail("should have called exit(42)")
		},
		Want: "(sc-boundary) begin\n" + exits("sc-boundary", 42),
	},
	{
		Name: "sc-boundary-2",
		Main: func(t *T) {
			esp := boundary(t) - 1
			t.Store(esp, le(userprog.SYS_EXIT))
			t.Store(esp+ia32.WORD, le(67))
			t.Trap(esp)
			t.Fail("should have called exit(67)")
		},
		Want: "(sc-boundary-2) begin\n" + exits("sc-boundary-2", 67),
	},
	{
		Name: "bad-read",
		Main: func(t *T) {
			t.Msg("Congratulations - you have successfully dereferenced NULL: %d", t.Load(0, 1)[0])
			t.Fail("should have exited with -1")
		},
		Want: killed("bad-read"),
	},
	{
		Name: "bad-write",
		Main: func(t *T) {
			t.Store(0, []byte{42})
			t.Fail("should have exited with -1")
		},
		Want: killed("bad-write"),
	},
	{
		Name: "unknown-call",
		Main: func(t *T) {
			t.Syscall(99)
			t.Syscall(userprog.SYS_CREATE, 0, 0)
			t.Syscall(userprog.SYS_REMOVE, 0)
			t.Msg("survived unimplemented calls")
		},
		Want: out("unknown-call", msg("unknown-call", "survived unimplemented calls")),
	},
	{
		Name: "multi-child",
		Main: func(t *T) {
			var pids []int32
			for i := 0; i < 4; i++ {
				pids = append(pids, t.Exec("child-quiet"))
			}
			var status []int32
			for _, pid := range pids {
				status = append(status, t.Wait(pid))
			}
			for _, s := range status {
				t.Msg("wait(exec()) = %d", s)
			}
		},
		Want: out("multi-child",
			exits("child-quiet", 0),
			exits("child-quiet", 0),
			exits("child-quiet", 0),
			exits("child-quiet", 0),
			msg("multi-child", "wait(exec()) = 0"),
			msg("multi-child", "wait(exec()) = 0"),
			msg("multi-child", "wait(exec()) = 0"),
			msg("multi-child", "wait(exec()) = 0")),
	},
}

// children are run only by other tests.
var children = []Test{
	{
		Name: "child-simple",
		Main: func(t *T) {
			t.Msg("run")
			t.Exit(81)
		},
		bare: true,
	},
	{
		Name: "child-bad",
		Main: func(t *T) {
			t.Trap(0x20101234)
			t.Fail("should have exited with -1")
		},
	},
	{
		Name: "child-neg",
		Main: func(t *T) { t.Exit(-200) },
		bare: true,
	},
	{
		Name: "child-args",
		Main: func(t *T) {
			t.name = "args"
			t.Msg("begin")
			t.Msg("argc = %d", len(t.Args))
			for i, a := range t.Args {
				t.Msg("argv[%d] = '%s'", i, a)
			}
			t.Msg("argv[%d] = null", len(t.Args))
			t.Msg("end")
		},
		bare: true,
	},
	{
		// Reads and checks a file with no output of its own,
		// so that several can run at once.
		Name: "child-quiet",
		Main: func(t *T) {
			h := t.Open("sample.txt")
			if h < 2 || t.Filesize(h) != int32(len(sample)) {
				t.Exit(1)
			}
			buf := t.Alloc(len(sample))
			if t.Read(h, buf, len(sample)) != int32(len(sample)) || string(t.Load(buf, len(sample))) != string(sample) {
				t.Exit(2)
			}
		},
		bare: true,
	},
}
