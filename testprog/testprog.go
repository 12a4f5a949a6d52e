// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package testprog holds user programs that exercise the system call
// layer the way the Pintos userprog tests do. Each test writes its
// progress to descriptor 1 and is judged by its console output.
package testprog

import (
	"fmt"
	"sort"

	"rsc.io/pintos/ia32"
	"rsc.io/pintos/userprog"
)

// A T is a running test program.
type T struct {
	*userprog.User
	name string
}

// Msg prints "(name) msg" to the console.
func (t *T) Msg(format string, args ...any) {
	t.Printf("(%s) %s\n", t.name, fmt.Sprintf(format, args...))
}

// Fail reports a failure and exits with status 1.
func (t *T) Fail(format string, args ...any) {
	t.Msg("FAIL: "+format, args...)
	t.Exit(1)
}

// Check prints the message, then fails if ok is false.
func (t *T) Check(ok bool, format string, args ...any) {
	t.Msg(format, args...)
	if !ok {
		t.Fail(format, args...)
	}
}

// A Test is a test program and the console output it must produce.
type Test struct {
	Name    string
	Cmdline string // command line to run; empty means Name
	Main    func(t *T)
	Want    string

	bare bool // no begin and end messages
}

// Command returns the command line that runs the test.
func (tt *Test) Command() string {
	if tt.Cmdline != "" {
		return tt.Cmdline
	}
	return tt.Name
}

// Program returns the test as a user program.
func (tt *Test) Program() userprog.Program {
	return func(u *userprog.User) {
		t := &T{User: u, name: tt.Name}
		if !tt.bare {
			t.Msg("begin")
		}
		tt.Main(t)
		if !tt.bare {
			t.Msg("end")
		}
	}
}

// Register installs every test and helper program in sys.
func Register(sys *userprog.System) {
	for i := range Tests {
		sys.Register(Tests[i].Name, Tests[i].Program())
	}
	for i := range children {
		sys.Register(children[i].Name, children[i].Program())
	}
}

// Lookup returns the named test, or nil.
func Lookup(name string) *Test {
	for i := range Tests {
		if Tests[i].Name == name {
			return &Tests[i]
		}
	}
	return nil
}

// Names returns the names of all tests, sorted.
func Names() []string {
	var names []string
	for _, tt := range Tests {
		names = append(names, tt.Name)
	}
	sort.Strings(names)
	return names
}

var sample = func() []byte {
	d, err := userprog.NewDisk(userprog.FS)
	if err != nil {
		panic(err)
	}
	b, err := d.ReadFile("sample.txt")
	if err != nil {
		panic(err)
	}
	return b
}()

// boundary returns a page boundary with a mapped page on each side.
func boundary(t *T) uint32 {
	base := t.Alloc(3 * ia32.PGSIZE)
	return ia32.PgRoundDown(base) + 2*ia32.PGSIZE
}

// acrossBoundary copies s into memory so that it straddles a page
// boundary, and returns its address.
func acrossBoundary(t *T, s string) uint32 {
	addr := boundary(t) - uint32(len(s)/2)
	t.Store(addr, append([]byte(s), 0))
	return addr
}

func le(w uint32) []byte {
	return []byte{byte(w), byte(w >> 8), byte(w >> 16), byte(w >> 24)}
}

// checkFile reads name in blocks and compares it against want.
func checkFile(t *T, name string, want []byte) {
	fd := t.Open(name)
	t.Check(fd > 1, "open \"%s\" for verification", name)
	const block = 64
	buf := t.Alloc(block)
	var have []byte
	for {
		n := t.Read(fd, buf, block)
		if n < 0 {
			t.Fail("read of \"%s\" failed", name)
		}
		if n == 0 {
			break
		}
		have = append(have, t.Load(buf, int(n))...)
	}
	if string(have) != string(want) {
		t.Fail("\"%s\" has %d bytes, want %d", name, len(have), len(want))
	}
	t.Msg("verified contents of \"%s\"", name)
	t.Msg("close \"%s\"", name)
	t.Close(fd)
}

func exits(name string, status int) string {
	return fmt.Sprintf("%s: exit(%d)\n", name, status)
}

// out formats the expected output of a test that runs to the end.
func out(name string, lines ...string) string {
	s := "(" + name + ") begin\n"
	for _, l := range lines {
		s += l
	}
	return s + "(" + name + ") end\n" + exits(name, 0)
}

// killed formats the expected output of a test the kernel kills.
func killed(name string, lines ...string) string {
	s := "(" + name + ") begin\n"
	for _, l := range lines {
		s += l
	}
	return s + exits(name, -1)
}

func msg(name, s string) string { return "(" + name + ") " + s + "\n" }
