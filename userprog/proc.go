// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package userprog

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"rsc.io/pintos/ia32"
	"rsc.io/pintos/ktrace"
)

// A Program is the user-mode code of a process.
// Returning from it is the same as calling Exit(0).
type Program func(u *User)

// A Recorder receives trace events.
type Recorder interface {
	Record(ktrace.Event) error
}

// A System is one simulated machine: its processes, its file system,
// and its console.
type System struct {
	Logger   *slog.Logger // kernel diagnostics; nil discards them
	Console  io.Writer    // exit notices and writes to descriptor 1
	Input    io.Reader    // reads from descriptor 0; nil reads nothing
	FS       FileSys      // opened files; every call holds the file system lock
	Recorder Recorder     // receives one event per call, fault, exit and halt
	MaxFiles int          // per-process descriptor limit; zero means NOFILE
	Frames   int          // per-process page limit; zero means unlimited
	PowerOff func()       // called once by halt

	mu       sync.Mutex
	procs    map[int]*Proc
	programs map[string]Program
	nextPid  int
	running  sync.WaitGroup
	cells    atomic.Int32 // live exit cells

	conMu  sync.Mutex
	inMu   sync.Mutex
	fslock filesysLock

	haltOnce sync.Once
	halted   chan struct{}
}

// A Proc is a user process.
type Proc struct {
	Pid      int
	Name     string
	Sys      *System
	Pagedir  *ia32.PageDir
	Files    FileTable // open files, owned by this process alone
	Children Children  // children not yet waited for

	parent *exitCell // cell shared with the parent; nil for the initial process
	exited bool      // exit has run
	status int32
	ok     bool // status is a real exit status
	done   chan struct{}
}

// NewSystem returns a machine whose processes open files in fs.
func NewSystem(fs FileSys) *System {
	return &System{
		FS:       fs,
		Console:  os.Stdout,
		procs:    make(map[int]*Proc),
		programs: make(map[string]Program),
		nextPid:  1,
		halted:   make(chan struct{}),
	}
}

func (sys *System) logger() *slog.Logger {
	if sys.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return sys.Logger
}

func (sys *System) record(e ktrace.Event) {
	if sys.Recorder == nil {
		return
	}
	if err := sys.Recorder.Record(e); err != nil {
		sys.logger().Warn("trace", "err", err)
	}
}

// Register installs prog under name, for Start and exec.
func (sys *System) Register(name string, prog Program) {
	sys.mu.Lock()
	defer sys.mu.Unlock()
	sys.programs[name] = prog
}

// Programs returns the registered program names, sorted.
func (sys *System) Programs() []string {
	sys.mu.Lock()
	defer sys.mu.Unlock()
	var names []string
	for name := range sys.programs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Start starts the initial process running cmdline.
// The process has no parent, so nothing waits for its status;
// use Proc.ExitStatus to observe it.
func (sys *System) Start(cmdline string) (*Proc, error) {
	p, u, prog, err := sys.newProc(cmdline)
	if err != nil {
		return nil, err
	}
	sys.run(p, u, prog)
	return p, nil
}

// spawn starts a child of parent running cmdline.
// The child's record is in parent's registry before the child runs.
func (sys *System) spawn(parent *Proc, cmdline string) (*Proc, error) {
	p, u, prog, err := sys.newProc(cmdline)
	if err != nil {
		return nil, err
	}
	sys.cells.Add(1)
	cell := newExitCell(func() { sys.cells.Add(-1) })
	if parent.Children.Register(p.Pid, cell) == nil {
		panic("spawn: duplicate pid")
	}
	p.parent = cell
	sys.run(p, u, prog)
	return p, nil
}

func (sys *System) newProc(cmdline string) (*Proc, *User, Program, error) {
	if sys.Halted() {
		return nil, nil, nil, ErrHalted
	}
	argv := strings.Fields(cmdline)
	if len(argv) == 0 {
		return nil, nil, nil, fmt.Errorf("%w: empty command line", ErrNoProgram)
	}

	sys.mu.Lock()
	prog := sys.programs[argv[0]]
	if prog == nil {
		sys.mu.Unlock()
		return nil, nil, nil, fmt.Errorf("%w: %s", ErrNoProgram, argv[0])
	}
	p := &Proc{
		Pid:     sys.nextPid,
		Name:    argv[0],
		Sys:     sys,
		Pagedir: ia32.NewPageDir(sys.Frames),
		Files:   NewFileTable(sys.MaxFiles),
		done:    make(chan struct{}),
	}
	sys.nextPid++
	sys.mu.Unlock()

	u, err := newUser(p, argv)
	if err != nil {
		p.Pagedir.Destroy()
		return nil, nil, nil, fmt.Errorf("%s: %w", argv[0], err)
	}

	sys.mu.Lock()
	sys.procs[p.Pid] = p
	sys.mu.Unlock()
	return p, u, prog, nil
}

func (sys *System) run(p *Proc, u *User, prog Program) {
	sys.running.Add(1)
	go func() {
		defer sys.running.Done()
		defer func() {
			// A halted machine stops processes without tearing them down.
			if !p.exited {
				p.exited = true
				close(p.done)
			}
		}()
		defer func() {
			if e := recover(); e != nil {
				f, ok := e.(Fault)
				if !ok {
					panic(e)
				}
				p.kill(f)
			}
		}()
		prog(u)
		p.exit(0)
	}()
}

// exit tears p down: it prints the exit notice, hands status to the
// parent, closes every open file, disowns every child, and frees
// p's memory. It runs on p's own goroutine.
func (p *Proc) exit(status int32) {
	if p.exited {
		return
	}
	p.exited = true
	defer close(p.done)

	sys := p.Sys
	if sys.Halted() {
		return
	}
	sys.printf("%s: exit(%d)\n", p.Name, status)
	p.status, p.ok = status, true

	if p.parent != nil {
		p.parent.set(status)
		p.parent.release()
		p.parent = nil
	}
	sys.withFS(func() {
		p.Files.Close(CloseAll)
	})
	p.Children.RemoveAll()
	p.Pagedir.Destroy()

	sys.record(ktrace.Event{Pid: p.Pid, Proc: p.Name, Kind: ktrace.KindExit, Ret: status})
	sys.mu.Lock()
	delete(sys.procs, p.Pid)
	sys.mu.Unlock()
}

// Done returns a channel closed once p has stopped.
func (p *Proc) Done() <-chan struct{} { return p.done }

// ExitStatus waits for p to stop and returns its exit status.
// It reports false if p was stopped by a halt instead of exiting.
func (p *Proc) ExitStatus() (int32, bool) {
	<-p.done
	return p.status, p.ok
}

// lookpid returns the live process with the given pid, or nil.
func (sys *System) lookpid(pid int) *Proc {
	sys.mu.Lock()
	defer sys.mu.Unlock()
	return sys.procs[pid]
}

// NumProcs returns the number of live processes.
func (sys *System) NumProcs() int {
	sys.mu.Lock()
	defer sys.mu.Unlock()
	return len(sys.procs)
}

// NumCells returns the number of exit cells not yet freed.
func (sys *System) NumCells() int { return int(sys.cells.Load()) }

// Wait blocks until every process has stopped or the machine halts.
func (sys *System) Wait() {
	done := make(chan struct{})
	go func() {
		sys.running.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-sys.halted:
	}
}

// Halted reports whether the machine has been powered off.
func (sys *System) Halted() bool {
	select {
	case <-sys.halted:
		return true
	default:
		return false
	}
}

func (sys *System) halt(p *Proc) {
	sys.haltOnce.Do(func() {
		sys.logger().Info("halt", "pid", p.Pid, "proc", p.Name)
		sys.record(ktrace.Event{Pid: p.Pid, Proc: p.Name, Kind: ktrace.KindHalt})
		if sys.PowerOff != nil {
			sys.PowerOff()
		}
		close(sys.halted)
	})
}

func (sys *System) printf(format string, args ...any) {
	sys.conMu.Lock()
	defer sys.conMu.Unlock()
	fmt.Fprintf(sys.Console, format, args...)
}
