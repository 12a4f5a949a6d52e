// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Pintosrun boots a simulated machine and runs one user program on it.
//
// Usage:
//
//	pintosrun [flags] program [args...]
//	pintosrun --list
//
// The program is one of the test programs listed by --list.
// Its console output goes to standard output (or the configured console
// file), and pintosrun exits with the program's exit status.
// With --check, the console output is also compared against the
// output the test expects, and PASS or FAIL is printed to standard error.
//
// Settings come from the file named by --config or $PINTOS_CONFIG;
// flags given explicitly override the file.
package main

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"golang.org/x/term"
	"rsc.io/pintos/config"
	"rsc.io/pintos/ktrace"
	"rsc.io/pintos/testprog"
	"rsc.io/pintos/userprog"
)

var (
	configFile = pflag.String("config", "", "read settings from `file` (default $"+config.EnvVar+")")
	diskFile   = pflag.String("disk", "", "boot from the txtar disk image in `file`")
	traceFile  = pflag.String("trace", "", "record a system call trace to `file` (.lz4 compresses)")
	logLevel   = pflag.String("log-level", "", "log at `level` (debug, info, warn, error)")
	maxFiles   = pflag.Int("max-files", 0, "limit each process to `n` open files")
	frames     = pflag.Int("frames", 0, "limit each process to `n` pages of memory")
	console    = pflag.String("console", "", "write the console to `file`")
	list       = pflag.Bool("list", false, "list the test programs and exit")
	check      = pflag.Bool("check", false, "compare the console output against the test's expected output")
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: pintosrun [flags] program [args...]\n")
	pflag.PrintDefaults()
	os.Exit(2)
}

func main() {
	log.SetPrefix("pintosrun: ")
	log.SetFlags(0)
	pflag.Usage = usage
	pflag.Parse()

	if *list {
		for _, name := range testprog.Names() {
			fmt.Println(testprog.Lookup(name).Command())
		}
		return
	}
	os.Exit(run())
}

// run boots the machine, runs the program, and returns the exit code.
func run() int {
	cfg, err := config.Resolve(*configFile)
	if err != nil {
		log.Fatal(err)
	}
	override(cfg)
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}
	level, _ := cfg.Level()
	logger := newLogger(os.Stderr, level)

	args := pflag.Args()
	var tt *testprog.Test
	if *check {
		if len(args) != 1 {
			log.Fatal("--check takes a single test name")
		}
		if tt = testprog.Lookup(args[0]); tt == nil {
			log.Fatalf("unknown test %s", args[0])
		}
		args = strings.Fields(tt.Command())
	}
	if len(args) == 0 {
		usage()
	}

	image := userprog.FS
	if cfg.Disk != "" {
		if image, err = os.ReadFile(cfg.Disk); err != nil {
			log.Fatal(err)
		}
	}
	disk, err := userprog.NewDisk(image)
	if err != nil {
		log.Fatal(err)
	}
	logger.Info("disk", "path", cfg.Disk, "files", len(disk.Names()), "blake3", disk.Sum())

	var out io.Writer = os.Stdout
	if cfg.Console != "" {
		f, err := os.Create(cfg.Console)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		out = f
	}
	var captured bytes.Buffer
	if tt != nil {
		out = io.MultiWriter(out, &captured)
	}

	sys := userprog.NewSystem(disk)
	sys.Logger = logger
	sys.Console = out
	sys.Input = os.Stdin
	sys.MaxFiles = cfg.MaxFiles
	sys.Frames = cfg.Frames
	sys.PowerOff = func() { logger.Info("power off") }
	if cfg.Trace != "" {
		w, err := ktrace.Create(cfg.Trace)
		if err != nil {
			log.Fatal(err)
		}
		sys.Recorder = w
		defer func() {
			if err := w.Close(); err != nil {
				log.Print(err)
			}
		}()
	}
	testprog.Register(sys)

	p, err := sys.Start(strings.Join(args, " "))
	if err != nil {
		log.Fatal(err)
	}
	sys.Wait()
	<-p.Done()

	code := 0
	if status, ok := p.ExitStatus(); ok {
		code = exitCode(status)
	}
	if tt != nil {
		if have := captured.String(); have != tt.Want {
			fmt.Fprintf(os.Stderr, "FAIL %s\nhave:\n%s\nwant:\n%s", tt.Name, have, tt.Want)
			code = 1
		} else {
			fmt.Fprintf(os.Stderr, "PASS %s\n", tt.Name)
			code = 0
		}
	}
	return code
}

// override applies the flags given on the command line over cfg.
func override(cfg *config.Config) {
	set := pflag.CommandLine.Changed
	if set("disk") {
		cfg.Disk = *diskFile
	}
	if set("trace") {
		cfg.Trace = *traceFile
	}
	if set("log-level") {
		cfg.LogLevel = *logLevel
	}
	if set("max-files") {
		cfg.MaxFiles = *maxFiles
	}
	if set("frames") {
		cfg.Frames = *frames
	}
	if set("console") {
		cfg.Console = *console
	}
}

// newLogger returns a text logger when w is a terminal and a JSON logger otherwise.
func newLogger(w *os.File, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if term.IsTerminal(int(w.Fd())) {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// exitCode maps a process exit status to a command exit code.
func exitCode(status int32) int {
	if status < 0 || status > 125 {
		return 1
	}
	return int(status)
}
