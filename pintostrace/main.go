// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Pintostrace prints a system call trace recorded by pintosrun --trace.
//
// Usage:
//
//	pintostrace [-p pid] [-k kind] file
//
// Files whose names end in .lz4 are decompressed.
// The -p flag shows only events from the given process.
// The -k flag shows only events of the given kind
// (syscall, fault, exit, halt).
package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/pflag"
	"rsc.io/pintos/ktrace"
)

var (
	pidFlag  = pflag.IntP("pid", "p", 0, "show only events from process `pid`")
	kindFlag = pflag.StringP("kind", "k", "", "show only events of `kind`")
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: pintostrace [-p pid] [-k kind] file\n")
	os.Exit(2)
}

func main() {
	log.SetPrefix("pintostrace: ")
	log.SetFlags(0)
	pflag.Usage = usage
	pflag.Parse()
	if pflag.NArg() != 1 {
		usage()
	}

	r, err := ktrace.Open(pflag.Arg(0))
	if err != nil {
		log.Fatal(err)
	}
	defer r.Close()
	if err := dump(os.Stdout, r, *pidFlag, *kindFlag); err != nil {
		log.Fatal(err)
	}
}

// dump prints the events from r that match pid and kind.
// A zero pid or empty kind matches everything.
func dump(w io.Writer, r *ktrace.Reader, pid int, kind string) error {
	for {
		e, err := r.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if pid != 0 && e.Pid != pid || kind != "" && e.Kind.String() != kind {
			continue
		}
		if _, err := fmt.Fprintln(w, e); err != nil {
			return err
		}
	}
}
