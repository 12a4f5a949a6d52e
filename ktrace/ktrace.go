// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ktrace records kernel events as a stream of CBOR values.
//
// A trace file is a concatenation of CBOR-encoded Events.
// Files whose names end in ".lz4" are additionally lz4-framed.
package ktrace

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fxamacker/cbor/v2"
	"github.com/pierrec/lz4/v4"
)

// A Kind identifies what happened.
type Kind uint8

const (
	KindSyscall Kind = 1 + iota // a dispatched system call
	KindFault                   // a process killed for a bad address
	KindExit                    // a process exited
	KindHalt                    // the machine was powered off
)

func (k Kind) String() string {
	switch k {
	case KindSyscall:
		return "syscall"
	case KindFault:
		return "fault"
	case KindExit:
		return "exit"
	case KindHalt:
		return "halt"
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// An Event is one trace record.
type Event struct {
	Seq  uint64 `cbor:"1,keyasint"`
	Pid  int    `cbor:"2,keyasint"`
	Proc string `cbor:"3,keyasint,omitempty"`
	Kind Kind   `cbor:"4,keyasint"`
	Call string `cbor:"5,keyasint,omitempty"` // rendered call, such as open("a") = 2
	Ret  int32  `cbor:"6,keyasint,omitempty"` // return value or exit status
	Addr uint32 `cbor:"7,keyasint,omitempty"` // faulting address
}

func (e Event) String() string {
	switch e.Kind {
	case KindSyscall:
		return fmt.Sprintf("%d [pid %d] %s", e.Seq, e.Pid, e.Call)
	case KindFault:
		return fmt.Sprintf("%d [pid %d] fault at %08x", e.Seq, e.Pid, e.Addr)
	case KindExit:
		return fmt.Sprintf("%d [pid %d] %s: exit(%d)", e.Seq, e.Pid, e.Proc, e.Ret)
	}
	return fmt.Sprintf("%d [pid %d] %v", e.Seq, e.Pid, e.Kind)
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("ktrace: cbor encoder: " + err.Error())
	}
	decMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("ktrace: cbor decoder: " + err.Error())
	}
}

// A Writer appends events to a trace. It is safe for concurrent use.
type Writer struct {
	mu     sync.Mutex
	enc    *cbor.Encoder
	seq    uint64
	closer []io.Closer
}

// NewWriter returns a Writer encoding events to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{enc: encMode.NewEncoder(w)}
}

// Create creates the named trace file.
func Create(name string) (*Writer, error) {
	f, err := os.Create(name)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(name, ".lz4") {
		w := NewWriter(f)
		w.closer = []io.Closer{f}
		return w, nil
	}
	zw := lz4.NewWriter(f)
	w := NewWriter(zw)
	w.closer = []io.Closer{zw, f}
	return w, nil
}

// Record assigns e the next sequence number and writes it.
func (w *Writer) Record(e Event) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.seq++
	e.Seq = w.seq
	return w.enc.Encode(e)
}

// Close flushes and closes any file opened by Create.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	var errs []error
	for _, c := range w.closer {
		errs = append(errs, c.Close())
	}
	w.closer = nil
	return errors.Join(errs...)
}

// A Reader decodes events from a trace.
type Reader struct {
	dec    *cbor.Decoder
	closer io.Closer
}

// NewReader returns a Reader decoding events from r.
func NewReader(r io.Reader) *Reader {
	return &Reader{dec: decMode.NewDecoder(r)}
}

// Open opens the named trace file.
func Open(name string) (*Reader, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	var r io.Reader = f
	if strings.HasSuffix(name, ".lz4") {
		r = lz4.NewReader(f)
	}
	rd := NewReader(r)
	rd.closer = f
	return rd, nil
}

// Next returns the next event, or io.EOF at the end of the trace.
func (r *Reader) Next() (Event, error) {
	var e Event
	if err := r.dec.Decode(&e); err != nil {
		return Event{}, err
	}
	return e, nil
}

// Close closes the file opened by Open, if any.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}
