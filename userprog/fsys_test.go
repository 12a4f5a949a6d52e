// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package userprog

import (
	"bytes"
	"errors"
	"io"
	"slices"
	"testing"

	"github.com/klauspost/compress/zstd"
	"golang.org/x/tools/txtar"
)

func TestNewDisk(t *testing.T) {
	d, err := NewDisk(FS)
	if err != nil {
		t.Fatal(err)
	}
	if names := d.Names(); !slices.Equal(names, []string{"bytes", "empty", "real.txt", "sample.txt"}) {
		t.Fatalf("Names() = %q", names)
	}
	data, err := d.ReadFile("bytes")
	if err != nil {
		t.Fatal(err)
	}
	if want := []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}; !bytes.Equal(data, want) {
		t.Fatalf("bytes = % x, want % x", data, want)
	}
	if data, _ := d.ReadFile("real.txt"); string(data) != "hello, world\n" {
		t.Fatalf("real.txt = %q", data)
	}
}

func TestCompressedDisk(t *testing.T) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		t.Fatal(err)
	}
	z := enc.EncodeAll(FS, nil)
	enc.Close()

	d1, err := NewDisk(FS)
	if err != nil {
		t.Fatal(err)
	}
	d2, err := NewDisk(z)
	if err != nil {
		t.Fatal(err)
	}
	if d1.Sum() != d2.Sum() {
		t.Fatalf("compressed image sum %s, want %s", d2.Sum(), d1.Sum())
	}
	if !slices.Equal(d1.Names(), d2.Names()) {
		t.Fatalf("compressed image names %q, want %q", d2.Names(), d1.Names())
	}
}

func TestBadDisk(t *testing.T) {
	for _, ar := range []*txtar.Archive{
		{Files: []txtar.File{{Name: "a/b", Data: []byte("x")}}},
		{Files: []txtar.File{{Name: "waytoolongfilename", Data: []byte("x")}}},
		{Files: []txtar.File{{Name: "a mode=1", Data: []byte("x")}}},
		{Files: []txtar.File{{Name: "a b64=1", Data: []byte("!!!")}}},
		{Files: []txtar.File{{Name: "a"}, {Name: "a"}}},
	} {
		if _, err := NewDisk(txtar.Format(ar)); err == nil {
			t.Errorf("NewDisk(%q) succeeded", ar.Files[0].Name)
		}
	}
}

func TestDiskOpen(t *testing.T) {
	d, err := NewDisk(FS)
	if err != nil {
		t.Fatal(err)
	}
	for _, tt := range []struct {
		name string
		err  error
	}{
		{"", ErrInvalidName},
		{"missing.txt", ErrNotExist},
		{"nonexistent.txt", ErrInvalidName},
		{"/real.txt", ErrInvalidName},
		{"real.txt", nil},
	} {
		f, err := d.Open(tt.name)
		if !errors.Is(err, tt.err) {
			t.Errorf("Open(%q) = %v, want %v", tt.name, err, tt.err)
		}
		if f != nil {
			f.Close()
		}
	}
}

func TestDiskFile(t *testing.T) {
	d, err := NewDisk(FS)
	if err != nil {
		t.Fatal(err)
	}
	f, err := d.Open("real.txt")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if n, err := f.Write([]byte("HELLO")); n != 5 || err != nil {
		t.Fatalf("Write = %d, %v, want 5, nil", n, err)
	}
	f.SetOffset(7)
	if n, err := f.Write([]byte("WORLD!!!")); n != 6 || err != io.ErrShortWrite {
		t.Fatalf("Write past end = %d, %v, want 6, %v", n, err, io.ErrShortWrite)
	}
	if f.Size() != len("hello, world\n") {
		t.Fatalf("Size = %d after writes; files must not grow", f.Size())
	}
	f.SetOffset(0)
	b := make([]byte, 100)
	n, _ := f.Read(b)
	if string(b[:n]) != "HELLO, WORLD!" {
		t.Fatalf("Read = %q, want %q", b[:n], "HELLO, WORLD!")
	}
	if n, err := f.Read(b); n != 0 || err != io.EOF {
		t.Fatalf("Read at end = %d, %v, want 0, EOF", n, err)
	}
	if f.Offset() != 13 {
		t.Fatalf("Offset = %d, want 13", f.Offset())
	}

	if b, _ := d.ReadFile("real.txt"); string(b) != "HELLO, WORLD!" {
		t.Fatalf("ReadFile after writes = %q", b)
	}
	d2, err := NewDisk(FS)
	if err != nil {
		t.Fatal(err)
	}
	if b, _ := d2.ReadFile("real.txt"); string(b) != "hello, world\n" {
		t.Fatalf("embedded image modified: %q", b)
	}
}

func TestDiskFileNegativeOffset(t *testing.T) {
	d, err := NewDisk(FS)
	if err != nil {
		t.Fatal(err)
	}
	f, err := d.Open("real.txt")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	f.SetOffset(-1)
	if n, err := f.Read(make([]byte, 4)); n != 0 || err != io.EOF {
		t.Errorf("Read at offset -1 = %d, %v, want 0, EOF", n, err)
	}
	if n, err := f.Write([]byte("x")); n != 0 || err != io.ErrShortWrite {
		t.Errorf("Write at offset -1 = %d, %v, want 0, %v", n, err, io.ErrShortWrite)
	}
	if f.Offset() != -1 {
		t.Errorf("Offset = %d, want -1", f.Offset())
	}
}
