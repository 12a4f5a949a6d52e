// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package userprog

import (
	"bytes"
	_ "embed"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/zeebo/blake3"
	"golang.org/x/tools/txtar"
)

//go:embed disk.txtar
var FS []byte

// NameMax is the longest file name the disk accepts.
const NameMax = 14

// A FileSys is the file system processes open files in.
// It is not reentrant: the kernel holds the file system lock
// across every call into a FileSys or a File.
type FileSys interface {
	Open(name string) (File, error)
}

// A File is an open file.
type File interface {
	Read(b []byte) (int, error)  // read at the offset, advancing it
	Write(b []byte) (int, error) // write at the offset; files never grow
	SetOffset(off int)
	Offset() int
	Size() int
	Close() // release the file; called exactly once
}

var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// A Disk is a flat in-memory file system loaded from a txtar archive.
type Disk struct {
	inodes map[string]*inode
	sum    [32]byte
}

type inode struct {
	name string
	data []byte
	open int // open files referring to this inode
}

// NewDisk loads a disk from a txtar archive, which may be zstd-compressed.
// Each archive file name is the file's name, optionally followed by
// b64=1 when the content is base64-encoded.
func NewDisk(archive []byte) (*Disk, error) {
	if bytes.HasPrefix(archive, zstdMagic) {
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		archive, err = dec.DecodeAll(archive, nil)
		if err != nil {
			return nil, fmt.Errorf("decompressing disk: %w", err)
		}
	}

	d := &Disk{inodes: make(map[string]*inode), sum: blake3.Sum256(archive)}
	ar := txtar.Parse(archive)
	for _, file := range ar.Files {
		f := strings.Fields(file.Name)
		if len(f) == 0 {
			return nil, fmt.Errorf("invalid txtar file name %q", file.Name)
		}
		name := f[0]
		b64 := false
		for _, arg := range f[1:] {
			k, v, ok := strings.Cut(arg, "=")
			if !ok || k != "b64" {
				return nil, fmt.Errorf("invalid txtar k=v: %s", arg)
			}
			var err error
			if b64, err = strconv.ParseBool(v); err != nil {
				return nil, fmt.Errorf("invalid txtar k=v: %s", arg)
			}
		}
		if err := checkName(name); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		if d.inodes[name] != nil {
			return nil, fmt.Errorf("%s: duplicate file", name)
		}
		data := bytes.Clone(file.Data)
		if b64 {
			dec, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(data)))
			if err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			data = dec
		}
		d.inodes[name] = &inode{name: name, data: data}
	}
	return d, nil
}

func checkName(name string) error {
	if name == "" || len(name) > NameMax || strings.Contains(name, "/") {
		return ErrInvalidName
	}
	return nil
}

// Sum returns the BLAKE3 digest of the (uncompressed) image, in hex.
func (d *Disk) Sum() string {
	return hex.EncodeToString(d.sum[:])
}

// Names returns the names of the files on d, sorted.
func (d *Disk) Names() []string {
	var names []string
	for name := range d.inodes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ReadFile returns a copy of the named file's contents.
func (d *Disk) ReadFile(name string) ([]byte, error) {
	ip := d.inodes[name]
	if ip == nil {
		return nil, ErrNotExist
	}
	return bytes.Clone(ip.data), nil
}

// Open opens the named file.
func (d *Disk) Open(name string) (File, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	ip := d.inodes[name]
	if ip == nil {
		return nil, ErrNotExist
	}
	ip.open++
	return &diskFile{ip: ip}, nil
}

// OpenCount returns the number of open files referring to name.
func (d *Disk) OpenCount(name string) int {
	if ip := d.inodes[name]; ip != nil {
		return ip.open
	}
	return 0
}

type diskFile struct {
	ip     *inode
	off    int
	closed bool
}

// An offset that does not fit in an int is stored negative
// and behaves like any other offset past the end of the file.

func (f *diskFile) Read(b []byte) (int, error) {
	if f.off < 0 || f.off >= len(f.ip.data) {
		return 0, io.EOF
	}
	n := copy(b, f.ip.data[f.off:])
	f.off += n
	return n, nil
}

func (f *diskFile) Write(b []byte) (int, error) {
	if f.off < 0 || f.off >= len(f.ip.data) {
		return 0, io.ErrShortWrite
	}
	n := copy(f.ip.data[f.off:], b)
	f.off += n
	if n < len(b) {
		return n, io.ErrShortWrite
	}
	return n, nil
}

func (f *diskFile) SetOffset(off int) { f.off = off }
func (f *diskFile) Offset() int       { return f.off }
func (f *diskFile) Size() int         { return len(f.ip.data) }

func (f *diskFile) Close() {
	if f.closed {
		panic("close of closed file")
	}
	f.closed = true
	f.ip.open--
}
