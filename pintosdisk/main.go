// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Pintosdisk builds the txtar disk images booted by pintosrun.
//
// Usage:
//
//	pintosdisk [-o out.txtar] [-z] dir
//	pintosdisk -x [-o dir] image
//	pintosdisk -l image
//
// By default pintosdisk packs the regular files in dir into a disk image.
// Files that are not valid UTF-8 text, or that would not survive the
// txtar format unchanged, are stored base64-encoded and marked b64=1.
//
// The -o flag specifies the output (default standard output, or _fs with -x).
//
// The -z flag compresses the image with zstd. The kernel accepts either form.
//
// The -x flag inverts the operation: image is unpacked into the -o directory.
//
// The -l flag lists the files in image with their sizes.
//
// The BLAKE3 digest of the uncompressed image is printed to standard error;
// pintosrun logs the same digest when it boots.
package main

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"unicode/utf8"

	"github.com/klauspost/compress/zstd"
	"github.com/spf13/pflag"
	"github.com/zeebo/blake3"
	"golang.org/x/tools/txtar"
	"rsc.io/pintos/userprog"
)

var (
	outfile = pflag.StringP("output", "o", "", "write output to `file`")
	zflag   = pflag.BoolP("zstd", "z", false, "compress the image with zstd")
	xflag   = pflag.BoolP("extract", "x", false, "extract a disk image")
	lflag   = pflag.BoolP("list", "l", false, "list the files in a disk image")
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: pintosdisk [-o out.txtar] [-z] dir\n")
	fmt.Fprintf(os.Stderr, "       pintosdisk -x [-o dir] image\n")
	fmt.Fprintf(os.Stderr, "       pintosdisk -l image\n")
	os.Exit(2)
}

func main() {
	log.SetPrefix("pintosdisk: ")
	log.SetFlags(0)
	pflag.Usage = usage
	pflag.Parse()
	args := pflag.Args()
	if len(args) != 1 {
		usage()
	}

	if *xflag || *lflag {
		data, err := os.ReadFile(args[0])
		if err != nil {
			log.Fatal(err)
		}
		d, err := userprog.NewDisk(data)
		if err != nil {
			log.Fatalf("%s: %v", args[0], err)
		}
		if *lflag {
			for _, name := range d.Names() {
				b, _ := d.ReadFile(name)
				fmt.Printf("%8d %s\n", len(b), name)
			}
		} else {
			extract(d)
		}
		fmt.Fprintf(os.Stderr, "blake3 %s\n", d.Sum())
		return
	}

	archive, err := pack(args[0])
	if err != nil {
		log.Fatal(err)
	}
	sum := blake3.Sum256(archive)
	if *zflag {
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
		if err != nil {
			log.Fatal(err)
		}
		archive = enc.EncodeAll(archive, nil)
		enc.Close()
	}
	if *outfile == "" {
		_, err = os.Stdout.Write(archive)
	} else {
		err = os.WriteFile(*outfile, archive, 0666)
	}
	if err != nil {
		log.Fatal(err)
	}
	fmt.Fprintf(os.Stderr, "blake3 %s\n", hex.EncodeToString(sum[:]))
}

// pack returns a txtar image of the regular files in dir.
func pack(dir string) ([]byte, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	ar := &txtar.Archive{
		Comment: []byte("Root directory of the disk.\n"),
	}
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		name := e.Name()
		if len(name) > userprog.NameMax {
			return nil, fmt.Errorf("%s: name longer than %d bytes", name, userprog.NameMax)
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		if needsBase64(data) {
			name += " b64=1"
			data = []byte(wrap(base64.StdEncoding.EncodeToString(data)))
		}
		ar.Files = append(ar.Files, txtar.File{Name: name, Data: data})
	}
	sort.Slice(ar.Files, func(i, j int) bool { return ar.Files[i].Name < ar.Files[j].Name })
	return txtar.Format(ar), nil
}

// needsBase64 reports whether data would be altered by storing it as txtar text.
func needsBase64(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	return !utf8.Valid(data) ||
		bytes.HasPrefix(data, []byte("-- ")) ||
		bytes.Contains(data, []byte("\n-- ")) ||
		!bytes.HasSuffix(data, []byte("\n"))
}

func wrap(text string) string {
	if len(text) < 70 {
		return text + "\n"
	}
	return text[:70] + "\n" + wrap(text[70:])
}

func extract(d *userprog.Disk) {
	dir := *outfile
	if dir == "" {
		dir = "_fs"
	}
	if err := os.MkdirAll(dir, 0777); err != nil {
		log.Fatal(err)
	}
	for _, name := range d.Names() {
		data, err := d.ReadFile(name)
		if err != nil {
			log.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(dir, name), data, 0666); err != nil {
			log.Fatal(err)
		}
	}
}
