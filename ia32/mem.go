// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ia32

import "errors"

const (
	PGBITS = 12          // number of offset bits in a virtual address
	PGSIZE = 1 << PGBITS // bytes in a page
	PGMASK = PGSIZE - 1  // page offset bits
	WORD   = 4           // bytes in a machine word

	PhysBase uint32 = 0xc0000000 // base of kernel virtual memory
	UserBase uint32 = 0x08048000 // lowest address a user program may use
)

var (
	ErrMem     = errors.New("invalid memory access")
	ErrMapped  = errors.New("page already mapped")
	ErrAlign   = errors.New("address not page aligned")
	ErrKernel  = errors.New("kernel virtual address")
	ErrNoFrame = errors.New("out of frames")
)

// PgOfs returns the offset of va within its page.
func PgOfs(va uint32) uint32 { return va & PGMASK }

// PgRoundDown returns the start of the page containing va.
func PgRoundDown(va uint32) uint32 { return va &^ PGMASK }

// IsUserVaddr reports whether va lies below the kernel/user split.
func IsUserVaddr(va uint32) bool { return va < PhysBase }

// A Memory is user memory as seen by the CPU running in user mode.
// Accesses to unmapped pages, or writes to read-only pages, return ErrMem.
type Memory interface {
	ReadB(addr uint32) (uint8, error)
	ReadW(addr uint32) (uint32, error)
	WriteB(addr uint32, val uint8) error
	WriteW(addr uint32, val uint32) error
}

type frame [PGSIZE]byte

type pte struct {
	frame    *frame
	writable bool
}

// A PageDir maps the user pages of one address space to the frames backing them.
// A PageDir is owned by a single process and is not safe for concurrent mutation.
type PageDir struct {
	ptes   map[uint32]*pte
	frames int // remaining frame budget, or -1 for unlimited
}

// NewPageDir returns an empty page directory.
// If frames is positive, at most that many pages may be mapped at once.
func NewPageDir(frames int) *PageDir {
	if frames <= 0 {
		frames = -1
	}
	return &PageDir{ptes: make(map[uint32]*pte), frames: frames}
}

// Map maps the user page at upage to a fresh zeroed frame.
func (pd *PageDir) Map(upage uint32, writable bool) error {
	if PgOfs(upage) != 0 {
		return ErrAlign
	}
	if !IsUserVaddr(upage) {
		return ErrKernel
	}
	if pd.ptes == nil {
		return ErrMem
	}
	if pd.ptes[upage] != nil {
		return ErrMapped
	}
	if pd.frames == 0 {
		return ErrNoFrame
	}
	if pd.frames > 0 {
		pd.frames--
	}
	pd.ptes[upage] = &pte{frame: new(frame), writable: writable}
	return nil
}

// Unmap removes the mapping for the page containing va, if any.
func (pd *PageDir) Unmap(va uint32) {
	upage := PgRoundDown(va)
	if pd.ptes[upage] == nil {
		return
	}
	delete(pd.ptes, upage)
	if pd.frames >= 0 {
		pd.frames++
	}
}

// GetPage returns the kernel view of the frame mapped at va,
// starting at va's page offset and running to the end of the page.
// It returns nil if va is a kernel address or is not mapped.
func (pd *PageDir) GetPage(va uint32) []byte {
	if !IsUserVaddr(va) {
		return nil
	}
	e := pd.ptes[PgRoundDown(va)]
	if e == nil {
		return nil
	}
	return e.frame[PgOfs(va):]
}

// Writable reports whether va is mapped read/write.
func (pd *PageDir) Writable(va uint32) bool {
	if !IsUserVaddr(va) {
		return false
	}
	e := pd.ptes[PgRoundDown(va)]
	return e != nil && e.writable
}

// Mapped returns the number of mapped pages.
func (pd *PageDir) Mapped() int { return len(pd.ptes) }

// Destroy unmaps every page. Later lookups fail.
func (pd *PageDir) Destroy() {
	pd.ptes = nil
}

func (pd *PageDir) ReadB(addr uint32) (uint8, error) {
	b := pd.GetPage(addr)
	if b == nil {
		return 0, ErrMem
	}
	return b[0], nil
}

func (pd *PageDir) ReadW(addr uint32) (uint32, error) {
	var v uint32
	for i := uint32(0); i < WORD; i++ {
		b, err := pd.ReadB(addr + i)
		if err != nil {
			return 0, err
		}
		v |= uint32(b) << (8 * i)
	}
	return v, nil
}

func (pd *PageDir) WriteB(addr uint32, val uint8) error {
	if !pd.Writable(addr) {
		return ErrMem
	}
	pd.GetPage(addr)[0] = val
	return nil
}

func (pd *PageDir) WriteW(addr uint32, val uint32) error {
	// Check every byte first so a faulting word write stores nothing.
	for i := uint32(0); i < WORD; i++ {
		if !pd.Writable(addr + i) {
			return ErrMem
		}
	}
	for i := uint32(0); i < WORD; i++ {
		pd.GetPage(addr + i)[0] = uint8(val >> (8 * i))
	}
	return nil
}
