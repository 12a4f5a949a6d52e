// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ia32 models the parts of a 32-bit x86 machine that the
// user-program kernel touches: the interrupt frame saved on a trap
// and the paged user address space.
package ia32

import "fmt"

// SyscallVec is the interrupt vector user programs use to enter the kernel.
const SyscallVec = 0x30

// A RegNum is a general-purpose register number, in the order
// the CPU pushes them with pushal.
type RegNum uint8

const (
	EAX RegNum = iota
	ECX
	EDX
	EBX
	ESP
	EBP
	ESI
	EDI
	NREG
)

var regNames = [NREG]string{"eax", "ecx", "edx", "ebx", "esp", "ebp", "esi", "edi"}

// String returns the register name for r: eax, ecx, and so on.
func (r RegNum) String() string {
	if r < NREG {
		return regNames[r]
	}
	return fmt.Sprintf("r%d", r)
}

// An IntrFrame is the register state saved when user code traps into the kernel.
type IntrFrame struct {
	R     [NREG]uint32 // general registers
	EIP   uint32       // saved instruction pointer
	VecNo uint8        // interrupt vector number
}

// SP returns the user stack pointer at the time of the trap.
func (f *IntrFrame) SP() uint32 { return f.R[ESP] }

// SetReturn stores v in the accumulator, where user code
// finds the result of a system call.
func (f *IntrFrame) SetReturn(v int32) { f.R[EAX] = uint32(v) }

// Return returns the accumulator as a signed value.
func (f *IntrFrame) Return() int32 { return int32(f.R[EAX]) }

func (f *IntrFrame) String() string {
	return fmt.Sprintf("vec=%#x eip=%08x esp=%08x eax=%08x", f.VecNo, f.EIP, f.R[ESP], f.R[EAX])
}
