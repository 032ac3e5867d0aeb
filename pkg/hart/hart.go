// Package hart implements the RV32 architectural state and the
// per-opcode semantics for RV32I plus the M, A, F, and C standard
// extensions and the Zicsr/Zifencei support instructions. It owns the
// integer/float register files, the machine CSRs, the program counter,
// and the step loop; every side-effecting opcode (loads, stores,
// ECALL, EBREAK) calls back into host code through the hostio.Interface
// bound to the hart at construction.
package hart

import (
	"errors"

	"github.com/bassosimone/rv32emu/pkg/decode"
	"github.com/bassosimone/rv32emu/pkg/hostio"
)

// NumRegisters is the number of integer and floating-point general
// purpose registers.
const NumRegisters = 32

// defaultSP is the stack pointer value installed by Reset: a fixed,
// 16-byte-aligned address near the top of the 32-bit address space.
const defaultSP = 0xFFFFFFF0

// Exception codes for the four synchronous traps this core recognises.
const (
	ExcInstructionMisaligned = 0
	ExcIllegalInstruction    = 2
	ExcLoadMisaligned        = 4
	ExcStoreMisaligned       = 6
)

// ErrMisalignedPC is returned by SetPC when pc does not satisfy the
// alignment required by the active ISA profile.
var ErrMisalignedPC = errors.New("hart: misaligned program counter")

// Hart is a single emulated RISC-V hart. It is not goroutine-safe; a
// single goroutine must drive Step, and host I/O callbacks must not
// re-enter the hart they were invoked from.
type Hart struct {
	X [NumRegisters]uint32 // integer registers; X[0] always reads zero
	F [NumRegisters]uint32 // float registers, held as raw IEEE-754 bit patterns
	PC uint32

	// InsnLen is the width, in bytes, of the most recently fetched
	// instruction (2 or 4).
	InsnLen int

	Mstatus  uint32
	Mtvec    uint32
	Misa     uint32
	Mscratch uint32
	Mepc     uint32
	Mcause   uint32
	Mtval    uint32
	Mip      uint32
	Mcycle   uint64
	Fcsr     uint32

	halted  bool
	trapped bool

	// reserved records whether LR.W has established the (unmodelled)
	// reservation placeholder described in §4.3's A-extension notes.
	reserved bool

	// Breakpoint is the single software-breakpoint slot described in
	// §3's debug auxiliaries.
	BreakpointPC      uint32
	BreakpointPresent bool

	Ext decode.Extensions
	IO  hostio.Interface

	// UserData is an opaque pointer a host can stash at construction
	// time and recover from within its I/O callbacks.
	UserData any
}

// New constructs a hart bound to the given host I/O interface and
// resets it to PC 0.
func New(io hostio.Interface, userData any, ext decode.Extensions) *Hart {
	h := &Hart{IO: io, UserData: userData, Ext: ext}
	h.Reset(0)
	return h
}

// Reset sets PC, clears the general-purpose and floating-point
// register files, resets the CSRs, installs the default stack pointer,
// and clears the halt flag.
func (h *Hart) Reset(pc uint32) {
	h.X = [NumRegisters]uint32{}
	h.F = [NumRegisters]uint32{}
	h.Mstatus = 0
	h.Mtvec = 0
	h.Misa = 0
	h.Mscratch = 0
	h.Mepc = 0
	h.Mcause = 0
	h.Mtval = 0
	h.Mip = 0
	h.Mcycle = 0
	h.Fcsr = 0
	h.halted = false
	h.reserved = false
	h.PC = pc
	h.X[2] = defaultSP // sp
}

// SetPC sets the program counter. It fails with ErrMisalignedPC (and
// leaves the hart's state unchanged) if pc does not satisfy the
// alignment the active ISA profile requires.
func (h *Hart) SetPC(pc uint32) error {
	if pc&h.Ext.PCAlignMask() != 0 {
		return ErrMisalignedPC
	}
	h.PC = pc
	return nil
}

// GetPC returns the current program counter.
func (h *Hart) GetPC() uint32 { return h.PC }

// GetReg returns the value of integer register i, or ^uint32(0) if i is
// out of range.
func (h *Hart) GetReg(i uint32) uint32 {
	if i >= NumRegisters {
		return ^uint32(0)
	}
	return h.X[i]
}

// SetReg sets integer register i to v. Writes to x0 or to an
// out-of-range index are silently ignored.
func (h *Hart) SetReg(i uint32, v uint32) {
	if i == 0 || i >= NumRegisters {
		return
	}
	h.X[i] = v
}

// Halt requests termination of the step loop; it takes effect the next
// time Step checks it, typically from within an EBREAK or ECALL
// handler.
func (h *Hart) Halt() { h.halted = true }

// HasHalted reports whether Halt has been called.
func (h *Hart) HasHalted() bool { return h.halted }
