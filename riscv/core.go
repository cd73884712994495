// Package riscv implements a minimal, fully deterministic RV32I/RV64I
// core with the M (multiply/divide) extension: just enough of the
// instruction set to exercise the fraud-proof protocol end to end.
// Compressed (C) instructions are not decoded; see DESIGN.md for why.
package riscv

import "github.com/zeroqn/woss/common"

// ISA identifiers, mirroring original_source's isa/version fields in a
// StepProof: which base integer width this Core was built for.
const (
	ISARV32 uint8 = 32
	ISARV64 uint8 = 64
)

// Version is the instruction-set revision recorded in every commitment;
// bumping it intentionally changes every commitment computed with it.
const Version uint32 = 1

// Memory is the byte-addressable backing store a Core executes against.
// memory.SMTMemory[W] satisfies this directly.
type Memory interface {
	Load8(addr uint64) (uint8, error)
	Load16(addr uint64) (uint16, error)
	Load32(addr uint64) (uint32, error)
	Load64(addr uint64) (uint64, error)
	Store8(addr uint64, val uint8) error
	Store16(addr uint64, val uint16) error
	Store32(addr uint64, val uint32) error
	Store64(addr uint64, val uint64) error
}

// Core is the register file and control state of a RISC-V hart. It
// never touches memory on its own: every Step call is handed the Memory
// to execute against, so the same Core can run against an SMTMemory in
// production or a plain byte-slice or mocked Memory in a test.
type Core[W common.Word] struct {
	Regs      [32]W
	PC        W
	NextPC    W
	Cycles    uint64
	MaxCycles uint64
	Running   bool
	ISA       uint8
	Version   uint32
}

// New returns a Core ready to run, with x0 pinned to zero and PC at
// entry.
func New[W common.Word](isa uint8, maxCycles uint64, entry W) *Core[W] {
	return &Core[W]{
		PC:        entry,
		NextPC:    entry,
		MaxCycles: maxCycles,
		Running:   true,
		ISA:       isa,
		Version:   Version,
	}
}

// Reg returns register i, always zero for x0.
func (c *Core[W]) Reg(i int) W {
	if i == 0 {
		return 0
	}
	return c.Regs[i]
}

// SetReg sets register i, a no-op for x0.
func (c *Core[W]) SetReg(i int, v W) {
	if i == 0 {
		return
	}
	c.Regs[i] = v
}

// Halted reports whether the core has stopped executing, either because
// it ran out of cycles, or because it executed an ECALL or fetched an
// all-zero instruction word.
func (c *Core[W]) Halted() bool {
	return !c.Running || c.Cycles >= c.MaxCycles
}
