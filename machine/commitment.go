// Package machine wraps a riscv.Core with its content-addressed memory and
// a step counter, folding the whole observable state into the 32-byte
// commitment the dissection and on-chain verification protocol is built
// around. Like memory and smt, a *Machine[W] is not safe for concurrent use
// by more than one goroutine.
package machine

import (
	"github.com/zeroqn/woss/common"
	"github.com/zeroqn/woss/memory"
)

var commitHasher = common.WOSSHasher()

// bitsOf reports the width, in bits, of the register type W: 32 for
// uint32, 64 for anything else (uint64, by the Word constraint). Mirrors
// the any(v).(type) pattern riscv/exec.go uses for signed/shiftMask.
func bitsOf[W common.Word]() uint32 {
	var zero W
	if _, ok := any(zero).(uint32); ok {
		return 32
	}
	return 64
}

// State is every field folded into a state commitment: the full register
// file, the current and pending program counters, the memory commitment,
// and the scalar machine-control fields.
type State[W common.Word] struct {
	Registers [32]W
	PC        W
	NextPC    W
	Memory    memory.Commitment
	Cycles    uint64
	MaxCycles uint64
	Running   bool
	ISA       uint8
	Version   uint32
}

// Commit computes the state commitment of s bit-exactly per the folding
// order: Machine(Registers, PC, Next_PC, Memory, Cycles, Max_Cycles,
// Running, ISA, Version). Two states commit equal iff every folded field is
// equal.
func Commit[W common.Word](s State[W]) common.Byte32 {
	bits := bitsOf[W]()

	hRegs := registersHash(s.Registers, bits)
	hPC := regFieldHash("PC", bits, uint64(s.PC))
	hNextPC := regFieldHash("Next_PC", bits, uint64(s.NextPC))
	hMem := commitHasher.Sum([]byte("Memory"), common.FromU64LE(s.Memory.Size), s.Memory.Root[:])
	hCycles := commitHasher.Sum([]byte("Cycles"), common.FromU64LE(s.Cycles))
	hMaxCycles := commitHasher.Sum([]byte("Max_Cycles"), common.FromU64LE(s.MaxCycles))
	hRunning := commitHasher.Sum([]byte("Running"), []byte{boolToByte(s.Running)})
	hISA := commitHasher.Sum([]byte("ISA"), []byte{s.ISA})
	hVersion := commitHasher.Sum([]byte("Version"), common.FromU32LE(s.Version))

	return commitHasher.Sum(
		[]byte("Machine"),
		hRegs[:], hPC[:], hNextPC[:], hMem[:],
		hCycles[:], hMaxCycles[:], hRunning[:], hISA[:], hVersion[:],
	)
}

// registersHash folds H("Registers" || for i in 0..32: i, bits(R), regs[i]).
func registersHash[W common.Word](regs [32]W, bits uint32) common.Byte32 {
	parts := make([][]byte, 0, 1+3*len(regs))
	parts = append(parts, []byte("Registers"))
	for i, r := range regs {
		parts = append(parts, common.FromU64LE(uint64(i)), common.FromU32LE(bits), common.FromU64LE(uint64(r)))
	}
	return commitHasher.Sum(parts...)
}

func regFieldHash(label string, bits uint32, val uint64) common.Byte32 {
	return commitHasher.Sum([]byte(label), common.FromU32LE(bits), common.FromU64LE(val))
}

func boolToByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
