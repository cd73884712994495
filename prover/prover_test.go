package prover

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zeroqn/woss/riscv"
)

// RISC-V base opcodes used to hand-assemble tiny test programs; mirrors
// machine/machine_test.go's helpers, duplicated here since opImm/opStore
// are unexported in riscv.
const (
	opImm   = 0x13
	opStore = 0x23
)

func encodeI(opcode, rd, funct3, rs1 uint32, imm int32) uint32 {
	return (uint32(imm) << 20) | (rs1 << 15) | (funct3 << 12) | (rd << 7) | opcode
}

func encodeS(opcode, funct3, rs1, rs2 uint32, imm int32) uint32 {
	top7 := (uint32(imm) >> 5) & 0x7f
	low5 := uint32(imm) & 0x1f
	return (top7 << 25) | (rs2 << 20) | (rs1 << 15) | (funct3 << 12) | (low5 << 7) | opcode
}

func encodeBytes(words ...uint32) []byte {
	out := make([]byte, 4*len(words))
	for i, w := range words {
		out[4*i] = byte(w)
		out[4*i+1] = byte(w >> 8)
		out[4*i+2] = byte(w >> 16)
		out[4*i+3] = byte(w >> 24)
	}
	return out
}

func newTestProver() *Prover[uint32] {
	return New[uint32](Config{ISA: riscv.ISARV32, MaxCycles: 100, Entry: 0, MemSize: 4096})
}

func TestRunReturnsFullCommitmentVector(t *testing.T) {
	p := newTestProver()
	prog := encodeBytes(
		encodeI(opImm, 1, 0, 0, 5),
		encodeI(opImm, 2, 0, 1, 7),
	)
	require.NoError(t, p.LoadProgram(prog, 0))

	result, err := p.Run()
	require.NoError(t, err)
	require.EqualValues(t, 2, result.StepCount)
	require.Len(t, result.StepCommitments, 3)
}

func TestRunOnEmptyProgramYieldsSingleCommitment(t *testing.T) {
	p := newTestProver()

	result, err := p.Run()
	require.NoError(t, err)
	require.EqualValues(t, 0, result.StepCount)
	require.Len(t, result.StepCommitments, 1)
}

func TestRunUntilStepMatchesFullRunPrefix(t *testing.T) {
	p := newTestProver()
	prog := encodeBytes(
		encodeI(opImm, 1, 0, 0, 1),
		encodeI(opImm, 1, 0, 1, 1),
		encodeI(opImm, 1, 0, 1, 1),
	)
	require.NoError(t, p.LoadProgram(prog, 0))

	full, err := p.Run()
	require.NoError(t, err)

	p.Reset()
	require.NoError(t, p.LoadProgram(prog, 0))
	partial, err := p.RunUntilStep(2)
	require.NoError(t, err)

	require.Equal(t, full.StepCommitments[:3], partial.StepCommitments)
}

func TestProveNextStepAfterRunUntilStep(t *testing.T) {
	p := newTestProver()
	prog := encodeBytes(
		encodeI(opImm, 1, 0, 0, 64),
		encodeI(opImm, 2, 0, 0, 3),
		encodeS(opStore, 2, 1, 2, 0), // sw x2, 0(x1)
	)
	require.NoError(t, p.LoadProgram(prog, 0))

	_, err := p.RunUntilStep(2)
	require.NoError(t, err)

	proof, err := p.ProveNextStep()
	require.NoError(t, err)
	require.EqualValues(t, 2, proof.StepNum)
	require.NotEmpty(t, proof.Memory.KVs)
}

func TestResetAllowsReuse(t *testing.T) {
	p := newTestProver()
	prog := encodeBytes(encodeI(opImm, 1, 0, 0, 9))
	require.NoError(t, p.LoadProgram(prog, 0))

	_, err := p.Run()
	require.NoError(t, err)

	p.Reset()
	require.NoError(t, p.LoadProgram(prog, 0))
	result, err := p.Run()
	require.NoError(t, err)
	require.EqualValues(t, 1, result.StepCount)
}
