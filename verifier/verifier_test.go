package verifier

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zeroqn/woss/machine"
	"github.com/zeroqn/woss/riscv"
)

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

func TestVerifierReplaysExactlyOneStep(t *testing.T) {
	prog := encodeBytes(
		encodeI(opImm, 1, 0, 0, 64),
		encodeI(opImm, 2, 0, 0, 3),
		encodeS(opStore, 2, 1, 2, 0),
	)
	m := machine.NewProver[uint32](riscv.ISARV32, 10, 0, 4096)
	require.NoError(t, m.LoadProgram(prog, 0))
	_, err := m.RunUntilStep(2)
	require.NoError(t, err)

	preCommit := m.CommitStep()
	proof, err := m.ProveNextStep()
	require.NoError(t, err)
	postCommit := m.CommitStep()

	v, err := FromProof[uint32](proof)
	require.NoError(t, err)

	got, err := v.CommitStep()
	require.NoError(t, err)
	require.Equal(t, preCommit, got)

	next, err := v.ExecuteNextStep()
	require.NoError(t, err)
	require.Equal(t, postCommit, next)
}

func TestVerifierReplaysStepWithNoDataAccess(t *testing.T) {
	// A proof covering an instruction that makes no data access discloses
	// only the memory chunk its own fetch reads; a verifier restored from
	// it replays the step from that alone.
	prog := encodeBytes(encodeI(opImm, 1, 0, 0, 1))
	m := machine.NewProver[uint32](riscv.ISARV32, 10, 0, 4096)
	require.NoError(t, m.LoadProgram(prog, 0))

	proof, err := m.ProveNextStep()
	require.NoError(t, err)
	require.Len(t, proof.Memory.KVs, 1)

	v, err := FromProof[uint32](proof)
	require.NoError(t, err)
	_, err = v.ExecuteNextStep()
	require.NoError(t, err)
}
