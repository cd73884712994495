package lockscript

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

func buildProofAndArgs(t *testing.T) (proof *machine.StepProof[uint32], args []byte, preCommit, postCommit machine.StepCommitment) {
	t.Helper()
	prog := encodeBytes(
		encodeI(opImm, 1, 0, 0, 64),
		encodeI(opImm, 2, 0, 0, 3),
		encodeS(opStore, 2, 1, 2, 0),
	)
	m := machine.NewProver[uint32](riscv.ISARV32, 10, 0, 4096)
	require.NoError(t, m.LoadProgram(prog, 0))
	_, err := m.RunUntilStep(2)
	require.NoError(t, err)

	preCommit = m.CommitStep()
	proof, err = m.ProveNextStep()
	require.NoError(t, err)
	postCommit = m.CommitStep()

	args = make([]byte, 64)
	copy(args[0:32], preCommit.Commitment[:])
	copy(args[32:64], postCommit.Commitment[:])
	return proof, args, preCommit, postCommit
}

func TestRunAcceptsValidProof(t *testing.T) {
	proof, args, _, _ := buildProofAndArgs(t)
	witness, err := machine.EncodeStepProof[uint32](proof)
	require.NoError(t, err)

	require.NoError(t, Run[uint32](args, witness))
}

func TestRunRejectsWrongArgsLength(t *testing.T) {
	proof, _, _, _ := buildProofAndArgs(t)
	witness, err := machine.EncodeStepProof[uint32](proof)
	require.NoError(t, err)

	err = Run[uint32]([]byte("too short"), witness)
	require.Error(t, err)
	var e *Error
	require.ErrorAs(t, err, &e)
	require.EqualValues(t, InvalidLockArgs, e.Code())
}

func TestRunRejectsEmptyWitness(t *testing.T) {
	_, args, _, _ := buildProofAndArgs(t)

	err := Run[uint32](args, nil)
	require.Error(t, err)
	var e *Error
	require.ErrorAs(t, err, &e)
	require.EqualValues(t, InvalidWitness, e.Code())
}

func TestRunRejectsTruncatedWitness(t *testing.T) {
	proof, args, _, _ := buildProofAndArgs(t)
	witness, err := machine.EncodeStepProof[uint32](proof)
	require.NoError(t, err)

	err = Run[uint32](args, witness[:len(witness)-1])
	require.Error(t, err)
	var e *Error
	require.ErrorAs(t, err, &e)
	require.EqualValues(t, InvalidStepProof, e.Code())
}

func TestRunRejectsMismatchedPreCommitment(t *testing.T) {
	proof, args, _, _ := buildProofAndArgs(t)
	witness, err := machine.EncodeStepProof[uint32](proof)
	require.NoError(t, err)

	args[0] ^= 0xff // corrupt the expected pre-step commitment
	err = Run[uint32](args, witness)
	require.Error(t, err)
	var e *Error
	require.ErrorAs(t, err, &e)
	require.EqualValues(t, MismatchStepCommitment, e.Code())
}

func TestRunRejectsMismatchedPostCommitment(t *testing.T) {
	proof, args, _, _ := buildProofAndArgs(t)
	witness, err := machine.EncodeStepProof[uint32](proof)
	require.NoError(t, err)

	args[32] ^= 0xff // corrupt the expected post-step commitment
	err = Run[uint32](args, witness)
	require.Error(t, err)
	var e *Error
	require.ErrorAs(t, err, &e)
	require.EqualValues(t, MismatchNextStepCommitment, e.Code())
}
