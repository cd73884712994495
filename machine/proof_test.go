package machine

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zeroqn/woss/riscv"
)

func TestStepProofWireRoundTripNoMemoryAccess(t *testing.T) {
	prover := NewProver[uint32](riscv.ISARV32, 10, 0, 4096)
	prog := encodeBytes(encodeI(opImm, 1, 0, 0, 9)) // addi x1, x0, 9
	require.NoError(t, prover.LoadProgram(prog, 0))

	proof, err := prover.ProveNextStep()
	require.NoError(t, err)

	data, err := EncodeStepProof[uint32](proof)
	require.NoError(t, err)

	decoded, err := DecodeStepProof[uint32](data)
	require.NoError(t, err)
	requireStepProofEqual(t, proof, decoded)

	verifier, err := RestoreFromProof[uint32](decoded)
	require.NoError(t, err)
	require.NoError(t, verifier.ExecuteNextStep())
	require.NoError(t, verifier.VerifyErr())
}

func TestStepProofWireRoundTripWithMemoryAccess(t *testing.T) {
	prover := NewProver[uint32](riscv.ISARV32, 10, 0, 4096)
	prog := encodeBytes(
		encodeI(opImm, 1, 0, 0, 64),  // addi x1, x0, 64
		encodeI(opImm, 2, 0, 0, 3),   // addi x2, x0, 3
		encodeS(opStore, 2, 1, 2, 0), // sw x2, 0(x1)
	)
	require.NoError(t, prover.LoadProgram(prog, 0))
	_, err := prover.RunUntilStep(2)
	require.NoError(t, err)

	proof, err := prover.ProveNextStep()
	require.NoError(t, err)
	require.NotEmpty(t, proof.Memory.KVs)

	data, err := EncodeStepProof[uint32](proof)
	require.NoError(t, err)

	decoded, err := DecodeStepProof[uint32](data)
	require.NoError(t, err)
	requireStepProofEqual(t, proof, decoded)

	verifier, err := RestoreFromProof[uint32](decoded)
	require.NoError(t, err)
	require.NoError(t, verifier.ExecuteNextStep())
	require.NoError(t, verifier.VerifyErr())
}

func TestDecodeStepProofRejectsTruncatedData(t *testing.T) {
	prover := NewProver[uint32](riscv.ISARV32, 10, 0, 4096)
	prog := encodeBytes(encodeI(opImm, 1, 0, 0, 1))
	require.NoError(t, prover.LoadProgram(prog, 0))

	proof, err := prover.ProveNextStep()
	require.NoError(t, err)
	data, err := EncodeStepProof[uint32](proof)
	require.NoError(t, err)

	_, err = DecodeStepProof[uint32](data[:len(data)-1])
	require.Error(t, err)
}

func requireStepProofEqual(t *testing.T, want, got *StepProof[uint32]) {
	t.Helper()
	require.Equal(t, want.StepNum, got.StepNum)
	require.Equal(t, want.Registers, got.Registers)
	require.Equal(t, want.PC, got.PC)
	require.Equal(t, want.NextPC, got.NextPC)
	require.Equal(t, want.Cycles, got.Cycles)
	require.Equal(t, want.MaxCycles, got.MaxCycles)
	require.Equal(t, want.Running, got.Running)
	require.Equal(t, want.ISA, got.ISA)
	require.Equal(t, want.Version, got.Version)
	require.Equal(t, want.Memory.MemorySize, got.Memory.MemorySize)
	require.Equal(t, want.Memory.Root, got.Memory.Root)
	require.Equal(t, want.Memory.KVs, got.Memory.KVs)
	require.Equal(t, want.Memory.MerkleProof.Siblings, got.Memory.MerkleProof.Siblings)
}
