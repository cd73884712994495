package smt

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zeroqn/woss/common"
)

func keyOf(n byte) common.Byte32 {
	return common.FromU8(n)
}

func valOf(n byte) common.Byte32 {
	var b common.Byte32
	b[31] = n
	return b
}

func TestEmptyTreeRootIsZero(t *testing.T) {
	tr := New()
	require.Equal(t, Zero, tr.Root())
}

func TestUpdateChangesRoot(t *testing.T) {
	tr := New()
	r0 := tr.Root()
	tr.Update(keyOf(1), valOf(1))
	r1 := tr.Root()
	require.NotEqual(t, r0, r1)
}

func TestDeleteRestoresEmptyRoot(t *testing.T) {
	tr := New()
	tr.Update(keyOf(1), valOf(1))
	tr.Update(keyOf(1), Zero)
	require.Equal(t, Zero, tr.Root())
}

func TestSnapIsIndependent(t *testing.T) {
	tr := New()
	tr.Update(keyOf(1), valOf(1))
	snap := tr.Snap()
	tr.Update(keyOf(2), valOf(2))
	require.NotEqual(t, tr.Root(), snap.Root())
}

func TestProveAndRestoreRoundTrip(t *testing.T) {
	tr := New()
	tr.Update(keyOf(1), valOf(11))
	tr.Update(keyOf(2), valOf(22))
	tr.Update(keyOf(3), valOf(33))
	root := tr.Root()

	kvs, proof, err := tr.Prove([]common.Byte32{keyOf(1), keyOf(3)})
	require.NoError(t, err)

	vt, err := RestoreFromProof(kvs, proof, root)
	require.NoError(t, err)
	require.Equal(t, root, vt.Root())

	v1, err := vt.Get(keyOf(1))
	require.NoError(t, err)
	require.Equal(t, valOf(11), v1)

	v3, err := vt.Get(keyOf(3))
	require.NoError(t, err)
	require.Equal(t, valOf(33), v3)

	_, err = vt.Get(keyOf(2))
	require.Error(t, err)
}

func TestProveSingleKey(t *testing.T) {
	tr := New()
	for i := byte(0); i < 20; i++ {
		tr.Update(keyOf(i), valOf(i+1))
	}
	root := tr.Root()

	kvs, proof, err := tr.Prove([]common.Byte32{keyOf(7)})
	require.NoError(t, err)

	vt, err := RestoreFromProof(kvs, proof, root)
	require.NoError(t, err)
	v, err := vt.Get(keyOf(7))
	require.NoError(t, err)
	require.Equal(t, valOf(8), v)
}

func TestRestoreFromProofRejectsTamperedValue(t *testing.T) {
	tr := New()
	tr.Update(keyOf(1), valOf(1))
	tr.Update(keyOf(2), valOf(2))
	root := tr.Root()

	kvs, proof, err := tr.Prove([]common.Byte32{keyOf(1)})
	require.NoError(t, err)
	kvs[keyOf(1)] = valOf(99)

	_, err = RestoreFromProof(kvs, proof, root)
	require.Error(t, err)
}

func TestRestoreFromProofRejectsWrongRoot(t *testing.T) {
	tr := New()
	tr.Update(keyOf(1), valOf(1))
	kvs, proof, err := tr.Prove([]common.Byte32{keyOf(1)})
	require.NoError(t, err)

	_, err = RestoreFromProof(kvs, proof, valOf(200))
	require.Error(t, err)
}

func TestProofWireRoundTrip(t *testing.T) {
	tr := New()
	tr.Update(keyOf(1), valOf(1))
	tr.Update(keyOf(5), valOf(5))
	_, proof, err := tr.Prove([]common.Byte32{keyOf(1)})
	require.NoError(t, err)

	data := proof.Bytes()
	decoded, err := ProofFromBytes(data)
	require.NoError(t, err)
	require.Equal(t, proof.Siblings, decoded.Siblings)
}

func TestProveAbsenceInNonEmptyUnrelatedTree(t *testing.T) {
	tr := New()
	tr.Update(keyOf(1), valOf(1))
	tr.Update(keyOf(2), valOf(2))
	root := tr.Root()

	absentKey := keyOf(250)
	kvs, proof, err := tr.Prove([]common.Byte32{absentKey})
	require.NoError(t, err)
	require.Equal(t, Zero, kvs[absentKey])
	require.NotEmpty(t, proof.Siblings)

	vt, err := RestoreFromProof(kvs, proof, root)
	require.NoError(t, err)
	v, err := vt.Get(absentKey)
	require.NoError(t, err)
	require.Equal(t, Zero, v)
}

func TestEmptyProveErrors(t *testing.T) {
	tr := New()
	_, _, err := tr.Prove(nil)
	require.Error(t, err)
}

// TestVerifierTreeUpdateAcrossZero exercises exactly the case the
// machine package's single-step verifier replay depends on: a disclosed
// key that was absent (zero) when the proof was built becomes non-zero
// partway through a single step's replay, and Root() must still
// recompute correctly afterwards using the very same proof.
func TestVerifierTreeUpdateAcrossZero(t *testing.T) {
	tr := New()
	tr.Update(keyOf(1), valOf(1))
	tr.Update(keyOf(2), valOf(2))
	root := tr.Root()

	absentKey := keyOf(250)
	kvs, proof, err := tr.Prove([]common.Byte32{absentKey})
	require.NoError(t, err)

	vt, err := RestoreFromProof(kvs, proof, root)
	require.NoError(t, err)
	require.Equal(t, root, vt.Root())

	require.NoError(t, vt.Update(absentKey, valOf(77)))

	tr.Update(absentKey, valOf(77))
	wantRoot := tr.Root()
	require.Equal(t, wantRoot, vt.Root())

	require.NoError(t, vt.Update(absentKey, Zero))
	require.Equal(t, root, vt.Root())
}

func TestVerifierTreeUpdateRejectsUndisclosedKey(t *testing.T) {
	tr := New()
	tr.Update(keyOf(1), valOf(1))
	root := tr.Root()

	kvs, proof, err := tr.Prove([]common.Byte32{keyOf(1)})
	require.NoError(t, err)
	vt, err := RestoreFromProof(kvs, proof, root)
	require.NoError(t, err)

	require.Error(t, vt.Update(keyOf(99), valOf(1)))
}
