package smt

import (
	"testing"

	"github.com/iotaledger/hive.go/core/kvstore/mapdb"
	"github.com/stretchr/testify/require"

	"github.com/zeroqn/woss/common"
)

func TestHiveStoreRootMatchesTreeForSameLeaves(t *testing.T) {
	kvs := mapdb.NewMapDB()
	h := NewHiveStore(kvs, []byte("leaves/"))
	tr := New()

	for i := byte(1); i <= 5; i++ {
		h.Update(keyOf(i), valOf(i))
		tr.Update(keyOf(i), valOf(i))
	}

	require.Equal(t, tr.Root(), h.Root())
}

func TestHiveStoreDeleteRestoresEmptyRoot(t *testing.T) {
	kvs := mapdb.NewMapDB()
	h := NewHiveStore(kvs, nil)

	h.Update(keyOf(1), valOf(1))
	require.NotEqual(t, Zero, h.Root())

	h.Update(keyOf(1), Zero)
	require.Equal(t, Zero, h.Root())
}

func TestHiveStorePersistsAcrossHandles(t *testing.T) {
	kvs := mapdb.NewMapDB()
	prefix := []byte("p/")

	h1 := NewHiveStore(kvs, prefix)
	h1.Update(keyOf(7), valOf(7))

	h2 := NewHiveStore(kvs, prefix)
	require.Equal(t, valOf(7), h2.Get(keyOf(7)))
	require.Equal(t, h1.Root(), h2.Root())
}

func TestHiveStorePrefixesDoNotCollide(t *testing.T) {
	kvs := mapdb.NewMapDB()

	a := NewHiveStore(kvs, []byte("a/"))
	b := NewHiveStore(kvs, []byte("b/"))

	a.Update(keyOf(1), valOf(1))
	require.Equal(t, Zero, b.Get(keyOf(1)))
	require.Equal(t, Zero, b.Root())
}

func TestHiveStoreSnapIsIndependent(t *testing.T) {
	kvs := mapdb.NewMapDB()
	h := NewHiveStore(kvs, nil)
	h.Update(keyOf(1), valOf(1))

	snap := h.Snap()
	root := snap.Root()

	h.Update(keyOf(2), valOf(2))
	require.NotEqual(t, root, h.Root())
	require.Equal(t, root, snap.Root())
}

func TestHiveStoreProveMatchesRoot(t *testing.T) {
	kvs := mapdb.NewMapDB()
	h := NewHiveStore(kvs, nil)
	for i := byte(1); i <= 3; i++ {
		h.Update(keyOf(i), valOf(i))
	}

	kvsOut, proof, err := h.Prove([]common.Byte32{keyOf(2)})
	require.NoError(t, err)
	require.Equal(t, valOf(2), kvsOut[keyOf(2)])

	vt, err := RestoreFromProof(kvsOut, proof, h.Root())
	require.NoError(t, err)
	require.Equal(t, h.Root(), vt.Root())
}
