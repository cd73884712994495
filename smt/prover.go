package smt

import (
	"github.com/zeroqn/woss/common"
	"golang.org/x/xerrors"
)

// ProverStore is the full-knowledge side of the sparse Merkle tree: it
// holds every (key, value) pair and can compute roots, snapshots and
// inclusion proofs over them.
type ProverStore interface {
	// Get returns the value at key, or Zero if key has never been set.
	Get(key common.Byte32) common.Byte32
	// Update sets key to value. Setting value to Zero removes the key.
	Update(key, value common.Byte32)
	// Root returns the current root commitment.
	Root() common.Byte32
	// Snap returns an independent copy of the store that does not share
	// mutations with the original. A full clone is acceptable here: this
	// is a testing/witness-construction tool, not a hot path.
	Snap() ProverStore
	// Prove returns a multi-proof covering exactly the given keys,
	// alongside the (key, value) map restricted to those keys.
	Prove(keys []common.Byte32) (kvs map[common.Byte32]common.Byte32, proof *Proof, err error)
}

// Tree is the in-memory ProverStore implementation.
type Tree struct {
	leaves map[common.Byte32]common.Byte32
}

var _ ProverStore = (*Tree)(nil)

// New returns an empty Tree.
func New() *Tree {
	return &Tree{leaves: make(map[common.Byte32]common.Byte32)}
}

// Get implements ProverStore.
func (t *Tree) Get(key common.Byte32) common.Byte32 {
	return t.leaves[key]
}

// Update implements ProverStore.
func (t *Tree) Update(key, value common.Byte32) {
	if value == Zero {
		delete(t.leaves, key)
		return
	}
	t.leaves[key] = value
}

// Root implements ProverStore.
func (t *Tree) Root() common.Byte32 {
	return computeRoot(sortedKVs(t.leaves), 0)
}

// Snap implements ProverStore via a full clone of the leaf map.
func (t *Tree) Snap() ProverStore {
	clone := make(map[common.Byte32]common.Byte32, len(t.leaves))
	for k, v := range t.leaves {
		clone[k] = v
	}
	return &Tree{leaves: clone}
}

// Prove implements ProverStore.
func (t *Tree) Prove(keys []common.Byte32) (map[common.Byte32]common.Byte32, *Proof, error) {
	if len(keys) == 0 {
		return nil, nil, xerrors.New("smt: Prove requires at least one key")
	}
	kvs := make(map[common.Byte32]common.Byte32, len(keys))
	for _, k := range keys {
		kvs[k] = t.leaves[k]
	}
	all := sortedKVs(t.leaves)
	requested := sortedKeys(keys)
	var siblings []common.Byte32
	buildProof(all, requested, 0, &siblings)
	return kvs, &Proof{Siblings: siblings}, nil
}
