package smt

import (
	"github.com/zeroqn/woss/common"
	"golang.org/x/xerrors"
)

// VerifierStore is the no-knowledge side of the sparse Merkle tree: it
// holds only the (key, value) pairs disclosed by a proof, reconstructs
// the root they imply, and checks it against an expected root. Update
// lets the on-chain Verifier replay the single instruction a StepProof
// covers (which may write memory) and recompute the resulting root
// without needing a second proof.
type VerifierStore interface {
	// Get returns the value at key if key was part of the restored
	// proof, or an error otherwise.
	Get(key common.Byte32) (common.Byte32, error)
	// Update sets the value at key, which must have been part of the
	// restored proof, and returns an error otherwise.
	Update(key, value common.Byte32) error
	// Root returns the root commitment reconstructed from the proof
	// against the store's current (possibly updated) values.
	Root() common.Byte32
}

// VerifierTree is the VerifierStore implementation restored from a
// MemoryProof-style (kvs, proof, expected root) triple.
//
// keys is the fixed, sorted set of keys the proof discloses; values
// holds their current (mutable) contents. Root() re-derives the root by
// walking keys the same way buildProof did and popping the same
// siblings in the same order, substituting values' current contents at
// the leaves. This is sound even when a key's value crosses zero during
// replay, because buildProof (see proof.go) walks every disclosed key's
// own path to its own leaf regardless of its value, so no sibling in
// the proof is a function of a disclosed key's value.
type VerifierTree struct {
	keys   []common.Byte32
	values map[common.Byte32]common.Byte32
	proof  *Proof
}

var _ VerifierStore = (*VerifierTree)(nil)

// RestoreFromProof rebuilds a VerifierTree from the disclosed (key,
// value) pairs and multi-proof, verifying that they reconstruct
// expectedRoot. It returns an error if the proof does not check out.
func RestoreFromProof(kvs map[common.Byte32]common.Byte32, proof *Proof, expectedRoot common.Byte32) (*VerifierTree, error) {
	if len(kvs) == 0 {
		return nil, xerrors.New("smt: RestoreFromProof requires at least one disclosed key")
	}
	keys := make([]common.Byte32, 0, len(kvs))
	values := make(map[common.Byte32]common.Byte32, len(kvs))
	for k, v := range kvs {
		keys = append(keys, k)
		values[k] = v
	}
	keys = sortedKeys(keys)

	q := &siblingQueue{items: proof.Siblings}
	got, err := reconstructRoot(keys, values, 0, q)
	if err != nil {
		return nil, xerrors.Errorf("smt: RestoreFromProof: %w", err)
	}
	if q.pos != len(q.items) {
		return nil, xerrors.New("smt: RestoreFromProof: proof has unused siblings")
	}
	if got != expectedRoot {
		return nil, xerrors.New("smt: RestoreFromProof: reconstructed root does not match expected root")
	}
	return &VerifierTree{keys: keys, values: values, proof: proof}, nil
}

// Get implements VerifierStore.
func (v *VerifierTree) Get(key common.Byte32) (common.Byte32, error) {
	val, ok := v.values[key]
	if !ok {
		return common.Byte32{}, xerrors.Errorf("smt: key %s was not disclosed by the proof", key)
	}
	return val, nil
}

// Update implements VerifierStore.
func (v *VerifierTree) Update(key, value common.Byte32) error {
	if _, ok := v.values[key]; !ok {
		return xerrors.Errorf("smt: key %s was not disclosed by the proof, cannot update", key)
	}
	v.values[key] = value
	return nil
}

// Root implements VerifierStore. It is a programmer error (panics) for
// this to fail: keys/siblings were already validated in
// RestoreFromProof, and Update only ever touches disclosed keys, so
// replaying the same walk can only fail if this package has a bug.
func (v *VerifierTree) Root() common.Byte32 {
	q := &siblingQueue{items: v.proof.Siblings}
	got, err := reconstructRoot(v.keys, v.values, 0, q)
	if err != nil {
		panic(xerrors.Errorf("smt: VerifierTree.Root: %w", err))
	}
	return got
}

// VerifierAdapter adapts any VerifierStore (a *VerifierTree, or the empty
// store memory.RestoreFromProof returns for a step that touched no keys) to
// the error-less Get/Update shape machine/memory code expects from a Store,
// surfacing any error (an access to an undisclosed key, which indicates a
// malformed proof) through Err after the caller is done driving it, rather
// than on every call.
type VerifierAdapter struct {
	store VerifierStore
	err   error
}

// NewVerifierAdapter wraps store for use as a memory.Store.
func NewVerifierAdapter(store VerifierStore) *VerifierAdapter {
	return &VerifierAdapter{store: store}
}

// Get implements the error-less Store.Get shape.
func (a *VerifierAdapter) Get(key common.Byte32) common.Byte32 {
	val, err := a.store.Get(key)
	if err != nil && a.err == nil {
		a.err = err
	}
	return val
}

// Update implements the error-less Store.Update shape.
func (a *VerifierAdapter) Update(key, value common.Byte32) {
	if err := a.store.Update(key, value); err != nil && a.err == nil {
		a.err = err
	}
}

// Root returns the store's current reconstructed root.
func (a *VerifierAdapter) Root() common.Byte32 {
	return a.store.Root()
}

// Err returns the first error encountered by Get or Update, if any.
func (a *VerifierAdapter) Err() error {
	return a.err
}
