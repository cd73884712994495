package smt

import (
	"github.com/iotaledger/hive.go/core/kvstore"

	"github.com/zeroqn/woss/common"
)

// HiveStore is a ProverStore persisted through a hive.go KVStore instead
// of an in-process map, so the leaf set survives process restarts. It
// is built on hiveKVStoreAdaptor (hiveadaptor.go), itself adapted from
// the teacher's hive_adaptor.HiveKVStoreAdaptor, so the prefix
// partitioning and panic-on-unexpected-error conventions match the
// teacher's composition style exactly; only the leaf payload (a fixed
// 32-byte key and value rather than an arbitrary-length trie node) is
// specific to this domain.
type HiveStore struct {
	kv common.KVStore
}

var _ ProverStore = (*HiveStore)(nil)

// NewHiveStore returns a HiveStore whose leaves live under prefix in
// kvs. A nil or empty prefix uses kvs unpartitioned.
func NewHiveStore(kvs kvstore.KVStore, prefix []byte) *HiveStore {
	return &HiveStore{kv: newHiveKVStoreAdaptor(kvs, prefix)}
}

// Get implements ProverStore.
func (h *HiveStore) Get(key common.Byte32) common.Byte32 {
	v := h.kv.Get(key[:])
	var out common.Byte32
	copy(out[:], v)
	return out
}

// Update implements ProverStore. Setting value to Zero deletes the key,
// matching Tree's convention that an absent key and a zero-valued key
// are indistinguishable.
func (h *HiveStore) Update(key, value common.Byte32) {
	if value == Zero {
		h.kv.Set(key[:], nil)
		return
	}
	h.kv.Set(key[:], value[:])
}

// leaves materializes every non-zero (key, value) pair currently stored
// into an in-memory map. Root, Snap and Prove all need the full leaf set
// to walk the tree, and a persisted KVStore has no notion of "walk by
// key bit" on its own, so this is the bridge between the two.
func (h *HiveStore) leaves() map[common.Byte32]common.Byte32 {
	out := make(map[common.Byte32]common.Byte32)
	h.kv.Iterate(func(k, v []byte) bool {
		var key common.Byte32
		copy(key[:], k)
		var value common.Byte32
		copy(value[:], v)
		out[key] = value
		return true
	})
	return out
}

// Root implements ProverStore.
func (h *HiveStore) Root() common.Byte32 {
	return computeRoot(sortedKVs(h.leaves()), 0)
}

// Snap implements ProverStore by materializing the current leaf set into
// an independent in-memory Tree: a witness-construction snapshot has no
// need to itself be durable, and cloning a KVStore's full contents on
// every Snap would defeat the point of persisting in the first place.
func (h *HiveStore) Snap() ProverStore {
	clone := New()
	for k, v := range h.leaves() {
		clone.Update(k, v)
	}
	return clone
}

// Prove implements ProverStore by delegating to an in-memory Tree built
// from the current leaf set, reusing the same proof construction Tree
// uses rather than duplicating it against a KVStore-backed leaf walk.
func (h *HiveStore) Prove(keys []common.Byte32) (map[common.Byte32]common.Byte32, *Proof, error) {
	clone := New()
	for k, v := range h.leaves() {
		clone.Update(k, v)
	}
	return clone.Prove(keys)
}
