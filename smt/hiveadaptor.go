package smt

import (
	"errors"

	"github.com/iotaledger/hive.go/core/kvstore"

	"github.com/zeroqn/woss/common"
)

// hiveKVStoreAdaptor maps a byte-prefixed partition of a hive.go KVStore
// to the error-less common.KVStore surface HiveStore is built against.
// Adapted from the teacher's hive_adaptor.HiveKVStoreAdaptor: same
// prefix-partitioning and mustNoErr panic-on-unexpected-error convention,
// rebased from hive.go/kvstore onto hive.go/core/kvstore (the path this
// module's go.mod actually requires) and from trie_go.KVStore onto
// common.KVStore.
type hiveKVStoreAdaptor struct {
	kvs    kvstore.KVStore
	prefix []byte
}

var _ common.KVStore = (*hiveKVStoreAdaptor)(nil)

// newHiveKVStoreAdaptor returns a common.KVStore backed by a partition of
// kvs. A nil or empty prefix leaves kvs unpartitioned.
func newHiveKVStoreAdaptor(kvs kvstore.KVStore, prefix []byte) *hiveKVStoreAdaptor {
	return &hiveKVStoreAdaptor{kvs: kvs, prefix: prefix}
}

func mustNoErr(err error) {
	if err != nil {
		panic(err)
	}
}

func (a *hiveKVStoreAdaptor) makeKey(k []byte) []byte {
	if len(a.prefix) == 0 {
		return k
	}
	return common.Concat(a.prefix, k)
}

// Get implements common.KVReader.
func (a *hiveKVStoreAdaptor) Get(key []byte) []byte {
	v, err := a.kvs.Get(a.makeKey(key))
	if errors.Is(err, kvstore.ErrKeyNotFound) {
		return nil
	}
	mustNoErr(err)
	return v
}

// Has implements common.KVReader.
func (a *hiveKVStoreAdaptor) Has(key []byte) bool {
	v, err := a.kvs.Has(a.makeKey(key))
	mustNoErr(err)
	return v
}

// Set implements common.KVWriter.
func (a *hiveKVStoreAdaptor) Set(key, value []byte) {
	var err error
	if len(value) == 0 {
		err = a.kvs.Delete(a.makeKey(key))
	} else {
		err = a.kvs.Set(a.makeKey(key), value)
	}
	mustNoErr(err)
}

// Iterate implements common.KVIterator.
func (a *hiveKVStoreAdaptor) Iterate(fun func(k, v []byte) bool) {
	err := a.kvs.Iterate(a.prefix, func(key kvstore.Key, value kvstore.Value) bool {
		return fun(key[len(a.prefix):], value)
	})
	mustNoErr(err)
}

// IterateKeys implements common.KVIterator.
func (a *hiveKVStoreAdaptor) IterateKeys(fun func(k []byte) bool) {
	err := a.kvs.IterateKeys(a.prefix, func(key kvstore.Key) bool {
		return fun(key[len(a.prefix):])
	})
	mustNoErr(err)
}
