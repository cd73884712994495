// Package smt implements the sparse Merkle tree used as the fraud-proof
// core's content-addressed memory: a binary tree of depth 256 keyed by
// common.Byte32, where an all-zero value denotes an absent key and an
// all-zero subtree never needs to be materialized or hashed.
//
// The construction and its "only hash what's there" shortcut follow the
// same default-subtree convention as CKB's sparse-merkle-tree crate (see
// original_source's CkbBlake2bHasher / "ckb-default-hash" usage): merging
// two zero subtrees is defined to be zero without ever calling the hash
// function, so a tree with k non-zero leaves costs O(k*256) hashes to
// root instead of 2^256. Proof encoding/decoding style (Read/Write over
// io.Reader/io.Writer, little-endian length-prefixed fields) is grounded
// on the teacher's models/trie_blake2b_32/proof.go.
package smt

import (
	"sort"

	"github.com/zeroqn/woss/common"
)

// Depth is the number of bits in a key, i.e. the depth of the tree.
const Depth = common.Size * 8

// Zero is the sentinel "not present" value and the hash of any subtree
// that contains no non-zero leaves.
var Zero = common.Zero

var nodeHasher = common.CKBHasher()

// leafHash returns the committed hash of a single (key, value) leaf. A
// zero value hashes to Zero, so clearing a key removes its leaf from the
// tree without leaving a dangling commitment.
func leafHash(key, value common.Byte32) common.Byte32 {
	if value == Zero {
		return Zero
	}
	return nodeHasher.Sum(key[:], value[:])
}

// merge combines a left and right subtree hash into their parent's hash.
// Two zero subtrees merge to zero without hashing, which is what makes
// sparse trees cheap: empty regions of the key space cost nothing.
func merge(left, right common.Byte32) common.Byte32 {
	if left == Zero && right == Zero {
		return Zero
	}
	return nodeHasher.Sum(left[:], right[:])
}

// bit returns the bit of key at the given depth, counting from the
// most-significant bit of key[0].
func bit(key common.Byte32, depth int) int {
	byteIdx := depth / 8
	bitIdx := 7 - uint(depth%8)
	return int((key[byteIdx] >> bitIdx) & 1)
}

type kv struct {
	key   common.Byte32
	value common.Byte32
}

// partition splits a key-sorted slice of kv into those with bit(key,
// depth)==0 and those with bit(key, depth)==1. It relies on the slice
// being sorted by key so splitting is a single scan, not a sort.
func partition(entries []kv, depth int) (left, right []kv) {
	idx := sort.Search(len(entries), func(i int) bool {
		return bit(entries[i].key, depth) == 1
	})
	return entries[:idx], entries[idx:]
}

// computeRoot computes the root hash of the subtree rooted at depth that
// contains exactly entries (already sorted by key, restricted to the key
// range this subtree covers).
func computeRoot(entries []kv, depth int) common.Byte32 {
	switch {
	case len(entries) == 0:
		return Zero
	case depth == Depth:
		return leafHash(entries[0].key, entries[0].value)
	}
	left, right := partition(entries, depth)
	return merge(computeRoot(left, depth+1), computeRoot(right, depth+1))
}

func sortedKVs(m map[common.Byte32]common.Byte32) []kv {
	entries := make([]kv, 0, len(m))
	for k, v := range m {
		if v == Zero {
			continue
		}
		entries = append(entries, kv{key: k, value: v})
	}
	sort.Slice(entries, func(i, j int) bool {
		return lessKey(entries[i].key, entries[j].key)
	})
	return entries
}

func lessKey(a, b common.Byte32) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}
