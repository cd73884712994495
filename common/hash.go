package common

import (
	"golang.org/x/crypto/blake2b"
	"golang.org/x/xerrors"
)

// Domain-separation tags for the two hash families used throughout the
// module. WOSSTag keys every commitment and SMT-key derivation hash
// (registers, pc, memory flag/data keys, step commitments). CKBTag keys
// the sparse Merkle tree's internal node hash, on both the prover's tree
// and the verifier's root reconstruction, matching the
// "ckb-default-hash" personalization used by the on-chain sparse Merkle
// tree this design is interoperable with.
//
// golang.org/x/crypto/blake2b's exported New256/New512 constructors take a
// "key" argument but expose no separate salt/personalization parameter, so
// the tag is folded in as the MAC key instead of a true BLAKE2 "personal"
// field. This changes the underlying bytes hashed but preserves the
// property the design actually needs: the two tags never collide with each
// other or with an unkeyed hash.
var (
	WOSSTag = []byte("woss")
	CKBTag  = []byte("ckb-default-hash")
)

// Hasher computes domain-separated Byte32 digests over one or more byte
// slices, concatenated in argument order before hashing.
type Hasher struct {
	tag []byte
}

// NewHasher returns a Hasher keyed with tag.
func NewHasher(tag []byte) Hasher {
	return Hasher{tag: tag}
}

// WOSSHasher returns the Hasher used for commitments and memory SMT keys.
func WOSSHasher() Hasher {
	return NewHasher(WOSSTag)
}

// CKBHasher returns the Hasher used for the SMT's internal node hashing,
// by both the prover's tree and the verifier's root reconstruction.
func CKBHasher() Hasher {
	return NewHasher(CKBTag)
}

// Sum hashes the concatenation of parts and returns the digest as a
// Byte32.
func (h Hasher) Sum(parts ...[]byte) Byte32 {
	hasher, err := blake2b.New256(h.tag)
	if err != nil {
		// blake2b.New256 only errors when the key exceeds 64 bytes; both
		// of our tags are fixed and well within that bound.
		panic(xerrors.Errorf("common: blake2b.New256: %w", err))
	}
	for _, p := range parts {
		_, _ = hasher.Write(p)
	}
	var out Byte32
	copy(out[:], hasher.Sum(nil))
	return out
}

// SumU32 hashes tag || label || little-endian(val) with val as 4 bytes.
// The memory flag and data keys use 8-byte little-endian indices instead.
func (h Hasher) SumU32(label string, val uint32) Byte32 {
	return h.Sum([]byte(label), FromU32LE(val))
}

// FromU32LE returns val encoded as 4 little-endian bytes.
func FromU32LE(val uint32) []byte {
	b := make([]byte, 4)
	b[0] = byte(val)
	b[1] = byte(val >> 8)
	b[2] = byte(val >> 16)
	b[3] = byte(val >> 24)
	return b
}

// FromU64LE returns val encoded as 8 little-endian bytes.
func FromU64LE(val uint64) []byte {
	b := make([]byte, 8)
	for i := 0; i < 8; i++ {
		b[i] = byte(val >> (8 * i))
	}
	return b
}
