package smt

import (
	"bytes"
	"io"
	"sort"

	"github.com/zeroqn/woss/common"
	"golang.org/x/xerrors"
)

// Proof is a compact multi-proof of inclusion/exclusion for a set of
// keys against a tree root: one sibling hash per branch point where the
// proven keys diverge from the rest of the tree. Its wire form is the
// "merkle_proof []byte" field of a MemoryProof.
type Proof struct {
	Siblings []common.Byte32
}

// Write serializes the proof as a uint16 sibling count followed by the
// siblings themselves, using the teacher's little-endian helpers.
func (p *Proof) Write(w io.Writer) error {
	if err := common.WriteUint16(w, uint16(len(p.Siblings))); err != nil {
		return err
	}
	for _, s := range p.Siblings {
		if _, err := w.Write(s[:]); err != nil {
			return err
		}
	}
	return nil
}

// Read deserializes a Proof written by Write.
func (p *Proof) Read(r io.Reader) error {
	var n uint16
	if err := common.ReadUint16(r, &n); err != nil {
		return err
	}
	p.Siblings = make([]common.Byte32, n)
	for i := range p.Siblings {
		var buf [common.Size]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return err
		}
		p.Siblings[i] = buf
	}
	return nil
}

// Bytes serializes the proof to a byte slice.
func (p *Proof) Bytes() []byte {
	var buf bytes.Buffer
	if err := p.Write(&buf); err != nil {
		panic(xerrors.Errorf("smt: Proof.Bytes: %w", err))
	}
	return buf.Bytes()
}

// ProofFromBytes deserializes a Proof previously produced by Bytes.
func ProofFromBytes(data []byte) (*Proof, error) {
	p := &Proof{}
	if err := p.Read(bytes.NewReader(data)); err != nil {
		return nil, xerrors.Errorf("smt: ProofFromBytes: %w", err)
	}
	return p, nil
}

// partitionKeys splits a key-sorted slice of bare keys the same way
// partition splits a slice of kv: those with bit(key, depth)==0 from
// those with bit(key, depth)==1.
func partitionKeys(keys []common.Byte32, depth int) (left, right []common.Byte32) {
	idx := sort.Search(len(keys), func(i int) bool {
		return bit(keys[i], depth) == 1
	})
	return keys[:idx], keys[idx:]
}

// buildProof walks the subtree rooted at depth, recursing wherever a
// requested key's own bit-path still leads into that side, and recording
// one opaque sibling hash for any side that no requested key leads into.
//
// Recursion is driven purely by requestedKeys' own bits, never by
// whether "all" (the real, non-zero leaves) happens to have an entry
// there. This is what lets a verifier later replay a write to a key that
// was absent (zero) when the proof was built: the key's own path was
// walked all the way to its leaf regardless of its value, so every
// sibling on that path is guaranteed independent of that one key's
// value and can be reused verbatim after the key's value changes.
// Any side with no requested key collapses to one sibling, so each
// requested key adds one sibling per level of its path where no other
// requested key shares its subtree.
func buildProof(all []kv, requestedKeys []common.Byte32, depth int, out *[]common.Byte32) common.Byte32 {
	if depth == Depth {
		if len(all) == 1 {
			return leafHash(all[0].key, all[0].value)
		}
		return Zero
	}
	allLeft, allRight := partition(all, depth)
	keysLeft, keysRight := partitionKeys(requestedKeys, depth)

	var leftHash, rightHash common.Byte32
	switch {
	case len(keysLeft) > 0 && len(keysRight) > 0:
		leftHash = buildProof(allLeft, keysLeft, depth+1, out)
		rightHash = buildProof(allRight, keysRight, depth+1, out)
	case len(keysLeft) > 0:
		leftHash = buildProof(allLeft, keysLeft, depth+1, out)
		rightHash = computeRoot(allRight, depth+1)
		*out = append(*out, rightHash)
	case len(keysRight) > 0:
		rightHash = buildProof(allRight, keysRight, depth+1, out)
		leftHash = computeRoot(allLeft, depth+1)
		*out = append(*out, leftHash)
	default:
		// Neither side leads to a requested key; the caller should not
		// have recursed into this subtree in the first place.
		return computeRoot(all, depth)
	}
	return merge(leftHash, rightHash)
}

// siblingQueue hands out proof siblings in the same order buildProof
// recorded them.
type siblingQueue struct {
	items []common.Byte32
	pos   int
}

func (q *siblingQueue) pop() (common.Byte32, error) {
	if q.pos >= len(q.items) {
		return common.Byte32{}, xerrors.New("smt: proof exhausted")
	}
	v := q.items[q.pos]
	q.pos++
	return v, nil
}

// reconstructRoot recomputes the root commitment over requestedKeys
// using values looked up in currentValues (the disclosed key set's
// current, possibly mutated, values) plus the sibling hashes recorded
// by buildProof for the branches requestedKeys does not lead into. It
// mirrors buildProof's traversal exactly, driven by the same fixed key
// set, so siblings are consumed in the order they were recorded
// regardless of which keys currently hold a zero value.
func reconstructRoot(requestedKeys []common.Byte32, currentValues map[common.Byte32]common.Byte32, depth int, q *siblingQueue) (common.Byte32, error) {
	if depth == Depth {
		if len(requestedKeys) != 1 {
			return common.Byte32{}, xerrors.Errorf("smt: expected exactly one leaf at depth %d, got %d", depth, len(requestedKeys))
		}
		k := requestedKeys[0]
		return leafHash(k, currentValues[k]), nil
	}
	keysLeft, keysRight := partitionKeys(requestedKeys, depth)
	var leftHash, rightHash common.Byte32
	var err error
	switch {
	case len(keysLeft) > 0 && len(keysRight) > 0:
		if leftHash, err = reconstructRoot(keysLeft, currentValues, depth+1, q); err != nil {
			return common.Byte32{}, err
		}
		if rightHash, err = reconstructRoot(keysRight, currentValues, depth+1, q); err != nil {
			return common.Byte32{}, err
		}
	case len(keysLeft) > 0:
		if leftHash, err = reconstructRoot(keysLeft, currentValues, depth+1, q); err != nil {
			return common.Byte32{}, err
		}
		if rightHash, err = q.pop(); err != nil {
			return common.Byte32{}, err
		}
	case len(keysRight) > 0:
		if rightHash, err = reconstructRoot(keysRight, currentValues, depth+1, q); err != nil {
			return common.Byte32{}, err
		}
		if leftHash, err = q.pop(); err != nil {
			return common.Byte32{}, err
		}
	default:
		return common.Byte32{}, xerrors.New("smt: reconstructRoot called on empty key set")
	}
	return merge(leftHash, rightHash), nil
}

func sortedKeys(keys []common.Byte32) []common.Byte32 {
	out := make([]common.Byte32, len(keys))
	copy(out, keys)
	sort.Slice(out, func(i, j int) bool { return lessKey(out[i], out[j]) })
	return out
}
