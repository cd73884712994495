package memory

import (
	"github.com/zeroqn/woss/common"
	"github.com/zeroqn/woss/smt"
	"golang.org/x/xerrors"
)

// Commitment is the public (size, root) commitment to a memory image.
type Commitment struct {
	Size uint64
	Root common.Byte32
}

// Proof discloses enough of a memory image to replay a single traced
// instruction step against it: its size, the root it must reconstruct
// to, the touched (key, pre-value) pairs, and a multi-proof tying them
// to Root.
type Proof struct {
	MemorySize  uint64
	Root        common.Byte32
	KVs         map[common.Byte32]common.Byte32
	MerkleProof *smt.Proof
}

// Tracer wraps a ProverStore and records, for each key touched by
// Get/Update while armed, that key's value as it stood the first time it
// was touched during the current window (before any mutation this
// window may have made to it). This mirrors original_source's
// MemoryTracer: a single snapshot-once-per-key log plus a pointer back
// to the store as it existed when tracing began.
type Tracer struct {
	inner   smt.ProverStore
	snap    smt.ProverStore
	armed   bool
	touched map[common.Byte32]common.Byte32
}

// NewTracer wraps inner. The tracer starts disarmed; call Enable to
// begin recording a window.
func NewTracer(inner smt.ProverStore) *Tracer {
	return &Tracer{inner: inner}
}

// Enable arms the tracer for a new measured window: it snapshots inner
// and clears any previously recorded touches.
func (t *Tracer) Enable() {
	t.snap = t.inner.Snap()
	t.touched = make(map[common.Byte32]common.Byte32)
	t.armed = true
}

// Disable disarms the tracer without discarding what it has recorded; a
// subsequent ProveTraces call still returns the last window's trace.
func (t *Tracer) Disable() {
	t.armed = false
}

func (t *Tracer) record(key common.Byte32) {
	if !t.armed {
		return
	}
	if _, ok := t.touched[key]; ok {
		return
	}
	t.touched[key] = t.snap.Get(key)
}

// Get implements Store, recording key's pre-window value the first time
// it is seen this window.
func (t *Tracer) Get(key common.Byte32) common.Byte32 {
	t.record(key)
	return t.inner.Get(key)
}

// Update implements Store, recording key's pre-window value the first
// time it is seen this window, then applying the mutation.
func (t *Tracer) Update(key, value common.Byte32) {
	t.record(key)
	t.inner.Update(key, value)
}

// Root delegates to inner so SMTMemory.Root() keeps working while traced.
func (t *Tracer) Root() common.Byte32 {
	return t.inner.Root()
}

// ProveTraces returns a Proof covering every key touched since the last
// Enable, proven against the snapshot root taken at Enable time: this is
// the pre-state commitment the proof must reconstruct, since the proof
// exists precisely to let a verifier replay the step from that prior
// state.
func (t *Tracer) ProveTraces(size uint64) (*Proof, error) {
	if len(t.touched) == 0 {
		return &Proof{
			MemorySize:  size,
			Root:        t.snap.Root(),
			KVs:         map[common.Byte32]common.Byte32{},
			MerkleProof: &smt.Proof{},
		}, nil
	}
	keys := make([]common.Byte32, 0, len(t.touched))
	for k := range t.touched {
		keys = append(keys, k)
	}
	kvs, proof, err := t.snap.Prove(keys)
	if err != nil {
		return nil, err
	}
	return &Proof{
		MemorySize:  size,
		Root:        t.snap.Root(),
		KVs:         kvs,
		MerkleProof: proof,
	}, nil
}

// RestoreFromProof rebuilds a verifier-side Store from a Proof, checking
// that its disclosed (key, value) pairs and multi-proof reconstruct
// Root. A proof touching no keys at all (a step that never accessed
// memory) carries its root directly rather than going through the
// sparse Merkle tree's multi-proof machinery.
func RestoreFromProof(p *Proof) (smt.VerifierStore, error) {
	if len(p.KVs) == 0 {
		return emptyVerifierStore{root: p.Root}, nil
	}
	return smt.RestoreFromProof(p.KVs, p.MerkleProof, p.Root)
}

type emptyVerifierStore struct {
	root common.Byte32
}

func (e emptyVerifierStore) Get(common.Byte32) (common.Byte32, error) {
	return common.Byte32{}, xerrors.New("memory: no keys were disclosed by this proof")
}

func (e emptyVerifierStore) Update(common.Byte32, common.Byte32) error {
	return xerrors.New("memory: no keys were disclosed by this proof, cannot update")
}

func (e emptyVerifierStore) Root() common.Byte32 {
	return e.root
}
