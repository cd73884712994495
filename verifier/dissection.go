package verifier

import (
	"sort"

	"golang.org/x/xerrors"

	"github.com/zeroqn/woss/machine"
)

// MaxStepChunks bounds how many commitments a single step_range response
// discloses, keeping each dissection round's message size constant
// regardless of how wide the remaining disputed range is.
const MaxStepChunks = 40

// StepDiffFinder holds one party's own per-step commitment vector and
// answers the two queries the dissection game needs: "which of these
// candidate commitments is the first one you disagree with?" and "give me
// up to MaxStepChunks evenly spaced checkpoints across this range."
//
// Step 0 MUST NOT be challenged: both parties necessarily agree on the
// machine's initial state (same program, same entry point), so a dispute
// can only ever live at step >= 1. The disputed step of a staged dispute is
// drawn from [1, stepCount); the first range still starts at the agreed
// step 0.
type StepDiffFinder struct {
	stepCommitments []machine.StepCommitment
}

// NewStepDiffFinder wraps stepCommitments, which must be sorted by StepNum
// (machine.Machine.Run/RunUntilStep already return them in that order).
func NewStepDiffFinder(stepCommitments []machine.StepCommitment) *StepDiffFinder {
	return &StepDiffFinder{stepCommitments: stepCommitments}
}

// DiffStepRange scans candidates in order and returns the first one this
// finder's own vector disagrees with, bracketed with its predecessor so the
// caller can narrow to a sub-range on the next round. If candidates is
// shorter than MaxStepChunks, both the start and end of the returned range
// are the disagreeing candidate itself — there is nothing left to narrow.
func (f *StepDiffFinder) DiffStepRange(candidates []machine.StepCommitment) (machine.StepCommitment, machine.StepCommitment, error) {
	idx := -1
	for i, sc := range candidates {
		if !f.agrees(sc) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return machine.StepCommitment{}, machine.StepCommitment{}, xerrors.New("verifier: no disagreeing step found in candidates")
	}
	if len(candidates) < MaxStepChunks {
		return candidates[idx], candidates[idx], nil
	}
	return candidates[idx-1], candidates[idx], nil
}

// agrees reports whether sc matches this finder's own commitment at
// sc.StepNum, via binary search over the (sorted) known-good vector.
func (f *StepDiffFinder) agrees(sc machine.StepCommitment) bool {
	i := sort.Search(len(f.stepCommitments), func(i int) bool {
		return !stepCommitmentLess(f.stepCommitments[i], sc)
	})
	return i < len(f.stepCommitments) && f.stepCommitments[i] == sc
}

func stepCommitmentLess(a, b machine.StepCommitment) bool {
	if a.StepNum != b.StepNum {
		return a.StepNum < b.StepNum
	}
	for i := range a.Commitment {
		if a.Commitment[i] != b.Commitment[i] {
			return a.Commitment[i] < b.Commitment[i]
		}
	}
	return false
}

// StepRange returns up to MaxStepChunks of this finder's own commitments,
// evenly spaced across [start, end], always including end. start must be
// strictly less than end, and end must be a valid index into the finder's
// vector.
func (f *StepDiffFinder) StepRange(start, end int) ([]machine.StepCommitment, error) {
	if !(start < end && end < len(f.stepCommitments)) {
		return nil, xerrors.Errorf("verifier: invalid step range [%d, %d) over %d commitments", start, end, len(f.stepCommitments))
	}
	chunks := MaxStepChunks
	if end-start+1 < MaxStepChunks {
		chunks = end - start + 1
	}

	out := make([]machine.StepCommitment, 0, chunks)
	for i := 0; i < chunks; i++ {
		position := start + i*(end-start)/(chunks-1)
		out = append(out, f.stepCommitments[position])
	}
	return out, nil
}
