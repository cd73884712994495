// Package verifier is a thin driver over a Verifier-mode machine.Machine,
// restored from exactly one StepProof: it can report the pre-step
// commitment and replay the single instruction the proof covers. It mirrors
// original_source's verifier.rs, which is itself nothing but a forwarding
// wrapper over its own Machine type.
package verifier

import (
	"go.uber.org/zap"

	"github.com/zeroqn/woss/common"
	"github.com/zeroqn/woss/machine"
	"github.com/zeroqn/woss/metrics"
)

// Verifier replays exactly one instruction from a StepProof. It holds no
// state beyond what the proof discloses, matching spec.md's "stateless
// verifier" framing: a Verifier allocates nothing beyond restoring one
// Machine from one StepProof and never retains anything across calls.
type Verifier[W common.Word] struct {
	m       *machine.Machine[W]
	log     *zap.Logger
	metrics *metrics.Registry
}

// Option configures optional ambient wiring for a Verifier.
type Option[W common.Word] func(*Verifier[W])

// WithLogger attaches a structured logger; nil (the default) disables
// logging entirely.
func WithLogger[W common.Word](log *zap.Logger) Option[W] {
	return func(v *Verifier[W]) { v.log = log }
}

// WithMetrics attaches a metrics registry; nil (the default) disables
// metrics entirely.
func WithMetrics[W common.Word](reg *metrics.Registry) Option[W] {
	return func(v *Verifier[W]) { v.metrics = reg }
}

// FromProof restores a Verifier from proof, ready to check its pre-step
// commitment and replay its one instruction.
func FromProof[W common.Word](proof *machine.StepProof[W], opts ...Option[W]) (*Verifier[W], error) {
	m, err := machine.RestoreFromProof[W](proof)
	if err != nil {
		return nil, err
	}
	v := &Verifier[W]{m: m, log: zap.NewNop()}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// CommitStep returns the current (step_num, commitment) pair without
// executing anything. Before ExecuteNextStep this is the pre-step
// commitment; afterwards it is the post-step commitment.
func (v *Verifier[W]) CommitStep() (machine.StepCommitment, error) {
	if err := v.m.VerifyErr(); err != nil {
		return machine.StepCommitment{}, err
	}
	return v.m.CommitStep(), nil
}

// ExecuteNextStep replays the single instruction the restoring StepProof
// covers and returns the resulting post-step commitment, matching
// original_source's execute_next_step (execute, then commit_step).
func (v *Verifier[W]) ExecuteNextStep() (machine.StepCommitment, error) {
	if err := v.m.ExecuteNextStep(); err != nil {
		v.log.Error("verifier execute next step failed", zap.Error(err))
		return machine.StepCommitment{}, err
	}
	if err := v.m.VerifyErr(); err != nil {
		v.log.Error("verifier touched undisclosed memory", zap.Error(err))
		return machine.StepCommitment{}, err
	}
	v.metrics.IncStepsExecuted()
	commitment, err := v.CommitStep()
	if err != nil {
		return machine.StepCommitment{}, err
	}
	v.log.Info("verified step", zap.Uint64("step", commitment.StepNum))
	return commitment, nil
}
