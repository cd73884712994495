// Package prover is a thin driver over a Prover-mode machine.Machine: load a
// program, run it to completion or to a chosen step, and produce a StepProof
// for exactly one instruction. It mirrors original_source's prover.rs, which
// is itself nothing but a forwarding wrapper over its own Machine type.
package prover

import (
	"go.uber.org/zap"

	"github.com/zeroqn/woss/common"
	"github.com/zeroqn/woss/machine"
	"github.com/zeroqn/woss/metrics"
)

// Config bundles the parameters needed to stand up a Prover. Mirrors
// original_source's Prover::new(memory_size) plus the ISA/max-cycles
// parameters machine.NewProver additionally requires.
type Config struct {
	ISA       uint8
	MaxCycles uint64
	Entry     uint64
	MemSize   uint64
}

// Prover drives a single RISC-V program under full-knowledge SMT memory,
// able to run it and to produce per-instruction StepProofs on demand. Not
// safe for concurrent use, matching machine.Machine's own restriction.
type Prover[W common.Word] struct {
	m       *machine.Machine[W]
	log     *zap.Logger
	metrics *metrics.Registry
}

// Option configures optional ambient wiring for a Prover.
type Option[W common.Word] func(*Prover[W])

// WithLogger attaches a structured logger; nil (the default) disables
// logging entirely.
func WithLogger[W common.Word](log *zap.Logger) Option[W] {
	return func(p *Prover[W]) { p.log = log }
}

// WithMetrics attaches a metrics registry; nil (the default) disables
// metrics entirely. metrics.Registry is itself nil-safe, so this is mostly
// a readability aid.
func WithMetrics[W common.Word](reg *metrics.Registry) Option[W] {
	return func(p *Prover[W]) { p.metrics = reg }
}

// New constructs a Prover from cfg, applying any options.
func New[W common.Word](cfg Config, opts ...Option[W]) *Prover[W] {
	p := &Prover[W]{
		m:   machine.NewProver[W](cfg.ISA, cfg.MaxCycles, W(cfg.Entry), cfg.MemSize),
		log: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// LoadProgram writes program bytes into memory starting at base.
func (p *Prover[W]) LoadProgram(program []byte, base uint64) error {
	return p.m.LoadProgram(program, base)
}

// RunResult bundles the outcome of driving a Prover to completion or to a
// chosen step, matching original_source's RunResult (step_count plus the
// full per-step commitment vector).
type RunResult struct {
	StepCount       uint64
	StepCommitments []machine.StepCommitment
}

// Run drives single-step execution until the core halts.
func (p *Prover[W]) Run() (RunResult, error) {
	return p.run(p.m.Run)
}

// RunUntilStep drives single-step execution until the core halts or the
// step counter reaches n.
func (p *Prover[W]) RunUntilStep(n uint64) (RunResult, error) {
	return p.run(func() ([]machine.StepCommitment, error) { return p.m.RunUntilStep(n) })
}

func (p *Prover[W]) run(fn func() ([]machine.StepCommitment, error)) (RunResult, error) {
	commitments, err := fn()
	if err != nil {
		return RunResult{}, err
	}
	stepsRun := len(commitments) - 1
	if stepsRun > 0 {
		p.log.Debug("prover run advanced", zap.Int("steps", stepsRun))
	}
	for i := 0; i < stepsRun; i++ {
		p.metrics.IncStepsExecuted()
	}
	return RunResult{StepCount: p.m.Step(), StepCommitments: commitments}, nil
}

// ProveNextStep executes exactly one instruction and returns a StepProof a
// Verifier can replay independently.
func (p *Prover[W]) ProveNextStep() (*machine.StepProof[W], error) {
	proof, err := p.m.ProveNextStep()
	if err != nil {
		p.log.Error("prove next step failed", zap.Error(err))
		return nil, err
	}
	p.metrics.IncStepsExecuted()
	p.log.Info("proved step", zap.Uint64("step", proof.StepNum))
	return proof, nil
}

// Reset rebuilds the emulator core at its entry point and zeroes the step
// counter. Memory content, and anything already proved, is untouched.
func (p *Prover[W]) Reset() {
	p.m.Reset()
}
