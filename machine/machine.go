package machine

import (
	"errors"

	"github.com/zeroqn/woss/common"
	"github.com/zeroqn/woss/memory"
	"github.com/zeroqn/woss/riscv"
	"github.com/zeroqn/woss/smt"
	"golang.org/x/xerrors"
)

// StepCommitment pairs a step number with the commitment reached after that
// many instructions have retired. Ordered first by StepNum, then by
// Commitment bytes.
type StepCommitment struct {
	StepNum    uint64
	Commitment common.Byte32
}

// Machine wraps one riscv.Core with its SMTMemory and a step counter. A
// Prover-mode Machine (built with NewProver) owns a full-knowledge smt.Tree
// behind a memory.Tracer and can produce StepProofs; a Verifier-mode
// Machine (built with RestoreFromProof) owns only what a proof discloses
// and can execute exactly the one instruction that proof covers.
type Machine[W common.Word] struct {
	core      *riscv.Core[W]
	mem       *memory.SMTMemory[W]
	step      uint64
	isa       uint8
	maxCycles uint64
	entry     W
	memSize   uint64

	// verifyErr, set only by RestoreFromProof, surfaces any access to an
	// undisclosed memory key encountered while driving this Machine.
	verifyErr func() error
}

// NewProver returns a Machine backed by a fresh, full-knowledge SMT memory
// store, ready to load a program and run it.
func NewProver[W common.Word](isa uint8, maxCycles uint64, entry W, memSize uint64) *Machine[W] {
	tree := smt.New()
	tracer := memory.NewTracer(tree)
	mem := memory.New[W](tracer, memSize)
	core := riscv.New[W](isa, maxCycles, entry)
	// A loaded-but-not-yet-run machine is not running: Run/RunUntilStep
	// flips this once they capture the initial commitment, mirroring
	// original_source's run_until_step ordering.
	core.Running = false
	return &Machine[W]{
		core:      core,
		mem:       mem,
		isa:       isa,
		maxCycles: maxCycles,
		entry:     entry,
		memSize:   memSize,
	}
}

// LoadProgram writes data into memory at base. It does not reset the step
// counter: loading and running are independent operations.
func (m *Machine[W]) LoadProgram(data []byte, base uint64) error {
	return m.mem.StoreBytes(base, data)
}

// Reset rebuilds the emulator core at its original entry point and zeroes
// the step counter. Memory content is untouched.
func (m *Machine[W]) Reset() {
	core := riscv.New[W](m.isa, m.maxCycles, m.entry)
	core.Running = false
	m.core = core
	m.step = 0
}

// ExecuteNextStep executes exactly one instruction and advances the step
// counter. It records no commitments; callers wanting the post-step
// commitment should call CommitStep afterwards. The core is forced
// running before the step, matching original_source's
// execute_next_step/run_until_step, which both call set_running(true)
// immediately before stepping regardless of the core's prior state.
func (m *Machine[W]) ExecuteNextStep() error {
	m.core.Running = true
	if err := riscv.Step[W](m.core, m.mem); err != nil {
		return xerrors.Errorf("machine: ExecuteNextStep: %w", err)
	}
	next := m.step + 1
	if next < m.step {
		return xerrors.New("machine: step counter overflow")
	}
	m.step = next
	return nil
}

// CommitStep returns the current (step_num, commitment) pair without
// executing anything.
func (m *Machine[W]) CommitStep() StepCommitment {
	return StepCommitment{StepNum: m.step, Commitment: m.commit()}
}

func (m *Machine[W]) commit() common.Byte32 {
	return Commit(State[W]{
		Registers: m.core.Regs,
		PC:        m.core.PC,
		NextPC:    m.core.NextPC,
		Memory:    m.mem.Commitment(),
		Cycles:    m.core.Cycles,
		MaxCycles: m.core.MaxCycles,
		Running:   m.core.Running,
		ISA:       m.core.ISA,
		Version:   m.core.Version,
	})
}

// GetNextPC returns the pending next program counter without mutating any
// observable state. riscv.Core keeps PC and NextPC as two explicit fields
// rather than a single pending slot, so this is a plain read.
func (m *Machine[W]) GetNextPC() W {
	return m.core.NextPC
}

// Step returns the current step number.
func (m *Machine[W]) Step() uint64 {
	return m.step
}

// Reg returns the current value of register i (always zero for x0).
func (m *Machine[W]) Reg(i int) W {
	return m.core.Reg(i)
}

// Halted reports whether the underlying core has stopped.
func (m *Machine[W]) Halted() bool {
	return m.core.Halted()
}

// Run drives single-step execution until the core halts, accumulating a
// StepCommitment after every step including the initial, pre-execution
// state.
func (m *Machine[W]) Run() ([]StepCommitment, error) {
	return m.runUntil(nil)
}

// RunUntilStep drives single-step execution until the core halts or the
// step counter reaches n, whichever comes first.
func (m *Machine[W]) RunUntilStep(n uint64) ([]StepCommitment, error) {
	return m.runUntil(&n)
}

func (m *Machine[W]) runUntil(limit *uint64) ([]StepCommitment, error) {
	// Capture the pre-run commitment before forcing the core running, so
	// an empty program's single commitment is byte-identical to a
	// freshly-constructed machine's.
	commitments := []StepCommitment{m.CommitStep()}
	m.core.Running = true
	for !m.core.Halted() {
		if limit != nil && m.step >= *limit {
			break
		}
		if err := m.ExecuteNextStep(); err != nil {
			if errors.Is(err, riscv.ErrHalted) {
				break
			}
			return nil, err
		}
		commitments = append(commitments, m.CommitStep())
	}
	return commitments, nil
}

// ProveNextStep executes exactly one instruction, tracing every memory key
// it touches, and returns a StepProof sufficient for a Verifier-mode
// Machine restored via RestoreFromProof to replay that same instruction and
// reach the same post-step commitment. Only meaningful on a Prover-mode
// Machine (one whose store supports tracing); it panics otherwise, via
// SMTMemory.EnableTracer.
func (m *Machine[W]) ProveNextStep() (*StepProof[W], error) {
	m.mem.EnableTracer()
	defer m.mem.DisableTracer()

	preStep := m.step
	preRegs := m.core.Regs
	prePC := m.core.PC
	preNextPC := m.core.NextPC
	preCycles := m.core.Cycles
	preMaxCycles := m.core.MaxCycles
	preRunning := m.core.Running
	preISA := m.core.ISA
	preVersion := m.core.Version

	// ExecuteNextStep forces the core running before it steps, so the
	// traced window always covers exactly one retired instruction even
	// though preRunning (recorded above) may itself be false.
	if err := m.ExecuteNextStep(); err != nil {
		return nil, xerrors.Errorf("machine: ProveNextStep: %w", err)
	}

	memProof, err := m.mem.ProveTraces()
	if err != nil {
		return nil, xerrors.Errorf("machine: ProveNextStep: %w", err)
	}

	return &StepProof[W]{
		StepNum:   preStep,
		Registers: preRegs,
		PC:        prePC,
		NextPC:    preNextPC,
		Memory:    memProof,
		Cycles:    preCycles,
		MaxCycles: preMaxCycles,
		Running:   preRunning,
		ISA:       preISA,
		Version:   preVersion,
	}, nil
}

// RestoreFromProof rebuilds a Verifier-mode Machine from a StepProof: a
// fresh core seeded with the proof's pre-step registers/PC/next-PC/cycles/
// control fields, and a memory surface that discloses only the keys the
// proof's memory witness covers. The resulting Machine's commitment is
// byte-identical to the Prover's state at proof.StepNum.
func RestoreFromProof[W common.Word](proof *StepProof[W]) (*Machine[W], error) {
	store, err := memory.RestoreFromProof(proof.Memory)
	if err != nil {
		return nil, xerrors.Errorf("machine: RestoreFromProof: %w", err)
	}
	adapter := smt.NewVerifierAdapter(store)
	mem := memory.New[W](adapter, proof.Memory.MemorySize)

	core := &riscv.Core[W]{
		Regs:      proof.Registers,
		PC:        proof.PC,
		NextPC:    proof.NextPC,
		Cycles:    proof.Cycles,
		MaxCycles: proof.MaxCycles,
		Running:   proof.Running,
		ISA:       proof.ISA,
		Version:   proof.Version,
	}

	return &Machine[W]{
		core:      core,
		mem:       mem,
		step:      proof.StepNum,
		isa:       proof.ISA,
		maxCycles: proof.MaxCycles,
		memSize:   proof.Memory.MemorySize,
		verifyErr: adapter.Err,
	}, nil
}

// VerifyErr returns the first error encountered accessing an undisclosed
// memory key while driving a Machine built by RestoreFromProof; nil for a
// Prover-mode Machine, or if no such access has occurred.
func (m *Machine[W]) VerifyErr() error {
	if m.verifyErr == nil {
		return nil
	}
	return m.verifyErr()
}
