// Package lockscript simulates the on-chain lock script entry point that
// would run in a CKB cell: a pure function over (script args, witness lock
// bytes) deciding whether a submitted step proof really advances from the
// committed pre-step state to the committed post-step state. It carries no
// state across calls and spawns nothing, mirroring the no-std, bump-arena
// posture a real on-chain script runs under.
package lockscript

import (
	"github.com/zeroqn/woss/common"
	"github.com/zeroqn/woss/machine"
	"github.com/zeroqn/woss/verifier"
)

// Code is the lock script's exit-code taxonomy. Values match the original
// entry.rs/error.rs enum exactly so this package's behavior is a drop-in
// simulation of the real on-chain script's decision function.
type Code int8

const (
	IndexOutOfBound            Code = 1
	ItemMissing                Code = 2
	LengthNotEnough            Code = 3
	Encoding                   Code = 4
	InvalidWitness             Code = 5
	InvalidStepProof           Code = 6
	InvalidLockArgs            Code = 7
	VerifierCommit             Code = 8
	MismatchStepCommitment     Code = 9
	ExecuteNextStep            Code = 10
	MismatchNextStepCommitment Code = 11
)

// Error is the error type Run returns; Code identifies which check failed.
// Unwrap exposes the underlying cause, if any, so callers can xerrors.Is/As
// through to it.
type Error struct {
	code  Code
	msg   string
	cause error
}

func (e *Error) Error() string {
	if e.cause == nil {
		return e.msg
	}
	return e.msg + ": " + e.cause.Error()
}

func (e *Error) Unwrap() error { return e.cause }

// Code returns the exit code a real on-chain script would terminate with.
func (e *Error) Code() int8 { return int8(e.code) }

func fail(code Code, msg string) *Error {
	return &Error{code: code, msg: msg}
}

func failWrap(code Code, msg string, cause error) *Error {
	return &Error{code: code, msg: msg, cause: cause}
}

// lockArgsSize is the fixed byte length of the script's own args: two
// back-to-back 32-byte commitments, the expected pre-step and post-step
// state.
const lockArgsSize = 2 * common.Size

// Run decides whether witnessLock — the wire-encoded StepProof a transaction
// submitter attaches as its witness — proves a valid transition from the
// pre-step commitment encoded in args[0:32] to the post-step commitment
// encoded in args[32:64], both for the same step number the proof itself
// names.
//
// The original entry.rs compares the post-step commitment against
// expected_steps.0 (the pre-step expectation) a second time instead of
// expected_steps.1 (the actual post-step expectation) — a bug that would
// accept any step proof whose pre-step commitment merely repeats, even if
// the instruction it claims to execute produces nothing like the expected
// next state. This implementation uses expected_steps.1 (expectedPost,
// from args[32:64]) for the second comparison, which is what correct verification requires.
func Run[W common.Word](args []byte, witnessLock []byte) error {
	if len(args) != lockArgsSize {
		return fail(InvalidLockArgs, "lockscript: script args must be exactly 64 bytes")
	}
	if len(witnessLock) == 0 {
		return fail(InvalidWitness, "lockscript: witness lock is missing")
	}

	proof, err := machine.DecodeStepProof[W](witnessLock)
	if err != nil {
		return failWrap(InvalidStepProof, "lockscript: malformed step proof witness", err)
	}

	var preExpected, postExpected common.Byte32
	copy(preExpected[:], args[0:32])
	copy(postExpected[:], args[32:64])
	expectedPre := machine.StepCommitment{StepNum: proof.StepNum, Commitment: preExpected}
	expectedPost := machine.StepCommitment{StepNum: proof.StepNum + 1, Commitment: postExpected}

	v, err := verifier.FromProof[W](proof)
	if err != nil {
		return failWrap(InvalidStepProof, "lockscript: could not restore verifier from proof", err)
	}

	commitment, err := v.CommitStep()
	if err != nil {
		return failWrap(VerifierCommit, "lockscript: commit_step failed", err)
	}
	if commitment != expectedPre {
		return fail(MismatchStepCommitment, "lockscript: pre-step commitment does not match script args")
	}

	nextCommitment, err := v.ExecuteNextStep()
	if err != nil {
		return failWrap(ExecuteNextStep, "lockscript: execute_next_step failed", err)
	}
	if nextCommitment != expectedPost {
		return fail(MismatchNextStepCommitment, "lockscript: post-step commitment does not match script args")
	}

	return nil
}
