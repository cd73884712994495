// Command woss runs the end-to-end fraud-proof demo: load a program,
// produce the honest per-step commitment vector, forge a random suffix of
// it, play the two-party dissection game to convergence, then prove and
// verify the one disputed instruction. It is the clearest executable
// specification of how the prover, verifier and dissection finder compose,
// so it ships as a runnable subcommand rather than only living in a test.
package main

import (
	"crypto/rand"
	"flag"
	"fmt"
	"math/big"
	"os"

	"go.uber.org/zap"

	"github.com/zeroqn/woss/common"
	"github.com/zeroqn/woss/machine"
	"github.com/zeroqn/woss/metrics"
	"github.com/zeroqn/woss/prover"
	"github.com/zeroqn/woss/riscv"
	"github.com/zeroqn/woss/verifier"
)

func main() {
	if len(os.Args) < 2 || os.Args[1] != "demo" {
		fmt.Fprintln(os.Stderr, "usage: woss demo [flags]")
		os.Exit(1)
	}

	fs := flag.NewFlagSet("demo", flag.ExitOnError)
	programPath := fs.String("program", "", "path to a raw RV32I instruction stream (default: built-in demo program)")
	memSize := fs.Uint64("mem-size", 1<<20, "addressable memory size in bytes")
	maxCycles := fs.Uint64("max-cycles", 10000, "cycle budget for the program run")
	verbose := fs.Bool("v", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	logCfg := zap.NewDevelopmentConfig()
	if !*verbose {
		logCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	log, err := logCfg.Build()
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger init:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	reg := metrics.NewRegistry(nil)

	if err := runDemo[uint32](*programPath, *memSize, *maxCycles, log, reg); err != nil {
		log.Error("demo failed", zap.Error(err))
		os.Exit(1)
	}
}

func runDemo[W common.Word](programPath string, memSize, maxCycles uint64, log *zap.Logger, reg *metrics.Registry) error {
	program := buildDemoProgram()
	if programPath != "" {
		data, err := os.ReadFile(programPath)
		if err != nil {
			return err
		}
		program = data
	}

	p := prover.New[W](prover.Config{
		ISA:       riscv.ISARV32,
		MaxCycles: maxCycles,
		Entry:     0,
		MemSize:   memSize,
	}, prover.WithLogger[W](log), prover.WithMetrics[W](reg))

	if err := p.LoadProgram(program, 0); err != nil {
		return err
	}
	honest, err := p.Run()
	if err != nil {
		return err
	}
	log.Info("honest run complete", zap.Uint64("step_count", honest.StepCount))

	p.Reset()
	if err := p.LoadProgram(program, 0); err != nil {
		return err
	}

	// Step 0 must never be challenged: both parties agree on the initial
	// state by construction, so a dispute only ever lives at step >= 1.
	if honest.StepCount < 2 {
		return fmt.Errorf("woss: demo program too short to stage a dispute (step count %d)", honest.StepCount)
	}
	randomDiffStep, err := randomStepIn(1, honest.StepCount)
	if err != nil {
		return err
	}
	forged := forgeSteps(honest.StepCommitments, randomDiffStep)
	diffStep := forged[randomDiffStep]
	correctStep := honest.StepCommitments[randomDiffStep]
	if diffStep == correctStep {
		return fmt.Errorf("woss: forged step %d accidentally matches the honest one", randomDiffStep)
	}
	log.Info("staged dispute", zap.Uint64("random_diff_step", randomDiffStep))

	producer := verifier.NewStepDiffFinder(forged)
	challenger := verifier.NewStepDiffFinder(honest.StepCommitments)

	stepsToDiff, err := producer.StepRange(0, int(honest.StepCount))
	if err != nil {
		return err
	}
	turnIsChallenger := true
	for len(stepsToDiff) > 1 {
		finder := producer
		if turnIsChallenger {
			finder = challenger
		}
		start, end, derr := finder.DiffStepRange(stepsToDiff)
		if derr != nil {
			return derr
		}
		reg.IncDissectionRounds()
		if start == end {
			stepsToDiff = []machine.StepCommitment{start}
		} else {
			stepsToDiff, err = finder.StepRange(int(start.StepNum), int(end.StepNum))
			if err != nil {
				return err
			}
		}
		turnIsChallenger = !turnIsChallenger
	}
	disputedStep := stepsToDiff[0]
	if disputedStep.StepNum != diffStep.StepNum {
		return fmt.Errorf("woss: dissection converged on step %d, expected %d", disputedStep.StepNum, diffStep.StepNum)
	}
	log.Info("dissection converged", zap.Uint64("step", disputedStep.StepNum))

	lastAgreedStep := honest.StepCommitments[disputedStep.StepNum-1]
	if _, err := p.RunUntilStep(lastAgreedStep.StepNum); err != nil {
		return err
	}
	proof, err := p.ProveNextStep()
	if err != nil {
		return err
	}

	v, err := verifier.FromProof[W](proof, verifier.WithLogger[W](log), verifier.WithMetrics[W](reg))
	if err != nil {
		return err
	}
	preCommit, err := v.CommitStep()
	if err != nil {
		return err
	}
	if preCommit != lastAgreedStep {
		return fmt.Errorf("woss: verifier pre-step commitment mismatch at step %d", preCommit.StepNum)
	}

	postCommit, err := v.ExecuteNextStep()
	if err != nil {
		return err
	}
	if postCommit == diffStep {
		return fmt.Errorf("woss: verifier reproduced the forged commitment instead of the honest one")
	}
	if postCommit != correctStep {
		return fmt.Errorf("woss: verifier post-step commitment does not match the honest run")
	}
	log.Info("challenge resolved", zap.Uint64("disputed_step", disputedStep.StepNum))
	fmt.Printf("challenge diff step %d success\n", disputedStep.StepNum)
	return nil
}

// forgeSteps returns a copy of steps with every commitment at index >=
// startAt replaced by random bytes, simulating a dishonest producer whose
// execution trace diverges from startAt onward.
func forgeSteps(steps []machine.StepCommitment, startAt uint64) []machine.StepCommitment {
	out := make([]machine.StepCommitment, len(steps))
	copy(out, steps)
	for i := range out {
		if uint64(i) < startAt {
			continue
		}
		var junk common.Byte32
		_, _ = rand.Read(junk[:])
		out[i].Commitment = junk
	}
	return out
}

// randomStepIn draws a uniformly random step number in [lo, hi).
func randomStepIn(lo, hi uint64) (uint64, error) {
	n, err := rand.Int(rand.Reader, new(big.Int).SetUint64(hi-lo))
	if err != nil {
		return 0, err
	}
	return lo + n.Uint64(), nil
}
