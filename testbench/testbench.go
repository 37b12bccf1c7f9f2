// Package testbench runs the CmdStream correctness test against a runtime.
//
// A run walks through a fixed sequence of states:
//
//	Init → Generate → WriteA → WriteB → Execute → ReadOutput →
//	ComputeReference → Verify → Report
//
// Every state before Report either succeeds or ends the run with a
// StateError. Only the verification outcome is soft: mismatches are collected
// and reported, and the run still completes.
package testbench

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/sarchlab/cmdstream/config"
	"github.com/sarchlab/cmdstream/dfe"
	"github.com/sarchlab/cmdstream/lmem"
	"github.com/sarchlab/cmdstream/valgen"
	"github.com/sarchlab/cmdstream/verify"
)

// State is a step of a test run.
type State int

const (
	StateInit State = iota
	StateGenerate
	StateWriteA
	StateWriteB
	StateExecute
	StateReadOutput
	StateComputeReference
	StateVerify
	StateReport
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "Init"
	case StateGenerate:
		return "Generate"
	case StateWriteA:
		return "WriteA"
	case StateWriteB:
		return "WriteB"
	case StateExecute:
		return "Execute"
	case StateReadOutput:
		return "ReadOutput"
	case StateComputeReference:
		return "ComputeReference"
	case StateVerify:
		return "Verify"
	case StateReport:
		return "Report"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// StateError is a fatal failure of one state of a run.
type StateError struct {
	State State
	Err   error
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s: %v", e.State, e.Err)
}

func (e *StateError) Unwrap() error {
	return e.Err
}

// Bench runs the test.
type Bench struct {
	runtime dfe.Runtime
	size    int
	stream  string
	gen     valgen.Gen
	inA     []int32
	inB     []int32
	report  string
	stdout  io.Writer
	stderr  io.Writer
	logger  *slog.Logger
	runID   string
}

// RunID returns the identifier of the bench.
func (b *Bench) RunID() string {
	return b.runID
}

func (b *Bench) fail(s State, err error) (verify.Result, error) {
	b.logger.Error("RunFailed", "State", s.String(), "Error", err)
	return verify.Result{}, &StateError{State: s, Err: err}
}

func (b *Bench) enter(s State) {
	b.logger.Debug("EnterState", "State", s.String())
}

// Run performs the whole test once and returns the verification result. An
// error is returned only for fatal failures; mismatches are part of the
// result.
func (b *Bench) Run() (verify.Result, error) {
	b.enter(StateInit)
	maxFile, err := b.runtime.Init()
	if err != nil {
		return b.fail(StateInit, err)
	}

	burstSize, err := maxFile.BurstSize(b.stream)
	if err != nil {
		return b.fail(StateInit, err)
	}

	layout, err := lmem.NewLayout(b.size, burstSize)
	if err != nil {
		return b.fail(StateInit, err)
	}

	if err := layout.Fits(maxFile.LMemCapacity); err != nil {
		return b.fail(StateInit, err)
	}

	stager, err := lmem.NewStager(b.runtime, burstSize, maxFile.LMemCapacity)
	if err != nil {
		return b.fail(StateInit, err)
	}

	b.enter(StateGenerate)
	inA, inB, err := b.inputs()
	if err != nil {
		return b.fail(StateGenerate, err)
	}

	fmt.Fprintln(b.stdout, "Loading DFE memory.")

	b.enter(StateWriteA)
	if err := stager.WriteZone(layout.Zone(dfe.InA), inA); err != nil {
		return b.fail(StateWriteA, err)
	}

	b.enter(StateWriteB)
	if err := stager.WriteZone(layout.Zone(dfe.InB), inB); err != nil {
		return b.fail(StateWriteB, err)
	}

	fmt.Fprintln(b.stdout, "Running DFE.")

	b.enter(StateExecute)
	if err := b.runtime.Run(b.size, burstSize); err != nil {
		return b.fail(StateExecute, err)
	}

	fmt.Fprintln(b.stdout, "Reading DFE memory.")

	b.enter(StateReadOutput)
	observed, err := stager.ReadZone(layout.Zone(dfe.Out))
	if err != nil {
		return b.fail(StateReadOutput, err)
	}

	b.enter(StateComputeReference)
	expected := verify.Reference(inA, inB)

	b.enter(StateVerify)
	result := verify.Check(observed, expected)

	b.enter(StateReport)
	if err := b.writeReport(result); err != nil {
		return b.fail(StateReport, err)
	}

	b.logger.Info("RunDone",
		"Size", b.size,
		"BurstSize", burstSize,
		"Mismatches", len(result.Mismatches),
	)

	return result, nil
}

func (b *Bench) inputs() (inA, inB []int32, err error) {
	if b.inA != nil || b.inB != nil {
		if len(b.inA) != b.size || len(b.inB) != b.size {
			return nil, nil, fmt.Errorf(
				"fixed inputs of %d and %d elements for a run of %d: %w",
				len(b.inA), len(b.inB), b.size, valgen.ErrInvalidSize)
		}

		return b.inA, b.inB, nil
	}

	return valgen.GenerateInputs(b.size, b.gen)
}

func (b *Bench) writeReport(result verify.Result) error {
	if err := result.WriteMismatches(b.stderr); err != nil {
		return err
	}

	if b.report == config.ReportTable && !result.Passed() {
		if _, err := fmt.Fprintln(b.stderr, result.RenderTable(32)); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintln(b.stdout, result.Verdict())

	return err
}
