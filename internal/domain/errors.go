package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for flow operations
var (
	// ErrStepFailed is returned when a step's run function fails; the
	// engine suspends at that step awaiting a retry/cancel decision.
	ErrStepFailed = errors.New("step failed")

	// ErrFlowCancelled is returned when the flow was cancelled.
	ErrFlowCancelled = errors.New("flow cancelled")

	// ErrNoSteps is returned when execution is attempted with no steps installed.
	ErrNoSteps = errors.New("no steps installed")

	// ErrInvalidPhase is returned when an operation is invalid in the
	// engine's current phase.
	ErrInvalidPhase = errors.New("invalid flow phase")

	// ErrNotSuspended is returned when a retry is attempted while no
	// step is suspended on failure.
	ErrNotSuspended = errors.New("flow is not suspended on a failed step")

	// ErrWaitTimeout is returned when the expected step list never
	// materialized within the wait window.
	ErrWaitTimeout = errors.New("timed out waiting for steps")

	// ErrDecisionPending is returned when a decision request arrives
	// while another one is still unresolved.
	ErrDecisionPending = errors.New("a decision is already pending")

	// ErrNetworkNotFound is returned when a network name cannot be resolved.
	ErrNetworkNotFound = errors.New("network not found")

	// ErrSenderNotFound is returned when a sender name cannot be resolved.
	ErrSenderNotFound = errors.New("sender not found")

	// ErrInvalidAddress is returned when an Ethereum address is invalid.
	ErrInvalidAddress = errors.New("invalid address")

	// ErrTxReverted is returned when a confirmed transaction has a
	// failed receipt status.
	ErrTxReverted = errors.New("transaction reverted")

	// ErrEventNotFound is returned when an expected event log is
	// missing from a transaction receipt.
	ErrEventNotFound = errors.New("event not found in receipt")
)

// StepError wraps the failure of a specific step with its position in
// the flow.
type StepError struct {
	Index int
	Name  string
	Cause error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s) failed: %v", e.Index+1, e.Name, e.Cause)
}

func (e *StepError) Unwrap() error {
	return ErrStepFailed
}

// Underlying returns the error produced by the step's run function.
func (e *StepError) Underlying() error {
	return e.Cause
}
