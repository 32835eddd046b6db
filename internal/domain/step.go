package domain

import "context"

// StepStatus represents the lifecycle state of a single flow step.
type StepStatus string

const (
	// StepPending indicates the step has not been executed yet.
	StepPending StepStatus = "pending"
	// StepActive indicates the step is currently executing.
	StepActive StepStatus = "active"
	// StepSuccess indicates the step completed successfully.
	StepSuccess StepStatus = "success"
	// StepFailed indicates the step's run function returned an error.
	StepFailed StepStatus = "failed"
)

// String returns the string representation of the status.
func (s StepStatus) String() string {
	return string(s)
}

// IsTerminal returns true if the status is a final state for the step.
func (s StepStatus) IsTerminal() bool {
	return s == StepSuccess || s == StepFailed
}

// RunFunc executes one on-chain action and returns its transaction result.
type RunFunc func(ctx context.Context) (*TxResult, error)

// Step is a declarative description of one on-chain action in a flow.
// The Run function is invoked by the engine; Status is mutated in place
// as execution proceeds.
type Step struct {
	Name        string
	Description string
	Run         RunFunc
	Status      StepStatus

	// Result holds the transaction result of the last successful run.
	Result *TxResult
	// Err holds the error of the last failed run.
	Err error
}

// NewStep creates a pending step with the given name and run function.
func NewStep(name string, run RunFunc) *Step {
	return &Step{
		Name:   name,
		Run:    run,
		Status: StepPending,
	}
}

// Clone returns a shallow copy of the step for read-only snapshots.
func (s *Step) Clone() *Step {
	c := *s
	return &c
}
