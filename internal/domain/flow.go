package domain

// FlowPhase represents the overall state of a flow execution.
type FlowPhase string

const (
	// PhaseIdle means steps are installed but execution has not started.
	PhaseIdle FlowPhase = "idle"
	// PhaseRunning means the engine is executing steps sequentially.
	PhaseRunning FlowPhase = "running"
	// PhaseSuspended means a step failed and the engine is waiting for a
	// retry or cancel decision.
	PhaseSuspended FlowPhase = "suspended"
	// PhaseComplete means every step finished successfully.
	PhaseComplete FlowPhase = "complete"
	// PhaseCancelled means the flow was cancelled after a failure.
	PhaseCancelled FlowPhase = "cancelled"
)

// IsTerminal returns true if no further execution can happen.
func (p FlowPhase) IsTerminal() bool {
	return p == PhaseComplete || p == PhaseCancelled
}

// FlowState is a snapshot of the engine's state. The engine owns the
// canonical copy; snapshots handed to observers are deep copies and
// must be treated as read-only.
type FlowState struct {
	Steps Steps
	// ActiveStep is the index of the step currently executing or
	// suspended, -1 when execution has not started.
	ActiveStep int
	// CanClose is true once the flow reached a terminal phase or a step
	// failed, meaning the UI may be dismissed safely.
	CanClose bool
	Phase    FlowPhase
	// Version increases by one on every Install call.
	Version uint64
}

// Steps is an ordered list of flow steps.
type Steps []*Step

// Clone returns a deep copy of the step list.
func (s Steps) Clone() Steps {
	out := make(Steps, len(s))
	for i, step := range s {
		out[i] = step.Clone()
	}
	return out
}

// Decision is a user's answer to a failed step.
type Decision string

const (
	// DecisionRetry re-runs the failed step.
	DecisionRetry Decision = "retry"
	// DecisionCancel abandons the flow.
	DecisionCancel Decision = "cancel"
)
