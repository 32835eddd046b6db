package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/p2e-inferno/chainstep/internal/domain"
)

// DefaultWaitTimeout bounds WaitForSteps when no timeout is configured.
const DefaultWaitTimeout = 5 * time.Second

// Engine drives sequential execution of an ordered list of steps with
// suspend-on-failure semantics. All state is owned by the engine;
// observers receive read-only snapshots through the progress sink.
type Engine struct {
	mu       sync.Mutex
	steps    domain.Steps
	phase    domain.FlowPhase
	active   int
	canClose bool
	version  uint64

	// installed is closed and replaced on every Install, waking all
	// WaitForSteps callers.
	installed chan struct{}

	waitTimeout time.Duration
	sink        ProgressSink
	log         *slog.Logger
}

// NewEngine creates an idle engine with no steps installed.
func NewEngine(sink ProgressSink, log *slog.Logger) *Engine {
	if sink == nil {
		sink = NopProgress{}
	}
	return &Engine{
		phase:       domain.PhaseIdle,
		active:      -1,
		installed:   make(chan struct{}),
		waitTimeout: DefaultWaitTimeout,
		sink:        sink,
		log:         log.With("component", "engine"),
	}
}

// SetWaitTimeout overrides the WaitForSteps timeout. Zero restores the
// default.
func (e *Engine) SetWaitTimeout(d time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if d <= 0 {
		d = DefaultWaitTimeout
	}
	e.waitTimeout = d
}

// Install replaces the step list, bumps the state version and resets
// the engine to idle. Statuses of the new steps are forced to pending.
func (e *Engine) Install(ctx context.Context, steps domain.Steps) uint64 {
	e.mu.Lock()
	for _, s := range steps {
		s.Status = domain.StepPending
		s.Result = nil
		s.Err = nil
	}
	e.steps = steps
	e.phase = domain.PhaseIdle
	e.active = -1
	e.canClose = false
	e.version++
	version := e.version

	// Wake waiters and re-arm for the next install.
	close(e.installed)
	e.installed = make(chan struct{})
	snapshot := e.snapshotLocked()
	e.mu.Unlock()

	e.log.Debug("steps installed", "count", len(steps), "version", version)
	e.emit(ctx, ProgressEvent{
		Stage:    StageStepsInstalled,
		Total:    len(steps),
		Metadata: snapshot,
	})
	return version
}

// Version returns the current state version.
func (e *Engine) Version() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.version
}

// State returns a deep-copied snapshot of the engine state.
func (e *Engine) State() *domain.FlowState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// WaitForSteps blocks until a step list of exactly count items has been
// installed strictly after sinceVersion. It returns ErrWaitTimeout if
// the expected list never appears within the wait window.
func (e *Engine) WaitForSteps(ctx context.Context, count int, sinceVersion uint64) error {
	e.mu.Lock()
	timeout := e.waitTimeout
	e.mu.Unlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		e.mu.Lock()
		if e.version > sinceVersion && len(e.steps) == count {
			e.mu.Unlock()
			return nil
		}
		armed := e.installed
		e.mu.Unlock()

		select {
		case <-armed:
		case <-timer.C:
			return fmt.Errorf("%w: expected %d steps after version %d", domain.ErrWaitTimeout, count, sinceVersion)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Start executes the installed steps in order from index 0. On the
// first failure the engine suspends at the failed step and returns a
// StepError; the caller is expected to drive retry/cancel from there.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	if len(e.steps) == 0 {
		e.mu.Unlock()
		return domain.ErrNoSteps
	}
	if e.phase != domain.PhaseIdle {
		phase := e.phase
		e.mu.Unlock()
		return fmt.Errorf("%w: cannot start from %q", domain.ErrInvalidPhase, phase)
	}
	e.phase = domain.PhaseRunning
	e.mu.Unlock()

	return e.runFrom(ctx, 0)
}

// RetryStep re-runs only the currently failed step. On success the
// engine resumes sequential execution from the next index; on renewed
// failure it stays suspended at the same step.
func (e *Engine) RetryStep(ctx context.Context) error {
	e.mu.Lock()
	if e.phase != domain.PhaseSuspended {
		phase := e.phase
		e.mu.Unlock()
		return fmt.Errorf("%w: phase is %q", domain.ErrNotSuspended, phase)
	}
	index := e.active
	e.phase = domain.PhaseRunning
	e.mu.Unlock()

	e.emit(ctx, ProgressEvent{
		Stage:   StageStepRetrying,
		Current: index + 1,
		Total:   e.stepCount(),
		Message: e.stepName(index),
	})

	return e.runFrom(ctx, index)
}

// Cancel marks the flow as terminated. It is cooperative: an in-flight
// step is never interrupted, the cancellation takes effect at the next
// step boundary. Cancelling a terminal flow is a no-op.
func (e *Engine) Cancel(ctx context.Context) {
	e.mu.Lock()
	if e.phase.IsTerminal() {
		e.mu.Unlock()
		return
	}
	e.phase = domain.PhaseCancelled
	e.canClose = true
	snapshot := e.snapshotLocked()
	e.mu.Unlock()

	e.log.Debug("flow cancelled", "active_step", snapshot.ActiveStep)
	e.emit(ctx, ProgressEvent{
		Stage:    StageFlowCancelled,
		Metadata: snapshot,
	})
}

// runFrom executes steps sequentially starting at index. The engine
// lock is never held across a step's run function.
func (e *Engine) runFrom(ctx context.Context, index int) error {
	for {
		e.mu.Lock()
		if e.phase == domain.PhaseCancelled {
			e.mu.Unlock()
			return domain.ErrFlowCancelled
		}
		if index >= len(e.steps) {
			e.phase = domain.PhaseComplete
			e.canClose = true
			snapshot := e.snapshotLocked()
			e.mu.Unlock()
			e.emit(ctx, ProgressEvent{Stage: StageFlowCompleted, Metadata: snapshot})
			return nil
		}
		step := e.steps[index]
		step.Status = domain.StepActive
		e.active = index
		total := len(e.steps)
		e.mu.Unlock()

		e.emit(ctx, ProgressEvent{
			Stage:   StageStepStarted,
			Current: index + 1,
			Total:   total,
			Message: step.Name,
			Spinner: true,
		})
		e.log.Debug("running step", "index", index, "name", step.Name)

		result, err := step.Run(ctx)
		if err == nil {
			err = result.Confirm(ctx)
		}

		e.mu.Lock()
		if err != nil {
			step.Status = domain.StepFailed
			step.Err = err
			e.phase = domain.PhaseSuspended
			e.canClose = true
			snapshot := e.snapshotLocked()
			e.mu.Unlock()

			e.log.Debug("step failed", "index", index, "name", step.Name, "error", err)
			e.emit(ctx, ProgressEvent{
				Stage:    StageStepFailed,
				Current:  index + 1,
				Total:    total,
				Message:  err.Error(),
				Metadata: snapshot,
			})
			return &domain.StepError{Index: index, Name: step.Name, Cause: err}
		}

		step.Status = domain.StepSuccess
		step.Result = result
		step.Err = nil
		e.mu.Unlock()

		message := step.Name
		if result != nil && result.URL != "" {
			message = fmt.Sprintf("%s (%s)", step.Name, result.URL)
		}
		e.emit(ctx, ProgressEvent{
			Stage:   StageStepSucceeded,
			Current: index + 1,
			Total:   total,
			Message: message,
		})

		index++
	}
}

func (e *Engine) snapshotLocked() *domain.FlowState {
	return &domain.FlowState{
		Steps:      e.steps.Clone(),
		ActiveStep: e.active,
		CanClose:   e.canClose,
		Phase:      e.phase,
		Version:    e.version,
	}
}

func (e *Engine) stepCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.steps)
}

func (e *Engine) stepName(index int) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if index < 0 || index >= len(e.steps) {
		return ""
	}
	return e.steps[index].Name
}

// emit forwards an event to the sink without holding the engine lock.
func (e *Engine) emit(ctx context.Context, event ProgressEvent) {
	e.sink.OnProgress(ctx, event)
}
