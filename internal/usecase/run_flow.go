package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/p2e-inferno/chainstep/internal/domain"
)

// RunFlow installs a step sequence into the engine, executes it and
// drives the retry/cancel loop when a step fails. Run state is
// persisted after every transition so an interrupted flow can be
// resumed.
type RunFlow struct {
	engine *Engine
	bridge *DecisionBridge
	prompt DecisionPrompt
	sink   ProgressSink
	log    *slog.Logger

	// dataDir is where run state files live; empty disables persistence.
	dataDir string
}

// NewRunFlow creates the flow runner use case.
func NewRunFlow(
	engine *Engine,
	bridge *DecisionBridge,
	prompt DecisionPrompt,
	sink ProgressSink,
	dataDir string,
	log *slog.Logger,
) *RunFlow {
	return &RunFlow{
		engine:  engine,
		bridge:  bridge,
		prompt:  prompt,
		sink:    sink,
		dataDir: dataDir,
		log:     log.With("component", "runflow"),
	}
}

// RunFlowParams contains parameters for one flow execution.
type RunFlowParams struct {
	FlowName string
	Steps    domain.Steps
	Network  string
	// NonInteractive cancels immediately on the first failure instead
	// of waiting for a decision.
	NonInteractive bool
	// DecisionTimeout bounds how long the runner waits for a retry or
	// cancel choice. Zero means wait forever, which is the product
	// default: a failed step stays on screen until the user decides.
	DecisionTimeout time.Duration
	// Resume skips steps recorded as successful by a previous run of
	// the same flow.
	Resume bool
}

// RunFlowResult contains the outcome of a flow execution.
type RunFlowResult struct {
	RunID     string
	State     *domain.FlowState
	Success   bool
	Cancelled bool
	// FailedStep is set when the flow ended suspended or cancelled on a
	// failure.
	FailedStep *domain.Step
	// Retries counts how many retry decisions were taken.
	Retries int
	// Skipped counts steps carried over from a resumed run.
	Skipped int
}

// StepStateInfo is the persisted form of a step's outcome.
type StepStateInfo struct {
	Name   string            `json:"name"`
	Status domain.StepStatus `json:"status"`
	TxHash string            `json:"tx_hash,omitempty"`
	TxURL  string            `json:"tx_url,omitempty"`
	Error  string            `json:"error,omitempty"`
}

// RunState is the on-disk state of a flow execution.
type RunState struct {
	RunID     string           `json:"run_id"`
	FlowName  string           `json:"flow_name"`
	Network   string           `json:"network"`
	StartedAt time.Time        `json:"started_at"`
	UpdatedAt time.Time        `json:"updated_at"`
	Status    domain.FlowPhase `json:"status"`
	Steps     []StepStateInfo  `json:"steps"`
	Retries   int              `json:"retries"`
}

// Execute runs the flow to a terminal state.
func (r *RunFlow) Execute(ctx context.Context, params RunFlowParams) (*RunFlowResult, error) {
	if len(params.Steps) == 0 {
		return nil, domain.ErrNoSteps
	}

	result := &RunFlowResult{RunID: uuid.NewString()}

	// The prefix of steps carried over from a previous run. It is kept
	// in the persisted state so a second resume still sees them.
	var resumedPrefix []StepStateInfo

	steps := params.Steps
	if params.Resume {
		skipped, prefix, err := r.resumeOffset(params)
		if err != nil {
			return nil, fmt.Errorf("failed to resume: %w", err)
		}
		if skipped >= len(steps) {
			return nil, fmt.Errorf("previous run of %q already completed successfully", params.FlowName)
		}
		if skipped > 0 {
			r.sink.Info(fmt.Sprintf("Resuming %s from step %d/%d", params.FlowName, skipped+1, len(steps)))
			steps = steps[skipped:]
			result.Skipped = skipped
			resumedPrefix = prefix
		}
	}

	// Install and wait for the new list to land before starting. The
	// wait guards against a stale engine state when steps are swapped
	// from another goroutine (e.g. a UI installing a fresh sequence).
	sinceVersion := r.engine.Version()
	r.engine.Install(ctx, steps)
	if err := r.engine.WaitForSteps(ctx, len(steps), sinceVersion); err != nil {
		return nil, err
	}

	state := r.newRunState(result.RunID, params)
	r.persist(state)

	err := r.engine.Start(ctx)
	for err != nil && errors.Is(err, domain.ErrStepFailed) {
		r.syncRunState(state, resumedPrefix)
		r.persist(state)

		if params.NonInteractive {
			r.engine.Cancel(ctx)
			break
		}

		decision, derr := r.requestDecision(ctx, params.DecisionTimeout)
		if derr != nil {
			r.log.Debug("decision request failed", "error", derr)
			r.engine.Cancel(ctx)
			break
		}
		if decision == domain.DecisionCancel {
			r.engine.Cancel(ctx)
			break
		}

		result.Retries++
		state.Retries = result.Retries
		err = r.engine.RetryStep(ctx)
	}

	if err != nil && !errors.Is(err, domain.ErrStepFailed) && !errors.Is(err, domain.ErrFlowCancelled) {
		return nil, err
	}

	snapshot := r.engine.State()
	result.State = snapshot
	result.Success = snapshot.Phase == domain.PhaseComplete
	result.Cancelled = snapshot.Phase == domain.PhaseCancelled
	if failed, ok := lo.Find(snapshot.Steps, func(s *domain.Step) bool {
		return s.Status == domain.StepFailed
	}); ok {
		result.FailedStep = failed
	}

	r.syncRunState(state, resumedPrefix)
	r.persist(state)

	return result, nil
}

// requestDecision arms the bridge, notifies the presenter and waits
// for the user's choice.
func (r *RunFlow) requestDecision(ctx context.Context, timeout time.Duration) (domain.Decision, error) {
	if err := r.bridge.Pend(); err != nil {
		return "", err
	}

	snapshot := r.engine.State()
	var failed *domain.Step
	if snapshot.ActiveStep >= 0 && snapshot.ActiveStep < len(snapshot.Steps) {
		failed = snapshot.Steps[snapshot.ActiveStep]
	}
	r.sink.OnProgress(ctx, ProgressEvent{
		Stage:    StageDecisionRequested,
		Current:  snapshot.ActiveStep + 1,
		Total:    len(snapshot.Steps),
		Metadata: snapshot,
	})
	r.prompt.DecisionRequested(failed, snapshot)

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return r.bridge.Await(ctx)
}

// resumeOffset loads the previous run state and returns the number of
// leading steps already recorded as successful, together with their
// persisted records so the new run's state file keeps them.
func (r *RunFlow) resumeOffset(params RunFlowParams) (int, []StepStateInfo, error) {
	prev, err := r.loadRunState(params.FlowName)
	if err != nil {
		return 0, nil, err
	}
	if prev.Network != params.Network {
		return 0, nil, fmt.Errorf("network changed (was %s, now %s)", prev.Network, params.Network)
	}

	offset := 0
	for i, info := range prev.Steps {
		if i >= len(params.Steps) || info.Status != domain.StepSuccess {
			break
		}
		if info.Name != params.Steps[i].Name {
			return 0, nil, fmt.Errorf("flow definition changed at step %d (was %q, now %q)", i+1, info.Name, params.Steps[i].Name)
		}
		offset++
	}
	prefix := append([]StepStateInfo(nil), prev.Steps[:offset]...)
	return offset, prefix, nil
}

func (r *RunFlow) newRunState(runID string, params RunFlowParams) *RunState {
	return &RunState{
		RunID:     runID,
		FlowName:  params.FlowName,
		Network:   params.Network,
		StartedAt: time.Now(),
		Status:    domain.PhaseRunning,
	}
}

// syncRunState refreshes the persisted state from the engine snapshot.
// Steps skipped by a resume are not in the snapshot, so their records
// are carried over explicitly.
func (r *RunFlow) syncRunState(state *RunState, resumedPrefix []StepStateInfo) {
	snapshot := r.engine.State()
	state.Status = snapshot.Phase
	executed := lo.Map(snapshot.Steps, func(s *domain.Step, _ int) StepStateInfo {
		info := StepStateInfo{Name: s.Name, Status: s.Status}
		if s.Result != nil {
			info.TxHash = s.Result.Hash.Hex()
			info.TxURL = s.Result.URL
		}
		if s.Err != nil {
			info.Error = s.Err.Error()
		}
		return info
	})
	state.Steps = append(append([]StepStateInfo(nil), resumedPrefix...), executed...)
}

func (r *RunFlow) stateFilePath(flowName string) string {
	return filepath.Join(r.dataDir, "runs", fmt.Sprintf("run-%s.json", flowName))
}

func (r *RunFlow) persist(state *RunState) {
	if r.dataDir == "" {
		return
	}
	path := r.stateFilePath(state.FlowName)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		r.log.Warn("failed to create run state dir", "error", err)
		return
	}
	state.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		r.log.Warn("failed to marshal run state", "error", err)
		return
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		r.log.Warn("failed to write run state", "error", err)
	}
}

func (r *RunFlow) loadRunState(flowName string) (*RunState, error) {
	if r.dataDir == "" {
		return nil, fmt.Errorf("no data directory configured")
	}
	data, err := os.ReadFile(r.stateFilePath(flowName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no previous run found for %q", flowName)
		}
		return nil, fmt.Errorf("failed to read run state: %w", err)
	}
	var state RunState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run state: %w", err)
	}
	return &state, nil
}
