package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/p2e-inferno/chainstep/internal/adapters/progress"
	"github.com/p2e-inferno/chainstep/internal/app"
	"github.com/p2e-inferno/chainstep/internal/cli/render"
	"github.com/p2e-inferno/chainstep/internal/domain"
	"github.com/p2e-inferno/chainstep/internal/usecase"
)

// progressMsg carries a flow progress event into the bubbletea loop
type progressMsg struct {
	event usecase.ProgressEvent
}

// flowFinishedMsg signals that the flow runner returned
type flowFinishedMsg struct{}

// noteMsg carries an out-of-band info or error line into the view
type noteMsg struct {
	text  string
	isErr bool
}

// tuiSink forwards progress events to the bubbletea program
type tuiSink struct {
	program *tea.Program
}

func (s *tuiSink) OnProgress(ctx context.Context, event usecase.ProgressEvent) {
	s.program.Send(progressMsg{event: event})
}

func (s *tuiSink) Info(message string) {
	s.program.Send(noteMsg{text: message})
}

func (s *tuiSink) Error(message string) {
	s.program.Send(noteMsg{text: message, isErr: true})
}

var _ usecase.ProgressSink = (*tuiSink)(nil)

// stepItem represents one step row in the step view
type stepItem struct {
	name   string
	status domain.StepStatus
}

// stepperModel is the bubbletea model for the full-screen step view
type stepperModel struct {
	title     string
	items     []stepItem
	suspended bool
	failure   string
	notes     []string
	phase     domain.FlowPhase
	done      bool

	bridge *usecase.DecisionBridge
	cancel func()
}

// newStepperModel creates the initial model for the step view
func newStepperModel(title string, bridge *usecase.DecisionBridge, cancel func()) stepperModel {
	return stepperModel{
		title:  title,
		bridge: bridge,
		cancel: cancel,
	}
}

// Init is the initial command for bubbletea
func (m stepperModel) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model
func (m stepperModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if !m.bridge.Resolve(domain.DecisionCancel) {
				m.cancel()
			}
			m.suspended = false
		case "r":
			if m.suspended && m.bridge.Resolve(domain.DecisionRetry) {
				m.suspended = false
				m.failure = ""
			}
		case "c":
			if m.suspended && m.bridge.Resolve(domain.DecisionCancel) {
				m.suspended = false
			}
		}

	case progressMsg:
		m.apply(msg.event)

	case noteMsg:
		text := msg.text
		if msg.isErr {
			text = color.New(color.FgRed).Sprint(text)
		}
		m.notes = append(m.notes, text)

	case flowFinishedMsg:
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

// apply folds a progress event into the model state
func (m *stepperModel) apply(event usecase.ProgressEvent) {
	switch event.Stage {
	case usecase.StageStepsInstalled:
		if state, ok := event.Metadata.(*domain.FlowState); ok {
			m.items = make([]stepItem, len(state.Steps))
			for i, step := range state.Steps {
				m.items[i] = stepItem{name: step.Name, status: step.Status}
			}
			m.phase = state.Phase
		}

	case usecase.StageStepStarted, usecase.StageStepRetrying:
		m.setStatus(event.Current-1, domain.StepActive)
		m.suspended = false
		m.failure = ""

	case usecase.StageStepSucceeded:
		m.setStatus(event.Current-1, domain.StepSuccess)

	case usecase.StageStepFailed:
		m.setStatus(event.Current-1, domain.StepFailed)
		m.failure = event.Message

	case usecase.StageDecisionRequested:
		m.suspended = true

	case usecase.StageFlowCompleted:
		m.phase = domain.PhaseComplete

	case usecase.StageFlowCancelled:
		m.phase = domain.PhaseCancelled
		m.suspended = false
	}
}

func (m *stepperModel) setStatus(index int, status domain.StepStatus) {
	if index < 0 || index >= len(m.items) {
		return
	}
	m.items[index].status = status
}

// View renders the UI
func (m stepperModel) View() string {
	if m.done {
		return ""
	}

	var b strings.Builder
	b.WriteString(color.New(color.FgCyan, color.Bold).Sprintf("%s\n\n", m.title))

	for _, item := range m.items {
		var icon string
		switch item.status {
		case domain.StepSuccess:
			icon = color.New(color.FgGreen).Sprint("✓")
		case domain.StepActive:
			icon = color.New(color.FgYellow).Sprint("●")
		case domain.StepFailed:
			icon = color.New(color.FgRed).Sprint("✗")
		default:
			icon = color.New(color.FgWhite, color.Faint).Sprint("○")
		}
		b.WriteString(fmt.Sprintf(" %s %s\n", icon, item.name))
	}

	for _, note := range m.notes {
		b.WriteString(fmt.Sprintf("   %s\n", note))
	}

	b.WriteString("\n")
	switch {
	case m.suspended:
		if m.failure != "" {
			b.WriteString(color.New(color.FgRed).Sprintf("✗ %s\n", m.failure))
		}
		b.WriteString(color.New(color.FgYellow).Sprint("r: retry step  c: cancel flow\n"))
	case m.phase == domain.PhaseComplete:
		b.WriteString(color.New(color.FgGreen).Sprint("Flow complete\n"))
	case m.phase == domain.PhaseCancelled:
		b.WriteString(color.New(color.FgRed).Sprint("Flow cancelled\n"))
	default:
		b.WriteString(color.New(color.Faint).Sprint("q: cancel and quit\n"))
	}

	return b.String()
}

// runFlowTUI executes the flow behind a full-screen step view. The
// terminal prompt is silenced because the view resolves retry/cancel
// decisions itself.
func runFlowTUI(cmd *cobra.Command, app *app.App, router *progress.Router, params usecase.RunFlowParams) error {
	app.Prompter.SetSilent(true)
	defer app.Prompter.SetSilent(false)

	ctx := cmd.Context()
	model := newStepperModel(params.FlowName, app.Bridge, func() {
		app.Engine.Cancel(ctx)
	})
	p := tea.NewProgram(model)
	router.SetTarget(&tuiSink{program: p})
	defer router.SetTarget(nil)

	type flowOutcome struct {
		result *usecase.RunFlowResult
		err    error
	}
	done := make(chan flowOutcome, 1)
	go func() {
		result, err := app.RunFlow.Execute(ctx, params)
		done <- flowOutcome{result: result, err: err}
		p.Send(flowFinishedMsg{})
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("step view failed: %w", err)
	}

	outcome := <-done
	if outcome.err != nil {
		return outcome.err
	}

	renderer := render.NewFlowRenderer(cmd.OutOrStdout())
	return renderer.RenderResult(outcome.result)
}
