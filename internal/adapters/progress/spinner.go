package progress

import (
	"context"
	"fmt"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"

	"github.com/p2e-inferno/chainstep/internal/domain"
	"github.com/p2e-inferno/chainstep/internal/usecase"
)

// SpinnerSink renders flow progress as a live step list behind a
// spinner
type SpinnerSink struct {
	spinner   *spinner.Spinner
	steps     []stepInfo
	startTime time.Time
}

type stepInfo struct {
	Name      string
	Status    domain.StepStatus
	StartTime time.Time
	EndTime   time.Time
}

// NewSpinnerSink creates a spinner-based progress sink
func NewSpinnerSink() *SpinnerSink {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.HideCursor = false

	return &SpinnerSink{
		spinner: s,
	}
}

// OnProgress handles progress events
func (r *SpinnerSink) OnProgress(ctx context.Context, event usecase.ProgressEvent) {
	switch event.Stage {
	case usecase.StageStepsInstalled:
		if state, ok := event.Metadata.(*domain.FlowState); ok {
			r.steps = make([]stepInfo, len(state.Steps))
			for i, step := range state.Steps {
				r.steps[i] = stepInfo{Name: step.Name, Status: step.Status}
			}
		}
		r.startTime = time.Now()

	case usecase.StageStepStarted, usecase.StageStepRetrying:
		r.setStatus(event.Current-1, domain.StepActive)
		if !r.spinner.Active() {
			r.spinner.Start()
		}

	case usecase.StageStepSucceeded:
		r.setStatus(event.Current-1, domain.StepSuccess)

	case usecase.StageStepFailed:
		r.setStatus(event.Current-1, domain.StepFailed)
		r.spinner.Stop()

	case usecase.StageFlowCompleted, usecase.StageFlowCancelled:
		r.spinner.Stop()
	}

	r.updateSpinnerDisplay()
}

// Info prints an info message
func (r *SpinnerSink) Info(message string) {
	// Stop spinner temporarily
	wasActive := false
	if r.spinner != nil && r.spinner.Active() {
		wasActive = true
		r.spinner.Stop()
	}

	color.New(color.FgCyan).Println(message)

	// Restart spinner if it was active
	if wasActive {
		r.spinner.Start()
	}
}

// Error prints an error message
func (r *SpinnerSink) Error(message string) {
	// Stop spinner temporarily
	wasActive := false
	if r.spinner != nil && r.spinner.Active() {
		wasActive = true
		r.spinner.Stop()
	}

	color.New(color.FgRed).Println(message)

	// Restart spinner if it was active
	if wasActive {
		r.spinner.Start()
	}
}

func (r *SpinnerSink) setStatus(index int, status domain.StepStatus) {
	if index < 0 || index >= len(r.steps) {
		return
	}
	step := &r.steps[index]
	step.Status = status
	switch status {
	case domain.StepActive:
		step.StartTime = time.Now()
		step.EndTime = time.Time{}
	case domain.StepSuccess, domain.StepFailed:
		step.EndTime = time.Now()
	}
}

// updateSpinnerDisplay updates the spinner suffix with the step list
func (r *SpinnerSink) updateSpinnerDisplay() {
	var display string

	for i, step := range r.steps {
		var icon string
		var stepColor *color.Color

		switch step.Status {
		case domain.StepSuccess:
			icon = "✓"
			stepColor = color.New(color.FgGreen)
		case domain.StepActive:
			icon = "●"
			stepColor = color.New(color.FgYellow)
		case domain.StepFailed:
			icon = "✗"
			stepColor = color.New(color.FgRed)
		default:
			icon = "○"
			stepColor = color.New(color.FgWhite, color.Faint)
		}

		duration := ""
		if !step.EndTime.IsZero() {
			duration = fmt.Sprintf(" (%s)", step.EndTime.Sub(step.StartTime).Round(time.Millisecond))
		} else if step.Status == domain.StepActive && !step.StartTime.IsZero() {
			duration = fmt.Sprintf(" (%s)", time.Since(step.StartTime).Round(time.Second))
		}

		if i > 0 {
			display += " → "
		}
		display += fmt.Sprintf("%s %s%s", icon, stepColor.Sprint(step.Name), duration)
	}

	r.spinner.Suffix = " " + display
}

// Ensure SpinnerSink implements ProgressSink
var _ usecase.ProgressSink = (*SpinnerSink)(nil)
