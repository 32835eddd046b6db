package interactive

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/fatih/color"
	"github.com/manifoldco/promptui"

	"github.com/p2e-inferno/chainstep/internal/domain"
	"github.com/p2e-inferno/chainstep/internal/usecase"
)

// DecisionPrompter asks the user to retry or cancel a failed step and
// feeds the answer back through the decision bridge. The prompt runs
// in its own goroutine so the flow runner stays parked on the bridge;
// if the user answers after the request was abandoned (timeout), the
// resolution is a no-op.
type DecisionPrompter struct {
	bridge *usecase.DecisionBridge
	log    *slog.Logger

	// silent suppresses the prompt when another surface owns the
	// terminal and resolves decisions itself.
	silent atomic.Bool
}

// NewDecisionPrompter creates a promptui-backed decision prompter.
func NewDecisionPrompter(bridge *usecase.DecisionBridge, log *slog.Logger) *DecisionPrompter {
	return &DecisionPrompter{
		bridge: bridge,
		log:    log.With("component", "prompt"),
	}
}

// SetSilent disables or re-enables the terminal prompt.
func (p *DecisionPrompter) SetSilent(silent bool) {
	p.silent.Store(silent)
}

// DecisionRequested presents the retry/cancel choice for a failed step.
func (p *DecisionPrompter) DecisionRequested(step *domain.Step, state *domain.FlowState) {
	if p.silent.Load() {
		return
	}
	go func() {
		if step != nil && step.Err != nil {
			color.New(color.FgRed).Printf("\n✗ %s failed: %v\n", step.Name, step.Err)
		}

		templates := &promptui.SelectTemplates{
			Label:    "{{ . }}",
			Active:   "▸ {{ . | cyan }}",
			Inactive: "  {{ . | faint }}",
			Selected: "✓ {{ . | green }}",
			Help:     color.New(color.FgYellow).Sprint("Use arrow keys to navigate, Enter to select"),
		}

		prompt := promptui.Select{
			Label:     "The step failed. What do you want to do?",
			Items:     []string{"Retry this step", "Cancel the flow"},
			Templates: templates,
		}

		index, _, err := prompt.Run()
		if err != nil {
			// Ctrl-C on the prompt means cancel.
			p.log.Debug("decision prompt aborted", "error", err)
			p.resolve(domain.DecisionCancel)
			return
		}

		if index == 0 {
			p.resolve(domain.DecisionRetry)
		} else {
			p.resolve(domain.DecisionCancel)
		}
	}()
}

func (p *DecisionPrompter) resolve(d domain.Decision) {
	if !p.bridge.Resolve(d) {
		fmt.Println(color.New(color.FgHiBlack).Sprint("(decision no longer pending)"))
	}
}

// Ensure the adapter implements the interface
var _ usecase.DecisionPrompt = (*DecisionPrompter)(nil)
