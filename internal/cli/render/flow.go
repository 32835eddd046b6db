package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/p2e-inferno/chainstep/internal/domain"
	"github.com/p2e-inferno/chainstep/internal/usecase"
)

// FlowRenderer handles rendering of flow execution results
type FlowRenderer struct {
	out io.Writer
}

// NewFlowRenderer creates a new flow renderer
func NewFlowRenderer(out io.Writer) *FlowRenderer {
	return &FlowRenderer{
		out: out,
	}
}

// GetWriter returns the io.Writer used by this renderer
func (r *FlowRenderer) GetWriter() io.Writer {
	return r.out
}

// RenderResult renders the outcome of a flow execution
func (r *FlowRenderer) RenderResult(result *usecase.RunFlowResult) error {
	fmt.Fprintln(r.out)
	color.New(color.Bold).Fprintln(r.out, "Flow Summary")
	fmt.Fprintf(r.out, "%s\n", strings.Repeat("─", 50))

	if result.State != nil {
		for i, step := range result.State.Steps {
			r.renderStep(i+1, len(result.State.Steps), step)
		}
		fmt.Fprintln(r.out)
	}

	if result.Skipped > 0 {
		fmt.Fprintf(r.out, "Resumed past %d completed step(s)\n", result.Skipped)
	}
	if result.Retries > 0 {
		fmt.Fprintf(r.out, "Retries: %d\n", result.Retries)
	}

	switch {
	case result.Success:
		fmt.Fprintln(r.out, FormatSuccess("Flow completed successfully"))
	case result.Cancelled:
		fmt.Fprintln(r.out, FormatError("flow cancelled"))
		if result.FailedStep != nil {
			fmt.Fprintf(r.out, "  Last failure: %s: %v\n", result.FailedStep.Name, result.FailedStep.Err)
		}
	default:
		color.New(color.FgYellow).Fprintln(r.out, "⏸ Flow suspended")
		if result.FailedStep != nil {
			fmt.Fprintf(r.out, "  Failed step: %s: %v\n", result.FailedStep.Name, result.FailedStep.Err)
		}
	}

	return nil
}

// renderStep renders one step row of the summary
func (r *FlowRenderer) renderStep(num, total int, step *domain.Step) {
	var icon string
	switch step.Status {
	case domain.StepSuccess:
		icon = color.New(color.FgGreen).Sprint("✓")
	case domain.StepFailed:
		icon = color.New(color.FgRed).Sprint("✗")
	case domain.StepActive:
		icon = color.New(color.FgYellow).Sprint("●")
	default:
		icon = color.New(color.Faint).Sprint("○")
	}

	fmt.Fprintf(r.out, "%s [%d/%d] %-30s %s", icon, num, total, step.Name, TitleCase(step.Status.String()))
	if step.Result != nil && step.Result.URL != "" {
		fmt.Fprintf(r.out, " %s", color.New(color.Faint).Sprint(step.Result.URL))
	}
	fmt.Fprintln(r.out)
}

// RenderAttestation renders the on-chain outcome of an attestation flow
func (r *FlowRenderer) RenderAttestation(outcome *usecase.AttestOutcome) {
	if outcome == nil {
		return
	}

	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, FormatSuccess("Attestation created"))
	fmt.Fprintf(r.out, "  UID:      %s\n", outcome.UID.Hex())
	fmt.Fprintf(r.out, "  Schema:   %s\n", outcome.SchemaUID.Hex())
	fmt.Fprintf(r.out, "  Attester: %s\n", ShortAddress(outcome.Attester.Hex()))
	if outcome.TxURL != "" {
		fmt.Fprintf(r.out, "  Tx:       %s\n", outcome.TxURL)
	} else {
		fmt.Fprintf(r.out, "  Tx:       %s\n", outcome.TxHash.Hex())
	}
}
