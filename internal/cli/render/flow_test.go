package render_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/p2e-inferno/chainstep/internal/cli/render"
	"github.com/p2e-inferno/chainstep/internal/domain"
	"github.com/p2e-inferno/chainstep/internal/usecase"
)

func plainOutput(t *testing.T, renderFn func(out *bytes.Buffer)) string {
	t.Helper()
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })

	var out bytes.Buffer
	renderFn(&out)
	return out.String()
}

func TestFlowRendererRendersSummary(t *testing.T) {
	state := &domain.FlowState{
		Steps: domain.Steps{
			{Name: "Approve USDC", Status: domain.StepSuccess, Result: &domain.TxResult{URL: "https://basescan.org/tx/0x01"}},
			{Name: "Execute swap", Status: domain.StepFailed, Err: errors.New("underpriced")},
			{Name: "Confirm swap", Status: domain.StepPending},
		},
		Phase: domain.PhaseCancelled,
	}
	result := &usecase.RunFlowResult{
		State:      state,
		Cancelled:  true,
		FailedStep: state.Steps[1],
		Retries:    2,
		Skipped:    1,
	}

	got := plainOutput(t, func(out *bytes.Buffer) {
		require.NoError(t, render.NewFlowRenderer(out).RenderResult(result))
	})

	assert.Contains(t, got, "Flow Summary")
	assert.Contains(t, got, "Approve USDC")
	// Status labels are title-cased.
	assert.Contains(t, got, "Success")
	assert.Contains(t, got, "Failed")
	assert.Contains(t, got, "Pending")
	assert.Contains(t, got, "https://basescan.org/tx/0x01")
	assert.Contains(t, got, "Resumed past 1 completed step(s)")
	assert.Contains(t, got, "Retries: 2")
	assert.Contains(t, got, "✗ Flow cancelled")
	assert.Contains(t, got, "Last failure: Execute swap: underpriced")
}

func TestFlowRendererRendersSuccess(t *testing.T) {
	result := &usecase.RunFlowResult{
		State: &domain.FlowState{
			Steps: domain.Steps{{Name: "Attest", Status: domain.StepSuccess}},
			Phase: domain.PhaseComplete,
		},
		Success: true,
	}

	got := plainOutput(t, func(out *bytes.Buffer) {
		require.NoError(t, render.NewFlowRenderer(out).RenderResult(result))
	})

	assert.Contains(t, got, "✓ Flow completed successfully")
}

func TestFlowRendererRendersAttestation(t *testing.T) {
	outcome := &usecase.AttestOutcome{
		UID:       domain.UIDFromHash(common.HexToHash("0xbeef")),
		SchemaUID: domain.UIDFromHash(common.HexToHash("0x5f1e")),
		Attester:  common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"),
		TxHash:    common.HexToHash("0x0a"),
	}

	got := plainOutput(t, func(out *bytes.Buffer) {
		render.NewFlowRenderer(out).RenderAttestation(outcome)
	})

	assert.Contains(t, got, "✓ Attestation created")
	assert.Contains(t, got, outcome.UID.Hex())
	// Addresses are shortened for display.
	assert.Contains(t, got, "0xf39F…2266")
}

func TestNetworksRendererRendersTable(t *testing.T) {
	result := &usecase.ListNetworksResult{
		Networks: []usecase.NetworkStatus{
			{Name: "base", ChainID: 8453, HasRouter: true, HasEAS: true, IsDefault: true, ExplorerURL: "https://basescan.org"},
			{Name: "base-sepolia", ChainID: 84532},
		},
		Default: "base",
	}

	got := plainOutput(t, func(out *bytes.Buffer) {
		require.NoError(t, render.NewNetworksRenderer(out).Render(result))
	})

	assert.Contains(t, got, "base (default)")
	assert.Contains(t, got, "8453")
	assert.Contains(t, got, "base-sepolia")
}

func TestHelpers(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })

	assert.Equal(t, "Approve Token", render.TitleCase("approve token"))
	assert.Equal(t, "✓ done", render.FormatSuccess("done"))
	// FormatError keeps the tail of an error chain and capitalizes it.
	assert.Equal(t, "✗ Nonce too low", render.FormatError("failed to send: nonce too low"))
	assert.Equal(t, "0xf39F…2266", render.ShortAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"))
	assert.Equal(t, "0xabc", render.ShortAddress("0xabc"))
}
