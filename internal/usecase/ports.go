package usecase

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"

	"github.com/p2e-inferno/chainstep/internal/domain"
)

// Progress tracking interfaces

// Stage names emitted by the engine and flow runner.
const (
	StageStepsInstalled    = "steps_installed"
	StageStepStarted       = "step_started"
	StageStepSucceeded     = "step_succeeded"
	StageStepFailed        = "step_failed"
	StageStepRetrying      = "step_retrying"
	StageDecisionRequested = "decision_requested"
	StageFlowCompleted     = "flow_completed"
	StageFlowCancelled     = "flow_cancelled"
)

// ProgressEvent represents a progress update
type ProgressEvent struct {
	Stage    string
	Current  int
	Total    int
	Message  string
	Spinner  bool
	Metadata interface{}
}

// ProgressSink receives progress events
type ProgressSink interface {
	OnProgress(ctx context.Context, event ProgressEvent)
	Info(message string)
	Error(message string)
}

// NopProgress is a no-op implementation of ProgressSink
type NopProgress struct{}

func (NopProgress) OnProgress(context.Context, ProgressEvent) {}
func (NopProgress) Info(string)                               {}
func (NopProgress) Error(string)                              {}

// ChainClient submits calls to the chain through a named sender and
// exposes receipt access for event decoding.
type ChainClient interface {
	// SubmitCall signs and broadcasts a call from the named sender. The
	// returned TxResult carries a Wait function for confirmation.
	SubmitCall(ctx context.Context, sender string, to common.Address, calldata []byte, value *big.Int) (*domain.TxResult, error)
	// ReceiptLogs returns the event logs of a mined transaction.
	ReceiptLogs(ctx context.Context, txHash common.Hash) ([]*types.Log, error)
	// ChainID returns the connected chain's ID.
	ChainID() uint64
	// SenderAddress resolves a configured sender name to its address.
	SenderAddress(name string) (common.Address, error)
	// TxURL returns the explorer link for a transaction hash.
	TxURL(txHash common.Hash) string
}

// TypedDataSigner signs EIP-712 typed data with a user-held key.
type TypedDataSigner interface {
	SignTypedData(data apitypes.TypedData) ([]byte, error)
	Address() common.Address
}

// AttestationCodec encodes delegated attestation submissions and
// decodes the resulting on-chain events.
type AttestationCodec interface {
	EncodeAttestByDelegation(att *domain.DelegatedAttestation) ([]byte, error)
	DecodeAttested(logs []*types.Log) (*domain.Attested, error)
	DecodeSchemaRegistered(logs []*types.Log) (*domain.SchemaRegistered, error)
}

// SwapCodec encodes ERC-20 approval and router swap calldata.
type SwapCodec interface {
	EncodeApprove(spender common.Address, amount *big.Int) ([]byte, error)
	EncodeExactInputSingle(order *domain.SwapOrder, deadline *big.Int) ([]byte, error)
}

// DecisionPrompt is notified when the flow runner needs a retry/cancel
// decision for a failed step. Implementations must not block: they
// collect the user's choice asynchronously and deliver it through the
// decision bridge.
type DecisionPrompt interface {
	DecisionRequested(step *domain.Step, state *domain.FlowState)
}

// NopDecisionPrompt ignores decision requests; used when the caller
// resolves decisions through other means (e.g. tests, TUI key handlers).
type NopDecisionPrompt struct{}

func (NopDecisionPrompt) DecisionRequested(*domain.Step, *domain.FlowState) {}
