package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/p2e-inferno/chainstep/internal/domain"
)

// AssembleFlow turns a validated flow definition into the executable
// step sequence the engine runs.
type AssembleFlow struct {
	client    ChainClient
	swapCodec SwapCodec
	swaps     *BuildSwapFlow
	attests   *DelegatedAttest
	contracts ContractAddresses
	log       *slog.Logger
}

// NewAssembleFlow creates the flow assembler.
func NewAssembleFlow(
	client ChainClient,
	swapCodec SwapCodec,
	swaps *BuildSwapFlow,
	attests *DelegatedAttest,
	contracts ContractAddresses,
	log *slog.Logger,
) *AssembleFlow {
	return &AssembleFlow{
		client:    client,
		swapCodec: swapCodec,
		swaps:     swaps,
		attests:   attests,
		contracts: contracts,
		log:       log.With("component", "assemble"),
	}
}

// Assemble expands each configured step into one or more executable
// steps. Swap and attest actions expand into their full sub-sequences.
func (a *AssembleFlow) Assemble(config *FlowConfig) (domain.Steps, error) {
	var steps domain.Steps
	for _, sc := range config.Steps {
		expanded, err := a.assembleStep(sc)
		if err != nil {
			return nil, fmt.Errorf("step %q: %w", sc.Name, err)
		}
		steps = append(steps, expanded...)
	}
	if len(steps) == 0 {
		return nil, domain.ErrNoSteps
	}
	return steps, nil
}

func (a *AssembleFlow) assembleStep(sc *FlowStepConfig) (domain.Steps, error) {
	switch sc.Action {
	case ActionApprove:
		return a.assembleApprove(sc)
	case ActionSwap:
		order, err := a.swapOrder(sc)
		if err != nil {
			return nil, err
		}
		return a.swaps.Build(order, sc.Sender)
	case ActionAttest:
		params, err := a.attestParams(sc)
		if err != nil {
			return nil, err
		}
		steps, _ := a.attests.BuildFlow(params)
		return steps, nil
	case ActionCall:
		return a.assembleCall(sc)
	default:
		return nil, fmt.Errorf("unknown action %q", sc.Action)
	}
}

func (a *AssembleFlow) assembleApprove(sc *FlowStepConfig) (domain.Steps, error) {
	token := common.HexToAddress(sc.Token)
	spender := a.contracts.Router
	if sc.Spender != "" {
		spender = common.HexToAddress(sc.Spender)
	}
	amount, err := parseAmount("amount", sc.Amount)
	if err != nil {
		return nil, err
	}

	step := domain.NewStep(sc.Name, func(ctx context.Context) (*domain.TxResult, error) {
		calldata, err := a.swapCodec.EncodeApprove(spender, amount)
		if err != nil {
			return nil, fmt.Errorf("failed to encode approval: %w", err)
		}
		return a.client.SubmitCall(ctx, sc.Sender, token, calldata, nil)
	})
	step.Description = fmt.Sprintf("Approve %s to spend %s", shortAddress(spender), amount)
	return domain.Steps{step}, nil
}

func (a *AssembleFlow) assembleCall(sc *FlowStepConfig) (domain.Steps, error) {
	to := common.HexToAddress(sc.To)

	var calldata []byte
	if sc.Calldata != "" {
		decoded, err := hexutil.Decode(sc.Calldata)
		if err != nil {
			return nil, fmt.Errorf("invalid calldata: %w", err)
		}
		calldata = decoded
	}

	value := new(big.Int)
	if sc.Value != "" {
		parsed, err := parseAmount("value", sc.Value)
		if err != nil {
			return nil, err
		}
		value = parsed
	}

	step := domain.NewStep(sc.Name, func(ctx context.Context) (*domain.TxResult, error) {
		return a.client.SubmitCall(ctx, sc.Sender, to, calldata, value)
	})
	step.Description = fmt.Sprintf("Call %s", shortAddress(to))
	return domain.Steps{step}, nil
}

func (a *AssembleFlow) swapOrder(sc *FlowStepConfig) (*domain.SwapOrder, error) {
	amountIn, err := parseAmount("amount_in", sc.AmountIn)
	if err != nil {
		return nil, err
	}
	minOut, err := parseAmount("min_amount_out", sc.MinAmountOut)
	if err != nil {
		return nil, err
	}

	order := &domain.SwapOrder{
		TokenIn:      common.HexToAddress(sc.TokenIn),
		TokenOut:     common.HexToAddress(sc.TokenOut),
		AmountIn:     amountIn,
		MinAmountOut: minOut,
		Fee:          sc.Fee,
	}
	if sc.Recipient != "" {
		order.Recipient = common.HexToAddress(sc.Recipient)
	}
	if order.Fee == 0 {
		order.Fee = 3000
	}
	return order, nil
}

func (a *AssembleFlow) attestParams(sc *FlowStepConfig) (AttestParams, error) {
	schemaHash := common.HexToHash(sc.Schema)
	params := AttestParams{
		Schema:    domain.UIDFromHash(schemaHash),
		Recipient: common.HexToAddress(sc.Recipient),
		Revocable: true,
		Sponsor:   sc.Sender,
	}
	if sc.Data != "" {
		data, err := hexutil.Decode(sc.Data)
		if err != nil {
			return AttestParams{}, fmt.Errorf("invalid attestation data: %w", err)
		}
		params.Data = data
	}
	return params, nil
}
