package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/p2e-inferno/chainstep/internal/domain"
)

// ContractAddresses holds the chain-specific contract endpoints flows
// are built against.
type ContractAddresses struct {
	Router         common.Address
	EAS            common.Address
	SchemaRegistry common.Address
}

// swapDeadline is how far in the future the router deadline is set
// when the swap step executes.
const swapDeadline = 20 * time.Minute

// BuildSwapFlow assembles the canonical approve → swap → confirm step
// sequence for a swap order. The approve step waits for confirmation
// before the swap executes; the swap step only broadcasts, and the
// confirm step polls for its receipt.
type BuildSwapFlow struct {
	client    ChainClient
	codec     SwapCodec
	contracts ContractAddresses
	log       *slog.Logger
}

// NewBuildSwapFlow creates the swap flow builder.
func NewBuildSwapFlow(client ChainClient, codec SwapCodec, contracts ContractAddresses, log *slog.Logger) *BuildSwapFlow {
	return &BuildSwapFlow{
		client:    client,
		codec:     codec,
		contracts: contracts,
		log:       log.With("component", "swapflow"),
	}
}

// Build returns the step sequence for the order, submitting through
// the named sender.
func (b *BuildSwapFlow) Build(order *domain.SwapOrder, sender string) (domain.Steps, error) {
	if err := order.Validate(); err != nil {
		return nil, fmt.Errorf("invalid swap order: %w", err)
	}
	if b.contracts.Router == (common.Address{}) {
		return nil, fmt.Errorf("no router configured for chain %d", b.client.ChainID())
	}
	if order.Recipient == (common.Address{}) {
		addr, err := b.client.SenderAddress(sender)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve swap recipient: %w", err)
		}
		order.Recipient = addr
	}

	// The swap result is captured by the confirm step.
	var swapResult *domain.TxResult

	approve := domain.NewStep(
		fmt.Sprintf("Approve %s", shortAddress(order.TokenIn)),
		func(ctx context.Context) (*domain.TxResult, error) {
			calldata, err := b.codec.EncodeApprove(b.contracts.Router, order.AmountIn)
			if err != nil {
				return nil, fmt.Errorf("failed to encode approval: %w", err)
			}
			return b.client.SubmitCall(ctx, sender, order.TokenIn, calldata, nil)
		},
	)
	approve.Description = "Allow the router to spend the input token"

	swap := domain.NewStep(
		"Execute swap",
		func(ctx context.Context) (*domain.TxResult, error) {
			deadline := big.NewInt(time.Now().Add(swapDeadline).Unix())
			calldata, err := b.codec.EncodeExactInputSingle(order, deadline)
			if err != nil {
				return nil, fmt.Errorf("failed to encode swap: %w", err)
			}
			result, err := b.client.SubmitCall(ctx, sender, b.contracts.Router, calldata, nil)
			if err != nil {
				return nil, err
			}
			// Confirmation is the next step's job; keep this step done
			// once the transaction is broadcast.
			swapResult = result
			return &domain.TxResult{Hash: result.Hash, URL: result.URL}, nil
		},
	)
	swap.Description = "Broadcast the swap through the router"

	confirm := domain.NewStep(
		"Confirm swap",
		func(ctx context.Context) (*domain.TxResult, error) {
			if swapResult == nil {
				return nil, fmt.Errorf("no swap transaction to confirm")
			}
			if err := swapResult.Confirm(ctx); err != nil {
				return nil, err
			}
			b.log.Debug("swap confirmed", "tx", swapResult.Hash.Hex())
			return &domain.TxResult{Hash: swapResult.Hash, URL: swapResult.URL}, nil
		},
	)
	confirm.Description = "Wait for the swap to be mined"

	return domain.Steps{approve, swap, confirm}, nil
}

func shortAddress(addr common.Address) string {
	hex := addr.Hex()
	return hex[:6] + "…" + hex[len(hex)-4:]
}
