package cli

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/p2e-inferno/chainstep/internal/adapters/progress"
	"github.com/p2e-inferno/chainstep/internal/cli/render"
	"github.com/p2e-inferno/chainstep/internal/domain"
	"github.com/p2e-inferno/chainstep/internal/usecase"
)

// NewSwapCmd creates the swap command
func NewSwapCmd() *cobra.Command {
	var (
		tokenIn   string
		tokenOut  string
		amountIn  string
		minOut    string
		recipient string
		fee       uint32
		sender    string
	)

	cmd := &cobra.Command{
		Use:   "swap",
		Short: "Swap tokens through the configured router",
		Long: `Swap an exact input amount of one token for another through the
configured router.

The swap runs as a three step flow: approve the router to spend the
input token, broadcast the swap, then wait for confirmation. A failed
step suspends the flow for a retry or cancel decision.

Examples:
  # Swap 1000 units of DAI for USDC
  chainstep swap --token-in 0xDai... --token-out 0xUsdc... --amount-in 1000000000000000000000 --min-out 990000000

  # Use the 0.05% fee tier and a custom recipient
  chainstep swap --token-in 0xDai... --token-out 0xUsdc... --amount-in 1000 --min-out 990 --fee 500 --recipient 0xabc...`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			router, err := getProgress(cmd)
			if err != nil {
				return err
			}

			if app.Config.Network == nil {
				return fmt.Errorf("no active network set in config, --network flag is required")
			}

			order, err := buildSwapOrder(tokenIn, tokenOut, amountIn, minOut, recipient, fee)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if err := app.Chain.Connect(ctx, app.Config.Network.RPCURL, app.Config.Network.ChainID); err != nil {
				return err
			}

			steps, err := app.BuildSwapFlow.Build(order, sender)
			if err != nil {
				return err
			}

			router.SetTarget(progress.NewSpinnerSink())
			result, err := app.RunFlow.Execute(ctx, usecase.RunFlowParams{
				FlowName:        "swap",
				Steps:           steps,
				Network:         app.Config.NetworkName,
				NonInteractive:  app.Config.NonInteractive,
				DecisionTimeout: app.Config.DecisionTimeout,
			})
			if err != nil {
				return err
			}

			renderer := render.NewFlowRenderer(cmd.OutOrStdout())
			return renderer.RenderResult(result)
		},
	}

	cmd.Flags().StringVar(&tokenIn, "token-in", "", "Address of the token to sell (required)")
	cmd.Flags().StringVar(&tokenOut, "token-out", "", "Address of the token to buy (required)")
	cmd.Flags().StringVar(&amountIn, "amount-in", "", "Exact input amount in base units (required)")
	cmd.Flags().StringVar(&minOut, "min-out", "", "Minimum acceptable output amount in base units (required)")
	cmd.Flags().StringVar(&recipient, "recipient", "", "Recipient of the output tokens (defaults to the sender)")
	cmd.Flags().Uint32Var(&fee, "fee", 3000, "Pool fee tier in hundredths of a bip")
	cmd.Flags().StringVar(&sender, "sender", "", "Configured sender to sign with (defaults to 'user')")

	_ = cmd.MarkFlagRequired("token-in")
	_ = cmd.MarkFlagRequired("token-out")
	_ = cmd.MarkFlagRequired("amount-in")
	_ = cmd.MarkFlagRequired("min-out")

	return cmd
}

// buildSwapOrder validates the flag values and assembles the order
func buildSwapOrder(tokenIn, tokenOut, amountIn, minOut, recipient string, fee uint32) (*domain.SwapOrder, error) {
	if !common.IsHexAddress(tokenIn) {
		return nil, fmt.Errorf("invalid --token-in address: %s", tokenIn)
	}
	if !common.IsHexAddress(tokenOut) {
		return nil, fmt.Errorf("invalid --token-out address: %s", tokenOut)
	}

	in, ok := new(big.Int).SetString(amountIn, 10)
	if !ok || in.Sign() <= 0 {
		return nil, fmt.Errorf("invalid --amount-in: %s", amountIn)
	}
	out, ok := new(big.Int).SetString(minOut, 10)
	if !ok || out.Sign() < 0 {
		return nil, fmt.Errorf("invalid --min-out: %s", minOut)
	}

	order := &domain.SwapOrder{
		TokenIn:      common.HexToAddress(tokenIn),
		TokenOut:     common.HexToAddress(tokenOut),
		AmountIn:     in,
		MinAmountOut: out,
		Fee:          fee,
	}
	if recipient != "" {
		if !common.IsHexAddress(recipient) {
			return nil, fmt.Errorf("invalid --recipient address: %s", recipient)
		}
		order.Recipient = common.HexToAddress(recipient)
	}
	return order, nil
}
