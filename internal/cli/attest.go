package cli

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"

	"github.com/p2e-inferno/chainstep/internal/adapters/progress"
	"github.com/p2e-inferno/chainstep/internal/cli/render"
	"github.com/p2e-inferno/chainstep/internal/config"
	"github.com/p2e-inferno/chainstep/internal/domain"
	"github.com/p2e-inferno/chainstep/internal/usecase"
)

// NewAttestCmd creates the attest command
func NewAttestCmd() *cobra.Command {
	var (
		schema     string
		recipient  string
		data       string
		revocable  bool
		expiration uint64
		deadline   uint64
		sponsor    string
	)

	cmd := &cobra.Command{
		Use:   "attest",
		Short: "Create a delegated EAS attestation",
		Long: `Create an EAS attestation signed by the user wallet but submitted and
paid for by the sponsor wallet.

The attestation runs as a three step flow: sign the typed data, submit
attestByDelegation through the sponsor, then confirm and recover the
attestation UID from the transaction logs.

Examples:
  # Attest with raw hex data
  chainstep attest --schema 0x5f1e... --recipient 0xabc... --data 0x0001

  # Attest with a revocable attestation and explicit signature deadline
  chainstep attest --schema 0x5f1e... --recipient 0xabc... --data 0x01 --revocable --deadline 1760000000`,
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

			params, err := buildAttestParams(schema, recipient, data, revocable, expiration, deadline, sponsor)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if err := app.Chain.Connect(ctx, app.Config.Network.RPCURL, app.Config.Network.ChainID); err != nil {
				return err
			}

			steps, outcome := app.Attest.BuildFlow(params)

			router.SetTarget(progress.NewSpinnerSink())
			result, err := app.RunFlow.Execute(ctx, usecase.RunFlowParams{
				FlowName:        "attest",
				Steps:           steps,
				Network:         app.Config.NetworkName,
				NonInteractive:  app.Config.NonInteractive,
				DecisionTimeout: app.Config.DecisionTimeout,
			})
			if err != nil {
				return err
			}

			renderer := render.NewFlowRenderer(cmd.OutOrStdout())
			if err := renderer.RenderResult(result); err != nil {
				return err
			}
			if result.Success {
				renderer.RenderAttestation(outcome)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&schema, "schema", "", "Schema UID to attest against (required)")
	cmd.Flags().StringVar(&recipient, "recipient", "", "Recipient of the attestation (required)")
	cmd.Flags().StringVar(&data, "data", "", "Attestation data as 0x-prefixed hex (required)")
	cmd.Flags().BoolVar(&revocable, "revocable", false, "Make the attestation revocable")
	cmd.Flags().Uint64Var(&expiration, "expiration", 0, "Attestation expiration as a unix timestamp (0 = never)")
	cmd.Flags().Uint64Var(&deadline, "deadline", 0, "Signature deadline as a unix timestamp (0 = one hour from now)")
	cmd.Flags().StringVar(&sponsor, "sponsor", config.SponsorSenderName, "Configured wallet that pays for submission")

	_ = cmd.MarkFlagRequired("schema")
	_ = cmd.MarkFlagRequired("recipient")
	_ = cmd.MarkFlagRequired("data")

	return cmd
}

// buildAttestParams validates the flag values and assembles the params
func buildAttestParams(schema, recipient, data string, revocable bool, expiration, deadline uint64, sponsor string) (usecase.AttestParams, error) {
	var params usecase.AttestParams

	if !strings.HasPrefix(schema, "0x") || len(schema) != 66 {
		return params, fmt.Errorf("invalid --schema UID: %s", schema)
	}
	if !common.IsHexAddress(recipient) {
		return params, fmt.Errorf("invalid --recipient address: %s", recipient)
	}
	payload, err := hexutil.Decode(data)
	if err != nil {
		return params, fmt.Errorf("invalid --data: %w", err)
	}

	params = usecase.AttestParams{
		Schema:         domain.UIDFromHash(common.HexToHash(schema)),
		Recipient:      common.HexToAddress(recipient),
		Data:           payload,
		Revocable:      revocable,
		ExpirationTime: expiration,
		Deadline:       deadline,
		Sponsor:        sponsor,
	}
	return params, nil
}
