package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/p2e-inferno/chainstep/internal/adapters/progress"
	"github.com/p2e-inferno/chainstep/internal/cli/render"
	"github.com/p2e-inferno/chainstep/internal/usecase"
)

// NewRunCmd creates the run command
func NewRunCmd() *cobra.Command {
	var (
		resume bool
		tui    bool
	)

	cmd := &cobra.Command{
		Use:   "run <flow-file>",
		Short: "Run a transaction flow from a YAML file",
		Long: `Run a multi-step transaction flow defined in a YAML file.

Steps execute strictly in order. When a step fails the flow suspends
and waits for a decision: retry re-runs the failed step, cancel aborts
the flow. Steps before the failure are never re-executed. Run state is
persisted after every transition, so an interrupted flow can continue
with --resume.

Examples:
  # Run a flow
  chainstep run flows/buy-pass.yaml

  # Continue a previously interrupted run
  chainstep run flows/buy-pass.yaml --resume

  # Run with the full-screen step view
  chainstep run flows/buy-pass.yaml --tui

  # Run on a specific network
  chainstep run flows/buy-pass.yaml --network base-sepolia`,
		Args:         cobra.ExactArgs(1),
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

			flowCfg, err := usecase.ParseFlowFile(args[0])
			if err != nil {
				return err
			}

			if app.Config.Network == nil {
				return fmt.Errorf("no active network set in config, --network flag is required")
			}
			if flowCfg.Network != "" && flowCfg.Network != app.Config.NetworkName {
				return fmt.Errorf("flow %q targets network %q but %q is active, pass --network %s",
					flowCfg.Name, flowCfg.Network, app.Config.NetworkName, flowCfg.Network)
			}

			ctx := cmd.Context()
			if err := app.Chain.Connect(ctx, app.Config.Network.RPCURL, app.Config.Network.ChainID); err != nil {
				return err
			}

			steps, err := app.AssembleFlow.Assemble(flowCfg)
			if err != nil {
				return err
			}

			params := usecase.RunFlowParams{
				FlowName:        flowCfg.Name,
				Steps:           steps,
				Network:         app.Config.NetworkName,
				NonInteractive:  app.Config.NonInteractive,
				DecisionTimeout: app.Config.DecisionTimeout,
				Resume:          resume,
			}

			if tui && !app.Config.NonInteractive {
				return runFlowTUI(cmd, app, router, params)
			}

			router.SetTarget(progress.NewSpinnerSink())
			result, err := app.RunFlow.Execute(ctx, params)
			if err != nil {
				return err
			}

			renderer := render.NewFlowRenderer(cmd.OutOrStdout())
			return renderer.RenderResult(result)
		},
	}

	cmd.Flags().BoolVar(&resume, "resume", false, "Skip steps already completed by a previous run of this flow")
	cmd.Flags().BoolVar(&tui, "tui", false, "Show the flow in a full-screen step view")

	return cmd
}
