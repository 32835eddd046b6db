package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/p2e-inferno/chainstep/internal/adapters/interactive"
	"github.com/p2e-inferno/chainstep/internal/adapters/progress"
	"github.com/p2e-inferno/chainstep/internal/app"
	"github.com/p2e-inferno/chainstep/internal/config"
)

// contextKey is the type for context keys
type contextKey string

const (
	// appKey is the context key for the app instance
	appKey contextKey = "app"
	// progressKey is the context key for the progress router
	progressKey contextKey = "progress"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "chainstep",
		Short: "Resumable multi-step transaction flows for EVM chains",
		Long: `Chainstep runs sequences of on-chain transactions as resumable flows.
A failed step suspends the flow and waits for a retry or cancel decision
instead of aborting, so a flaky RPC or an underpriced transaction never
forces you to restart from the first step.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Skip for help/version commands
			if cmd.Name() == "version" || cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}

			projectRoot, err := config.FindProjectRoot()
			if err != nil {
				return err
			}

			v := config.SetupViper(projectRoot, cmd)
			bindGlobalFlags(v, cmd)

			// Management commands are read-only; they must not require
			// sender keys in the environment.
			if !needsNetwork(cmd) {
				v.Set("skip_senders", true)
			}

			// Flow commands install their own sink before running.
			router := progress.NewRouter()

			appInstance, err := app.InitApp(v, router)
			if err != nil {
				return fmt.Errorf("failed to initialize app: %w", err)
			}

			// Flow commands need a network. When none is set and we can
			// still ask, offer the configured ones.
			if appInstance.Config.Network == nil && !appInstance.Config.NonInteractive && needsNetwork(cmd) {
				picked, err := interactive.SelectNetwork(appInstance.Config.File.NetworkNames(), "Select a network")
				if err != nil {
					return err
				}
				v.Set("network", picked)
				appInstance, err = app.InitApp(v, router)
				if err != nil {
					return fmt.Errorf("failed to initialize app: %w", err)
				}
			}

			ctx := context.WithValue(cmd.Context(), appKey, appInstance)
			ctx = context.WithValue(ctx, progressKey, router)

			if appInstance.Config.Timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, appInstance.Config.Timeout)
				cmd.PostRun = func(cmd *cobra.Command, args []string) {
					cancel()
				}
			}

			cmd.SetContext(ctx)

			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug output")
	rootCmd.PersistentFlags().Bool("non-interactive", false, "Disable interactive prompts")
	rootCmd.PersistentFlags().Bool("json", false, "Output in JSON format where supported")
	rootCmd.PersistentFlags().StringP("network", "n", "", "Network to use (e.g., base, base-sepolia)")

	rootCmd.AddGroup(&cobra.Group{
		ID:    "main",
		Title: "Main Commands",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "management",
		Title: "Management Commands",
	})

	runCmd := NewRunCmd()
	runCmd.GroupID = "main"
	rootCmd.AddCommand(runCmd)

	swapCmd := NewSwapCmd()
	swapCmd.GroupID = "main"
	rootCmd.AddCommand(swapCmd)

	attestCmd := NewAttestCmd()
	attestCmd.GroupID = "main"
	rootCmd.AddCommand(attestCmd)

	networksCmd := NewNetworksCmd()
	networksCmd.GroupID = "management"
	rootCmd.AddCommand(networksCmd)

	versionCmd := NewVersionCmd()
	rootCmd.AddCommand(versionCmd)

	return rootCmd
}

// needsNetwork reports whether the command submits transactions
func needsNetwork(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "run", "swap", "attest":
		return true
	}
	return false
}

// bindGlobalFlags binds command flags to viper
func bindGlobalFlags(v *viper.Viper, cmd *cobra.Command) {
	// Only bind flags that exist and have been changed
	if f := cmd.Flag("debug"); f != nil && f.Changed {
		v.Set("debug", f.Value.String())
	}
	if f := cmd.Flag("non-interactive"); f != nil && f.Changed {
		v.Set("non_interactive", f.Value.String())
	}
	if f := cmd.Flag("json"); f != nil && f.Changed {
		v.Set("json", f.Value.String())
	}
	if f := cmd.Flag("network"); f != nil && f.Changed {
		v.Set("network", f.Value.String())
	}
}

// getApp retrieves the app instance from the command context
func getApp(cmd *cobra.Command) (*app.App, error) {
	appInstance := cmd.Context().Value(appKey)
	if appInstance == nil {
		return nil, fmt.Errorf("app not initialized")
	}

	app, ok := appInstance.(*app.App)
	if !ok {
		return nil, fmt.Errorf("invalid app instance")
	}

	return app, nil
}

// getProgress retrieves the progress router from the command context
func getProgress(cmd *cobra.Command) (*progress.Router, error) {
	router, ok := cmd.Context().Value(progressKey).(*progress.Router)
	if !ok {
		return nil, fmt.Errorf("progress router not initialized")
	}
	return router, nil
}
