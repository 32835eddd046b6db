package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/p2e-inferno/chainstep/internal/cli/render"
	"github.com/p2e-inferno/chainstep/internal/usecase"
)

// NewNetworksCmd creates the networks command
func NewNetworksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "networks",
		Short: "List networks configured in chainstep.toml",
		Long: `List all networks from the [networks] section of chainstep.toml along
with their chain IDs and which contracts are configured for each.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, err := app.ListNetworks.Run(cmd.Context(), usecase.ListNetworksParams{})
			if err != nil {
				return err
			}

			if app.Config.JSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}

			renderer := render.NewNetworksRenderer(cmd.OutOrStdout())
			return renderer.Render(result)
		},
	}

	return cmd
}
