package cli

import (
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/treb-sequencer/internal/cli/render"
	"github.com/trebuchet-org/treb-sequencer/internal/usecase"
)

// NewNetworksCmd creates the networks command
func NewNetworksCmd() *cobra.Command {
	var probe bool

	cmd := &cobra.Command{
		Use:   "networks",
		Short: "List available networks from foundry.toml",
		Long: `List all networks configured in the [rpc_endpoints] section of foundry.toml.

With --probe each endpoint is contacted to read its chain ID.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, err := app.ListNetworks.Run(cmd.Context(), usecase.ListNetworksParams{Probe: probe})
			if err != nil {
				return err
			}

			return render.NewNetworksRenderer(cmd.OutOrStdout()).Render(result)
		},
	}

	cmd.Flags().BoolVar(&probe, "probe", false, "Connect to each network to read its chain ID")

	return cmd
}
