package cli

import (
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/treb-sequencer/internal/cli/render"
	"github.com/trebuchet-org/treb-sequencer/internal/usecase"
)

// NewListCmd creates the list command
func NewListCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List recorded deployments",
		Long: `List the deployments recorded for the selected network. These are the
contracts a plan run reuses instead of deploying again.`,
		Example: `  # List deployments on the local node
  treb-seq list

  # List deployments on every network
  treb-seq list --all`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, err := app.ListDeployments.Run(cmd.Context(), usecase.ListDeploymentsParams{
				AllNetworks: all,
			})
			if err != nil {
				return err
			}

			renderer := selectRenderer(cmd, app.Config.JSON, render.NewDeploymentsRenderer(cmd.OutOrStdout()),
				func(r *usecase.DeploymentListResult) any { return r.Deployments })
			return renderer.Render(result)
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "List deployments on every network")

	return cmd
}
