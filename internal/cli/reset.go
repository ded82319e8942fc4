package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/treb-sequencer/internal/cli/render"
	"github.com/trebuchet-org/treb-sequencer/internal/usecase"
)

// NewResetCmd creates the reset command
func NewResetCmd() *cobra.Command {
	var (
		dryRun bool
		yes    bool
	)

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Forget the recorded deployments of a network",
		Long: `Forget every deployment recorded for the selected network, so the next run
deploys all contracts again.

This is useful after restarting a local node, when the recorded addresses no
longer have code. Nothing is sent to the chain.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			// First, collect what would be removed
			preview, err := app.ResetDeployments.Run(cmd.Context(), usecase.ResetDeploymentsParams{DryRun: true})
			if err != nil {
				return err
			}

			renderer := render.NewResetRenderer(cmd.OutOrStdout())
			renderer.RenderPreview(preview)
			if dryRun || len(preview.Deployments) == 0 {
				return nil
			}

			if !yes && !app.Config.NonInteractive {
				ok, err := app.Confirmer.Confirm(cmd.Context(),
					fmt.Sprintf("Forget %d deployment(s) on %s", len(preview.Deployments), preview.Network))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Reset cancelled.")
					return nil
				}
			}

			result, err := app.ResetDeployments.Run(cmd.Context(), usecase.ResetDeploymentsParams{})
			if err != nil {
				return err
			}
			return renderer.Render(result)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be removed without removing it")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")

	return cmd
}
