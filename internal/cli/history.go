package cli

import (
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/treb-sequencer/internal/cli/render"
	"github.com/trebuchet-org/treb-sequencer/internal/usecase"
)

// NewHistoryCmd creates the history command
func NewHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past plan runs on a network",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, err := app.ListRuns.Run(cmd.Context(), usecase.ListRunsParams{Limit: limit})
			if err != nil {
				return err
			}

			renderer := selectRenderer(cmd, app.Config.JSON, render.NewRunsRenderer(cmd.OutOrStdout()),
				func(r *usecase.ListRunsResult) any { return r.Runs })
			return renderer.Render(result)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "Number of runs to show, 0 for all")

	return cmd
}
