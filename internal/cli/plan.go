package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/treb-sequencer/internal/cli/render"
	"github.com/trebuchet-org/treb-sequencer/internal/usecase"
)

// NewPlanCmd creates the plan command
func NewPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan [plan-file]",
		Short: "Validate a plan and show its steps",
		Long: `Load a plan file, check it for problems and print its steps in execution
order. Unknown or forward references, duplicate step names and missing contract
artifacts are reported. Nothing is sent to the chain.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			params := usecase.ShowPlanParams{}
			if len(args) > 0 {
				params.PlanPath = args[0]
			}

			result, err := app.ShowPlan.Run(cmd.Context(), params)
			if err != nil {
				return err
			}

			if err := render.NewPlanRenderer(cmd.OutOrStdout()).Render(result); err != nil {
				return err
			}
			if !result.Runnable() {
				return fmt.Errorf("plan %s cannot be run", result.Plan.Name)
			}
			return nil
		},
	}

	return cmd
}
