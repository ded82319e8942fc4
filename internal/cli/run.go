package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/treb-sequencer/internal/cli/render"
	"github.com/trebuchet-org/treb-sequencer/internal/domain"
	"github.com/trebuchet-org/treb-sequencer/internal/domain/models"
	"github.com/trebuchet-org/treb-sequencer/internal/usecase"
)

// runOutput is the JSON form of a run
type runOutput struct {
	Run       *models.Run     `json:"run,omitempty"`
	Records   []models.Record `json:"records"`
	Aborted   bool            `json:"aborted,omitempty"`
	Error     string          `json:"error,omitempty"`
	ErrorKind string          `json:"errorKind,omitempty"`
	Retryable *bool           `json:"retryable,omitempty"`
}

// NewRunCmd creates the run command
func NewRunCmd() *cobra.Command {
	var (
		sender string
		yes    bool
	)

	cmd := &cobra.Command{
		Use:   "run [plan-file]",
		Short: "Deploy and bootstrap contracts from a plan",
		Long: `Run the steps of a plan file in order on the selected network.

Deploy steps whose deployment is already recorded for the network are reused,
so a plan can be run again after a failure to finish the remaining steps.
Call steps run on every invocation.

Running on a chain that is not configured as local asks for confirmation
first, unless --yes or --non-interactive is given.`,
		Example: `  # Run plan.yaml on a local anvil node
  treb-seq run

  # Run a plan on sepolia as the "ops" sender
  treb-seq run deploy/dex.yaml --network sepolia --sender ops

  # Wait at most two minutes for confirmations
  treb-seq run --network sepolia --confirmation-timeout 2m --yes`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			params := usecase.RunPlanParams{
				Sender: sender,
				Yes:    yes,
			}
			if len(args) > 0 {
				params.PlanPath = args[0]
			}

			result, err := app.RunPlan.Run(cmd.Context(), params)
			if err != nil {
				return err
			}

			renderer := selectRenderer(cmd, app.Config.JSON, render.NewRunRenderer(cmd.OutOrStdout()),
				func(r *usecase.RunPlanResult) any { return newRunOutput(r) })
			if err := renderer.Render(result); err != nil {
				return err
			}

			if result.Err != nil {
				return fmt.Errorf("plan did not complete: %w", result.Err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&sender, "sender", "", "Named account or address that sends the transactions (overrides the plan)")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation on non-local chains")
	cmd.Flags().Bool("skip-code-check", false, "Reuse recorded deployments without checking their code on chain")
	cmd.Flags().Duration("confirmation-timeout", 0, "How long to wait for confirmations before giving up (e.g. 90s, 5m)")

	return cmd
}

func newRunOutput(result *usecase.RunPlanResult) runOutput {
	out := runOutput{
		Run:     result.Run,
		Records: []models.Record{},
		Aborted: result.Aborted,
	}
	if result.Ledger != nil {
		out.Records = result.Ledger.Records()
	}
	if result.Err != nil {
		out.Error = result.Err.Error()
		retryable := true
		var depErr *domain.DeploymentError
		if errors.As(result.Err, &depErr) {
			retryable = depErr.Retryable()
			out.ErrorKind = depErr.Kind.Error()
		}
		out.Retryable = &retryable
	}
	return out
}
