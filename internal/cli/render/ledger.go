package render

import (
	"errors"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/trebuchet-org/treb-sequencer/internal/domain"
	"github.com/trebuchet-org/treb-sequencer/internal/domain/models"
	"github.com/trebuchet-org/treb-sequencer/internal/usecase"
)

// RunRenderer renders the outcome of a plan run
type RunRenderer struct {
	out io.Writer
}

// NewRunRenderer creates a new run renderer
func NewRunRenderer(out io.Writer) *RunRenderer {
	return &RunRenderer{out: out}
}

// Render prints the ledger and, for a run that did not complete, what went wrong
// and whether it is safe to run the plan again
func (r *RunRenderer) Render(result *usecase.RunPlanResult) error {
	if result.Aborted {
		fmt.Fprintln(r.out, FormatWarning("Run cancelled, nothing was sent"))
		return nil
	}

	if result.Ledger != nil && result.Ledger.Len() > 0 {
		fmt.Fprintln(r.out, headerStyle.Sprint("Ledger"))
		r.renderLedger(result.Ledger)
		fmt.Fprintln(r.out)
	}

	var depErr *domain.DeploymentError
	if result.Err == nil {
		steps := 0
		if result.Ledger != nil {
			steps = result.Ledger.Len()
		}
		fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("%s completed: %d steps", planName(result), steps)))
		r.renderRunID(result)
		return nil
	}

	if !errors.As(result.Err, &depErr) {
		fmt.Fprintln(r.out, FormatError(result.Err.Error()))
		return nil
	}

	fmt.Fprintln(r.out, FormatError(fmt.Sprintf("Step %s failed (%s)", depErr.Step, depErr.Kind)))
	if depErr.Err != nil {
		fmt.Fprintf(r.out, "   %s\n", faintStyle.Sprint(depErr.Err.Error()))
	}

	switch {
	case errors.Is(depErr, domain.ErrNotRecorded):
		fmt.Fprintln(r.out, FormatWarning(
			"The contract is on chain but missing from the deployment registry. Running the plan again deploys it again."))
		if record, ok := lookup(result.Ledger, depErr.Step); ok {
			fmt.Fprintf(r.out, "   address: %s\n", record.Address)
		}
	case depErr.Retryable():
		fmt.Fprintln(r.out, infoStyle.Sprint("Deployed contracts are recorded; fix the problem and run the plan again to resume."))
	default:
		fmt.Fprintln(r.out, FormatWarning(
			"The transaction may still be mined. Check it on chain and reconcile the deployment registry before running the plan again."))
		if record, ok := lookup(result.Ledger, depErr.Step); ok && record.Receipt != nil {
			fmt.Fprintf(r.out, "   tx: %s\n", record.Receipt.TxHash)
		}
	}
	r.renderRunID(result)
	return nil
}

func (r *RunRenderer) renderLedger(ledger *models.Ledger) {
	t := newTable("STEP", "CONTRACT", "ADDRESS", "BLOCK", "GAS", "TX", "STATUS")
	for _, record := range ledger.Records() {
		address := record.Address
		if record.Kind == models.StepCall {
			address = referenceStyle.Sprint("→ ") + record.To
		}

		block, gas, tx := "", "", ""
		if record.BlockNumber > 0 {
			block = formatNumber(record.BlockNumber)
		}
		if record.Receipt != nil {
			if record.Receipt.GasUsed > 0 {
				gas = formatNumber(record.Receipt.GasUsed)
			}
			tx = faintStyle.Sprint(shortHash(record.Receipt.TxHash))
		}

		t.AppendRow(table.Row{
			record.Step,
			record.Contract,
			addressStyle.Sprint(address),
			block,
			gas,
			tx,
			statusCell(record),
		})
	}
	fmt.Fprintln(r.out, t.Render())
}

func (r *RunRenderer) renderRunID(result *usecase.RunPlanResult) {
	if result.Run != nil {
		fmt.Fprintf(r.out, "%s\n", faintStyle.Sprintf("run %s", result.Run.ID))
	}
}

func statusCell(record models.Record) string {
	label := titles.String(string(record.Status))
	switch {
	case record.Reused:
		return infoStyle.Sprint("Reused")
	case record.Status == models.StatusSuccess:
		return successStyle.Sprint(label)
	case record.Status == models.StatusUnconfirmed:
		return warningStyle.Sprint(label)
	default:
		return errorStyle.Sprint(label)
	}
}

func planName(result *usecase.RunPlanResult) string {
	if result.Plan != nil && result.Plan.Name != "" {
		return result.Plan.Name
	}
	return "Plan"
}

var _ Renderer[*usecase.RunPlanResult] = (*RunRenderer)(nil)

func lookup(ledger *models.Ledger, step string) (models.Record, bool) {
	if ledger == nil {
		return models.Record{}, false
	}
	return ledger.Get(step)
}
