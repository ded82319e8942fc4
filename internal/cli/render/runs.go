package render

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/trebuchet-org/treb-sequencer/internal/domain/models"
	"github.com/trebuchet-org/treb-sequencer/internal/usecase"
)

// RunsRenderer renders run history
type RunsRenderer struct {
	out io.Writer
}

// NewRunsRenderer creates a new run history renderer
func NewRunsRenderer(out io.Writer) *RunsRenderer {
	return &RunsRenderer{out: out}
}

// Render prints stored runs, newest first
func (r *RunsRenderer) Render(result *usecase.ListRunsResult) error {
	if len(result.Runs) == 0 {
		fmt.Fprintf(r.out, "No runs recorded on %s\n", result.Network)
		return nil
	}

	t := newTable("STARTED", "PLAN", "STEPS", "STATUS", "FAILED STEP", "RUN")
	for _, run := range result.Runs {
		steps := 0
		if run.Ledger != nil {
			steps = run.Ledger.Len()
		}
		t.AppendRow(table.Row{
			faintStyle.Sprint(run.StartedAt.Local().Format("2006-01-02 15:04:05")),
			run.Plan,
			steps,
			runStatus(run),
			run.FailedStep,
			faintStyle.Sprint(run.ID),
		})
	}
	fmt.Fprintln(r.out, t.Render())
	return nil
}

func runStatus(run *models.Run) string {
	if run.Status == models.RunCompleted {
		return successStyle.Sprint(titles.String(string(run.Status)))
	}
	label := titles.String(string(run.Status))
	if run.ErrorKind != "" {
		label += " (" + run.ErrorKind + ")"
	}
	return errorStyle.Sprint(label)
}

var _ Renderer[*usecase.ListRunsResult] = (*RunsRenderer)(nil)
