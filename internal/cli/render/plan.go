package render

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/trebuchet-org/treb-sequencer/internal/domain"
	"github.com/trebuchet-org/treb-sequencer/internal/domain/models"
	"github.com/trebuchet-org/treb-sequencer/internal/usecase"
)

// PlanRenderer renders a plan and its validation problems
type PlanRenderer struct {
	out io.Writer
}

// NewPlanRenderer creates a new plan renderer
func NewPlanRenderer(out io.Writer) *PlanRenderer {
	return &PlanRenderer{out: out}
}

// Render prints the steps of a plan in execution order
func (r *PlanRenderer) Render(result *usecase.ShowPlanResult) error {
	plan := result.Plan

	fmt.Fprintf(r.out, "%s %s\n", headerStyle.Sprint("Plan:"), plan.Name)
	if len(plan.Tags) > 0 {
		fmt.Fprintf(r.out, "%s %s\n", headerStyle.Sprint("Tags:"), infoStyle.Sprint(strings.Join(plan.Tags, ", ")))
	}
	if plan.Sender != "" {
		fmt.Fprintf(r.out, "%s %s\n", headerStyle.Sprint("Sender:"), plan.Sender)
	}
	fmt.Fprintln(r.out)

	t := newTable("#", "STEP", "ACTION", "ARGS", "OPTIONS")
	for i, step := range plan.Steps {
		t.AppendRow(table.Row{
			faintStyle.Sprint(i + 1),
			step.Name,
			describeAction(step),
			describeArgs(step.Args),
			describeOptions(step),
		})
	}
	fmt.Fprintln(r.out, t.Render())
	fmt.Fprintln(r.out)

	if len(result.MissingArtifacts) > 0 {
		names := make([]string, 0, len(result.MissingArtifacts))
		for name := range result.MissingArtifacts {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintln(r.out, FormatWarning(fmt.Sprintf("%s: %v", name, result.MissingArtifacts[name])))
		}
	}

	if result.ValidationErr != nil {
		var verr domain.PlanValidationErr
		if errors.As(result.ValidationErr, &verr) {
			fmt.Fprintln(r.out, FormatError(fmt.Sprintf("%d problem(s) found", len(verr.Issues))))
			for _, issue := range verr.Issues {
				fmt.Fprintf(r.out, "   - %s\n", issue.String())
			}
		} else {
			fmt.Fprintln(r.out, FormatError(result.ValidationErr.Error()))
		}
		return nil
	}

	if result.Runnable() {
		fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("%d steps, plan is valid", len(plan.Steps))))
	}
	return nil
}

func describeAction(step models.Step) string {
	switch step.Kind {
	case models.StepDeploy:
		return "deploy " + successStyle.Sprint(step.Contract)
	case models.StepCall:
		return fmt.Sprintf("call %s.%s", referenceStyle.Sprint(step.Target), step.Method)
	default:
		return errorStyle.Sprintf("%q", step.Kind)
	}
}

func describeArgs(args []models.Argument) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		switch arg.Kind {
		case models.ArgReference:
			parts[i] = referenceStyle.Sprint(arg.String())
		case models.ArgAccount:
			parts[i] = infoStyle.Sprint(arg.String())
		default:
			parts[i] = arg.String()
		}
	}
	return strings.Join(parts, ", ")
}

func describeOptions(step models.Step) string {
	var opts []string
	if step.Value != nil && step.Value.Sign() > 0 {
		opts = append(opts, fmt.Sprintf("value %s ETH", models.FormatEther(step.Value)))
	}
	if step.GasLimit > 0 {
		opts = append(opts, "gas "+formatNumber(step.GasLimit))
	}
	if c := step.Confirmations; c.Count > 0 || len(c.ByChain) > 0 {
		s := fmt.Sprintf("%d conf", c.Count)
		if len(c.ByChain) > 0 {
			ids := make([]uint64, 0, len(c.ByChain))
			for id := range c.ByChain {
				ids = append(ids, id)
			}
			sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
			overrides := make([]string, len(ids))
			for i, id := range ids {
				overrides[i] = fmt.Sprintf("%d on %d", c.ByChain[id], id)
			}
			s += " (" + strings.Join(overrides, ", ") + ")"
		}
		opts = append(opts, s)
	}
	if step.Optional {
		opts = append(opts, warningStyle.Sprint("optional"))
	}
	return faintStyle.Sprint(strings.Join(opts, ", "))
}

var _ Renderer[*usecase.ShowPlanResult] = (*PlanRenderer)(nil)
