package progress

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/trebuchet-org/treb-sequencer/internal/domain/models"
	"github.com/trebuchet-org/treb-sequencer/internal/usecase"
)

var (
	stepColor    = color.New(color.FgWhite, color.Bold)
	detailColor  = color.New(color.FgCyan)
	successColor = color.New(color.FgGreen)
	reusedColor  = color.New(color.FgBlue)
	warnColor    = color.New(color.FgYellow)
	failColor    = color.New(color.FgRed)
	faintColor   = color.New(color.Faint)
)

// SequenceProgress prints one line per step and a spinner while transactions are
// in flight
type SequenceProgress struct {
	out     io.Writer
	spinner *stepSpinner
}

// NewSequenceProgress creates a progress sink writing to stdout
func NewSequenceProgress() *SequenceProgress {
	return NewSequenceProgressTo(os.Stdout)
}

// NewSequenceProgressTo creates a progress sink writing to out
func NewSequenceProgressTo(out io.Writer) *SequenceProgress {
	return &SequenceProgress{
		out:     out,
		spinner: newStepSpinner(out),
	}
}

// OnProgress handles sequencer progress events
func (p *SequenceProgress) OnProgress(_ context.Context, event usecase.ProgressEvent) {
	switch event.Stage {
	case usecase.StageRunStarted:
		fmt.Fprintf(p.out, "Running %d steps on %s\n\n", event.Total, color.New(color.Bold).Sprint(event.Message))

	case usecase.StageStepStarting:
		stepColor.Fprintf(p.out, "[%d/%d] %s\n", event.Current, event.Total, event.Message)
		if se, ok := event.Metadata.(usecase.StepEvent); ok && se.Step.Description != "" {
			detailColor.Fprintf(p.out, "      %s\n", se.Step.Description)
		}

	case usecase.StageSubmitting, usecase.StageConfirming:
		if event.Spinner {
			p.spinner.Update(event.Message)
		}

	case usecase.StageStepReused, usecase.StageStepCompleted:
		elapsed := p.spinner.Stop()
		se, ok := event.Metadata.(usecase.StepEvent)
		if !ok {
			return
		}
		p.printOutcome(event.Stage, se, elapsed)

	case usecase.StageRunCompleted:
		p.spinner.Stop()
		fmt.Fprintln(p.out)
	}
}

func (p *SequenceProgress) printOutcome(stage usecase.ExecutionStage, se usecase.StepEvent, elapsed time.Duration) {
	if se.Err != nil {
		if se.Record != nil && se.Step.Optional {
			warnColor.Fprintf(p.out, "      ⚠ optional step failed: %v\n", se.Err)
			return
		}
		failColor.Fprintf(p.out, "      ✗ %v\n", se.Err)
		return
	}
	if se.Record == nil {
		return
	}

	r := se.Record
	if stage == usecase.StageStepReused {
		reusedColor.Fprintf(p.out, "      ↺ reusing %s at %s\n", r.Contract, r.Address)
		return
	}

	line := ""
	switch r.Kind {
	case models.StepDeploy:
		line = fmt.Sprintf("      ✓ %s deployed at %s", r.Contract, r.Address)
	default:
		line = fmt.Sprintf("      ✓ %s.%s", se.Step.Target, se.Step.Method)
	}
	successColor.Fprint(p.out, line)
	if r.Receipt != nil {
		faintColor.Fprintf(p.out, " (block %d, gas %d", r.BlockNumber, r.Receipt.GasUsed)
		if elapsed > 0 {
			faintColor.Fprintf(p.out, ", %s", elapsed.Round(time.Millisecond))
		}
		faintColor.Fprint(p.out, ")")
	}
	fmt.Fprintln(p.out)
}

// Info prints an info message
func (p *SequenceProgress) Info(message string) {
	p.spinner.Println(detailColor, message)
}

// Error prints an error message
func (p *SequenceProgress) Error(message string) {
	p.spinner.Println(failColor, message)
}

var _ usecase.ProgressSink = (*SequenceProgress)(nil)
