package progress

import (
	"io"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
)

// stepSpinner shows a spinner while a transaction is submitted or confirmed and
// pauses it around printed lines so they are not overwritten
type stepSpinner struct {
	spinner   *spinner.Spinner
	out       io.Writer
	startedAt time.Time
}

func newStepSpinner(out io.Writer) *stepSpinner {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(out))
	s.HideCursor = false
	return &stepSpinner{spinner: s, out: out}
}

// Update starts the spinner if needed and replaces its message
func (s *stepSpinner) Update(message string) {
	s.spinner.Suffix = " " + message
	if !s.spinner.Active() {
		s.startedAt = time.Now()
		s.spinner.Start()
	}
}

// Stop stops the spinner and returns how long it ran
func (s *stepSpinner) Stop() time.Duration {
	if !s.spinner.Active() {
		return 0
	}
	s.spinner.Stop()
	return time.Since(s.startedAt)
}

// Println prints a colored line, pausing the spinner around it
func (s *stepSpinner) Println(c *color.Color, message string) {
	wasActive := s.spinner.Active()
	if wasActive {
		s.spinner.Stop()
	}

	c.Fprintln(s.out, message)

	if wasActive {
		s.spinner.Start()
	}
}
