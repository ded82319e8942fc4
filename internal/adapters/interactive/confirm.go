package interactive

import (
	"context"
	"errors"
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/trebuchet-org/treb-sequencer/internal/domain/config"
	"github.com/trebuchet-org/treb-sequencer/internal/usecase"
)

// ConfirmerAdapter asks yes/no questions on the terminal
type ConfirmerAdapter struct {
	config *config.RuntimeConfig
	run    func(prompt *promptui.Prompt) (string, error)
}

// NewConfirmerAdapter creates a new confirmer adapter
func NewConfirmerAdapter(cfg *config.RuntimeConfig) *ConfirmerAdapter {
	return &ConfirmerAdapter{
		config: cfg,
		run:    func(p *promptui.Prompt) (string, error) { return p.Run() },
	}
}

// Confirm returns true when the user answers yes. Answering no is not an error;
// interrupting the prompt is.
func (c *ConfirmerAdapter) Confirm(ctx context.Context, label string) (bool, error) {
	if c.config.NonInteractive {
		return false, fmt.Errorf("confirmation required but running in non-interactive mode, pass --yes to proceed")
	}

	prompt := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
	}

	_, err := c.run(&prompt)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, promptui.ErrAbort):
		return false, nil
	case errors.Is(err, promptui.ErrInterrupt):
		return false, fmt.Errorf("cancelled")
	default:
		return false, fmt.Errorf("prompt failed: %w", err)
	}
}

var _ usecase.Confirmer = (*ConfirmerAdapter)(nil)
