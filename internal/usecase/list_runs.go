package usecase

import (
	"context"
	"fmt"

	"github.com/trebuchet-org/treb-sequencer/internal/domain/config"
	"github.com/trebuchet-org/treb-sequencer/internal/domain/models"
)

// ListRunsParams contains parameters for listing run history
type ListRunsParams struct {
	Limit int // 0 lists every run
}

// ListRunsResult contains stored runs, newest first
type ListRunsResult struct {
	Network string
	Runs    []*models.Run
}

// ListRuns lists the run history of the configured network
type ListRuns struct {
	config *config.RuntimeConfig
	runs   RunRepository
}

// NewListRuns creates a new ListRuns use case
func NewListRuns(cfg *config.RuntimeConfig, runs RunRepository) *ListRuns {
	return &ListRuns{config: cfg, runs: runs}
}

// Run executes the use case
func (uc *ListRuns) Run(ctx context.Context, params ListRunsParams) (*ListRunsResult, error) {
	if uc.config.Network == nil {
		return nil, fmt.Errorf("network is required to list runs")
	}

	runs, err := uc.runs.ListRuns(ctx, uc.config.Network.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	if params.Limit > 0 && len(runs) > params.Limit {
		runs = runs[:params.Limit]
	}

	return &ListRunsResult{
		Network: uc.config.Network.Name,
		Runs:    runs,
	}, nil
}
