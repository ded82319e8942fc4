package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/trebuchet-org/treb-sequencer/internal/domain/config"
	"github.com/trebuchet-org/treb-sequencer/internal/domain/models"
)

// ResetDeploymentsParams contains parameters for resetting deployments
type ResetDeploymentsParams struct {
	DryRun bool // If true, only collect items without removing them
}

// ResetDeploymentsResult contains the result of resetting deployments
type ResetDeploymentsResult struct {
	Network     string
	Deployments []*models.Deployment
	Removed     int
}

// ResetDeployments forgets every stored deployment of the configured network, so
// the next run deploys from scratch. Used after restarting a local node.
type ResetDeployments struct {
	config *config.RuntimeConfig
	repo   DeploymentRepository
	log    *slog.Logger
}

// NewResetDeployments creates a new ResetDeployments use case
func NewResetDeployments(cfg *config.RuntimeConfig, repo DeploymentRepository, log *slog.Logger) *ResetDeployments {
	return &ResetDeployments{
		config: cfg,
		repo:   repo,
		log:    log,
	}
}

// Run executes the reset deployments use case
func (uc *ResetDeployments) Run(ctx context.Context, params ResetDeploymentsParams) (*ResetDeploymentsResult, error) {
	if uc.config.Network == nil {
		return nil, fmt.Errorf("network is required for reset")
	}
	network := uc.config.Network.Name

	deployments, err := uc.repo.List(ctx, network)
	if err != nil {
		return nil, fmt.Errorf("failed to list deployments: %w", err)
	}

	result := &ResetDeploymentsResult{
		Network:     network,
		Deployments: deployments,
	}
	if params.DryRun || len(deployments) == 0 {
		return result, nil
	}

	removed, err := uc.repo.Reset(ctx, network)
	if err != nil {
		return nil, fmt.Errorf("failed to reset deployments: %w", err)
	}
	uc.log.Info("reset deployments", "network", network, "removed", removed)
	result.Removed = removed

	return result, nil
}
