package usecase

import (
	"context"
	"fmt"

	"github.com/trebuchet-org/treb-sequencer/internal/domain/config"
	"github.com/trebuchet-org/treb-sequencer/internal/domain/models"
)

// ListDeploymentsParams contains parameters for listing deployments
type ListDeploymentsParams struct {
	// AllNetworks lists every stored network instead of the configured one
	AllNetworks bool
}

// DeploymentListResult contains the result of listing deployments
type DeploymentListResult struct {
	Network     string
	Deployments []*models.Deployment
}

// ListDeployments is a use case for listing stored deployments
type ListDeployments struct {
	config *config.RuntimeConfig
	repo   DeploymentRepository
}

// NewListDeployments creates a new ListDeployments use case
func NewListDeployments(cfg *config.RuntimeConfig, repo DeploymentRepository) *ListDeployments {
	return &ListDeployments{
		config: cfg,
		repo:   repo,
	}
}

// Run executes the list deployments use case
func (uc *ListDeployments) Run(ctx context.Context, params ListDeploymentsParams) (*DeploymentListResult, error) {
	network := ""
	if !params.AllNetworks {
		if uc.config.Network == nil {
			return nil, fmt.Errorf("network is required, or use --all")
		}
		network = uc.config.Network.Name
	}

	deployments, err := uc.repo.List(ctx, network)
	if err != nil {
		return nil, fmt.Errorf("failed to list deployments: %w", err)
	}

	return &DeploymentListResult{
		Network:     network,
		Deployments: deployments,
	}, nil
}
