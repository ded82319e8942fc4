package usecase

import (
	"context"
	"fmt"

	"github.com/trebuchet-org/treb-sequencer/internal/domain/models"
)

// ShowPlanParams contains parameters for showing a plan
type ShowPlanParams struct {
	PlanPath string
}

// ShowPlanResult contains a loaded plan and its validation outcome
type ShowPlanResult struct {
	Plan *models.Plan
	// ValidationErr is nil when the plan can be run
	ValidationErr error
	// MissingArtifacts maps deploy step names to the artifact lookup error
	MissingArtifacts map[string]error
}

// ShowPlan loads and validates a plan without touching the chain
type ShowPlan struct {
	loader    PlanLoader
	contracts ContractRepository
}

// NewShowPlan creates a new ShowPlan use case
func NewShowPlan(loader PlanLoader, contracts ContractRepository) *ShowPlan {
	return &ShowPlan{loader: loader, contracts: contracts}
}

// Run executes the use case
func (uc *ShowPlan) Run(ctx context.Context, params ShowPlanParams) (*ShowPlanResult, error) {
	plan, err := uc.loader.LoadPlan(ctx, params.PlanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load plan: %w", err)
	}

	result := &ShowPlanResult{
		Plan:             plan,
		ValidationErr:    ValidatePlan(plan.Steps),
		MissingArtifacts: make(map[string]error),
	}

	for _, step := range plan.Steps {
		if step.Kind != models.StepDeploy || step.Contract == "" {
			continue
		}
		if _, err := uc.contracts.GetContract(ctx, step.Contract); err != nil {
			result.MissingArtifacts[step.Name] = err
		}
	}

	return result, nil
}

// Runnable reports whether the plan passed validation and every artifact was found
func (r *ShowPlanResult) Runnable() bool {
	return r.ValidationErr == nil && len(r.MissingArtifacts) == 0
}
