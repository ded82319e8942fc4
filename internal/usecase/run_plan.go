package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/trebuchet-org/treb-sequencer/internal/domain"
	"github.com/trebuchet-org/treb-sequencer/internal/domain/config"
	"github.com/trebuchet-org/treb-sequencer/internal/domain/models"
)

// RunPlanParams contains parameters for running a plan
type RunPlanParams struct {
	PlanPath string
	Sender   string // Overrides the plan's sender
	Yes      bool   // Skip the confirmation prompt on non-local chains
}

// RunPlanResult contains the result of running a plan
type RunPlanResult struct {
	Plan    *models.Plan
	Run     *models.Run
	Ledger  *models.Ledger
	Aborted bool

	// Err is the *domain.DeploymentError of a run that did not complete
	Err error
}

// Success reports whether every step completed
func (r *RunPlanResult) Success() bool {
	return !r.Aborted && r.Err == nil
}

// RunPlan loads a plan file and executes it on the configured network
type RunPlan struct {
	config    *config.RuntimeConfig
	loader    PlanLoader
	chain     ChainClient
	sequencer *Sequencer
	runs      RunRepository
	confirmer Confirmer
	progress  ProgressSink
	log       *slog.Logger
}

// NewRunPlan creates a new RunPlan use case
func NewRunPlan(
	cfg *config.RuntimeConfig,
	loader PlanLoader,
	chain ChainClient,
	sequencer *Sequencer,
	runs RunRepository,
	confirmer Confirmer,
	progress ProgressSink,
	log *slog.Logger,
) *RunPlan {
	return &RunPlan{
		config:    cfg,
		loader:    loader,
		chain:     chain,
		sequencer: sequencer,
		runs:      runs,
		confirmer: confirmer,
		progress:  progress,
		log:       log,
	}
}

// Run executes the use case. Deployment failures are reported through
// RunPlanResult.Err; the returned error covers everything that prevented the run
// from starting.
func (uc *RunPlan) Run(ctx context.Context, params RunPlanParams) (*RunPlanResult, error) {
	if uc.config.Network == nil {
		return nil, fmt.Errorf("network is required to run a plan")
	}

	plan, err := uc.loader.LoadPlan(ctx, params.PlanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load plan: %w", err)
	}

	if uc.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, uc.config.Timeout)
		defer cancel()
	}

	if err := uc.chain.Connect(ctx, uc.config.Network.RPCURL); err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", uc.config.Network.Name, err)
	}
	chainID, err := uc.chain.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get chain ID: %w", err)
	}

	sender := params.Sender
	if sender == "" {
		sender = plan.Sender
	}
	if sender == "" {
		sender = config.DefaultSender
	}

	result := &RunPlanResult{Plan: plan}
	run := &models.Run{
		ID:        uuid.NewString(),
		Plan:      plan.Name,
		PlanPath:  plan.Path,
		Network:   uc.config.Network.Name,
		ChainID:   chainID,
		Sender:    sender,
		StartedAt: time.Now().UTC(),
	}

	// Nothing is confirmed or sent for a plan that cannot run
	if err := ValidatePlan(plan.Steps); err != nil {
		return uc.finish(ctx, result, run, nil, invalidPlan(err))
	}
	address, err := uc.sequencer.ResolveSender(ctx, sender)
	if err != nil {
		return uc.finish(ctx, result, run, nil, invalidPlan(err))
	}
	run.Sender = address

	if !uc.config.IsLocalChain(chainID) && !params.Yes && !uc.config.NonInteractive {
		ok, err := uc.confirmer.Confirm(ctx, fmt.Sprintf(
			"Run %d steps of %s on %s (chain %d)?", len(plan.Steps), plan.Name, uc.config.Network.Name, chainID,
		))
		if err != nil {
			return nil, fmt.Errorf("confirmation failed: %w", err)
		}
		if !ok {
			result.Aborted = true
			return result, nil
		}
		run.StartedAt = time.Now().UTC()
	}

	cc := models.ChainContext{
		Network:             run.Network,
		ChainID:             chainID,
		Sender:              sender,
		ConfirmationTimeout: uc.config.ConfirmationTimeout,
		VerifyCode:          !uc.config.SkipCodeCheck,
	}
	uc.log.Debug("starting plan run", "run", run.ID, "plan", plan.Name, "network", cc.Network, "sender", address)

	ledger, err := uc.sequencer.Run(ctx, plan.Steps, cc)
	return uc.finish(ctx, result, run, ledger, err)
}

// finish records the outcome of a run in the result and the run history
func (uc *RunPlan) finish(ctx context.Context, result *RunPlanResult, run *models.Run, ledger *models.Ledger, err error) (*RunPlanResult, error) {
	run.FinishedAt = time.Now().UTC()

	var depErr *domain.DeploymentError
	switch {
	case err == nil:
		run.Status = models.RunCompleted
		run.Ledger = ledger
		result.Ledger = ledger
	case errors.As(err, &depErr):
		run.Status = models.RunFailed
		run.Error = depErr.Error()
		run.ErrorKind = depErr.Kind.Error()
		run.FailedStep = depErr.Step
		run.Ledger = depErr.Ledger
		result.Ledger = depErr.Ledger
		result.Err = depErr
	default:
		return nil, err
	}
	result.Run = run

	if err := uc.runs.SaveRun(ctx, run); err != nil {
		uc.log.Warn("failed to save run", "run", run.ID, "error", err)
		uc.progress.Error(fmt.Sprintf("Warning: failed to save run history: %v", err))
	}

	return result, nil
}

func invalidPlan(err error) *domain.DeploymentError {
	return &domain.DeploymentError{Kind: domain.ErrInvalidPlan, Err: err, Ledger: models.NewLedger()}
}
