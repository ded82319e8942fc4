package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/treb-sequencer/internal/domain"
	"github.com/trebuchet-org/treb-sequencer/internal/domain/config"
	"github.com/trebuchet-org/treb-sequencer/internal/domain/models"
)

// Sequencer executes an ordered list of deploy and call steps against a chain,
// one at a time, halting on the first failure.
type Sequencer struct {
	chain       ChainClient
	accounts    AccountProvider
	deployments DeploymentRepository
	progress    ProgressSink
	log         *slog.Logger
	now         func() time.Time
}

// NewSequencer creates a new sequencer
func NewSequencer(
	chain ChainClient,
	accounts AccountProvider,
	deployments DeploymentRepository,
	progress ProgressSink,
	log *slog.Logger,
) *Sequencer {
	if progress == nil {
		progress = NopProgress{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Sequencer{
		chain:       chain,
		accounts:    accounts,
		deployments: deployments,
		progress:    progress,
		log:         log.With("component", "sequencer"),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// stepFailure is the outcome of a step that did not succeed
type stepFailure struct {
	kind error
	err  error
}

// Run executes steps in order. On success it returns the ledger with one record
// per step. Any failure halts the run and is returned as a *domain.DeploymentError
// carrying a snapshot of the ledger at the point of failure.
func (s *Sequencer) Run(ctx context.Context, steps []models.Step, cc models.ChainContext) (*models.Ledger, error) {
	ledger := models.NewLedger()

	if err := ValidatePlan(steps); err != nil {
		return nil, &domain.DeploymentError{Kind: domain.ErrInvalidPlan, Err: err, Ledger: ledger.Snapshot()}
	}

	named, sender, err := s.resolveAccounts(ctx, steps, cc.Sender)
	if err != nil {
		return nil, &domain.DeploymentError{Kind: domain.ErrInvalidPlan, Err: err, Ledger: ledger.Snapshot()}
	}

	s.log.Info("starting run",
		"network", cc.Network,
		"chain_id", cc.ChainID,
		"sender", sender,
		"steps", len(steps),
	)
	s.progress.OnProgress(ctx, ProgressEvent{
		Stage:    StageRunStarted,
		Total:    len(steps),
		Message:  cc.Network,
		Metadata: steps,
	})

	for i, step := range steps {
		s.progress.OnProgress(ctx, ProgressEvent{
			Stage:    StageStepStarting,
			Current:  i + 1,
			Total:    len(steps),
			Message:  step.Name,
			Metadata: StepEvent{Step: step},
		})

		args, err := s.resolveArgs(ledger, step, named)
		if err != nil {
			s.log.Error("unresolved reference", "step", step.Name, "error", err)
			return nil, s.halt(ctx, ledger, step, domain.ErrUnresolvedReference, err)
		}

		var (
			record  models.Record
			failure *stepFailure
		)
		switch step.Kind {
		case models.StepDeploy:
			record, failure = s.deploy(ctx, step, args, sender, cc)
		case models.StepCall:
			record, failure = s.call(ctx, ledger, step, args, sender, cc)
		}

		if failure != nil && failure.kind == domain.ErrUnresolvedReference {
			return nil, s.halt(ctx, ledger, step, failure.kind, failure.err)
		}

		if err := ledger.Append(record); err != nil {
			return nil, s.halt(ctx, ledger, step, domain.ErrInvalidPlan, err)
		}

		if failure != nil {
			if step.Optional && failure.kind == domain.ErrSubmissionFailure {
				s.log.Warn("optional step failed, continuing", "step", step.Name, "error", failure.err)
				s.progress.OnProgress(ctx, ProgressEvent{
					Stage:    StageStepCompleted,
					Current:  i + 1,
					Total:    len(steps),
					Message:  step.Name,
					Metadata: StepEvent{Step: step, Record: &record, Err: failure.err},
				})
				continue
			}
			s.log.Error("step failed", "step", step.Name, "kind", failure.kind, "error", failure.err)
			return nil, s.halt(ctx, ledger, step, failure.kind, failure.err)
		}

		stage := StageStepCompleted
		if record.Reused {
			stage = StageStepReused
		}
		s.progress.OnProgress(ctx, ProgressEvent{
			Stage:    stage,
			Current:  i + 1,
			Total:    len(steps),
			Message:  step.Name,
			Metadata: StepEvent{Step: step, Record: &record},
		})
	}

	s.log.Info("run completed", "network", cc.Network, "records", ledger.Len())
	s.progress.OnProgress(ctx, ProgressEvent{
		Stage:    StageRunCompleted,
		Current:  len(steps),
		Total:    len(steps),
		Metadata: ledger.Snapshot(),
	})

	return ledger, nil
}

func (s *Sequencer) halt(ctx context.Context, ledger *models.Ledger, step models.Step, kind, err error) error {
	s.progress.OnProgress(ctx, ProgressEvent{
		Stage:    StageStepCompleted,
		Message:  step.Name,
		Metadata: StepEvent{Step: step, Err: err},
	})
	return &domain.DeploymentError{
		Kind:   kind,
		Step:   step.Name,
		Err:    err,
		Ledger: ledger.Snapshot(),
	}
}

// resolveAccounts returns the named accounts and the sender address. The sender
// is either a configured account name or a literal address.
func (s *Sequencer) resolveAccounts(ctx context.Context, steps []models.Step, sender string) (map[string]string, string, error) {
	named, err := s.accounts.GetNamedAccounts(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load named accounts: %w", err)
	}

	address, err := senderAddress(named, sender)
	if err != nil {
		return nil, "", err
	}

	for _, step := range steps {
		for _, arg := range step.Args {
			if arg.Kind != models.ArgAccount {
				continue
			}
			if _, ok := named[arg.Name]; !ok {
				return nil, "", fmt.Errorf("step %q argument %q: %w", step.Name, arg.Name, domain.ErrUnknownAccount)
			}
		}
	}

	return named, address, nil
}

// ResolveSender returns the address that sends transactions for a configured
// account name or a literal address
func (s *Sequencer) ResolveSender(ctx context.Context, sender string) (string, error) {
	named, err := s.accounts.GetNamedAccounts(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load named accounts: %w", err)
	}
	return senderAddress(named, sender)
}

func senderAddress(named map[string]string, sender string) (string, error) {
	if sender == "" {
		sender = config.DefaultSender
	}
	if address, ok := named[sender]; ok {
		return address, nil
	}
	if !common.IsHexAddress(sender) {
		return "", fmt.Errorf("sender %q: %w", sender, domain.ErrUnknownAccount)
	}
	return sender, nil
}

// resolveArgs turns step arguments into values for the chain client. References
// resolve to the address recorded by the named step.
func (s *Sequencer) resolveArgs(ledger *models.Ledger, step models.Step, named map[string]string) ([]any, error) {
	args := make([]any, 0, len(step.Args))
	for i, arg := range step.Args {
		switch arg.Kind {
		case models.ArgReference:
			address, err := addressOf(ledger, arg.Name)
			if err != nil {
				return nil, fmt.Errorf("argument %d: %w", i, err)
			}
			args = append(args, address)
		case models.ArgAccount:
			args = append(args, named[arg.Name])
		default:
			args = append(args, arg.Value)
		}
	}
	return args, nil
}

// addressOf returns the address a prior step produced
func addressOf(ledger *models.Ledger, name string) (string, error) {
	record, ok := ledger.Get(name)
	if !ok {
		return "", fmt.Errorf("step %q has no record", name)
	}
	if !record.Succeeded() {
		return "", fmt.Errorf("step %q did not succeed (%s)", name, record.Status)
	}
	if record.Address == "" {
		return "", fmt.Errorf("step %q produced no address", name)
	}
	return record.Address, nil
}

func (s *Sequencer) deploy(ctx context.Context, step models.Step, args []any, sender string, cc models.ChainContext) (models.Record, *stepFailure) {
	record := models.Record{
		Step:     step.Name,
		Kind:     models.StepDeploy,
		Contract: step.Contract,
	}

	existing, err := s.deployments.Load(ctx, cc.Network, step.Name)
	switch {
	case err == nil:
		reuse, verr := s.canReuse(ctx, existing, step, cc)
		if verr != nil {
			return s.failed(record, domain.ErrSubmissionFailure, verr)
		}
		if reuse {
			s.log.Info("reusing deployment", "step", step.Name, "address", existing.Address)
			return existing.Record(), nil
		}
	case errors.Is(err, domain.ErrNotFound):
	default:
		return s.failed(record, domain.ErrSubmissionFailure, fmt.Errorf("failed to load deployment: %w", err))
	}

	s.progress.OnProgress(ctx, ProgressEvent{
		Stage:   StageSubmitting,
		Message: fmt.Sprintf("Deploying %s", step.Contract),
		Spinner: true,
	})
	s.log.Debug("deploying contract", "step", step.Name, "contract", step.Contract, "args", len(args))

	result, err := s.chain.DeployContract(ctx, step.Contract, args, txOptions(step, sender))
	if err != nil {
		return s.failed(record, classify(err), err)
	}

	record.Address = result.Address
	record.Receipt = &result.Receipt
	record.BlockNumber = result.Receipt.BlockNumber

	if failure := s.confirm(ctx, &record, step, cc); failure != nil {
		return record, failure
	}

	record.Status = models.StatusSuccess
	record.RecordedAt = s.now()

	deployment := &models.Deployment{
		Network:      cc.Network,
		ChainID:      cc.ChainID,
		Name:         step.Name,
		Contract:     step.Contract,
		Address:      result.Address,
		TxHash:       result.Receipt.TxHash,
		BlockNumber:  record.BlockNumber,
		BytecodeHash: result.BytecodeHash,
		Deployer:     sender,
		CreatedAt:    record.RecordedAt,
	}
	if err := s.deployments.Save(ctx, deployment); err != nil {
		return record, &stepFailure{
			kind: domain.ErrNotRecorded,
			err:  fmt.Errorf("%s deployed at %s: %w", step.Contract, result.Address, err),
		}
	}

	return record, nil
}

// canReuse reports whether a stored deployment should be reused for step
func (s *Sequencer) canReuse(ctx context.Context, existing *models.Deployment, step models.Step, cc models.ChainContext) (bool, error) {
	if existing.Contract != "" && existing.Contract != step.Contract {
		s.log.Warn("stored deployment has a different contract",
			"step", step.Name,
			"stored", existing.Contract,
			"planned", step.Contract,
		)
	}
	if !cc.VerifyCode {
		return true, nil
	}

	hasCode, err := s.chain.HasCode(ctx, existing.Address)
	if err != nil {
		return false, fmt.Errorf("failed to check code at %s: %w", existing.Address, err)
	}
	if !hasCode {
		s.log.Warn("stored deployment has no code on chain, redeploying",
			"step", step.Name,
			"address", existing.Address,
		)
		s.progress.Info(fmt.Sprintf("No code at stored address %s for %s, redeploying", existing.Address, step.Name))
	}
	return hasCode, nil
}

func (s *Sequencer) call(ctx context.Context, ledger *models.Ledger, step models.Step, args []any, sender string, cc models.ChainContext) (models.Record, *stepFailure) {
	target, ok := ledger.Get(step.Target)
	if !ok || !target.Succeeded() || target.Address == "" {
		_, err := addressOf(ledger, step.Target)
		return models.Record{}, &stepFailure{kind: domain.ErrUnresolvedReference, err: fmt.Errorf("call target: %w", err)}
	}

	record := models.Record{
		Step:     step.Name,
		Kind:     models.StepCall,
		Contract: target.Contract,
		To:       target.Address,
	}

	s.progress.OnProgress(ctx, ProgressEvent{
		Stage:   StageSubmitting,
		Message: fmt.Sprintf("Calling %s.%s", step.Target, step.Method),
		Spinner: true,
	})
	s.log.Debug("calling contract",
		"step", step.Name,
		"target", target.Address,
		"method", step.Method,
		"value", step.Value,
	)

	receipt, err := s.chain.CallContract(ctx, target.Address, target.Contract, step.Method, args, txOptions(step, sender))
	if err != nil {
		return s.failed(record, classify(err), err)
	}

	record.Receipt = receipt
	record.BlockNumber = receipt.BlockNumber

	if failure := s.confirm(ctx, &record, step, cc); failure != nil {
		return record, failure
	}

	record.Status = models.StatusSuccess
	record.RecordedAt = s.now()
	return record, nil
}

// confirm waits for the confirmations step requires on this chain and sets the
// record's block number to the confirming block.
func (s *Sequencer) confirm(ctx context.Context, record *models.Record, step models.Step, cc models.ChainContext) *stepFailure {
	count := step.Confirmations.For(cc.ChainID)
	if count == 0 || record.Receipt == nil {
		return nil
	}

	s.progress.OnProgress(ctx, ProgressEvent{
		Stage:   StageConfirming,
		Message: fmt.Sprintf("Waiting for %d confirmations", count),
		Spinner: true,
	})

	block, err := s.awaitConfirmations(ctx, record.Receipt.TxHash, count, cc.ConfirmationTimeout)
	if err != nil {
		record.Status = models.StatusUnconfirmed
		record.Error = err.Error()
		record.RecordedAt = s.now()
		return &stepFailure{kind: domain.ErrConfirmationTimeout, err: err}
	}
	record.BlockNumber = block
	return nil
}

// awaitConfirmations bounds the client's wait by timeout even when the client
// itself does not honour its context.
func (s *Sequencer) awaitConfirmations(ctx context.Context, txHash string, count uint64, timeout time.Duration) (uint64, error) {
	if timeout <= 0 {
		timeout = config.DefaultConfirmationTimeout
	}
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		block uint64
		err   error
	}
	done := make(chan result, 1)
	go func() {
		block, err := s.chain.WaitForConfirmations(waitCtx, txHash, count, timeout)
		done <- result{block: block, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			if errors.Is(r.err, domain.ErrConfirmationTimeout) {
				return 0, r.err
			}
			return 0, fmt.Errorf("%w: waiting for %s: %w", domain.ErrConfirmationTimeout, txHash, r.err)
		}
		return r.block, nil
	case <-waitCtx.Done():
		return 0, fmt.Errorf("%w: %d confirmations of %s not observed within %s", domain.ErrConfirmationTimeout, count, txHash, timeout)
	}
}

func (s *Sequencer) failed(record models.Record, kind, err error) (models.Record, *stepFailure) {
	record.Status = models.StatusFailed
	if kind == domain.ErrConfirmationTimeout {
		record.Status = models.StatusUnconfirmed
	}
	record.Error = err.Error()
	record.RecordedAt = s.now()
	return record, &stepFailure{kind: kind, err: err}
}

// classify maps a chain client error to a deployment error kind. Only a wait that
// ran out of time leaves the transaction outcome unknown.
func classify(err error) error {
	if errors.Is(err, domain.ErrConfirmationTimeout) {
		return domain.ErrConfirmationTimeout
	}
	return domain.ErrSubmissionFailure
}

func txOptions(step models.Step, sender string) TxOptions {
	return TxOptions{
		From:     sender,
		Value:    step.Value,
		GasLimit: step.GasLimit,
	}
}
