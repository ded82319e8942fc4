package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/treb-sequencer/internal/domain"
	"github.com/trebuchet-org/treb-sequencer/internal/domain/models"
	"github.com/trebuchet-org/treb-sequencer/internal/usecase"
)

const liquidityRecipient = "0x047821Dc2b13F680FeD9B006F0868bE43AcF4fe6"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// dexPlan provisions a token and a pool and bootstraps the pool with liquidity
func dexPlan() []models.Step {
	confirmations := models.ConfirmationPolicy{Count: 5, ByChain: map[uint64]uint64{31337: 0}}
	return []models.Step{
		{Name: "Token", Kind: models.StepDeploy, Contract: "Balloons", Confirmations: confirmations},
		{
			Name:          "Pool",
			Kind:          models.StepDeploy,
			Contract:      "DEX",
			Args:          []models.Argument{models.Ref("Token")},
			Confirmations: confirmations,
		},
		{
			Name:   "fund",
			Kind:   models.StepCall,
			Target: "Token",
			Method: "transfer",
			Args:   []models.Argument{models.Literal(liquidityRecipient), models.Literal(ether(10))},
		},
		{
			Name:   "approve",
			Kind:   models.StepCall,
			Target: "Token",
			Method: "approve",
			Args:   []models.Argument{models.Ref("Pool"), models.Literal(ether(100))},
		},
		{
			Name:     "init",
			Kind:     models.StepCall,
			Target:   "Pool",
			Method:   "init",
			Args:     []models.Argument{models.Literal(new(big.Int).Div(ether(1), big.NewInt(2)))},
			Value:    new(big.Int).Div(ether(1), big.NewInt(2)),
			GasLimit: 200000,
		},
	}
}

func newTestSequencer(chain *fakeChain, repo usecase.DeploymentRepository, progress usecase.ProgressSink) *usecase.Sequencer {
	accounts := staticAccounts{"deployer": deployerAddress, "treasury": liquidityRecipient}
	return usecase.NewSequencer(chain, accounts, repo, progress, testLogger())
}

func requireDeploymentError(t *testing.T, err error, kind error) *domain.DeploymentError {
	t.Helper()
	require.Error(t, err)
	var depErr *domain.DeploymentError
	require.True(t, errors.As(err, &depErr), "expected *domain.DeploymentError, got %T", err)
	assert.ErrorIs(t, err, kind)
	require.NotNil(t, depErr.Ledger)
	return depErr
}

func stepNames(records []models.Record) []string {
	names := make([]string, len(records))
	for i, r := range records {
		names[i] = r.Step
	}
	return names
}

func TestSequencer_Run(t *testing.T) {
	ctx := context.Background()

	t.Run("bootstraps token and pool end to end", func(t *testing.T) {
		chain := newFakeChain(31337)
		progress := &MockProgressSink{}
		seq := newTestSequencer(chain, newMemDeployments(), progress)

		ledger, err := seq.Run(ctx, dexPlan(), localContext())
		require.NoError(t, err)
		require.NotNil(t, ledger)

		records := ledger.Records()
		require.Len(t, records, 5)
		assert.Equal(t, []string{"Token", "Pool", "fund", "approve", "init"}, stepNames(records))
		for _, r := range records {
			assert.Equal(t, models.StatusSuccess, r.Status, r.Step)
			assert.NotNil(t, r.Receipt, r.Step)
		}

		token, _ := ledger.Get("Token")
		pool, _ := ledger.Get("Pool")
		require.Len(t, chain.deploys, 2)
		assert.Equal(t, "Balloons", chain.deploys[0].Contract)
		assert.Empty(t, chain.deploys[0].Args)
		assert.Equal(t, []any{token.Address}, chain.deploys[1].Args)
		assert.Equal(t, deployerAddress, chain.deploys[1].Opts.From)

		require.Len(t, chain.calls, 3)
		assert.Equal(t, "transfer", chain.calls[0].Method)
		assert.Equal(t, token.Address, chain.calls[0].Address)
		assert.Equal(t, "Balloons", chain.calls[0].Contract)
		assert.Equal(t, liquidityRecipient, chain.calls[0].Args[0])
		assert.Equal(t, 0, ether(10).Cmp(chain.calls[0].Args[1].(*big.Int)))

		assert.Equal(t, "approve", chain.calls[1].Method)
		assert.Equal(t, pool.Address, chain.calls[1].Args[0])

		assert.Equal(t, "init", chain.calls[2].Method)
		assert.Equal(t, pool.Address, chain.calls[2].Address)
		assert.Equal(t, "DEX", chain.calls[2].Contract)
		assert.Equal(t, "500000000000000000", chain.calls[2].Opts.Value.String())
		assert.Equal(t, uint64(200000), chain.calls[2].Opts.GasLimit)

		initRecord, _ := ledger.Get("init")
		assert.Equal(t, pool.Address, initRecord.To)

		// chain 31337 waits for no confirmations
		assert.Empty(t, chain.waits)

		stages := progress.stages()
		assert.Equal(t, usecase.StageRunStarted, stages[0])
		assert.Equal(t, usecase.StageRunCompleted, stages[len(stages)-1])
	})

	t.Run("ledger follows input order", func(t *testing.T) {
		chain := newFakeChain(31337)
		seq := newTestSequencer(chain, newMemDeployments(), nil)

		var steps []models.Step
		var want []string
		for i := 0; i < 8; i++ {
			name := fmt.Sprintf("C%d", 7-i)
			step := models.Step{Name: name, Kind: models.StepDeploy, Contract: "Counter"}
			if i > 0 {
				step.Args = []models.Argument{models.Ref(want[i-1])}
			}
			steps = append(steps, step)
			want = append(want, name)
		}

		ledger, err := seq.Run(ctx, steps, localContext())
		require.NoError(t, err)
		assert.Equal(t, want, stepNames(ledger.Records()))
		for i := 1; i < len(chain.deploys); i++ {
			prev, _ := ledger.Get(want[i-1])
			assert.Equal(t, []any{prev.Address}, chain.deploys[i].Args)
		}
	})

	t.Run("second run reuses stored deployments", func(t *testing.T) {
		chain := newFakeChain(31337)
		repo := newMemDeployments()
		seq := newTestSequencer(chain, repo, nil)

		steps := dexPlan()[:2]
		first, err := seq.Run(ctx, steps, localContext())
		require.NoError(t, err)
		require.Len(t, chain.deploys, 2)

		second, err := seq.Run(ctx, steps, localContext())
		require.NoError(t, err)
		assert.Len(t, chain.deploys, 2, "no new transactions on the second run")

		for _, name := range []string{"Token", "Pool"} {
			a, _ := first.Get(name)
			b, _ := second.Get(name)
			assert.Equal(t, a.Address, b.Address)
			assert.False(t, a.Reused)
			assert.True(t, b.Reused)
			assert.Equal(t, models.StatusSuccess, b.Status)
		}
	})

	t.Run("reuse is scoped to the network", func(t *testing.T) {
		chain := newFakeChain(31337)
		repo := newMemDeployments()
		seq := newTestSequencer(chain, repo, nil)
		steps := dexPlan()[:1]

		_, err := seq.Run(ctx, steps, localContext())
		require.NoError(t, err)

		other := localContext()
		other.Network = "anvil-2"
		_, err = seq.Run(ctx, steps, other)
		require.NoError(t, err)
		assert.Len(t, chain.deploys, 2)
	})

	t.Run("forward reference fails before any chain call", func(t *testing.T) {
		chain := newFakeChain(31337)
		repo := &MockDeploymentRepository{}
		seq := newTestSequencer(chain, repo, nil)

		steps := []models.Step{
			{Name: "Pool", Kind: models.StepDeploy, Contract: "DEX", Args: []models.Argument{models.Ref("Token")}},
			{Name: "Token", Kind: models.StepDeploy, Contract: "Balloons"},
		}

		ledger, err := seq.Run(ctx, steps, localContext())
		assert.Nil(t, ledger)
		depErr := requireDeploymentError(t, err, domain.ErrInvalidPlan)
		assert.Equal(t, 0, depErr.Ledger.Len())
		assert.Equal(t, 0, chain.transactions())
		assert.Contains(t, err.Error(), "runs later")
		repo.AssertNotCalled(t, "Load", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("empty plan is invalid", func(t *testing.T) {
		seq := newTestSequencer(newFakeChain(31337), newMemDeployments(), nil)
		_, err := seq.Run(ctx, nil, localContext())
		requireDeploymentError(t, err, domain.ErrInvalidPlan)
	})

	t.Run("unknown sender is invalid", func(t *testing.T) {
		chain := newFakeChain(31337)
		seq := newTestSequencer(chain, newMemDeployments(), nil)
		cc := localContext()
		cc.Sender = "nobody"

		_, err := seq.Run(ctx, dexPlan(), cc)
		requireDeploymentError(t, err, domain.ErrInvalidPlan)
		assert.ErrorIs(t, err, domain.ErrUnknownAccount)
		assert.Equal(t, 0, chain.transactions())
	})

	t.Run("literal sender address is used as is", func(t *testing.T) {
		chain := newFakeChain(31337)
		seq := newTestSequencer(chain, newMemDeployments(), nil)
		cc := localContext()
		cc.Sender = liquidityRecipient

		_, err := seq.Run(ctx, dexPlan()[:1], cc)
		require.NoError(t, err)
		assert.Equal(t, liquidityRecipient, chain.deploys[0].Opts.From)
	})

	t.Run("account arguments resolve to named addresses", func(t *testing.T) {
		chain := newFakeChain(31337)
		seq := newTestSequencer(chain, newMemDeployments(), nil)
		steps := dexPlan()[:3]
		steps[2].Args[0] = models.Account("treasury")

		_, err := seq.Run(ctx, steps, localContext())
		require.NoError(t, err)
		assert.Equal(t, liquidityRecipient, chain.calls[0].Args[0])

		steps[2].Args[0] = models.Account("missing")
		_, err = seq.Run(ctx, steps, localContext())
		requireDeploymentError(t, err, domain.ErrInvalidPlan)
	})

	t.Run("submission failure halts the run", func(t *testing.T) {
		chain := newFakeChain(31337)
		chain.deployErr["DEX"] = errors.New("insufficient funds for gas * price + value")
		seq := newTestSequencer(chain, newMemDeployments(), nil)

		ledger, err := seq.Run(ctx, dexPlan(), localContext())
		assert.Nil(t, ledger)
		depErr := requireDeploymentError(t, err, domain.ErrSubmissionFailure)
		assert.Equal(t, "Pool", depErr.Step)
		assert.True(t, depErr.Retryable())
		assert.Contains(t, err.Error(), "insufficient funds")

		records := depErr.Ledger.Records()
		require.Len(t, records, 2)
		assert.Equal(t, models.StatusSuccess, records[0].Status)
		assert.Equal(t, models.StatusFailed, records[1].Status)
		assert.Empty(t, chain.calls, "later steps are not attempted")
	})

	t.Run("reverted call is a submission failure", func(t *testing.T) {
		chain := newFakeChain(31337)
		chain.callErr["approve"] = fmt.Errorf("tx 0xabc: %w", domain.ErrReverted)
		seq := newTestSequencer(chain, newMemDeployments(), nil)

		_, err := seq.Run(ctx, dexPlan(), localContext())
		depErr := requireDeploymentError(t, err, domain.ErrSubmissionFailure)
		assert.ErrorIs(t, err, domain.ErrReverted)
		assert.Equal(t, "approve", depErr.Step)
		assert.Equal(t, 4, depErr.Ledger.Len())
		assert.Len(t, chain.calls, 2)
	})

	t.Run("reference to a failed step is unresolved", func(t *testing.T) {
		chain := newFakeChain(31337)
		chain.deployErr["Balloons"] = errors.New("execution reverted")
		seq := newTestSequencer(chain, newMemDeployments(), nil)

		steps := dexPlan()
		steps[0].Optional = true

		_, err := seq.Run(ctx, steps, localContext())
		depErr := requireDeploymentError(t, err, domain.ErrUnresolvedReference)
		assert.Equal(t, "Pool", depErr.Step)

		records := depErr.Ledger.Records()
		require.Len(t, records, 1)
		assert.Equal(t, "Token", records[0].Step)
		assert.Equal(t, models.StatusFailed, records[0].Status)
		_, found := depErr.Ledger.Get("Pool")
		assert.False(t, found)
		assert.Len(t, chain.deploys, 1)
	})

	t.Run("optional step failure lets independent steps run", func(t *testing.T) {
		chain := newFakeChain(31337)
		chain.callErr["transfer"] = errors.New("transfer amount exceeds balance")
		seq := newTestSequencer(chain, newMemDeployments(), nil)

		steps := dexPlan()
		steps[2].Optional = true

		ledger, err := seq.Run(ctx, steps, localContext())
		require.NoError(t, err)
		fund, ok := ledger.Get("fund")
		require.True(t, ok)
		assert.Equal(t, models.StatusFailed, fund.Status)
		assert.Contains(t, fund.Error, "exceeds balance")
		assert.Equal(t, 5, ledger.Len())
	})

	t.Run("calling a call step is unresolved", func(t *testing.T) {
		seq := newTestSequencer(newFakeChain(31337), newMemDeployments(), nil)
		steps := dexPlan()
		steps = append(steps, models.Step{Name: "again", Kind: models.StepCall, Target: "init", Method: "init"})

		_, err := seq.Run(ctx, steps, localContext())
		depErr := requireDeploymentError(t, err, domain.ErrUnresolvedReference)
		assert.Equal(t, "again", depErr.Step)
		assert.Equal(t, 5, depErr.Ledger.Len())
	})

	t.Run("confirmation wait that never returns times out", func(t *testing.T) {
		chain := newFakeChain(1)
		chain.hangWait = make(chan struct{})
		t.Cleanup(func() { close(chain.hangWait) })
		seq := newTestSequencer(chain, newMemDeployments(), nil)

		cc := localContext()
		cc.Network = "mainnet"
		cc.ChainID = 1
		cc.ConfirmationTimeout = 50 * time.Millisecond

		start := time.Now()
		ledger, err := seq.Run(ctx, dexPlan(), cc)
		assert.Nil(t, ledger)
		assert.Less(t, time.Since(start), 5*time.Second)

		depErr := requireDeploymentError(t, err, domain.ErrConfirmationTimeout)
		assert.Equal(t, "Token", depErr.Step)
		assert.False(t, depErr.Retryable())

		records := depErr.Ledger.Records()
		require.Len(t, records, 1)
		assert.Equal(t, models.StatusUnconfirmed, records[0].Status)
		assert.NotEmpty(t, records[0].Receipt.TxHash)
		assert.Len(t, chain.deploys, 1, "subsequent steps are not attempted")
	})

	t.Run("wait error is reported as confirmation timeout", func(t *testing.T) {
		chain := newFakeChain(1)
		chain.waitErr = errors.New("connection reset by peer")
		repo := newMemDeployments()
		seq := newTestSequencer(chain, repo, nil)

		cc := localContext()
		cc.ChainID = 1

		_, err := seq.Run(ctx, dexPlan(), cc)
		requireDeploymentError(t, err, domain.ErrConfirmationTimeout)
		assert.Contains(t, err.Error(), "connection reset")

		stored, err := repo.List(ctx, "")
		require.NoError(t, err)
		assert.Empty(t, stored, "unconfirmed deployments are not stored")
	})

	t.Run("confirmation count depends on chain", func(t *testing.T) {
		chain := newFakeChain(1)
		seq := newTestSequencer(chain, newMemDeployments(), nil)
		cc := localContext()
		cc.ChainID = 1

		ledger, err := seq.Run(ctx, dexPlan(), cc)
		require.NoError(t, err)
		assert.Equal(t, []uint64{5, 5}, chain.waits)

		token, _ := ledger.Get("Token")
		assert.Equal(t, token.Receipt.BlockNumber+5, token.BlockNumber)
	})

	t.Run("stored deployment without code is redeployed", func(t *testing.T) {
		chain := newFakeChain(31337)
		repo := newMemDeployments()
		require.NoError(t, repo.Save(ctx, &models.Deployment{
			Network:  "local",
			Name:     "Token",
			Contract: "Balloons",
			Address:  "0x00000000000000000000000000000000000000aa",
		}))
		chain.noCode["0x00000000000000000000000000000000000000aa"] = true
		progress := &MockProgressSink{}
		seq := newTestSequencer(chain, repo, progress)

		cc := localContext()
		cc.VerifyCode = true

		ledger, err := seq.Run(ctx, dexPlan()[:1], cc)
		require.NoError(t, err)
		token, _ := ledger.Get("Token")
		assert.False(t, token.Reused)
		assert.NotEqual(t, "0x00000000000000000000000000000000000000aa", token.Address)
		assert.Len(t, chain.deploys, 1)
		assert.NotEmpty(t, progress.infos)

		stored, err := repo.Load(ctx, "local", "Token")
		require.NoError(t, err)
		assert.Equal(t, token.Address, stored.Address)
	})

	t.Run("repository load error is a submission failure", func(t *testing.T) {
		chain := newFakeChain(31337)
		repo := &MockDeploymentRepository{}
		repo.On("Load", mock.Anything, "local", "Token").Return(nil, errors.New("permission denied"))
		seq := newTestSequencer(chain, repo, nil)

		_, err := seq.Run(ctx, dexPlan(), localContext())
		depErr := requireDeploymentError(t, err, domain.ErrSubmissionFailure)
		assert.Equal(t, "Token", depErr.Step)
		assert.Equal(t, 0, chain.transactions())
		repo.AssertExpectations(t)
	})

	t.Run("failing to record a deployment halts the run", func(t *testing.T) {
		chain := newFakeChain(31337)
		repo := &MockDeploymentRepository{}
		repo.On("Load", mock.Anything, "local", "Token").Return(nil, domain.ErrNotFound)
		repo.On("Save", mock.Anything, mock.AnythingOfType("*models.Deployment")).Return(errors.New("disk full")).Once()
		seq := newTestSequencer(chain, repo, nil)

		_, err := seq.Run(ctx, dexPlan(), localContext())
		depErr := requireDeploymentError(t, err, domain.ErrNotRecorded)
		assert.Equal(t, "Token", depErr.Step)
		assert.False(t, depErr.Retryable())
		assert.ErrorContains(t, err, "disk full")

		require.Equal(t, []string{"Token"}, stepNames(depErr.Ledger.Records()))
		token, _ := depErr.Ledger.Get("Token")
		assert.Equal(t, models.StatusSuccess, token.Status)
		assert.NotEmpty(t, token.Address)
		assert.ErrorContains(t, err, token.Address)

		assert.Len(t, chain.deploys, 1)
		repo.AssertExpectations(t)
	})

	t.Run("records in the returned ledger cannot be changed", func(t *testing.T) {
		seq := newTestSequencer(newFakeChain(31337), newMemDeployments(), nil)
		ledger, err := seq.Run(ctx, dexPlan(), localContext())
		require.NoError(t, err)

		records := ledger.Records()
		records[0].Address = "0xdead"
		records[0].Receipt.TxHash = "0xdead"

		token, _ := ledger.Get("Token")
		assert.NotEqual(t, "0xdead", token.Address)
		assert.NotEqual(t, "0xdead", token.Receipt.TxHash)
	})
}
