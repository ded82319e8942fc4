package usecase

import (
	"context"
	"math/big"
	"time"

	"github.com/trebuchet-org/treb-sequencer/internal/domain/config"
	"github.com/trebuchet-org/treb-sequencer/internal/domain/models"
)

// TxOptions are the per-transaction settings a step passes to the chain client
type TxOptions struct {
	From     string   // Sender address
	Value    *big.Int // Wei attached to the transaction, nil for none
	GasLimit uint64   // 0 lets the client estimate
}

// DeployResult is returned by a successful contract creation
type DeployResult struct {
	Address      string
	Receipt      models.Receipt
	BytecodeHash string
}

// ChainClient deploys and calls contracts on an EVM chain. DeployContract and
// CallContract return once the transaction is mined; a mined but reverted
// transaction is an error wrapping domain.ErrReverted.
type ChainClient interface {
	Connect(ctx context.Context, rpcURL string) error
	ChainID(ctx context.Context) (uint64, error)
	DeployContract(ctx context.Context, contract string, args []any, opts TxOptions) (*DeployResult, error)
	CallContract(ctx context.Context, address, contract, method string, args []any, opts TxOptions) (*models.Receipt, error)
	// WaitForConfirmations blocks until count blocks are mined on top of the block
	// containing txHash and returns that block number
	WaitForConfirmations(ctx context.Context, txHash string, count uint64, timeout time.Duration) (uint64, error)
	HasCode(ctx context.Context, address string) (bool, error)
}

// AccountProvider supplies named account addresses, e.g. {"deployer": "0x..."}
type AccountProvider interface {
	GetNamedAccounts(ctx context.Context) (map[string]string, error)
}

// DeploymentRepository persists deployments per network. Load returns
// domain.ErrNotFound when nothing is stored for the name.
type DeploymentRepository interface {
	Load(ctx context.Context, network, name string) (*models.Deployment, error)
	Save(ctx context.Context, deployment *models.Deployment) error
	List(ctx context.Context, network string) ([]*models.Deployment, error)
	Reset(ctx context.Context, network string) (int, error)
}

// RunRepository stores snapshots of finished runs
type RunRepository interface {
	SaveRun(ctx context.Context, run *models.Run) error
	ListRuns(ctx context.Context, network string) ([]*models.Run, error)
}

// ContractRepository resolves compiled contract artifacts by name. Unknown names
// return an error wrapping domain.ErrArtifactNotFound.
type ContractRepository interface {
	GetContract(ctx context.Context, name string) (*models.Contract, error)
}

// PlanLoader reads a plan file
type PlanLoader interface {
	LoadPlan(ctx context.Context, path string) (*models.Plan, error)
}

// NetworkResolver handles network configuration resolution
type NetworkResolver interface {
	Resolve(networkName string) (*config.Network, error)
	Networks() []config.Network
}

// Confirmer asks the user to confirm an irreversible action
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// Progress tracking interfaces

// ProgressEvent represents a progress update
type ProgressEvent struct {
	Stage    ExecutionStage
	Current  int
	Total    int
	Message  string
	Spinner  bool
	Metadata any
}

// ProgressSink receives progress events
type ProgressSink interface {
	OnProgress(ctx context.Context, event ProgressEvent)
	Info(message string)
	Error(message string)
}

// NopProgress is a no-op implementation of ProgressSink
type NopProgress struct{}

func (NopProgress) OnProgress(context.Context, ProgressEvent) {}
func (NopProgress) Info(string)                               {}
func (NopProgress) Error(string)                              {}

// ExecutionStage represents a stage in a sequencer run
type ExecutionStage string

const (
	StageRunStarted    ExecutionStage = "run_started"
	StageStepStarting  ExecutionStage = "step_starting"
	StageSubmitting    ExecutionStage = "submitting"
	StageConfirming    ExecutionStage = "confirming"
	StageStepReused    ExecutionStage = "step_reused"
	StageStepCompleted ExecutionStage = "step_completed"
	StageRunCompleted  ExecutionStage = "run_completed"
)

// StepEvent is the metadata of step-level progress events
type StepEvent struct {
	Step   models.Step
	Record *models.Record
	Err    error
}
