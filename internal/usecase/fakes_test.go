package usecase_test

import (
	"context"
	"fmt"
	"math/big"
	"sort"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/trebuchet-org/treb-sequencer/internal/domain"
	"github.com/trebuchet-org/treb-sequencer/internal/domain/config"
	"github.com/trebuchet-org/treb-sequencer/internal/domain/models"
	"github.com/trebuchet-org/treb-sequencer/internal/usecase"
)

const deployerAddress = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"

type deployCall struct {
	Contract string
	Args     []any
	Opts     usecase.TxOptions
}

type contractCall struct {
	Address  string
	Contract string
	Method   string
	Args     []any
	Opts     usecase.TxOptions
}

// fakeChain is an in-memory chain that mines one block per transaction
type fakeChain struct {
	mu sync.Mutex

	chainID  uint64
	block    uint64
	nonce    int
	deploys  []deployCall
	calls    []contractCall
	waits    []uint64
	noCode   map[string]bool
	hangWait chan struct{}

	deployErr map[string]error // by contract name
	callErr   map[string]error // by method
	waitErr   error
}

func newFakeChain(chainID uint64) *fakeChain {
	return &fakeChain{
		chainID:   chainID,
		block:     100,
		noCode:    map[string]bool{},
		deployErr: map[string]error{},
		callErr:   map[string]error{},
	}
}

func (c *fakeChain) Connect(context.Context, string) error { return nil }

func (c *fakeChain) ChainID(context.Context) (uint64, error) { return c.chainID, nil }

func (c *fakeChain) DeployContract(_ context.Context, contract string, args []any, opts usecase.TxOptions) (*usecase.DeployResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.deploys = append(c.deploys, deployCall{Contract: contract, Args: args, Opts: opts})
	if err := c.deployErr[contract]; err != nil {
		return nil, err
	}
	receipt := c.mine()
	return &usecase.DeployResult{
		Address:      fmt.Sprintf("0x%040x", c.nonce),
		Receipt:      receipt,
		BytecodeHash: fmt.Sprintf("0x%064x", len(contract)),
	}, nil
}

func (c *fakeChain) CallContract(_ context.Context, address, contract, method string, args []any, opts usecase.TxOptions) (*models.Receipt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.calls = append(c.calls, contractCall{Address: address, Contract: contract, Method: method, Args: args, Opts: opts})
	if err := c.callErr[method]; err != nil {
		return nil, err
	}
	receipt := c.mine()
	return &receipt, nil
}

func (c *fakeChain) WaitForConfirmations(_ context.Context, _ string, count uint64, _ time.Duration) (uint64, error) {
	c.mu.Lock()
	c.waits = append(c.waits, count)
	hang := c.hangWait
	err := c.waitErr
	c.mu.Unlock()

	if hang != nil {
		<-hang
	}
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.block += count
	return c.block, nil
}

func (c *fakeChain) HasCode(_ context.Context, address string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.noCode[address], nil
}

func (c *fakeChain) mine() models.Receipt {
	c.nonce++
	c.block++
	return models.Receipt{
		TxHash:      fmt.Sprintf("0x%064x", c.nonce),
		BlockNumber: c.block,
		GasUsed:     21000,
	}
}

func (c *fakeChain) transactions() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.deploys) + len(c.calls)
}

// staticAccounts is a fixed set of named accounts
type staticAccounts map[string]string

func (a staticAccounts) GetNamedAccounts(context.Context) (map[string]string, error) {
	out := make(map[string]string, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out, nil
}

// memDeployments is an in-memory DeploymentRepository
type memDeployments struct {
	mu   sync.Mutex
	data map[string]*models.Deployment
}

func newMemDeployments() *memDeployments {
	return &memDeployments{data: map[string]*models.Deployment{}}
}

func (r *memDeployments) Load(_ context.Context, network, name string) (*models.Deployment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.data[network+"/"+name]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (r *memDeployments) Save(_ context.Context, d *models.Deployment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *d
	r.data[d.ID()] = &cp
	return nil
}

func (r *memDeployments) List(_ context.Context, network string) ([]*models.Deployment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Deployment
	for _, d := range r.data {
		if network == "" || d.Network == network {
			cp := *d
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out, nil
}

func (r *memDeployments) Reset(_ context.Context, network string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, d := range r.data {
		if d.Network == network {
			delete(r.data, id)
			removed++
		}
	}
	return removed, nil
}

// MockDeploymentRepository is a mock implementation of DeploymentRepository
type MockDeploymentRepository struct {
	mock.Mock
}

func (m *MockDeploymentRepository) Load(ctx context.Context, network, name string) (*models.Deployment, error) {
	args := m.Called(ctx, network, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Deployment), args.Error(1)
}

func (m *MockDeploymentRepository) Save(ctx context.Context, deployment *models.Deployment) error {
	args := m.Called(ctx, deployment)
	return args.Error(0)
}

func (m *MockDeploymentRepository) List(ctx context.Context, network string) ([]*models.Deployment, error) {
	args := m.Called(ctx, network)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Deployment), args.Error(1)
}

func (m *MockDeploymentRepository) Reset(ctx context.Context, network string) (int, error) {
	args := m.Called(ctx, network)
	return args.Int(0), args.Error(1)
}

// MockProgressSink records progress events
type MockProgressSink struct {
	mu     sync.Mutex
	events []usecase.ProgressEvent
	infos  []string
	errors []string
}

func (m *MockProgressSink) OnProgress(_ context.Context, event usecase.ProgressEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
}

func (m *MockProgressSink) Info(message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.infos = append(m.infos, message)
}

func (m *MockProgressSink) Error(message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, message)
}

func (m *MockProgressSink) stages() []usecase.ExecutionStage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]usecase.ExecutionStage, len(m.events))
	for i, e := range m.events {
		out[i] = e.Stage
	}
	return out
}

func ether(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1e18))
}

func localContext() models.ChainContext {
	return models.ChainContext{
		Network:             "local",
		ChainID:             31337,
		Sender:              "deployer",
		ConfirmationTimeout: config.DefaultConfirmationTimeout,
	}
}
