package blockchain

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"log/slog"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/trebuchet-org/treb-sequencer/internal/domain"
	"github.com/trebuchet-org/treb-sequencer/internal/domain/config"
	"github.com/trebuchet-org/treb-sequencer/internal/usecase"
	"golang.org/x/time/rate"
)

// DefaultPollInterval is the minimum time between receipt and block number polls
const DefaultPollInterval = 500 * time.Millisecond

// Backend is the part of an RPC client the chain client uses. *ethclient.Client
// implements it.
type Backend interface {
	bind.ContractBackend
	ChainID(ctx context.Context) (*big.Int, error)
	BlockNumber(ctx context.Context) (uint64, error)
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	Close()
}

// KeyStore returns the signing key of a sender address
type KeyStore interface {
	PrivateKey(address string) (*ecdsa.PrivateKey, error)
}

// Client deploys and calls contracts over JSON-RPC
type Client struct {
	contracts        usecase.ContractRepository
	keys             KeyStore
	log              *slog.Logger
	inclusionTimeout time.Duration
	pollInterval     time.Duration

	mu      sync.Mutex
	backend Backend
	chainID *big.Int
	limiter *rate.Limiter
}

// NewClient creates a new chain client. Connect must be called before use.
func NewClient(cfg *config.RuntimeConfig, contracts usecase.ContractRepository, keys KeyStore, log *slog.Logger) *Client {
	timeout := cfg.ConfirmationTimeout
	if timeout <= 0 {
		timeout = config.DefaultConfirmationTimeout
	}
	return &Client{
		contracts:        contracts,
		keys:             keys,
		log:              log.With("component", "chain"),
		inclusionTimeout: timeout,
		pollInterval:     DefaultPollInterval,
	}
}

// Connect dials the RPC endpoint and reads its chain ID
func (c *Client) Connect(ctx context.Context, rpcURL string) error {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return fmt.Errorf("failed to connect to RPC: %w", err)
	}
	if err := c.Attach(ctx, client); err != nil {
		client.Close()
		return err
	}
	c.log.Debug("connected", "rpc", rpcURL, "chain_id", c.chainID)
	return nil
}

// Attach uses an already connected backend
func (c *Client) Attach(ctx context.Context, backend Backend) error {
	chainID, err := backend.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("failed to get chain ID: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.backend != nil {
		c.backend.Close()
	}
	c.backend = backend
	c.chainID = chainID
	c.limiter = rate.NewLimiter(rate.Every(c.pollInterval), 1)
	return nil
}

// ChainID returns the chain ID of the connected network
func (c *Client) ChainID(ctx context.Context) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.backend == nil {
		return 0, domain.ErrNotConnected
	}
	return c.chainID.Uint64(), nil
}

// ChainIDAt reads the chain ID behind an endpoint without changing the connection
func (c *Client) ChainIDAt(ctx context.Context, rpcURL string) (uint64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return 0, fmt.Errorf("failed to connect to RPC: %w", err)
	}
	defer client.Close()

	chainID, err := client.ChainID(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get chain ID: %w", err)
	}
	return chainID.Uint64(), nil
}

// Close closes the RPC connection
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.backend != nil {
		c.backend.Close()
		c.backend = nil
	}
}

func (c *Client) connection() (Backend, *big.Int, *rate.Limiter, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.backend == nil {
		return nil, nil, nil, domain.ErrNotConnected
	}
	return c.backend, c.chainID, c.limiter, nil
}

// transactor builds signing options for a step transaction
func (c *Client) transactor(ctx context.Context, chainID *big.Int, opts usecase.TxOptions) (*bind.TransactOpts, error) {
	key, err := c.keys.PrivateKey(opts.From)
	if err != nil {
		return nil, err
	}
	auth, err := bind.NewKeyedTransactorWithChainID(key, chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to create transactor: %w", err)
	}
	auth.Context = ctx
	auth.GasLimit = opts.GasLimit
	if opts.Value != nil {
		auth.Value = new(big.Int).Set(opts.Value)
	}
	return auth, nil
}

// Ensure the client implements the interfaces
var (
	_ usecase.ChainClient   = (*Client)(nil)
	_ usecase.ChainIDReader = (*Client)(nil)
	_ Backend               = (*ethclient.Client)(nil)
)
