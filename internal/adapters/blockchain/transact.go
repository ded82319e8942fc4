package blockchain

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/trebuchet-org/treb-sequencer/internal/adapters/repository/contracts"
	"github.com/trebuchet-org/treb-sequencer/internal/domain"
	"github.com/trebuchet-org/treb-sequencer/internal/domain/models"
	"github.com/trebuchet-org/treb-sequencer/internal/usecase"
)

// DeployContract creates a contract from its artifact and waits for it to be mined
func (c *Client) DeployContract(ctx context.Context, name string, args []any, opts usecase.TxOptions) (*usecase.DeployResult, error) {
	backend, chainID, limiter, err := c.connection()
	if err != nil {
		return nil, err
	}

	contract, err := c.contracts.GetContract(ctx, name)
	if err != nil {
		return nil, err
	}
	if contract.Artifact.Bytecode.NeedsLinking() {
		return nil, fmt.Errorf("contract %s requires library linking, which is not supported", name)
	}
	parsed, err := contracts.ParseABI(contract)
	if err != nil {
		return nil, err
	}

	params, err := coerceArgs(parsed.Constructor.Inputs, args)
	if err != nil {
		return nil, fmt.Errorf("constructor of %s: %w", name, err)
	}

	auth, err := c.transactor(ctx, chainID, opts)
	if err != nil {
		return nil, err
	}

	bytecode := common.FromHex(contract.Artifact.Bytecode.Object)
	address, tx, _, err := bind.DeployContract(auth, *parsed, bytecode, backend, params...)
	if err != nil {
		return nil, fmt.Errorf("failed to deploy %s: %w", name, err)
	}
	c.log.Info("deployment sent", "contract", name, "tx", tx.Hash().Hex(), "address", address.Hex())

	receipt, err := c.waitMined(ctx, backend, limiter, tx)
	if err != nil {
		return nil, err
	}

	return &usecase.DeployResult{
		Address:      address.Hex(),
		Receipt:      *receipt,
		BytecodeHash: crypto.Keccak256Hash(bytecode).Hex(),
	}, nil
}

// CallContract sends a state-mutating method call and waits for it to be mined
func (c *Client) CallContract(ctx context.Context, address, name, method string, args []any, opts usecase.TxOptions) (*models.Receipt, error) {
	backend, chainID, limiter, err := c.connection()
	if err != nil {
		return nil, err
	}
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidAddress, address)
	}

	contract, err := c.contracts.GetContract(ctx, name)
	if err != nil {
		return nil, err
	}
	parsed, err := contracts.ParseABI(contract)
	if err != nil {
		return nil, err
	}

	abiMethod, ok := parsed.Methods[method]
	if !ok {
		return nil, fmt.Errorf("method %s not found in %s ABI", method, name)
	}
	if opts.Value != nil && opts.Value.Sign() > 0 && !abiMethod.IsPayable() {
		return nil, fmt.Errorf("method %s.%s is not payable", name, method)
	}

	params, err := coerceArgs(abiMethod.Inputs, args)
	if err != nil {
		return nil, fmt.Errorf("%s.%s: %w", name, method, err)
	}

	auth, err := c.transactor(ctx, chainID, opts)
	if err != nil {
		return nil, err
	}

	bound := bind.NewBoundContract(common.HexToAddress(address), *parsed, backend, backend, backend)
	tx, err := bound.Transact(auth, method, params...)
	if err != nil {
		return nil, fmt.Errorf("failed to call %s.%s: %w", name, method, err)
	}
	c.log.Info("call sent", "contract", name, "method", method, "tx", tx.Hash().Hex())

	return c.waitMined(ctx, backend, limiter, tx)
}
