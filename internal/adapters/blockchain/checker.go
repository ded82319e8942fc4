package blockchain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/trebuchet-org/treb-sequencer/internal/domain"
	"github.com/trebuchet-org/treb-sequencer/internal/domain/models"
	"golang.org/x/time/rate"
)

// chainReader is what receipt and confirmation polling needs from the backend
type chainReader interface {
	BlockNumber(ctx context.Context) (uint64, error)
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// HasCode checks if a contract exists at the given address
func (c *Client) HasCode(ctx context.Context, address string) (bool, error) {
	backend, _, _, err := c.connection()
	if err != nil {
		return false, err
	}
	if !common.IsHexAddress(address) {
		return false, fmt.Errorf("%w: %q", domain.ErrInvalidAddress, address)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	code, err := backend.CodeAt(ctx, common.HexToAddress(address), nil)
	if err != nil {
		return false, fmt.Errorf("failed to check code: %w", err)
	}
	return len(code) > 0, nil
}

// WaitForConfirmations blocks until count blocks are mined on top of the block
// containing txHash, and returns the head block number at that point
func (c *Client) WaitForConfirmations(ctx context.Context, txHash string, count uint64, timeout time.Duration) (uint64, error) {
	backend, _, limiter, err := c.connection()
	if err != nil {
		return 0, err
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return waitForConfirmations(ctx, backend, limiter, common.HexToHash(txHash), count, c.log)
}

// waitMined polls for the receipt of tx until it is mined or the inclusion
// timeout elapses. A reverted transaction is an error wrapping domain.ErrReverted.
func (c *Client) waitMined(ctx context.Context, backend chainReader, limiter *rate.Limiter, tx *types.Transaction) (*models.Receipt, error) {
	ctx, cancel := context.WithTimeout(ctx, c.inclusionTimeout)
	defer cancel()

	for {
		if err := limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: transaction %s not mined within %s", domain.ErrConfirmationTimeout, tx.Hash().Hex(), c.inclusionTimeout)
		}

		receipt, err := backend.TransactionReceipt(ctx, tx.Hash())
		if err != nil {
			if !errors.Is(err, ethereum.NotFound) {
				c.log.Debug("receipt lookup failed, retrying", "tx", tx.Hash().Hex(), "error", err)
			}
			continue
		}

		result := &models.Receipt{
			TxHash:      receipt.TxHash.Hex(),
			BlockNumber: receipt.BlockNumber.Uint64(),
			GasUsed:     receipt.GasUsed,
		}
		if receipt.Status != types.ReceiptStatusSuccessful {
			return result, fmt.Errorf("%w: %s in block %d", domain.ErrReverted, result.TxHash, result.BlockNumber)
		}
		return result, nil
	}
}

// waitForConfirmations polls until the head is count blocks past the block that
// includes txHash. The receipt is looked up on every poll so a transaction that
// is reorganised into another block is tracked there.
func waitForConfirmations(ctx context.Context, reader chainReader, limiter *rate.Limiter, txHash common.Hash, count uint64, log *slog.Logger) (uint64, error) {
	var lastErr error
	for {
		if err := limiter.Wait(ctx); err != nil {
			if lastErr != nil {
				return 0, fmt.Errorf("%w: %d confirmations of %s: %w", domain.ErrConfirmationTimeout, count, txHash.Hex(), lastErr)
			}
			return 0, fmt.Errorf("%w: %d confirmations of %s", domain.ErrConfirmationTimeout, count, txHash.Hex())
		}

		receipt, err := reader.TransactionReceipt(ctx, txHash)
		if err != nil {
			lastErr = err
			continue
		}
		included := receipt.BlockNumber.Uint64()

		head, err := reader.BlockNumber(ctx)
		if err != nil {
			lastErr = err
			continue
		}
		if head >= included+count {
			return head, nil
		}
		log.Debug("waiting for confirmations",
			"tx", txHash.Hex(),
			"included", included,
			"head", head,
			"required", count,
		)
	}
}
