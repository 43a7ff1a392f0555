package ethereum

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

var (
	// ErrReceiptTimeout means the transaction did not reach the required
	// confirmation depth within the receipt timeout window
	ErrReceiptTimeout = errors.New("timed out waiting for transaction receipt")
	// ErrTxNotFound means the transaction was never observed on the chain
	// before the deadline
	ErrTxNotFound = errors.New("transaction not found")
	// ErrTxReverted means the transaction was mined but reverted
	ErrTxReverted = errors.New("transaction reverted")
)

// receiptBackend is the slice of the eth client used by awaitReceipt
type receiptBackend interface {
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	BlockNumber(ctx context.Context) (uint64, error)
}

// awaitReceipt polls the chain until txHash is mined and has accumulated the
// required confirmation depth, or until the timeout elapses. The bounded
// polling interval keeps the wait from hot-looping; the overall timeout keeps
// it from blocking indefinitely. A transaction never observed before the
// deadline fails with both ErrReceiptTimeout and ErrTxNotFound in the chain,
// one observed but not yet deep enough fails with ErrReceiptTimeout alone.
func awaitReceipt(
	ctx context.Context,
	backend receiptBackend,
	txHash common.Hash,
	confirmations uint64,
	timeout time.Duration,
	pollingInterval time.Duration,
) (*types.Receipt, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(pollingInterval)
	defer ticker.Stop()

	var receipt *types.Receipt
	for {
		if receipt == nil {
			r, err := backend.TransactionReceipt(ctx, txHash)
			switch {
			case err == nil:
				receipt = r
			case errors.Is(err, ethereum.NotFound):
				// not mined yet, keep polling
			case ctx.Err() != nil:
				return nil, fmt.Errorf("%w: %s not mined within %s: %w", ErrReceiptTimeout, txHash.Hex(), timeout, ErrTxNotFound)
			default:
				return nil, fmt.Errorf("failed to fetch receipt for %s: %w", txHash.Hex(), err)
			}
		}

		if receipt != nil {
			head, err := backend.BlockNumber(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil, fmt.Errorf("%w: %s unconfirmed within %s", ErrReceiptTimeout, txHash.Hex(), timeout)
				}
				return nil, fmt.Errorf("failed to fetch head block: %w", err)
			}
			if head+1 >= receipt.BlockNumber.Uint64()+confirmations {
				return receipt, nil
			}
		}

		select {
		case <-ctx.Done():
			if receipt == nil {
				return nil, fmt.Errorf("%w: %s not mined within %s: %w", ErrReceiptTimeout, txHash.Hex(), timeout, ErrTxNotFound)
			}
			return nil, fmt.Errorf("%w: %s unconfirmed within %s", ErrReceiptTimeout, txHash.Hex(), timeout)
		case <-ticker.C:
		}
	}
}
