package ethereum

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	goethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	receiptFunc func(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	headFunc    func(ctx context.Context) (uint64, error)
}

func (f *fakeBackend) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	return f.receiptFunc(ctx, txHash)
}

func (f *fakeBackend) BlockNumber(ctx context.Context) (uint64, error) {
	if f.headFunc != nil {
		return f.headFunc(ctx)
	}
	return 0, nil
}

var testTxHash = common.HexToHash("0xdddddddddddddddddddddddddddddddddddddddddddddddddddddddddddddddd")

func TestAwaitReceiptFoundAfterPolling(t *testing.T) {
	minedReceipt := &types.Receipt{
		Status:      types.ReceiptStatusSuccessful,
		BlockNumber: big.NewInt(100),
	}

	calls := 0
	backend := &fakeBackend{
		receiptFunc: func(context.Context, common.Hash) (*types.Receipt, error) {
			calls++
			if calls < 3 {
				return nil, goethereum.NotFound
			}
			return minedReceipt, nil
		},
		headFunc: func(context.Context) (uint64, error) {
			return 100, nil
		},
	}

	receipt, err := awaitReceipt(context.Background(), backend, testTxHash, 1, time.Second, time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, minedReceipt, receipt)
	assert.Equal(t, 3, calls)
}

func TestAwaitReceiptNeverMined(t *testing.T) {
	backend := &fakeBackend{
		receiptFunc: func(context.Context, common.Hash) (*types.Receipt, error) {
			return nil, goethereum.NotFound
		},
	}

	_, err := awaitReceipt(context.Background(), backend, testTxHash, 1, 20*time.Millisecond, time.Millisecond)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrReceiptTimeout)
	assert.ErrorIs(t, err, ErrTxNotFound)
}

func TestAwaitReceiptMinedButUnconfirmed(t *testing.T) {
	backend := &fakeBackend{
		receiptFunc: func(context.Context, common.Hash) (*types.Receipt, error) {
			return &types.Receipt{
				Status:      types.ReceiptStatusSuccessful,
				BlockNumber: big.NewInt(100),
			}, nil
		},
		headFunc: func(context.Context) (uint64, error) {
			return 100, nil // one confirmation short of the three required
		},
	}

	_, err := awaitReceipt(context.Background(), backend, testTxHash, 3, 20*time.Millisecond, time.Millisecond)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrReceiptTimeout)
	assert.NotErrorIs(t, err, ErrTxNotFound)
}

func TestAwaitReceiptConfirmationDepth(t *testing.T) {
	head := uint64(100)
	backend := &fakeBackend{
		receiptFunc: func(context.Context, common.Hash) (*types.Receipt, error) {
			return &types.Receipt{
				Status:      types.ReceiptStatusSuccessful,
				BlockNumber: big.NewInt(100),
			}, nil
		},
		headFunc: func(context.Context) (uint64, error) {
			head++
			return head, nil
		},
	}

	receipt, err := awaitReceipt(context.Background(), backend, testTxHash, 3, time.Second, time.Millisecond)
	require.NoError(t, err)
	assert.NotNil(t, receipt)
	// head advanced until the mined block had three confirmations
	assert.GreaterOrEqual(t, head, uint64(102))
}

func TestAwaitReceiptUpstreamFailure(t *testing.T) {
	rpcErr := errors.New("connection reset")
	backend := &fakeBackend{
		receiptFunc: func(context.Context, common.Hash) (*types.Receipt, error) {
			return nil, rpcErr
		},
	}

	_, err := awaitReceipt(context.Background(), backend, testTxHash, 1, time.Second, time.Millisecond)
	require.Error(t, err)
	assert.ErrorIs(t, err, rpcErr)
	assert.NotErrorIs(t, err, ErrReceiptTimeout)
}

func TestAwaitReceiptHonorsCallerCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	backend := &fakeBackend{
		receiptFunc: func(ctx context.Context, _ common.Hash) (*types.Receipt, error) {
			return nil, ctx.Err()
		},
	}

	_, err := awaitReceipt(ctx, backend, testTxHash, 1, time.Second, time.Millisecond)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrReceiptTimeout)
}
