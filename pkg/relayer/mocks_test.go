package relayer

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// MockSourceChain is a mock implementation of SourceChain
type MockSourceChain struct {
	BridgeAddressFunc func() common.Address
	AwaitReceiptFunc  func(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

func (m *MockSourceChain) BridgeAddress() common.Address {
	if m.BridgeAddressFunc != nil {
		return m.BridgeAddressFunc()
	}
	return common.Address{}
}

func (m *MockSourceChain) AwaitReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	if m.AwaitReceiptFunc != nil {
		return m.AwaitReceiptFunc(ctx, txHash)
	}
	return nil, nil
}

// MockDestinationChain is a mock implementation of DestinationChain
type MockDestinationChain struct {
	ChainIDFunc      func() uint64
	SubmitMintFunc   func(ctx context.Context, transferID [32]byte, recipient common.Address, amount *big.Int) (common.Hash, error)
	AwaitReceiptFunc func(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	IsProcessedFunc  func(ctx context.Context, transferID [32]byte) (bool, error)
}

func (m *MockDestinationChain) ChainID() uint64 {
	if m.ChainIDFunc != nil {
		return m.ChainIDFunc()
	}
	return 0
}

func (m *MockDestinationChain) SubmitMint(
	ctx context.Context,
	transferID [32]byte,
	recipient common.Address,
	amount *big.Int) (common.Hash, error) {
	if m.SubmitMintFunc != nil {
		return m.SubmitMintFunc(ctx, transferID, recipient, amount)
	}
	return common.Hash{}, nil
}

func (m *MockDestinationChain) AwaitReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	if m.AwaitReceiptFunc != nil {
		return m.AwaitReceiptFunc(ctx, txHash)
	}
	return nil, nil
}

func (m *MockDestinationChain) IsProcessed(ctx context.Context, transferID [32]byte) (bool, error) {
	if m.IsProcessedFunc != nil {
		return m.IsProcessedFunc(ctx, transferID)
	}
	return false, nil
}
