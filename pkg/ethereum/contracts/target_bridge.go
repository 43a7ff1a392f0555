package contracts

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// TargetBridgeABI covers the two functions the relayer uses on the
// destination bridge: the authorized mint and the processed flag.
const TargetBridgeABI = `[{"inputs":[{"internalType":"bytes32","name":"transferId","type":"bytes32"},{"internalType":"address","name":"recipient","type":"address"},{"internalType":"uint256","name":"amount","type":"uint256"}],"name":"mintFromSource","outputs":[],"stateMutability":"nonpayable","type":"function"},{"inputs":[{"internalType":"bytes32","name":"","type":"bytes32"}],"name":"processed","outputs":[{"internalType":"bool","name":"","type":"bool"}],"stateMutability":"view","type":"function"}]`

// TargetBridge binds to a deployed target bridge contract instance
type TargetBridge struct {
	address  common.Address
	contract *bind.BoundContract
}

// NewTargetBridge creates a binding to the target bridge at the given address
func NewTargetBridge(address common.Address, backend bind.ContractBackend) (*TargetBridge, error) {
	parsed, err := abi.JSON(strings.NewReader(TargetBridgeABI))
	if err != nil {
		return nil, fmt.Errorf("invalid target bridge ABI: %w", err)
	}
	return &TargetBridge{
		address:  address,
		contract: bind.NewBoundContract(address, parsed, backend, backend, backend),
	}, nil
}

// Address returns the bound contract address
func (t *TargetBridge) Address() common.Address {
	return t.address
}

// Processed reads the destination chain's authoritative flag for whether the
// given transfer identifier has already been minted
func (t *TargetBridge) Processed(opts *bind.CallOpts, transferID [32]byte) (bool, error) {
	var out []interface{}
	if err := t.contract.Call(opts, &out, "processed", transferID); err != nil {
		return false, err
	}
	return *abi.ConvertType(out[0], new(bool)).(*bool), nil
}

// MintFromSource submits the authorized mint for a transfer observed on the
// source chain. The contract rejects a transfer identifier that has already
// been processed, which is what makes relay re-submission safe.
func (t *TargetBridge) MintFromSource(opts *bind.TransactOpts, transferID [32]byte, recipient common.Address, amount *big.Int) (*types.Transaction, error) {
	return t.contract.Transact(opts, "mintFromSource", transferID, recipient, amount)
}
