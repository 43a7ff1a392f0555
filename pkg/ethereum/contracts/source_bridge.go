package contracts

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// SourceBridgeABI is the minimal event ABI for the source bridge contract.
// Deliberately kept to the one event the relayer consumes so an unrelated
// ABI drift elsewhere in the contract cannot break decoding.
const SourceBridgeABI = `[{"anonymous":false,"inputs":[{"indexed":true,"internalType":"bytes32","name":"transferId","type":"bytes32"},{"indexed":true,"internalType":"address","name":"sender","type":"address"},{"indexed":true,"internalType":"address","name":"recipient","type":"address"},{"indexed":false,"internalType":"uint256","name":"amount","type":"uint256"},{"indexed":false,"internalType":"uint32","name":"dstChainId","type":"uint32"}],"name":"BridgeInitiated","type":"event"}]`

var (
	sourceABI abi.ABI

	// BridgeInitiatedTopic is the topic0 hash of
	// BridgeInitiated(bytes32,address,address,uint256,uint32)
	BridgeInitiatedTopic common.Hash
)

func init() {
	parsed, err := abi.JSON(strings.NewReader(SourceBridgeABI))
	if err != nil {
		panic(fmt.Sprintf("invalid source bridge ABI: %v", err))
	}
	sourceABI = parsed
	BridgeInitiatedTopic = parsed.Events["BridgeInitiated"].ID
}

// BridgeInitiated is the decoded source bridge event
type BridgeInitiated struct {
	TransferID [32]byte
	Sender     common.Address
	Recipient  common.Address
	Amount     *big.Int
	DstChainID uint32
	Raw        types.Log
}

// ParseBridgeInitiated decodes a BridgeInitiated event from a log entry. The
// caller is expected to have matched the emitting address and topic0 already;
// any failure here therefore indicates an ABI mismatch with the deployed
// contract, not a legitimate absence of the event.
func ParseBridgeInitiated(log types.Log) (*BridgeInitiated, error) {
	if len(log.Topics) == 0 || log.Topics[0] != BridgeInitiatedTopic {
		return nil, fmt.Errorf("log topic0 is not BridgeInitiated")
	}
	if len(log.Topics) != 4 {
		return nil, fmt.Errorf("BridgeInitiated expects 4 topics, log has %d", len(log.Topics))
	}

	values, err := sourceABI.Unpack("BridgeInitiated", log.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack BridgeInitiated data: %w", err)
	}
	if len(values) != 2 {
		return nil, fmt.Errorf("BridgeInitiated expects 2 data fields, got %d", len(values))
	}
	amount, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("BridgeInitiated amount is %T, want *big.Int", values[0])
	}
	dstChainID, ok := values[1].(uint32)
	if !ok {
		return nil, fmt.Errorf("BridgeInitiated dstChainId is %T, want uint32", values[1])
	}

	return &BridgeInitiated{
		TransferID: log.Topics[1],
		Sender:     common.BytesToAddress(log.Topics[2].Bytes()),
		Recipient:  common.BytesToAddress(log.Topics[3].Bytes()),
		Amount:     amount,
		DstChainID: dstChainID,
		Raw:        log,
	}, nil
}

// PackBridgeInitiatedData packs the non-indexed event fields into log data
func PackBridgeInitiatedData(amount *big.Int, dstChainID uint32) ([]byte, error) {
	return sourceABI.Events["BridgeInitiated"].Inputs.NonIndexed().Pack(amount, dstChainID)
}
