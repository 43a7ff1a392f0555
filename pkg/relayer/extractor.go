package relayer

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/chainsafe/evm-bridge-relayer/pkg/ethereum/contracts"
)

// TransferIntent is the cross-chain transfer extracted from a source-chain
// receipt. Produced at most once per valid source transaction.
type TransferIntent struct {
	TransferID [32]byte
	Recipient  common.Address
	Amount     *big.Int
	DstChainID uint32
}

// DecodeError means a log matched the expected emitting address and event
// topic but could not be decoded against the expected schema. This indicates
// an ABI or contract mismatch bug, never a legitimate absence of the event,
// so it is fatal and carries the offending log for diagnostics.
type DecodeError struct {
	Reason string
	Log    types.Log
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// ExtractIntent scans receipt logs in emission order for the BridgeInitiated
// event emitted by bridgeAddress with the given topic0. Returns (nil, nil)
// when no log matches both predicates; the caller decides whether that is
// fatal. The source contract emits the event at most once per transaction;
// more than one match means that invariant broke, and extraction fails loudly
// rather than silently picking one.
func ExtractIntent(receipt *types.Receipt, bridgeAddress common.Address, eventTopic common.Hash) (*TransferIntent, error) {
	var matches []*types.Log
	for _, log := range receipt.Logs {
		if log.Address != bridgeAddress {
			continue
		}
		if len(log.Topics) == 0 || log.Topics[0] != eventTopic {
			continue
		}
		matches = append(matches, log)
	}

	if len(matches) == 0 {
		return nil, nil
	}
	if len(matches) > 1 {
		return nil, &DecodeError{
			Reason: fmt.Sprintf("expected at most one BridgeInitiated log per transaction, found %d", len(matches)),
			Log:    *matches[1],
		}
	}

	event, err := contracts.ParseBridgeInitiated(*matches[0])
	if err != nil {
		return nil, &DecodeError{
			Reason: "topic-matched BridgeInitiated log failed to decode",
			Log:    *matches[0],
			Err:    err,
		}
	}

	return &TransferIntent{
		TransferID: event.TransferID,
		Recipient:  event.Recipient,
		Amount:     event.Amount,
		DstChainID: event.DstChainID,
	}, nil
}

// logSummary renders a compact view of receipt logs for diagnostic payloads,
// enough to tell "wrong contract address" from "wrong event signature" from
// "event absent" without node access.
func logSummary(receipt *types.Receipt) []map[string]any {
	const maxLogs = 30

	logs := receipt.Logs
	if len(logs) > maxLogs {
		logs = logs[:maxLogs]
	}

	brief := make([]map[string]any, 0, len(logs))
	for _, log := range logs {
		entry := map[string]any{
			"address":   log.Address.Hex(),
			"topicsLen": len(log.Topics),
		}
		if len(log.Topics) > 0 {
			entry["topic0"] = log.Topics[0].Hex()
		}
		brief = append(brief, entry)
	}
	return brief
}
