package relayer

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/chainsafe/evm-bridge-relayer/internal/metrics"
	apperrors "github.com/chainsafe/evm-bridge-relayer/pkg/app/errors"
	"github.com/chainsafe/evm-bridge-relayer/pkg/db"
	"github.com/chainsafe/evm-bridge-relayer/pkg/ethereum/contracts"
)

// tokenDecimals is used only to render the transfer amount metric in whole
// token units
const tokenDecimals = 18

// SourceChain is the interface for source chain reads
type SourceChain interface {
	// BridgeAddress returns the source bridge contract address
	BridgeAddress() common.Address
	// AwaitReceipt waits for a confirmed receipt of the given transaction
	AwaitReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// DestinationChain is the interface for destination chain reads and writes
type DestinationChain interface {
	// ChainID returns the destination chain id accepted by this relayer
	ChainID() uint64
	// SubmitMint submits the mint-with-authorization transaction
	SubmitMint(ctx context.Context, transferID [32]byte, recipient common.Address, amount *big.Int) (common.Hash, error)
	// AwaitReceipt waits for a confirmed receipt of the given transaction
	AwaitReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	// IsProcessed reads the bridge's processed flag for a transfer identifier
	IsProcessed(ctx context.Context, transferID [32]byte) (bool, error)
}

// Processor drives a transfer through its state machine: extract the intent
// from the source receipt, record it, mint on the destination chain, wait for
// confirmation, and advance the ledger record at each step.
type Processor struct {
	source SourceChain
	dest   DestinationChain
	store  db.Store
	logger *zap.Logger
}

// NewProcessor creates a new relay processor
func NewProcessor(source SourceChain, dest DestinationChain, store db.Store, logger *zap.Logger) *Processor {
	return &Processor{
		source: source,
		dest:   dest,
		store:  store,
		logger: logger,
	}
}

// Relay runs one relay end to end for the given source transaction. Steps are
// strictly sequential; there is no cancellation once accepted and no rollback
// of a submitted-but-unconfirmed mint. Repeated submission of the same source
// transaction re-runs the full flow and re-attempts the mint, which the
// target contract rejects if the transfer was already processed.
func (p *Processor) Relay(ctx context.Context, sourceTxHash common.Hash) (*db.TransferRecord, error) {
	start := time.Now()
	logger := p.logger.With(
		zap.String("run_id", uuid.NewString()),
		zap.String("source_tx_hash", sourceTxHash.Hex()))

	rec, err := p.relay(ctx, logger, sourceTxHash)
	if err != nil {
		metrics.RelaysTotal.WithLabelValues("failed").Inc()
		logger.Error("Relay failed", zap.Error(err))
		return nil, err
	}

	metrics.RelaysTotal.WithLabelValues("complete").Inc()
	metrics.RelayDuration.Observe(time.Since(start).Seconds())

	logger.Info("Relay complete",
		zap.String("transfer_id", rec.TransferID),
		zap.String("target_tx_hash", rec.TargetTxHash),
		zap.Duration("duration", time.Since(start)))
	return rec, nil
}

func (p *Processor) relay(ctx context.Context, logger *zap.Logger, sourceTxHash common.Hash) (*db.TransferRecord, error) {
	receipt, err := p.source.AwaitReceipt(ctx, sourceTxHash)
	if err != nil {
		metrics.ErrorsTotal.WithLabelValues("receipt_fetcher", "upstream").Inc()
		return nil, apperrors.DependencyFailureError(err,
			fmt.Sprintf("failed to fetch source receipt: %v", err))
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		metrics.ErrorsTotal.WithLabelValues("receipt_fetcher", "reverted").Inc()
		return nil, apperrors.DependencyFailureError(nil,
			fmt.Sprintf("source transaction %s reverted", sourceTxHash.Hex()))
	}

	bridgeAddress := p.source.BridgeAddress()
	intent, err := ExtractIntent(receipt, bridgeAddress, contracts.BridgeInitiatedTopic)
	if err != nil {
		metrics.ErrorsTotal.WithLabelValues("extractor", "decode").Inc()
		return nil, apperrors.ConfigMismatchError(err, err.Error(), map[string]any{
			"expectedAddress": bridgeAddress.Hex(),
			"expectedTopic0":  contracts.BridgeInitiatedTopic.Hex(),
			"logsBrief":       logSummary(receipt),
		})
	}
	if intent == nil {
		metrics.ErrorsTotal.WithLabelValues("extractor", "event_absent").Inc()
		return nil, apperrors.ConfigMismatchError(nil,
			"BridgeInitiated event not found in source receipt (contract address, event signature, or chain may be wrong)",
			map[string]any{
				"expectedAddress": bridgeAddress.Hex(),
				"expectedTopic0":  contracts.BridgeInitiatedTopic.Hex(),
				"receiptStatus":   receipt.Status,
				"logsBrief":       logSummary(receipt),
			})
	}

	// Chain-id mismatch rejects the request before any ledger record exists
	if want := p.dest.ChainID(); uint64(intent.DstChainID) != want {
		metrics.ErrorsTotal.WithLabelValues("extractor", "chain_mismatch").Inc()
		return nil, apperrors.ConfigMismatchError(nil,
			fmt.Sprintf("dstChainId mismatch: expected %d, got %d", want, intent.DstChainID), nil)
	}

	transferID := common.Hash(intent.TransferID).Hex()
	logger = logger.With(zap.String("transfer_id", transferID))

	rec := &db.TransferRecord{
		TransferID:   transferID,
		Status:       db.TransferStatusQueued,
		Progress:     db.ProgressQueued,
		SourceTxHash: sourceTxHash.Hex(),
		CreatedAt:    time.Now().UTC(),
	}
	if err := p.store.CreateTransfer(ctx, rec); err != nil {
		metrics.ErrorsTotal.WithLabelValues("ledger", "create").Inc()
		return nil, apperrors.GeneralError(fmt.Errorf("failed to create transfer record: %w", err))
	}

	logger.Info("Processing transfer",
		zap.String("recipient", intent.Recipient.Hex()),
		zap.String("amount", intent.Amount.String()),
		zap.Uint32("dst_chain_id", intent.DstChainID))

	// Inflight before the submission returns: progress reflects "submission
	// attempted", giving the user early feedback while the call is in the
	// RPC pipe.
	if err := p.advance(ctx, transferID, db.TransferStatusInflight, db.ProgressInflight); err != nil {
		return nil, err
	}

	targetTxHash, err := p.dest.SubmitMint(ctx, intent.TransferID, intent.Recipient, intent.Amount)
	if err != nil {
		metrics.TransactionsSent.WithLabelValues("failed").Inc()
		p.fail(ctx, logger, transferID, err)
		return nil, apperrors.DependencyFailureError(err,
			fmt.Sprintf("failed to submit mint transaction: %v", err))
	}
	metrics.TransactionsSent.WithLabelValues("submitted").Inc()

	hash := targetTxHash.Hex()
	if _, err := p.store.UpdateTransfer(ctx, transferID, db.TransferPatch{TargetTxHash: &hash}); err != nil {
		metrics.ErrorsTotal.WithLabelValues("ledger", "update").Inc()
		return nil, apperrors.GeneralError(fmt.Errorf("failed to record mint transaction hash: %w", err))
	}

	mintReceipt, err := p.dest.AwaitReceipt(ctx, targetTxHash)
	if err != nil {
		p.fail(ctx, logger, transferID, err)
		return nil, apperrors.DependencyFailureError(err,
			fmt.Sprintf("failed to confirm mint transaction: %v", err))
	}
	if mintReceipt.Status != types.ReceiptStatusSuccessful {
		err := fmt.Errorf("mint transaction %s reverted", hash)
		p.fail(ctx, logger, transferID, err)
		return nil, apperrors.DependencyFailureError(err, err.Error())
	}

	if err := p.advance(ctx, transferID, db.TransferStatusComplete, db.ProgressComplete); err != nil {
		return nil, err
	}

	metrics.TransferAmount.Observe(decimal.NewFromBigInt(intent.Amount, -tokenDecimals).InexactFloat64())

	return p.store.GetTransfer(ctx, transferID)
}

func (p *Processor) advance(ctx context.Context, transferID string, status db.TransferStatus, progress int) error {
	_, err := p.store.UpdateTransfer(ctx, transferID, db.TransferPatch{
		Status:   &status,
		Progress: &progress,
	})
	if err != nil {
		metrics.ErrorsTotal.WithLabelValues("ledger", "update").Inc()
		return apperrors.GeneralError(fmt.Errorf("failed to advance transfer to %s: %w", status, err))
	}
	return nil
}

// fail flips an already-created record to the failed absorbing state with the
// failure description, so a poller is not left staring at a stuck queued or
// inflight record. The caller still surfaces the original error.
func (p *Processor) fail(ctx context.Context, logger *zap.Logger, transferID string, cause error) {
	status := db.TransferStatusFailed
	msg := cause.Error()
	if _, err := p.store.UpdateTransfer(ctx, transferID, db.TransferPatch{
		Status: &status,
		Error:  &msg,
	}); err != nil {
		logger.Error("Failed to mark transfer failed", zap.Error(err))
	}
}
