package relayer

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/chainsafe/evm-bridge-relayer/internal/metrics"
	apperrors "github.com/chainsafe/evm-bridge-relayer/pkg/app/errors"
	"github.com/chainsafe/evm-bridge-relayer/pkg/db"
)

// Status returns the ledger record for a transfer, reconciling it against the
// destination bridge first. If the chain reports the transfer as processed
// but the record has not reached the terminal state (a relay run that died
// between mint confirmation and the final update, or a restart with a fresh
// in-memory ledger that re-created the record as queued), the record is
// ratcheted forward to complete. Reconciliation only ever moves forward; a
// completed record is never re-checked or demoted.
func (p *Processor) Status(ctx context.Context, transferID string) (*db.TransferRecord, error) {
	rec, err := p.store.GetTransfer(ctx, transferID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, apperrors.ResourceNotFoundError(err,
				fmt.Sprintf("unknown transferId %s", transferID))
		}
		metrics.ErrorsTotal.WithLabelValues("ledger", "get").Inc()
		return nil, apperrors.GeneralError(fmt.Errorf("failed to load transfer record: %w", err))
	}

	if rec.Status == db.TransferStatusComplete {
		return rec, nil
	}

	processed, err := p.dest.IsProcessed(ctx, common.HexToHash(transferID))
	if err != nil {
		metrics.ReconciliationsTotal.WithLabelValues("error").Inc()
		return nil, apperrors.DependencyFailureError(err,
			fmt.Sprintf("failed to query destination bridge: %v", err))
	}
	if !processed {
		metrics.ReconciliationsTotal.WithLabelValues("unchanged").Inc()
		return rec, nil
	}

	status := db.TransferStatusComplete
	progress := db.ProgressComplete
	updated, err := p.store.UpdateTransfer(ctx, transferID, db.TransferPatch{
		Status:   &status,
		Progress: &progress,
	})
	if err != nil {
		metrics.ErrorsTotal.WithLabelValues("ledger", "update").Inc()
		return nil, apperrors.GeneralError(fmt.Errorf("failed to reconcile transfer record: %w", err))
	}
	metrics.ReconciliationsTotal.WithLabelValues("advanced").Inc()

	p.logger.Info("Reconciled transfer to complete",
		zap.String("transfer_id", transferID),
		zap.String("previous_status", string(rec.Status)))
	return updated, nil
}

// ListTransfers returns the most recent ledger records, newest first
func (p *Processor) ListTransfers(ctx context.Context, limit int) ([]*db.TransferRecord, error) {
	recs, err := p.store.ListTransfers(ctx, limit)
	if err != nil {
		metrics.ErrorsTotal.WithLabelValues("ledger", "list").Inc()
		return nil, apperrors.GeneralError(fmt.Errorf("failed to list transfer records: %w", err))
	}
	return recs, nil
}
