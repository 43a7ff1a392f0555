package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/chainsafe/evm-bridge-relayer/pkg/db/dao"
)

// PgStore is the durable Postgres transfer ledger. It satisfies the same
// Store contract as MemoryStore, so ledger state survives relayer restarts
// and the status-query path can scale out.
type PgStore struct {
	db *bun.DB
}

// NewPgStore creates a Postgres-backed transfer ledger
func NewPgStore(db *bun.DB) *PgStore {
	return &PgStore{db: db}
}

func (s *PgStore) CreateTransfer(ctx context.Context, rec *TransferRecord) error {
	model := toTransferDao(rec)

	_, err := s.db.NewInsert().
		Model(model).
		On("CONFLICT (transfer_id) DO UPDATE").
		Set("status = EXCLUDED.status").
		Set("progress = EXCLUDED.progress").
		Set("source_tx_hash = EXCLUDED.source_tx_hash").
		Set("target_tx_hash = EXCLUDED.target_tx_hash").
		Set("created_at = EXCLUDED.created_at").
		Set("error_message = EXCLUDED.error_message").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create transfer: %w", err)
	}
	return nil
}

func (s *PgStore) GetTransfer(ctx context.Context, transferID string) (*TransferRecord, error) {
	model := new(dao.TransferDao)

	err := s.db.NewSelect().
		Model(model).
		Where("transfer_id = ?", transferID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transfer: %w", err)
	}
	return fromTransferDao(model), nil
}

func (s *PgStore) UpdateTransfer(ctx context.Context, transferID string, patch TransferPatch) (*TransferRecord, error) {
	q := s.db.NewUpdate().
		Model((*dao.TransferDao)(nil)).
		Where("transfer_id = ?", transferID)

	touched := false
	if patch.Status != nil {
		q = q.Set("status = ?", string(*patch.Status))
		touched = true
	}
	if patch.Progress != nil {
		q = q.Set("progress = ?", *patch.Progress)
		touched = true
	}
	if patch.TargetTxHash != nil {
		q = q.Set("target_tx_hash = ?", *patch.TargetTxHash)
		touched = true
	}
	if patch.Error != nil {
		q = q.Set("error_message = ?", *patch.Error)
		touched = true
	}

	if touched {
		res, err := q.Exec(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to update transfer: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return nil, ErrNotFound
		}
	}

	return s.GetTransfer(ctx, transferID)
}

func (s *PgStore) ListTransfers(ctx context.Context, limit int) ([]*TransferRecord, error) {
	var models []*dao.TransferDao

	err := s.db.NewSelect().
		Model(&models).
		Order("created_at DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list transfers: %w", err)
	}

	out := make([]*TransferRecord, 0, len(models))
	for _, m := range models {
		out = append(out, fromTransferDao(m))
	}
	return out, nil
}

func toTransferDao(rec *TransferRecord) *dao.TransferDao {
	model := &dao.TransferDao{
		TransferID:   rec.TransferID,
		Status:       string(rec.Status),
		Progress:     rec.Progress,
		SourceTxHash: rec.SourceTxHash,
		CreatedAt:    rec.CreatedAt,
	}
	if rec.TargetTxHash != "" {
		hash := rec.TargetTxHash
		model.TargetTxHash = &hash
	}
	if rec.Error != "" {
		msg := rec.Error
		model.ErrorMessage = &msg
	}
	return model
}

func fromTransferDao(model *dao.TransferDao) *TransferRecord {
	rec := &TransferRecord{
		TransferID:   model.TransferID,
		Status:       TransferStatus(model.Status),
		Progress:     model.Progress,
		SourceTxHash: model.SourceTxHash,
		CreatedAt:    model.CreatedAt,
	}
	if model.TargetTxHash != nil {
		rec.TargetTxHash = *model.TargetTxHash
	}
	if model.ErrorMessage != nil {
		rec.Error = *model.ErrorMessage
	}
	return rec
}
