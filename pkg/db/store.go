package db

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no record exists for a transfer identifier
var ErrNotFound = errors.New("transfer not found")

// Store is the transfer ledger contract. The relay executor is the sole
// writer per transfer identifier for the duration of one relay run; status
// queries and reconciliation read concurrently and must tolerate seeing any
// intermediate state.
type Store interface {
	// CreateTransfer inserts the record, overwriting any previous record
	// with the same transfer identifier.
	CreateTransfer(ctx context.Context, rec *TransferRecord) error
	// GetTransfer retrieves a record by transfer identifier, or ErrNotFound.
	GetTransfer(ctx context.Context, transferID string) (*TransferRecord, error)
	// UpdateTransfer merges the patch into the stored record and returns the
	// result, or ErrNotFound.
	UpdateTransfer(ctx context.Context, transferID string, patch TransferPatch) (*TransferRecord, error)
	// ListTransfers returns the most recently created records, newest first.
	ListTransfers(ctx context.Context, limit int) ([]*TransferRecord, error)
}
