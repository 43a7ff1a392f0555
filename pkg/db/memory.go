package db

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is the in-process transfer ledger. State is lost on restart;
// the status reconciler repairs completed-but-forgotten transfers from the
// destination chain's processed flag.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*TransferRecord
}

// NewMemoryStore creates an empty in-memory ledger
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*TransferRecord),
	}
}

func (s *MemoryStore) CreateTransfer(_ context.Context, rec *TransferRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *rec
	s.records[rec.TransferID] = &clone
	return nil
}

func (s *MemoryStore) GetTransfer(_ context.Context, transferID string) (*TransferRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[transferID]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *rec
	return &clone, nil
}

func (s *MemoryStore) UpdateTransfer(_ context.Context, transferID string, patch TransferPatch) (*TransferRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[transferID]
	if !ok {
		return nil, ErrNotFound
	}
	patch.Apply(rec)
	clone := *rec
	return &clone, nil
}

func (s *MemoryStore) ListTransfers(_ context.Context, limit int) ([]*TransferRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*TransferRecord, 0, len(s.records))
	for _, rec := range s.records {
		clone := *rec
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
