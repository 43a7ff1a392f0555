package db

import (
	"time"
)

// TransferStatus represents the current state of a cross-chain transfer
type TransferStatus string

const (
	TransferStatusQueued   TransferStatus = "queued"
	TransferStatusInflight TransferStatus = "inflight"
	TransferStatusComplete TransferStatus = "complete"
	TransferStatusFailed   TransferStatus = "failed"
)

// Progress milestones reported to polling clients. They are UI hints derived
// from the state machine, not correctness signals: 70 means "mint submission
// attempted", not "mint confirmed".
const (
	ProgressQueued   = 30
	ProgressInflight = 70
	ProgressComplete = 100
)

// TransferRecord is the lifecycle record of one cross-chain transfer, keyed
// by the transfer identifier emitted by the source bridge contract.
// TransferID, SourceTxHash and CreatedAt are immutable once set; TargetTxHash
// is set once known and never cleared.
type TransferRecord struct {
	TransferID   string         `json:"transferId"`
	Status       TransferStatus `json:"status"`
	Progress     int            `json:"progress"`
	SourceTxHash string         `json:"sourceTxHash"`
	TargetTxHash string         `json:"targetTxHash,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
	Error        string         `json:"error,omitempty"`
}

// TransferPatch is a partial update of the mutable TransferRecord fields.
// Immutable fields are deliberately absent so callers cannot touch them.
type TransferPatch struct {
	Status       *TransferStatus
	Progress     *int
	TargetTxHash *string
	Error        *string
}

// Apply merges the patch into rec
func (p TransferPatch) Apply(rec *TransferRecord) {
	if p.Status != nil {
		rec.Status = *p.Status
	}
	if p.Progress != nil {
		rec.Progress = *p.Progress
	}
	if p.TargetTxHash != nil {
		rec.TargetTxHash = *p.TargetTxHash
	}
	if p.Error != nil {
		rec.Error = *p.Error
	}
}
