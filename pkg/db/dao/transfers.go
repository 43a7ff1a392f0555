package dao

import (
	"time"

	"github.com/uptrace/bun"
)

// TransferDao maps directly to the 'transfers' table in PostgreSQL
type TransferDao struct {
	bun.BaseModel `bun:"table:transfers"`

	TransferID   string    `bun:"transfer_id,pk,type:VARCHAR(66)"`
	Status       string    `bun:"status,notnull,type:VARCHAR(16)"`
	Progress     int       `bun:"progress,notnull,default:0"`
	SourceTxHash string    `bun:"source_tx_hash,notnull,type:VARCHAR(66)"`
	TargetTxHash *string   `bun:"target_tx_hash,type:VARCHAR(66)"`
	CreatedAt    time.Time `bun:"created_at,notnull,default:now()"`
	ErrorMessage *string   `bun:"error_message,type:TEXT"`
}
