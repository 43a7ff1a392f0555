package relayerdb

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/chainsafe/evm-bridge-relayer/pkg/db/dao"
	mghelper "github.com/chainsafe/evm-bridge-relayer/pkg/pgutil/migrations"
)

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			if err := mghelper.CreateSchema(ctx, db, (*dao.TransferDao)(nil)); err != nil {
				return err
			}
			return mghelper.CreateIndexes(ctx, db, "transfers", "status", "source_tx_hash")
		},
		func(ctx context.Context, db *bun.DB) error {
			return mghelper.DropTables(ctx, db, (*dao.TransferDao)(nil))
		},
	)
}
