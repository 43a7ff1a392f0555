// Package relayerdb holds the schema migrations for the transfer ledger
// database. Each migration file registers itself in init.
package relayerdb

import (
	"github.com/uptrace/bun/migrate"
)

// Migrations is the ordered collection applied by cmd/relayer/migrate
var Migrations = migrate.NewMigrations()
