package main

import (
	"flag"
	"log"

	"github.com/uptrace/bun/migrate"

	"github.com/chainsafe/evm-bridge-relayer/pkg/config"
	"github.com/chainsafe/evm-bridge-relayer/pkg/migrations/relayerdb"
	"github.com/chainsafe/evm-bridge-relayer/pkg/pgutil"
	mghelper "github.com/chainsafe/evm-bridge-relayer/pkg/pgutil/migrations"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "Path to configuration file")
	flag.Usage = mghelper.Usage
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("error reading configuration file: %s", err.Error())
	}

	db, err := pgutil.ConnectDB(&cfg.Storage.Database)
	if err != nil {
		log.Fatalf("failed to connect to database %s: %s", cfg.Storage.Database.Database, err.Error())
	}
	defer db.Close()

	log.Printf("Running migrations for relayer database (%s)...\n", cfg.Storage.Database.Database)

	migrator := migrate.NewMigrator(db, relayerdb.Migrations)
	if err := mghelper.RunMigrations(migrator, flag.Args()...); err != nil {
		mghelper.Exitf(err.Error())
	}
}
