package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	apphttp "github.com/chainsafe/evm-bridge-relayer/pkg/app/http"
	"github.com/chainsafe/evm-bridge-relayer/pkg/config"
	"github.com/chainsafe/evm-bridge-relayer/pkg/db"
	"github.com/chainsafe/evm-bridge-relayer/pkg/ethereum"
	"github.com/chainsafe/evm-bridge-relayer/pkg/pgutil"
	"github.com/chainsafe/evm-bridge-relayer/pkg/relayer"
)

var (
	configPath = flag.String("config", "config.yaml", "Path to configuration file")
)

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting EVM Bridge Relayer")

	// Initialize transfer ledger
	store, err := newStore(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize transfer ledger", zap.Error(err))
	}

	// Initialize source chain client
	sourceClient, err := ethereum.NewSourceClient(&cfg.Source, logger)
	if err != nil {
		logger.Fatal("Failed to initialize source chain client", zap.Error(err))
	}
	defer sourceClient.Close()

	// Initialize destination chain client
	destClient, err := ethereum.NewDestinationClient(&cfg.Destination, logger)
	if err != nil {
		logger.Fatal("Failed to initialize destination chain client", zap.Error(err))
	}
	defer destClient.Close()

	processor := relayer.NewProcessor(sourceClient, destClient, store, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Server.RequestTimeout))

	// Health check endpoint (liveness)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Metrics endpoint
	if cfg.Monitoring.Enabled {
		r.Handle("/metrics", promhttp.Handler())
		logger.Info("Metrics enabled")
	}

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		relayer.RegisterRoutes(r, processor, logger)
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := apphttp.ServeAndWait(ctx, r, logger, &cfg.Server); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}

	logger.Info("Relayer stopped")
}

// newStore selects the transfer ledger backend from configuration. The
// in-memory ledger forgets everything on restart; status queries repair
// completed transfers from the destination chain's processed flag.
func newStore(cfg *config.Config, logger *zap.Logger) (db.Store, error) {
	switch cfg.Storage.Driver {
	case "postgres":
		bunDB, err := pgutil.ConnectDB(&cfg.Storage.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		logger.Info("Using postgres transfer ledger",
			zap.String("database", cfg.Storage.Database.Database))
		return db.NewPgStore(bunDB), nil
	default:
		logger.Info("Using in-memory transfer ledger")
		return db.NewMemoryStore(), nil
	}
}
