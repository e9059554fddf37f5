package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	appsync "github.com/platewise/pos-sync-backend/internal/application/sync"
	"github.com/platewise/pos-sync-backend/internal/application/token"
	"github.com/platewise/pos-sync-backend/internal/cli"
	"github.com/platewise/pos-sync-backend/internal/infrastructure/config"
	"github.com/platewise/pos-sync-backend/internal/infrastructure/logging"
	"github.com/platewise/pos-sync-backend/internal/infrastructure/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	userID := flag.String("user", "", "sync a single user instead of all connections")
	force := flag.Bool("force", false, "ignore the minimum sync interval")
	flag.Parse()

	_ = godotenv.Load()

	cfg := config.LoadOrEnvWithPath(*configPath)
	logger := logging.NewLogger(cfg.Observability.Logging)
	slog.SetDefault(logger)

	repo, err := storage.NewStorage(cfg.Storage.DatabasePath)
	if err != nil {
		logger.Error("failed to open storage", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer repo.Close()

	registry, err := cli.BuildRegistry(cfg, logger)
	if err != nil {
		logger.Error("failed to build provider registry", slog.String("error", err.Error()))
		os.Exit(1)
	}

	refresher := token.NewRefresher(registry, repo, logger)
	orchestrator := appsync.NewOrchestrator(registry, repo, refresher, logger)

	opts := appsync.Options{
		LookbackDays: cfg.Sync.LookbackDays,
		MinInterval:  time.Duration(cfg.Sync.MinIntervalHours) * time.Hour,
	}
	if *force {
		opts.MinInterval = 0
	}

	ctx := context.Background()
	var results []appsync.Result
	if *userID != "" {
		results = orchestrator.SyncUser(ctx, *userID, opts)
	} else {
		results = orchestrator.SyncAll(ctx, opts)
	}

	cli.PrintSyncResults(os.Stdout, results)

	for _, r := range results {
		if r.Status == appsync.StatusError {
			os.Exit(1)
		}
	}
}
