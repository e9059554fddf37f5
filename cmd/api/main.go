package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/platewise/pos-sync-backend/internal/api"
	"github.com/platewise/pos-sync-backend/internal/application/connect"
	appsync "github.com/platewise/pos-sync-backend/internal/application/sync"
	"github.com/platewise/pos-sync-backend/internal/application/token"
	"github.com/platewise/pos-sync-backend/internal/cli"
	"github.com/platewise/pos-sync-backend/internal/infrastructure/config"
	"github.com/platewise/pos-sync-backend/internal/infrastructure/logging"
	"github.com/platewise/pos-sync-backend/internal/infrastructure/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	// Optional; real deployments set env vars directly.
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

	connector := connect.NewConnector(registry, repo, logger)
	refresher := token.NewRefresher(registry, repo, logger)
	orchestrator := appsync.NewOrchestrator(registry, repo, refresher, logger)

	server := api.NewServer(api.Deps{
		Config:       cfg,
		Registry:     registry,
		Repo:         repo,
		Connector:    connector,
		Refresher:    refresher,
		Orchestrator: orchestrator,
		Logger:       logger,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case sig := <-stop:
		logger.Info("received signal", slog.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("shutdown failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}
}
