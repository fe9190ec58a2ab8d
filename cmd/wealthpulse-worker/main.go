package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"wealthpulse/internal/amqp"
	"wealthpulse/internal/config"
	"wealthpulse/internal/export"
	gsheet "wealthpulse/internal/export/google"
	exportmem "wealthpulse/internal/export/memory"
	applog "wealthpulse/internal/log"
	"wealthpulse/internal/storage"
	"wealthpulse/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.Config{Component: "worker"})
	applog.SetDefault(logger)

	logger.Info("Starting wealthpulse-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The worker rehydrates events from SQLite regardless of the API's
	// configured backend; events from a memory-backed API have nothing to
	// rehydrate and are dropped.
	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	var writer export.ExpenseWriter
	if cfg.GoogleSpreadsheetID != "" {
		client, err := gsheet.NewClient(ctx, gsheet.Config{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			SheetName:       cfg.GoogleSheetName,
			CredentialsJSON: cfg.GoogleCredentialsJSON,
			CredentialsFile: cfg.GoogleCredentialsFile,
		})
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		writer = client
		logger.Info("Google Sheets export enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		writer = exportmem.New()
		logger.Info("Google Sheets disabled, using in-memory export ledger")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	syncWorker := worker.NewSyncWorker(repo, writer, cfg.SyncBatchSize)

	// Drain any backlog accumulated while the worker was down.
	if err := syncWorker.ProcessPending(ctx); err != nil {
		logger.Error("Startup backlog export failed", "error", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return syncWorker.Run(ctx, amqpClient)
	})
	g.Go(func() error {
		return syncWorker.RunSweep(ctx, cfg.SyncInterval)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
