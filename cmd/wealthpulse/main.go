package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"wealthpulse/internal/amqp"
	"wealthpulse/internal/chat"
	"wealthpulse/internal/config"
	"wealthpulse/internal/core"
	apphttp "wealthpulse/internal/http"
	applog "wealthpulse/internal/log"
	"wealthpulse/internal/storage"
	"wealthpulse/internal/store"
	"wealthpulse/internal/store/memory"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.Config{Component: "api"})
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	defaultUser := core.User{
		Username:      cfg.DefaultUsername,
		Currency:      cfg.DefaultCurrency,
		MonthlyBudget: core.Money{Cents: cfg.DefaultMonthlyBudgetCents},
	}

	var st store.Store
	switch cfg.DataBackend {
	case "sqlite":
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
			os.Exit(1)
		}
		defer repo.Close()

		userID, err := repo.EnsureUser(context.Background(), defaultUser)
		if err != nil {
			logger.Error("Failed to ensure default user", "error", err)
			os.Exit(1)
		}
		logger.Info("Initialized SQLite backend", "path", cfg.SQLiteDBPath, "default_user_id", userID)
		st = repo
	default:
		mem := memory.New()
		defaultUser.ID = 1
		mem.SeedUser(defaultUser)
		logger.Info("Initialized memory backend", "default_user", defaultUser.Username)
		st = mem
	}

	// Eventing is best effort: a broker outage should not keep the API down.
	var publisher apphttp.EventPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, expense events disabled", "error", err)
		} else {
			defer client.Close()
			publisher = client
			logger.Info("AMQP publisher connected", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	dispatcher := chat.NewDispatcher(st, logger)
	srv := apphttp.NewServer(apphttp.Options{
		Port:             cfg.Port,
		ChatHistoryLimit: cfg.ChatHistoryLimit,
	}, st, dispatcher, publisher, logger)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
	}()

	if err := srv.Start(); err != nil {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
