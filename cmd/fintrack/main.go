package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"fintrack/internal/amqp"
	"fintrack/internal/cache"
	"fintrack/internal/config"
	"fintrack/internal/log"
	apphttp "fintrack/internal/http"
	"fintrack/internal/realtime"
	"fintrack/internal/services"
	"fintrack/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("Starting fintrack")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	// SQLite repository backs every entity store.
	repo, err := storage.NewRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize repository", log.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	// In-memory LRU cache with periodic expired-entry cleanup.
	store := cache.NewMemory(cfg.CacheMaxEntries)
	manager := cache.NewManager()
	manager.Register(store)
	manager.StartCleanup(cfg.CacheCleanupInterval)
	defer manager.Stop()

	// AMQP is optional. Without it reports are never exported and
	// notifications published by worker processes never arrive.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPExportQueue, cfg.AMQPEventExchange)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without export and event fan-out", log.FieldError, err)
			amqpClient = nil
		} else {
			defer amqpClient.Close()
			logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange)
		}
	} else {
		logger.Info("AMQP disabled - report export and cross-process events are off")
	}

	// This process owns the notification log and the SSE connections.
	// Worker processes publish their notifications on the event exchange;
	// the consumer below appends them here and fans them out to the hub.
	hub := realtime.NewHub()

	var exporter services.ReportExporter
	if amqpClient != nil {
		exporter = amqpClient
	}

	notifications := services.NewNotificationService(store, hub)
	expenses := services.NewExpenseService(repo, store)
	transactions := services.NewTransactionService(repo, store)
	budgets := services.NewBudgetService(repo, repo, store, notifications)
	categories := services.NewCategoryService(repo, store)
	reports := services.NewReportService(repo, repo, store, exporter)
	insights := services.NewInsightsService(repo, budgets, repo, store)
	health := services.NewHealthService(repo, repo, store)

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Expenses:      expenses,
		Transactions:  transactions,
		Budgets:       budgets,
		Categories:    categories,
		Reports:       reports,
		Insights:      insights,
		Health:        health,
		Notifications: notifications,
		Hub:           hub,
		Store:         repo,
		Cache:         store,
	})

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	// Graceful shutdown handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if amqpClient != nil {
		go func() {
			err := amqpClient.ConsumeEvents(ctx, func(msg *amqp.EventMessage) error {
				return notifications.HandleEvent(ctx, msg.UserID, msg.Event, msg.Payload)
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Event consumer stopped", log.FieldError, err)
			}
		}()
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		cancel()
	}()

	logger.Info("Starting fintrack server", "port", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
