// Package main implements the entry point for the recap API server,
// which periodically generates and emails learning content for every
// customer topic and exposes a small admin surface for operators.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/recapd/recap-api/internal/api"
	"github.com/recapd/recap-api/internal/config"
	"github.com/recapd/recap-api/internal/platform/gemini"
	"github.com/recapd/recap-api/internal/platform/logger"
	"github.com/recapd/recap-api/internal/platform/postgres"
	"github.com/recapd/recap-api/internal/platform/smtp"
	"github.com/recapd/recap-api/internal/task"
)

const (
	dbPingTimeout   = 5 * time.Second
	shutdownTimeout = 10 * time.Second
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("server exited with error: %v", err)
	}
}

// run wires the application together and blocks until shutdown.
func run() error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	appLogger.Info("server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"cron", cfg.Workflow.CronSpec,
		"batch_limit", cfg.Workflow.BatchLimit)

	db, err := openDatabase(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if err := postgres.RunMigrations(db); err != nil {
		return err
	}

	// Stores
	taskStore := postgres.NewPostgresTaskProcessStore(db, appLogger)
	customerStore := postgres.NewPostgresCustomerStore(db, appLogger)
	topicStore := postgres.NewPostgresTopicStore(db, appLogger)
	historyStore := postgres.NewPostgresTopicHistoryStore(db, appLogger)

	// Outbound adapters
	generator, err := gemini.NewContentGenerator(ctx, appLogger, cfg.LLM)
	if err != nil {
		return fmt.Errorf("failed to create content generator: %w", err)
	}
	sender := smtp.NewSender(cfg.SMTP, appLogger)

	// Task engine
	executor := task.NewExecutor(taskStore, appLogger)
	stages := task.DefaultStages(
		task.NewRegenerateTopicHistoryRunner(customerStore, topicStore, historyStore, taskStore, appLogger),
		task.NewGenerateTopicHistoryRunner(topicStore, historyStore, taskStore, generator, appLogger),
		task.NewSendTopicHistoryRunner(historyStore, topicStore, customerStore, sender, appLogger),
		task.NewCloseTopicsRunner(topicStore, historyStore, taskStore, appLogger),
		task.NewProcessFailedTopicsRunner(taskStore, appLogger),
	)
	workflow := task.NewWorkflow(executor, cfg.Workflow.BatchLimit, appLogger, stages...)

	trigger := task.NewTrigger(workflow, appLogger)
	if err := trigger.Start(cfg.Workflow.CronSpec); err != nil {
		return fmt.Errorf("failed to start periodic trigger: %w", err)
	}
	defer trigger.Stop()

	// HTTP server
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           api.NewRouter(trigger, appLogger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLogger.Info("http server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stop:
		appLogger.Info("shutdown signal received", "signal", sig.String())
	case err := <-errCh:
		return fmt.Errorf("http server failed: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("graceful shutdown failed", "error", err)
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	appLogger.Info("server stopped")
	return nil
}

// openDatabase opens the connection pool and verifies connectivity.
func openDatabase(ctx context.Context, url string) (*sql.DB, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, dbPingTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	slog.Info("database connection established")
	return db, nil
}
