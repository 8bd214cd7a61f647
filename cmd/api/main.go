package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	pgxvec "github.com/pgvector/pgvector-go/pgx"

	"github.com/diarybot/diarybot/internal/config"
	"github.com/diarybot/diarybot/pkg/database"
)

const shutdownTimeout = 30 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)

		return 1
	}

	setupLogging(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgresPool(ctx, cfg.DatabaseURL,
		database.WithAfterConnect(pgxvec.RegisterTypes),
		database.WithPoolConfig(database.PoolConfig{
			MaxConns:        int32(cfg.DatabaseMaxConns), //nolint:gosec // validated positive and small
			MinConns:        int32(cfg.DatabaseMinConns), //nolint:gosec // validated <= MaxConns
			MaxConnLifetime: cfg.DatabaseMaxConnLifetime,
		}),
	)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)

		return 1
	}
	defer db.Close()

	app, err := NewApp(cfg, db)
	if err != nil {
		slog.Error("Failed to initialize application", "error", err)

		return 1
	}

	runErr := app.Run(ctx)
	if runErr != nil {
		slog.Error("Application stopped with error", "error", runErr)
	}

	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := app.Shutdown(shutdownCtx); err != nil {
		slog.Error("Shutdown failed", "error", err)

		return 1
	}

	slog.Info("Server exited")

	if runErr != nil {
		return 1
	}

	return 0
}

// setupLogging configures slog with the level and format from config.
func setupLogging(level, format string) {
	var logLevel slog.Level

	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: logLevel,
	}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
