// backfill-embeddings enqueues record_embedding jobs for diary entries, notes and finance
// records whose embedding is NULL. Workers in the API process run the jobs.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	pgxvec "github.com/pgvector/pgvector-go/pgx"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"

	"github.com/diarybot/diarybot/internal/repository"
	"github.com/diarybot/diarybot/internal/service"
	"github.com/diarybot/diarybot/pkg/database"
)

var errDatabaseURLRequired = errors.New("DATABASE_URL is required")

const defaultEmbeddingMaxAttempts = 3

func main() {
	// Load .env for consistency with the main API server (godotenv.Load() there).
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env file", "error", err)
	}

	cmd := NewRootCmd(openBackfiller)
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		slog.Error("Backfill failed", "error", err)
		os.Exit(1)
	}
}

// openBackfiller connects to the database and returns a backfill service backed by an
// insert-only River client. close releases the pool.
func openBackfiller(ctx context.Context) (backfiller, func(), error) {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return nil, nil, errDatabaseURLRequired
	}

	maxAttempts := getEnvAsInt("EMBEDDING_MAX_ATTEMPTS", defaultEmbeddingMaxAttempts)
	if maxAttempts <= 0 {
		maxAttempts = defaultEmbeddingMaxAttempts
	}

	db, err := database.NewPostgresPool(ctx, databaseURL, database.WithAfterConnect(pgxvec.RegisterTypes))
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}

	riverClient, err := river.NewClient(riverpgxv5.New(db), &river.Config{})
	if err != nil {
		db.Close()

		return nil, nil, fmt.Errorf("create River client: %w", err)
	}

	svc := service.NewEmbeddingBackfillService(
		repository.NewEmbeddingsRepository(db),
		riverClient,
		service.EmbeddingsQueueName,
		maxAttempts,
		nil,
	)

	return svc, db.Close, nil
}

func getEnvAsInt(key string, defaultValue int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultValue
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return defaultValue
	}

	return n
}
