// Package workers provides River job workers (record embedding).
package workers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/riverqueue/river"
	"golang.org/x/time/rate"

	apperrors "github.com/diarybot/diarybot/internal/errors"
	"github.com/diarybot/diarybot/internal/models"
	"github.com/diarybot/diarybot/internal/observability"
	"github.com/diarybot/diarybot/internal/service"
	"github.com/diarybot/diarybot/pkg/embeddings"
)

// RecordEmbeddingTimeout is the max duration of one embedding job, rate limiter wait included.
const RecordEmbeddingTimeout = 30 * time.Second

// recordEmbeddingStore is the minimal repo interface needed by the worker.
type recordEmbeddingStore interface {
	GetEmbeddableText(ctx context.Context, kind models.ContentKind, id uuid.UUID) (string, error)
	SetEmbedding(ctx context.Context, kind models.ContentKind, id uuid.UUID, literal *string) error
}

// RecordEmbeddingWorker embeds one record's text and stores the vector.
type RecordEmbeddingWorker struct {
	river.WorkerDefaults[service.RecordEmbeddingArgs]

	store      recordEmbeddingStore
	embedder   service.EmbeddingClient
	limiter    *rate.Limiter
	dimensions int
	metrics    observability.EmbeddingMetrics
}

// NewRecordEmbeddingWorker creates the worker. limiter and metrics may be nil; dimensions <= 0
// skips the length check.
func NewRecordEmbeddingWorker(
	store recordEmbeddingStore,
	embedder service.EmbeddingClient,
	limiter *rate.Limiter,
	dimensions int,
	metrics observability.EmbeddingMetrics,
) *RecordEmbeddingWorker {
	return &RecordEmbeddingWorker{
		store:      store,
		embedder:   embedder,
		limiter:    limiter,
		dimensions: dimensions,
		metrics:    metrics,
	}
}

// Timeout limits how long a single embedding job can run.
func (w *RecordEmbeddingWorker) Timeout(*river.Job[service.RecordEmbeddingArgs]) time.Duration {
	return RecordEmbeddingTimeout
}

// Work loads the record text, embeds it (or clears the embedding for empty text) and stores
// the result. A missing record completes the job; provider failures are retried until the
// last attempt.
func (w *RecordEmbeddingWorker) Work(ctx context.Context, job *river.Job[service.RecordEmbeddingArgs]) error {
	args := job.Args
	kind := string(args.ContentKind)
	start := time.Now()

	text, err := w.store.GetEmbeddableText(ctx, args.ContentKind, args.RecordID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			w.outcome(ctx, kind, "skipped", start)
			slog.Info("embedding: record gone, skipping",
				"kind", kind,
				"record_id", args.RecordID,
			)

			return nil
		}

		w.workerError(ctx, "get_record_failed")
		w.outcome(ctx, kind, "retry", start)

		return fmt.Errorf("get embeddable text: %w", err)
	}

	if strings.TrimSpace(text) == "" {
		return w.persist(ctx, job, nil, start, "cleared")
	}

	if w.limiter != nil {
		if err := w.limiter.Wait(ctx); err != nil {
			w.workerError(ctx, "rate_limit_wait")
			w.outcome(ctx, kind, "retry", start)

			return fmt.Errorf("embedding rate limiter: %w", err)
		}
	}

	vec, err := w.embedder.CreateEmbedding(ctx, text)
	if err == nil {
		err = embeddings.ValidateResponse(vec, w.dimensions)
	}

	if err != nil {
		return w.providerFailure(ctx, job, err, start)
	}

	literal, err := embeddings.FormatLiteral(vec)
	if err != nil {
		return w.providerFailure(ctx, job, err, start)
	}

	return w.persist(ctx, job, &literal, start, "success")
}

// persist writes literal (nil clears) and records status on success.
func (w *RecordEmbeddingWorker) persist(
	ctx context.Context, job *river.Job[service.RecordEmbeddingArgs], literal *string, start time.Time, status string,
) error {
	args := job.Args
	kind := string(args.ContentKind)

	if err := w.store.SetEmbedding(ctx, args.ContentKind, args.RecordID, literal); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			w.outcome(ctx, kind, "skipped", start)

			return nil
		}

		w.workerError(ctx, "update_failed")
		w.outcome(ctx, kind, "retry", start)

		slog.Error("embedding: set embedding failed",
			"kind", kind,
			"record_id", args.RecordID,
			"error", err,
		)

		return fmt.Errorf("set embedding: %w", err)
	}

	w.outcome(ctx, kind, status, start)
	slog.Info("embedding: stored",
		"kind", kind,
		"record_id", args.RecordID,
		"status", status,
	)

	return nil
}

// providerFailure retries until the last attempt. Malformed vectors are not retried: the same
// text yields the same response.
func (w *RecordEmbeddingWorker) providerFailure(
	ctx context.Context, job *river.Job[service.RecordEmbeddingArgs], err error, start time.Time,
) error {
	args := job.Args
	kind := string(args.ContentKind)
	malformed := errors.Is(err, embeddings.ErrMalformedResponse) ||
		errors.Is(err, embeddings.ErrEmptyVector) ||
		errors.Is(err, embeddings.ErrNonFiniteComponent)
	isLastAttempt := job.Attempt >= job.MaxAttempts

	w.workerError(ctx, "provider_failed")

	if malformed || isLastAttempt {
		w.outcome(ctx, kind, "failed_final", start)
		slog.Error("embedding: provider failed (final)",
			"kind", kind,
			"record_id", args.RecordID,
			"attempt", job.Attempt,
			"error", err,
		)

		if malformed {
			return river.JobCancel(fmt.Errorf("embedding provider: %w", err))
		}

		return nil
	}

	w.outcome(ctx, kind, "retry", start)

	return fmt.Errorf("embedding provider: %w", err)
}

func (w *RecordEmbeddingWorker) outcome(ctx context.Context, kind, status string, start time.Time) {
	if w.metrics != nil {
		w.metrics.RecordEmbeddingOutcome(ctx, kind, status, time.Since(start))
	}
}

func (w *RecordEmbeddingWorker) workerError(ctx context.Context, reason string) {
	if w.metrics != nil {
		w.metrics.RecordWorkerError(ctx, reason)
	}
}
