package service

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"

	"github.com/diarybot/diarybot/internal/observability"
)

const (
	defaultInitialBackoffWhenZero = 500 * time.Millisecond
	backoffMultiplier             = 2
)

// RetryingJobInserter wraps a JobInserter and retries Insert with exponential backoff and
// jitter. Use for transient River/DB errors when enqueueing outside a transaction.
type RetryingJobInserter struct {
	inner          JobInserter
	maxRetries     int
	initialBackoff time.Duration
	maxBackoff     time.Duration
	metrics        observability.EmbeddingMetrics
}

// RetryingJobInserterConfig holds configuration for the retrying inserter.
type RetryingJobInserterConfig struct {
	MaxRetries     int           // Retries after the first attempt (total attempts = 1 + MaxRetries).
	InitialBackoff time.Duration // Doubles each attempt, capped by MaxBackoff.
	MaxBackoff     time.Duration
	Metrics        observability.EmbeddingMetrics
}

// NewRetryingJobInserter returns a JobInserter that retries Insert on error.
func NewRetryingJobInserter(inner JobInserter, cfg RetryingJobInserterConfig) *RetryingJobInserter {
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}

	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = defaultInitialBackoffWhenZero
	}

	if cfg.MaxBackoff < cfg.InitialBackoff {
		cfg.MaxBackoff = cfg.InitialBackoff
	}

	return &RetryingJobInserter{
		inner:          inner,
		maxRetries:     cfg.MaxRetries,
		initialBackoff: cfg.InitialBackoff,
		maxBackoff:     cfg.MaxBackoff,
		metrics:        cfg.Metrics,
	}
}

// Insert calls the inner inserter, retrying up to maxRetries times. Context cancellation during
// backoff aborts with the context error.
func (r *RetryingJobInserter) Insert(
	ctx context.Context, args river.JobArgs, opts *river.InsertOpts,
) (*rivertype.JobInsertResult, error) {
	var lastErr error

	backoff := r.initialBackoff

	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		res, err := r.inner.Insert(ctx, args, opts)
		if err == nil {
			return res, nil
		}

		lastErr = err

		if attempt == r.maxRetries {
			break
		}

		if r.metrics != nil {
			r.metrics.RecordEnqueueRetry(ctx)
		}

		sleep := jitter(backoff)
		slog.WarnContext(ctx, "job enqueue failed, retrying after backoff",
			"job_kind", args.Kind(),
			"attempt", attempt+1,
			"max_attempts", r.maxRetries+1,
			"backoff", sleep,
			"error", err,
		)

		if err := sleepCtx(ctx, sleep); err != nil {
			return nil, err
		}

		backoff = min(backoff*backoffMultiplier, r.maxBackoff)
	}

	return nil, lastErr
}

// jitter returns a duration between 50% and 100% of d.
func jitter(d time.Duration) time.Duration {
	half := d / 2
	if half <= 0 {
		return d
	}

	return half + rand.N(half)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("backoff interrupted: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}

var _ JobInserter = (*RetryingJobInserter)(nil)
