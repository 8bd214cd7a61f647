package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// EmbeddingMetrics records the embedding pipeline (enqueue on create, River worker).
type EmbeddingMetrics interface {
	RecordJobsEnqueued(ctx context.Context, kind string, count int64)
	RecordEnqueueError(ctx context.Context, kind string)
	RecordEnqueueRetry(ctx context.Context)
	RecordEmbeddingOutcome(ctx context.Context, kind, status string, duration time.Duration)
	RecordWorkerError(ctx context.Context, reason string)
}

type embeddingMetrics struct {
	jobsEnqueued  metric.Int64Counter
	enqueueErrors metric.Int64Counter
	enqueueRetry  metric.Int64Counter
	outcomes      metric.Int64Counter
	workerErrors  metric.Int64Counter
	duration      metric.Float64Histogram
}

// NewEmbeddingMetrics creates EmbeddingMetrics. Returns (nil, nil) when meter is nil (metrics disabled).
func NewEmbeddingMetrics(meter metric.Meter) (EmbeddingMetrics, error) {
	if meter == nil {
		//nolint:nilnil // intentional: callers use "if metrics != nil" when metrics disabled
		return nil, nil
	}

	jobsEnqueued, err := meter.Int64Counter(
		MetricNameEmbeddingJobsEnqueued,
		metric.WithDescription("Embedding jobs enqueued by content kind"),
	)
	if err != nil {
		return nil, fmt.Errorf("create embedding jobs enqueued counter: %w", err)
	}

	enqueueErrors, err := meter.Int64Counter(
		MetricNameEmbeddingEnqueueErrs,
		metric.WithDescription("Embedding job enqueue failures by content kind"),
	)
	if err != nil {
		return nil, fmt.Errorf("create embedding enqueue errors counter: %w", err)
	}

	enqueueRetry, err := meter.Int64Counter(
		MetricNameEmbeddingEnqueueRetry,
		metric.WithDescription("Embedding job enqueue attempts retried after a transient error"),
	)
	if err != nil {
		return nil, fmt.Errorf("create embedding enqueue retries counter: %w", err)
	}

	outcomes, err := meter.Int64Counter(
		MetricNameEmbeddingOutcomes,
		metric.WithDescription("Embedding job outcomes by content kind and status"),
	)
	if err != nil {
		return nil, fmt.Errorf("create embedding outcomes counter: %w", err)
	}

	workerErrors, err := meter.Int64Counter(
		MetricNameEmbeddingWorkerErrors,
		metric.WithDescription("Embedding worker errors (get record, provider, update)"),
	)
	if err != nil {
		return nil, fmt.Errorf("create embedding worker errors counter: %w", err)
	}

	duration, err := meter.Float64Histogram(
		MetricNameEmbeddingDuration,
		metric.WithDescription("Embedding job duration (seconds)"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create embedding duration histogram: %w", err)
	}

	return &embeddingMetrics{
		jobsEnqueued:  jobsEnqueued,
		enqueueErrors: enqueueErrors,
		enqueueRetry:  enqueueRetry,
		outcomes:      outcomes,
		workerErrors:  workerErrors,
		duration:      duration,
	}, nil
}

func (e *embeddingMetrics) RecordJobsEnqueued(ctx context.Context, kind string, count int64) {
	e.jobsEnqueued.Add(ctx, count, metric.WithAttributes(attribute.String(AttrKind, NormalizeKind(kind))))
}

func (e *embeddingMetrics) RecordEnqueueError(ctx context.Context, kind string) {
	e.enqueueErrors.Add(ctx, 1, metric.WithAttributes(attribute.String(AttrKind, NormalizeKind(kind))))
}

func (e *embeddingMetrics) RecordEnqueueRetry(ctx context.Context) {
	e.enqueueRetry.Add(ctx, 1)
}

func (e *embeddingMetrics) RecordEmbeddingOutcome(ctx context.Context, kind, status string, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String(AttrKind, NormalizeKind(kind)),
		attribute.String(AttrStatus, NormalizeReason(status, allowedEmbeddingStatuses)),
	)
	e.outcomes.Add(ctx, 1, attrs)
	e.duration.Record(ctx, duration.Seconds(), attrs)
}

func (e *embeddingMetrics) RecordWorkerError(ctx context.Context, reason string) {
	e.workerErrors.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrReason, NormalizeReason(reason, allowedEmbeddingWorkerReasons)),
	))
}
