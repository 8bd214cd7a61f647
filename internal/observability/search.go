package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// SearchMetrics records hybrid search outcomes and per-phase latency.
type SearchMetrics interface {
	RecordSearch(ctx context.Context, phase, outcome string)
	RecordFailure(ctx context.Context, kind string)
	RecordPhaseDuration(ctx context.Context, phase string, rows int, duration time.Duration)
}

type searchMetrics struct {
	searches      metric.Int64Counter
	failures      metric.Int64Counter
	phaseDuration metric.Float64Histogram
}

// NewSearchMetrics creates SearchMetrics. Returns (nil, nil) when meter is nil (metrics disabled).
func NewSearchMetrics(meter metric.Meter) (SearchMetrics, error) {
	if meter == nil {
		//nolint:nilnil // intentional: callers use "if metrics != nil" when metrics disabled
		return nil, nil
	}

	searches, err := meter.Int64Counter(
		MetricNameSearches,
		metric.WithDescription("Completed searches by the phase that answered and outcome (results, no_results, failed)"),
	)
	if err != nil {
		return nil, fmt.Errorf("create searches counter: %w", err)
	}

	failures, err := meter.Int64Counter(
		MetricNameSearchFailures,
		metric.WithDescription("Failed searches by failure kind"),
	)
	if err != nil {
		return nil, fmt.Errorf("create search failures counter: %w", err)
	}

	phaseDuration, err := meter.Float64Histogram(
		MetricNameSearchPhaseDuration,
		metric.WithDescription("Duration of one search phase (seconds), labelled by whether it returned rows"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create search phase duration histogram: %w", err)
	}

	return &searchMetrics{searches: searches, failures: failures, phaseDuration: phaseDuration}, nil
}

func (s *searchMetrics) RecordSearch(ctx context.Context, phase, outcome string) {
	s.searches.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrPhase, NormalizePhase(phase)),
		attribute.String(AttrOutcome, NormalizeReason(outcome, allowedSearchOutcomes)),
	))
}

func (s *searchMetrics) RecordFailure(ctx context.Context, kind string) {
	s.failures.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrKind, NormalizeReason(kind, allowedFailureKinds)),
	))
}

func (s *searchMetrics) RecordPhaseDuration(ctx context.Context, phase string, rows int, duration time.Duration) {
	status := "empty"
	if rows > 0 {
		status = "hit"
	}

	s.phaseDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String(AttrPhase, NormalizePhase(phase)),
		attribute.String(AttrStatus, status),
	))
}
