package observability

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// EventMetrics records the in-process record event publisher and the embeddings queue depth.
type EventMetrics interface {
	RecordEventDiscarded(ctx context.Context, eventType string)
	RecordFanOutDuration(ctx context.Context, duration time.Duration, eventType string)
	SetChannelDepth(depth int)
	SetRiverQueueDepth(depth int)
}

type eventMetrics struct {
	eventsDiscarded metric.Int64Counter
	fanOutDuration  metric.Float64Histogram
	channelDepth    atomic.Int64
	riverQueueDepth atomic.Int64
}

// NewEventMetrics creates EventMetrics and registers its gauges. Returns (nil, nil) when meter
// is nil (metrics disabled).
func NewEventMetrics(meter metric.Meter) (EventMetrics, error) {
	if meter == nil {
		//nolint:nilnil // intentional: callers use "if metrics != nil" when metrics disabled
		return nil, nil
	}

	eventsDiscarded, err := meter.Int64Counter(
		MetricNameEventsDiscarded,
		metric.WithDescription("Record events discarded because the publisher channel was full"),
	)
	if err != nil {
		return nil, fmt.Errorf("create events discarded counter: %w", err)
	}

	fanOutDuration, err := meter.Float64Histogram(
		MetricNameFanOutDuration,
		metric.WithDescription("Time to hand one record event to every subscriber (seconds)"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create fan-out duration histogram: %w", err)
	}

	m := &eventMetrics{eventsDiscarded: eventsDiscarded, fanOutDuration: fanOutDuration}

	_, err = meter.Int64ObservableGauge(
		MetricNameEventChannelDepth,
		metric.WithDescription("Record events waiting in the publisher channel"),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			o.Observe(m.channelDepth.Load())

			return nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("create channel depth gauge: %w", err)
	}

	_, err = meter.Int64ObservableGauge(
		MetricNameRiverQueueDepth,
		metric.WithDescription("Embedding jobs available, retryable or scheduled"),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			o.Observe(m.riverQueueDepth.Load())

			return nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("create river queue depth gauge: %w", err)
	}

	return m, nil
}

func (e *eventMetrics) RecordEventDiscarded(ctx context.Context, eventType string) {
	e.eventsDiscarded.Add(ctx, 1, metric.WithAttributes(attribute.String(AttrEventType, NormalizeEventType(eventType))))
}

func (e *eventMetrics) RecordFanOutDuration(ctx context.Context, duration time.Duration, eventType string) {
	e.fanOutDuration.Record(ctx, duration.Seconds(),
		metric.WithAttributes(attribute.String(AttrEventType, NormalizeEventType(eventType))))
}

func (e *eventMetrics) SetChannelDepth(depth int) {
	e.channelDepth.Store(int64(depth))
}

func (e *eventMetrics) SetRiverQueueDepth(depth int) {
	e.riverQueueDepth.Store(int64(depth))
}
