package observability

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"

	"github.com/diarybot/diarybot/internal/config"
)

const (
	// MeterScope is the instrumentation scope for every diarybot instrument.
	MeterScope = "github.com/diarybot/diarybot"

	serviceName      = "diarybot-api"
	cardinalityLimit = 2000
)

// durationHistogramBounds are second-based buckets. Search phases are expected well under a
// second; embedding calls can take several.
var durationHistogramBounds = []float64{0, 0.005, 0.01, 0.025, 0.05, 0.075, 0.1, 0.25, 0.5, 0.75, 1, 2.5, 5, 7.5, 10}

// newResource adds service.name to the SDK default resource. The service attributes carry no
// schema URL so the merge never conflicts with the schema the SDK version ships.
func newResource() (*resource.Resource, error) {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(semconv.ServiceName(serviceName)),
	)
	if err != nil {
		return nil, fmt.Errorf("merge resource: %w", err)
	}

	return res, nil
}

// NewMeterProvider creates a MeterProvider for cfg.OtelMetricsExporter:
//   - "otlp": periodic push to OTEL_EXPORTER_OTLP_ENDPOINT; the returned handler is nil.
//   - "prometheus": pull; the returned handler serves /metrics.
//
// Any other value disables metrics and returns (nil, nil, nil).
func NewMeterProvider(cfg *config.Config) (*sdkmetric.MeterProvider, http.Handler, error) {
	if cfg == nil {
		return nil, nil, nil
	}

	var (
		reader  sdkmetric.Reader
		handler http.Handler
	)

	switch cfg.OtelMetricsExporter {
	case "otlp":
		exp, err := otlpmetrichttp.New(context.Background())
		if err != nil {
			return nil, nil, fmt.Errorf("create OTLP metric exporter: %w", err)
		}

		const metricExportInterval = 60 * time.Second

		reader = sdkmetric.NewPeriodicReader(exp, sdkmetric.WithInterval(metricExportInterval))
	case "prometheus":
		r, h, err := newPrometheusReader()
		if err != nil {
			return nil, nil, err
		}

		reader, handler = r, h
	default:
		return nil, nil, nil
	}

	res, err := newResource()
	if err != nil {
		return nil, nil, fmt.Errorf("create resource: %w", err)
	}

	view := sdkmetric.NewView(
		sdkmetric.Instrument{Name: "diarybot_*_duration_seconds"},
		sdkmetric.Stream{Aggregation: sdkmetric.AggregationExplicitBucketHistogram{Boundaries: durationHistogramBounds}},
	)

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
		sdkmetric.WithView(view),
		sdkmetric.WithCardinalityLimit(cardinalityLimit),
	)

	return provider, handler, nil
}

// ShutdownMeterProvider flushes and shuts down the MeterProvider. Safe to call with nil.
func ShutdownMeterProvider(ctx context.Context, provider *sdkmetric.MeterProvider) error {
	if provider == nil {
		return nil
	}

	if err := provider.Shutdown(ctx); err != nil {
		return fmt.Errorf("meter provider shutdown: %w", err)
	}

	return nil
}
