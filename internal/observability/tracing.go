package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/diarybot/diarybot/internal/config"
)

// NewTracerProvider creates a TracerProvider for cfg.OtelTracesExporter ("otlp" or "stdout").
// Empty or unknown values disable tracing and return (nil, nil).
func NewTracerProvider(cfg *config.Config) (*sdktrace.TracerProvider, error) {
	if cfg == nil {
		//nolint:nilnil // tracing disabled, caller checks for nil
		return nil, nil
	}

	exp, err := newSpanExporter(context.Background(), cfg.OtelTracesExporter)
	if err != nil || exp == nil {
		return nil, err
	}

	res, err := newResource()
	if err != nil {
		_ = exp.Shutdown(context.Background())

		return nil, fmt.Errorf("create resource: %w", err)
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(newSampler()),
		sdktrace.WithBatcher(exp),
	), nil
}

// newSpanExporter returns nil for exporter names other than "otlp" and "stdout".
// The OTLP exporter reads OTEL_EXPORTER_OTLP_ENDPOINT and friends from the environment.
func newSpanExporter(ctx context.Context, name string) (sdktrace.SpanExporter, error) {
	switch name {
	case "otlp":
		exp, err := otlptracehttp.New(ctx)
		if err != nil {
			return nil, fmt.Errorf("create OTLP HTTP trace exporter: %w", err)
		}

		return exp, nil
	case "stdout":
		exp, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("create stdout trace exporter: %w", err)
		}

		return exp, nil
	default:
		//nolint:nilnil // unknown exporter: tracing disabled
		return nil, nil
	}
}

// ShutdownTracerProvider flushes and shuts down the TracerProvider. Safe to call with nil.
func ShutdownTracerProvider(ctx context.Context, provider *sdktrace.TracerProvider) error {
	if provider == nil {
		return nil
	}

	if err := provider.Shutdown(ctx); err != nil {
		return fmt.Errorf("tracer provider shutdown: %w", err)
	}

	return nil
}
