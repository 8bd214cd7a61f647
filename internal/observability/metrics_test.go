package observability

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/diarybot/diarybot/internal/config"
)

func newTestMeter(t *testing.T) (*sdkmetric.ManualReader, *Metrics) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	m, err := NewMetrics(provider.Meter(MeterScope))
	require.NoError(t, err)
	require.NotNil(t, m)

	return reader, m
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Metrics)

	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}

	return out
}

func TestNewMetrics_NilMeter(t *testing.T) {
	m, err := NewMetrics(nil)
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestSearchMetrics_Record(t *testing.T) {
	reader, m := newTestMeter(t)
	ctx := context.Background()

	m.Search.RecordSearch(ctx, "semantic", "no_results")
	m.Search.RecordSearch(ctx, "bogus", "results")
	m.Search.RecordFailure(ctx, "embedding_failure")
	m.Search.RecordPhaseDuration(ctx, "lexical", 0, 12*time.Millisecond)

	got := collect(t, reader)

	searches, ok := got[MetricNameSearches].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, searches.DataPoints, 2)

	phases := map[string]bool{}

	for _, dp := range searches.DataPoints {
		v, _ := dp.Attributes.Value(AttrPhase)
		phases[v.AsString()] = true
	}

	assert.True(t, phases["semantic"])
	assert.True(t, phases["other"], "unknown phase is bucketed")

	hist, ok := got[MetricNameSearchPhaseDuration].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	status, _ := hist.DataPoints[0].Attributes.Value(AttrStatus)
	assert.Equal(t, "empty", status.AsString())
}

func TestEventMetrics_Gauges(t *testing.T) {
	reader, m := newTestMeter(t)

	m.Events.SetChannelDepth(7)
	m.Events.SetRiverQueueDepth(3)
	m.Events.RecordEventDiscarded(context.Background(), "note.created")

	got := collect(t, reader)

	depth, ok := got[MetricNameEventChannelDepth].Data.(metricdata.Gauge[int64])
	require.True(t, ok)
	require.Len(t, depth.DataPoints, 1)
	assert.Equal(t, int64(7), depth.DataPoints[0].Value)

	river, ok := got[MetricNameRiverQueueDepth].Data.(metricdata.Gauge[int64])
	require.True(t, ok)
	assert.Equal(t, int64(3), river.DataPoints[0].Value)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "diary", NormalizeKind("diary"))
	assert.Equal(t, "other", NormalizeKind("photos"))
	assert.Equal(t, "lexical", NormalizePhase("lexical"))
	assert.Equal(t, "unknown", NormalizeEventType("feedback_record.created"))
	assert.Equal(t, "note.deleted", NormalizeEventType("note.deleted"))
	assert.Equal(t, "search_query_embedding", NormalizeCacheName("search_query_embedding"))
	assert.Equal(t, "other", NormalizeCacheName("webhooks"))
}

func TestNewMeterProvider(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		mp, h, err := NewMeterProvider(&config.Config{})
		require.NoError(t, err)
		assert.Nil(t, mp)
		assert.Nil(t, h)
	})

	t.Run("prometheus serves registered instruments", func(t *testing.T) {
		mp, h, err := NewMeterProvider(&config.Config{OtelMetricsExporter: "prometheus"})
		require.NoError(t, err)
		require.NotNil(t, mp)
		require.NotNil(t, h)

		t.Cleanup(func() { _ = ShutdownMeterProvider(context.Background(), mp) })

		m, err := NewMetrics(mp.Meter(MeterScope))
		require.NoError(t, err)
		m.Search.RecordSearch(context.Background(), "lexical", "results")

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

		body, err := io.ReadAll(rec.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), "diarybot_searches_total")
	})
}

func TestNewMeterProvider_ResourceNamesService(t *testing.T) {
	res, err := newResource()
	require.NoError(t, err)

	val, ok := res.Set().Value("service.name")
	require.True(t, ok)
	assert.Equal(t, serviceName, val.AsString())
}

func TestNewTracerProvider(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		tp, err := NewTracerProvider(&config.Config{})
		require.NoError(t, err)
		assert.Nil(t, tp)

		tp, err = NewTracerProvider(&config.Config{OtelTracesExporter: "zipkin"})
		require.NoError(t, err)
		assert.Nil(t, tp)
	})

	t.Run("stdout", func(t *testing.T) {
		tp, err := NewTracerProvider(&config.Config{OtelTracesExporter: "stdout"})
		require.NoError(t, err)
		require.NotNil(t, tp)

		require.NoError(t, ShutdownTracerProvider(context.Background(), tp))
	})

	t.Run("nil provider shutdown", func(t *testing.T) {
		require.NoError(t, ShutdownTracerProvider(context.Background(), nil))
	})
}

func TestParseTraceIDRatio(t *testing.T) {
	assert.InDelta(t, 1.0, parseTraceIDRatio(""), 1e-9)
	assert.InDelta(t, 0.25, parseTraceIDRatio("0.25"), 1e-9)
	assert.InDelta(t, 1.0, parseTraceIDRatio("2"), 1e-9)
	assert.InDelta(t, 1.0, parseTraceIDRatio("half"), 1e-9)
}

func TestTraceContextHandler_AddsContextAttrs(t *testing.T) {
	var buf bytes.Buffer

	logger := slog.New(NewTraceContextHandler(slog.NewJSONHandler(&buf, nil)))

	ctx := WithOwnerID(WithRequestID(context.Background(), "req-1"), "user-9")
	logger.InfoContext(ctx, "searched")

	assert.Contains(t, buf.String(), `"request_id":"req-1"`)
	assert.Contains(t, buf.String(), `"owner_id":"user-9"`)
	assert.Equal(t, "req-1", RequestIDFromContext(ctx))
}
