package observability

import (
	"fmt"

	"go.opentelemetry.io/otel/metric"
)

// Metrics holds every metric collector. When metrics are disabled the *Metrics is nil; components
// receive the individual interfaces and treat nil as "do not record".
type Metrics struct {
	Search     SearchMetrics
	Embeddings EmbeddingMetrics
	Events     EventMetrics
	Cache      CacheMetrics
	API        APIMetrics
}

// NewMetrics creates all collectors from meter. Returns (nil, nil) when meter is nil.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	if meter == nil {
		//nolint:nilnil // intentional: callers use "if metrics != nil" when metrics disabled
		return nil, nil
	}

	search, err := NewSearchMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("search metrics: %w", err)
	}

	embeddings, err := NewEmbeddingMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("embedding metrics: %w", err)
	}

	events, err := NewEventMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("event metrics: %w", err)
	}

	cache, err := NewCacheMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("cache metrics: %w", err)
	}

	api, err := NewAPIMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("api metrics: %w", err)
	}

	return &Metrics{
		Search:     search,
		Embeddings: embeddings,
		Events:     events,
		Cache:      cache,
		API:        api,
	}, nil
}
