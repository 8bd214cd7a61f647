package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/diarybot/diarybot/internal/config"
	"github.com/diarybot/diarybot/internal/embeddings"
	"github.com/diarybot/diarybot/internal/googleai"
	"github.com/diarybot/diarybot/internal/openai"
	"github.com/diarybot/diarybot/internal/service"
)

const (
	embeddingProviderOpenAI       = "openai"
	embeddingProviderGoogle       = "google"
	embeddingProviderOpenAICompat = "openai-compatible"
	embeddingProviderHash         = "hash"
)

var errUnsupportedEmbeddingProvider = errors.New("unsupported embedding provider")

// newEmbeddingClient returns the client selected by EMBEDDING_PROVIDER, or nil when embeddings
// are disabled. Every client is asked for cfg.EmbeddingDimensions so vectors fit the column.
func newEmbeddingClient(ctx context.Context, cfg *config.Config) (service.EmbeddingClient, error) {
	switch cfg.EmbeddingProvider {
	case "":
		slog.Warn("embeddings disabled (EMBEDDING_PROVIDER empty): semantic search fallback will fail")

		return nil, nil
	case embeddingProviderOpenAI:
		opts := []openai.ClientOption{openai.WithDimensions(cfg.EmbeddingDimensions)}
		if cfg.EmbeddingModel != "" {
			opts = append(opts, openai.WithModel(cfg.EmbeddingModel))
		}

		if cfg.EmbeddingBaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.EmbeddingBaseURL))
		}

		return openai.NewClient(cfg.EmbeddingProviderAPIKey, opts...), nil
	case embeddingProviderGoogle:
		opts := []googleai.ClientOption{googleai.WithDimensions(cfg.EmbeddingDimensions)}
		if cfg.EmbeddingModel != "" {
			opts = append(opts, googleai.WithModel(cfg.EmbeddingModel))
		}

		if cfg.EmbeddingBaseURL != "" {
			opts = append(opts, googleai.WithBaseURL(cfg.EmbeddingBaseURL))
		}

		client, err := googleai.NewClient(ctx, cfg.EmbeddingProviderAPIKey, opts...)
		if err != nil {
			return nil, fmt.Errorf("create google embedding client: %w", err)
		}

		return client, nil
	case embeddingProviderOpenAICompat:
		return embeddings.NewCompatClient(embeddings.CompatConfig{
			APIKey:     cfg.EmbeddingProviderAPIKey,
			BaseURL:    cfg.EmbeddingBaseURL,
			Model:      cfg.EmbeddingModel,
			Dimensions: cfg.EmbeddingDimensions,
		}), nil
	case embeddingProviderHash:
		slog.Warn("using hash embeddings: semantic search has no notion of meaning")

		return embeddings.NewHashClient(cfg.EmbeddingDimensions), nil
	default:
		return nil, fmt.Errorf("%w: %s", errUnsupportedEmbeddingProvider, cfg.EmbeddingProvider)
	}
}
