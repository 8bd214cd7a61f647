package service

import "context"

// EmbeddingClient turns text into an embedding vector. Implemented by internal/openai,
// internal/googleai and internal/embeddings. Errors wrap the pkg/embeddings provider sentinels.
type EmbeddingClient interface {
	CreateEmbedding(ctx context.Context, input string) ([]float32, error)
}
