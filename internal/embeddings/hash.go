package embeddings

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"strings"

	vectors "github.com/diarybot/diarybot/pkg/embeddings"
)

// HashClient generates deterministic embeddings from a hash of the normalized text. Equal
// texts get equal vectors; it has no notion of meaning and is meant for local runs and tests.
type HashClient struct {
	dimensions int
}

// NewHashClient creates a hash client producing vectors of the given size.
func NewHashClient(dimensions int) *HashClient {
	return &HashClient{dimensions: dimensions}
}

// CreateEmbedding returns a unit vector derived from text.
func (c *HashClient) CreateEmbedding(_ context.Context, text string) ([]float32, error) {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return nil, ErrEmptyText
	}

	embedding := make([]float32, c.dimensions)

	// Chain SHA-256 blocks until every component has a value in [-1, 1].
	block := sha256.Sum256([]byte(text))
	for i := range embedding {
		off := (i % 8) * 4
		if i > 0 && off == 0 {
			block = sha256.Sum256(block[:])
		}

		u := binary.BigEndian.Uint32(block[off : off+4])
		embedding[i] = float32(u)/float32(^uint32(0))*2 - 1
	}

	vectors.NormalizeL2(embedding)

	return embedding, nil
}
