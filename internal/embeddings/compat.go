// Package embeddings provides embedding clients that do not need a vendor SDK: any
// OpenAI-compatible endpoint (Ollama, vLLM, Azure proxies) and a deterministic hash client for
// offline development and tests.
package embeddings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	vectors "github.com/diarybot/diarybot/pkg/embeddings"
)

// ErrEmptyText is returned when CreateEmbedding is called with blank text.
var ErrEmptyText = errors.New("embeddings: text cannot be empty")

// CompatConfig holds the settings of an OpenAI-compatible endpoint.
type CompatConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	Dimensions int
}

// CompatClient calls an OpenAI-compatible embeddings API.
type CompatClient struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	dimensions int
}

// NewCompatClient creates a client for cfg. An empty BaseURL uses api.openai.com and an empty
// Model uses text-embedding-3-small.
func NewCompatClient(cfg CompatConfig) *CompatClient {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}

	model := openai.SmallEmbedding3
	if cfg.Model != "" {
		model = openai.EmbeddingModel(cfg.Model)
	}

	return &CompatClient{
		client:     openai.NewClientWithConfig(clientCfg),
		model:      model,
		dimensions: cfg.Dimensions,
	}
}

// CreateEmbedding returns the embedding vector for text. When dimensions are configured they
// are requested from the server and enforced on the response.
func (c *CompatClient) CreateEmbedding(ctx context.Context, text string) ([]float32, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}

	req := openai.EmbeddingRequest{
		Input:          []string{text},
		Model:          c.model,
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
	}
	if c.dimensions > 0 {
		req.Dimensions = c.dimensions
	}

	resp, err := c.client.CreateEmbeddings(ctx, req)
	if err != nil {
		return nil, parseAPIError(err)
	}

	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("empty embedding response: %w", vectors.ErrMalformedResponse)
	}

	vec := resp.Data[0].Embedding
	if err := vectors.ValidateResponse(vec, c.dimensions); err != nil {
		return nil, fmt.Errorf("compat embedding: %w", err)
	}

	return vec, nil
}

// parseAPIError keeps the server's message and maps the status code to a failure class.
func parseAPIError(err error) error {
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractDetail(reqErr.Body)
		if detail == "" {
			detail = string(reqErr.Body)
		}

		return wrapStatus(reqErr.HTTPStatusCode, detail, err)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return wrapStatus(apiErr.HTTPStatusCode, apiErr.Message, err)
	}

	return fmt.Errorf("embedding request failed: %w", err)
}

func wrapStatus(status int, detail string, err error) error {
	class := vectors.ClassifyStatus(status)
	if class == nil {
		return fmt.Errorf("embedding API error %d: %s: %w", status, detail, err)
	}

	return fmt.Errorf("embedding API error %d: %s: %w: %w", status, detail, class, err)
}

// extractDetail extracts the "detail" field some compatible servers use for errors.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}

	return ""
}
