// Package openai provides a thin wrapper around the official OpenAI Go SDK for embeddings.
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openaisdk "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/param"

	"github.com/diarybot/diarybot/pkg/embeddings"
)

var (
	// ErrEmptyInput is returned when CreateEmbedding is called with empty input.
	ErrEmptyInput = errors.New("openai: input text is empty")
	// ErrInvalidDims is returned when dimensions is not positive.
	ErrInvalidDims = errors.New("openai: embedding dimensions must be positive")
	// ErrNoEmbeddingInResponse is returned when the API response contains no embedding data.
	ErrNoEmbeddingInResponse = errors.New("openai: no embedding in response")
)

const defaultDimension = 1536

// Client calls the OpenAI embeddings API via the official SDK.
type Client struct {
	sdk        openaisdk.Client
	model      openaisdk.EmbeddingModel
	dimensions int
	baseURL    string
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithDimensions sets the requested embedding dimension (must match DB column).
func WithDimensions(dim int) ClientOption {
	return func(c *Client) {
		c.dimensions = dim
	}
}

// WithModel sets the embedding model. Empty keeps text-embedding-3-small.
func WithModel(model string) ClientOption {
	return func(c *Client) {
		if model != "" {
			c.model = openaisdk.EmbeddingModel(model)
		}
	}
}

// WithBaseURL points the client at another API root (proxies, tests).
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = url
	}
}

// NewClient creates an OpenAI embeddings client using the official SDK. SDK retries are
// disabled: the search engine never retries and the embedding queue has its own retry policy.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	client := &Client{
		model:      openaisdk.EmbeddingModelTextEmbedding3Small,
		dimensions: defaultDimension,
	}

	for _, opt := range opts {
		opt(client)
	}

	sdkOpts := []option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}
	if client.baseURL != "" {
		sdkOpts = append(sdkOpts, option.WithBaseURL(client.baseURL))
	}

	client.sdk = openaisdk.NewClient(sdkOpts...)

	return client
}

// CreateEmbedding returns the embedding vector for the given text. The returned slice length
// equals the configured dimensions; anything else is reported as a malformed response.
func (c *Client) CreateEmbedding(ctx context.Context, input string) ([]float32, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, ErrEmptyInput
	}

	if c.dimensions <= 0 {
		return nil, ErrInvalidDims
	}

	resp, err := c.sdk.Embeddings.New(ctx, openaisdk.EmbeddingNewParams{
		Input: openaisdk.EmbeddingNewParamsInputUnion{
			OfString: param.NewOpt(input),
		},
		Model:      c.model,
		Dimensions: param.NewOpt(int64(c.dimensions)),
	})
	if err != nil {
		return nil, classify(err)
	}

	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("%w: %w", embeddings.ErrMalformedResponse, ErrNoEmbeddingInResponse)
	}

	emb := resp.Data[0].Embedding

	out := make([]float32, len(emb))
	for i := range emb {
		out[i] = float32(emb[i])
	}

	if err := embeddings.ValidateResponse(out, c.dimensions); err != nil {
		return nil, fmt.Errorf("openai embedding: %w", err)
	}

	return out, nil
}

func classify(err error) error {
	var apiErr *openaisdk.Error
	if errors.As(err, &apiErr) {
		if class := embeddings.ClassifyStatus(apiErr.StatusCode); class != nil {
			return fmt.Errorf("openai embedding: %w: %w", class, err)
		}
	}

	return fmt.Errorf("openai embedding: %w", err)
}
