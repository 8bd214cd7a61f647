package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/diarybot/diarybot/internal/api/handlers"
	"github.com/diarybot/diarybot/internal/config"
	"github.com/diarybot/diarybot/internal/models"
)

type stubSearch struct{}

func (stubSearch) HybridSearch(_ context.Context, q models.SearchQuery) (*models.SearchOutcome, error) {
	return &models.SearchOutcome{Query: q.Raw, Phase: models.SearchPhaseSemantic, NoResults: true}, nil
}

func TestNewHTTPServer_Routes(t *testing.T) {
	cfg := &config.Config{Port: "0", APIKey: "test-key", MaxRequestBodyBytes: 1 << 10}
	routes := apiRoutes{
		health: handlers.NewHealthHandler(nil),
		search: handlers.NewSearchHandler(stubSearch{}),
	}

	srv := newHTTPServer(cfg, routes, nil, nil, nil)

	tests := []struct {
		name   string
		path   string
		apiKey string
		want   int
	}{
		{name: "health is public", path: "/health", want: http.StatusOK},
		{name: "search requires a key", path: "/v1/search?query=x&ownerId=u1", want: http.StatusUnauthorized},
		{name: "search with key", path: "/v1/search?query=x&ownerId=u1", apiKey: "test-key", want: http.StatusOK},
		{name: "metrics absent without prometheus", path: "/metrics", want: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, http.NoBody)
			if tt.apiKey != "" {
				req.Header.Set("Authorization", "Bearer "+tt.apiKey)
			}

			rec := httptest.NewRecorder()
			srv.Handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
		})
	}
}

func TestNewEmbeddingClient(t *testing.T) {
	client, err := newEmbeddingClient(context.Background(), &config.Config{})
	assert.NoError(t, err)
	assert.Nil(t, client)

	client, err = newEmbeddingClient(context.Background(), &config.Config{EmbeddingProvider: "hash", EmbeddingDimensions: 8})
	assert.NoError(t, err)
	assert.NotNil(t, client)

	_, err = newEmbeddingClient(context.Background(), &config.Config{EmbeddingProvider: "cohere"})
	assert.ErrorIs(t, err, errUnsupportedEmbeddingProvider)
}
