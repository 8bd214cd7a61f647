package googleai

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diarybot/diarybot/pkg/embeddings"
)

func geminiServer(t *testing.T, status int, values []float64) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)

		if status != http.StatusOK {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]any{"code": status, "message": "nope", "status": "FAILED"},
			})

			return
		}

		_ = json.NewEncoder(w).Encode(map[string]any{
			"embeddings": []map[string]any{{"values": values}},
			"embedding":  map[string]any{"values": values},
		})
	}))
	t.Cleanup(srv.Close)

	return srv
}

func newTestClient(t *testing.T, srv *httptest.Server, dims int) *Client {
	t.Helper()

	c, err := NewClient(context.Background(), "test-key", WithBaseURL(srv.URL+"/"), WithDimensions(dims))
	require.NoError(t, err)

	return c
}

func TestCreateEmbedding(t *testing.T) {
	t.Run("normalizes output", func(t *testing.T) {
		c := newTestClient(t, geminiServer(t, http.StatusOK, []float64{3, 4}), 2)

		vec, err := c.CreateEmbedding(context.Background(), "coffee")
		require.NoError(t, err)
		require.Len(t, vec, 2)
		assert.InDelta(t, 0.6, vec[0], 1e-6)
		assert.InDelta(t, 0.8, vec[1], 1e-6)
		assert.InDelta(t, 1, math.Hypot(float64(vec[0]), float64(vec[1])), 1e-6)
	})

	t.Run("empty input", func(t *testing.T) {
		c := newTestClient(t, geminiServer(t, http.StatusOK, nil), 2)

		_, err := c.CreateEmbedding(context.Background(), "\t")
		require.ErrorIs(t, err, ErrEmptyInput)
	})

	t.Run("wrong dimensions", func(t *testing.T) {
		c := newTestClient(t, geminiServer(t, http.StatusOK, []float64{1, 0, 0}), 2)

		_, err := c.CreateEmbedding(context.Background(), "coffee")
		require.ErrorIs(t, err, embeddings.ErrMalformedResponse)
	})

	t.Run("classifies api errors", func(t *testing.T) {
		tests := []struct {
			status int
			want   error
		}{
			{http.StatusForbidden, embeddings.ErrProviderAuth},
			{http.StatusTooManyRequests, embeddings.ErrProviderRateLimited},
			{http.StatusServiceUnavailable, embeddings.ErrProviderUnavailable},
		}

		for _, tt := range tests {
			c := newTestClient(t, geminiServer(t, tt.status, nil), 2)

			_, err := c.CreateEmbedding(context.Background(), "coffee")
			require.ErrorIs(t, err, tt.want, tt.status)
		}
	})
}
