package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthHandler_Check(t *testing.T) {
	tests := []struct {
		name string
		db   Pinger
		want int
	}{
		{name: "no database", db: nil, want: http.StatusOK},
		{name: "database up", db: pingerFunc(func(context.Context) error { return nil }), want: http.StatusOK},
		{
			name: "database down",
			db:   pingerFunc(func(context.Context) error { return errors.New("dial tcp: connection refused") }),
			want: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()

			NewHealthHandler(tt.db).Check(rec, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))

			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
