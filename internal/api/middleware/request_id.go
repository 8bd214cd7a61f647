package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/diarybot/diarybot/internal/observability"
)

const (
	requestIDHeader    = "X-Request-ID"
	maxRequestIDLength = 128
)

// RequestID runs first in the chain: ensures every request has an X-Request-ID in context
// and in the response header. A client-supplied id is propagated when it is short and printable;
// otherwise one is generated.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if !validRequestID(id) {
			id = uuid.Must(uuid.NewV7()).String()
		}

		ctx := observability.WithRequestID(r.Context(), id)
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLength {
		return false
	}

	for _, c := range id {
		if c < 0x21 || c > 0x7e {
			return false
		}
	}

	return true
}
