// Package middleware holds the HTTP middleware chain: request ids, access logging, body size
// limits and API key authentication.
package middleware

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/diarybot/diarybot/internal/api/response"
)

// ErrInvalidAPIKey is returned by an Authenticator when the presented key is not accepted.
var ErrInvalidAPIKey = errors.New("invalid API key")

// Authenticator validates the bearer token of a request.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) error
}

// APIKeyAuthenticator accepts a single static API key from configuration.
type APIKeyAuthenticator struct {
	keyHash [sha256.Size]byte
}

// NewAPIKeyAuthenticator creates an authenticator for apiKey.
func NewAPIKeyAuthenticator(apiKey string) *APIKeyAuthenticator {
	return &APIKeyAuthenticator{keyHash: sha256.Sum256([]byte(apiKey))}
}

// Authenticate compares token with the configured key in constant time.
func (a *APIKeyAuthenticator) Authenticate(_ context.Context, token string) error {
	// Hashing first makes the comparison independent of the token length.
	got := sha256.Sum256([]byte(token))
	if subtle.ConstantTimeCompare(got[:], a.keyHash[:]) != 1 {
		return ErrInvalidAPIKey
	}

	return nil
}

// Auth middleware validates the API key from the Authorization header.
func Auth(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				response.RespondUnauthorized(w, "Missing Authorization header")

				return
			}

			// Expected format: "Bearer <api-key>"
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				response.RespondUnauthorized(w, "Invalid Authorization header format. Expected: Bearer <api-key>")

				return
			}

			apiKey := strings.TrimSpace(parts[1])
			if apiKey == "" {
				response.RespondUnauthorized(w, "API key is empty")

				return
			}

			if err := auth.Authenticate(r.Context(), apiKey); err != nil {
				response.RespondUnauthorized(w, "Invalid API key")

				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
