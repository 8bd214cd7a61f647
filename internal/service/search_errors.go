package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/diarybot/diarybot/pkg/embeddings"
)

// FailureKind classifies a failed search for the HTTP boundary.
type FailureKind string

// Failure kinds.
const (
	FailureInvalidQuery FailureKind = "invalid_query"
	FailureStore        FailureKind = "store_failure"
	FailureEmbedding    FailureKind = "embedding_failure"
)

// Embedding failure reasons.
const (
	ReasonAuth        = "auth"
	ReasonRateLimited = "rate_limited"
	ReasonMalformed   = "malformed"
	ReasonDisabled    = "disabled"
	ReasonUnavailable = "unavailable"
	ReasonTimeout     = "timeout"
)

// Sentinel errors wrapped by invalid-query failures.
var (
	ErrEmptyQuery     = errors.New("query is required and must be non-empty")
	ErrMissingOwnerID = errors.New("ownerId is required")
	ErrEmbeddingsOff  = errors.New("no embedding provider configured")
)

// SearchFailure is the error returned by HybridSearch. An empty result is never a failure; see
// models.SearchOutcome.NoResults.
type SearchFailure struct {
	Kind   FailureKind
	Reason string
	Err    error
}

func (e *SearchFailure) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s (%s): %v", e.Kind, e.Reason, e.Err)
	}

	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *SearchFailure) Unwrap() error { return e.Err }

// IsSearchFailure reports whether err is a SearchFailure of the given kind.
func IsSearchFailure(err error, kind FailureKind) bool {
	var sf *SearchFailure

	return errors.As(err, &sf) && sf.Kind == kind
}

func invalidQuery(err error) *SearchFailure {
	return &SearchFailure{Kind: FailureInvalidQuery, Err: err}
}

func storeFailure(phase string, err error) *SearchFailure {
	reason := ""
	if errors.Is(err, context.DeadlineExceeded) {
		reason = ReasonTimeout
	}

	return &SearchFailure{Kind: FailureStore, Reason: reason, Err: fmt.Errorf("%s phase: %w", phase, err)}
}

func embeddingFailure(err error) *SearchFailure {
	return &SearchFailure{Kind: FailureEmbedding, Reason: classifyEmbeddingError(err), Err: err}
}

// classifyEmbeddingError maps provider errors to a failure reason.
func classifyEmbeddingError(err error) string {
	switch {
	case errors.Is(err, ErrEmbeddingsOff):
		return ReasonDisabled
	case errors.Is(err, embeddings.ErrProviderAuth):
		return ReasonAuth
	case errors.Is(err, embeddings.ErrProviderRateLimited):
		return ReasonRateLimited
	case errors.Is(err, embeddings.ErrMalformedResponse),
		errors.Is(err, embeddings.ErrEmptyVector),
		errors.Is(err, embeddings.ErrNonFiniteComponent):
		return ReasonMalformed
	case errors.Is(err, context.DeadlineExceeded):
		return ReasonTimeout
	default:
		return ReasonUnavailable
	}
}
