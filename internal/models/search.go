package models

import (
	"time"

	"github.com/google/uuid"
)

// SearchPhase names the phase that produced a result set.
type SearchPhase string

// Search phases.
const (
	SearchPhaseLexical  SearchPhase = "lexical"
	SearchPhaseSemantic SearchPhase = "semantic"
)

// SearchQuery is one search request after parameter decoding.
type SearchQuery struct {
	Raw     string
	OwnerID string
	Kinds   []ContentKind
}

// StoreQuery is what the engine asks the store for in either phase.
type StoreQuery struct {
	OwnerID    string
	Term       string
	Kinds      []ContentKind
	TimeFilter TimeFilter
	Limit      int
}

// SearchResult is one matching record. Score is a lexical rank (higher is better) or a cosine
// distance (lower is better) depending on the phase that produced it; the two never mix.
type SearchResult struct {
	ID        uuid.UUID   `json:"id"`
	Body      string      `json:"body"`
	Kind      ContentKind `json:"kind"`
	CreatedAt time.Time   `json:"createdAt"`
	Score     float64     `json:"score"`
}

// SearchOutcome is the result of one search. NoResults is set, and Results is empty, when
// neither phase matched anything.
type SearchOutcome struct {
	Query           string
	Term            string
	TimeFilter      TimeFilter
	MatchedKeywords []string
	Ambiguous       bool
	Phase           SearchPhase
	Results         []SearchResult
	NoResults       bool
}

// SearchRequest holds the query parameters of GET /v1/search.
// API contract uses camelCase.
type SearchRequest struct {
	Query       string `form:"query" validate:"max=1000,no_null_bytes"`
	OwnerID     string `form:"ownerId" validate:"max=255,no_null_bytes"`
	ContentKind string `form:"contentKind" validate:"omitempty,content_scope"`
}

// NoResultsResponse is the body returned when a search finds nothing.
type NoResultsResponse struct {
	Message string `json:"message"`
	Query   string `json:"query"`
}
