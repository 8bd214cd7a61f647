package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/diarybot/diarybot/internal/api/response"
	"github.com/diarybot/diarybot/internal/api/validation"
	"github.com/diarybot/diarybot/internal/models"
	"github.com/diarybot/diarybot/internal/service"
)

// Response headers set on successful searches.
const (
	HeaderSearchPhase         = "X-Search-Phase"
	HeaderSearchTimeFilter    = "X-Search-Time-Filter"
	HeaderSearchTimeAmbiguous = "X-Search-Time-Ambiguous"
	HeaderSearchTimeKeywords  = "X-Search-Time-Keywords"
)

// SearchService defines the interface for hybrid search.
type SearchService interface {
	HybridSearch(ctx context.Context, q models.SearchQuery) (*models.SearchOutcome, error)
}

// SearchHandler handles HTTP requests for hybrid search.
type SearchHandler struct {
	service SearchService
}

// NewSearchHandler creates a new search handler.
func NewSearchHandler(service SearchService) *SearchHandler {
	return &SearchHandler{service: service}
}

// Search handles GET /v1/search.
// @Summary Search diary entries, notes and finance records
// @Description Full-text search first; falls back to embedding similarity when nothing matched.
// @Tags Search
// @Produce json
// @Param query query string true "Search text; time words such as today or last week narrow the window"
// @Param ownerId query string true "Owner whose records are searched"
// @Param contentKind query string false "all (default), diary, notes, finances, or a comma-separated list"
// @Success 200 {array} models.SearchResult
// @Failure 400 {object} response.ProblemDetails "invalid_query"
// @Failure 500 {object} response.ProblemDetails "store_failure"
// @Failure 502 {object} response.ProblemDetails "embedding_failure"
// @Security BearerAuth
// @Router /v1/search [get]
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req models.SearchRequest
	if err := validation.ValidateAndDecodeQueryParams(r, &req); err != nil {
		validation.RespondValidationError(w, err)

		return
	}

	q := models.SearchQuery{Raw: req.Query, OwnerID: req.OwnerID}

	if req.ContentKind != "" {
		kinds, err := models.ParseContentScope(req.ContentKind)
		if err != nil {
			respondSearchFailure(w, &service.SearchFailure{Kind: service.FailureInvalidQuery, Err: err})

			return
		}

		q.Kinds = kinds
	}

	outcome, err := h.service.HybridSearch(r.Context(), q)
	if err != nil {
		var failure *service.SearchFailure
		if !errors.As(err, &failure) {
			failure = &service.SearchFailure{Kind: service.FailureStore, Err: err}
		}

		if failure.Kind != service.FailureInvalidQuery {
			slog.ErrorContext(r.Context(), "search failed",
				"kind", failure.Kind,
				"reason", failure.Reason,
				"error", err,
			)
		}

		respondSearchFailure(w, failure)

		return
	}

	w.Header().Set(HeaderSearchPhase, string(outcome.Phase))
	w.Header().Set(HeaderSearchTimeFilter, string(outcome.TimeFilter))
	w.Header().Set(HeaderSearchTimeAmbiguous, strconv.FormatBool(outcome.Ambiguous))

	// Matched keywords in priority order; the first one chose the time filter.
	if len(outcome.MatchedKeywords) > 0 {
		w.Header().Set(HeaderSearchTimeKeywords, strings.Join(outcome.MatchedKeywords, ","))
	}

	if outcome.NoResults {
		response.RespondJSON(w, http.StatusOK, models.NoResultsResponse{
			Message: fmt.Sprintf("No matching entries found for %q", outcome.Query),
			Query:   outcome.Query,
		})

		return
	}

	response.RespondJSON(w, http.StatusOK, outcome.Results)
}

// respondSearchFailure writes failure as a problem document carrying its kind. Store and
// provider details stay in the logs.
func respondSearchFailure(w http.ResponseWriter, failure *service.SearchFailure) {
	problem := response.ProblemDetails{
		Type: "about:blank",
		Kind: string(failure.Kind),
	}

	switch failure.Kind {
	case service.FailureInvalidQuery:
		problem.Status = http.StatusBadRequest
		problem.Title = "Bad Request"
		problem.Detail = failure.Err.Error()
	case service.FailureEmbedding:
		problem.Status = http.StatusBadGateway
		problem.Title = "Bad Gateway"
		problem.Detail = "Embedding provider failed"

		if failure.Reason != "" {
			problem.Detail += " (" + failure.Reason + ")"
		}
	default:
		problem.Status = http.StatusInternalServerError
		problem.Title = "Internal Server Error"
		problem.Detail = "Search failed"
	}

	response.RespondProblem(w, problem)
}
