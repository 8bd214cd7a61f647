package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/diarybot/diarybot/internal/api/response"
	"github.com/diarybot/diarybot/internal/api/validation"
	apperrors "github.com/diarybot/diarybot/internal/errors"
)

const unexpectedErrorDetail = "An unexpected error occurred"

// decodeCreateBody decodes and validates a create request body into dst. It writes the error
// response and returns false on failure.
func decodeCreateBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			response.RespondError(w, http.StatusRequestEntityTooLarge, "Request Entity Too Large",
				"Request body exceeds the allowed size")

			return false
		}

		response.RespondBadRequest(w, "Invalid request body")

		return false
	}

	if err := validation.ValidateStruct(dst); err != nil {
		validation.RespondValidationError(w, err)

		return false
	}

	return true
}

// recordRef reads the {id} path parameter and the ownerId query parameter. It writes the
// error response and returns false when either is missing or malformed.
func recordRef(w http.ResponseWriter, r *http.Request, label string) (string, uuid.UUID, bool) {
	idStr := chi.URLParam(r, "id")
	if idStr == "" {
		response.RespondBadRequest(w, label+" ID is required")

		return "", uuid.Nil, false
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		response.RespondBadRequest(w, "Invalid UUID format")

		return "", uuid.Nil, false
	}

	ownerID := strings.TrimSpace(r.URL.Query().Get("ownerId"))
	if ownerID == "" {
		response.RespondBadRequest(w, "ownerId query parameter is required")

		return "", uuid.Nil, false
	}

	return ownerID, id, true
}

// respondRecordError maps service errors: validation to 400, not found to 404, anything else
// to 500.
func respondRecordError(w http.ResponseWriter, r *http.Request, err error, notFoundDetail string) {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		response.RespondBadRequest(w, err.Error())
	case errors.Is(err, apperrors.ErrNotFound):
		response.RespondNotFound(w, notFoundDetail)
	default:
		slog.ErrorContext(r.Context(), "record request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		response.RespondInternalServerError(w, unexpectedErrorDetail)
	}
}
