package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/diarybot/diarybot/internal/api/response"
	"github.com/diarybot/diarybot/internal/api/validation"
	"github.com/diarybot/diarybot/internal/models"
)

// DiaryEntriesService defines the interface for diary entries business logic.
type DiaryEntriesService interface {
	CreateDiaryEntry(ctx context.Context, req *models.CreateDiaryEntryRequest) (*models.DiaryEntry, error)
	GetDiaryEntry(ctx context.Context, ownerID string, id uuid.UUID) (*models.DiaryEntry, error)
	ListDiaryEntries(ctx context.Context, filters *models.RecordFilters) (*models.ListResponse[models.DiaryEntry], error)
	DeleteDiaryEntry(ctx context.Context, ownerID string, id uuid.UUID) error
}

// DiaryEntriesHandler handles HTTP requests for diary entries.
type DiaryEntriesHandler struct {
	service DiaryEntriesService
}

// NewDiaryEntriesHandler creates a new diary entries handler.
func NewDiaryEntriesHandler(service DiaryEntriesService) *DiaryEntriesHandler {
	return &DiaryEntriesHandler{service: service}
}

// Create handles POST /v1/diary-entries
// @Summary Create diary entry
// @Tags Diary Entries
// @Accept json
// @Produce json
// @Param request body models.CreateDiaryEntryRequest true "Diary entry to create"
// @Success 201 {object} models.DiaryEntry
// @Failure 400 {object} response.ProblemDetails
// @Security BearerAuth
// @Router /v1/diary-entries [post]
func (h *DiaryEntriesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateDiaryEntryRequest
	if !decodeCreateBody(w, r, &req) {
		return
	}

	entry, err := h.service.CreateDiaryEntry(r.Context(), &req)
	if err != nil {
		respondRecordError(w, r, err, "Diary entry not found")

		return
	}

	response.RespondJSON(w, http.StatusCreated, entry)
}

// Get handles GET /v1/diary-entries/{id}?ownerId=
func (h *DiaryEntriesHandler) Get(w http.ResponseWriter, r *http.Request) {
	ownerID, id, ok := recordRef(w, r, "Diary entry")
	if !ok {
		return
	}

	entry, err := h.service.GetDiaryEntry(r.Context(), ownerID, id)
	if err != nil {
		respondRecordError(w, r, err, "Diary entry not found")

		return
	}

	response.RespondJSON(w, http.StatusOK, entry)
}

// List handles GET /v1/diary-entries?ownerId=&limit=&offset=
func (h *DiaryEntriesHandler) List(w http.ResponseWriter, r *http.Request) {
	var filters models.RecordFilters
	if err := validation.ValidateAndDecodeQueryParams(r, &filters); err != nil {
		validation.RespondValidationError(w, err)

		return
	}

	result, err := h.service.ListDiaryEntries(r.Context(), &filters)
	if err != nil {
		respondRecordError(w, r, err, "Diary entries not found")

		return
	}

	response.RespondJSON(w, http.StatusOK, result)
}

// Delete handles DELETE /v1/diary-entries/{id}?ownerId=
func (h *DiaryEntriesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ownerID, id, ok := recordRef(w, r, "Diary entry")
	if !ok {
		return
	}

	if err := h.service.DeleteDiaryEntry(r.Context(), ownerID, id); err != nil {
		respondRecordError(w, r, err, "Diary entry not found")

		return
	}

	w.WriteHeader(http.StatusNoContent)
}
