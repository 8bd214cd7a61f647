package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/diarybot/diarybot/internal/api/response"
	"github.com/diarybot/diarybot/internal/api/validation"
	"github.com/diarybot/diarybot/internal/models"
)

// NotesService defines the interface for notes business logic.
type NotesService interface {
	CreateNote(ctx context.Context, req *models.CreateNoteRequest) (*models.Note, error)
	GetNote(ctx context.Context, ownerID string, id uuid.UUID) (*models.Note, error)
	ListNotes(ctx context.Context, filters *models.RecordFilters) (*models.ListResponse[models.Note], error)
	DeleteNote(ctx context.Context, ownerID string, id uuid.UUID) error
}

// NotesHandler handles HTTP requests for notes.
type NotesHandler struct {
	service NotesService
}

// NewNotesHandler creates a new notes handler.
func NewNotesHandler(service NotesService) *NotesHandler {
	return &NotesHandler{service: service}
}

// Create handles POST /v1/notes
func (h *NotesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateNoteRequest
	if !decodeCreateBody(w, r, &req) {
		return
	}

	note, err := h.service.CreateNote(r.Context(), &req)
	if err != nil {
		respondRecordError(w, r, err, "Note not found")

		return
	}

	response.RespondJSON(w, http.StatusCreated, note)
}

// Get handles GET /v1/notes/{id}
func (h *NotesHandler) Get(w http.ResponseWriter, r *http.Request) {
	ownerID, id, ok := recordRef(w, r, "Note")
	if !ok {
		return
	}

	note, err := h.service.GetNote(r.Context(), ownerID, id)
	if err != nil {
		respondRecordError(w, r, err, "Note not found")

		return
	}

	response.RespondJSON(w, http.StatusOK, note)
}

// List handles GET /v1/notes
func (h *NotesHandler) List(w http.ResponseWriter, r *http.Request) {
	var filters models.RecordFilters
	if err := validation.ValidateAndDecodeQueryParams(r, &filters); err != nil {
		validation.RespondValidationError(w, err)

		return
	}

	result, err := h.service.ListNotes(r.Context(), &filters)
	if err != nil {
		respondRecordError(w, r, err, "Notes not found")

		return
	}

	response.RespondJSON(w, http.StatusOK, result)
}

// Delete handles DELETE /v1/notes/{id}
func (h *NotesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ownerID, id, ok := recordRef(w, r, "Note")
	if !ok {
		return
	}

	if err := h.service.DeleteNote(r.Context(), ownerID, id); err != nil {
		respondRecordError(w, r, err, "Note not found")

		return
	}

	w.WriteHeader(http.StatusNoContent)
}
