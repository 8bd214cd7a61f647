package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/diarybot/diarybot/internal/api/response"
	"github.com/diarybot/diarybot/internal/api/validation"
	"github.com/diarybot/diarybot/internal/models"
)

// FinancesService defines the interface for finance records business logic.
type FinancesService interface {
	CreateFinanceRecord(ctx context.Context, req *models.CreateFinanceRecordRequest) (*models.FinanceRecord, error)
	GetFinanceRecord(ctx context.Context, ownerID string, id uuid.UUID) (*models.FinanceRecord, error)
	ListFinanceRecords(ctx context.Context, filters *models.RecordFilters) (*models.ListResponse[models.FinanceRecord], error)
	DeleteFinanceRecord(ctx context.Context, ownerID string, id uuid.UUID) error
}

// FinancesHandler handles HTTP requests for income and expense records.
type FinancesHandler struct {
	service FinancesService
}

// NewFinancesHandler creates a new finances handler.
func NewFinancesHandler(service FinancesService) *FinancesHandler {
	return &FinancesHandler{service: service}
}

// Create handles POST /v1/finances
// @Summary Create finance record
// @Description Records an income or expense. The description is what search matches against.
// @Tags Finances
// @Accept json
// @Produce json
// @Param request body models.CreateFinanceRecordRequest true "Finance record to create"
// @Success 201 {object} models.FinanceRecord
// @Failure 400 {object} response.ProblemDetails
// @Security BearerAuth
// @Router /v1/finances [post]
func (h *FinancesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateFinanceRecordRequest
	if !decodeCreateBody(w, r, &req) {
		return
	}

	record, err := h.service.CreateFinanceRecord(r.Context(), &req)
	if err != nil {
		respondRecordError(w, r, err, "Finance record not found")

		return
	}

	response.RespondJSON(w, http.StatusCreated, record)
}

// Get handles GET /v1/finances/{id}
func (h *FinancesHandler) Get(w http.ResponseWriter, r *http.Request) {
	ownerID, id, ok := recordRef(w, r, "Finance record")
	if !ok {
		return
	}

	record, err := h.service.GetFinanceRecord(r.Context(), ownerID, id)
	if err != nil {
		respondRecordError(w, r, err, "Finance record not found")

		return
	}

	response.RespondJSON(w, http.StatusOK, record)
}

// List handles GET /v1/finances
func (h *FinancesHandler) List(w http.ResponseWriter, r *http.Request) {
	var filters models.RecordFilters
	if err := validation.ValidateAndDecodeQueryParams(r, &filters); err != nil {
		validation.RespondValidationError(w, err)

		return
	}

	result, err := h.service.ListFinanceRecords(r.Context(), &filters)
	if err != nil {
		respondRecordError(w, r, err, "Finance records not found")

		return
	}

	response.RespondJSON(w, http.StatusOK, result)
}

// Delete handles DELETE /v1/finances/{id}
func (h *FinancesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ownerID, id, ok := recordRef(w, r, "Finance record")
	if !ok {
		return
	}

	if err := h.service.DeleteFinanceRecord(r.Context(), ownerID, id); err != nil {
		respondRecordError(w, r, err, "Finance record not found")

		return
	}

	w.WriteHeader(http.StatusNoContent)
}
