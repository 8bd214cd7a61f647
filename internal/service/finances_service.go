package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/diarybot/diarybot/internal/datatypes"
	apperrors "github.com/diarybot/diarybot/internal/errors"
	"github.com/diarybot/diarybot/internal/models"
)

// FinancesRepository defines the data access for finance records.
type FinancesRepository interface {
	Create(ctx context.Context, req *models.CreateFinanceRecordRequest) (*models.FinanceRecord, error)
	GetByID(ctx context.Context, ownerID string, id uuid.UUID) (*models.FinanceRecord, error)
	List(ctx context.Context, filters *models.RecordFilters) ([]models.FinanceRecord, error)
	Delete(ctx context.Context, ownerID string, id uuid.UUID) error
}

// FinancesService handles business logic for finance records.
type FinancesService struct {
	repo      FinancesRepository
	publisher MessagePublisher
}

// NewFinancesService creates a finances service. publisher may be nil.
func NewFinancesService(repo FinancesRepository, publisher MessagePublisher) *FinancesService {
	return &FinancesService{repo: repo, publisher: publisher}
}

// CreateFinanceRecord stores a record and publishes FinanceRecordCreated.
func (s *FinancesService) CreateFinanceRecord(
	ctx context.Context, req *models.CreateFinanceRecordRequest,
) (*models.FinanceRecord, error) {
	switch req.Type {
	case models.FinanceTypeIncome, models.FinanceTypeExpense:
	default:
		return nil, apperrors.NewValidationError("type", "type must be income or expense")
	}

	if req.Amount <= 0 {
		return nil, apperrors.NewValidationError("amount", "amount must be positive")
	}

	record, err := s.repo.Create(ctx, req)
	if err != nil {
		return nil, err
	}

	publish(ctx, s.publisher, datatypes.FinanceRecordCreated, record)

	return record, nil
}

// GetFinanceRecord returns the owner's record or a NotFoundError.
func (s *FinancesService) GetFinanceRecord(ctx context.Context, ownerID string, id uuid.UUID) (*models.FinanceRecord, error) {
	return s.repo.GetByID(ctx, ownerID, id)
}

// ListFinanceRecords returns the owner's records, newest first.
func (s *FinancesService) ListFinanceRecords(
	ctx context.Context, filters *models.RecordFilters,
) (*models.ListResponse[models.FinanceRecord], error) {
	clampListLimit(filters)

	records, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, err
	}

	return &models.ListResponse[models.FinanceRecord]{Data: records, Limit: filters.Limit, Offset: filters.Offset}, nil
}

// DeleteFinanceRecord deletes the owner's record and publishes FinanceRecordDeleted.
func (s *FinancesService) DeleteFinanceRecord(ctx context.Context, ownerID string, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, ownerID, id); err != nil {
		return err
	}

	publish(ctx, s.publisher, datatypes.FinanceRecordDeleted, &models.FinanceRecord{ID: id, OwnerID: ownerID})

	return nil
}
