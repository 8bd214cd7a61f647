package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/diarybot/diarybot/internal/datatypes"
	"github.com/diarybot/diarybot/internal/models"
)

const (
	defaultListLimit = 100
	maxListLimit     = 1000
)

// DiaryEntriesRepository defines the data access for diary entries. Every read and delete is
// scoped to an owner.
type DiaryEntriesRepository interface {
	Create(ctx context.Context, req *models.CreateDiaryEntryRequest) (*models.DiaryEntry, error)
	GetByID(ctx context.Context, ownerID string, id uuid.UUID) (*models.DiaryEntry, error)
	List(ctx context.Context, filters *models.RecordFilters) ([]models.DiaryEntry, error)
	Delete(ctx context.Context, ownerID string, id uuid.UUID) error
}

// DiaryEntriesService handles business logic for diary entries.
type DiaryEntriesService struct {
	repo      DiaryEntriesRepository
	publisher MessagePublisher
}

// NewDiaryEntriesService creates a diary entries service. publisher may be nil.
func NewDiaryEntriesService(repo DiaryEntriesRepository, publisher MessagePublisher) *DiaryEntriesService {
	return &DiaryEntriesService{repo: repo, publisher: publisher}
}

// CreateDiaryEntry stores an entry and publishes DiaryEntryCreated.
func (s *DiaryEntriesService) CreateDiaryEntry(ctx context.Context, req *models.CreateDiaryEntryRequest) (*models.DiaryEntry, error) {
	entry, err := s.repo.Create(ctx, req)
	if err != nil {
		return nil, err
	}

	publish(ctx, s.publisher, datatypes.DiaryEntryCreated, entry)

	return entry, nil
}

// GetDiaryEntry returns the owner's entry or a NotFoundError.
func (s *DiaryEntriesService) GetDiaryEntry(ctx context.Context, ownerID string, id uuid.UUID) (*models.DiaryEntry, error) {
	return s.repo.GetByID(ctx, ownerID, id)
}

// ListDiaryEntries returns the owner's entries, newest first.
func (s *DiaryEntriesService) ListDiaryEntries(
	ctx context.Context, filters *models.RecordFilters,
) (*models.ListResponse[models.DiaryEntry], error) {
	clampListLimit(filters)

	entries, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, err
	}

	return &models.ListResponse[models.DiaryEntry]{Data: entries, Limit: filters.Limit, Offset: filters.Offset}, nil
}

// DeleteDiaryEntry deletes the owner's entry and publishes DiaryEntryDeleted.
func (s *DiaryEntriesService) DeleteDiaryEntry(ctx context.Context, ownerID string, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, ownerID, id); err != nil {
		return err
	}

	publish(ctx, s.publisher, datatypes.DiaryEntryDeleted, &models.DiaryEntry{ID: id, OwnerID: ownerID})

	return nil
}

func clampListLimit(filters *models.RecordFilters) {
	if filters.Limit <= 0 {
		filters.Limit = defaultListLimit
	}

	if filters.Limit > maxListLimit {
		filters.Limit = maxListLimit
	}

	if filters.Offset < 0 {
		filters.Offset = 0
	}
}

func publish(ctx context.Context, publisher MessagePublisher, eventType datatypes.EventType, data any) {
	if publisher != nil {
		publisher.PublishEvent(ctx, eventType, data)
	}
}
