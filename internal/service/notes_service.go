package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/diarybot/diarybot/internal/datatypes"
	"github.com/diarybot/diarybot/internal/models"
)

// NotesRepository defines the data access for notes.
type NotesRepository interface {
	Create(ctx context.Context, req *models.CreateNoteRequest) (*models.Note, error)
	GetByID(ctx context.Context, ownerID string, id uuid.UUID) (*models.Note, error)
	List(ctx context.Context, filters *models.RecordFilters) ([]models.Note, error)
	Delete(ctx context.Context, ownerID string, id uuid.UUID) error
}

// NotesService handles business logic for notes.
type NotesService struct {
	repo      NotesRepository
	publisher MessagePublisher
}

// NewNotesService creates a notes service. publisher may be nil.
func NewNotesService(repo NotesRepository, publisher MessagePublisher) *NotesService {
	return &NotesService{repo: repo, publisher: publisher}
}

// CreateNote stores a note and publishes NoteCreated.
func (s *NotesService) CreateNote(ctx context.Context, req *models.CreateNoteRequest) (*models.Note, error) {
	note, err := s.repo.Create(ctx, req)
	if err != nil {
		return nil, err
	}

	publish(ctx, s.publisher, datatypes.NoteCreated, note)

	return note, nil
}

// GetNote returns the owner's note or a NotFoundError.
func (s *NotesService) GetNote(ctx context.Context, ownerID string, id uuid.UUID) (*models.Note, error) {
	return s.repo.GetByID(ctx, ownerID, id)
}

// ListNotes returns the owner's notes, newest first.
func (s *NotesService) ListNotes(ctx context.Context, filters *models.RecordFilters) (*models.ListResponse[models.Note], error) {
	clampListLimit(filters)

	notes, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, err
	}

	return &models.ListResponse[models.Note]{Data: notes, Limit: filters.Limit, Offset: filters.Offset}, nil
}

// DeleteNote deletes the owner's note and publishes NoteDeleted.
func (s *NotesService) DeleteNote(ctx context.Context, ownerID string, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, ownerID, id); err != nil {
		return err
	}

	publish(ctx, s.publisher, datatypes.NoteDeleted, &models.Note{ID: id, OwnerID: ownerID})

	return nil
}
