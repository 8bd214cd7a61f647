package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diarybot/diarybot/internal/datatypes"
	apperrors "github.com/diarybot/diarybot/internal/errors"
	"github.com/diarybot/diarybot/internal/models"
)

type publishedEvent struct {
	eventType datatypes.EventType
	data      any
}

type mockPublisher struct {
	events []publishedEvent
}

func (m *mockPublisher) PublishEvent(_ context.Context, eventType datatypes.EventType, data any) {
	m.events = append(m.events, publishedEvent{eventType: eventType, data: data})
}

type mockNotesRepo struct {
	createFunc func(ctx context.Context, req *models.CreateNoteRequest) (*models.Note, error)
	listFunc   func(ctx context.Context, filters *models.RecordFilters) ([]models.Note, error)
	deleteFunc func(ctx context.Context, ownerID string, id uuid.UUID) error
}

func (m *mockNotesRepo) Create(ctx context.Context, req *models.CreateNoteRequest) (*models.Note, error) {
	return m.createFunc(ctx, req)
}

func (m *mockNotesRepo) GetByID(_ context.Context, _ string, _ uuid.UUID) (*models.Note, error) {
	return nil, apperrors.NewNotFoundError("note", "note not found")
}

func (m *mockNotesRepo) List(ctx context.Context, filters *models.RecordFilters) ([]models.Note, error) {
	return m.listFunc(ctx, filters)
}

func (m *mockNotesRepo) Delete(ctx context.Context, ownerID string, id uuid.UUID) error {
	return m.deleteFunc(ctx, ownerID, id)
}

func TestNotesService_CreatePublishesEvent(t *testing.T) {
	pub := &mockPublisher{}
	repo := &mockNotesRepo{
		createFunc: func(_ context.Context, req *models.CreateNoteRequest) (*models.Note, error) {
			return &models.Note{ID: uuid.Must(uuid.NewV7()), OwnerID: req.OwnerID, Title: req.Title, Content: req.Content, CreatedAt: time.Now()}, nil
		},
	}
	svc := NewNotesService(repo, pub)

	note, err := svc.CreateNote(context.Background(), &models.CreateNoteRequest{OwnerID: "u1", Title: "t", Content: "c"})
	require.NoError(t, err)
	require.Len(t, pub.events, 1)
	assert.Equal(t, datatypes.NoteCreated, pub.events[0].eventType)
	assert.Same(t, note, pub.events[0].data)
}

func TestNotesService_CreateErrorPublishesNothing(t *testing.T) {
	pub := &mockPublisher{}
	repo := &mockNotesRepo{
		createFunc: func(context.Context, *models.CreateNoteRequest) (*models.Note, error) {
			return nil, errors.New("insert failed")
		},
	}

	_, err := NewNotesService(repo, pub).CreateNote(context.Background(), &models.CreateNoteRequest{OwnerID: "u1"})
	require.Error(t, err)
	assert.Empty(t, pub.events)
}

func TestNotesService_ListClampsLimit(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{in: 0, want: defaultListLimit},
		{in: 50, want: 50},
		{in: 5000, want: maxListLimit},
	}

	for _, tt := range tests {
		repo := &mockNotesRepo{
			listFunc: func(_ context.Context, filters *models.RecordFilters) ([]models.Note, error) {
				assert.Equal(t, tt.want, filters.Limit)

				return []models.Note{}, nil
			},
		}

		resp, err := NewNotesService(repo, nil).ListNotes(context.Background(), &models.RecordFilters{OwnerID: "u1", Limit: tt.in})
		require.NoError(t, err)
		assert.Equal(t, tt.want, resp.Limit)
	}
}

func TestNotesService_DeleteNotFound(t *testing.T) {
	pub := &mockPublisher{}
	repo := &mockNotesRepo{
		deleteFunc: func(context.Context, string, uuid.UUID) error {
			return apperrors.NewNotFoundError("note", "note not found")
		},
	}

	err := NewNotesService(repo, pub).DeleteNote(context.Background(), "u1", uuid.New())
	require.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Empty(t, pub.events)
}

type mockFinancesRepo struct {
	FinancesRepository
	created int
}

func (m *mockFinancesRepo) Create(_ context.Context, req *models.CreateFinanceRecordRequest) (*models.FinanceRecord, error) {
	m.created++

	return &models.FinanceRecord{ID: uuid.New(), OwnerID: req.OwnerID, Amount: req.Amount, Type: req.Type}, nil
}

func TestFinancesService_CreateValidates(t *testing.T) {
	tests := []struct {
		name    string
		req     models.CreateFinanceRecordRequest
		wantErr bool
	}{
		{name: "valid expense", req: models.CreateFinanceRecordRequest{OwnerID: "u1", Amount: 12.5, Type: models.FinanceTypeExpense, Category: "food"}},
		{name: "bad type", req: models.CreateFinanceRecordRequest{OwnerID: "u1", Amount: 1, Type: "gift"}, wantErr: true},
		{name: "zero amount", req: models.CreateFinanceRecordRequest{OwnerID: "u1", Type: models.FinanceTypeIncome}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockFinancesRepo{}
			pub := &mockPublisher{}

			_, err := NewFinancesService(repo, pub).CreateFinanceRecord(context.Background(), &tt.req)
			if tt.wantErr {
				require.ErrorIs(t, err, apperrors.ErrValidation)
				assert.Zero(t, repo.created)
				assert.Empty(t, pub.events)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, 1, repo.created)
			require.Len(t, pub.events, 1)
			assert.Equal(t, datatypes.FinanceRecordCreated, pub.events[0].eventType)
		})
	}
}

type mockDiaryRepo struct {
	DiaryEntriesRepository
	deletedOwner string
}

func (m *mockDiaryRepo) Delete(_ context.Context, ownerID string, _ uuid.UUID) error {
	m.deletedOwner = ownerID

	return nil
}

func TestDiaryEntriesService_DeletePublishesEvent(t *testing.T) {
	repo := &mockDiaryRepo{}
	pub := &mockPublisher{}
	id := uuid.New()

	require.NoError(t, NewDiaryEntriesService(repo, pub).DeleteDiaryEntry(context.Background(), "u1", id))
	assert.Equal(t, "u1", repo.deletedOwner)
	require.Len(t, pub.events, 1)
	assert.Equal(t, datatypes.DiaryEntryDeleted, pub.events[0].eventType)

	entry, ok := pub.events[0].data.(*models.DiaryEntry)
	require.True(t, ok)
	assert.Equal(t, id, entry.ID)
}
