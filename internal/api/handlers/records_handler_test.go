package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/diarybot/diarybot/internal/errors"
	"github.com/diarybot/diarybot/internal/models"
)

type mockDiaryEntriesService struct {
	createFunc func(ctx context.Context, req *models.CreateDiaryEntryRequest) (*models.DiaryEntry, error)
	getFunc    func(ctx context.Context, ownerID string, id uuid.UUID) (*models.DiaryEntry, error)
	listFunc   func(ctx context.Context, filters *models.RecordFilters) (*models.ListResponse[models.DiaryEntry], error)
	deleteFunc func(ctx context.Context, ownerID string, id uuid.UUID) error
}

func (m *mockDiaryEntriesService) CreateDiaryEntry(
	ctx context.Context, req *models.CreateDiaryEntryRequest,
) (*models.DiaryEntry, error) {
	return m.createFunc(ctx, req)
}

func (m *mockDiaryEntriesService) GetDiaryEntry(ctx context.Context, ownerID string, id uuid.UUID) (*models.DiaryEntry, error) {
	return m.getFunc(ctx, ownerID, id)
}

func (m *mockDiaryEntriesService) ListDiaryEntries(
	ctx context.Context, filters *models.RecordFilters,
) (*models.ListResponse[models.DiaryEntry], error) {
	return m.listFunc(ctx, filters)
}

func (m *mockDiaryEntriesService) DeleteDiaryEntry(ctx context.Context, ownerID string, id uuid.UUID) error {
	return m.deleteFunc(ctx, ownerID, id)
}

type mockFinancesService struct {
	createFunc func(ctx context.Context, req *models.CreateFinanceRecordRequest) (*models.FinanceRecord, error)
}

func (m *mockFinancesService) CreateFinanceRecord(
	ctx context.Context, req *models.CreateFinanceRecordRequest,
) (*models.FinanceRecord, error) {
	return m.createFunc(ctx, req)
}

func (m *mockFinancesService) GetFinanceRecord(context.Context, string, uuid.UUID) (*models.FinanceRecord, error) {
	return nil, apperrors.NewNotFoundError("finance record", "finance record not found")
}

func (m *mockFinancesService) ListFinanceRecords(
	context.Context, *models.RecordFilters,
) (*models.ListResponse[models.FinanceRecord], error) {
	return &models.ListResponse[models.FinanceRecord]{}, nil
}

func (m *mockFinancesService) DeleteFinanceRecord(context.Context, string, uuid.UUID) error {
	return nil
}

func newDiaryRouter(svc DiaryEntriesService) http.Handler {
	h := NewDiaryEntriesHandler(svc)
	r := chi.NewRouter()
	r.Post("/v1/diary-entries", h.Create)
	r.Get("/v1/diary-entries", h.List)
	r.Get("/v1/diary-entries/{id}", h.Get)
	r.Delete("/v1/diary-entries/{id}", h.Delete)

	return r
}

func serve(h http.Handler, method, target string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "http://test"+target, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	return rec
}

func TestDiaryEntriesHandler_Create(t *testing.T) {
	t.Run("valid body returns 201", func(t *testing.T) {
		svc := &mockDiaryEntriesService{
			createFunc: func(_ context.Context, req *models.CreateDiaryEntryRequest) (*models.DiaryEntry, error) {
				return &models.DiaryEntry{ID: uuid.New(), OwnerID: req.OwnerID, Content: req.Content}, nil
			},
		}

		rec := serve(newDiaryRouter(svc), http.MethodPost, "/v1/diary-entries",
			[]byte(`{"ownerId":"u1","content":"Long run by the river"}`))

		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Contains(t, rec.Body.String(), `"ownerId":"u1"`)
		assert.Contains(t, rec.Body.String(), `"createdAt"`)

		var entry models.DiaryEntry
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&entry))
		assert.Equal(t, "u1", entry.OwnerID)
		assert.Equal(t, "Long run by the river", entry.Content)
	})

	t.Run("missing content returns 400 without calling the service", func(t *testing.T) {
		svc := &mockDiaryEntriesService{
			createFunc: func(context.Context, *models.CreateDiaryEntryRequest) (*models.DiaryEntry, error) {
				t.Fatal("service must not be called")

				return nil, nil
			},
		}

		rec := serve(newDiaryRouter(svc), http.MethodPost, "/v1/diary-entries", []byte(`{"ownerId":"u1"}`))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Content is required")
	})

	t.Run("unknown field returns 400", func(t *testing.T) {
		rec := serve(newDiaryRouter(&mockDiaryEntriesService{}), http.MethodPost, "/v1/diary-entries",
			[]byte(`{"ownerId":"u1","content":"x","weather":"rain"}`))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("snake_case owner field returns 400", func(t *testing.T) {
		rec := serve(newDiaryRouter(&mockDiaryEntriesService{}), http.MethodPost, "/v1/diary-entries",
			[]byte(`{"owner_id":"u1","content":"x"}`))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("store error returns 500", func(t *testing.T) {
		svc := &mockDiaryEntriesService{
			createFunc: func(context.Context, *models.CreateDiaryEntryRequest) (*models.DiaryEntry, error) {
				return nil, errors.New("insert diary entry: connection reset")
			},
		}

		rec := serve(newDiaryRouter(svc), http.MethodPost, "/v1/diary-entries",
			[]byte(`{"ownerId":"u1","content":"x"}`))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "connection reset")
	})
}

func TestDiaryEntriesHandler_Get(t *testing.T) {
	id := uuid.New()

	svc := &mockDiaryEntriesService{
		getFunc: func(_ context.Context, ownerID string, got uuid.UUID) (*models.DiaryEntry, error) {
			if ownerID != "u1" || got != id {
				return nil, apperrors.NewNotFoundError("diary entry", "diary entry not found")
			}

			return &models.DiaryEntry{ID: id, OwnerID: ownerID, Content: "hello"}, nil
		},
	}
	router := newDiaryRouter(svc)

	t.Run("owner's entry returns 200", func(t *testing.T) {
		rec := serve(router, http.MethodGet, "/v1/diary-entries/"+id.String()+"?ownerId=u1", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("other owner returns 404", func(t *testing.T) {
		rec := serve(router, http.MethodGet, "/v1/diary-entries/"+id.String()+"?ownerId=u2", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("missing ownerId returns 400", func(t *testing.T) {
		rec := serve(router, http.MethodGet, "/v1/diary-entries/"+id.String(), nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid id returns 400", func(t *testing.T) {
		rec := serve(router, http.MethodGet, "/v1/diary-entries/not-a-uuid?ownerId=u1", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestDiaryEntriesHandler_ListAndDelete(t *testing.T) {
	var gotFilters *models.RecordFilters

	deleted := false
	svc := &mockDiaryEntriesService{
		listFunc: func(_ context.Context, filters *models.RecordFilters) (*models.ListResponse[models.DiaryEntry], error) {
			gotFilters = filters

			return &models.ListResponse[models.DiaryEntry]{Data: []models.DiaryEntry{}, Limit: filters.Limit}, nil
		},
		deleteFunc: func(context.Context, string, uuid.UUID) error {
			deleted = true

			return nil
		},
	}
	router := newDiaryRouter(svc)

	rec := serve(router, http.MethodGet, "/v1/diary-entries?ownerId=u1&limit=5&offset=10", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, gotFilters)
	assert.Equal(t, models.RecordFilters{OwnerID: "u1", Limit: 5, Offset: 10}, *gotFilters)

	rec = serve(router, http.MethodGet, "/v1/diary-entries", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(router, http.MethodDelete, "/v1/diary-entries/"+uuid.NewString()+"?ownerId=u1", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, deleted)
}

func TestFinancesHandler_Create(t *testing.T) {
	svc := &mockFinancesService{
		createFunc: func(_ context.Context, req *models.CreateFinanceRecordRequest) (*models.FinanceRecord, error) {
			if req.Category == "blocked" {
				return nil, apperrors.NewValidationError("category", "category is not allowed")
			}

			return &models.FinanceRecord{ID: uuid.New(), OwnerID: req.OwnerID, Amount: req.Amount, Type: req.Type}, nil
		},
	}

	h := NewFinancesHandler(svc)
	r := chi.NewRouter()
	r.Post("/v1/finances", h.Create)
	r.Get("/v1/finances/{id}", h.Get)

	rec := serve(r, http.MethodPost, "/v1/finances",
		[]byte(`{"ownerId":"u1","amount":4.5,"type":"expense","category":"food","description":"coffee beans"}`))
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = serve(r, http.MethodPost, "/v1/finances",
		[]byte(`{"ownerId":"u1","amount":-1,"type":"expense","category":"food"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(r, http.MethodPost, "/v1/finances",
		[]byte(`{"ownerId":"u1","amount":1,"type":"expense","category":"blocked"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(r, http.MethodGet, "/v1/finances/"+uuid.NewString()+"?ownerId=u1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
