package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	apperrors "github.com/diarybot/diarybot/internal/errors"
	"github.com/diarybot/diarybot/internal/models"
)

// amount is NUMERIC(14,2); the cast keeps it scannable into float64.
const financeColumns = "id, user_id, amount::float8, type, category, description, created_at"

// FinancesRepository handles data access for finance records.
type FinancesRepository struct {
	db *pgxpool.Pool
}

// NewFinancesRepository creates a new finances repository.
func NewFinancesRepository(db *pgxpool.Pool) *FinancesRepository {
	return &FinancesRepository{db: db}
}

// Create inserts a new finance record.
func (r *FinancesRepository) Create(ctx context.Context, req *models.CreateFinanceRecordRequest) (*models.FinanceRecord, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate finance record id: %w", err)
	}

	query := `
		INSERT INTO finances (id, user_id, amount, type, category, description)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + financeColumns

	rec, err := scanFinanceRecord(r.db.QueryRow(ctx, query,
		id, req.OwnerID, req.Amount, string(req.Type), req.Category, req.Description,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create finance record: %w", inputError(err))
	}

	return rec, nil
}

// GetByID retrieves one of the owner's finance records.
func (r *FinancesRepository) GetByID(ctx context.Context, ownerID string, id uuid.UUID) (*models.FinanceRecord, error) {
	query := `SELECT ` + financeColumns + ` FROM finances WHERE id = $1 AND user_id = $2`

	rec, err := scanFinanceRecord(r.db.QueryRow(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("finance record", "finance record not found")
		}

		return nil, fmt.Errorf("failed to get finance record: %w", err)
	}

	return rec, nil
}

// List retrieves the owner's finance records, newest first.
func (r *FinancesRepository) List(ctx context.Context, filters *models.RecordFilters) ([]models.FinanceRecord, error) {
	query, args := buildOwnerListQuery("finances", financeColumns, filters)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list finance records: %w", err)
	}
	defer rows.Close()

	records := []models.FinanceRecord{}

	for rows.Next() {
		rec, err := scanFinanceRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan finance record: %w", err)
		}

		records = append(records, *rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating finance records: %w", err)
	}

	return records, nil
}

// Delete removes one of the owner's finance records.
func (r *FinancesRepository) Delete(ctx context.Context, ownerID string, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM finances WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete finance record: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("finance record", "finance record not found")
	}

	return nil
}

func scanFinanceRecord(row pgx.Row) (*models.FinanceRecord, error) {
	var (
		rec     models.FinanceRecord
		finType string
	)

	err := row.Scan(&rec.ID, &rec.OwnerID, &rec.Amount, &finType, &rec.Category, &rec.Description, &rec.CreatedAt)
	if err != nil {
		return nil, err
	}

	rec.Type = models.FinanceType(finType)

	return &rec, nil
}
