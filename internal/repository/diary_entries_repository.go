// Package repository provides data access for diary entries, notes, finance records, their
// embeddings and the hybrid search queries over them.
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

const diaryEntryColumns = "id, user_id, content, mood, tags, created_at"

// DiaryEntriesRepository handles data access for diary entries.
type DiaryEntriesRepository struct {
	db *pgxpool.Pool
}

// NewDiaryEntriesRepository creates a new diary entries repository.
func NewDiaryEntriesRepository(db *pgxpool.Pool) *DiaryEntriesRepository {
	return &DiaryEntriesRepository{db: db}
}

// Create inserts a new diary entry. The embedding column stays NULL until the embedding
// worker fills it.
func (r *DiaryEntriesRepository) Create(ctx context.Context, req *models.CreateDiaryEntryRequest) (*models.DiaryEntry, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate diary entry id: %w", err)
	}

	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}

	query := `
		INSERT INTO diary_entries (id, user_id, content, mood, tags)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + diaryEntryColumns

	entry, err := scanDiaryEntry(r.db.QueryRow(ctx, query, id, req.OwnerID, req.Content, req.Mood, tags))
	if err != nil {
		return nil, fmt.Errorf("failed to create diary entry: %w", inputError(err))
	}

	return entry, nil
}

// GetByID retrieves one of the owner's diary entries.
func (r *DiaryEntriesRepository) GetByID(ctx context.Context, ownerID string, id uuid.UUID) (*models.DiaryEntry, error) {
	query := `SELECT ` + diaryEntryColumns + ` FROM diary_entries WHERE id = $1 AND user_id = $2`

	entry, err := scanDiaryEntry(r.db.QueryRow(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("diary entry", "diary entry not found")
		}

		return nil, fmt.Errorf("failed to get diary entry: %w", err)
	}

	return entry, nil
}

// List retrieves the owner's diary entries, newest first.
func (r *DiaryEntriesRepository) List(ctx context.Context, filters *models.RecordFilters) ([]models.DiaryEntry, error) {
	query, args := buildOwnerListQuery("diary_entries", diaryEntryColumns, filters)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list diary entries: %w", err)
	}
	defer rows.Close()

	entries := []models.DiaryEntry{}

	for rows.Next() {
		entry, err := scanDiaryEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan diary entry: %w", err)
		}

		entries = append(entries, *entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating diary entries: %w", err)
	}

	return entries, nil
}

// Delete removes one of the owner's diary entries.
func (r *DiaryEntriesRepository) Delete(ctx context.Context, ownerID string, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM diary_entries WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete diary entry: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("diary entry", "diary entry not found")
	}

	return nil
}

func scanDiaryEntry(row pgx.Row) (*models.DiaryEntry, error) {
	var entry models.DiaryEntry

	if err := row.Scan(&entry.ID, &entry.OwnerID, &entry.Content, &entry.Mood, &entry.Tags, &entry.CreatedAt); err != nil {
		return nil, err
	}

	return &entry, nil
}

// buildOwnerListQuery selects columns from table for filters.OwnerID, newest first, with
// optional LIMIT and OFFSET. Args: $1 owner, then limit and offset when set.
func buildOwnerListQuery(table, columns string, filters *models.RecordFilters) (string, []any) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE user_id = $1 ORDER BY created_at DESC, id DESC", columns, table)
	args := []any{filters.OwnerID}

	if filters.Limit > 0 {
		args = append(args, filters.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	if filters.Offset > 0 {
		args = append(args, filters.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	return query, args
}
