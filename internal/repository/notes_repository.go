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

const noteColumns = "id, user_id, title, content, created_at"

// NotesRepository handles data access for notes.
type NotesRepository struct {
	db *pgxpool.Pool
}

// NewNotesRepository creates a new notes repository.
func NewNotesRepository(db *pgxpool.Pool) *NotesRepository {
	return &NotesRepository{db: db}
}

// Create inserts a new note.
func (r *NotesRepository) Create(ctx context.Context, req *models.CreateNoteRequest) (*models.Note, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate note id: %w", err)
	}

	query := `
		INSERT INTO notes (id, user_id, title, content)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + noteColumns

	note, err := scanNote(r.db.QueryRow(ctx, query, id, req.OwnerID, req.Title, req.Content))
	if err != nil {
		return nil, fmt.Errorf("failed to create note: %w", inputError(err))
	}

	return note, nil
}

// GetByID retrieves one of the owner's notes.
func (r *NotesRepository) GetByID(ctx context.Context, ownerID string, id uuid.UUID) (*models.Note, error) {
	query := `SELECT ` + noteColumns + ` FROM notes WHERE id = $1 AND user_id = $2`

	note, err := scanNote(r.db.QueryRow(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("note", "note not found")
		}

		return nil, fmt.Errorf("failed to get note: %w", err)
	}

	return note, nil
}

// List retrieves the owner's notes, newest first.
func (r *NotesRepository) List(ctx context.Context, filters *models.RecordFilters) ([]models.Note, error) {
	query, args := buildOwnerListQuery("notes", noteColumns, filters)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	defer rows.Close()

	notes := []models.Note{}

	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}

		notes = append(notes, *note)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notes: %w", err)
	}

	return notes, nil
}

// Delete removes one of the owner's notes.
func (r *NotesRepository) Delete(ctx context.Context, ownerID string, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM notes WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("note", "note not found")
	}

	return nil
}

func scanNote(row pgx.Row) (*models.Note, error) {
	var note models.Note

	if err := row.Scan(&note.ID, &note.OwnerID, &note.Title, &note.Content, &note.CreatedAt); err != nil {
		return nil, err
	}

	return &note, nil
}
