package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	apperrors "github.com/diarybot/diarybot/internal/errors"
	"github.com/diarybot/diarybot/internal/models"
)

// ErrEmbeddingNotFound is returned when a record exists but has no embedding yet.
var ErrEmbeddingNotFound = errors.New("record has no embedding")

// EmbeddingsRepository reads record text for the embedding worker and stores the resulting
// vectors in the embedding column of each content table.
type EmbeddingsRepository struct {
	db *pgxpool.Pool
}

// NewEmbeddingsRepository creates a new embeddings repository.
func NewEmbeddingsRepository(db *pgxpool.Pool) *EmbeddingsRepository {
	return &EmbeddingsRepository{db: db}
}

// GetEmbeddableText returns the searchable text of one record. Finance records without a
// description return "".
func (r *EmbeddingsRepository) GetEmbeddableText(ctx context.Context, kind models.ContentKind, id uuid.UUID) (string, error) {
	table, err := tableFor(kind)
	if err != nil {
		return "", err
	}

	var text string

	err = r.db.QueryRow(ctx,
		fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", table.body, table.name), id,
	).Scan(&text)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.NewNotFoundError(string(kind), fmt.Sprintf("%s record not found", kind))
		}

		return "", fmt.Errorf("get embeddable text: %w", err)
	}

	return text, nil
}

// SetEmbedding stores literal (a pgvector literal) as the record's embedding. A nil literal
// clears it.
func (r *EmbeddingsRepository) SetEmbedding(ctx context.Context, kind models.ContentKind, id uuid.UUID, literal *string) error {
	table, err := tableFor(kind)
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx,
		fmt.Sprintf("UPDATE %s SET embedding = $2::text::vector WHERE id = $1", table.name), id, literal,
	)
	if err != nil {
		return fmt.Errorf("set embedding: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError(string(kind), fmt.Sprintf("%s record not found", kind))
	}

	return nil
}

// GetEmbedding returns the stored embedding of a record, or ErrEmbeddingNotFound when it is NULL.
func (r *EmbeddingsRepository) GetEmbedding(ctx context.Context, kind models.ContentKind, id uuid.UUID) ([]float32, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	var vec *pgvector.Vector

	err = r.db.QueryRow(ctx,
		fmt.Sprintf("SELECT embedding FROM %s WHERE id = $1", table.name), id,
	).Scan(&vec)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError(string(kind), fmt.Sprintf("%s record not found", kind))
		}

		return nil, fmt.Errorf("get embedding: %w", err)
	}

	if vec == nil {
		return nil, ErrEmbeddingNotFound
	}

	return vec.Slice(), nil
}

// ListIDsMissingEmbedding returns ids of records of kind that have non-empty text and a NULL
// embedding, oldest first.
func (r *EmbeddingsRepository) ListIDsMissingEmbedding(ctx context.Context, kind models.ContentKind) ([]uuid.UUID, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, fmt.Sprintf(`
		SELECT id FROM %s
		WHERE embedding IS NULL AND trim(%s) != ''
		ORDER BY created_at ASC`, table.name, table.body))
	if err != nil {
		return nil, fmt.Errorf("list %s ids missing embedding: %w", kind, err)
	}
	defer rows.Close()

	var ids []uuid.UUID

	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan record id: %w", err)
		}

		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating ids missing embedding: %w", err)
	}

	return ids, nil
}
