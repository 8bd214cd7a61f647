package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/diarybot/diarybot/internal/models"
)

var (
	errNoKinds    = errors.New("at least one content kind is required")
	errNoOwner    = errors.New("owner id is required")
	errBadLimit   = errors.New("limit must be positive")
	errNoVector   = errors.New("query vector is required")
	errBadMaxDist = errors.New("max distance must be positive")
)

// SearchRepository runs hybrid search queries over diary entries, notes and finance records.
type SearchRepository struct {
	db *pgxpool.Pool
}

// NewSearchRepository creates a new search repository.
func NewSearchRepository(db *pgxpool.Pool) *SearchRepository {
	return &SearchRepository{db: db}
}

// LexicalSearch runs a full-text match of q.Term over every kind in q.Kinds. Candidates of all
// kinds are unioned, then ordered by ts_rank desc, created_at desc and limited.
func (r *SearchRepository) LexicalSearch(ctx context.Context, q models.StoreQuery) ([]models.SearchResult, error) {
	query, args, err := buildLexicalQuery(q)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("lexical search: %w", err)
	}

	return collectResults(rows)
}

// SemanticSearch compares vector (a pgvector literal) with the stored embeddings of every kind
// in q.Kinds. Rows without an embedding are not candidates. Candidates are unioned, filtered by
// distance < maxDistance, ordered by distance asc, created_at desc and limited.
func (r *SearchRepository) SemanticSearch(
	ctx context.Context, q models.StoreQuery, vector string, maxDistance float64,
) ([]models.SearchResult, error) {
	query, args, err := buildSemanticQuery(q, vector, maxDistance)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("semantic search: %w", err)
	}

	return collectResults(rows)
}

func collectResults(rows pgx.Rows) ([]models.SearchResult, error) {
	defer rows.Close()

	results := []models.SearchResult{}

	for rows.Next() {
		var res models.SearchResult
		if err := rows.Scan(&res.ID, &res.Body, &res.Kind, &res.CreatedAt, &res.Score); err != nil {
			return nil, fmt.Errorf("scan search result: %w", err)
		}

		results = append(results, res)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating search results: %w", err)
	}

	return results, nil
}

func validateStoreQuery(q models.StoreQuery) error {
	switch {
	case strings.TrimSpace(q.OwnerID) == "":
		return errNoOwner
	case len(q.Kinds) == 0:
		return errNoKinds
	case q.Limit <= 0:
		return errBadLimit
	}

	return nil
}

// buildCandidates renders one SELECT per kind joined with UNION ALL. Each branch selects
// id, body, kind, created_at and the score expression, filtered by owner ($1), the time filter
// and match.
func buildCandidates(q models.StoreQuery, score, match func(body string) string) (string, error) {
	timeCond, err := timeCondition(q.TimeFilter)
	if err != nil {
		return "", err
	}

	branches := make([]string, 0, len(q.Kinds))

	for _, kind := range q.Kinds {
		table, err := tableFor(kind)
		if err != nil {
			return "", err
		}

		conditions := []string{"user_id = $1", match(table.body)}
		if timeCond != "" {
			conditions = append(conditions, timeCond)
		}

		branches = append(branches, fmt.Sprintf(
			"SELECT id, %s AS body, '%s'::text AS kind, created_at, %s AS score FROM %s WHERE %s",
			table.body, kind, score(table.body), table.name, strings.Join(conditions, " AND "),
		))
	}

	return strings.Join(branches, "\n\t\tUNION ALL\n\t\t"), nil
}

// buildLexicalQuery args: $1 owner, $2 term, $3 limit.
func buildLexicalQuery(q models.StoreQuery) (string, []any, error) {
	if err := validateStoreQuery(q); err != nil {
		return "", nil, err
	}

	term := strings.TrimSpace(q.Term)
	if term == "" {
		return "", nil, errors.New("search term is required")
	}

	candidates, err := buildCandidates(q,
		func(body string) string {
			return fmt.Sprintf("ts_rank(to_tsvector('english', %s), plainto_tsquery('english', $2))::float8", body)
		},
		func(body string) string {
			return fmt.Sprintf("to_tsvector('english', %s) @@ plainto_tsquery('english', $2)", body)
		},
	)
	if err != nil {
		return "", nil, err
	}

	query := fmt.Sprintf(`
		SELECT id, body, kind, created_at, score FROM (
		%s
		) AS candidates
		ORDER BY score DESC, created_at DESC
		LIMIT $3`, candidates)

	return query, []any{q.OwnerID, term, q.Limit}, nil
}

// buildSemanticQuery args: $1 owner, $2 vector literal, $3 max distance, $4 limit.
func buildSemanticQuery(q models.StoreQuery, vector string, maxDistance float64) (string, []any, error) {
	if err := validateStoreQuery(q); err != nil {
		return "", nil, err
	}

	if vector == "" {
		return "", nil, errNoVector
	}

	if maxDistance <= 0 {
		return "", nil, errBadMaxDist
	}

	candidates, err := buildCandidates(q,
		func(string) string { return "(embedding <=> $2::text::vector)::float8" },
		func(string) string { return "embedding IS NOT NULL" },
	)
	if err != nil {
		return "", nil, err
	}

	query := fmt.Sprintf(`
		SELECT id, body, kind, created_at, score FROM (
		%s
		) AS candidates
		WHERE score < $3
		ORDER BY score ASC, created_at DESC
		LIMIT $4`, candidates)

	return query, []any{q.OwnerID, vector, maxDistance, q.Limit}, nil
}
