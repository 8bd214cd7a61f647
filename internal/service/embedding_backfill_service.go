package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/diarybot/diarybot/internal/models"
	"github.com/diarybot/diarybot/internal/observability"
)

// BackfillRepository lists records that still need an embedding.
type BackfillRepository interface {
	// ListIDsMissingEmbedding returns ids of records of kind with non-empty text and a NULL embedding.
	ListIDsMissingEmbedding(ctx context.Context, kind models.ContentKind) ([]uuid.UUID, error)
}

// BackfillResult counts, per kind, records found without an embedding, jobs enqueued, and
// records skipped because an equivalent job was already queued.
type BackfillResult struct {
	Kind       models.ContentKind
	Missing    int
	Enqueued   int
	Duplicates int
}

// EmbeddingBackfillService enqueues record_embedding jobs for records created before the
// pipeline was enabled or whose jobs were discarded.
type EmbeddingBackfillService struct {
	repo        BackfillRepository
	inserter    JobInserter
	queueName   string
	maxAttempts int
	metrics     observability.EmbeddingMetrics
}

// NewEmbeddingBackfillService creates the service. inserter may be nil for dry runs only.
func NewEmbeddingBackfillService(
	repo BackfillRepository, inserter JobInserter, queueName string, maxAttempts int, metrics observability.EmbeddingMetrics,
) *EmbeddingBackfillService {
	return &EmbeddingBackfillService{
		repo:        repo,
		inserter:    inserter,
		queueName:   queueName,
		maxAttempts: maxAttempts,
		metrics:     metrics,
	}
}

// BackfillEmbeddings enqueues one job per record missing an embedding, for each kind in order.
// With dryRun nothing is enqueued. It stops at the first enqueue error; results for kinds
// already processed are still returned.
func (s *EmbeddingBackfillService) BackfillEmbeddings(
	ctx context.Context, kinds []models.ContentKind, dryRun bool,
) ([]BackfillResult, error) {
	if !dryRun && s.inserter == nil {
		return nil, errors.New("backfill: no job inserter configured")
	}

	results := make([]BackfillResult, 0, len(kinds))

	for _, kind := range kinds {
		ids, err := s.repo.ListIDsMissingEmbedding(ctx, kind)
		if err != nil {
			return results, fmt.Errorf("list %s records missing embeddings: %w", kind, err)
		}

		res := BackfillResult{Kind: kind, Missing: len(ids)}

		if !dryRun {
			for _, id := range ids {
				args := RecordEmbeddingArgs{ContentKind: kind, RecordID: id}

				inserted, err := s.inserter.Insert(ctx, args, embeddingInsertOpts(s.queueName, s.maxAttempts))
				if err != nil {
					if s.metrics != nil {
						s.metrics.RecordEnqueueError(ctx, string(kind))
					}

					results = append(results, res)

					return results, fmt.Errorf("enqueue %s %s: %w", kind, id, err)
				}

				if inserted != nil && inserted.UniqueSkippedAsDuplicate {
					res.Duplicates++

					continue
				}

				res.Enqueued++
			}

			if s.metrics != nil && res.Enqueued > 0 {
				s.metrics.RecordJobsEnqueued(ctx, string(kind), int64(res.Enqueued))
			}
		}

		slog.InfoContext(ctx, "backfill: kind processed",
			"kind", kind,
			"missing", res.Missing,
			"enqueued", res.Enqueued,
			"duplicates", res.Duplicates,
			"dry_run", dryRun,
		)

		results = append(results, res)
	}

	return results, nil
}
