package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/diarybot/diarybot/internal/models"
	"github.com/diarybot/diarybot/internal/observability"
)

// EmbeddingProvider implements eventPublisher by enqueueing a record_embedding job for every
// created record that has embeddable text.
type EmbeddingProvider struct {
	inserter    JobInserter
	queueName   string
	maxAttempts int
	metrics     observability.EmbeddingMetrics
}

// NewEmbeddingProvider creates a provider that enqueues record_embedding jobs.
// metrics may be nil when metrics are disabled.
func NewEmbeddingProvider(
	inserter JobInserter,
	queueName string,
	maxAttempts int,
	metrics observability.EmbeddingMetrics,
) *EmbeddingProvider {
	return &EmbeddingProvider{
		inserter:    inserter,
		queueName:   queueName,
		maxAttempts: maxAttempts,
		metrics:     metrics,
	}
}

// PublishEvent enqueues a job for *Created events. Records without text are skipped: there is
// nothing to embed and semantic search ignores rows with a NULL embedding.
func (p *EmbeddingProvider) PublishEvent(ctx context.Context, event Event) {
	if !event.Type.IsCreated() {
		return
	}

	kind, id, ok := embeddableRecord(event.Data)
	if !ok {
		slog.DebugContext(ctx, "embedding: skip, no embeddable text",
			"event_id", event.ID,
			"event_type", event.Type.String(),
		)

		return
	}

	args := RecordEmbeddingArgs{ContentKind: kind, RecordID: id}

	if _, err := p.inserter.Insert(ctx, args, embeddingInsertOpts(p.queueName, p.maxAttempts)); err != nil {
		if p.metrics != nil {
			p.metrics.RecordEnqueueError(ctx, string(kind))
		}

		slog.ErrorContext(ctx, "embedding: enqueue failed",
			"event_id", event.ID,
			"kind", kind,
			"record_id", id,
			"error", err,
		)

		return
	}

	slog.DebugContext(ctx, "embedding: job enqueued", "event_id", event.ID, "kind", kind, "record_id", id)

	if p.metrics != nil {
		p.metrics.RecordJobsEnqueued(ctx, string(kind), 1)
	}
}

// embeddableRecord extracts the kind and id of a record carried by an event, reporting false
// when the record has no searchable text.
func embeddableRecord(data any) (models.ContentKind, uuid.UUID, bool) {
	switch r := data.(type) {
	case *models.DiaryEntry:
		return models.ContentKindDiary, r.ID, hasText(&r.Content)
	case *models.Note:
		return models.ContentKindNotes, r.ID, hasText(&r.Content)
	case *models.FinanceRecord:
		return models.ContentKindFinances, r.ID, hasText(r.Description)
	default:
		return "", uuid.Nil, false
	}
}

var _ eventPublisher = (*EmbeddingProvider)(nil)

func hasText(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}
