package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"

	"github.com/diarybot/diarybot/internal/models"
)

const (
	recordEmbeddingKind = "record_embedding"
	// EmbeddingsQueueName is the River queue used for record embedding jobs.
	EmbeddingsQueueName = "embeddings"
)

// JobInserter inserts River jobs. Satisfied by *river.Client.
type JobInserter interface {
	Insert(ctx context.Context, args river.JobArgs, opts *river.InsertOpts) (*rivertype.JobInsertResult, error)
}

// RecordEmbeddingArgs is the job payload for embedding one record. Unique by args, so repeated
// enqueues for the same record while a job is pending collapse into one.
type RecordEmbeddingArgs struct {
	ContentKind models.ContentKind `json:"content_kind" river:"unique"`
	RecordID    uuid.UUID          `json:"record_id" river:"unique"`
}

// Kind returns the River job kind.
func (RecordEmbeddingArgs) Kind() string { return recordEmbeddingKind }

var _ river.JobArgs = RecordEmbeddingArgs{}

func embeddingInsertOpts(queue string, maxAttempts int) *river.InsertOpts {
	return &river.InsertOpts{
		Queue:       queue,
		MaxAttempts: maxAttempts,
		UniqueOpts:  river.UniqueOpts{ByArgs: true},
	}
}
