package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diarybot/diarybot/internal/datatypes"
	"github.com/diarybot/diarybot/internal/models"
)

type mockJobInserter struct {
	insertCalls []insertCall
	insertErr   error
	failUntil   int // Insert fails while len(insertCalls) < failUntil.
	duplicates  map[uuid.UUID]bool
}

type insertCall struct {
	args RecordEmbeddingArgs
	opts *river.InsertOpts
}

func (m *mockJobInserter) Insert(_ context.Context, args river.JobArgs, opts *river.InsertOpts) (*rivertype.JobInsertResult, error) {
	embeddingArgs, _ := args.(RecordEmbeddingArgs)
	m.insertCalls = append(m.insertCalls, insertCall{args: embeddingArgs, opts: opts})

	if m.insertErr != nil {
		return nil, m.insertErr
	}

	if len(m.insertCalls) < m.failUntil {
		return nil, errors.New("transient error")
	}

	return &rivertype.JobInsertResult{
		Job:                      &rivertype.JobRow{ID: int64(len(m.insertCalls))},
		UniqueSkippedAsDuplicate: m.duplicates[embeddingArgs.RecordID],
	}, nil
}

func ptrString(s string) *string {
	return &s
}

func newEvent(eventType datatypes.EventType, data any) Event {
	return Event{ID: uuid.Must(uuid.NewV7()), Type: eventType, Timestamp: time.Now(), Data: data}
}

func TestEmbeddingProvider_PublishEvent_Created_enqueues(t *testing.T) {
	id := uuid.Must(uuid.NewV7())

	tests := []struct {
		name     string
		event    Event
		wantKind models.ContentKind
	}{
		{
			name:     "diary entry",
			event:    newEvent(datatypes.DiaryEntryCreated, &models.DiaryEntry{ID: id, Content: "long walk"}),
			wantKind: models.ContentKindDiary,
		},
		{
			name:     "note",
			event:    newEvent(datatypes.NoteCreated, &models.Note{ID: id, Title: "t", Content: "buy milk"}),
			wantKind: models.ContentKindNotes,
		},
		{
			name:     "finance record with description",
			event:    newEvent(datatypes.FinanceRecordCreated, &models.FinanceRecord{ID: id, Description: ptrString("groceries")}),
			wantKind: models.ContentKindFinances,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inserter := &mockJobInserter{}
			p := NewEmbeddingProvider(inserter, EmbeddingsQueueName, 3, nil)

			p.PublishEvent(context.Background(), tt.event)

			require.Len(t, inserter.insertCalls, 1)
			call := inserter.insertCalls[0]
			assert.Equal(t, tt.wantKind, call.args.ContentKind)
			assert.Equal(t, id, call.args.RecordID)
			require.NotNil(t, call.opts)
			assert.Equal(t, EmbeddingsQueueName, call.opts.Queue)
			assert.Equal(t, 3, call.opts.MaxAttempts)
			assert.True(t, call.opts.UniqueOpts.ByArgs)
		})
	}
}

func TestEmbeddingProvider_PublishEvent_skips(t *testing.T) {
	tests := []struct {
		name  string
		event Event
	}{
		{name: "deleted event", event: newEvent(datatypes.NoteDeleted, &models.Note{ID: uuid.New(), Content: "x"})},
		{name: "blank content", event: newEvent(datatypes.DiaryEntryCreated, &models.DiaryEntry{ID: uuid.New(), Content: "  "})},
		{name: "finance without description", event: newEvent(datatypes.FinanceRecordCreated, &models.FinanceRecord{ID: uuid.New()})},
		{name: "value instead of pointer", event: newEvent(datatypes.NoteCreated, models.Note{ID: uuid.New(), Content: "x"})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inserter := &mockJobInserter{}
			p := NewEmbeddingProvider(inserter, EmbeddingsQueueName, 3, nil)

			p.PublishEvent(context.Background(), tt.event)

			assert.Empty(t, inserter.insertCalls)
		})
	}
}

func TestEmbeddingProvider_PublishEvent_insertError_doesNotPanic(t *testing.T) {
	inserter := &mockJobInserter{insertErr: errors.New("db down")}
	p := NewEmbeddingProvider(inserter, EmbeddingsQueueName, 3, nil)

	p.PublishEvent(context.Background(), newEvent(datatypes.NoteCreated, &models.Note{ID: uuid.New(), Content: "x"}))

	assert.Len(t, inserter.insertCalls, 1)
}
