package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diarybot/diarybot/internal/models"
)

func testArgs() RecordEmbeddingArgs {
	return RecordEmbeddingArgs{ContentKind: models.ContentKindDiary, RecordID: uuid.New()}
}

func TestRetryingJobInserter_successAfterRetries(t *testing.T) {
	inner := &mockJobInserter{failUntil: 3}
	r := NewRetryingJobInserter(inner, RetryingJobInserterConfig{
		MaxRetries:     5,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     10 * time.Millisecond,
	})

	res, err := r.Insert(context.Background(), testArgs(), nil)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Len(t, inner.insertCalls, 3, "2 failures + 1 success")
}

func TestRetryingJobInserter_exhaustedRetries(t *testing.T) {
	inner := &mockJobInserter{failUntil: 99}
	r := NewRetryingJobInserter(inner, RetryingJobInserterConfig{
		MaxRetries:     2,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     time.Millisecond,
	})

	_, err := r.Insert(context.Background(), testArgs(), nil)
	require.Error(t, err)
	assert.Len(t, inner.insertCalls, 3)
}

func TestRetryingJobInserter_contextCancelledDuringBackoff(t *testing.T) {
	inner := &mockJobInserter{failUntil: 99}
	r := NewRetryingJobInserter(inner, RetryingJobInserterConfig{
		MaxRetries:     5,
		InitialBackoff: time.Hour,
		MaxBackoff:     time.Hour,
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Insert(ctx, testArgs(), nil)
	require.ErrorIs(t, err, context.Canceled)
	assert.Len(t, inner.insertCalls, 1)
}

func TestJitter(t *testing.T) {
	for range 100 {
		d := jitter(100 * time.Millisecond)
		assert.GreaterOrEqual(t, d, 50*time.Millisecond)
		assert.Less(t, d, 100*time.Millisecond)
	}
}
