package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diarybot/diarybot/internal/models"
	"github.com/diarybot/diarybot/internal/service"
)

type fakeBackfiller struct {
	kinds      []models.ContentKind
	dryRun     bool
	err        error
	duplicates int
}

func (f *fakeBackfiller) BackfillEmbeddings(
	_ context.Context, kinds []models.ContentKind, dryRun bool,
) ([]service.BackfillResult, error) {
	f.kinds = kinds
	f.dryRun = dryRun

	results := make([]service.BackfillResult, 0, len(kinds))
	for _, k := range kinds {
		r := service.BackfillResult{Kind: k, Missing: 2}
		if !dryRun {
			r.Enqueued = 2 - f.duplicates
			r.Duplicates = f.duplicates
		}

		results = append(results, r)
	}

	return results, f.err
}

func runCmd(t *testing.T, fake *fakeBackfiller, args ...string) (string, error) {
	t.Helper()

	closed := false
	cmd := NewRootCmd(func(context.Context) (backfiller, func(), error) {
		return fake, func() { closed = true }, nil
	})

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	if err == nil {
		assert.True(t, closed)
	}

	return out.String(), err
}

func TestRootCmd(t *testing.T) {
	t.Run("defaults to every kind", func(t *testing.T) {
		fake := &fakeBackfiller{}

		out, err := runCmd(t, fake)
		require.NoError(t, err)
		assert.Equal(t, models.AllContentKinds(), fake.kinds)
		assert.False(t, fake.dryRun)
		assert.Contains(t, out, "Enqueued 6 embedding job(s) for 6 record(s) in diary, notes, finances.")
	})

	t.Run("already queued records are reported apart", func(t *testing.T) {
		fake := &fakeBackfiller{duplicates: 1}

		out, err := runCmd(t, fake, "--kind", "diary")
		require.NoError(t, err)
		assert.Contains(t, out, "diary     missing=2 enqueued=1 already_queued=1")
		assert.Contains(t, out, "Enqueued 1 embedding job(s) for 2 record(s) in diary.")
		assert.Contains(t, out, "1 record(s) already had a queued job.")
	})

	t.Run("dry run with one kind", func(t *testing.T) {
		fake := &fakeBackfiller{}

		out, err := runCmd(t, fake, "--kind", "notes", "--dry-run")
		require.NoError(t, err)
		assert.Equal(t, []models.ContentKind{models.ContentKindNotes}, fake.kinds)
		assert.True(t, fake.dryRun)
		assert.Contains(t, out, "Dry run: 2 record(s) missing embeddings")
	})

	t.Run("unknown kind fails before connecting", func(t *testing.T) {
		cmd := NewRootCmd(func(context.Context) (backfiller, func(), error) {
			t.Fatal("must not open the database")

			return nil, nil, nil
		})
		cmd.SetArgs([]string{"--kind", "todos"})
		cmd.SetOut(&bytes.Buffer{})

		err := cmd.ExecuteContext(context.Background())
		require.ErrorIs(t, err, models.ErrInvalidContentKind)
	})

	t.Run("enqueue error is returned after printing progress", func(t *testing.T) {
		fake := &fakeBackfiller{err: errors.New("river unavailable")}

		out, err := runCmd(t, fake, "--kind", "diary")
		require.Error(t, err)
		assert.Contains(t, out, "diary")
	})
}
