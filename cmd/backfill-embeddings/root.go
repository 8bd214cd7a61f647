package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/diarybot/diarybot/internal/models"
	"github.com/diarybot/diarybot/internal/service"
)

const everyKind = "diary,notes,finances"

type backfiller interface {
	BackfillEmbeddings(ctx context.Context, kinds []models.ContentKind, dryRun bool) ([]service.BackfillResult, error)
}

// opener builds the backfiller on demand so flag errors surface before any connection is made.
type opener func(ctx context.Context) (backfiller, func(), error)

// NewRootCmd returns the backfill-embeddings command.
func NewRootCmd(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backfill-embeddings",
		Short: "Enqueue embedding jobs for records without an embedding",
		Long: `Lists diary entries, notes and finance records that have text but no embedding and
enqueues one record_embedding job per record on the embeddings queue. The API process runs
the jobs; this command only enqueues them.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          makeBackfillRunner(open),
	}

	cmd.Flags().String("kind", everyKind, `content kinds to backfill: "all" (diary and notes), a kind, or a comma-separated list`)
	cmd.Flags().Bool("dry-run", false, "count records missing embeddings without enqueueing jobs")

	return cmd
}

func makeBackfillRunner(open opener) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		kindFlag, _ := cmd.Flags().GetString("kind")
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		kinds, err := models.ParseContentScope(kindFlag)
		if err != nil {
			return fmt.Errorf("--kind: %w", err)
		}

		svc, closeFn, err := open(cmd.Context())
		if err != nil {
			return err
		}
		defer closeFn()

		results, err := svc.BackfillEmbeddings(cmd.Context(), kinds, dryRun)
		printResults(cmd, results, dryRun)

		if err != nil {
			return fmt.Errorf("backfill: %w", err)
		}

		return nil
	}
}

func printResults(cmd *cobra.Command, results []service.BackfillResult, dryRun bool) {
	out := cmd.OutOrStdout()

	var missing, enqueued, duplicates int

	for _, r := range results {
		missing += r.Missing
		enqueued += r.Enqueued
		duplicates += r.Duplicates

		fmt.Fprintf(out, "%-9s missing=%d enqueued=%d already_queued=%d\n", r.Kind, r.Missing, r.Enqueued, r.Duplicates)
	}

	if dryRun {
		fmt.Fprintf(out, "Dry run: %d record(s) missing embeddings, nothing enqueued.\n", missing)

		return
	}

	fmt.Fprintf(out, "Enqueued %d embedding job(s) for %d record(s) in %s.\n",
		enqueued, missing, strings.Join(kindNames(results), ", "))

	if duplicates > 0 {
		fmt.Fprintf(out, "%d record(s) already had a queued job.\n", duplicates)
	}
}

func kindNames(results []service.BackfillResult) []string {
	names := make([]string, 0, len(results))
	for _, r := range results {
		names = append(names, string(r.Kind))
	}

	return names
}
