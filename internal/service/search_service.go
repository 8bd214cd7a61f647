package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/diarybot/diarybot/internal/models"
	"github.com/diarybot/diarybot/internal/observability"
	"github.com/diarybot/diarybot/pkg/cache"
	"github.com/diarybot/diarybot/pkg/embeddings"
)

const (
	searchQueryEmbeddingCacheName = "search_query_embedding"
	tracerName                    = "github.com/diarybot/diarybot/internal/service"

	defaultSearchLimit        = 10
	defaultSearchMaxDistance  = 0.3
	defaultSearchPhaseTimeout = 5 * time.Second
)

// SearchStore runs the two search phases against the content tables. Both are scoped to
// q.OwnerID, q.Kinds and q.TimeFilter and return at most q.Limit rows.
type SearchStore interface {
	// LexicalSearch returns full-text matches ordered by rank desc, created_at desc.
	LexicalSearch(ctx context.Context, q models.StoreQuery) ([]models.SearchResult, error)
	// SemanticSearch returns records with an embedding whose cosine distance to vector is below
	// maxDistance, ordered by distance asc, created_at desc. vector is a pgvector literal.
	SemanticSearch(ctx context.Context, q models.StoreQuery, vector string, maxDistance float64) ([]models.SearchResult, error)
}

// SearchService is the hybrid search engine: lexical first, semantic only when lexical finds
// nothing.
type SearchService struct {
	store        SearchStore
	interpreter  *QueryInterpreter
	embedder     EmbeddingClient
	queryCache   *cache.LoaderCache[string, []float32]
	defaultKinds []models.ContentKind
	limit        int
	maxDistance  float64
	phaseTimeout time.Duration
	dimensions   int
	metrics      observability.SearchMetrics
	cacheMetrics observability.CacheMetrics
	tracer       trace.Tracer
	logger       *slog.Logger
}

// SearchServiceParams configures SearchService. Embedder nil disables the semantic phase;
// QueryCache, Metrics and CacheMetrics may be nil.
type SearchServiceParams struct {
	Store        SearchStore
	Interpreter  *QueryInterpreter
	Embedder     EmbeddingClient
	QueryCache   *cache.LoaderCache[string, []float32]
	DefaultKinds []models.ContentKind
	Limit        int
	MaxDistance  float64
	PhaseTimeout time.Duration
	// Dimensions, when > 0, is checked against every query embedding.
	Dimensions   int
	Metrics      observability.SearchMetrics
	CacheMetrics observability.CacheMetrics
	Logger       *slog.Logger
}

// NewSearchService creates a SearchService, filling zero-valued params with defaults.
func NewSearchService(p SearchServiceParams) *SearchService {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	interp := p.Interpreter
	if interp == nil {
		interp, _ = NewQueryInterpreter(nil, false)
	}

	kinds := p.DefaultKinds
	if len(kinds) == 0 {
		kinds = []models.ContentKind{models.ContentKindDiary, models.ContentKindNotes}
	}

	limit := p.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	maxDistance := p.MaxDistance
	if maxDistance <= 0 {
		maxDistance = defaultSearchMaxDistance
	}

	timeout := p.PhaseTimeout
	if timeout <= 0 {
		timeout = defaultSearchPhaseTimeout
	}

	return &SearchService{
		store:        p.Store,
		interpreter:  interp,
		embedder:     p.Embedder,
		queryCache:   p.QueryCache,
		defaultKinds: kinds,
		limit:        limit,
		maxDistance:  maxDistance,
		phaseTimeout: timeout,
		dimensions:   p.Dimensions,
		metrics:      p.Metrics,
		cacheMetrics: p.CacheMetrics,
		tracer:       otel.Tracer(tracerName),
		logger:       logger,
	}
}

// HybridSearch runs the lexical phase and, only if it matched nothing, the semantic phase.
// The returned outcome has NoResults set when both phases were empty. Every error is a
// *SearchFailure; a failure is never reported as an empty result.
func (s *SearchService) HybridSearch(ctx context.Context, q models.SearchQuery) (*models.SearchOutcome, error) {
	raw := strings.TrimSpace(q.Raw)
	if raw == "" {
		return nil, s.fail(ctx, "", invalidQuery(ErrEmptyQuery))
	}

	owner := strings.TrimSpace(q.OwnerID)
	if owner == "" {
		return nil, s.fail(ctx, "", invalidQuery(ErrMissingOwnerID))
	}

	kinds := q.Kinds
	if len(kinds) == 0 {
		kinds = s.defaultKinds
	}

	interp := s.interpreter.Interpret(raw)
	if interp.Ambiguous() {
		s.logger.DebugContext(ctx, "search: query names several time windows",
			"matched", interp.Matched,
			"time_filter", interp.TimeFilter,
		)
	}

	ctx, span := s.tracer.Start(ctx, "search.hybrid", trace.WithAttributes(
		attribute.String("search.time_filter", string(interp.TimeFilter)),
		attribute.Int("search.kinds", len(kinds)),
	))
	defer span.End()

	outcome := &models.SearchOutcome{
		Query:           raw,
		Term:            interp.Term,
		TimeFilter:      interp.TimeFilter,
		MatchedKeywords: interp.Matched,
		Ambiguous:       interp.Ambiguous(),
	}

	sq := models.StoreQuery{
		OwnerID:    owner,
		Term:       interp.Term,
		Kinds:      kinds,
		TimeFilter: interp.TimeFilter,
		Limit:      s.limit,
	}

	results, err := s.lexical(ctx, sq)
	if err != nil {
		return nil, s.failSpan(ctx, span, models.SearchPhaseLexical, err)
	}

	if len(results) > 0 {
		return s.finish(ctx, span, outcome, models.SearchPhaseLexical, results), nil
	}

	results, err = s.semantic(ctx, sq)
	if err != nil {
		return nil, s.failSpan(ctx, span, models.SearchPhaseSemantic, err)
	}

	return s.finish(ctx, span, outcome, models.SearchPhaseSemantic, results), nil
}

func (s *SearchService) lexical(ctx context.Context, sq models.StoreQuery) ([]models.SearchResult, error) {
	ctx, span := s.tracer.Start(ctx, "search.lexical")
	defer span.End()

	phaseCtx, cancel := context.WithTimeout(ctx, s.phaseTimeout)
	defer cancel()

	start := time.Now()
	results, err := s.store.LexicalSearch(phaseCtx, sq)
	s.recordPhase(ctx, models.SearchPhaseLexical, len(results), time.Since(start))

	if err != nil {
		span.RecordError(err)

		return nil, storeFailure(string(models.SearchPhaseLexical), err)
	}

	span.SetAttributes(attribute.Int("search.rows", len(results)))

	return results, nil
}

func (s *SearchService) semantic(ctx context.Context, sq models.StoreQuery) ([]models.SearchResult, error) {
	ctx, span := s.tracer.Start(ctx, "search.semantic")
	defer span.End()

	phaseCtx, cancel := context.WithTimeout(ctx, s.phaseTimeout)
	defer cancel()

	start := time.Now()

	vec, err := s.queryEmbedding(phaseCtx, sq.Term)
	if err != nil {
		span.RecordError(err)
		s.recordPhase(ctx, models.SearchPhaseSemantic, 0, time.Since(start))

		return nil, embeddingFailure(err)
	}

	literal, err := embeddings.FormatLiteral(vec)
	if err != nil {
		span.RecordError(err)
		s.recordPhase(ctx, models.SearchPhaseSemantic, 0, time.Since(start))

		return nil, embeddingFailure(fmt.Errorf("serialize query embedding: %w", err))
	}

	results, err := s.store.SemanticSearch(phaseCtx, sq, literal, s.maxDistance)
	s.recordPhase(ctx, models.SearchPhaseSemantic, len(results), time.Since(start))

	if err != nil {
		span.RecordError(err)

		return nil, storeFailure(string(models.SearchPhaseSemantic), err)
	}

	span.SetAttributes(attribute.Int("search.rows", len(results)))

	return results, nil
}

// queryEmbedding embeds term through the cache when one is configured. Cached vectors are
// shared and must not be modified.
func (s *SearchService) queryEmbedding(ctx context.Context, term string) ([]float32, error) {
	if s.embedder == nil {
		return nil, ErrEmbeddingsOff
	}

	if s.queryCache == nil {
		return s.loadQueryEmbedding(ctx, term)
	}

	vec, hit, err := s.queryCache.GetWithStats(ctx, term, s.loadQueryEmbedding)
	if err != nil {
		return nil, fmt.Errorf("query embedding: %w", err)
	}

	if s.cacheMetrics != nil {
		if hit {
			s.cacheMetrics.RecordHit(ctx, searchQueryEmbeddingCacheName)
		} else {
			s.cacheMetrics.RecordMiss(ctx, searchQueryEmbeddingCacheName)
		}
	}

	return vec, nil
}

func (s *SearchService) loadQueryEmbedding(ctx context.Context, term string) ([]float32, error) {
	vec, err := s.embedder.CreateEmbedding(ctx, term)
	if err != nil {
		return nil, fmt.Errorf("create embedding: %w", err)
	}

	if err := embeddings.ValidateResponse(vec, s.dimensions); err != nil {
		return nil, fmt.Errorf("create embedding: %w", err)
	}

	return vec, nil
}

func (s *SearchService) finish(
	ctx context.Context, span trace.Span, outcome *models.SearchOutcome, phase models.SearchPhase, results []models.SearchResult,
) *models.SearchOutcome {
	outcome.Phase = phase
	outcome.Results = results
	outcome.NoResults = len(results) == 0

	status := "results"
	if outcome.NoResults {
		status = "no_results"
	}

	span.SetAttributes(
		attribute.String("search.phase", string(phase)),
		attribute.String("search.outcome", status),
	)

	if s.metrics != nil {
		s.metrics.RecordSearch(ctx, string(phase), status)
	}

	s.logger.DebugContext(ctx, "search: done",
		"phase", phase,
		"outcome", status,
		"count", len(results),
		"time_filter", outcome.TimeFilter,
	)

	return outcome
}

func (s *SearchService) failSpan(ctx context.Context, span trace.Span, phase models.SearchPhase, err error) error {
	span.SetStatus(codes.Error, err.Error())

	return s.fail(ctx, phase, err)
}

func (s *SearchService) fail(ctx context.Context, phase models.SearchPhase, err error) error {
	var sf *SearchFailure
	if !errors.As(err, &sf) {
		sf = storeFailure(string(phase), err)
	}

	if s.metrics != nil {
		s.metrics.RecordFailure(ctx, string(sf.Kind))

		if phase != "" {
			s.metrics.RecordSearch(ctx, string(phase), "failed")
		}
	}

	if sf.Kind == FailureInvalidQuery {
		s.logger.DebugContext(ctx, "search: rejected", "error", sf)
	} else {
		s.logger.ErrorContext(ctx, "search: failed", "phase", phase, "kind", sf.Kind, "reason", sf.Reason, "error", sf.Err)
	}

	return sf
}

func (s *SearchService) recordPhase(ctx context.Context, phase models.SearchPhase, rows int, d time.Duration) {
	if s.metrics != nil {
		s.metrics.RecordPhaseDuration(ctx, string(phase), rows, d)
	}
}
