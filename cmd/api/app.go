package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivertype"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"golang.org/x/time/rate"

	"github.com/diarybot/diarybot/internal/api/handlers"
	"github.com/diarybot/diarybot/internal/api/middleware"
	"github.com/diarybot/diarybot/internal/config"
	"github.com/diarybot/diarybot/internal/models"
	"github.com/diarybot/diarybot/internal/observability"
	"github.com/diarybot/diarybot/internal/repository"
	"github.com/diarybot/diarybot/internal/service"
	"github.com/diarybot/diarybot/internal/workers"
	"github.com/diarybot/diarybot/pkg/cache"
)

// App holds all server dependencies and coordinates startup and shutdown.
type App struct {
	cfg            *config.Config
	db             *pgxpool.Pool
	server         *http.Server
	river          *river.Client[pgx.Tx]
	message        *service.MessagePublisherManager
	meterProvider  *sdkmetric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	metrics        *observability.Metrics
}

const (
	riverQueueDepthInterval = 15 * time.Second

	enqueueMaxRetries     = 3
	enqueueInitialBackoff = 200 * time.Millisecond
	enqueueMaxBackoff     = 2 * time.Second
)

// setupMetrics creates the meter provider and collectors when metrics are enabled. The returned
// handler is non-nil only for the prometheus exporter.
func setupMetrics(cfg *config.Config) (*sdkmetric.MeterProvider, http.Handler, *observability.Metrics, error) {
	mp, handler, err := observability.NewMeterProvider(cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("create meter provider: %w", err)
	}

	if mp == nil {
		return nil, nil, nil, nil
	}

	metrics, err := observability.NewMetrics(mp.Meter("diarybot"))
	if err != nil {
		if err2 := observability.ShutdownMeterProvider(context.Background(), mp); err2 != nil {
			slog.Error("shutdown meter provider after metrics error", "error", err2)
		}

		return nil, nil, nil, fmt.Errorf("create metrics: %w", err)
	}

	return mp, handler, metrics, nil
}

// NewApp builds and wires all components. It does not start the HTTP server or River;
// call Run to start and block until shutdown or failure.
func NewApp(cfg *config.Config, db *pgxpool.Pool) (app *App, err error) {
	var (
		meterProvider  *sdkmetric.MeterProvider
		metricsHandler http.Handler
		metrics        *observability.Metrics
		tracerProvider *sdktrace.TracerProvider
	)

	// Undo observability setup when a later step fails.
	defer func() {
		if err == nil {
			return
		}

		if obsErr := shutdownObservability(context.Background(), tracerProvider, meterProvider); obsErr != nil {
			slog.Error("shutdown observability after init error", "error", obsErr)
		}
	}()

	if cfg.OtelMetricsExporter == "" {
		slog.Warn("metrics not enabled (OTEL_METRICS_EXPORTER empty or unset)")
	} else {
		meterProvider, metricsHandler, metrics, err = setupMetrics(cfg)
		if err != nil {
			return nil, err
		}
	}

	var (
		searchMetrics    observability.SearchMetrics
		embeddingMetrics observability.EmbeddingMetrics
		eventMetrics     observability.EventMetrics
		cacheMetrics     observability.CacheMetrics
		apiMetrics       observability.APIMetrics
	)
	if metrics != nil {
		searchMetrics = metrics.Search
		embeddingMetrics = metrics.Embeddings
		eventMetrics = metrics.Events
		cacheMetrics = metrics.Cache
		apiMetrics = metrics.API
	}

	if cfg.OtelTracesExporter == "" {
		slog.Warn("tracing not enabled (OTEL_TRACES_EXPORTER empty or unset)")
	} else {
		tracerProvider, err = observability.NewTracerProvider(cfg)
		if err != nil {
			return nil, fmt.Errorf("create tracer provider: %w", err)
		}
	}

	// Install TraceContextHandler unconditionally so request_id (and trace_id/span_id when tracing is on) appear in logs.
	defaultHandler := slog.Default().Handler()
	slog.SetDefault(slog.New(observability.NewTraceContextHandler(defaultHandler)))

	if tracerProvider != nil {
		otel.SetTracerProvider(tracerProvider)
	}

	if meterProvider != nil {
		otel.SetMeterProvider(meterProvider)
	}

	defaultKinds, err := models.ParseContentScope(cfg.SearchDefaultContentKind)
	if err != nil {
		return nil, fmt.Errorf("SEARCH_DEFAULT_CONTENT_KIND: %w", err)
	}

	interpreter, err := service.NewQueryInterpreter(cfg.SearchTimeKeywordOrder, cfg.SearchStripTimeKeywords)
	if err != nil {
		return nil, fmt.Errorf("SEARCH_TIME_KEYWORD_PRIORITY: %w", err)
	}

	embeddingClient, err := newEmbeddingClient(context.Background(), cfg)
	if err != nil {
		return nil, err
	}

	var queryCache *cache.LoaderCache[string, []float32]
	if embeddingClient != nil && cfg.SearchQueryCacheSize > 0 {
		queryCache, err = cache.NewLoaderCache[string, []float32](
			cfg.SearchQueryCacheSize, cfg.SearchQueryCacheTTL, func(s string) string { return s },
		)
		if err != nil {
			return nil, fmt.Errorf("create search query cache: %w", err)
		}
	}

	messageManager := service.NewMessagePublisherManager(eventMetrics)

	diaryRepo := repository.NewDiaryEntriesRepository(db)
	notesRepo := repository.NewNotesRepository(db)
	financesRepo := repository.NewFinancesRepository(db)
	embeddingsRepo := repository.NewEmbeddingsRepository(db)
	searchRepo := repository.NewSearchRepository(db)

	var riverClient *river.Client[pgx.Tx]

	if embeddingClient != nil {
		riverClient, err = newRiverClient(cfg, db, embeddingsRepo, embeddingClient, embeddingMetrics)
		if err != nil {
			messageManager.Shutdown()

			return nil, err
		}

		inserter := service.NewRetryingJobInserter(riverClient, service.RetryingJobInserterConfig{
			MaxRetries:     enqueueMaxRetries,
			InitialBackoff: enqueueInitialBackoff,
			MaxBackoff:     enqueueMaxBackoff,
			Metrics:        embeddingMetrics,
		})
		messageManager.RegisterProvider(service.NewEmbeddingProvider(
			inserter, service.EmbeddingsQueueName, cfg.EmbeddingMaxAttempts, embeddingMetrics,
		))
	}

	searchService := service.NewSearchService(service.SearchServiceParams{
		Store:        searchRepo,
		Interpreter:  interpreter,
		Embedder:     embeddingClient,
		QueryCache:   queryCache,
		DefaultKinds: defaultKinds,
		Limit:        cfg.SearchResultLimit,
		MaxDistance:  cfg.SearchMaxDistance,
		PhaseTimeout: cfg.SearchPhaseTimeout,
		Dimensions:   cfg.EmbeddingDimensions,
		Metrics:      searchMetrics,
		CacheMetrics: cacheMetrics,
		Logger:       slog.Default(),
	})

	routes := apiRoutes{
		health:   handlers.NewHealthHandler(db),
		search:   handlers.NewSearchHandler(searchService),
		diary:    handlers.NewDiaryEntriesHandler(service.NewDiaryEntriesService(diaryRepo, messageManager)),
		notes:    handlers.NewNotesHandler(service.NewNotesService(notesRepo, messageManager)),
		finances: handlers.NewFinancesHandler(service.NewFinancesService(financesRepo, messageManager)),
		metrics:  metricsHandler,
	}

	server := newHTTPServer(cfg, routes, apiMetrics, meterProvider, tracerProvider)

	return &App{
		cfg:            cfg,
		db:             db,
		server:         server,
		river:          riverClient,
		message:        messageManager,
		meterProvider:  meterProvider,
		tracerProvider: tracerProvider,
		metrics:        metrics,
	}, nil
}

// newRiverClient creates the River client running the record embedding worker on the embeddings
// queue. Provider calls are rate limited across all workers of the process.
func newRiverClient(
	cfg *config.Config,
	db *pgxpool.Pool,
	store *repository.EmbeddingsRepository,
	embedder service.EmbeddingClient,
	metrics observability.EmbeddingMetrics,
) (*river.Client[pgx.Tx], error) {
	limiter := rate.NewLimiter(rate.Limit(cfg.EmbeddingRateLimit), 1)

	riverWorkers := river.NewWorkers()
	river.AddWorker(riverWorkers, workers.NewRecordEmbeddingWorker(
		store, embedder, limiter, cfg.EmbeddingDimensions, metrics,
	))

	riverClient, err := river.NewClient(riverpgxv5.New(db), &river.Config{
		Queues: map[string]river.QueueConfig{
			service.EmbeddingsQueueName: {MaxWorkers: cfg.EmbeddingMaxConcurrent},
		},
		Workers: riverWorkers,
	})
	if err != nil {
		return nil, fmt.Errorf("create River client: %w", err)
	}

	return riverClient, nil
}

// apiRoutes groups the handlers mounted by newHTTPServer. metrics is nil unless the prometheus
// exporter is configured.
type apiRoutes struct {
	health   *handlers.HealthHandler
	search   *handlers.SearchHandler
	diary    *handlers.DiaryEntriesHandler
	notes    *handlers.NotesHandler
	finances *handlers.FinancesHandler
	metrics  http.Handler
}

// newHTTPServer builds the HTTP server and router (no auth on /health and /metrics, API key on /v1).
// Handler chain: RequestID -> otelhttp(Logging(router)) so access logs get trace_id/span_id from context.
func newHTTPServer(
	cfg *config.Config,
	routes apiRoutes,
	apiMetrics observability.APIMetrics,
	meterProvider *sdkmetric.MeterProvider,
	tracerProvider *sdktrace.TracerProvider,
) *http.Server {
	r := chi.NewRouter()
	r.Get("/health", routes.health.Check)

	if routes.metrics != nil {
		r.Method(http.MethodGet, "/metrics", routes.metrics)
	}

	var bodyRecorder middleware.BodyLimitRecorder
	if apiMetrics != nil {
		bodyRecorder = apiMetrics
	}

	r.Route("/v1", func(v1 chi.Router) {
		v1.Use(middleware.Auth(middleware.NewAPIKeyAuthenticator(cfg.APIKey)))
		v1.Use(middleware.MaxBody(cfg.MaxRequestBodyBytes, bodyRecorder))

		v1.Get("/search", routes.search.Search)

		v1.Post("/diary-entries", routes.diary.Create)
		v1.Get("/diary-entries", routes.diary.List)
		v1.Get("/diary-entries/{id}", routes.diary.Get)
		v1.Delete("/diary-entries/{id}", routes.diary.Delete)

		v1.Post("/notes", routes.notes.Create)
		v1.Get("/notes", routes.notes.List)
		v1.Get("/notes/{id}", routes.notes.Get)
		v1.Delete("/notes/{id}", routes.notes.Delete)

		v1.Post("/finances", routes.finances.Create)
		v1.Get("/finances", routes.finances.List)
		v1.Get("/finances/{id}", routes.finances.Get)
		v1.Delete("/finances/{id}", routes.finances.Delete)
	})

	otelOpts := []otelhttp.Option{
		// Skip tracing and HTTP metrics for health checks and scrapes to reduce noise.
		otelhttp.WithFilter(func(r *http.Request) bool {
			return r.URL.Path != "/health" && r.URL.Path != "/metrics"
		}),
	}
	if meterProvider != nil {
		otelOpts = append(otelOpts, otelhttp.WithMeterProvider(meterProvider))
	}

	if tracerProvider != nil {
		otelOpts = append(otelOpts, otelhttp.WithTracerProvider(tracerProvider))
	}

	// Logging runs inside otelhttp so r.Context() has the span when we log (trace_id/span_id in access logs).
	inner := middleware.Logging(r)
	handler := otelhttp.NewHandler(inner, "diarybot-api", otelOpts...)
	handler = middleware.RequestID(handler)

	const (
		readTimeout  = 15 * time.Second
		writeTimeout = 30 * time.Second
		idleTimeout  = 60 * time.Second
	)

	return &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}
}

// Run starts the HTTP server and River, then blocks until ctx is cancelled (e.g. signal)
// or a component fails. When ctx is cancelled or a component fails, it cancels the internal
// River context so River and the queue depth poller stop before Run returns. Caller should then call Shutdown.
func (a *App) Run(ctx context.Context) error {
	runErr := make(chan error, 1)

	riverCtx, cancelRiver := context.WithCancel(ctx)
	defer cancelRiver()

	// River only runs when an embedding provider is configured.
	if a.river != nil {
		if a.metrics != nil && a.metrics.Events != nil {
			go runRiverQueueDepthPoller(riverCtx, a.db, a.metrics.Events)
		}

		go func() {
			if err := a.river.Start(riverCtx); err != nil && !errors.Is(err, context.Canceled) {
				select {
				case runErr <- fmt.Errorf("river: %w", err):
				default:
				}
			}
		}()
	}

	go func() {
		slog.Info("Starting server", "port", a.cfg.Port)

		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			select {
			case runErr <- fmt.Errorf("server: %w", err):
			default:
			}
		}
	}()

	select {
	case err := <-runErr:
		cancelRiver()

		return err
	case <-ctx.Done():
		cancelRiver()

		return nil
	}
}

// runRiverQueueDepthPoller periodically updates the embeddings queue depth gauge.
func runRiverQueueDepthPoller(ctx context.Context, db *pgxpool.Pool, eventMetrics observability.EventMetrics) {
	ticker := time.NewTicker(riverQueueDepthInterval)
	defer ticker.Stop()

	update := func() {
		var count int

		err := db.QueryRow(ctx,
			`SELECT COUNT(*) FROM river_job WHERE queue = $1 AND state IN ($2, $3, $4)`,
			service.EmbeddingsQueueName,
			rivertype.JobStateAvailable, rivertype.JobStateRetryable, rivertype.JobStateScheduled,
		).Scan(&count)
		if err != nil {
			slog.WarnContext(ctx, "river queue depth poll failed", "error", err)

			return
		}

		eventMetrics.SetRiverQueueDepth(count)
	}

	update()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			update()
		}
	}
}

// shutdownObservability shuts down tracer and meter providers. Logs secondary errors, returns the first.
func shutdownObservability(ctx context.Context, tracer *sdktrace.TracerProvider, meter *sdkmetric.MeterProvider) error {
	var first error

	if tracer != nil {
		if err := observability.ShutdownTracerProvider(ctx, tracer); err != nil {
			first = err
		}
	}

	if meter != nil {
		if err := observability.ShutdownMeterProvider(ctx, meter); err != nil {
			if first == nil {
				first = err
			} else {
				slog.Error("shutdown meter provider", "error", err)
			}
		}
	}

	return first
}

// Shutdown stops the server, message publisher, and River in order. Call after Run returns.
// Observability is shut down once via defer; its error is returned only when server and River shut down successfully.
func (a *App) Shutdown(ctx context.Context) (err error) {
	defer func() {
		obsErr := shutdownObservability(ctx, a.tracerProvider, a.meterProvider)
		if err == nil {
			err = obsErr
		} else if obsErr != nil {
			slog.Error("shutdown observability", "error", obsErr)
		}
	}()

	if err = a.server.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		a.message.Shutdown()

		if stopErr := a.stopRiver(ctx); stopErr != nil {
			slog.Error("river stop during server shutdown", "error", stopErr)
		}

		return fmt.Errorf("server shutdown: %w", err)
	}

	// Drain pending events so their embedding jobs are enqueued before River stops.
	a.message.Shutdown()

	if err = a.stopRiver(ctx); err != nil {
		return fmt.Errorf("river stop: %w", err)
	}

	return nil
}

func (a *App) stopRiver(ctx context.Context) error {
	if a.river == nil {
		return nil
	}

	return a.river.Stop(ctx) //nolint:wrapcheck // wrapped by Shutdown
}
