// Package observability provides OpenTelemetry metrics and tracing plus the trace-aware slog
// handler for the diary API.
package observability

import (
	"github.com/diarybot/diarybot/internal/datatypes"
	"github.com/diarybot/diarybot/internal/models"
)

// Metric names (Prometheus / OpenTelemetry).
const (
	MetricNameSearches              = "diarybot_searches_total"
	MetricNameSearchPhaseDuration   = "diarybot_search_phase_duration_seconds"
	MetricNameSearchFailures        = "diarybot_search_failures_total"
	MetricNameEmbeddingJobsEnqueued = "diarybot_embedding_jobs_enqueued_total"
	MetricNameEmbeddingEnqueueErrs  = "diarybot_embedding_enqueue_errors_total"
	MetricNameEmbeddingEnqueueRetry = "diarybot_embedding_enqueue_retries_total"
	MetricNameEmbeddingOutcomes     = "diarybot_embedding_outcomes_total"
	MetricNameEmbeddingWorkerErrors = "diarybot_embedding_worker_errors_total"
	MetricNameEmbeddingDuration     = "diarybot_embedding_duration_seconds"
	MetricNameCacheHits             = "diarybot_cache_hits_total"
	MetricNameCacheMisses           = "diarybot_cache_misses_total"
	MetricNameRequestBodyTooLarge   = "diarybot_request_body_too_large_total"
	MetricNameEventsDiscarded       = "diarybot_events_discarded_total"
	MetricNameFanOutDuration        = "diarybot_event_fan_out_duration_seconds"
	MetricNameEventChannelDepth     = "diarybot_event_channel_depth"
	MetricNameRiverQueueDepth       = "diarybot_river_queue_depth"
)

// Attribute keys.
const (
	AttrEventType = "event_type"
	AttrReason    = "reason"
	AttrStatus    = "status"
	AttrPhase     = "phase"
	AttrOutcome   = "outcome"
	AttrKind      = "kind"
	AttrCache     = "cache"
)

var (
	allowedSearchOutcomes = map[string]bool{
		"results":    true,
		"no_results": true,
		"failed":     true,
	}
	allowedFailureKinds = map[string]bool{
		"invalid_query":     true,
		"store_failure":     true,
		"embedding_failure": true,
	}
	allowedEmbeddingStatuses = map[string]bool{
		"success":      true,
		"cleared":      true,
		"retry":        true,
		"failed_final": true,
		"skipped":      true,
	}
	allowedEmbeddingWorkerReasons = map[string]bool{
		"get_record_failed": true,
		"provider_failed":   true,
		"rate_limit_wait":   true,
		"update_failed":     true,
	}
	allowedCacheNames = map[string]bool{
		"search_query_embedding": true,
	}
)

// NormalizeEventType returns eventType if it is a known record event, otherwise "unknown".
func NormalizeEventType(eventType string) string {
	if datatypes.IsValidEventType(eventType) {
		return eventType
	}

	return "unknown"
}

// NormalizeKind bounds the content-kind attribute.
func NormalizeKind(kind string) string {
	if models.ContentKind(kind).IsValid() {
		return kind
	}

	return "other"
}

// NormalizePhase bounds the search phase attribute.
func NormalizePhase(phase string) string {
	switch models.SearchPhase(phase) {
	case models.SearchPhaseLexical, models.SearchPhaseSemantic:
		return phase
	default:
		return "other"
	}
}

// NormalizeReason returns reason if it is in allowed, otherwise "other".
func NormalizeReason(reason string, allowed map[string]bool) string {
	if allowed[reason] {
		return reason
	}

	return "other"
}

// NormalizeCacheName bounds the cache attribute.
func NormalizeCacheName(name string) string {
	return NormalizeReason(name, allowedCacheNames)
}
