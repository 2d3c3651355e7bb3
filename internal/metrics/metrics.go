// Package metrics holds the Prometheus collectors for the API and the recommendation pipeline.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chefai_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chefai_api_request_duration_seconds",
			Help:    "API request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Recommendation pipeline
	PipelineOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chefai_pipeline_outcomes_total",
			Help: "Rule pipeline runs by terminal state and intent",
		},
		[]string{"state", "intent"},
	)

	PipelineStageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chefai_pipeline_stage_duration_seconds",
			Help:    "Duration of each rule pipeline stage",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"stage"},
	)

	ModelFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chefai_model_fallbacks_total",
			Help: "Times a language model or embedder was unavailable and the pipeline degraded",
		},
		[]string{"model"},
	)

	InvalidPreferences = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chefai_invalid_preferences_total",
			Help: "Preference values clamped back to their default",
		},
		[]string{"field"},
	)

	// Embedding cache
	EmbeddingCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chefai_embedding_cache_hits_total",
			Help: "Embedding cache hits",
		},
	)

	EmbeddingCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chefai_embedding_cache_misses_total",
			Help: "Embedding cache misses",
		},
	)

	// Upstream dependencies
	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chefai_circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chefai_upstream_requests_total",
			Help: "Calls to third-party services by outcome",
		},
		[]string{"service", "outcome"},
	)

	ChatRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chefai_chat_requests_total",
			Help: "Chat requests by strategy",
		},
		[]string{"mode"},
	)
)

// RecordAPIRequest records one served HTTP request.
func RecordAPIRequest(method, route string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveStage records how long a pipeline stage took.
func ObserveStage(stage string, started time.Time) {
	PipelineStageDuration.WithLabelValues(stage).Observe(time.Since(started).Seconds())
}

// RecordUpstream counts a third-party call as ok or error.
func RecordUpstream(service string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	UpstreamRequests.WithLabelValues(service, outcome).Inc()
}
