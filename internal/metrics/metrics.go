// Tripmatch - Destination Guide Preference Matching and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for:
// - Catalog queries (DuckDB)
// - Preference store operations (Badger)
// - Ranking requests and score distribution
// - Tag trait lookups and cache efficiency
// - API endpoint latency and throughput
// - Circuit breaker state
// - Token validation and authorization decisions
// - Background maintenance runs

var (
	// Catalog Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catalog_query_duration_seconds",
			Help:    "Duration of catalog queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_query_errors_total",
			Help: "Total number of catalog query errors",
		},
		[]string{"operation"},
	)

	// Preference Store Metrics
	PreferenceStoreOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "preference_store_operations_total",
			Help: "Total number of preference store operations",
		},
		[]string{"operation", "scope", "result"}, // scope: device, profile; result: hit, miss, ok, error
	)

	// Matching Metrics
	MatchRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "match_requests_total",
			Help: "Total number of ranking requests by item type and outcome",
		},
		[]string{"item_type", "status"}, // status: success, error
	)

	MatchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "match_request_duration_seconds",
			Help:    "Duration of ranking requests in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"item_type"},
	)

	MatchScores = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "match_score",
			Help:    "Distribution of computed match scores",
			Buckets: prometheus.LinearBuckets(10, 10, 9), // 10..90
		},
		[]string{"item_type"},
	)

	MatchConfidence = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "match_confidence_total",
			Help: "Scored items by confidence tier",
		},
		[]string{"item_type", "confidence"},
	)

	MatchItemsScored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "match_items_scored_total",
			Help: "Total number of catalog items scored",
		},
		[]string{"item_type"},
	)

	// Tag Trait Metrics
	TraitChunks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trait_chunk_requests_total",
			Help: "Tag trait chunk queries by outcome",
		},
		[]string{"result"}, // result: success, failure, skipped
	)

	TraitFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "trait_fetch_duration_seconds",
			Help:    "Duration of batched tag trait lookups",
			Buckets: prometheus.DefBuckets,
		},
	)

	TraitFetchTimeouts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "trait_fetch_timeouts_total",
			Help: "Batched tag trait lookups that hit the fetch timeout",
		},
	)

	TraitCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "trait_cache_hits_total",
			Help: "Total number of tag trait cache hits",
		},
	)

	TraitCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "trait_cache_misses_total",
			Help: "Total number of tag trait cache misses",
		},
	)

	TraitCacheEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "trait_cache_expired_total",
			Help: "Tag traits removed by the cache janitor",
		},
	)

	TraitCacheSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "trait_cache_entries",
			Help: "Tag traits held in the cache after the last sweep",
		},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of in-flight API requests",
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Auth Metrics
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_token_validations_total",
			Help: "Bearer token validations by outcome",
		},
		[]string{"result"}, // result: valid, invalid, absent
	)

	AuthzDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authz_decisions_total",
			Help: "Authorization decisions by object, action and outcome",
		},
		[]string{"object", "action", "decision"}, // decision: allow, deny, error
	)

	// Maintenance Metrics
	MaintenanceRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "maintenance_runs_total",
			Help: "Background maintenance task runs by outcome",
		},
		[]string{"task", "result"},
	)

	MaintenanceDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "maintenance_duration_seconds",
			Help:    "Duration of background maintenance tasks",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"task"},
	)

	PreferencesStored = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "preferences_stored",
			Help: "Stored preference records by scope",
		},
		[]string{"scope"}, // scope: device, profile
	)
)

// RecordDBQuery records a catalog query metric.
func RecordDBQuery(operation string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation).Inc()
	}
}

// RecordPreferenceOp records a preference store operation.
func RecordPreferenceOp(operation, scope, result string) {
	PreferenceStoreOperations.WithLabelValues(operation, scope, result).Inc()
}

// RecordMatchRequest records the outcome of one ranking request.
func RecordMatchRequest(itemType string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	MatchRequests.WithLabelValues(itemType, status).Inc()
	MatchDuration.WithLabelValues(itemType).Observe(duration.Seconds())
}

// RecordScoredItem records the score and confidence of one item.
func RecordScoredItem(itemType string, score int, confidence string) {
	MatchItemsScored.WithLabelValues(itemType).Inc()
	MatchScores.WithLabelValues(itemType).Observe(float64(score))
	MatchConfidence.WithLabelValues(itemType, confidence).Inc()
}

// RecordTraitChunk records the outcome of one trait chunk query.
func RecordTraitChunk(err error) {
	if err != nil {
		TraitChunks.WithLabelValues("failure").Inc()
		return
	}
	TraitChunks.WithLabelValues("success").Inc()
}

// RecordTraitChunkSkipped records a chunk that was never queried because
// the lookup's deadline passed while it waited for a pacing token.
func RecordTraitChunkSkipped() {
	TraitChunks.WithLabelValues("skipped").Inc()
}

// RecordTraitCache records trait cache hits and misses for one lookup.
func RecordTraitCache(hits, misses int) {
	TraitCacheHits.Add(float64(hits))
	TraitCacheMisses.Add(float64(misses))
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks in-flight API requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordAuthAttempt records the outcome of a bearer token check.
func RecordAuthAttempt(result string) {
	AuthAttempts.WithLabelValues(result).Inc()
}

// RecordAuthzDecision records an authorization decision.
func RecordAuthzDecision(object, action, decision string) {
	AuthzDecisions.WithLabelValues(object, action, decision).Inc()
}

// RecordMaintenanceRun records a background maintenance task run.
func RecordMaintenanceRun(task string, duration time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	MaintenanceRuns.WithLabelValues(task, result).Inc()
	MaintenanceDuration.WithLabelValues(task).Observe(duration.Seconds())
}

// RecordPreferenceCounts publishes the number of stored records per scope.
func RecordPreferenceCounts(counts map[string]int) {
	for scope, n := range counts {
		PreferencesStored.WithLabelValues(scope).Set(float64(n))
	}
}
