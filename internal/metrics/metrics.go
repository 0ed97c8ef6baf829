// Cookrank - Dish Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookrank

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/tomtom215/cookrank/internal/recommend"
)

const namespace = "cookrank"

var (
	// Engine metrics
	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recommendations_total",
			Help:      "Total number of recommendation calls by path",
		},
		[]string{"path"},
	)

	RecommendationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "recommendation_duration_seconds",
			Help:      "Duration of recommendation calls in seconds",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
	)

	ScoringFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scoring_failures_total",
			Help:      "Total number of candidate dishes skipped because scoring failed",
		},
	)

	InteractionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "interactions_total",
			Help:      "Total number of recorded interactions by type",
		},
		[]string{"type"},
	)

	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Total number of result cache hits",
		},
		[]string{"cache"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Total number of result cache misses",
		},
		[]string{"cache"},
	)

	// Neighbor index metrics
	NeighborIndexUsers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "neighbor_index_users",
			Help:      "Number of users held by the neighbor index",
		},
	)

	NeighborIndexRebuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "neighbor_index_rebuild_duration_seconds",
			Help:      "Duration of full neighbor index rebuilds in seconds",
			Buckets:   []float64{.1, .5, 1, 5, 10, 30, 60, 120, 300},
		},
	)

	NeighborIndexRefreshed = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "neighbor_index_refreshed_users_total",
			Help:      "Total number of dirty users reloaded into the neighbor index",
		},
	)

	// API metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_requests_total",
			Help:      "Total number of API requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "api_request_duration_seconds",
			Help:      "Duration of API requests in seconds",
			Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "api_requests_in_flight",
			Help:      "Number of API requests currently being served",
		},
	)

	// Resilience and event metrics
	RepositoryBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "repository_breaker_state",
			Help:      "Repository circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
	)

	EventsPublished = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Total number of interaction events published",
		},
	)

	EventsConsumed = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_consumed_total",
			Help:      "Total number of interaction events consumed",
		},
	)
)

// PathLabel maps an engine algorithm name to the recommendations_total
// path label.
func PathLabel(algorithm string) string {
	switch algorithm {
	case recommend.AlgorithmPersonalized:
		return "personalized"
	case recommend.AlgorithmPopular:
		return "fallback"
	case recommend.AlgorithmTrending:
		return "trending"
	case recommend.AlgorithmSimilar:
		return "similar"
	case recommend.AlgorithmFeed:
		return "feed"
	default:
		return "other"
	}
}

// RecordRecommendation records one engine call.
func RecordRecommendation(algorithm string, duration time.Duration) {
	RecommendationsTotal.WithLabelValues(PathLabel(algorithm)).Inc()
	RecommendationDuration.Observe(duration.Seconds())
}

// RecordCache records a result cache lookup.
func RecordCache(cache string, hit bool) {
	if hit {
		CacheHits.WithLabelValues(cache).Inc()
		return
	}
	CacheMisses.WithLabelValues(cache).Inc()
}

// RecordAPIRequest records API request metrics.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the in-flight gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordIndexRebuild records a full rebuild and the resulting index size.
func RecordIndexRebuild(duration time.Duration, users int) {
	NeighborIndexRebuildDuration.Observe(duration.Seconds())
	NeighborIndexUsers.Set(float64(users))
}

// RecordIndexRefresh records an incremental refresh.
func RecordIndexRefresh(refreshed, users int) {
	NeighborIndexRefreshed.Add(float64(refreshed))
	NeighborIndexUsers.Set(float64(users))
}

// SetBreakerState publishes the repository breaker state. The gobreaker
// State values map directly onto the gauge encoding.
func SetBreakerState(state int) {
	RepositoryBreakerState.Set(float64(state))
}

// EngineHooks returns engine hooks that feed the collectors above. cache is
// the result cache label.
func EngineHooks(cache string) recommend.Hooks {
	return recommend.Hooks{
		OnRecommendation: RecordRecommendation,
		OnScoringFailure: ScoringFailuresTotal.Inc,
		OnInteraction: func(typ recommend.InteractionType) {
			InteractionsTotal.WithLabelValues(string(typ)).Inc()
		},
		OnCache: func(hit bool) {
			RecordCache(cache, hit)
		},
	}
}
