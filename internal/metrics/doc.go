// Cookrank - Dish Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookrank

/*
Package metrics provides Prometheus instrumentation for the recommendation
service.

All collectors are registered on the default registry at init and exported
at /metrics through promhttp.

# Available Metrics

Engine:
  - cookrank_recommendations_total: Recommendation calls (counter)
    Labels: path (personalized, fallback, trending, similar, feed)
  - cookrank_recommendation_duration_seconds: Call latency (histogram)
  - cookrank_scoring_failures_total: Dishes skipped by a scoring error (counter)
  - cookrank_interactions_total: Recorded interactions (counter)
    Labels: type
  - cookrank_cache_hits_total / cookrank_cache_misses_total (counter)
    Labels: cache

Neighbor index:
  - cookrank_neighbor_index_users: Users held by the index (gauge)
  - cookrank_neighbor_index_rebuild_duration_seconds: Full rebuilds (histogram)
  - cookrank_neighbor_index_refreshed_users_total: Dirty users reloaded (counter)

HTTP:
  - cookrank_api_requests_total: Requests (counter)
    Labels: method, endpoint, status
  - cookrank_api_request_duration_seconds: Latency (histogram)
    Labels: method, endpoint
  - cookrank_api_requests_in_flight: Active requests (gauge)

Resilience and events:
  - cookrank_repository_breaker_state: 0 closed, 1 half-open, 2 open (gauge)
  - cookrank_events_published_total / cookrank_events_consumed_total (counter)

# Usage

The engine does not import this package. Wire it through hooks:

	engine := recommend.NewEngine(cfg, repo, logger, recommend.WithHooks(metrics.EngineHooks("redis")))
*/
package metrics
