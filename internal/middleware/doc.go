// Cookrank - Dish Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookrank

/*
Package middleware provides HTTP middleware for the API router.

Key Components:

  - RequestID: assigns or propagates X-Request-ID and stores it in the
    request context for logging.Ctx.
  - PrometheusMetrics: records request count, latency and in-flight
    requests, labeled by the chi route pattern.
  - AccessLog: one structured log line per request, at Warn above the slow
    request threshold.

All three have the func(http.Handler) http.Handler shape used by chi:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.AccessLog(logger, 500*time.Millisecond))
*/
package middleware
