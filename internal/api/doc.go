// Cookrank - Dish Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookrank

/*
Package api exposes the recommendation engine over HTTP.

The handlers are a thin adapter: they parse and validate query parameters,
call the engine, and render results in the recommendation envelope:

	{
	  "recommendations": [...],
	  "total": 12,
	  "algorithm": "personalized",
	  "generated_at": "2026-01-05T09:00:00Z",
	  "metadata": {...}
	}

Errors use a separate envelope:

	{"status": "error", "error": {"code": "INVALID_ID", "message": "..."}}

Routes:

	GET  /api/v1/recommendations/{userID}
	GET  /api/v1/dishes/trending
	GET  /api/v1/dishes/popular
	GET  /api/v1/dishes/feed
	GET  /api/v1/dishes/{dishID}/similar
	POST /api/v1/interactions
	GET  /health/live
	GET  /health/ready
	GET  /metrics

The router is built on go-chi/chi with go-chi/cors for CORS and
go-chi/httprate for per-IP rate limiting.
*/
package api
