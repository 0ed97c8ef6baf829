// Cookrank - Dish Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookrank

package api

import (
	"context"
	"net/http"
	"time"
)

// readinessTimeout bounds each dependency ping.
const readinessTimeout = 2 * time.Second

// HealthLive handles liveness probe requests (Kubernetes-style)
// Returns 200 OK if the process is alive, regardless of dependencies
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, &HealthResponse{
		Status:        "alive",
		UptimeSeconds: time.Since(h.startTime).Seconds(),
		Timestamp:     h.now().UTC(),
	})
}

// HealthReady handles readiness probe requests (Kubernetes-style)
// Returns 200 OK only if every configured dependency answers its ping.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string, len(h.checks))
	ready := true
	for _, c := range h.checks {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		err := c.Ping(ctx)
		cancel()
		if err != nil {
			ready = false
			checks[c.Name] = "down"
			h.logger.Warn().Err(err).Str("check", c.Name).Msg("Readiness check failed")
			continue
		}
		checks[c.Name] = "up"
	}

	statusCode := http.StatusOK
	status := "ready"
	if !ready {
		statusCode = http.StatusServiceUnavailable
		status = "not_ready"
	}

	stats := h.engine.Stats()
	respondJSON(w, statusCode, &HealthResponse{
		Status:        status,
		UptimeSeconds: time.Since(h.startTime).Seconds(),
		Checks:        checks,
		Engine:        &stats,
		Timestamp:     h.now().UTC(),
	})
}
