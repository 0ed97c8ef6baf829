// Cookrank - Dish Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookrank

package api

import (
	"context"
	"errors"
	"net/http"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/cookrank/internal/recommend"
)

// Error codes rendered in the error envelope.
const (
	CodeInvalidID          = "INVALID_ID"
	CodeInvalidInteraction = "INVALID_INTERACTION"
	CodeInvalidBody        = "INVALID_BODY"
	CodeUnavailable        = "SERVICE_UNAVAILABLE"
	CodeInternal           = "INTERNAL_ERROR"
	CodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
	CodeNotFound           = "NOT_FOUND"
	CodeRateLimited        = "RATE_LIMITED"
)

// respondEngineError maps an engine error onto a status code and envelope.
func respondEngineError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, recommend.ErrInvalidID):
		respondError(w, r, http.StatusBadRequest, CodeInvalidID, "Identifier must be a 24 character hex id", err)
	case errors.Is(err, recommend.ErrInvalidInteraction):
		respondError(w, r, http.StatusBadRequest, CodeInvalidInteraction, "Interaction type must be one of: view favorite like cook", err)
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		respondError(w, r, http.StatusServiceUnavailable, CodeUnavailable, "Dish store is temporarily unavailable", err)
	case errors.Is(err, context.DeadlineExceeded):
		respondError(w, r, http.StatusServiceUnavailable, CodeUnavailable, "Request timed out", err)
	default:
		respondError(w, r, http.StatusInternalServerError, CodeInternal, "Internal server error", err)
	}
}
