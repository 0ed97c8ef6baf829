// Cookrank - Dish Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookrank

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/cookrank/internal/recommend"
)

// Reasons attached to non-personalized results.
const (
	reasonTrending = "trending now"
	reasonSimilar  = "similar dish"
)

type recommendationsRequest struct {
	Limit     int      `query:"limit" validate:"gte=0,lte=100"`
	MinRating *float64 `query:"min_rating" validate:"omitempty,gte=0,lte=5"`
}

type trendingRequest struct {
	Days            int      `query:"days" validate:"gte=0,lte=30"`
	Limit           int      `query:"limit" validate:"gte=0,lte=100"`
	MinRating       *float64 `query:"min_rating" validate:"omitempty,gte=0,lte=5"`
	MinRatingsCount int      `query:"min_ratings_count" validate:"gte=0"`
}

type popularRequest struct {
	Limit     int      `query:"limit" validate:"gte=0,lte=100"`
	MinRating *float64 `query:"min_rating" validate:"omitempty,gte=0,lte=5"`
	UserID    string   `query:"user_id" validate:"omitempty,objectid"`
}

type similarRequest struct {
	Limit int `query:"limit" validate:"gte=0,lte=100"`
}

type feedRequest struct {
	Offset    int     `query:"offset" validate:"gte=0"`
	Limit     int     `query:"limit" validate:"gte=0,lte=100"`
	MinRating float64 `query:"min_rating" validate:"gte=0,lte=5"`
}

type interactionRequest struct {
	UserID string `json:"user_id" validate:"required,objectid"`
	DishID string `json:"dish_id" validate:"required,objectid"`
	Type   string `json:"type" validate:"required,oneof=view favorite like cook"`
}

// Recommendations handles GET /api/v1/recommendations/{userID}.
// Users without interaction history receive popular dishes.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	req := recommendationsRequest{
		Limit:     getIntParam(r, "limit", 0),
		MinRating: getOptionalFloatParam(r, "min_rating"),
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}
	excludeSeen := getBoolParam(r, "exclude_seen", true)

	recs, err := h.engine.GetRecommendations(r.Context(), userID, recommend.RecommendOptions{
		Limit:       req.Limit,
		ExcludeSeen: excludeSeen,
		MinRating:   req.MinRating,
	})
	if err != nil {
		respondEngineError(w, r, err)
		return
	}

	items := fromRanked(recs.Items)
	respondJSON(w, http.StatusOK, &RecommendationResponse{
		Recommendations: items,
		Total:           int64(len(items)),
		Algorithm:       recs.Algorithm,
		GeneratedAt:     h.now().UTC(),
		Metadata: map[string]interface{}{
			"user_id":      userID,
			"limit":        h.effectiveLimit(req.Limit, h.engine.Config().Limits.DefaultLimit),
			"exclude_seen": excludeSeen,
			"returned":     len(items),
		},
	})
}

// Trending handles GET /api/v1/dishes/trending.
func (h *Handler) Trending(w http.ResponseWriter, r *http.Request) {
	req := trendingRequest{
		Days:            getIntParam(r, "days", 0),
		Limit:           getIntParam(r, "limit", 0),
		MinRating:       getOptionalFloatParam(r, "min_rating"),
		MinRatingsCount: getIntParam(r, "min_ratings_count", 0),
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	dishes, err := h.engine.GetTrendingDishes(r.Context(), recommend.TrendingOptions{
		Days:            req.Days,
		Limit:           req.Limit,
		MinRating:       req.MinRating,
		MinRatingsCount: req.MinRatingsCount,
	})
	if err != nil {
		respondEngineError(w, r, err)
		return
	}

	cfg := h.engine.Config().Trending
	days := req.Days
	if days == 0 {
		days = cfg.Days
	}
	now := h.now()
	items := make([]DishRecommendation, 0, len(dishes))
	for i := range dishes {
		score := recommend.TrendingScore(&dishes[i], days, cfg.RecencyBoost, now)
		items = append(items, newDishRecommendation(&dishes[i], score, reasonTrending))
	}

	respondJSON(w, http.StatusOK, &RecommendationResponse{
		Recommendations: items,
		Total:           int64(len(items)),
		Algorithm:       recommend.AlgorithmTrending,
		GeneratedAt:     now.UTC(),
		Metadata: map[string]interface{}{
			"days":     days,
			"returned": len(items),
		},
	})
}

// Popular handles GET /api/v1/dishes/popular. With user_id, dishes tagged
// with the user's dietary restrictions are left out.
func (h *Handler) Popular(w http.ResponseWriter, r *http.Request) {
	req := popularRequest{
		Limit:     getIntParam(r, "limit", 0),
		MinRating: getOptionalFloatParam(r, "min_rating"),
		UserID:    r.URL.Query().Get("user_id"),
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	var prefs *recommend.UserPreferences
	if req.UserID != "" {
		var err error
		prefs, err = h.engine.UserPreferences(r.Context(), req.UserID)
		if err != nil {
			respondEngineError(w, r, err)
			return
		}
	}

	ranked, err := h.engine.GetPopularDishes(r.Context(), req.Limit, prefs, req.MinRating)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}

	items := fromRanked(ranked)
	respondJSON(w, http.StatusOK, &RecommendationResponse{
		Recommendations: items,
		Total:           int64(len(items)),
		Algorithm:       recommend.AlgorithmPopular,
		GeneratedAt:     h.now().UTC(),
		Metadata: map[string]interface{}{
			"restrictions": prefs.RestrictionTerms(),
			"returned":     len(items),
		},
	})
}

// Similar handles GET /api/v1/dishes/{dishID}/similar. Unknown dishes
// yield an empty list.
func (h *Handler) Similar(w http.ResponseWriter, r *http.Request) {
	dishID := chi.URLParam(r, "dishID")
	req := similarRequest{Limit: getIntParam(r, "limit", 0)}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	dishes, err := h.engine.GetSimilarDishes(r.Context(), dishID, req.Limit)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}

	items := make([]DishRecommendation, 0, len(dishes))
	for i := range dishes {
		items = append(items, newDishRecommendation(&dishes[i], dishes[i].AverageRating/5, reasonSimilar))
	}

	respondJSON(w, http.StatusOK, &RecommendationResponse{
		Recommendations: items,
		Total:           int64(len(items)),
		Algorithm:       recommend.AlgorithmSimilar,
		GeneratedAt:     h.now().UTC(),
		Metadata: map[string]interface{}{
			"dish_id":  dishID,
			"returned": len(items),
		},
	})
}

// Feed handles GET /api/v1/dishes/feed, a paginated list of active dishes
// ordered by rating and then recency.
func (h *Handler) Feed(w http.ResponseWriter, r *http.Request) {
	req := feedRequest{
		Offset:    getIntParam(r, "offset", 0),
		Limit:     getIntParam(r, "limit", 0),
		MinRating: getFloatParam(r, "min_rating", 0),
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	page, err := h.engine.GetFeed(r.Context(), recommend.FeedOptions{
		Offset:    req.Offset,
		Limit:     req.Limit,
		MinRating: req.MinRating,
	})
	if err != nil {
		respondEngineError(w, r, err)
		return
	}

	items := make([]DishRecommendation, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, newDishRecommendation(&page.Items[i].Dish, page.Items[i].Score, page.Items[i].Reason))
	}

	respondJSON(w, http.StatusOK, &RecommendationResponse{
		Recommendations: items,
		Total:           page.Total,
		Algorithm:       recommend.AlgorithmFeed,
		GeneratedAt:     h.now().UTC(),
		Metadata: map[string]interface{}{
			"offset":          page.Offset,
			"limit":           page.Limit,
			"total_available": page.Total,
			"returned":        len(items),
			"has_more":        page.HasMore,
		},
	})
}

// RecordInteraction handles POST /api/v1/interactions.
func (h *Handler) RecordInteraction(w http.ResponseWriter, r *http.Request) {
	var req interactionRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, CodeInvalidBody, err.Error(), nil)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	typ := recommend.InteractionType(req.Type)
	if err := h.engine.RecordInteraction(r.Context(), req.UserID, req.DishID, typ); err != nil {
		respondEngineError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, &InteractionResponse{
		Status: "recorded",
		UserID: req.UserID,
		DishID: req.DishID,
		Type:   req.Type,
	})
}

// effectiveLimit mirrors the engine's default and cap for metadata.
func (h *Handler) effectiveLimit(limit, def int) int {
	if limit <= 0 {
		return def
	}
	return min(limit, h.engine.Config().Limits.MaxLimit)
}
