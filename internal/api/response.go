// Cookrank - Dish Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookrank

package api

import (
	"math"
	"time"

	"github.com/tomtom215/cookrank/internal/recommend"
)

// DishRecommendation is one dish in a result list.
type DishRecommendation struct {
	DishID        string             `json:"dish_id"`
	Name          string             `json:"name"`
	Description   string             `json:"description,omitempty"`
	ImageURL      string             `json:"image_url,omitempty"`
	Category      string             `json:"category,omitempty"`
	CuisineType   string             `json:"cuisine_type,omitempty"`
	Difficulty    string             `json:"difficulty,omitempty"`
	CookingTime   int                `json:"cooking_time"`
	AverageRating float64            `json:"average_rating"`
	LikeCount     int64              `json:"like_count"`
	CookCount     int64              `json:"cook_count"`
	ViewCount     int64              `json:"view_count"`
	Score         float64            `json:"score"`
	Reason        string             `json:"reason"`
	Ingredients   []string           `json:"ingredients,omitempty"`
	Breakdown     map[string]float64 `json:"score_breakdown,omitempty"`
}

// RecommendationResponse is the envelope shared by every list endpoint.
type RecommendationResponse struct {
	Recommendations []DishRecommendation   `json:"recommendations"`
	Total           int64                  `json:"total"`
	Algorithm       string                 `json:"algorithm"`
	GeneratedAt     time.Time              `json:"generated_at"`
	Metadata        map[string]interface{} `json:"metadata,omitempty"`
}

// APIError is a machine readable code plus a human readable message.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse is the error envelope.
type ErrorResponse struct {
	Status    string    `json:"status"`
	Error     *APIError `json:"error"`
	RequestID string    `json:"request_id,omitempty"`
}

// InteractionResponse acknowledges a recorded interaction.
type InteractionResponse struct {
	Status string `json:"status"`
	UserID string `json:"user_id"`
	DishID string `json:"dish_id"`
	Type   string `json:"type"`
}

// HealthResponse is returned by the probe endpoints.
type HealthResponse struct {
	Status        string            `json:"status"`
	UptimeSeconds float64           `json:"uptime_seconds"`
	Checks        map[string]string `json:"checks,omitempty"`
	Engine        *recommend.Stats  `json:"engine,omitempty"`
	Timestamp     time.Time         `json:"timestamp"`
}

func newDishRecommendation(d *recommend.Dish, score float64, reason string) DishRecommendation {
	return DishRecommendation{
		DishID:        d.IDHex(),
		Name:          d.Name,
		Description:   d.Description,
		ImageURL:      d.ImageURL,
		Category:      d.Category,
		CuisineType:   d.CuisineType,
		Difficulty:    d.Difficulty,
		CookingTime:   d.EffectiveCookingTime(),
		AverageRating: round(d.AverageRating, 2),
		LikeCount:     d.LikeCount,
		CookCount:     d.CookCount,
		ViewCount:     d.ViewCount,
		Score:         round(score, 3),
		Reason:        reason,
		Ingredients:   d.IngredientNames(),
	}
}

// fromRanked renders ranked dishes with their score breakdown.
func fromRanked(items []recommend.RankedDish) []DishRecommendation {
	out := make([]DishRecommendation, 0, len(items))
	for i := range items {
		rec := newDishRecommendation(&items[i].Dish, items[i].Score, items[i].Reason)
		rec.Breakdown = items[i].Breakdown.MarshalMap()
		out = append(out, rec)
	}
	return out
}

func round(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}
