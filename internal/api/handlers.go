// Cookrank - Dish Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookrank

package api

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cookrank/internal/recommend"
)

// Recommender is the engine surface the handlers call.
type Recommender interface {
	GetRecommendations(ctx context.Context, userID string, opts recommend.RecommendOptions) (*recommend.Recommendations, error)
	GetTrendingDishes(ctx context.Context, opts recommend.TrendingOptions) ([]recommend.Dish, error)
	GetPopularDishes(ctx context.Context, limit int, prefs *recommend.UserPreferences, minRating *float64) ([]recommend.RankedDish, error)
	GetSimilarDishes(ctx context.Context, dishID string, limit int) ([]recommend.Dish, error)
	GetFeed(ctx context.Context, opts recommend.FeedOptions) (*recommend.FeedPage, error)
	RecordInteraction(ctx context.Context, userID, dishID string, typ recommend.InteractionType) error
	UserPreferences(ctx context.Context, userID string) (*recommend.UserPreferences, error)
	Config() *recommend.Config
	Stats() recommend.Stats
}

var _ Recommender = (*recommend.Engine)(nil)

// Check is a named readiness dependency.
type Check struct {
	Name string
	Ping func(ctx context.Context) error
}

// Handler serves the HTTP API.
type Handler struct {
	engine    Recommender
	checks    []Check
	logger    zerolog.Logger
	startTime time.Time
	now       func() time.Time
}

// NewHandler creates a handler. checks gate the readiness probe.
func NewHandler(engine Recommender, logger zerolog.Logger, checks ...Check) *Handler {
	return &Handler{
		engine:    engine,
		checks:    checks,
		logger:    logger.With().Str("component", "api").Logger(),
		startTime: time.Now(),
		now:       time.Now,
	}
}
