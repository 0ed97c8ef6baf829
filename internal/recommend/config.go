// Cookrank - Dish Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookrank

package recommend

import (
	"fmt"
	"math"
	"time"
)

// weightTolerance bounds floating point drift when checking the weight sum.
const weightTolerance = 1e-9

// Config contains all configuration for the recommendation engine.
type Config struct {
	// Weights defines the contribution of each scoring component.
	// Weights must sum to 1.0.
	Weights Weights `json:"weights" koanf:"weights"`

	// Similarity contains neighbor search parameters.
	Similarity SimilarityConfig `json:"similarity" koanf:"similarity"`

	// Trending contains defaults for the trending path.
	Trending TrendingConfig `json:"trending" koanf:"trending"`

	// Patterns contains user pattern analysis parameters.
	Patterns PatternsConfig `json:"patterns" koanf:"patterns"`

	// Diversity contains category diversification parameters.
	Diversity DiversityConfig `json:"diversity" koanf:"diversity"`

	// Limits contains request defaults and bounds.
	Limits LimitsConfig `json:"limits" koanf:"limits"`

	// Cache contains result caching parameters.
	Cache CacheConfig `json:"cache" koanf:"cache"`
}

// Weights defines the contribution of each scoring component.
type Weights struct {
	RatingQuality   float64 `json:"rating_quality" koanf:"rating_quality"`
	Collaborative   float64 `json:"collaborative" koanf:"collaborative"`
	IngredientMatch float64 `json:"ingredient_match" koanf:"ingredient_match"`
	TimeHabit       float64 `json:"time_habit" koanf:"time_habit"`
	Popularity      float64 `json:"popularity" koanf:"popularity"`
	Recency         float64 `json:"recency" koanf:"recency"`
}

// Sum returns the sum of all weights.
func (w Weights) Sum() float64 {
	return w.RatingQuality + w.Collaborative + w.IngredientMatch +
		w.TimeHabit + w.Popularity + w.Recency
}

// ToMap returns weights keyed by component name.
func (w Weights) ToMap() map[string]float64 {
	return map[string]float64{
		ComponentRatingQuality:   w.RatingQuality,
		ComponentCollaborative:   w.Collaborative,
		ComponentIngredientMatch: w.IngredientMatch,
		ComponentTimeHabit:       w.TimeHabit,
		ComponentPopularity:      w.Popularity,
		ComponentRecency:         w.Recency,
	}
}

// SimilarityConfig contains neighbor search parameters.
type SimilarityConfig struct {
	// Threshold is the exclusive lower bound on Jaccard similarity.
	// Default: 0.1.
	Threshold float64 `json:"threshold" koanf:"threshold"`

	// MaxNeighbors caps the neighbor list.
	// Default: 50.
	MaxNeighbors int `json:"max_neighbors" koanf:"max_neighbors"`

	// ScoringNeighbors is how many top neighbors the collaborative score reads.
	// Default: 20.
	ScoringNeighbors int `json:"scoring_neighbors" koanf:"scoring_neighbors"`

	// FavoriteWeight is the contribution of a neighbor's favorite.
	// Default: 1.0.
	FavoriteWeight float64 `json:"favorite_weight" koanf:"favorite_weight"`

	// CookedWeight is the contribution of a neighbor's cooked-only dish.
	// Default: 0.7.
	CookedWeight float64 `json:"cooked_weight" koanf:"cooked_weight"`

	// ScanTimeout bounds the full favorites scan. Zero disables the bound.
	// Default: 5s.
	ScanTimeout time.Duration `json:"scan_timeout" koanf:"scan_timeout"`
}

// TrendingConfig contains defaults for the trending path.
type TrendingConfig struct {
	// Days is the recency window for the boost.
	// Default: 7.
	Days int `json:"days" koanf:"days"`

	// MinRating filters dishes below this average.
	// Default: 4.0.
	MinRating float64 `json:"min_rating" koanf:"min_rating"`

	// MinRatingsCount filters dishes with fewer ratings.
	// Default: 5.
	MinRatingsCount int `json:"min_ratings_count" koanf:"min_ratings_count"`

	// RecencyBoost multiplies the score of dishes inside the window.
	// Default: 1.5.
	RecencyBoost float64 `json:"recency_boost" koanf:"recency_boost"`
}

// PatternsConfig contains user pattern analysis parameters.
type PatternsConfig struct {
	// MineIngredients enables favorite ingredient mining from the
	// interaction log. When disabled ingredient_match is always neutral.
	// Default: true.
	MineIngredients bool `json:"mine_ingredients" koanf:"mine_ingredients"`

	// MaxIngredients keeps only the strongest mined ingredients.
	// Default: 20.
	MaxIngredients int `json:"max_ingredients" koanf:"max_ingredients"`

	// TimeZone is the IANA zone used to read hour of day from log entries.
	// Default: UTC.
	TimeZone string `json:"time_zone" koanf:"time_zone"`
}

// DiversityConfig contains category diversification parameters.
type DiversityConfig struct {
	// MinPerCategory is the floor of the per-category cap.
	// Default: 3.
	MinPerCategory int `json:"min_per_category" koanf:"min_per_category"`

	// LimitDivisor derives the cap from the limit as limit/LimitDivisor.
	// Default: 5.
	LimitDivisor int `json:"limit_divisor" koanf:"limit_divisor"`
}

// LimitsConfig contains request defaults and bounds.
type LimitsConfig struct {
	// DefaultLimit is used when a caller passes a non-positive limit.
	// Default: 20.
	DefaultLimit int `json:"default_limit" koanf:"default_limit"`

	// MaxLimit caps caller supplied limits.
	// Default: 100.
	MaxLimit int `json:"max_limit" koanf:"max_limit"`

	// DefaultMinRating is the candidate rating floor.
	// Default: 3.5.
	DefaultMinRating float64 `json:"default_min_rating" koanf:"default_min_rating"`

	// SimilarLimit is the default limit for similar dishes.
	// Default: 10.
	SimilarLimit int `json:"similar_limit" koanf:"similar_limit"`

	// FeedLimit is the default page size for the feed.
	// Default: 6.
	FeedLimit int `json:"feed_limit" koanf:"feed_limit"`

	// HistoryCap bounds the interaction log.
	// Default: 50.
	HistoryCap int `json:"history_cap" koanf:"history_cap"`
}

// CacheConfig contains result caching parameters.
type CacheConfig struct {
	// Enabled turns on caching of trending, popular and similar results.
	// Default: true.
	Enabled bool `json:"enabled" koanf:"enabled"`

	// TTL is the lifetime of cached results.
	// Default: 5m.
	TTL time.Duration `json:"ttl" koanf:"ttl"`
}

// DefaultWeights returns the standard component weights.
func DefaultWeights() Weights {
	return Weights{
		RatingQuality:   0.30,
		Collaborative:   0.25,
		IngredientMatch: 0.20,
		TimeHabit:       0.10,
		Popularity:      0.10,
		Recency:         0.05,
	}
}

// DefaultConfig returns a configuration with production defaults.
func DefaultConfig() *Config {
	return &Config{
		Weights: DefaultWeights(),
		Similarity: SimilarityConfig{
			Threshold:        0.1,
			MaxNeighbors:     50,
			ScoringNeighbors: 20,
			FavoriteWeight:   1.0,
			CookedWeight:     0.7,
			ScanTimeout:      5 * time.Second,
		},
		Trending: TrendingConfig{
			Days:            7,
			MinRating:       4.0,
			MinRatingsCount: 5,
			RecencyBoost:    1.5,
		},
		Patterns: PatternsConfig{
			MineIngredients: true,
			MaxIngredients:  20,
			TimeZone:        "UTC",
		},
		Diversity: DiversityConfig{
			MinPerCategory: 3,
			LimitDivisor:   5,
		},
		Limits: LimitsConfig{
			DefaultLimit:     20,
			MaxLimit:         100,
			DefaultMinRating: 3.5,
			SimilarLimit:     10,
			FeedLimit:        6,
			HistoryCap:       50,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     5 * time.Minute,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	for name, w := range c.Weights.ToMap() {
		if w < 0 {
			return fmt.Errorf("weights.%s must be non-negative, got %f", name, w)
		}
	}
	if sum := c.Weights.Sum(); math.Abs(sum-1.0) > weightTolerance {
		return fmt.Errorf("weights must sum to 1.0, got %f", sum)
	}

	if c.Similarity.Threshold < 0 || c.Similarity.Threshold >= 1 {
		return fmt.Errorf("similarity.threshold must be in [0, 1), got %f", c.Similarity.Threshold)
	}
	if c.Similarity.MaxNeighbors < 1 {
		return fmt.Errorf("similarity.max_neighbors must be positive, got %d", c.Similarity.MaxNeighbors)
	}
	if c.Similarity.ScoringNeighbors < 1 || c.Similarity.ScoringNeighbors > c.Similarity.MaxNeighbors {
		return fmt.Errorf("similarity.scoring_neighbors must be in [1, %d], got %d",
			c.Similarity.MaxNeighbors, c.Similarity.ScoringNeighbors)
	}
	if c.Similarity.ScanTimeout < 0 {
		return fmt.Errorf("similarity.scan_timeout must be non-negative, got %v", c.Similarity.ScanTimeout)
	}

	if c.Trending.Days < 1 {
		return fmt.Errorf("trending.days must be positive, got %d", c.Trending.Days)
	}
	if c.Trending.MinRatingsCount < 0 {
		return fmt.Errorf("trending.min_ratings_count must be non-negative, got %d", c.Trending.MinRatingsCount)
	}
	if c.Trending.RecencyBoost < 1 {
		return fmt.Errorf("trending.recency_boost must be >= 1, got %f", c.Trending.RecencyBoost)
	}

	if c.Patterns.MaxIngredients < 1 {
		return fmt.Errorf("patterns.max_ingredients must be positive, got %d", c.Patterns.MaxIngredients)
	}
	if _, err := time.LoadLocation(c.Patterns.TimeZone); err != nil {
		return fmt.Errorf("patterns.time_zone is invalid: %w", err)
	}

	if c.Diversity.MinPerCategory < 1 {
		return fmt.Errorf("diversity.min_per_category must be positive, got %d", c.Diversity.MinPerCategory)
	}
	if c.Diversity.LimitDivisor < 1 {
		return fmt.Errorf("diversity.limit_divisor must be positive, got %d", c.Diversity.LimitDivisor)
	}

	if c.Limits.DefaultLimit < 1 {
		return fmt.Errorf("limits.default_limit must be positive, got %d", c.Limits.DefaultLimit)
	}
	if c.Limits.MaxLimit < c.Limits.DefaultLimit {
		return fmt.Errorf("limits.max_limit must be >= limits.default_limit, got %d < %d",
			c.Limits.MaxLimit, c.Limits.DefaultLimit)
	}
	if c.Limits.DefaultMinRating < 0 || c.Limits.DefaultMinRating > 5 {
		return fmt.Errorf("limits.default_min_rating must be in [0, 5], got %f", c.Limits.DefaultMinRating)
	}
	if c.Limits.SimilarLimit < 1 || c.Limits.FeedLimit < 1 {
		return fmt.Errorf("limits.similar_limit and limits.feed_limit must be positive")
	}
	if c.Limits.HistoryCap < 1 {
		return fmt.Errorf("limits.history_cap must be positive, got %d", c.Limits.HistoryCap)
	}

	if c.Cache.Enabled && c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive when cache is enabled, got %v", c.Cache.TTL)
	}

	return nil
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// clampLimit applies the default and maximum to a caller supplied limit.
func (c *Config) clampLimit(limit, def int) int {
	if limit <= 0 {
		limit = def
	}
	if limit > c.Limits.MaxLimit {
		limit = c.Limits.MaxLimit
	}
	return limit
}
