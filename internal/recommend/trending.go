// Cookrank - Dish Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookrank

package recommend

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"
)

// TrendingScore ranks a dish by rating and engagement, boosted when the
// dish is no older than days.
func TrendingScore(dish *Dish, days int, boost float64, now time.Time) float64 {
	ratingScore := dish.AverageRating * 20
	engagementScore := math.Log1p(dish.Engagement()) * 5

	recencyBoost := 1.0
	if dish.CreatedAt != nil && !dish.CreatedAt.IsZero() && ageDays(*dish.CreatedAt, now) <= days {
		recencyBoost = boost
	}
	return (ratingScore + engagementScore) * recencyBoost
}

// GetTrendingDishes ranks active, well rated dishes with enough ratings,
// independent of any user profile.
func (e *Engine) GetTrendingDishes(ctx context.Context, opts TrendingOptions) ([]Dish, error) {
	opts = e.normalizeTrending(opts)
	minRating := ratingFloor(opts.MinRating, e.config.Trending.MinRating)

	key := cacheKey("trending", opts.Days, opts.Limit, minRating, opts.MinRatingsCount)
	var cached []Dish
	if e.cacheGet(ctx, key, &cached) {
		return cached, nil
	}

	filter := DishFilter{
		ActiveOnly:      true,
		MinRating:       minRating,
		MinRatingsCount: max(opts.MinRatingsCount, 1),
	}
	dishes, err := e.repo.FindDishes(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find trending dishes: %w", err)
	}

	type trendingDish struct {
		dish  Dish
		score float64
	}
	now := e.now()
	ranked := make([]trendingDish, 0, len(dishes))
	for i := range dishes {
		if len(dishes[i].Ratings) == 0 || len(dishes[i].Ratings) < opts.MinRatingsCount {
			continue
		}
		ranked = append(ranked, trendingDish{
			dish:  dishes[i],
			score: TrendingScore(&dishes[i], opts.Days, e.config.Trending.RecencyBoost, now),
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	result := make([]Dish, 0, min(opts.Limit, len(ranked)))
	for i := 0; i < len(ranked) && i < opts.Limit; i++ {
		result = append(result, ranked[i].dish)
	}

	e.cacheSet(ctx, key, result)
	return result, nil
}

func (e *Engine) normalizeTrending(opts TrendingOptions) TrendingOptions {
	if opts.Days <= 0 {
		opts.Days = e.config.Trending.Days
	}
	opts.Limit = e.config.clampLimit(opts.Limit, e.config.Limits.DefaultLimit)
	if opts.MinRatingsCount <= 0 {
		opts.MinRatingsCount = e.config.Trending.MinRatingsCount
	}
	return opts
}

// GetPopularDishes is the rating-sorted fallback for users without history.
// Dishes tagged with any of the user's dietary restrictions are excluded.
// A nil floor uses the configured default.
func (e *Engine) GetPopularDishes(ctx context.Context, limit int, prefs *UserPreferences, floor *float64) ([]RankedDish, error) {
	limit = e.config.clampLimit(limit, e.config.Limits.DefaultLimit)
	minRating := ratingFloor(floor, e.config.Limits.DefaultMinRating)
	restricted := prefs.RestrictionTerms()

	key := cacheKey("popular", limit, minRating, restricted)
	var cached []Dish
	if !e.cacheGet(ctx, key, &cached) {
		dishes, err := e.repo.FindDishes(ctx, DishFilter{
			ActiveOnly:  true,
			MinRating:   minRating,
			ExcludeTags: restricted,
			Sort:        SortPopular,
			Limit:       limit,
		})
		if err != nil {
			return nil, fmt.Errorf("find popular dishes: %w", err)
		}
		cached = dishes
		e.cacheSet(ctx, key, cached)
	}

	ranked := make([]RankedDish, 0, len(cached))
	for i := range cached {
		score := cached[i].AverageRating / maxRating
		ranked = append(ranked, RankedDish{
			Dish:      cached[i],
			Score:     score,
			Breakdown: NewScoreBreakdown(map[string]float64{ComponentPopular: 1.0}, score),
			Reason:    "popular pick",
		})
	}
	return ranked, nil
}

// UserPreferences returns the stored preferences for userID, or nil when
// the user has none.
func (e *Engine) UserPreferences(ctx context.Context, userID string) (*UserPreferences, error) {
	uid, err := ParseID(userID)
	if err != nil {
		return nil, err
	}
	prefs, err := e.repo.FindUserPreferences(ctx, uid)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("find user preferences: %w", err)
	}
	return prefs, nil
}

// GetSimilarDishes returns active dishes sharing the category, a tag, the
// cuisine, or one of the first five ingredient names of the given dish,
// ordered by rating then likes. Unknown dishes yield an empty list.
func (e *Engine) GetSimilarDishes(ctx context.Context, dishID string, limit int) ([]Dish, error) {
	oid, err := ParseID(dishID)
	if err != nil {
		return nil, err
	}
	limit = e.config.clampLimit(limit, e.config.Limits.SimilarLimit)

	key := cacheKey("similar", dishID, limit)
	var cached []Dish
	if e.cacheGet(ctx, key, &cached) {
		return cached, nil
	}

	dish, err := e.repo.FindDish(ctx, oid)
	if err != nil {
		if isNotFound(err) {
			return []Dish{}, nil
		}
		return nil, fmt.Errorf("find dish %s: %w", dishID, err)
	}

	ingredients := dish.IngredientNames()
	if len(ingredients) > 5 {
		ingredients = ingredients[:5]
	}
	similar, err := e.repo.FindDishes(ctx, DishFilter{
		ActiveOnly: true,
		SimilarTo: &SimilarityClause{
			ExcludeID:       oid,
			Category:        dish.Category,
			Tags:            dish.Tags,
			CuisineType:     dish.CuisineType,
			IngredientNames: ingredients,
		},
		Sort:  SortSimilar,
		Limit: limit,
	})
	if err != nil {
		return nil, fmt.Errorf("find similar dishes: %w", err)
	}
	if similar == nil {
		similar = []Dish{}
	}

	e.cacheSet(ctx, key, similar)
	return similar, nil
}

// GetFeed pages through active dishes by rating, then newest first.
func (e *Engine) GetFeed(ctx context.Context, opts FeedOptions) (*FeedPage, error) {
	if opts.Offset < 0 {
		opts.Offset = 0
	}
	opts.Limit = e.config.clampLimit(opts.Limit, e.config.Limits.FeedLimit)

	filter := DishFilter{ActiveOnly: true}
	if opts.MinRating > 0 {
		filter.MinRating = opts.MinRating
	}
	total, err := e.repo.CountDishes(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count feed dishes: %w", err)
	}

	filter.Sort = SortFeed
	filter.Offset = opts.Offset
	filter.Limit = opts.Limit
	dishes, err := e.repo.FindDishes(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find feed dishes: %w", err)
	}

	items := make([]FeedItem, 0, len(dishes))
	for i := range dishes {
		rating := math.Round(dishes[i].AverageRating*100) / 100
		item := FeedItem{Dish: dishes[i], Reason: "new dish"}
		if rating > 0 {
			item.Score = math.Round(rating/maxRating*1000) / 1000
			item.Reason = fmt.Sprintf("rated %.1f", rating)
		}
		items = append(items, item)
	}

	return &FeedPage{
		Items:   items,
		Total:   total,
		Offset:  opts.Offset,
		Limit:   opts.Limit,
		HasMore: int64(opts.Offset+len(items)) < total,
	}, nil
}
