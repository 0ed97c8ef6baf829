// Cookrank - Dish Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookrank

package recommend

import (
	"fmt"
	"math"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Neutral values returned when a signal is missing.
const (
	NeutralScore          = 0.5
	NoIngredientsScore    = 0.3
	popularityCeiling     = 5000.0
	ratingConfidenceCount = 10.0
	maxRating             = 5.0
)

// ComponentOrder is the fixed summation order of the weighted components.
var ComponentOrder = []string{
	ComponentRatingQuality,
	ComponentCollaborative,
	ComponentIngredientMatch,
	ComponentTimeHabit,
	ComponentPopularity,
	ComponentRecency,
}

// ScoreInput carries the per-user context shared by every candidate.
type ScoreInput struct {
	Activity           *UserActivity
	Preferences        *UserPreferences
	Patterns           UserPatterns
	Neighbors          []Neighbor
	NeighborActivities map[primitive.ObjectID]*UserActivity
}

// Scorer combines the six component scores with fixed weights.
type Scorer struct {
	weights    Weights
	similarity SimilarityConfig
	now        func() time.Time
}

// NewScorer creates a scorer. A nil now uses time.Now.
func NewScorer(weights Weights, similarity SimilarityConfig, now func() time.Time) *Scorer {
	if now == nil {
		now = time.Now
	}
	return &Scorer{weights: weights, similarity: similarity, now: now}
}

// Score computes the breakdown for dish. It fails only for malformed
// dishes, so callers can skip the dish and keep ranking the rest.
func (s *Scorer) Score(dish *Dish, in *ScoreInput) (ScoreBreakdown, error) {
	if err := checkDish(dish); err != nil {
		return ScoreBreakdown{}, err
	}

	components := map[string]float64{
		ComponentRatingQuality:   RatingQuality(dish),
		ComponentCollaborative:   CollaborativeScore(dish.IDHex(), in.Neighbors, in.NeighborActivities, s.similarity),
		ComponentIngredientMatch: IngredientMatch(dish, in.Patterns.FavoriteIngredients),
		ComponentTimeHabit:       TimeHabit(dish, in.Patterns.TimePreferences),
		ComponentPopularity:      Popularity(dish),
		ComponentRecency:         Recency(dish.CreatedAt, s.now()),
	}

	weights := s.weights.ToMap()
	var total float64
	for _, name := range ComponentOrder {
		total += weights[name] * components[name]
	}
	return NewScoreBreakdown(components, total), nil
}

func checkDish(dish *Dish) error {
	r := dish.AverageRating
	if math.IsNaN(r) || math.IsInf(r, 0) || r < 0 || r > maxRating {
		return fmt.Errorf("dish %s: average_rating out of range: %v", dish.IDHex(), r)
	}
	if dish.LikeCount < 0 || dish.CookCount < 0 || dish.ViewCount < 0 {
		return fmt.Errorf("dish %s: negative popularity counter", dish.IDHex())
	}
	return nil
}

// RatingQuality discounts the normalized average toward the midpoint when
// fewer than ten ratings back it.
func RatingQuality(dish *Dish) float64 {
	normalized := dish.AverageRating / maxRating
	confidence := math.Min(float64(len(dish.Ratings))/ratingConfidenceCount, 1.0)
	return normalized * (0.5 + 0.5*confidence)
}

// CollaborativeScore reads the top neighbors' favorites and cooked dishes.
// Neighbors without a loaded activity carry no signal and no weight.
func CollaborativeScore(dishID string, neighbors []Neighbor, activities map[primitive.ObjectID]*UserActivity, cfg SimilarityConfig) float64 {
	if len(neighbors) == 0 {
		return NeutralScore
	}
	top := neighbors
	if cfg.ScoringNeighbors > 0 && len(top) > cfg.ScoringNeighbors {
		top = top[:cfg.ScoringNeighbors]
	}

	var weightedSum, totalWeight float64
	for _, n := range top {
		activity, ok := activities[n.UserID]
		if !ok || activity == nil {
			continue
		}
		switch {
		case containsString(activity.FavoriteDishes, dishID):
			weightedSum += n.Similarity * cfg.FavoriteWeight
		case containsString(activity.CookedDishes, dishID):
			weightedSum += n.Similarity * cfg.CookedWeight
		}
		totalWeight += n.Similarity
	}
	if totalWeight <= 0 {
		return NeutralScore
	}
	return math.Min(weightedSum/totalWeight, 1.0)
}

// IngredientMatch is the weight share of favorite ingredients that appear,
// as case-insensitive substrings, in the dish ingredient names.
func IngredientMatch(dish *Dish, favorites map[string]float64) float64 {
	if len(favorites) == 0 {
		return NeutralScore
	}
	names := dish.IngredientNames()
	if len(names) == 0 {
		return NoIngredientsScore
	}
	for i := range names {
		names[i] = strings.ToLower(names[i])
	}

	var matched, total float64
	for fav, weight := range favorites {
		total += weight
		fav = strings.ToLower(fav)
		for _, name := range names {
			if strings.Contains(name, fav) {
				matched += weight
				break
			}
		}
	}
	if total <= 0 {
		return NeutralScore
	}
	return math.Min(matched/total, 1.0)
}

// TimeHabit is the share of the user's meal-time observations that fall in
// the meals the dish fits.
func TimeHabit(dish *Dish, prefs map[MealType]int) float64 {
	if len(prefs) == 0 {
		return NeutralScore
	}
	var total int
	for _, c := range prefs {
		total += c
	}
	if total <= 0 {
		return NeutralScore
	}
	var match int
	for _, meal := range MealTypesForCookingTime(dish.EffectiveCookingTime()) {
		match += prefs[meal]
	}
	return math.Min(float64(match)/float64(total), 1.0)
}

// Popularity compresses engagement logarithmically so outliers saturate.
func Popularity(dish *Dish) float64 {
	return math.Min(math.Log1p(dish.Engagement())/math.Log1p(popularityCeiling), 1.0)
}

// Recency steps down with dish age in whole days.
func Recency(createdAt *time.Time, now time.Time) float64 {
	if createdAt == nil || createdAt.IsZero() {
		return NeutralScore
	}
	days := ageDays(*createdAt, now)
	switch {
	case days <= 7:
		return 1.0
	case days <= 30:
		return 0.8
	case days <= 90:
		return 0.6
	default:
		return 0.4
	}
}

// ageDays returns elapsed whole days, floored.
func ageDays(created, now time.Time) int {
	return int(math.Floor(now.Sub(created).Hours() / 24))
}

var componentReasons = map[string]string{
	ComponentRatingQuality:   "highly rated",
	ComponentCollaborative:   "liked by cooks with similar taste",
	ComponentIngredientMatch: "uses ingredients you like",
	ComponentTimeHabit:       "fits when you usually cook",
	ComponentPopularity:      "popular with the community",
	ComponentRecency:         "new dish",
}

// explain names the component contributing the most weighted score.
func explain(b ScoreBreakdown, weights Weights) string {
	w := weights.ToMap()
	best, bestValue := "", -1.0
	for _, name := range ComponentOrder {
		v, _ := b.Component(name)
		if contrib := v * w[name]; contrib > bestValue {
			best, bestValue = name, contrib
		}
	}
	return componentReasons[best]
}
