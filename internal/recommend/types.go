// Cookrank - Dish Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookrank

package recommend

import (
	"slices"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultCookingTime is assumed for dishes that do not record a cooking time.
const DefaultCookingTime = 30

// HistoryEntryDish and HistoryEntryUser are the entry types found in the
// interaction log.
const (
	HistoryEntryDish = "dish"
	HistoryEntryUser = "user"
)

// Ingredient is a single ingredient line of a dish.
type Ingredient struct {
	Name     string `bson:"name" json:"name"`
	Quantity string `bson:"quantity,omitempty" json:"quantity,omitempty"`
	Unit     string `bson:"unit,omitempty" json:"unit,omitempty"`
}

// Dish is a recommendable dish document.
// Optional numeric fields default to zero. A nil CookingTime means the
// dish does not record one.
type Dish struct {
	ID            primitive.ObjectID `bson:"_id" json:"id"`
	Name          string             `bson:"name" json:"name"`
	Description   string             `bson:"description,omitempty" json:"description,omitempty"`
	ImageURL      string             `bson:"image_url,omitempty" json:"image_url,omitempty"`
	AverageRating float64            `bson:"average_rating" json:"average_rating"`
	Ratings       []int              `bson:"ratings,omitempty" json:"ratings,omitempty"`
	Ingredients   []Ingredient       `bson:"ingredients,omitempty" json:"ingredients,omitempty"`
	CookingTime   *int               `bson:"cooking_time,omitempty" json:"cooking_time,omitempty"`
	Category      string             `bson:"category,omitempty" json:"category,omitempty"`
	CuisineType   string             `bson:"cuisine_type,omitempty" json:"cuisine_type,omitempty"`
	Difficulty    string             `bson:"difficulty,omitempty" json:"difficulty,omitempty"`
	Tags          []string           `bson:"tags,omitempty" json:"tags,omitempty"`
	LikeCount     int64              `bson:"like_count" json:"like_count"`
	CookCount     int64              `bson:"cook_count" json:"cook_count"`
	ViewCount     int64              `bson:"view_count" json:"view_count"`
	IsActive      bool               `bson:"is_active" json:"is_active"`
	CreatedAt     *time.Time         `bson:"created_at,omitempty" json:"created_at,omitempty"`
}

// IDHex returns the hex form of the dish id, as stored in activity sets.
func (d *Dish) IDHex() string {
	return d.ID.Hex()
}

// UnmarshalBSON decodes a dish, reading a created_at that is not a BSON
// datetime as missing.
func (d *Dish) UnmarshalBSON(data []byte) error {
	type plain Dish
	return unmarshalDropBadTimes(data, (*plain)(d), "created_at")
}

// EffectiveCookingTime returns the cooking time in minutes, falling back to
// DefaultCookingTime when the dish has none. A recorded zero is kept.
func (d *Dish) EffectiveCookingTime() int {
	if d.CookingTime == nil {
		return DefaultCookingTime
	}
	return *d.CookingTime
}

// IngredientNames returns the dish ingredient names in listing order.
func (d *Dish) IngredientNames() []string {
	names := make([]string, 0, len(d.Ingredients))
	for _, ing := range d.Ingredients {
		if ing.Name != "" {
			names = append(names, ing.Name)
		}
	}
	return names
}

// Engagement is the weighted interaction volume used by popularity and
// trending scores.
func (d *Dish) Engagement() float64 {
	return float64(d.LikeCount)*3 + float64(d.CookCount)*2 + float64(d.ViewCount)*0.5
}

// HistoryEntry is one event in a user's interaction log.
type HistoryEntry struct {
	Type  string    `bson:"type" json:"type"`
	ID    string    `bson:"id" json:"id"`
	Name  string    `bson:"name,omitempty" json:"name,omitempty"`
	Image string    `bson:"image,omitempty" json:"image,omitempty"`
	TS    time.Time `bson:"ts,omitempty" json:"ts"`
}

// UnmarshalBSON decodes a log entry. A ts that is not a BSON datetime is
// left zero, and zero timestamps are skipped by pattern analysis.
func (e *HistoryEntry) UnmarshalBSON(data []byte) error {
	type plain HistoryEntry
	return unmarshalDropBadTimes(data, (*plain)(e), "ts")
}

// unmarshalDropBadTimes decodes data into dst after removing the named
// fields whose value is not a BSON datetime.
func unmarshalDropBadTimes(data []byte, dst interface{}, keys ...string) error {
	elems, err := bson.Raw(data).Elements()
	if err != nil {
		return err
	}
	doc := make(bson.D, 0, len(elems))
	dropped := false
	for _, el := range elems {
		if slices.Contains(keys, el.Key()) && el.Value().Type != bson.TypeDateTime {
			dropped = true
			continue
		}
		doc = append(doc, bson.E{Key: el.Key(), Value: el.Value()})
	}
	if dropped {
		if data, err = bson.Marshal(doc); err != nil {
			return err
		}
	}
	return bson.Unmarshal(data, dst)
}

// UserActivity is the per-user activity document.
type UserActivity struct {
	UserID         primitive.ObjectID `bson:"user_id" json:"user_id"`
	FavoriteDishes []string           `bson:"favorite_dishes,omitempty" json:"favorite_dishes,omitempty"`
	CookedDishes   []string           `bson:"cooked_dishes,omitempty" json:"cooked_dishes,omitempty"`
	ViewedDishes   []string           `bson:"viewed_dishes,omitempty" json:"viewed_dishes,omitempty"`
	History        []HistoryEntry     `bson:"viewed_dishes_and_users,omitempty" json:"viewed_dishes_and_users,omitempty"`
	UpdatedAt      time.Time          `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

// FavoriteSet returns the favorite dish ids as a set.
func (a *UserActivity) FavoriteSet() map[string]struct{} {
	return toSet(a.FavoriteDishes)
}

// CookedSet returns the cooked dish ids as a set.
func (a *UserActivity) CookedSet() map[string]struct{} {
	return toSet(a.CookedDishes)
}

// UserPreferences holds the explicit filters a user has configured.
type UserPreferences struct {
	UserID               primitive.ObjectID `bson:"user_id" json:"user_id"`
	CuisinePreferences   []string           `bson:"cuisine_preferences,omitempty" json:"cuisine_preferences,omitempty"`
	DifficultyPreference string             `bson:"difficulty_preference,omitempty" json:"difficulty_preference,omitempty"`
	DietaryRestrictions  []string           `bson:"dietary_restrictions,omitempty" json:"dietary_restrictions,omitempty"`
}

// DifficultyAll disables the difficulty filter.
const DifficultyAll = "all"

// RestrictionTerms returns the lowercased dietary restriction terms.
func (p *UserPreferences) RestrictionTerms() []string {
	if p == nil {
		return nil
	}
	terms := make([]string, 0, len(p.DietaryRestrictions))
	for _, r := range p.DietaryRestrictions {
		r = strings.ToLower(strings.TrimSpace(r))
		if r != "" {
			terms = append(terms, r)
		}
	}
	return terms
}

// MealType is a time-of-day bucket.
type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
	MealLateNight MealType = "late_night"
	MealOther     MealType = "other"
)

// InteractionType is a user action recorded against a dish.
type InteractionType string

const (
	InteractionView     InteractionType = "view"
	InteractionFavorite InteractionType = "favorite"
	InteractionLike     InteractionType = "like"
	InteractionCook     InteractionType = "cook"
)

// Valid reports whether t is a known interaction type.
func (t InteractionType) Valid() bool {
	switch t {
	case InteractionView, InteractionFavorite, InteractionLike, InteractionCook:
		return true
	}
	return false
}

// ActivityField returns the activity set field that t adds to.
func (t InteractionType) ActivityField() string {
	switch t {
	case InteractionView:
		return "viewed_dishes"
	case InteractionFavorite, InteractionLike:
		return "favorite_dishes"
	case InteractionCook:
		return "cooked_dishes"
	default:
		return ""
	}
}

// CounterField returns the dish counter that t increments.
func (t InteractionType) CounterField() string {
	switch t {
	case InteractionView:
		return "view_count"
	case InteractionFavorite, InteractionLike:
		return "like_count"
	case InteractionCook:
		return "cook_count"
	default:
		return ""
	}
}

// Component names used in score breakdowns.
const (
	ComponentRatingQuality   = "rating_quality"
	ComponentCollaborative   = "collaborative"
	ComponentIngredientMatch = "ingredient_match"
	ComponentTimeHabit       = "time_habit"
	ComponentPopularity      = "popularity"
	ComponentRecency         = "recency"
	ComponentPopular         = "popular"
)

// ScoreBreakdown is the immutable result of scoring one dish.
type ScoreBreakdown struct {
	components map[string]float64
	total      float64
}

// NewScoreBreakdown copies components so later changes to the input map are
// not observed.
func NewScoreBreakdown(components map[string]float64, total float64) ScoreBreakdown {
	c := make(map[string]float64, len(components))
	for k, v := range components {
		c[k] = v
	}
	return ScoreBreakdown{components: c, total: total}
}

// Total returns the combined score.
func (b ScoreBreakdown) Total() float64 { return b.total }

// Component returns a single component value.
func (b ScoreBreakdown) Component(name string) (float64, bool) {
	v, ok := b.components[name]
	return v, ok
}

// Components returns a copy of the component values.
func (b ScoreBreakdown) Components() map[string]float64 {
	out := make(map[string]float64, len(b.components))
	for k, v := range b.components {
		out[k] = v
	}
	return out
}

// MarshalMap returns the breakdown in wire form, with "total" alongside the
// components.
func (b ScoreBreakdown) MarshalMap() map[string]float64 {
	out := b.Components()
	out["total"] = b.total
	return out
}

// RankedDish is a scored recommendation.
type RankedDish struct {
	Dish      Dish
	Score     float64
	Breakdown ScoreBreakdown
	Reason    string
}

// Neighbor is a similar user with its Jaccard similarity.
type Neighbor struct {
	UserID     primitive.ObjectID
	Similarity float64
}

// UserPatterns is the behavioral profile derived from a user's history.
type UserPatterns struct {
	TimePreferences     map[MealType]int
	FavoriteIngredients map[string]float64
}

// RecommendOptions controls a personalized recommendation call. A nil
// MinRating uses the configured floor; zero disables it.
type RecommendOptions struct {
	Limit       int
	ExcludeSeen bool
	MinRating   *float64
}

// TrendingOptions controls a trending call. A nil MinRating uses the
// configured trending floor.
type TrendingOptions struct {
	Days            int
	Limit           int
	MinRating       *float64
	MinRatingsCount int
}

// ratingFloor resolves an optional rating floor against its default.
func ratingFloor(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

// FeedOptions controls the paginated dish feed.
type FeedOptions struct {
	Offset    int
	Limit     int
	MinRating float64
}

// FeedItem is one entry of the paginated feed.
type FeedItem struct {
	Dish   Dish
	Score  float64
	Reason string
}

// FeedPage is a page of the dish feed.
type FeedPage struct {
	Items   []FeedItem
	Total   int64
	Offset  int
	Limit   int
	HasMore bool
}

// Algorithm names reported alongside results.
const (
	AlgorithmPersonalized = "personalized"
	AlgorithmPopular      = "popular_fallback"
	AlgorithmTrending     = "trending"
	AlgorithmSimilar      = "similar"
	AlgorithmFeed         = "feed_by_rating_and_recency"
)

// Recommendations is the result of GetRecommendations.
type Recommendations struct {
	Items     []RankedDish
	Algorithm string
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
