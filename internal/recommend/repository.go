// Cookrank - Dish Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookrank

package recommend

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrInvalidID is returned when an id is not a 24 character hex ObjectID.
	ErrInvalidID = errors.New("invalid id")

	// ErrInvalidInteraction is returned for unknown interaction types.
	ErrInvalidInteraction = errors.New("invalid interaction type")

	// ErrNotFound is returned by repositories when a document does not exist.
	ErrNotFound = errors.New("not found")
)

// ParseID validates and parses a hex ObjectID.
func ParseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return oid, nil
}

// SortField names a dish ordering key.
type SortField struct {
	Field string
	Desc  bool
}

// Orderings used by the engine.
var (
	SortPopular = []SortField{
		{Field: "average_rating", Desc: true},
		{Field: "like_count", Desc: true},
		{Field: "cook_count", Desc: true},
	}
	SortSimilar = []SortField{
		{Field: "average_rating", Desc: true},
		{Field: "like_count", Desc: true},
	}
	SortFeed = []SortField{
		{Field: "average_rating", Desc: true},
		{Field: "created_at", Desc: true},
		{Field: "_id", Desc: true},
	}
)

// DishFilter selects dishes. Zero-valued fields do not filter.
type DishFilter struct {
	ActiveOnly      bool
	MinRating       float64
	Cuisines        []string
	Difficulty      string
	ExcludeTags     []string
	MinRatingsCount int

	// SimilarTo selects dishes sharing any of its attributes, excluding the
	// dish itself.
	SimilarTo *SimilarityClause

	Sort   []SortField
	Offset int
	Limit  int
}

// SimilarityClause matches dishes by shared content.
type SimilarityClause struct {
	ExcludeID       primitive.ObjectID
	Category        string
	Tags            []string
	CuisineType     string
	IngredientNames []string
}

// FavoritesRecord is one row of the favorites scan.
type FavoritesRecord struct {
	UserID    primitive.ObjectID
	Favorites []string
}

// InteractionWrite describes the storage side effects of one interaction.
type InteractionWrite struct {
	UserID  primitive.ObjectID
	DishID  primitive.ObjectID
	Type    InteractionType
	Entry   *HistoryEntry
	At      time.Time
	LogSize int
}

// Repository is the data access surface the engine depends on.
type Repository interface {
	// FindDishes returns the dishes matching filter.
	FindDishes(ctx context.Context, filter DishFilter) ([]Dish, error)

	// CountDishes counts dishes matching filter, ignoring paging fields.
	CountDishes(ctx context.Context, filter DishFilter) (int64, error)

	// FindDish returns ErrNotFound when the dish does not exist.
	FindDish(ctx context.Context, id primitive.ObjectID) (*Dish, error)

	// FindDishesByIDs returns the dishes that exist among ids, in any order.
	FindDishesByIDs(ctx context.Context, ids []primitive.ObjectID) ([]Dish, error)

	// FindUserActivity returns ErrNotFound when the user has no activity.
	FindUserActivity(ctx context.Context, userID primitive.ObjectID) (*UserActivity, error)

	// FindUserPreferences returns ErrNotFound when the user has no preferences.
	FindUserPreferences(ctx context.Context, userID primitive.ObjectID) (*UserPreferences, error)

	// FindActivities batch loads activities for users; missing users are absent.
	FindActivities(ctx context.Context, userIDs []primitive.ObjectID) (map[primitive.ObjectID]*UserActivity, error)

	// ScanFavorites calls fn for every user with a nonempty favorites set,
	// excluding the given user when it is not the nil id.
	ScanFavorites(ctx context.Context, exclude primitive.ObjectID, fn func(FavoritesRecord) error) error

	// ApplyInteraction performs the activity update and dish counter increment.
	ApplyInteraction(ctx context.Context, w InteractionWrite) error
}

// SortDishes orders dishes in place by fields. In-memory repositories use
// it to mirror the document store's ordering.
func SortDishes(dishes []Dish, fields []SortField) {
	if len(fields) == 0 {
		return
	}
	sort.SliceStable(dishes, func(i, j int) bool {
		for _, f := range fields {
			c := compareDishField(&dishes[i], &dishes[j], f.Field)
			if c == 0 {
				continue
			}
			if f.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

// compareDishField returns -1, 0 or 1. A missing created_at sorts before
// any timestamp.
func compareDishField(a, b *Dish, field string) int {
	switch field {
	case "average_rating":
		return cmp.Compare(a.AverageRating, b.AverageRating)
	case "like_count":
		return cmp.Compare(a.LikeCount, b.LikeCount)
	case "cook_count":
		return cmp.Compare(a.CookCount, b.CookCount)
	case "view_count":
		return cmp.Compare(a.ViewCount, b.ViewCount)
	case "created_at":
		var at, bt time.Time
		if a.CreatedAt != nil {
			at = *a.CreatedAt
		}
		if b.CreatedAt != nil {
			bt = *b.CreatedAt
		}
		return at.Compare(bt)
	case "_id":
		return strings.Compare(a.ID.Hex(), b.ID.Hex())
	default:
		return 0
	}
}
