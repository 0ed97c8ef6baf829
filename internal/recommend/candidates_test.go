// Cookrank - Dish Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookrank

package recommend

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCandidateFilter(t *testing.T) {
	t.Parallel()

	f := CandidateFilter(nil, 3.5)
	if !f.ActiveOnly || f.MinRating != 3.5 || f.Cuisines != nil || f.Difficulty != "" {
		t.Errorf("nil prefs filter = %+v", f)
	}

	f = CandidateFilter(&UserPreferences{DifficultyPreference: DifficultyAll}, 3.5)
	if f.Difficulty != "" {
		t.Errorf("difficulty %q should not filter", DifficultyAll)
	}

	f = CandidateFilter(&UserPreferences{
		CuisinePreferences:   []string{"Thai", "Italian"},
		DifficultyPreference: "easy",
	}, 4)
	if len(f.Cuisines) != 2 || f.Difficulty != "easy" || f.MinRating != 4 {
		t.Errorf("filter = %+v", f)
	}
}

func TestMatchesFilter(t *testing.T) {
	t.Parallel()

	dish := &Dish{
		ID:            primitive.NewObjectID(),
		IsActive:      true,
		AverageRating: 4.2,
		CuisineType:   "Thai",
		Difficulty:    "easy",
		Category:      "soup",
		Tags:          []string{"Spicy", "Vegan"},
		Ratings:       []int{4, 4, 5},
		Ingredients:   []Ingredient{{Name: "lemongrass"}},
	}

	tests := []struct {
		name   string
		filter DishFilter
		want   bool
	}{
		{"empty filter", DishFilter{}, true},
		{"inactive excluded", DishFilter{ActiveOnly: true}, true},
		{"rating floor met", DishFilter{MinRating: 4.2}, true},
		{"rating floor missed", DishFilter{MinRating: 4.3}, false},
		{"cuisine match", DishFilter{Cuisines: []string{"Thai"}}, true},
		{"cuisine miss", DishFilter{Cuisines: []string{"Mexican"}}, false},
		{"difficulty miss", DishFilter{Difficulty: "hard"}, false},
		{"too few ratings", DishFilter{MinRatingsCount: 5}, false},
		{"restricted tag case-insensitive", DishFilter{ExcludeTags: []string{"vegan"}}, false},
		{"unrelated restriction", DishFilter{ExcludeTags: []string{"nuts"}}, true},
		{"similar by ingredient", DishFilter{SimilarTo: &SimilarityClause{IngredientNames: []string{"lemongrass"}}}, true},
		{"similar by category", DishFilter{SimilarTo: &SimilarityClause{Category: "soup"}}, true},
		{"similar nothing shared", DishFilter{SimilarTo: &SimilarityClause{Category: "dessert", Tags: []string{"Sweet"}}}, false},
		{"similar excludes self", DishFilter{SimilarTo: &SimilarityClause{ExcludeID: dish.ID, Category: "soup"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := tt.filter
			if got := MatchesFilter(dish, &f); got != tt.want {
				t.Errorf("MatchesFilter() = %v, want %v", got, tt.want)
			}
		})
	}

	inactive := *dish
	inactive.IsActive = false
	if MatchesFilter(&inactive, &DishFilter{ActiveOnly: true}) {
		t.Error("inactive dish passed ActiveOnly filter")
	}
}

func TestHasRestrictedTag(t *testing.T) {
	t.Parallel()

	dish := &Dish{Tags: []string{"VEGAN", "gluten-free"}}
	if !HasRestrictedTag(dish, []string{"vegan"}) {
		t.Error("expected VEGAN to match vegan")
	}
	if HasRestrictedTag(dish, []string{"vegetarian"}) {
		t.Error("partial words must not match")
	}
	if HasRestrictedTag(&Dish{}, []string{"vegan"}) {
		t.Error("untagged dish cannot be restricted")
	}
}

func TestSeenDishIDs(t *testing.T) {
	t.Parallel()

	activity := &UserActivity{
		FavoriteDishes: []string{"f"},
		CookedDishes:   []string{"c", "f"},
		ViewedDishes:   []string{"v"},
		History: []HistoryEntry{
			{Type: HistoryEntryDish, ID: "h"},
			{Type: HistoryEntryUser, ID: "someone"},
		},
	}

	seen := SeenDishIDs(activity)
	for _, id := range []string{"f", "c", "v", "h"} {
		if _, ok := seen[id]; !ok {
			t.Errorf("missing %q", id)
		}
	}
	if _, ok := seen["someone"]; ok {
		t.Error("user entries must not count as seen dishes")
	}
	if len(seen) != 4 {
		t.Errorf("len = %d, want 4", len(seen))
	}
}
