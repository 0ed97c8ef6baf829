// Cookrank - Dish Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookrank

package recommend

import (
	"context"
	"fmt"
	"strings"
)

// CandidateFilter builds the candidate filter for a user's preferences.
// A nil or empty preference set yields the rating-filtered active set.
func CandidateFilter(prefs *UserPreferences, minRating float64) DishFilter {
	filter := DishFilter{
		ActiveOnly: true,
		MinRating:  minRating,
	}
	if prefs == nil {
		return filter
	}
	if len(prefs.CuisinePreferences) > 0 {
		filter.Cuisines = append([]string(nil), prefs.CuisinePreferences...)
	}
	if d := prefs.DifficultyPreference; d != "" && d != DifficultyAll {
		filter.Difficulty = d
	}
	return filter
}

// MatchesFilter reports whether dish satisfies the content predicates of
// filter. Paging and sorting fields are ignored. In-memory repositories use
// this to apply the same rules as the document store.
func MatchesFilter(dish *Dish, filter *DishFilter) bool {
	if filter.ActiveOnly && !dish.IsActive {
		return false
	}
	if dish.AverageRating < filter.MinRating {
		return false
	}
	if len(filter.Cuisines) > 0 && !containsString(filter.Cuisines, dish.CuisineType) {
		return false
	}
	if filter.Difficulty != "" && dish.Difficulty != filter.Difficulty {
		return false
	}
	if filter.MinRatingsCount > 0 && len(dish.Ratings) < filter.MinRatingsCount {
		return false
	}
	if len(filter.ExcludeTags) > 0 && HasRestrictedTag(dish, filter.ExcludeTags) {
		return false
	}
	if s := filter.SimilarTo; s != nil {
		if dish.ID == s.ExcludeID || !s.matches(dish) {
			return false
		}
	}
	return true
}

func (s *SimilarityClause) matches(dish *Dish) bool {
	if s.Category != "" && dish.Category == s.Category {
		return true
	}
	if s.CuisineType != "" && dish.CuisineType == s.CuisineType {
		return true
	}
	for _, tag := range dish.Tags {
		if containsString(s.Tags, tag) {
			return true
		}
	}
	for _, ing := range dish.Ingredients {
		if containsString(s.IngredientNames, ing.Name) {
			return true
		}
	}
	return false
}

// HasRestrictedTag reports whether any dish tag matches a restricted term,
// case-insensitively.
func HasRestrictedTag(dish *Dish, restricted []string) bool {
	for _, tag := range dish.Tags {
		tag = strings.ToLower(tag)
		for _, r := range restricted {
			if tag == strings.ToLower(r) {
				return true
			}
		}
	}
	return false
}

// SeenDishIDs returns every dish id the user has interacted with.
func SeenDishIDs(activity *UserActivity) map[string]struct{} {
	seen := make(map[string]struct{},
		len(activity.FavoriteDishes)+len(activity.CookedDishes)+len(activity.ViewedDishes))
	for _, ids := range [][]string{activity.FavoriteDishes, activity.CookedDishes, activity.ViewedDishes} {
		for _, id := range ids {
			seen[id] = struct{}{}
		}
	}
	for i := range activity.History {
		if activity.History[i].Type == HistoryEntryDish {
			seen[activity.History[i].ID] = struct{}{}
		}
	}
	return seen
}

// excludeSeen drops dishes present in seen, preserving order.
func excludeSeen(dishes []Dish, seen map[string]struct{}) []Dish {
	out := dishes[:0]
	for i := range dishes {
		if _, ok := seen[dishes[i].IDHex()]; !ok {
			out = append(out, dishes[i])
		}
	}
	return out
}

// selectCandidates loads the candidate set for prefs.
func (e *Engine) selectCandidates(ctx context.Context, prefs *UserPreferences, minRating float64) ([]Dish, error) {
	filter := CandidateFilter(prefs, minRating)
	dishes, err := e.repo.FindDishes(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find candidate dishes: %w", err)
	}
	return dishes, nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
