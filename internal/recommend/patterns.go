// Cookrank - Dish Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookrank

package recommend

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// mealWindow is a half-open [start, end) hour range.
type mealWindow struct {
	meal       MealType
	start, end int
}

var mealWindows = []mealWindow{
	{MealBreakfast, 6, 10},
	{MealLunch, 10, 14},
	{MealDinner, 17, 21},
	{MealLateNight, 21, 24},
}

// MealTypeForHour buckets an hour of day. Hours outside every window,
// including [0,6) and [14,17), are MealOther.
func MealTypeForHour(hour int) MealType {
	for _, w := range mealWindows {
		if hour >= w.start && hour < w.end {
			return w.meal
		}
	}
	return MealOther
}

// MealTypesForCookingTime returns the meals a dish of the given cooking
// time fits.
func MealTypesForCookingTime(minutes int) []MealType {
	switch {
	case minutes < 30:
		return []MealType{MealBreakfast, MealLunch}
	case minutes < 60:
		return []MealType{MealLunch, MealDinner}
	default:
		return []MealType{MealDinner}
	}
}

// AnalyzeTimePreferences counts dish views per meal bucket using the hour
// of each entry in loc. Entries that are not dishes or carry a zero
// timestamp are skipped.
func AnalyzeTimePreferences(history []HistoryEntry, loc *time.Location) map[MealType]int {
	counts := make(map[MealType]int)
	if loc == nil {
		loc = time.UTC
	}
	for i := range history {
		entry := &history[i]
		if entry.Type != HistoryEntryDish || entry.TS.IsZero() {
			continue
		}
		counts[MealTypeForHour(entry.TS.In(loc).Hour())]++
	}
	return counts
}

// historyDishIDs returns the valid dish ids of the log, newest first, with
// duplicates kept.
func historyDishIDs(history []HistoryEntry) []string {
	ids := make([]string, 0, len(history))
	for i := range history {
		if history[i].Type == HistoryEntryDish && history[i].ID != "" {
			ids = append(ids, history[i].ID)
		}
	}
	return ids
}

// MineFavoriteIngredients weights every ingredient of the dishes in the log
// by recency rank: with n dish entries the newest weighs n and the oldest 1.
// Only the strongest limit ingredients are kept. Unknown dishes contribute
// nothing.
func MineFavoriteIngredients(history []HistoryEntry, dishes map[string]*Dish, limit int) map[string]float64 {
	ids := historyDishIDs(history)
	weights := make(map[string]float64)
	for rank, id := range ids {
		dish, ok := dishes[id]
		if !ok {
			continue
		}
		w := float64(len(ids) - rank)
		seen := make(map[string]struct{}, len(dish.Ingredients))
		for _, name := range dish.IngredientNames() {
			key := strings.ToLower(strings.TrimSpace(name))
			if key == "" {
				continue
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			weights[key] += w
		}
	}
	if limit <= 0 || len(weights) <= limit {
		return weights
	}

	type kv struct {
		name   string
		weight float64
	}
	ranked := make([]kv, 0, len(weights))
	for k, v := range weights {
		ranked = append(ranked, kv{k, v})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].weight != ranked[j].weight {
			return ranked[i].weight > ranked[j].weight
		}
		return ranked[i].name < ranked[j].name
	})
	top := make(map[string]float64, limit)
	for _, e := range ranked[:limit] {
		top[e.name] = e.weight
	}
	return top
}

// analyzePatterns builds the user's behavioral profile. Ingredient mining
// loads the logged dishes; a load failure degrades to no ingredient signal.
func (e *Engine) analyzePatterns(ctx context.Context, activity *UserActivity) (UserPatterns, error) {
	patterns := UserPatterns{
		TimePreferences:     AnalyzeTimePreferences(activity.History, e.location),
		FavoriteIngredients: map[string]float64{},
	}
	if !e.config.Patterns.MineIngredients || len(activity.History) == 0 {
		return patterns, nil
	}

	dishes, err := e.loadHistoryDishes(ctx, activity.History)
	if err != nil {
		return patterns, err
	}
	patterns.FavoriteIngredients = MineFavoriteIngredients(activity.History, dishes, e.config.Patterns.MaxIngredients)
	return patterns, nil
}

func (e *Engine) loadHistoryDishes(ctx context.Context, history []HistoryEntry) (map[string]*Dish, error) {
	ids := historyDishIDs(history)
	unique := make(map[primitive.ObjectID]struct{}, len(ids))
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			continue
		}
		if _, ok := unique[oid]; ok {
			continue
		}
		unique[oid] = struct{}{}
		oids = append(oids, oid)
	}
	if len(oids) == 0 {
		return map[string]*Dish{}, nil
	}

	found, err := e.repo.FindDishesByIDs(ctx, oids)
	if err != nil {
		return nil, fmt.Errorf("load history dishes: %w", err)
	}
	byID := make(map[string]*Dish, len(found))
	for i := range found {
		byID[found[i].IDHex()] = &found[i]
	}
	return byID, nil
}
