// Cookrank - Dish Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookrank

package main

import (
	"math/rand"
	"strings"
	"time"

	"github.com/jaswdr/faker"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tomtom215/cookrank/internal/recommend"
)

var (
	categories   = []string{"breakfast", "lunch", "dinner", "dessert", "snack", "soup", "salad"}
	cuisines     = []string{"italian", "mexican", "japanese", "indian", "thai", "french", "greek", "american"}
	difficulties = []string{"easy", "medium", "hard"}
	tags         = []string{"vegetarian", "vegan", "gluten", "dairy", "nuts", "spicy", "quick", "comfort"}
	ingredients  = []string{
		"garlic", "onion", "tomato", "basil", "chicken", "beef", "rice", "pasta",
		"cheese", "butter", "egg", "flour", "chili", "ginger", "lime", "coriander",
		"potato", "mushroom", "spinach", "salmon", "tofu", "peanuts", "cream", "lentils",
	}
	units = []string{"g", "ml", "tbsp", "tsp", "cup", "pcs"}
)

// generator builds a reproducible synthetic catalog and user base.
type generator struct {
	fake faker.Faker
	now  time.Time
}

func newGenerator(seed int64, now time.Time) *generator {
	return &generator{
		fake: faker.NewWithSeed(rand.NewSource(seed)),
		now:  now,
	}
}

// dishes returns n active dishes with ratings and counters populated.
func (g *generator) dishes(n int) []recommend.Dish {
	out := make([]recommend.Dish, 0, n)
	for range n {
		created := g.fake.Time().TimeBetween(g.now.AddDate(0, -6, 0), g.now)
		ratings := make([]int, g.fake.IntBetween(0, 40))
		sum := 0
		for i := range ratings {
			ratings[i] = g.fake.IntBetween(1, 5)
			sum += ratings[i]
		}
		var avg float64
		if len(ratings) > 0 {
			avg = float64(sum) / float64(len(ratings))
		}

		cuisine := g.fake.RandomStringElement(cuisines)
		cookingTime := g.fake.IntBetween(5, 120)
		out = append(out, recommend.Dish{
			ID:            primitive.NewObjectID(),
			Name:          dishName(g.fake, cuisine),
			Description:   g.fake.Lorem().Sentence(12),
			ImageURL:      g.fake.Internet().URL(),
			AverageRating: avg,
			Ratings:       ratings,
			Ingredients:   g.ingredients(),
			CookingTime:   &cookingTime,
			Category:      g.fake.RandomStringElement(categories),
			CuisineType:   cuisine,
			Difficulty:    g.fake.RandomStringElement(difficulties),
			Tags:          g.pick(tags, 0, 3),
			LikeCount:     int64(g.fake.IntBetween(0, 500)),
			CookCount:     int64(g.fake.IntBetween(0, 200)),
			ViewCount:     int64(g.fake.IntBetween(0, 5000)),
			IsActive:      true,
			CreatedAt:     &created,
		})
	}
	return out
}

func (g *generator) ingredients() []recommend.Ingredient {
	names := g.pick(ingredients, 3, 8)
	out := make([]recommend.Ingredient, 0, len(names))
	for _, name := range names {
		out = append(out, recommend.Ingredient{
			Name:     name,
			Quantity: g.fake.Numerify("###"),
			Unit:     g.fake.RandomStringElement(units),
		})
	}
	return out
}

// user is one generated user with activity and preferences.
type user struct {
	activity    *recommend.UserActivity
	preferences *recommend.UserPreferences
}

// users returns n users whose activity references dishes.
func (g *generator) users(n int, dishes []recommend.Dish) []user {
	ids := make([]string, len(dishes))
	byID := make(map[string]*recommend.Dish, len(dishes))
	for i := range dishes {
		ids[i] = dishes[i].IDHex()
		byID[ids[i]] = &dishes[i]
	}

	out := make([]user, 0, n)
	for range n {
		id := primitive.NewObjectID()
		viewed := g.pick(ids, 0, 30)
		history := make([]recommend.HistoryEntry, 0, len(viewed))
		for _, dishID := range viewed {
			history = append(history, recommend.HistoryEntry{
				Type:  recommend.HistoryEntryDish,
				ID:    dishID,
				Name:  byID[dishID].Name,
				Image: byID[dishID].ImageURL,
				TS:    g.fake.Time().TimeBetween(g.now.AddDate(0, -1, 0), g.now),
			})
		}

		difficulty := recommend.DifficultyAll
		if g.fake.Bool() {
			difficulty = g.fake.RandomStringElement(difficulties)
		}

		out = append(out, user{
			activity: &recommend.UserActivity{
				UserID:         id,
				FavoriteDishes: g.pick(viewed, 0, 8),
				CookedDishes:   g.pick(viewed, 0, 5),
				ViewedDishes:   viewed,
				History:        history,
				UpdatedAt:      g.now,
			},
			preferences: &recommend.UserPreferences{
				UserID:               id,
				CuisinePreferences:   g.pick(cuisines, 0, 3),
				DifficultyPreference: difficulty,
				DietaryRestrictions:  g.pick([]string{"vegan", "gluten", "dairy", "nuts"}, 0, 1),
			},
		})
	}
	return out
}

// pick returns between lo and hi distinct elements of from.
func (g *generator) pick(from []string, lo, hi int) []string {
	hi = min(hi, len(from))
	lo = min(lo, hi)
	n := g.fake.IntBetween(lo, hi)
	if n == 0 {
		return nil
	}
	perm := make([]string, len(from))
	copy(perm, from)
	for i := len(perm) - 1; i > 0; i-- {
		j := g.fake.IntBetween(0, i)
		perm[i], perm[j] = perm[j], perm[i]
	}
	return perm[:n]
}

func dishName(f faker.Faker, cuisine string) string {
	adjective := f.RandomStringElement([]string{"Smoky", "Crispy", "Creamy", "Zesty", "Rustic", "Golden", "Hearty"})
	base := f.RandomStringElement(ingredients)
	style := f.RandomStringElement([]string{"Stew", "Bowl", "Bake", "Skillet", "Curry", "Tart", "Salad"})
	return strings.Join([]string{adjective, strings.ToUpper(cuisine[:1]) + cuisine[1:], strings.ToUpper(base[:1]) + base[1:], style}, " ")
}
