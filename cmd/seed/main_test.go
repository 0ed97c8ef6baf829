// Cookrank - Dish Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookrank

package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/cookrank/internal/recommend"
)

var seedNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

type recordingWriter struct {
	dishes      []recommend.Dish
	activity    []*recommend.UserActivity
	preferences []*recommend.UserPreferences
	failOn      string
}

func (w *recordingWriter) InsertDishes(_ context.Context, dishes []recommend.Dish) (int, error) {
	if w.failOn == "dishes" {
		return 0, errors.New("insert failed")
	}
	w.dishes = append(w.dishes, dishes...)
	return len(dishes), nil
}

func (w *recordingWriter) UpsertActivity(_ context.Context, a *recommend.UserActivity) error {
	if w.failOn == "activity" {
		return errors.New("upsert failed")
	}
	w.activity = append(w.activity, a)
	return nil
}

func (w *recordingWriter) UpsertPreferences(_ context.Context, p *recommend.UserPreferences) error {
	w.preferences = append(w.preferences, p)
	return nil
}

func TestGenerator_Dishes(t *testing.T) {
	t.Parallel()

	dishes := newGenerator(1, seedNow).dishes(50)
	if len(dishes) != 50 {
		t.Fatalf("len = %d, want 50", len(dishes))
	}

	seen := make(map[string]bool)
	for i := range dishes {
		d := &dishes[i]
		if seen[d.IDHex()] {
			t.Errorf("duplicate id %s", d.IDHex())
		}
		seen[d.IDHex()] = true

		if !d.IsActive || d.Name == "" || d.CuisineType == "" {
			t.Errorf("dish %d incomplete: %+v", i, d)
		}
		if d.AverageRating < 0 || d.AverageRating > 5 {
			t.Errorf("dish %d rating %v out of range", i, d.AverageRating)
		}
		if len(d.Ratings) == 0 && d.AverageRating != 0 {
			t.Errorf("dish %d has a rating without votes", i)
		}
		if n := len(d.Ingredients); n < 3 || n > 8 {
			t.Errorf("dish %d has %d ingredients, want 3-8", i, n)
		}
		if d.CreatedAt == nil || d.CreatedAt.After(seedNow) {
			t.Errorf("dish %d created_at %v not before now", i, d.CreatedAt)
		}
	}
}

func TestGenerator_UsersReferenceDishes(t *testing.T) {
	t.Parallel()

	g := newGenerator(2, seedNow)
	dishes := g.dishes(40)
	ids := make(map[string]bool, len(dishes))
	for i := range dishes {
		ids[dishes[i].IDHex()] = true
	}

	for _, u := range g.users(25, dishes) {
		if u.activity.UserID != u.preferences.UserID {
			t.Fatal("activity and preferences belong to different users")
		}
		viewed := make(map[string]bool)
		for _, id := range u.activity.ViewedDishes {
			if !ids[id] {
				t.Errorf("viewed unknown dish %s", id)
			}
			viewed[id] = true
		}
		for _, id := range u.activity.FavoriteDishes {
			if !viewed[id] {
				t.Errorf("favorite %s was never viewed", id)
			}
		}
		if len(u.activity.History) != len(u.activity.ViewedDishes) {
			t.Errorf("history has %d entries for %d views", len(u.activity.History), len(u.activity.ViewedDishes))
		}
		for _, h := range u.activity.History {
			if h.Type != recommend.HistoryEntryDish {
				t.Errorf("history type = %q", h.Type)
			}
		}
	}
}

func TestGenerator_Pick(t *testing.T) {
	t.Parallel()

	g := newGenerator(3, seedNow)
	from := []string{"a", "b", "c", "d"}
	for range 100 {
		got := g.pick(from, 1, 10)
		if len(got) < 1 || len(got) > len(from) {
			t.Fatalf("pick returned %d elements", len(got))
		}
		seen := make(map[string]bool)
		for _, s := range got {
			if seen[s] {
				t.Fatalf("pick returned duplicate %q", s)
			}
			seen[s] = true
		}
	}
	if got := g.pick(nil, 0, 3); got != nil {
		t.Errorf("pick(nil) = %v, want nil", got)
	}
}

func TestSeed(t *testing.T) {
	t.Parallel()

	w := &recordingWriter{}
	if err := seed(context.Background(), w, newGenerator(4, seedNow), 20, 5); err != nil {
		t.Fatalf("seed() error = %v", err)
	}
	if len(w.dishes) != 20 || len(w.activity) != 5 || len(w.preferences) != 5 {
		t.Errorf("wrote %d dishes, %d activity, %d preferences", len(w.dishes), len(w.activity), len(w.preferences))
	}
}

func TestSeed_StopsOnError(t *testing.T) {
	t.Parallel()

	for _, failOn := range []string{"dishes", "activity"} {
		w := &recordingWriter{failOn: failOn}
		if err := seed(context.Background(), w, newGenerator(5, seedNow), 5, 3); err == nil {
			t.Errorf("failOn=%s: seed() succeeded, want error", failOn)
		}
		if len(w.preferences) != 0 {
			t.Errorf("failOn=%s: preferences written after failure", failOn)
		}
	}
}

func TestRunSeed_RejectsEmptyCatalog(t *testing.T) {
	t.Parallel()

	if err := runSeed(context.Background(), &seedOptions{dishes: 0}); err == nil {
		t.Error("runSeed() with zero dishes succeeded")
	}
}
