// Cookrank - Dish Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookrank

// Package memory provides an in-process recommend.Repository used for local
// development, the seed tool's dry runs, and tests.
package memory

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tomtom215/cookrank/internal/recommend"
)

// Store is a mutex-guarded in-memory repository. Returned documents are
// copies, so callers cannot mutate stored state.
type Store struct {
	mu          sync.RWMutex
	dishes      map[primitive.ObjectID]*recommend.Dish
	activities  map[primitive.ObjectID]*recommend.UserActivity
	preferences map[primitive.ObjectID]*recommend.UserPreferences
}

// New creates an empty store.
func New() *Store {
	return &Store{
		dishes:      make(map[primitive.ObjectID]*recommend.Dish),
		activities:  make(map[primitive.ObjectID]*recommend.UserActivity),
		preferences: make(map[primitive.ObjectID]*recommend.UserPreferences),
	}
}

// PutDish inserts or replaces a dish.
func (s *Store) PutDish(d *recommend.Dish) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := cloneDish(d)
	s.dishes[d.ID] = &c
}

// PutActivity inserts or replaces a user activity.
func (s *Store) PutActivity(a *recommend.UserActivity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := cloneActivity(a)
	s.activities[a.UserID] = &c
}

// PutPreferences inserts or replaces user preferences.
func (s *Store) PutPreferences(p *recommend.UserPreferences) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *p
	c.CuisinePreferences = append([]string(nil), p.CuisinePreferences...)
	c.DietaryRestrictions = append([]string(nil), p.DietaryRestrictions...)
	s.preferences[p.UserID] = &c
}

// FindDishes implements recommend.Repository.
func (s *Store) FindDishes(ctx context.Context, filter recommend.DishFilter) ([]recommend.Dish, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	out := make([]recommend.Dish, 0, len(s.dishes))
	for _, d := range s.dishes {
		if recommend.MatchesFilter(d, &filter) {
			out = append(out, cloneDish(d))
		}
	}
	s.mu.RUnlock()

	sortFields := filter.Sort
	if len(sortFields) == 0 {
		sortFields = []recommend.SortField{{Field: "_id"}}
	}
	recommend.SortDishes(out, sortFields)

	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return []recommend.Dish{}, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// CountDishes implements recommend.Repository.
func (s *Store) CountDishes(ctx context.Context, filter recommend.DishFilter) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, d := range s.dishes {
		if recommend.MatchesFilter(d, &filter) {
			n++
		}
	}
	return n, nil
}

// FindDish implements recommend.Repository.
func (s *Store) FindDish(_ context.Context, id primitive.ObjectID) (*recommend.Dish, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.dishes[id]
	if !ok {
		return nil, recommend.ErrNotFound
	}
	c := cloneDish(d)
	return &c, nil
}

// FindDishesByIDs implements recommend.Repository.
func (s *Store) FindDishesByIDs(_ context.Context, ids []primitive.ObjectID) ([]recommend.Dish, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]recommend.Dish, 0, len(ids))
	for _, id := range ids {
		if d, ok := s.dishes[id]; ok {
			out = append(out, cloneDish(d))
		}
	}
	return out, nil
}

// FindUserActivity implements recommend.Repository.
func (s *Store) FindUserActivity(_ context.Context, userID primitive.ObjectID) (*recommend.UserActivity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.activities[userID]
	if !ok {
		return nil, recommend.ErrNotFound
	}
	c := cloneActivity(a)
	return &c, nil
}

// FindUserPreferences implements recommend.Repository.
func (s *Store) FindUserPreferences(_ context.Context, userID primitive.ObjectID) (*recommend.UserPreferences, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.preferences[userID]
	if !ok {
		return nil, recommend.ErrNotFound
	}
	c := *p
	return &c, nil
}

// FindActivities implements recommend.Repository.
func (s *Store) FindActivities(_ context.Context, userIDs []primitive.ObjectID) (map[primitive.ObjectID]*recommend.UserActivity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[primitive.ObjectID]*recommend.UserActivity, len(userIDs))
	for _, id := range userIDs {
		if a, ok := s.activities[id]; ok {
			c := cloneActivity(a)
			out[id] = &c
		}
	}
	return out, nil
}

// ScanFavorites implements recommend.Repository.
func (s *Store) ScanFavorites(ctx context.Context, exclude primitive.ObjectID, fn func(recommend.FavoritesRecord) error) error {
	s.mu.RLock()
	records := make([]recommend.FavoritesRecord, 0, len(s.activities))
	for id, a := range s.activities {
		if id == exclude || len(a.FavoriteDishes) == 0 {
			continue
		}
		records = append(records, recommend.FavoritesRecord{
			UserID:    id,
			Favorites: append([]string(nil), a.FavoriteDishes...),
		})
	}
	s.mu.RUnlock()

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	return nil
}

// ApplyInteraction implements recommend.Repository. It upserts the
// activity, keeps sets duplicate free, pushes log entries to the front and
// trims the log to w.LogSize.
func (s *Store) ApplyInteraction(_ context.Context, w recommend.InteractionWrite) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.activities[w.UserID]
	if !ok {
		a = &recommend.UserActivity{UserID: w.UserID}
		s.activities[w.UserID] = a
	}
	dishID := w.DishID.Hex()
	switch w.Type.ActivityField() {
	case "viewed_dishes":
		a.ViewedDishes = addToSet(a.ViewedDishes, dishID)
	case "favorite_dishes":
		a.FavoriteDishes = addToSet(a.FavoriteDishes, dishID)
	case "cooked_dishes":
		a.CookedDishes = addToSet(a.CookedDishes, dishID)
	}
	if w.Entry != nil {
		a.History = append([]recommend.HistoryEntry{*w.Entry}, a.History...)
		if w.LogSize > 0 && len(a.History) > w.LogSize {
			a.History = a.History[:w.LogSize]
		}
	}
	a.UpdatedAt = w.At

	if d, ok := s.dishes[w.DishID]; ok {
		switch w.Type.CounterField() {
		case "view_count":
			d.ViewCount++
		case "like_count":
			d.LikeCount++
		case "cook_count":
			d.CookCount++
		}
	}
	return nil
}

func addToSet(set []string, id string) []string {
	for _, v := range set {
		if v == id {
			return set
		}
	}
	return append(set, id)
}

func cloneDish(d *recommend.Dish) recommend.Dish {
	c := *d
	c.Ratings = append([]int(nil), d.Ratings...)
	c.Ingredients = append([]recommend.Ingredient(nil), d.Ingredients...)
	c.Tags = append([]string(nil), d.Tags...)
	if d.CreatedAt != nil {
		t := *d.CreatedAt
		c.CreatedAt = &t
	}
	if d.CookingTime != nil {
		m := *d.CookingTime
		c.CookingTime = &m
	}
	return c
}

func cloneActivity(a *recommend.UserActivity) recommend.UserActivity {
	c := *a
	c.FavoriteDishes = append([]string(nil), a.FavoriteDishes...)
	c.CookedDishes = append([]string(nil), a.CookedDishes...)
	c.ViewedDishes = append([]string(nil), a.ViewedDishes...)
	c.History = append([]recommend.HistoryEntry(nil), a.History...)
	return c
}

var _ recommend.Repository = (*Store)(nil)
