// Cookrank - Dish Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookrank

package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tomtom215/cookrank/internal/recommend"
)

// InsertDishes bulk inserts dishes, ignoring duplicates.
func (s *Store) InsertDishes(ctx context.Context, dishes []recommend.Dish) (int, error) {
	if len(dishes) == 0 {
		return 0, nil
	}
	docs := make([]any, len(dishes))
	for i := range dishes {
		docs[i] = dishes[i]
	}
	res, err := s.dishes.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return 0, fmt.Errorf("failed to insert dishes: %w", err)
	}
	if res == nil {
		return 0, nil
	}
	return len(res.InsertedIDs), nil
}

// UpsertActivity replaces a user's activity document.
func (s *Store) UpsertActivity(ctx context.Context, a *recommend.UserActivity) error {
	_, err := s.activity.ReplaceOne(ctx, bson.M{"user_id": a.UserID}, a, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert activity: %w", err)
	}
	return nil
}

// UpsertPreferences replaces a user's preferences document.
func (s *Store) UpsertPreferences(ctx context.Context, p *recommend.UserPreferences) error {
	_, err := s.preferences.ReplaceOne(ctx, bson.M{"user_id": p.UserID}, p, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert preferences: %w", err)
	}
	return nil
}

// Drop removes all three collections. Used by the seed command's --reset.
func (s *Store) Drop(ctx context.Context) error {
	for _, c := range []*mongo.Collection{s.dishes, s.activity, s.preferences} {
		if err := c.Drop(ctx); err != nil {
			return fmt.Errorf("failed to drop %s: %w", c.Name(), err)
		}
	}
	return nil
}
