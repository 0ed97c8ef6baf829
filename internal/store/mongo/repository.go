// Cookrank - Dish Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookrank

package mongo

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tomtom215/cookrank/internal/recommend"
)

var _ recommend.Repository = (*Store)(nil)

// FindDishes implements recommend.Repository.
func (s *Store) FindDishes(ctx context.Context, filter recommend.DishFilter) ([]recommend.Dish, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	opts := options.Find().SetSort(buildSort(filter.Sort))
	if filter.Offset > 0 {
		opts.SetSkip(int64(filter.Offset))
	}
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}

	cursor, err := s.dishes.Find(ctx, buildDishFilter(&filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query dishes: %w", err)
	}
	return decodeEach[recommend.Dish](ctx, cursor, &s.logger, "dishes")
}

// CountDishes implements recommend.Repository.
func (s *Store) CountDishes(ctx context.Context, filter recommend.DishFilter) (int64, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	n, err := s.dishes.CountDocuments(ctx, buildDishFilter(&filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count dishes: %w", err)
	}
	return n, nil
}

// FindDish implements recommend.Repository.
func (s *Store) FindDish(ctx context.Context, id primitive.ObjectID) (*recommend.Dish, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	var d recommend.Dish
	if err := s.dishes.FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		return nil, notFound(err, "dish")
	}
	return &d, nil
}

// FindDishesByIDs implements recommend.Repository.
func (s *Store) FindDishesByIDs(ctx context.Context, ids []primitive.ObjectID) ([]recommend.Dish, error) {
	if len(ids) == 0 {
		return []recommend.Dish{}, nil
	}
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	cursor, err := s.dishes.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("failed to load dishes by id: %w", err)
	}
	return decodeEach[recommend.Dish](ctx, cursor, &s.logger, "dishes")
}

// FindUserActivity implements recommend.Repository.
func (s *Store) FindUserActivity(ctx context.Context, userID primitive.ObjectID) (*recommend.UserActivity, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	var a recommend.UserActivity
	if err := s.activity.FindOne(ctx, bson.M{"user_id": userID}).Decode(&a); err != nil {
		return nil, notFound(err, "user activity")
	}
	return &a, nil
}

// FindUserPreferences implements recommend.Repository.
func (s *Store) FindUserPreferences(ctx context.Context, userID primitive.ObjectID) (*recommend.UserPreferences, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	var p recommend.UserPreferences
	if err := s.preferences.FindOne(ctx, bson.M{"user_id": userID}).Decode(&p); err != nil {
		return nil, notFound(err, "user preferences")
	}
	return &p, nil
}

// FindActivities implements recommend.Repository.
func (s *Store) FindActivities(ctx context.Context, userIDs []primitive.ObjectID) (map[primitive.ObjectID]*recommend.UserActivity, error) {
	out := make(map[primitive.ObjectID]*recommend.UserActivity, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	cursor, err := s.activity.Find(ctx, bson.M{"user_id": bson.M{"$in": userIDs}})
	if err != nil {
		return nil, fmt.Errorf("failed to load activities: %w", err)
	}
	activities, err := decodeEach[recommend.UserActivity](ctx, cursor, &s.logger, "user activity")
	if err != nil {
		return nil, err
	}
	for i := range activities {
		out[activities[i].UserID] = &activities[i]
	}
	return out, nil
}

type favoritesRow struct {
	UserID    primitive.ObjectID `bson:"user_id"`
	Favorites []string           `bson:"favorite_dishes"`
}

// ScanFavorites implements recommend.Repository. It streams with a cursor,
// so the caller's context bounds the whole scan.
func (s *Store) ScanFavorites(ctx context.Context, exclude primitive.ObjectID, fn func(recommend.FavoritesRecord) error) error {
	filter := bson.M{"favorite_dishes.0": bson.M{"$exists": true}}
	if !exclude.IsZero() {
		filter["user_id"] = bson.M{"$ne": exclude}
	}
	opts := options.Find().
		SetProjection(bson.M{"_id": 0, "user_id": 1, "favorite_dishes": 1}).
		SetBatchSize(500)

	cursor, err := s.activity.Find(ctx, filter, opts)
	if err != nil {
		return fmt.Errorf("failed to scan favorites: %w", err)
	}
	defer cursor.Close(context.Background())

	for cursor.Next(ctx) {
		var row favoritesRow
		if err := cursor.Decode(&row); err != nil {
			skipDocument(&s.logger, cursor, "favorites", err)
			continue
		}
		if err := fn(recommend.FavoritesRecord{UserID: row.UserID, Favorites: row.Favorites}); err != nil {
			return err
		}
	}
	if err := cursor.Err(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("favorites cursor failed: %w", err)
	}
	return ctx.Err()
}

// ApplyInteraction implements recommend.Repository with an activity upsert
// followed by a dish counter increment.
func (s *Store) ApplyInteraction(ctx context.Context, w recommend.InteractionWrite) error {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	_, err := s.activity.UpdateOne(ctx,
		bson.M{"user_id": w.UserID},
		activityUpdate(&w),
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to update user activity: %w", err)
	}

	if field := w.Type.CounterField(); field != "" {
		if _, err := s.dishes.UpdateOne(ctx, bson.M{"_id": w.DishID}, bson.M{"$inc": bson.M{field: 1}}); err != nil {
			return fmt.Errorf("failed to increment %s: %w", field, err)
		}
	}
	return nil
}

// decodeEach drains cursor into a slice. Documents that fail to decode are
// logged and skipped so one malformed record does not fail the whole read.
func decodeEach[T any](ctx context.Context, cursor *mongo.Cursor, logger *zerolog.Logger, what string) ([]T, error) {
	defer cursor.Close(context.Background())

	out := make([]T, 0, cursor.RemainingBatchLength())
	for cursor.Next(ctx) {
		var v T
		if err := cursor.Decode(&v); err != nil {
			skipDocument(logger, cursor, what, err)
			continue
		}
		out = append(out, v)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("%s cursor failed: %w", what, err)
	}
	return out, nil
}

func skipDocument(logger *zerolog.Logger, cursor *mongo.Cursor, what string, err error) {
	id := cursor.Current.Lookup("_id")
	if id.IsZero() {
		id = cursor.Current.Lookup("user_id")
	}
	logger.Warn().
		Err(err).
		Str("collection", what).
		Str("document_id", id.String()).
		Msg("Skipping undecodable document")
}

func notFound(err error, what string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return recommend.ErrNotFound
	}
	return fmt.Errorf("failed to load %s: %w", what, err)
}
