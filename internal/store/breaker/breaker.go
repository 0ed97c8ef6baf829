// Cookrank - Dish Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookrank

// Package breaker wraps a recommend.Repository with a circuit breaker so a
// failing document store fails fast instead of stacking up timeouts.
package breaker

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tomtom215/cookrank/internal/config"
	"github.com/tomtom215/cookrank/internal/recommend"
)

// StateFunc observes breaker state transitions.
type StateFunc func(name string, from, to gobreaker.State)

// Repository is a recommend.Repository guarded by a circuit breaker.
type Repository struct {
	next recommend.Repository
	cb   *gobreaker.CircuitBreaker[any]
}

var _ recommend.Repository = (*Repository)(nil)

// New wraps next. onState may be nil.
func New(next recommend.Repository, cfg *config.BreakerConfig, logger zerolog.Logger, onState StateFunc) *Repository {
	log := logger.With().Str("component", "breaker").Logger()
	threshold := cfg.ConsecutiveFailures
	if threshold == 0 {
		threshold = 5
	}

	settings := gobreaker.Settings{
		Name:        "repository",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: isSuccessful,
		OnStateChange: func(name string, from, to gobreaker.State) {
			ev := log.Info()
			if to == gobreaker.StateOpen {
				ev = log.Warn()
			}
			ev.Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Repository circuit breaker state changed")
			if onState != nil {
				onState(name, from, to)
			}
		},
	}

	return &Repository{
		next: next,
		cb:   gobreaker.NewCircuitBreaker[any](settings),
	}
}

// State returns the current breaker state.
func (r *Repository) State() gobreaker.State {
	return r.cb.State()
}

// isSuccessful keeps caller-side outcomes from tripping the breaker.
func isSuccessful(err error) bool {
	return err == nil ||
		errors.Is(err, recommend.ErrNotFound) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

func execute[T any](r *Repository, fn func() (T, error)) (T, error) {
	res, err := r.cb.Execute(func() (any, error) {
		return fn()
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return res.(T), nil
}

// FindDishes implements recommend.Repository.
func (r *Repository) FindDishes(ctx context.Context, filter recommend.DishFilter) ([]recommend.Dish, error) {
	return execute(r, func() ([]recommend.Dish, error) { return r.next.FindDishes(ctx, filter) })
}

// CountDishes implements recommend.Repository.
func (r *Repository) CountDishes(ctx context.Context, filter recommend.DishFilter) (int64, error) {
	return execute(r, func() (int64, error) { return r.next.CountDishes(ctx, filter) })
}

// FindDish implements recommend.Repository.
func (r *Repository) FindDish(ctx context.Context, id primitive.ObjectID) (*recommend.Dish, error) {
	return execute(r, func() (*recommend.Dish, error) { return r.next.FindDish(ctx, id) })
}

// FindDishesByIDs implements recommend.Repository.
func (r *Repository) FindDishesByIDs(ctx context.Context, ids []primitive.ObjectID) ([]recommend.Dish, error) {
	return execute(r, func() ([]recommend.Dish, error) { return r.next.FindDishesByIDs(ctx, ids) })
}

// FindUserActivity implements recommend.Repository.
func (r *Repository) FindUserActivity(ctx context.Context, userID primitive.ObjectID) (*recommend.UserActivity, error) {
	return execute(r, func() (*recommend.UserActivity, error) { return r.next.FindUserActivity(ctx, userID) })
}

// FindUserPreferences implements recommend.Repository.
func (r *Repository) FindUserPreferences(ctx context.Context, userID primitive.ObjectID) (*recommend.UserPreferences, error) {
	return execute(r, func() (*recommend.UserPreferences, error) { return r.next.FindUserPreferences(ctx, userID) })
}

// FindActivities implements recommend.Repository.
func (r *Repository) FindActivities(ctx context.Context, userIDs []primitive.ObjectID) (map[primitive.ObjectID]*recommend.UserActivity, error) {
	return execute(r, func() (map[primitive.ObjectID]*recommend.UserActivity, error) {
		return r.next.FindActivities(ctx, userIDs)
	})
}

// ScanFavorites implements recommend.Repository.
func (r *Repository) ScanFavorites(ctx context.Context, exclude primitive.ObjectID, fn func(recommend.FavoritesRecord) error) error {
	_, err := execute(r, func() (struct{}, error) {
		return struct{}{}, r.next.ScanFavorites(ctx, exclude, fn)
	})
	return err
}

// ApplyInteraction implements recommend.Repository.
func (r *Repository) ApplyInteraction(ctx context.Context, w recommend.InteractionWrite) error {
	_, err := execute(r, func() (struct{}, error) {
		return struct{}{}, r.next.ApplyInteraction(ctx, w)
	})
	return err
}
