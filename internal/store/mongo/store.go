// Cookrank - Dish Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookrank

package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/tomtom215/cookrank/internal/config"
)

// Store is a MongoDB backed repository.
type Store struct {
	client      *mongo.Client
	dishes      *mongo.Collection
	activity    *mongo.Collection
	preferences *mongo.Collection
	timeout     time.Duration
	logger      zerolog.Logger
	ownsClient  bool
}

// New connects to MongoDB, verifies the connection and ensures indexes.
func New(ctx context.Context, cfg *config.MongoConfig, logger zerolog.Logger) (*Store, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetServerSelectionTimeout(cfg.Timeout).
		SetAppName("cookrank")

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	s := NewWithClient(client, cfg, logger)
	s.ownsClient = true

	if err := s.Ping(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	if err := s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	s.logger.Info().
		Str("database", cfg.Database).
		Msg("Connected to MongoDB")
	return s, nil
}

// NewWithClient wraps an existing client. The caller keeps ownership of it.
func NewWithClient(client *mongo.Client, cfg *config.MongoConfig, logger zerolog.Logger) *Store {
	db := client.Database(cfg.Database)
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Store{
		client:      client,
		dishes:      db.Collection(cfg.DishesCollection),
		activity:    db.Collection(cfg.ActivityCollection),
		preferences: db.Collection(cfg.PreferencesCollection),
		timeout:     timeout,
		logger:      logger.With().Str("component", "mongo").Logger(),
	}
}

// EnsureIndexes creates the indexes the query paths rely on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	dishIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "is_active", Value: 1}, {Key: "average_rating", Value: -1}, {Key: "like_count", Value: -1}}},
		{Keys: bson.D{{Key: "is_active", Value: 1}, {Key: "average_rating", Value: -1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "cuisine_type", Value: 1}}},
		{Keys: bson.D{{Key: "tags", Value: 1}}},
	}
	if _, err := s.dishes.Indexes().CreateMany(ctx, dishIndexes); err != nil {
		return fmt.Errorf("failed to create dish indexes: %w", err)
	}

	unique := mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := s.activity.Indexes().CreateOne(ctx, unique); err != nil {
		return fmt.Errorf("failed to create activity index: %w", err)
	}
	if _, err := s.preferences.Indexes().CreateOne(ctx, unique); err != nil {
		return fmt.Errorf("failed to create preferences index: %w", err)
	}
	return nil
}

// Ping verifies the primary is reachable.
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := s.opContext(ctx)
	defer cancel()
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("mongo ping failed: %w", err)
	}
	return nil
}

// Close disconnects the client when the store created it.
func (s *Store) Close(ctx context.Context) error {
	if !s.ownsClient {
		return nil
	}
	return s.client.Disconnect(ctx)
}

// Client exposes the underlying client for tooling such as the seed command.
func (s *Store) Client() *mongo.Client {
	return s.client
}

// opContext bounds a single round trip. Scans use the caller's deadline.
func (s *Store) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}
