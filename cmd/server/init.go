// Cookrank - Dish Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookrank

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cookrank/internal/api"
	"github.com/tomtom215/cookrank/internal/cache"
	"github.com/tomtom215/cookrank/internal/config"
	"github.com/tomtom215/cookrank/internal/events"
	"github.com/tomtom215/cookrank/internal/logging"
	"github.com/tomtom215/cookrank/internal/recommend"
	"github.com/tomtom215/cookrank/internal/store/badgerindex"
	"github.com/tomtom215/cookrank/internal/store/memory"
	"github.com/tomtom215/cookrank/internal/store/mongo"
	"github.com/tomtom215/cookrank/internal/supervisor"
	"github.com/tomtom215/cookrank/internal/supervisor/services"
)

// closeTimeout bounds disconnects during shutdown.
const closeTimeout = 10 * time.Second

// storeComponents is the configured repository and its readiness checks.
type storeComponents struct {
	repo   recommend.Repository
	checks []api.Check
	close  func()
}

//nolint:gocritic // logger passed by value is acceptable for zerolog
func initStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*storeComponents, error) {
	switch cfg.Storage.Backend {
	case config.StorageMemory:
		logging.Warn().Msg("Using the in-memory store; data is lost on restart")
		return &storeComponents{repo: memory.New(), close: func() {}}, nil

	case config.StorageMongo:
		connectCtx, cancel := context.WithTimeout(ctx, cfg.Mongo.Timeout)
		defer cancel()
		store, err := mongo.New(connectCtx, &cfg.Mongo, logger)
		if err != nil {
			return nil, err
		}
		return &storeComponents{
			repo:   store,
			checks: []api.Check{{Name: "mongo", Ping: store.Ping}},
			close: func() {
				closeCtx, cancel := context.WithTimeout(context.Background(), closeTimeout)
				defer cancel()
				if err := store.Close(closeCtx); err != nil {
					logging.Error().Err(err).Msg("Error closing MongoDB client")
				}
			},
		}, nil

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// cacheComponents is the configured result cache, nil when disabled.
type cacheComponents struct {
	cache  recommend.ResultCache
	pruner *cache.Memory
	checks []api.Check
	close  func()
}

//nolint:gocritic // logger passed by value is acceptable for zerolog
func initCache(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*cacheComponents, error) {
	if !cfg.Recommend.Cache.Enabled {
		logging.Info().Msg("Result cache disabled")
		return &cacheComponents{close: func() {}}, nil
	}

	switch cfg.Cache.Backend {
	case config.CacheNone:
		logging.Info().Msg("Result cache disabled (CACHE_BACKEND=none)")
		return &cacheComponents{close: func() {}}, nil

	case config.CacheMemory:
		mem := cache.NewMemory(cfg.Cache.MaxEntries)
		logging.Info().Int("max_entries", cfg.Cache.MaxEntries).Msg("In-process result cache enabled")
		return &cacheComponents{cache: mem, pruner: mem, close: func() {}}, nil

	case config.CacheRedis:
		rc, err := cache.NewRedis(ctx, cache.RedisOptions{
			Addr:      cfg.Redis.Addr,
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			KeyPrefix: cfg.Redis.KeyPrefix,
		}, logger)
		if err != nil {
			return nil, err
		}
		return &cacheComponents{
			cache:  rc,
			checks: []api.Check{{Name: "redis", Ping: rc.Ping}},
			close: func() {
				if err := rc.Close(); err != nil {
					logging.Error().Err(err).Msg("Error closing Redis client")
				}
			},
		}, nil

	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
}

// indexComponents is the neighbor index and its snapshot store. Both are nil
// when the index is disabled, leaving the engine on repository scans.
type indexComponents struct {
	index *recommend.NeighborIndex
	close func()
}

//nolint:gocritic // logger passed by value is acceptable for zerolog
func initIndex(cfg *config.Config, repo recommend.Repository, tree *supervisor.Tree, logger zerolog.Logger) (*indexComponents, error) {
	if !cfg.Index.Enabled {
		logging.Info().Msg("Neighbor index disabled, similarity uses repository scans")
		return &indexComponents{close: func() {}}, nil
	}

	index := recommend.NewNeighborIndex(cfg.Recommend.Similarity)
	out := &indexComponents{index: index, close: func() {}}

	var snapshots recommend.IndexStore
	if cfg.Index.Path != "" {
		store, err := badgerindex.Open(cfg.Index.Path, logger)
		if err != nil {
			return nil, err
		}
		snapshots = store
		out.close = func() {
			if err := store.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing index snapshot store")
			}
		}
	}

	tree.AddIndexService(services.NewIndexService(index, repo, snapshots, services.IndexServiceConfig{
		RefreshInterval: cfg.Index.RefreshInterval,
		RebuildInterval: cfg.Index.RebuildInterval,
		MinRebuildGap:   cfg.Index.MinRebuildGap,
	}, logger))
	logging.Info().
		Str("path", cfg.Index.Path).
		Dur("refresh_interval", cfg.Index.RefreshInterval).
		Msg("Neighbor index service added")
	return out, nil
}

// eventComponents is the interaction bus. publisher is nil when events are
// disabled.
type eventComponents struct {
	publisher *events.Publisher
	close     func()
}

//nolint:gocritic // logger passed by value is acceptable for zerolog
func initEvents(ctx context.Context, cfg *config.Config, index *recommend.NeighborIndex, tree *supervisor.Tree, logger zerolog.Logger) (*eventComponents, error) {
	if !cfg.Events.Enabled {
		logging.Info().Msg("Interaction events disabled")
		return &eventComponents{close: func() {}}, nil
	}

	bus, err := events.Open(ctx, &cfg.Events, logger)
	if err != nil {
		return nil, err
	}
	out := &eventComponents{
		publisher: events.NewPublisher(bus.Publisher, bus.Topic()),
		close: func() {
			if err := bus.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing event bus")
			}
		},
	}

	if index != nil {
		tree.AddEventService(events.NewIndexConsumer(bus.Subscriber, bus.Topic(), index, logger))
		logging.Info().Str("topic", bus.Topic()).Msg("Index consumer added to supervisor tree")
	}
	return out, nil
}

// addCachePruner runs expiry sweeps for the in-process cache.
func addCachePruner(tree *supervisor.Tree, c *cacheComponents) {
	if c.pruner == nil {
		return
	}
	tree.AddIndexService(services.NewCachePruneService(c.pruner, time.Minute))
}
