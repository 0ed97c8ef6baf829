// Cookrank - Dish Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookrank

// Package main is the entry point for the Cookrank recommendation server.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: defaults, optional config.yaml, then environment (Koanf v2)
//  2. Storage: MongoDB or the in-memory store, behind a circuit breaker
//  3. Result cache: in-process LRU, Redis, or none
//  4. Events: interaction bus on an in-process channel or NATS JetStream
//  5. Neighbor index: precomputed favorites index with Badger snapshots
//  6. Engine and HTTP API
//  7. Supervisor tree: index, events and API layers under suture
//
// # Signal Handling
//
// SIGINT and SIGTERM cancel the root context. The supervisor stops the HTTP
// server gracefully, the index service saves a final snapshot, and the
// storage, cache and event clients are closed on the way out.
//
// # Example Usage
//
//	export MONGO_URI=mongodb://localhost:27017
//	export CACHE_BACKEND=redis
//	export REDIS_ADDR=localhost:6379
//	./cookrank
//
// Local development without external services:
//
//	export STORAGE_BACKEND=memory
//	export CACHE_BACKEND=memory
//	export INDEX_PATH=
//	./cookrank
package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/tomtom215/cookrank/internal/api"
	"github.com/tomtom215/cookrank/internal/config"
	"github.com/tomtom215/cookrank/internal/logging"
	"github.com/tomtom215/cookrank/internal/metrics"
	"github.com/tomtom215/cookrank/internal/recommend"
	"github.com/tomtom215/cookrank/internal/recommend/reranking"
	"github.com/tomtom215/cookrank/internal/store/breaker"
	"github.com/tomtom215/cookrank/internal/supervisor"
	"github.com/tomtom215/cookrank/internal/supervisor/services"
)

//nolint:gocyclo // Main initialization function with sequential setup steps
func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logger := logging.Logger()

	logging.Info().
		Str("storage", cfg.Storage.Backend).
		Str("cache", cfg.Cache.Backend).
		Bool("events", cfg.Events.Enabled).
		Bool("index", cfg.Index.Enabled).
		Msg("Starting Cookrank")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := initStore(ctx, cfg, logger)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize storage")
	}
	defer store.close()

	var repo recommend.Repository = store.repo
	if cfg.Breaker.Enabled {
		repo = breaker.New(store.repo, &cfg.Breaker, logger, func(_ string, _, to gobreaker.State) {
			metrics.SetBreakerState(int(to))
		})
	}

	resultCache, err := initCache(ctx, cfg, logger)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize result cache")
	}
	defer resultCache.close()

	tree := supervisor.NewTree(logging.NewSlogLogger("supervisor"), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	addCachePruner(tree, resultCache)

	opts := []recommend.Option{
		recommend.WithHooks(metrics.EngineHooks(cfg.Cache.Backend)),
	}
	if resultCache.cache != nil {
		opts = append(opts, recommend.WithResultCache(resultCache.cache))
	}

	index, err := initIndex(cfg, repo, tree, logger)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize neighbor index")
	}
	defer index.close()
	if index.index != nil {
		opts = append(opts, recommend.WithNeighborIndex(index.index))
	}

	bus, err := initEvents(ctx, cfg, index.index, tree, logger)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize events")
	}
	defer bus.close()
	if bus.publisher != nil {
		opts = append(opts, recommend.WithInteractionSink(bus.publisher))
	}

	engine, err := recommend.NewEngine(&cfg.Recommend, repo, logger, opts...)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create recommendation engine")
	}
	if cfg.Rerank.Enabled {
		engine.RegisterReranker(reranking.NewMMR(cfg.Rerank.Lambda, reranking.DefaultWindow))
		logging.Info().Float64("lambda", cfg.Rerank.Lambda).Msg("MMR reranker registered")
	}

	checks := make([]api.Check, 0, len(store.checks)+len(resultCache.checks))
	checks = append(checks, store.checks...)
	checks = append(checks, resultCache.checks...)
	handler := api.NewHandler(engine, logger, checks...)
	router := api.NewRouter(handler, api.NewChiMiddleware(api.ChiMiddlewareConfigFromSecurity(&cfg.Security)))

	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (DISABLE_RATE_LIMIT=true)")
	}

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}
	tree.AddAPIService(services.NewHTTPService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	if err := tree.Serve(ctx); err != nil && ctx.Err() == nil {
		logging.Error().Err(err).Msg("Supervisor tree stopped unexpectedly")
	}
	logging.Info().Msg("Shutting down")
}
