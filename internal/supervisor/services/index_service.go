// Cookrank - Dish Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookrank

package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tomtom215/cookrank/internal/metrics"
	"github.com/tomtom215/cookrank/internal/recommend"
)

// snapshotTimeout bounds the final snapshot save on shutdown.
const snapshotTimeout = 10 * time.Second

// IndexServiceConfig controls the neighbor index maintenance loop.
type IndexServiceConfig struct {
	// RefreshInterval is how often dirty users are reloaded.
	// Default: 30s
	RefreshInterval time.Duration

	// RebuildInterval is how often the full index is rebuilt. Zero disables
	// scheduled rebuilds; TriggerRebuild still works.
	RebuildInterval time.Duration

	// MinRebuildGap is the minimum time between full rebuilds.
	// Default: 1m
	MinRebuildGap time.Duration
}

// IndexService keeps a NeighborIndex warm.
//
// On start it loads the last snapshot from the IndexStore, falling back to
// a full rebuild. It then reloads dirty users every RefreshInterval and
// rebuilds the whole index every RebuildInterval or on TriggerRebuild. Full
// rebuilds are throttled by a token bucket so repeated triggers cannot scan
// the activity collection back to back. The index is saved after every
// change and once more on shutdown.
type IndexService struct {
	index   *recommend.NeighborIndex
	repo    recommend.Repository
	store   recommend.IndexStore
	limiter *rate.Limiter
	config  IndexServiceConfig
	logger  zerolog.Logger
	trigger chan struct{}
}

// NewIndexService creates the service. store may be nil to skip snapshots.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewIndexService(index *recommend.NeighborIndex, repo recommend.Repository, store recommend.IndexStore, cfg IndexServiceConfig, logger zerolog.Logger) *IndexService {
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = 30 * time.Second
	}
	if cfg.MinRebuildGap <= 0 {
		cfg.MinRebuildGap = time.Minute
	}
	return &IndexService{
		index:   index,
		repo:    repo,
		store:   store,
		limiter: rate.NewLimiter(rate.Every(cfg.MinRebuildGap), 1),
		config:  cfg,
		logger:  logger.With().Str("service", "neighbor-index").Logger(),
		trigger: make(chan struct{}, 1),
	}
}

// TriggerRebuild requests a full rebuild. Requests made while one is
// pending are coalesced.
func (s *IndexService) TriggerRebuild() {
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

// Serve implements suture.Service.
func (s *IndexService) Serve(ctx context.Context) error {
	if !s.index.Ready() {
		if err := s.warmStart(ctx); err != nil {
			return err
		}
	}

	refresh := time.NewTicker(s.config.RefreshInterval)
	defer refresh.Stop()

	var rebuildC <-chan time.Time
	if s.config.RebuildInterval > 0 {
		rebuild := time.NewTicker(s.config.RebuildInterval)
		defer rebuild.Stop()
		rebuildC = rebuild.C
	}

	s.logger.Info().
		Int("users", s.index.Size()).
		Dur("refresh_interval", s.config.RefreshInterval).
		Dur("rebuild_interval", s.config.RebuildInterval).
		Msg("Neighbor index service running")

	for {
		select {
		case <-ctx.Done():
			s.saveOnShutdown()
			return ctx.Err()

		case <-refresh.C:
			s.refresh(ctx)

		case <-rebuildC:
			s.throttledRebuild(ctx)

		case <-s.trigger:
			s.throttledRebuild(ctx)
		}
	}
}

// warmStart loads the stored snapshot or, when there is none, scans the
// repository.
func (s *IndexService) warmStart(ctx context.Context) error {
	if s.store != nil {
		snap, err := s.store.LoadSnapshot(ctx)
		switch {
		case err == nil:
			s.index.Load(snap)
			metrics.RecordIndexRefresh(0, s.index.Size())
			s.logger.Info().
				Int("users", s.index.Size()).
				Time("built_at", snap.BuiltAt).
				Msg("Neighbor index loaded from snapshot")
			return nil
		case errors.Is(err, recommend.ErrNotFound):
			s.logger.Info().Msg("No neighbor index snapshot, rebuilding")
		default:
			s.logger.Warn().Err(err).Msg("Failed to load neighbor index snapshot, rebuilding")
		}
	}

	s.limiter.Allow()
	return s.rebuild(ctx)
}

func (s *IndexService) throttledRebuild(ctx context.Context) {
	if !s.limiter.Allow() {
		s.logger.Debug().Msg("Neighbor index rebuild skipped, too soon after the last one")
		return
	}
	if err := s.rebuild(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("Neighbor index rebuild failed, keeping previous index")
	}
}

func (s *IndexService) rebuild(ctx context.Context) error {
	start := time.Now()
	if err := s.index.Rebuild(ctx, s.repo); err != nil {
		return err
	}
	elapsed := time.Since(start)
	metrics.RecordIndexRebuild(elapsed, s.index.Size())
	s.logger.Info().
		Int("users", s.index.Size()).
		Dur("duration", elapsed).
		Msg("Neighbor index rebuilt")
	s.save(ctx)
	return nil
}

func (s *IndexService) refresh(ctx context.Context) {
	n, err := s.index.Refresh(ctx, s.repo)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Neighbor index refresh failed")
		return
	}
	if n == 0 {
		return
	}
	metrics.RecordIndexRefresh(n, s.index.Size())
	s.logger.Debug().Int("refreshed", n).Msg("Neighbor index refreshed")
	s.save(ctx)
}

func (s *IndexService) save(ctx context.Context) {
	if s.store == nil {
		return
	}
	if err := s.store.SaveSnapshot(ctx, s.index.Snapshot()); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to save neighbor index snapshot")
	}
}

func (s *IndexService) saveOnShutdown() {
	if s.store == nil || !s.index.Ready() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
	defer cancel()
	s.save(ctx)
}

// String implements fmt.Stringer for suture logs.
func (s *IndexService) String() string {
	return "neighbor-index"
}
