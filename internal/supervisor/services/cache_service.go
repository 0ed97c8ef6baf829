// Cookrank - Dish Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookrank

package services

import (
	"context"
	"time"
)

// Pruner drops expired entries and reports how many were removed.
type Pruner interface {
	Prune() int
}

// CachePruneService periodically prunes an in-process cache.
type CachePruneService struct {
	cache    Pruner
	interval time.Duration
}

// NewCachePruneService creates the service. A non-positive interval
// defaults to one minute.
func NewCachePruneService(cache Pruner, interval time.Duration) *CachePruneService {
	if interval <= 0 {
		interval = time.Minute
	}
	return &CachePruneService{cache: cache, interval: interval}
}

// Serve implements suture.Service.
func (s *CachePruneService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.cache.Prune()
		}
	}
}

// String implements fmt.Stringer for suture logs.
func (s *CachePruneService) String() string {
	return "cache-pruner"
}
