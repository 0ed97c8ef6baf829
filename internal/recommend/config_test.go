// Cookrank - Dish Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookrank

package recommend

import (
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig_Valid(t *testing.T) {
	t.Parallel()

	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() = %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"weights do not sum to one", func(c *Config) { c.Weights.Recency = 0.2 }, "sum to 1.0"},
		{"negative weight", func(c *Config) {
			c.Weights.Recency = -0.05
			c.Weights.RatingQuality = 0.40
		}, "non-negative"},
		{"threshold out of range", func(c *Config) { c.Similarity.Threshold = 1 }, "similarity.threshold"},
		{"scoring neighbors above max", func(c *Config) { c.Similarity.ScoringNeighbors = 60 }, "scoring_neighbors"},
		{"negative scan timeout", func(c *Config) { c.Similarity.ScanTimeout = -time.Second }, "scan_timeout"},
		{"zero trending days", func(c *Config) { c.Trending.Days = 0 }, "trending.days"},
		{"boost below one", func(c *Config) { c.Trending.RecencyBoost = 0.5 }, "recency_boost"},
		{"bad time zone", func(c *Config) { c.Patterns.TimeZone = "Mars/Olympus" }, "time_zone"},
		{"zero divisor", func(c *Config) { c.Diversity.LimitDivisor = 0 }, "limit_divisor"},
		{"max below default", func(c *Config) { c.Limits.MaxLimit = 10 }, "max_limit"},
		{"rating floor above five", func(c *Config) { c.Limits.DefaultMinRating = 6 }, "default_min_rating"},
		{"zero history cap", func(c *Config) { c.Limits.HistoryCap = 0 }, "history_cap"},
		{"cache without ttl", func(c *Config) { c.Cache.TTL = 0 }, "cache.ttl"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %q, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_DisabledCacheSkipsTTL(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Cache.Enabled = false
	cfg.Cache.TTL = 0
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestConfig_ClampLimit(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	tests := []struct {
		limit, def, want int
	}{
		{0, 20, 20},
		{-3, 10, 10},
		{7, 20, 7},
		{500, 20, 100},
	}
	for _, tt := range tests {
		if got := cfg.clampLimit(tt.limit, tt.def); got != tt.want {
			t.Errorf("clampLimit(%d, %d) = %d, want %d", tt.limit, tt.def, got, tt.want)
		}
	}
}

func TestConfig_Clone(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	clone := cfg.Clone()
	clone.Weights.Recency = 0.9
	if cfg.Weights.Recency != 0.05 {
		t.Errorf("mutating clone changed original: %f", cfg.Weights.Recency)
	}
}
