// Cookrank - Dish Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookrank

package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks every section and returns all problems joined.
func (c *Config) Validate() error {
	var errs []error
	add := func(format string, args ...interface{}) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		add("server.port must be in [1, 65535], got %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 {
		add("server read and write timeouts must be positive")
	}

	switch c.Storage.Backend {
	case StorageMongo:
		if c.Mongo.URI == "" {
			add("mongo.uri is required for the mongo storage backend")
		}
		if c.Mongo.Database == "" {
			add("mongo.database is required for the mongo storage backend")
		}
		if c.Mongo.DishesCollection == "" || c.Mongo.ActivityCollection == "" || c.Mongo.PreferencesCollection == "" {
			add("mongo collection names must not be empty")
		}
		if c.Mongo.Timeout <= 0 {
			add("mongo.timeout must be positive, got %v", c.Mongo.Timeout)
		}
	case StorageMemory:
	default:
		add("storage.backend must be %q or %q, got %q", StorageMongo, StorageMemory, c.Storage.Backend)
	}

	if c.Breaker.Enabled && (c.Breaker.ConsecutiveFailures == 0 || c.Breaker.Timeout <= 0) {
		add("breaker.consecutive_failures and breaker.timeout must be positive when enabled")
	}

	switch c.Cache.Backend {
	case CacheMemory:
		if c.Cache.MaxEntries < 1 {
			add("cache.max_entries must be positive, got %d", c.Cache.MaxEntries)
		}
	case CacheRedis:
		if c.Redis.Addr == "" {
			add("redis.addr is required for the redis cache backend")
		}
	case CacheNone:
	default:
		add("cache.backend must be one of memory, redis, none, got %q", c.Cache.Backend)
	}

	if c.Events.Enabled {
		switch c.Events.Broker {
		case BrokerMemory:
		case BrokerNATS:
			if c.Events.NATSURL == "" && !c.Events.Embedded {
				add("events.nats_url is required unless events.embedded is set")
			}
			if c.Events.DurableName == "" {
				add("events.durable_name is required for the nats broker")
			}
			if c.Events.Stream == "" || strings.ContainsAny(c.Events.Stream, ".*> ") {
				add("events.stream must be a valid JetStream stream name, got %q", c.Events.Stream)
			}
		default:
			add("events.broker must be %q or %q, got %q", BrokerMemory, BrokerNATS, c.Events.Broker)
		}
		if strings.TrimSpace(c.Events.Topic) == "" {
			add("events.topic must not be empty")
		}
	}

	if c.Index.Enabled {
		if c.Index.RefreshInterval <= 0 || c.Index.RebuildInterval <= 0 {
			add("index refresh and rebuild intervals must be positive")
		}
		if c.Index.MinRebuildGap < 0 {
			add("index.min_rebuild_gap must be non-negative")
		}
	}

	if err := c.Recommend.Validate(); err != nil {
		add("recommend: %w", err)
	}

	if c.Rerank.Enabled && (c.Rerank.Lambda < 0 || c.Rerank.Lambda > 1) {
		add("rerank.lambda must be in [0, 1], got %v", c.Rerank.Lambda)
	}

	if !c.Security.RateLimitDisabled && (c.Security.RateLimitReqs < 1 || c.Security.RateLimitWindow <= 0) {
		add("security rate limit requests and window must be positive")
	}

	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		add("logging.format must be json or console, got %q", c.Logging.Format)
	}

	return errors.Join(errs...)
}
