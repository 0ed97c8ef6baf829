// Cookrank - Dish Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookrank

// Package config loads the server configuration from layered sources:
// built-in defaults, an optional YAML file, then environment variables.
package config

import (
	"net"
	"strconv"
	"time"

	"github.com/tomtom215/cookrank/internal/recommend"
)

// Config is the full server configuration.
type Config struct {
	Server    ServerConfig     `koanf:"server"`
	Storage   StorageConfig    `koanf:"storage"`
	Mongo     MongoConfig      `koanf:"mongo"`
	Breaker   BreakerConfig    `koanf:"breaker"`
	Cache     CacheConfig      `koanf:"cache"`
	Redis     RedisConfig      `koanf:"redis"`
	Events    EventsConfig     `koanf:"events"`
	Index     IndexConfig      `koanf:"index"`
	Recommend recommend.Config `koanf:"recommend"`
	Rerank    RerankConfig     `koanf:"rerank"`
	Security  SecurityConfig   `koanf:"security"`
	Logging   LoggingConfig    `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// Storage backends.
const (
	StorageMongo  = "mongo"
	StorageMemory = "memory"
)

// StorageConfig selects the repository implementation.
type StorageConfig struct {
	// Backend is mongo or memory. The memory backend starts empty and is
	// meant for local development.
	Backend string `koanf:"backend"`
}

// MongoConfig holds document store settings.
type MongoConfig struct {
	URI                   string        `koanf:"uri"`
	Database              string        `koanf:"database"`
	DishesCollection      string        `koanf:"dishes_collection"`
	ActivityCollection    string        `koanf:"activity_collection"`
	PreferencesCollection string        `koanf:"preferences_collection"`
	Timeout               time.Duration `koanf:"timeout"`
}

// BreakerConfig tunes the circuit breaker in front of the repository.
type BreakerConfig struct {
	Enabled bool `koanf:"enabled"`

	// MaxRequests is the number of trial requests allowed while half-open.
	MaxRequests uint32 `koanf:"max_requests"`

	// Interval clears failure counts while closed. Zero never clears.
	Interval time.Duration `koanf:"interval"`

	// Timeout is how long the breaker stays open.
	Timeout time.Duration `koanf:"timeout"`

	// ConsecutiveFailures trips the breaker.
	ConsecutiveFailures uint32 `koanf:"consecutive_failures"`
}

// Cache backends.
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

// CacheConfig selects where non-personalized results are cached. Entry
// lifetime is recommend.cache.ttl.
type CacheConfig struct {
	Backend    string `koanf:"backend"`
	MaxEntries int    `koanf:"max_entries"`
}

// RedisConfig holds Redis settings for the redis cache backend.
type RedisConfig struct {
	Addr      string `koanf:"addr"`
	Password  string `koanf:"password"`
	DB        int    `koanf:"db"`
	KeyPrefix string `koanf:"key_prefix"`
}

// Event brokers.
const (
	BrokerMemory = "memory"
	BrokerNATS   = "nats"
)

// EventsConfig holds interaction event settings.
type EventsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Broker  string `koanf:"broker"`
	Topic   string `koanf:"topic"`

	// Stream is the JetStream stream bound to Topic on the nats broker.
	Stream string `koanf:"stream"`

	NATSURL      string        `koanf:"nats_url"`
	Embedded     bool          `koanf:"embedded"`
	EmbeddedPort int           `koanf:"embedded_port"`
	StoreDir     string        `koanf:"store_dir"`
	DurableName  string        `koanf:"durable_name"`
	QueueGroup   string        `koanf:"queue_group"`
	CloseTimeout time.Duration `koanf:"close_timeout"`
}

// IndexConfig controls the neighbor index.
type IndexConfig struct {
	Enabled bool `koanf:"enabled"`

	// Path is the badger directory for snapshots. Empty keeps the index
	// in memory only.
	Path string `koanf:"path"`

	// RefreshInterval is how often dirty users are reloaded.
	RefreshInterval time.Duration `koanf:"refresh_interval"`

	// RebuildInterval is how often the full index is rebuilt.
	RebuildInterval time.Duration `koanf:"rebuild_interval"`

	// MinRebuildGap rate limits full rebuilds.
	MinRebuildGap time.Duration `koanf:"min_rebuild_gap"`
}

// RerankConfig controls the optional MMR reranker on the personalized path.
type RerankConfig struct {
	Enabled bool `koanf:"enabled"`

	// Lambda trades relevance (1.0) against diversity (0.0).
	Lambda float64 `koanf:"lambda"`
}

// SecurityConfig holds HTTP edge settings.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns the built-in defaults, the lowest configuration
// layer.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Storage: StorageConfig{Backend: StorageMongo},
		Mongo: MongoConfig{
			URI:                   "mongodb://localhost:27017",
			Database:              "cookrank",
			DishesCollection:      "dishes",
			ActivityCollection:    "user_activity",
			PreferencesCollection: "user_preferences",
			Timeout:               10 * time.Second,
		},
		Breaker: BreakerConfig{
			Enabled:             true,
			MaxRequests:         3,
			Interval:            time.Minute,
			Timeout:             30 * time.Second,
			ConsecutiveFailures: 5,
		},
		Cache: CacheConfig{
			Backend:    CacheMemory,
			MaxEntries: 10000,
		},
		Redis: RedisConfig{
			Addr:      "localhost:6379",
			KeyPrefix: "cookrank:",
		},
		Events: EventsConfig{
			Enabled:      true,
			Broker:       BrokerMemory,
			Topic:        "cookrank.interactions",
			Stream:       "COOKRANK",
			NATSURL:      "nats://127.0.0.1:4222",
			Embedded:     false,
			EmbeddedPort: 4222,
			StoreDir:     "/data/nats",
			DurableName:  "cookrank-index",
			QueueGroup:   "cookrank",
			CloseTimeout: 10 * time.Second,
		},
		Index: IndexConfig{
			Enabled:         true,
			Path:            "/data/index",
			RefreshInterval: 30 * time.Second,
			RebuildInterval: 6 * time.Hour,
			MinRebuildGap:   5 * time.Minute,
		},
		Recommend: *recommend.DefaultConfig(),
		Rerank:    RerankConfig{Lambda: 0.7},
		Security: SecurityConfig{
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Addr returns host:port for the HTTP listener.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}
