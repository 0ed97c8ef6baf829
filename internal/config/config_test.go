// Cookrank - Dish Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookrank

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig_Valid(t *testing.T) {
	t.Parallel()

	if err := defaultConfig().Validate(); err != nil {
		t.Fatalf("defaultConfig().Validate() = %v", err)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"unknown storage", func(c *Config) { c.Storage.Backend = "sqlite" }, "storage.backend"},
		{"mongo without uri", func(c *Config) { c.Mongo.URI = "" }, "mongo.uri"},
		{"memory storage ignores mongo", func(c *Config) {
			c.Storage.Backend = StorageMemory
			c.Mongo.URI = ""
		}, ""},
		{"unknown cache", func(c *Config) { c.Cache.Backend = "memcached" }, "cache.backend"},
		{"redis without addr", func(c *Config) {
			c.Cache.Backend = CacheRedis
			c.Redis.Addr = ""
		}, "redis.addr"},
		{"unknown broker", func(c *Config) { c.Events.Broker = "kafka" }, "events.broker"},
		{"disabled events skip broker", func(c *Config) {
			c.Events.Enabled = false
			c.Events.Broker = "kafka"
		}, ""},
		{"nats without url", func(c *Config) {
			c.Events.Broker = BrokerNATS
			c.Events.NATSURL = ""
		}, "nats_url"},
		{"embedded nats without url", func(c *Config) {
			c.Events.Broker = BrokerNATS
			c.Events.NATSURL = ""
			c.Events.Embedded = true
		}, ""},
		{"zero refresh interval", func(c *Config) { c.Index.RefreshInterval = 0 }, "index"},
		{"engine weights", func(c *Config) { c.Recommend.Weights.Recency = 0.5 }, "recommend: weights"},
		{"rerank lambda", func(c *Config) {
			c.Rerank.Enabled = true
			c.Rerank.Lambda = 1.5
		}, "rerank.lambda"},
		{"rate limit window", func(c *Config) { c.Security.RateLimitWindow = 0 }, "rate limit"},
		{"log format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_JoinsErrors(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	cfg.Server.Port = -1
	cfg.Logging.Format = "xml"
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "server.port") || !strings.Contains(err.Error(), "logging.format") {
		t.Errorf("Validate() = %v, want both problems reported", err)
	}
}

func TestServerConfig_Addr(t *testing.T) {
	t.Parallel()

	s := ServerConfig{Host: "127.0.0.1", Port: 9000}
	if got := s.Addr(); got != "127.0.0.1:9000" {
		t.Errorf("Addr() = %q", got)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"HTTP_PORT":                  "server.port",
		"MONGO_URI":                  "mongo.uri",
		"CACHE_TTL":                  "recommend.cache.ttl",
		"RECOMMEND_MINE_INGREDIENTS": "recommend.patterns.mine_ingredients",
		"LOG_LEVEL":                  "logging.level",
		"HOME":                       "",
		"PATH":                       "",
	}
	for in, want := range tests {
		if got := envTransformFunc(in); got != want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", in, got, want)
		}
	}
}

// The tests below touch the process environment and do not run in
// parallel.

func TestLoadFile_Layers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
server:
  port: 9090
storage:
  backend: memory
recommend:
  similarity:
    scan_timeout: 2s
  patterns:
    time_zone: Europe/Berlin
logging:
  level: debug
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("RECOMMEND_MINE_INGREDIENTS", "false")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("server.port = %d, want 9090 from file", cfg.Server.Port)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("server.host = %q, want default", cfg.Server.Host)
	}
	if cfg.Storage.Backend != StorageMemory {
		t.Errorf("storage.backend = %q", cfg.Storage.Backend)
	}
	if cfg.Recommend.Similarity.ScanTimeout != 2*time.Second {
		t.Errorf("scan_timeout = %v, want 2s", cfg.Recommend.Similarity.ScanTimeout)
	}
	if cfg.Recommend.Patterns.TimeZone != "Europe/Berlin" {
		t.Errorf("time_zone = %q", cfg.Recommend.Patterns.TimeZone)
	}
	if cfg.Recommend.Weights.RatingQuality != 0.30 {
		t.Errorf("weights should keep defaults, got %+v", cfg.Recommend.Weights)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("logging.level = %q, want env override", cfg.Logging.Level)
	}
	if cfg.Recommend.Patterns.MineIngredients {
		t.Error("mine_ingredients should be disabled by env")
	}
	if len(cfg.Security.CORSOrigins) != 2 || cfg.Security.CORSOrigins[1] != "https://b.example" {
		t.Errorf("cors_origins = %v", cfg.Security.CORSOrigins)
	}
}

func TestLoadFile_InvalidFails(t *testing.T) {
	t.Setenv("HTTP_PORT", "70000")
	if _, err := LoadFile(""); err == nil {
		t.Error("LoadFile() with an out of range port should fail")
	}
}
