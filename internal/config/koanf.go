// Cookrank - Dish Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cookrank

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/cookrank/config.yaml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

// Load builds the configuration from defaults, the config file if one
// exists, and environment variables, in increasing precedence.
func Load() (*Config, error) {
	return LoadFile(findConfigFile())
}

// LoadFile is Load with an explicit config file. An empty path skips the
// file layer.
func LoadFile(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// sliceConfigPaths are read from env as comma-separated lists.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		raw, ok := k.Get(path).(string)
		if !ok || raw == "" {
			continue
		}
		parts := strings.Split(raw, ",")
		values := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				values = append(values, p)
			}
		}
		if err := k.Set(path, values); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variables to config keys. Variables not
// listed are ignored.
var envMappings = map[string]string{
	"http_host":          "server.host",
	"http_port":          "server.port",
	"http_read_timeout":  "server.read_timeout",
	"http_write_timeout": "server.write_timeout",
	"shutdown_timeout":   "server.shutdown_timeout",

	"storage_backend":  "storage.backend",
	"mongo_uri":        "mongo.uri",
	"mongo_database":   "mongo.database",
	"mongo_timeout":    "mongo.timeout",
	"breaker_enabled":  "breaker.enabled",
	"breaker_timeout":  "breaker.timeout",
	"breaker_failures": "breaker.consecutive_failures",

	"cache_backend":     "cache.backend",
	"cache_max_entries": "cache.max_entries",
	"cache_ttl":         "recommend.cache.ttl",
	"cache_enabled":     "recommend.cache.enabled",
	"redis_addr":        "redis.addr",
	"redis_password":    "redis.password",
	"redis_db":          "redis.db",

	"events_enabled": "events.enabled",
	"events_broker":  "events.broker",
	"events_topic":   "events.topic",
	"events_stream":  "events.stream",
	"nats_url":       "events.nats_url",
	"nats_embedded":  "events.embedded",
	"nats_port":      "events.embedded_port",
	"nats_store_dir": "events.store_dir",

	"index_enabled":          "index.enabled",
	"index_path":             "index.path",
	"index_refresh_interval": "index.refresh_interval",
	"index_rebuild_interval": "index.rebuild_interval",

	"recommend_mine_ingredients": "recommend.patterns.mine_ingredients",
	"recommend_time_zone":        "recommend.patterns.time_zone",
	"recommend_scan_timeout":     "recommend.similarity.scan_timeout",
	"recommend_default_limit":    "recommend.limits.default_limit",
	"recommend_max_limit":        "recommend.limits.max_limit",

	"rerank_enabled": "rerank.enabled",
	"rerank_lambda":  "rerank.lambda",

	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_requests",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
