// Tripmatch - Destination Guide Preference Matching and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/tripmatch/config.yaml",
	"/etc/tripmatch/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			Host:            "0.0.0.0",
			Timeout:         30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			Environment:     "development",
		},
		Database: DatabaseConfig{
			Path:      "/data/tripmatch.duckdb",
			MaxMemory: "1GB",
			Threads:   0,
		},
		Preferences: PreferencesConfig{
			Path:       "/data/preferences",
			DeviceTTL:  180 * 24 * time.Hour,
			GCInterval: 10 * time.Minute,
		},
		Match: MatchConfig{
			GenericPenalty:         0.3,
			FoodInterestThreshold:  66,
			FoodAxisWeight:         2.0,
			PageSize:               15,
			MaxPageSize:            50,
			SearchLimit:            50,
			PromotionLimit:         20,
			TourPromotedSectionCap: 6,
			ExplainReasons:         3,
			TraitBatchSize:         1000,
			TraitConcurrency:       4,
			TraitChunksPerSecond:   50,
			TraitFetchTimeout:      2 * time.Second,
			TraitCacheSize:         10000,
			TraitCacheTTL:          10 * time.Minute,
			CacheCleanupInterval:   time.Minute,
		},
		CircuitBreaker: CircuitBreakerConfig{
			Enabled:      true,
			MaxRequests:  3,
			Interval:     time.Minute,
			Timeout:      30 * time.Second,
			MinRequests:  10,
			FailureRatio: 0.6,
		},
		Security: SecurityConfig{
			TokenTTL:        24 * time.Hour,
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
		},
		Authz: AuthzConfig{
			DefaultRole:  "traveler",
			CacheEnabled: true,
			CacheTTL:     5 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
func Load() (*Config, error) {
	return load(findConfigFile())
}

func load(configPath string) (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Environment variables (highest priority)
	// SERVER_PORT -> server.port, MATCH_PAGE_SIZE -> match.page_size
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

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars come in as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envSections are the config sections environment variables may address.
// Longest prefixes first so CIRCUIT_BREAKER_ wins over a shorter match.
var envSections = []string{
	"circuit_breaker",
	"preferences",
	"database",
	"security",
	"logging",
	"authz",
	"server",
	"match",
}

// envAliases maps conventional names onto config paths.
var envAliases = map[string]string{
	"http_port":   "server.port",
	"http_host":   "server.host",
	"duckdb_path": "database.path",
	"jwt_secret":  "security.jwt_secret",
	"log_level":   "logging.level",
	"log_format":  "logging.format",
	"log_caller":  "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - SERVER_PORT -> server.port
//   - MATCH_TRAIT_FETCH_TIMEOUT -> match.trait_fetch_timeout
//   - CIRCUIT_BREAKER_ENABLED -> circuit_breaker.enabled
//   - JWT_SECRET -> security.jwt_secret
//
// Unknown variables map to "" and are skipped.
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	if mapped, ok := envAliases[key]; ok {
		return mapped
	}
	for _, section := range envSections {
		prefix := section + "_"
		if strings.HasPrefix(key, prefix) && len(key) > len(prefix) {
			return section + "." + strings.TrimPrefix(key, prefix)
		}
	}
	return ""
}

func joinHostPort(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}
