// Tripmatch - Destination Guide Preference Matching and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package config

import (
	"fmt"
	"strings"
)

// minJWTSecretLength is the shortest accepted HS256 secret.
const minJWTSecretLength = 32

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateDatabase(); err != nil {
		return err
	}
	if err := c.validatePreferences(); err != nil {
		return err
	}
	if err := c.validateMatch(); err != nil {
		return err
	}
	if err := c.validateCircuitBreaker(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	if err := c.validateAuthz(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("SERVER_TIMEOUT must be positive, got %v", c.Server.Timeout)
	}
	switch c.Server.Environment {
	case "development", "staging", "production":
	default:
		return fmt.Errorf("SERVER_ENVIRONMENT must be development, staging or production, got %q", c.Server.Environment)
	}
	return nil
}

func (c *Config) validateDatabase() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("DATABASE_THREADS must be non-negative, got %d", c.Database.Threads)
	}
	return nil
}

func (c *Config) validatePreferences() error {
	if c.Preferences.DeviceTTL < 0 {
		return fmt.Errorf("PREFERENCES_DEVICE_TTL must be non-negative, got %v", c.Preferences.DeviceTTL)
	}
	if c.Preferences.GCInterval <= 0 {
		return fmt.Errorf("PREFERENCES_GC_INTERVAL must be positive, got %v", c.Preferences.GCInterval)
	}
	return nil
}

func (c *Config) validateMatch() error {
	m := c.Match
	if m.GenericPenalty <= 0 || m.GenericPenalty >= 1 {
		return fmt.Errorf("MATCH_GENERIC_PENALTY must be in (0, 1), got %v", m.GenericPenalty)
	}
	if m.PageSize <= 0 || m.MaxPageSize < m.PageSize {
		return fmt.Errorf("MATCH_PAGE_SIZE must be positive and at most MATCH_MAX_PAGE_SIZE, got %d/%d", m.PageSize, m.MaxPageSize)
	}
	if m.TraitBatchSize <= 0 {
		return fmt.Errorf("MATCH_TRAIT_BATCH_SIZE must be positive, got %d", m.TraitBatchSize)
	}
	if m.TraitFetchTimeout <= 0 {
		return fmt.Errorf("MATCH_TRAIT_FETCH_TIMEOUT must be positive, got %v", m.TraitFetchTimeout)
	}
	if m.CacheCleanupInterval <= 0 {
		return fmt.Errorf("MATCH_CACHE_CLEANUP_INTERVAL must be positive, got %v", m.CacheCleanupInterval)
	}
	return nil
}

func (c *Config) validateCircuitBreaker() error {
	if !c.CircuitBreaker.Enabled {
		return nil
	}
	cb := c.CircuitBreaker
	if cb.MaxRequests == 0 {
		return fmt.Errorf("CIRCUIT_BREAKER_MAX_REQUESTS must be positive")
	}
	if cb.Timeout <= 0 {
		return fmt.Errorf("CIRCUIT_BREAKER_TIMEOUT must be positive, got %v", cb.Timeout)
	}
	if cb.FailureRatio <= 0 || cb.FailureRatio > 1 {
		return fmt.Errorf("CIRCUIT_BREAKER_FAILURE_RATIO must be in (0, 1], got %v", cb.FailureRatio)
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if c.Security.JWTSecret != "" && len(c.Security.JWTSecret) < minJWTSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters", minJWTSecretLength)
	}
	if c.Server.IsProduction() && c.Security.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required in production")
	}
	if !c.Security.RateLimitDisabled {
		if c.Security.RateLimitReqs <= 0 {
			return fmt.Errorf("SECURITY_RATE_LIMIT_REQS must be positive, got %d", c.Security.RateLimitReqs)
		}
		if c.Security.RateLimitWindow <= 0 {
			return fmt.Errorf("SECURITY_RATE_LIMIT_WINDOW must be positive, got %v", c.Security.RateLimitWindow)
		}
	}
	return nil
}

func (c *Config) validateAuthz() error {
	if c.Authz.ReloadInterval < 0 {
		return fmt.Errorf("AUTHZ_RELOAD_INTERVAL must be non-negative, got %v", c.Authz.ReloadInterval)
	}
	if c.Authz.CacheEnabled && c.Authz.CacheTTL <= 0 {
		return fmt.Errorf("AUTHZ_CACHE_TTL must be positive when caching is enabled, got %v", c.Authz.CacheTTL)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error; got %q", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}
