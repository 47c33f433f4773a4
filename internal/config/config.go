// Tripmatch - Destination Guide Preference Matching and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package config

import "time"

// Config holds the complete service configuration.
type Config struct {
	Server         ServerConfig         `koanf:"server"`
	Database       DatabaseConfig       `koanf:"database"`
	Preferences    PreferencesConfig    `koanf:"preferences"`
	Match          MatchConfig          `koanf:"match"`
	CircuitBreaker CircuitBreakerConfig `koanf:"circuit_breaker"`
	Security       SecurityConfig       `koanf:"security"`
	Authz          AuthzConfig          `koanf:"authz"`
	Logging        LoggingConfig        `koanf:"logging"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"` // development, staging or production
}

// DatabaseConfig holds the DuckDB catalog settings.
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"` // 0 = NumCPU

	// SeedPath is an optional JSON catalog loaded at startup when the
	// tags table is empty.
	SeedPath string `koanf:"seed_path"`
}

// PreferencesConfig holds the badger preference store settings.
type PreferencesConfig struct {
	// Path is the badger directory. Empty runs the store in memory.
	Path string `koanf:"path"`

	// DeviceTTL is how long anonymous device preferences are kept after
	// their last update. Zero keeps them forever.
	DeviceTTL time.Duration `koanf:"device_ttl"`

	// GCInterval is how often the value log garbage collector runs.
	GCInterval time.Duration `koanf:"gc_interval"`
}

// MatchConfig holds the tunables of the matching engine.
type MatchConfig struct {
	GenericPenalty        float64 `koanf:"generic_penalty"`
	FoodInterestThreshold int     `koanf:"food_interest_threshold"`
	FoodAxisWeight        float64 `koanf:"food_axis_weight"`

	PageSize               int `koanf:"page_size"`
	MaxPageSize            int `koanf:"max_page_size"`
	SearchLimit            int `koanf:"search_limit"`
	PromotionLimit         int `koanf:"promotion_limit"`
	TourPromotedSectionCap int `koanf:"tour_promoted_section_cap"`
	ExplainReasons         int `koanf:"explain_reasons"`

	TraitBatchSize       int           `koanf:"trait_batch_size"`
	TraitConcurrency     int           `koanf:"trait_concurrency"`
	TraitChunksPerSecond float64       `koanf:"trait_chunks_per_second"`
	TraitFetchTimeout    time.Duration `koanf:"trait_fetch_timeout"`
	TraitCacheSize       int           `koanf:"trait_cache_size"`
	TraitCacheTTL        time.Duration `koanf:"trait_cache_ttl"`

	// CacheCleanupInterval is how often expired traits are swept.
	CacheCleanupInterval time.Duration `koanf:"cache_cleanup_interval"`
}

// CircuitBreakerConfig holds the catalog circuit breaker settings.
type CircuitBreakerConfig struct {
	Enabled      bool          `koanf:"enabled"`
	MaxRequests  uint32        `koanf:"max_requests"` // half-open probes
	Interval     time.Duration `koanf:"interval"`
	Timeout      time.Duration `koanf:"timeout"`
	MinRequests  uint32        `koanf:"min_requests"`
	FailureRatio float64       `koanf:"failure_ratio"`
}

// SecurityConfig holds authentication, authorization and HTTP protection settings.
type SecurityConfig struct {
	// JWTSecret verifies HS256 bearer tokens issued by the account service.
	JWTSecret string `koanf:"jwt_secret"`

	// TokenTTL is only used when the service mints tokens for tooling.
	TokenTTL time.Duration `koanf:"token_ttl"`

	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// AuthzConfig holds the Casbin authorization settings.
type AuthzConfig struct {
	// ModelPath and PolicyPath override the embedded model and policy.
	ModelPath  string `koanf:"model_path"`
	PolicyPath string `koanf:"policy_path"`

	// ReloadInterval re-reads PolicyPath periodically. Zero disables reloading.
	ReloadInterval time.Duration `koanf:"reload_interval"`

	// DefaultRole is assumed for tokens without a role claim.
	DefaultRole string `koanf:"default_role"`

	CacheEnabled bool          `koanf:"cache_enabled"`
	CacheTTL     time.Duration `koanf:"cache_ttl"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	// Default: false
	Caller bool `koanf:"caller"`
}

// Addr returns the listen address.
func (s *ServerConfig) Addr() string {
	return joinHostPort(s.Host, s.Port)
}

// IsProduction reports whether the service runs in production mode.
func (s *ServerConfig) IsProduction() bool {
	return s.Environment == "production"
}
