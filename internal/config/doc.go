// Tripmatch - Destination Guide Preference Matching and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

/*
Package config provides centralized configuration management for Tripmatch.

# Configuration Sources

Configuration is layered with Koanf v2, later layers overriding earlier ones:

 1. Built-in defaults (defaultConfig)
 2. An optional YAML file: CONFIG_PATH, config.yaml, or /etc/tripmatch/config.yaml
 3. Environment variables

# Environment Variables

Any setting can be addressed as SECTION_KEY, for example:

  - SERVER_PORT, SERVER_ENVIRONMENT
  - DATABASE_PATH, DATABASE_SEED_PATH
  - PREFERENCES_PATH, PREFERENCES_DEVICE_TTL
  - MATCH_PAGE_SIZE, MATCH_TRAIT_FETCH_TIMEOUT
  - CIRCUIT_BREAKER_ENABLED, CIRCUIT_BREAKER_TIMEOUT
  - SECURITY_CORS_ORIGINS (comma-separated)

Common short names are accepted too: HTTP_PORT, DUCKDB_PATH, JWT_SECRET,
LOG_LEVEL, LOG_FORMAT.

# Usage

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}
*/
package config
