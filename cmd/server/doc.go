// Tripmatch - Destination Guide Preference Matching and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

/*
Package main is the entry point for the Tripmatch server.

Tripmatch ranks a destination's tours and restaurants for a traveler. Tours
are scored against a six-axis preference vector using the traits of their
descriptive tags; restaurants are scored on structured fields such as price
level, atmosphere and meal times. Operator-curated promotions are surfaced
ahead of, or lifted within, the organic ranking.

# Application Architecture

	RootSupervisor ("tripmatch")
	├── DataSupervisor ("data-layer")
	│   └── Maintenance (trait cache sweep, preference GC, preference counts)
	└── APISupervisor ("api-layer")
	    └── HTTP Server

Component initialization order:

 1. Configuration: Koanf v2 with defaults, config.yaml and environment variables
 2. Catalog: DuckDB store, seeded from DATABASE_SEED_PATH when empty
 3. Circuit breaker around the catalog (CIRCUIT_BREAKER_ENABLED)
 4. Preference store: BadgerDB for device and profile preferences
 5. Matching engine: trait store, tour and restaurant rankers
 6. Authentication (JWT) and authorization (Casbin)
 7. HTTP router, supervisor tree and signal handling

# Configuration

	CONFIG_PATH           Path to config.yaml (optional)
	SERVER_PORT           HTTP port (default: 8080)
	DATABASE_PATH         DuckDB catalog file
	DATABASE_SEED_PATH    JSON catalog loaded when the catalog is empty
	PREFERENCES_PATH      BadgerDB directory; empty keeps preferences in memory
	SECURITY_JWT_SECRET   HS256 secret (32+ characters); required in production
	AUTHZ_POLICY_PATH     Casbin policy overriding the embedded one
	LOGGING_LEVEL         trace, debug, info, warn, error

Without SECURITY_JWT_SECRET the server runs anonymously: device preferences
work, profile preferences and promotion curation answer 401.

# Signal Handling

SIGINT and SIGTERM cancel the root context. The readiness probe starts
answering 503, the HTTP server drains in-flight requests within
SERVER_SHUTDOWN_TIMEOUT, then the stores are closed.
SIGHUP clears the trait cache so tag edits made in the catalog are picked up
by the next ranking request, and rereads the authorization policy file when
one is configured.
*/
package main
