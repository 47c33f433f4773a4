// Tripmatch - Destination Guide Preference Matching and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

/*
Package metrics exposes Prometheus instrumentation for the matching service.

All collectors are registered with the default registry through promauto and
served by the API router at /metrics.

# Metric Families

Catalog:
  - catalog_query_duration_seconds{operation}
  - catalog_query_errors_total{operation}

Preferences:
  - preference_store_operations_total{operation,scope,result}

Matching:
  - match_requests_total{item_type,status}
  - match_request_duration_seconds{item_type}
  - match_score{item_type}
  - match_confidence_total{item_type,confidence}
  - match_items_scored_total{item_type}

Tag traits:
  - trait_chunk_requests_total{result}
  - trait_fetch_duration_seconds
  - trait_fetch_timeouts_total
  - trait_cache_hits_total, trait_cache_misses_total, trait_cache_expired_total

API:
  - api_requests_total{method,endpoint,status}
  - api_request_duration_seconds{method,endpoint}
  - api_active_requests

Circuit breaker:
  - circuit_breaker_state{name}
  - circuit_breaker_requests_total{name,result}
  - circuit_breaker_consecutive_failures{name}
  - circuit_breaker_state_transitions_total{name,from_state,to_state}

# Example Queries

Share of low-confidence tour scores:

	sum(rate(match_confidence_total{item_type="tour",confidence="low"}[5m]))
	  / sum(rate(match_confidence_total{item_type="tour"}[5m]))

Trait chunk failure rate:

	rate(trait_chunk_requests_total{result="failure"}[5m])
*/
package metrics
