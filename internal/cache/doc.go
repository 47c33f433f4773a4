// Tripmatch - Destination Guide Preference Matching and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

/*
Package cache provides a thread-safe, generic LRU cache with TTL support.

The matching engine uses it to keep tag traits in memory between ranking
requests so that popular tags do not hit the catalog on every search. The
authorization enforcer caches Casbin decisions in it.

# Overview

  - O(1) Get, Add and Remove via a hashmap plus doubly-linked list
  - O(1) least-recently-used eviction when capacity is reached
  - Lazy expiration on Get, plus CleanupExpired for periodic sweeps

# Usage

	traits := cache.NewLRU[int64, match.TagTrait](10000, 10*time.Minute)
	traits.Add(42, trait)
	if t, ok := traits.Get(42); ok {
	    // use t
	}

Expired entries are only reclaimed lazily; long-running processes should run
CleanupExpired periodically (the supervisor runs a janitor service for this).
*/
package cache
