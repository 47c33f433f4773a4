// Tripmatch - Destination Guide Preference Matching and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

/*
Package catalog is the DuckDB-backed store of tags, tours, restaurants and
operator promotions.

# Tables

  - tags: six nullable axis scores per tag, plus a weight and generic flag
  - tours and tour_tags: tour records and their tag links
  - restaurants: restaurant records with JSON-encoded list columns
  - promotions: operator-curated items per destination, ordered by position

A NULL axis score means the tag carries no signal for that axis. It is never
read back as zero.

# Usage

	store, err := catalog.Open(&cfg.Database, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	cat := catalog.NewBreakerStore(store, &cfg.CircuitBreaker, logger)
	tours, err := cat.SearchTours(ctx, "lisbon", catalog.TourFilters{MinRating: 4})

Store satisfies match.Catalog and match.TraitSource directly. BreakerStore
satisfies both as well, failing fast with match.ErrCatalogUnavailable while
its circuit is open.

# Seeding

LoadSeed upserts a JSON seed file. The server loads the configured seed file
on startup when IsEmpty reports an empty catalog.
*/
package catalog
