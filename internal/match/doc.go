// Tripmatch - Destination Guide Preference Matching and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

// Package match implements preference matching and ranking for tours and
// restaurants.
//
// # Architecture
//
// Components, leaf first:
//
//   - Resolve: merges device and profile preferences into one vector
//   - TraitStore: batched, cached tag trait lookup from the catalog
//   - Aggregator: folds tag traits into a six-axis tour profile
//   - Scorer: continuous-axis similarity between preferences and a profile
//   - CategoricalMatcher: additive field agreement for restaurants
//   - Ranker: per-item-type promotion policy (see package ranking)
//
// Engine wires them together behind RankTours, RankRestaurants and
// ExplainMatch.
//
// # Degradation
//
// Missing data never fails a request:
//
//   - No preferences: the balanced all-50 vector is used
//   - No tags, or no trait data for them: the tour scores 50
//   - Failed or slow trait chunks: affected tags are treated as unknown
//   - Malformed restaurant record: score 0 with an explanatory reason
//
// Only a catalog outage (ErrCatalogUnavailable) fails a ranking request.
//
// # Determinism
//
// Identical inputs always produce identical output. Tags are aggregated in
// ascending id order and every ranked list is ordered by score, then rating,
// then item id.
//
// # Usage
//
//	traits := match.NewTraitStore(catalogStore, cfg.Traits, logger)
//	engine, err := match.NewEngine(cfg, catalogStore, traits, logger)
//	if err != nil {
//	    return err
//	}
//	engine.RegisterRanker(ranking.NewTourRanker(cfg.Ranking.TourPromotedSectionCap))
//	engine.RegisterRanker(ranking.NewRestaurantRanker(cfg.Ranking.PromotionLimit))
//
//	pref := match.Resolve(profilePrefs, devicePrefs, signedIn)
//	result, err := engine.RankTours(ctx, destinationID, pref, tours)
//
// # Thread Safety
//
// The engine holds no per-request state. Ranker registration takes a write
// lock; ranking requests take a read lock only to look up the ranker.
package match
