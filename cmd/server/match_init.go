// Tripmatch - Destination Guide Preference Matching and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package main

import (
	"fmt"

	"github.com/tomtom215/tripmatch/internal/config"
	"github.com/tomtom215/tripmatch/internal/logging"
	"github.com/tomtom215/tripmatch/internal/match"
	"github.com/tomtom215/tripmatch/internal/match/ranking"
)

// catalogSource is what the engine reads from the catalog.
type catalogSource interface {
	match.Catalog
	match.TraitSource
}

// initMatch builds the matching engine with both rankers registered.
func initMatch(cfg *config.MatchConfig, source catalogSource) (*match.Engine, *match.TraitStore, error) {
	matchCfg, err := buildMatchConfig(cfg)
	if err != nil {
		return nil, nil, err
	}

	logger := logging.WithComponent("match")
	traits := match.NewTraitStore(source, matchCfg.Traits, logger)

	engine, err := match.NewEngine(matchCfg, source, traits, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("create match engine: %w", err)
	}
	engine.RegisterRanker(ranking.NewTourRanker(matchCfg.Ranking.TourPromotedSectionCap))
	engine.RegisterRanker(ranking.NewRestaurantRanker(matchCfg.Ranking.PromotionLimit))

	logger.Info().
		Float64("generic_penalty", matchCfg.Aggregation.GenericPenalty).
		Int("page_size", matchCfg.Ranking.PageSize).
		Int("trait_batch_size", matchCfg.Traits.BatchSize).
		Int("trait_cache_size", matchCfg.Traits.CacheSize).
		Msg("Matching engine initialized")

	return engine, traits, nil
}

// buildMatchConfig overlays the service configuration on the engine
// defaults. Zero values keep the default.
func buildMatchConfig(cfg *config.MatchConfig) (*match.Config, error) {
	out := match.DefaultConfig()

	setFloat(&out.Aggregation.GenericPenalty, cfg.GenericPenalty)
	setInt(&out.Scoring.FoodInterestThreshold, cfg.FoodInterestThreshold)
	setFloat(&out.Scoring.FoodAxisWeight, cfg.FoodAxisWeight)

	setInt(&out.Ranking.PageSize, cfg.PageSize)
	setInt(&out.Ranking.MaxPageSize, cfg.MaxPageSize)
	setInt(&out.Ranking.SearchLimit, cfg.SearchLimit)
	setInt(&out.Ranking.PromotionLimit, cfg.PromotionLimit)
	setInt(&out.Ranking.TourPromotedSectionCap, cfg.TourPromotedSectionCap)
	setInt(&out.Ranking.ExplainReasons, cfg.ExplainReasons)

	setInt(&out.Traits.BatchSize, cfg.TraitBatchSize)
	setInt(&out.Traits.Concurrency, cfg.TraitConcurrency)
	setFloat(&out.Traits.ChunksPerSecond, cfg.TraitChunksPerSecond)
	if cfg.TraitFetchTimeout > 0 {
		out.Traits.FetchTimeout = cfg.TraitFetchTimeout
	}
	setInt(&out.Traits.CacheSize, cfg.TraitCacheSize)
	if cfg.TraitCacheTTL > 0 {
		out.Traits.CacheTTL = cfg.TraitCacheTTL
	}

	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func setFloat(dst *float64, v float64) {
	if v != 0 {
		*dst = v
	}
}
