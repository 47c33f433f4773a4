// Tripmatch - Destination Guide Preference Matching and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package match

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("invalid match config")

// Tunable defaults. The weighting constants are behavioral defaults rather
// than fixed contract; every one of them can be overridden through Config.
const (
	// GenericPenalty multiplies the weight of generic tags ("Tours", "Activities").
	GenericPenalty = 0.3

	// HighConfidenceAxes is the number of well-covered axes required for high confidence.
	HighConfidenceAxes = 3

	// HighConfidenceMinTags is the number of contributing tags an axis needs to count
	// as well covered.
	HighConfidenceMinTags = 2

	// HighConfidenceMinWeight is the cumulative effective weight an axis needs to
	// count as well covered.
	HighConfidenceMinWeight = 1.5

	// MediumConfidenceMinAxes is the number of axes with any data required to
	// rise above low confidence.
	MediumConfidenceMinAxes = 2

	// FoodInterestThreshold is the food-and-drink preference at which the food
	// axis gets FoodAxisWeight.
	FoodInterestThreshold = 66

	// FoodAxisWeight is the food axis weight for food-motivated travelers.
	FoodAxisWeight = 2.0

	// TraitBatchSize is the maximum number of tag ids per backing-store query.
	TraitBatchSize = 1000

	// DefaultPageSize is the number of ranked items returned per request.
	DefaultPageSize = 15

	// SearchLimit is the upstream fetch cap for catalog searches.
	SearchLimit = 50

	// PromotionLimit bounds promotions per destination per item type.
	PromotionLimit = 20

	// TourPromotedSectionCap bounds the dedicated promoted-tours section.
	TourPromotedSectionCap = 6
)

// Config contains all configuration for the matching engine.
type Config struct {
	// Aggregation controls how tag traits fold into item profiles.
	Aggregation AggregationConfig `json:"aggregation"`

	// Scoring controls continuous-axis scoring for tours.
	Scoring ScoringConfig `json:"scoring"`

	// Categorical controls restaurant scoring points.
	Categorical CategoricalConfig `json:"categorical"`

	// Traits controls the batched tag-trait lookup.
	Traits TraitsConfig `json:"traits"`

	// Ranking controls page sizes and promotion caps.
	Ranking RankingConfig `json:"ranking"`
}

// AggregationConfig contains profile aggregation parameters.
type AggregationConfig struct {
	// GenericPenalty is the weight multiplier for generic tags, in (0,1).
	// Default: 0.3.
	GenericPenalty float64 `json:"generic_penalty"`

	// HighConfidenceAxes is the number of axes that must be well covered.
	// Default: 3.
	HighConfidenceAxes int `json:"high_confidence_axes"`

	// HighConfidenceMinTags is the per-axis contributor count for "well covered".
	// Default: 2.
	HighConfidenceMinTags int `json:"high_confidence_min_tags"`

	// HighConfidenceMinWeight is the per-axis cumulative weight for "well covered".
	// Default: 1.5.
	HighConfidenceMinWeight float64 `json:"high_confidence_min_weight"`

	// MediumConfidenceMinAxes is the number of axes with any data for medium.
	// Default: 2.
	MediumConfidenceMinAxes int `json:"medium_confidence_min_axes"`
}

// ScoringConfig contains tour scoring parameters.
type ScoringConfig struct {
	// FoodInterestThreshold enables the food axis boost at or above this value.
	// Default: 66.
	FoodInterestThreshold int `json:"food_interest_threshold"`

	// FoodAxisWeight is the boosted food axis weight. Default: 2.0.
	FoodAxisWeight float64 `json:"food_axis_weight"`
}

// CategoricalConfig contains restaurant scoring points.
type CategoricalConfig struct {
	PricePoints       float64 `json:"price_points"`
	AtmospherePoints  float64 `json:"atmosphere_points"`
	MealTimePoints    float64 `json:"meal_time_points"`
	GroupSizePoints   float64 `json:"group_size_points"`
	DiningStylePoints float64 `json:"dining_style_points"`

	// FeaturePoints is awarded per matched requested feature.
	FeaturePoints float64 `json:"feature_points"`

	// FeatureCap bounds the total feature bonus.
	FeatureCap float64 `json:"feature_cap"`

	// UnknownFraction is the share of a field's points awarded when the
	// restaurant record has no data for it. Default: 0.5.
	UnknownFraction float64 `json:"unknown_fraction"`
}

// TraitsConfig contains batched trait lookup parameters.
type TraitsConfig struct {
	// BatchSize is the maximum ids per backing-store query. Default: 1000.
	BatchSize int `json:"batch_size"`

	// Concurrency bounds in-flight chunk queries. Default: 4.
	Concurrency int `json:"concurrency"`

	// ChunksPerSecond paces chunk queries; zero disables pacing. Default: 50.
	ChunksPerSecond float64 `json:"chunks_per_second"`

	// FetchTimeout bounds the whole batched fetch. Default: 2s.
	FetchTimeout time.Duration `json:"fetch_timeout"`

	// CacheSize is the number of traits kept in memory; zero disables caching.
	// Default: 10000.
	CacheSize int `json:"cache_size"`

	// CacheTTL is how long a cached trait stays valid. Default: 10m.
	CacheTTL time.Duration `json:"cache_ttl"`
}

// RankingConfig contains assembly parameters.
type RankingConfig struct {
	// PageSize is the default number of ranked items. Default: 15.
	PageSize int `json:"page_size"`

	// MaxPageSize bounds caller-supplied page sizes. Default: 50.
	MaxPageSize int `json:"max_page_size"`

	// SearchLimit is the upstream catalog fetch cap. Default: 50.
	SearchLimit int `json:"search_limit"`

	// PromotionLimit bounds promotions read per destination and type. Default: 20.
	PromotionLimit int `json:"promotion_limit"`

	// TourPromotedSectionCap bounds the promoted tours section. Default: 6.
	TourPromotedSectionCap int `json:"tour_promoted_section_cap"`

	// ExplainReasons bounds the reasons attached to a ranked item. Default: 3.
	ExplainReasons int `json:"explain_reasons"`
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() *Config {
	return &Config{
		Aggregation: AggregationConfig{
			GenericPenalty:          GenericPenalty,
			HighConfidenceAxes:      HighConfidenceAxes,
			HighConfidenceMinTags:   HighConfidenceMinTags,
			HighConfidenceMinWeight: HighConfidenceMinWeight,
			MediumConfidenceMinAxes: MediumConfidenceMinAxes,
		},
		Scoring: ScoringConfig{
			FoodInterestThreshold: FoodInterestThreshold,
			FoodAxisWeight:        FoodAxisWeight,
		},
		Categorical: CategoricalConfig{
			PricePoints:       20,
			AtmospherePoints:  15,
			MealTimePoints:    10,
			GroupSizePoints:   10,
			DiningStylePoints: 25,
			FeaturePoints:     5,
			FeatureCap:        20,
			UnknownFraction:   0.5,
		},
		Traits: TraitsConfig{
			BatchSize:       TraitBatchSize,
			Concurrency:     4,
			ChunksPerSecond: 50,
			FetchTimeout:    2 * time.Second,
			CacheSize:       10000,
			CacheTTL:        10 * time.Minute,
		},
		Ranking: RankingConfig{
			PageSize:               DefaultPageSize,
			MaxPageSize:            SearchLimit,
			SearchLimit:            SearchLimit,
			PromotionLimit:         PromotionLimit,
			TourPromotedSectionCap: TourPromotedSectionCap,
			ExplainReasons:         3,
		},
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.Aggregation.GenericPenalty <= 0 || c.Aggregation.GenericPenalty >= 1 {
		return fmt.Errorf("%w: aggregation.generic_penalty must be in (0, 1), got %f", ErrInvalidConfig, c.Aggregation.GenericPenalty)
	}
	if c.Aggregation.HighConfidenceAxes <= 0 || c.Aggregation.HighConfidenceAxes > axisCount {
		return fmt.Errorf("%w: aggregation.high_confidence_axes must be in [1, %d], got %d", ErrInvalidConfig, axisCount, c.Aggregation.HighConfidenceAxes)
	}
	if c.Aggregation.HighConfidenceMinTags <= 0 {
		return fmt.Errorf("%w: aggregation.high_confidence_min_tags must be positive, got %d", ErrInvalidConfig, c.Aggregation.HighConfidenceMinTags)
	}
	if c.Aggregation.HighConfidenceMinWeight < 0 {
		return fmt.Errorf("%w: aggregation.high_confidence_min_weight must be non-negative, got %f", ErrInvalidConfig, c.Aggregation.HighConfidenceMinWeight)
	}
	if c.Aggregation.MediumConfidenceMinAxes <= 0 || c.Aggregation.MediumConfidenceMinAxes > axisCount {
		return fmt.Errorf("%w: aggregation.medium_confidence_min_axes must be in [1, %d], got %d", ErrInvalidConfig, axisCount, c.Aggregation.MediumConfidenceMinAxes)
	}
	if c.Scoring.FoodInterestThreshold < minAxisValue || c.Scoring.FoodInterestThreshold > maxAxisValue {
		return fmt.Errorf("%w: scoring.food_interest_threshold must be in [0, 100], got %d", ErrInvalidConfig, c.Scoring.FoodInterestThreshold)
	}
	if c.Scoring.FoodAxisWeight < 1 {
		return fmt.Errorf("%w: scoring.food_axis_weight must be >= 1, got %f", ErrInvalidConfig, c.Scoring.FoodAxisWeight)
	}
	cat := c.Categorical
	for name, v := range map[string]float64{
		"price_points":        cat.PricePoints,
		"atmosphere_points":   cat.AtmospherePoints,
		"meal_time_points":    cat.MealTimePoints,
		"group_size_points":   cat.GroupSizePoints,
		"dining_style_points": cat.DiningStylePoints,
		"feature_points":      cat.FeaturePoints,
		"feature_cap":         cat.FeatureCap,
	} {
		if v < 0 {
			return fmt.Errorf("%w: categorical.%s must be non-negative, got %f", ErrInvalidConfig, name, v)
		}
	}
	if cat.PricePoints+cat.AtmospherePoints+cat.MealTimePoints+cat.GroupSizePoints+cat.DiningStylePoints == 0 {
		return fmt.Errorf("%w: categorical points must not all be zero", ErrInvalidConfig)
	}
	if cat.UnknownFraction < 0 || cat.UnknownFraction > 1 {
		return fmt.Errorf("%w: categorical.unknown_fraction must be in [0, 1], got %f", ErrInvalidConfig, cat.UnknownFraction)
	}
	if c.Traits.BatchSize <= 0 {
		return fmt.Errorf("%w: traits.batch_size must be positive, got %d", ErrInvalidConfig, c.Traits.BatchSize)
	}
	if c.Traits.Concurrency <= 0 {
		return fmt.Errorf("%w: traits.concurrency must be positive, got %d", ErrInvalidConfig, c.Traits.Concurrency)
	}
	if c.Traits.ChunksPerSecond < 0 {
		return fmt.Errorf("%w: traits.chunks_per_second must be non-negative, got %f", ErrInvalidConfig, c.Traits.ChunksPerSecond)
	}
	if c.Traits.FetchTimeout <= 0 {
		return fmt.Errorf("%w: traits.fetch_timeout must be positive, got %v", ErrInvalidConfig, c.Traits.FetchTimeout)
	}
	if c.Traits.CacheSize < 0 {
		return fmt.Errorf("%w: traits.cache_size must be non-negative, got %d", ErrInvalidConfig, c.Traits.CacheSize)
	}
	if c.Traits.CacheSize > 0 && c.Traits.CacheTTL <= 0 {
		return fmt.Errorf("%w: traits.cache_ttl must be positive when caching, got %v", ErrInvalidConfig, c.Traits.CacheTTL)
	}
	if c.Ranking.PageSize <= 0 {
		return fmt.Errorf("%w: ranking.page_size must be positive, got %d", ErrInvalidConfig, c.Ranking.PageSize)
	}
	if c.Ranking.MaxPageSize < c.Ranking.PageSize {
		return fmt.Errorf("%w: ranking.max_page_size must be >= ranking.page_size, got %d < %d", ErrInvalidConfig, c.Ranking.MaxPageSize, c.Ranking.PageSize)
	}
	if c.Ranking.SearchLimit <= 0 {
		return fmt.Errorf("%w: ranking.search_limit must be positive, got %d", ErrInvalidConfig, c.Ranking.SearchLimit)
	}
	if c.Ranking.PromotionLimit <= 0 || c.Ranking.PromotionLimit > PromotionLimit {
		return fmt.Errorf("%w: ranking.promotion_limit must be in [1, %d], got %d", ErrInvalidConfig, PromotionLimit, c.Ranking.PromotionLimit)
	}
	if c.Ranking.TourPromotedSectionCap < 0 {
		return fmt.Errorf("%w: ranking.tour_promoted_section_cap must be non-negative, got %d", ErrInvalidConfig, c.Ranking.TourPromotedSectionCap)
	}
	if c.Ranking.ExplainReasons < 0 {
		return fmt.Errorf("%w: ranking.explain_reasons must be non-negative, got %d", ErrInvalidConfig, c.Ranking.ExplainReasons)
	}
	return nil
}
