// Tripmatch - Destination Guide Preference Matching and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package match

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/tripmatch/internal/metrics"
)

// Catalog is the read side of the catalog service the engine depends on.
type Catalog interface {
	// GetPromotedItems returns at most limit promotions for a destination.
	GetPromotedItems(ctx context.Context, destinationID string, itemType ItemType, limit int) ([]PromotionEntry, error)

	// GetTours returns the tours with the given ids; unknown ids are skipped.
	GetTours(ctx context.Context, ids []string) ([]Tour, error)

	// GetRestaurants returns the restaurants with the given ids; unknown ids are skipped.
	GetRestaurants(ctx context.Context, ids []string) ([]Restaurant, error)
}

// Engine ranks catalog items against traveler preferences.
// It holds no per-request state and is safe for concurrent use.
type Engine struct {
	config *Config
	logger zerolog.Logger

	catalog     Catalog
	traits      *TraitStore
	aggregator  *Aggregator
	scorer      *Scorer
	categorical *CategoricalMatcher

	mu      sync.RWMutex
	rankers map[ItemType]Ranker
}

// NewEngine creates a matching engine.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewEngine(cfg *Config, catalog Catalog, traits *TraitStore, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if catalog == nil {
		return nil, errors.New("match: catalog is required")
	}
	if traits == nil {
		return nil, errors.New("match: trait store is required")
	}

	return &Engine{
		config:      cfg,
		logger:      logger.With().Str("component", "match").Logger(),
		catalog:     catalog,
		traits:      traits,
		aggregator:  NewAggregator(cfg.Aggregation),
		scorer:      NewScorer(cfg.Scoring),
		categorical: NewCategoricalMatcher(cfg.Categorical),
		rankers:     make(map[ItemType]Ranker),
	}, nil
}

// RegisterRanker installs the ranker for its item type, replacing any
// previous one.
func (e *Engine) RegisterRanker(r Ranker) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rankers[r.ItemType()] = r
	e.logger.Debug().Str("item_type", string(r.ItemType())).Msg("Registered ranker")
}

func (e *Engine) ranker(t ItemType) (Ranker, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	r, ok := e.rankers[t]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoRanker, t)
	}
	return r, nil
}

// RankOption adjusts a single ranking request.
type RankOption func(*rankOptions)

type rankOptions struct {
	pageSize int
}

// WithPageSize overrides the configured page size, bounded by MaxPageSize.
func WithPageSize(n int) RankOption {
	return func(o *rankOptions) { o.pageSize = n }
}

func (e *Engine) options(opts []RankOption) rankOptions {
	o := rankOptions{pageSize: e.config.Ranking.PageSize}
	for _, opt := range opts {
		opt(&o)
	}
	if o.pageSize <= 0 {
		o.pageSize = e.config.Ranking.PageSize
	}
	if o.pageSize > e.config.Ranking.MaxPageSize {
		o.pageSize = e.config.Ranking.MaxPageSize
	}
	return o
}

// RankTours scores rawTours plus the destination's promoted tours and
// assembles them. A nil pref ranks against the balanced default.
//
// Catalog failures while loading promotions fail the whole request with
// ErrCatalogUnavailable. Trait lookup failures only lower the affected
// items to neutral scores.
func (e *Engine) RankTours(ctx context.Context, destinationID string, pref *PreferenceVector, rawTours []Tour, opts ...RankOption) (ranking *Ranking, err error) {
	start := time.Now()
	defer func() { metrics.RecordMatchRequest(string(ItemTypeTour), time.Since(start), err) }()

	ranker, err := e.ranker(ItemTypeTour)
	if err != nil {
		return nil, err
	}
	o := e.options(opts)
	p := OrDefault(pref)

	promotedTours, err := e.promotedTours(ctx, destinationID, rawTours)
	if err != nil {
		return nil, err
	}

	tagIDs := make([]int64, 0, len(rawTours)*4)
	for i := range rawTours {
		tagIDs = append(tagIDs, rawTours[i].TagIDs...)
	}
	for i := range promotedTours {
		tagIDs = append(tagIDs, promotedTours[i].TagIDs...)
	}
	traits := e.traits.FetchTraits(ctx, tagIDs)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	organic := make([]ScoredItem, 0, len(rawTours))
	for i := range rawTours {
		organic = append(organic, e.scoreTour(p, &rawTours[i], traits))
	}
	promoted := make([]ScoredItem, 0, len(promotedTours))
	for i := range promotedTours {
		promoted = append(promoted, e.scoreTour(p, &promotedTours[i], traits))
	}

	result := ranker.Assemble(organic, promoted, o.pageSize)

	e.logger.Debug().
		Str("destination_id", destinationID).
		Int("candidates", len(rawTours)).
		Int("promoted", len(result.Promoted)).
		Int("ranked", len(result.Ranked)).
		Int("traits", len(traits)).
		Dur("duration", time.Since(start)).
		Msg("Ranked tours")

	return &result, nil
}

// RankRestaurants scores raw restaurants plus the destination's promoted
// restaurants and assembles them. Malformed records score 0 instead of
// failing the request.
func (e *Engine) RankRestaurants(ctx context.Context, destinationID string, prefs RestaurantPreferences, raw []Restaurant, opts ...RankOption) (ranking *Ranking, err error) {
	start := time.Now()
	defer func() { metrics.RecordMatchRequest(string(ItemTypeRestaurant), time.Since(start), err) }()

	ranker, err := e.ranker(ItemTypeRestaurant)
	if err != nil {
		return nil, err
	}
	o := e.options(opts)
	prefs = NormalizeRestaurantPreferences(prefs)

	promotedRaw, err := e.promotedRestaurants(ctx, destinationID, raw)
	if err != nil {
		return nil, err
	}

	organic := make([]ScoredItem, 0, len(raw))
	for i := range raw {
		organic = append(organic, e.scoreRestaurant(prefs, &raw[i]))
	}
	promoted := make([]ScoredItem, 0, len(promotedRaw))
	for i := range promotedRaw {
		promoted = append(promoted, e.scoreRestaurant(prefs, &promotedRaw[i]))
	}

	result := ranker.Assemble(organic, promoted, o.pageSize)

	e.logger.Debug().
		Str("destination_id", destinationID).
		Int("candidates", len(raw)).
		Int("promoted", len(result.Promoted)).
		Int("ranked", len(result.Ranked)).
		Dur("duration", time.Since(start)).
		Msg("Ranked restaurants")

	return &result, nil
}

func (e *Engine) scoreTour(pref PreferenceVector, t *Tour, traits map[int64]TagTrait) ScoredItem {
	profile := e.aggregator.Aggregate(t.TagIDs, traits)
	res, _, reasons := e.scorer.Explain(pref, profile)
	metrics.RecordScoredItem(string(ItemTypeTour), res.Score, string(res.Confidence))
	return ScoredItem{
		ItemID:     t.ID,
		ItemType:   ItemTypeTour,
		Name:       t.Name,
		Rating:     t.Rating,
		Score:      res.Score,
		Confidence: res.Confidence,
		Reasons:    limitReasons(reasons, e.config.Ranking.ExplainReasons),
	}
}

func (e *Engine) scoreRestaurant(prefs RestaurantPreferences, r *Restaurant) ScoredItem {
	values := DeriveStructuredValues(r)
	res := e.categorical.Score(prefs, values)
	if values.Err != nil {
		e.logger.Warn().Err(values.Err).Str("restaurant_id", r.ID).Msg("Restaurant record could not be evaluated")
	}
	metrics.RecordScoredItem(string(ItemTypeRestaurant), res.Score, string(res.Confidence))
	return ScoredItem{
		ItemID:     r.ID,
		ItemType:   ItemTypeRestaurant,
		Name:       r.Name,
		Rating:     r.Rating,
		Score:      res.Score,
		Confidence: res.Confidence,
		Reasons:    limitReasons(res.Reasons, e.config.Ranking.ExplainReasons),
	}
}

// promotionIDs loads the promotion entries for a destination in operator order.
func (e *Engine) promotionIDs(ctx context.Context, destinationID string, itemType ItemType) ([]string, error) {
	entries, err := e.catalog.GetPromotedItems(ctx, destinationID, itemType, e.config.Ranking.PromotionLimit)
	if err != nil {
		return nil, catalogError("load promotions", err)
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Position < entries[j].Position })

	ids := make([]string, 0, len(entries))
	for _, p := range entries {
		if p.ItemType != itemType {
			continue
		}
		ids = append(ids, p.ItemID)
		if len(ids) == e.config.Ranking.PromotionLimit {
			break
		}
	}
	return ids, nil
}

func (e *Engine) promotedTours(ctx context.Context, destinationID string, rawTours []Tour) ([]Tour, error) {
	ids, err := e.promotionIDs(ctx, destinationID, ItemTypeTour)
	if err != nil || len(ids) == 0 {
		return nil, err
	}

	known := make(map[string]Tour, len(rawTours))
	for i := range rawTours {
		known[rawTours[i].ID] = rawTours[i]
	}
	var missing []string
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		fetched, err := e.catalog.GetTours(ctx, missing)
		if err != nil {
			return nil, catalogError("load promoted tours", err)
		}
		for i := range fetched {
			known[fetched[i].ID] = fetched[i]
		}
	}

	out := make([]Tour, 0, len(ids))
	for _, id := range ids {
		if t, ok := known[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func (e *Engine) promotedRestaurants(ctx context.Context, destinationID string, raw []Restaurant) ([]Restaurant, error) {
	ids, err := e.promotionIDs(ctx, destinationID, ItemTypeRestaurant)
	if err != nil || len(ids) == 0 {
		return nil, err
	}

	known := make(map[string]Restaurant, len(raw))
	for i := range raw {
		known[raw[i].ID] = raw[i]
	}
	var missing []string
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		fetched, err := e.catalog.GetRestaurants(ctx, missing)
		if err != nil {
			return nil, catalogError("load promoted restaurants", err)
		}
		for i := range fetched {
			known[fetched[i].ID] = fetched[i]
		}
	}

	out := make([]Restaurant, 0, len(ids))
	for _, id := range ids {
		if r, ok := known[id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func limitReasons(reasons []string, n int) []string {
	if n <= 0 || len(reasons) == 0 {
		return nil
	}
	if len(reasons) > n {
		reasons = reasons[:n]
	}
	return append([]string(nil), reasons...)
}
