// Tripmatch - Destination Guide Preference Matching and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package match

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/tomtom215/tripmatch/internal/cache"
	"github.com/tomtom215/tripmatch/internal/metrics"
)

// TraitSource is the tag catalog, queryable by id batch.
// Implementations should honor ctx cancellation.
type TraitSource interface {
	FetchTraitBatch(ctx context.Context, tagIDs []int64) ([]TagTrait, error)
}

// TraitStore performs batched, cached tag trait lookups.
//
// Lookups never fail: a failed chunk only leaves its tags out of the
// result, and a lookup that exceeds FetchTimeout returns whatever had
// arrived by then. Chunk pacing is per lookup, so concurrent requests
// never wait on each other's budget.
type TraitStore struct {
	source TraitSource
	cfg    TraitsConfig
	cache  *cache.LRU[int64, TagTrait]
	logger zerolog.Logger
}

// errChunkNotSent marks a chunk dropped while waiting for its pacing token.
var errChunkNotSent = errors.New("trait chunk not sent")

// NewTraitStore creates a trait store over source.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewTraitStore(source TraitSource, cfg TraitsConfig, logger zerolog.Logger) *TraitStore {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = TraitBatchSize
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 2 * time.Second
	}

	s := &TraitStore{
		source: source,
		cfg:    cfg,
		logger: logger.With().Str("component", "traits").Logger(),
	}
	if cfg.CacheSize > 0 {
		s.cache = cache.NewLRU[int64, TagTrait](cfg.CacheSize, cfg.CacheTTL)
	}
	return s
}

// newLimiter returns the pacing limiter of one lookup, or nil when pacing
// is disabled. The burst lets the first Concurrency chunks start at once.
func (s *TraitStore) newLimiter() *rate.Limiter {
	if s.cfg.ChunksPerSecond <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(s.cfg.ChunksPerSecond), s.cfg.Concurrency)
}

// FetchTraits returns the traits of every tag in tagIDs that could be
// found. Empty input returns an empty map without touching the source.
func (s *TraitStore) FetchTraits(ctx context.Context, tagIDs []int64) map[int64]TagTrait {
	ids := uniqueSorted(tagIDs)
	found := make(map[int64]TagTrait, len(ids))
	if len(ids) == 0 {
		return found
	}

	start := time.Now()
	defer func() { metrics.TraitFetchDuration.Observe(time.Since(start).Seconds()) }()

	missing := s.fromCache(ids, found)
	if len(missing) == 0 {
		return found
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
	defer cancel()
	limiter := s.newLimiter()

	var (
		mu     sync.Mutex
		closed bool
	)
	merge := func(traits []TagTrait) {
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}
		for i := range traits {
			found[traits[i].TagID] = traits[i]
			if s.cache != nil {
				s.cache.Add(traits[i].TagID, traits[i])
			}
		}
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		var g errgroup.Group
		g.SetLimit(s.cfg.Concurrency)
		for _, chunk := range chunkIDs(missing, s.cfg.BatchSize) {
			g.Go(func() error {
				traits, err := s.fetchChunk(fetchCtx, limiter, chunk)
				if errors.Is(err, errChunkNotSent) {
					metrics.RecordTraitChunkSkipped()
					return nil
				}
				metrics.RecordTraitChunk(err)
				if err != nil {
					s.logger.Warn().Err(err).
						Int("chunk_size", len(chunk)).
						Int64("first_tag", chunk[0]).
						Msg("Tag trait chunk failed, continuing without it")
					return nil
				}
				merge(traits)
				return nil
			})
		}
		_ = g.Wait() //nolint:errcheck // chunk failures are soft and never returned
	}()

	select {
	case <-done:
	case <-fetchCtx.Done():
		if ctx.Err() == nil {
			metrics.TraitFetchTimeouts.Inc()
			s.logger.Warn().
				Dur("timeout", s.cfg.FetchTimeout).
				Int("requested", len(missing)).
				Msg("Tag trait lookup timed out, using partial results")
		}
	}

	mu.Lock()
	closed = true
	out := make(map[int64]TagTrait, len(found))
	for id, t := range found {
		out[id] = t
	}
	mu.Unlock()
	return out
}

func (s *TraitStore) fetchChunk(ctx context.Context, limiter *rate.Limiter, chunk []int64) ([]TagTrait, error) {
	if limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			return nil, errors.Join(errChunkNotSent, err)
		}
	}
	return s.source.FetchTraitBatch(ctx, chunk)
}

// fromCache fills found from the cache and returns the ids still missing.
func (s *TraitStore) fromCache(ids []int64, found map[int64]TagTrait) []int64 {
	if s.cache == nil {
		return ids
	}
	missing := make([]int64, 0, len(ids))
	for _, id := range ids {
		if t, ok := s.cache.Get(id); ok {
			found[id] = t
			continue
		}
		missing = append(missing, id)
	}
	metrics.RecordTraitCache(len(ids)-len(missing), len(missing))
	return missing
}

// Invalidate drops cached traits, e.g. after a catalog update.
func (s *TraitStore) Invalidate(tagIDs ...int64) {
	if s.cache == nil {
		return
	}
	if len(tagIDs) == 0 {
		s.cache.Clear()
		return
	}
	for _, id := range tagIDs {
		s.cache.Remove(id)
	}
}

// CleanupCache removes expired cache entries and returns how many were removed.
func (s *TraitStore) CleanupCache() int {
	if s.cache == nil {
		return 0
	}
	n := s.cache.CleanupExpired()
	metrics.TraitCacheEvictions.Add(float64(n))
	metrics.TraitCacheSize.Set(float64(s.cache.Len()))
	return n
}

// chunkIDs splits ids into consecutive slices of at most size elements.
func chunkIDs(ids []int64, size int) [][]int64 {
	if len(ids) == 0 {
		return nil
	}
	chunks := make([][]int64, 0, (len(ids)+size-1)/size)
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}
