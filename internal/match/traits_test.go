// Tripmatch - Destination Guide Preference Matching and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package match

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/tomtom215/tripmatch/internal/metrics"
)

// fakeTraitSource returns a trait for every requested id, optionally
// failing chunks that contain failID or blocking until ctx is done.
type fakeTraitSource struct {
	mu     sync.Mutex
	calls  [][]int64
	failID int64
	block  bool
}

func (f *fakeTraitSource) FetchTraitBatch(ctx context.Context, tagIDs []int64) ([]TagTrait, error) {
	f.mu.Lock()
	f.calls = append(f.calls, append([]int64(nil), tagIDs...))
	f.mu.Unlock()

	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	out := make([]TagTrait, 0, len(tagIDs))
	for _, id := range tagIDs {
		if id == f.failID {
			return nil, errors.New("storage offline")
		}
		out = append(out, TagTrait{TagID: id, Weight: 1, Axes: AxisScores{Adventure: floatPtr(float64(id % 100))}})
	}
	return out, nil
}

func (f *fakeTraitSource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func testTraitsConfig() TraitsConfig {
	cfg := DefaultConfig().Traits
	cfg.ChunksPerSecond = 0
	return cfg
}

func TestFetchTraits_Empty(t *testing.T) {
	src := &fakeTraitSource{}
	store := NewTraitStore(src, testTraitsConfig(), zerolog.Nop())

	got := store.FetchTraits(context.Background(), nil)

	if len(got) != 0 {
		t.Errorf("len = %d, want 0", len(got))
	}
	if src.callCount() != 0 {
		t.Errorf("source called %d times, want 0", src.callCount())
	}
}

func TestFetchTraits_Chunking(t *testing.T) {
	src := &fakeTraitSource{}
	store := NewTraitStore(src, testTraitsConfig(), zerolog.Nop())

	ids := make([]int64, 0, 2500)
	for i := int64(1); i <= 2500; i++ {
		ids = append(ids, i)
	}
	ids = append(ids, 1, 2, 3)

	got := store.FetchTraits(context.Background(), ids)

	if len(got) != 2500 {
		t.Errorf("len = %d, want 2500", len(got))
	}
	if src.callCount() != 3 {
		t.Errorf("source called %d times, want 3", src.callCount())
	}
	for _, call := range src.calls {
		if len(call) > TraitBatchSize {
			t.Errorf("chunk of %d ids exceeds batch size", len(call))
		}
	}
}

func TestFetchTraits_FailedChunkIsSoft(t *testing.T) {
	src := &fakeTraitSource{failID: 1500}
	store := NewTraitStore(src, testTraitsConfig(), zerolog.Nop())

	ids := make([]int64, 0, 2000)
	for i := int64(1); i <= 2000; i++ {
		ids = append(ids, i)
	}

	got := store.FetchTraits(context.Background(), ids)

	if len(got) != 1000 {
		t.Errorf("len = %d, want 1000 from the healthy chunk", len(got))
	}
	if _, ok := got[1500]; ok {
		t.Error("tag from the failed chunk should be missing")
	}
}

func TestFetchTraits_Timeout(t *testing.T) {
	src := &fakeTraitSource{block: true}
	cfg := testTraitsConfig()
	cfg.FetchTimeout = 50 * time.Millisecond
	store := NewTraitStore(src, cfg, zerolog.Nop())

	start := time.Now()
	got := store.FetchTraits(context.Background(), []int64{1, 2, 3})

	if len(got) != 0 {
		t.Errorf("len = %d, want 0", len(got))
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("FetchTraits took %v, want it bounded by the timeout", elapsed)
	}
}

func TestFetchTraits_Cache(t *testing.T) {
	src := &fakeTraitSource{}
	store := NewTraitStore(src, testTraitsConfig(), zerolog.Nop())
	ctx := context.Background()

	store.FetchTraits(ctx, []int64{1, 2, 3})
	got := store.FetchTraits(ctx, []int64{3, 2, 1})

	if len(got) != 3 {
		t.Errorf("len = %d, want 3", len(got))
	}
	if src.callCount() != 1 {
		t.Errorf("source called %d times, want 1", src.callCount())
	}

	store.Invalidate(2)
	store.FetchTraits(ctx, []int64{1, 2})
	if src.callCount() != 2 {
		t.Fatalf("source called %d times, want 2", src.callCount())
	}
	if last := src.calls[1]; len(last) != 1 || last[0] != 2 {
		t.Errorf("refetched %v, want [2]", last)
	}
}

func TestFetchTraits_NoCache(t *testing.T) {
	src := &fakeTraitSource{}
	cfg := testTraitsConfig()
	cfg.CacheSize = 0
	store := NewTraitStore(src, cfg, zerolog.Nop())

	store.FetchTraits(context.Background(), []int64{1})
	store.FetchTraits(context.Background(), []int64{1})

	if src.callCount() != 2 {
		t.Errorf("source called %d times, want 2", src.callCount())
	}
	if n := store.CleanupCache(); n != 0 {
		t.Errorf("CleanupCache = %d, want 0", n)
	}
}

func TestFetchTraits_PacingIsPerLookup(t *testing.T) {
	src := &fakeTraitSource{}
	cfg := testTraitsConfig()
	cfg.ChunksPerSecond = 1
	cfg.Concurrency = 1
	cfg.CacheSize = 0
	store := NewTraitStore(src, cfg, zerolog.Nop())
	ctx := context.Background()

	store.FetchTraits(ctx, []int64{1})

	start := time.Now()
	got := store.FetchTraits(ctx, []int64{2})
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("second lookup waited %v on the first lookup's pacing", elapsed)
	}
}

func TestFetchTraits_UnsentChunksAreSkipped(t *testing.T) {
	src := &fakeTraitSource{}
	cfg := testTraitsConfig()
	cfg.ChunksPerSecond = 0.01
	cfg.Concurrency = 1
	cfg.BatchSize = 1
	cfg.CacheSize = 0
	cfg.FetchTimeout = 50 * time.Millisecond
	store := NewTraitStore(src, cfg, zerolog.Nop())

	skipped := testutil.ToFloat64(metrics.TraitChunks.WithLabelValues("skipped"))
	failed := testutil.ToFloat64(metrics.TraitChunks.WithLabelValues("failure"))

	got := store.FetchTraits(context.Background(), []int64{1, 2, 3})

	if len(got) != 1 {
		t.Errorf("len = %d, want only the chunk sent within the burst", len(got))
	}
	if src.callCount() != 1 {
		t.Errorf("source called %d times, want 1", src.callCount())
	}
	if d := testutil.ToFloat64(metrics.TraitChunks.WithLabelValues("skipped")) - skipped; d != 2 {
		t.Errorf("skipped chunks = %v, want 2", d)
	}
	if d := testutil.ToFloat64(metrics.TraitChunks.WithLabelValues("failure")) - failed; d != 0 {
		t.Errorf("failed chunks = %v, want 0", d)
	}
}

func TestChunkIDs(t *testing.T) {
	tests := []struct {
		n, size, want int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{2500, 1000, 3},
	}
	for _, tt := range tests {
		ids := make([]int64, tt.n)
		if got := len(chunkIDs(ids, tt.size)); got != tt.want {
			t.Errorf("chunkIDs(%d, %d) = %d chunks, want %d", tt.n, tt.size, got, tt.want)
		}
	}
}
