// Tripmatch - Destination Guide Preference Matching and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package match

import (
	"math"
	"reflect"
	"testing"
)

func newTestAggregator() *Aggregator {
	return NewAggregator(DefaultConfig().Aggregation)
}

func TestAggregate_NoTags(t *testing.T) {
	profile := newTestAggregator().Aggregate(nil, map[int64]TagTrait{})

	for _, a := range Axes {
		if got := profile.Value(a); got != 50 {
			t.Errorf("axis %s = %v, want 50", a, got)
		}
	}
	if profile.Confidence != ConfidenceLow {
		t.Errorf("Confidence = %s, want low", profile.Confidence)
	}
	if profile.TagCount != 0 || profile.HasData() {
		t.Errorf("TagCount = %d, HasData = %v; want 0, false", profile.TagCount, profile.HasData())
	}
}

func TestAggregate_NullAxisExcluded(t *testing.T) {
	traits := map[int64]TagTrait{
		1: {TagID: 1, Weight: 1, Axes: AxisScores{Adventure: floatPtr(80)}},
		2: {TagID: 2, Weight: 1, Axes: AxisScores{FoodAndDrink: floatPtr(20)}},
	}

	profile := newTestAggregator().Aggregate([]int64{1, 2}, traits)

	if got := profile.Value(AxisAdventure); got != 80 {
		t.Errorf("adventure = %v, want 80 (null must not count as zero)", got)
	}
	if got := profile.Value(AxisFoodAndDrink); got != 20 {
		t.Errorf("food = %v, want 20", got)
	}
	if got := profile.Value(AxisGroupIntimacy); got != 50 {
		t.Errorf("group intimacy = %v, want neutral 50", got)
	}
	if profile.Contributors[AxisAdventure] != 1 || profile.Contributors[AxisGroupIntimacy] != 0 {
		t.Errorf("Contributors = %v", profile.Contributors)
	}
}

func TestAggregate_GenericPenalty(t *testing.T) {
	traits := map[int64]TagTrait{
		1: {TagID: 1, Weight: 1, Axes: AxisScores{Adventure: floatPtr(100)}},
		2: {TagID: 2, Weight: 1, IsGeneric: true, Axes: AxisScores{Adventure: floatPtr(0)}},
	}

	profile := newTestAggregator().Aggregate([]int64{1, 2}, traits)

	want := 100.0 / 1.3
	if got := profile.Value(AxisAdventure); math.Abs(got-want) > 1e-9 {
		t.Errorf("adventure = %v, want %v", got, want)
	}
	if got := profile.AxisWeight[AxisAdventure]; math.Abs(got-1.3) > 1e-9 {
		t.Errorf("axis weight = %v, want 1.3", got)
	}
}

func TestAggregate_TagWeight(t *testing.T) {
	traits := map[int64]TagTrait{
		1: {TagID: 1, Weight: 3, Axes: AxisScores{PriceComfort: floatPtr(90)}},
		2: {TagID: 2, Weight: 1, Axes: AxisScores{PriceComfort: floatPtr(10)}},
		3: {TagID: 3, Weight: -2, Axes: AxisScores{GuidanceStructure: floatPtr(40)}},
	}

	profile := newTestAggregator().Aggregate([]int64{1, 2, 3}, traits)

	if got := profile.Value(AxisPriceComfort); got != 70 {
		t.Errorf("price comfort = %v, want 70", got)
	}
	// non-positive weights fall back to 1.0
	if got := profile.AxisWeight[AxisGuidanceStructure]; got != 1 {
		t.Errorf("guidance weight = %v, want 1", got)
	}
}

func TestAggregate_OrderIndependent(t *testing.T) {
	traits := map[int64]TagTrait{
		3:  {TagID: 3, Weight: 0.7, Axes: AxisScores{Adventure: floatPtr(33.3), PriceComfort: floatPtr(12)}},
		11: {TagID: 11, Weight: 1.9, Axes: AxisScores{Adventure: floatPtr(71.1), FoodAndDrink: floatPtr(66)}},
		7:  {TagID: 7, Weight: 0.1, IsGeneric: true, Axes: AxisScores{Adventure: floatPtr(99.9)}},
		5:  {TagID: 5, Weight: 2.2, Axes: AxisScores{PriceComfort: floatPtr(88.8), FoodAndDrink: floatPtr(1)}},
	}
	agg := newTestAggregator()

	a := agg.Aggregate([]int64{3, 11, 7, 5}, traits)
	b := agg.Aggregate([]int64{5, 7, 11, 3}, traits)
	c := agg.Aggregate([]int64{11, 5, 3, 7, 11}, traits)

	if !reflect.DeepEqual(a, b) || !reflect.DeepEqual(a, c) {
		t.Errorf("profiles differ by input order:\n%+v\n%+v\n%+v", a, b, c)
	}
	if c.TagCount != 4 {
		t.Errorf("TagCount = %d, want 4 (duplicates count once)", c.TagCount)
	}
}

func TestAggregate_MissingTraits(t *testing.T) {
	traits := map[int64]TagTrait{
		1: {TagID: 1, Weight: 1, Axes: AxisScores{Adventure: floatPtr(60)}},
	}

	profile := newTestAggregator().Aggregate([]int64{1, 2, 3}, traits)

	if profile.TagCount != 3 || profile.ResolvedTags != 1 {
		t.Errorf("TagCount = %d, ResolvedTags = %d; want 3, 1", profile.TagCount, profile.ResolvedTags)
	}
	if got := profile.Value(AxisAdventure); got != 60 {
		t.Errorf("adventure = %v, want 60", got)
	}
}

func TestAggregate_Confidence(t *testing.T) {
	full := AxisScores{
		Adventure:               floatPtr(70),
		ExplorationVsRelaxation: floatPtr(40),
		GroupIntimacy:           floatPtr(20),
	}

	tests := []struct {
		name   string
		tagIDs []int64
		traits map[int64]TagTrait
		want   Confidence
	}{
		{
			name:   "three well covered axes is high",
			tagIDs: []int64{1, 2},
			traits: map[int64]TagTrait{
				1: {TagID: 1, Weight: 1, Axes: full},
				2: {TagID: 2, Weight: 1, Axes: full},
			},
			want: ConfidenceHigh,
		},
		{
			name:   "enough tags but too little weight is medium",
			tagIDs: []int64{1, 2},
			traits: map[int64]TagTrait{
				1: {TagID: 1, Weight: 1, IsGeneric: true, Axes: full},
				2: {TagID: 2, Weight: 1, IsGeneric: true, Axes: full},
			},
			want: ConfidenceMedium,
		},
		{
			name:   "two axes with data is medium",
			tagIDs: []int64{1},
			traits: map[int64]TagTrait{
				1: {TagID: 1, Weight: 1, Axes: AxisScores{Adventure: floatPtr(10), PriceComfort: floatPtr(90)}},
			},
			want: ConfidenceMedium,
		},
		{
			name:   "one axis with data is low",
			tagIDs: []int64{1, 2},
			traits: map[int64]TagTrait{
				1: {TagID: 1, Weight: 5, Axes: AxisScores{Adventure: floatPtr(10)}},
				2: {TagID: 2, Weight: 5, Axes: AxisScores{Adventure: floatPtr(30)}},
			},
			want: ConfidenceLow,
		},
		{
			name:   "tags without traits is low",
			tagIDs: []int64{1, 2, 3},
			traits: map[int64]TagTrait{},
			want:   ConfidenceLow,
		},
	}

	agg := newTestAggregator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := agg.Aggregate(tt.tagIDs, tt.traits).Confidence
			if got != tt.want {
				t.Errorf("Confidence = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestAggregate_ClampsScores(t *testing.T) {
	traits := map[int64]TagTrait{
		1: {TagID: 1, Weight: 1, Axes: AxisScores{Adventure: floatPtr(140), PriceComfort: floatPtr(-40)}},
	}
	profile := newTestAggregator().Aggregate([]int64{1}, traits)
	if profile.Value(AxisAdventure) != 100 || profile.Value(AxisPriceComfort) != 0 {
		t.Errorf("values not clamped: %v", profile.Values)
	}
}

func TestNewAggregator_Defaults(t *testing.T) {
	agg := NewAggregator(AggregationConfig{})
	if agg.cfg.GenericPenalty != GenericPenalty {
		t.Errorf("GenericPenalty = %v, want %v", agg.cfg.GenericPenalty, GenericPenalty)
	}
	if agg.cfg.HighConfidenceAxes != HighConfidenceAxes {
		t.Errorf("HighConfidenceAxes = %d, want %d", agg.cfg.HighConfidenceAxes, HighConfidenceAxes)
	}
}
