// Tripmatch - Destination Guide Preference Matching and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package match

import (
	"math/rand"
	"strings"
	"testing"
)

func newTestScorer() *Scorer {
	return NewScorer(DefaultConfig().Scoring)
}

// profileWith builds a data-backed profile from explicit axis values;
// axes not listed are neutral.
func profileWith(values map[Axis]float64) ItemTraitProfile {
	p := fullProfile(DefaultPreferences())
	for a, v := range values {
		p.Values[a] = v
	}
	return p
}

func TestScore_Identity(t *testing.T) {
	prefs := []PreferenceVector{
		DefaultPreferences(),
		{Adventure: 0, ExplorationVsRelaxation: 100, GroupIntimacy: 20, PriceComfort: 80, GuidanceStructure: 35, FoodAndDrinkInterest: 90},
		{Adventure: 100, ExplorationVsRelaxation: 0, GroupIntimacy: 100, PriceComfort: 0, GuidanceStructure: 100, FoodAndDrinkInterest: 0},
	}
	s := newTestScorer()
	for _, p := range prefs {
		if got := s.Score(p, fullProfile(p)).Score; got != 100 {
			t.Errorf("Score(%+v) = %d, want 100", p, got)
		}
	}
}

func TestScore_Range(t *testing.T) {
	rng := rand.New(rand.NewSource(42)) //nolint:gosec // deterministic test data
	s := newTestScorer()

	for i := 0; i < 500; i++ {
		p := PreferenceVector{
			Adventure:               rng.Intn(101),
			ExplorationVsRelaxation: rng.Intn(101),
			GroupIntimacy:           rng.Intn(101),
			PriceComfort:            rng.Intn(101),
			GuidanceStructure:       rng.Intn(101),
			FoodAndDrinkInterest:    rng.Intn(101),
		}
		profile := profileWith(map[Axis]float64{
			AxisAdventure:               rng.Float64() * 100,
			AxisExplorationVsRelaxation: rng.Float64() * 100,
			AxisGroupIntimacy:           rng.Float64() * 100,
			AxisPriceComfort:            rng.Float64() * 100,
			AxisGuidanceStructure:       rng.Float64() * 100,
			AxisFoodAndDrink:            rng.Float64() * 100,
		})
		res := s.Score(p, profile)
		if res.Score < 0 || res.Score > 100 {
			t.Fatalf("Score = %d out of range for %+v", res.Score, p)
		}
		if again := s.Score(p, profile); again != res {
			t.Fatalf("Score not deterministic: %+v vs %+v", res, again)
		}
	}
}

func TestScore_NoTags(t *testing.T) {
	s := newTestScorer()
	empty := newTestAggregator().Aggregate(nil, nil)

	res := s.Score(PreferenceVector{Adventure: 100, FoodAndDrinkInterest: 100}, empty)

	if res.Score != 50 {
		t.Errorf("Score = %d, want 50", res.Score)
	}
	if res.Confidence != ConfidenceLow {
		t.Errorf("Confidence = %s, want low", res.Confidence)
	}
}

func TestScore_NoResolvedTraits(t *testing.T) {
	s := newTestScorer()
	profile := newTestAggregator().Aggregate([]int64{1, 2, 3}, map[int64]TagTrait{})

	res := s.Score(PreferenceVector{Adventure: 0, PriceComfort: 100}, profile)

	if res.Score != 50 {
		t.Errorf("Score = %d, want 50", res.Score)
	}
}

func TestScore_FoodAxisWeight(t *testing.T) {
	tests := []struct {
		name        string
		foodPref    int
		foodProfile float64
		want        int
	}{
		{name: "boosted well above threshold", foodPref: 80, foodProfile: 20, want: 83},
		{name: "boosted at threshold", foodPref: 66, foodProfile: 16, want: 86},
		{name: "not boosted below threshold", foodPref: 65, foodProfile: 15, want: 92},
		{name: "perfect food match", foodPref: 90, foodProfile: 90, want: 100},
	}

	s := newTestScorer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultPreferences()
			p.FoodAndDrinkInterest = tt.foodPref
			profile := profileWith(map[Axis]float64{AxisFoodAndDrink: tt.foodProfile})

			if got := s.Score(p, profile).Score; got != tt.want {
				t.Errorf("Score = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestScore_ConfidenceDowngrade(t *testing.T) {
	s := newTestScorer()
	profile := fullProfile(DefaultPreferences())
	profile.TagCount = 0

	if got := s.Score(DefaultPreferences(), profile).Confidence; got != ConfidenceMedium {
		t.Errorf("Confidence = %s, want medium after downgrade", got)
	}
}

func TestScore_ClampsPreference(t *testing.T) {
	s := newTestScorer()
	p := PreferenceVector{Adventure: 250, ExplorationVsRelaxation: 50, GroupIntimacy: 50, PriceComfort: 50, GuidanceStructure: 50, FoodAndDrinkInterest: 50}
	profile := profileWith(map[Axis]float64{AxisAdventure: 100})

	if got := s.Score(p, profile).Score; got != 100 {
		t.Errorf("Score = %d, want 100 with clamped adventure", got)
	}
}

func TestConfidence_Downgrade(t *testing.T) {
	tests := []struct {
		in, want Confidence
	}{
		{ConfidenceHigh, ConfidenceMedium},
		{ConfidenceMedium, ConfidenceLow},
		{ConfidenceLow, ConfidenceLow},
	}
	for _, tt := range tests {
		if got := tt.in.Downgrade(); got != tt.want {
			t.Errorf("%s.Downgrade() = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestExplain_Reasons(t *testing.T) {
	s := newTestScorer()

	t.Run("no tags", func(t *testing.T) {
		_, axes, reasons := s.Explain(DefaultPreferences(), newTestAggregator().Aggregate(nil, nil))
		if len(axes) != len(Axes) {
			t.Errorf("axes = %d, want %d", len(axes), len(Axes))
		}
		if len(reasons) != 1 || !strings.Contains(reasons[0], "no descriptive tags") {
			t.Errorf("reasons = %v", reasons)
		}
	})

	t.Run("unresolved tags", func(t *testing.T) {
		_, _, reasons := s.Explain(DefaultPreferences(), newTestAggregator().Aggregate([]int64{9}, nil))
		if len(reasons) != 1 || !strings.Contains(reasons[0], "unavailable") {
			t.Errorf("reasons = %v", reasons)
		}
	})

	t.Run("strongest first", func(t *testing.T) {
		p := DefaultPreferences()
		p.Adventure = 100
		profile := profileWith(map[Axis]float64{AxisAdventure: 10})

		res, axes, reasons := s.Explain(p, profile)
		if res.Score != s.Score(p, profile).Score {
			t.Errorf("Explain score %d differs from Score", res.Score)
		}
		if len(reasons) != len(Axes) {
			t.Fatalf("reasons = %v", reasons)
		}
		if !strings.HasPrefix(reasons[0], "strong match") {
			t.Errorf("first reason = %q, want a strong match", reasons[0])
		}
		found := false
		for _, r := range reasons {
			if strings.Contains(r, "differs from your preference by 90 points") {
				found = true
			}
		}
		if !found {
			t.Errorf("missing adventure mismatch reason in %v", reasons)
		}
		if axes[0].Axis != AxisAdventure || axes[0].Similarity != 10 {
			t.Errorf("axes[0] = %+v", axes[0])
		}
	})
}
