// Tripmatch - Destination Guide Preference Matching and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package match

import (
	"fmt"
	"math"
	"sort"
)

// Scorer computes continuous-axis similarity between a preference vector
// and a tour profile.
type Scorer struct {
	cfg ScoringConfig
}

// NewScorer creates a scorer. A zero config falls back to defaults.
func NewScorer(cfg ScoringConfig) *Scorer {
	if cfg.FoodAxisWeight < 1 {
		cfg.FoodAxisWeight = FoodAxisWeight
	}
	if cfg.FoodInterestThreshold <= 0 {
		cfg.FoodInterestThreshold = FoodInterestThreshold
	}
	return &Scorer{cfg: cfg}
}

// axisWeight returns the weight of an axis for a preference vector.
func (s *Scorer) axisWeight(pref PreferenceVector, a Axis) float64 {
	if a == AxisFoodAndDrink && pref.FoodAndDrinkInterest >= s.cfg.FoodInterestThreshold {
		return s.cfg.FoodAxisWeight
	}
	return 1.0
}

// Score returns the match of pref against profile.
//
// Per axis, similarity is 100 - |pref - profile|; axes are combined by a
// weighted mean where only the food axis can carry extra weight. The
// result is rounded half away from zero and clamped to [0,100].
//
// An item whose tags resolved no axis data scores exactly 50. When the
// item carries no tags at all its confidence also drops one tier.
func (s *Scorer) Score(pref PreferenceVector, profile ItemTraitProfile) MatchResult {
	res, _ := s.score(pref.Clamp(), profile)
	return res
}

func (s *Scorer) score(pref PreferenceVector, profile ItemTraitProfile) (MatchResult, []AxisExplanation) {
	confidence := profile.Confidence
	if confidence == "" {
		confidence = ConfidenceLow
	}
	if profile.TagCount == 0 {
		confidence = confidence.Downgrade()
	}

	axes := make([]AxisExplanation, 0, axisCount)
	var sum, total float64
	for _, a := range Axes {
		p := pref.Get(a)
		v := clampFloat(profile.Value(a), minAxisValue, maxAxisValue)
		sim := clampFloat(maxAxisValue-math.Abs(float64(p)-v), minAxisValue, maxAxisValue)
		w := s.axisWeight(pref, a)
		sum += sim * w
		total += w
		axes = append(axes, AxisExplanation{
			Axis:         a,
			Preference:   p,
			Profile:      v,
			Similarity:   sim,
			Weight:       w,
			Contributors: profile.Contributors[a],
		})
	}

	if !profile.HasData() {
		return MatchResult{Score: neutralAxisValue, Confidence: confidence}, axes
	}

	score := neutralAxisValue
	if total > 0 {
		score = clampInt(int(math.Round(sum/total)), minAxisValue, maxAxisValue)
	}
	return MatchResult{Score: score, Confidence: confidence}, axes
}

// Explain returns the score plus per-axis breakdown and reasons, strongest
// impact first.
func (s *Scorer) Explain(pref PreferenceVector, profile ItemTraitProfile) (MatchResult, []AxisExplanation, []string) {
	res, axes := s.score(pref.Clamp(), profile)
	return res, axes, tourReasons(profile, axes)
}

const (
	strongMatchSimilarity = 85
	weakMatchSimilarity   = 60
)

func tourReasons(profile ItemTraitProfile, axes []AxisExplanation) []string {
	if profile.TagCount == 0 {
		return []string{"no descriptive tags for this tour, assuming an average fit"}
	}
	if !profile.HasData() {
		return []string{"tag details are unavailable right now, assuming an average fit"}
	}

	type ranked struct {
		text   string
		impact float64
		order  int
	}
	var list []ranked
	for i, ax := range axes {
		if ax.Contributors == 0 {
			list = append(list, ranked{
				text:   fmt.Sprintf("no tag data for %s", ax.Axis.Label()),
				impact: 0,
				order:  i,
			})
			continue
		}
		diff := maxAxisValue - ax.Similarity
		switch {
		case ax.Similarity >= strongMatchSimilarity:
			list = append(list, ranked{
				text:   fmt.Sprintf("strong match on %s", ax.Axis.Label()),
				impact: ax.Similarity * ax.Weight,
				order:  i,
			})
		case ax.Similarity < weakMatchSimilarity:
			list = append(list, ranked{
				text:   fmt.Sprintf("%s differs from your preference by %d points", ax.Axis.Label(), int(math.Round(diff))),
				impact: diff * ax.Weight,
				order:  i,
			})
		default:
			list = append(list, ranked{
				text:   fmt.Sprintf("partial match on %s", ax.Axis.Label()),
				impact: ax.Similarity * ax.Weight / 2,
				order:  i,
			})
		}
	}

	sort.SliceStable(list, func(i, j int) bool {
		if list[i].impact != list[j].impact {
			return list[i].impact > list[j].impact
		}
		return list[i].order < list[j].order
	})

	out := make([]string, len(list))
	for i, r := range list {
		out[i] = r.text
	}
	return out
}
