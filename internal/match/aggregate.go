// Tripmatch - Destination Guide Preference Matching and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package match

import "sort"

// Aggregator folds the tag traits of one item into an ItemTraitProfile.
type Aggregator struct {
	cfg AggregationConfig
}

// NewAggregator creates an aggregator. A zero config falls back to defaults.
func NewAggregator(cfg AggregationConfig) *Aggregator {
	if cfg.GenericPenalty <= 0 || cfg.GenericPenalty >= 1 {
		cfg.GenericPenalty = GenericPenalty
	}
	if cfg.HighConfidenceAxes <= 0 {
		cfg.HighConfidenceAxes = HighConfidenceAxes
	}
	if cfg.HighConfidenceMinTags <= 0 {
		cfg.HighConfidenceMinTags = HighConfidenceMinTags
	}
	if cfg.MediumConfidenceMinAxes <= 0 {
		cfg.MediumConfidenceMinAxes = MediumConfidenceMinAxes
	}
	return &Aggregator{cfg: cfg}
}

// effectiveWeight applies the generic-tag penalty. Non-positive weights are
// treated as 1.0 so a bad catalog row cannot cancel out an axis.
func (a *Aggregator) effectiveWeight(t *TagTrait) float64 {
	w := t.Weight
	if w <= 0 {
		w = 1.0
	}
	if t.IsGeneric {
		w *= a.cfg.GenericPenalty
	}
	return w
}

// Aggregate computes the profile for an item carrying tagIDs.
//
// Each axis is the weighted mean of the tags with a non-null score on that
// axis. Axes with no contributors default to 50. Tags are visited in
// ascending id order so floating-point summation is independent of input
// order; a tag attached twice counts once. Tags absent from traits are
// treated as "no data".
func (a *Aggregator) Aggregate(tagIDs []int64, traits map[int64]TagTrait) ItemTraitProfile {
	ids := uniqueSorted(tagIDs)

	profile := ItemTraitProfile{
		Values:       make(map[Axis]float64, axisCount),
		Contributors: make(map[Axis]int, axisCount),
		AxisWeight:   make(map[Axis]float64, axisCount),
		TagCount:     len(ids),
	}

	var sums [axisCount]float64
	for _, id := range ids {
		trait, ok := traits[id]
		if !ok {
			continue
		}
		profile.ResolvedTags++
		w := a.effectiveWeight(&trait)
		for i, axis := range Axes {
			score := trait.Axes.Get(axis)
			if score == nil {
				continue
			}
			sums[i] += w * clampFloat(*score, minAxisValue, maxAxisValue)
			profile.AxisWeight[axis] += w
			profile.Contributors[axis]++
		}
	}

	for i, axis := range Axes {
		if profile.Contributors[axis] == 0 || profile.AxisWeight[axis] == 0 {
			profile.Values[axis] = neutralAxisValue
			continue
		}
		profile.Values[axis] = sums[i] / profile.AxisWeight[axis]
	}

	profile.Confidence = a.confidence(&profile)
	return profile
}

// confidence grades the profile: high when enough axes are well covered,
// low when fewer than MediumConfidenceMinAxes have any data.
func (a *Aggregator) confidence(p *ItemTraitProfile) Confidence {
	withData, wellCovered := 0, 0
	for _, axis := range Axes {
		n := p.Contributors[axis]
		if n == 0 {
			continue
		}
		withData++
		if n >= a.cfg.HighConfidenceMinTags && p.AxisWeight[axis] >= a.cfg.HighConfidenceMinWeight {
			wellCovered++
		}
	}
	switch {
	case wellCovered >= a.cfg.HighConfidenceAxes:
		return ConfidenceHigh
	case withData < a.cfg.MediumConfidenceMinAxes:
		return ConfidenceLow
	default:
		return ConfidenceMedium
	}
}

func uniqueSorted(ids []int64) []int64 {
	if len(ids) == 0 {
		return nil
	}
	out := make([]int64, 0, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
