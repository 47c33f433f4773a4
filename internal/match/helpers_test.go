// Tripmatch - Destination Guide Preference Matching and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package match

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

// fullProfile returns a profile whose every axis equals the preference
// and has enough contributors to count as data-backed.
func fullProfile(p PreferenceVector) ItemTraitProfile {
	profile := ItemTraitProfile{
		Values:       make(map[Axis]float64),
		Contributors: make(map[Axis]int),
		AxisWeight:   make(map[Axis]float64),
		TagCount:     3,
		ResolvedTags: 3,
		Confidence:   ConfidenceHigh,
	}
	for _, a := range Axes {
		profile.Values[a] = float64(p.Get(a))
		profile.Contributors[a] = 3
		profile.AxisWeight[a] = 3
	}
	return profile
}
