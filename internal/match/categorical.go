// Tripmatch - Destination Guide Preference Matching and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package match

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// AnyValue is the neutral value of every categorical preference.
const AnyValue = "any"

// Known categorical vocabularies. Unknown preference values are coerced to
// AnyValue; unknown restaurant values are kept but never match.
var (
	PriceBuckets = []string{"$", "$$", "$$$", "$$$$"}
	Atmospheres  = []string{"casual", "cozy", "family_friendly", "lively", "quiet", "romantic", "upscale"}
	MealTimes    = []string{"breakfast", "brunch", "lunch", "dinner", "late_night"}
	GroupSizes   = []string{"solo", "couple", "small_group", "large_group"}
)

// priceDiningStyle maps a price bucket to a default dining style when the
// record carries none: cheaper places lean quick and casual.
var priceDiningStyle = map[string]int{"$": 20, "$$": 45, "$$$": 70, "$$$$": 90}

// RestaurantPreferences is the categorical preference model for restaurants.
type RestaurantPreferences struct {
	PriceRange  string   `json:"price_range"`
	Atmosphere  string   `json:"atmosphere"`
	DiningStyle *int     `json:"dining_style,omitempty"`
	MealTime    string   `json:"meal_time"`
	GroupSize   string   `json:"group_size"`
	Features    []string `json:"features"`
}

// NormalizeRestaurantPreferences coerces every field into its valid domain:
// unknown enum values become "any", dining style is clamped and defaults
// to 50, features are normalized, de-duplicated and sorted.
func NormalizeRestaurantPreferences(p RestaurantPreferences) RestaurantPreferences {
	out := RestaurantPreferences{
		PriceRange: AnyValue,
		Atmosphere: coerceEnum(p.Atmosphere, Atmospheres),
		MealTime:   coerceEnum(p.MealTime, MealTimes),
		GroupSize:  coerceEnum(p.GroupSize, GroupSizes),
		Features:   normalizeSet(p.Features),
	}
	if bucket, ok := parsePriceBucket(p.PriceRange); ok && bucket != "" {
		out.PriceRange = bucket
	}
	style := neutralAxisValue
	if p.DiningStyle != nil {
		style = clampInt(*p.DiningStyle, minAxisValue, maxAxisValue)
	}
	out.DiningStyle = &style
	return out
}

// RestaurantStructuredValues is the normalized form of a raw restaurant.
// Err is set when the source record could not be interpreted.
type RestaurantStructuredValues struct {
	ID               string   `json:"id"`
	PriceBucket      string   `json:"price_bucket"`
	Cuisines         []string `json:"cuisines"`
	Atmosphere       []string `json:"atmosphere"`
	Features         []string `json:"features"`
	MealTimes        []string `json:"meal_times"`
	GroupSizes       []string `json:"group_sizes"`
	DiningStyle      int      `json:"dining_style"`
	DiningStyleKnown bool     `json:"dining_style_known"`
	Err              error    `json:"-"`
}

// Errors reported through RestaurantStructuredValues.Err.
var (
	ErrMissingRecord     = errors.New("restaurant record is missing")
	ErrMissingIdentifier = errors.New("restaurant record has no id")
	ErrUnknownPriceLevel = errors.New("unrecognized price level")
)

// DeriveStructuredValues normalizes a raw restaurant record. It never
// panics; malformed records come back with Err set.
func DeriveStructuredValues(r *Restaurant) RestaurantStructuredValues {
	if r == nil {
		return RestaurantStructuredValues{Err: ErrMissingRecord}
	}
	v := RestaurantStructuredValues{ID: r.ID}
	if strings.TrimSpace(r.ID) == "" {
		v.Err = ErrMissingIdentifier
		return v
	}
	bucket, ok := parsePriceBucket(r.PriceLevel)
	if !ok {
		v.Err = fmt.Errorf("%w: %q", ErrUnknownPriceLevel, r.PriceLevel)
		return v
	}
	if bucket == AnyValue {
		bucket = ""
	}
	v.PriceBucket = bucket
	v.Cuisines = normalizeSet(r.Cuisines)
	v.Atmosphere = normalizeSet(r.Atmosphere)
	v.Features = normalizeSet(r.Features)
	v.MealTimes = normalizeSet(r.MealTimes)
	v.GroupSizes = normalizeSet(r.GroupSizes)

	switch {
	case r.DiningStyle != nil:
		v.DiningStyle = clampInt(*r.DiningStyle, minAxisValue, maxAxisValue)
		v.DiningStyleKnown = true
	case bucket != "":
		v.DiningStyle = priceDiningStyle[bucket]
		v.DiningStyleKnown = true
	default:
		v.DiningStyle = neutralAxisValue
	}
	return v
}

// parsePriceBucket maps "$".."$$$$", "1".."4" and common words onto a
// bucket. An empty input returns ("", true); ok is false when unparseable.
func parsePriceBucket(raw string) (string, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return "", true
	}
	if s == AnyValue {
		return AnyValue, true
	}
	if strings.Trim(s, "$") == "" {
		return PriceBuckets[clampInt(len(s), 1, len(PriceBuckets))-1], true
	}
	if n, err := strconv.Atoi(s); err == nil {
		return PriceBuckets[clampInt(n, 1, len(PriceBuckets))-1], true
	}
	switch normalizeTag(s) {
	case "inexpensive", "cheap", "budget":
		return "$", true
	case "moderate", "mid_range", "midrange":
		return "$$", true
	case "expensive", "upscale":
		return "$$$", true
	case "very_expensive", "luxury":
		return "$$$$", true
	}
	return "", false
}

func coerceEnum(raw string, allowed []string) string {
	s := normalizeTag(raw)
	for _, a := range allowed {
		if s == a {
			return s
		}
	}
	return AnyValue
}

func normalizeTag(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(s)
}

func normalizeSet(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, raw := range in {
		s := normalizeTag(raw)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func contains(set []string, v string) bool {
	i := sort.SearchStrings(set, v)
	return i < len(set) && set[i] == v
}

// CategoricalResult is the score of one restaurant.
type CategoricalResult struct {
	Score      int        `json:"score"`
	Confidence Confidence `json:"confidence"`
	Reasons    []string   `json:"reasons"`
}

// CategoricalMatcher scores restaurants by additive field agreement.
type CategoricalMatcher struct {
	cfg CategoricalConfig
}

// NewCategoricalMatcher creates a matcher with the given point table. A
// table awarding no points at all is replaced by the default one.
func NewCategoricalMatcher(cfg CategoricalConfig) *CategoricalMatcher {
	if cfg.PricePoints <= 0 && cfg.AtmospherePoints <= 0 && cfg.MealTimePoints <= 0 &&
		cfg.GroupSizePoints <= 0 && cfg.DiningStylePoints <= 0 && cfg.FeaturePoints <= 0 {
		cfg = DefaultConfig().Categorical
	}
	return &CategoricalMatcher{cfg: cfg}
}

// Score rates values against prefs.
//
// Price, atmosphere, meal time and group size each earn their full points
// on a match or when the preference is "any". Dining style earns points in
// proportion to 100 - |pref - value|. Each requested feature present earns
// FeaturePoints up to FeatureCap; an empty feature request counts as fully
// matched. Fields the restaurant has no data for earn UnknownFraction of
// their points. The total is normalized to [0,100]. A record with Err set
// scores 0 with a reason describing the gap.
func (m *CategoricalMatcher) Score(prefs RestaurantPreferences, values RestaurantStructuredValues) CategoricalResult {
	if values.Err != nil {
		return CategoricalResult{
			Score:      0,
			Confidence: ConfidenceLow,
			Reasons:    []string{fmt.Sprintf("restaurant details unavailable: %v", values.Err)},
		}
	}
	prefs = NormalizeRestaurantPreferences(prefs)

	var earned, possible float64
	var reasons []string
	known := 0

	exact := func(label, want string, have []string, points float64) {
		possible += points
		if len(have) > 0 {
			known++
		}
		switch {
		case want == AnyValue:
			earned += points
		case len(have) == 0:
			earned += points * m.cfg.UnknownFraction
			reasons = append(reasons, fmt.Sprintf("no %s information", label))
		case contains(have, want):
			earned += points
			reasons = append(reasons, fmt.Sprintf("%s matches: %s", label, want))
		default:
			reasons = append(reasons, fmt.Sprintf("%s is not %s", label, want))
		}
	}

	var price []string
	if values.PriceBucket != "" {
		price = []string{values.PriceBucket}
	}
	exact("price range", prefs.PriceRange, price, m.cfg.PricePoints)
	exact("atmosphere", prefs.Atmosphere, values.Atmosphere, m.cfg.AtmospherePoints)
	exact("meal time", prefs.MealTime, values.MealTimes, m.cfg.MealTimePoints)
	exact("group size", prefs.GroupSize, values.GroupSizes, m.cfg.GroupSizePoints)

	possible += m.cfg.DiningStylePoints
	if values.DiningStyleKnown {
		known++
		sim := clampFloat(maxAxisValue-math.Abs(float64(*prefs.DiningStyle-values.DiningStyle)), minAxisValue, maxAxisValue)
		earned += m.cfg.DiningStylePoints * sim / maxAxisValue
		if sim >= strongMatchSimilarity {
			reasons = append(reasons, "dining style fits")
		} else if sim < weakMatchSimilarity {
			reasons = append(reasons, "dining style differs from your preference")
		}
	} else {
		earned += m.cfg.DiningStylePoints * m.cfg.UnknownFraction
	}

	if len(prefs.Features) == 0 {
		possible += m.cfg.FeatureCap
		earned += m.cfg.FeatureCap
	} else {
		possible += math.Min(float64(len(prefs.Features))*m.cfg.FeaturePoints, m.cfg.FeatureCap)
		matched := 0
		for _, f := range prefs.Features {
			if contains(values.Features, f) {
				matched++
				reasons = append(reasons, fmt.Sprintf("has %s", strings.ReplaceAll(f, "_", " ")))
			} else {
				reasons = append(reasons, fmt.Sprintf("no %s", strings.ReplaceAll(f, "_", " ")))
			}
		}
		earned += math.Min(float64(matched)*m.cfg.FeaturePoints, m.cfg.FeatureCap)
	}

	score := neutralAxisValue
	if possible > 0 {
		score = clampInt(int(math.Round(earned/possible*maxAxisValue)), minAxisValue, maxAxisValue)
	}

	return CategoricalResult{
		Score:      score,
		Confidence: restaurantConfidence(known),
		Reasons:    reasons,
	}
}

func restaurantConfidence(knownFields int) Confidence {
	switch {
	case knownFields >= 4:
		return ConfidenceHigh
	case knownFields >= 2:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}
