// Tripmatch - Destination Guide Preference Matching and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package match

// Axis identifies one of the six continuous traits shared by traveler
// preferences and tour profiles.
type Axis string

const (
	AxisAdventure               Axis = "adventure"
	AxisExplorationVsRelaxation Axis = "exploration_vs_relaxation"
	AxisGroupIntimacy           Axis = "group_intimacy"
	AxisPriceComfort            Axis = "price_comfort"
	AxisGuidanceStructure       Axis = "guidance_structure"
	AxisFoodAndDrink            Axis = "food_and_drink"
)

const (
	axisCount        = 6
	neutralAxisValue = 50
	minAxisValue     = 0
	maxAxisValue     = 100
)

// Axes lists every axis in canonical order. Summation, reasons and
// explanations always walk axes in this order.
var Axes = [axisCount]Axis{
	AxisAdventure,
	AxisExplorationVsRelaxation,
	AxisGroupIntimacy,
	AxisPriceComfort,
	AxisGuidanceStructure,
	AxisFoodAndDrink,
}

// Label returns a human-readable name for the axis.
func (a Axis) Label() string {
	switch a {
	case AxisAdventure:
		return "adventure"
	case AxisExplorationVsRelaxation:
		return "exploration vs. relaxation"
	case AxisGroupIntimacy:
		return "group intimacy"
	case AxisPriceComfort:
		return "price comfort"
	case AxisGuidanceStructure:
		return "guidance structure"
	case AxisFoodAndDrink:
		return "food and drink"
	default:
		return string(a)
	}
}

// PreferenceVector is a complete tour preference: every axis is set and
// within [0,100].
type PreferenceVector struct {
	Adventure               int `json:"adventure"`
	ExplorationVsRelaxation int `json:"exploration_vs_relaxation"`
	GroupIntimacy           int `json:"group_intimacy"`
	PriceComfort            int `json:"price_comfort"`
	GuidanceStructure       int `json:"guidance_structure"`
	FoodAndDrinkInterest    int `json:"food_and_drink_interest"`
}

// DefaultPreferences returns the balanced all-50 vector.
func DefaultPreferences() PreferenceVector {
	return PreferenceVector{
		Adventure:               neutralAxisValue,
		ExplorationVsRelaxation: neutralAxisValue,
		GroupIntimacy:           neutralAxisValue,
		PriceComfort:            neutralAxisValue,
		GuidanceStructure:       neutralAxisValue,
		FoodAndDrinkInterest:    neutralAxisValue,
	}
}

// OrDefault dereferences p, substituting the balanced vector for nil.
func OrDefault(p *PreferenceVector) PreferenceVector {
	if p == nil {
		return DefaultPreferences()
	}
	return p.Clamp()
}

// Get returns the preference value for an axis.
func (p PreferenceVector) Get(a Axis) int {
	switch a {
	case AxisAdventure:
		return p.Adventure
	case AxisExplorationVsRelaxation:
		return p.ExplorationVsRelaxation
	case AxisGroupIntimacy:
		return p.GroupIntimacy
	case AxisPriceComfort:
		return p.PriceComfort
	case AxisGuidanceStructure:
		return p.GuidanceStructure
	case AxisFoodAndDrink:
		return p.FoodAndDrinkInterest
	default:
		return neutralAxisValue
	}
}

func (p *PreferenceVector) set(a Axis, v int) {
	switch a {
	case AxisAdventure:
		p.Adventure = v
	case AxisExplorationVsRelaxation:
		p.ExplorationVsRelaxation = v
	case AxisGroupIntimacy:
		p.GroupIntimacy = v
	case AxisPriceComfort:
		p.PriceComfort = v
	case AxisGuidanceStructure:
		p.GuidanceStructure = v
	case AxisFoodAndDrink:
		p.FoodAndDrinkInterest = v
	}
}

// Clamp returns a copy with every axis bounded to [0,100].
func (p PreferenceVector) Clamp() PreferenceVector {
	out := p
	for _, a := range Axes {
		out.set(a, clampInt(p.Get(a), minAxisValue, maxAxisValue))
	}
	return out
}

// PreferenceInput is a partially specified preference, as stored per device
// or per profile and as sent by clients. A nil field is unset.
type PreferenceInput struct {
	Adventure               *int `json:"adventure,omitempty"`
	ExplorationVsRelaxation *int `json:"exploration_vs_relaxation,omitempty"`
	GroupIntimacy           *int `json:"group_intimacy,omitempty"`
	PriceComfort            *int `json:"price_comfort,omitempty"`
	GuidanceStructure       *int `json:"guidance_structure,omitempty"`
	FoodAndDrinkInterest    *int `json:"food_and_drink_interest,omitempty"`
}

// Get returns the value for an axis, or nil when unset.
func (p *PreferenceInput) Get(a Axis) *int {
	if p == nil {
		return nil
	}
	switch a {
	case AxisAdventure:
		return p.Adventure
	case AxisExplorationVsRelaxation:
		return p.ExplorationVsRelaxation
	case AxisGroupIntimacy:
		return p.GroupIntimacy
	case AxisPriceComfort:
		return p.PriceComfort
	case AxisGuidanceStructure:
		return p.GuidanceStructure
	case AxisFoodAndDrink:
		return p.FoodAndDrinkInterest
	default:
		return nil
	}
}

// IsEmpty reports whether no axis is set.
func (p *PreferenceInput) IsEmpty() bool {
	if p == nil {
		return true
	}
	for _, a := range Axes {
		if p.Get(a) != nil {
			return false
		}
	}
	return true
}

// AxisScores holds one optional score per axis. A nil score means the tag
// carries no signal for that axis.
type AxisScores struct {
	Adventure               *float64 `json:"adventure"`
	ExplorationVsRelaxation *float64 `json:"exploration_vs_relaxation"`
	GroupIntimacy           *float64 `json:"group_intimacy"`
	PriceComfort            *float64 `json:"price_comfort"`
	GuidanceStructure       *float64 `json:"guidance_structure"`
	FoodAndDrink            *float64 `json:"food_and_drink"`
}

// Get returns the score for an axis, or nil when the tag has no signal.
func (s AxisScores) Get(a Axis) *float64 {
	switch a {
	case AxisAdventure:
		return s.Adventure
	case AxisExplorationVsRelaxation:
		return s.ExplorationVsRelaxation
	case AxisGroupIntimacy:
		return s.GroupIntimacy
	case AxisPriceComfort:
		return s.PriceComfort
	case AxisGuidanceStructure:
		return s.GuidanceStructure
	case AxisFoodAndDrink:
		return s.FoodAndDrink
	default:
		return nil
	}
}

// TagTrait is the trait vector of a descriptive tag.
type TagTrait struct {
	TagID     int64      `json:"tag_id"`
	Name      string     `json:"name"`
	Axes      AxisScores `json:"axis_scores"`
	Weight    float64    `json:"tag_weight"`
	IsGeneric bool       `json:"is_generic"`
}

// Confidence is a coarse indicator of how much tag data backed a profile.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Downgrade returns the next lower tier. Low stays low.
func (c Confidence) Downgrade() Confidence {
	switch c {
	case ConfidenceHigh:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// ItemTraitProfile is the aggregated six-axis character of a tour.
type ItemTraitProfile struct {
	// Values holds the weighted mean per axis; 50 when the axis has no data.
	Values map[Axis]float64 `json:"values"`

	// Contributors counts the tags with non-null data per axis.
	Contributors map[Axis]int `json:"contributors"`

	// AxisWeight is the cumulative effective weight per axis.
	AxisWeight map[Axis]float64 `json:"axis_weight"`

	// TagCount is the number of distinct tags attached to the item.
	TagCount int `json:"tag_count"`

	// ResolvedTags is how many of those tags had a trait available.
	ResolvedTags int `json:"resolved_tags"`

	Confidence Confidence `json:"confidence"`
}

// HasData reports whether any axis received at least one contribution.
func (p ItemTraitProfile) HasData() bool {
	for _, n := range p.Contributors {
		if n > 0 {
			return true
		}
	}
	return false
}

// Value returns the profile value for an axis, defaulting to neutral.
func (p ItemTraitProfile) Value(a Axis) float64 {
	if v, ok := p.Values[a]; ok {
		return v
	}
	return neutralAxisValue
}

// MatchResult is the compatibility of one item with one preference vector.
type MatchResult struct {
	Score      int        `json:"score"`
	Confidence Confidence `json:"confidence"`
}

// ItemType distinguishes the catalog item kinds the engine ranks.
type ItemType string

const (
	ItemTypeTour       ItemType = "tour"
	ItemTypeRestaurant ItemType = "restaurant"
)

// Valid reports whether t is a known item type.
func (t ItemType) Valid() bool {
	return t == ItemTypeTour || t == ItemTypeRestaurant
}

// PromotionEntry is an operator-curated association between a destination
// and a catalog item.
type PromotionEntry struct {
	DestinationID string   `json:"destination_id"`
	ItemID        string   `json:"item_id"`
	ItemType      ItemType `json:"item_type"`
	Position      int      `json:"position"`
}

// Tour is a raw tour record as returned by the catalog.
type Tour struct {
	ID            string  `json:"id"`
	DestinationID string  `json:"destination_id"`
	Name          string  `json:"name"`
	Rating        float64 `json:"rating"`
	ReviewCount   int     `json:"review_count"`
	Price         float64 `json:"price"`
	TagIDs        []int64 `json:"tag_ids"`
}

// Restaurant is a raw restaurant record as returned by the catalog.
// Free-form fields are normalized by DeriveStructuredValues.
type Restaurant struct {
	ID            string   `json:"id"`
	DestinationID string   `json:"destination_id"`
	Name          string   `json:"name"`
	Rating        float64  `json:"rating"`
	PriceLevel    string   `json:"price_level"`
	Cuisines      []string `json:"cuisines"`
	Atmosphere    []string `json:"atmosphere"`
	Features      []string `json:"features"`
	MealTimes     []string `json:"meal_times"`
	GroupSizes    []string `json:"group_sizes"`
	DiningStyle   *int     `json:"dining_style,omitempty"`
}

// ScoredItem is a catalog item with its match score, ready for ranking.
type ScoredItem struct {
	ItemID     string     `json:"item_id"`
	ItemType   ItemType   `json:"item_type"`
	Name       string     `json:"name"`
	Rating     float64    `json:"rating"`
	Score      int        `json:"score"`
	Confidence Confidence `json:"confidence"`
	Promoted   bool       `json:"promoted"`
	Reasons    []string   `json:"reasons,omitempty"`
}

// Ranking is the assembled result for one item type.
type Ranking struct {
	Promoted []ScoredItem `json:"promoted"`
	Ranked   []ScoredItem `json:"ranked"`
}

// AxisExplanation breaks a tour score down for one axis.
type AxisExplanation struct {
	Axis         Axis    `json:"axis"`
	Preference   int     `json:"preference"`
	Profile      float64 `json:"profile"`
	Similarity   float64 `json:"similarity"`
	Weight       float64 `json:"weight"`
	Contributors int     `json:"contributors"`
}

// Explanation is the on-demand "why this matched" view of one item.
type Explanation struct {
	ItemID     string            `json:"item_id"`
	ItemType   ItemType          `json:"item_type"`
	Score      int               `json:"score"`
	Confidence Confidence        `json:"confidence"`
	Reasons    []string          `json:"reasons"`
	Axes       []AxisExplanation `json:"axes,omitempty"`
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
