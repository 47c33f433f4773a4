// Tripmatch - Destination Guide Preference Matching and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package match

// Resolve merges the stored preference sources into one vector.
//
// Device preferences win field by field over profile preferences because the
// device cache always reflects the most recent edit. Profile preferences are
// only consulted for signed-in travelers. When neither source sets anything
// Resolve returns nil, which callers treat as the balanced default (see
// OrDefault). Axes missing from both sources are filled with 50 and all values
// are clamped to [0,100].
func Resolve(profile, device *PreferenceInput, isSignedIn bool) *PreferenceVector {
	if !isSignedIn {
		profile = nil
	}
	if profile.IsEmpty() && device.IsEmpty() {
		return nil
	}

	out := DefaultPreferences()
	for _, a := range Axes {
		if v := profile.Get(a); v != nil {
			out.set(a, *v)
		}
		if v := device.Get(a); v != nil {
			out.set(a, *v)
		}
	}
	out = out.Clamp()
	return &out
}

// Merge overlays the set fields of top onto base and returns a new input.
// Used when a client sends an in-flight edit on top of stored device state.
func Merge(base, top *PreferenceInput) *PreferenceInput {
	if base.IsEmpty() && top.IsEmpty() {
		return nil
	}
	out := &PreferenceInput{}
	for _, a := range Axes {
		v := base.Get(a)
		if t := top.Get(a); t != nil {
			v = t
		}
		if v != nil {
			val := *v
			out.setPtr(a, &val)
		}
	}
	return out
}

func (p *PreferenceInput) setPtr(a Axis, v *int) {
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

// Normalize returns a copy with every set field clamped to [0,100].
func (p *PreferenceInput) Normalize() *PreferenceInput {
	if p == nil {
		return nil
	}
	out := &PreferenceInput{}
	for _, a := range Axes {
		if v := p.Get(a); v != nil {
			val := clampInt(*v, minAxisValue, maxAxisValue)
			out.setPtr(a, &val)
		}
	}
	return out
}
