// Tripmatch - Destination Guide Preference Matching and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package match

// Ranker assembles the final result for one item type. Tours and
// restaurants follow different promotion policies, so each type has its
// own implementation (see package ranking).
type Ranker interface {
	// ItemType returns the item type this ranker handles.
	ItemType() ItemType

	// Assemble merges organic and promoted items, orders them and truncates
	// the ranked list to pageSize (DefaultPageSize when pageSize <= 0).
	// Implementations must be deterministic and must not modify the inputs.
	Assemble(organic, promoted []ScoredItem, pageSize int) Ranking
}

// Less is the shared ordering: score descending, then rating descending,
// then item id ascending.
//
//nolint:gocritic // hugeParam: ScoredItem passed by value for use with sort helpers
func Less(a, b ScoredItem) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if a.Rating != b.Rating {
		return a.Rating > b.Rating
	}
	return a.ItemID < b.ItemID
}
