// Tripmatch - Destination Guide Preference Matching and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package match

import (
	"errors"
	"fmt"
)

var (
	// ErrCatalogUnavailable means no scores can be computed because the
	// catalog or backing store could not be reached. It is the only error
	// a ranking request surfaces to callers and it is retryable.
	ErrCatalogUnavailable = errors.New("catalog unavailable")

	// ErrNoRanker is returned when no ranker is registered for an item type.
	ErrNoRanker = errors.New("no ranker registered for item type")

	// ErrUnsupportedItem is returned by ExplainMatch for unknown item kinds.
	ErrUnsupportedItem = errors.New("unsupported item")
)

// catalogError marks err as a catalog outage while keeping it inspectable.
func catalogError(op string, err error) error {
	if errors.Is(err, ErrCatalogUnavailable) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrCatalogUnavailable, err)
}
