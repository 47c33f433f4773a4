// Tripmatch - Destination Guide Preference Matching and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package catalog

import (
	"errors"
	"io"
)

var (
	// ErrUnknownItem is returned when a promotion references an item that
	// does not exist in the destination.
	ErrUnknownItem = errors.New("unknown catalog item")

	// ErrTooManyPromotions is returned when more promotions are submitted
	// than a destination can hold.
	ErrTooManyPromotions = errors.New("too many promotions")

	// ErrInvalidItemType is returned for item types other than tour and restaurant.
	ErrInvalidItemType = errors.New("invalid item type")
)

// closeQuietly closes a resource, ignoring any error. Cleanup is best effort.
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}
