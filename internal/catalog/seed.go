// Tripmatch - Destination Guide Preference Matching and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package catalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"

	"github.com/tomtom215/tripmatch/internal/match"
)

// Seed is the on-disk format of a catalog seed file.
type Seed struct {
	Tags        []match.TagTrait   `json:"tags"`
	Tours       []match.Tour       `json:"tours"`
	Restaurants []match.Restaurant `json:"restaurants"`
	Promotions  []SeedPromotion    `json:"promotions"`
}

// SeedPromotion is one destination's promoted items in display order.
type SeedPromotion struct {
	DestinationID string         `json:"destination_id"`
	ItemType      match.ItemType `json:"item_type"`
	ItemIDs       []string       `json:"item_ids"`
}

// SeedStats counts what LoadSeed wrote.
type SeedStats struct {
	Tags        int `json:"tags"`
	Tours       int `json:"tours"`
	Restaurants int `json:"restaurants"`
	Promotions  int `json:"promotions"`
}

// IsEmpty reports whether the catalog holds no tags and no items.
func (s *Store) IsEmpty(ctx context.Context) (bool, error) {
	var n int
	err := s.conn.QueryRowContext(ctx,
		`SELECT (SELECT count(*) FROM tags) + (SELECT count(*) FROM tours) + (SELECT count(*) FROM restaurants)`).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("count catalog rows: %w", err)
	}
	return n == 0, nil
}

// LoadSeed reads a JSON seed file and upserts its contents.
// Loading the same file twice leaves the catalog unchanged.
func (s *Store) LoadSeed(ctx context.Context, path string) (SeedStats, error) {
	var stats SeedStats

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return stats, fmt.Errorf("read seed file: %w", err)
	}
	var seed Seed
	if err := json.Unmarshal(data, &seed); err != nil {
		return stats, fmt.Errorf("decode seed file %s: %w", path, err)
	}

	for i := range seed.Tags {
		if err := s.UpsertTag(ctx, &seed.Tags[i]); err != nil {
			return stats, err
		}
		stats.Tags++
	}
	for i := range seed.Tours {
		if err := s.UpsertTour(ctx, &seed.Tours[i]); err != nil {
			return stats, err
		}
		stats.Tours++
	}
	for i := range seed.Restaurants {
		if err := s.UpsertRestaurant(ctx, &seed.Restaurants[i]); err != nil {
			return stats, err
		}
		stats.Restaurants++
	}
	for _, p := range seed.Promotions {
		if err := s.ReplacePromotions(ctx, p.DestinationID, p.ItemType, p.ItemIDs); err != nil {
			return stats, fmt.Errorf("seed promotions for %s: %w", p.DestinationID, err)
		}
		stats.Promotions += len(p.ItemIDs)
	}

	s.logger.Info().
		Str("path", path).
		Int("tags", stats.Tags).
		Int("tours", stats.Tours).
		Int("restaurants", stats.Restaurants).
		Int("promotions", stats.Promotions).
		Msg("Catalog seed loaded")
	return stats, nil
}
