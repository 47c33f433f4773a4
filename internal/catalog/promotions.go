// Tripmatch - Destination Guide Preference Matching and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/tripmatch/internal/match"
)

// GetPromotedItems returns the promotions of a destination in operator
// order. limit is capped at match.PromotionLimit.
func (s *Store) GetPromotedItems(ctx context.Context, destinationID string, itemType match.ItemType, limit int) (entries []match.PromotionEntry, err error) {
	if !itemType.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidItemType, itemType)
	}
	if limit <= 0 || limit > match.PromotionLimit {
		limit = match.PromotionLimit
	}
	start := time.Now()
	defer func() { observe("get_promoted_items", start, err) }()

	rows, err := s.conn.QueryContext(ctx, `
		SELECT destination_id, item_id, item_type, position
		FROM promotions
		WHERE destination_id = ? AND item_type = ?
		ORDER BY position, item_id
		LIMIT ?`, destinationID, string(itemType), limit)
	if err != nil {
		return nil, fmt.Errorf("query promotions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			p  match.PromotionEntry
			it string
		)
		if err := rows.Scan(&p.DestinationID, &p.ItemID, &it, &p.Position); err != nil {
			return nil, fmt.Errorf("scan promotion: %w", err)
		}
		p.ItemType = match.ItemType(it)
		entries = append(entries, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate promotions: %w", err)
	}
	return entries, nil
}

// ReplacePromotions atomically replaces the promotions of a destination
// and item type with itemIDs, in the given order. Duplicates keep their
// first position. Every id must name an item of that destination.
func (s *Store) ReplacePromotions(ctx context.Context, destinationID string, itemType match.ItemType, itemIDs []string) (err error) {
	if !itemType.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidItemType, itemType)
	}
	ids := dedupeStrings(itemIDs)
	if len(ids) > match.PromotionLimit {
		return fmt.Errorf("%w: %d exceeds %d", ErrTooManyPromotions, len(ids), match.PromotionLimit)
	}
	start := time.Now()
	defer func() { observe("replace_promotions", start, err) }()

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if len(ids) > 0 {
		table, column := "tours", "tour_id"
		if itemType == match.ItemTypeRestaurant {
			table, column = "restaurants", "restaurant_id"
		}
		query := fmt.Sprintf(`SELECT count(*) FROM %s WHERE destination_id = ? AND %s IN (%s)`, table, column, placeholders(len(ids)))
		var found int
		if err = tx.QueryRowContext(ctx, query, append([]any{destinationID}, anyArgs(ids)...)...).Scan(&found); err != nil {
			return fmt.Errorf("verify promoted items: %w", err)
		}
		if found != len(ids) {
			err = fmt.Errorf("%w: %d of %d %ss not found in destination %s", ErrUnknownItem, len(ids)-found, len(ids), itemType, destinationID)
			return err
		}
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM promotions WHERE destination_id = ? AND item_type = ?`, destinationID, string(itemType)); err != nil {
		return fmt.Errorf("clear promotions: %w", err)
	}
	for i, id := range ids {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO promotions (destination_id, item_type, item_id, position) VALUES (?, ?, ?, ?)`,
			destinationID, string(itemType), id, i+1); err != nil {
			return fmt.Errorf("insert promotion: %w", err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit promotions: %w", err)
	}

	s.logger.Info().
		Str("destination_id", destinationID).
		Str("item_type", string(itemType)).
		Int("count", len(ids)).
		Msg("Promotions replaced")
	return nil
}

func dedupeStrings(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
