// Tripmatch - Destination Guide Preference Matching and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tomtom215/tripmatch/internal/match"
)

// FetchTraitBatch returns the traits of the given tags. Unknown ids are
// skipped. Callers keep batches at or below match.TraitBatchSize.
func (s *Store) FetchTraitBatch(ctx context.Context, tagIDs []int64) (traits []match.TagTrait, err error) {
	if len(tagIDs) == 0 {
		return nil, nil
	}
	start := time.Now()
	defer func() { observe("fetch_trait_batch", start, err) }()

	query := fmt.Sprintf(`
		SELECT tag_id, name, adventure, exploration_vs_relaxation, group_intimacy,
		       price_comfort, guidance_structure, food_and_drink, tag_weight, is_generic
		FROM tags
		WHERE tag_id IN (%s)
		ORDER BY tag_id`, placeholders(len(tagIDs)))

	rows, err := s.conn.QueryContext(ctx, query, anyArgs(tagIDs)...)
	if err != nil {
		return nil, fmt.Errorf("query tag traits: %w", err)
	}
	defer rows.Close()

	traits = make([]match.TagTrait, 0, len(tagIDs))
	for rows.Next() {
		var (
			t                                    match.TagTrait
			adv, expl, group, price, guide, food sql.NullFloat64
		)
		if err := rows.Scan(&t.TagID, &t.Name, &adv, &expl, &group, &price, &guide, &food, &t.Weight, &t.IsGeneric); err != nil {
			return nil, fmt.Errorf("scan tag trait: %w", err)
		}
		t.Axes = match.AxisScores{
			Adventure:               nullFloat(adv),
			ExplorationVsRelaxation: nullFloat(expl),
			GroupIntimacy:           nullFloat(group),
			PriceComfort:            nullFloat(price),
			GuidanceStructure:       nullFloat(guide),
			FoodAndDrink:            nullFloat(food),
		}
		traits = append(traits, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tag traits: %w", err)
	}
	return traits, nil
}

// UpsertTag inserts or replaces a tag's traits.
func (s *Store) UpsertTag(ctx context.Context, t *match.TagTrait) (err error) {
	start := time.Now()
	defer func() { observe("upsert_tag", start, err) }()

	_, err = s.conn.ExecContext(ctx, `
		INSERT INTO tags (tag_id, name, adventure, exploration_vs_relaxation, group_intimacy,
		                  price_comfort, guidance_structure, food_and_drink, tag_weight, is_generic)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (tag_id) DO UPDATE SET
			name = excluded.name,
			adventure = excluded.adventure,
			exploration_vs_relaxation = excluded.exploration_vs_relaxation,
			group_intimacy = excluded.group_intimacy,
			price_comfort = excluded.price_comfort,
			guidance_structure = excluded.guidance_structure,
			food_and_drink = excluded.food_and_drink,
			tag_weight = excluded.tag_weight,
			is_generic = excluded.is_generic`,
		t.TagID, t.Name,
		floatOrNull(t.Axes.Adventure),
		floatOrNull(t.Axes.ExplorationVsRelaxation),
		floatOrNull(t.Axes.GroupIntimacy),
		floatOrNull(t.Axes.PriceComfort),
		floatOrNull(t.Axes.GuidanceStructure),
		floatOrNull(t.Axes.FoodAndDrink),
		t.Weight, t.IsGeneric,
	)
	if err != nil {
		return fmt.Errorf("upsert tag %d: %w", t.TagID, err)
	}
	return nil
}
