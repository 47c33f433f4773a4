// Tripmatch - Destination Guide Preference Matching and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package catalog

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// schemaQueries creates the catalog tables.
//
// Axis columns on tags are nullable: NULL means the tag says nothing about
// that axis, which is different from a score of 0. List columns on
// restaurants hold JSON arrays.
//
// promotions has no primary key: ReplacePromotions deletes and re-inserts
// the same rows inside one transaction, which DuckDB's eager unique
// checking rejects. There are no secondary indexes because upserts may not
// assign indexed columns; destination filters rely on zonemaps.
var schemaQueries = []string{
	`CREATE TABLE IF NOT EXISTS tags (
		tag_id BIGINT PRIMARY KEY,
		name TEXT NOT NULL,
		adventure DOUBLE,
		exploration_vs_relaxation DOUBLE,
		group_intimacy DOUBLE,
		price_comfort DOUBLE,
		guidance_structure DOUBLE,
		food_and_drink DOUBLE,
		tag_weight DOUBLE NOT NULL DEFAULT 1.0,
		is_generic BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE TABLE IF NOT EXISTS tours (
		tour_id TEXT PRIMARY KEY,
		destination_id TEXT NOT NULL,
		name TEXT NOT NULL,
		rating DOUBLE NOT NULL DEFAULT 0,
		review_count INTEGER NOT NULL DEFAULT 0,
		price DOUBLE NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS tour_tags (
		tour_id TEXT NOT NULL,
		tag_id BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS restaurants (
		restaurant_id TEXT PRIMARY KEY,
		destination_id TEXT NOT NULL,
		name TEXT NOT NULL,
		rating DOUBLE NOT NULL DEFAULT 0,
		price_level TEXT NOT NULL DEFAULT '',
		cuisines TEXT NOT NULL DEFAULT '[]',
		atmosphere TEXT NOT NULL DEFAULT '[]',
		features TEXT NOT NULL DEFAULT '[]',
		meal_times TEXT NOT NULL DEFAULT '[]',
		group_sizes TEXT NOT NULL DEFAULT '[]',
		dining_style INTEGER
	)`,
	`CREATE TABLE IF NOT EXISTS promotions (
		destination_id TEXT NOT NULL,
		item_type TEXT NOT NULL,
		item_id TEXT NOT NULL,
		position INTEGER NOT NULL
	)`,
}

// InitSchema creates all catalog tables and indexes if they do not exist.
func (s *Store) InitSchema(ctx context.Context) error {
	for _, query := range schemaQueries {
		if _, err := s.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute schema query: %w", err)
		}
	}
	return nil
}
