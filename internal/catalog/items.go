// Tripmatch - Destination Guide Preference Matching and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/tripmatch/internal/match"
)

// TourFilters narrows a tour search. Zero values disable a filter.
type TourFilters struct {
	MinRating float64 `json:"min_rating" validate:"omitempty,min=0,max=5"`
	MaxPrice  float64 `json:"max_price" validate:"omitempty,min=0"`
	Limit     int     `json:"limit" validate:"omitempty,min=1,max=50"`
}

// RestaurantFilters narrows a restaurant search. Zero values disable a filter.
type RestaurantFilters struct {
	Cuisine   string  `json:"cuisine" validate:"omitempty,max=64"`
	MinRating float64 `json:"min_rating" validate:"omitempty,min=0,max=5"`
	Limit     int     `json:"limit" validate:"omitempty,min=1,max=50"`
}

func (s *Store) limit(requested int) int {
	if requested <= 0 || requested > s.searchLimit {
		return s.searchLimit
	}
	return requested
}

const tourColumns = `tour_id, destination_id, name, rating, review_count, price`

// SearchTours returns the candidate tours of a destination, best rated first.
func (s *Store) SearchTours(ctx context.Context, destinationID string, f TourFilters) (tours []match.Tour, err error) {
	start := time.Now()
	defer func() { observe("search_tours", start, err) }()

	query := `SELECT ` + tourColumns + ` FROM tours WHERE destination_id = ?`
	args := []any{destinationID}
	if f.MinRating > 0 {
		query += ` AND rating >= ?`
		args = append(args, f.MinRating)
	}
	if f.MaxPrice > 0 {
		query += ` AND price <= ?`
		args = append(args, f.MaxPrice)
	}
	query += ` ORDER BY rating DESC, review_count DESC, tour_id LIMIT ?`
	args = append(args, s.limit(f.Limit))

	tours, err = s.queryTours(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search tours: %w", err)
	}
	return tours, nil
}

// GetTours returns the tours with the given ids in id order; unknown ids
// are skipped.
func (s *Store) GetTours(ctx context.Context, ids []string) (tours []match.Tour, err error) {
	if len(ids) == 0 {
		return nil, nil
	}
	start := time.Now()
	defer func() { observe("get_tours", start, err) }()

	query := fmt.Sprintf(`SELECT %s FROM tours WHERE tour_id IN (%s) ORDER BY tour_id`, tourColumns, placeholders(len(ids)))
	tours, err = s.queryTours(ctx, query, anyArgs(ids)...)
	if err != nil {
		return nil, fmt.Errorf("get tours: %w", err)
	}
	return tours, nil
}

func (s *Store) queryTours(ctx context.Context, query string, args ...any) ([]match.Tour, error) {
	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tours []match.Tour
	for rows.Next() {
		var t match.Tour
		if err := rows.Scan(&t.ID, &t.DestinationID, &t.Name, &t.Rating, &t.ReviewCount, &t.Price); err != nil {
			return nil, fmt.Errorf("scan tour: %w", err)
		}
		tours = append(tours, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := s.attachTourTags(ctx, tours); err != nil {
		return nil, err
	}
	return tours, nil
}

// attachTourTags fills TagIDs for every tour in one query.
func (s *Store) attachTourTags(ctx context.Context, tours []match.Tour) error {
	if len(tours) == 0 {
		return nil
	}
	index := make(map[string]int, len(tours))
	ids := make([]string, len(tours))
	for i := range tours {
		index[tours[i].ID] = i
		ids[i] = tours[i].ID
	}

	query := fmt.Sprintf(`SELECT tour_id, tag_id FROM tour_tags WHERE tour_id IN (%s) ORDER BY tour_id, tag_id`, placeholders(len(ids)))
	rows, err := s.conn.QueryContext(ctx, query, anyArgs(ids)...)
	if err != nil {
		return fmt.Errorf("query tour tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			tourID string
			tagID  int64
		)
		if err := rows.Scan(&tourID, &tagID); err != nil {
			return fmt.Errorf("scan tour tag: %w", err)
		}
		if i, ok := index[tourID]; ok {
			tours[i].TagIDs = append(tours[i].TagIDs, tagID)
		}
	}
	return rows.Err()
}

const restaurantColumns = `restaurant_id, destination_id, name, rating, price_level,
	cuisines, atmosphere, features, meal_times, group_sizes, dining_style`

// SearchRestaurants returns the candidate restaurants of a destination,
// best rated first.
func (s *Store) SearchRestaurants(ctx context.Context, destinationID string, f RestaurantFilters) (restaurants []match.Restaurant, err error) {
	start := time.Now()
	defer func() { observe("search_restaurants", start, err) }()

	query := `SELECT ` + restaurantColumns + ` FROM restaurants WHERE destination_id = ?`
	args := []any{destinationID}
	if c := strings.TrimSpace(f.Cuisine); c != "" {
		// cuisines is a JSON array; match a whole quoted element.
		query += ` AND cuisines ILIKE ? ESCAPE '\'`
		args = append(args, `%"`+escapeLike(c)+`"%`)
	}
	if f.MinRating > 0 {
		query += ` AND rating >= ?`
		args = append(args, f.MinRating)
	}
	query += ` ORDER BY rating DESC, restaurant_id LIMIT ?`
	args = append(args, s.limit(f.Limit))

	restaurants, err = s.queryRestaurants(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search restaurants: %w", err)
	}
	return restaurants, nil
}

// GetRestaurants returns the restaurants with the given ids in id order;
// unknown ids are skipped.
func (s *Store) GetRestaurants(ctx context.Context, ids []string) (restaurants []match.Restaurant, err error) {
	if len(ids) == 0 {
		return nil, nil
	}
	start := time.Now()
	defer func() { observe("get_restaurants", start, err) }()

	query := fmt.Sprintf(`SELECT %s FROM restaurants WHERE restaurant_id IN (%s) ORDER BY restaurant_id`, restaurantColumns, placeholders(len(ids)))
	restaurants, err = s.queryRestaurants(ctx, query, anyArgs(ids)...)
	if err != nil {
		return nil, fmt.Errorf("get restaurants: %w", err)
	}
	return restaurants, nil
}

func (s *Store) queryRestaurants(ctx context.Context, query string, args ...any) ([]match.Restaurant, error) {
	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []match.Restaurant
	for rows.Next() {
		var (
			r                                             match.Restaurant
			cuisines, atmosphere, features, meals, groups string
			style                                         sql.NullInt64
		)
		if err := rows.Scan(&r.ID, &r.DestinationID, &r.Name, &r.Rating, &r.PriceLevel,
			&cuisines, &atmosphere, &features, &meals, &groups, &style); err != nil {
			return nil, fmt.Errorf("scan restaurant: %w", err)
		}
		r.Cuisines = decodeList(cuisines)
		r.Atmosphere = decodeList(atmosphere)
		r.Features = decodeList(features)
		r.MealTimes = decodeList(meals)
		r.GroupSizes = decodeList(groups)
		if style.Valid {
			v := int(style.Int64)
			r.DiningStyle = &v
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// UpsertTour inserts or replaces a tour and its tag links.
func (s *Store) UpsertTour(ctx context.Context, t *match.Tour) (err error) {
	start := time.Now()
	defer func() { observe("upsert_tour", start, err) }()

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO tours (`+tourColumns+`) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (tour_id) DO UPDATE SET
			destination_id = excluded.destination_id,
			name = excluded.name,
			rating = excluded.rating,
			review_count = excluded.review_count,
			price = excluded.price`,
		t.ID, t.DestinationID, t.Name, t.Rating, t.ReviewCount, t.Price); err != nil {
		return fmt.Errorf("upsert tour %s: %w", t.ID, err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM tour_tags WHERE tour_id = ?`, t.ID); err != nil {
		return fmt.Errorf("clear tour tags: %w", err)
	}
	seen := make(map[int64]struct{}, len(t.TagIDs))
	for _, tagID := range t.TagIDs {
		if _, dup := seen[tagID]; dup {
			continue
		}
		seen[tagID] = struct{}{}
		if _, err = tx.ExecContext(ctx, `INSERT INTO tour_tags (tour_id, tag_id) VALUES (?, ?)`, t.ID, tagID); err != nil {
			return fmt.Errorf("insert tour tag: %w", err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit tour: %w", err)
	}
	return nil
}

// UpsertRestaurant inserts or replaces a restaurant.
func (s *Store) UpsertRestaurant(ctx context.Context, r *match.Restaurant) (err error) {
	start := time.Now()
	defer func() { observe("upsert_restaurant", start, err) }()

	lists := make([]string, 0, 5)
	for _, l := range [][]string{r.Cuisines, r.Atmosphere, r.Features, r.MealTimes, r.GroupSizes} {
		enc, encErr := encodeList(l)
		if encErr != nil {
			return fmt.Errorf("encode restaurant %s: %w", r.ID, encErr)
		}
		lists = append(lists, enc)
	}

	_, err = s.conn.ExecContext(ctx, `
		INSERT INTO restaurants (`+restaurantColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (restaurant_id) DO UPDATE SET
			destination_id = excluded.destination_id,
			name = excluded.name,
			rating = excluded.rating,
			price_level = excluded.price_level,
			cuisines = excluded.cuisines,
			atmosphere = excluded.atmosphere,
			features = excluded.features,
			meal_times = excluded.meal_times,
			group_sizes = excluded.group_sizes,
			dining_style = excluded.dining_style`,
		r.ID, r.DestinationID, r.Name, r.Rating, r.PriceLevel,
		lists[0], lists[1], lists[2], lists[3], lists[4], intOrNull(r.DiningStyle))
	if err != nil {
		return fmt.Errorf("upsert restaurant %s: %w", r.ID, err)
	}
	return nil
}

// escapeLike escapes LIKE wildcards in user input.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
