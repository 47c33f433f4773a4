// Tripmatch - Destination Guide Preference Matching and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/tripmatch/internal/auth"
	"github.com/tomtom215/tripmatch/internal/authz"
	"github.com/tomtom215/tripmatch/internal/catalog"
	"github.com/tomtom215/tripmatch/internal/config"
	"github.com/tomtom215/tripmatch/internal/match"
	"github.com/tomtom215/tripmatch/internal/match/ranking"
	"github.com/tomtom215/tripmatch/internal/models"
	"github.com/tomtom215/tripmatch/internal/prefstore"
)

const testJWTSecret = "api_test_secret_that_is_long_enough_0123456789"

// fakeCatalog is an in-memory CatalogService, match.Catalog and
// match.TraitSource. Setting err fails every read.
type fakeCatalog struct {
	mu          sync.Mutex
	tours       map[string]match.Tour
	restaurants map[string]match.Restaurant
	traits      map[int64]match.TagTrait
	promotions  map[string][]string
	err         error
	pingErr     error
}

func promotionKey(destinationID string, itemType match.ItemType) string {
	return destinationID + "/" + string(itemType)
}

func (c *fakeCatalog) Ping(context.Context) error { return c.pingErr }

func (c *fakeCatalog) FetchTraitBatch(_ context.Context, ids []int64) ([]match.TagTrait, error) {
	out := make([]match.TagTrait, 0, len(ids))
	for _, id := range ids {
		if t, ok := c.traits[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func (c *fakeCatalog) SearchTours(_ context.Context, destinationID string, f catalog.TourFilters) ([]match.Tour, error) {
	if c.err != nil {
		return nil, c.err
	}
	var out []match.Tour
	for _, t := range c.tours {
		if t.DestinationID == destinationID && t.Rating >= f.MinRating {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (c *fakeCatalog) SearchRestaurants(_ context.Context, destinationID string, f catalog.RestaurantFilters) ([]match.Restaurant, error) {
	if c.err != nil {
		return nil, c.err
	}
	var out []match.Restaurant
	for _, r := range c.restaurants {
		if r.DestinationID == destinationID && r.Rating >= f.MinRating {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (c *fakeCatalog) GetTours(_ context.Context, ids []string) ([]match.Tour, error) {
	if c.err != nil {
		return nil, c.err
	}
	var out []match.Tour
	for _, id := range ids {
		if t, ok := c.tours[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func (c *fakeCatalog) GetRestaurants(_ context.Context, ids []string) ([]match.Restaurant, error) {
	if c.err != nil {
		return nil, c.err
	}
	var out []match.Restaurant
	for _, id := range ids {
		if r, ok := c.restaurants[id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func (c *fakeCatalog) GetPromotedItems(_ context.Context, destinationID string, itemType match.ItemType, limit int) ([]match.PromotionEntry, error) {
	if c.err != nil {
		return nil, c.err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	ids := c.promotions[promotionKey(destinationID, itemType)]
	out := make([]match.PromotionEntry, 0, len(ids))
	for i, id := range ids {
		if i >= limit {
			break
		}
		out = append(out, match.PromotionEntry{DestinationID: destinationID, ItemID: id, ItemType: itemType, Position: i + 1})
	}
	return out, nil
}

func (c *fakeCatalog) ReplacePromotions(_ context.Context, destinationID string, itemType match.ItemType, ids []string) error {
	if c.err != nil {
		return c.err
	}
	if !itemType.Valid() {
		return catalog.ErrInvalidItemType
	}
	if len(ids) > match.PromotionLimit {
		return catalog.ErrTooManyPromotions
	}
	for _, id := range ids {
		var dest string
		switch itemType {
		case match.ItemTypeTour:
			dest = c.tours[id].DestinationID
		case match.ItemTypeRestaurant:
			dest = c.restaurants[id].DestinationID
		}
		if dest != destinationID {
			return catalog.ErrUnknownItem
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.promotions[promotionKey(destinationID, itemType)] = append([]string(nil), ids...)
	return nil
}

func f64(v float64) *float64 { return &v }

func intp(v int) *int { return &v }

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		traits: map[int64]match.TagTrait{
			1: {TagID: 1, Name: "hiking", Weight: 1.5, Axes: match.AxisScores{Adventure: f64(95), FoodAndDrink: f64(10)}},
			2: {TagID: 2, Name: "wine tasting", Weight: 1, Axes: match.AxisScores{Adventure: f64(5), FoodAndDrink: f64(95)}},
			3: {TagID: 3, Name: "tour", Weight: 1, IsGeneric: true, Axes: match.AxisScores{GuidanceStructure: f64(60)}},
		},
		tours: map[string]match.Tour{
			"t-hike":  {ID: "t-hike", DestinationID: "lisbon", Name: "Sintra Hike", Rating: 4.7, ReviewCount: 100, TagIDs: []int64{1, 3}},
			"t-wine":  {ID: "t-wine", DestinationID: "lisbon", Name: "Wine Day", Rating: 4.7, ReviewCount: 100, TagIDs: []int64{2, 3}},
			"t-walk":  {ID: "t-walk", DestinationID: "lisbon", Name: "Alfama Walk", Rating: 4.0, ReviewCount: 20, TagIDs: []int64{3}},
			"t-porto": {ID: "t-porto", DestinationID: "porto", Name: "Porto Cellars", Rating: 4.9, TagIDs: []int64{2}},
		},
		restaurants: map[string]match.Restaurant{
			"r-tasca": {ID: "r-tasca", DestinationID: "lisbon", Name: "Tasca", Rating: 4.5, PriceLevel: "$", Atmosphere: []string{"casual"}, MealTimes: []string{"lunch", "dinner"}},
			"r-fine":  {ID: "r-fine", DestinationID: "lisbon", Name: "Fine", Rating: 4.8, PriceLevel: "$$$$", Atmosphere: []string{"romantic"}, MealTimes: []string{"dinner"}},
		},
		promotions: map[string][]string{
			promotionKey("lisbon", match.ItemTypeTour): {"t-walk"},
		},
	}
}

type testEnv struct {
	handler http.Handler
	api     *Handler
	catalog *fakeCatalog
	prefs   *prefstore.Store
	jwt     *auth.JWTManager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cat := newFakeCatalog()

	cfg := match.DefaultConfig()
	cfg.Traits.ChunksPerSecond = 0
	traits := match.NewTraitStore(cat, cfg.Traits, zerolog.Nop())
	engine, err := match.NewEngine(cfg, cat, traits, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	engine.RegisterRanker(ranking.NewTourRanker(cfg.Ranking.TourPromotedSectionCap))
	engine.RegisterRanker(ranking.NewRestaurantRanker(cfg.Ranking.PromotionLimit))

	prefs, err := prefstore.Open(&config.PreferencesConfig{}, zerolog.Nop())
	if err != nil {
		t.Fatalf("prefstore.Open() error = %v", err)
	}
	t.Cleanup(func() { _ = prefs.Close() })

	security := &config.SecurityConfig{
		JWTSecret:         testJWTSecret,
		RateLimitDisabled: true,
		CORSOrigins:       []string{"*"},
	}
	jwtManager, err := auth.NewJWTManager(security)
	if err != nil {
		t.Fatalf("NewJWTManager() error = %v", err)
	}

	enforcer, err := authz.NewEnforcer(&config.AuthzConfig{DefaultRole: "traveler"})
	if err != nil {
		t.Fatalf("NewEnforcer() error = %v", err)
	}
	t.Cleanup(enforcer.Close)

	h := NewHandler(cat, engine, prefs)
	h.SetVersion("test")
	router := NewRouter(h, auth.NewMiddleware(jwtManager), authz.NewMiddleware(enforcer), security)

	return &testEnv{
		handler: router.SetupChi(),
		api:     h,
		catalog: cat,
		prefs:   prefs,
		jwt:     jwtManager,
	}
}

func (e *testEnv) token(t *testing.T, profileID, role string) string {
	t.Helper()
	token, err := e.jwt.GenerateToken(profileID, profileID, role)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	return token
}

// do issues a request. body is marshalled to JSON unless it is a string.
func (e *testEnv) do(t *testing.T, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		if err := json.NewEncoder(&buf).Encode(b); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

// decodeResponse decodes the envelope and, when data is non-nil, its payload.
func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder, data interface{}) models.APIResponse {
	t.Helper()

	var raw struct {
		models.APIResponse
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	if data != nil && len(raw.Data) > 0 && string(raw.Data) != "null" {
		if err := json.Unmarshal(raw.Data, data); err != nil {
			t.Fatalf("decode data: %v", err)
		}
	}
	return raw.APIResponse
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func itemIDs(items []match.ScoredItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ItemID
	}
	return out
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
