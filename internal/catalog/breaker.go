// Tripmatch - Destination Guide Preference Matching and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/tripmatch/internal/config"
	"github.com/tomtom215/tripmatch/internal/match"
	"github.com/tomtom215/tripmatch/internal/metrics"
)

// BreakerName labels the catalog circuit breaker in metrics.
const BreakerName = "catalog"

// BreakerStore wraps Store with a circuit breaker.
//
// While the breaker is open every call fails fast with an error wrapping
// match.ErrCatalogUnavailable. Domain errors (unknown items, invalid
// promotion requests) and caller cancellation do not count as failures.
//
// The breaker uses wall-clock time for its interval and timeout. Tests
// exercising recovery need real waits.
type BreakerStore struct {
	store  *Store
	cb     *gobreaker.CircuitBreaker[interface{}]
	name   string
	logger zerolog.Logger
}

// NewBreakerStore wraps store with a breaker configured by cfg.
// The breaker opens once at least cfg.MinRequests calls were seen in the
// current interval and cfg.FailureRatio of them failed.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewBreakerStore(store *Store, cfg *config.CircuitBreakerConfig, logger zerolog.Logger) *BreakerStore {
	b := &BreakerStore{
		store:  store,
		name:   BreakerName,
		logger: logger.With().Str("component", "catalog_breaker").Logger(),
	}

	metrics.CircuitBreakerState.WithLabelValues(b.name).Set(0)
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(b.name).Set(0)

	b.cb = gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        b.name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= cfg.FailureRatio
			if shouldTrip {
				b.logger.Warn().
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).
					Msg("Opening catalog circuit")
			}
			return shouldTrip
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)
			b.logger.Info().Str("from", fromStr).Str("to", toStr).Msg("Circuit breaker state transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
		},

		IsSuccessful: isSuccessful,
	})
	return b
}

// budgetError marks a failure caused by the caller's own deadline running
// out. Trait chunks run under a short soft budget, so their timeouts say
// nothing about catalog health.
type budgetError struct {
	err error
}

func (e *budgetError) Error() string { return e.err.Error() }

func (e *budgetError) Unwrap() error { return e.err }

// isSuccessful reports whether err says nothing about catalog health.
func isSuccessful(err error) bool {
	var budget *budgetError
	return err == nil ||
		errors.As(err, &budget) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, ErrUnknownItem) ||
		errors.Is(err, ErrTooManyPromotions) ||
		errors.Is(err, ErrInvalidItemType)
}

// State returns the current breaker state as "closed", "half-open" or "open".
func (b *BreakerStore) State() string {
	return stateToString(b.cb.State())
}

// Store returns the wrapped store.
func (b *BreakerStore) Store() *Store {
	return b.store
}

func (b *BreakerStore) execute(fn func() (interface{}, error)) (interface{}, error) {
	result, err := b.cb.Execute(fn)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
			b.logger.Warn().Err(err).Msg("Catalog request rejected")
			return nil, fmt.Errorf("%w: %w", match.ErrCatalogUnavailable, err)
		}
		if isSuccessful(err) {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
		} else {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "failure").Inc()
			counts := b.cb.Counts()
			metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(b.name).Set(float64(counts.ConsecutiveFailures))
		}
		return nil, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(b.name).Set(0)
	return result, nil
}

// call runs fn through the breaker and restores its static result type.
func call[T any](b *BreakerStore, fn func() (T, error)) (T, error) {
	var zero T
	result, err := b.execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		return zero, err
	}
	if result == nil {
		return zero, nil
	}
	typed, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return typed, nil
}

// stateToFloat converts circuit breaker state to numeric value for metrics
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// Ping verifies the database is reachable with circuit breaker protection.
func (b *BreakerStore) Ping(ctx context.Context) error {
	_, err := b.execute(func() (interface{}, error) {
		return nil, b.store.Ping(ctx)
	})
	return err
}

// FetchTraitBatch implements match.TraitSource. A chunk that fails because
// ctx is done is not counted against the breaker.
func (b *BreakerStore) FetchTraitBatch(ctx context.Context, tagIDs []int64) ([]match.TagTrait, error) {
	return call(b, func() ([]match.TagTrait, error) {
		traits, err := b.store.FetchTraitBatch(ctx, tagIDs)
		if err != nil && ctx.Err() != nil {
			return nil, &budgetError{err: err}
		}
		return traits, err
	})
}

// SearchTours searches tours with circuit breaker protection.
func (b *BreakerStore) SearchTours(ctx context.Context, destinationID string, f TourFilters) ([]match.Tour, error) {
	return call(b, func() ([]match.Tour, error) {
		return b.store.SearchTours(ctx, destinationID, f)
	})
}

// SearchRestaurants searches restaurants with circuit breaker protection.
func (b *BreakerStore) SearchRestaurants(ctx context.Context, destinationID string, f RestaurantFilters) ([]match.Restaurant, error) {
	return call(b, func() ([]match.Restaurant, error) {
		return b.store.SearchRestaurants(ctx, destinationID, f)
	})
}

// GetTours implements match.Catalog.
func (b *BreakerStore) GetTours(ctx context.Context, ids []string) ([]match.Tour, error) {
	return call(b, func() ([]match.Tour, error) {
		return b.store.GetTours(ctx, ids)
	})
}

// GetRestaurants implements match.Catalog.
func (b *BreakerStore) GetRestaurants(ctx context.Context, ids []string) ([]match.Restaurant, error) {
	return call(b, func() ([]match.Restaurant, error) {
		return b.store.GetRestaurants(ctx, ids)
	})
}

// GetPromotedItems implements match.Catalog.
func (b *BreakerStore) GetPromotedItems(ctx context.Context, destinationID string, itemType match.ItemType, limit int) ([]match.PromotionEntry, error) {
	return call(b, func() ([]match.PromotionEntry, error) {
		return b.store.GetPromotedItems(ctx, destinationID, itemType, limit)
	})
}

// ReplacePromotions replaces promotions with circuit breaker protection.
func (b *BreakerStore) ReplacePromotions(ctx context.Context, destinationID string, itemType match.ItemType, itemIDs []string) error {
	_, err := b.execute(func() (interface{}, error) {
		return nil, b.store.ReplacePromotions(ctx, destinationID, itemType, itemIDs)
	})
	return err
}
