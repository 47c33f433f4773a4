// Tripmatch - Destination Guide Preference Matching and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package main

import (
	"context"
	"errors"

	"github.com/tomtom215/tripmatch/internal/config"
	"github.com/tomtom215/tripmatch/internal/logging"
	"github.com/tomtom215/tripmatch/internal/match"
	"github.com/tomtom215/tripmatch/internal/metrics"
	"github.com/tomtom215/tripmatch/internal/prefstore"
	"github.com/tomtom215/tripmatch/internal/supervisor/services"
)

// Maintenance task names, also used as metric labels.
const (
	taskTraitCacheCleanup = "trait_cache_cleanup"
	taskPreferenceGC      = "preference_gc"
	taskPreferenceCount   = "preference_count"
)

// initMaintenance returns the maintenance service, or nil when every task
// is disabled by a zero interval.
func initMaintenance(cfg *config.Config, traits *match.TraitStore, prefs *prefstore.Store) *services.MaintenanceService {
	logger := logging.WithComponent("maintenance")

	svc, err := services.NewMaintenanceService(maintenanceTasks(cfg, traits, prefs), logger)
	if errors.Is(err, services.ErrNoTasks) {
		logger.Info().Msg("Maintenance disabled")
		return nil
	}
	if err != nil {
		logger.Error().Err(err).Msg("Failed to create maintenance service")
		return nil
	}
	return svc
}

func maintenanceTasks(cfg *config.Config, traits *match.TraitStore, prefs *prefstore.Store) []services.MaintenanceTask {
	return []services.MaintenanceTask{
		{
			Name:     taskTraitCacheCleanup,
			Interval: cfg.Match.CacheCleanupInterval,
			Run: func(context.Context) error {
				if n := traits.CleanupCache(); n > 0 {
					logging.Debug().Int("removed", n).Msg("Expired traits swept")
				}
				return nil
			},
		},
		{
			Name:     taskPreferenceGC,
			Interval: cfg.Preferences.GCInterval,
			Run:      prefs.RunValueLogGC,
		},
		{
			Name:       taskPreferenceCount,
			Interval:   cfg.Preferences.GCInterval,
			RunOnStart: true,
			Run: func(ctx context.Context) error {
				counts, err := prefs.Count(ctx)
				if err != nil {
					return err
				}
				metrics.RecordPreferenceCounts(counts)
				return nil
			},
		},
	}
}
