// Tripmatch - Destination Guide Preference Matching and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/tripmatch/internal/metrics"
)

// ErrNoTasks is returned by NewMaintenanceService when no task is runnable.
var ErrNoTasks = errors.New("no maintenance tasks configured")

// defaultTaskTimeout bounds a single task run when the task sets no timeout.
const defaultTaskTimeout = 5 * time.Minute

// MaintenanceTask is one periodic housekeeping job.
type MaintenanceTask struct {
	// Name labels the task in logs and the maintenance_runs_total metric.
	Name string

	// Interval between runs. Tasks with a non-positive interval are dropped.
	Interval time.Duration

	// Timeout bounds one run. Zero uses defaultTaskTimeout.
	Timeout time.Duration

	// RunOnStart runs the task once before the first tick.
	RunOnStart bool

	Run func(ctx context.Context) error
}

// MaintenanceService runs a set of periodic tasks, one loop per task.
// A failing run is logged and retried on the next tick; it never stops
// the other tasks.
type MaintenanceService struct {
	tasks  []MaintenanceTask
	logger zerolog.Logger
	name   string
}

// NewMaintenanceService validates tasks and drops the disabled ones.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewMaintenanceService(tasks []MaintenanceTask, logger zerolog.Logger) (*MaintenanceService, error) {
	var enabled []MaintenanceTask
	for _, task := range tasks {
		if task.Run == nil {
			return nil, fmt.Errorf("maintenance task %q has no run function", task.Name)
		}
		if task.Interval <= 0 {
			continue
		}
		if task.Timeout <= 0 {
			task.Timeout = defaultTaskTimeout
		}
		enabled = append(enabled, task)
	}
	if len(enabled) == 0 {
		return nil, ErrNoTasks
	}

	return &MaintenanceService{
		tasks:  enabled,
		logger: logger.With().Str("service", "maintenance").Logger(),
		name:   "maintenance-service",
	}, nil
}

// Serve implements suture.Service.
func (s *MaintenanceService) Serve(ctx context.Context) error {
	s.logger.Info().Int("tasks", len(s.tasks)).Msg("Maintenance service starting")

	g, gctx := errgroup.WithContext(ctx)
	for _, task := range s.tasks {
		g.Go(func() error {
			return s.loop(gctx, task)
		})
	}
	err := g.Wait()

	s.logger.Info().Msg("Maintenance service stopped")
	return err
}

func (s *MaintenanceService) loop(ctx context.Context, task MaintenanceTask) error {
	if task.RunOnStart {
		s.runOnce(ctx, task)
	}

	ticker := time.NewTicker(task.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.runOnce(ctx, task)
		}
	}
}

func (s *MaintenanceService) runOnce(ctx context.Context, task MaintenanceTask) {
	runCtx, cancel := context.WithTimeout(ctx, task.Timeout)
	defer cancel()

	start := time.Now()
	err := task.Run(runCtx)
	duration := time.Since(start)

	if ctx.Err() != nil {
		return
	}
	metrics.RecordMaintenanceRun(task.Name, duration, err)
	if err != nil {
		s.logger.Warn().Err(err).Str("task", task.Name).Msg("Maintenance task failed")
		return
	}
	s.logger.Debug().Str("task", task.Name).Dur("duration", duration).Msg("Maintenance task complete")
}

// String names the service in suture events.
func (s *MaintenanceService) String() string {
	return s.name
}
