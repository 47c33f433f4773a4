// Tripmatch - Destination Guide Preference Matching and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/tripmatch/internal/metrics"
)

var _ suture.Service = (*MaintenanceService)(nil)

func TestNewMaintenanceService(t *testing.T) {
	noop := func(context.Context) error { return nil }

	tests := []struct {
		name      string
		tasks     []MaintenanceTask
		wantErr   error
		wantTasks int
	}{
		{name: "no tasks", wantErr: ErrNoTasks},
		{name: "all disabled", tasks: []MaintenanceTask{{Name: "gc", Run: noop}}, wantErr: ErrNoTasks},
		{
			name: "drops disabled tasks",
			tasks: []MaintenanceTask{
				{Name: "gc", Interval: time.Minute, Run: noop},
				{Name: "cache", Run: noop},
			},
			wantTasks: 1,
		},
		{name: "missing run function", tasks: []MaintenanceTask{{Name: "gc", Interval: time.Minute}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := NewMaintenanceService(tt.tasks, zerolog.Nop())
			if tt.wantTasks == 0 {
				if err == nil {
					t.Fatal("NewMaintenanceService() error = nil")
				}
				if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewMaintenanceService() error = %v", err)
			}
			if len(svc.tasks) != tt.wantTasks {
				t.Errorf("tasks = %d, want %d", len(svc.tasks), tt.wantTasks)
			}
			if svc.tasks[0].Timeout != defaultTaskTimeout {
				t.Errorf("timeout = %v, want %v", svc.tasks[0].Timeout, defaultTaskTimeout)
			}
		})
	}
}

func TestMaintenanceService_Serve(t *testing.T) {
	var cacheRuns, gcRuns atomic.Int32

	okBefore := testutil.ToFloat64(metrics.MaintenanceRuns.WithLabelValues("test_cache", "success"))
	failBefore := testutil.ToFloat64(metrics.MaintenanceRuns.WithLabelValues("test_gc", "error"))

	svc, err := NewMaintenanceService([]MaintenanceTask{
		{
			Name:       "test_cache",
			Interval:   10 * time.Millisecond,
			RunOnStart: true,
			Run: func(context.Context) error {
				cacheRuns.Add(1)
				return nil
			},
		},
		{
			Name:     "test_gc",
			Interval: 10 * time.Millisecond,
			Run: func(context.Context) error {
				gcRuns.Add(1)
				return errors.New("value log busy")
			},
		},
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewMaintenanceService() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	if err := svc.Serve(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Serve() error = %v, want deadline exceeded", err)
	}

	// A failing task keeps running on schedule and does not stop its sibling.
	if cacheRuns.Load() < 3 || gcRuns.Load() < 2 {
		t.Errorf("runs = cache %d, gc %d, want repeated runs of both", cacheRuns.Load(), gcRuns.Load())
	}
	if got := testutil.ToFloat64(metrics.MaintenanceRuns.WithLabelValues("test_cache", "success")) - okBefore; got < 1 {
		t.Errorf("success runs recorded = %v", got)
	}
	if got := testutil.ToFloat64(metrics.MaintenanceRuns.WithLabelValues("test_gc", "error")) - failBefore; got < 1 {
		t.Errorf("error runs recorded = %v", got)
	}
}

func TestMaintenanceService_TaskTimeout(t *testing.T) {
	sawDeadline := make(chan bool, 1)
	svc, err := NewMaintenanceService([]MaintenanceTask{{
		Name:       "test_slow",
		Interval:   time.Hour,
		Timeout:    10 * time.Millisecond,
		RunOnStart: true,
		Run: func(ctx context.Context) error {
			<-ctx.Done()
			select {
			case sawDeadline <- errors.Is(ctx.Err(), context.DeadlineExceeded):
			default:
			}
			return ctx.Err()
		},
	}}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewMaintenanceService() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = svc.Serve(ctx)
		close(done)
	}()

	select {
	case ok := <-sawDeadline:
		if !ok {
			t.Error("task context ended without its own deadline")
		}
	case <-time.After(time.Second):
		t.Fatal("task timeout not applied")
	}
	cancel()
	<-done
}
