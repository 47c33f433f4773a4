// Tripmatch - Destination Guide Preference Matching and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package supervisor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewTree_Defaults(t *testing.T) {
	tree := NewTree(testLogger(), TreeConfig{})
	if tree.root == nil || len(tree.layers) != 2 {
		t.Fatal("supervisor layers not created")
	}
	want := TreeConfig{FailureThreshold: 5, FailureDecay: 30, FailureBackoff: 15 * time.Second, ShutdownTimeout: 10 * time.Second}
	if tree.config != want {
		t.Errorf("config = %+v, want defaults %+v", tree.config, want)
	}

	custom := TreeConfig{FailureThreshold: 2, FailureDecay: 1, FailureBackoff: time.Second, ShutdownTimeout: time.Second}
	if tree = NewTree(testLogger(), custom); tree.config != custom {
		t.Errorf("config = %+v, want %+v", tree.config, custom)
	}
}

func TestLayer_String(t *testing.T) {
	tests := []struct {
		layer Layer
		want  string
	}{
		{DataLayer, "data-layer"},
		{APILayer, "api-layer"},
		{Layer(7), "layer(7)"},
	}
	for _, tt := range tests {
		if got := tt.layer.String(); got != tt.want {
			t.Errorf("Layer(%d).String() = %q, want %q", int(tt.layer), got, tt.want)
		}
	}
}

func TestTree_AddUnknownLayerPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Add() with unknown layer did not panic")
		}
	}()
	NewTree(testLogger(), TreeConfig{}).Add(Layer(7), newMockService("stray", 0))
}

func TestTree_StartsBothLayers(t *testing.T) {
	tree := NewTree(testLogger(), TreeConfig{ShutdownTimeout: time.Second})

	data := newMockService("maintenance", 0)
	api := newMockService("http-server", 0)
	tree.Add(DataLayer, data)
	tree.Add(APILayer, api)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	deadline := time.Now().Add(time.Second)
	for (data.starts.Load() == 0 || api.starts.Load() == 0) && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("tree did not stop")
	}

	if data.starts.Load() != 1 || api.starts.Load() != 1 {
		t.Errorf("starts = data %d, api %d, want 1 each", data.starts.Load(), api.starts.Load())
	}
	if !data.stopped.Load() || !api.stopped.Load() {
		t.Error("services were not stopped on shutdown")
	}

	report, err := tree.UnstoppedServiceReport()
	if err != nil && !errors.Is(err, suture.ErrSupervisorNotTerminated) {
		t.Errorf("UnstoppedServiceReport() error = %v", err)
	}
	if len(report) != 0 {
		t.Errorf("unstopped services = %v", report)
	}
}

func TestTree_RestartsFailingService(t *testing.T) {
	tree := NewTree(testLogger(), TreeConfig{
		FailureThreshold: 10,
		FailureBackoff:   10 * time.Millisecond,
		ShutdownTimeout:  time.Second,
	})

	failing := newMockService("maintenance", 2)
	stable := newMockService("http-server", 0)
	tree.Add(DataLayer, failing)
	tree.Add(APILayer, stable)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	errCh := tree.ServeBackground(ctx)
	<-errCh

	if got := failing.starts.Load(); got < 3 {
		t.Errorf("failing service starts = %d, want at least 3", got)
	}
	if got := stable.starts.Load(); got != 1 {
		t.Errorf("stable service starts = %d, want 1", got)
	}
}
