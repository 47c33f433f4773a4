// Tripmatch - Destination Guide Preference Matching and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package supervisor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/thejerf/suture/v4"
	"github.com/thejerf/sutureslog"
)

// Layer selects the child supervisor a service runs under.
type Layer int

const (
	// DataLayer runs background upkeep of the trait cache and preference store.
	DataLayer Layer = iota
	// APILayer runs the HTTP server.
	APILayer
)

func (l Layer) String() string {
	switch l {
	case DataLayer:
		return "data-layer"
	case APILayer:
		return "api-layer"
	default:
		return fmt.Sprintf("layer(%d)", int(l))
	}
}

// TreeConfig tunes restart behavior. Zero fields take suture's defaults:
// threshold 5, decay 30s, backoff 15s and a 10s shutdown timeout.
type TreeConfig struct {
	FailureThreshold float64
	FailureDecay     float64
	FailureBackoff   time.Duration
	ShutdownTimeout  time.Duration
}

func (c TreeConfig) withDefaults() TreeConfig {
	if c.FailureThreshold == 0 {
		c.FailureThreshold = 5
	}
	if c.FailureDecay == 0 {
		c.FailureDecay = 30
	}
	if c.FailureBackoff == 0 {
		c.FailureBackoff = 15 * time.Second
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = 10 * time.Second
	}
	return c
}

func (c TreeConfig) spec() suture.Spec {
	return suture.Spec{
		FailureThreshold: c.FailureThreshold,
		FailureDecay:     c.FailureDecay,
		FailureBackoff:   c.FailureBackoff,
		Timeout:          c.ShutdownTimeout,
	}
}

// Tree is the supervision tree of the server. Each layer counts failures
// on its own, so maintenance stuck in backoff never stops ranking traffic.
type Tree struct {
	root   *suture.Supervisor
	layers map[Layer]*suture.Supervisor
	config TreeConfig
}

// NewTree builds the root "tripmatch" supervisor with one child per layer.
// Supervisor events go to logger through sutureslog.
func NewTree(logger *slog.Logger, cfg TreeConfig) *Tree {
	cfg = cfg.withDefaults()

	hook := &sutureslog.Handler{Logger: logger}
	rootSpec := cfg.spec()
	rootSpec.EventHook = hook.MustHook()

	t := &Tree{
		root:   suture.New("tripmatch", rootSpec),
		layers: make(map[Layer]*suture.Supervisor, 2),
		config: cfg,
	}
	// Children inherit the root's event hook when added.
	for _, l := range []Layer{DataLayer, APILayer} {
		sup := suture.New(l.String(), cfg.spec())
		t.layers[l] = sup
		t.root.Add(sup)
	}
	return t
}

// Add runs svc under the given layer. An unknown layer panics.
func (t *Tree) Add(l Layer, svc suture.Service) suture.ServiceToken {
	sup, ok := t.layers[l]
	if !ok {
		panic("supervisor: unknown " + l.String())
	}
	return sup.Add(svc)
}

// Serve runs the tree until ctx is canceled.
func (t *Tree) Serve(ctx context.Context) error {
	return t.root.Serve(ctx)
}

// ServeBackground runs the tree in a goroutine and reports its result on
// the returned channel.
func (t *Tree) ServeBackground(ctx context.Context) <-chan error {
	return t.root.ServeBackground(ctx)
}

// UnstoppedServiceReport lists services still running after the shutdown
// timeout.
func (t *Tree) UnstoppedServiceReport() ([]suture.UnstoppedService, error) {
	return t.root.UnstoppedServiceReport()
}
