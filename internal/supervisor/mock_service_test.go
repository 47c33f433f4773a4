// Tripmatch - Destination Guide Preference Matching and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package supervisor

import (
	"context"
	"errors"
	"sync/atomic"
)

// mockService runs until canceled, optionally failing its first few starts.
type mockService struct {
	name      string
	starts    atomic.Int32
	failsLeft atomic.Int32
	stopped   atomic.Bool
}

func newMockService(name string, failures int32) *mockService {
	m := &mockService{name: name}
	m.failsLeft.Store(failures)
	return m
}

func (m *mockService) Serve(ctx context.Context) error {
	m.starts.Add(1)
	if m.failsLeft.Add(-1) >= 0 {
		return errors.New("simulated failure")
	}
	<-ctx.Done()
	m.stopped.Store(true)
	return ctx.Err()
}

func (m *mockService) String() string {
	return m.name
}
