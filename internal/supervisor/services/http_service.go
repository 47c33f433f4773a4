// Tripmatch - Destination Guide Preference Matching and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const defaultShutdownTimeout = 10 * time.Second

// HTTPServer is the part of *http.Server the service drives.
type HTTPServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// HTTPOption configures an HTTPServerService.
type HTTPOption func(*HTTPServerService)

// WithDrainHook registers fn to run when shutdown begins, before the
// listener closes. The API uses it to fail readiness probes while
// in-flight rankings finish.
func WithDrainHook(fn func()) HTTPOption {
	return func(h *HTTPServerService) {
		h.onDrain = fn
	}
}

// HTTPServerService runs the API server under suture. A listener error is
// returned so suture restarts it with backoff; cancellation shuts it down
// within shutdownTimeout.
type HTTPServerService struct {
	server          HTTPServer
	shutdownTimeout time.Duration
	onDrain         func()
	logger          zerolog.Logger
}

// NewHTTPServerService wraps server. A non-positive shutdownTimeout
// becomes 10s.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewHTTPServerService(server HTTPServer, shutdownTimeout time.Duration, logger zerolog.Logger, opts ...HTTPOption) *HTTPServerService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = defaultShutdownTimeout
	}
	h := &HTTPServerService{
		server:          server,
		shutdownTimeout: shutdownTimeout,
		logger:          logger.With().Str("service", "http-server").Logger(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Serve implements suture.Service.
func (h *HTTPServerService) Serve(ctx context.Context) error {
	listenErr := make(chan error, 1)
	go func() {
		err := h.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		listenErr <- err
	}()

	if srv, ok := h.server.(*http.Server); ok {
		h.logger.Info().Str("addr", srv.Addr).Msg("HTTP server listening")
	}

	select {
	case err := <-listenErr:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	if h.onDrain != nil {
		h.onDrain()
	}
	h.logger.Info().Dur("timeout", h.shutdownTimeout).Msg("HTTP server shutting down")

	// ctx is already done, so shutdown gets a fresh deadline.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), h.shutdownTimeout)
	defer cancel()
	if err := h.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown failed: %w", err)
	}
	<-listenErr
	return ctx.Err()
}

func (h *HTTPServerService) String() string {
	return "http-server"
}
