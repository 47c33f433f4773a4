// Tripmatch - Destination Guide Preference Matching and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/tripmatch/internal/api"
	"github.com/tomtom215/tripmatch/internal/auth"
	"github.com/tomtom215/tripmatch/internal/authz"
	"github.com/tomtom215/tripmatch/internal/catalog"
	"github.com/tomtom215/tripmatch/internal/config"
	"github.com/tomtom215/tripmatch/internal/logging"
	"github.com/tomtom215/tripmatch/internal/match"
	"github.com/tomtom215/tripmatch/internal/prefstore"
	"github.com/tomtom215/tripmatch/internal/supervisor"
	"github.com/tomtom215/tripmatch/internal/supervisor/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// catalogBackend is the catalog as seen by the handlers and the engine,
// either the plain store or its circuit breaker.
type catalogBackend interface {
	api.CatalogService
	match.TraitSource
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Caller:  cfg.Logging.Caller,
		Version: version,
	})

	if err := run(cfg); err != nil {
		logging.Fatal().Err(err).Msg("Server failed")
	}
	logging.Info().Msg("Application stopped gracefully")
}

//nolint:gocyclo // sequential setup steps
func run(cfg *config.Config) error {
	logging.Info().
		Str("environment", cfg.Server.Environment).
		Str("db_path", cfg.Database.Path).
		Msg("Starting Tripmatch")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// === STORAGE ===

	store, err := catalog.Open(&cfg.Database, logging.WithComponent("catalog"))
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing catalog")
		}
	}()

	store.SetSearchLimit(cfg.Match.SearchLimit)

	if err := seedCatalog(ctx, store, cfg.Database.SeedPath); err != nil {
		return err
	}

	var backend catalogBackend = store
	if cfg.CircuitBreaker.Enabled {
		backend = catalog.NewBreakerStore(store, &cfg.CircuitBreaker, logging.WithComponent("circuit_breaker"))
		logging.Info().
			Float64("failure_ratio", cfg.CircuitBreaker.FailureRatio).
			Dur("open_timeout", cfg.CircuitBreaker.Timeout).
			Msg("Catalog circuit breaker enabled")
	}

	prefs, err := prefstore.Open(&cfg.Preferences, logging.WithComponent("prefstore"))
	if err != nil {
		return fmt.Errorf("open preference store: %w", err)
	}
	defer func() {
		if err := prefs.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing preference store")
		}
	}()

	// === MATCHING ===

	engine, traits, err := initMatch(&cfg.Match, backend)
	if err != nil {
		return err
	}

	// === SECURITY ===

	var jwtManager *auth.JWTManager
	if cfg.Security.JWTSecret != "" {
		jwtManager, err = auth.NewJWTManager(&cfg.Security)
		if err != nil {
			return fmt.Errorf("init jwt: %w", err)
		}
	} else {
		logging.Warn().Msg("SECURITY_JWT_SECRET not set, profile preferences and curation are disabled")
	}

	enforcer, err := authz.NewEnforcer(&cfg.Authz)
	if err != nil {
		return fmt.Errorf("init authorization: %w", err)
	}
	defer enforcer.Close()

	// === HTTP ===

	handler := api.NewHandler(backend, engine, prefs)
	handler.SetVersion(version)
	router := api.NewRouter(handler, auth.NewMiddleware(jwtManager), authz.NewMiddleware(enforcer), &cfg.Security)

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.SetupChi(),
		ReadTimeout:       cfg.Server.Timeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	// === SUPERVISOR TREE ===

	tree := supervisor.NewTree(logging.NewSlogLogger("supervisor"), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})

	if maintenance := initMaintenance(cfg, traits, prefs); maintenance != nil {
		tree.Add(supervisor.DataLayer, maintenance)
	}
	tree.Add(supervisor.APILayer, services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout,
		logging.WithComponent("http"), services.WithDrainHook(handler.Drain)))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)
	go handleSignals(ctx, sigCh, cancel, reloadOnHangup(traits, enforcer))

	logging.Info().Msg("Starting supervisor tree")
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}
	return nil
}

// handleSignals cancels ctx on SIGINT or SIGTERM and calls onHangup for
// each SIGHUP.
func handleSignals(ctx context.Context, sigCh <-chan os.Signal, cancel context.CancelFunc, onHangup func()) {
	for {
		select {
		case sig := <-sigCh:
			if sig == syscall.SIGHUP {
				onHangup()
				continue
			}
			logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
			cancel()
			return
		case <-ctx.Done():
			return
		}
	}
}

// reloadOnHangup drops the trait cache so tag edits made in the catalog
// apply without a restart, and rereads the authorization policy file.
func reloadOnHangup(traits *match.TraitStore, enforcer *authz.Enforcer) func() {
	return func() {
		traits.Invalidate()
		logging.Info().Msg("Trait cache cleared")

		switch err := enforcer.LoadPolicy(); {
		case errors.Is(err, authz.ErrNoAdapter):
		case err != nil:
			logging.Error().Err(err).Msg("Authorization policy reload failed")
		default:
			logging.Info().Msg("Authorization policy reloaded")
		}
	}
}

// seedCatalog loads the seed file into an empty catalog. A populated catalog
// is left untouched so operator edits survive restarts.
func seedCatalog(ctx context.Context, store *catalog.Store, path string) error {
	if path == "" {
		return nil
	}
	empty, err := store.IsEmpty(ctx)
	if err != nil {
		return err
	}
	if !empty {
		logging.Info().Str("path", path).Msg("Catalog already populated, skipping seed")
		return nil
	}
	if _, err := store.LoadSeed(ctx, path); err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}
	return nil
}
