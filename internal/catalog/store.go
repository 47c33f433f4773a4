// Tripmatch - Destination Guide Preference Matching and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/rs/zerolog"

	"github.com/tomtom215/tripmatch/internal/config"
	"github.com/tomtom215/tripmatch/internal/match"
	"github.com/tomtom215/tripmatch/internal/metrics"
)

// Store is the DuckDB-backed catalog of tags, tours, restaurants and
// promotions. It is safe for concurrent use.
type Store struct {
	conn        *sql.DB
	cfg         *config.DatabaseConfig
	logger      zerolog.Logger
	searchLimit int
}

// Open opens (or creates) the catalog database and ensures the schema exists.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func Open(cfg *config.DatabaseConfig, logger zerolog.Logger) (*Store, error) {
	if cfg == nil {
		return nil, errors.New("catalog: database config is required")
	}
	numThreads := cfg.Threads
	if numThreads <= 0 {
		numThreads = runtime.NumCPU()
	}

	// 0750 per gosec G301
	if dir := filepath.Dir(cfg.Path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
		}
	}

	maxMemory := cfg.MaxMemory
	if maxMemory == "" {
		maxMemory = "1GB"
	}
	// Extension auto-install is disabled so startup never blocks on the network.
	connStr := fmt.Sprintf("%s?access_mode=read_write&threads=%d&max_memory=%s&autoinstall_known_extensions=false&autoload_known_extensions=false",
		cfg.Path, numThreads, maxMemory)

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	conn.SetMaxOpenConns(runtime.NumCPU())
	conn.SetMaxIdleConns(2)
	conn.SetConnMaxLifetime(time.Hour)
	conn.SetConnMaxIdleTime(5 * time.Minute)

	s := &Store{
		conn:        conn,
		cfg:         cfg,
		logger:      logger.With().Str("component", "catalog").Logger(),
		searchLimit: match.SearchLimit,
	}

	ctx, cancel := schemaContext()
	defer cancel()
	if err := s.InitSchema(ctx); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	s.logger.Info().Str("path", cfg.Path).Int("threads", numThreads).Msg("Catalog database opened")
	return s, nil
}

// SetSearchLimit changes the cap applied to search queries.
func (s *Store) SetSearchLimit(n int) {
	if n > 0 {
		s.searchLimit = n
	}
}

// Close checkpoints and closes the database.
func (s *Store) Close() error {
	if s.conn == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if _, err := s.conn.ExecContext(ctx, "CHECKPOINT"); err != nil {
		s.logger.Warn().Err(err).Msg("Checkpoint before close failed")
	}
	return s.conn.Close()
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if s.conn == nil {
		return errors.New("database connection is nil")
	}
	return s.conn.PingContext(ctx)
}

// observe records the duration and outcome of one catalog operation.
func observe(op string, start time.Time, err error) {
	metrics.RecordDBQuery(op, time.Since(start), err)
}
