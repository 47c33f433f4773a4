// Tripmatch - Destination Guide Preference Matching and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

// Package prefstore persists traveler preferences in BadgerDB.
//
// Two scopes are kept: anonymous device preferences keyed by device id,
// which expire DeviceTTL after their last write, and signed-in profile
// preferences keyed by user id, which never expire. Values are the partial
// preference inputs the traveler set; resolution into a full vector happens
// in the match package.
package prefstore

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	"unicode"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/blake2b"

	"github.com/tomtom215/tripmatch/internal/config"
	"github.com/tomtom215/tripmatch/internal/match"
	"github.com/tomtom215/tripmatch/internal/metrics"
)

// Key prefixes for BadgerDB storage. Identifiers are stored as BLAKE2b-256
// digests, never verbatim.
const (
	deviceKeyPrefix  = "device:"
	profileKeyPrefix = "profile:"
)

// Scopes label metrics and log lines.
const (
	ScopeDevice  = "device"
	ScopeProfile = "profile"
)

// MaxKeyLength bounds device and user identifiers.
const MaxKeyLength = 128

// gcDiscardRatio is the value log rewrite threshold.
const gcDiscardRatio = 0.5

// ErrInvalidKey is returned for empty, oversized or non-printable identifiers.
var ErrInvalidKey = errors.New("invalid preference key")

// Record is the stored form of one scope's preferences.
type Record struct {
	Preferences match.PreferenceInput `json:"preferences"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

// Store is a BadgerDB-backed preference store. It is safe for concurrent use.
type Store struct {
	db        *badger.DB
	deviceTTL time.Duration
	inMemory  bool
	logger    zerolog.Logger
	now       func() time.Time
}

// Open opens the store described by cfg. An empty Path runs badger in
// memory, which is what tests and ephemeral deployments use.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func Open(cfg *config.PreferencesConfig, logger zerolog.Logger) (*Store, error) {
	if cfg == nil {
		return nil, errors.New("prefstore: preferences config is required")
	}

	var opts badger.Options
	inMemory := cfg.Path == ""
	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		// 0750 per gosec G301
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("create preference directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
		// Preference records are small.
		opts.ValueLogFileSize = 16 << 20
		opts.SyncWrites = true
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db for preferences: %w", err)
	}

	s := &Store{
		db:        db,
		deviceTTL: cfg.DeviceTTL,
		inMemory:  inMemory,
		logger:    logger.With().Str("component", "prefstore").Logger(),
		now:       time.Now,
	}
	s.logger.Info().
		Str("path", cfg.Path).
		Bool("in_memory", inMemory).
		Dur("device_ttl", cfg.DeviceTTL).
		Msg("Preference store opened")
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// ValidateKey checks a device or user identifier.
func ValidateKey(id string) error {
	if id == "" || len(id) > MaxKeyLength {
		return fmt.Errorf("%w: length must be 1-%d", ErrInvalidKey, MaxKeyLength)
	}
	for _, r := range id {
		if unicode.IsSpace(r) || !unicode.IsPrint(r) {
			return fmt.Errorf("%w: contains whitespace or control characters", ErrInvalidKey)
		}
	}
	return nil
}

// GetDevicePreferences returns the stored preferences of a device, or nil
// when none are stored or they expired.
func (s *Store) GetDevicePreferences(ctx context.Context, deviceID string) (*match.PreferenceInput, error) {
	return s.get(ctx, ScopeDevice, deviceKeyPrefix, deviceID)
}

// GetProfilePreferences returns the stored preferences of a user, or nil
// when none are stored.
func (s *Store) GetProfilePreferences(ctx context.Context, userID string) (*match.PreferenceInput, error) {
	return s.get(ctx, ScopeProfile, profileKeyPrefix, userID)
}

// PutDevicePreferences replaces a device's preferences and restarts its TTL.
func (s *Store) PutDevicePreferences(ctx context.Context, deviceID string, prefs *match.PreferenceInput) error {
	return s.put(ctx, ScopeDevice, deviceKeyPrefix, deviceID, prefs, s.deviceTTL)
}

// PutProfilePreferences replaces a user's preferences.
func (s *Store) PutProfilePreferences(ctx context.Context, userID string, prefs *match.PreferenceInput) error {
	return s.put(ctx, ScopeProfile, profileKeyPrefix, userID, prefs, 0)
}

// DeleteDevicePreferences removes a device's preferences. Deleting a
// missing entry is not an error.
func (s *Store) DeleteDevicePreferences(ctx context.Context, deviceID string) error {
	if err := ValidateKey(deviceID); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(storageKey(deviceKeyPrefix, deviceID))
	})
	if err != nil {
		metrics.RecordPreferenceOp("delete", ScopeDevice, "error")
		return fmt.Errorf("delete device preferences: %w", err)
	}
	metrics.RecordPreferenceOp("delete", ScopeDevice, "ok")
	return nil
}

// GetRecord returns the full stored record for a scope, including its
// update time. scope is ScopeDevice or ScopeProfile.
func (s *Store) GetRecord(ctx context.Context, scope, id string) (*Record, error) {
	prefix, err := prefixFor(scope)
	if err != nil {
		return nil, err
	}
	return s.getRecord(ctx, scope, prefix, id)
}

// storageKey returns the badger key of an identifier.
func storageKey(prefix, id string) []byte {
	sum := blake2b.Sum256([]byte(id))
	key := make([]byte, len(prefix)+hex.EncodedLen(len(sum)))
	copy(key, prefix)
	hex.Encode(key[len(prefix):], sum[:])
	return key
}

func prefixFor(scope string) (string, error) {
	switch scope {
	case ScopeDevice:
		return deviceKeyPrefix, nil
	case ScopeProfile:
		return profileKeyPrefix, nil
	default:
		return "", fmt.Errorf("unknown preference scope %q", scope)
	}
}

func (s *Store) get(ctx context.Context, scope, prefix, id string) (*match.PreferenceInput, error) {
	rec, err := s.getRecord(ctx, scope, prefix, id)
	if err != nil || rec == nil {
		return nil, err
	}
	return &rec.Preferences, nil
}

func (s *Store) getRecord(ctx context.Context, scope, prefix, id string) (*Record, error) {
	if err := ValidateKey(id); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		rec   Record
		found bool
	)
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(storageKey(prefix, id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	if err != nil {
		metrics.RecordPreferenceOp("get", scope, "error")
		return nil, fmt.Errorf("get %s preferences: %w", scope, err)
	}
	if !found {
		metrics.RecordPreferenceOp("get", scope, "miss")
		return nil, nil
	}
	metrics.RecordPreferenceOp("get", scope, "hit")
	return &rec, nil
}

func (s *Store) put(ctx context.Context, scope, prefix, id string, prefs *match.PreferenceInput, ttl time.Duration) error {
	if err := ValidateKey(id); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if prefs == nil {
		prefs = &match.PreferenceInput{}
	}

	data, err := json.Marshal(Record{
		Preferences: *prefs.Normalize(),
		UpdatedAt:   s.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal %s preferences: %w", scope, err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(storageKey(prefix, id), data)
		if ttl > 0 {
			entry = entry.WithTTL(ttl)
		}
		return txn.SetEntry(entry)
	})
	if err != nil {
		metrics.RecordPreferenceOp("put", scope, "error")
		return fmt.Errorf("put %s preferences: %w", scope, err)
	}
	metrics.RecordPreferenceOp("put", scope, "ok")
	return nil
}

// Count returns the number of live entries per scope.
func (s *Store) Count(ctx context.Context) (map[string]int, error) {
	counts := map[string]int{ScopeDevice: 0, ScopeProfile: 0}
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			key := string(it.Item().Key())
			switch {
			case strings.HasPrefix(key, deviceKeyPrefix):
				counts[ScopeDevice]++
			case strings.HasPrefix(key, profileKeyPrefix):
				counts[ScopeProfile]++
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("count preferences: %w", err)
	}
	return counts, nil
}

// RunValueLogGC reclaims value log space until badger reports nothing left
// to rewrite. It is a no-op for in-memory stores.
func (s *Store) RunValueLogGC(ctx context.Context) error {
	if s.inMemory {
		return nil
	}
	rewrites := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := s.db.RunValueLogGC(gcDiscardRatio)
		if errors.Is(err, badger.ErrNoRewrite) {
			break
		}
		if err != nil {
			return fmt.Errorf("preference value log gc: %w", err)
		}
		rewrites++
	}
	if rewrites > 0 {
		s.logger.Debug().Int("rewrites", rewrites).Msg("Preference value log compacted")
	}
	return nil
}
