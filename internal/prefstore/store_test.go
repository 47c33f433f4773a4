// Tripmatch - Destination Guide Preference Matching and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package prefstore

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/tomtom215/tripmatch/internal/config"
	"github.com/tomtom215/tripmatch/internal/match"
	"github.com/tomtom215/tripmatch/internal/metrics"
)

func setupTestStore(t *testing.T, ttl time.Duration) *Store {
	t.Helper()
	s, err := Open(&config.PreferencesConfig{DeviceTTL: ttl}, zerolog.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})
	return s
}

func intp(v int) *int { return &v }

func TestOpen_NilConfig(t *testing.T) {
	if _, err := Open(nil, zerolog.Nop()); err == nil {
		t.Fatal("Open(nil) should fail")
	}
}

func TestOpen_OnDisk(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.PreferencesConfig{Path: dir}
	ctx := context.Background()

	s, err := Open(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.PutProfilePreferences(ctx, "user-1", &match.PreferenceInput{Adventure: intp(70)}); err != nil {
		t.Fatal(err)
	}
	if err := s.RunValueLogGC(ctx); err != nil {
		t.Errorf("RunValueLogGC: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := Open(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.GetProfilePreferences(ctx, "user-1")
	if err != nil || got == nil || got.Adventure == nil || *got.Adventure != 70 {
		t.Fatalf("after reopen = %+v, %v", got, err)
	}
}

func TestDevicePreferences_RoundTrip(t *testing.T) {
	s := setupTestStore(t, time.Hour)
	ctx := context.Background()

	got, err := s.GetDevicePreferences(ctx, "device-abc")
	if err != nil || got != nil {
		t.Fatalf("missing device = %+v, %v; want nil, nil", got, err)
	}

	in := &match.PreferenceInput{Adventure: intp(150), FoodAndDrinkInterest: intp(-4)}
	if err := s.PutDevicePreferences(ctx, "device-abc", in); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err = s.GetDevicePreferences(ctx, "device-abc")
	if err != nil || got == nil {
		t.Fatalf("Get = %+v, %v", got, err)
	}
	if *got.Adventure != 100 || *got.FoodAndDrinkInterest != 0 {
		t.Errorf("stored values should be clamped: adventure=%d food=%d", *got.Adventure, *got.FoodAndDrinkInterest)
	}
	if got.GroupIntimacy != nil {
		t.Error("unset axes must stay unset")
	}

	if err := s.DeleteDevicePreferences(ctx, "device-abc"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.DeleteDevicePreferences(ctx, "device-abc"); err != nil {
		t.Errorf("second Delete: %v", err)
	}
	got, _ = s.GetDevicePreferences(ctx, "device-abc")
	if got != nil {
		t.Errorf("after delete = %+v, want nil", got)
	}
}

func TestScopesAreIndependent(t *testing.T) {
	s := setupTestStore(t, 0)
	ctx := context.Background()

	if err := s.PutDevicePreferences(ctx, "same-id", &match.PreferenceInput{Adventure: intp(10)}); err != nil {
		t.Fatal(err)
	}
	if err := s.PutProfilePreferences(ctx, "same-id", &match.PreferenceInput{Adventure: intp(90)}); err != nil {
		t.Fatal(err)
	}

	device, _ := s.GetDevicePreferences(ctx, "same-id")
	profile, _ := s.GetProfilePreferences(ctx, "same-id")
	if *device.Adventure != 10 || *profile.Adventure != 90 {
		t.Errorf("device=%d profile=%d, want 10 and 90", *device.Adventure, *profile.Adventure)
	}

	counts, err := s.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if counts[ScopeDevice] != 1 || counts[ScopeProfile] != 1 {
		t.Errorf("counts = %v", counts)
	}
}

func TestGetRecord_UpdatedAt(t *testing.T) {
	s := setupTestStore(t, 0)
	fixed := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }
	ctx := context.Background()

	if err := s.PutProfilePreferences(ctx, "user-7", &match.PreferenceInput{PriceComfort: intp(40)}); err != nil {
		t.Fatal(err)
	}
	rec, err := s.GetRecord(ctx, ScopeProfile, "user-7")
	if err != nil || rec == nil {
		t.Fatalf("GetRecord = %+v, %v", rec, err)
	}
	if !rec.UpdatedAt.Equal(fixed) {
		t.Errorf("UpdatedAt = %v, want %v", rec.UpdatedAt, fixed)
	}
	if _, err := s.GetRecord(ctx, "hotel", "user-7"); err == nil {
		t.Error("unknown scope should fail")
	}
}

func TestDeviceTTL(t *testing.T) {
	s := setupTestStore(t, time.Second)
	ctx := context.Background()

	if err := s.PutDevicePreferences(ctx, "short-lived", &match.PreferenceInput{Adventure: intp(50)}); err != nil {
		t.Fatal(err)
	}
	if err := s.PutProfilePreferences(ctx, "forever", &match.PreferenceInput{Adventure: intp(50)}); err != nil {
		t.Fatal(err)
	}

	// Badger TTLs have one-second resolution.
	time.Sleep(2100 * time.Millisecond)

	device, err := s.GetDevicePreferences(ctx, "short-lived")
	if err != nil || device != nil {
		t.Errorf("expired device = %+v, %v; want nil, nil", device, err)
	}
	profile, err := s.GetProfilePreferences(ctx, "forever")
	if err != nil || profile == nil {
		t.Errorf("profile = %+v, %v; profiles never expire", profile, err)
	}
}

func TestValidateKey(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{"uuid", "0b7e6a3c-4f1d-4c57-9d8e-2f7a1b9c0d11", false},
		{"email-like", "traveler@example.com", false},
		{"empty", "", true},
		{"too long", strings.Repeat("x", MaxKeyLength+1), true},
		{"max length", strings.Repeat("x", MaxKeyLength), false},
		{"space", "device one", true},
		{"newline", "device\n", true},
		{"control", "dev\x00ice", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateKey(tt.id)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateKey(%q) err = %v, wantErr %v", tt.id, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidKey) {
				t.Errorf("err = %v, want ErrInvalidKey", err)
			}
		})
	}
}

func TestStorageKey(t *testing.T) {
	a := storageKey(deviceKeyPrefix, "device-a")
	b := storageKey(deviceKeyPrefix, "device-b")
	if !strings.HasPrefix(string(a), deviceKeyPrefix) {
		t.Fatalf("key %q missing prefix %q", a, deviceKeyPrefix)
	}
	if got, want := len(a), len(deviceKeyPrefix)+64; got != want {
		t.Errorf("len(key) = %d, want %d", got, want)
	}
	if strings.Contains(string(a), "device-a") {
		t.Errorf("key %q contains raw identifier", a)
	}
	if string(a) == string(b) {
		t.Error("distinct identifiers produced the same key")
	}
	if string(a) != string(storageKey(deviceKeyPrefix, "device-a")) {
		t.Error("storageKey is not deterministic")
	}
	if string(storageKey(profileKeyPrefix, "device-a")[len(profileKeyPrefix):]) != string(a[len(deviceKeyPrefix):]) {
		t.Error("digest should not depend on the prefix")
	}
}

func TestInvalidKeyRejected(t *testing.T) {
	s := setupTestStore(t, 0)
	ctx := context.Background()

	if _, err := s.GetDevicePreferences(ctx, ""); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("Get err = %v", err)
	}
	if err := s.PutProfilePreferences(ctx, "bad id", nil); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("Put err = %v", err)
	}
	if err := s.DeleteDevicePreferences(ctx, ""); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("Delete err = %v", err)
	}
}

func TestCancelledContext(t *testing.T) {
	s := setupTestStore(t, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.GetProfilePreferences(ctx, "user"); !errors.Is(err, context.Canceled) {
		t.Errorf("Get err = %v, want context.Canceled", err)
	}
	if err := s.PutDevicePreferences(ctx, "dev", nil); !errors.Is(err, context.Canceled) {
		t.Errorf("Put err = %v, want context.Canceled", err)
	}
}

func TestPreferenceMetrics(t *testing.T) {
	s := setupTestStore(t, 0)
	ctx := context.Background()

	misses := metrics.PreferenceStoreOperations.WithLabelValues("get", ScopeProfile, "miss")
	hits := metrics.PreferenceStoreOperations.WithLabelValues("get", ScopeProfile, "hit")
	missBefore, hitBefore := testutil.ToFloat64(misses), testutil.ToFloat64(hits)

	_, _ = s.GetProfilePreferences(ctx, "metrics-user")
	_ = s.PutProfilePreferences(ctx, "metrics-user", &match.PreferenceInput{Adventure: intp(1)})
	_, _ = s.GetProfilePreferences(ctx, "metrics-user")

	if got := testutil.ToFloat64(misses) - missBefore; got != 1 {
		t.Errorf("misses grew by %v, want 1", got)
	}
	if got := testutil.ToFloat64(hits) - hitBefore; got != 1 {
		t.Errorf("hits grew by %v, want 1", got)
	}
}

func TestRunValueLogGC_InMemory(t *testing.T) {
	s := setupTestStore(t, 0)
	if err := s.RunValueLogGC(context.Background()); err != nil {
		t.Errorf("in-memory GC should be a no-op, got %v", err)
	}
}
