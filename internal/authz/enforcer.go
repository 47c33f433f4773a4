// Tripmatch - Destination Guide Preference Matching and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tripmatch

package authz

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/casbin/casbin/v2/persist"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"
	stringadapter "github.com/casbin/casbin/v2/persist/string-adapter"

	"github.com/tomtom215/tripmatch/internal/cache"
	"github.com/tomtom215/tripmatch/internal/config"
	"github.com/tomtom215/tripmatch/internal/logging"
)

//go:embed model.conf
var embeddedModel string

//go:embed policy.csv
var embeddedPolicy string

// Objects and actions referenced by the HTTP layer.
const (
	ObjectCatalog    = "catalog"
	ObjectPromotions = "promotions"

	ActionRead  = "read"
	ActionWrite = "write"
)

// decisionCacheSize bounds cached decisions. Roles, objects and actions
// are few, so the bound is rarely reached.
const decisionCacheSize = 1024

type decisionKey struct {
	role, object, action string
}

// ErrNoAdapter is returned by LoadPolicy when the embedded policy is in use.
var ErrNoAdapter = errors.New("no policy file configured; using embedded policy")

// Enforcer answers role/object/action questions from a Casbin RBAC policy,
// caching decisions when configured.
type Enforcer struct {
	config   config.AuthzConfig
	enforcer *casbin.SyncedEnforcer
	cache    *cache.LRU[decisionKey, bool]
}

// NewEnforcer builds an enforcer from cfg. Empty or missing model and policy
// paths fall back to the embedded files. A policy file is polled for
// changes every ReloadInterval.
func NewEnforcer(cfg *config.AuthzConfig) (*Enforcer, error) {
	if cfg == nil {
		cfg = &config.AuthzConfig{}
	}
	e := &Enforcer{config: *cfg}

	m, err := loadModel(cfg.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load casbin model: %w", err)
	}

	var adapter persist.Adapter = stringadapter.NewAdapter(embeddedPolicy)
	if fileExists(cfg.PolicyPath) {
		adapter = fileadapter.NewAdapter(cfg.PolicyPath)
	} else {
		e.config.PolicyPath = ""
	}

	if e.enforcer, err = casbin.NewSyncedEnforcer(m, adapter); err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}
	if e.config.PolicyPath != "" && cfg.ReloadInterval > 0 {
		e.enforcer.StartAutoLoadPolicy(cfg.ReloadInterval)
	}
	if cfg.CacheEnabled {
		e.cache = cache.NewLRU[decisionKey, bool](decisionCacheSize, cfg.CacheTTL)
	}

	//nolint:errcheck // only fails on a nil model
	rules, _ := e.enforcer.GetPolicy()
	logging.Info().
		Str("policy", policySource(e.config.PolicyPath)).
		Int("rules", len(rules)).
		Str("default_role", cfg.DefaultRole).
		Bool("cache", cfg.CacheEnabled).
		Msg("Authorization enforcer initialized")

	return e, nil
}

func loadModel(path string) (model.Model, error) {
	if fileExists(path) {
		return model.NewModelFromFile(path)
	}
	return model.NewModelFromString(embeddedModel)
}

func policySource(path string) string {
	if path == "" {
		return "embedded"
	}
	return path
}

// Enforce reports whether role may perform action on object. An empty role
// is replaced by the configured default role.
func (e *Enforcer) Enforce(role, object, action string) (bool, error) {
	if role == "" {
		role = e.config.DefaultRole
	}
	if role == "" {
		return false, nil
	}

	key := decisionKey{role, object, action}
	if e.cache != nil {
		if allowed, ok := e.cache.Get(key); ok {
			return allowed, nil
		}
	}

	allowed, err := e.enforcer.Enforce(role, object, action)
	if err != nil {
		return false, fmt.Errorf("enforcement failed: %w", err)
	}

	if e.cache != nil {
		e.cache.Add(key, allowed)
	}
	return allowed, nil
}

// LoadPolicy rereads the policy file and drops cached decisions.
func (e *Enforcer) LoadPolicy() error {
	if e.config.PolicyPath == "" {
		return ErrNoAdapter
	}
	if err := e.enforcer.LoadPolicy(); err != nil {
		return err
	}
	e.clearCache()
	return nil
}

// Close stops policy reloading.
func (e *Enforcer) Close() {
	e.enforcer.StopAutoLoadPolicy()
}

func (e *Enforcer) clearCache() {
	if e.cache != nil {
		e.cache.Clear()
	}
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}
