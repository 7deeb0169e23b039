// Package engine assembles the estimation pipeline used by the CLI: the
// builtin model catalog plus user rule files, a frozen registry and the
// optional run history store. Sessions add the resolver and PIC estimator.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	intconfig "github.com/leapstack-labs/lpi/internal/config"
	"github.com/leapstack-labs/lpi/internal/dag"
	"github.com/leapstack-labs/lpi/internal/registry"
	starctx "github.com/leapstack-labs/lpi/internal/starlark"
	"github.com/leapstack-labs/lpi/internal/state"
	"github.com/leapstack-labs/lpi/pkg/core"
	"github.com/leapstack-labs/lpi/pkg/quantity"
)

// Engine holds the base registry shared by every experiment it evaluates.
// Experiments that bring their own rules or preferences get a private
// registry layered on top of it (see Session).
type Engine struct {
	logger *slog.Logger
	loader *starctx.Loader

	registry *registry.ModelRegistry
	choices  map[quantity.Kind]string
	rulesDir string
	custom   []core.ModelRule
	prefs    []intconfig.Preference
	pic      *intconfig.PICConfig

	// Run history store (lazily opened)
	statePath   string
	store       state.Store
	storeOpened bool
	storeMu     sync.Mutex
}

// Config holds engine configuration.
type Config struct {
	// RulesDir holds user *.star rule files (optional, missing is fine)
	RulesDir string
	// Preferences re-prioritize rules before the registry is frozen
	Preferences []intconfig.Preference
	// Models are default model choices by kind name
	Models map[string]string
	// PIC holds default estimator settings for experiments without their own
	PIC *intconfig.PICConfig
	// StatePath is the run history database; empty disables recording
	StatePath string
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// New builds the base registry from the builtin catalog and the rules in
// cfg.RulesDir, applies the preferences and freezes it.
func New(cfg Config) (*Engine, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	logger.Debug("initializing engine", "rules_dir", cfg.RulesDir, "state_path", cfg.StatePath)

	choices, err := intconfig.ParseChoices(cfg.Models)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		logger:    logger,
		loader:    starctx.NewLoader(),
		choices:   choices,
		rulesDir:  cleanDir(cfg.RulesDir),
		prefs:     cfg.Preferences,
		pic:       cfg.PIC,
		statePath: cfg.StatePath,
	}

	custom, err := e.LoadRules(e.rulesDir)
	if err != nil {
		return nil, err
	}
	e.custom = custom

	reg, err := e.buildRegistry(registry.Default(), custom, cfg.Preferences)
	if err != nil {
		return nil, err
	}
	e.registry = reg

	logger.Debug("engine ready", "rules", reg.Count(), "custom_rules", len(custom))
	return e, nil
}

// LoadRules loads the *.star files of dir. An empty or missing dir yields
// no rules.
func (e *Engine) LoadRules(dir string) ([]core.ModelRule, error) {
	if dir == "" {
		return nil, nil
	}
	rules, err := e.loader.LoadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules: %w", err)
	}
	if len(rules) > 0 {
		e.logger.Debug("loaded rules", "dir", dir, "count", len(rules))
	}
	return rules, nil
}

// buildRegistry clones base, adds rules, applies prefs and freezes. Rules
// that close a dependency cycle are rejected here rather than at resolve
// time.
func (e *Engine) buildRegistry(base *registry.ModelRegistry, rules []core.ModelRule, prefs []intconfig.Preference) (*registry.ModelRegistry, error) {
	reg := base.Clone()
	if err := reg.RegisterAll(rules...); err != nil {
		return nil, fmt.Errorf("failed to register rules: %w", err)
	}
	if err := dag.FromRules(reg).Validate(); err != nil {
		return nil, fmt.Errorf("failed to register rules: %w", err)
	}
	if err := intconfig.ApplyPreferences(reg, prefs); err != nil {
		return nil, err
	}
	reg.Freeze()
	return reg, nil
}

// ensureStoreOpened lazily opens and migrates the run history store.
func (e *Engine) ensureStoreOpened() (state.Store, error) {
	e.storeMu.Lock()
	defer e.storeMu.Unlock()

	if e.storeOpened {
		return e.store, nil
	}
	if e.statePath == "" {
		return nil, fmt.Errorf("run history is disabled (no state path)")
	}

	if e.statePath != ":memory:" {
		if dir := filepath.Dir(e.statePath); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return nil, fmt.Errorf("failed to create state directory: %w", err)
			}
		}
	}

	store := state.NewSQLiteStore(e.logger)
	if err := store.Open(e.statePath); err != nil {
		return nil, fmt.Errorf("failed to open state store: %w", err)
	}
	if err := store.Migrate(); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to migrate state store: %w", err)
	}

	e.store = store
	e.storeOpened = true
	return store, nil
}

// History returns the run history store, opening it on first use.
func (e *Engine) History() (state.Store, error) {
	return e.ensureStoreOpened()
}

// Runs lists recorded runs, most recent first. limit <= 0 lists all.
func (e *Engine) Runs(ctx context.Context, limit int) ([]*state.Run, error) {
	store, err := e.ensureStoreOpened()
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = -1
	}
	return store.ListRuns(ctx, limit)
}

// Close releases all resources.
func (e *Engine) Close() error {
	e.logger.Debug("closing engine")

	e.storeMu.Lock()
	defer e.storeMu.Unlock()
	if e.store != nil {
		if err := e.store.Close(); err != nil {
			return fmt.Errorf("errors closing engine: %w", err)
		}
		e.store = nil
		e.storeOpened = false
	}
	return nil
}

// --- Getters (public accessors) ---

// Registry returns the frozen base registry.
func (e *Engine) Registry() *registry.ModelRegistry {
	return e.registry
}

// CustomRules returns the rules loaded from the configured rules directory.
func (e *Engine) CustomRules() []core.ModelRule {
	return e.custom
}

// Graph builds the kind dependency graph of the base registry.
func (e *Engine) Graph() *dag.Graph {
	return dag.FromRules(e.registry)
}

func cleanDir(dir string) string {
	if dir == "" {
		return ""
	}
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return filepath.Clean(dir)
}
