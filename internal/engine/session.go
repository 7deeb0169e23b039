package engine

import (
	"fmt"
	"log/slog"

	intconfig "github.com/leapstack-labs/lpi/internal/config"
	"github.com/leapstack-labs/lpi/internal/pic"
	"github.com/leapstack-labs/lpi/internal/registry"
	"github.com/leapstack-labs/lpi/internal/resolver"
	"github.com/leapstack-labs/lpi/pkg/core"
	"github.com/leapstack-labs/lpi/pkg/quantity"
)

// Session evaluates one experiment. Every request starts from a fresh copy
// of the experiment's seeded known set, so a Session is safe for
// concurrent use.
type Session struct {
	Experiment *intconfig.Experiment
	Registry   *registry.ModelRegistry
	Resolver   *resolver.Resolver
	Choices    map[quantity.Kind]string

	known  *core.KnownSet
	pic    *intconfig.PICConfig
	logger *slog.Logger
}

// Session prepares exp for evaluation. Model choices are layered: engine
// defaults, then the experiment's models, then overrides.
func (e *Engine) Session(exp *intconfig.Experiment, overrides map[quantity.Kind]string) (*Session, error) {
	known, err := exp.KnownSet()
	if err != nil {
		return nil, fmt.Errorf("experiment %s: %w", exp.Name, err)
	}

	expChoices, err := exp.Choices()
	if err != nil {
		return nil, fmt.Errorf("experiment %s: %w", exp.Name, err)
	}
	choices := make(map[quantity.Kind]string, len(e.choices)+len(expChoices)+len(overrides))
	for _, layer := range []map[quantity.Kind]string{e.choices, expChoices, overrides} {
		for k, v := range layer {
			choices[k] = v
		}
	}

	reg := e.registry
	var rules []core.ModelRule
	if dir := cleanDir(exp.RulesDir); dir != "" && dir != e.rulesDir {
		if rules, err = e.LoadRules(dir); err != nil {
			return nil, fmt.Errorf("experiment %s: %w", exp.Name, err)
		}
	}
	if len(rules) > 0 || len(exp.Preferences) > 0 {
		if reg, err = e.buildRegistry(e.registry, rules, exp.Preferences); err != nil {
			return nil, fmt.Errorf("experiment %s: %w", exp.Name, err)
		}
	}

	picCfg := e.pic.Merge(exp.PIC)

	logger := e.logger.With("experiment", exp.Name)
	return &Session{
		Experiment: exp,
		Registry:   reg,
		Resolver:   resolver.New(reg, logger),
		Choices:    choices,
		known:      known,
		pic:        picCfg,
		logger:     logger,
	}, nil
}

// Known returns a fresh copy of the experiment's seeded quantities.
func (s *Session) Known() *core.KnownSet {
	return s.known.Clone()
}

func (s *Session) options(model string) []resolver.Option {
	opts := []resolver.Option{resolver.WithChoices(s.Choices)}
	if model != "" {
		opts = append(opts, resolver.WithModel(model))
	}
	return opts
}

// Estimate resolves kinds in order against one known set. It stops at the
// first failure and returns what was resolved so far with the error.
func (s *Session) Estimate(kinds []quantity.Kind) ([]quantity.Quantity, []core.Note, error) {
	known := s.Known()
	out := make([]quantity.Quantity, 0, len(kinds))
	var notes []core.Note
	seen := make(map[string]bool)

	for _, k := range kinds {
		trace, err := s.Resolver.Explain(k, known, s.options("")...)
		if err != nil {
			return out, notes, err
		}
		out = append(out, trace.Root.Quantity)
		for _, n := range trace.Notes {
			if key := n.String(); !seen[key] {
				seen[key] = true
				notes = append(notes, n)
			}
		}
	}
	return out, notes, nil
}

// Explain returns the derivation of kind. A non-empty model forces the
// rule used for kind itself.
func (s *Session) Explain(kind quantity.Kind, model string) (*resolver.Trace, error) {
	return s.Resolver.Explain(kind, s.Known(), s.options(model)...)
}

// Settings returns the PIC settings of the experiment layered over the
// engine defaults.
func (s *Session) Settings() (pic.Settings, error) {
	return s.pic.Settings()
}

// PIC estimates simulation parameters with settings.
func (s *Session) PIC(settings pic.Settings) (*pic.Estimate, error) {
	return pic.NewEstimator(s.Resolver, s.logger).Estimate(s.Known(), settings, s.options("")...)
}
