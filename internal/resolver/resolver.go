// Package resolver derives requested quantities from a known set by
// walking the model registry depth-first.
//
// Resolution of one kind:
//  1. A kind already in the known set is returned unchanged.
//  2. Otherwise the rules producing it are tried in priority order, or only
//     the explicitly chosen rule when a choice exists for that kind.
//  3. Each input of a candidate is resolved recursively. A kind that is
//     already on the resolution stack is a cyclic dependency.
//  4. The first candidate whose inputs all resolve is applied and its
//     output stored in the known set. Later candidates are not tried.
//  5. If no candidate can be satisfied the attempts are reported.
//
// Quantities derived while trying a candidate stay in the known set even
// if that candidate is later abandoned; they are valid derivations.
package resolver

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/leapstack-labs/lpi/pkg/core"
	"github.com/leapstack-labs/lpi/pkg/quantity"
)

// Rules is the read side of a model registry.
type Rules interface {
	RulesFor(kind quantity.Kind) []core.ModelRule
}

// Resolver resolves kinds against a set of rules. It holds no per-request
// state and is safe for concurrent use as long as every call gets its own
// KnownSet.
type Resolver struct {
	rules  Rules
	logger *slog.Logger
}

// New creates a resolver over rules. A nil logger discards output.
func New(rules Rules, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Resolver{rules: rules, logger: logger}
}

// Option configures a single resolution request.
type Option func(*options)

type options struct {
	model   string
	choices map[quantity.Kind]string
	logger  *slog.Logger
}

// WithModel restricts the requested kind to the rule with the given model
// tag or rule name.
func WithModel(model string) Option {
	return func(o *options) { o.model = model }
}

// WithChoices pins the rule used for each listed kind, anywhere in the
// derivation chain. Values are model tags or rule names.
func WithChoices(choices map[quantity.Kind]string) Option {
	return func(o *options) {
		for k, v := range choices {
			o.choices[k] = v
		}
	}
}

// WithLogger overrides the resolver's logger for one request.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// Resolve returns the quantity of kind target, deriving it and any
// intermediates into known as needed.
func (r *Resolver) Resolve(target quantity.Kind, known *core.KnownSet, opts ...Option) (quantity.Quantity, error) {
	step, err := r.newRequest(target, known, opts).resolve(target)
	if err != nil {
		return quantity.Quantity{}, err
	}
	return step.Quantity, nil
}

// ResolveAll resolves each kind in order into the same known set. It stops
// at the first error.
func (r *Resolver) ResolveAll(kinds []quantity.Kind, known *core.KnownSet, opts ...Option) ([]quantity.Quantity, error) {
	out := make([]quantity.Quantity, 0, len(kinds))
	for _, k := range kinds {
		q, err := r.Resolve(k, known, opts...)
		if err != nil {
			return out, err
		}
		out = append(out, q)
	}
	return out, nil
}

// Explain resolves target and returns the derivation tree together with
// the validity notes of every rule applied.
func (r *Resolver) Explain(target quantity.Kind, known *core.KnownSet, opts ...Option) (*Trace, error) {
	req := r.newRequest(target, known, opts)
	step, err := req.resolve(target)
	if err != nil {
		return nil, err
	}
	return &Trace{Root: step, Notes: req.notes}, nil
}

func (r *Resolver) newRequest(target quantity.Kind, known *core.KnownSet, opts []Option) *request {
	o := options{choices: make(map[quantity.Kind]string), logger: r.logger}
	for _, opt := range opts {
		opt(&o)
	}
	if o.model != "" {
		o.choices[target] = o.model
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	if known == nil {
		known = core.NewKnownSet()
	}
	return &request{
		rules:   r.rules,
		known:   known,
		choices: o.choices,
		logger:  o.logger,
		onStack: make(map[quantity.Kind]bool),
		steps:   make(map[quantity.Kind]*Step),
	}
}

// request is the state of one Resolve call.
type request struct {
	rules   Rules
	known   *core.KnownSet
	choices map[quantity.Kind]string
	logger  *slog.Logger

	stack   []quantity.Kind
	onStack map[quantity.Kind]bool
	steps   map[quantity.Kind]*Step
	notes   []core.Note
}

func (rq *request) resolve(kind quantity.Kind) (*Step, error) {
	if q, ok := rq.known.Get(kind); ok {
		if step, ok := rq.steps[kind]; ok {
			return step, nil
		}
		return &Step{Kind: kind, Quantity: q, Source: SourceKnown}, nil
	}

	if rq.onStack[kind] {
		return nil, rq.cycle(kind)
	}

	candidates, err := rq.candidates(kind)
	if err != nil {
		return nil, err
	}

	rq.stack = append(rq.stack, kind)
	rq.onStack[kind] = true
	defer func() {
		rq.stack = rq.stack[:len(rq.stack)-1]
		delete(rq.onStack, kind)
	}()

	var attempts []core.Attempt
	for _, rule := range candidates {
		inputs, missing, err := rq.resolveInputs(rule)
		if err != nil {
			return nil, err
		}
		if len(missing) > 0 {
			rq.logger.Debug("rule not satisfiable",
				slog.String("kind", kind.String()),
				slog.String("rule", rule.Name),
				slog.Any("missing", missing))
			attempts = append(attempts, core.Attempt{Rule: rule.Name, Model: rule.Model, Missing: missing})
			continue
		}
		return rq.apply(rule, inputs)
	}

	return nil, &core.UnresolvableQuantityError{Kind: kind, Attempts: attempts}
}

// candidates returns the rules to try for kind.
func (rq *request) candidates(kind quantity.Kind) ([]core.ModelRule, error) {
	rules := rq.rules.RulesFor(kind)
	if len(rules) == 0 {
		return nil, &core.UnknownQuantityError{Kind: kind}
	}

	choice, ok := rq.choices[kind]
	if !ok {
		return rules, nil
	}
	for _, rule := range rules {
		if strings.EqualFold(rule.Model, choice) || strings.EqualFold(rule.Name, choice) {
			return []core.ModelRule{rule}, nil
		}
	}

	var available []string
	seen := make(map[string]bool)
	for _, rule := range rules {
		if !seen[rule.Model] {
			seen[rule.Model] = true
			available = append(available, rule.Model)
		}
	}
	return nil, &core.UnknownModelError{Kind: kind, Model: choice, Available: available}
}

// resolveInputs resolves every input of rule. Inputs that cannot be
// obtained are collected as missing; any other error is returned.
func (rq *request) resolveInputs(rule core.ModelRule) ([]*Step, []quantity.Kind, error) {
	var (
		steps   []*Step
		missing []quantity.Kind
	)
	for _, in := range rule.Inputs {
		step, err := rq.resolve(in)
		switch {
		case err == nil:
			steps = append(steps, step)
		case errors.Is(err, core.ErrUnknownQuantity), errors.Is(err, core.ErrUnresolvable):
			missing = append(missing, in)
		default:
			return nil, nil, err
		}
	}
	return steps, missing, nil
}

func (rq *request) apply(rule core.ModelRule, inputs []*Step) (*Step, error) {
	in := rq.known.Inputs(rule.Inputs)
	q, err := rule.Apply(in)
	if err != nil {
		return nil, err
	}
	rq.known.Set(q)

	step := &Step{
		Kind:     rule.Output,
		Quantity: q,
		Source:   SourceDerived,
		Rule:     rule.Name,
		Model:    rule.Model,
		Inputs:   inputs,
	}
	for _, msg := range rule.Notes(in) {
		note := core.Note{Rule: rule.Name, Kind: rule.Output, Severity: core.SeverityWarning, Message: msg}
		step.Notes = append(step.Notes, note)
		rq.notes = append(rq.notes, note)
	}
	rq.steps[rule.Output] = step

	rq.logger.Debug("derived quantity",
		slog.String("kind", rule.Output.String()),
		slog.String("rule", rule.Name),
		slog.String("value", q.String()))
	return step, nil
}

// cycle builds the error for re-entering kind. The path runs from the
// first occurrence of kind on the stack back to kind.
func (rq *request) cycle(kind quantity.Kind) error {
	start := 0
	for i, k := range rq.stack {
		if k == kind {
			start = i
			break
		}
	}
	path := append([]quantity.Kind(nil), rq.stack[start:]...)
	path = append(path, kind)
	return &core.CyclicDependencyError{Path: path}
}
