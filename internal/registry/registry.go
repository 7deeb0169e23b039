// Package registry holds the catalog of model rules. A registry is built
// once, optionally re-prioritized, then frozen and shared read-only.
package registry

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/leapstack-labs/lpi/pkg/core"
	"github.com/leapstack-labs/lpi/pkg/quantity"
)

type entry struct {
	rule core.ModelRule
	seq  int // registration order, the tie-break for equal priorities
}

// ModelRegistry maps output kinds to the rules that derive them.
type ModelRegistry struct {
	mu     sync.RWMutex
	frozen atomic.Bool

	// byName maps rule names to entries: "Wilks1992.HotElectronTemperature" → entry
	byName map[string]*entry

	// byKind maps output kinds to their rules, kept in priority order
	byKind map[quantity.Kind][]*entry

	seq int
}

// NewModelRegistry creates a new empty, unfrozen registry.
func NewModelRegistry() *ModelRegistry {
	return &ModelRegistry{
		byName: make(map[string]*entry),
		byKind: make(map[quantity.Kind][]*entry),
	}
}

// rlock takes the read lock unless the registry is frozen. Once frozen the
// maps never change, so readers skip locking entirely.
func (r *ModelRegistry) rlock() func() {
	if r.frozen.Load() {
		return func() {}
	}
	r.mu.RLock()
	return r.mu.RUnlock
}

// Register adds a rule. Several rules may share an output kind; rule names
// must be unique.
func (r *ModelRegistry) Register(rule core.ModelRule) error {
	if err := rule.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen.Load() {
		return core.ErrRegistryFrozen
	}
	if _, exists := r.byName[rule.Name]; exists {
		return fmt.Errorf("%w: %s", core.ErrDuplicateRule, rule.Name)
	}

	rule.Inputs = append([]quantity.Kind(nil), rule.Inputs...)
	e := &entry{rule: rule, seq: r.seq}
	r.seq++

	r.byName[rule.Name] = e
	r.byKind[rule.Output] = append(r.byKind[rule.Output], e)
	r.sortKind(rule.Output)
	return nil
}

// RegisterAll registers rules in order, stopping at the first error.
func (r *ModelRegistry) RegisterAll(rules ...core.ModelRule) error {
	for _, rule := range rules {
		if err := r.Register(rule); err != nil {
			return err
		}
	}
	return nil
}

// sortKind orders the rules of kind by priority, then registration order.
// Caller must hold the write lock.
func (r *ModelRegistry) sortKind(kind quantity.Kind) {
	entries := r.byKind[kind]
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].rule.Priority != entries[j].rule.Priority {
			return entries[i].rule.Priority < entries[j].rule.Priority
		}
		return entries[i].seq < entries[j].seq
	})
}

// SetPriority changes the priority of every rule of model deriving kind.
func (r *ModelRegistry) SetPriority(model string, kind quantity.Kind, priority int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen.Load() {
		return core.ErrRegistryFrozen
	}

	found := false
	for _, e := range r.byKind[kind] {
		if matches(e.rule, model) {
			e.rule.Priority = priority
			found = true
		}
	}
	if !found {
		return &core.UnknownModelError{Kind: kind, Model: model, Available: modelsOf(r.byKind[kind])}
	}
	r.sortKind(kind)
	return nil
}

// Prefer moves model to the front of the candidates for kind.
func (r *ModelRegistry) Prefer(kind quantity.Kind, model string) error {
	r.mu.RLock()
	entries := r.byKind[kind]
	top := 0
	if len(entries) > 0 {
		top = entries[0].rule.Priority
	}
	r.mu.RUnlock()

	return r.SetPriority(model, kind, top-1)
}

// Freeze ends the build phase. Later mutations fail with ErrRegistryFrozen.
func (r *ModelRegistry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen.Store(true)
}

// Frozen reports whether Freeze has been called.
func (r *ModelRegistry) Frozen() bool {
	return r.frozen.Load()
}

// RulesFor returns the rules deriving kind in the order the resolver tries
// them: ascending Priority, ties broken by registration order.
func (r *ModelRegistry) RulesFor(kind quantity.Kind) []core.ModelRule {
	defer r.rlock()()
	return rulesOf(r.byKind[kind])
}

// Select returns the rule for kind matching choice, which may be a model tag
// ("Wilks1992") or a rule name. Matching ignores case.
func (r *ModelRegistry) Select(kind quantity.Kind, choice string) (core.ModelRule, error) {
	defer r.rlock()()
	for _, e := range r.byKind[kind] {
		if matches(e.rule, choice) {
			return e.snapshot(), nil
		}
	}
	return core.ModelRule{}, &core.UnknownModelError{Kind: kind, Model: choice, Available: modelsOf(r.byKind[kind])}
}

// Get returns a rule by name.
func (r *ModelRegistry) Get(name string) (core.ModelRule, bool) {
	defer r.rlock()()
	e, ok := r.byName[name]
	if !ok {
		return core.ModelRule{}, false
	}
	return e.snapshot(), true
}

// All returns every rule in registration order.
func (r *ModelRegistry) All() []core.ModelRule {
	defer r.rlock()()
	entries := make([]*entry, 0, len(r.byName))
	for _, e := range r.byName {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })
	return rulesOf(entries)
}

// ByModel returns the rules carrying model tag, in registration order.
func (r *ModelRegistry) ByModel(model string) []core.ModelRule {
	var out []core.ModelRule
	for _, rule := range r.All() {
		if strings.EqualFold(rule.Model, model) {
			out = append(out, rule)
		}
	}
	return out
}

// Kinds returns the output kinds that have at least one rule, sorted by name.
func (r *ModelRegistry) Kinds() []quantity.Kind {
	defer r.rlock()()
	kinds := make([]quantity.Kind, 0, len(r.byKind))
	for k, entries := range r.byKind {
		if len(entries) > 0 {
			kinds = append(kinds, k)
		}
	}
	quantity.SortKinds(kinds)
	return kinds
}

// Models returns the distinct model tags, sorted.
func (r *ModelRegistry) Models() []string {
	defer r.rlock()()
	seen := make(map[string]bool)
	for _, e := range r.byName {
		seen[e.rule.Model] = true
	}
	models := make([]string, 0, len(seen))
	for m := range seen {
		models = append(models, m)
	}
	sort.Strings(models)
	return models
}

// Count returns the number of registered rules.
func (r *ModelRegistry) Count() int {
	defer r.rlock()()
	return len(r.byName)
}

// Clone returns an unfrozen copy with the same rules, priorities and
// registration order.
func (r *ModelRegistry) Clone() *ModelRegistry {
	defer r.rlock()()

	c := NewModelRegistry()
	c.seq = r.seq
	for name, e := range r.byName {
		ce := &entry{rule: e.rule, seq: e.seq}
		c.byName[name] = ce
		c.byKind[e.rule.Output] = append(c.byKind[e.rule.Output], ce)
	}
	for k := range c.byKind {
		c.sortKind(k)
	}
	return c
}

func matches(rule core.ModelRule, choice string) bool {
	return strings.EqualFold(rule.Model, choice) || strings.EqualFold(rule.Name, choice)
}

func rulesOf(entries []*entry) []core.ModelRule {
	out := make([]core.ModelRule, len(entries))
	for i, e := range entries {
		out[i] = e.snapshot()
	}
	return out
}

// snapshot returns the entry's rule with its own Inputs slice, so callers
// cannot reach into a frozen registry.
func (e *entry) snapshot() core.ModelRule {
	rule := e.rule
	rule.Inputs = append([]quantity.Kind(nil), rule.Inputs...)
	return rule
}

func modelsOf(entries []*entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.rule.Model)
	}
	return out
}
