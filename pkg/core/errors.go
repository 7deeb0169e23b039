package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/leapstack-labs/lpi/pkg/quantity"
)

// Sentinel errors. Every typed error below matches exactly one of them
// with errors.Is.
var (
	ErrUnknownQuantity  = errors.New("unknown quantity")
	ErrUnresolvable     = errors.New("unresolvable quantity")
	ErrCyclicDependency = errors.New("cyclic dependency")
	ErrUnknownModel     = errors.New("unknown model")
	ErrCompute          = errors.New("compute failed")
	ErrInvalidRule      = errors.New("invalid rule")
	ErrDuplicateRule    = errors.New("duplicate rule")
	ErrRegistryFrozen   = errors.New("registry is frozen")
)

// UnknownQuantityError means no rule produces Kind and it was not supplied.
type UnknownQuantityError struct {
	Kind quantity.Kind
}

func (e *UnknownQuantityError) Error() string {
	return fmt.Sprintf("no rule derives %s and it was not supplied", e.Kind)
}

// Is reports a match against ErrUnknownQuantity.
func (e *UnknownQuantityError) Is(target error) bool { return target == ErrUnknownQuantity }

// Attempt records why one candidate rule could not be applied.
type Attempt struct {
	Rule    string
	Model   string
	Missing []quantity.Kind
}

// UnresolvableQuantityError means rules for Kind exist but none could be
// satisfied from the known set.
type UnresolvableQuantityError struct {
	Kind     quantity.Kind
	Attempts []Attempt
}

func (e *UnresolvableQuantityError) Error() string {
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, fmt.Sprintf("%s missing %s", a.Rule, kindList(a.Missing)))
	}
	return fmt.Sprintf("cannot resolve %s: %s", e.Kind, strings.Join(parts, "; "))
}

// Is reports a match against ErrUnresolvable.
func (e *UnresolvableQuantityError) Is(target error) bool { return target == ErrUnresolvable }

// Missing returns the union of missing kinds over all attempts, in first-seen order.
func (e *UnresolvableQuantityError) Missing() []quantity.Kind {
	seen := make(map[quantity.Kind]bool)
	var out []quantity.Kind
	for _, a := range e.Attempts {
		for _, k := range a.Missing {
			if !seen[k] {
				seen[k] = true
				out = append(out, k)
			}
		}
	}
	return out
}

// CyclicDependencyError means a kind depends on itself through the
// registered rules. Path starts and ends with the repeated kind.
type CyclicDependencyError struct {
	Path []quantity.Kind
}

func (e *CyclicDependencyError) Error() string {
	names := make([]string, len(e.Path))
	for i, k := range e.Path {
		names[i] = k.String()
	}
	return "cyclic dependency: " + strings.Join(names, " -> ")
}

// Is reports a match against ErrCyclicDependency.
func (e *CyclicDependencyError) Is(target error) bool { return target == ErrCyclicDependency }

// UnknownModelError means an explicit model choice names no rule for Kind.
type UnknownModelError struct {
	Kind      quantity.Kind
	Model     string
	Available []string
}

func (e *UnknownModelError) Error() string {
	return fmt.Sprintf("no model %q for %s (available: %s)", e.Model, e.Kind, strings.Join(e.Available, ", "))
}

// Is reports a match against ErrUnknownModel.
func (e *UnknownModelError) Is(target error) bool { return target == ErrUnknownModel }

// ComputeError wraps a failure inside a rule's formula.
type ComputeError struct {
	Rule  string
	Model string
	Kind  quantity.Kind
	Err   error
}

func (e *ComputeError) Error() string {
	return fmt.Sprintf("%s: computing %s failed: %v", e.Rule, e.Kind, e.Err)
}

// Unwrap returns the underlying error.
func (e *ComputeError) Unwrap() error { return e.Err }

// Is reports a match against ErrCompute.
func (e *ComputeError) Is(target error) bool { return target == ErrCompute }

// InvalidRuleError means a rule is incomplete or inconsistent.
type InvalidRuleError struct {
	Name   string
	Reason string
}

func (e *InvalidRuleError) Error() string {
	if e.Name == "" {
		return "invalid rule: " + e.Reason
	}
	return fmt.Sprintf("invalid rule %s: %s", e.Name, e.Reason)
}

// Is reports a match against ErrInvalidRule.
func (e *InvalidRuleError) Is(target error) bool { return target == ErrInvalidRule }

func errNonFinite(v float64) error {
	return fmt.Errorf("non-finite result %v", v)
}

func kindList(kinds []quantity.Kind) string {
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.String()
	}
	return "[" + strings.Join(names, ", ") + "]"
}
