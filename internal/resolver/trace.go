package resolver

import (
	"github.com/leapstack-labs/lpi/pkg/core"
	"github.com/leapstack-labs/lpi/pkg/quantity"
)

// Source tells where a step's quantity came from.
type Source string

// Step sources.
const (
	// SourceKnown marks a quantity that was in the known set before the request.
	SourceKnown Source = "known"
	// SourceDerived marks a quantity computed by a rule during the request.
	SourceDerived Source = "derived"
)

// Step is one node of a derivation tree. A quantity used by several rules
// appears as the same *Step under each of them.
type Step struct {
	Kind     quantity.Kind     `json:"kind"`
	Quantity quantity.Quantity `json:"quantity"`
	Source   Source            `json:"source"`
	Rule     string            `json:"rule,omitempty"`
	Model    string            `json:"model,omitempty"`
	Inputs   []*Step           `json:"inputs,omitempty"`
	Notes    []core.Note       `json:"notes,omitempty"`
}

// Derived reports whether the step applied a rule.
func (s *Step) Derived() bool {
	return s.Source == SourceDerived
}

// Trace is the result of Explain.
type Trace struct {
	Root  *Step       `json:"root"`
	Notes []core.Note `json:"notes,omitempty"`
}

// Steps returns every distinct step of the tree, inputs before the steps
// that use them.
func (t *Trace) Steps() []*Step {
	var out []*Step
	seen := make(map[*Step]bool)

	var walk func(s *Step)
	walk = func(s *Step) {
		if s == nil || seen[s] {
			return
		}
		seen[s] = true
		for _, in := range s.Inputs {
			walk(in)
		}
		out = append(out, s)
	}
	walk(t.Root)
	return out
}

// Walk visits the tree depth-first, parents before inputs. Shared steps
// are visited once per use.
func (t *Trace) Walk(fn func(s *Step, depth int)) {
	var walk func(s *Step, depth int)
	walk = func(s *Step, depth int) {
		if s == nil {
			return
		}
		fn(s, depth)
		for _, in := range s.Inputs {
			walk(in, depth+1)
		}
	}
	walk(t.Root, 0)
}
