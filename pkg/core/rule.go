package core

import (
	"math"

	"github.com/leapstack-labs/lpi/pkg/quantity"
)

// ComputeFunc evaluates a rule's formula. Values are in SI units.
type ComputeFunc func(in Inputs) (float64, error)

// CheckFunc reports validity-range notes for a given set of inputs.
// It never fails a derivation.
type CheckFunc func(in Inputs) []string

// ModelRule is one published formula: a pure function from a fixed set of
// input kinds to one output kind.
type ModelRule struct {
	Name      string // unique id, "<Model>.<Output>" by convention
	Model     string // citation tag, e.g. "Wilks1992"
	Output    quantity.Kind
	Inputs    []quantity.Kind
	Compute   ComputeFunc
	Check     CheckFunc
	Priority  int    // lower is tried first
	Reference string // bibliographic reference
	Validity  string // regime the formula is valid in
}

// Validate checks that the rule is complete.
func (r ModelRule) Validate() error {
	switch {
	case r.Name == "":
		return &InvalidRuleError{Name: r.Name, Reason: "missing name"}
	case r.Model == "":
		return &InvalidRuleError{Name: r.Name, Reason: "missing model tag"}
	case !r.Output.Valid():
		return &InvalidRuleError{Name: r.Name, Reason: "missing or invalid output kind"}
	case r.Compute == nil:
		return &InvalidRuleError{Name: r.Name, Reason: "missing compute function"}
	}
	seen := make(map[quantity.Kind]bool, len(r.Inputs))
	for _, k := range r.Inputs {
		if !k.Valid() {
			return &InvalidRuleError{Name: r.Name, Reason: "invalid input kind"}
		}
		if k == r.Output {
			return &InvalidRuleError{Name: r.Name, Reason: "output kind listed as input"}
		}
		if seen[k] {
			return &InvalidRuleError{Name: r.Name, Reason: "duplicate input " + k.String()}
		}
		seen[k] = true
	}
	return nil
}

// Apply evaluates the rule on in. The result carries the rule's model tag
// as provenance. Errors and non-finite results become a *ComputeError.
func (r ModelRule) Apply(in Inputs) (quantity.Quantity, error) {
	v, err := r.Compute(in)
	if err != nil {
		return quantity.Quantity{}, &ComputeError{Rule: r.Name, Model: r.Model, Kind: r.Output, Err: err}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return quantity.Quantity{}, &ComputeError{Rule: r.Name, Model: r.Model, Kind: r.Output, Err: errNonFinite(v)}
	}
	return quantity.NewFrom(r.Output, v, r.Model), nil
}

// Notes runs the rule's Check, if any.
func (r ModelRule) Notes(in Inputs) []string {
	if r.Check == nil {
		return nil
	}
	return r.Check(in)
}

// Inputs is the read-only view of quantities a rule computes from.
type Inputs struct {
	values map[quantity.Kind]quantity.Quantity
}

// NewInputs builds an Inputs view from quantities.
func NewInputs(qs ...quantity.Quantity) Inputs {
	m := make(map[quantity.Kind]quantity.Quantity, len(qs))
	for _, q := range qs {
		m[q.Kind] = q
	}
	return Inputs{values: m}
}

// Value returns the SI value of kind, or NaN when absent so that a rule
// reading an undeclared input fails as a non-finite result.
func (in Inputs) Value(k quantity.Kind) float64 {
	q, ok := in.values[k]
	if !ok {
		return math.NaN()
	}
	return q.Value
}

// Quantity returns the full quantity of kind.
func (in Inputs) Quantity(k quantity.Kind) (quantity.Quantity, bool) {
	q, ok := in.values[k]
	return q, ok
}

// Len returns the number of available inputs.
func (in Inputs) Len() int {
	return len(in.values)
}
