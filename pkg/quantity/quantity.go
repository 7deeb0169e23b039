// Package quantity provides dimensioned physical values. A Quantity carries
// its Kind, which fixes the SI unit the value is stored in.
package quantity

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// ProvenanceUser marks quantities supplied by the caller rather than derived.
const ProvenanceUser = "user-supplied"

// Quantity is an immutable dimensioned value.
type Quantity struct {
	Kind       Kind
	Value      float64 // in Kind.Unit()
	Provenance string
}

// New creates a user-supplied quantity of kind with an SI value.
func New(kind Kind, value float64) Quantity {
	return Quantity{Kind: kind, Value: value, Provenance: ProvenanceUser}
}

// NewFrom creates a quantity with an explicit provenance, typically the
// model tag of the rule that derived it.
func NewFrom(kind Kind, value float64, provenance string) Quantity {
	return Quantity{Kind: kind, Value: value, Provenance: provenance}
}

// Unit returns the SI unit of the value.
func (q Quantity) Unit() string {
	return q.Kind.Unit()
}

// IsZero reports whether q is the zero Quantity.
func (q Quantity) IsZero() bool {
	return q.Kind == KindUnknown
}

// Finite reports whether the value is neither NaN nor infinite.
func (q Quantity) Finite() bool {
	return !math.IsNaN(q.Value) && !math.IsInf(q.Value, 0)
}

// WithProvenance returns a copy of q with a different provenance.
func (q Quantity) WithProvenance(p string) Quantity {
	q.Provenance = p
	return q
}

// Add returns q+other. Both must be of the same kind.
func (q Quantity) Add(other Quantity) (Quantity, error) {
	if q.Kind != other.Kind {
		return Quantity{}, &DimensionError{Op: "add", Left: q.Kind, Right: other.Kind}
	}
	return NewFrom(q.Kind, q.Value+other.Value, q.Provenance), nil
}

// Sub returns q-other. Both must be of the same kind.
func (q Quantity) Sub(other Quantity) (Quantity, error) {
	if q.Kind != other.Kind {
		return Quantity{}, &DimensionError{Op: "sub", Left: q.Kind, Right: other.Kind}
	}
	return NewFrom(q.Kind, q.Value-other.Value, q.Provenance), nil
}

// Ratio returns q/other as a plain number. Both must be of the same kind.
func (q Quantity) Ratio(other Quantity) (float64, error) {
	if q.Kind != other.Kind {
		return 0, &DimensionError{Op: "ratio", Left: q.Kind, Right: other.Kind}
	}
	return q.Value / other.Value, nil
}

// Scale multiplies the value by a dimensionless factor.
func (q Quantity) Scale(f float64) Quantity {
	return NewFrom(q.Kind, q.Value*f, q.Provenance)
}

// IsClose reports whether q and other agree within relTol, relative to the
// larger magnitude. Comparing different kinds is a DimensionError.
func (q Quantity) IsClose(other Quantity, relTol float64) (bool, error) {
	if q.Kind != other.Kind {
		return false, &DimensionError{Op: "compare", Left: q.Kind, Right: other.Kind}
	}
	return Close(q.Value, other.Value, relTol), nil
}

// Close reports whether a and b agree within relTol of the larger magnitude.
func Close(a, b, relTol float64) bool {
	if a == b {
		return true
	}
	diff := math.Abs(a - b)
	return diff <= relTol*math.Max(math.Abs(a), math.Abs(b))
}

// In returns the value expressed in unit, which must measure the same kind.
func (q Quantity) In(unit string) (float64, error) {
	return FromSI(q.Kind, q.Value, unit)
}

// Display returns the value in the kind's display unit and that unit.
func (q Quantity) Display() (float64, string) {
	unit := q.Kind.DisplayUnit()
	v, err := FromSI(q.Kind, q.Value, unit)
	if err != nil {
		return q.Value, q.Kind.Unit()
	}
	return v, unit
}

// String formats q in its display unit, e.g. "5.532e+19 W/cm^2".
func (q Quantity) String() string {
	v, unit := q.Display()
	num := strconv.FormatFloat(v, 'g', 4, 64)
	if unit == "1" || unit == "" {
		return num
	}
	return fmt.Sprintf("%s %s", num, unit)
}

type quantityJSON struct {
	Kind        Kind    `json:"kind"`
	Value       float64 `json:"value"`
	Unit        string  `json:"unit"`
	Display     float64 `json:"display_value"`
	DisplayUnit string  `json:"display_unit"`
	Provenance  string  `json:"provenance,omitempty"`
}

// MarshalJSON encodes the SI value plus its display form.
func (q Quantity) MarshalJSON() ([]byte, error) {
	dv, du := q.Display()
	return json.Marshal(quantityJSON{
		Kind:        q.Kind,
		Value:       q.Value,
		Unit:        q.Unit(),
		Display:     dv,
		DisplayUnit: du,
		Provenance:  q.Provenance,
	})
}

// UnmarshalJSON accepts the form written by MarshalJSON. Only kind, value
// and provenance are read.
func (q *Quantity) UnmarshalJSON(data []byte) error {
	var raw quantityJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*q = NewFrom(raw.Kind, raw.Value, raw.Provenance)
	return nil
}
