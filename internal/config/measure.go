package config

import (
	"fmt"
	"reflect"

	"github.com/go-viper/mapstructure/v2"

	"github.com/leapstack-labs/lpi/pkg/quantity"
)

// Measure is a number read from an experiment file, already converted to
// SI. Unit is the SI unit the written unit measures, or "" for a bare
// number, which is taken to be SI for whatever kind it is used as.
type Measure struct {
	Value float64
	Unit  string
	Raw   string
}

// IsZero reports whether the measure was left out of the file.
func (m Measure) IsZero() bool {
	return m == Measure{}
}

// For returns the SI value as kind, rejecting a unit of another dimension.
func (m Measure) For(kind quantity.Kind) (float64, error) {
	if m.Unit != "" && m.Unit != kind.Unit() {
		return 0, fmt.Errorf("%q is not a %s (want a value in %s)", m.Raw, kind, kind.Unit())
	}
	return m.Value, nil
}

// Quantity returns the measure as a user-supplied quantity of kind.
func (m Measure) Quantity(kind quantity.Kind) (quantity.Quantity, error) {
	v, err := m.For(kind)
	if err != nil {
		return quantity.Quantity{}, err
	}
	return quantity.New(kind, v), nil
}

// ParseMeasure reads "30 fs", "0.8um" or "2" into a Measure.
func ParseMeasure(s string) (Measure, error) {
	v, unit, err := quantity.SplitValue(s)
	if err != nil {
		return Measure{}, err
	}
	if unit == "" {
		return Measure{Value: v, Raw: s}, nil
	}
	si, siUnit, err := quantity.Base(v, unit)
	if err != nil {
		return Measure{}, fmt.Errorf("%q: %w", s, err)
	}
	return Measure{Value: si, Unit: siUnit, Raw: s}, nil
}

var measureType = reflect.TypeOf(Measure{})

// MeasureHookFunc decodes strings and plain numbers into Measure values.
func MeasureHookFunc() mapstructure.DecodeHookFuncType {
	return func(_ reflect.Type, to reflect.Type, data any) (any, error) {
		if to != measureType {
			return data, nil
		}
		switch v := data.(type) {
		case string:
			return ParseMeasure(v)
		case float64:
			return Measure{Value: v, Raw: fmt.Sprint(v)}, nil
		case float32:
			return Measure{Value: float64(v), Raw: fmt.Sprint(v)}, nil
		case int:
			return Measure{Value: float64(v), Raw: fmt.Sprint(v)}, nil
		case int64:
			return Measure{Value: float64(v), Raw: fmt.Sprint(v)}, nil
		case uint64:
			return Measure{Value: float64(v), Raw: fmt.Sprint(v)}, nil
		}
		return data, nil
	}
}
