package starlark

import (
	"fmt"

	"go.starlark.net/lib/math"
	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"

	"github.com/leapstack-labs/lpi/pkg/quantity"
)

// Constants returns the physical constants exposed as the "constants"
// global, in SI units.
func Constants() starlark.Value {
	return starlarkstruct.FromStringDict(starlark.String("constants"), starlark.StringDict{
		"c":    starlark.Float(quantity.SpeedOfLight),
		"e":    starlark.Float(quantity.ElementaryCharge),
		"me":   starlark.Float(quantity.ElectronMass),
		"eps0": starlark.Float(quantity.VacuumPermittivity),
		"mu0":  starlark.Float(quantity.VacuumPermeability),
		"h":    starlark.Float(quantity.PlanckConstant),
		"kB":   starlark.Float(quantity.BoltzmannConstant),
		"amu":  starlark.Float(quantity.AtomicMassUnit),
		"eV":   starlark.Float(quantity.ElectronVolt),
		"keV":  starlark.Float(quantity.KiloElectronVolt),
		"MeV":  starlark.Float(quantity.MegaElectronVolt),
		"mc2":  starlark.Float(quantity.ElectronRestEnergy),
	})
}

// si converts a value in a named unit to SI: si("PeakIntensity", 1e19, "W/cm^2").
func si(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var (
		kindName string
		value    starlark.Value
		unit     string
	)
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 3, &kindName, &value, &unit); err != nil {
		return nil, err
	}
	kind, err := quantity.ParseKind(kindName)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.Name(), err)
	}
	v, ok := starlark.AsFloat(value)
	if !ok {
		return nil, fmt.Errorf("%s: value must be a number, got %s", b.Name(), value.Type())
	}
	out, err := quantity.ToSI(kind, v, unit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.Name(), err)
	}
	return starlark.Float(out), nil
}

// display converts an SI value to a named unit: display("DebyeLength", 8.4e-9, "nm").
func display(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var (
		kindName string
		value    starlark.Value
		unit     string
	)
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 3, &kindName, &value, &unit); err != nil {
		return nil, err
	}
	kind, err := quantity.ParseKind(kindName)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.Name(), err)
	}
	v, ok := starlark.AsFloat(value)
	if !ok {
		return nil, fmt.Errorf("%s: value must be a number, got %s", b.Name(), value.Type())
	}
	out, err := quantity.FromSI(kind, v, unit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.Name(), err)
	}
	return starlark.Float(out), nil
}

// Predeclared returns the globals shared by rule files and expressions:
// constants, math, si and display. Rule files additionally get "rule".
func Predeclared() starlark.StringDict {
	return starlark.StringDict{
		"constants": Constants(),
		"math":      math.Module,
		"si":        starlark.NewBuiltin("si", si),
		"display":   starlark.NewBuiltin("display", display),
	}
}
