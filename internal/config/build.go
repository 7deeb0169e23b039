package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/leapstack-labs/lpi/internal/pic"
	"github.com/leapstack-labs/lpi/internal/registry"
	"github.com/leapstack-labs/lpi/pkg/core"
	"github.com/leapstack-labs/lpi/pkg/laser"
	"github.com/leapstack-labs/lpi/pkg/profile"
	"github.com/leapstack-labs/lpi/pkg/quantity"
	"github.com/leapstack-labs/lpi/pkg/target"
)

// Profile builds the envelope. axis is PulseDurationFWHM for the temporal
// profile and SpotFWHM for the spatial one; a plain "gaussian" picks the
// matching 1D or 2D shape.
func (p ProfileConfig) Profile(axis quantity.Kind) (profile.Profile, error) {
	shapeName := p.Shape
	if shapeName == "" || strings.EqualFold(shapeName, "gaussian") {
		shapeName = string(profile.Gaussian1D)
		if axis == quantity.SpotFWHM {
			shapeName = string(profile.Gaussian2D)
		}
	}
	shape, err := profile.ParseShape(shapeName)
	if err != nil {
		return profile.Profile{}, err
	}

	var out profile.Profile
	switch shape {
	case profile.TopHat:
		radius, err := p.Radius.For(axis)
		if err != nil {
			return profile.Profile{}, fmt.Errorf("radius: %w", err)
		}
		if p.Radius.IsZero() {
			fwhm, err := p.FWHM.For(axis)
			if err != nil {
				return profile.Profile{}, fmt.Errorf("fwhm: %w", err)
			}
			radius = fwhm / 2
		}
		out = profile.NewTopHat(radius)
	default:
		fwhm, err := p.FWHM.For(axis)
		if err != nil {
			return profile.Profile{}, fmt.Errorf("fwhm: %w", err)
		}
		switch shape {
		case profile.SuperGaussian:
			out = profile.NewSuperGaussian(fwhm, p.Order)
		case profile.Gaussian2D:
			out = profile.NewGaussian2D(fwhm)
		default:
			out = profile.NewGaussian1D(fwhm)
		}
	}

	if err := out.Validate(); err != nil {
		return profile.Profile{}, err
	}
	return out, nil
}

// Laser builds the laser descriptor.
func (l *LaserConfig) Laser() (laser.Laser, error) {
	energy, err := l.Energy.For(quantity.LaserEnergy)
	if err != nil {
		return laser.Laser{}, fmt.Errorf("laser.energy: %w", err)
	}
	wavelength, err := l.Wavelength.For(quantity.Wavelength)
	if err != nil {
		return laser.Laser{}, fmt.Errorf("laser.wavelength: %w", err)
	}
	timeProfile, err := l.Time.Profile(quantity.PulseDurationFWHM)
	if err != nil {
		return laser.Laser{}, fmt.Errorf("laser.time: %w", err)
	}
	spaceProfile, err := l.Space.Profile(quantity.SpotFWHM)
	if err != nil {
		return laser.Laser{}, fmt.Errorf("laser.space: %w", err)
	}
	return laser.New(timeProfile, spaceProfile, wavelength, energy)
}

// LookupMaterial looks up the target material and applies overrides.
func (t *TargetConfig) LookupMaterial() (target.Material, error) {
	m, err := target.Lookup(t.Material)
	if err != nil {
		return target.Material{}, err
	}
	if !t.Density.IsZero() {
		density, err := t.Density.For(quantity.MassDensity)
		if err != nil {
			return target.Material{}, fmt.Errorf("target.density: %w", err)
		}
		m = m.WithDensity(density)
	}
	if t.Z != 0 {
		m = m.WithZ(t.Z)
	}
	if err := m.Validate(); err != nil {
		return target.Material{}, err
	}
	return m, nil
}

// KnownSet seeds a fresh known set from the laser, the target and the
// explicit known quantities, in that order, so explicit values win.
func (e *Experiment) KnownSet() (*core.KnownSet, error) {
	known := core.NewKnownSet()

	if e.Laser != nil {
		l, err := e.Laser.Laser()
		if err != nil {
			return nil, err
		}
		seed, err := l.Seed()
		if err != nil {
			return nil, err
		}
		known.Add(seed...)
	}

	if e.Target != nil {
		m, err := e.Target.LookupMaterial()
		if err != nil {
			return nil, fmt.Errorf("target: %w", err)
		}
		known.Add(m.Seed()...)
	}

	var errs []error
	for _, name := range sortedKeys(e.Known) {
		kind, err := quantity.ParseKind(name)
		if err != nil {
			errs = append(errs, fmt.Errorf("known: %w", err))
			continue
		}
		q, err := e.Known[name].Quantity(kind)
		if err != nil {
			errs = append(errs, fmt.Errorf("known.%s: %w", name, err))
			continue
		}
		known.Set(q)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return known, nil
}

// Choices returns the explicit model choice per kind.
func (e *Experiment) Choices() (map[quantity.Kind]string, error) {
	return ParseChoices(e.Models)
}

// ParseChoices turns a kind-name to model map into a resolver choice map.
func ParseChoices(models map[string]string) (map[quantity.Kind]string, error) {
	if len(models) == 0 {
		return nil, nil
	}
	choices := make(map[quantity.Kind]string, len(models))
	for _, name := range sortedKeys(models) {
		kind, err := quantity.ParseKind(name)
		if err != nil {
			return nil, fmt.Errorf("models: %w", err)
		}
		choices[kind] = models[name]
	}
	return choices, nil
}

// EstimateKinds returns the kinds to report, DefaultEstimate when none are
// listed.
func (e *Experiment) EstimateKinds() ([]quantity.Kind, error) {
	if len(e.Estimate) == 0 {
		return append([]quantity.Kind(nil), DefaultEstimate...), nil
	}
	kinds := make([]quantity.Kind, 0, len(e.Estimate))
	for _, name := range e.Estimate {
		kind, err := quantity.ParseKind(name)
		if err != nil {
			return nil, fmt.Errorf("estimate: %w", err)
		}
		kinds = append(kinds, kind)
	}
	return kinds, nil
}

// ApplyPreferences re-prioritizes reg, which must not be frozen yet.
func (e *Experiment) ApplyPreferences(reg *registry.ModelRegistry) error {
	return ApplyPreferences(reg, e.Preferences)
}

// ApplyPreferences applies prefs to reg in order.
func ApplyPreferences(reg *registry.ModelRegistry, prefs []Preference) error {
	for i, p := range prefs {
		kind, err := quantity.ParseKind(p.Kind)
		if err != nil {
			return fmt.Errorf("preferences[%d]: %w", i, err)
		}
		if p.Priority != nil {
			err = reg.SetPriority(p.Model, kind, *p.Priority)
		} else {
			err = reg.Prefer(kind, p.Model)
		}
		if err != nil {
			return fmt.Errorf("preferences[%d]: %w", i, err)
		}
	}
	return nil
}

// Merge layers over on top of p field by field; unset fields of over keep
// p's values. Neither input is modified.
func (p *PICConfig) Merge(over *PICConfig) *PICConfig {
	if p == nil {
		return over
	}
	if over == nil {
		return p
	}
	out := *p
	if over.ParticlesPerCell != 0 {
		out.ParticlesPerCell = over.ParticlesPerCell
	}
	if over.Dimensions != 0 {
		out.Dimensions = over.Dimensions
	}
	if over.DebyeFraction != 0 {
		out.DebyeFraction = over.DebyeFraction
	}
	if over.WavelengthFraction != 0 {
		out.WavelengthFraction = over.WavelengthFraction
	}
	if over.CourantSafety != 0 {
		out.CourantSafety = over.CourantSafety
	}
	if !over.CellSize.IsZero() {
		out.CellSize = over.CellSize
	}
	if !over.TimeStep.IsZero() {
		out.TimeStep = over.TimeStep
	}
	return &out
}

// Settings returns PIC settings with the file's values over the defaults.
func (p *PICConfig) Settings() (pic.Settings, error) {
	s := pic.DefaultSettings()
	if p == nil {
		return s, nil
	}
	if p.ParticlesPerCell != 0 {
		s.ParticlesPerCell = p.ParticlesPerCell
	}
	if p.Dimensions != 0 {
		s.Dimensions = p.Dimensions
	}
	if p.DebyeFraction != 0 {
		s.DebyeFraction = p.DebyeFraction
	}
	if p.WavelengthFraction != 0 {
		s.WavelengthFraction = p.WavelengthFraction
	}
	if p.CourantSafety != 0 {
		s.CourantSafety = p.CourantSafety
	}
	if !p.CellSize.IsZero() {
		dx, err := p.CellSize.For(quantity.CellSize)
		if err != nil {
			return pic.Settings{}, fmt.Errorf("pic.cell_size: %w", err)
		}
		s = s.WithCellSize(dx)
	}
	if !p.TimeStep.IsZero() {
		dt, err := p.TimeStep.For(quantity.TimeStep)
		if err != nil {
			return pic.Settings{}, fmt.Errorf("pic.time_step: %w", err)
		}
		s = s.WithTimeStep(dt)
	}
	return s, s.Validate()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
