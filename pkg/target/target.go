// Package target describes the solid or gas target hit by the laser and
// carries a small database of common materials.
package target

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/lpi/pkg/quantity"
	"github.com/leapstack-labs/lpi/pkg/validation"
)

//go:embed materials.yaml
var materialsYAML []byte

// Material is an immutable target descriptor. Density is in kg/m^3,
// AtomicMass in amu and Z is the mean ionization state.
type Material struct {
	Name        string  `yaml:"name" validate:"required"`
	Description string  `yaml:"description,omitempty"`
	Density     float64 `yaml:"density" validate:"gt=0,finite"`
	AtomicMass  float64 `yaml:"atomic_mass" validate:"gt=0,finite"`
	Z           float64 `yaml:"z" validate:"gt=0,finite"`
}

// Validate checks that all physical fields are positive and finite.
func (m Material) Validate() error {
	return validation.Struct(m)
}

// WithZ returns a copy with a different ionization state.
func (m Material) WithZ(z float64) Material {
	m.Z = z
	return m
}

// WithDensity returns a copy with a different mass density [kg/m^3].
func (m Material) WithDensity(density float64) Material {
	m.Density = density
	return m
}

// Seed returns MassDensity, AtomicMass and ChargeState.
func (m Material) Seed() []quantity.Quantity {
	return []quantity.Quantity{
		quantity.New(quantity.MassDensity, m.Density),
		quantity.New(quantity.AtomicMass, m.AtomicMass*quantity.AtomicMassUnit),
		quantity.New(quantity.ChargeState, m.Z),
	}
}

// String describes the material, e.g. "Al (2.699 g/cm^3, 26.98 amu, Z=13)".
func (m Material) String() string {
	return fmt.Sprintf("%s (%s, %.4g amu, Z=%g)",
		m.Name, quantity.New(quantity.MassDensity, m.Density), m.AtomicMass, m.Z)
}

type database struct {
	Materials []Material `yaml:"materials"`
}

var (
	loadOnce  sync.Once
	materials map[string]Material
	loadErr   error
)

func load() {
	var db database
	if err := yaml.Unmarshal(materialsYAML, &db); err != nil {
		loadErr = fmt.Errorf("failed to parse material database: %w", err)
		return
	}
	materials = make(map[string]Material, len(db.Materials))
	for _, m := range db.Materials {
		if err := m.Validate(); err != nil {
			loadErr = fmt.Errorf("material %s: %w", m.Name, err)
			return
		}
		materials[strings.ToLower(m.Name)] = m
	}
}

// Lookup returns a built-in material by name, ignoring case.
func Lookup(name string) (Material, error) {
	loadOnce.Do(load)
	if loadErr != nil {
		return Material{}, loadErr
	}
	m, ok := materials[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Material{}, fmt.Errorf("unknown material %q (known: %s)", name, strings.Join(Names(), ", "))
	}
	return m, nil
}

// Names returns the built-in material names, sorted.
func Names() []string {
	loadOnce.Do(load)
	names := make([]string, 0, len(materials))
	for _, m := range materials {
		names = append(names, m.Name)
	}
	sort.Strings(names)
	return names
}

// All returns the built-in materials sorted by name.
func All() []Material {
	names := Names()
	out := make([]Material, 0, len(names))
	for _, n := range names {
		out = append(out, materials[strings.ToLower(n)])
	}
	return out
}
