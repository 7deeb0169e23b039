package pic

import (
	"fmt"

	"github.com/leapstack-labs/lpi/pkg/validation"
)

// Default settings.
const (
	DefaultParticlesPerCell   = 16
	DefaultDimensions         = 2
	DefaultDebyeFraction      = 3.4
	DefaultWavelengthFraction = 0.1
	DefaultCourantSafety      = 0.95

	// MinParticlesPerCell is the count below which sampling noise dominates.
	MinParticlesPerCell = 8
)

// Settings controls how simulation parameters are chosen. CellSize and
// TimeStep are optional overrides in SI units.
type Settings struct {
	CellSize           *float64 `json:"cell_size,omitempty" validate:"omitempty,gt=0,finite"`
	TimeStep           *float64 `json:"time_step,omitempty" validate:"omitempty,gt=0,finite"`
	ParticlesPerCell   int      `json:"particles_per_cell" validate:"min=1"`
	Dimensions         int      `json:"dimensions" validate:"min=1,max=3"`
	DebyeFraction      float64  `json:"debye_fraction" validate:"gt=0,finite"`
	WavelengthFraction float64  `json:"wavelength_fraction" validate:"gt=0,finite"`
	CourantSafety      float64  `json:"courant_safety" validate:"gt=0,lte=1"`
}

// DefaultSettings returns settings with every default applied and no
// overrides.
func DefaultSettings() Settings {
	return Settings{
		ParticlesPerCell:   DefaultParticlesPerCell,
		Dimensions:         DefaultDimensions,
		DebyeFraction:      DefaultDebyeFraction,
		WavelengthFraction: DefaultWavelengthFraction,
		CourantSafety:      DefaultCourantSafety,
	}
}

// Validate checks the settings.
func (s Settings) Validate() error {
	if err := validation.Struct(s); err != nil {
		return fmt.Errorf("pic settings: %w", err)
	}
	return nil
}

// WithCellSize returns a copy overriding the cell size.
func (s Settings) WithCellSize(dx float64) Settings {
	s.CellSize = &dx
	return s
}

// WithTimeStep returns a copy overriding the timestep.
func (s Settings) WithTimeStep(dt float64) Settings {
	s.TimeStep = &dt
	return s
}
