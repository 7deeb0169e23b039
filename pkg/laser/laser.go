// Package laser describes a laser pulse and the quantities it implies.
package laser

import (
	"fmt"

	"github.com/leapstack-labs/lpi/pkg/profile"
	"github.com/leapstack-labs/lpi/pkg/quantity"
	"github.com/leapstack-labs/lpi/pkg/validation"
)

// Laser is an immutable pulse descriptor. Wavelength is in m, Energy in J.
type Laser struct {
	TimeProfile  profile.Profile
	SpaceProfile profile.Profile
	Wavelength   float64 `validate:"gt=0,finite"`
	Energy       float64 `validate:"gt=0,finite"`
}

// New builds and validates a Laser.
func New(timeProfile, spaceProfile profile.Profile, wavelength, energy float64) (Laser, error) {
	l := Laser{
		TimeProfile:  timeProfile,
		SpaceProfile: spaceProfile,
		Wavelength:   wavelength,
		Energy:       energy,
	}
	if err := l.Validate(); err != nil {
		return Laser{}, err
	}
	return l, nil
}

// Validate checks the scalar fields and both profiles.
func (l Laser) Validate() error {
	if err := validation.Struct(l); err != nil {
		return err
	}
	if err := l.TimeProfile.Validate(); err != nil {
		return fmt.Errorf("time profile: %w", err)
	}
	if err := l.SpaceProfile.Validate(); err != nil {
		return fmt.Errorf("space profile: %w", err)
	}
	return nil
}

// Seed returns the quantities the descriptor fixes: energy, wavelength, the
// pulse duration and spot size, and the envelope integrals of both profiles.
// The integrals carry provenance "profile/<shape>".
func (l Laser) Seed() ([]quantity.Quantity, error) {
	tInt, err := l.TimeProfile.Integral1D()
	if err != nil {
		return nil, fmt.Errorf("time profile: %w", err)
	}
	sInt, err := l.SpaceProfile.Integral2D()
	if err != nil {
		return nil, fmt.Errorf("space profile: %w", err)
	}

	seed := []quantity.Quantity{
		quantity.New(quantity.LaserEnergy, l.Energy),
		quantity.New(quantity.Wavelength, l.Wavelength),
		quantity.New(quantity.PulseDurationFWHM, l.TimeProfile.FWHM),
	}

	if l.SpaceProfile.Shape == profile.TopHat {
		seed = append(seed, quantity.New(quantity.WaistRadius, l.SpaceProfile.Radius))
	} else {
		seed = append(seed, quantity.New(quantity.SpotFWHM, l.SpaceProfile.FWHM))
	}

	seed = append(seed,
		quantity.NewFrom(quantity.PulseTimeIntegral, tInt, provenance(l.TimeProfile)),
		quantity.NewFrom(quantity.SpotAreaIntegral, sInt, provenance(l.SpaceProfile)),
	)
	return seed, nil
}

func provenance(p profile.Profile) string {
	return "profile/" + string(p.Shape)
}

// String describes the pulse in display units.
func (l Laser) String() string {
	return fmt.Sprintf("%s, %s, time %s, space %s",
		quantity.New(quantity.LaserEnergy, l.Energy),
		quantity.New(quantity.Wavelength, l.Wavelength),
		l.TimeProfile, l.SpaceProfile)
}
