package models

import (
	"fmt"
	"math"

	q "github.com/leapstack-labs/lpi/pkg/quantity"
)

// wPerCm2 converts an intensity to W/cm^2, the unit most scalings are fitted in.
func wPerCm2(intensity float64) float64 {
	return intensity * 1e-4
}

func microns(length float64) float64 {
	return length * 1e6
}

// a0 is the normalized vector potential for intensity [W/m^2] and wavelength [m].
func a0(intensity, wavelength float64) float64 {
	return q.ElementaryCharge * wavelength * math.Sqrt(2*intensity*q.VacuumPermeability*q.SpeedOfLight) /
		(2 * math.Pi * q.ElectronRestEnergy)
}

// positive returns an error naming the first non-positive value.
func positive(values map[q.Kind]float64) error {
	for _, k := range q.Kinds() {
		v, ok := values[k]
		if ok && !(v > 0) {
			return fmt.Errorf("%s must be positive, got %g", k, v)
		}
	}
	return nil
}

func outside(name string, v, lo, hi float64, unit string) string {
	return fmt.Sprintf("%s = %.3g %s outside fitted range [%.3g, %.3g] %s", name, v, unit, lo, hi, unit)
}
