package models

import (
	"math"

	"github.com/leapstack-labs/lpi/pkg/core"
	q "github.com/leapstack-labs/lpi/pkg/quantity"
)

func init() {
	register(GaussianPulseIntegral, GaussianFWHMArea, GaussianBeamArea)
}

// GaussianPulseIntegral is S0t = sqrt(pi) fwhm / (2 sqrt(ln2)) for a
// Gaussian temporal envelope.
var GaussianPulseIntegral = core.ModelRule{
	Name:   "GaussianPulse.PulseTimeIntegral",
	Model:  "GaussianPulse",
	Output: q.PulseTimeIntegral,
	Inputs: []q.Kind{q.PulseDurationFWHM},
	Compute: func(in core.Inputs) (float64, error) {
		fwhm := in.Value(q.PulseDurationFWHM)
		if err := positive(map[q.Kind]float64{q.PulseDurationFWHM: fwhm}); err != nil {
			return 0, err
		}
		return math.Sqrt(math.Pi) * fwhm / (2 * math.Sqrt(math.Ln2)), nil
	},
	Priority: PriorityDefault,
	Validity: "Gaussian temporal envelope",
}

// GaussianFWHMArea is S0r = pi (fwhm / (2 sqrt(ln2)))^2 for a Gaussian spot
// described by its intensity FWHM.
var GaussianFWHMArea = core.ModelRule{
	Name:   "GaussianFWHM.SpotAreaIntegral",
	Model:  "GaussianFWHM",
	Output: q.SpotAreaIntegral,
	Inputs: []q.Kind{q.SpotFWHM},
	Compute: func(in core.Inputs) (float64, error) {
		fwhm := in.Value(q.SpotFWHM)
		if err := positive(map[q.Kind]float64{q.SpotFWHM: fwhm}); err != nil {
			return 0, err
		}
		r0 := fwhm / (2 * math.Sqrt(math.Ln2))
		return math.Pi * r0 * r0, nil
	},
	Priority: PriorityPreferred,
	Validity: "Gaussian spatial envelope",
}

// GaussianBeamArea is S0r = pi w0^2 / 2 for a Gaussian beam of waist w0
// (1/e^2 intensity radius).
var GaussianBeamArea = core.ModelRule{
	Name:   "GaussianBeam.SpotAreaIntegral",
	Model:  "GaussianBeam",
	Output: q.SpotAreaIntegral,
	Inputs: []q.Kind{q.WaistRadius},
	Compute: func(in core.Inputs) (float64, error) {
		w0 := in.Value(q.WaistRadius)
		if err := positive(map[q.Kind]float64{q.WaistRadius: w0}); err != nil {
			return 0, err
		}
		return math.Pi * w0 * w0 / 2, nil
	},
	Priority: PriorityDefault,
	Validity: "Gaussian spatial envelope",
}
