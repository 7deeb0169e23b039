package models

import (
	"github.com/leapstack-labs/lpi/pkg/core"
	q "github.com/leapstack-labs/lpi/pkg/quantity"
)

func init() {
	register(Bell1997Density, Bell1997Depth)
}

// bellCheck flags the regimes the resistive-inhibition model was not
// derived for. The pulse duration is only checked when it is an input.
func bellCheck(in core.Inputs) []string {
	var notes []string
	if tau, ok := in.Quantity(q.PulseTimeIntegral); ok && tau.Value > 1e-12 {
		notes = append(notes, "pulse duration above 1 ps")
	}
	if i := wPerCm2(in.Value(q.PeakIntensity)); i < 1e18 {
		notes = append(notes, outside("I", i, 1e18, 1e21, "W/cm^2"))
	}
	return notes
}

// Bell1997Density is the front-surface hot-electron density of resistively
// inhibited transport, n0 = 2 (eta I)^2 tau / (9 e (Te/e)^3 sigma).
var Bell1997Density = core.ModelRule{
	Name:   "Bell1997.HotElectronDensity",
	Model:  "Bell1997",
	Output: q.HotElectronDensity,
	Inputs: []q.Kind{q.AbsorptionEfficiency, q.PeakIntensity, q.PulseTimeIntegral, q.HotElectronTemperature, q.SpitzerConductivity},
	Compute: func(in core.Inputs) (float64, error) {
		eta, i, tau := in.Value(q.AbsorptionEfficiency), in.Value(q.PeakIntensity), in.Value(q.PulseTimeIntegral)
		te, sigma := in.Value(q.HotElectronTemperature), in.Value(q.SpitzerConductivity)
		if err := positive(map[q.Kind]float64{q.HotElectronTemperature: te, q.SpitzerConductivity: sigma}); err != nil {
			return 0, err
		}
		flux := eta * i
		volts := te / q.ElementaryCharge
		return 2 * flux * flux * tau / (9 * q.ElementaryCharge * volts * volts * volts * sigma), nil
	},
	Check:     bellCheck,
	Priority:  PriorityDefault,
	Reference: "A. R. Bell et al., Plasma Phys. Control. Fusion 39, 653 (1997)",
	Validity:  "sub-picosecond pulses, Te and sigma constant over the pulse",
}

// Bell1997Depth is the depth over which the resistive field stops hot
// electrons during the pulse, z0 = 3 (Te/e)^2 sigma / (eta I).
var Bell1997Depth = core.ModelRule{
	Name:   "Bell1997.HotElectronPenetrationDepth",
	Model:  "Bell1997",
	Output: q.HotElectronPenetrationDepth,
	Inputs: []q.Kind{q.AbsorptionEfficiency, q.PeakIntensity, q.HotElectronTemperature, q.SpitzerConductivity},
	Compute: func(in core.Inputs) (float64, error) {
		eta, i := in.Value(q.AbsorptionEfficiency), in.Value(q.PeakIntensity)
		te, sigma := in.Value(q.HotElectronTemperature), in.Value(q.SpitzerConductivity)
		if err := positive(map[q.Kind]float64{q.PeakIntensity: i, q.AbsorptionEfficiency: eta}); err != nil {
			return 0, err
		}
		volts := te / q.ElementaryCharge
		return 3 * volts * volts * sigma / (eta * i), nil
	},
	Check:     bellCheck,
	Priority:  PriorityDefault,
	Reference: "A. R. Bell et al., Plasma Phys. Control. Fusion 39, 653 (1997)",
	Validity:  "during the pulse, before diffusion sets in",
}
