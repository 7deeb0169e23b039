package models

import (
	"math"

	"github.com/leapstack-labs/lpi/pkg/core"
	q "github.com/leapstack-labs/lpi/pkg/quantity"
)

func init() {
	register(Wilks1992, Haines2009, Beg1997, BegIonCutoff, HotElectronDominated)
}

// hotInputs is the input set shared by every hot-electron scaling, so that a
// missing intensity is reported the same way whichever model is preferred.
var hotInputs = []q.Kind{q.PeakIntensity, q.Wavelength}

func intensityWavelength(in core.Inputs) (float64, float64, error) {
	i, l := in.Value(q.PeakIntensity), in.Value(q.Wavelength)
	if err := positive(map[q.Kind]float64{q.PeakIntensity: i, q.Wavelength: l}); err != nil {
		return 0, 0, err
	}
	return i, l, nil
}

func relativisticCheck(in core.Inputs) []string {
	if a := a0(in.Value(q.PeakIntensity), in.Value(q.Wavelength)); a < 1 {
		return []string{"ponderomotive scaling used at a0 < 1"}
	}
	return nil
}

// Wilks1992 is the ponderomotive scaling Te = (sqrt(1 + a0^2) - 1) me c^2.
var Wilks1992 = core.ModelRule{
	Name:   "Wilks1992.HotElectronTemperature",
	Model:  "Wilks1992",
	Output: q.HotElectronTemperature,
	Inputs: hotInputs,
	Compute: func(in core.Inputs) (float64, error) {
		i, l, err := intensityWavelength(in)
		if err != nil {
			return 0, err
		}
		a := a0(i, l)
		return (math.Sqrt(1+a*a) - 1) * q.ElectronRestEnergy, nil
	},
	Check:     relativisticCheck,
	Priority:  PriorityPreferred,
	Reference: "S. C. Wilks et al., Phys. Rev. Lett. 69, 1383 (1992)",
	Validity:  "relativistic intensities, a0 > 1",
}

// Haines2009 is Te = (sqrt(1 + sqrt(2) a0) - 1) me c^2.
var Haines2009 = core.ModelRule{
	Name:   "Haines2009.HotElectronTemperature",
	Model:  "Haines2009",
	Output: q.HotElectronTemperature,
	Inputs: hotInputs,
	Compute: func(in core.Inputs) (float64, error) {
		i, l, err := intensityWavelength(in)
		if err != nil {
			return 0, err
		}
		return (math.Sqrt(1+math.Sqrt2*a0(i, l)) - 1) * q.ElectronRestEnergy, nil
	},
	Check:     relativisticCheck,
	Priority:  PriorityDefault,
	Reference: "M. G. Haines et al., Phys. Rev. Lett. 102, 045008 (2009)",
	Validity:  "relativistic intensities, a0 > 1",
}

// Beg1997 is the empirical scaling Te = 100 keV (I lambda^2 / 1e17 W cm^-2 um^2)^(1/3).
var Beg1997 = core.ModelRule{
	Name:   "Beg1997.HotElectronTemperature",
	Model:  "Beg1997",
	Output: q.HotElectronTemperature,
	Inputs: hotInputs,
	Compute: func(in core.Inputs) (float64, error) {
		i, l, err := intensityWavelength(in)
		if err != nil {
			return 0, err
		}
		lum := microns(l)
		return 100 * q.KiloElectronVolt * math.Cbrt(wPerCm2(i)*lum*lum/1e17), nil
	},
	Check: func(in core.Inputs) []string {
		i := wPerCm2(in.Value(q.PeakIntensity))
		if i < 1e17 || i > 1e19 {
			return []string{outside("I", i, 1e17, 1e19, "W/cm^2")}
		}
		return nil
	},
	Priority:  PriorityFallback,
	Reference: "F. N. Beg et al., Phys. Plasmas 4, 447 (1997)",
	Validity:  "1e17 to 1e19 W/cm^2, 1 um light",
}

// BegIonCutoff is the maximum ion energy 1.2e-2 keV * I[W/cm^2]^0.313.
var BegIonCutoff = core.ModelRule{
	Name:   "Beg1997.IonEnergyCutoff",
	Model:  "Beg1997",
	Output: q.IonEnergyCutoff,
	Inputs: []q.Kind{q.PeakIntensity},
	Compute: func(in core.Inputs) (float64, error) {
		i := in.Value(q.PeakIntensity)
		if err := positive(map[q.Kind]float64{q.PeakIntensity: i}); err != nil {
			return 0, err
		}
		return 1.2e-2 * q.KiloElectronVolt * math.Pow(wPerCm2(i), 0.313), nil
	},
	Check: func(in core.Inputs) []string {
		i := wPerCm2(in.Value(q.PeakIntensity))
		if i < 1e17 || i > 1e19 {
			return []string{outside("I", i, 1e17, 1e19, "W/cm^2")}
		}
		return nil
	},
	Priority:  PriorityDefault,
	Reference: "F. N. Beg et al., Phys. Plasmas 4, 447 (1997)",
	Validity:  "1e17 to 1e19 W/cm^2",
}

// HotElectronDominated takes the screening electron temperature to be the
// hot-electron temperature, as in a target dominated by laser-heated electrons.
var HotElectronDominated = core.ModelRule{
	Name:   "HotElectronDominated.ElectronTemperature",
	Model:  "HotElectronDominated",
	Output: q.ElectronTemperature,
	Inputs: []q.Kind{q.HotElectronTemperature},
	Compute: func(in core.Inputs) (float64, error) {
		return in.Value(q.HotElectronTemperature), nil
	},
	Priority: PriorityDefault,
	Validity: "sheath region dominated by hot electrons",
}
