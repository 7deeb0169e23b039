package models

import (
	"math"

	"github.com/leapstack-labs/lpi/pkg/core"
	q "github.com/leapstack-labs/lpi/pkg/quantity"
)

func init() {
	register(Key1998, ConstantAbsorption, HotElectronNumber)
}

// Key1998 is eta = min(1.2e-15 I[W/cm^2]^0.74, 0.5).
var Key1998 = core.ModelRule{
	Name:   "Key1998.AbsorptionEfficiency",
	Model:  "Key1998",
	Output: q.AbsorptionEfficiency,
	Inputs: []q.Kind{q.PeakIntensity},
	Compute: func(in core.Inputs) (float64, error) {
		i := in.Value(q.PeakIntensity)
		if err := positive(map[q.Kind]float64{q.PeakIntensity: i}); err != nil {
			return 0, err
		}
		return math.Min(1.2e-15*math.Pow(wPerCm2(i), 0.74), 0.5), nil
	},
	Check: func(in core.Inputs) []string {
		if 1.2e-15*math.Pow(wPerCm2(in.Value(q.PeakIntensity)), 0.74) > 0.5 {
			return []string{"fit saturated at 50%"}
		}
		return nil
	},
	Priority:  PriorityPreferred,
	Reference: "M. H. Key et al., Phys. Plasmas 5, 1966 (1998)",
	Validity:  "1e18 to 1e20 W/cm^2",
}

// ConstantAbsorption assumes half the laser energy goes into hot electrons.
// The value does not depend on PeakIntensity; the input only limits the rule
// to shots whose intensity can be resolved, the same precondition as
// Key1998, so the fallback never applies where Key1998 could not.
var ConstantAbsorption = core.ModelRule{
	Name:   "Common.AbsorptionEfficiency",
	Model:  "Common",
	Output: q.AbsorptionEfficiency,
	Inputs: []q.Kind{q.PeakIntensity},
	Compute: func(core.Inputs) (float64, error) {
		return 0.5, nil
	},
	Check: func(core.Inputs) []string {
		return []string{"constant upper-bound estimate, independent of intensity"}
	},
	Priority: PriorityDefault,
	Validity: "order-of-magnitude upper bound",
}

// HotElectronNumber is N = eta E / (3/2 Te).
var HotElectronNumber = core.ModelRule{
	Name:   "Common.HotElectronNumber",
	Model:  "Common",
	Output: q.HotElectronNumber,
	Inputs: []q.Kind{q.AbsorptionEfficiency, q.LaserEnergy, q.HotElectronTemperature},
	Compute: func(in core.Inputs) (float64, error) {
		eta, e, te := in.Value(q.AbsorptionEfficiency), in.Value(q.LaserEnergy), in.Value(q.HotElectronTemperature)
		if err := positive(map[q.Kind]float64{q.HotElectronTemperature: te}); err != nil {
			return 0, err
		}
		return eta * e / (1.5 * te), nil
	},
	Priority:  PriorityDefault,
	Reference: "energy balance, mean energy 3/2 Te",
}
