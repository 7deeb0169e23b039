package models

import (
	"math"

	"github.com/leapstack-labs/lpi/pkg/core"
	q "github.com/leapstack-labs/lpi/pkg/quantity"
)

func init() {
	register(PeakPower, PeakIntensity, AngularFrequency, CriticalDensity, PhotonEnergy, VectorPotential)
}

// PeakPower is P = E / S0t.
var PeakPower = core.ModelRule{
	Name:   "Common.PeakPower",
	Model:  "Common",
	Output: q.PeakPower,
	Inputs: []q.Kind{q.LaserEnergy, q.PulseTimeIntegral},
	Compute: func(in core.Inputs) (float64, error) {
		e, s0t := in.Value(q.LaserEnergy), in.Value(q.PulseTimeIntegral)
		if err := positive(map[q.Kind]float64{q.LaserEnergy: e, q.PulseTimeIntegral: s0t}); err != nil {
			return 0, err
		}
		return e / s0t, nil
	},
	Priority:  PriorityDefault,
	Reference: "definition",
}

// PeakIntensity is I = P / S0r.
var PeakIntensity = core.ModelRule{
	Name:   "Common.PeakIntensity",
	Model:  "Common",
	Output: q.PeakIntensity,
	Inputs: []q.Kind{q.PeakPower, q.SpotAreaIntegral},
	Compute: func(in core.Inputs) (float64, error) {
		p, s0r := in.Value(q.PeakPower), in.Value(q.SpotAreaIntegral)
		if err := positive(map[q.Kind]float64{q.PeakPower: p, q.SpotAreaIntegral: s0r}); err != nil {
			return 0, err
		}
		return p / s0r, nil
	},
	Priority:  PriorityDefault,
	Reference: "definition",
}

// AngularFrequency is omega = 2 pi c / lambda.
var AngularFrequency = core.ModelRule{
	Name:   "Common.LaserAngularFrequency",
	Model:  "Common",
	Output: q.LaserAngularFrequency,
	Inputs: []q.Kind{q.Wavelength},
	Compute: func(in core.Inputs) (float64, error) {
		return 2 * math.Pi * q.SpeedOfLight / in.Value(q.Wavelength), nil
	},
	Priority:  PriorityDefault,
	Reference: "definition",
}

// CriticalDensity is nc = me eps0 omega^2 / e^2.
var CriticalDensity = core.ModelRule{
	Name:   "Common.CriticalDensity",
	Model:  "Common",
	Output: q.CriticalDensity,
	Inputs: []q.Kind{q.LaserAngularFrequency},
	Compute: func(in core.Inputs) (float64, error) {
		w := in.Value(q.LaserAngularFrequency)
		return q.ElectronMass * q.VacuumPermittivity * w * w / (q.ElementaryCharge * q.ElementaryCharge), nil
	},
	Priority:  PriorityDefault,
	Reference: "definition",
}

// PhotonEnergy is h c / lambda.
var PhotonEnergy = core.ModelRule{
	Name:   "Common.PhotonEnergy",
	Model:  "Common",
	Output: q.PhotonEnergy,
	Inputs: []q.Kind{q.Wavelength},
	Compute: func(in core.Inputs) (float64, error) {
		return q.PlanckConstant * q.SpeedOfLight / in.Value(q.Wavelength), nil
	},
	Priority:  PriorityDefault,
	Reference: "definition",
}

// VectorPotential is a0 = e lambda sqrt(2 I mu0 c) / (2 pi me c^2), for
// linear polarization.
var VectorPotential = core.ModelRule{
	Name:   "Common.NormalizedVectorPotential",
	Model:  "Common",
	Output: q.NormalizedVectorPotential,
	Inputs: []q.Kind{q.PeakIntensity, q.Wavelength},
	Compute: func(in core.Inputs) (float64, error) {
		i, l := in.Value(q.PeakIntensity), in.Value(q.Wavelength)
		if err := positive(map[q.Kind]float64{q.PeakIntensity: i, q.Wavelength: l}); err != nil {
			return 0, err
		}
		return a0(i, l), nil
	},
	Check: func(in core.Inputs) []string {
		if a := a0(in.Value(q.PeakIntensity), in.Value(q.Wavelength)); a < 1 {
			return []string{"a0 < 1: interaction is not relativistic"}
		}
		return nil
	},
	Priority:  PriorityDefault,
	Reference: "definition",
	Validity:  "linear polarization",
}
