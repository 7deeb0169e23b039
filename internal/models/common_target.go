package models

import (
	"github.com/leapstack-labs/lpi/pkg/core"
	q "github.com/leapstack-labs/lpi/pkg/quantity"
)

func init() {
	register(IonDensity, ElectronDensity, NormalizedDensity)
}

// IonDensity is ni = rho / m_atom.
var IonDensity = core.ModelRule{
	Name:   "Common.IonDensity",
	Model:  "Common",
	Output: q.IonDensity,
	Inputs: []q.Kind{q.MassDensity, q.AtomicMass},
	Compute: func(in core.Inputs) (float64, error) {
		rho, m := in.Value(q.MassDensity), in.Value(q.AtomicMass)
		if err := positive(map[q.Kind]float64{q.MassDensity: rho, q.AtomicMass: m}); err != nil {
			return 0, err
		}
		return rho / m, nil
	},
	Priority:  PriorityDefault,
	Reference: "definition",
}

// ElectronDensity is ne = Z ni.
var ElectronDensity = core.ModelRule{
	Name:   "Common.ElectronDensity",
	Model:  "Common",
	Output: q.ElectronDensity,
	Inputs: []q.Kind{q.IonDensity, q.ChargeState},
	Compute: func(in core.Inputs) (float64, error) {
		ni, z := in.Value(q.IonDensity), in.Value(q.ChargeState)
		if err := positive(map[q.Kind]float64{q.IonDensity: ni, q.ChargeState: z}); err != nil {
			return 0, err
		}
		return z * ni, nil
	},
	Priority:  PriorityDefault,
	Reference: "quasi-neutrality",
}

// NormalizedDensity is ne / nc.
var NormalizedDensity = core.ModelRule{
	Name:   "Common.NormalizedDensity",
	Model:  "Common",
	Output: q.NormalizedDensity,
	Inputs: []q.Kind{q.ElectronDensity, q.CriticalDensity},
	Compute: func(in core.Inputs) (float64, error) {
		return in.Value(q.ElectronDensity) / in.Value(q.CriticalDensity), nil
	},
	Check: func(in core.Inputs) []string {
		if in.Value(q.ElectronDensity) < in.Value(q.CriticalDensity) {
			return []string{"underdense target: the laser propagates into the plasma"}
		}
		return nil
	},
	Priority:  PriorityDefault,
	Reference: "definition",
}
