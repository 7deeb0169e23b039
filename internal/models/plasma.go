package models

import (
	"fmt"
	"math"

	"github.com/leapstack-labs/lpi/pkg/core"
	q "github.com/leapstack-labs/lpi/pkg/quantity"
)

func init() {
	register(DebyeLength, LandauLength, ElectronPlasmaFrequency, IonPlasmaFrequency, CoulombLogarithm, Spitzer1962)
}

// DebyeLength is sqrt(eps0 Te / (ne e^2)).
var DebyeLength = core.ModelRule{
	Name:   "Common.DebyeLength",
	Model:  "Common",
	Output: q.DebyeLength,
	Inputs: []q.Kind{q.ElectronDensity, q.ElectronTemperature},
	Compute: func(in core.Inputs) (float64, error) {
		ne, te := in.Value(q.ElectronDensity), in.Value(q.ElectronTemperature)
		if err := positive(map[q.Kind]float64{q.ElectronDensity: ne, q.ElectronTemperature: te}); err != nil {
			return 0, err
		}
		return math.Sqrt(q.VacuumPermittivity * te / (ne * q.ElementaryCharge * q.ElementaryCharge)), nil
	},
	Priority:  PriorityDefault,
	Reference: "definition",
}

// LandauLength is the distance of closest approach e^2 / (4 pi eps0 Te).
var LandauLength = core.ModelRule{
	Name:   "Common.LandauLength",
	Model:  "Common",
	Output: q.LandauLength,
	Inputs: []q.Kind{q.ElectronTemperature},
	Compute: func(in core.Inputs) (float64, error) {
		te := in.Value(q.ElectronTemperature)
		if err := positive(map[q.Kind]float64{q.ElectronTemperature: te}); err != nil {
			return 0, err
		}
		return q.ElementaryCharge * q.ElementaryCharge / (4 * math.Pi * q.VacuumPermittivity * te), nil
	},
	Priority:  PriorityDefault,
	Reference: "definition",
}

// ElectronPlasmaFrequency is sqrt(ne e^2 / (me eps0)).
var ElectronPlasmaFrequency = core.ModelRule{
	Name:   "Common.ElectronPlasmaFrequency",
	Model:  "Common",
	Output: q.ElectronPlasmaFrequency,
	Inputs: []q.Kind{q.ElectronDensity},
	Compute: func(in core.Inputs) (float64, error) {
		ne := in.Value(q.ElectronDensity)
		if err := positive(map[q.Kind]float64{q.ElectronDensity: ne}); err != nil {
			return 0, err
		}
		return math.Sqrt(ne * q.ElementaryCharge * q.ElementaryCharge / (q.ElectronMass * q.VacuumPermittivity)), nil
	},
	Priority:  PriorityDefault,
	Reference: "definition",
}

// IonPlasmaFrequency is sqrt(ni (Z e)^2 / (mi eps0)).
var IonPlasmaFrequency = core.ModelRule{
	Name:   "Common.IonPlasmaFrequency",
	Model:  "Common",
	Output: q.IonPlasmaFrequency,
	Inputs: []q.Kind{q.IonDensity, q.ChargeState, q.AtomicMass},
	Compute: func(in core.Inputs) (float64, error) {
		ni, z, mi := in.Value(q.IonDensity), in.Value(q.ChargeState), in.Value(q.AtomicMass)
		if err := positive(map[q.Kind]float64{q.IonDensity: ni, q.ChargeState: z, q.AtomicMass: mi}); err != nil {
			return 0, err
		}
		ze := z * q.ElementaryCharge
		return math.Sqrt(ni * ze * ze / (mi * q.VacuumPermittivity)), nil
	},
	Priority:  PriorityDefault,
	Reference: "definition",
}

// CoulombLogarithm is ln(lambda_De / b0) with b0 the Landau length.
var CoulombLogarithm = core.ModelRule{
	Name:   "Common.CoulombLogarithm",
	Model:  "Common",
	Output: q.CoulombLogarithm,
	Inputs: []q.Kind{q.DebyeLength, q.LandauLength},
	Compute: func(in core.Inputs) (float64, error) {
		lnL := math.Log(in.Value(q.DebyeLength) / in.Value(q.LandauLength))
		if !(lnL > 0) {
			return 0, fmt.Errorf("coulomb logarithm %.3g is not positive: plasma is strongly coupled", lnL)
		}
		return lnL, nil
	},
	Check: func(in core.Inputs) []string {
		if math.Log(in.Value(q.DebyeLength)/in.Value(q.LandauLength)) < 2 {
			return []string{"Coulomb logarithm below 2: weakly coupled plasma theory is marginal"}
		}
		return nil
	},
	Priority:  PriorityDefault,
	Reference: "definition",
}

// Spitzer1962 is sigma = (4 pi eps0)^2 Te^(3/2) / (pi Z e^2 sqrt(me) lnL).
var Spitzer1962 = core.ModelRule{
	Name:   "Spitzer1962.SpitzerConductivity",
	Model:  "Spitzer1962",
	Output: q.SpitzerConductivity,
	Inputs: []q.Kind{q.ElectronTemperature, q.ChargeState, q.CoulombLogarithm},
	Compute: func(in core.Inputs) (float64, error) {
		te, z, lnL := in.Value(q.ElectronTemperature), in.Value(q.ChargeState), in.Value(q.CoulombLogarithm)
		if err := positive(map[q.Kind]float64{q.ElectronTemperature: te, q.ChargeState: z, q.CoulombLogarithm: lnL}); err != nil {
			return 0, err
		}
		f := 4 * math.Pi * q.VacuumPermittivity
		return f * f * math.Pow(te, 1.5) / (math.Pi * z * q.ElementaryCharge * q.ElementaryCharge * math.Sqrt(q.ElectronMass) * lnL), nil
	},
	Priority:  PriorityDefault,
	Reference: "L. Spitzer, Physics of Fully Ionized Gases (1962)",
	Validity:  "fully ionized, weakly coupled plasma",
}
