package pic

import (
	"math"

	"github.com/leapstack-labs/lpi/pkg/quantity"
)

// CodeUnits is the Smilei normalization: every quantity is expressed
// relative to a reference angular frequency, here the laser frequency.
type CodeUnits struct {
	AngularFrequency float64 `json:"angular_frequency"` // rad/s
	Length           float64 `json:"length"`            // c / omega, m
	Time             float64 `json:"time"`              // 1 / omega, s
	ElectricField    float64 `json:"electric_field"`    // me c omega / e, V/m
	MagneticField    float64 `json:"magnetic_field"`    // me omega / e, T
	Density          float64 `json:"density"`           // critical density, m^-3
	Current          float64 `json:"current"`           // c e nc, A/m^2
	Energy           float64 `json:"energy"`            // me c^2, J
	Momentum         float64 `json:"momentum"`          // me c, kg m/s
}

// NewCodeUnits builds the normalization for reference frequency omega.
func NewCodeUnits(omega float64) CodeUnits {
	const (
		c  = quantity.SpeedOfLight
		e  = quantity.ElementaryCharge
		me = quantity.ElectronMass
	)
	nc := quantity.VacuumPermittivity * me * omega * omega / (e * e)
	return CodeUnits{
		AngularFrequency: omega,
		Length:           c / omega,
		Time:             1 / omega,
		ElectricField:    me * c * omega / e,
		MagneticField:    me * omega / e,
		Density:          nc,
		Current:          c * e * nc,
		Energy:           me * c * c,
		Momentum:         me * c,
	}
}

// Normalize expresses q in code units. It reports false for kinds with
// no code unit.
func (u CodeUnits) Normalize(q quantity.Quantity) (float64, bool) {
	ref, ok := u.reference(q.Kind)
	if !ok || ref == 0 {
		return math.NaN(), false
	}
	return q.Value / ref, true
}

func (u CodeUnits) reference(k quantity.Kind) (float64, bool) {
	switch k.Unit() {
	case "m":
		return u.Length, true
	case "s":
		return u.Time, true
	case "rad/s":
		return u.AngularFrequency, true
	case "m^-3":
		return u.Density, true
	case "J":
		return u.Energy, true
	case "1":
		return 1, true
	}
	return 0, false
}
