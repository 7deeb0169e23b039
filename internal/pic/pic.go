// Package pic estimates particle-in-cell simulation parameters (cell size,
// timestep, particles per cell) from resolved plasma parameters.
//
// The bounds are advisory. Overrides beyond them are kept and reported as
// core.StabilityWarning values on the Estimate.
package pic

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/leapstack-labs/lpi/internal/resolver"
	"github.com/leapstack-labs/lpi/pkg/core"
	"github.com/leapstack-labs/lpi/pkg/quantity"
)

// Resolver is the part of the resolver the estimator needs.
type Resolver interface {
	Resolve(target quantity.Kind, known *core.KnownSet, opts ...resolver.Option) (quantity.Quantity, error)
}

// Limits are the stability bounds an Estimate was checked against.
type Limits struct {
	// WavelengthCellSize is WavelengthFraction * lambda.
	WavelengthCellSize float64 `json:"wavelength_cell_size"`
	// DebyeCellSize is DebyeFraction * lambda_De.
	DebyeCellSize float64 `json:"debye_cell_size"`
	// MaxCellSize is the smaller of the two.
	MaxCellSize float64 `json:"max_cell_size"`
	// CourantTimeStep is CourantSafety * dx / (c sqrt(D)) for the chosen dx.
	CourantTimeStep float64 `json:"courant_time_step"`
	// PlasmaPeriodLimit is 2 / omega_pe, the leapfrog stability bound.
	PlasmaPeriodLimit float64 `json:"plasma_period_limit"`
	// MaxTimeStep is the smaller of the two timestep bounds.
	MaxTimeStep float64 `json:"max_time_step"`
}

// Estimate is a proposed simulation configuration.
type Estimate struct {
	CellSize         quantity.Quantity       `json:"cell_size"`
	TimeStep         quantity.Quantity       `json:"time_step"`
	ParticlesPerCell quantity.Quantity       `json:"particles_per_cell"`
	Dimensions       int                     `json:"dimensions"`
	Limits           Limits                  `json:"limits"`
	Plasma           []quantity.Quantity     `json:"plasma"`
	Warnings         []core.StabilityWarning `json:"warnings,omitempty"`
	CodeUnits        CodeUnits               `json:"code_units"`
}

// Stable reports whether no warning was raised.
func (e *Estimate) Stable() bool {
	return len(e.Warnings) == 0
}

// SpaceResolution is the number of cells per metre.
func (e *Estimate) SpaceResolution() float64 {
	return 1 / e.CellSize.Value
}

// TimeResolution is the number of timesteps per second.
func (e *Estimate) TimeResolution() float64 {
	return 1 / e.TimeStep.Value
}

// Quantities returns the chosen parameters as quantities.
func (e *Estimate) Quantities() []quantity.Quantity {
	return []quantity.Quantity{e.CellSize, e.TimeStep, e.ParticlesPerCell}
}

// Estimator derives simulation parameters through a resolver.
type Estimator struct {
	resolver Resolver
	logger   *slog.Logger
}

// NewEstimator creates an estimator. A nil logger discards output.
func NewEstimator(r Resolver, logger *slog.Logger) *Estimator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Estimator{resolver: r, logger: logger}
}

// plasmaKinds are resolved before any limit is computed.
var plasmaKinds = []quantity.Kind{
	quantity.Wavelength,
	quantity.LaserAngularFrequency,
	quantity.ElectronDensity,
	quantity.DebyeLength,
	quantity.ElectronPlasmaFrequency,
}

// Estimate resolves the plasma parameters from known and computes the
// simulation parameters. Resolution errors are returned unchanged.
func (e *Estimator) Estimate(known *core.KnownSet, s Settings, opts ...resolver.Option) (*Estimate, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	values := make(map[quantity.Kind]float64, len(plasmaKinds))
	plasma := make([]quantity.Quantity, 0, len(plasmaKinds))
	for _, k := range plasmaKinds {
		q, err := e.resolver.Resolve(k, known, opts...)
		if err != nil {
			return nil, err
		}
		values[k] = q.Value
		plasma = append(plasma, q)
	}

	est := &Estimate{
		Dimensions: s.Dimensions,
		Plasma:     plasma,
		CodeUnits:  NewCodeUnits(values[quantity.LaserAngularFrequency]),
	}

	lim := &est.Limits
	lim.WavelengthCellSize = s.WavelengthFraction * values[quantity.Wavelength]
	lim.DebyeCellSize = s.DebyeFraction * values[quantity.DebyeLength]
	lim.MaxCellSize = math.Min(lim.WavelengthCellSize, lim.DebyeCellSize)

	dx := lim.MaxCellSize
	if s.CellSize != nil {
		dx = *s.CellSize
		if dx > lim.MaxCellSize {
			est.warn(quantity.CellSize, dx, lim.MaxCellSize, fmt.Sprintf(
				"cell size above min(%g lambda, %g lambda_De): unresolved Debye length causes numerical heating",
				s.WavelengthFraction, s.DebyeFraction))
		}
	}
	est.CellSize = quantity.NewFrom(quantity.CellSize, dx, provenance(s.CellSize))

	lim.CourantTimeStep = s.CourantSafety * dx / (quantity.SpeedOfLight * math.Sqrt(float64(s.Dimensions)))
	lim.PlasmaPeriodLimit = 2 / values[quantity.ElectronPlasmaFrequency]
	lim.MaxTimeStep = math.Min(lim.CourantTimeStep, lim.PlasmaPeriodLimit)

	dt := lim.MaxTimeStep
	if s.TimeStep != nil {
		dt = *s.TimeStep
		if dt > lim.CourantTimeStep {
			est.warn(quantity.TimeStep, dt, lim.CourantTimeStep, fmt.Sprintf(
				"timestep violates the %dD Courant condition", s.Dimensions))
		}
		if dt > lim.PlasmaPeriodLimit {
			est.warn(quantity.TimeStep, dt, lim.PlasmaPeriodLimit,
				"timestep above 2/omega_pe: leapfrog integration of plasma oscillations is unstable")
		}
	}
	est.TimeStep = quantity.NewFrom(quantity.TimeStep, dt, provenance(s.TimeStep))

	ppc := float64(s.ParticlesPerCell)
	if s.ParticlesPerCell < MinParticlesPerCell {
		est.warn(quantity.ParticlesPerCell, ppc, MinParticlesPerCell,
			"too few particles per cell: statistical noise dominates")
	}
	est.ParticlesPerCell = quantity.NewFrom(quantity.ParticlesPerCell, ppc, quantity.ProvenanceUser)

	for _, w := range est.Warnings {
		e.logger.Debug("stability warning", slog.String("parameter", w.Parameter.String()), slog.String("reason", w.Reason))
	}
	e.logger.Debug("pic estimate",
		slog.String("cell_size", est.CellSize.String()),
		slog.String("time_step", est.TimeStep.String()),
		slog.Int("warnings", len(est.Warnings)))

	return est, nil
}

func (e *Estimate) warn(k quantity.Kind, value, limit float64, reason string) {
	e.Warnings = append(e.Warnings, core.StabilityWarning{Parameter: k, Value: value, Limit: limit, Reason: reason})
}

// provenance tags chosen values: overrides are user-supplied, the rest
// come from the stability limits.
func provenance(override *float64) string {
	if override != nil {
		return quantity.ProvenanceUser
	}
	return "StabilityLimit"
}
