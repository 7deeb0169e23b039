package config

import "github.com/leapstack-labs/lpi/pkg/quantity"

// Default configuration values.
const (
	DefaultExperimentFile = "experiment.yaml"
	DefaultRulesDir       = "rules"
)

// DefaultEstimate is reported when an experiment names no kinds of its own.
var DefaultEstimate = []quantity.Kind{
	quantity.PeakIntensity,
	quantity.NormalizedVectorPotential,
	quantity.CriticalDensity,
	quantity.ElectronDensity,
	quantity.HotElectronTemperature,
	quantity.AbsorptionEfficiency,
	quantity.DebyeLength,
}

// ApplyDefaults fills unset fields.
func (e *Experiment) ApplyDefaults() {
	if e == nil {
		return
	}
	if e.Name == "" {
		e.Name = "experiment"
	}
	if e.RulesDir == "" {
		e.RulesDir = DefaultRulesDir
	}
}
