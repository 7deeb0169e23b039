// Package config defines experiment files: the laser, target and known
// quantities of one shot plus the model choices and PIC settings used to
// evaluate it. It is decoupled from CLI concerns.
//
// An experiment file looks like:
//
//	name: reference shot
//	laser:
//	  energy: 2 J
//	  wavelength: 0.8 um
//	  time: {shape: gaussian, fwhm: 30 fs}
//	  space: {shape: gaussian, fwhm: 10 um}
//	target:
//	  material: Al
//	known:
//	  HotElectronTemperature: 1 MeV
//	models:
//	  HotElectronTemperature: Beg1997
//	pic:
//	  ppc: 16
//	  dims: 2
package config

// ProfileConfig describes a temporal or spatial envelope.
type ProfileConfig struct {
	Shape  string  `koanf:"shape"` // gaussian, top-hat, super-gaussian
	FWHM   Measure `koanf:"fwhm"`
	Radius Measure `koanf:"radius"` // top-hat only
	Order  float64 `koanf:"order"`  // super-gaussian only
}

// LaserConfig describes the laser pulse.
type LaserConfig struct {
	Energy     Measure       `koanf:"energy"`
	Wavelength Measure       `koanf:"wavelength"`
	Time       ProfileConfig `koanf:"time"`
	Space      ProfileConfig `koanf:"space"`
}

// TargetConfig names a material from the built-in database, optionally
// overriding its density or ionization state.
type TargetConfig struct {
	Material string  `koanf:"material"`
	Density  Measure `koanf:"density"`
	Z        float64 `koanf:"z"`
}

// Preference moves a model to the front (or to an explicit priority) for
// one output kind.
type Preference struct {
	Kind     string `koanf:"kind"`
	Model    string `koanf:"model"`
	Priority *int   `koanf:"priority"`
}

// PICConfig holds PIC estimator settings. Zero values take the defaults.
type PICConfig struct {
	CellSize           Measure `koanf:"cell_size"`
	TimeStep           Measure `koanf:"time_step"`
	ParticlesPerCell   int     `koanf:"ppc"`
	Dimensions         int     `koanf:"dims"`
	DebyeFraction      float64 `koanf:"debye_fraction"`
	WavelengthFraction float64 `koanf:"wavelength_fraction"`
	CourantSafety      float64 `koanf:"courant_safety"`
}

// Experiment is one parsed experiment file.
type Experiment struct {
	Name        string             `koanf:"name"`
	Laser       *LaserConfig       `koanf:"laser"`
	Target      *TargetConfig      `koanf:"target"`
	Known       map[string]Measure `koanf:"known"`
	Models      map[string]string  `koanf:"models"`
	Preferences []Preference       `koanf:"preferences"`
	Estimate    []string           `koanf:"estimate"` // kinds reported by default
	PIC         *PICConfig         `koanf:"pic"`
	RulesDir    string             `koanf:"rules_dir"`

	// Path is the file the experiment was read from, "" when parsed from memory.
	Path string `koanf:"-"`
}
