// Package config provides configuration management for the lpi CLI.
//
// Settings come from lpi.yaml, LPI_* environment variables and flags.
// Experiment files are a separate concern handled by internal/config;
// the two share the Preference type.
package config

import (
	sharedcfg "github.com/leapstack-labs/lpi/internal/config"
)

// Preference is an alias for the shared model preference type.
type Preference = sharedcfg.Preference

// Config holds all CLI configuration options.
type Config struct {
	RulesDir     string            `koanf:"rules_dir"`
	StatePath    string            `koanf:"state_path"`
	Verbose      bool              `koanf:"verbose"`
	OutputFormat string            `koanf:"output"`
	Models       map[string]string `koanf:"models"`      // default model choice per kind
	Preferences  []Preference      `koanf:"preferences"` // applied before any experiment's own
	PIC          *PICDefaults      `koanf:"pic"`

	// ProjectRoot is the directory relative paths are resolved against.
	ProjectRoot string `koanf:"-"`
}

// PICDefaults are estimator settings applied when an experiment has none.
type PICDefaults struct {
	ParticlesPerCell int `koanf:"ppc"`
	Dimensions       int `koanf:"dims"`
}

// Default configuration values.
const (
	DefaultRulesDir  = sharedcfg.DefaultRulesDir
	DefaultStateFile = ".lpi/history.db"
	DefaultOutput    = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	ConfigFileName   = "lpi.yaml"
	ConfigFileAlt    = "lpi.yml"
	EnvPrefix        = "LPI_"
)
