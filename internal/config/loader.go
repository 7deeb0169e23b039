package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// LoadExperiment reads an experiment file. Relative rules_dir paths are
// resolved against the file's directory.
func LoadExperiment(path string) (*Experiment, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("error reading experiment file %s: %w", path, err)
	}

	exp, err := unmarshal(k)
	if err != nil {
		return nil, fmt.Errorf("experiment %s: %w", path, err)
	}
	exp.Path = path
	if exp.Name == "" {
		exp.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	exp.ApplyDefaults()
	exp.RulesDir = resolvePathRelativeTo(exp.RulesDir, filepath.Dir(path))
	return exp, nil
}

// ParseExperiment reads an experiment from YAML held in memory.
func ParseExperiment(data []byte) (*Experiment, error) {
	m, err := yaml.Parser().Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("error parsing experiment: %w", err)
	}

	k := koanf.New(".")
	if err := k.Load(confmap.Provider(m, "."), nil); err != nil {
		return nil, err
	}

	exp, err := unmarshal(k)
	if err != nil {
		return nil, err
	}
	exp.ApplyDefaults()
	return exp, nil
}

func unmarshal(k *koanf.Koanf) (*Experiment, error) {
	var exp Experiment
	if err := k.UnmarshalWithConf("", &exp, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook:       MeasureHookFunc(),
			Result:           &exp,
			WeaklyTypedInput: true,
			ErrorUnused:      true,
		},
	}); err != nil {
		return nil, fmt.Errorf("unable to decode experiment: %w", err)
	}
	exp.RulesDir = expandEnvVars(exp.RulesDir)
	return &exp, nil
}

// resolvePathRelativeTo resolves a path relative to baseDir if it's not absolute.
// Returns the path unchanged if it's empty or already absolute.
func resolvePathRelativeTo(path, baseDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars expands ${VAR} patterns in a string with environment variable values.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match // Return original if not found
	})
}
