package starlark

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/lpi/internal/registry"
	"github.com/leapstack-labs/lpi/internal/resolver"
	"github.com/leapstack-labs/lpi/internal/testutil"
	"github.com/leapstack-labs/lpi/pkg/core"
	"github.com/leapstack-labs/lpi/pkg/quantity"
)

const fitRules = `
def _te(intensity, wavelength):
    return 0.5 * constants.MeV * math.sqrt(intensity / 1e22)

def _te_check(intensity, wavelength):
    if wavelength > 1e-6:
        return "fitted for 0.8 um only"
    return None

rule(
    model = "MyFit2024",
    output = "HotElectronTemperature",
    inputs = ["PeakIntensity", "Wavelength"],
    compute = _te,
    check = _te_check,
    priority = 5,
    reference = "Doe et al. 2024",
)
`

func TestLoadSource(t *testing.T) {
	rules, err := NewLoader().LoadSource("fit.star", []byte(fitRules))
	require.NoError(t, err)
	require.Len(t, rules, 1)

	r := rules[0]
	assert.Equal(t, "MyFit2024.HotElectronTemperature", r.Name)
	assert.Equal(t, "MyFit2024", r.Model)
	assert.Equal(t, quantity.HotElectronTemperature, r.Output)
	assert.Equal(t, []quantity.Kind{quantity.PeakIntensity, quantity.Wavelength}, r.Inputs)
	assert.Equal(t, 5, r.Priority)
	assert.Equal(t, "Doe et al. 2024", r.Reference)

	in := core.NewInputs(
		quantity.New(quantity.PeakIntensity, 4e22),
		quantity.New(quantity.Wavelength, 0.8e-6),
	)
	got, err := r.Apply(in)
	require.NoError(t, err)
	assert.InEpsilon(t, quantity.MegaElectronVolt, got.Value, 1e-12)
	assert.Equal(t, "MyFit2024", got.Provenance)
	assert.Empty(t, r.Notes(in))

	long := core.NewInputs(
		quantity.New(quantity.PeakIntensity, 4e22),
		quantity.New(quantity.Wavelength, 1.06e-6),
	)
	assert.Equal(t, []string{"fitted for 0.8 um only"}, r.Notes(long))
}

func TestLoadSource_Defaults(t *testing.T) {
	src := `
name = rule(model = "Toy", output = "ElectronDensity", inputs = [], compute = lambda: 1e27)
rule(model = "Toy", output = "a0", inputs = ["PeakIntensity"], compute = lambda i: 1.0, name = "Toy.flat")
`
	rules, err := NewLoader().LoadSource("toy.star", []byte(src))
	require.NoError(t, err)
	require.Len(t, rules, 2)

	assert.Equal(t, "Toy.ElectronDensity", rules[0].Name)
	assert.Equal(t, DefaultPriority, rules[0].Priority)
	assert.Empty(t, rules[0].Inputs)
	assert.Equal(t, "Toy.flat", rules[1].Name)
	assert.Equal(t, quantity.NormalizedVectorPotential, rules[1].Output)
}

func TestLoadSource_Errors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr string
	}{
		{
			name:    "syntax error",
			src:     "rule(",
			wantErr: "Starlark execution error",
		},
		{
			name:    "unknown output kind",
			src:     `rule(model = "X", output = "Banana", inputs = [], compute = lambda: 1.0)`,
			wantErr: `unknown quantity kind "Banana"`,
		},
		{
			name:    "unknown input kind",
			src:     `rule(model = "X", output = "Wavelength", inputs = ["Banana"], compute = lambda b: 1.0)`,
			wantErr: `unknown quantity kind "Banana"`,
		},
		{
			name:    "non string input",
			src:     `rule(model = "X", output = "Wavelength", inputs = [1], compute = lambda b: 1.0)`,
			wantErr: "inputs must be kind names",
		},
		{
			name:    "arity mismatch",
			src:     `rule(model = "X", output = "Wavelength", inputs = ["LaserEnergy", "SpotFWHM"], compute = lambda e: 1.0)`,
			wantErr: "compute takes 1 parameters but 2 inputs are declared",
		},
		{
			name:    "missing compute",
			src:     `rule(model = "X", output = "Wavelength", inputs = [])`,
			wantErr: "missing argument for compute",
		},
		{
			name:    "check not callable",
			src:     `rule(model = "X", output = "Wavelength", inputs = [], compute = lambda: 1.0, check = 3)`,
			wantErr: "check must be callable",
		},
		{
			name:    "empty model",
			src:     `rule(model = "", output = "Wavelength", inputs = [], compute = lambda: 1.0)`,
			wantErr: "missing model tag",
		},
		{
			name:    "output as input",
			src:     `rule(model = "X", output = "Wavelength", inputs = ["Wavelength"], compute = lambda w: w)`,
			wantErr: "output kind listed as input",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLoader().LoadSource("bad.star", []byte(tt.src))
			require.Error(t, err)

			var loadErr *LoadError
			require.True(t, errors.As(err, &loadErr))
			assert.Equal(t, "bad.star", loadErr.File)
			assert.Contains(t, err.Error(), "rules/bad.star")
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadSource_ComputeFailures(t *testing.T) {
	src := `
rule(model = "Str", output = "Wavelength", inputs = [], compute = lambda: "oops")
rule(model = "Fail", output = "LaserEnergy", inputs = [], compute = lambda: fail("boom"))
rule(model = "Div", output = "SpotFWHM", inputs = ["WaistRadius"], compute = lambda w: 1.0 / w)
`
	rules, err := NewLoader().LoadSource("fail.star", []byte(src))
	require.NoError(t, err)
	require.Len(t, rules, 3)

	tests := []struct {
		rule    core.ModelRule
		in      core.Inputs
		wantErr string
	}{
		{rules[0], core.NewInputs(), "want a number"},
		{rules[1], core.NewInputs(), "boom"},
		{rules[2], core.NewInputs(quantity.New(quantity.WaistRadius, 0)), "division by zero"},
	}

	for _, tt := range tests {
		t.Run(tt.rule.Model, func(t *testing.T) {
			_, err := tt.rule.Apply(tt.in)
			require.Error(t, err)

			var computeErr *core.ComputeError
			require.True(t, errors.As(err, &computeErr))
			assert.Equal(t, tt.rule.Name, computeErr.Rule)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadSource_ResolvesThroughRegistry(t *testing.T) {
	rules, err := NewLoader().LoadSource("fit.star", []byte(fitRules))
	require.NoError(t, err)

	reg := registry.Default().Clone()
	require.NoError(t, reg.RegisterAll(rules...))
	reg.Freeze()

	known := core.NewKnownSet(
		quantity.New(quantity.PeakIntensity, 9e22),
		quantity.New(quantity.Wavelength, 0.8e-6),
	)

	r := resolver.New(reg, testutil.NewTestLogger(t))
	te, err := r.Resolve(quantity.HotElectronTemperature, known, resolver.WithModel("myfit2024"))
	require.NoError(t, err)

	assert.InEpsilon(t, 0.5*quantity.MegaElectronVolt*math.Sqrt(9), te.Value, 1e-12)
	assert.Equal(t, "MyFit2024", te.Provenance)

	_, ok := registry.Default().Get("MyFit2024.HotElectronTemperature")
	assert.False(t, ok, "default catalog must stay untouched")
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
	}
	write("b.star", `rule(model = "B", output = "Wavelength", inputs = [], compute = lambda: 1.0)`)
	write("a.star", `rule(model = "A", output = "Wavelength", inputs = [], compute = lambda: 2.0)`)
	write("notes.txt", "not a rules file")

	rules, err := NewLoader().LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, "A", rules[0].Model)
	assert.Equal(t, "B", rules[1].Model)
}

func TestLoadDir_Missing(t *testing.T) {
	rules, err := NewLoader().LoadDir(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Nil(t, rules)
}

func TestLoadDir_NotADirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.star")
	require.NoError(t, os.WriteFile(path, []byte(""), 0o600))

	_, err := NewLoader().LoadDir(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}

func TestLoadDir_StopsAtFirstBadFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.star"), []byte("rule("), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.star"),
		[]byte(`rule(model = "B", output = "Wavelength", inputs = [], compute = lambda: 1.0)`), 0o600))

	_, err := NewLoader().LoadDir(dir)
	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, filepath.Join(dir, "a.star"), loadErr.File)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := NewLoader().LoadFile(filepath.Join(t.TempDir(), "missing.star"))
	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Contains(t, loadErr.Message, "failed to read file")
}
