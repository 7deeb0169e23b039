package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	intconfig "github.com/leapstack-labs/lpi/internal/config"
	"github.com/leapstack-labs/lpi/internal/registry"
	"github.com/leapstack-labs/lpi/internal/state"
	"github.com/leapstack-labs/lpi/internal/testutil"
	"github.com/leapstack-labs/lpi/pkg/core"
	q "github.com/leapstack-labs/lpi/pkg/quantity"
)

const shotYAML = `
name: reference
laser:
  energy: 2 J
  wavelength: 0.8 um
  time: {shape: gaussian, fwhm: 30 fs}
  space: {shape: gaussian, fwhm: 10 um}
target:
  material: Al
`

const fitRule = `
def _te(intensity):
    return 3 * constants.MeV

rule(model = "Flat2024", output = "HotElectronTemperature", inputs = ["PeakIntensity"], compute = _te, priority = 50)
`

// loopRules close a cycle between two kinds no builtin rule derives from
// each other.
const loopRules = `
def _same(x):
    return x

rule(model = "LoopA", output = "CellSize", inputs = ["TimeStep"], compute = _same)
rule(model = "LoopB", output = "TimeStep", inputs = ["CellSize"], compute = _same)
`

func parse(t *testing.T, src string) *intconfig.Experiment {
	t.Helper()
	exp, err := intconfig.ParseExperiment([]byte(src))
	require.NoError(t, err)
	exp.RulesDir = ""
	return exp
}

func newEngine(t *testing.T, cfg Config) *Engine {
	t.Helper()
	if cfg.Logger == nil {
		cfg.Logger = testutil.NewTestLogger(t)
	}
	e, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func rulesDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "flat.star"), []byte(fitRule), 0o600))
	return dir
}

func byKind(qs []q.Quantity) map[q.Kind]q.Quantity {
	out := make(map[q.Kind]q.Quantity, len(qs))
	for _, x := range qs {
		out[x.Kind] = x
	}
	return out
}

func TestNew(t *testing.T) {
	e := newEngine(t, Config{})

	assert.True(t, e.Registry().Frozen())
	assert.Equal(t, registry.Default().Count(), e.Registry().Count())
	assert.Empty(t, e.CustomRules())
	require.NoError(t, e.Graph().Validate())
}

func TestNew_CustomRules(t *testing.T) {
	e := newEngine(t, Config{RulesDir: rulesDir(t)})

	require.Len(t, e.CustomRules(), 1)
	assert.Equal(t, registry.Default().Count()+1, e.Registry().Count())
	_, ok := e.Registry().Get("Flat2024.HotElectronTemperature")
	assert.True(t, ok)
	_, ok = registry.Default().Get("Flat2024.HotElectronTemperature")
	assert.False(t, ok, "default registry must stay untouched")
}

func TestNew_Errors(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"bad model kind", Config{Models: map[string]string{"Banana": "X"}}, "models"},
		{"bad preference", Config{Preferences: []intconfig.Preference{{Kind: "HotElectronTemperature", Model: "Nobody"}}}, "preferences[0]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	t.Run("rule cycle", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "loop.star"), []byte(loopRules), 0o600))
		_, err := New(Config{RulesDir: dir})
		require.Error(t, err)
		assert.ErrorIs(t, err, core.ErrCyclicDependency)
	})

	t.Run("bad rule file", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.star"), []byte("rule(\n"), 0o600))
		_, err := New(Config{RulesDir: dir})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to load rules")
	})
}

func TestRun_ReferenceShot(t *testing.T) {
	e := newEngine(t, Config{})

	res, err := e.Run(context.Background(), parse(t, shotYAML), RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, "reference", res.Name)
	assert.Empty(t, res.RunID)
	require.Len(t, res.Quantities, len(intconfig.DefaultEstimate))

	got := byKind(res.Quantities)
	intensity := got[q.PeakIntensity]
	assert.InEpsilon(t, 5.5273e23, intensity.Value, 1e-3)
	assert.InEpsilon(t, 5.0848, got[q.NormalizedVectorPotential].Value, 1e-3)
	assert.Equal(t, "Wilks1992", got[q.HotElectronTemperature].Provenance)
	assert.Greater(t, got[q.DebyeLength].Value, 0.0)
}

func TestRun_ModelChoices(t *testing.T) {
	kinds := []q.Kind{q.HotElectronTemperature}

	t.Run("override", func(t *testing.T) {
		e := newEngine(t, Config{})
		res, err := e.Run(context.Background(), parse(t, shotYAML), RunOptions{
			Kinds:  kinds,
			Models: map[q.Kind]string{q.HotElectronTemperature: "Beg1997"},
		})
		require.NoError(t, err)
		require.Len(t, res.Quantities, 1)
		assert.Equal(t, "Beg1997", res.Quantities[0].Provenance)
		assert.InEpsilon(t, 0.707*q.MegaElectronVolt, res.Quantities[0].Value, 1e-2)
	})

	t.Run("engine default", func(t *testing.T) {
		e := newEngine(t, Config{Models: map[string]string{"HotElectronTemperature": "Haines2009"}})
		res, err := e.Run(context.Background(), parse(t, shotYAML), RunOptions{Kinds: kinds})
		require.NoError(t, err)
		assert.Equal(t, "Haines2009", res.Quantities[0].Provenance)
	})

	t.Run("experiment beats engine", func(t *testing.T) {
		e := newEngine(t, Config{Models: map[string]string{"HotElectronTemperature": "Haines2009"}})
		exp := parse(t, shotYAML+"models:\n  HotElectronTemperature: Beg1997\n")
		res, err := e.Run(context.Background(), exp, RunOptions{Kinds: kinds})
		require.NoError(t, err)
		assert.Equal(t, "Beg1997", res.Quantities[0].Provenance)
	})

	t.Run("experiment preference", func(t *testing.T) {
		e := newEngine(t, Config{})
		exp := parse(t, shotYAML+"preferences:\n  - {kind: HotElectronTemperature, model: Haines2009}\n")
		res, err := e.Run(context.Background(), exp, RunOptions{Kinds: kinds})
		require.NoError(t, err)
		assert.Equal(t, "Haines2009", res.Quantities[0].Provenance)
		assert.Equal(t, "Wilks1992", e.Registry().RulesFor(q.HotElectronTemperature)[0].Model)
	})

	t.Run("experiment rules", func(t *testing.T) {
		e := newEngine(t, Config{})
		exp := parse(t, shotYAML)
		exp.RulesDir = rulesDir(t)
		res, err := e.Run(context.Background(), exp, RunOptions{
			Kinds:  kinds,
			Models: map[q.Kind]string{q.HotElectronTemperature: "flat2024"},
		})
		require.NoError(t, err)
		assert.Equal(t, "Flat2024", res.Quantities[0].Provenance)
		assert.InEpsilon(t, 3*q.MegaElectronVolt, res.Quantities[0].Value, 1e-12)
	})

	t.Run("unknown model", func(t *testing.T) {
		e := newEngine(t, Config{})
		_, err := e.Run(context.Background(), parse(t, shotYAML), RunOptions{
			Kinds:  kinds,
			Models: map[q.Kind]string{q.HotElectronTemperature: "Nobody"},
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, core.ErrUnknownModel)
	})
}

func TestRun_MissingInputs(t *testing.T) {
	e := newEngine(t, Config{})
	exp := parse(t, "name: laser only\nlaser:\n  energy: 2 J\n  wavelength: 0.8 um\n  time: {fwhm: 30 fs}\n  space: {fwhm: 10 um}\n")

	res, err := e.Run(context.Background(), exp, RunOptions{Kinds: []q.Kind{q.PeakIntensity, q.DebyeLength}})
	require.Error(t, err)

	var unresolvable *core.UnresolvableQuantityError
	require.True(t, errors.As(err, &unresolvable))
	require.Len(t, res.Quantities, 1, "resolved kinds are kept")
	assert.Equal(t, q.PeakIntensity, res.Quantities[0].Kind)
	assert.Equal(t, err, res.Err)
}

func TestRun_Record(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, Config{StatePath: ":memory:"})

	res, err := e.Run(ctx, parse(t, shotYAML), RunOptions{Record: true})
	require.NoError(t, err)
	require.NotEmpty(t, res.RunID)

	failed := parse(t, "name: empty\n")
	_, err = e.Run(ctx, failed, RunOptions{Record: true, Kinds: []q.Kind{q.DebyeLength}})
	require.Error(t, err)

	runs, err := e.Runs(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	byName := map[string]*state.Run{}
	for _, r := range runs {
		byName[r.Name] = r
	}
	require.Contains(t, byName, "reference")
	assert.Equal(t, state.RunStatusCompleted, byName["reference"].Status)

	store, err := e.History()
	require.NoError(t, err)
	run, err := store.GetRun(ctx, res.RunID)
	require.NoError(t, err)
	assert.Len(t, run.Quantities, len(intconfig.DefaultEstimate))
	assert.Equal(t, state.RunStatusFailed, byName["empty"].Status)
	assert.NotEmpty(t, byName["empty"].Error)

	limited, err := e.Runs(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestRun_RecordDisabled(t *testing.T) {
	e := newEngine(t, Config{})
	_, err := e.Run(context.Background(), parse(t, shotYAML), RunOptions{Record: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run history is disabled")

	_, err = e.History()
	require.Error(t, err)
}

func TestRunAll(t *testing.T) {
	e := newEngine(t, Config{StatePath: ":memory:"})

	exps := []*intconfig.Experiment{
		parse(t, shotYAML),
		parse(t, "name: broken\n"),
		parse(t, shotYAML+"models:\n  HotElectronTemperature: Beg1997\n"),
	}
	exps[2].Name = "beg"

	results, err := e.RunAll(context.Background(), exps, RunOptions{Kinds: []q.Kind{q.HotElectronTemperature}, Record: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
	require.Len(t, results, 3)

	assert.NoError(t, results[0].Err)
	assert.Equal(t, "Wilks1992", results[0].Quantities[0].Provenance)
	assert.Error(t, results[1].Err)
	assert.NoError(t, results[2].Err)
	assert.Equal(t, "Beg1997", results[2].Quantities[0].Provenance)

	runs, err := e.Runs(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, runs, 3)
}

func TestRunAll_Cancelled(t *testing.T) {
	e := newEngine(t, Config{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := e.RunAll(ctx, []*intconfig.Experiment{parse(t, shotYAML)}, RunOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, results, 1)
	assert.Empty(t, results[0].Quantities)
}

func TestSession(t *testing.T) {
	e := newEngine(t, Config{PIC: &intconfig.PICConfig{ParticlesPerCell: 64}})
	s, err := e.Session(parse(t, shotYAML), nil)
	require.NoError(t, err)

	t.Run("known is copied per request", func(t *testing.T) {
		k1 := s.Known()
		k1.Set(q.New(q.HotElectronTemperature, 1))
		assert.False(t, s.Known().Has(q.HotElectronTemperature))
	})

	t.Run("explain", func(t *testing.T) {
		trace, err := s.Explain(q.HotElectronTemperature, "Beg1997")
		require.NoError(t, err)
		assert.Equal(t, "Beg1997", trace.Root.Quantity.Provenance)
		assert.NotEmpty(t, trace.Root.Inputs)
	})

	t.Run("pic uses engine defaults", func(t *testing.T) {
		settings, err := s.Settings()
		require.NoError(t, err)
		assert.Equal(t, 64, settings.ParticlesPerCell)

		est, err := s.PIC(settings)
		require.NoError(t, err)
		assert.LessOrEqual(t, est.CellSize.Value, est.Limits.MaxCellSize)
		assert.True(t, est.Stable())
	})
}

func TestSession_PICLayering(t *testing.T) {
	e := newEngine(t, Config{PIC: &intconfig.PICConfig{ParticlesPerCell: 64, Dimensions: 3}})
	s, err := e.Session(parse(t, shotYAML+"pic:\n  ppc: 32\n"), nil)
	require.NoError(t, err)

	settings, err := s.Settings()
	require.NoError(t, err)
	assert.Equal(t, 32, settings.ParticlesPerCell)
	assert.Equal(t, 3, settings.Dimensions)
}

func TestSession_Errors(t *testing.T) {
	e := newEngine(t, Config{})

	_, err := e.Session(parse(t, "known:\n  Banana: 1 J\n"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Banana")

	_, err = e.Session(parse(t, "models:\n  Banana: X\n"), nil)
	require.Error(t, err)

	_, err = e.Session(parse(t, shotYAML+"preferences:\n  - {kind: DebyeLength, model: Nobody}\n"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "preferences[0]")
}
