package resolver

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/lpi/internal/registry"
	"github.com/leapstack-labs/lpi/internal/testutil"
	"github.com/leapstack-labs/lpi/pkg/core"
	"github.com/leapstack-labs/lpi/pkg/laser"
	"github.com/leapstack-labs/lpi/pkg/profile"
	q "github.com/leapstack-labs/lpi/pkg/quantity"
	"github.com/leapstack-labs/lpi/pkg/target"
)

// referenceShot is 2 J, 30 fs, 10 um FWHM gaussian at 0.8 um on solid Al.
func referenceShot(t *testing.T) *core.KnownSet {
	t.Helper()
	l, err := laser.New(profile.NewGaussian1D(30e-15), profile.NewGaussian2D(10e-6), 0.8e-6, 2)
	require.NoError(t, err)
	seed, err := l.Seed()
	require.NoError(t, err)

	al, err := target.Lookup("Al")
	require.NoError(t, err)

	known := core.NewKnownSet(seed...)
	known.Add(al.Seed()...)
	return known
}

func constRule(name, model string, out q.Kind, priority int, value float64, inputs ...q.Kind) core.ModelRule {
	return core.ModelRule{
		Name:     name,
		Model:    model,
		Output:   out,
		Inputs:   inputs,
		Priority: priority,
		Compute:  func(core.Inputs) (float64, error) { return value, nil },
	}
}

func newRegistry(t *testing.T, rules ...core.ModelRule) *registry.ModelRegistry {
	t.Helper()
	r := registry.NewModelRegistry()
	require.NoError(t, r.RegisterAll(rules...))
	return r
}

func TestResolve_UserInputPrecedence(t *testing.T) {
	r := New(registry.Default(), testutil.NewTestLogger(t))

	supplied := q.New(q.HotElectronTemperature, 42*q.KiloElectronVolt)
	known := referenceShot(t)
	known.Set(supplied)

	got, err := r.Resolve(q.HotElectronTemperature, known)
	require.NoError(t, err)
	assert.Equal(t, supplied, got)
	assert.Equal(t, q.ProvenanceUser, got.Provenance)

	got, err = r.Resolve(q.HotElectronTemperature, known, WithModel("Beg1997"))
	require.NoError(t, err)
	assert.Equal(t, supplied, got, "explicit choice does not override a supplied value")
}

func TestResolve_ReferenceShot(t *testing.T) {
	r := New(registry.Default(), testutil.NewTestLogger(t))

	tests := []struct {
		name   string
		kind   q.Kind
		opts   []Option
		extra  []q.Quantity
		want   float64
		unit   string
		model  string
		relTol float64
	}{
		{"peak intensity", q.PeakIntensity, nil, nil, 5.5273e19, "W/cm^2", "Common", 1e-3},
		{"wilks by priority", q.HotElectronTemperature, nil, nil, 2.1371, "MeV", "Wilks1992", 1e-3},
		{"beg by model option", q.HotElectronTemperature, []Option{WithModel("Beg1997")}, nil, 0.70724, "MeV", "Beg1997", 1e-3},
		{"haines by choice", q.HotElectronTemperature, []Option{WithChoices(map[q.Kind]string{q.HotElectronTemperature: "haines2009"})}, nil, 0.95148, "MeV", "Haines2009", 1e-3},
		{"a0", q.NormalizedVectorPotential, nil, nil, 5.0848, "1", "Common", 1e-3},
		{"absorption", q.AbsorptionEfficiency, nil, nil, 0.48825, "1", "Key1998", 1e-3},
		{"electron density", q.ElectronDensity, nil, nil, 7.83095e23, "cm^-3", "Common", 1e-4},
		{
			"debye length at 1 MeV", q.DebyeLength, nil,
			[]q.Quantity{q.New(q.ElectronTemperature, q.MegaElectronVolt)},
			8.4006, "nm", "Common", 1e-4,
		},
		{
			"coulomb logarithm at 1 MeV", q.CoulombLogarithm, nil,
			[]q.Quantity{q.New(q.ElectronTemperature, q.MegaElectronVolt)},
			15.579, "1", "Common", 1e-3,
		},
		{"debye length from wilks temperature", q.DebyeLength, nil, nil, 12.2808, "nm", "Common", 1e-3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			known := referenceShot(t)
			known.Add(tt.extra...)

			got, err := r.Resolve(tt.kind, known, tt.opts...)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, got.Kind)
			assert.Equal(t, tt.model, got.Provenance)

			v, err := got.In(tt.unit)
			require.NoError(t, err)
			assert.InEpsilon(t, tt.want, v, tt.relTol)
		})
	}
}

func TestResolve_EndToEndFromWaist(t *testing.T) {
	r := New(registry.Default(), testutil.NewTestLogger(t))
	known := core.NewKnownSet(
		q.New(q.LaserEnergy, 10),
		q.New(q.PulseDurationFWHM, 30e-15),
		q.New(q.WaistRadius, 5e-6),
		q.New(q.Wavelength, 800e-9),
	)

	intensity, err := r.Resolve(q.PeakIntensity, known)
	require.NoError(t, err)
	assert.Greater(t, intensity.Value, 0.0)

	area, ok := known.Get(q.SpotAreaIntegral)
	require.True(t, ok)
	assert.Equal(t, "GaussianBeam", area.Provenance)

	temp, err := r.Resolve(q.HotElectronTemperature, known, WithModel("Wilks1992"))
	require.NoError(t, err)
	assert.Greater(t, temp.Value, 0.0)
	assert.Equal(t, "Wilks1992", temp.Provenance)
}

func TestResolve_Unresolvable(t *testing.T) {
	r := New(registry.Default(), testutil.NewTestLogger(t))

	_, err := r.Resolve(q.HotElectronTemperature, core.NewKnownSet())
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrUnresolvable))

	var ure *core.UnresolvableQuantityError
	require.True(t, errors.As(err, &ure))
	assert.Equal(t, q.HotElectronTemperature, ure.Kind)
	require.Len(t, ure.Attempts, 3)
	assert.Equal(t, "Wilks1992.HotElectronTemperature", ure.Attempts[0].Rule)
	assert.Equal(t, []q.Kind{q.PeakIntensity, q.Wavelength}, ure.Attempts[0].Missing)
	assert.Contains(t, ure.Missing(), q.PeakIntensity)
	assert.Contains(t, err.Error(), "PeakIntensity")
}

func TestResolve_UnknownQuantity(t *testing.T) {
	r := New(registry.Default(), nil)

	for _, k := range []q.Kind{q.Wavelength, q.CellSize} {
		t.Run(k.String(), func(t *testing.T) {
			_, err := r.Resolve(k, core.NewKnownSet())
			require.Error(t, err)

			var uqe *core.UnknownQuantityError
			require.True(t, errors.As(err, &uqe))
			assert.Equal(t, k, uqe.Kind)
		})
	}
}

func TestResolve_PartialDerivationsKept(t *testing.T) {
	r := New(registry.Default(), testutil.NewTestLogger(t))
	known := core.NewKnownSet(
		q.New(q.LaserEnergy, 2),
		q.New(q.PulseDurationFWHM, 30e-15),
	)

	_, err := r.Resolve(q.PeakIntensity, known)
	var ure *core.UnresolvableQuantityError
	require.True(t, errors.As(err, &ure))
	require.Len(t, ure.Attempts, 1)
	assert.Equal(t, "Common.PeakIntensity", ure.Attempts[0].Rule)
	assert.Equal(t, []q.Kind{q.SpotAreaIntegral}, ure.Attempts[0].Missing)

	assert.True(t, known.Has(q.PeakPower), "intermediate derivation stays in the known set")
	assert.False(t, known.Has(q.PeakIntensity))
}

func TestResolve_Cycle(t *testing.T) {
	reg := newRegistry(t,
		constRule("A", "M", q.PeakPower, 0, 1, q.PeakIntensity),
		constRule("B", "M", q.PeakIntensity, 0, 1, q.PeakPower),
	)
	r := New(reg, testutil.NewTestLogger(t))

	_, err := r.Resolve(q.PeakPower, core.NewKnownSet())
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrCyclicDependency))

	var cde *core.CyclicDependencyError
	require.True(t, errors.As(err, &cde))
	assert.Equal(t, []q.Kind{q.PeakPower, q.PeakIntensity, q.PeakPower}, cde.Path)
	assert.Equal(t, "cyclic dependency: PeakPower -> PeakIntensity -> PeakPower", err.Error())
}

func TestResolve_CyclePropagatesPastFallback(t *testing.T) {
	reg := newRegistry(t,
		constRule("loop", "Loop", q.PeakPower, 0, 1, q.PeakIntensity),
		constRule("fallback", "Fallback", q.PeakPower, 10, 2),
		constRule("back", "Back", q.PeakIntensity, 0, 1, q.PeakPower),
	)
	r := New(reg, nil)

	_, err := r.Resolve(q.PeakPower, core.NewKnownSet())
	assert.ErrorIs(t, err, core.ErrCyclicDependency)
}

func TestResolve_PrioritySwap(t *testing.T) {
	build := func(preferred string) *Resolver {
		reg := newRegistry(t,
			constRule("Low.HotElectronTemperature", "Low", q.HotElectronTemperature, 10, 1e-14),
			constRule("High.HotElectronTemperature", "High", q.HotElectronTemperature, 10, 2e-14),
		)
		require.NoError(t, reg.Prefer(q.HotElectronTemperature, preferred))
		reg.Freeze()
		return New(reg, nil)
	}

	tests := []struct {
		preferred string
		want      float64
	}{
		{"Low", 1e-14},
		{"High", 2e-14},
	}

	for _, tt := range tests {
		t.Run(tt.preferred, func(t *testing.T) {
			got, err := build(tt.preferred).Resolve(q.HotElectronTemperature, core.NewKnownSet())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Value)
			assert.Equal(t, tt.preferred, got.Provenance)
		})
	}
}

func TestResolve_FirstSatisfiableWins(t *testing.T) {
	reg := newRegistry(t,
		constRule("needs-a0", "NeedsA0", q.HotElectronTemperature, 0, 1, q.NormalizedVectorPotential),
		constRule("free", "Free", q.HotElectronTemperature, 5, 2),
		constRule("also-free", "AlsoFree", q.HotElectronTemperature, 10, 3),
	)
	r := New(reg, nil)

	got, err := r.Resolve(q.HotElectronTemperature, core.NewKnownSet())
	require.NoError(t, err)
	assert.Equal(t, "Free", got.Provenance)
}

func TestResolve_UnknownModel(t *testing.T) {
	r := New(registry.Default(), nil)

	tests := []struct {
		name string
		opts []Option
		kind q.Kind
	}{
		{"target", []Option{WithModel("Bell2003")}, q.HotElectronTemperature},
		{"inside chain", []Option{WithChoices(map[q.Kind]string{q.PeakIntensity: "Nope"})}, q.HotElectronTemperature},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Resolve(tt.kind, referenceShot(t), tt.opts...)
			require.Error(t, err)
			assert.True(t, errors.Is(err, core.ErrUnknownModel))
		})
	}

	_, err := r.Resolve(q.HotElectronTemperature, referenceShot(t), WithModel("Bell2003"))
	var ume *core.UnknownModelError
	require.True(t, errors.As(err, &ume))
	assert.Equal(t, []string{"Wilks1992", "Haines2009", "Beg1997"}, ume.Available)
}

func TestResolve_ComputeErrorIsFatal(t *testing.T) {
	broken := constRule("broken", "Broken", q.PeakPower, 0, 0)
	broken.Compute = func(core.Inputs) (float64, error) { return 0, errors.New("negative energy") }

	reg := newRegistry(t, broken, constRule("ok", "Ok", q.PeakPower, 10, 1))
	r := New(reg, nil)

	_, err := r.Resolve(q.PeakPower, core.NewKnownSet())
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrCompute))

	var ce *core.ComputeError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "broken", ce.Rule)
}

func TestResolveAll(t *testing.T) {
	r := New(registry.Default(), testutil.NewTestLogger(t))
	known := referenceShot(t)

	got, err := r.ResolveAll([]q.Kind{q.PeakIntensity, q.CriticalDensity, q.NormalizedDensity}, known)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.InEpsilon(t, 449.5, got[2].Value, 1e-3)

	got, err = r.ResolveAll([]q.Kind{q.PeakPower, q.SpitzerConductivity, q.CellSize}, known)
	assert.ErrorIs(t, err, core.ErrUnknownQuantity)
	assert.Len(t, got, 2)
}

func TestExplain(t *testing.T) {
	r := New(registry.Default(), testutil.NewTestLogger(t))
	known := referenceShot(t)

	trace, err := r.Explain(q.HotElectronTemperature, known, WithModel("Beg1997"))
	require.NoError(t, err)

	root := trace.Root
	assert.Equal(t, q.HotElectronTemperature, root.Kind)
	assert.Equal(t, "Beg1997.HotElectronTemperature", root.Rule)
	assert.True(t, root.Derived())
	require.Len(t, root.Inputs, 2)
	assert.Equal(t, q.PeakIntensity, root.Inputs[0].Kind)
	assert.Equal(t, "Common.PeakIntensity", root.Inputs[0].Rule)
	assert.Equal(t, q.Wavelength, root.Inputs[1].Kind)
	assert.Equal(t, SourceKnown, root.Inputs[1].Source)

	require.Len(t, trace.Notes, 1)
	assert.Equal(t, "Beg1997.HotElectronTemperature", trace.Notes[0].Rule)
	assert.Contains(t, trace.Notes[0].Message, "outside fitted range")

	// intensity needs power and the spot area, both seeded or derived
	var kinds []q.Kind
	for _, s := range trace.Steps() {
		kinds = append(kinds, s.Kind)
	}
	assert.Equal(t, q.HotElectronTemperature, kinds[len(kinds)-1])
	assert.Contains(t, kinds, q.PeakPower)

	depth := map[q.Kind]int{}
	trace.Walk(func(s *Step, d int) { depth[s.Kind] = d })
	assert.Equal(t, 0, depth[q.HotElectronTemperature])
	assert.Equal(t, 1, depth[q.PeakIntensity])
	assert.Equal(t, 2, depth[q.PeakPower])
}

func TestResolve_ResistiveTransport(t *testing.T) {
	r := New(registry.Default(), testutil.NewTestLogger(t))
	known := referenceShot(t)

	z0, err := r.Resolve(q.HotElectronPenetrationDepth, known)
	require.NoError(t, err)
	assert.Equal(t, "Bell1997", z0.Provenance)
	assert.Greater(t, z0.Value, 0.0)

	sigma, ok := known.Get(q.SpitzerConductivity)
	require.True(t, ok, "conductivity derived on the way")
	assert.Equal(t, "Spitzer1962", sigma.Provenance)

	n0, err := r.Resolve(q.HotElectronDensity, known)
	require.NoError(t, err)
	assert.Equal(t, "Bell1997", n0.Provenance)
}

func TestExplain_SharedStep(t *testing.T) {
	r := New(registry.Default(), nil)
	known := referenceShot(t)

	trace, err := r.Explain(q.HotElectronNumber, known)
	require.NoError(t, err)

	var eta, temp *Step
	for _, in := range trace.Root.Inputs {
		switch in.Kind {
		case q.AbsorptionEfficiency:
			eta = in
		case q.HotElectronTemperature:
			temp = in
		}
	}
	require.NotNil(t, eta)
	require.NotNil(t, temp)
	assert.Same(t, eta.Inputs[0], temp.Inputs[0], "peak intensity derived once")

	count := 0
	for _, s := range trace.Steps() {
		if s.Kind == q.PeakIntensity {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestResolve_ConcurrentRequests(t *testing.T) {
	r := New(registry.Default(), nil)

	sets := make([]*core.KnownSet, 8)
	for i := range sets {
		sets[i] = referenceShot(t)
	}

	var wg sync.WaitGroup
	results := make([]float64, len(sets))
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got, err := r.Resolve(q.DebyeLength, sets[i])
			assert.NoError(t, err)
			results[i] = got.Value
		}(i)
	}
	wg.Wait()

	for _, v := range results[1:] {
		assert.Equal(t, results[0], v)
	}
}
