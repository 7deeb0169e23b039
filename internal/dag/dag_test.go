package dag

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/lpi/internal/registry"
	"github.com/leapstack-labs/lpi/pkg/core"
	q "github.com/leapstack-labs/lpi/pkg/quantity"
)

type ruleList []core.ModelRule

func (r ruleList) All() []core.ModelRule { return r }

func rule(name string, out q.Kind, inputs ...q.Kind) core.ModelRule {
	return core.ModelRule{
		Name:    name,
		Model:   "Test",
		Output:  out,
		Inputs:  inputs,
		Compute: func(core.Inputs) (float64, error) { return 1, nil },
	}
}

func TestGraph_AddNodeAndEdge(t *testing.T) {
	g := NewGraph()

	g.AddNode(q.LaserEnergy)
	g.AddNode(q.PeakPower)
	g.AddNode(q.PeakIntensity)
	g.AddNode(q.LaserEnergy)

	if g.NodeCount() != 3 {
		t.Errorf("expected 3 nodes, got %d", g.NodeCount())
	}

	require.NoError(t, g.AddEdge(q.LaserEnergy, q.PeakPower, "P"))
	require.NoError(t, g.AddEdge(q.PeakPower, q.PeakIntensity, "I"))
	require.NoError(t, g.AddEdge(q.PeakPower, q.PeakIntensity, "I"))

	assert.Equal(t, 2, g.EdgeCount())
	assert.Equal(t, []string{"I"}, g.EdgeRules(q.PeakPower, q.PeakIntensity))
}

func TestGraph_AddEdgeErrors(t *testing.T) {
	g := NewGraph()
	g.AddNode(q.LaserEnergy)

	tests := []struct {
		name     string
		from, to q.Kind
	}{
		{"missing child", q.LaserEnergy, q.PeakPower},
		{"missing parent", q.PeakPower, q.LaserEnergy},
		{"self loop", q.LaserEnergy, q.LaserEnergy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, g.AddEdge(tt.from, tt.to, "x"))
		})
	}
}

func TestGraph_AddRule_MergesAlternatives(t *testing.T) {
	g := FromRules(ruleList{
		rule("Wilks", q.HotElectronTemperature, q.PeakIntensity, q.Wavelength),
		rule("Beg", q.HotElectronTemperature, q.PeakIntensity, q.Wavelength),
	})

	assert.Equal(t, 3, g.NodeCount())
	assert.Equal(t, 2, g.EdgeCount())
	assert.Equal(t, []string{"Wilks", "Beg"}, g.EdgeRules(q.PeakIntensity, q.HotElectronTemperature))

	n, ok := g.Node(q.HotElectronTemperature)
	require.True(t, ok)
	assert.Equal(t, []string{"Wilks", "Beg"}, n.Rules)

	assert.Equal(t, []q.Kind{q.PeakIntensity, q.Wavelength}, g.Parents(q.HotElectronTemperature))
	assert.Equal(t, []q.Kind{q.HotElectronTemperature}, g.Children(q.Wavelength))
}

func TestGraph_HasCycle(t *testing.T) {
	t.Run("no cycle", func(t *testing.T) {
		g := FromRules(ruleList{
			rule("P", q.PeakPower, q.LaserEnergy),
			rule("I", q.PeakIntensity, q.PeakPower),
		})
		hasCycle, path := g.HasCycle()
		assert.False(t, hasCycle)
		assert.Nil(t, path)
		assert.NoError(t, g.Validate())
	})

	t.Run("three node cycle", func(t *testing.T) {
		g := FromRules(ruleList{
			rule("P", q.PeakPower, q.HotElectronTemperature),
			rule("I", q.PeakIntensity, q.PeakPower),
			rule("T", q.HotElectronTemperature, q.PeakIntensity),
		})
		hasCycle, path := g.HasCycle()
		require.True(t, hasCycle)
		assert.Equal(t, []q.Kind{q.HotElectronTemperature, q.PeakPower, q.PeakIntensity, q.HotElectronTemperature}, path)

		err := g.Validate()
		require.Error(t, err)
		assert.True(t, errors.Is(err, core.ErrCyclicDependency))

		var cde *core.CyclicDependencyError
		require.True(t, errors.As(err, &cde))
		assert.Equal(t, path, cde.Path)

		_, err = g.Levels()
		assert.ErrorIs(t, err, core.ErrCyclicDependency)
	})

	t.Run("bidirectional pair", func(t *testing.T) {
		g := FromRules(ruleList{
			rule("fwd", q.WaistRadius, q.SpotFWHM),
			rule("back", q.SpotFWHM, q.WaistRadius),
		})
		hasCycle, path := g.HasCycle()
		require.True(t, hasCycle)
		assert.Equal(t, []q.Kind{q.SpotFWHM, q.WaistRadius, q.SpotFWHM}, path)
	})
}

func TestGraph_Levels(t *testing.T) {
	g := FromRules(ruleList{
		rule("P", q.PeakPower, q.LaserEnergy, q.PulseTimeIntegral),
		rule("tau", q.PulseTimeIntegral, q.PulseDurationFWHM),
		rule("I", q.PeakIntensity, q.PeakPower),
	})

	levels, err := g.Levels()
	require.NoError(t, err)
	assert.Equal(t, [][]q.Kind{
		{q.LaserEnergy, q.PulseDurationFWHM},
		{q.PulseTimeIntegral},
		{q.PeakPower},
		{q.PeakIntensity},
	}, levels)
}

func TestGraph_UpstreamDownstream(t *testing.T) {
	g := FromRules(registry.Default())

	assert.Equal(t, []q.Kind{
		q.LaserEnergy,
		q.PeakIntensity,
		q.PeakPower,
		q.PulseDurationFWHM,
		q.PulseTimeIntegral,
		q.SpotAreaIntegral,
		q.SpotFWHM,
		q.WaistRadius,
		q.Wavelength,
	}, g.Upstream(q.HotElectronTemperature))

	down := g.Downstream([]q.Kind{q.ChargeState})
	assert.Contains(t, down, q.ChargeState)
	assert.Contains(t, down, q.ElectronDensity)
	assert.Contains(t, down, q.DebyeLength)
	assert.Contains(t, down, q.SpitzerConductivity)
	assert.NotContains(t, down, q.PeakIntensity)

	assert.Empty(t, g.Downstream([]q.Kind{q.CellSize}))
}

func TestGraph_BuiltinCatalog(t *testing.T) {
	g := FromRules(registry.Default())

	hasCycle, path := g.HasCycle()
	assert.False(t, hasCycle, "builtin catalog has cycle %v", path)

	assert.Equal(t, []q.Kind{
		q.AtomicMass,
		q.ChargeState,
		q.LaserEnergy,
		q.MassDensity,
		q.PulseDurationFWHM,
		q.SpotFWHM,
		q.WaistRadius,
		q.Wavelength,
	}, g.Roots())

	leaves := g.Leaves()
	assert.Contains(t, leaves, q.HotElectronPenetrationDepth)
	assert.NotContains(t, leaves, q.SpitzerConductivity)
	assert.Contains(t, leaves, q.HotElectronNumber)
	assert.NotContains(t, leaves, q.PeakIntensity)
}

func TestGraph_Subgraph(t *testing.T) {
	g := FromRules(registry.Default())
	upstream := append(g.Upstream(q.PeakIntensity), q.PeakIntensity)

	sub := g.Subgraph(upstream)
	assert.Equal(t, len(upstream), sub.NodeCount())
	assert.Equal(t, []q.Kind{q.PeakPower, q.SpotAreaIntegral}, sub.Parents(q.PeakIntensity))
	assert.Empty(t, sub.Children(q.PeakIntensity))
	assert.Equal(t, []string{"GaussianFWHM.SpotAreaIntegral"}, sub.EdgeRules(q.SpotFWHM, q.SpotAreaIntegral))

	n, ok := sub.Node(q.SpotAreaIntegral)
	require.True(t, ok)
	assert.Len(t, n.Rules, 2)
}
