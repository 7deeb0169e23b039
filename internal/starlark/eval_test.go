package starlark

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/lpi/pkg/core"
	"github.com/leapstack-labs/lpi/pkg/quantity"
)

func TestEvaluator_EvalFloat(t *testing.T) {
	known := core.NewKnownSet(
		quantity.New(quantity.HotElectronTemperature, quantity.MegaElectronVolt),
		quantity.New(quantity.Wavelength, 0.8e-6),
	)

	tests := []struct {
		name string
		expr string
		want float64
	}{
		{"bound kind", "Wavelength", 0.8e-6},
		{"known dict", `known["Wavelength"]`, 0.8e-6},
		{"arithmetic", "HotElectronTemperature / constants.MeV", 1},
		{"display", `display("Wavelength", Wavelength, "um")`, 0.8},
		{"math", "math.sqrt(HotElectronTemperature / constants.mc2)", 1.39891},
		{"integer result", "2 + 2", 4},
	}

	e := NewEvaluator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.EvalFloat(tt.expr, known)
			require.NoError(t, err)
			assert.InEpsilon(t, tt.want, got, 1e-4)
		})
	}
}

func TestEvaluator_Eval(t *testing.T) {
	known := core.NewKnownSet(quantity.New(quantity.LaserEnergy, 2))

	e := NewEvaluator()

	got, err := e.Eval(`"energy=%g" % LaserEnergy`, known)
	require.NoError(t, err)
	assert.Equal(t, "energy=2.0", got)

	got, err = e.Eval(`sorted(known.keys())`, known)
	require.NoError(t, err)
	assert.Equal(t, []any{"LaserEnergy"}, got)

	got, err = e.Eval(`"Wavelength" in known`, nil)
	require.NoError(t, err)
	assert.Equal(t, false, got)
}

func TestEvaluator_Errors(t *testing.T) {
	tests := []struct {
		name    string
		expr    string
		wantErr string
	}{
		{"undefined name", "Wavelength * 2", "undefined: Wavelength"},
		{"syntax", "1 +", "<expr>:1"},
		{"not a number", `"text"`, "result is string, want a number"},
	}

	e := NewEvaluator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.EvalFloat(tt.expr, core.NewKnownSet())
			require.Error(t, err)

			var evalErr *EvalError
			require.True(t, errors.As(err, &evalErr))
			assert.Equal(t, tt.expr, evalErr.Expr)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
