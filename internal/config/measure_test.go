package config

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/lpi/pkg/quantity"
)

func TestParseMeasure(t *testing.T) {
	tests := []struct {
		in       string
		want     float64
		wantUnit string
		wantErr  bool
	}{
		{"30 fs", 30e-15, "s", false},
		{"0.8um", 0.8e-6, "m", false},
		{"5.5e19 W/cm^2", 5.5e23, "W/m^2", false},
		{"2", 2, "", false},
		{"1 MeV", quantity.MegaElectronVolt, "J", false},
		{"", 0, "", true},
		{"fast", 0, "", true},
		{"3 parsecs", 0, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMeasure(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InEpsilon(t, tt.want, got.Value, 1e-12)
			assert.Equal(t, tt.wantUnit, got.Unit)
			assert.Equal(t, tt.in, got.Raw)
		})
	}
}

func TestMeasure_For(t *testing.T) {
	m, err := ParseMeasure("30 fs")
	require.NoError(t, err)

	v, err := m.For(quantity.PulseDurationFWHM)
	require.NoError(t, err)
	assert.InEpsilon(t, 30e-15, v, 1e-12)

	_, err = m.For(quantity.Wavelength)
	require.Error(t, err)

	bare := Measure{Value: 7}
	v, err = bare.For(quantity.ChargeState)
	require.NoError(t, err)
	assert.Equal(t, 7.0, v)

	q, err := bare.Quantity(quantity.ChargeState)
	require.NoError(t, err)
	assert.Equal(t, quantity.ProvenanceUser, q.Provenance)

	assert.True(t, Measure{}.IsZero())
	assert.False(t, bare.IsZero())
}

func TestMeasureHookFunc(t *testing.T) {
	hook := MeasureHookFunc()
	strType := reflect.TypeOf("")

	tests := []struct {
		name string
		to   reflect.Type
		data any
		want any
	}{
		{"string", measureType, "2 J", Measure{Value: 2, Unit: "J", Raw: "2 J"}},
		{"float", measureType, 0.5, Measure{Value: 0.5, Raw: "0.5"}},
		{"int", measureType, 3, Measure{Value: 3, Raw: "3"}},
		{"other target untouched", strType, "2 J", "2 J"},
		{"unsupported passes through", measureType, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := hook(strType, tt.to, tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
