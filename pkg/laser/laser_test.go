package laser

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/lpi/pkg/profile"
	"github.com/leapstack-labs/lpi/pkg/quantity"
)

func byKind(qs []quantity.Quantity) map[quantity.Kind]quantity.Quantity {
	m := make(map[quantity.Kind]quantity.Quantity, len(qs))
	for _, q := range qs {
		m[q.Kind] = q
	}
	return m
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		time    profile.Profile
		space   profile.Profile
		lambda  float64
		energy  float64
		wantErr string
	}{
		{"valid", profile.NewGaussian1D(30e-15), profile.NewGaussian2D(10e-6), 0.8e-6, 2, ""},
		{"zero energy", profile.NewGaussian1D(30e-15), profile.NewGaussian2D(10e-6), 0.8e-6, 0, "Energy"},
		{"negative wavelength", profile.NewGaussian1D(30e-15), profile.NewGaussian2D(10e-6), -1, 2, "Wavelength"},
		{"bad time profile", profile.NewGaussian1D(0), profile.NewGaussian2D(10e-6), 0.8e-6, 2, "time profile"},
		{"bad space profile", profile.NewGaussian1D(30e-15), profile.NewTopHat(0), 0.8e-6, 2, "space profile"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.time, tt.space, tt.lambda, tt.energy)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSeed_Gaussian(t *testing.T) {
	l, err := New(profile.NewGaussian1D(30e-15), profile.NewGaussian2D(10e-6), 0.8e-6, 2)
	require.NoError(t, err)

	seed, err := l.Seed()
	require.NoError(t, err)
	got := byKind(seed)

	require.Len(t, got, 6)
	assert.Equal(t, 2.0, got[quantity.LaserEnergy].Value)
	assert.Equal(t, 0.8e-6, got[quantity.Wavelength].Value)
	assert.Equal(t, 30e-15, got[quantity.PulseDurationFWHM].Value)
	assert.Equal(t, 10e-6, got[quantity.SpotFWHM].Value)
	assert.Equal(t, quantity.ProvenanceUser, got[quantity.SpotFWHM].Provenance)

	tInt := got[quantity.PulseTimeIntegral]
	assert.InEpsilon(t, math.Sqrt(math.Pi)*30e-15/(2*math.Sqrt(math.Ln2)), tInt.Value, 1e-12)
	assert.Equal(t, "profile/gaussian1D", tInt.Provenance)

	sInt := got[quantity.SpotAreaIntegral]
	r0 := 10e-6 / (2 * math.Sqrt(math.Ln2))
	assert.InEpsilon(t, math.Pi*r0*r0, sInt.Value, 1e-12)
	assert.Equal(t, "profile/gaussian2D", sInt.Provenance)
}

func TestSeed_TopHat(t *testing.T) {
	l, err := New(profile.NewGaussian1D(30e-15), profile.NewTopHat(5e-6), 0.8e-6, 2)
	require.NoError(t, err)

	seed, err := l.Seed()
	require.NoError(t, err)
	got := byKind(seed)

	assert.Equal(t, 5e-6, got[quantity.WaistRadius].Value)
	_, hasFWHM := got[quantity.SpotFWHM]
	assert.False(t, hasFWHM)
	assert.InEpsilon(t, math.Pi*25e-12, got[quantity.SpotAreaIntegral].Value, 1e-12)
}

func TestSeed_UnsupportedProfile(t *testing.T) {
	// a spatial Gaussian used as time profile has no 1D integral
	l := Laser{
		TimeProfile:  profile.NewGaussian2D(30e-15),
		SpaceProfile: profile.NewGaussian2D(10e-6),
		Wavelength:   0.8e-6,
		Energy:       2,
	}
	_, err := l.Seed()
	require.Error(t, err)
	assert.ErrorIs(t, err, profile.ErrUnsupported)
}

func TestString(t *testing.T) {
	l, err := New(profile.NewGaussian1D(30e-15), profile.NewGaussian2D(10e-6), 0.8e-6, 2)
	require.NoError(t, err)
	assert.Contains(t, l.String(), "2 J")
	assert.Contains(t, l.String(), "0.8 um")
}
