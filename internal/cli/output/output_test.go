package output

import (
	"bytes"
	"encoding/json"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/lpi/internal/registry"
	"github.com/leapstack-labs/lpi/internal/resolver"
	"github.com/leapstack-labs/lpi/pkg/core"
	"github.com/leapstack-labs/lpi/pkg/quantity"
)

var ansi = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

func newTestRenderer(mode OutputMode, tty bool) (*Renderer, *bytes.Buffer, *bytes.Buffer) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	return NewRendererWithTTY(out, errOut, tty, mode), out, errOut
}

func TestMode(t *testing.T) {
	tests := []struct {
		in   string
		want OutputMode
	}{
		{"", ModeAuto},
		{"auto", ModeAuto},
		{"TEXT", ModeText},
		{"md", ModeMarkdown},
		{"markdown", ModeMarkdown},
		{"json", ModeJSON},
		{"yaml", ModeAuto},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Mode(tt.in))
		})
	}
}

func TestEffectiveMode(t *testing.T) {
	tests := []struct {
		mode OutputMode
		tty  bool
		want OutputMode
	}{
		{ModeAuto, true, ModeText},
		{ModeAuto, false, ModeMarkdown},
		{ModeJSON, true, ModeJSON},
		{ModeText, false, ModeText},
	}
	for _, tt := range tests {
		r, _, _ := newTestRenderer(tt.mode, tt.tty)
		assert.Equal(t, tt.want, r.EffectiveMode(), "mode %s tty %v", tt.mode, tt.tty)
	}
}

func TestLabel(t *testing.T) {
	tests := []struct {
		kind quantity.Kind
		want string
	}{
		{quantity.HotElectronTemperature, "Hot Electron Temperature"},
		{quantity.PulseDurationFWHM, "Pulse Duration FWHM"},
		{quantity.Wavelength, "Wavelength"},
		{quantity.NormalizedVectorPotential, "Normalized Vector Potential"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Label(tt.kind))
		})
	}
	assert.Equal(t, "Reference Shot", Title("reference shot"))
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "## Models", FormatHeader(2, "Models"))
	assert.Equal(t, "# X", FormatHeader(0, "X"))
	assert.Equal(t, "- **Total**: 3", FormatKeyValue("Total", "3"))
	assert.Equal(t, "```yaml\na: 1\n```", FormatCodeBlock("yaml", "a: 1\n"))
	assert.Equal(t, "| A | B |\n| --- | --- |\n| 1 | x\\|y |", FormatTable([]string{"A", "B"}, [][]string{{"1", "x|y"}}))
	assert.Equal(t, "2 J", FormatSI(quantity.New(quantity.LaserEnergy, 2)))
	assert.Equal(t, "13", FormatSI(quantity.New(quantity.ChargeState, 13)))
}

var shot = QuantitiesOutput{
	Name: "reference shot",
	Quantities: []quantity.Quantity{
		quantity.New(quantity.LaserEnergy, 2),
		quantity.NewFrom(quantity.HotElectronTemperature, quantity.MegaElectronVolt, "Wilks1992"),
	},
	Warnings: []string{"cell size above limit"},
}

func TestQuantities_Markdown(t *testing.T) {
	r, out, _ := newTestRenderer(ModeAuto, false)
	require.NoError(t, r.Quantities(shot))

	s := out.String()
	assert.False(t, ansi.MatchString(s))
	assert.Contains(t, s, "# Reference Shot")
	assert.Contains(t, s, "| Quantity | Value | SI | Provenance |")
	assert.Contains(t, s, "| Hot Electron Temperature |")
	assert.Contains(t, s, "Wilks1992")
	assert.Contains(t, s, "## Warnings")
	assert.Contains(t, s, "- cell size above limit")
}

func TestQuantities_Text(t *testing.T) {
	r, out, _ := newTestRenderer(ModeText, true)
	require.NoError(t, r.Quantities(shot))

	s := ansi.ReplaceAllString(out.String(), "")
	assert.Contains(t, s, "Reference Shot")
	assert.Contains(t, s, "┌")
	assert.Contains(t, s, "Laser Energy")
	assert.Contains(t, s, "user-supplied")
}

func TestQuantities_JSON(t *testing.T) {
	r, out, _ := newTestRenderer(ModeJSON, false)
	require.NoError(t, r.Quantities(shot))

	var decoded struct {
		Name       string `json:"name"`
		Quantities []struct {
			Kind       string  `json:"kind"`
			Value      float64 `json:"value"`
			Unit       string  `json:"unit"`
			Provenance string  `json:"provenance"`
		} `json:"quantities"`
		Warnings []string `json:"warnings"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, "reference shot", decoded.Name)
	require.Len(t, decoded.Quantities, 2)
	assert.Equal(t, "HotElectronTemperature", decoded.Quantities[1].Kind)
	assert.Equal(t, "J", decoded.Quantities[1].Unit)
	assert.Equal(t, []string{"cell size above limit"}, decoded.Warnings)
}

func TestStatusLines(t *testing.T) {
	r, out, errOut := newTestRenderer(ModeMarkdown, false)
	r.Success("done")
	r.Warning("careful")
	r.Error("failed")

	assert.Empty(t, out.String())
	assert.Equal(t, "✓ done\n! careful\n✗ failed\n", errOut.String())
	assert.Equal(t, "plain", r.Muted("plain"))

	r.StatusLine("lpi.yaml", "success", "")
	r.StatusLine("run-1", "failed", "boom")
	r.StatusLine("run-2", "running", "")
	assert.Equal(t, "✓ lpi.yaml\n✗ run-1 boom\n• run-2\n", out.String())
}

func TestTrace(t *testing.T) {
	known := core.NewKnownSet(
		quantity.New(quantity.Wavelength, 0.8e-6),
	)
	res := resolver.New(registry.Default(), nil)
	trace, err := res.Explain(quantity.CriticalDensity, known)
	require.NoError(t, err)

	t.Run("markdown", func(t *testing.T) {
		r, out, _ := newTestRenderer(ModeMarkdown, false)
		require.NoError(t, r.Trace(trace))
		s := out.String()
		assert.Contains(t, s, "# Derivation of Critical Density")
		assert.Contains(t, s, "- **CriticalDensity**")
		assert.Contains(t, s, "  - **")
		assert.Contains(t, s, "(known)")
	})

	t.Run("json", func(t *testing.T) {
		r, out, _ := newTestRenderer(ModeJSON, false)
		require.NoError(t, r.Trace(trace))
		var decoded map[string]any
		require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
		assert.Contains(t, decoded, "root")
	})
}
