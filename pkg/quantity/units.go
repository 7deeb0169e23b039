package quantity

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// unitDef maps a unit symbol to its SI dimension and scale factor.
type unitDef struct {
	si     string
	factor float64
}

var units = map[string]unitDef{
	"1": {"1", 1},
	"%": {"1", 1e-2},

	// energy
	"J":   {"J", 1},
	"mJ":  {"J", 1e-3},
	"kJ":  {"J", 1e3},
	"eV":  {"J", ElectronVolt},
	"keV": {"J", KiloElectronVolt},
	"MeV": {"J", MegaElectronVolt},
	"GeV": {"J", 1e9 * ElectronVolt},

	// length
	"m":  {"m", 1},
	"cm": {"m", 1e-2},
	"mm": {"m", 1e-3},
	"um": {"m", 1e-6},
	"nm": {"m", 1e-9},
	"pm": {"m", 1e-12},

	// time
	"s":  {"s", 1},
	"ns": {"s", 1e-9},
	"ps": {"s", 1e-12},
	"fs": {"s", 1e-15},
	"as": {"s", 1e-18},

	// area
	"m^2":  {"m^2", 1},
	"cm^2": {"m^2", 1e-4},
	"mm^2": {"m^2", 1e-6},
	"um^2": {"m^2", 1e-12},

	// power
	"W":  {"W", 1},
	"kW": {"W", 1e3},
	"MW": {"W", 1e6},
	"GW": {"W", 1e9},
	"TW": {"W", 1e12},
	"PW": {"W", 1e15},

	// intensity
	"W/m^2":  {"W/m^2", 1},
	"W/cm^2": {"W/m^2", 1e4},

	// angular frequency
	"rad/s":  {"rad/s", 1},
	"1/s":    {"rad/s", 1},
	"rad/ps": {"rad/s", 1e12},
	"rad/fs": {"rad/s", 1e15},

	// number density
	"m^-3":  {"m^-3", 1},
	"cm^-3": {"m^-3", 1e6},

	// mass density
	"kg/m^3": {"kg/m^3", 1},
	"g/cm^3": {"kg/m^3", 1e3},

	// mass
	"kg":  {"kg", 1},
	"g":   {"kg", 1e-3},
	"amu": {"kg", AtomicMassUnit},

	// conductivity
	"S/m": {"S/m", 1},
}

var unitAliases = map[string]string{
	"":       "1",
	"µm":     "um", // micro sign
	"μm":     "um", // greek mu
	"micron": "um",
	"u":      "amu",
	"Da":     "amu",
	"W/cm2":  "W/cm^2",
	"W/m2":   "W/m^2",
	"cm2":    "cm^2",
	"m2":     "m^2",
	"um2":    "um^2",
	"µm^2":   "um^2",
	"cm-3":   "cm^-3",
	"m-3":    "m^-3",
	"/cm^3":  "cm^-3",
	"/cc":    "cm^-3",
	"g/cc":   "g/cm^3",
	"g/cm3":  "g/cm^3",
	"kg/m3":  "kg/m^3",
	"s^-1":   "1/s",
}

func lookupUnit(unit string) (unitDef, string, bool) {
	u := strings.TrimSpace(unit)
	u = strings.ReplaceAll(u, "**", "^")
	if alias, ok := unitAliases[u]; ok {
		u = alias
	}
	def, ok := units[u]
	return def, u, ok
}

// ToSI converts value expressed in unit to the SI unit of kind.
func ToSI(kind Kind, value float64, unit string) (float64, error) {
	def, _, ok := lookupUnit(unit)
	if !ok {
		return 0, &UnitError{Unit: unit}
	}
	if def.si != kind.Unit() {
		return 0, &UnitError{Unit: unit, Kind: kind}
	}
	return value * def.factor, nil
}

// FromSI converts an SI value of kind to unit.
func FromSI(kind Kind, value float64, unit string) (float64, error) {
	def, _, ok := lookupUnit(unit)
	if !ok {
		return 0, &UnitError{Unit: unit}
	}
	if def.si != kind.Unit() {
		return 0, &UnitError{Unit: unit, Kind: kind}
	}
	return value / def.factor, nil
}

// Base converts value in unit to SI without a target kind and returns the
// SI unit symbol it measures, e.g. Base(30, "fs") = 3e-14, "s".
func Base(value float64, unit string) (float64, string, error) {
	def, _, ok := lookupUnit(unit)
	if !ok {
		return 0, "", &UnitError{Unit: unit}
	}
	return value * def.factor, def.si, nil
}

// SplitValue splits strings like "30 fs", "0.8um" or "5.5e19 W/cm^2" into
// the numeric value and the unit symbol. A bare number has unit "".
func SplitValue(s string) (float64, string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, "", fmt.Errorf("empty value")
	}
	end := numericPrefix(s)
	if end == 0 {
		return 0, "", fmt.Errorf("invalid value %q: no leading number", s)
	}
	v, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0, "", fmt.Errorf("invalid value %q: %w", s, err)
	}
	return v, strings.TrimSpace(s[end:]), nil
}

// numericPrefix returns the length of the leading float literal in s.
func numericPrefix(s string) int {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := false
	for i < len(s) && (unicode.IsDigit(rune(s[i])) || s[i] == '.') {
		digits = true
		i++
	}
	if !digits {
		return 0
	}
	// exponent only when followed by digits, so "1 eV" and "2e" stay unambiguous
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		if j < len(s) && unicode.IsDigit(rune(s[j])) {
			for j < len(s) && unicode.IsDigit(rune(s[j])) {
				j++
			}
			i = j
		}
	}
	return i
}

// Parse reads a quantity of kind from a string such as "30 fs". A bare number
// is taken to already be in SI units.
func Parse(kind Kind, s string) (Quantity, error) {
	if !kind.Valid() {
		return Quantity{}, &UnknownKindError{Name: kind.String()}
	}
	v, unit, err := SplitValue(s)
	if err != nil {
		return Quantity{}, err
	}
	if unit == "" {
		return New(kind, v), nil
	}
	si, err := ToSI(kind, v, unit)
	if err != nil {
		return Quantity{}, err
	}
	return New(kind, si), nil
}

// Units returns the unit symbols accepted for kind.
func Units(kind Kind) []string {
	var out []string
	for sym, def := range units {
		if def.si == kind.Unit() {
			out = append(out, sym)
		}
	}
	sort.Strings(out)
	return out
}
