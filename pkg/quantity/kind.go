package quantity

import (
	"fmt"
	"sort"
	"strings"
)

// Kind identifies a physical quantity the engine can hold or derive.
// Every kind has exactly one SI unit; values are always stored in it.
type Kind int

// Known kinds. The order is stable and only used for iteration.
const (
	KindUnknown Kind = iota

	// Laser inputs and geometry
	LaserEnergy
	Wavelength
	PulseDurationFWHM
	WaistRadius
	SpotFWHM
	PulseTimeIntegral
	SpotAreaIntegral
	PeakPower
	PeakIntensity
	LaserAngularFrequency
	CriticalDensity
	PhotonEnergy
	NormalizedVectorPotential

	// Target material
	MassDensity
	AtomicMass
	ChargeState
	IonDensity
	ElectronDensity
	NormalizedDensity

	// Laser-plasma interaction
	HotElectronTemperature
	ElectronTemperature
	AbsorptionEfficiency
	HotElectronNumber
	HotElectronDensity
	HotElectronPenetrationDepth
	IonEnergyCutoff
	DebyeLength
	LandauLength
	ElectronPlasmaFrequency
	IonPlasmaFrequency
	CoulombLogarithm
	SpitzerConductivity

	// Particle-in-cell configuration
	CellSize
	TimeStep
	ParticlesPerCell

	numKinds
)

type kindInfo struct {
	name    string
	unit    string // SI unit
	display string // unit used when formatting for humans
	desc    string
}

var kindTable = [numKinds]kindInfo{
	KindUnknown: {"Unknown", "", "", "unknown quantity"},

	LaserEnergy:               {"LaserEnergy", "J", "J", "total energy of the laser pulse"},
	Wavelength:                {"Wavelength", "m", "um", "laser central wavelength"},
	PulseDurationFWHM:         {"PulseDurationFWHM", "s", "fs", "full width at half maximum of the pulse intensity in time"},
	WaistRadius:               {"WaistRadius", "m", "um", "1/e^2 intensity radius of the focal spot (Gaussian waist w0)"},
	SpotFWHM:                  {"SpotFWHM", "m", "um", "full width at half maximum of the focal spot intensity"},
	PulseTimeIntegral:         {"PulseTimeIntegral", "s", "fs", "time integral of the normalized temporal envelope"},
	SpotAreaIntegral:          {"SpotAreaIntegral", "m^2", "um^2", "surface integral of the normalized spatial envelope"},
	PeakPower:                 {"PeakPower", "W", "TW", "laser peak power"},
	PeakIntensity:             {"PeakIntensity", "W/m^2", "W/cm^2", "laser peak intensity on target"},
	LaserAngularFrequency:     {"LaserAngularFrequency", "rad/s", "rad/fs", "laser angular frequency"},
	CriticalDensity:           {"CriticalDensity", "m^-3", "cm^-3", "electron density at which the plasma frequency equals the laser frequency"},
	PhotonEnergy:              {"PhotonEnergy", "J", "eV", "energy of a laser photon"},
	NormalizedVectorPotential: {"NormalizedVectorPotential", "1", "1", "normalized laser vector potential a0"},

	MassDensity:       {"MassDensity", "kg/m^3", "g/cm^3", "target mass density"},
	AtomicMass:        {"AtomicMass", "kg", "amu", "mass of one atom or molecule of the target"},
	ChargeState:       {"ChargeState", "1", "1", "mean ionization state Z"},
	IonDensity:        {"IonDensity", "m^-3", "cm^-3", "ion number density"},
	ElectronDensity:   {"ElectronDensity", "m^-3", "cm^-3", "free electron number density"},
	NormalizedDensity: {"NormalizedDensity", "1", "1", "electron density over critical density"},

	HotElectronTemperature:      {"HotElectronTemperature", "J", "keV", "temperature of the laser-heated supra-thermal electron population"},
	ElectronTemperature:         {"ElectronTemperature", "J", "keV", "temperature of the electron population screening the plasma"},
	AbsorptionEfficiency:        {"AbsorptionEfficiency", "1", "1", "fraction of laser energy converted to hot electrons"},
	HotElectronNumber:           {"HotElectronNumber", "1", "1", "total number of hot electrons"},
	HotElectronDensity:          {"HotElectronDensity", "m^-3", "cm^-3", "hot-electron number density at the target front surface"},
	HotElectronPenetrationDepth: {"HotElectronPenetrationDepth", "m", "um", "characteristic depth reached by hot electrons during the pulse"},
	IonEnergyCutoff:             {"IonEnergyCutoff", "J", "MeV", "maximum accelerated ion energy"},
	DebyeLength:                 {"DebyeLength", "m", "nm", "electron Debye length"},
	LandauLength:                {"LandauLength", "m", "nm", "electron Landau length (distance of closest approach)"},
	ElectronPlasmaFrequency:     {"ElectronPlasmaFrequency", "rad/s", "rad/fs", "electron plasma angular frequency"},
	IonPlasmaFrequency:          {"IonPlasmaFrequency", "rad/s", "rad/fs", "ion plasma angular frequency"},
	CoulombLogarithm:            {"CoulombLogarithm", "1", "1", "Coulomb logarithm"},
	SpitzerConductivity:         {"SpitzerConductivity", "S/m", "S/m", "Spitzer electrical conductivity"},

	CellSize:         {"CellSize", "m", "nm", "PIC spatial cell size"},
	TimeStep:         {"TimeStep", "s", "fs", "PIC timestep"},
	ParticlesPerCell: {"ParticlesPerCell", "1", "1", "PIC macro-particles per cell and species"},
}

// String returns the kind's name, e.g. "PeakIntensity".
func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindTable[k].name
}

// Unit returns the SI unit every value of this kind is stored in.
func (k Kind) Unit() string {
	if !k.Valid() {
		return ""
	}
	return kindTable[k].unit
}

// DisplayUnit returns the unit used to format values of this kind.
func (k Kind) DisplayUnit() string {
	if !k.Valid() {
		return ""
	}
	return kindTable[k].display
}

// Description returns a one-line description of the kind.
func (k Kind) Description() string {
	if !k.Valid() {
		return ""
	}
	return kindTable[k].desc
}

// Valid reports whether k is a known, non-zero kind.
func (k Kind) Valid() bool {
	return k > KindUnknown && k < numKinds
}

// Dimensionless reports whether the kind is a pure number.
func (k Kind) Dimensionless() bool {
	return k.Unit() == "1"
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("cannot marshal invalid kind %d", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Kinds returns all valid kinds in declaration order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, numKinds-1)
	for k := KindUnknown + 1; k < numKinds; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// kindsByKey indexes kinds by their normalized name.
var kindsByKey = func() map[string]Kind {
	m := make(map[string]Kind, numKinds)
	for _, k := range Kinds() {
		m[kindKey(k.String())] = k
	}
	// Short aliases commonly used in the literature
	m["a0"] = NormalizedVectorPotential
	m["z"] = ChargeState
	m["ne"] = ElectronDensity
	m["ni"] = IonDensity
	m["nc"] = CriticalDensity
	m["i0"] = PeakIntensity
	m["teh"] = HotElectronTemperature
	m["neh"] = HotElectronDensity
	m["z0"] = HotElectronPenetrationDepth
	m["te"] = ElectronTemperature
	m["ppc"] = ParticlesPerCell
	return m
}()

// kindKey normalizes "hot_electron_temperature", "Hot-Electron-Temperature" and
// "HotElectronTemperature" to the same key.
func kindKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("_", "", "-", "", " ", "").Replace(s)
}

// ParseKind resolves a kind from its name. Matching ignores case, underscores,
// dashes and spaces, and accepts a few literature aliases (a0, ne, nc, ...).
func ParseKind(s string) (Kind, error) {
	if k, ok := kindsByKey[kindKey(s)]; ok {
		return k, nil
	}
	return KindUnknown, &UnknownKindError{Name: s}
}

// MustParseKind is like ParseKind but panics on unknown names.
// Intended for package-level tables.
func MustParseKind(s string) Kind {
	k, err := ParseKind(s)
	if err != nil {
		panic(err)
	}
	return k
}

// SortKinds sorts kinds by name, in place.
func SortKinds(kinds []Kind) {
	sort.Slice(kinds, func(i, j int) bool {
		return kinds[i].String() < kinds[j].String()
	})
}
