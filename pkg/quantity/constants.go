package quantity

// Physical constants in SI units (CODATA 2018).
const (
	SpeedOfLight       = 299792458.0        // [m/s]
	ElementaryCharge   = 1.602176634e-19    // [C]
	ElectronMass       = 9.1093837015e-31   // [kg]
	VacuumPermittivity = 8.8541878128e-12   // [F/m]
	VacuumPermeability = 1.25663706212e-6   // [N/A^2]
	PlanckConstant     = 6.62607015e-34     // [J s]
	AtomicMassUnit     = 1.66053906660e-27  // [kg]
	BoltzmannConstant  = 1.380649e-23       // [J/K]
	ElectronVolt       = ElementaryCharge   // [J]
	KiloElectronVolt   = 1e3 * ElectronVolt // [J]
	MegaElectronVolt   = 1e6 * ElectronVolt // [J]

	// ElectronRestEnergy is m_e c^2.
	ElectronRestEnergy = ElectronMass * SpeedOfLight * SpeedOfLight // [J]
)
