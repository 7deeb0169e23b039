// Package models contains the built-in catalog of published formulas.
//
// Rules are registered via init() functions in their respective files and
// collected by Catalog. Each rule is named "<Model>.<Output>".
//
// Model tags:
//   - Common: textbook definitions (power, intensity, densities, frequencies, lengths)
//   - GaussianPulse, GaussianFWHM, GaussianBeam: envelope integrals of Gaussian profiles
//   - Wilks1992, Haines2009, Beg1997: hot-electron temperature scalings
//   - Key1998: absorption efficiency into hot electrons
//   - Beg1997: ion energy cutoff
//   - HotElectronDominated: screening temperature taken from the hot electrons
//   - Spitzer1962: plasma conductivity
//
// Competing rules for one kind are ordered by Priority: lower is tried first.
package models
