// Package core defines the shared language of the lpi estimation engine.
//
// This package contains:
//   - Model rules (ModelRule, Inputs) consumed by the registry and resolver
//   - The per-request working set of quantities (KnownSet)
//   - The error taxonomy (UnknownQuantityError, UnresolvableQuantityError, ...)
//   - Non-fatal diagnostics (Note, StabilityWarning)
//
// The Golden Rule: pkg/core imports ONLY pkg/quantity and stdlib.
// All other packages depend on core, not the reverse.
package core
