package core

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/lpi/pkg/quantity"
)

// =============================================================================
// Severity
// =============================================================================

// Severity indicates the importance of a non-fatal diagnostic.
type Severity int

// Severity levels for diagnostics.
const (
	// SeverityWarning indicates a result that should be reviewed.
	SeverityWarning Severity = iota
	// SeverityInfo indicates informational feedback.
	SeverityInfo
)

// String returns the string representation of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	default:
		return "unknown"
	}
}

// ParseSeverity converts a string to a Severity value.
// Returns the severity and true if valid, or SeverityWarning and false if invalid.
func ParseSeverity(s string) (Severity, bool) {
	switch strings.ToLower(s) {
	case "warning":
		return SeverityWarning, true
	case "info":
		return SeverityInfo, true
	default:
		return SeverityWarning, false
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// =============================================================================
// Note
// =============================================================================

// Note is a validity remark attached to a derivation, e.g. a formula used
// outside the intensity range it was fitted on.
type Note struct {
	Rule     string        `json:"rule"`
	Kind     quantity.Kind `json:"kind"`
	Severity Severity      `json:"severity"`
	Message  string        `json:"message"`
}

func (n Note) String() string {
	return fmt.Sprintf("%s (%s): %s", n.Rule, n.Severity, n.Message)
}

// =============================================================================
// StabilityWarning
// =============================================================================

// StabilityWarning flags a simulation parameter on the wrong side of a
// numerical stability or accuracy limit. It is non-fatal: estimates are
// returned with their warnings attached.
type StabilityWarning struct {
	Parameter quantity.Kind `json:"parameter"`
	Value     float64       `json:"value"`
	Limit     float64       `json:"limit"`
	Reason    string        `json:"reason"`
}

func (w StabilityWarning) Error() string {
	v := quantity.New(w.Parameter, w.Value)
	l := quantity.New(w.Parameter, w.Limit)
	return fmt.Sprintf("%s = %s (limit %s): %s", w.Parameter, v, l, w.Reason)
}
