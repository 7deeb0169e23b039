// Package output renders command results as styled text, markdown or JSON.
package output

import "strings"

// OutputMode selects how results are rendered.
type OutputMode string //nolint:revive // output.OutputMode reads better at call sites than output.Mode

// Output modes.
const (
	ModeAuto     OutputMode = "auto" // text on a terminal, markdown otherwise
	ModeText     OutputMode = "text"
	ModeMarkdown OutputMode = "markdown"
	ModeJSON     OutputMode = "json"
)

// Mode parses a mode name. Unknown or empty names mean ModeAuto.
func Mode(s string) OutputMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text", "txt":
		return ModeText
	case "markdown", "md":
		return ModeMarkdown
	case "json":
		return ModeJSON
	default:
		return ModeAuto
	}
}

// Modes returns the accepted mode names, for flag completion.
func Modes() []string {
	return []string{string(ModeAuto), string(ModeText), string(ModeMarkdown), string(ModeJSON)}
}
