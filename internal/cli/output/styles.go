package output

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles holds the lipgloss styles used in text mode.
type Styles struct {
	Header1    lipgloss.Style
	Header2    lipgloss.Style
	Kind       lipgloss.Style
	Value      lipgloss.Style
	Provenance lipgloss.Style
	Muted      lipgloss.Style
	Success    lipgloss.Style
	Warning    lipgloss.Style
	Error      lipgloss.Style
}

// newStyles builds styles bound to a lipgloss renderer, so color output
// follows that renderer's profile.
func newStyles(r *lipgloss.Renderer) *Styles {
	return &Styles{
		Header1:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Underline(true),
		Header2:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("14")),
		Kind:       r.NewStyle().Foreground(lipgloss.Color("15")).Bold(true),
		Value:      r.NewStyle().Foreground(lipgloss.Color("10")),
		Provenance: r.NewStyle().Foreground(lipgloss.Color("13")),
		Muted:      r.NewStyle().Foreground(lipgloss.Color("8")),
		Success:    r.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
		Warning:    r.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
		Error:      r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
	}
}
