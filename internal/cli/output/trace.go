package output

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/lpi/internal/resolver"
)

// Trace renders a derivation tree: an indented tree in text mode, a nested
// list in markdown and the step tree in JSON.
func (r *Renderer) Trace(t *resolver.Trace) error {
	if r.EffectiveMode() == ModeJSON {
		return r.JSON(t)
	}

	r.Header(1, "Derivation of "+Label(t.Root.Kind))

	text := r.EffectiveMode() == ModeText
	t.Walk(func(s *resolver.Step, depth int) {
		origin := "known"
		if s.Derived() {
			origin = s.Rule
		}
		if text {
			r.Printf("%s%s = %s  %s\n",
				strings.Repeat("  ", depth),
				r.styles.Kind.Render(s.Kind.String()),
				r.styles.Value.Render(s.Quantity.String()),
				r.styles.Provenance.Render("["+origin+"]"))
		} else {
			r.Printf("%s- **%s** = %s (%s)\n", strings.Repeat("  ", depth), s.Kind, s.Quantity, origin)
		}
	})

	if len(t.Notes) > 0 {
		r.Println("")
		r.Header(2, "Notes")
		for _, n := range t.Notes {
			msg := fmt.Sprintf("%s: %s", n.Rule, n.Message)
			if text {
				r.Printf("  %s %s\n", r.styles.Warning.Render("!"), msg)
			} else {
				r.Printf("- %s\n", msg)
			}
		}
	}
	return nil
}
