package output

import (
	"strconv"

	"github.com/leapstack-labs/lpi/pkg/quantity"
)

// QuantitiesOutput is the JSON form of a list of quantities.
type QuantitiesOutput struct {
	Name       string              `json:"name,omitempty"`
	Source     string              `json:"source,omitempty"`
	RunID      string              `json:"run_id,omitempty"`
	Quantities []quantity.Quantity `json:"quantities"`
	Warnings   []string            `json:"warnings,omitempty"`
	Error      string              `json:"error,omitempty"`
}

// FormatSI formats the SI value with its unit, e.g. "5.5273e+23 W/m^2".
func FormatSI(q quantity.Quantity) string {
	v := strconv.FormatFloat(q.Value, 'g', 6, 64)
	if u := q.Unit(); u != "" && u != "1" {
		return v + " " + u
	}
	return v
}

// QuantityRows returns table rows of label, display value, SI value and
// provenance.
func QuantityRows(qs []quantity.Quantity) [][]string {
	rows := make([][]string, 0, len(qs))
	for _, q := range qs {
		rows = append(rows, []string{Label(q.Kind), q.String(), FormatSI(q), q.Provenance})
	}
	return rows
}

// QuantityHeaders are the column names matching QuantityRows.
var QuantityHeaders = []string{"Quantity", "Value", "SI", "Provenance"}

// Quantities renders a titled list of quantities in the effective mode.
func (r *Renderer) Quantities(out QuantitiesOutput) error {
	if r.EffectiveMode() == ModeJSON {
		return r.JSON(out)
	}
	if out.Name != "" {
		r.Header(1, Title(out.Name))
	}
	if out.RunID != "" {
		r.Println(r.Muted("run " + out.RunID))
		r.Println("")
	}
	r.Table(QuantityHeaders, QuantityRows(out.Quantities))
	if len(out.Warnings) > 0 {
		r.Println("")
		r.Header(2, "Warnings")
		for _, w := range out.Warnings {
			if r.EffectiveMode() == ModeText {
				r.Printf("  %s %s\n", r.styles.Warning.Render("!"), w)
			} else {
				r.Printf("- %s\n", w)
			}
		}
	}
	if out.Error != "" {
		r.Println("")
		r.Header(2, "Error")
		r.Println(out.Error)
	}
	return nil
}
