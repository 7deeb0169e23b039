package output

import (
	"strconv"

	"github.com/leapstack-labs/lpi/internal/pic"
	"github.com/leapstack-labs/lpi/pkg/quantity"
)

// PICOutput is the JSON form of a PIC estimate.
type PICOutput struct {
	Name     string        `json:"name,omitempty"`
	Estimate *pic.Estimate `json:"estimate"`
	Stable   bool          `json:"stable"`
}

// PIC renders simulation parameters, the limits they were checked against,
// the plasma parameters behind them and any stability warnings.
func (r *Renderer) PIC(out PICOutput) error {
	if r.EffectiveMode() == ModeJSON {
		out.Stable = out.Estimate.Stable()
		return r.JSON(out)
	}
	est := out.Estimate

	title := "PIC Parameters"
	if out.Name != "" {
		title += ": " + Title(out.Name)
	}
	r.Header(1, title)

	params := est.Quantities()
	rows := QuantityRows(params)
	for i, q := range params {
		rows[i] = append(rows[i], codeUnit(est.CodeUnits, q))
	}
	rows = append(rows, []string{"Dimensions", strconv.Itoa(est.Dimensions), strconv.Itoa(est.Dimensions), "", ""})
	r.Table(append(append([]string{}, QuantityHeaders...), "Code Units"), rows)
	r.Println("")

	r.Header(2, "Limits")
	lim := est.Limits
	r.Table([]string{"Limit", "Value"}, [][]string{
		{"lambda fraction", quantity.New(quantity.CellSize, lim.WavelengthCellSize).String()},
		{"Debye fraction", quantity.New(quantity.CellSize, lim.DebyeCellSize).String()},
		{"Max cell size", quantity.New(quantity.CellSize, lim.MaxCellSize).String()},
		{"Courant", quantity.New(quantity.TimeStep, lim.CourantTimeStep).String()},
		{"2 / omega_pe", quantity.New(quantity.TimeStep, lim.PlasmaPeriodLimit).String()},
		{"Max timestep", quantity.New(quantity.TimeStep, lim.MaxTimeStep).String()},
	})
	r.Println("")

	r.Header(2, "Plasma")
	r.Table(QuantityHeaders, QuantityRows(est.Plasma))

	if len(est.Warnings) > 0 {
		r.Println("")
		r.Header(2, "Warnings")
		for _, w := range est.Warnings {
			if r.EffectiveMode() == ModeText {
				r.Printf("  %s %s\n", r.styles.Warning.Render("!"), w.Error())
			} else {
				r.Printf("- %s\n", w.Error())
			}
		}
	}
	return nil
}

func codeUnit(u pic.CodeUnits, q quantity.Quantity) string {
	v, ok := u.Normalize(q)
	if !ok {
		return ""
	}
	return strconv.FormatFloat(v, 'g', 4, 64)
}
