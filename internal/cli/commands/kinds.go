package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/lpi/internal/cli/output"
	"github.com/leapstack-labs/lpi/pkg/quantity"
)

// KindInfo is the JSON form of a quantity kind.
type KindInfo struct {
	Name        string   `json:"name"`
	Unit        string   `json:"unit"`
	DisplayUnit string   `json:"display_unit"`
	Units       []string `json:"units,omitempty"`
	Description string   `json:"description"`
}

// NewKindsCommand creates the kinds command.
func NewKindsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "List the physical quantities lpi knows about",
		Long: `Kinds lists every quantity with its SI unit, the unit values are
displayed in and the units accepted when parsing experiment files.`,
		Example: `  lpi kinds
  lpi kinds -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runKinds(cmd)
		},
	}
}

func runKinds(cmd *cobra.Command) error {
	r := NewCommandContextWithoutEngine(cmd).Renderer

	kinds := quantity.Kinds()
	if r.EffectiveMode() == output.ModeJSON {
		infos := make([]KindInfo, len(kinds))
		for i, k := range kinds {
			infos[i] = KindInfo{
				Name:        k.String(),
				Unit:        k.Unit(),
				DisplayUnit: k.DisplayUnit(),
				Units:       quantity.Units(k),
				Description: k.Description(),
			}
		}
		return r.JSON(infos)
	}

	r.Header(1, "Quantities")
	rows := make([][]string, 0, len(kinds))
	for _, k := range kinds {
		rows = append(rows, []string{k.String(), k.Unit(), strings.Join(quantity.Units(k), " "), k.Description()})
	}
	r.Table([]string{"Kind", "SI", "Units", "Description"}, rows)
	return nil
}
