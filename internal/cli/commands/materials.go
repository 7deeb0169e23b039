package commands

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/lpi/internal/cli/output"
	"github.com/leapstack-labs/lpi/pkg/quantity"
	"github.com/leapstack-labs/lpi/pkg/target"
)

// MaterialInfo is the JSON form of a target material.
type MaterialInfo struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Density     float64 `json:"density"`     // kg/m^3
	AtomicMass  float64 `json:"atomic_mass"` // amu
	Z           float64 `json:"z"`
}

// NewMaterialsCommand creates the materials command.
func NewMaterialsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "materials [name]",
		Short: "List the built-in target materials",
		Long: `Materials lists the target database used by the 'target.material' field
of experiment files. Density and charge state can be overridden per
experiment.`,
		Example: `  lpi materials
  lpi materials Al`,
		Args: cobra.MaximumNArgs(1),
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			return target.Names(), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMaterials(cmd, args)
		},
	}
}

func runMaterials(cmd *cobra.Command, args []string) error {
	r := NewCommandContextWithoutEngine(cmd).Renderer

	materials := target.All()
	if len(args) == 1 {
		m, err := target.Lookup(args[0])
		if err != nil {
			return err
		}
		materials = []target.Material{m}
	}

	if r.EffectiveMode() == output.ModeJSON {
		infos := make([]MaterialInfo, len(materials))
		for i, m := range materials {
			infos[i] = MaterialInfo{
				Name:        m.Name,
				Description: m.Description,
				Density:     m.Density,
				AtomicMass:  m.AtomicMass,
				Z:           m.Z,
			}
		}
		return r.JSON(infos)
	}

	r.Header(1, "Materials")
	rows := make([][]string, 0, len(materials))
	for _, m := range materials {
		rows = append(rows, []string{
			m.Name,
			quantity.New(quantity.MassDensity, m.Density).String(),
			strconv.FormatFloat(m.AtomicMass, 'g', 5, 64),
			strconv.FormatFloat(m.Z, 'g', -1, 64),
			m.Description,
		})
	}
	r.Table([]string{"Name", "Density", "Mass (amu)", "Z", "Description"}, rows)
	return nil
}
