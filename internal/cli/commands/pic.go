package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/lpi/internal/cli/output"
	"github.com/leapstack-labs/lpi/pkg/quantity"
)

// PICOptions holds options for the pic command.
type PICOptions struct {
	CellSize         string
	TimeStep         string
	ParticlesPerCell int
	Dimensions       int
}

// NewPICCommand creates the pic command.
func NewPICCommand() *cobra.Command {
	opts := &PICOptions{}

	cmd := &cobra.Command{
		Use:   "pic [experiment.yaml]",
		Short: "Estimate particle-in-cell simulation parameters",
		Long: `PIC proposes a cell size, timestep and particle count for simulating the
experiment. The cell size resolves both the laser wavelength and the Debye
length; the timestep satisfies the Courant condition and resolves plasma
oscillations.

Explicit values beyond these limits are kept and reported as warnings.
The command fails only when the plasma parameters cannot be resolved.`,
		Example: `  # Default settings
  lpi pic

  # Check a 3D setup with a fixed cell size
  lpi pic shot.yaml --dims 3 --cell-size "20 nm"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPIC(cmd, args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.CellSize, "cell-size", "", `Cell size override, e.g. "20 nm"`)
	cmd.Flags().StringVar(&opts.TimeStep, "time-step", "", `Timestep override, e.g. "0.05 fs"`)
	cmd.Flags().IntVar(&opts.ParticlesPerCell, "ppc", 0, "Particles per cell")
	cmd.Flags().IntVar(&opts.Dimensions, "dims", 0, "Simulation dimensions (1, 2 or 3)")

	return cmd
}

func runPIC(cmd *cobra.Command, args []string, opts *PICOptions) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	var path string
	if len(args) > 0 {
		path = args[0]
	}
	exp, err := cmdCtx.Experiment(path)
	if err != nil {
		return err
	}

	sess, err := cmdCtx.Engine.Session(exp, nil)
	if err != nil {
		return err
	}
	settings, err := sess.Settings()
	if err != nil {
		return err
	}

	if opts.CellSize != "" {
		q, err := quantity.Parse(quantity.CellSize, opts.CellSize)
		if err != nil {
			return fmt.Errorf("--cell-size: %w", err)
		}
		settings = settings.WithCellSize(q.Value)
	}
	if opts.TimeStep != "" {
		q, err := quantity.Parse(quantity.TimeStep, opts.TimeStep)
		if err != nil {
			return fmt.Errorf("--time-step: %w", err)
		}
		settings = settings.WithTimeStep(q.Value)
	}
	if cmd.Flags().Changed("ppc") {
		settings.ParticlesPerCell = opts.ParticlesPerCell
	}
	if cmd.Flags().Changed("dims") {
		settings.Dimensions = opts.Dimensions
	}

	est, err := sess.PIC(settings)
	if err != nil {
		reportError(cmdCtx.Renderer, err)
		return err
	}

	cmdCtx.Logger.Debug("pic estimate ready", "experiment", exp.Name, "stable", est.Stable())
	return cmdCtx.Renderer.PIC(output.PICOutput{Name: exp.Name, Estimate: est})
}
