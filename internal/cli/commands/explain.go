package commands

import (
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/lpi/pkg/quantity"
)

// ExplainOptions holds options for the explain command.
type ExplainOptions struct {
	Model string
	Uses  []string
}

// NewExplainCommand creates the explain command.
func NewExplainCommand() *cobra.Command {
	opts := &ExplainOptions{}

	cmd := &cobra.Command{
		Use:   "explain <kind> [experiment.yaml]",
		Short: "Show how a quantity is derived",
		Long: `Explain resolves one quantity and prints its derivation tree: every
intermediate quantity, the rule that produced it and the notes raised by
rules used outside their validity range.`,
		Example: `  # Derivation of the hot-electron temperature
  lpi explain HotElectronTemperature

  # Force Beg's scaling for the temperature itself
  lpi explain Teh shot.yaml --model Beg1997

  # Change the model of an intermediate quantity
  lpi explain AbsorptionEfficiency --use HotElectronTemperature=Haines2009`,
		Args: cobra.RangeArgs(1, 2),
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveDefault
			}
			return kindNames(), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExplain(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Model, "model", "m", "", "Model to use for the explained quantity")
	cmd.Flags().StringArrayVarP(&opts.Uses, "use", "u", nil, "Model choice for another quantity as Kind=Model (repeatable)")

	return cmd
}

func runExplain(cmd *cobra.Command, args []string, opts *ExplainOptions) error {
	kind, err := quantity.ParseKind(args[0])
	if err != nil {
		return err
	}
	overrides, err := parseModelFlags(opts.Uses)
	if err != nil {
		return err
	}

	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	var path string
	if len(args) > 1 {
		path = args[1]
	}
	exp, err := cmdCtx.Experiment(path)
	if err != nil {
		return err
	}

	sess, err := cmdCtx.Engine.Session(exp, overrides)
	if err != nil {
		return err
	}

	trace, err := sess.Explain(kind, opts.Model)
	if err != nil {
		reportError(cmdCtx.Renderer, err)
		return err
	}
	return cmdCtx.Renderer.Trace(trace)
}

func kindNames() []string {
	kinds := quantity.Kinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.String()
	}
	return names
}
