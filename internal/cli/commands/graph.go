package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/lpi/internal/cli/output"
	"github.com/leapstack-labs/lpi/internal/dag"
	"github.com/leapstack-labs/lpi/pkg/quantity"
)

// NewGraphCommand creates the graph command.
func NewGraphCommand() *cobra.Command {
	var (
		kind       string
		downstream bool
	)

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Show the quantity dependency graph",
		Long: `Display which quantities every rule derives from which.

Quantities are grouped by derivation depth: level 0 holds the quantities
no rule produces, which must be supplied by the experiment.

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format (agent-friendly)`,
		Example: `  # Show the whole graph
  lpi graph

  # Only what the hot-electron temperature can depend on
  lpi graph --kind HotElectronTemperature

  # Everything the peak intensity feeds into
  lpi graph --kind PeakIntensity --downstream

  # Output as JSON
  lpi graph --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGraph(cmd, kind, downstream)
		},
	}

	cmd.Flags().StringVarP(&kind, "kind", "k", "", "Restrict to the quantities this one may depend on")
	cmd.Flags().BoolVar(&downstream, "downstream", false, "With --kind, show the quantities derived from it instead")

	return cmd
}

func runGraph(cmd *cobra.Command, kind string, downstream bool) error {
	if downstream && kind == "" {
		return fmt.Errorf("--downstream requires --kind")
	}

	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	graph := cmdCtx.Engine.Graph()
	if kind != "" {
		k, err := quantity.ParseKind(kind)
		if err != nil {
			return err
		}
		if _, ok := graph.Node(k); !ok {
			return fmt.Errorf("no rule uses or produces %s", k)
		}
		if downstream {
			graph = graph.Subgraph(graph.Downstream([]quantity.Kind{k}))
		} else {
			graph = graph.Subgraph(append(graph.Upstream(k), k))
		}
	}

	levels, err := graph.Levels()
	if err != nil {
		return fmt.Errorf("failed to get graph levels: %w", err)
	}

	r := cmdCtx.Renderer
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return graphJSON(r, graph, levels)
	case output.ModeMarkdown:
		return graphMarkdown(r, graph, levels)
	default:
		return graphText(r, graph, levels)
	}
}

// graphText outputs the graph in styled text format.
func graphText(r *output.Renderer, graph *dag.Graph, levels [][]quantity.Kind) error {
	styles := r.Styles()

	r.Header(1, "Dependency Graph")

	for i, level := range levels {
		r.Println(styles.Header2.Render(fmt.Sprintf("Level %d:", i)))
		for _, k := range level {
			deps := graph.Parents(k)
			children := graph.Children(k)

			r.Printf("  %s\n", styles.Kind.Render(k.String()))
			if len(deps) > 0 {
				r.Printf("    %s %s\n", styles.Muted.Render("depends on:"), joinKinds(deps))
			}
			if len(children) > 0 {
				r.Printf("    %s %s\n", styles.Muted.Render("used by:"), joinKinds(children))
			}
		}
		r.Println("")
	}

	r.Println(styles.Muted.Render(fmt.Sprintf("Total: %d quantities, %d dependencies", graph.NodeCount(), graph.EdgeCount())))
	r.Println(styles.Muted.Render(fmt.Sprintf("Inputs: %d, final quantities: %d", len(graph.Roots()), len(graph.Leaves()))))

	return nil
}

// graphMarkdown outputs the graph in markdown format.
func graphMarkdown(r *output.Renderer, graph *dag.Graph, levels [][]quantity.Kind) error {
	r.Println(output.FormatHeader(1, "Dependency Graph"))
	r.Println("")

	for i, level := range levels {
		levelName := fmt.Sprintf("Level %d", i)
		if i == 0 {
			levelName = "Level 0 (Inputs)"
		}
		r.Println(output.FormatHeader(2, levelName))

		for _, k := range level {
			deps := graph.Parents(k)
			children := graph.Children(k)

			r.Printf("- %s\n", k)
			if len(deps) > 0 {
				r.Printf("  - depends on: %s\n", joinKinds(deps))
			}
			if len(children) > 0 {
				r.Printf("  - used by: %s\n", joinKinds(children))
			}
		}
		r.Println("")
	}

	r.Println(output.FormatHeader(2, "Summary"))
	r.Println(output.FormatKeyValue("Total Quantities", fmt.Sprintf("%d", graph.NodeCount())))
	r.Println(output.FormatKeyValue("Total Dependencies", fmt.Sprintf("%d", graph.EdgeCount())))
	r.Println(output.FormatKeyValue("Required Inputs", joinKinds(graph.Roots())))
	r.Println(output.FormatKeyValue("Final Quantities", joinKinds(graph.Leaves())))

	return nil
}

// graphJSON outputs the graph in JSON format.
func graphJSON(r *output.Renderer, graph *dag.Graph, levels [][]quantity.Kind) error {
	out := output.GraphOutput{
		Levels:     make([]output.GraphLevel, 0, len(levels)),
		TotalKinds: graph.NodeCount(),
		TotalEdges: graph.EdgeCount(),
		Inputs:     kindStrings(graph.Roots()),
		Outputs:    kindStrings(graph.Leaves()),
	}

	for i, level := range levels {
		gl := output.GraphLevel{
			Level: i,
			Kinds: make([]output.GraphNode, 0, len(level)),
		}
		for _, k := range level {
			node := output.GraphNode{
				Kind:      k.String(),
				DependsOn: kindStrings(graph.Parents(k)),
				UsedBy:    kindStrings(graph.Children(k)),
			}
			if n, ok := graph.Node(k); ok {
				node.Rules = n.Rules
			}
			gl.Kinds = append(gl.Kinds, node)
		}
		out.Levels = append(out.Levels, gl)
	}

	return r.JSON(out)
}

func kindStrings(kinds []quantity.Kind) []string {
	if len(kinds) == 0 {
		return nil
	}
	out := make([]string, len(kinds))
	for i, k := range kinds {
		out[i] = k.String()
	}
	return out
}
