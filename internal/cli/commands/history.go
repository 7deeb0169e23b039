package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/lpi/internal/cli/output"
	"github.com/leapstack-labs/lpi/internal/state"
)

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show recorded estimate runs",
		Long: `History lists the runs recorded with 'lpi estimate --record', newest
first. Given a run id it shows the quantities and warnings of that run.`,
		Example: `  # Last 20 runs
  lpi history

  # One run in full
  lpi history 3f2c9a1e-...

  # Everything, as JSON
  lpi history --limit 0 -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return runHistoryShow(cmd, args[0])
			}
			return runHistoryList(cmd, limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show (0 for all)")

	return cmd
}

func runHistoryList(cmd *cobra.Command, limit int) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	runs, err := cmdCtx.Engine.Runs(contextOf(cmd), limit)
	if err != nil {
		return err
	}

	r := cmdCtx.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		if runs == nil {
			runs = []*state.Run{}
		}
		return r.JSON(runs)
	}

	r.Header(1, "Run History")
	if len(runs) == 0 {
		r.Println(r.Muted("No runs recorded yet. Use 'lpi estimate --record'."))
		return nil
	}
	for _, run := range runs {
		detail := fmt.Sprintf("%s %s", run.ID, run.StartedAt.Local().Format(time.DateTime))
		if d := run.Duration(); d > 0 {
			detail += " " + d.Round(time.Millisecond).String()
		}
		if run.Error != "" {
			detail += " " + run.Error
		}
		r.StatusLine(run.Name, string(run.Status), detail)
	}
	return nil
}

func runHistoryShow(cmd *cobra.Command, id string) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	store, err := cmdCtx.Engine.History()
	if err != nil {
		return err
	}
	run, err := store.GetRun(contextOf(cmd), id)
	if err != nil {
		return err
	}

	r := cmdCtx.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(run)
	}
	return r.Quantities(output.QuantitiesOutput{
		Name:       run.Name,
		Source:     run.Source,
		RunID:      run.ID,
		Quantities: run.Quantities,
		Warnings:   run.Warnings,
		Error:      run.Error,
	})
}
