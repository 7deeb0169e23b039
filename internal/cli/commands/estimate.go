package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/lpi/internal/cli/output"
	"github.com/leapstack-labs/lpi/internal/engine"
)

// EstimateOptions holds options for the estimate command.
type EstimateOptions struct {
	Kinds  []string
	Models []string
	Record bool
	Watch  bool
}

// NewEstimateCommand creates the estimate command.
func NewEstimateCommand() *cobra.Command {
	opts := &EstimateOptions{}

	cmd := &cobra.Command{
		Use:   "estimate [experiment.yaml...]",
		Short: "Estimate the parameters of one or more experiments",
		Long: `Estimate derives the requested quantities of each experiment file.

Without arguments the project's experiment.yaml is used. Several files are
evaluated concurrently, each against its own set of known quantities.
The quantities listed under 'estimate' in the file are reported unless
--kind is given.

Output adapts to environment:
  - Terminal: Styled tables
  - Piped/Scripted: Markdown format (agent-friendly)`,
		Example: `  # Estimate the default quantities of experiment.yaml
  lpi estimate

  # Only hot-electron temperature, using Beg's scaling
  lpi estimate shot.yaml --kind HotElectronTemperature --model HotElectronTemperature=Beg1997

  # Evaluate a campaign and record it in the run history
  lpi estimate shots/*.yaml --record

  # Re-evaluate whenever the file or a rule changes
  lpi estimate shot.yaml --watch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEstimate(cmd, args, opts)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.Kinds, "kind", "k", nil, "Quantities to estimate (repeatable)")
	cmd.Flags().StringArrayVarP(&opts.Models, "model", "m", nil, "Model choice as Kind=Model (repeatable)")
	cmd.Flags().BoolVar(&opts.Record, "record", false, "Record the run in the history database")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Re-run when experiment or rule files change")

	return cmd
}

func runEstimate(cmd *cobra.Command, args []string, opts *EstimateOptions) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	kinds, err := parseKinds(opts.Kinds)
	if err != nil {
		return err
	}
	models, err := parseModelFlags(opts.Models)
	if err != nil {
		return err
	}
	runOpts := engine.RunOptions{Kinds: kinds, Models: models, Record: opts.Record}

	ctx := contextOf(cmd)
	if opts.Watch {
		return watchEstimate(ctx, cmdCtx, args, runOpts)
	}
	return estimateOnce(ctx, cmdCtx, args, runOpts)
}

func estimateOnce(ctx context.Context, c *CommandContext, paths []string, opts engine.RunOptions) error {
	exps, err := c.Experiments(paths)
	if err != nil {
		return err
	}

	results, runErr := c.Engine.RunAll(ctx, exps, opts)

	outputs := make([]output.QuantitiesOutput, len(results))
	for i, res := range results {
		outputs[i] = output.QuantitiesOutput{
			Name:       res.Name,
			Source:     res.Source,
			RunID:      res.RunID,
			Quantities: res.Quantities,
			Warnings:   res.Warnings(),
		}
		if res.Err != nil {
			outputs[i].Error = res.Err.Error()
		}
	}

	r := c.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		var v any = outputs
		if len(outputs) == 1 {
			v = outputs[0]
		}
		if err := r.JSON(v); err != nil {
			return err
		}
	} else {
		for i, out := range outputs {
			if i > 0 {
				r.Println("")
			}
			if err := r.Quantities(out); err != nil {
				return err
			}
		}
	}

	for _, res := range results {
		if res.Err != nil {
			reportError(r, res.Err)
		}
	}
	return runErr
}

// watchEstimate re-runs the estimate whenever an experiment file or a rule
// file changes, until ctx is cancelled.
func watchEstimate(ctx context.Context, c *CommandContext, paths []string, opts engine.RunOptions) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	for _, dir := range watchDirs(c, paths) {
		if err := watcher.Add(dir); err != nil {
			c.Logger.Debug("not watching directory", "dir", dir, "error", err)
		}
	}

	if err := estimateOnce(ctx, c, paths, opts); err != nil {
		c.Renderer.Error(err.Error())
	}
	c.Renderer.Println(c.Renderer.Muted("Watching for changes (Ctrl+C to stop)"))

	var debounce <-chan time.Time
	reloadRules := false
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			switch filepath.Ext(event.Name) {
			case ".star":
				reloadRules = true
			case ".yaml", ".yml":
			default:
				continue
			}
			debounce = time.After(100 * time.Millisecond)

		case <-debounce:
			debounce = nil
			if reloadRules {
				reloadRules = false
				eng, err := createEngine(c.Cfg, c.Logger)
				if err != nil {
					c.Renderer.Error(err.Error())
					continue
				}
				_ = c.Engine.Close()
				c.Engine = eng
			}
			c.Renderer.Println("")
			if err := estimateOnce(ctx, c, paths, opts); err != nil {
				c.Renderer.Error(err.Error())
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			c.Logger.Warn("watcher error", "error", err)
		}
	}
}

// watchDirs returns the directories holding the experiment files and the
// rule files, without duplicates.
func watchDirs(c *CommandContext, paths []string) []string {
	if len(paths) == 0 {
		paths = []string{filepath.Join(c.Cfg.ProjectRoot, "experiment.yaml")}
	}
	seen := make(map[string]bool)
	var dirs []string
	add := func(dir string) {
		if abs, err := filepath.Abs(dir); err == nil {
			dir = abs
		}
		if dir != "" && !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}
	for _, p := range paths {
		add(filepath.Dir(p))
		add(filepath.Join(filepath.Dir(p), "rules"))
	}
	if c.Cfg.RulesDir != "" {
		add(c.Cfg.RulesDir)
	}
	return dirs
}
