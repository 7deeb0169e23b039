package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/lpi/internal/cli/config"
	"github.com/leapstack-labs/lpi/internal/cli/output"
	intconfig "github.com/leapstack-labs/lpi/internal/config"
	"github.com/leapstack-labs/lpi/internal/engine"
	"github.com/leapstack-labs/lpi/pkg/core"
	"github.com/leapstack-labs/lpi/pkg/quantity"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Engine   *engine.Engine
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext with engine and renderer.
// Returns the context and a cleanup function that must be called (typically via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cmdCtx := NewCommandContextWithoutEngine(cmd)

	eng, err := createEngine(cmdCtx.Cfg, cmdCtx.Logger)
	if err != nil {
		return nil, nil, err
	}
	cmdCtx.Engine = eng

	cleanup := func() {
		if cmdCtx.Engine != nil {
			_ = cmdCtx.Engine.Close()
		}
	}
	return cmdCtx, cleanup, nil
}

// NewCommandContextWithoutEngine creates a CommandContext without an engine.
// Useful for commands that only read static tables.
func NewCommandContextWithoutEngine(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// Experiments loads the named experiment files, or the project's
// experiment.yaml when none are named.
func (c *CommandContext) Experiments(paths []string) ([]*intconfig.Experiment, error) {
	if len(paths) == 0 {
		paths = []string{filepath.Join(c.Cfg.ProjectRoot, intconfig.DefaultExperimentFile)}
	}
	exps := make([]*intconfig.Experiment, 0, len(paths))
	for _, path := range paths {
		exp, err := intconfig.LoadExperiment(path)
		if err != nil {
			return nil, err
		}
		exps = append(exps, exp)
	}
	return exps, nil
}

// Experiment loads a single experiment file (see Experiments).
func (c *CommandContext) Experiment(path string) (*intconfig.Experiment, error) {
	var paths []string
	if path != "" {
		paths = []string{path}
	}
	exps, err := c.Experiments(paths)
	if err != nil {
		return nil, err
	}
	return exps[0], nil
}

// Helper functions shared across commands

// contextOf returns the command's context, or a background context when
// the command runs outside Execute.
func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// getConfig returns the current configuration.
// It uses config.GetCurrentConfig() if available, otherwise falls back to environment variables.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}

	cwd, _ := os.Getwd()
	return &config.Config{
		RulesDir:     getEnvOrDefault("LPI_RULES_DIR", config.DefaultRulesDir),
		StatePath:    getEnvOrDefault("LPI_STATE_PATH", config.DefaultStateFile),
		Verbose:      os.Getenv("LPI_VERBOSE") == "true",
		OutputFormat: os.Getenv("LPI_OUTPUT"),
		ProjectRoot:  cwd,
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func createEngine(cfg *config.Config, logger *slog.Logger) (*engine.Engine, error) {
	var picCfg *intconfig.PICConfig
	if cfg.PIC != nil {
		picCfg = &intconfig.PICConfig{
			ParticlesPerCell: cfg.PIC.ParticlesPerCell,
			Dimensions:       cfg.PIC.Dimensions,
		}
	}

	return engine.New(engine.Config{
		RulesDir:    cfg.RulesDir,
		Preferences: cfg.Preferences,
		Models:      cfg.Models,
		PIC:         picCfg,
		StatePath:   cfg.StatePath,
		Logger:      logger,
	})
}

// parseKinds parses --kind values.
func parseKinds(names []string) ([]quantity.Kind, error) {
	kinds := make([]quantity.Kind, 0, len(names))
	for _, name := range names {
		k, err := quantity.ParseKind(name)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}

// parseModelFlags parses repeated --model Kind=Model values.
func parseModelFlags(values []string) (map[quantity.Kind]string, error) {
	if len(values) == 0 {
		return nil, nil
	}
	out := make(map[quantity.Kind]string, len(values))
	for _, v := range values {
		name, model, ok := strings.Cut(v, "=")
		if !ok || strings.TrimSpace(model) == "" {
			return nil, fmt.Errorf("invalid --model %q (want Kind=Model)", v)
		}
		k, err := quantity.ParseKind(strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}
		out[k] = strings.TrimSpace(model)
	}
	return out, nil
}

// reportError prints what the user can do about an engine error: the
// inputs each candidate rule was missing, or the available models.
func reportError(r *output.Renderer, err error) {
	var unresolvable *core.UnresolvableQuantityError
	var unknownModel *core.UnknownModelError
	var unknownKind *core.UnknownQuantityError

	switch {
	case errors.As(err, &unresolvable):
		r.Error(fmt.Sprintf("cannot resolve %s", unresolvable.Kind))
		for _, a := range unresolvable.Attempts {
			r.Warning(fmt.Sprintf("%s needs %s", a.Rule, joinKinds(a.Missing)))
		}
		if missing := unresolvable.Missing(); len(missing) > 0 {
			r.Warning(fmt.Sprintf("supply one of: %s", joinKinds(missing)))
		}
	case errors.As(err, &unknownModel):
		r.Error(fmt.Sprintf("no model %q for %s", unknownModel.Model, unknownModel.Kind))
		r.Warning("available: " + strings.Join(unknownModel.Available, ", "))
	case errors.As(err, &unknownKind):
		r.Error(fmt.Sprintf("%s must be supplied: no rule derives it", unknownKind.Kind))
	}
}

func joinKinds(kinds []quantity.Kind) string {
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.String()
	}
	return strings.Join(names, ", ")
}
