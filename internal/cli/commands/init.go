package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/lpi/internal/cli/config"
	"github.com/leapstack-labs/lpi/internal/cli/output"
)

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool
	var example bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new lpi project",
		Long: `Initialize a new lpi project with a configuration file and a first
experiment.

This creates:
  - lpi.yaml configuration file
  - experiment.yaml describing one laser shot
  - .gitignore excluding the run history

Use --example to also create a custom Starlark rule in rules/, a second
experiment in shots/ and a configuration showing model preferences.`,
		Example: `  # Initialize in current directory
  lpi init

  # Initialize with a full working example
  lpi init --example

  # Initialize in a new directory
  lpi init my-campaign --example

  # Force overwrite existing config
  lpi init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			cfg := getConfig()
			mode := output.Mode(cfg.OutputFormat)
			r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

			if example {
				return runInitExample(r, dir, force)
			}
			return runInit(r, dir, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing files")
	cmd.Flags().BoolVar(&example, "example", false, "Create an example project with custom rules and several experiments")

	return cmd
}

func prepareInitDir(dir string, force bool) error {
	if dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	configPath := filepath.Join(dir, config.ConfigFileName)
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("%s already exists. Use --force to overwrite", config.ConfigFileName)
	}
	return nil
}

func runInit(r *output.Renderer, dir string, force bool) error {
	if err := prepareInitDir(dir, force); err != nil {
		return err
	}

	if err := copyTemplate("minimal", dir, force); err != nil {
		return fmt.Errorf("failed to initialize project: %w", err)
	}

	files, _ := listTemplateFiles("minimal")
	for _, f := range files {
		r.StatusLine(f, "success", "")
	}

	r.Println("")
	r.Success("lpi project initialized!")
	r.Println("")
	r.Println("Next steps:")
	r.Println("  1. Describe your shot in experiment.yaml")
	r.Println("  2. Run 'lpi estimate' to derive the plasma parameters")
	r.Println("  3. Run 'lpi explain HotElectronTemperature' to see how")
	r.Println("  4. Run 'lpi pic' to size a simulation")

	return nil
}

func runInitExample(r *output.Renderer, dir string, force bool) error {
	if err := prepareInitDir(dir, force); err != nil {
		return err
	}

	if err := copyTemplate("example", dir, force); err != nil {
		return fmt.Errorf("failed to initialize project: %w", err)
	}

	files, _ := listTemplateFiles("example")
	groups := groupTemplateFiles(files)

	r.Header(2, "Configuration")
	for _, f := range groups["config"] {
		r.StatusLine(f, "success", "")
	}

	r.Println("")
	r.Header(2, "Experiments")
	for _, f := range groups["experiments"] {
		r.StatusLine(f, "success", "")
	}

	r.Println("")
	r.Header(2, "Rules")
	for _, f := range groups["rules"] {
		r.StatusLine(f, "success", "")
	}

	r.Println("")
	r.Success("lpi project initialized with example experiments!")
	r.Println("")
	r.Println("Next steps:")
	r.Println("  lpi estimate experiment.yaml shots/*.yaml   Evaluate both shots")
	r.Println("  lpi models --kind HotElectronTemperature    See the candidate scalings")
	r.Println("  lpi graph                                   Visualize the dependency graph")
	r.Println("  lpi shell                                   Explore interactively")

	return nil
}
