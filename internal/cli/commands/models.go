package commands

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/lpi/internal/cli/output"
	"github.com/leapstack-labs/lpi/pkg/core"
	"github.com/leapstack-labs/lpi/pkg/quantity"
)

// ModelsOptions holds options for the models command.
type ModelsOptions struct {
	Kind  string
	Model string
}

// RuleInfo is the JSON form of a registered rule.
type RuleInfo struct {
	Name      string   `json:"name"`
	Model     string   `json:"model"`
	Output    string   `json:"output"`
	Inputs    []string `json:"inputs"`
	Priority  int      `json:"priority"`
	Reference string   `json:"reference,omitempty"`
	Validity  string   `json:"validity,omitempty"`
	Source    string   `json:"source"` // builtin or custom
}

// NewModelsCommand creates the models command.
func NewModelsCommand() *cobra.Command {
	opts := &ModelsOptions{}

	cmd := &cobra.Command{
		Use:   "models",
		Short: "List the registered model rules",
		Long: `Models lists every rule in the registry, built-in and loaded from the
rules directory, grouped by output quantity in the order the resolver
tries them. Preferences from lpi.yaml are applied.`,
		Example: `  # All rules
  lpi models

  # Candidates for the hot-electron temperature
  lpi models --kind HotElectronTemperature

  # Everything published by one model
  lpi models --model Wilks1992 -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runModels(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Kind, "kind", "k", "", "Only rules producing this quantity")
	cmd.Flags().StringVarP(&opts.Model, "model", "m", "", "Only rules of this model")

	return cmd
}

func runModels(cmd *cobra.Command, opts *ModelsOptions) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	reg := cmdCtx.Engine.Registry()

	var kind quantity.Kind
	if opts.Kind != "" {
		if kind, err = quantity.ParseKind(opts.Kind); err != nil {
			return err
		}
	}

	var rules []core.ModelRule
	if opts.Model != "" {
		rules = reg.ByModel(opts.Model)
		if len(rules) == 0 {
			return fmt.Errorf("no rules for model %q (registered: %s)", opts.Model, strings.Join(reg.Models(), ", "))
		}
		if kind != quantity.KindUnknown {
			rules = slices.DeleteFunc(rules, func(rule core.ModelRule) bool { return rule.Output != kind })
		}
	} else {
		kinds := reg.Kinds()
		if kind != quantity.KindUnknown {
			kinds = []quantity.Kind{kind}
		}
		for _, k := range kinds {
			rules = append(rules, reg.RulesFor(k)...)
		}
	}

	custom := make(map[string]bool)
	for _, rule := range cmdCtx.Engine.CustomRules() {
		custom[rule.Name] = true
	}

	r := cmdCtx.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		infos := make([]RuleInfo, len(rules))
		for i, rule := range rules {
			infos[i] = ruleInfo(rule, custom[rule.Name])
		}
		return r.JSON(infos)
	}

	r.Header(1, "Models")
	rows := make([][]string, 0, len(rules))
	for _, rule := range rules {
		rows = append(rows, []string{
			rule.Output.String(),
			rule.Model,
			strconv.Itoa(rule.Priority),
			joinKinds(rule.Inputs),
			rule.Validity,
			ruleSource(custom[rule.Name]),
		})
	}
	r.Table([]string{"Output", "Model", "Priority", "Inputs", "Validity", "Source"}, rows)
	r.Println("")
	r.Println(r.Muted(fmt.Sprintf("%d rules, %d models", len(rules), countModels(rules))))
	return nil
}

func ruleInfo(rule core.ModelRule, custom bool) RuleInfo {
	inputs := make([]string, len(rule.Inputs))
	for i, k := range rule.Inputs {
		inputs[i] = k.String()
	}
	return RuleInfo{
		Name:      rule.Name,
		Model:     rule.Model,
		Output:    rule.Output.String(),
		Inputs:    inputs,
		Priority:  rule.Priority,
		Reference: rule.Reference,
		Validity:  rule.Validity,
		Source:    ruleSource(custom),
	}
}

func ruleSource(custom bool) string {
	if custom {
		return "custom"
	}
	return "builtin"
}

func countModels(rules []core.ModelRule) int {
	seen := make(map[string]bool)
	for _, rule := range rules {
		seen[rule.Model] = true
	}
	return len(seen)
}
