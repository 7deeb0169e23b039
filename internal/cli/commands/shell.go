package commands

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/lpi/internal/cli/output"
	"github.com/leapstack-labs/lpi/internal/engine"
	"github.com/leapstack-labs/lpi/internal/resolver"
	lpistar "github.com/leapstack-labs/lpi/internal/starlark"
	"github.com/leapstack-labs/lpi/pkg/core"
	"github.com/leapstack-labs/lpi/pkg/quantity"
)

const shellPrompt = "lpi> "

// NewShellCommand creates the shell command.
func NewShellCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "shell [experiment.yaml]",
		Short: "Explore an experiment interactively",
		Long: `Shell starts a REPL over one experiment. Quantities can be set, derived,
explained and combined in Starlark expressions without editing the file.

Type .help inside the shell for the list of commands.`,
		Example: `  lpi shell
  lpi shell shot.yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: runShell,
	}
}

func runShell(cmd *cobra.Command, args []string) error {
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
	sh := newShell(sess, cmdCtx.Renderer)

	var historyFile string
	if sp := cmdCtx.Cfg.StatePath; sp != "" && sp != ":memory:" {
		historyFile = filepath.Join(filepath.Dir(sp), "shell_history")
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          shellPrompt,
		HistoryFile:     historyFile,
		AutoComplete:    newShellCompleter(),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
		Stdin:           io.NopCloser(cmd.InOrStdin()),
		Stdout:          cmd.OutOrStdout(),
		Stderr:          cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize shell: %w", err)
	}
	defer func() { _ = rl.Close() }()

	r := cmdCtx.Renderer
	r.Printf("lpi shell (experiment: %s)\n", exp.Name)
	r.Println("Type .help for commands, .quit to exit")
	r.Println("")

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		quit, err := sh.exec(line)
		if err != nil {
			r.Error(err.Error())
			reportError(r, err)
		}
		if quit {
			return nil
		}
	}
}

// shell holds the mutable state of an interactive session: a working copy
// of the known set and the model choices made with "use".
type shell struct {
	sess    *engine.Session
	r       *output.Renderer
	known   *core.KnownSet
	choices map[quantity.Kind]string
	eval    *lpistar.Evaluator
}

func newShell(sess *engine.Session, r *output.Renderer) *shell {
	sh := &shell{sess: sess, r: r, eval: lpistar.NewEvaluator()}
	sh.reset()
	return sh
}

func (sh *shell) reset() {
	sh.known = sh.sess.Known()
	sh.choices = make(map[quantity.Kind]string, len(sh.sess.Choices))
	for k, v := range sh.sess.Choices {
		sh.choices[k] = v
	}
}

// exec runs one input line. quit reports whether the session should end.
func (sh *shell) exec(line string) (quit bool, err error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return false, nil
	}

	command, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)
	args := strings.Fields(rest)

	switch strings.ToLower(command) {
	case ".quit", ".exit":
		return true, nil
	case ".help":
		printShellHelp(sh.r.Writer())
	case ".known":
		sh.r.Table(output.QuantityHeaders, output.QuantityRows(sh.known.All()))
	case ".models":
		return false, sh.models(args)
	case ".reset":
		sh.reset()
		sh.r.Success("known quantities and model choices reset")
	case "set":
		return false, sh.set(rest)
	case "unset":
		return false, sh.unset(args)
	case "get":
		return false, sh.get(args)
	case "explain":
		return false, sh.explain(args)
	case "use":
		return false, sh.use(args)
	case "eval":
		return false, sh.evaluate(rest)
	default:
		return false, fmt.Errorf("unknown command %q (type .help for commands)", command)
	}
	return false, nil
}

func (sh *shell) options() []resolver.Option {
	return []resolver.Option{resolver.WithChoices(sh.choices)}
}

// set parses "Kind value [unit]".
func (sh *shell) set(rest string) error {
	name, value, ok := strings.Cut(rest, " ")
	if !ok || strings.TrimSpace(value) == "" {
		return errors.New("usage: set <kind> <value> [unit]")
	}
	kind, err := quantity.ParseKind(name)
	if err != nil {
		return err
	}
	q, err := quantity.Parse(kind, strings.TrimSpace(value))
	if err != nil {
		return err
	}
	sh.known.Set(q)
	sh.r.Printf("%s = %s\n", kind, q)
	return nil
}

func (sh *shell) unset(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: unset <kind>")
	}
	kind, err := quantity.ParseKind(args[0])
	if err != nil {
		return err
	}
	sh.known.Delete(kind)
	return nil
}

// get derives a quantity on a copy of the known set, so later changes to
// inputs are reflected by the next get.
func (sh *shell) get(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: get <kind>")
	}
	kind, err := quantity.ParseKind(args[0])
	if err != nil {
		return err
	}
	q, err := sh.sess.Resolver.Resolve(kind, sh.known.Clone(), sh.options()...)
	if err != nil {
		return err
	}
	sh.r.Printf("%s = %s  %s\n", kind, q, sh.r.Muted("["+q.Provenance+"]"))
	return nil
}

func (sh *shell) explain(args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return errors.New("usage: explain <kind> [model]")
	}
	kind, err := quantity.ParseKind(args[0])
	if err != nil {
		return err
	}
	opts := sh.options()
	if len(args) == 2 {
		opts = append(opts, resolver.WithModel(args[1]))
	}
	trace, err := sh.sess.Resolver.Explain(kind, sh.known.Clone(), opts...)
	if err != nil {
		return err
	}
	return sh.r.Trace(trace)
}

// use sets the model for a kind; "use <kind>" alone clears the choice.
func (sh *shell) use(args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return errors.New("usage: use <kind> [model]")
	}
	kind, err := quantity.ParseKind(args[0])
	if err != nil {
		return err
	}
	if len(args) == 1 {
		delete(sh.choices, kind)
		sh.r.Printf("%s: default model order\n", kind)
		return nil
	}
	rule, err := sh.sess.Registry.Select(kind, args[1])
	if err != nil {
		return err
	}
	sh.choices[kind] = rule.Model
	sh.r.Printf("%s: using %s\n", kind, rule.Model)
	return nil
}

func (sh *shell) models(args []string) error {
	kinds := sh.sess.Registry.Kinds()
	if len(args) == 1 {
		kind, err := quantity.ParseKind(args[0])
		if err != nil {
			return err
		}
		kinds = []quantity.Kind{kind}
	}
	var rows [][]string
	for _, k := range kinds {
		for _, rule := range sh.sess.Registry.RulesFor(k) {
			mark := ""
			if sh.choices[k] != "" && strings.EqualFold(sh.choices[k], rule.Model) {
				mark = "*"
			}
			rows = append(rows, []string{k.String(), rule.Model + mark, joinKinds(rule.Inputs)})
		}
	}
	sh.r.Table([]string{"Output", "Model", "Inputs"}, rows)
	return nil
}

func (sh *shell) evaluate(expr string) error {
	if expr == "" {
		return errors.New("usage: eval <expression>")
	}
	v, err := sh.eval.Eval(expr, sh.known)
	if err != nil {
		return err
	}
	sh.r.Println(fmt.Sprint(v))
	return nil
}

func printShellHelp(w io.Writer) {
	help := `
Commands:
  set <kind> <value> [unit]  Supply a quantity, e.g. set LaserEnergy 2 J
  unset <kind>               Remove a supplied quantity
  get <kind>                 Derive a quantity
  explain <kind> [model]     Show the derivation of a quantity
  use <kind> [model]         Choose the model for a quantity (none: default order)
  eval <expression>          Evaluate a Starlark expression over known quantities
  .known                     List known quantities
  .models [kind]             List rules, * marks the chosen model
  .reset                     Restore the experiment's quantities and choices
  .help                      Show this help message
  .quit / .exit              Exit the shell

Tips:
  - Kinds accept aliases such as a0, Te and ne
  - Expressions see constants, math, si() and display()
  - Tab completion works for commands and kinds
`
	_, _ = fmt.Fprintln(w, help)
}

// newShellCompleter completes commands and kind names.
func newShellCompleter() *readline.PrefixCompleter {
	kinds := func(string) []string { return kindNames() }
	return readline.NewPrefixCompleter(
		readline.PcItem("set", readline.PcItemDynamic(kinds)),
		readline.PcItem("unset", readline.PcItemDynamic(kinds)),
		readline.PcItem("get", readline.PcItemDynamic(kinds)),
		readline.PcItem("explain", readline.PcItemDynamic(kinds)),
		readline.PcItem("use", readline.PcItemDynamic(kinds)),
		readline.PcItem("eval"),
		readline.PcItem(".known"),
		readline.PcItem(".models", readline.PcItemDynamic(kinds)),
		readline.PcItem(".reset"),
		readline.PcItem(".help"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)
}
