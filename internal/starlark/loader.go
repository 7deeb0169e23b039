// Package starlark loads user-defined model rules from Starlark files.
//
// A rule file declares rules with the rule() builtin:
//
//	def _te(intensity, wavelength):
//	    return 0.5 * constants.MeV * math.sqrt(intensity / 1e22)
//
//	rule(
//	    model = "MyFit2024",
//	    output = "HotElectronTemperature",
//	    inputs = ["PeakIntensity", "Wavelength"],
//	    compute = _te,
//	    priority = 5,
//	)
//
// Compute functions receive one float per input, in SI units and in the
// order of inputs, and must return a number in the SI unit of the output.
package starlark

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.starlark.net/starlark"

	"github.com/leapstack-labs/lpi/pkg/core"
	"github.com/leapstack-labs/lpi/pkg/quantity"
)

// DefaultPriority is used when a rule does not set one. It matches the
// builtin catalog's default tier.
const DefaultPriority = 10

// collectorKey is the thread-local slot for the rules of the file being executed.
const collectorKey = "lpi.rules"

// Loader turns rule files into core.ModelRule values. Rules from one
// loader share its thread pool.
type Loader struct {
	pool *ThreadPool
}

// NewLoader creates a loader.
func NewLoader() *Loader {
	return &Loader{pool: NewThreadPool(0)}
}

// LoadDir loads every *.star file in dir, in name order. A missing
// directory yields no rules.
func (l *Loader) LoadDir(dir string) ([]core.ModelRule, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to access rules directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("rules path is not a directory: %s", dir)
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.star"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan rules directory: %w", err)
	}
	sort.Strings(files)

	var rules []core.ModelRule
	for _, file := range files {
		loaded, err := l.LoadFile(file)
		if err != nil {
			return nil, err
		}
		rules = append(rules, loaded...)
	}
	return rules, nil
}

// LoadFile loads the rules declared in one file.
func (l *Loader) LoadFile(path string) ([]core.ModelRule, error) {
	content, err := os.ReadFile(path) //nolint:gosec // G304: path is a user-selected rules file
	if err != nil {
		return nil, &LoadError{File: path, Message: fmt.Sprintf("failed to read file: %v", err)}
	}
	return l.LoadSource(path, content)
}

// LoadSource loads rules from source held in memory. filename is used in
// error messages.
func (l *Loader) LoadSource(filename string, src []byte) ([]core.ModelRule, error) {
	var collected []core.ModelRule

	thread := &starlark.Thread{
		Name: "load:" + filepath.Base(filename),
		Print: func(_ *starlark.Thread, _ string) {
			// ignore prints during loading
		},
	}
	thread.SetLocal(collectorKey, &collected)

	predeclared := Predeclared()
	predeclared["rule"] = starlark.NewBuiltin("rule", l.ruleBuiltin)

	if _, err := starlark.ExecFile(thread, filename, src, predeclared); err != nil { //nolint:staticcheck // SA1019: will migrate to ExecFileOptions later
		return nil, &LoadError{File: filename, Message: fmt.Sprintf("Starlark execution error: %v", err)}
	}

	for _, r := range collected {
		if err := r.Validate(); err != nil {
			return nil, &LoadError{File: filename, Message: err.Error()}
		}
	}
	return collected, nil
}

// ruleBuiltin implements rule(model, output, inputs, compute, name?,
// priority?, reference?, validity?, check?).
func (l *Loader) ruleBuiltin(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var (
		model, output       string
		inputs              starlark.Iterable
		compute             starlark.Callable
		name                string
		priority            = DefaultPriority
		reference, validity string
		check               starlark.Value = starlark.None
	)
	if err := starlark.UnpackArgs(b.Name(), args, kwargs,
		"model", &model,
		"output", &output,
		"inputs", &inputs,
		"compute", &compute,
		"name?", &name,
		"priority?", &priority,
		"reference?", &reference,
		"validity?", &validity,
		"check?", &check,
	); err != nil {
		return nil, err
	}

	out, err := quantity.ParseKind(output)
	if err != nil {
		return nil, fmt.Errorf("%s: output: %w", b.Name(), err)
	}

	var kinds []quantity.Kind
	iter := inputs.Iterate()
	defer iter.Done()
	var v starlark.Value
	for iter.Next(&v) {
		s, ok := starlark.AsString(v)
		if !ok {
			return nil, fmt.Errorf("%s: inputs must be kind names, got %s", b.Name(), v.Type())
		}
		k, err := quantity.ParseKind(s)
		if err != nil {
			return nil, fmt.Errorf("%s: inputs: %w", b.Name(), err)
		}
		kinds = append(kinds, k)
	}

	if fn, ok := compute.(*starlark.Function); ok && !fn.HasVarargs() && fn.NumParams() != len(kinds) {
		return nil, fmt.Errorf("%s: compute takes %d parameters but %d inputs are declared", b.Name(), fn.NumParams(), len(kinds))
	}

	if name == "" {
		name = model + "." + out.String()
	}

	r := core.ModelRule{
		Name:      name,
		Model:     model,
		Output:    out,
		Inputs:    kinds,
		Compute:   l.computeFunc(name, compute, kinds),
		Priority:  priority,
		Reference: reference,
		Validity:  validity,
	}
	if check != starlark.None {
		fn, ok := check.(starlark.Callable)
		if !ok {
			return nil, fmt.Errorf("%s: check must be callable, got %s", b.Name(), check.Type())
		}
		r.Check = l.checkFunc(name, fn, kinds)
	}

	collected, ok := thread.Local(collectorKey).(*[]core.ModelRule)
	if !ok {
		return nil, fmt.Errorf("%s: only allowed while loading a rules file", b.Name())
	}
	*collected = append(*collected, r)

	return starlark.String(name), nil
}

func (l *Loader) call(name string, fn starlark.Callable, kinds []quantity.Kind, in core.Inputs) (starlark.Value, error) {
	args := make(starlark.Tuple, len(kinds))
	for i, k := range kinds {
		args[i] = starlark.Float(in.Value(k))
	}

	thread := l.pool.Get(name)
	defer l.pool.Put(thread)
	return starlark.Call(thread, fn, args, nil)
}

func (l *Loader) computeFunc(name string, fn starlark.Callable, kinds []quantity.Kind) core.ComputeFunc {
	return func(in core.Inputs) (float64, error) {
		v, err := l.call(name, fn, kinds, in)
		if err != nil {
			return 0, err
		}
		f, ok := starlark.AsFloat(v)
		if !ok {
			return 0, fmt.Errorf("compute returned %s, want a number", v.Type())
		}
		return f, nil
	}
}

// checkFunc adapts a Starlark check function. It may return None, a
// string or a list of strings. Failures become notes since checks never
// fail a derivation.
func (l *Loader) checkFunc(name string, fn starlark.Callable, kinds []quantity.Kind) core.CheckFunc {
	return func(in core.Inputs) []string {
		v, err := l.call(name, fn, kinds, in)
		if err != nil {
			return []string{"check failed: " + err.Error()}
		}
		notes, err := Notes(v)
		if err != nil {
			return []string{"check failed: " + err.Error()}
		}
		return notes
	}
}

// LoadError represents an error loading a rules file.
type LoadError struct {
	File    string
	Message string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("rules/%s: %s", filepath.Base(e.File), e.Message)
}
