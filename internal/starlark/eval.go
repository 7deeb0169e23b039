package starlark

import (
	"fmt"

	"go.starlark.net/starlark"

	"github.com/leapstack-labs/lpi/pkg/core"
)

// Evaluator evaluates expressions over a known set. Every known quantity
// is bound to its kind name as an SI float and collected in the "known"
// dict, next to the Predeclared globals.
type Evaluator struct {
	pool *ThreadPool
}

// NewEvaluator creates an evaluator.
func NewEvaluator() *Evaluator {
	return &Evaluator{pool: NewThreadPool(0)}
}

// Globals returns the bindings an expression sees for known.
func (e *Evaluator) Globals(known *core.KnownSet) starlark.StringDict {
	globals := Predeclared()
	if known != nil {
		for _, q := range known.All() {
			globals[q.Kind.String()] = starlark.Float(q.Value)
		}
	}
	globals["known"] = KnownDict(known)
	return globals
}

// Eval evaluates expr and returns its value converted to Go.
func (e *Evaluator) Eval(expr string, known *core.KnownSet) (any, error) {
	thread := e.pool.Get("eval")
	defer e.pool.Put(thread)

	v, err := starlark.Eval(thread, "<expr>", expr, e.Globals(known)) //nolint:staticcheck // SA1019: will migrate to EvalOptions later
	if err != nil {
		return nil, &EvalError{Expr: expr, Err: err}
	}
	return ToGo(v)
}

// EvalFloat evaluates expr and requires a numeric result.
func (e *Evaluator) EvalFloat(expr string, known *core.KnownSet) (float64, error) {
	thread := e.pool.Get("eval")
	defer e.pool.Put(thread)

	v, err := starlark.Eval(thread, "<expr>", expr, e.Globals(known)) //nolint:staticcheck // SA1019: will migrate to EvalOptions later
	if err != nil {
		return 0, &EvalError{Expr: expr, Err: err}
	}
	f, ok := starlark.AsFloat(v)
	if !ok {
		return 0, &EvalError{Expr: expr, Err: fmt.Errorf("result is %s, want a number", v.Type())}
	}
	return f, nil
}

// EvalError is a failed expression.
type EvalError struct {
	Expr string
	Err  error
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("eval %q: %v", e.Expr, e.Err)
}

// Unwrap returns the underlying error.
func (e *EvalError) Unwrap() error {
	return e.Err
}
