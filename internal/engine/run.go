package engine

// run.go - Evaluating experiments and recording them in the run history

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	intconfig "github.com/leapstack-labs/lpi/internal/config"
	"github.com/leapstack-labs/lpi/internal/state"
	"github.com/leapstack-labs/lpi/pkg/core"
	"github.com/leapstack-labs/lpi/pkg/quantity"
)

// RunOptions controls Run and RunAll.
type RunOptions struct {
	// Kinds to estimate; the experiment's estimate list when empty
	Kinds []quantity.Kind
	// Models override model choices per kind
	Models map[quantity.Kind]string
	// Record stores the run in the history database
	Record bool
}

// Result is the outcome of evaluating one experiment.
type Result struct {
	Name       string              `json:"name"`
	Source     string              `json:"source,omitempty"`
	RunID      string              `json:"run_id,omitempty"`
	Quantities []quantity.Quantity `json:"quantities"`
	Notes      []core.Note         `json:"notes,omitempty"`
	Err        error               `json:"-"`
}

// Warnings returns the notes as plain messages.
func (r *Result) Warnings() []string {
	out := make([]string, len(r.Notes))
	for i, n := range r.Notes {
		out[i] = n.String()
	}
	return out
}

// Run evaluates exp. The returned Result carries whatever was resolved
// even when an error is returned.
func (e *Engine) Run(ctx context.Context, exp *intconfig.Experiment, opts RunOptions) (*Result, error) {
	res := &Result{Name: exp.Name, Source: exp.Path}
	e.logger.Info("starting run", "experiment", exp.Name)

	var store state.Store
	if opts.Record {
		var err error
		if store, err = e.ensureStoreOpened(); err != nil {
			return res, err
		}
		run, err := store.CreateRun(ctx, exp.Name, exp.Path)
		if err != nil {
			return res, fmt.Errorf("failed to create run: %w", err)
		}
		res.RunID = run.ID
		e.logger.Debug("created run", "run_id", run.ID)
	}

	runErr := e.evaluate(exp, opts, res)

	if store != nil {
		if err := e.record(ctx, store, res, runErr); err != nil {
			return res, errors.Join(runErr, err)
		}
	}

	if runErr != nil {
		e.logger.Info("run failed", "experiment", exp.Name, "error", runErr.Error())
		res.Err = runErr
		return res, runErr
	}
	e.logger.Info("run completed", "experiment", exp.Name, "quantities", len(res.Quantities))
	return res, nil
}

func (e *Engine) evaluate(exp *intconfig.Experiment, opts RunOptions, res *Result) error {
	session, err := e.Session(exp, opts.Models)
	if err != nil {
		return err
	}
	kinds := opts.Kinds
	if len(kinds) == 0 {
		if kinds, err = exp.EstimateKinds(); err != nil {
			return err
		}
	}
	res.Quantities, res.Notes, err = session.Estimate(kinds)
	return err
}

func (e *Engine) record(ctx context.Context, store state.Store, res *Result, runErr error) error {
	if err := store.RecordQuantities(ctx, res.RunID, res.Quantities); err != nil {
		return err
	}
	if err := store.RecordWarnings(ctx, res.RunID, res.Warnings()); err != nil {
		return err
	}
	if runErr != nil {
		return store.CompleteRun(ctx, res.RunID, state.RunStatusFailed, runErr.Error())
	}
	return store.CompleteRun(ctx, res.RunID, state.RunStatusCompleted, "")
}

// RunAll evaluates experiments concurrently, one known set each. Results
// keep the order of exps; failures are joined into the returned error and
// also set on each Result.
func (e *Engine) RunAll(ctx context.Context, exps []*intconfig.Experiment, opts RunOptions) ([]*Result, error) {
	results := make([]*Result, len(exps))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, exp := range exps {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = &Result{Name: exp.Name, Source: exp.Path, Err: err}
				return nil
			}
			res, err := e.Run(gctx, exp, opts)
			if err != nil {
				res.Err = err
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()

	var errs []error
	for _, res := range results {
		if res.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", res.Name, res.Err))
		}
	}
	return results, errors.Join(errs...)
}
