// Package state records estimate runs in a SQLite database: one row per
// run plus the quantities and warnings it produced.
package state

import (
	"context"
	"errors"
	"time"

	"github.com/leapstack-labs/lpi/pkg/quantity"
)

// ErrRunNotFound is returned when a run id does not exist.
var ErrRunNotFound = errors.New("run not found")

// RunStatus is the lifecycle state of a run.
type RunStatus string

// Run statuses.
const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// Run is one recorded evaluation of an experiment.
type Run struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Source      string              `json:"source,omitempty"`
	Status      RunStatus           `json:"status"`
	StartedAt   time.Time           `json:"started_at"`
	CompletedAt *time.Time          `json:"completed_at,omitempty"`
	Error       string              `json:"error,omitempty"`
	Quantities  []quantity.Quantity `json:"quantities,omitempty"`
	Warnings    []string            `json:"warnings,omitempty"`
}

// Duration returns how long the run took, zero while it is running.
func (r *Run) Duration() time.Duration {
	if r.CompletedAt == nil {
		return 0
	}
	return r.CompletedAt.Sub(r.StartedAt)
}

// Store is the run history.
type Store interface {
	Open(path string) error
	Close() error
	Migrate() error

	CreateRun(ctx context.Context, name, source string) (*Run, error)
	RecordQuantities(ctx context.Context, runID string, qs []quantity.Quantity) error
	RecordWarnings(ctx context.Context, runID string, warnings []string) error
	CompleteRun(ctx context.Context, runID string, status RunStatus, errMsg string) error
	GetRun(ctx context.Context, runID string) (*Run, error)
	ListRuns(ctx context.Context, limit int) ([]*Run, error)
}

var _ Store = (*SQLiteStore)(nil)
