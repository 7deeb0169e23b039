package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/leapstack-labs/lpi/pkg/quantity"
)

// CreateRun starts a run for the named experiment. source is the file it
// was read from, if any.
func (s *SQLiteStore) CreateRun(ctx context.Context, name, source string) (*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	run := &Run{
		ID:        generateID(),
		Name:      name,
		Source:    source,
		Status:    RunStatusRunning,
		StartedAt: time.Now().UTC(),
	}

	s.logger.Debug("creating run", slog.String("id", run.ID), slog.String("name", name))

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, name, source, status, started_at) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.Name, run.Source, string(run.Status), run.StartedAt.UnixNano(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}
	return run, nil
}

// RecordQuantities appends quantities to a run, keeping their order.
func (s *SQLiteStore) RecordQuantities(ctx context.Context, runID string, qs []quantity.Quantity) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var next int
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(position) + 1, 0) FROM run_quantities WHERE run_id = ?`, runID,
	).Scan(&next); err != nil {
		return fmt.Errorf("failed to read run quantities: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO run_quantities (run_id, position, kind, value, unit, provenance) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, q := range qs {
		if _, err := stmt.ExecContext(ctx, runID, next+i, q.Kind.String(), q.Value, q.Unit(), q.Provenance); err != nil {
			return fmt.Errorf("failed to record %s: %w", q.Kind, err)
		}
	}
	return tx.Commit()
}

// RecordWarnings appends warning messages to a run.
func (s *SQLiteStore) RecordWarnings(ctx context.Context, runID string, warnings []string) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var next int
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(position) + 1, 0) FROM run_warnings WHERE run_id = ?`, runID,
	).Scan(&next); err != nil {
		return fmt.Errorf("failed to read run warnings: %w", err)
	}

	for i, msg := range warnings {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO run_warnings (run_id, position, message) VALUES (?, ?, ?)`,
			runID, next+i, msg,
		); err != nil {
			return fmt.Errorf("failed to record warning: %w", err)
		}
	}
	return tx.Commit()
}

// CompleteRun marks a run as finished with the given status.
func (s *SQLiteStore) CompleteRun(ctx context.Context, runID string, status RunStatus, errMsg string) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	var errValue sql.NullString
	if errMsg != "" {
		errValue = sql.NullString{String: errMsg, Valid: true}
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, completed_at = ?, error = ? WHERE id = ?`,
		string(status), time.Now().UTC().UnixNano(), errValue, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return nil
}

// GetRun retrieves a run with its quantities and warnings.
func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	run, err := scanRun(s.db.QueryRowContext(ctx,
		`SELECT id, name, source, status, started_at, completed_at, error FROM runs WHERE id = ?`, runID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	if run.Quantities, err = s.runQuantities(ctx, runID); err != nil {
		return nil, err
	}
	if run.Warnings, err = s.runWarnings(ctx, runID); err != nil {
		return nil, err
	}
	return run, nil
}

// ListRuns returns the most recent runs first, without their quantities.
// A limit of zero or less returns every run.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, source, status, started_at, completed_at, error
		 FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (s *SQLiteStore) runQuantities(ctx context.Context, runID string) ([]quantity.Quantity, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT kind, value, provenance FROM run_quantities WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get run quantities: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var qs []quantity.Quantity
	for rows.Next() {
		var (
			kindName, provenance string
			value                float64
		)
		if err := rows.Scan(&kindName, &value, &provenance); err != nil {
			return nil, fmt.Errorf("failed to scan run quantity: %w", err)
		}
		kind, err := quantity.ParseKind(kindName)
		if err != nil {
			s.logger.Warn("skipping stored quantity", slog.String("run", runID), slog.String("kind", kindName))
			continue
		}
		qs = append(qs, quantity.NewFrom(kind, value, provenance))
	}
	return qs, rows.Err()
}

func (s *SQLiteStore) runWarnings(ctx context.Context, runID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT message FROM run_warnings WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get run warnings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var warnings []string
	for rows.Next() {
		var msg string
		if err := rows.Scan(&msg); err != nil {
			return nil, fmt.Errorf("failed to scan run warning: %w", err)
		}
		warnings = append(warnings, msg)
	}
	return warnings, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var (
		run         Run
		status      string
		startedAt   int64
		completedAt sql.NullInt64
		errMsg      sql.NullString
	)
	if err := row.Scan(&run.ID, &run.Name, &run.Source, &status, &startedAt, &completedAt, &errMsg); err != nil {
		return nil, err
	}
	run.Status = RunStatus(status)
	run.StartedAt = time.Unix(0, startedAt).UTC()
	if completedAt.Valid {
		t := time.Unix(0, completedAt.Int64).UTC()
		run.CompletedAt = &t
	}
	run.Error = errMsg.String
	return &run, nil
}
