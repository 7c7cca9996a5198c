// Package replaydb persists replay runs to a local sqlite database so
// successive trials against the same plan can be compared offline.
package replaydb

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// DB wraps the run-log database.
type DB struct {
	*sql.DB
}

// Open opens (creating if needed) the run log at path.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			run_id            TEXT PRIMARY KEY,
			plan_path         TEXT,
			steps             BIGINT,
			step_period_ms    BIGINT,
			dispatches        BIGINT,
			started_at_unix   BIGINT,
			finished_at_unix  BIGINT,
			abort_reason      TEXT,
			mean_error        DOUBLE,
			max_error         DOUBLE,
			final_error       DOUBLE,
			error_samples     BIGINT
		);
		CREATE TABLE IF NOT EXISTS tracking_errors (
			run_id            TEXT,
			tick              BIGINT,
			error             DOUBLE,
			FOREIGN KEY(run_id) REFERENCES runs(run_id)
		);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("replaydb: create schema: %w", err)
	}

	return &DB{db}, nil
}

// Run is one recorded replay.
type Run struct {
	ID          string
	PlanPath    string
	Steps       int
	StepPeriod  time.Duration
	Dispatches  int
	StartedAt   time.Time
	FinishedAt  time.Time
	AbortReason string // empty on a clean run
	MeanError   float64
	MaxError    float64
	FinalError  float64
	ErrSamples  int
}

// RecordRun inserts the run summary row.
func (db *DB) RecordRun(run Run) error {
	_, err := db.Exec(`
		INSERT INTO runs (
			run_id, plan_path, steps, step_period_ms, dispatches,
			started_at_unix, finished_at_unix, abort_reason,
			mean_error, max_error, final_error, error_samples
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.PlanPath, run.Steps, run.StepPeriod.Milliseconds(), run.Dispatches,
		run.StartedAt.UnixMilli(), run.FinishedAt.UnixMilli(), run.AbortReason,
		run.MeanError, run.MaxError, run.FinalError, run.ErrSamples,
	)
	if err != nil {
		return fmt.Errorf("replaydb: record run: %w", err)
	}
	return nil
}

// RecordErrors stores the full error history for a run in one transaction.
func (db *DB) RecordErrors(runID string, errs []float64) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("replaydb: begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO tracking_errors (run_id, tick, error) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("replaydb: prepare: %w", err)
	}
	defer stmt.Close()

	for i, e := range errs {
		if _, err := stmt.Exec(runID, i, e); err != nil {
			return fmt.Errorf("replaydb: insert error %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// GetRun reads back one run summary.
func (db *DB) GetRun(id string) (Run, error) {
	var run Run
	var periodMs, startedMs, finishedMs int64
	err := db.QueryRow(`
		SELECT run_id, plan_path, steps, step_period_ms, dispatches,
			started_at_unix, finished_at_unix, abort_reason,
			mean_error, max_error, final_error, error_samples
		FROM runs WHERE run_id = ?`, id).Scan(
		&run.ID, &run.PlanPath, &run.Steps, &periodMs, &run.Dispatches,
		&startedMs, &finishedMs, &run.AbortReason,
		&run.MeanError, &run.MaxError, &run.FinalError, &run.ErrSamples,
	)
	if err != nil {
		return Run{}, fmt.Errorf("replaydb: get run %s: %w", id, err)
	}
	run.StepPeriod = time.Duration(periodMs) * time.Millisecond
	run.StartedAt = time.UnixMilli(startedMs)
	run.FinishedAt = time.UnixMilli(finishedMs)
	return run, nil
}

// ErrorCount returns how many error samples are stored for a run.
func (db *DB) ErrorCount(runID string) (int, error) {
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM tracking_errors WHERE run_id = ?`, runID).Scan(&n); err != nil {
		return 0, fmt.Errorf("replaydb: count errors: %w", err)
	}
	return n, nil
}
