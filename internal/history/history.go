// Package history keeps past runs in SQLite so flaky cases can be spotted.
package history

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/bookshelf-qa/library-e2e/internal/report"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS runs (
	id           TEXT PRIMARY KEY,
	base_url     TEXT NOT NULL,
	started_at   TIMESTAMP NOT NULL,
	duration_ms  INTEGER NOT NULL,
	total        INTEGER NOT NULL,
	passed       INTEGER NOT NULL,
	failed       INTEGER NOT NULL,
	success_rate REAL NOT NULL
);
CREATE TABLE IF NOT EXISTS case_results (
	run_id      TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	case_id     TEXT NOT NULL,
	suite       TEXT NOT NULL,
	title       TEXT NOT NULL,
	passed      BOOLEAN NOT NULL,
	duration_ms INTEGER NOT NULL,
	kind        TEXT NOT NULL DEFAULT '',
	error       TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_case_results_run ON case_results(run_id);
CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
`

// Run is a stored run summary.
type Run struct {
	ID          string    `db:"id"`
	BaseURL     string    `db:"base_url"`
	StartedAt   time.Time `db:"started_at"`
	DurationMS  int64     `db:"duration_ms"`
	Total       int       `db:"total"`
	Passed      int       `db:"passed"`
	Failed      int       `db:"failed"`
	SuccessRate float64   `db:"success_rate"`
}

type caseRow struct {
	RunID      string `db:"run_id"`
	CaseID     string `db:"case_id"`
	Suite      string `db:"suite"`
	Title      string `db:"title"`
	Passed     bool   `db:"passed"`
	DurationMS int64  `db:"duration_ms"`
	Kind       string `db:"kind"`
	Error      string `db:"error"`
}

// FlakyCase is a case that both passed and failed inside the window.
type FlakyCase struct {
	CaseID   string `db:"case_id"`
	Suite    string `db:"suite"`
	Runs     int    `db:"runs"`
	Passes   int    `db:"passes"`
	Failures int    `db:"failures"`
}

// Store persists runs.
type Store struct {
	db *sqlx.DB
}

// Open opens (creating if needed) the SQLite database at path and migrates it.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open history %s: %w", path, err)
	}
	// one connection: :memory: databases are per connection and SQLite
	// serializes writers anyway
	db.SetMaxOpenConns(1)

	s := NewWithDB(db)
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewWithDB wraps an existing connection without migrating it.
func NewWithDB(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Migrate creates the tables.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("migrate history: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores a run and its case results in one transaction.
func (s *Store) Record(ctx context.Context, r *report.Report) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	run := Run{
		ID:          r.RunID,
		BaseURL:     r.BaseURL,
		StartedAt:   r.Timestamp.UTC(),
		DurationMS:  r.Duration.Milliseconds(),
		Total:       r.TotalTests,
		Passed:      r.Passed,
		Failed:      r.Failed,
		SuccessRate: r.SuccessRate,
	}
	if _, err := tx.NamedExecContext(ctx, `
		INSERT INTO runs (id, base_url, started_at, duration_ms, total, passed, failed, success_rate)
		VALUES (:id, :base_url, :started_at, :duration_ms, :total, :passed, :failed, :success_rate)`, run); err != nil {
		return fmt.Errorf("insert run %s: %w", r.RunID, err)
	}

	for _, res := range r.Results {
		row := caseRow{
			RunID:      r.RunID,
			CaseID:     res.ID,
			Suite:      res.Suite,
			Title:      res.Title,
			Passed:     res.Passed,
			DurationMS: res.Duration.Milliseconds(),
			Kind:       res.Kind,
			Error:      res.Error,
		}
		if _, err := tx.NamedExecContext(ctx, `
			INSERT INTO case_results (run_id, case_id, suite, title, passed, duration_ms, kind, error)
			VALUES (:run_id, :case_id, :suite, :title, :passed, :duration_ms, :kind, :error)`, row); err != nil {
			return fmt.Errorf("insert result %s: %w", res.ID, err)
		}
	}

	return tx.Commit()
}

// Recent returns the latest runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	var runs []Run
	err := s.db.SelectContext(ctx, &runs, `
		SELECT id, base_url, started_at, duration_ms, total, passed, failed, success_rate
		FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// Flaky returns cases with mixed outcomes across the last window runs,
// most failures first.
func (s *Store) Flaky(ctx context.Context, window int) ([]FlakyCase, error) {
	var out []FlakyCase
	err := s.db.SelectContext(ctx, &out, `
		SELECT case_id, suite,
			COUNT(*) AS runs,
			SUM(CASE WHEN passed THEN 1 ELSE 0 END) AS passes,
			SUM(CASE WHEN passed THEN 0 ELSE 1 END) AS failures
		FROM case_results
		WHERE run_id IN (SELECT id FROM runs ORDER BY started_at DESC LIMIT ?)
		GROUP BY case_id, suite
		HAVING passes > 0 AND failures > 0
		ORDER BY failures DESC, case_id`, window)
	if err != nil {
		return nil, fmt.Errorf("flaky cases: %w", err)
	}
	return out, nil
}
