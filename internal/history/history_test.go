package history

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookshelf-qa/library-e2e/internal/report"
)

func openMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func runWith(n int, outcomes map[string]bool) *report.Report {
	r := report.New(fmt.Sprintf("run-%d", n), "http://localhost:3000",
		time.Date(2025, 12, 19, 10, n, 0, 0, time.UTC))
	for _, id := range []string{"CT-API-018", "CT-API-020", "CT-API-023"} {
		passed, ok := outcomes[id]
		if !ok {
			passed = true
		}
		res := report.CaseResult{ID: id, Suite: "rentals", Title: id, Passed: passed, Duration: 10 * time.Millisecond}
		if !passed {
			res.Kind = report.KindExpectation
			res.Error = "boom"
		}
		r.Add(res)
	}
	r.Duration = time.Second
	return r
}

func TestRecordAndRecent(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()

	require.NoError(t, s.Record(ctx, runWith(1, nil)))
	require.NoError(t, s.Record(ctx, runWith(2, map[string]bool{"CT-API-020": false})))

	runs, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-2", runs[0].ID)
	assert.Equal(t, 1, runs[0].Failed)
	assert.Equal(t, int64(1000), runs[0].DurationMS)
	assert.True(t, runs[1].StartedAt.Equal(time.Date(2025, 12, 19, 10, 1, 0, 0, time.UTC)))

	runs, err = s.Recent(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, runs, 1)

	assert.Error(t, s.Record(ctx, runWith(2, nil)), "duplicate run id")
}

func TestFlaky(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()

	require.NoError(t, s.Record(ctx, runWith(1, map[string]bool{"CT-API-023": false})))
	require.NoError(t, s.Record(ctx, runWith(2, map[string]bool{"CT-API-020": false})))
	require.NoError(t, s.Record(ctx, runWith(3, map[string]bool{"CT-API-020": false})))
	require.NoError(t, s.Record(ctx, runWith(4, nil)))

	flaky, err := s.Flaky(ctx, 10)
	require.NoError(t, err)
	require.Len(t, flaky, 2)
	assert.Equal(t, FlakyCase{CaseID: "CT-API-020", Suite: "rentals", Runs: 4, Passes: 2, Failures: 2}, flaky[0])
	assert.Equal(t, "CT-API-023", flaky[1].CaseID)

	// run-1 falls out of a three-run window
	flaky, err = s.Flaky(ctx, 3)
	require.NoError(t, err)
	require.Len(t, flaky, 1)
	assert.Equal(t, "CT-API-020", flaky[0].CaseID)
}

func TestRecordRollsBackOnFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	s := NewWithDB(sqlx.NewDb(db, "sqlite3"))

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO runs").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO case_results").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO case_results").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err = s.Record(context.Background(), runWith(1, nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert result CT-API-020")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordCommits(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	s := NewWithDB(sqlx.NewDb(db, "sqlite3"))

	r := report.New("run-x", "http://localhost:3000", time.Now())
	r.Add(report.CaseResult{ID: "CT-API-005", Suite: "statistics", Passed: true})

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO runs").
		WithArgs("run-x", "http://localhost:3000",
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO case_results").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, s.Record(context.Background(), r))
	assert.NoError(t, mock.ExpectationsWereMet())
}
