package runner

import (
	"context"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookshelf-qa/library-e2e/internal/client"
	"github.com/bookshelf-qa/library-e2e/internal/config"
	"github.com/bookshelf-qa/library-e2e/internal/fixtures"
	"github.com/bookshelf-qa/library-e2e/internal/libstub"
	"github.com/bookshelf-qa/library-e2e/internal/logger"
	"github.com/bookshelf-qa/library-e2e/internal/metrics"
	"github.com/bookshelf-qa/library-e2e/internal/report"
	"github.com/bookshelf-qa/library-e2e/internal/scenarios"
)

func stubEnv(t *testing.T) *scenarios.Env {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)

	srv, err := libstub.New(logger.Discard())
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	env, err := scenarios.NewEnv(cfg, client.New(client.Config{BaseURL: ts.URL}), logger.Discard())
	require.NoError(t, err)
	return env
}

func TestRunAllCasesAgainstStub(t *testing.T) {
	env := stubEnv(t)
	m := metrics.New()
	cases := scenarios.All()

	rep := Run(context.Background(), env, cases, Options{
		Parallel: 3,
		RunID:    "run-1",
		Metrics:  m,
		Logger:   logger.Discard(),
	})

	require.Len(t, rep.Results, len(cases))
	for i, c := range cases {
		assert.Equal(t, c.ID, rep.Results[i].ID, "result order")
		assert.True(t, rep.Results[i].Passed, "%s: %s", c.ID, rep.Results[i].Error)
	}
	assert.Equal(t, "run-1", rep.RunID)
	assert.Equal(t, env.API.BaseURL(), rep.BaseURL)
	assert.False(t, rep.HasFailures())
	assert.Equal(t, "16/16 passed (100.0%)", Summary(rep))

	assert.Equal(t, float64(5), testutil.ToFloat64(m.CasesTotal.WithLabelValues(scenarios.SuiteRentals, report.OutcomePassed)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.LastRunSuccessRatio))
}

func TestRunClassifiesFailures(t *testing.T) {
	env := stubEnv(t)
	cases := []scenarios.Case{
		{ID: "X-1", Suite: "s", Title: "passes", Run: func(context.Context, *scenarios.Env) error { return nil }},
		{ID: "X-2", Suite: "s", Title: "deviates", Run: func(context.Context, *scenarios.Env) error {
			return &scenarios.ExpectationError{Step: "get book", Expected: "200", Actual: "404"}
		}},
		{ID: "X-3", Suite: "t", Title: "broken fixture", Run: func(context.Context, *scenarios.Env) error {
			return &fixtures.PreconditionError{Resource: "livro 15", Condition: "estoque > 0", Observed: "estoque 0"}
		}},
		{ID: "X-4", Suite: "t", Title: "times out", Run: func(ctx context.Context, _ *scenarios.Env) error {
			<-ctx.Done()
			return ctx.Err()
		}},
	}

	rep := Run(context.Background(), env, cases, Options{
		Parallel:    2,
		CaseTimeout: 50 * time.Millisecond,
		Logger:      logger.Discard(),
	})

	require.Len(t, rep.Results, 4)
	assert.NotEmpty(t, rep.RunID)
	assert.Equal(t, 1, rep.Passed)
	assert.Equal(t, 3, rep.Failed)

	kinds := []string{"", report.KindExpectation, report.KindPrecondition, report.KindOther}
	for i, want := range kinds {
		assert.Equal(t, want, rep.Results[i].Kind, rep.Results[i].ID)
	}
	assert.Contains(t, rep.Results[3].Error, "deadline exceeded")
}

func TestRunCanceledContext(t *testing.T) {
	env := stubEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	cases := []scenarios.Case{
		{ID: "X-1", Suite: "s", Run: func(context.Context, *scenarios.Env) error {
			called = true
			return nil
		}},
	}
	rep := Run(ctx, env, cases, Options{Logger: logger.Discard()})

	assert.False(t, called)
	require.Len(t, rep.Results, 1)
	assert.False(t, rep.Results[0].Passed)
	assert.Equal(t, "not run: context canceled", rep.Results[0].Error)
}

func TestClassify(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want string
	}{
		{"expectation", &scenarios.ExpectationError{Step: "s"}, report.KindExpectation},
		{"wrapped expectation", fmt.Errorf("case: %w", &scenarios.ExpectationError{Step: "s"}), report.KindExpectation},
		{"precondition", &fixtures.PreconditionError{Resource: "livro 1"}, report.KindPrecondition},
		{"network", &client.NetworkError{Operation: "GET", URL: "http://x", Err: errors.New("refused")}, report.KindNetwork},
		{"other", errors.New("boom"), report.KindOther},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.err))
		})
	}
}
