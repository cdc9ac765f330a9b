// Package runner executes scenario cases and schedules repeated runs.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/bookshelf-qa/library-e2e/internal/client"
	"github.com/bookshelf-qa/library-e2e/internal/fixtures"
	"github.com/bookshelf-qa/library-e2e/internal/metrics"
	"github.com/bookshelf-qa/library-e2e/internal/report"
	"github.com/bookshelf-qa/library-e2e/internal/scenarios"
)

// Options tune a run.
type Options struct {
	// Parallel bounds how many suites run at once. Cases inside a suite
	// always run in order.
	Parallel    int
	CaseTimeout time.Duration
	RunID       string
	Metrics     *metrics.Metrics
	Logger      *slog.Logger
	now         func() time.Time
}

func (o *Options) defaults() {
	if o.Parallel <= 0 {
		o.Parallel = 1
	}
	if o.CaseTimeout <= 0 {
		o.CaseTimeout = 2 * time.Minute
	}
	if o.RunID == "" {
		o.RunID = uuid.NewString()
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.now == nil {
		o.now = time.Now
	}
}

// Run executes cases against env and returns the report. Results keep the
// order of cases regardless of parallelism.
func Run(ctx context.Context, env *scenarios.Env, cases []scenarios.Case, opts Options) *report.Report {
	opts.defaults()
	started := opts.now()
	rep := report.New(opts.RunID, env.API.BaseURL(), started)

	suites, order := groupBySuite(cases)
	results := make(map[string][]report.CaseResult, len(order))
	for _, name := range order {
		results[name] = make([]report.CaseResult, len(suites[name]))
	}

	opts.Logger.Info("run started",
		slog.String("run_id", opts.RunID),
		slog.Int("cases", len(cases)),
		slog.Int("suites", len(order)),
		slog.Int("parallel", opts.Parallel))

	g := new(errgroup.Group)
	g.SetLimit(opts.Parallel)
	for _, name := range order {
		out := results[name]
		suiteCases := suites[name]
		g.Go(func() error {
			for i, c := range suiteCases {
				out[i] = runCase(ctx, env, c, opts)
			}
			return nil
		})
	}
	_ = g.Wait()

	for _, name := range order {
		for _, res := range results[name] {
			rep.Add(res)
		}
	}
	rep.Duration = opts.now().Sub(started)
	opts.Metrics.ObserveRun(rep.Passed, rep.TotalTests, opts.now())

	opts.Logger.Info("run finished",
		slog.String("run_id", opts.RunID),
		slog.Int("passed", rep.Passed),
		slog.Int("failed", rep.Failed),
		slog.Duration("duration", rep.Duration))
	return rep
}

func groupBySuite(cases []scenarios.Case) (map[string][]scenarios.Case, []string) {
	suites := make(map[string][]scenarios.Case)
	var order []string
	for _, c := range cases {
		if _, ok := suites[c.Suite]; !ok {
			order = append(order, c.Suite)
		}
		suites[c.Suite] = append(suites[c.Suite], c)
	}
	return suites, order
}

func runCase(ctx context.Context, env *scenarios.Env, c scenarios.Case, opts Options) report.CaseResult {
	res := report.CaseResult{ID: c.ID, Suite: c.Suite, Title: c.Title}

	if err := ctx.Err(); err != nil {
		res.Kind = report.KindOther
		res.Error = "not run: " + err.Error()
		return res
	}

	caseCtx, cancel := context.WithTimeout(ctx, opts.CaseTimeout)
	defer cancel()

	start := opts.now()
	err := c.Run(caseCtx, env)
	res.Duration = opts.now().Sub(start)
	res.Passed = err == nil

	if err != nil {
		res.Kind = Classify(err)
		res.Error = err.Error()
		opts.Logger.Warn("case failed",
			slog.String("case", c.ID),
			slog.String("kind", res.Kind),
			slog.String("error", res.Error))
	} else {
		opts.Logger.Debug("case passed", slog.String("case", c.ID), slog.Duration("duration", res.Duration))
	}

	opts.Metrics.ObserveCase(c.Suite, res.Outcome(), res.Kind, res.Duration)
	return res
}

// Classify maps a case error to a report failure kind.
func Classify(err error) string {
	var (
		expectation  *scenarios.ExpectationError
		precondition *fixtures.PreconditionError
	)
	switch {
	case errors.As(err, &expectation):
		return report.KindExpectation
	case errors.As(err, &precondition):
		return report.KindPrecondition
	case client.IsNetworkError(err):
		return report.KindNetwork
	default:
		return report.KindOther
	}
}

// Summary is a one-line description of a report.
func Summary(rep *report.Report) string {
	return fmt.Sprintf("%d/%d passed (%.1f%%)", rep.Passed, rep.TotalTests, rep.SuccessRate)
}
