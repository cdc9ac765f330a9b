package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/bookshelf-qa/library-e2e/internal/history"
	"github.com/bookshelf-qa/library-e2e/internal/report"
	"github.com/bookshelf-qa/library-e2e/internal/runner"
	"github.com/bookshelf-qa/library-e2e/internal/scenarios"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the API scenarios once and write a report",
	Long: `Run executes the selected suites (all of them by default), prints a
summary, writes the configured report formats, exports metrics and records
the run in the history database. The exit status is non-zero when any case
failed.`,
	RunE: runRun,
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the API scenarios on a schedule until interrupted",
	RunE:  runWatch,
}

var (
	suitesFlag   []string
	parallelFlag int
	formatsFlag  []string
	outDirFlag   string
	listFlag     bool
	scheduleFlag string
)

func init() {
	for _, cmd := range []*cobra.Command{runCmd, watchCmd} {
		cmd.Flags().StringSliceVar(&suitesFlag, "suite", nil, "Suites to run (books, registration, statistics, favorites, rentals, purchases)")
		cmd.Flags().IntVar(&parallelFlag, "parallel", 0, "Suites run at once, overrides runner.parallel")
		cmd.Flags().StringSliceVar(&formatsFlag, "format", nil, "Report formats (json, yaml, xlsx, html, md)")
		cmd.Flags().StringVar(&outDirFlag, "out", "", "Report directory, overrides report.dir")
	}
	runCmd.Flags().BoolVar(&listFlag, "list", false, "List the selected cases without running them")
	watchCmd.Flags().StringVar(&scheduleFlag, "schedule", "", "Cron expression, overrides runner.schedule")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(watchCmd)
}

// applyRunFlags folds command-line overrides into the loaded config and
// validates the result.
func (a *app) applyRunFlags() error {
	if len(suitesFlag) > 0 {
		a.cfg.Runner.Suites = suitesFlag
	}
	if parallelFlag > 0 {
		a.cfg.Runner.Parallel = parallelFlag
	}
	if len(formatsFlag) > 0 {
		a.cfg.Report.Formats = formatsFlag
	}
	if outDirFlag != "" {
		a.cfg.Report.Dir = outDirFlag
	}
	if scheduleFlag != "" {
		a.cfg.Runner.Schedule = scheduleFlag
	}
	return a.cfg.Validate()
}

func (a *app) selectCases() ([]scenarios.Case, error) {
	return scenarios.Default().Select(a.cfg.Runner.Suites...)
}

func (a *app) runOptions() runner.Options {
	return runner.Options{
		Parallel:    a.cfg.Runner.Parallel,
		CaseTimeout: a.cfg.Runner.CaseTimeout,
		Metrics:     a.metrics,
		Logger:      a.logger,
	}
}

// sinks persist a finished report: files, metrics textfile and history.
func (a *app) sinks(store *history.Store) []runner.Sink {
	sinks := []runner.Sink{
		func(_ context.Context, rep *report.Report) error {
			paths, err := rep.Save(a.cfg.Report.Dir, a.cfg.Report.Formats)
			for _, p := range paths {
				a.logger.Info("report written", slog.String("path", p))
			}
			return err
		},
		func(context.Context, *report.Report) error {
			return a.metrics.WriteTextfile(a.cfg.Metrics.Textfile)
		},
	}
	if store != nil {
		sinks = append(sinks, store.Record)
	}
	return sinks
}

func (a *app) openHistory(ctx context.Context) (*history.Store, error) {
	if a.cfg.History.Path == "" {
		return nil, nil
	}
	return history.Open(ctx, a.cfg.History.Path)
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := setup(ctx)
	if err != nil {
		return err
	}
	if err := a.applyRunFlags(); err != nil {
		return err
	}

	cases, err := a.selectCases()
	if err != nil {
		return err
	}
	if listFlag {
		for _, c := range cases {
			fmt.Printf("%-12s %-13s %s\n", c.ID, c.Suite, c.Title)
		}
		return nil
	}

	env, err := scenarios.NewEnv(a.cfg, a.api, a.logger)
	if err != nil {
		return err
	}
	store, err := a.openHistory(ctx)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	rep := runner.Run(ctx, env, cases, a.runOptions())
	rep.Print(os.Stdout)

	var errs []error
	for _, sink := range a.sinks(store) {
		if err := sink(ctx, rep); err != nil {
			errs = append(errs, err)
		}
	}
	if rep.HasFailures() {
		errs = append(errs, fmt.Errorf("%d of %d cases failed", rep.Failed, rep.TotalTests))
	}
	return errors.Join(errs...)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := setup(ctx)
	if err != nil {
		return err
	}
	if err := a.applyRunFlags(); err != nil {
		return err
	}
	if err := runner.ValidateSchedule(a.cfg.Runner.Schedule); err != nil {
		return err
	}

	cases, err := a.selectCases()
	if err != nil {
		return err
	}
	env, err := scenarios.NewEnv(a.cfg, a.api, a.logger)
	if err != nil {
		return err
	}
	store, err := a.openHistory(ctx)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	registry := runner.NewTaskRegistry()
	registry.Register(runner.NewSuiteTask("library-e2e", a.cfg.Runner.Schedule,
		a.cfg.Runner.CaseTimeout*timeoutFactor(len(cases)), env, cases, a.runOptions(), a.sinks(store)...))

	fmt.Printf("🕒 Running %d cases on %q, Ctrl+C to stop\n", len(cases), a.cfg.Runner.Schedule)
	return runner.NewScheduler(registry, a.logger).Start(ctx)
}

// timeoutFactor bounds a whole scheduled run by the per-case timeout times
// the number of cases.
func timeoutFactor(n int) time.Duration {
	if n < 1 {
		n = 1
	}
	return time.Duration(n)
}
