package runner

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/bookshelf-qa/library-e2e/internal/report"
	"github.com/bookshelf-qa/library-e2e/internal/scenarios"
)

// Task is a unit of work run on a cron schedule.
type Task interface {
	// Name returns the unique name of the task
	Name() string

	// Schedule returns the cron expression, descriptors like @every 15m included
	Schedule() string

	// Run executes the task
	Run(ctx context.Context) error

	// Timeout bounds one execution
	Timeout() time.Duration
}

// TaskRegistry holds registered tasks by name.
type TaskRegistry struct {
	tasks map[string]Task
}

// NewTaskRegistry creates an empty registry.
func NewTaskRegistry() *TaskRegistry {
	return &TaskRegistry{
		tasks: make(map[string]Task),
	}
}

// Register adds a task, replacing one with the same name.
func (r *TaskRegistry) Register(task Task) {
	r.tasks[task.Name()] = task
}

// Get returns a task by name.
func (r *TaskRegistry) Get(name string) (Task, bool) {
	task, exists := r.tasks[name]
	return task, exists
}

// Names returns the registered names, sorted.
func (r *TaskRegistry) Names() []string {
	names := make([]string, 0, len(r.tasks))
	for name := range r.tasks {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Sink receives the report of every scheduled run (files, metrics, history).
type Sink func(ctx context.Context, rep *report.Report) error

// SuiteTask runs a fixed selection of cases and hands each report to sinks.
type SuiteTask struct {
	name     string
	schedule string
	timeout  time.Duration
	env      *scenarios.Env
	cases    []scenarios.Case
	opts     Options
	sinks    []Sink
}

// NewSuiteTask builds a scheduled run. opts.RunID is ignored; every
// execution gets a fresh one.
func NewSuiteTask(name, schedule string, timeout time.Duration, env *scenarios.Env, cases []scenarios.Case, opts Options, sinks ...Sink) *SuiteTask {
	return &SuiteTask{
		name:     name,
		schedule: schedule,
		timeout:  timeout,
		env:      env,
		cases:    cases,
		opts:     opts,
		sinks:    sinks,
	}
}

func (t *SuiteTask) Name() string           { return t.name }
func (t *SuiteTask) Schedule() string       { return t.schedule }
func (t *SuiteTask) Timeout() time.Duration { return t.timeout }

// Run executes the cases once. Sink errors and failed cases both make Run
// return an error so the scheduler logs them.
func (t *SuiteTask) Run(ctx context.Context) error {
	opts := t.opts
	opts.RunID = uuid.NewString()
	rep := Run(ctx, t.env, t.cases, opts)

	var errs []error
	for _, sink := range t.sinks {
		if err := sink(ctx, rep); err != nil {
			errs = append(errs, err)
		}
	}
	if rep.HasFailures() {
		errs = append(errs, fmt.Errorf("run %s: %s", rep.RunID, Summary(rep)))
	}
	return errors.Join(errs...)
}
