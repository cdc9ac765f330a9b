package runner

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler runs registered tasks on their cron schedules. An execution
// that is still running when its next tick arrives makes that tick a no-op.
type Scheduler struct {
	cron     *cron.Cron
	registry *TaskRegistry
	logger   *slog.Logger
	wg       sync.WaitGroup
}

// NewScheduler creates a scheduler. logger may be nil.
func NewScheduler(registry *TaskRegistry, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		cron:     cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		registry: registry,
		logger:   logger,
	}
}

// ValidateSchedule reports whether expr is a usable schedule.
func ValidateSchedule(expr string) error {
	if _, err := cron.ParseStandard(expr); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", expr, err)
	}
	return nil
}

// Start registers every task and blocks until ctx is done, then waits for
// running executions to finish.
func (s *Scheduler) Start(ctx context.Context) error {
	for _, name := range s.registry.Names() {
		task, _ := s.registry.Get(name)
		s.logger.Info("scheduling task", slog.String("task", name), slog.String("schedule", task.Schedule()))

		_, err := s.cron.AddFunc(task.Schedule(), func() {
			s.executeTask(ctx, task)
		})
		if err != nil {
			return fmt.Errorf("failed to schedule task %s: %w", name, err)
		}
	}

	s.cron.Start()
	s.logger.Info("scheduler started", slog.Int("tasks", len(s.registry.Names())))

	<-ctx.Done()
	s.Stop()
	return nil
}

// RunNow executes a task immediately, outside the schedule.
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	task, ok := s.registry.Get(name)
	if !ok {
		return fmt.Errorf("unknown task %q", name)
	}
	return s.executeTask(ctx, task)
}

func (s *Scheduler) executeTask(ctx context.Context, task Task) error {
	s.wg.Add(1)
	defer s.wg.Done()

	taskCtx, cancel := context.WithTimeout(ctx, task.Timeout())
	defer cancel()

	s.logger.Info("executing task", slog.String("task", task.Name()))

	start := time.Now()
	err := task.Run(taskCtx)
	duration := time.Since(start)

	if err != nil {
		s.logger.Error("task failed",
			slog.String("task", task.Name()),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
	} else {
		s.logger.Info("task completed", slog.String("task", task.Name()), slog.Duration("duration", duration))
	}
	return err
}

// Stop stops accepting ticks and waits for running executions.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	stopped := s.cron.Stop()
	<-stopped.Done()
	s.wg.Wait()
	s.logger.Info("scheduler stopped")
}
