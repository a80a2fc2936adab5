package scheduler

import (
	"context"
	"fmt"
	"time"

	"launch_notifier/internal/domain/launch"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// CycleRunner runs one fetch-reconcile-notify cycle.
type CycleRunner interface {
	RunOnce(ctx context.Context, now time.Time) (*launch.Window, error)
}

type CycleScheduler struct {
	cronEngine *cron.Cron
	job        cron.Job
	runner     CycleRunner
	logger     *logrus.Entry
	cronSpec   string
	timeout    time.Duration
	loc        *time.Location
	now        func() time.Time
}

func NewCycleScheduler(
	runner CycleRunner,
	logger *logrus.Entry,
	cronSpec string, // e.g., "*/1 * * * *" (every minute)
	timeout time.Duration,
	loc *time.Location,
) *CycleScheduler {
	if loc == nil {
		loc = time.UTC
	}
	s := &CycleScheduler{
		cronEngine: cron.New(cron.WithLocation(loc)),
		runner:     runner,
		logger:     logger,
		cronSpec:   cronSpec,
		timeout:    timeout,
		loc:        loc,
		now:        time.Now,
	}

	// Ticks and RunNow share one wrapped job, so a cycle still running blocks
	// every other trigger and cycles never overlap.
	cronLogger := cron.PrintfLogger(logger)
	s.job = cron.NewChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)).
		Then(cron.FuncJob(s.runCycle))
	return s
}

func (s *CycleScheduler) Start() error {
	s.logger.Info("Starting cycle scheduler...")

	_, err := s.cronEngine.AddJob(s.cronSpec, s.job)
	if err != nil {
		return fmt.Errorf("could not add launch cycle cron job %q: %w", s.cronSpec, err)
	}

	s.cronEngine.Start()
	s.logger.WithField("spec", s.cronSpec).Info("Cycle scheduler started.")
	return nil
}

// RunNow runs a cycle immediately and waits for it. It is skipped when a
// scheduled cycle is already in progress.
func (s *CycleScheduler) RunNow() {
	s.logger.Debug("Launch cycle triggered on demand.")
	s.job.Run()
}

func (s *CycleScheduler) runCycle() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	now := s.now().In(s.loc)
	w, err := s.runner.RunOnce(ctx, now)
	if err != nil {
		s.logger.WithError(err).Error("Launch cycle failed")
		return
	}
	if w == nil {
		s.logger.Debug("Launch cycle finished without a stored window")
		return
	}
	s.logger.WithField("window", w.String()).Debug("Launch cycle finished")
}

func (s *CycleScheduler) Stop() {
	s.logger.Info("Stopping cycle scheduler...")
	ctx := s.cronEngine.Stop() // Stops the scheduler from adding new jobs, waits for running jobs.
	<-ctx.Done()
	s.logger.Info("Cycle scheduler gracefully stopped.")
}
