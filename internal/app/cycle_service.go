package app

import (
	"context"
	"fmt"
	"time"

	"launch_notifier/internal/domain/launch"

	"github.com/sirupsen/logrus"
)

// Cycle results reported to the Recorder.
const (
	CycleOK             = "ok"
	CycleFetchError     = "fetch_error"
	CycleReconcileError = "reconcile_error"
)

// LaunchSource returns the upstream launches scheduled within [start, end].
type LaunchSource interface {
	FetchLaunches(ctx context.Context, start, end time.Time) ([]*launch.Launch, error)
}

// CycleService runs one fetch-and-reconcile pass.
type CycleService struct {
	source     LaunchSource
	reconciler *ReconcileService
	recorder   Recorder
	logger     *logrus.Entry
}

func NewCycleService(source LaunchSource, reconciler *ReconcileService, recorder Recorder, logger *logrus.Entry) *CycleService {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &CycleService{
		source:     source,
		reconciler: reconciler,
		recorder:   recorder,
		logger:     logger.WithField("component", "cycle"),
	}
}

// RunOnce fetches the launches of the week following now and reconciles them.
// A fetch error aborts the cycle before anything is written.
func (c *CycleService) RunOnce(ctx context.Context, now time.Time) (*launch.Window, error) {
	key := launch.NewWindowKey(now)
	logCtx := c.logger.WithFields(logrus.Fields{
		"week":  key.WeekNumber,
		"year":  key.Year,
		"start": key.Start.Format(time.RFC3339),
		"end":   key.End.Format(time.RFC3339),
	})
	logCtx.Debug("Starting launch cycle")

	fetched, err := c.source.FetchLaunches(ctx, key.Start, key.End)
	if err != nil {
		c.recorder.ObserveCycle(CycleFetchError)
		logCtx.WithError(err).Error("Failed to fetch launches")
		return nil, fmt.Errorf("fetch launches: %w", err)
	}
	logCtx.WithField("fetched", len(fetched)).Info("Received launches for the next week")

	w, err := c.reconciler.Reconcile(ctx, fetched, now)
	if err != nil {
		c.recorder.ObserveCycle(CycleReconcileError)
		logCtx.WithError(err).Error("Failed to reconcile launches")
		return nil, fmt.Errorf("reconcile launches: %w", err)
	}

	c.recorder.ObserveCycle(CycleOK)
	return w, nil
}
