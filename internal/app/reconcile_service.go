// internal/app/reconcile_service.go
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"launch_notifier/internal/domain/launch"
	"launch_notifier/internal/domain/notifier"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Notification kinds reported to the Recorder.
const (
	NotificationInitial = "initial"
	NotificationDelta   = "delta"
)

// Recorder receives reconciliation outcomes, typically for metrics.
type Recorder interface {
	ObserveChanges(added, modified int)
	ObserveNotification(kind string, delivered bool)
	ObserveCycle(result string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveChanges(int, int)          {}
func (nopRecorder) ObserveNotification(string, bool) {}
func (nopRecorder) ObserveCycle(string)              {}

// ReconcileService compares a freshly fetched snapshot of launches with the
// stored window for the same week, persists the delta and announces it.
// It keeps no state between runs; callers must not run it concurrently for
// the same window.
type ReconcileService struct {
	repo     launch.Repository
	notifier notifier.Notifier
	recorder Recorder
	logger   *logrus.Entry
	newID    func() string
}

func NewReconcileService(repo launch.Repository, n notifier.Notifier, recorder Recorder, logger *logrus.Entry) *ReconcileService {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &ReconcileService{
		repo:     repo,
		notifier: n,
		recorder: recorder,
		logger:   logger.WithField("component", "reconcile"),
		newID:    uuid.NewString,
	}
}

// Reconcile applies fetched to the window following now and returns the
// resulting window. An empty fetch is a no-op that returns the stored window,
// or nil when the week has none. Notification failures are logged and never
// returned; persistence failures are.
func (s *ReconcileService) Reconcile(ctx context.Context, fetched []*launch.Launch, now time.Time) (*launch.Window, error) {
	key := launch.NewWindowKey(now)
	logCtx := s.logger.WithFields(logrus.Fields{"week": key.WeekNumber, "year": key.Year})

	snapshot := s.dedupe(fetched, logCtx)
	if len(snapshot) == 0 {
		logCtx.Info("No launches to store")
		w, err := s.repo.GetWindow(ctx, key.WeekNumber, key.Year)
		if err != nil {
			if errors.Is(err, launch.ErrWindowNotFound) {
				return nil, nil
			}
			return nil, fmt.Errorf("failed to load window %d/%d: %w", key.WeekNumber, key.Year, err)
		}
		return w, nil
	}

	existing, err := s.repo.GetWindow(ctx, key.WeekNumber, key.Year)
	if err != nil && !errors.Is(err, launch.ErrWindowNotFound) {
		return nil, fmt.Errorf("failed to load window %d/%d: %w", key.WeekNumber, key.Year, err)
	}

	if existing == nil {
		w, err := s.createWindow(ctx, key, snapshot)
		if err != nil {
			return nil, err
		}
		logCtx.WithField("launches", len(w.Launches)).Info("Created new window")
		s.recorder.ObserveChanges(len(w.Launches), 0)

		sendErr := s.notifier.SendInitial(ctx, w)
		if err := s.afterNotify(ctx, w, NotificationInitial, sendErr, now, logCtx); err != nil {
			return nil, err
		}
		return w, nil
	}

	changes := diff(existing, snapshot, s.newID)
	if changes.Empty() {
		logCtx.Infof("No changes for the upcoming week %s - %s", existing.Start.Format("2006-01-02"), existing.End.Format("2006-01-02"))
		return existing, nil
	}

	if len(changes.Added) > 0 {
		if err := s.repo.AddLaunches(ctx, changes.Added); err != nil {
			return nil, fmt.Errorf("failed to add %d launches to window %s: %w", len(changes.Added), existing.ID, err)
		}
		existing.Launches = append(existing.Launches, changes.Added...)
	}
	if len(changes.Modified) > 0 {
		if err := s.repo.UpdateLaunches(ctx, changes.Modified); err != nil {
			return nil, fmt.Errorf("failed to update %d launches in window %s: %w", len(changes.Modified), existing.ID, err)
		}
	}
	logCtx.WithFields(logrus.Fields{
		"added":    len(changes.Added),
		"modified": len(changes.Modified),
	}).Info("Applied launch changes")
	s.recorder.ObserveChanges(len(changes.Added), len(changes.Modified))

	sendErr := s.notifier.SendDelta(ctx, changes, existing)
	if err := s.afterNotify(ctx, existing, NotificationDelta, sendErr, now, logCtx); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *ReconcileService) createWindow(ctx context.Context, key launch.WindowKey, snapshot []*launch.Launch) (*launch.Window, error) {
	w := &launch.Window{
		ID:         s.newID(),
		WeekNumber: key.WeekNumber,
		Year:       key.Year,
		Start:      key.Start,
		End:        key.End,
		NotifiedAt: launch.NeverNotified,
		Launches:   make([]*launch.Launch, 0, len(snapshot)),
	}
	for _, f := range snapshot {
		l := f.Clone()
		if l.ID == "" {
			l.ID = s.newID()
		}
		l.WindowID = w.ID
		w.Launches = append(w.Launches, l)
	}

	if err := s.repo.CreateWindow(ctx, w); err != nil {
		return nil, fmt.Errorf("failed to create window %d/%d: %w", key.WeekNumber, key.Year, err)
	}
	return w, nil
}

// afterNotify stamps NotifiedAt on delivery. A delivery failure only leaves a
// warning behind.
func (s *ReconcileService) afterNotify(ctx context.Context, w *launch.Window, kind string, sendErr error, now time.Time, logCtx *logrus.Entry) error {
	s.recorder.ObserveNotification(kind, sendErr == nil)
	if sendErr != nil {
		logCtx.WithError(sendErr).WithField("kind", kind).Warn("Could not send notification")
		return nil
	}

	previous := w.NotifiedAt
	w.NotifiedAt = now
	if err := s.repo.UpdateWindow(ctx, w); err != nil {
		w.NotifiedAt = previous
		return fmt.Errorf("failed to mark window %s as notified: %w", w.ID, err)
	}
	logCtx.WithField("kind", kind).Info("Notification sent")
	return nil
}

// dedupe returns independent copies of fetched with one record per SubjectID,
// keeping the most recently updated one.
func (s *ReconcileService) dedupe(fetched []*launch.Launch, logCtx *logrus.Entry) []*launch.Launch {
	out := make([]*launch.Launch, 0, len(fetched))
	pos := make(map[string]int, len(fetched))
	for _, f := range fetched {
		if f == nil {
			continue
		}
		if i, ok := pos[f.SubjectID]; ok {
			logCtx.WithField("subject_id", f.SubjectID).Warn("Duplicate launch in fetched batch")
			if f.LastUpdated.After(out[i].LastUpdated) {
				out[i] = f.Clone()
			}
			continue
		}
		pos[f.SubjectID] = len(out)
		out = append(out, f.Clone())
	}
	return out
}

// diff partitions snapshot against the stored window. Modified launches are
// the stored records themselves, updated in place. Stored launches missing
// from the snapshot are left alone.
func diff(existing *launch.Window, snapshot []*launch.Launch, newID func() string) launch.ChangeSet {
	stored := existing.LaunchBySubject()
	var changes launch.ChangeSet

	for _, f := range snapshot {
		s, ok := stored[f.SubjectID]
		if !ok {
			added := f.Clone()
			if added.ID == "" {
				added.ID = newID()
			}
			added.WindowID = existing.ID
			changes.Added = append(changes.Added, added)
			continue
		}
		if launch.IsModifiedBy(s, f) {
			s.ApplyUpdate(f)
			changes.Modified = append(changes.Modified, s)
		}
	}
	return changes
}
