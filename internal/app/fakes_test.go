package app

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"launch_notifier/internal/domain/launch"

	"github.com/sirupsen/logrus"
)

type windowKey struct{ week, year int }

// memoryRepo is an in-memory launch.Repository that hands out copies, so the
// engine only changes stored state through explicit writes.
type memoryRepo struct {
	mu      sync.Mutex
	windows map[windowKey]*launch.Window

	createCalls        int
	updateWindowCalls  int
	addCalls           int
	updateLaunchCalls  int
	lastAdded          []*launch.Launch
	lastUpdated        []*launch.Launch
	failAddLaunches    error
	failUpdateLaunches error
	failGetWindow      error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{windows: make(map[windowKey]*launch.Window)}
}

func copyWindow(w *launch.Window) *launch.Window {
	c := *w
	c.Launches = make([]*launch.Launch, 0, len(w.Launches))
	for _, l := range w.Launches {
		c.Launches = append(c.Launches, l.Clone())
	}
	return &c
}

func (r *memoryRepo) writes() int {
	return r.createCalls + r.updateWindowCalls + r.addCalls + r.updateLaunchCalls
}

func (r *memoryRepo) GetWindow(_ context.Context, week, year int) (*launch.Window, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failGetWindow != nil {
		return nil, r.failGetWindow
	}
	w, ok := r.windows[windowKey{week, year}]
	if !ok {
		return nil, launch.ErrWindowNotFound
	}
	return copyWindow(w), nil
}

func (r *memoryRepo) CreateWindow(_ context.Context, w *launch.Window) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.createCalls++
	k := windowKey{w.WeekNumber, w.Year}
	if _, ok := r.windows[k]; ok {
		return launch.ErrDuplicateWindow
	}
	r.windows[k] = copyWindow(w)
	return nil
}

func (r *memoryRepo) UpdateWindow(_ context.Context, w *launch.Window) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updateWindowCalls++
	stored, ok := r.windows[windowKey{w.WeekNumber, w.Year}]
	if !ok {
		return launch.ErrWindowNotFound
	}
	stored.Start, stored.End, stored.NotifiedAt = w.Start, w.End, w.NotifiedAt
	return nil
}

func (r *memoryRepo) windowByID(id string) *launch.Window {
	for _, w := range r.windows {
		if w.ID == id {
			return w
		}
	}
	return nil
}

func (r *memoryRepo) AddLaunches(_ context.Context, launches []*launch.Launch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.addCalls++
	if r.failAddLaunches != nil {
		return r.failAddLaunches
	}
	r.lastAdded = nil
	for _, l := range launches {
		w := r.windowByID(l.WindowID)
		if w == nil {
			return fmt.Errorf("%w: unknown window %q", launch.ErrInvalidArgument, l.WindowID)
		}
		w.Launches = append(w.Launches, l.Clone())
		r.lastAdded = append(r.lastAdded, l.Clone())
	}
	return nil
}

func (r *memoryRepo) UpdateLaunches(_ context.Context, launches []*launch.Launch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updateLaunchCalls++
	if r.failUpdateLaunches != nil {
		return r.failUpdateLaunches
	}
	r.lastUpdated = nil
	for _, l := range launches {
		w := r.windowByID(l.WindowID)
		if w == nil {
			return fmt.Errorf("%w: unknown window %q", launch.ErrInvalidArgument, l.WindowID)
		}
		for i, s := range w.Launches {
			if s.ID == l.ID && s.SubjectID == l.SubjectID {
				w.Launches[i] = l.Clone()
			}
		}
		r.lastUpdated = append(r.lastUpdated, l.Clone())
	}
	return nil
}

type fakeNotifier struct {
	err      error
	initials []*launch.Window
	deltas   []launch.ChangeSet
}

func (n *fakeNotifier) SendInitial(_ context.Context, w *launch.Window) error {
	n.initials = append(n.initials, copyWindow(w))
	return n.err
}

func (n *fakeNotifier) SendDelta(_ context.Context, c launch.ChangeSet, _ *launch.Window) error {
	n.deltas = append(n.deltas, c)
	return n.err
}

func (n *fakeNotifier) total() int {
	return len(n.initials) + len(n.deltas)
}

type countingRecorder struct {
	added, modified int
	notifications   map[string]int
	cycles          map[string]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{notifications: map[string]int{}, cycles: map[string]int{}}
}

func (r *countingRecorder) ObserveChanges(added, modified int) {
	r.added += added
	r.modified += modified
}

func (r *countingRecorder) ObserveNotification(kind string, delivered bool) {
	r.notifications[fmt.Sprintf("%s/%t", kind, delivered)]++
}

func (r *countingRecorder) ObserveCycle(result string) {
	r.cycles[result]++
}

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

// fetchedLaunch builds a launch the way the feed client does: a fresh local id
// on every fetch, same subject id.
func fetchedLaunch(subject string, status launch.Status, t0, updated time.Time) *launch.Launch {
	return &launch.Launch{
		ID:          "fetch-" + subject + "-" + updated.Format("150405.000"),
		SubjectID:   subject,
		Name:        "Rocket " + subject,
		Status:      status,
		ScheduledAt: t0,
		LastUpdated: updated,
	}
}
