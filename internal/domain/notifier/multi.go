package notifier

import (
	"context"
	"errors"
	"fmt"

	"launch_notifier/internal/domain/launch"

	"github.com/sirupsen/logrus"
)

// Channel is a Notifier with a name used in logs and metrics.
type Channel struct {
	Name     string
	Notifier Notifier
}

// Multi fans a notification out to several channels. Delivery counts as
// successful when at least one channel accepted it.
type Multi struct {
	channels []Channel
	logger   *logrus.Entry
}

func NewMulti(logger *logrus.Entry, channels ...Channel) *Multi {
	return &Multi{channels: channels, logger: logger}
}

// Len returns the number of configured channels.
func (m *Multi) Len() int {
	return len(m.channels)
}

func (m *Multi) SendInitial(ctx context.Context, w *launch.Window) error {
	return m.fanOut("initial", func(n Notifier) error {
		return n.SendInitial(ctx, w)
	})
}

func (m *Multi) SendDelta(ctx context.Context, changes launch.ChangeSet, w *launch.Window) error {
	return m.fanOut("delta", func(n Notifier) error {
		return n.SendDelta(ctx, changes, w)
	})
}

func (m *Multi) fanOut(kind string, send func(Notifier) error) error {
	if len(m.channels) == 0 {
		return errors.New("no notification channels configured")
	}

	var errs []error
	delivered := 0
	for _, ch := range m.channels {
		logCtx := m.logger.WithFields(logrus.Fields{"channel": ch.Name, "kind": kind})
		if err := send(ch.Notifier); err != nil {
			logCtx.WithError(err).Warn("Channel failed to deliver notification")
			errs = append(errs, fmt.Errorf("%s: %w", ch.Name, err))
			continue
		}
		logCtx.Debug("Channel delivered notification")
		delivered++
	}

	if delivered > 0 {
		return nil
	}
	return errors.Join(errs...)
}

// LogNotifier only logs what would have been sent. It is used when no
// delivery channel is configured.
type LogNotifier struct {
	logger *logrus.Entry
}

func NewLogNotifier(logger *logrus.Entry) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) SendInitial(_ context.Context, w *launch.Window) error {
	n.logger.WithField("window", w.String()).Info("Initial announcement (log only)")
	for _, l := range w.Launches {
		n.logger.Infof("  %s | %s | %s", l.Name, l.ScheduledAt.Format("2006-01-02 15:04 MST"), l.Status)
	}
	return nil
}

func (n *LogNotifier) SendDelta(_ context.Context, changes launch.ChangeSet, w *launch.Window) error {
	n.logger.WithFields(logrus.Fields{
		"window":   w.String(),
		"added":    len(changes.Added),
		"modified": len(changes.Modified),
	}).Info("Delta announcement (log only)")
	return nil
}
