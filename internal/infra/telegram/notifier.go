// internal/infra/telegram/notifier.go
package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"launch_notifier/internal/domain/launch"
	"launch_notifier/internal/domain/subscriber"
	domaintg "launch_notifier/internal/domain/telegram"

	"github.com/sirupsen/logrus"
)

var ErrNoSubscribers = errors.New("no active telegram subscribers")

// SubscriberLister returns the chats that should receive launch updates.
type SubscriberLister interface {
	ActiveSubscribers(ctx context.Context) ([]*subscriber.Subscriber, error)
}

// Notifier broadcasts launch updates to every active subscriber.
type Notifier struct {
	sender      domaintg.Sender
	subscribers SubscriberLister
	loc         *time.Location
	logger      *logrus.Entry
}

func NewNotifier(sender domaintg.Sender, subscribers SubscriberLister, loc *time.Location, logger *logrus.Entry) *Notifier {
	if loc == nil {
		loc = time.UTC
	}
	return &Notifier{
		sender:      sender,
		subscribers: subscribers,
		loc:         loc,
		logger:      logger.WithField("component", "telegram_notifier"),
	}
}

func (n *Notifier) SendInitial(ctx context.Context, w *launch.Window) error {
	return n.broadcast(ctx, FormatInitial(w, n.loc))
}

func (n *Notifier) SendDelta(ctx context.Context, changes launch.ChangeSet, w *launch.Window) error {
	return n.broadcast(ctx, FormatDelta(changes, w, n.loc))
}

// broadcast succeeds when at least one subscriber received the message.
func (n *Notifier) broadcast(ctx context.Context, text string) error {
	subs, err := n.subscribers.ActiveSubscribers(ctx)
	if err != nil {
		return fmt.Errorf("failed to list subscribers: %w", err)
	}
	if len(subs) == 0 {
		return ErrNoSubscribers
	}

	var errs []error
	delivered := 0
	for _, s := range subs {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := n.sender.Send(s.TelegramID, text, nil); err != nil {
			n.logger.WithError(err).WithField("telegram_id", s.TelegramID).Warn("Failed to deliver launch update")
			errs = append(errs, fmt.Errorf("chat %d: %w", s.TelegramID, err))
			continue
		}
		delivered++
	}

	n.logger.WithFields(logrus.Fields{
		"delivered":   delivered,
		"subscribers": len(subs),
	}).Info("Telegram broadcast finished")

	if delivered > 0 {
		return nil
	}
	return errors.Join(errs...)
}

// FormatInitial renders the plain-text announcement of a new week.
func FormatInitial(w *launch.Window, loc *time.Location) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🚀 Upcoming rocket launches for week %d (%s)\n", w.WeekNumber, weekRange(w, loc))
	writeLaunches(&b, w.Launches, loc)
	return strings.TrimRight(b.String(), "\n")
}

// FormatDelta renders the plain-text list of new and updated launches.
func FormatDelta(changes launch.ChangeSet, w *launch.Window, loc *time.Location) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🚀 Updates for week %d: %s\n", w.WeekNumber, weekRange(w, loc))
	if len(changes.Added) > 0 {
		b.WriteString("\nNew launches:\n")
		writeLaunches(&b, changes.Added, loc)
	}
	if len(changes.Modified) > 0 {
		b.WriteString("\nUpdated launches:\n")
		writeLaunches(&b, changes.Modified, loc)
	}
	return strings.TrimRight(b.String(), "\n")
}

func weekRange(w *launch.Window, loc *time.Location) string {
	return w.Start.In(loc).Format("2006-01-02") + " - " + w.End.In(loc).Format("2006-01-02")
}

func writeLaunches(b *strings.Builder, launches []*launch.Launch, loc *time.Location) {
	if len(launches) == 0 {
		b.WriteString("No launches scheduled.\n")
		return
	}
	for _, l := range launches {
		fmt.Fprintf(b, "• %s\n   %s · %s\n", l.Name, l.ScheduledAt.In(loc).Format("Jan 2, 2006 15:04 MST"), l.Status)
	}
}
