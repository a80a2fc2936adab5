// internal/infra/mail/notifier.go
package mail

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"time"

	"launch_notifier/internal/domain/launch"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

var ErrNoRecipients = errors.New("no mail recipients configured")

const (
	dayLayout    = "2006-01-02"
	launchLayout = "January 2, 2006"
)

// Sender delivers prepared messages. *gomail.Dialer satisfies it.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// Notifier sends launch updates as HTML mail.
type Notifier struct {
	sender     Sender
	from       string
	recipients []string
	loc        *time.Location
	logger     *logrus.Entry
}

func NewNotifier(sender Sender, from string, recipients []string, loc *time.Location, logger *logrus.Entry) *Notifier {
	if loc == nil {
		loc = time.UTC
	}
	return &Notifier{
		sender:     sender,
		from:       from,
		recipients: recipients,
		loc:        loc,
		logger:     logger.WithField("component", "mail"),
	}
}

// NewSMTPNotifier builds a Notifier backed by an SMTP dialer.
func NewSMTPNotifier(host string, port int, user, password, from string, recipients []string, loc *time.Location, logger *logrus.Entry) *Notifier {
	return NewNotifier(gomail.NewDialer(host, port, user, password), from, recipients, loc, logger)
}

type launchView struct {
	Name   string
	Date   string
	Status string
}

type mailView struct {
	WeekNumber int
	Start      string
	End        string
	Launches   []launchView
	Added      []launchView
	Modified   []launchView
}

func (n *Notifier) SendInitial(ctx context.Context, w *launch.Window) error {
	subject, body, err := RenderInitial(w, n.loc)
	if err != nil {
		return err
	}
	return n.send(ctx, subject, body)
}

func (n *Notifier) SendDelta(ctx context.Context, changes launch.ChangeSet, w *launch.Window) error {
	subject, body, err := RenderDelta(changes, w, n.loc)
	if err != nil {
		return err
	}
	return n.send(ctx, subject, body)
}

func (n *Notifier) send(ctx context.Context, subject, body string) error {
	if len(n.recipients) == 0 {
		return ErrNoRecipients
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", n.from)
	msg.SetHeader("To", n.recipients...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	if err := n.sender.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send mail %q: %w", subject, err)
	}
	n.logger.WithFields(logrus.Fields{
		"subject":    subject,
		"recipients": len(n.recipients),
	}).Info("Mail sent")
	return nil
}

// RenderInitial renders the subject and HTML body announcing a new week.
func RenderInitial(w *launch.Window, loc *time.Location) (string, string, error) {
	view := newMailView(w, loc)
	view.Launches = launchViews(w.Launches, loc)

	body, err := render("initial", view)
	if err != nil {
		return "", "", err
	}
	return fmt.Sprintf("🚀 Upcoming rocket launches for week %d", w.WeekNumber), body, nil
}

// RenderDelta renders the subject and HTML body listing new and updated launches.
func RenderDelta(changes launch.ChangeSet, w *launch.Window, loc *time.Location) (string, string, error) {
	view := newMailView(w, loc)
	view.Added = launchViews(changes.Added, loc)
	view.Modified = launchViews(changes.Modified, loc)

	body, err := render("delta", view)
	if err != nil {
		return "", "", err
	}
	return fmt.Sprintf("🚀 Updates for week %d: %s - %s", w.WeekNumber, view.Start, view.End), body, nil
}

func newMailView(w *launch.Window, loc *time.Location) mailView {
	if loc == nil {
		loc = time.UTC
	}
	return mailView{
		WeekNumber: w.WeekNumber,
		Start:      w.Start.In(loc).Format(dayLayout),
		End:        w.End.In(loc).Format(dayLayout),
	}
}

func launchViews(launches []*launch.Launch, loc *time.Location) []launchView {
	if loc == nil {
		loc = time.UTC
	}
	views := make([]launchView, 0, len(launches))
	for _, l := range launches {
		views = append(views, launchView{
			Name:   l.Name,
			Date:   l.ScheduledAt.In(loc).Format(launchLayout),
			Status: l.Status.String(),
		})
	}
	return views
}

func render(name string, view mailView) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, view); err != nil {
		return "", fmt.Errorf("failed to render %s mail: %w", name, err)
	}
	return buf.String(), nil
}
