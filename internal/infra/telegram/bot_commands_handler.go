// internal/infra/telegram/bot_commands_handler.go
package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"launch_notifier/internal/app"
	"launch_notifier/internal/domain/launch"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// WindowReader loads stored windows for the /week command.
type WindowReader interface {
	GetWindow(ctx context.Context, weekNumber, year int) (*launch.Window, error)
}

// CommandHandler produces the replies for the bot commands.
type CommandHandler struct {
	subscriptions *app.SubscriptionService
	windows       WindowReader
	loc           *time.Location
	now           func() time.Time
	logger        *logrus.Entry
}

func NewCommandHandler(subscriptions *app.SubscriptionService, windows WindowReader, loc *time.Location, logger *logrus.Entry) *CommandHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &CommandHandler{
		subscriptions: subscriptions,
		windows:       windows,
		loc:           loc,
		now:           time.Now,
		logger:        logger,
	}
}

func RegisterBotCommands(ctx context.Context, b *telebot.Bot, h *CommandHandler) {
	b.Handle("/start", func(c telebot.Context) error {
		return c.Send(h.Start(ctx, c.Sender()))
	})
	b.Handle("/help", func(c telebot.Context) error {
		return c.Send(h.Help())
	})
	b.Handle("/subscribe", func(c telebot.Context) error {
		return c.Send(h.Subscribe(ctx, c.Sender()))
	})
	b.Handle("/unsubscribe", func(c telebot.Context) error {
		return c.Send(h.Unsubscribe(ctx, c.Sender()))
	})
	b.Handle("/week", func(c telebot.Context) error {
		return c.Send(h.Week(ctx, c.Sender()))
	})
}

func (h *CommandHandler) logFor(command string, sender *telebot.User) *logrus.Entry {
	logCtx := h.logger.WithField("command", command)
	if sender != nil {
		logCtx = logCtx.WithField("sender_id", sender.ID)
	}
	return logCtx
}

func (h *CommandHandler) Start(ctx context.Context, sender *telebot.User) string {
	h.logFor("/start", sender).Info("Processing /start command")

	name := "there"
	if sender != nil && strings.TrimSpace(sender.FirstName) != "" {
		name = sender.FirstName
	}
	return fmt.Sprintf("Hi, %s! I post the rocket launches planned for the upcoming week and tell you when they change.\n\n%s", name, h.Help())
}

func (h *CommandHandler) Help() string {
	var helpText strings.Builder
	helpText.WriteString("Available commands:\n\n")
	helpText.WriteString("/subscribe - receive launch updates\n")
	helpText.WriteString("/unsubscribe - stop receiving launch updates\n")
	helpText.WriteString("/week - show the launches stored for the upcoming week\n")
	helpText.WriteString("/help - show this message")
	return helpText.String()
}

func (h *CommandHandler) Subscribe(ctx context.Context, sender *telebot.User) string {
	logCtx := h.logFor("/subscribe", sender)
	if sender == nil {
		return "I can only subscribe private chats."
	}

	_, err := h.subscriptions.Subscribe(ctx, sender.ID, sender.FirstName)
	switch {
	case err == nil:
		logCtx.Info("Subscriber added")
		return "Subscribed! You will get the next launch update."
	case errors.Is(err, app.ErrAlreadySubscribed):
		return "You are already subscribed."
	default:
		logCtx.WithError(err).Error("Failed to subscribe")
		return "Something went wrong while subscribing. Please try again later."
	}
}

func (h *CommandHandler) Unsubscribe(ctx context.Context, sender *telebot.User) string {
	logCtx := h.logFor("/unsubscribe", sender)
	if sender == nil {
		return "You are not subscribed."
	}

	_, err := h.subscriptions.Unsubscribe(ctx, sender.ID)
	switch {
	case err == nil:
		logCtx.Info("Subscriber deactivated")
		return "Unsubscribed. Use /subscribe to come back."
	case errors.Is(err, app.ErrNotSubscribed):
		return "You are not subscribed."
	default:
		logCtx.WithError(err).Error("Failed to unsubscribe")
		return "Something went wrong while unsubscribing. Please try again later."
	}
}

func (h *CommandHandler) Week(ctx context.Context, sender *telebot.User) string {
	logCtx := h.logFor("/week", sender)

	key := launch.NewWindowKey(h.now().In(h.loc))
	w, err := h.windows.GetWindow(ctx, key.WeekNumber, key.Year)
	if err != nil {
		if errors.Is(err, launch.ErrWindowNotFound) {
			return fmt.Sprintf("Nothing stored for week %d yet. Check back after the next update.", key.WeekNumber)
		}
		logCtx.WithError(err).Error("Failed to load window")
		return "Something went wrong while loading the launches. Please try again later."
	}
	return FormatInitial(w, h.loc)
}
