package cli

import (
	"fmt"
	"time"

	"launch_notifier/internal/app"
	"launch_notifier/internal/domain/notifier"
	"launch_notifier/internal/infra/config"
	idb "launch_notifier/internal/infra/database"
	"launch_notifier/internal/infra/launchlibrary"
	"launch_notifier/internal/infra/logger"
	"launch_notifier/internal/infra/mail"
	"launch_notifier/internal/infra/metrics"
	"launch_notifier/internal/infra/telegram"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gopkg.in/telebot.v3"
)

// services bundles everything the commands need, built from one config.
type services struct {
	db            *idb.DB
	windows       *idb.WindowRepository
	subscriptions *app.SubscriptionService
	cycle         *app.CycleService
	bot           *telebot.Bot // nil when Telegram is disabled
	registry      *prometheus.Registry
}

func buildServices(cfg *config.AppConfig) (*services, error) {
	mainLogger := logger.Component("main")
	loc := cfg.Location()

	db, err := idb.Open(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("could not connect to database: %w", err)
	}
	mainLogger.WithField("driver", cfg.DBDriver).Info("Database connection established successfully.")

	windowRepo := idb.NewWindowRepository(db)
	subscriptions := app.NewSubscriptionService(idb.NewSubscriberRepository(db))

	var bot *telebot.Bot
	if cfg.TelegramEnabled() {
		bot, err = newBot(cfg.TelegramToken)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("could not create Telegram bot: %w", err)
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder := metrics.NewRecorder(registry)

	n := buildNotifier(cfg, bot, subscriptions, loc)
	reconciler := app.NewReconcileService(windowRepo, n, recorder, logger.Log.WithField("service", "launches"))
	source := launchlibrary.NewClient(
		cfg.LaunchLibraryBaseURL,
		cfg.LaunchesPath,
		cfg.LaunchLibraryAPIKey,
		cfg.HTTPTimeout,
		logger.Log.WithField("service", "launches"),
	)
	cycle := app.NewCycleService(source, reconciler, recorder, logger.Log.WithField("service", "launches"))

	return &services{
		db:            db,
		windows:       windowRepo,
		subscriptions: subscriptions,
		cycle:         cycle,
		bot:           bot,
		registry:      registry,
	}, nil
}

func (s *services) Close() error {
	return s.db.Close()
}

func newBot(token string) (*telebot.Bot, error) {
	botLogger := logger.Component("telebot")
	pref := telebot.Settings{
		Token:  token,
		Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c telebot.Context) { // Global error handler
			entry := botLogger.WithError(err)
			if c != nil && c.Sender() != nil && c.Chat() != nil {
				entry = entry.WithField("sender_id", c.Sender().ID).WithField("chat_id", c.Chat().ID)
			}
			entry.Error("Telegram handler failed")
		},
	}
	return telebot.NewBot(pref)
}

// buildNotifier fans out to every configured channel, or only logs when none is.
func buildNotifier(cfg *config.AppConfig, bot *telebot.Bot, subscriptions *app.SubscriptionService, loc *time.Location) notifier.Notifier {
	notifierLogger := logger.Component("notifier")

	var channels []notifier.Channel
	if cfg.MailEnabled() {
		channels = append(channels, notifier.Channel{
			Name: "mail",
			Notifier: mail.NewSMTPNotifier(
				cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword,
				cfg.MailFrom, cfg.MailRecipients, loc, logger.Log.WithField("service", "notifier"),
			),
		})
	} else if cfg.SMTPHost != "" {
		notifierLogger.Warn("SMTP_HOST is set but MAIL_FROM or recipients are missing; mail channel disabled")
	}
	if bot != nil {
		channels = append(channels, notifier.Channel{
			Name: "telegram",
			Notifier: telegram.NewNotifier(
				telegram.NewTelebotAdapter(bot), subscriptions, loc, logger.Log.WithField("service", "notifier"),
			),
		})
	}

	if len(channels) == 0 {
		notifierLogger.Warn("No notification channel configured; updates will only be logged")
		return notifier.NewLogNotifier(notifierLogger)
	}
	return notifier.NewMulti(notifierLogger, channels...)
}
