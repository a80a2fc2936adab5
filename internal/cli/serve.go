package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"launch_notifier/internal/infra/logger"
	"launch_notifier/internal/infra/metrics"
	"launch_notifier/internal/infra/scheduler"
	"launch_notifier/internal/infra/telegram"

	"github.com/spf13/cobra"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	RunOnStart bool
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the scheduler, the Telegram bot and the metrics endpoint",
		Long: `Start the long-running notifier.

Every CRON_SPEC tick fetches the launches of the upcoming week, reconciles
them with the stored window and sends notifications. When TELEGRAM_TOKEN is
set the bot answers /subscribe, /unsubscribe and /week. When METRICS_ADDR is
set Prometheus metrics are served on /metrics.

Example:
  launchbot serve
  launchbot serve --run-on-start`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.RunOnStart, "run-on-start", false, "run one cycle immediately instead of waiting for the first tick")

	return cmd
}

func serve(cmd *cobra.Command, opts *ServeOptions) error {
	cfg := opts.cfg
	mainLogger := logger.Component("main")
	mainLogger.Info("Launch notifier starting...")

	svc, err := buildServices(cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cycleScheduler := scheduler.NewCycleScheduler(
		svc.cycle,
		logger.Component("scheduler"),
		cfg.CronSpec,
		cfg.CycleTimeout,
		cfg.Location(),
	)
	if err := cycleScheduler.Start(); err != nil {
		return err
	}

	if opts.RunOnStart {
		cycleScheduler.RunNow()
	}

	if svc.bot != nil {
		handler := telegram.NewCommandHandler(svc.subscriptions, svc.windows, cfg.Location(), logger.Component("bot_commands"))
		telegram.RegisterBotCommands(ctx, svc.bot, handler)
		mainLogger.Info("Telegram command handlers registered.")
		// Start bot in a goroutine so it doesn't block graceful shutdown handling
		go svc.bot.Start()
	}

	var metricsServer *metrics.Server
	if cfg.MetricsAddr != "" {
		metricsServer = metrics.NewServer(cfg.MetricsAddr, svc.registry)
		go func() {
			if err := metricsServer.Serve(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				mainLogger.WithError(err).Error("Metrics server stopped")
			}
		}()
		mainLogger.WithField("addr", cfg.MetricsAddr).Info("Metrics endpoint listening.")
	}

	mainLogger.Info("Application setup complete.")
	<-ctx.Done() // Block until a signal is received

	mainLogger.Info("Shutting down application...")
	cycleScheduler.Stop()
	if svc.bot != nil {
		svc.bot.Stop()
	}
	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			mainLogger.WithError(err).Warn("Metrics server shutdown failed")
		}
	}
	mainLogger.Info("Application shut down gracefully.")
	return nil
}
