package cli

import (
	"fmt"
	"time"

	"launch_notifier/internal/infra/config"
	"launch_notifier/internal/infra/logger"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags and the configuration shared by all commands.
type RootOptions struct {
	Verbose bool

	cfg *config.AppConfig
}

// NewRootCommand creates the root command for the launch notifier CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "launchbot",
		Short: "Weekly rocket launch notifier",
		Long: `Tracks the rocket launches planned for the upcoming week and notifies
subscribers by mail and Telegram when the schedule is first known and
whenever a launch is added or changes.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("could not load application configuration: %w", err)
			}
			if opts.Verbose {
				cfg.LogLevel = "debug"
			}
			logger.Init(cfg)
			logger.Log.WithFields(logrus.Fields{
				"log_level":   cfg.LogLevel,
				"environment": cfg.Environment,
				"db_driver":   cfg.DBDriver,
			}).Debug("Configuration loaded")
			opts.cfg = cfg
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewWindowCommand(opts))

	return cmd
}

// parseNow returns the instant a command should act on: the --now flag when
// given, the current time otherwise, expressed in loc.
func parseNow(value string, loc *time.Location) (time.Time, error) {
	if value == "" {
		return time.Now().In(loc), nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --now %q (want RFC3339): %w", value, err)
	}
	return t.In(loc), nil
}
