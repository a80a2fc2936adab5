package cli

import (
	"errors"
	"fmt"
	"time"

	"launch_notifier/internal/domain/launch"
	idb "launch_notifier/internal/infra/database"
	"launch_notifier/internal/infra/telegram"

	"github.com/spf13/cobra"
)

// WindowOptions holds flags for the window command.
type WindowOptions struct {
	*RootOptions
	Now    string
	Stored bool
}

// NewWindowCommand creates the window command.
func NewWindowCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &WindowOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "window",
		Short: "Print the upcoming week window",
		Long: `Print the week window that a cycle at --now would reconcile, and with
--stored the launches currently stored for it.

Example:
  launchbot window --now 2025-03-16T23:59:59Z
  launchbot window --stored`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showWindow(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Now, "now", "", "reference time in RFC3339 (default: current time)")
	cmd.Flags().BoolVar(&opts.Stored, "stored", false, "also print the launches stored for the window")

	return cmd
}

func showWindow(cmd *cobra.Command, opts *WindowOptions) error {
	cfg := opts.cfg
	loc := cfg.Location()
	now, err := parseNow(opts.Now, loc)
	if err != nil {
		return err
	}

	key := launch.NewWindowKey(now)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "week %d/%d\n", key.WeekNumber, key.Year)
	fmt.Fprintf(out, "start: %s\n", key.Start.Format(time.RFC3339))
	fmt.Fprintf(out, "end:   %s\n", key.End.Format(time.RFC3339))

	if !opts.Stored {
		return nil
	}

	db, err := idb.Open(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("could not connect to database: %w", err)
	}
	defer db.Close()

	w, err := idb.NewWindowRepository(db).GetWindow(cmd.Context(), key.WeekNumber, key.Year)
	if err != nil {
		if errors.Is(err, launch.ErrWindowNotFound) {
			fmt.Fprintln(out, "\nnothing stored yet")
			return nil
		}
		return err
	}
	fmt.Fprintf(out, "\n%s\n", telegram.FormatInitial(w, loc))
	return nil
}
