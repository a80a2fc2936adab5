package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Now string
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a single fetch-reconcile-notify cycle",
		Long: `Run one cycle for the week following --now (default: the current time)
and exit. Useful from an external scheduler or for backfilling a week.

Example:
  launchbot run
  launchbot run --now 2025-03-13T10:00:00Z`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCycle(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Now, "now", "", "reference time in RFC3339 (default: current time)")

	return cmd
}

func runCycle(cmd *cobra.Command, opts *RunOptions) error {
	cfg := opts.cfg
	now, err := parseNow(opts.Now, cfg.Location())
	if err != nil {
		return err
	}

	svc, err := buildServices(cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithTimeout(parentCtx, cfg.CycleTimeout)
	defer cancel()

	w, err := svc.cycle.RunOnce(ctx, now)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if w == nil {
		fmt.Fprintln(out, "no launches scheduled for the upcoming week")
		return nil
	}
	fmt.Fprintf(out, "week %d/%d: %d launches stored, notified: %t\n", w.WeekNumber, w.Year, len(w.Launches), w.Notified())
	return nil
}
