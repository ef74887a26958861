package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/punchclock/internal/cli/formatter"
	"github.com/alexanderramin/punchclock/internal/scheduler"
)

func newSweepCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Stop every running session whose user reached the daily cap",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := app.Sweep.Sweep(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatSweepResult(res))
			return nil
		},
	}
}

func newServeCmd(app *App) *cobra.Command {
	var interval string
	var lockFile string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the overrun sweep on a fixed cadence until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			every := app.SweepInterval
			if cmd.Flags().Changed("interval") {
				d, err := parsePositiveDuration(interval)
				if err != nil {
					return &usageError{msg: fmt.Sprintf("--interval: %v", err)}
				}
				every = d
			}
			if !cmd.Flags().Changed("lock-file") {
				lockFile = app.SweepLockFile
			}

			s := scheduler.New(app.Sweep, every, app.Logger, scheduler.WithLockFile(lockFile))
			fmt.Fprintf(cmd.OutOrStdout(), "Sweeping every %s, press Ctrl+C to stop\n", every)
			return s.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&interval, "interval", "", "Sweep cadence, e.g. 2m (overrides config)")
	cmd.Flags().StringVar(&lockFile, "lock-file", "", "Lock file shared with other sweepers (overrides config)")

	return cmd
}
