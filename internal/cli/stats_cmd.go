package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/punchclock/internal/cli/formatter"
	"github.com/alexanderramin/punchclock/internal/domain"
)

func newStatsCmd(app *App, flags *globalFlags) *cobra.Command {
	var period, start string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show worked hours for a week or quinzena",
		Long: `Show total, average and per-day hours for a reporting period.

A week runs Monday to Sunday. A quinzena is the 1st-15th or the 16th to
the end of the month. --start picks the period containing that date;
without it the current period is used.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := flags.requireUser()
			if err != nil {
				return err
			}
			kind, err := domain.ParsePeriodKind(period)
			if err != nil {
				return &usageError{msg: err.Error()}
			}
			var ref *domain.Date
			if start != "" {
				d, err := domain.ParseDate(start)
				if err != nil {
					return &usageError{msg: fmt.Sprintf("--start: %v", err)}
				}
				ref = &d
			}

			st, err := app.Stats.Stats(cmd.Context(), userID, kind, ref)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatStats(st))
			return nil
		},
	}

	cmd.Flags().StringVarP(&period, "period", "p", string(domain.PeriodWeek), "Period kind: week or quinzena")
	cmd.Flags().StringVar(&start, "start", "", "A date inside the period (YYYY-MM-DD)")

	return cmd
}
