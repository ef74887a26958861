package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/punchclock/internal/cli/formatter"
	"github.com/alexanderramin/punchclock/internal/service"
)

func newStartCmd(app *App, flags *globalFlags) *cobra.Command {
	var branchID, at string

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start a work session",
		Long:  "Start a work session at a branch. Refused while another session is running, without bank details, or once today's cap is reached.",
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := flags.requireUser()
			if err != nil {
				return err
			}
			req := service.StartRequest{UserID: userID, BranchID: branchID, StartTime: at}
			if flags.orgID != "" {
				req.OrganizationID = &flags.orgID
			}
			s, err := app.Worktime.Start(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatSession("Started", s, app.Clock.Now()))
			return nil
		},
	}

	cmd.Flags().StringVarP(&branchID, "branch", "b", "", "Branch ID")
	cmd.Flags().StringVar(&at, "at", "", "Start instant (RFC 3339); defaults to now")
	_ = cmd.MarkFlagRequired("branch")

	return cmd
}

func newStopCmd(app *App, flags *globalFlags) *cobra.Command {
	var at string
	var force bool

	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the running work session",
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := flags.requireUser()
			if err != nil {
				return err
			}
			s, err := app.Worktime.Stop(cmd.Context(), service.StopRequest{UserID: userID, EndTime: at, Force: force})
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatSession("Stopped", s, app.Clock.Now()))
			return nil
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "End instant (RFC 3339); defaults to now")
	cmd.Flags().BoolVar(&force, "force", false, "Accept an end instant before the start")

	return cmd
}

func newActiveCmd(app *App, flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "active",
		Short: "Show the running session and today's total",
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := flags.requireUser()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			user, err := app.Users.GetByID(ctx, userID)
			if err != nil {
				return err
			}
			s, err := app.Worktime.Active(ctx, userID)
			if err != nil {
				return err
			}
			now := app.Clock.Now()
			worked, err := app.Stats.DayTotal(ctx, userID, now)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if s == nil {
				fmt.Fprintln(out, formatter.Dim("No active session."))
			} else {
				fmt.Fprint(out, formatter.FormatSession("Active", s, now))
			}
			fmt.Fprint(out, formatter.FormatDayUsage(worked, user.NormalWorkingHours))
			return nil
		},
	}
}

func newListCmd(app *App, flags *globalFlags) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List work sessions",
		Long:  "List work sessions for one server-local day (--date YYYY-MM-DD), or all of them.",
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := flags.requireUser()
			if err != nil {
				return err
			}
			sessions, err := app.Worktime.ListForDate(cmd.Context(), userID, date)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatSessionList(sessions, app.Clock.Now()))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Day to list (YYYY-MM-DD)")

	return cmd
}

func newEditCmd(app *App) *cobra.Command {
	var start, end, branchID string
	var reopen bool

	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Correct a work session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var upd service.SessionUpdate
			if cmd.Flags().Changed("start") {
				upd.StartTime = &start
			}
			if cmd.Flags().Changed("end") {
				upd.EndTime = &end
			}
			if cmd.Flags().Changed("branch") {
				upd.BranchID = &branchID
			}
			upd.ClearEnd = reopen
			if upd == (service.SessionUpdate{}) {
				return &usageError{msg: "nothing to change: pass --start, --end, --branch or --reopen"}
			}
			if reopen && upd.EndTime != nil {
				return &usageError{msg: "--reopen and --end are mutually exclusive"}
			}

			s, err := app.Worktime.Update(cmd.Context(), args[0], upd)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatSession("Updated", s, app.Clock.Now()))
			return nil
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "New start instant")
	cmd.Flags().StringVar(&end, "end", "", "New end instant")
	cmd.Flags().StringVar(&branchID, "branch", "", "New branch ID")
	cmd.Flags().BoolVar(&reopen, "reopen", false, "Clear the end so the session runs again")

	return cmd
}

func newDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a work session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Worktime.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted session %s\n", args[0])
			return nil
		},
	}
}
