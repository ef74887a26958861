package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/alexanderramin/punchclock/internal/cli/formatter"
	"github.com/alexanderramin/punchclock/internal/domain"
)

// userFlags are shared by "user add" and "user set".
type userFlags struct {
	capHours float64
	bank     string
	notify   bool
}

func (f *userFlags) register(fs *pflag.FlagSet) {
	fs.Float64Var(&f.capHours, "cap", 8, "Daily cap in hours")
	fs.StringVar(&f.bank, "bank", "", "Bank details; required before starting sessions")
	fs.BoolVar(&f.notify, "notify", true, "Record worktime notifications")
}

// apply copies the flags the caller set onto u. The persistent --org
// flag sets the user's organization; an empty value clears it.
func (f *userFlags) apply(fs *pflag.FlagSet, global *globalFlags, u *domain.User) {
	if fs.Changed("cap") {
		u.NormalWorkingHours = f.capHours
	}
	if fs.Changed("bank") {
		u.BankDetails = f.bank
	}
	if fs.Changed("notify") {
		u.NotificationsEnabled = f.notify
	}
	if fs.Changed("org") {
		u.OrganizationID = nil
		if global.orgID != "" {
			org := global.orgID
			u.OrganizationID = &org
		}
	}
}

func newUserCmd(app *App, flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}
	cmd.AddCommand(newUserAddCmd(app, flags), newUserListCmd(app), newUserSetCmd(app, flags))
	return cmd
}

func newUserAddCmd(app *App, flags *globalFlags) *cobra.Command {
	f := &userFlags{}

	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Create a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u := &domain.User{
				Name:                 args[0],
				NormalWorkingHours:   f.capHours,
				NotificationsEnabled: f.notify,
			}
			f.apply(cmd.Flags(), flags, u)
			if err := app.Users.Create(cmd.Context(), u); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created user %s (%s)\n", u.Name, u.ID)
			return nil
		},
	}
	f.register(cmd.Flags())
	return cmd
}

func newUserListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List users",
		RunE: func(cmd *cobra.Command, args []string) error {
			users, err := app.Users.List(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatUsers(users))
			return nil
		},
	}
}

func newUserSetCmd(app *App, flags *globalFlags) *cobra.Command {
	f := &userFlags{}

	cmd := &cobra.Command{
		Use:   "set ID",
		Short: "Change a user's cap, bank details or notification flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			u, err := app.Users.GetByID(ctx, args[0])
			if err != nil {
				return err
			}
			f.apply(cmd.Flags(), flags, u)
			u.UpdatedAt = app.Clock.Now().UTC()
			if err := app.Users.Update(ctx, u); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated user %s\n", u.ID)
			return nil
		},
	}
	f.register(cmd.Flags())
	return cmd
}

func newBranchCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "branch",
		Short: "Manage branches",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "add NAME",
			Short: "Create a branch",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				b, err := app.Branches.Create(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created branch %s (%s)\n", b.Name, b.ID)
				return nil
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List branches",
			RunE: func(cmd *cobra.Command, args []string) error {
				branches, err := app.Branches.List(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), formatter.FormatBranches(branches))
				return nil
			},
		},
	)
	return cmd
}

func newNotificationsCmd(app *App, flags *globalFlags) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:     "notifications",
		Aliases: []string{"notes"},
		Short:   "List a user's worktime notifications, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := flags.requireUser()
			if err != nil {
				return err
			}
			list, err := app.Notifications.ListByUser(cmd.Context(), userID, limit)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatNotifications(list, app.Clock.Location()))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum notifications to show (0 for all)")

	return cmd
}

func parsePositiveDuration(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("must be positive, got %s", d)
	}
	return d, nil
}
