package cli

import (
	"errors"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/punchclock/internal/service"
)

// App holds references to all service interfaces used by CLI commands.
type App struct {
	Worktime      service.WorktimeService
	Stats         service.StatsService
	Sweep         service.SweepService
	Users         service.UserService
	Branches      service.BranchService
	Notifications service.NotificationService
	Clock         service.Clock
	Logger        *slog.Logger

	// Settings for the serve command.
	SweepInterval time.Duration
	SweepLockFile string
}

// globalFlags are the persistent flags shared by every subcommand.
type globalFlags struct {
	configPath string
	userID     string
	orgID      string
}

// NewRootCmd creates the top-level "punchclock" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:           "punchclock",
		Short:         "Worktime tracking with daily cap enforcement",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// --config is consumed by main before the App exists; it is declared
	// here so cobra accepts it.
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "Path to a TOML config file")
	root.PersistentFlags().StringVarP(&flags.userID, "user", "u", "", "User ID the command acts for")
	root.PersistentFlags().StringVar(&flags.orgID, "org", "", "Organization ID for new sessions and users")

	root.AddCommand(
		newStartCmd(app, flags),
		newStopCmd(app, flags),
		newActiveCmd(app, flags),
		newListCmd(app, flags),
		newStatsCmd(app, flags),
		newEditCmd(app),
		newDeleteCmd(app),
		newSweepCmd(app),
		newServeCmd(app),
		newUserCmd(app, flags),
		newBranchCmd(app),
		newNotificationsCmd(app, flags),
	)

	return root
}

// usageError is a malformed invocation caught before any service call.
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

func (f *globalFlags) requireUser() (string, error) {
	if f.userID == "" {
		return "", &usageError{msg: "--user is required"}
	}
	return f.userID, nil
}

// Process exit codes, one per error kind.
const (
	ExitOK         = 0
	ExitInternal   = 1
	ExitBadRequest = 2
	ExitNotFound   = 3
	ExitConflict   = 4
	ExitForbidden  = 5
)

// ExitCode maps an error returned by a command onto a process exit code.
func ExitCode(err error) int {
	var ue *usageError
	switch {
	case err == nil:
		return ExitOK
	case errors.As(err, &ue), errors.Is(err, service.ErrBadRequest):
		return ExitBadRequest
	case errors.Is(err, service.ErrNotFound):
		return ExitNotFound
	case errors.Is(err, service.ErrConflict):
		return ExitConflict
	case errors.Is(err, service.ErrForbidden):
		return ExitForbidden
	}
	return ExitInternal
}
