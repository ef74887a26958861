package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/pflag"

	"github.com/alexanderramin/punchclock/internal/cli"
	"github.com/alexanderramin/punchclock/internal/cli/formatter"
	"github.com/alexanderramin/punchclock/internal/config"
	"github.com/alexanderramin/punchclock/internal/logging"
	"github.com/alexanderramin/punchclock/internal/pgstore"
	"github.com/alexanderramin/punchclock/internal/repository"
	"github.com/alexanderramin/punchclock/internal/service"
	"github.com/alexanderramin/punchclock/internal/timecalc"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.ExitCode(err))
	}
}

// configFlag pulls --config out of args before cobra runs, since the
// services cobra dispatches to are built from the loaded config.
func configFlag(args []string) string {
	fs := pflag.NewFlagSet("punchclock", pflag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.Usage = func() {}
	fs.SetOutput(io.Discard)
	path := fs.String("config", "", "")
	_ = fs.Parse(args)
	return *path
}

func openStore(ctx context.Context, cfg config.Store) (repository.Store, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		s, err := pgstore.Open(ctx, cfg.URL)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverSQLite:
		s, err := repository.OpenSQLiteStore(cfg.Path)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
}

func run(args []string) error {
	cfg, err := config.Load(configFlag(args))
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	loc, err := timecalc.ResolveLocalZone(cfg.Timezone)
	if err != nil {
		return err
	}

	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		formatter.DisableColor()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer store.Close()

	// Wire services
	clock := service.NewSystemClock(loc)
	locks := service.NewUserLocks()
	notifier := service.NewAsyncNotifier(store, clock, cfg.Notify.QueueSize, logger)
	defer notifier.Close()
	observer := service.NewLogUseCaseObserver(logger)

	app := &cli.App{
		Worktime:      service.NewWorktimeService(store, clock, locks, notifier, logger, observer),
		Stats:         service.NewStatsService(store, clock, logger, observer),
		Sweep:         service.NewSweepService(store, clock, locks, notifier, cfg.Sweep.ItemTimeout.Duration, logger, observer),
		Users:         service.NewUserService(store, clock, logger),
		Branches:      service.NewBranchService(store, clock, logger),
		Notifications: service.NewNotificationService(store, logger),
		Clock:         clock,
		Logger:        logger,
		SweepInterval: cfg.Sweep.Interval.Duration,
		SweepLockFile: cfg.Sweep.LockFile,
	}

	root := cli.NewRootCmd(app)
	root.SetArgs(args)
	err = root.ExecuteContext(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
