package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/punchclock/internal/domain"
	"github.com/alexanderramin/punchclock/internal/repository"
	"github.com/alexanderramin/punchclock/internal/service"
	"github.com/alexanderramin/punchclock/internal/testutil"
)

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// testEnv wires a full App backed by an in-memory DB for CLI integration tests.
type testEnv struct {
	app      *App
	store    *repository.SQLiteStore
	clock    *testutil.FixedClock
	notifier *service.AsyncNotifier
}

// 2026-10-16 is a Friday.
var testNow = time.Date(2026, 10, 16, 17, 0, 0, 0, time.UTC)

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := repository.NewSQLiteStore(testutil.NewTestDB(t))
	clock := testutil.NewFixedClock(testNow, time.UTC)
	locks := service.NewUserLocks()
	notifier := service.NewAsyncNotifier(store, clock, 16, nil)
	t.Cleanup(notifier.Close)

	return &testEnv{
		app: &App{
			Worktime:      service.NewWorktimeService(store, clock, locks, notifier, nil),
			Stats:         service.NewStatsService(store, clock, nil),
			Sweep:         service.NewSweepService(store, clock, locks, notifier, time.Second, nil),
			Users:         service.NewUserService(store, clock, nil),
			Branches:      service.NewBranchService(store, clock, nil),
			Notifications: service.NewNotificationService(store, nil),
			Clock:         clock,
			SweepInterval: time.Minute,
		},
		store:    store,
		clock:    clock,
		notifier: notifier,
	}
}

func (e *testEnv) seedUser(t *testing.T, opts ...testutil.UserOption) *domain.User {
	t.Helper()
	u := testutil.NewTestUser("Ana", opts...)
	require.NoError(t, e.store.Repos().Users.Create(context.Background(), u))
	return u
}

func (e *testEnv) seed(t *testing.T, opts ...testutil.UserOption) (*domain.User, *domain.Branch) {
	t.Helper()
	u := e.seedUser(t, opts...)
	b := testutil.NewTestBranch("Lisbon")
	require.NoError(t, e.store.Repos().Branches.Create(context.Background(), b))
	return u, b
}

// executeCmd runs a cobra command and captures stdout/stderr.
func executeCmd(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return ansiPattern.ReplaceAllString(buf.String(), ""), err
}

func TestUserAndBranchAdmin(t *testing.T) {
	env := newTestEnv(t)

	out, err := executeCmd(t, env.app, "user", "add", "Bruno", "--cap", "6.5", "--bank", "PT50 0000")
	require.NoError(t, err)
	assert.Contains(t, out, "Created user Bruno")

	out, err = executeCmd(t, env.app, "branch", "add", "Porto")
	require.NoError(t, err)
	assert.Contains(t, out, "Created branch Porto")

	out, err = executeCmd(t, env.app, "user", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Bruno")
	assert.Contains(t, out, "6.5h")

	out, err = executeCmd(t, env.app, "branch", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Porto")

	_, err = executeCmd(t, env.app, "branch", "add", "Porto")
	assert.Equal(t, ExitConflict, ExitCode(err), "branch names are unique")
}

func TestUserSet_ChangesOnlyGivenFlags(t *testing.T) {
	env := newTestEnv(t)
	u, _ := env.seed(t)

	_, err := executeCmd(t, env.app, "user", "set", u.ID, "--cap", "4", "--notify=false", "--org", "org-1")
	require.NoError(t, err)

	got, err := env.store.Repos().Users.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, 4.0, got.NormalWorkingHours)
	assert.False(t, got.NotificationsEnabled)
	assert.Equal(t, u.BankDetails, got.BankDetails)
	require.NotNil(t, got.OrganizationID)
	assert.Equal(t, "org-1", *got.OrganizationID)

	_, err = executeCmd(t, env.app, "user", "set", u.ID, "--cap", "0")
	assert.Equal(t, ExitBadRequest, ExitCode(err))
}

func TestStartActiveStop(t *testing.T) {
	env := newTestEnv(t)
	u, b := env.seed(t)

	out, err := executeCmd(t, env.app, "start", "-u", u.ID, "-b", b.ID, "--at", "2026-10-16T13:00:00Z", "--org", "org-9")
	require.NoError(t, err)
	assert.Contains(t, out, "STARTED")
	assert.Contains(t, out, "Lisbon")
	assert.Contains(t, out, "Running")

	active, err := env.app.Worktime.Active(context.Background(), u.ID)
	require.NoError(t, err)
	require.NotNil(t, active.OrganizationID)
	assert.Equal(t, "org-9", *active.OrganizationID)

	out, err = executeCmd(t, env.app, "active", "-u", u.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "ACTIVE")
	assert.Contains(t, out, "4h 00m")
	assert.Contains(t, out, "4h / 8h")

	out, err = executeCmd(t, env.app, "stop", "-u", u.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "STOPPED")
	assert.Contains(t, out, "2026-10-16 17:00 UTC")

	out, err = executeCmd(t, env.app, "active", "-u", u.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "No active session.")

	out, err = executeCmd(t, env.app, "list", "-u", u.ID, "--date", "2026-10-16")
	require.NoError(t, err)
	assert.Contains(t, out, "Closed")
	assert.Contains(t, out, "Total: 4h 00m")
}

func TestStart_ExitCodes(t *testing.T) {
	env := newTestEnv(t)
	u, b := env.seed(t)
	noBank := env.seedUser(t, testutil.WithoutBankDetails())

	_, err := executeCmd(t, env.app, "start", "-b", b.ID)
	assert.Equal(t, ExitBadRequest, ExitCode(err), "missing --user")

	_, err = executeCmd(t, env.app, "start", "-u", noBank.ID, "-b", b.ID)
	assert.Equal(t, ExitForbidden, ExitCode(err))
	assert.ErrorIs(t, err, service.ErrForbidden)

	_, err = executeCmd(t, env.app, "start", "-u", u.ID, "-b", "missing")
	assert.Equal(t, ExitNotFound, ExitCode(err))

	_, err = executeCmd(t, env.app, "start", "-u", u.ID, "-b", b.ID, "--at", "yesterday")
	assert.Equal(t, ExitBadRequest, ExitCode(err))

	_, err = executeCmd(t, env.app, "start", "-u", u.ID, "-b", b.ID)
	require.NoError(t, err)
	_, err = executeCmd(t, env.app, "start", "-u", u.ID, "-b", b.ID)
	assert.Equal(t, ExitConflict, ExitCode(err))
	assert.EqualError(t, err, service.ReasonSessionRunning)

	_, err = executeCmd(t, env.app, "stop", "-u", noBank.ID)
	assert.Equal(t, ExitNotFound, ExitCode(err))
}

func TestStats(t *testing.T) {
	env := newTestEnv(t)
	u, b := env.seed(t)
	ctx := context.Background()
	mon := time.Date(2026, 10, 12, 9, 0, 0, 0, time.UTC)
	require.NoError(t, env.store.Repos().Sessions.Create(ctx,
		testutil.NewTestSession(u.ID, b.ID, mon, testutil.WithEnd(mon.Add(7*time.Hour+30*time.Minute)))))

	out, err := executeCmd(t, env.app, "stats", "-u", u.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "WEEK 2026-10-12 .. 2026-10-18")
	assert.Contains(t, out, "Monday")
	assert.Contains(t, out, "7.5h")
	assert.Contains(t, out, "Days worked: 1")

	out, err = executeCmd(t, env.app, "stats", "-u", u.ID, "-p", "quinzena", "--start", "2026-10-16")
	require.NoError(t, err)
	assert.Contains(t, out, "QUINZENA 2026-10-16 .. 2026-10-31")

	_, err = executeCmd(t, env.app, "stats", "-u", u.ID, "-p", "month")
	assert.Equal(t, ExitBadRequest, ExitCode(err))

	_, err = executeCmd(t, env.app, "stats", "-u", "nobody")
	assert.Equal(t, ExitNotFound, ExitCode(err))
}

func TestSweep_StopsAtCapAndNotifies(t *testing.T) {
	env := newTestEnv(t)
	u, b := env.seed(t)

	_, err := executeCmd(t, env.app, "start", "-u", u.ID, "-b", b.ID, "--at", "2026-10-16T08:30:00Z")
	require.NoError(t, err)

	out, err := executeCmd(t, env.app, "sweep")
	require.NoError(t, err)
	assert.Contains(t, out, "Checked 1 active sessions, stopped 1, failed 0")

	out, err = executeCmd(t, env.app, "sweep")
	require.NoError(t, err)
	assert.Contains(t, out, "Checked 0 active sessions")

	env.notifier.Close()
	out, err = executeCmd(t, env.app, "notifications", "-u", u.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Worktime stopped automatically")
	assert.Contains(t, out, "Worktime started")
}

func TestEditAndDelete(t *testing.T) {
	env := newTestEnv(t)
	u, b := env.seed(t)
	s := testutil.NewTestSession(u.ID, b.ID, time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC))
	require.NoError(t, env.store.Repos().Sessions.Create(context.Background(), s))

	_, err := executeCmd(t, env.app, "edit", s.ID)
	assert.Equal(t, ExitBadRequest, ExitCode(err), "nothing to change")

	_, err = executeCmd(t, env.app, "edit", s.ID, "--end", "2026-10-15T08:00:00")
	assert.Equal(t, ExitBadRequest, ExitCode(err), "end before start")

	out, err := executeCmd(t, env.app, "edit", s.ID, "--end", "2026-10-15T12:00:00")
	require.NoError(t, err)
	assert.Contains(t, out, "3h 00m")

	_, err = executeCmd(t, env.app, "edit", s.ID, "--reopen", "--end", "2026-10-15T12:00:00")
	assert.Equal(t, ExitBadRequest, ExitCode(err))

	out, err = executeCmd(t, env.app, "delete", s.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted session "+s.ID)

	_, err = executeCmd(t, env.app, "delete", s.ID)
	assert.Equal(t, ExitNotFound, ExitCode(err))
}

func TestServe_StopsOnCancel(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := context.WithCancel(context.Background())

	root := NewRootCmd(env.app)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetArgs([]string{"serve", "--interval", "10ms"})

	done := make(chan error, 1)
	go func() { done <- root.ExecuteContext(ctx) }()
	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("serve did not stop")
	}

	_, err := executeCmd(t, env.app, "serve", "--interval", "-1s")
	assert.Equal(t, ExitBadRequest, ExitCode(err))
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, ExitOK},
		{&usageError{msg: "x"}, ExitBadRequest},
		{&service.Error{Kind: service.ErrBadRequest}, ExitBadRequest},
		{fmt.Errorf("wrapped: %w", &service.Error{Kind: service.ErrNotFound}), ExitNotFound},
		{&service.Error{Kind: service.ErrConflict}, ExitConflict},
		{&service.Error{Kind: service.ErrForbidden}, ExitForbidden},
		{&service.Error{Kind: service.ErrInternal}, ExitInternal},
		{errors.New("boom"), ExitInternal},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExitCode(tt.err), "%v", tt.err)
	}
}
