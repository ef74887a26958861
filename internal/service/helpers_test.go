package service

import (
	"context"
	"testing"
	"time"

	_ "time/tzdata"

	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/punchclock/internal/domain"
	"github.com/alexanderramin/punchclock/internal/repository"
	"github.com/alexanderramin/punchclock/internal/testutil"
)

type fixture struct {
	store    *repository.SQLiteStore
	clock    *testutil.FixedClock
	locks    *UserLocks
	notifier *AsyncNotifier
	worktime WorktimeService
	stats    StatsService
	sweep    SweepService
}

func newFixture(t *testing.T, now time.Time, loc *time.Location) *fixture {
	t.Helper()
	return newFixtureWithStore(t, repository.NewSQLiteStore(testutil.NewTestDB(t)), now, loc)
}

func newFixtureWithStore(t *testing.T, store *repository.SQLiteStore, now time.Time, loc *time.Location) *fixture {
	t.Helper()
	clock := testutil.NewFixedClock(now, loc)
	locks := NewUserLocks()
	notifier := NewAsyncNotifier(store, clock, 16, nil)
	t.Cleanup(notifier.Close)
	return &fixture{
		store:    store,
		clock:    clock,
		locks:    locks,
		notifier: notifier,
		worktime: NewWorktimeService(store, clock, locks, notifier, nil),
		stats:    NewStatsService(store, clock, nil),
		sweep:    NewSweepService(store, clock, locks, notifier, time.Second, nil),
	}
}

func (f *fixture) seedUser(t *testing.T, opts ...testutil.UserOption) *domain.User {
	t.Helper()
	u := testutil.NewTestUser("Ana", opts...)
	require.NoError(t, f.store.Repos().Users.Create(context.Background(), u))
	return u
}

func (f *fixture) seedBranch(t *testing.T, name string) *domain.Branch {
	t.Helper()
	b := testutil.NewTestBranch(name)
	require.NoError(t, f.store.Repos().Branches.Create(context.Background(), b))
	return b
}

func (f *fixture) seedSession(t *testing.T, userID, branchID string, start time.Time, opts ...testutil.SessionOption) *domain.WorkSession {
	t.Helper()
	s := testutil.NewTestSession(userID, branchID, start, opts...)
	require.NoError(t, f.store.Repos().Sessions.Create(context.Background(), s))
	return s
}

// notifications drains the notifier and returns what was stored for
// userID. Order is not significant under a frozen clock.
func (f *fixture) notifications(t *testing.T, userID string) []*domain.Notification {
	t.Helper()
	f.notifier.Close()
	list, err := f.store.Repos().Notifications.ListByUser(context.Background(), userID, 0)
	require.NoError(t, err)
	return list
}

func kinds(list []*domain.Notification) []domain.NotificationKind {
	out := make([]domain.NotificationKind, 0, len(list))
	for _, n := range list {
		out = append(out, n.Kind)
	}
	return out
}

func utc(y int, m time.Month, d, h, min int) time.Time {
	return time.Date(y, m, d, h, min, 0, 0, time.UTC)
}

func ptr[T any](v T) *T { return &v }
