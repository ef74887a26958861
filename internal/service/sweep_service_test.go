package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/punchclock/internal/domain"
	"github.com/alexanderramin/punchclock/internal/repository"
	"github.com/alexanderramin/punchclock/internal/testutil"
)

// Sao Paulo is UTC-3 all year, so 09:00 local is 12:00 UTC.
func saoPauloFixture(t *testing.T, hour, min int) *fixture {
	t.Helper()
	return newFixture(t, utc(2024, 3, 11, hour+3, min), testutil.MustLoadLocation("America/Sao_Paulo"))
}

func TestSweep_StopsSessionAtDailyCap(t *testing.T) {
	f := saoPauloFixture(t, 9, 0)
	ctx := context.Background()
	user := f.seedUser(t, testutil.WithNormalHours(8))
	branch := f.seedBranch(t, "Centro")

	_, err := f.worktime.Start(ctx, StartRequest{UserID: user.ID, BranchID: branch.ID})
	require.NoError(t, err)

	f.clock.Set(utc(2024, 3, 11, 19, 59))
	res, err := f.sweep.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, SweepResult{Checked: 1}, res, "16:59 local is below the cap")

	f.clock.Set(utc(2024, 3, 11, 20, 0))
	res, err = f.sweep.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, SweepResult{Checked: 1, Stopped: 1}, res)

	active, err := f.worktime.Active(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, active)

	sessions, err := f.store.Repos().Sessions.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	require.NotNil(t, sessions[0].EndTime)
	assert.True(t, utc(2024, 3, 11, 20, 0).Equal(*sessions[0].EndTime))

	f.clock.Set(utc(2024, 3, 11, 21, 0))
	_, err = f.worktime.Start(ctx, StartRequest{UserID: user.ID, BranchID: branch.ID})
	require.ErrorIs(t, err, ErrForbidden)
	assert.EqualError(t, err, ReasonCapReached)

	notes := f.notifications(t, user.ID)
	assert.ElementsMatch(t, []domain.NotificationKind{domain.NotifyStart, domain.NotifyAutoStop}, kinds(notes))
	for _, n := range notes {
		if n.Kind == domain.NotifyAutoStop {
			assert.Equal(t, "Worktime stopped automatically", n.Title)
			assert.Contains(t, n.Message, "8 hours")
			assert.Equal(t, sessions[0].ID, n.RelatedEntityID)
		}
	}
}

func TestSweep_IsIdempotent(t *testing.T) {
	f := saoPauloFixture(t, 18, 0)
	ctx := context.Background()
	user := f.seedUser(t, testutil.WithNormalHours(8))
	branch := f.seedBranch(t, "Centro")
	f.seedSession(t, user.ID, branch.ID, utc(2024, 3, 11, 12, 0))

	first, err := f.sweep.Sweep(ctx)
	require.NoError(t, err)
	second, err := f.sweep.Sweep(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, first.Stopped)
	assert.Equal(t, SweepResult{}, second)

	notes := f.notifications(t, user.ID)
	assert.Equal(t, []domain.NotificationKind{domain.NotifyAutoStop}, kinds(notes))
}

func TestSweep_CountsClosedSessionsFromToday(t *testing.T) {
	// 06:00-10:00 local closed, running since 10:30 local, sweep at 14:30.
	f := saoPauloFixture(t, 14, 30)
	ctx := context.Background()
	user := f.seedUser(t, testutil.WithNormalHours(8))
	branch := f.seedBranch(t, "Centro")
	f.seedSession(t, user.ID, branch.ID, utc(2024, 3, 11, 9, 0), testutil.WithEnd(utc(2024, 3, 11, 13, 0)))
	f.seedSession(t, user.ID, branch.ID, utc(2024, 3, 11, 13, 30))

	res, err := f.sweep.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Stopped)
}

func TestSweep_IgnoresYesterdayOnServerClock(t *testing.T) {
	// 10 hours worked yesterday, running for an hour today.
	f := saoPauloFixture(t, 9, 0)
	ctx := context.Background()
	user := f.seedUser(t, testutil.WithNormalHours(8))
	branch := f.seedBranch(t, "Centro")
	f.seedSession(t, user.ID, branch.ID, utc(2024, 3, 10, 11, 0), testutil.WithEnd(utc(2024, 3, 10, 21, 0)))
	f.seedSession(t, user.ID, branch.ID, utc(2024, 3, 11, 11, 0))

	res, err := f.sweep.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, SweepResult{Checked: 1}, res)
}

func TestSweep_FailureDoesNotStopOtherSessions(t *testing.T) {
	database := testutil.NewTestDB(t)
	seed := repository.NewSQLiteStore(database)
	ctx := context.Background()

	branch := testutil.NewTestBranch("Centro")
	require.NoError(t, seed.Repos().Branches.Create(ctx, branch))
	var sessions []*domain.WorkSession
	for _, name := range []string{"Ana", "Rui", "Eva"} {
		u := testutil.NewTestUser(name, testutil.WithNormalHours(1))
		require.NoError(t, seed.Repos().Users.Create(ctx, u))
		s := testutil.NewTestSession(u.ID, branch.ID, utc(2024, 3, 11, 9, 0))
		require.NoError(t, seed.Repos().Sessions.Create(ctx, s))
		sessions = append(sessions, s)
	}
	broken := sessions[1].ID

	uow := &testutil.FailingUoW{
		DB: database,
		Match: func(query string, args []any) bool {
			return strings.Contains(query, "UPDATE work_sessions") && testutil.ArgsContain(args, broken)
		},
		Err: errors.New("disk on fire"),
	}
	f := newFixtureWithStore(t, repository.NewSQLiteStoreWithUoW(database, uow), utc(2024, 3, 11, 12, 0), nil)

	res, err := f.sweep.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, SweepResult{Checked: 3, Stopped: 2, Failed: 1}, res)

	active, err := seed.Repos().Sessions.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, broken, active[0].ID)
}

func TestSweep_SkipsSessionClosedAfterListing(t *testing.T) {
	f := saoPauloFixture(t, 18, 0)
	ctx := context.Background()
	user := f.seedUser(t, testutil.WithNormalHours(8))
	branch := f.seedBranch(t, "Centro")
	sess := f.seedSession(t, user.ID, branch.ID, utc(2024, 3, 11, 12, 0))

	sweeper := f.sweep.(*sweepService)
	_, err := f.worktime.Stop(ctx, StopRequest{UserID: user.ID})
	require.NoError(t, err)

	stopped, err := sweeper.sweepOne(ctx, sess.ID, user.ID)
	require.NoError(t, err)
	assert.False(t, stopped)
}

func TestSweep_CancelledContext(t *testing.T) {
	f := saoPauloFixture(t, 18, 0)
	user := f.seedUser(t)
	branch := f.seedBranch(t, "Centro")
	f.seedSession(t, user.ID, branch.ID, utc(2024, 3, 11, 12, 0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.sweep.Sweep(ctx)
	assert.Error(t, err)
}
