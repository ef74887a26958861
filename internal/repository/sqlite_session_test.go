package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/punchclock/internal/domain"
	"github.com/alexanderramin/punchclock/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sessionTestSetup creates the user and branch that session rows reference.
func sessionTestSetup(t *testing.T) (*SQLiteSessionRepo, string, string) {
	t.Helper()
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	user := testutil.NewTestUser("Ana")
	require.NoError(t, NewSQLiteUserRepo(db).Create(ctx, user))
	branch := testutil.NewTestBranch("Centro")
	require.NoError(t, NewSQLiteBranchRepo(db).Create(ctx, branch))

	return NewSQLiteSessionRepo(db), user.ID, branch.ID
}

func at(hour, min int) time.Time {
	return time.Date(2024, 3, 11, hour, min, 0, 0, time.UTC)
}

func TestSessionRepo_CreateAndGetByID(t *testing.T) {
	repo, userID, branchID := sessionTestSetup(t)
	ctx := context.Background()

	sess := testutil.NewTestSession(userID, branchID, at(9, 0),
		testutil.WithEnd(at(12, 30)),
		testutil.WithTimezone("Europe/Lisbon"),
		testutil.WithSessionOrganization("org-1"),
	)
	require.NoError(t, repo.Create(ctx, sess))

	fetched, err := repo.GetByID(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, userID, fetched.UserID)
	assert.Equal(t, "Centro", fetched.BranchName)
	assert.True(t, at(9, 0).Equal(fetched.StartTime))
	require.NotNil(t, fetched.EndTime)
	assert.True(t, at(12, 30).Equal(*fetched.EndTime))
	assert.Equal(t, "Europe/Lisbon", fetched.Timezone)
	require.NotNil(t, fetched.OrganizationID)
	assert.Equal(t, "org-1", *fetched.OrganizationID)
	assert.False(t, fetched.Active())
}

func TestSessionRepo_GetByID_NotFound(t *testing.T) {
	repo, _, _ := sessionTestSetup(t)

	_, err := repo.GetByID(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSessionRepo_FindActiveByUser(t *testing.T) {
	repo, userID, branchID := sessionTestSetup(t)
	ctx := context.Background()

	_, err := repo.FindActiveByUser(ctx, userID)
	assert.ErrorIs(t, err, ErrNotFound)

	closed := testutil.NewTestSession(userID, branchID, at(8, 0), testutil.WithEnd(at(9, 0)))
	running := testutil.NewTestSession(userID, branchID, at(10, 0))
	require.NoError(t, repo.Create(ctx, closed))
	require.NoError(t, repo.Create(ctx, running))

	active, err := repo.FindActiveByUser(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, running.ID, active.ID)
	assert.Nil(t, active.EndTime)
}

func TestSessionRepo_SecondActiveSessionRejected(t *testing.T) {
	repo, userID, branchID := sessionTestSetup(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testutil.NewTestSession(userID, branchID, at(9, 0))))
	err := repo.Create(ctx, testutil.NewTestSession(userID, branchID, at(10, 0)))
	assert.ErrorIs(t, err, ErrActiveSessionExists)
}

func TestSessionRepo_ReopenWhileAnotherRunningRejected(t *testing.T) {
	repo, userID, branchID := sessionTestSetup(t)
	ctx := context.Background()

	closed := testutil.NewTestSession(userID, branchID, at(8, 0), testutil.WithEnd(at(9, 0)))
	require.NoError(t, repo.Create(ctx, closed))
	require.NoError(t, repo.Create(ctx, testutil.NewTestSession(userID, branchID, at(10, 0))))

	closed.EndTime = nil
	assert.ErrorIs(t, repo.Update(ctx, closed), ErrActiveSessionExists)
}

func TestSessionRepo_ListByUserInRange_HalfOpen(t *testing.T) {
	repo, userID, branchID := sessionTestSetup(t)
	ctx := context.Background()

	before := testutil.NewTestSession(userID, branchID, at(7, 0), testutil.WithEnd(at(8, 0)))
	atFrom := testutil.NewTestSession(userID, branchID, at(8, 0), testutil.WithEnd(at(9, 0)))
	inside := testutil.NewTestSession(userID, branchID, at(11, 0), testutil.WithEnd(at(12, 0)))
	atTo := testutil.NewTestSession(userID, branchID, at(14, 0), testutil.WithEnd(at(15, 0)))
	require.NoError(t, repo.Create(ctx, inside))
	require.NoError(t, repo.Create(ctx, before))
	require.NoError(t, repo.Create(ctx, atTo))
	require.NoError(t, repo.Create(ctx, atFrom))

	list, err := repo.ListByUserInRange(ctx, userID, at(8, 0), at(14, 0))
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, atFrom.ID, list[0].ID)
	assert.Equal(t, inside.ID, list[1].ID)
}

// Instants written from different zones still order correctly because
// storage normalizes them to UTC.
func TestSessionRepo_ListByUserInRange_NormalizesZones(t *testing.T) {
	repo, userID, branchID := sessionTestSetup(t)
	ctx := context.Background()
	tokyo := time.FixedZone("JST", 9*3600)

	s := testutil.NewTestSession(userID, branchID, time.Date(2024, 3, 11, 20, 0, 0, 0, tokyo))
	require.NoError(t, repo.Create(ctx, s))

	list, err := repo.ListByUserInRange(ctx, userID, at(10, 0), at(12, 0))
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, time.UTC, list[0].StartTime.Location())
	assert.True(t, at(11, 0).Equal(list[0].StartTime))
}

func TestSessionRepo_ListActive(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	users := NewSQLiteUserRepo(db)
	branch := testutil.NewTestBranch("Centro")
	require.NoError(t, NewSQLiteBranchRepo(db).Create(ctx, branch))
	repo := NewSQLiteSessionRepo(db)

	ana := testutil.NewTestUser("Ana")
	rui := testutil.NewTestUser("Rui")
	require.NoError(t, users.Create(ctx, ana))
	require.NoError(t, users.Create(ctx, rui))

	require.NoError(t, repo.Create(ctx, testutil.NewTestSession(ana.ID, branch.ID, at(9, 0))))
	require.NoError(t, repo.Create(ctx, testutil.NewTestSession(rui.ID, branch.ID, at(8, 0))))
	require.NoError(t, repo.Create(ctx, testutil.NewTestSession(rui.ID, branch.ID, at(6, 0), testutil.WithEnd(at(7, 0)))))

	active, err := repo.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, rui.ID, active[0].UserID)
	assert.Equal(t, ana.ID, active[1].UserID)
}

func TestSessionRepo_UpdateClosesSession(t *testing.T) {
	repo, userID, branchID := sessionTestSetup(t)
	ctx := context.Background()

	sess := testutil.NewTestSession(userID, branchID, at(9, 0), testutil.WithTimezone(""))
	require.NoError(t, repo.Create(ctx, sess))

	sess.Close(at(17, 0), "Europe/Lisbon")
	require.NoError(t, repo.Update(ctx, sess))

	fetched, err := repo.GetByID(ctx, sess.ID)
	require.NoError(t, err)
	require.NotNil(t, fetched.EndTime)
	assert.True(t, at(17, 0).Equal(*fetched.EndTime))
	assert.Equal(t, "Europe/Lisbon", fetched.Timezone)

	_, err = repo.FindActiveByUser(ctx, userID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSessionRepo_Update_NotFound(t *testing.T) {
	repo, userID, branchID := sessionTestSetup(t)

	ghost := testutil.NewTestSession(userID, branchID, at(9, 0))
	assert.ErrorIs(t, repo.Update(context.Background(), ghost), ErrNotFound)
}

func TestSessionRepo_Delete(t *testing.T) {
	repo, userID, branchID := sessionTestSetup(t)
	ctx := context.Background()

	sess := testutil.NewTestSession(userID, branchID, at(9, 0))
	require.NoError(t, repo.Create(ctx, sess))
	require.NoError(t, repo.Delete(ctx, sess.ID))

	_, err := repo.GetByID(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, sess.ID), ErrNotFound)
}

func TestSessionRepo_ListOverlapping(t *testing.T) {
	repo, userID, branchID := sessionTestSetup(t)
	ctx := context.Background()

	endsAtFrom := testutil.NewTestSession(userID, branchID, at(6, 0), testutil.WithEnd(at(8, 0)))
	straddles := testutil.NewTestSession(userID, branchID, at(7, 0), testutil.WithEnd(at(9, 0)))
	inside := testutil.NewTestSession(userID, branchID, at(10, 0), testutil.WithEnd(at(11, 0)))
	startsAtTo := testutil.NewTestSession(userID, branchID, at(12, 0), testutil.WithEnd(at(13, 0)))
	running := testutil.NewTestSession(userID, branchID, at(5, 0))
	for _, s := range []*domain.WorkSession{endsAtFrom, straddles, inside, startsAtTo, running} {
		require.NoError(t, repo.Create(ctx, s))
	}

	list, err := repo.ListOverlapping(ctx, userID, at(8, 0), at(12, 0))
	require.NoError(t, err)
	var ids []string
	for _, s := range list {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []string{running.ID, straddles.ID, inside.ID}, ids)
}
