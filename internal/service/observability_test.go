package service

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogUseCaseObserver_Levels(t *testing.T) {
	var buf bytes.Buffer
	obs := NewLogUseCaseObserver(slog.New(slog.NewTextHandler(&buf, nil)))
	ctx := context.Background()

	obs.ObserveUseCase(ctx, UseCaseEvent{Name: "start", Success: true, Fields: map[string]any{"user_id": "u1"}})
	obs.ObserveUseCase(ctx, UseCaseEvent{Name: "start", Err: conflict(ReasonSessionRunning)})
	obs.ObserveUseCase(ctx, UseCaseEvent{Name: "stop", Err: errors.New("boom")})

	out := buf.String()
	assert.Contains(t, out, "level=INFO msg=service_use_case use_case=start")
	assert.Contains(t, out, "user_id=u1")
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "level=ERROR")
	assert.Contains(t, out, "error=boom")
}

func TestNewLogUseCaseObserver_NilLoggerIsNoop(t *testing.T) {
	assert.IsType(t, NoopUseCaseObserver{}, NewLogUseCaseObserver(nil))
}

type recordingObserver struct {
	events []UseCaseEvent
}

func (r *recordingObserver) ObserveUseCase(_ context.Context, e UseCaseEvent) {
	r.events = append(r.events, e)
}

func TestWorktimeService_ReportsEveryUseCase(t *testing.T) {
	f := newFixture(t, utc(2024, 3, 11, 9, 0), nil)
	user := f.seedUser(t)
	branch := f.seedBranch(t, "Centro")
	rec := &recordingObserver{}
	svc := NewWorktimeService(f.store, f.clock, f.locks, nil, nil, rec)
	ctx := context.Background()

	active, err := svc.Active(ctx, user.ID)
	assert.NoError(t, err)
	assert.Nil(t, active)
	_, err = svc.Start(ctx, StartRequest{UserID: user.ID, BranchID: branch.ID})
	assert.NoError(t, err)
	_, err = svc.Active(ctx, user.ID)
	assert.NoError(t, err)

	names := make([]string, 0, len(rec.events))
	for _, e := range rec.events {
		names = append(names, e.Name)
		assert.True(t, e.Success, e.Name)
	}
	assert.Equal(t, []string{"active", "start", "active"}, names)
	assert.Equal(t, user.ID, rec.events[0].Fields["user_id"])
}
