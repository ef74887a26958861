package service

import (
	"context"
	"time"

	"github.com/alexanderramin/punchclock/internal/domain"
)

// StartRequest asks to open a session. StartTime is optional; when empty
// the session starts now.
type StartRequest struct {
	UserID         string
	BranchID       string
	StartTime      string
	OrganizationID *string
}

// StopRequest asks to close the user's running session. EndTime is
// optional; when empty the session ends now. Force accepts an end before
// the start.
type StopRequest struct {
	UserID  string
	EndTime string
	Force   bool
}

// SessionUpdate is an administrative correction. Nil fields are left
// unchanged; ClearEnd reopens the session.
type SessionUpdate struct {
	StartTime *string
	EndTime   *string
	ClearEnd  bool
	BranchID  *string
}

type WorktimeService interface {
	Start(ctx context.Context, req StartRequest) (*domain.WorkSession, error)
	Stop(ctx context.Context, req StopRequest) (*domain.WorkSession, error)
	// Active returns the running session, or nil when the user is idle.
	Active(ctx context.Context, userID string) (*domain.WorkSession, error)
	// ListForDate lists the sessions starting on the server-local date
	// (YYYY-MM-DD). An empty date lists all of the user's sessions.
	ListForDate(ctx context.Context, userID, date string) ([]*domain.WorkSession, error)
	Update(ctx context.Context, sessionID string, upd SessionUpdate) (*domain.WorkSession, error)
	Delete(ctx context.Context, sessionID string) error
}

type StatsService interface {
	// Window resolves the period for kind. A nil periodStart selects the
	// period holding today.
	Window(kind domain.PeriodKind, periodStart *domain.Date) domain.PeriodWindow
	Stats(ctx context.Context, userID string, kind domain.PeriodKind, periodStart *domain.Date) (*domain.PeriodStats, error)
	// DayTotal returns the unrounded hours worked on the server-local day
	// that contains at, counting a running session up to now.
	DayTotal(ctx context.Context, userID string, at time.Time) (float64, error)
}

// SweepResult summarizes one overrun sweep.
type SweepResult struct {
	Checked int
	Stopped int
	Failed  int
}

type SweepService interface {
	Sweep(ctx context.Context) (SweepResult, error)
}

type UserService interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	Update(ctx context.Context, u *domain.User) error
}

type BranchService interface {
	Create(ctx context.Context, name string) (*domain.Branch, error)
	List(ctx context.Context) ([]*domain.Branch, error)
}

type NotificationService interface {
	ListByUser(ctx context.Context, userID string, limit int) ([]*domain.Notification, error)
}
