package repository

import (
	"context"
	"time"

	"github.com/alexanderramin/punchclock/internal/domain"
)

// SessionRepo persists work sessions. Returned sessions carry the name of
// their branch.
type SessionRepo interface {
	Create(ctx context.Context, s *domain.WorkSession) error
	GetByID(ctx context.Context, id string) (*domain.WorkSession, error)
	// FindActiveByUser returns ErrNotFound when the user has no running
	// session.
	FindActiveByUser(ctx context.Context, userID string) (*domain.WorkSession, error)
	// ListByUserInRange returns sessions whose start lies in [from, to),
	// oldest first.
	ListByUserInRange(ctx context.Context, userID string, from, to time.Time) ([]*domain.WorkSession, error)
	// ListOverlapping returns sessions that share time with [from, to):
	// they start before to and are either running or end after from.
	ListOverlapping(ctx context.Context, userID string, from, to time.Time) ([]*domain.WorkSession, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.WorkSession, error)
	// ListActive returns every running session of every user.
	ListActive(ctx context.Context) ([]*domain.WorkSession, error)
	Update(ctx context.Context, s *domain.WorkSession) error
	Delete(ctx context.Context, id string) error
}

type UserRepo interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	Update(ctx context.Context, u *domain.User) error
}

type BranchRepo interface {
	Create(ctx context.Context, b *domain.Branch) error
	GetByID(ctx context.Context, id string) (*domain.Branch, error)
	List(ctx context.Context) ([]*domain.Branch, error)
}

type NotificationRepo interface {
	Create(ctx context.Context, n *domain.Notification) error
	ListByUser(ctx context.Context, userID string, limit int) ([]*domain.Notification, error)
}

// Repos bundles the repositories that share one connection or
// transaction.
type Repos struct {
	Sessions      SessionRepo
	Users         UserRepo
	Branches      BranchRepo
	Notifications NotificationRepo
}

// Store is the persistence boundary of the worktime engine. Repos works
// outside any transaction; WithinTx hands fn repositories bound to a single
// transaction that commits when fn returns nil.
type Store interface {
	Repos() Repos
	WithinTx(ctx context.Context, fn func(ctx context.Context, r Repos) error) error
	Close() error
}
