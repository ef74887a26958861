package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/alexanderramin/punchclock/internal/domain"
	"github.com/alexanderramin/punchclock/internal/repository"
)

type userService struct {
	users  repository.UserRepo
	clock  Clock
	logger *slog.Logger
}

func NewUserService(store repository.Store, clock Clock, logger *slog.Logger) UserService {
	return &userService{users: store.Repos().Users, clock: clock, logger: loggerOrDiscard(logger)}
}

func (s *userService) Create(ctx context.Context, u *domain.User) error {
	if strings.TrimSpace(u.Name) == "" {
		return badRequest("user name is required")
	}
	if u.NormalWorkingHours <= 0 {
		return badRequest("normal working hours must be positive")
	}
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	now := s.clock.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	return classify(ctx, s.logger, "create-user", s.users.Create(ctx, u))
}

func (s *userService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, classify(ctx, s.logger, "get-user", orNotFound(err, "user not found"))
	}
	return u, nil
}

func (s *userService) List(ctx context.Context) ([]*domain.User, error) {
	users, err := s.users.List(ctx)
	return users, classify(ctx, s.logger, "list-users", err)
}

func (s *userService) Update(ctx context.Context, u *domain.User) error {
	if u.NormalWorkingHours <= 0 {
		return badRequest("normal working hours must be positive")
	}
	return classify(ctx, s.logger, "update-user", orNotFound(s.users.Update(ctx, u), "user not found"))
}

type branchService struct {
	branches repository.BranchRepo
	clock    Clock
	logger   *slog.Logger
}

func NewBranchService(store repository.Store, clock Clock, logger *slog.Logger) BranchService {
	return &branchService{branches: store.Repos().Branches, clock: clock, logger: loggerOrDiscard(logger)}
}

func (s *branchService) Create(ctx context.Context, name string) (*domain.Branch, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, badRequest("branch name is required")
	}
	b := &domain.Branch{ID: uuid.New().String(), Name: name, CreatedAt: s.clock.Now().UTC()}
	if err := s.branches.Create(ctx, b); err != nil {
		return nil, classify(ctx, s.logger, "create-branch", err)
	}
	return b, nil
}

func (s *branchService) List(ctx context.Context) ([]*domain.Branch, error) {
	branches, err := s.branches.List(ctx)
	return branches, classify(ctx, s.logger, "list-branches", err)
}

type notificationService struct {
	notifications repository.NotificationRepo
	logger        *slog.Logger
}

func NewNotificationService(store repository.Store, logger *slog.Logger) NotificationService {
	return &notificationService{notifications: store.Repos().Notifications, logger: loggerOrDiscard(logger)}
}

func (s *notificationService) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.Notification, error) {
	list, err := s.notifications.ListByUser(ctx, userID, limit)
	return list, classify(ctx, s.logger, "list-notifications", err)
}
