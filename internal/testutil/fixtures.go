package testutil

import (
	"time"

	"github.com/alexanderramin/punchclock/internal/domain"
	"github.com/google/uuid"
)

// User options
type UserOption func(*domain.User)

func WithNormalHours(h float64) UserOption {
	return func(u *domain.User) {
		u.NormalWorkingHours = h
	}
}

func WithBankDetails(s string) UserOption {
	return func(u *domain.User) {
		u.BankDetails = s
	}
}

func WithoutBankDetails() UserOption {
	return WithBankDetails("")
}

func WithNotifications(enabled bool) UserOption {
	return func(u *domain.User) {
		u.NotificationsEnabled = enabled
	}
}

func WithUserOrganization(id string) UserOption {
	return func(u *domain.User) {
		u.OrganizationID = &id
	}
}

func NewTestUser(name string, opts ...UserOption) *domain.User {
	now := time.Now().UTC()
	u := &domain.User{
		ID:                   uuid.New().String(),
		Name:                 name,
		NormalWorkingHours:   8,
		BankDetails:          "PT50 0002 0123 1234 5678 9015 4",
		NotificationsEnabled: true,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

func NewTestBranch(name string) *domain.Branch {
	return &domain.Branch{
		ID:        uuid.New().String(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
}

// Session options
type SessionOption func(*domain.WorkSession)

func WithEnd(t time.Time) SessionOption {
	return func(s *domain.WorkSession) {
		end := t.UTC()
		s.EndTime = &end
	}
}

func WithTimezone(zone string) SessionOption {
	return func(s *domain.WorkSession) {
		s.Timezone = zone
	}
}

func WithSessionOrganization(id string) SessionOption {
	return func(s *domain.WorkSession) {
		s.OrganizationID = &id
	}
}

// NewTestSession builds a running session unless WithEnd is given.
func NewTestSession(userID, branchID string, start time.Time, opts ...SessionOption) *domain.WorkSession {
	now := time.Now().UTC()
	s := &domain.WorkSession{
		ID:        uuid.New().String(),
		UserID:    userID,
		BranchID:  branchID,
		StartTime: start.UTC(),
		Timezone:  "UTC",
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
