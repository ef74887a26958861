package domain

import (
	"strings"
	"time"
)

// User holds the subset of an employee record the worktime engine needs.
type User struct {
	ID                   string
	Name                 string
	NormalWorkingHours   float64
	BankDetails          string
	NotificationsEnabled bool
	OrganizationID       *string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// HasBankDetails reports whether the user may start tracking time.
func (u *User) HasBankDetails() bool {
	return strings.TrimSpace(u.BankDetails) != ""
}

// Branch is a work location.
type Branch struct {
	ID        string
	Name      string
	CreatedAt time.Time
}
