package domain

import "time"

// WorkSession is one contiguous work interval for a user. EndTime is nil
// while the session is running.
type WorkSession struct {
	ID             string
	UserID         string
	BranchID       string
	BranchName     string
	StartTime      time.Time
	EndTime        *time.Time
	Timezone       string
	OrganizationID *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Active reports whether the session has not been closed yet.
func (s *WorkSession) Active() bool {
	return s.EndTime == nil
}

// Location returns the zone captured when the session started. Sessions
// without a recorded zone, or with one that no longer loads, use UTC.
func (s *WorkSession) Location() *time.Location {
	if s.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Close sets the end instant and fills in the zone for legacy rows that
// were recorded without one.
func (s *WorkSession) Close(end time.Time, zone string) {
	end = end.UTC()
	s.EndTime = &end
	if s.Timezone == "" {
		s.Timezone = zone
	}
}
