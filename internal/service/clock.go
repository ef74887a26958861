package service

import "time"

// Clock supplies "now" and the server zone used for daily cap checks.
type Clock interface {
	Now() time.Time
	Location() *time.Location
}

type systemClock struct {
	loc *time.Location
}

// NewSystemClock returns the wall clock projected onto loc. A nil loc
// means UTC.
func NewSystemClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return systemClock{loc: loc}
}

func (c systemClock) Now() time.Time           { return time.Now().UTC() }
func (c systemClock) Location() *time.Location { return c.loc }
