// Package timecalc holds the calendar arithmetic behind worktime reports:
// zone projection, interval clipping, per-day attribution and period
// windows. Nothing in here touches storage.
package timecalc

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alexanderramin/punchclock/internal/domain"
)

// Projector maps absolute instants onto the wall clock of one zone and
// back again.
type Projector struct {
	loc *time.Location
}

// NewProjector returns a Projector for loc. A nil loc projects onto UTC.
func NewProjector(loc *time.Location) Projector {
	if loc == nil {
		loc = time.UTC
	}
	return Projector{loc: loc}
}

func (p Projector) Location() *time.Location { return p.loc }

// Date returns the local calendar date of t.
func (p Projector) Date(t time.Time) domain.Date {
	return domain.DateOf(t, p.loc)
}

// StartOfDay returns the instant of local midnight at the start of d.
func (p Projector) StartOfDay(d domain.Date) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, p.loc).UTC()
}

// EndOfDay returns the last representable instant of d on the local
// clock. It is built from wall-clock fields so DST days keep their real
// length.
func (p Projector) EndOfDay(d domain.Date) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 23, 59, 59, 999999999, p.loc).UTC()
}

// NextMidnight returns the exclusive upper bound of d.
func (p Projector) NextMidnight(d domain.Date) time.Time {
	return time.Date(d.Year, d.Month, d.Day+1, 0, 0, 0, 0, p.loc).UTC()
}

// DayBounds returns the local day containing t as [start, next midnight).
func (p Projector) DayBounds(t time.Time) (time.Time, time.Time) {
	d := p.Date(t)
	return p.StartOfDay(d), p.NextMidnight(d)
}

// ZoneName returns the IANA name of loc, or "UTC" when the name is not
// meaningful outside this process.
func ZoneName(loc *time.Location) string {
	if loc == nil || loc.String() == "Local" || loc.String() == "" {
		return "UTC"
	}
	return loc.String()
}

// ResolveLocalZone picks the server zone: an explicit name wins, then
// $TZ, then the /etc/localtime link target. UTC is the fallback.
func ResolveLocalZone(name string) (*time.Location, error) {
	if name != "" {
		loc, err := time.LoadLocation(name)
		if err != nil {
			return nil, fmt.Errorf("loading zone %q: %w", name, err)
		}
		return loc, nil
	}
	if tz := strings.TrimPrefix(os.Getenv("TZ"), ":"); tz != "" {
		if loc, err := time.LoadLocation(tz); err == nil {
			return loc, nil
		}
	}
	if target, err := filepath.EvalSymlinks("/etc/localtime"); err == nil {
		if i := strings.Index(target, "zoneinfo/"); i >= 0 {
			if loc, err := time.LoadLocation(target[i+len("zoneinfo/"):]); err == nil {
				return loc, nil
			}
		}
	}
	return time.UTC, nil
}
