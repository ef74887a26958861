package timecalc

import (
	"time"

	"github.com/alexanderramin/punchclock/internal/domain"
)

// WeekContaining returns the Monday-based week that includes d.
func WeekContaining(d domain.Date) domain.PeriodWindow {
	offset := (int(d.Weekday()) - int(time.Monday) + 7) % 7
	start := d.AddDays(-offset)
	return domain.PeriodWindow{
		Kind:     domain.PeriodWeek,
		Start:    start,
		End:      start.AddDays(6),
		DayCount: 7,
	}
}

// QuinzenaStartingAt returns the half-month selected by an explicit
// period start: day 1 selects the 1st to the 15th, any other day the 16th
// to the end of the month.
func QuinzenaStartingAt(d domain.Date) domain.PeriodWindow {
	if d.Day == 1 {
		return firstQuinzena(d)
	}
	return secondQuinzena(d)
}

// QuinzenaContaining returns the half-month that includes d.
func QuinzenaContaining(d domain.Date) domain.PeriodWindow {
	if d.Day <= 15 {
		return firstQuinzena(d)
	}
	return secondQuinzena(d)
}

func firstQuinzena(d domain.Date) domain.PeriodWindow {
	start := domain.Date{Year: d.Year, Month: d.Month, Day: 1}
	return domain.PeriodWindow{
		Kind:     domain.PeriodQuinzena,
		Start:    start,
		End:      domain.Date{Year: d.Year, Month: d.Month, Day: 15},
		DayCount: 15,
	}
}

func secondQuinzena(d domain.Date) domain.PeriodWindow {
	last := d.DaysInMonth()
	return domain.PeriodWindow{
		Kind:     domain.PeriodQuinzena,
		Start:    domain.Date{Year: d.Year, Month: d.Month, Day: 16},
		End:      domain.Date{Year: d.Year, Month: d.Month, Day: last},
		DayCount: last - 15,
	}
}

// ResolvePeriod returns the window for kind. With a nil ref the window
// holding today is used.
func ResolvePeriod(kind domain.PeriodKind, ref *domain.Date, today domain.Date) domain.PeriodWindow {
	switch kind {
	case domain.PeriodQuinzena:
		if ref != nil {
			return QuinzenaStartingAt(*ref)
		}
		return QuinzenaContaining(today)
	default:
		if ref != nil {
			return WeekContaining(*ref)
		}
		return WeekContaining(today)
	}
}

// DayWindow is a single-day window, used for daily cap checks.
func DayWindow(d domain.Date) domain.PeriodWindow {
	return domain.PeriodWindow{Kind: domain.PeriodWeek, Start: d, End: d, DayCount: 1}
}

// Bounds returns the instants that delimit w on the clock of p as
// [first midnight, midnight after the last day).
func (p Projector) Bounds(w domain.PeriodWindow) (time.Time, time.Time) {
	return p.StartOfDay(w.Start), p.NextMidnight(w.End)
}
