package domain

import "fmt"

type PeriodKind string

const (
	PeriodWeek     PeriodKind = "week"
	PeriodQuinzena PeriodKind = "quinzena"
)

// ParsePeriodKind accepts the textual period names. An empty string
// selects a week.
func ParsePeriodKind(s string) (PeriodKind, error) {
	switch PeriodKind(s) {
	case "", PeriodWeek:
		return PeriodWeek, nil
	case PeriodQuinzena:
		return PeriodQuinzena, nil
	}
	return "", fmt.Errorf("unknown period kind %q", s)
}

// PeriodWindow is the inclusive calendar range a report covers.
type PeriodWindow struct {
	Kind     PeriodKind
	Start    Date
	End      Date
	DayCount int
}

// Days lists every date in the window in order.
func (w PeriodWindow) Days() []Date {
	days := make([]Date, 0, w.DayCount)
	for i := 0; i < w.DayCount; i++ {
		days = append(days, w.Start.AddDays(i))
	}
	return days
}

// Contains reports whether d lies within the window.
func (w PeriodWindow) Contains(d Date) bool {
	return !d.Before(w.Start) && !d.After(w.End)
}

// DailyBucket is the worked time attributed to one day of a window.
type DailyBucket struct {
	Date  Date
	Label string
	Hours float64
}

// PeriodStats is the aggregated result for one user and window.
type PeriodStats struct {
	Window             PeriodWindow
	TotalHours         float64
	AverageHoursPerDay float64
	DaysWorked         int
	DailyBuckets       []DailyBucket
}
