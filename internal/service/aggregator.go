package service

import (
	"context"
	"time"

	"github.com/alexanderramin/punchclock/internal/domain"
	"github.com/alexanderramin/punchclock/internal/repository"
	"github.com/alexanderramin/punchclock/internal/timecalc"
)

// maxZoneOffset is the furthest any zone's midnight lies from UTC
// midnight.
const maxZoneOffset = 14 * time.Hour

// aggregator attributes worked time to the days of a window. A closed
// session is clipped to the window's days on the clock of the zone it was
// recorded in, so every share it contributes lands in a bucket. A running
// session is selected by the server-zone window. The cap checks use
// dayTotal, which stays on the server clock.
type aggregator struct {
	clock Clock
}

func (a aggregator) projector() timecalc.Projector {
	return timecalc.NewProjector(a.clock.Location())
}

// tally is the unrounded result of one aggregation.
type tally struct {
	total      float64
	daysWorked int
	buckets    []domain.DailyBucket
}

func (a aggregator) tally(ctx context.Context, sessions repository.SessionRepo, userID string, w domain.PeriodWindow) (tally, error) {
	_, to := a.projector().Bounds(w)
	utcFrom, utcTo := timecalc.NewProjector(time.UTC).Bounds(w)
	list, err := sessions.ListOverlapping(ctx, userID, utcFrom.Add(-maxZoneOffset), utcTo.Add(maxZoneOffset))
	if err != nil {
		return tally{}, err
	}

	t := tally{buckets: make([]domain.DailyBucket, 0, w.DayCount)}
	index := make(map[domain.Date]int, w.DayCount)
	for _, d := range w.Days() {
		index[d] = len(t.buckets)
		t.buckets = append(t.buckets, domain.DailyBucket{Date: d, Label: d.Weekday().String()})
	}
	credit := func(d domain.Date, hours float64) {
		t.total += hours
		i, ok := index[d]
		if !ok {
			return
		}
		if t.buckets[i].Hours == 0 && hours > 0 {
			t.daysWorked++
		}
		t.buckets[i].Hours += hours
	}

	now := a.clock.Now()
	for _, s := range list {
		if s.Active() {
			if !s.StartTime.Before(to) {
				continue
			}
			// A running session stays on the day it started and counts up to
			// now, past the end of the window if need be.
			hours := timecalc.Hours(s.StartTime, now)
			if hours < 0 {
				hours = 0
			}
			credit(domain.DateOf(s.StartTime, s.Location()), hours)
			continue
		}
		loc := s.Location()
		lo, hi := timecalc.NewProjector(loc).Bounds(w)
		start, end, ok := timecalc.Clip(s.StartTime, *s.EndTime, lo, hi)
		if !ok {
			continue
		}
		for _, share := range timecalc.SplitByDay(start, end, loc) {
			credit(share.Date, share.Hours)
		}
	}
	return t, nil
}

// dayTotal is the single-day path used by the cap checks. The day is the
// server-local day containing at, and closed sessions are clipped to it
// on the server clock whatever zone they were recorded in.
func (a aggregator) dayTotal(ctx context.Context, sessions repository.SessionRepo, userID string, at time.Time) (float64, error) {
	from, to := a.projector().DayBounds(at)
	list, err := sessions.ListOverlapping(ctx, userID, from, to)
	if err != nil {
		return 0, err
	}
	now := a.clock.Now()
	var total float64
	for _, s := range list {
		if s.Active() {
			total += max(timecalc.Hours(s.StartTime, now), 0)
			continue
		}
		if start, end, ok := timecalc.Clip(s.StartTime, *s.EndTime, from, to); ok {
			total += timecalc.Hours(start, end)
		}
	}
	return total, nil
}

func (a aggregator) stats(ctx context.Context, sessions repository.SessionRepo, userID string, w domain.PeriodWindow) (*domain.PeriodStats, error) {
	t, err := a.tally(ctx, sessions, userID, w)
	if err != nil {
		return nil, err
	}
	for i := range t.buckets {
		t.buckets[i].Hours = round1(t.buckets[i].Hours)
	}
	st := &domain.PeriodStats{
		Window:       w,
		TotalHours:   round1(t.total),
		DaysWorked:   t.daysWorked,
		DailyBuckets: t.buckets,
	}
	if t.daysWorked > 0 {
		st.AverageHoursPerDay = round1(st.TotalHours / float64(t.daysWorked))
	}
	return st, nil
}
