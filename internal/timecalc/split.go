package timecalc

import (
	"time"

	"github.com/alexanderramin/punchclock/internal/domain"
)

// DayShare is the part of an interval that fell on one local day.
type DayShare struct {
	Date  domain.Date
	Hours float64
}

// SplitByDay attributes [start, end) to the local calendar days of loc it
// touches, walking forward one local midnight at a time. A nil loc splits
// on UTC days. Days that receive no time are omitted.
func SplitByDay(start, end time.Time, loc *time.Location) []DayShare {
	if !end.After(start) {
		return nil
	}
	p := NewProjector(loc)
	day, last := p.Date(start), p.Date(end)
	if day == last {
		return []DayShare{{Date: day, Hours: Hours(start, end)}}
	}

	var shares []DayShare
	for !day.After(last) {
		segStart, segEnd, ok := Clip(start, end, p.StartOfDay(day), p.NextMidnight(day))
		if ok {
			shares = append(shares, DayShare{Date: day, Hours: Hours(segStart, segEnd)})
		}
		day = day.AddDays(1)
	}
	return shares
}
