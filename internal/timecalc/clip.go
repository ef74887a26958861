package timecalc

import "time"

// Clip returns the part of [start, end) that lies inside [lo, hi). The
// result is reported as empty when nothing is left or the input interval
// is inverted.
func Clip(start, end, lo, hi time.Time) (time.Time, time.Time, bool) {
	if start.Before(lo) {
		start = lo
	}
	if end.After(hi) {
		end = hi
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

// Hours returns the length of [start, end) in fractional hours.
func Hours(start, end time.Time) float64 {
	return end.Sub(start).Hours()
}
