package timecalc

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// ErrInvalidTime reports a timestamp that none of the accepted layouts
// could read.
var ErrInvalidTime = errors.New("invalid time format")

var (
	trailingSeconds = regexp.MustCompile(`T\d{2}:\d{2}:\d{2}:\d{2}$`)
	bareLocal       = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}$`)
)

// ParseInstant reads the timestamps accepted by session corrections. A
// value without an offset is taken as UTC, and a stray trailing ":SS"
// group left by some form encoders is dropped.
func ParseInstant(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if trailingSeconds.MatchString(s) {
		s = s[:strings.LastIndex(s, ":")]
	}
	if bareLocal.MatchString(s) {
		t, err := time.ParseInLocation("2006-01-02T15:04:05", s, time.UTC)
		if err != nil {
			return time.Time{}, ErrInvalidTime
		}
		return t, nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04Z07:00", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, ErrInvalidTime
}
