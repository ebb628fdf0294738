package util

import (
	"strconv"
	"strings"
	"time"
)

// layouts accepted by ParseTime after RFC 3339. MetaTrader exports use dots
// in the date part.
var layouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006.01.02 15:04:05",
	"2006.01.02 15:04",
	"2006.01.02",
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	"2006/01/02",
}

// unixMillisFloor separates unix seconds from unix milliseconds.
const unixMillisFloor = 100_000_000_000

// ParseTime tries RFC3339, RFC3339Nano, the common exchange and MetaTrader
// layouts, and unix seconds or milliseconds. Zone-less values are UTC.
// Returns (t, true) if any worked.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 0 {
		if ts >= unixMillisFloor {
			return time.UnixMilli(ts).UTC(), true
		}
		return time.Unix(ts, 0).UTC(), true
	}
	return time.Time{}, false
}

// JoinDateTime parses a date and a separate time-of-day column as one
// timestamp. An empty clock parses date alone.
func JoinDateTime(date, clock string) (time.Time, bool) {
	date, clock = strings.TrimSpace(date), strings.TrimSpace(clock)
	if clock == "" {
		return ParseTime(date)
	}
	return ParseTime(date + " " + clock)
}

// AlignFromTo truncates both ends of a range to multiples of step.
func AlignFromTo(from, to time.Time, step time.Duration) (time.Time, time.Time) {
	if step <= 0 {
		step = time.Minute
	}
	return from.Truncate(step), to.Truncate(step)
}
