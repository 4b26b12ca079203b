package util

import (
	"math"
	"strconv"
	"time"
)

// unixMillisCutoff separates unix seconds from unix milliseconds.
const unixMillisCutoff = 1e11

// ParseTime tries RFC3339, RFC3339Nano, and unix seconds or milliseconds. Returns (t, true) if any worked.
func ParseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
		return t.UTC(), true
	}
	if ts, err := strconv.ParseFloat(s, 64); err == nil {
		return FromUnix(ts)
	}
	return time.Time{}, false
}

// FromUnix converts unix seconds, or milliseconds when ts is above 1e11, into UTC time.
func FromUnix(ts float64) (time.Time, bool) {
	if ts <= 0 || math.IsNaN(ts) || math.IsInf(ts, 0) {
		return time.Time{}, false
	}
	if ts > unixMillisCutoff {
		ms := int64(ts)
		return time.UnixMilli(ms).UTC(), true
	}
	sec, frac := math.Modf(ts)
	return time.Unix(int64(sec), int64(frac*1e9)).UTC(), true
}
