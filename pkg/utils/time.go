package utils

import (
	"fmt"
	"time"
)

// DateLayout is the calendar date format the backend uses for query params.
const DateLayout = "2006-01-02"

// Now returns the current time in UTC timezone
func Now() time.Time {
	return time.Now().UTC()
}

// FormatISO8601 formats a time.Time to ISO8601 format in UTC
func FormatISO8601(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// ParseDate parses a YYYY-MM-DD date in UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", s, err)
	}
	return t, nil
}

// Elapsed is a span broken into whole minutes, hours and days. Each unit is
// the floor of the total elapsed milliseconds, not a remainder.
type Elapsed struct {
	Minutes int64
	Hours   int64
	Days    int64
}

// ElapsedBetween measures from -> now. A from in the future counts as zero.
func ElapsedBetween(from, now time.Time) Elapsed {
	ms := now.Sub(from).Milliseconds()
	if ms < 0 {
		ms = 0
	}
	return Elapsed{
		Minutes: ms / int64(time.Minute/time.Millisecond),
		Hours:   ms / int64(time.Hour/time.Millisecond),
		Days:    ms / int64(24*time.Hour/time.Millisecond),
	}
}
