package models

import (
	"fmt"
	"time"
)

// MinuteOfDay parses a zero-padded HH:mm string into minutes since midnight.
func MinuteOfDay(hhmm string) (int, error) {
	t, err := time.Parse(TimeLayout, hhmm)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", hhmm, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// FormatMinute renders minutes since midnight as a zero-padded HH:mm string.
func FormatMinute(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// DurationMinutes returns end - start in minutes. Negative when end precedes start.
func DurationMinutes(start, end string) (int, error) {
	s, err := MinuteOfDay(start)
	if err != nil {
		return 0, err
	}
	e, err := MinuteOfDay(end)
	if err != nil {
		return 0, err
	}
	return e - s, nil
}

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [cStart, cEnd) intersect. Lexicographic comparison is valid because slot
// boundaries are zero-padded fixed-width HH:mm strings. Touching intervals
// (aEnd == cStart) do not overlap.
func Overlaps(aStart, aEnd, cStart, cEnd string) bool {
	return aStart < cEnd && cStart < aEnd
}

// Midnight returns UTC midnight of t's calendar day as observed in t's
// location. ParseDate yields UTC midnights, so both sides of a "before
// today" comparison live in the same location regardless of the host
// timezone.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD calendar day.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}
