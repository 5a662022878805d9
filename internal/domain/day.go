package domain

import "time"

// DayFormat is the wire format for calendar dates.
const DayFormat = "2006-01-02"

// ToDay truncates a timestamp to its calendar date at midnight UTC.
// All overlap and night arithmetic works on these truncated values so
// time-of-day and timezone never leak into comparisons.
func ToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD date string into a midnight-UTC time.
func ParseDay(s string) (time.Time, error) {
	return time.ParseInLocation(DayFormat, s, time.UTC)
}

// Nights is the whole-day length of [start, end). Non-positive when the
// range is empty or reversed.
func Nights(start, end time.Time) int {
	return int(ToDay(end).Sub(ToDay(start)) / (24 * time.Hour))
}

// Overlaps reports whether the half-open ranges [s1, e1) and [s2, e2)
// share at least one night. Ranges that merely touch at a boundary do
// not overlap, so back-to-back stays on the same day are allowed.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	s1, e1 = ToDay(s1), ToDay(e1)
	s2, e2 = ToDay(s2), ToDay(e2)
	return !(!s1.Before(e2) || !e1.After(s2))
}
