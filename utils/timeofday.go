package utils

import (
	"fmt"
	"strings"
	"time"
)

const minutesPerDay = 24 * 60

// ParseHHMM converts a "HH:MM" clock string to minutes from midnight.
func ParseHHMM(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM: %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// FormatHHMM converts minutes from midnight to a "HH:MM" clock string.
func FormatHHMM(minutes int) string {
	minutes %= minutesPerDay
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// ParseDate parses a "YYYY-MM-DD" calendar day as UTC midnight.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", s, err)
	}
	return t, nil
}

// DayString formats a timestamp as its "YYYY-MM-DD" calendar day in UTC.
func DayString(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// WeekdayKey returns the lower-case weekday name of t, matching schedule
// template day keys.
func WeekdayKey(t time.Time) string {
	return strings.ToLower(t.Weekday().String())
}
