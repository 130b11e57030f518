package cli

import (
	"fmt"
	"time"
)

// DateLayout is the CLI's calendar-day input format.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD date in the local timezone. An empty value
// means today.
func ParseDate(value string) (time.Time, error) {
	if value == "" {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local), nil
	}
	date, err := time.ParseInLocation(DateLayout, value, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format, use YYYY-MM-DD: %w", err)
	}
	return date, nil
}

// ParseClock combines a calendar day with an HH:MM clock time into a local
// timestamp.
func ParseClock(date time.Time, value string) (time.Time, error) {
	clock, err := time.Parse("15:04", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time format, use HH:MM: %w", err)
	}
	return time.Date(date.Year(), date.Month(), date.Day(), clock.Hour(), clock.Minute(), 0, 0, time.Local), nil
}
