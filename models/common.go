package models

import (
	"time"
)

// Timestamp helpers shared by the HTTP layer and the log write path.
// Logical event times travel as RFC 3339 strings and are normalized to UTC
// before they reach the store, so range comparisons behave chronologically.

// FormatTimestamp formats a time as RFC 3339 in UTC
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// ParseTimestamp parses an RFC 3339 string into a UTC time.Time
func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
