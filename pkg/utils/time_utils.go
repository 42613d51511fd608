package utils

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// ParseTime parses an ISO 8601 timestamp or a bare YYYY-MM-DD date (midnight UTC)
func ParseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: expected RFC3339 or YYYY-MM-DD", s)
	}
	return t, nil
}

// StartOfDay truncates t to midnight in its own location
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DayBucket labels t by calendar day, e.g. 2025-03-14
func DayBucket(t time.Time) string {
	return t.Format(dateLayout)
}

// MonthBucket labels t by calendar month, e.g. 2025-03
func MonthBucket(t time.Time) string {
	return t.Format("2006-01")
}

// WeekBucket labels t by the Monday that starts its ISO week
func WeekBucket(t time.Time) string {
	offset := (int(t.Weekday()) + 6) % 7
	return StartOfDay(t).AddDate(0, 0, -offset).Format(dateLayout)
}

// DaysBetween returns the fractional number of days from a to b
func DaysBetween(a, b time.Time) float64 {
	return b.Sub(a).Hours() / 24
}
