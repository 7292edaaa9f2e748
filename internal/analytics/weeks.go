// Package analytics provides pure, stateless reads over the fact stream and
// the event log: summary statistics, progression classification, volume
// zones and week-over-week comparisons. Nothing here persists state between
// calls.
package analytics

import "time"

// WeekStart returns Monday 00:00 UTC of the ISO week containing t.
func WeekStart(t time.Time) time.Time {
	t = t.UTC()
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return day.AddDate(0, 0, -(weekday - 1))
}

// weekFuzz is the half-week tolerance used when matching observed week
// starts against an expected sequence, absorbing clock skew around week
// boundaries.
const weekFuzz = 7 * 24 * time.Hour / 2

func withinFuzz(observed, expected time.Time) bool {
	delta := observed.Sub(expected)
	if delta < 0 {
		delta = -delta
	}
	return delta <= weekFuzz
}

// weeksBetween counts ISO weeks from the week containing since through the
// week containing until, inclusive. At least 1.
func weeksBetween(since, until time.Time) int {
	start := WeekStart(since)
	end := WeekStart(until)
	if end.Before(start) {
		return 1
	}
	return int(end.Sub(start)/(7*24*time.Hour)) + 1
}
