package domain

import "time"

// CivilDay returns the calendar date of t in loc as midnight UTC, so day
// arithmetic on the result is never skewed by DST transitions.
func CivilDay(t time.Time, loc *time.Location) time.Time {
	if loc != nil {
		t = t.In(loc)
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of whole calendar days from a to b for values produced by CivilDay.
func DaysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}

// DayKey formats a civil day as YYYY-MM-DD.
func DayKey(day time.Time) string {
	return day.Format(time.DateOnly)
}
