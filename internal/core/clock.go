package core

import "time"

// Clock provides "now". Tests substitute a fixed clock.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// SystemClock returns the wall clock in UTC.
func SystemClock() Clock { return systemClock{} }

// FixedClock always returns the same instant.
type FixedClock time.Time

func (c FixedClock) Now() time.Time { return time.Time(c) }

// AddMonths adds n calendar months to t. When the target month is shorter
// than t's day, the result is clamped to the target month's last day
// (Jan 31 + 1 month = Feb 28 or 29).
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	last := daysIn(first.Year(), first.Month())
	if d > last {
		d = last
	}
	return first.AddDate(0, 0, d-1)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// DateOnly truncates t to midnight UTC of its calendar date.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
