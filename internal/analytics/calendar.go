package analytics

import (
	"fmt"
	"time"
)

// Calendar dates are carried as midnight UTC so they compare and print
// the same way PostgreSQL DATE values scan.

func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DateOf is the calendar date of t in loc.
func DateOf(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return Date(y, m, d)
}

// DayBounds returns [start, end) of a calendar date in loc. Days around DST
// changes are 23 or 25 hours long.
func DayBounds(date time.Time, loc *time.Location) (time.Time, time.Time) {
	y, m, d := date.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, loc)
	return start, time.Date(y, m, d+1, 0, 0, 0, 0, loc)
}

func MonthStart(date time.Time) time.Time {
	y, m, _ := date.Date()
	return Date(y, m, 1)
}

// MonthEnd is the last calendar date of the month.
func MonthEnd(monthStart time.Time) time.Time {
	return MonthStart(monthStart).AddDate(0, 1, -1)
}

// ParseMonth accepts YYYY-MM.
func ParseMonth(s string) (time.Time, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidMonth, s)
	}
	return Date(t.Year(), t.Month(), 1), nil
}

func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return Date(t.Year(), t.Month(), t.Day()), nil
}

// IsClosed reports whether every event of date has been committed: the day
// ended in loc at least grace ago.
func IsClosed(date, now time.Time, loc *time.Location, grace time.Duration) bool {
	_, end := DayBounds(date, loc)
	return !now.Before(end.Add(grace))
}

// ClosedDays lists up to lookback closed dates ending with the latest closed
// one, oldest first.
func ClosedDays(now time.Time, loc *time.Location, lookback int, grace time.Duration) []time.Time {
	latest := DateOf(now, loc)
	for !IsClosed(latest, now, loc, grace) {
		latest = latest.AddDate(0, 0, -1)
	}

	days := make([]time.Time, 0, lookback)
	for i := lookback - 1; i >= 0; i-- {
		days = append(days, latest.AddDate(0, 0, -i))
	}
	return days
}
