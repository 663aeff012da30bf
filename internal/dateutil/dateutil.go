package dateutil

import (
	"fmt"
	"time"

	"coachcal-service/pkg/response"
)

const ISODate = "2006-01-02"

// ParseISODate parses a YYYY-MM-DD string.
func ParseISODate(s string) (time.Time, error) {
	const op = "dateutil.ParseISODate"

	t, err := time.Parse(ISODate, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %q: %w", op, s, response.ErrValidation)
	}

	return t, nil
}

// FormatISODate renders a date as YYYY-MM-DD.
func FormatISODate(t time.Time) string {
	return t.Format(ISODate)
}

// TruncateToDate drops the time-of-day component.
func TruncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// StartOfWeek returns the Sunday on or before t.
func StartOfWeek(t time.Time) time.Time {
	return TruncateToDate(t).AddDate(0, 0, -int(t.Weekday()))
}

// EndOfWeek returns the Saturday on or after t.
func EndOfWeek(t time.Time) time.Time {
	return TruncateToDate(t).AddDate(0, 0, 6-int(t.Weekday()))
}

func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func EndOfMonth(t time.Time) time.Time {
	return StartOfMonth(t).AddDate(0, 1, -1)
}

func AddDays(t time.Time, days int) time.Time {
	return t.AddDate(0, 0, days)
}

// AddMonths uses calendar-month arithmetic, not a fixed 30 days. The day of
// month is clamped to the target month's length, so Jan 31 plus one month
// lands in February rather than normalizing into March.
func AddMonths(t time.Time, months int) time.Time {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location()).AddDate(0, months, 0)

	day := t.Day()
	if last := EndOfMonth(first).Day(); day > last {
		day = last
	}

	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, t.Location())
}

func IsSameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

func IsSameWeek(a, b time.Time) bool {
	return IsSameDay(StartOfWeek(a), StartOfWeek(b))
}

func IsSameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}

// DaysBetween counts whole days from start to end.
func DaysBetween(start, end time.Time) int {
	return int(TruncateToDate(end).Sub(TruncateToDate(start)).Hours() / 24)
}

type DateFormat string

const (
	FormatShort DateFormat = "short"
	FormatLong  DateFormat = "long"
	FormatMonth DateFormat = "month"
)

// FormatDate renders a date for display labels.
func FormatDate(t time.Time, format DateFormat) string {
	switch format {
	case FormatLong:
		return t.Format("Monday, January 2, 2006")
	case FormatMonth:
		return t.Format("January 2006")
	default:
		return t.Format("Jan 2")
	}
}

// DayName returns the weekday label.
func DayName(t time.Time, long bool) string {
	if long {
		return t.Format("Monday")
	}
	return t.Format("Mon")
}
