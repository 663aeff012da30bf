package timeutil

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"coachcal-service/pkg/response"
)

const (
	DefaultStartHour       = 6
	DefaultEndHour         = 22
	DefaultIntervalMinutes = 30

	minutesPerDay = 24 * 60
)

// timeRe accepts HH:MM in 24-hour time, single-digit hours allowed.
var timeRe = regexp.MustCompile(`^([0-1]?[0-9]|2[0-3]):[0-5][0-9]$`)

// TimeRange is an occupied [Start, End) interval within one day.
type TimeRange struct {
	Start string
	End   string
}

func IsValidTimeFormat(t string) bool {
	return timeRe.MatchString(t)
}

// TimeToMinutes converts HH:MM to minutes since midnight.
func TimeToMinutes(t string) (int, error) {
	const op = "timeutil.TimeToMinutes"

	if !timeRe.MatchString(t) {
		return 0, fmt.Errorf("%s: %q: %w", op, t, response.ErrValidation)
	}

	parts := strings.SplitN(t, ":", 2)
	hours, _ := strconv.Atoi(parts[0])
	mins, _ := strconv.Atoi(parts[1])

	return hours*60 + mins, nil
}

// MinutesToTime converts minutes since midnight to zero-padded HH:MM.
func MinutesToTime(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// AddMinutesToTime shifts a time forward. The result must end strictly
// before midnight; 24:00 is not a representable time.
func AddMinutesToTime(t string, minutes int) (string, error) {
	const op = "timeutil.AddMinutesToTime"

	total, err := TimeToMinutes(t)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	total += minutes
	if total >= minutesPerDay {
		return "", fmt.Errorf("%s: %s+%dm crosses midnight: %w", op, t, minutes, response.ErrValidation)
	}
	if total < 0 {
		return "", fmt.Errorf("%s: %s%dm is before midnight: %w", op, t, minutes, response.ErrValidation)
	}

	return MinutesToTime(total), nil
}

// SubtractMinutesFromTime shifts a time backward, clamping at 00:00.
func SubtractMinutesFromTime(t string, minutes int) (string, error) {
	const op = "timeutil.SubtractMinutesFromTime"

	total, err := TimeToMinutes(t)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	total -= minutes
	if total < 0 {
		return "00:00", nil
	}

	return MinutesToTime(total), nil
}

// DurationBetween returns end-start in minutes. End must not precede start.
func DurationBetween(start, end string) (int, error) {
	const op = "timeutil.DurationBetween"

	s, err := TimeToMinutes(start)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	e, err := TimeToMinutes(end)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if e < s {
		return 0, fmt.Errorf("%s: %s is before %s: %w", op, end, start, response.ErrValidation)
	}

	return e - s, nil
}

// IsTimeBetween reports whether t falls in [start, end], boundaries included.
func IsTimeBetween(t, start, end string) (bool, error) {
	const op = "timeutil.IsTimeBetween"

	tm, err := TimeToMinutes(t)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	s, err := TimeToMinutes(start)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	e, err := TimeToMinutes(end)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return tm >= s && tm <= e, nil
}

// IsWithinBusinessHours reports whether t falls inside the default 06:00-22:00 window.
func IsWithinBusinessHours(t string) (bool, error) {
	return IsTimeBetween(t, MinutesToTime(DefaultStartHour*60), MinutesToTime(DefaultEndHour*60))
}

// DoTimeRangesOverlap checks two half-open intervals [start1,end1) and
// [start2,end2). Touching boundaries do not overlap, back-to-back sessions
// are always allowed.
func DoTimeRangesOverlap(start1, end1, start2, end2 string) (bool, error) {
	const op = "timeutil.DoTimeRangesOverlap"

	s1, err := TimeToMinutes(start1)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	e1, err := TimeToMinutes(end1)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	s2, err := TimeToMinutes(start2)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	e2, err := TimeToMinutes(end2)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return !(e1 <= s2 || s1 >= e2), nil
}

// IsTimeSlotAvailable reports whether a session of duration minutes starting
// at startTime avoids every occupied range.
func IsTimeSlotAvailable(startTime string, duration int, existing []TimeRange) (bool, error) {
	const op = "timeutil.IsTimeSlotAvailable"

	endTime, err := AddMinutesToTime(startTime, duration)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	for _, r := range existing {
		overlaps, err := DoTimeRangesOverlap(startTime, endTime, r.Start, r.End)
		if err != nil {
			return false, fmt.Errorf("%s: %w", op, err)
		}
		if overlaps {
			return false, nil
		}
	}

	return true, nil
}

// GenerateTimeSlots lists candidate start times from startHour:00 through
// endHour:00 inclusive, stepping by intervalMinutes. Deterministic, callers
// may memoize per (start, end, interval).
func GenerateTimeSlots(startHour, endHour, intervalMinutes int) []string {
	var slots []string

	for m := startHour * 60; m <= endHour*60; m += intervalMinutes {
		slots = append(slots, MinutesToTime(m))
	}

	return slots
}

// GetAvailableTimeSlots filters the generated grid to slots where the full
// session both fits before endHour and avoids every occupied range. Order is
// ascending by time.
func GetAvailableTimeSlots(duration int, existing []TimeRange, startHour, endHour, intervalMinutes int) ([]string, error) {
	const op = "timeutil.GetAvailableTimeSlots"

	available := make([]string, 0)

	for _, slot := range GenerateTimeSlots(startHour, endHour, intervalMinutes) {
		start, err := TimeToMinutes(slot)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if start+duration > endHour*60 {
			// Session would extend beyond business hours.
			continue
		}

		ok, err := IsTimeSlotAvailable(slot, duration, existing)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if ok {
			available = append(available, slot)
		}
	}

	return available, nil
}

// NextSlotOnGrid rounds t up to the next slot boundary.
func NextSlotOnGrid(t string, intervalMinutes int) (string, error) {
	const op = "timeutil.NextSlotOnGrid"

	m, err := TimeToMinutes(t)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	next := ((m + intervalMinutes - 1) / intervalMinutes) * intervalMinutes

	return MinutesToTime(next), nil
}

// FormatTimeForDisplay renders HH:MM as a 12-hour clock label, e.g. "2:30 PM".
func FormatTimeForDisplay(t string) (string, error) {
	const op = "timeutil.FormatTimeForDisplay"

	m, err := TimeToMinutes(t)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	hours := m / 60
	mins := m % 60

	period := "AM"
	if hours >= 12 {
		period = "PM"
	}

	display := hours % 12
	if display == 0 {
		display = 12
	}

	return fmt.Sprintf("%d:%02d %s", display, mins, period), nil
}
