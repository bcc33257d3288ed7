package payroll

import (
	"time"
)

// =============================================================================
// WORK CALENDAR - Rest-day and statutory-holiday lookup
// =============================================================================

// WorkCalendar decides whether a date is a designated non-working day: the
// weekly rest day (typically Sunday) or a statutory holiday. A shift starting
// on such a day is classified into the holiday premium buckets.
type WorkCalendar interface {
	IsRestDay(date time.Time) bool
}

// DefaultCalendar treats one weekday as the weekly rest day and carries an
// explicit set of statutory holidays.
type DefaultCalendar struct {
	RestWeekday time.Weekday
	Holidays    map[string]bool // keyed by "2006-01-02"
}

// NewDefaultCalendar returns a calendar with Sunday as the weekly rest day
// and no statutory holidays registered.
func NewDefaultCalendar() *DefaultCalendar {
	return &DefaultCalendar{RestWeekday: time.Sunday, Holidays: make(map[string]bool)}
}

// AddHoliday registers a statutory holiday.
func (c *DefaultCalendar) AddHoliday(date time.Time) {
	c.Holidays[date.Format("2006-01-02")] = true
}

func (c *DefaultCalendar) IsRestDay(date time.Time) bool {
	if date.Weekday() == c.RestWeekday {
		return true
	}
	return c.Holidays[date.Format("2006-01-02")]
}

// =============================================================================
// NIGHT WINDOW - 22:00-06:00 overlap
// =============================================================================

// nightWindowStart/EndHour bound the statutory night-work window. The window
// for day D spans [D 22:00, D+1 06:00).
const (
	nightWindowStartHour = 22
	nightWindowEndHour   = 6
)

// nightOverlap returns the total duration of [start, end) overlapping any
// 22:00-06:00 window. A shift crossing midnight (or an unusually long one)
// can touch more than one window, so every window whose day the shift
// touches is checked.
func nightOverlap(start, end time.Time) time.Duration {
	if !end.After(start) {
		return 0
	}

	var total time.Duration
	day := startOfDay(start).AddDate(0, 0, -1)
	last := startOfDay(end)
	for !day.After(last) {
		winStart := time.Date(day.Year(), day.Month(), day.Day(),
			nightWindowStartHour, 0, 0, 0, day.Location())
		winEnd := winStart.Add(time.Duration(24-nightWindowStartHour+nightWindowEndHour) * time.Hour)

		from := MaxDate(start, winStart)
		to := MinDate(end, winEnd)
		if to.After(from) {
			total += to.Sub(from)
		}
		day = day.AddDate(0, 0, 1)
	}
	return total
}

// =============================================================================
// DATE HELPERS
// =============================================================================

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// MaxDate returns the later of two times.
func MaxDate(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

// MinDate returns the earlier of two times.
func MinDate(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

// AgeAt returns completed years between birth and ref.
func AgeAt(birth, ref time.Time) int {
	if birth.IsZero() {
		return 0
	}
	age := ref.Year() - birth.Year()
	anniversary := time.Date(ref.Year(), birth.Month(), birth.Day(), 0, 0, 0, 0, ref.Location())
	if ref.Before(anniversary) {
		age--
	}
	if age < 0 {
		return 0
	}
	return age
}

// DaysBetween returns whole days from a to b (b after a yields positive).
func DaysBetween(a, b time.Time) int {
	return int(startOfDay(b).Sub(startOfDay(a)).Hours() / 24)
}
