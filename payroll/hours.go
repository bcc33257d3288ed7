/*
hours.go - Attendance interval aggregation

PURPOSE:
  Converts a period's completed shifts into categorized hour buckets:

    regular          weekday hours up to the daily standard (8h)
    overtime         weekday hours beyond the daily standard
    holidayRegular   holiday hours up to the daily standard (1.5x category)
    holidayExtended  holiday hours beyond it (2.0x, the double-premium rule)
    night            22:00-06:00 overlap, a surcharge OVERLAY on the above

CLASSIFICATION RULES:
  - A shift is "holiday" when its start date is a designated non-working day
    (weekly rest day or statutory holiday). Holiday and weekday overtime are
    mutually exclusive so no hour is premium-counted twice.
  - Night hours are additive on top of the primary classification: they
    represent a premium surcharge, not a separate bucket of worked time, so
    regular + overtime + holidayRegular + holidayExtended always equals the
    total worked duration.
  - A shift ending before it starts is rejected as a validation error; a
    zero-length shift contributes nothing.

SEE ALSO:
  - time.go: night-window overlap and the WorkCalendar
  - gross.go: turns the breakdown into pay
*/
package payroll

import (
	"github.com/shopspring/decimal"
)

// Aggregator categorizes attendance intervals using a work calendar.
type Aggregator struct {
	Calendar WorkCalendar
}

// NewAggregator returns an aggregator; a nil calendar defaults to
// Sunday-as-rest-day with no statutory holidays.
func NewAggregator(calendar WorkCalendar) *Aggregator {
	if calendar == nil {
		calendar = NewDefaultCalendar()
	}
	return &Aggregator{Calendar: calendar}
}

// Aggregate folds the intervals into an HourBreakdown. Hours are fractional,
// rounded to 2 decimal places per bucket. Rules supply the daily standard.
func (a *Aggregator) Aggregate(intervals []AttendanceInterval, rules StatutoryRuleSet) (HourBreakdown, error) {
	var (
		regular  = decimal.Zero
		overtime = decimal.Zero
		night    = decimal.Zero
		holReg   = decimal.Zero
		holExt   = decimal.Zero

		daysSeen    = map[string]bool{}
		holidaySeen = map[string]bool{}
	)

	standard := rules.WorkTime.DailyStandardHours

	for i, iv := range intervals {
		if iv.End.Before(iv.Start) {
			return HourBreakdown{}, &IntervalError{Index: i, Start: iv.Start, End: iv.End}
		}
		dur := iv.Duration()
		if dur == 0 {
			continue
		}

		hours := decimal.NewFromFloat(dur.Hours())
		dayKey := iv.Start.Format("2006-01-02")
		holiday := a.Calendar.IsRestDay(iv.Start)

		if !daysSeen[dayKey] {
			daysSeen[dayKey] = true
			if holiday {
				holidaySeen[dayKey] = true
			}
		}

		if holiday {
			base := decimal.Min(hours, standard)
			holReg = holReg.Add(base)
			holExt = holExt.Add(hours.Sub(base))
		} else {
			base := decimal.Min(hours, standard)
			regular = regular.Add(base)
			overtime = overtime.Add(hours.Sub(base))
		}

		night = night.Add(decimal.NewFromFloat(nightOverlap(iv.Start, iv.End).Hours()))
	}

	return HourBreakdown{
		Regular:           regular.Round(2),
		Overtime:          overtime.Round(2),
		Night:             night.Round(2),
		HolidayRegular:    holReg.Round(2),
		HolidayExtended:   holExt.Round(2),
		DaysWorked:        len(daysSeen),
		HolidayDaysWorked: len(holidaySeen),
	}, nil
}
