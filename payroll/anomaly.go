/*
anomaly.go - Advisory anomaly detection

PURPOSE:
  Flags suspicious calculations without ever blocking them. Each rule is
  evaluated independently; multiple warnings may fire on one result.

RULES:
  minimum_wage          effective hourly rate below the statutory minimum (critical)
  weekly_hour_limit     average weekly hours above the 52h ceiling (critical)
  pay_volatility        gross differs from the prior period by >30% (warning)
  pension_short_time    pension skipped for a sub-threshold part-timer (info)
*/
package payroll

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// volatilityThreshold is the month-over-month gross swing that triggers the
// pay_volatility warning (fraction of the prior gross).
var volatilityThreshold = dec("0.3")

// AnomalyContext is everything the detector inspects.
type AnomalyContext struct {
	HourlyRate       decimal.Decimal
	Hours            HourBreakdown
	GrossPay         Money
	PreviousGross    *Money
	PensionShortTime bool
}

// DetectWarnings evaluates every rule against the context. Warnings are
// advisory only: they are attached to the result for the caller to surface.
func DetectWarnings(ctx AnomalyContext, rules StatutoryRuleSet) []Warning {
	var warnings []Warning

	if ctx.HourlyRate.LessThan(rules.WorkTime.MinimumHourlyWage.Decimal()) {
		warnings = append(warnings, Warning{
			Code:  "minimum_wage",
			Level: LevelCritical,
			Message: fmt.Sprintf("effective hourly rate %s below statutory minimum %s",
				ctx.HourlyRate.StringFixed(0), rules.WorkTime.MinimumHourlyWage),
		})
	}

	// The pay period is monthly, so weekly average = total / weeks-per-month.
	avgWeekly := ctx.Hours.TotalWorked().Div(rules.WorkTime.WeeksPerMonth)
	if avgWeekly.GreaterThan(rules.WorkTime.WeeklyHourLimit) {
		warnings = append(warnings, Warning{
			Code:  "weekly_hour_limit",
			Level: LevelCritical,
			Message: fmt.Sprintf("average weekly hours %s exceed the %s-hour limit",
				avgWeekly.StringFixed(1), rules.WorkTime.WeeklyHourLimit),
		})
	}

	if ctx.PreviousGross != nil && ctx.PreviousGross.IsPositive() {
		prev := ctx.PreviousGross.Decimal()
		delta := ctx.GrossPay.Decimal().Sub(prev).Div(prev)
		if delta.Abs().GreaterThan(volatilityThreshold) {
			warnings = append(warnings, Warning{
				Code:  "pay_volatility",
				Level: LevelWarning,
				Message: fmt.Sprintf("gross pay changed %s%% versus previous period",
					delta.Mul(hundred).StringFixed(1)),
			})
		}
	}

	if ctx.PensionShortTime {
		warnings = append(warnings, Warning{
			Code:  "pension_short_time",
			Level: LevelInfo,
			Message: fmt.Sprintf("pension skipped: monthly hours below the %s-hour short-time threshold",
				rules.Pension.ShortTimeMonthlyHours),
		})
	}

	return warnings
}
