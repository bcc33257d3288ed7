/*
gross.go - Gross pay composition

PURPOSE:
  Combines base pay, the weekly-rest-day allowance, premium pay and capped
  non-taxable allowances into gross and taxable totals.

ROUNDING POLICY:
  Each component is floored to whole won INDEPENDENTLY before summation.
  Flooring once at the end would drift from the statutory per-item
  truncation the pay slip must show, so:

    grossPay = floor(basicPay) + weeklyRestPay + overtimePay
             + nightPay + holidayPay + nonTaxableTotal

  where every named component is already floored.

WEEKLY REST:
  Hourly and daily contracts earn a paid weekly rest day when average weekly
  hours (total / days worked x 5) meet the threshold (default 15h). The
  allowance is averageDailyHours x hourlyRate x 4.345 (weeks per month),
  floored. Fixed-salary contracts already include it in the salary.
*/
package payroll

import (
	"github.com/shopspring/decimal"
)

var five = decimal.NewFromInt(5)

// GrossBreakdown is the composed gross side of a pay result.
type GrossBreakdown struct {
	BasicPay        Money
	WeeklyRestPay   Money
	OvertimePay     Money
	NightPay        Money
	HolidayPay      Money
	NonTaxableTotal Money
	GrossPay        Money
	TaxableIncome   Money
}

// Compose builds the gross breakdown from aggregated hours, the
// hourly-equivalent rate and the contract terms.
func Compose(hours HourBreakdown, hourlyRate decimal.Decimal, terms CompensationTerms, rules StatutoryRuleSet) GrossBreakdown {
	basic := basicPay(hours, hourlyRate, terms, rules)
	rest := weeklyRestPay(hours, hourlyRate, terms, rules)

	rate := MoneyFromDecimal(hourlyRate)
	overtimePay := rate.Mul(hours.Overtime).Mul(rules.Premiums.Overtime).Floor()
	nightPay := rate.Mul(hours.Night).Mul(rules.Premiums.Night).Floor()
	// Holiday regular and extended are floored independently, then summed.
	holidayPay := rate.Mul(hours.HolidayRegular).Mul(rules.Premiums.HolidayRegular).Floor().
		Add(rate.Mul(hours.HolidayExtended).Mul(rules.Premiums.HolidayExtended).Floor())

	nonTaxable := terms.NonTaxable.Meal.ClampZero().Min(rules.Caps.Meal).
		Add(terms.NonTaxable.Transport.ClampZero().Min(rules.Caps.Transport)).
		Add(terms.NonTaxable.Childcare.ClampZero().Min(rules.Caps.Childcare)).
		Floor()

	gross := basic.Floor().
		Add(rest).
		Add(overtimePay).
		Add(nightPay).
		Add(holidayPay).
		Add(nonTaxable)

	return GrossBreakdown{
		BasicPay:        basic.Floor(),
		WeeklyRestPay:   rest,
		OvertimePay:     overtimePay,
		NightPay:        nightPay,
		HolidayPay:      holidayPay,
		NonTaxableTotal: nonTaxable,
		GrossPay:        gross,
		TaxableIncome:   gross.Sub(nonTaxable),
	}
}

// basicPay computes base pay per basis. Fixed-pay contracts (monthly/annual)
// pay the period salary regardless of recorded hours: salaried employment
// does not reduce for under-8h days.
func basicPay(hours HourBreakdown, hourlyRate decimal.Decimal, terms CompensationTerms, rules StatutoryRuleSet) Money {
	switch terms.Basis {
	case BasisMonthly:
		return terms.Amount
	case BasisAnnual:
		return terms.Amount.Div(twelve)
	case BasisDaily:
		// Holiday-worked days are paid through the holiday premium buckets,
		// not double-counted as base days.
		days := hours.DaysWorked - hours.HolidayDaysWorked
		if days < 0 {
			days = 0
		}
		return terms.Amount.Mul(decimal.NewFromInt(int64(days)))
	default: // BasisHourly
		return MoneyFromDecimal(hourlyRate).Mul(hours.Regular)
	}
}

// weeklyRestPay computes the weekly-rest-day allowance for hourly/daily
// contracts. Zero days worked short-circuits to zero (division guard).
func weeklyRestPay(hours HourBreakdown, hourlyRate decimal.Decimal, terms CompensationTerms, rules StatutoryRuleSet) Money {
	if terms.Basis.IsFixed() {
		return ZeroWon()
	}
	if hours.DaysWorked == 0 {
		return ZeroWon()
	}

	total := hours.TotalWorked()
	daysWorked := decimal.NewFromInt(int64(hours.DaysWorked))
	avgDaily := total.Div(daysWorked)
	avgWeekly := avgDaily.Mul(five)

	if avgWeekly.LessThan(rules.WorkTime.WeeklyRestThreshold) {
		return ZeroWon()
	}

	return MoneyFromDecimal(avgDaily.Mul(hourlyRate).Mul(rules.WorkTime.WeeksPerMonth)).Floor()
}
