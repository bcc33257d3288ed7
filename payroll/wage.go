package payroll

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// WAGE NORMALIZER - Any basis to an hourly-equivalent rate
// =============================================================================

var twelve = decimal.NewFromInt(12)

// HourlyRate converts the contract amount to an effective hourly rate.
//
// The rate drives premium pay regardless of basis (premiums are legally
// based on the hourly-equivalent ordinary wage) and base pay for hourly and
// daily contracts. Monthly salary divides by the statutory monthly hours
// (209: 40h week plus paid weekly rest); annual divides by 12 first; daily
// divides by the daily standard.
func HourlyRate(terms CompensationTerms, rules StatutoryRuleSet) (decimal.Decimal, error) {
	if !terms.Basis.Valid() {
		return decimal.Zero, ErrInvalidBasis
	}
	if !terms.Amount.IsPositive() {
		return decimal.Zero, ErrNonPositiveAmount
	}

	amount := terms.Amount.Decimal()
	switch terms.Basis {
	case BasisHourly:
		return amount, nil
	case BasisDaily:
		return amount.Div(rules.WorkTime.DailyStandardHours), nil
	case BasisMonthly:
		return amount.Div(rules.WorkTime.MonthlyStatutoryHours), nil
	default: // BasisAnnual
		return amount.Div(twelve).Div(rules.WorkTime.MonthlyStatutoryHours), nil
	}
}
