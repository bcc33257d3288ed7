/*
deductions.go - Statutory deduction engine

PURPOSE:
  Computes the four mandatory social-insurance deductions plus withholding
  income tax and local income tax for one month.

RULES (all amounts truncated, never rounded half-up - legal requirement):
  Pension        skipped at/after the exemption age (60) or when monthly
                 worked hours fall below the short-time threshold (60h,
                 part-time workers are exempt by law); otherwise
                 floor10(clamp(income, floor, cap) x rate)
  Health         floor10(income x rate), no exemption
  Long-term care floor10(healthResult x careRate) - compounds on the HEALTH
                 RESULT, not on income
  Employment     skipped at/after 65; otherwise floor10(income x rate)
  Income tax     withholding-table lookup keyed (year, dependents, income
                 range); progressive-formula fallback when no row matches
  Local tax      floor10(incomeTax x 10%)
*/
package payroll

import (
	"context"

	"github.com/shopspring/decimal"
)

// =============================================================================
// WITHHOLDING TABLE - Primary income-tax path
// =============================================================================

// WithholdingTable looks up the simplified monthly withholding amount. The
// second return is false when no row covers the inputs, in which case the
// engine falls back to the progressive formula.
type WithholdingTable interface {
	MonthlyWithholding(ctx context.Context, year, dependents int, monthlyTaxable Money) (Money, bool, error)
}

// =============================================================================
// DEDUCTION ENGINE
// =============================================================================

// DeductionInput carries what the deduction rules key on.
type DeductionInput struct {
	TaxableIncome Money
	Age           int
	Dependents    int
	MonthlyHours  decimal.Decimal
	Year          int
}

// DeductionEngine computes the statutory deduction set. Table is optional;
// nil means the progressive fallback always applies.
type DeductionEngine struct {
	Table WithholdingTable
}

// Compute returns the deduction set and whether pension was skipped because
// of the short-time-worker exemption (surfaced as an informational warning
// by the anomaly detector).
func (e *DeductionEngine) Compute(ctx context.Context, in DeductionInput, rules StatutoryRuleSet) (DeductionSet, bool) {
	income := in.TaxableIncome.ClampZero()

	var set DeductionSet
	shortTime := false

	switch {
	case in.Age >= rules.Pension.ExemptionAge:
		set.Pension = ZeroWon()
	case in.MonthlyHours.LessThan(rules.Pension.ShortTimeMonthlyHours):
		set.Pension = ZeroWon()
		shortTime = true
	default:
		base := income.Clamp(rules.Pension.MonthlyFloor, rules.Pension.MonthlyCap)
		set.Pension = base.Mul(rules.Pension.EmployeeRate).Floor10()
	}

	set.Health = income.Mul(rules.Health.EmployeeRate).Floor10()
	set.LongTermCare = set.Health.Mul(rules.Health.LongTermCareRate).Floor10()

	if in.Age >= rules.Employment.ExemptionAge {
		set.Employment = ZeroWon()
	} else {
		set.Employment = income.Mul(rules.Employment.EmployeeRate).Floor10()
	}

	set.IncomeTax = e.incomeTax(ctx, in, income, rules)
	set.LocalTax = set.IncomeTax.Mul(rules.IncomeTax.LocalTaxRate).Floor10()

	return set, shortTime
}

// incomeTax tries the withholding table first and falls back to the
// progressive formula: annualize, subtract the per-dependent personal
// deduction, apply the bracket table, divide back to monthly, truncate to
// 10-won granularity.
func (e *DeductionEngine) incomeTax(ctx context.Context, in DeductionInput, income Money, rules StatutoryRuleSet) Money {
	dependents := in.Dependents
	if dependents < 1 {
		dependents = 1
	}

	if e.Table != nil {
		if tax, ok, err := e.Table.MonthlyWithholding(ctx, in.Year, dependents, income); err == nil && ok {
			return tax.ClampZero().Floor10()
		}
	}

	annual := income.Mul(twelve).
		Sub(rules.IncomeTax.PersonalDeduction.Mul(decimal.NewFromInt(int64(dependents)))).
		ClampZero()
	annualTax := rules.IncomeTax.ProgressiveTax(annual)
	return annualTax.Div(twelve).Floor10()
}
