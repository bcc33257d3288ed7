/*
calculator.go - Calculation orchestrator

PURPOSE:
  Wires the pipeline: validate -> resolve rules -> aggregate hours ->
  normalize wage -> compose gross -> deduct -> detect anomalies.

CONTRACT:
  - Typed validation error for bad input (missing terms or hire date,
    reference before hire, reversed interval); nothing partial is returned.
  - Otherwise always a complete, internally consistent PayResult, possibly
    carrying advisory warnings.
  - Rules are resolved exactly once per call and reused throughout.
  - Stateless: identical inputs yield identical results, and concurrent
    calls need no coordination.
*/
package payroll

import (
	"context"
)

// Calculator is the payroll engine entry point. Resolver is required;
// Withholding and Calendar are optional (progressive fallback and
// Sunday-rest-day defaults apply).
type Calculator struct {
	resolver   *Resolver
	deductions *DeductionEngine
	aggregator *Aggregator
}

// NewCalculator builds a calculator. A nil resolver resolves defaults only.
func NewCalculator(resolver *Resolver, table WithholdingTable, calendar WorkCalendar) *Calculator {
	if resolver == nil {
		resolver = NewResolver(nil)
	}
	return &Calculator{
		resolver:   resolver,
		deductions: &DeductionEngine{Table: table},
		aggregator: NewAggregator(calendar),
	}
}

// Calculate runs one payroll calculation.
func (c *Calculator) Calculate(ctx context.Context, input CalculationInput) (*PayResult, error) {
	if err := validate(input); err != nil {
		return nil, err
	}

	// Single rule resolution per call; every stage reuses the snapshot.
	rules := c.resolver.Resolve(ctx, input.ReferenceDate)

	hours, err := c.aggregator.Aggregate(input.Intervals, rules)
	if err != nil {
		return nil, err
	}

	rate, err := HourlyRate(*input.Terms, rules)
	if err != nil {
		return nil, err
	}

	gross := Compose(hours, rate, *input.Terms, rules)

	deductions, shortTime := c.deductions.Compute(ctx, DeductionInput{
		TaxableIncome: gross.TaxableIncome,
		Age:           AgeAt(input.Terms.BirthDate, input.ReferenceDate),
		Dependents:    input.Terms.DependentCount,
		MonthlyHours:  hours.TotalWorked(),
		Year:          input.ReferenceDate.Year(),
	}, rules)

	warnings := DetectWarnings(AnomalyContext{
		HourlyRate:       rate,
		Hours:            hours,
		GrossPay:         gross.GrossPay,
		PreviousGross:    input.PreviousGross,
		PensionShortTime: shortTime,
	}, rules)

	return &PayResult{
		EmployeeID:      input.EmployeeID,
		Hours:           hours,
		HourlyRate:      rate,
		BasicPay:        gross.BasicPay,
		WeeklyRestPay:   gross.WeeklyRestPay,
		OvertimePay:     gross.OvertimePay,
		NightPay:        gross.NightPay,
		HolidayPay:      gross.HolidayPay,
		NonTaxableTotal: gross.NonTaxableTotal,
		GrossPay:        gross.GrossPay,
		TaxableIncome:   gross.TaxableIncome,
		Deductions:      deductions,
		NetPay:          gross.GrossPay.Sub(deductions.Total()),
		Warnings:        warnings,
	}, nil
}

func validate(input CalculationInput) error {
	if input.Terms == nil {
		return ErrMissingTerms
	}
	if !input.Terms.Basis.Valid() {
		return ErrInvalidBasis
	}
	if !input.Terms.Amount.IsPositive() {
		return ErrNonPositiveAmount
	}
	if input.HireDate.IsZero() {
		return ErrMissingHireDate
	}
	if input.ReferenceDate.Before(input.HireDate) {
		return ErrReferenceBeforeHire
	}
	return nil
}
