/*
severance.go - Average-wage severance computation

PURPOSE:
  State machine: eligibility gate -> average-wage computation -> tax
  computation -> net result. Terminal states: ineligible (service under
  365 days, returns early) or computed.

AVERAGE WAGE:
  The window is the 3 calendar months immediately preceding the retirement
  date, with actual calendar days (89-92), never a fixed 90/91. Exclusion
  periods (unpaid leave) subtract their overlapping days from the window
  (floor 1 day) and their pro-rated share from the wage total.

ORDINARY-WAGE FLOOR:
  appliedDailyWage = max(averageDailyWage, ordinaryDailyWage). The employee
  is guaranteed the better of the two.

  severancePay = floor(appliedDailyWage x 30 x serviceYears)
*/
package severance

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/payroll"
)

var (
	thirty      = decimal.NewFromInt(30)
	twelve      = decimal.NewFromInt(12)
	three       = decimal.NewFromInt(3)
	daysPerYear = decimal.NewFromInt(365)
)

// Engine computes severance results. Rules are resolved at the retirement
// date through the shared payroll resolver.
type Engine struct {
	resolver *payroll.Resolver
}

// NewEngine builds an engine. A nil resolver resolves defaults only.
func NewEngine(resolver *payroll.Resolver) *Engine {
	if resolver == nil {
		resolver = payroll.NewResolver(nil)
	}
	return &Engine{resolver: resolver}
}

// Calculate runs one severance calculation.
func (e *Engine) Calculate(ctx context.Context, input Input) (*Result, error) {
	if err := validate(input); err != nil {
		return nil, err
	}

	rules := e.resolver.Resolve(ctx, input.RetirementDate)

	// Service period: both endpoints inclusive.
	serviceDays := payroll.DaysBetween(input.HireDate, input.RetirementDate) + 1
	serviceYears := decimal.NewFromInt(int64(serviceDays)).Div(daysPerYear)

	if serviceDays < 365 {
		return &Result{
			EmployeeID:   input.EmployeeID,
			Status:       StatusIneligible,
			ServiceDays:  serviceDays,
			ServiceYears: serviceYears,
		}, nil
	}

	avgDaily := e.averageDailyWage(input)
	ordinaryDaily := ordinaryDailyWage(*input.Terms, rules)
	applied := decimal.Max(avgDaily, ordinaryDaily)

	severancePay := payroll.MoneyFromDecimal(applied.Mul(thirty).Mul(serviceYears)).Floor()

	tax := ComputeTerminationTax(severancePay, serviceYears, rules)

	lumpSum := tax.Total()
	return &Result{
		EmployeeID:          input.EmployeeID,
		Status:              StatusComputed,
		ServiceDays:         serviceDays,
		ServiceYears:        serviceYears,
		AverageDailyWage:    avgDaily,
		OrdinaryDailyWage:   ordinaryDaily,
		AppliedDailyWage:    applied,
		SeverancePay:        severancePay,
		Tax:                 tax,
		NetSeverance:        severancePay.Sub(lumpSum),
		IRPTaxWithin10Years: AnnuityTax(lumpSum, true),
		IRPTaxAfter10Years:  AnnuityTax(lumpSum, false),
	}, nil
}

// averageDailyWage computes total lookback wage over adjusted calendar days.
func (e *Engine) averageDailyWage(input Input) decimal.Decimal {
	windowStart := input.RetirementDate.AddDate(0, -3, 0)
	windowDays := payroll.DaysBetween(windowStart, input.RetirementDate)
	if windowDays <= 0 {
		return decimal.Zero
	}

	total := input.Wages.Total()
	if input.IncludeBonus {
		total = total.Add(input.AnnualBonus.Mul(three).Div(twelve))
	}

	excluded := excludedDays(input.Exclusions, windowStart, input.RetirementDate)
	if excluded > 0 {
		// Pro-rate the excluded share out of the wage total.
		ratio := decimal.NewFromInt(int64(excluded)).Div(decimal.NewFromInt(int64(windowDays)))
		total = total.Sub(total.Mul(ratio)).ClampZero()
	}

	adjustedDays := windowDays - excluded
	if adjustedDays < 1 {
		adjustedDays = 1
	}

	return total.Decimal().Div(decimal.NewFromInt(int64(adjustedDays)))
}

// excludedDays counts calendar days of the exclusions overlapping
// [windowStart, retirement). Exclusion endpoints are inclusive dates.
func excludedDays(exclusions []ExclusionPeriod, windowStart, retirement time.Time) int {
	total := 0
	for _, ex := range exclusions {
		if ex.End.Before(ex.Start) {
			continue
		}
		from := payroll.MaxDate(ex.Start, windowStart)
		to := payroll.MinDate(ex.End.AddDate(0, 0, 1), retirement)
		if d := payroll.DaysBetween(from, to); d > 0 {
			total += d
		}
	}
	if total < 0 {
		return 0
	}
	return total
}

// ordinaryDailyWage derives the contractual daily wage: monthly salary / 30,
// hourly x monthly statutory hours / 30, daily rate as-is, annual / 12 / 30.
func ordinaryDailyWage(terms payroll.CompensationTerms, rules payroll.StatutoryRuleSet) decimal.Decimal {
	amount := terms.Amount.Decimal()
	switch terms.Basis {
	case payroll.BasisMonthly:
		return amount.Div(thirty)
	case payroll.BasisHourly:
		return amount.Mul(rules.WorkTime.MonthlyStatutoryHours).Div(thirty)
	case payroll.BasisDaily:
		return amount
	case payroll.BasisAnnual:
		return amount.Div(twelve).Div(thirty)
	default:
		return decimal.Zero
	}
}

func validate(input Input) error {
	if input.Terms == nil {
		return payroll.ErrMissingTerms
	}
	if !input.Terms.Basis.Valid() {
		return payroll.ErrInvalidBasis
	}
	if !input.Terms.Amount.IsPositive() {
		return payroll.ErrNonPositiveAmount
	}
	if input.HireDate.IsZero() {
		return payroll.ErrMissingHireDate
	}
	if input.RetirementDate.IsZero() {
		return ErrMissingRetirementDate
	}
	if input.RetirementDate.Before(input.HireDate) {
		return ErrRetirementBeforeHire
	}
	return nil
}
