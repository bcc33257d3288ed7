// Package severance implements Korean statutory severance pay and the
// 8-step progressive termination income tax. It builds on the payroll
// package's rule set, money semantics and validation taxonomy.
package severance

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrRetirementBeforeHire is returned when the retirement date precedes
	// the hire date.
	ErrRetirementBeforeHire = errors.New("retirement date precedes hire date")

	// ErrMissingRetirementDate is returned when the retirement date is absent.
	ErrMissingRetirementDate = errors.New("missing retirement date")
)

// IsValidationError reports whether the error is an input-validation failure
// from either the payroll or severance taxonomy.
func IsValidationError(err error) bool {
	return payroll.IsValidationError(err) ||
		errors.Is(err, ErrRetirementBeforeHire) ||
		errors.Is(err, ErrMissingRetirementDate)
}

// =============================================================================
// INPUT
// =============================================================================

// ExclusionPeriod is a span of days (inclusive) excluded from the
// average-wage window, e.g. unpaid leave.
type ExclusionPeriod struct {
	Start time.Time
	End   time.Time
}

// LookbackWages are the wage components actually paid over the 3-month
// average-wage window, supplied by the caller from payroll history.
type LookbackWages struct {
	BasePay                 payroll.Money
	FixedAllowances         payroll.Money // meal, car and similar fixed items
	PremiumPay              payroll.Money // overtime/night/holiday premiums
	UnusedLeaveCompensation payroll.Money
}

// Total sums the components.
func (w LookbackWages) Total() payroll.Money {
	return w.BasePay.Add(w.FixedAllowances).Add(w.PremiumPay).Add(w.UnusedLeaveCompensation)
}

// Input carries everything one severance calculation needs.
type Input struct {
	EmployeeID     payroll.EmployeeID
	Terms          *payroll.CompensationTerms
	HireDate       time.Time
	RetirementDate time.Time

	Wages LookbackWages

	// AnnualBonus is pro-rated into the window as bonus x 3/12 when
	// IncludeBonus is set (employer policy decides).
	AnnualBonus  payroll.Money
	IncludeBonus bool

	Exclusions []ExclusionPeriod
}

// =============================================================================
// RESULT
// =============================================================================

// Status is the terminal state of a severance calculation.
type Status string

const (
	// StatusIneligible: service shorter than one year; no further figures
	// are computed. This is a well-defined outcome, not an error.
	StatusIneligible Status = "ineligible"
	StatusComputed   Status = "computed"
)

// TaxBreakdown itemizes the 8-step progressive termination tax.
type TaxBreakdown struct {
	ServiceYearsDeduction payroll.Money
	ConvertedSalary       payroll.Money
	ConvertedDeduction    payroll.Money
	TaxBase               payroll.Money
	IncomeTax             payroll.Money
	LocalTax              payroll.Money
}

func (t TaxBreakdown) Total() payroll.Money { return t.IncomeTax.Add(t.LocalTax) }

// Result is the itemized severance outcome.
type Result struct {
	EmployeeID payroll.EmployeeID
	Status     Status

	ServiceDays  int
	ServiceYears decimal.Decimal

	AverageDailyWage  decimal.Decimal
	OrdinaryDailyWage decimal.Decimal
	AppliedDailyWage  decimal.Decimal // max of the two: the law guarantees the better

	SeverancePay payroll.Money
	Tax          TaxBreakdown
	NetSeverance payroll.Money

	// IRP annuity tax-benefit simulation, informational only: the lump-sum
	// tax reduced to 70% when the annuity is received within 10 years, 60%
	// beyond.
	IRPTaxWithin10Years payroll.Money
	IRPTaxAfter10Years  payroll.Money
}
