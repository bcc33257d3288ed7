/*
Package payroll implements the Korean statutory payroll calculation engine.

PURPOSE:
  This package contains the pure computation core for monthly payroll:
  attendance-hour aggregation, wage normalization, gross pay composition,
  the four mandatory social-insurance deductions, withholding income tax,
  and anomaly detection. Severance is implemented in the sibling severance
  package on top of the same rule set.

KEY CONCEPTS IN THIS FILE (types.go):
  - Money: A KRW amount backed by decimal.Decimal with statutory truncation
  - CompensationTerms: The employee's contract inputs (immutable per call)
  - AttendanceInterval: One completed shift
  - HourBreakdown: Categorized hour buckets derived from intervals
  - PayResult: The fully itemized output of one calculation

DESIGN PRINCIPLES:
  1. Precision: decimal.Decimal everywhere, never float64 money math
  2. Statutory rounding: truncation (floor / floor-to-10-won), never
     banker's rounding - this is a legal requirement
  3. Statelessness: every calculation is independent; the engine holds no
     state across calls and is safe for arbitrary caller concurrency
  4. Rules as data: every rate, cap, multiplier and threshold comes from a
     StatutoryRuleSet resolved per reference date, never a hardcoded literal
     inside a formula

USAGE:
  calc := payroll.NewCalculator(payroll.NewResolver(nil), nil, nil)
  result, err := calc.Calculate(ctx, payroll.CalculationInput{...})

SEE ALSO:
  - rules.go: StatutoryRuleSet resolution and defaults
  - hours.go: Attendance interval aggregation
  - gross.go: Gross pay composition
  - deductions.go: Statutory deductions and income tax
*/
package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - KRW amount with statutory truncation semantics
// =============================================================================

// Money is an amount in KRW. Statutory law rounds by truncation, so Money
// exposes Floor (to 1 won) and Floor10 (to 10 won) rather than Round.
type Money struct {
	value decimal.Decimal
}

var ten = decimal.NewFromInt(10)

func Won(v int64) Money                         { return Money{value: decimal.NewFromInt(v)} }
func MoneyFromDecimal(d decimal.Decimal) Money  { return Money{value: d} }
func MoneyFromFloat(f float64) Money            { return Money{value: decimal.NewFromFloat(f)} }
func ZeroWon() Money                            { return Money{value: decimal.Zero} }

func (m Money) Decimal() decimal.Decimal { return m.value }
func (m Money) Int64() int64             { return m.value.IntPart() }

func (m Money) Add(b Money) Money            { return Money{value: m.value.Add(b.value)} }
func (m Money) Sub(b Money) Money            { return Money{value: m.value.Sub(b.value)} }
func (m Money) Mul(s decimal.Decimal) Money  { return Money{value: m.value.Mul(s)} }
func (m Money) Div(s decimal.Decimal) Money  { return Money{value: m.value.Div(s)} }
func (m Money) Neg() Money                   { return Money{value: m.value.Neg()} }

// Floor truncates to whole won.
func (m Money) Floor() Money { return Money{value: m.value.Floor()} }

// Floor10 truncates to the nearest 10 won, the granularity statutory
// deductions are expressed in.
func (m Money) Floor10() Money { return Money{value: m.value.Div(ten).Floor().Mul(ten)} }

// Clamp bounds the amount to [lo, hi].
func (m Money) Clamp(lo, hi Money) Money {
	if m.LessThan(lo) {
		return lo
	}
	if m.GreaterThan(hi) {
		return hi
	}
	return m
}

// ClampZero replaces a negative amount with zero.
func (m Money) ClampZero() Money {
	if m.IsNegative() {
		return ZeroWon()
	}
	return m
}

func (m Money) IsZero() bool               { return m.value.IsZero() }
func (m Money) IsNegative() bool           { return m.value.IsNegative() }
func (m Money) IsPositive() bool           { return m.value.IsPositive() }
func (m Money) Equal(b Money) bool         { return m.value.Equal(b.value) }
func (m Money) GreaterThan(b Money) bool   { return m.value.GreaterThan(b.value) }
func (m Money) LessThan(b Money) bool      { return m.value.LessThan(b.value) }
func (m Money) Max(b Money) Money          { if m.GreaterThan(b) { return m }; return b }
func (m Money) Min(b Money) Money          { if m.LessThan(b) { return m }; return b }

func (m Money) String() string { return m.value.String() }

func (m Money) MarshalJSON() ([]byte, error) { return []byte(m.value.String()), nil }

func (m *Money) UnmarshalJSON(data []byte) error {
	d, err := decimal.NewFromString(string(data))
	if err != nil {
		return err
	}
	m.value = d
	return nil
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

type EmployeeID string

// =============================================================================
// COMPENSATION TERMS - Contract inputs, owned by the caller
// =============================================================================

// PayBasis is the compensation basis of the contract.
type PayBasis string

const (
	BasisHourly  PayBasis = "hourly"
	BasisDaily   PayBasis = "daily"
	BasisMonthly PayBasis = "monthly"
	BasisAnnual  PayBasis = "annual"
)

func (b PayBasis) Valid() bool {
	switch b {
	case BasisHourly, BasisDaily, BasisMonthly, BasisAnnual:
		return true
	}
	return false
}

// IsFixed reports whether the basis pays a fixed period salary regardless of
// recorded hours (salaried employment).
func (b PayBasis) IsFixed() bool { return b == BasisMonthly || b == BasisAnnual }

// NonTaxableAllowances are the declared monthly allowance amounts. Each is
// capped at its statutory limit during composition.
type NonTaxableAllowances struct {
	Meal      Money
	Transport Money
	Childcare Money
}

// CompensationTerms describes one employee's compensation contract.
// Immutable input per calculation.
type CompensationTerms struct {
	Basis          PayBasis
	Amount         Money // per hour / day / month / year depending on Basis
	NonTaxable     NonTaxableAllowances
	BirthDate      time.Time
	DependentCount int // dependents including the worker, minimum 1
}

// =============================================================================
// ATTENDANCE - One completed shift
// =============================================================================

// AttendanceInterval is a single completed shift [Start, End).
type AttendanceInterval struct {
	Start time.Time
	End   time.Time
}

// Duration returns the shift length; zero-length intervals are legal and
// contribute nothing.
func (a AttendanceInterval) Duration() time.Duration {
	if !a.End.After(a.Start) {
		return 0
	}
	return a.End.Sub(a.Start)
}

// =============================================================================
// HOUR BREAKDOWN - Categorized worked hours
// =============================================================================

// HourBreakdown is the categorized aggregate of a period's shifts, in
// fractional hours rounded to 2 decimal places.
//
// Invariant: Regular + Overtime + HolidayRegular + HolidayExtended equals
// total worked hours. Night overlaps the other buckets by design: it is a
// premium surcharge overlay, not a separate bucket of worked time.
type HourBreakdown struct {
	Regular         decimal.Decimal
	Overtime        decimal.Decimal
	Night           decimal.Decimal
	HolidayRegular  decimal.Decimal
	HolidayExtended decimal.Decimal

	// Day counts derived during aggregation, used by the composer for
	// daily-basis pay and weekly-rest eligibility.
	DaysWorked        int
	HolidayDaysWorked int
}

// TotalWorked returns the total worked hours (night excluded, see invariant).
func (h HourBreakdown) TotalWorked() decimal.Decimal {
	return h.Regular.Add(h.Overtime).Add(h.HolidayRegular).Add(h.HolidayExtended)
}

// =============================================================================
// RESULTS
// =============================================================================

// DeductionSet holds the statutory deductions for one month.
type DeductionSet struct {
	Pension      Money
	Health       Money
	LongTermCare Money
	Employment   Money
	IncomeTax    Money
	LocalTax     Money
}

func (d DeductionSet) Total() Money {
	return d.Pension.Add(d.Health).Add(d.LongTermCare).Add(d.Employment).
		Add(d.IncomeTax).Add(d.LocalTax)
}

// WarningLevel grades an anomaly finding.
type WarningLevel string

const (
	LevelInfo     WarningLevel = "info"
	LevelWarning  WarningLevel = "warning"
	LevelCritical WarningLevel = "critical"
)

// Warning is an advisory finding attached to a result. Warnings never block
// calculation; the caller decides how to surface them.
type Warning struct {
	Code    string
	Level   WarningLevel
	Message string
}

// PayResult is the fully itemized outcome of one payroll calculation.
// Produced fresh per call; the engine holds no state across calls.
type PayResult struct {
	EmployeeID EmployeeID

	Hours HourBreakdown

	// Effective hourly-equivalent rate used for premiums (and base pay for
	// hourly/daily contracts). Not floored.
	HourlyRate decimal.Decimal

	BasicPay        Money
	WeeklyRestPay   Money
	OvertimePay     Money
	NightPay        Money
	HolidayPay      Money
	NonTaxableTotal Money
	GrossPay        Money
	TaxableIncome   Money

	Deductions DeductionSet
	NetPay     Money

	Warnings []Warning
}

// =============================================================================
// CALCULATION INPUT
// =============================================================================

// CalculationInput carries everything one payroll calculation needs. The
// surrounding system supplies terms from the employee record, intervals from
// the time-tracking store (completed shifts only), and optionally the prior
// period's gross for volatility detection.
type CalculationInput struct {
	EmployeeID    EmployeeID
	Terms         *CompensationTerms
	Intervals     []AttendanceInterval
	HireDate      time.Time
	ReferenceDate time.Time

	// PreviousGross, when present, enables the pay-volatility warning.
	PreviousGross *Money
}
