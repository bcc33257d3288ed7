/*
rules.go - Versioned statutory rule resolution

PURPOSE:
  Statutory rates, caps, multipliers and thresholds change by effective date
  (the source history of this system shows the same formulas re-shipped with
  different constants year after year). Every such value therefore lives in
  a StatutoryRuleSet resolved per reference date, never inside a formula.

RESOLUTION CONTRACT:
  Resolve(referenceDate) never fails. Absence of a custom rule record is the
  normal case, not an error: the hardcoded current-year defaults apply, and
  each category is independently overridable - an override record may set
  only the fields it cares about and inherit the rest.

CACHING:
  Multiple rule requests for the same date within one calculation (and
  across a bulk payroll run) resolve once and reuse the snapshot, via a
  TTL cache keyed by date.

SEE ALSO:
  - factory/rules.go: JSON rule definitions with load-time validation
  - store/sqlite: effective-dated rule records
*/
package payroll

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
)

// =============================================================================
// STATUTORY RULE SET - Point-in-time snapshot of all constants
// =============================================================================

// PensionRule governs the national pension deduction.
type PensionRule struct {
	EmployeeRate          decimal.Decimal
	MonthlyFloor          Money // lower limit of the contribution base
	MonthlyCap            Money // upper limit of the contribution base
	ExemptionAge          int   // no pension at or above this age
	ShortTimeMonthlyHours decimal.Decimal // below this, worker is exempt
}

// HealthRule governs health insurance and the long-term-care surcharge.
type HealthRule struct {
	EmployeeRate     decimal.Decimal
	LongTermCareRate decimal.Decimal // applied to the health result, not income
}

// EmploymentRule governs employment insurance.
type EmploymentRule struct {
	EmployeeRate decimal.Decimal
	ExemptionAge int
}

// TaxBracket is one band of the progressive income-tax table, on annual
// income. UpTo is nil for the unbounded top band. CumulativeDeduction is the
// statutory subtraction constant that makes the marginal table single-pass.
type TaxBracket struct {
	UpTo                *Money
	Rate                decimal.Decimal
	CumulativeDeduction Money
}

// IncomeTaxRule governs withholding income tax and local income tax.
type IncomeTaxRule struct {
	LocalTaxRate decimal.Decimal
	// PersonalDeduction is the annual deduction per dependent (the worker
	// included) used by the progressive-formula fallback.
	PersonalDeduction Money
	Brackets          []TaxBracket
}

// ProgressiveTax applies the bracket table to an annual income. Negative
// results are clamped to zero. The same table drives the termination-tax
// converted-tax step in the severance package.
func (r IncomeTaxRule) ProgressiveTax(annual Money) Money {
	annual = annual.ClampZero()
	for _, b := range r.Brackets {
		if b.UpTo == nil || !annual.GreaterThan(*b.UpTo) {
			return annual.Mul(b.Rate).Sub(b.CumulativeDeduction).ClampZero()
		}
	}
	return ZeroWon()
}

// PremiumRule holds the statutory premium multipliers applied to the
// hourly-equivalent rate.
//
// Night is a surcharge multiplier: night hours overlay hours already paid at
// base rate through their primary bucket, so the statutory "additional 50%"
// is modeled as 0.5 on top, not 1.5 standalone. Employers on the standalone
// model override it to 1.5.
type PremiumRule struct {
	Overtime        decimal.Decimal
	Night           decimal.Decimal
	HolidayRegular  decimal.Decimal
	HolidayExtended decimal.Decimal
}

// WorkTimeRule holds working-time constants and thresholds.
type WorkTimeRule struct {
	DailyStandardHours    decimal.Decimal // above this, a shift is overtime
	MonthlyStatutoryHours decimal.Decimal // 209: 40h week + paid weekly rest
	WeeksPerMonth         decimal.Decimal // 4.345
	WeeklyRestThreshold   decimal.Decimal // min avg weekly hours for rest pay
	WeeklyHourLimit       decimal.Decimal // statutory 52h ceiling
	MinimumHourlyWage     Money
}

// NonTaxableCaps are the per-category monthly caps on non-taxable allowances.
type NonTaxableCaps struct {
	Meal      Money
	Transport Money
	Childcare Money
}

// StatutoryRuleSet is the point-in-time snapshot of every constant the
// engine consumes. Immutable once resolved; re-resolved per calculation.
type StatutoryRuleSet struct {
	EffectiveDate time.Time

	Pension    PensionRule
	Health     HealthRule
	Employment EmploymentRule
	IncomeTax  IncomeTaxRule
	Premiums   PremiumRule
	WorkTime   WorkTimeRule
	Caps       NonTaxableCaps
}

// =============================================================================
// DEFAULTS - Current-year statutory values
// =============================================================================

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// DefaultRuleSet returns the hardcoded current-year statutory values. This
// is the normal resolution path when no custom rule record covers the date.
func DefaultRuleSet(referenceDate time.Time) StatutoryRuleSet {
	return StatutoryRuleSet{
		EffectiveDate: referenceDate,
		Pension: PensionRule{
			EmployeeRate:          dec("0.045"),
			MonthlyFloor:          Won(400_000),
			MonthlyCap:            Won(6_370_000),
			ExemptionAge:          60,
			ShortTimeMonthlyHours: dec("60"),
		},
		Health: HealthRule{
			EmployeeRate:     dec("0.03545"),
			LongTermCareRate: dec("0.1295"),
		},
		Employment: EmploymentRule{
			EmployeeRate: dec("0.009"),
			ExemptionAge: 65,
		},
		IncomeTax: IncomeTaxRule{
			LocalTaxRate:      dec("0.1"),
			PersonalDeduction: Won(1_500_000),
			Brackets:          defaultBrackets(),
		},
		Premiums: PremiumRule{
			Overtime:        dec("1.5"),
			Night:           dec("0.5"),
			HolidayRegular:  dec("1.5"),
			HolidayExtended: dec("2.0"),
		},
		WorkTime: WorkTimeRule{
			DailyStandardHours:    dec("8"),
			MonthlyStatutoryHours: dec("209"),
			WeeksPerMonth:         dec("4.345"),
			WeeklyRestThreshold:   dec("15"),
			WeeklyHourLimit:       dec("52"),
			MinimumHourlyWage:     Won(10_320),
		},
		Caps: NonTaxableCaps{
			Meal:      Won(200_000),
			Transport: Won(200_000),
			Childcare: Won(200_000),
		},
	}
}

// defaultBrackets is the standard 8-band progressive table (annual KRW).
func defaultBrackets() []TaxBracket {
	band := func(upTo int64, rate string, cum int64) TaxBracket {
		u := Won(upTo)
		return TaxBracket{UpTo: &u, Rate: dec(rate), CumulativeDeduction: Won(cum)}
	}
	return []TaxBracket{
		band(14_000_000, "0.06", 0),
		band(50_000_000, "0.15", 1_260_000),
		band(88_000_000, "0.24", 5_760_000),
		band(150_000_000, "0.35", 15_440_000),
		band(300_000_000, "0.38", 19_940_000),
		band(500_000_000, "0.40", 25_940_000),
		band(1_000_000_000, "0.42", 35_940_000),
		{UpTo: nil, Rate: dec("0.45"), CumulativeDeduction: Won(65_940_000)},
	}
}

// =============================================================================
// RULE OVERRIDE - Strongly typed, per-category optional fields
// =============================================================================

// RuleOverride is one effective-dated rule record. Every field is optional;
// unset fields inherit the defaults. This replaces the string-keyed dynamic
// field matching the original rule records used - overrides are parsed and
// validated at load time (see factory package).
type RuleOverride struct {
	PensionRate           *decimal.Decimal `json:"pension_rate,omitempty"`
	PensionMonthlyFloor   *int64           `json:"pension_monthly_floor,omitempty"`
	PensionMonthlyCap     *int64           `json:"pension_monthly_cap,omitempty"`
	PensionExemptionAge   *int             `json:"pension_exemption_age,omitempty"`
	ShortTimeMonthlyHours *decimal.Decimal `json:"short_time_monthly_hours,omitempty"`

	HealthRate       *decimal.Decimal `json:"health_rate,omitempty"`
	LongTermCareRate *decimal.Decimal `json:"long_term_care_rate,omitempty"`

	EmploymentRate         *decimal.Decimal `json:"employment_rate,omitempty"`
	EmploymentExemptionAge *int             `json:"employment_exemption_age,omitempty"`

	LocalTaxRate      *decimal.Decimal `json:"local_tax_rate,omitempty"`
	PersonalDeduction *int64           `json:"personal_deduction,omitempty"`

	OvertimeMultiplier        *decimal.Decimal `json:"overtime_multiplier,omitempty"`
	NightMultiplier           *decimal.Decimal `json:"night_multiplier,omitempty"`
	HolidayRegularMultiplier  *decimal.Decimal `json:"holiday_regular_multiplier,omitempty"`
	HolidayExtendedMultiplier *decimal.Decimal `json:"holiday_extended_multiplier,omitempty"`

	MonthlyStatutoryHours *decimal.Decimal `json:"monthly_statutory_hours,omitempty"`
	WeeklyRestThreshold   *decimal.Decimal `json:"weekly_rest_threshold,omitempty"`
	WeeklyHourLimit       *decimal.Decimal `json:"weekly_hour_limit,omitempty"`
	MinimumHourlyWage     *int64           `json:"minimum_hourly_wage,omitempty"`

	MealCap      *int64 `json:"meal_cap,omitempty"`
	TransportCap *int64 `json:"transport_cap,omitempty"`
	ChildcareCap *int64 `json:"childcare_cap,omitempty"`
}

// Apply merges the set fields onto the rule set.
func (o *RuleOverride) Apply(rs *StatutoryRuleSet) {
	if o == nil {
		return
	}
	setDec := func(dst *decimal.Decimal, src *decimal.Decimal) {
		if src != nil {
			*dst = *src
		}
	}
	setWon := func(dst *Money, src *int64) {
		if src != nil {
			*dst = Won(*src)
		}
	}
	setInt := func(dst *int, src *int) {
		if src != nil {
			*dst = *src
		}
	}

	setDec(&rs.Pension.EmployeeRate, o.PensionRate)
	setWon(&rs.Pension.MonthlyFloor, o.PensionMonthlyFloor)
	setWon(&rs.Pension.MonthlyCap, o.PensionMonthlyCap)
	setInt(&rs.Pension.ExemptionAge, o.PensionExemptionAge)
	setDec(&rs.Pension.ShortTimeMonthlyHours, o.ShortTimeMonthlyHours)

	setDec(&rs.Health.EmployeeRate, o.HealthRate)
	setDec(&rs.Health.LongTermCareRate, o.LongTermCareRate)

	setDec(&rs.Employment.EmployeeRate, o.EmploymentRate)
	setInt(&rs.Employment.ExemptionAge, o.EmploymentExemptionAge)

	setDec(&rs.IncomeTax.LocalTaxRate, o.LocalTaxRate)
	setWon(&rs.IncomeTax.PersonalDeduction, o.PersonalDeduction)

	setDec(&rs.Premiums.Overtime, o.OvertimeMultiplier)
	setDec(&rs.Premiums.Night, o.NightMultiplier)
	setDec(&rs.Premiums.HolidayRegular, o.HolidayRegularMultiplier)
	setDec(&rs.Premiums.HolidayExtended, o.HolidayExtendedMultiplier)

	setDec(&rs.WorkTime.MonthlyStatutoryHours, o.MonthlyStatutoryHours)
	setDec(&rs.WorkTime.WeeklyRestThreshold, o.WeeklyRestThreshold)
	setDec(&rs.WorkTime.WeeklyHourLimit, o.WeeklyHourLimit)
	setWon(&rs.WorkTime.MinimumHourlyWage, o.MinimumHourlyWage)

	setWon(&rs.Caps.Meal, o.MealCap)
	setWon(&rs.Caps.Transport, o.TransportCap)
	setWon(&rs.Caps.Childcare, o.ChildcareCap)
}

// =============================================================================
// RULE STORE - The engine's single injected dependency
// =============================================================================

// RuleStore resolves the override record (if any) whose validity window
// contains the date. Returning (nil, nil) means "no custom rules", which is
// the normal case.
type RuleStore interface {
	ResolveOverride(ctx context.Context, date time.Time) (*RuleOverride, error)
}

// =============================================================================
// RESOLVER - Defaults + override merge, cached per date
// =============================================================================

const (
	ruleCacheTTL     = 5 * time.Minute
	ruleCacheSweep   = 10 * time.Minute
	ruleCacheDateKey = "2006-01-02"
)

// Resolver produces StatutoryRuleSet snapshots. It never fails: store errors
// and missing records both fall back to defaults, so a broken rule table can
// never block a payroll run.
type Resolver struct {
	store RuleStore
	cache *gocache.Cache
}

// NewResolver creates a resolver. A nil store is valid and yields defaults.
func NewResolver(store RuleStore) *Resolver {
	return &Resolver{
		store: store,
		cache: gocache.New(ruleCacheTTL, ruleCacheSweep),
	}
}

// Resolve returns the rule set in force on the given date.
func (r *Resolver) Resolve(ctx context.Context, date time.Time) StatutoryRuleSet {
	key := date.Format(ruleCacheDateKey)
	if cached, ok := r.cache.Get(key); ok {
		return cached.(StatutoryRuleSet)
	}

	rs := DefaultRuleSet(date)
	if r.store != nil {
		if override, err := r.store.ResolveOverride(ctx, date); err == nil {
			override.Apply(&rs)
		}
		// A store error is a rule-resolution gap, not a failure: the caller
		// may log it for audit, the calculation proceeds on defaults.
	}

	r.cache.Set(key, rs, gocache.DefaultExpiration)
	return rs
}
