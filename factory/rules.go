/*
Package factory provides JSON to Go statutory-rule conversion.

PURPOSE:
  Converts JSON rule definitions into strongly-typed payroll.RuleOverride
  records. This enables rate changes without code changes - an administrator
  ships a JSON record when a statutory constant moves, and the factory
  validates it at load time.

  Every field is a named, typed, optional override; there is no string-keyed
  dynamic field matching. A record that sets an out-of-range rate, a negative
  cap or an unparseable date is rejected at load, never at calculation time.

JSON SCHEMA:
  {
    "effective_from": "2027-01-01",
    "effective_to": "2027-12-31",        // optional, open-ended when absent
    "rules": {
      "pension_rate": 0.047,
      "minimum_hourly_wage": 10650,
      "meal_cap": 210000
    }
  }

USAGE:
  record, err := factory.ParseRuleRecord(jsonBytes)
  // record.Override is ready for payroll.RuleOverride.Apply

SEE ALSO:
  - payroll/rules.go: RuleOverride definition and merge semantics
  - store/sqlite: persists validated records with effective windows
*/
package factory

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// RuleRecordJSON is the JSON representation of one effective-dated record.
type RuleRecordJSON struct {
	EffectiveFrom string               `json:"effective_from"`
	EffectiveTo   string               `json:"effective_to,omitempty"`
	Rules         payroll.RuleOverride `json:"rules"`
}

// RuleRecord is the parsed, validated record.
type RuleRecord struct {
	EffectiveFrom time.Time
	EffectiveTo   *time.Time // nil = open-ended
	Override      payroll.RuleOverride
}

// =============================================================================
// PARSING
// =============================================================================

const dateLayout = "2006-01-02"

// ParseRuleRecord parses and validates one JSON rule record.
func ParseRuleRecord(data []byte) (*RuleRecord, error) {
	var raw RuleRecordJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse rule record: %w", err)
	}

	if raw.EffectiveFrom == "" {
		return nil, fmt.Errorf("rule record: effective_from is required")
	}
	from, err := time.Parse(dateLayout, raw.EffectiveFrom)
	if err != nil {
		return nil, fmt.Errorf("rule record: bad effective_from %q: %w", raw.EffectiveFrom, err)
	}

	var to *time.Time
	if raw.EffectiveTo != "" {
		parsed, err := time.Parse(dateLayout, raw.EffectiveTo)
		if err != nil {
			return nil, fmt.Errorf("rule record: bad effective_to %q: %w", raw.EffectiveTo, err)
		}
		if parsed.Before(from) {
			return nil, fmt.Errorf("rule record: effective_to before effective_from")
		}
		to = &parsed
	}

	if err := ValidateOverride(&raw.Rules); err != nil {
		return nil, err
	}

	return &RuleRecord{EffectiveFrom: from, EffectiveTo: to, Override: raw.Rules}, nil
}

// ParseOverride parses and validates a bare override document (the payload
// format persisted by the sqlite store).
func ParseOverride(data []byte) (*payroll.RuleOverride, error) {
	var override payroll.RuleOverride
	if err := json.Unmarshal(data, &override); err != nil {
		return nil, fmt.Errorf("parse rule override: %w", err)
	}
	if err := ValidateOverride(&override); err != nil {
		return nil, err
	}
	return &override, nil
}

// =============================================================================
// VALIDATION
// =============================================================================

var (
	one          = decimal.NewFromInt(1)
	maxMultiplier = decimal.NewFromInt(5)
	maxHours     = decimal.NewFromInt(400)
)

// ValidateOverride checks every set field against its legal range.
func ValidateOverride(o *payroll.RuleOverride) error {
	if o == nil {
		return nil
	}

	var errs []error
	rate := func(name string, v *decimal.Decimal) {
		if v != nil && (v.IsNegative() || v.GreaterThan(one)) {
			errs = append(errs, fmt.Errorf("%s must be within [0, 1], got %s", name, v))
		}
	}
	multiplier := func(name string, v *decimal.Decimal) {
		if v != nil && (v.IsNegative() || v.GreaterThan(maxMultiplier)) {
			errs = append(errs, fmt.Errorf("%s must be within [0, 5], got %s", name, v))
		}
	}
	hours := func(name string, v *decimal.Decimal) {
		if v != nil && (v.IsNegative() || v.GreaterThan(maxHours)) {
			errs = append(errs, fmt.Errorf("%s must be within [0, 400], got %s", name, v))
		}
	}
	amount := func(name string, v *int64) {
		if v != nil && *v < 0 {
			errs = append(errs, fmt.Errorf("%s must be non-negative, got %d", name, *v))
		}
	}
	age := func(name string, v *int) {
		if v != nil && (*v < 0 || *v > 120) {
			errs = append(errs, fmt.Errorf("%s must be within [0, 120], got %d", name, *v))
		}
	}

	rate("pension_rate", o.PensionRate)
	amount("pension_monthly_floor", o.PensionMonthlyFloor)
	amount("pension_monthly_cap", o.PensionMonthlyCap)
	age("pension_exemption_age", o.PensionExemptionAge)
	hours("short_time_monthly_hours", o.ShortTimeMonthlyHours)

	rate("health_rate", o.HealthRate)
	rate("long_term_care_rate", o.LongTermCareRate)

	rate("employment_rate", o.EmploymentRate)
	age("employment_exemption_age", o.EmploymentExemptionAge)

	rate("local_tax_rate", o.LocalTaxRate)
	amount("personal_deduction", o.PersonalDeduction)

	multiplier("overtime_multiplier", o.OvertimeMultiplier)
	multiplier("night_multiplier", o.NightMultiplier)
	multiplier("holiday_regular_multiplier", o.HolidayRegularMultiplier)
	multiplier("holiday_extended_multiplier", o.HolidayExtendedMultiplier)

	hours("monthly_statutory_hours", o.MonthlyStatutoryHours)
	hours("weekly_rest_threshold", o.WeeklyRestThreshold)
	hours("weekly_hour_limit", o.WeeklyHourLimit)
	amount("minimum_hourly_wage", o.MinimumHourlyWage)

	amount("meal_cap", o.MealCap)
	amount("transport_cap", o.TransportCap)
	amount("childcare_cap", o.ChildcareCap)

	if o.PensionMonthlyFloor != nil && o.PensionMonthlyCap != nil &&
		*o.PensionMonthlyFloor > *o.PensionMonthlyCap {
		errs = append(errs, fmt.Errorf("pension_monthly_floor exceeds pension_monthly_cap"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid rule override: %w", joinErrors(errs))
	}
	return nil
}

func joinErrors(errs []error) error {
	msg := errs[0].Error()
	for _, e := range errs[1:] {
		msg += "; " + e.Error()
	}
	return fmt.Errorf("%s", msg)
}
