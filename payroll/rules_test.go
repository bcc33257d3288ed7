package payroll_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/payroll-engine/payroll"
)

// countingStore records resolution calls and serves one fixed override.
type countingStore struct {
	override *payroll.RuleOverride
	err      error
	calls    int
}

func (s *countingStore) ResolveOverride(context.Context, time.Time) (*payroll.RuleOverride, error) {
	s.calls++
	return s.override, s.err
}

func TestResolve_NilStoreYieldsDefaults(t *testing.T) {
	resolver := payroll.NewResolver(nil)
	rs := resolver.Resolve(context.Background(), at(2026, time.January, 31, 0, 0))

	assert.True(t, rs.Pension.EmployeeRate.Equal(decimal.RequireFromString("0.045")))
	assert.Equal(t, "10320", rs.WorkTime.MinimumHourlyWage.String())
	assert.Len(t, rs.IncomeTax.Brackets, 8)
}

func TestResolve_OverrideMergesOntoDefaults(t *testing.T) {
	// GIVEN: a record overriding only the pension rate and the meal cap
	// THEN: those two change, everything else inherits defaults
	rate := decimal.RequireFromString("0.05")
	cap := int64(250_000)
	store := &countingStore{override: &payroll.RuleOverride{
		PensionRate: &rate,
		MealCap:     &cap,
	}}

	resolver := payroll.NewResolver(store)
	rs := resolver.Resolve(context.Background(), at(2026, time.March, 1, 0, 0))

	assert.True(t, rs.Pension.EmployeeRate.Equal(rate))
	assert.Equal(t, "250000", rs.Caps.Meal.String())
	// Unset fields keep defaults.
	assert.True(t, rs.Health.EmployeeRate.Equal(decimal.RequireFromString("0.03545")))
	assert.Equal(t, "200000", rs.Caps.Transport.String())
}

func TestResolve_CachesPerDate(t *testing.T) {
	store := &countingStore{}
	resolver := payroll.NewResolver(store)

	date := at(2026, time.January, 31, 0, 0)
	resolver.Resolve(context.Background(), date)
	resolver.Resolve(context.Background(), date)
	resolver.Resolve(context.Background(), date.Add(3*time.Hour)) // same calendar day

	assert.Equal(t, 1, store.calls, "same date resolves the store once")

	resolver.Resolve(context.Background(), at(2026, time.February, 1, 0, 0))
	assert.Equal(t, 2, store.calls, "new date resolves again")
}

func TestResolve_StoreErrorFallsBackToDefaults(t *testing.T) {
	// A broken rule table must never block a payroll run.
	store := &countingStore{err: errors.New("connection refused")}
	resolver := payroll.NewResolver(store)

	rs := resolver.Resolve(context.Background(), at(2026, time.January, 31, 0, 0))
	assert.True(t, rs.Pension.EmployeeRate.Equal(decimal.RequireFromString("0.045")))
}

func TestProgressiveTax_BracketTable(t *testing.T) {
	rules := defaultRules()

	tests := []struct {
		name   string
		annual int64
		want   string
	}{
		{"zero income", 0, "0"},
		{"first band", 10_000_000, "600000"},
		{"band boundary", 14_000_000, "840000"},
		{"second band with cumulative deduction", 22_619_076, "2132861.4"},
		{"top band", 1_500_000_000, "609060000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rules.IncomeTax.ProgressiveTax(payroll.Won(tt.annual))
			assert.Equal(t, tt.want, got.String())
		})
	}

	// Negative income clamps to zero.
	got := rules.IncomeTax.ProgressiveTax(payroll.Won(-1_000_000))
	assert.True(t, got.IsZero())
}

func TestRuleOverride_NilApplyIsNoop(t *testing.T) {
	rs := defaultRules()
	before := rs.Pension.EmployeeRate

	var o *payroll.RuleOverride
	o.Apply(&rs)
	require.True(t, rs.Pension.EmployeeRate.Equal(before))
}
