package payroll_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/payroll-engine/payroll"
)

// stubTable is a WithholdingTable with canned behavior.
type stubTable struct {
	tax   payroll.Money
	found bool
	err   error
	calls int
}

func (s *stubTable) MonthlyWithholding(_ context.Context, year, dependents int, income payroll.Money) (payroll.Money, bool, error) {
	s.calls++
	return s.tax, s.found, s.err
}

func fullTimeInput(taxable int64) payroll.DeductionInput {
	return payroll.DeductionInput{
		TaxableIncome: payroll.Won(taxable),
		Age:           30,
		Dependents:    1,
		MonthlyHours:  decimal.NewFromInt(160),
		Year:          2026,
	}
}

func TestCompute_ReferenceScenario(t *testing.T) {
	// GIVEN: taxable 2,009,923, age 30, 1 dependent, full-time hours
	// THEN: every deduction truncated to 10-won granularity
	engine := &payroll.DeductionEngine{}
	set, shortTime := engine.Compute(context.Background(), fullTimeInput(2_009_923), defaultRules())

	assert.False(t, shortTime)
	assert.Equal(t, "90440", set.Pension.String())  // floor10(2009923 x 0.045)
	assert.Equal(t, "71250", set.Health.String())   // floor10(2009923 x 0.03545)
	assert.Equal(t, "9220", set.LongTermCare.String()) // floor10(71250 x 0.1295)
	assert.Equal(t, "18080", set.Employment.String())  // floor10(2009923 x 0.009)
	// annual 24,119,076 - 1,500,000 = 22,619,076 -> band 2:
	// 22,619,076 x 0.15 - 1,260,000 = 2,132,861.4 -> /12 -> floor10 = 177,730
	assert.Equal(t, "177730", set.IncomeTax.String())
	assert.Equal(t, "17770", set.LocalTax.String())
	assert.Equal(t, "384490", set.Total().String())
}

func TestCompute_PensionBaseClamped(t *testing.T) {
	engine := &payroll.DeductionEngine{}
	rules := defaultRules()

	// Income below the floor contributes on the floor.
	set, _ := engine.Compute(context.Background(), fullTimeInput(300_000), rules)
	assert.Equal(t, "18000", set.Pension.String(), "400,000 x 4.5%")

	// Income above the cap contributes on the cap.
	set, _ = engine.Compute(context.Background(), fullTimeInput(10_000_000), rules)
	assert.Equal(t, "286650", set.Pension.String(), "6,370,000 x 4.5%")
	// Health has no cap and keeps scaling.
	assert.Equal(t, "354500", set.Health.String())
}

func TestCompute_AgeExemptions(t *testing.T) {
	engine := &payroll.DeductionEngine{}
	rules := defaultRules()

	in := fullTimeInput(2_000_000)
	in.Age = 60
	set, _ := engine.Compute(context.Background(), in, rules)
	assert.True(t, set.Pension.IsZero(), "pension exempt at 60")
	assert.False(t, set.Employment.IsZero(), "employment still due at 60")

	in.Age = 65
	set, _ = engine.Compute(context.Background(), in, rules)
	assert.True(t, set.Pension.IsZero())
	assert.True(t, set.Employment.IsZero(), "employment exempt at 65")
	assert.False(t, set.Health.IsZero(), "health has no age exemption")
}

func TestCompute_ShortTimeWorkerSkipsPension(t *testing.T) {
	engine := &payroll.DeductionEngine{}
	in := fullTimeInput(600_000)
	in.MonthlyHours = decimal.NewFromInt(59)

	set, shortTime := engine.Compute(context.Background(), in, defaultRules())
	assert.True(t, shortTime)
	assert.True(t, set.Pension.IsZero())
}

func TestIncomeTax_WithholdingTablePreferred(t *testing.T) {
	// A matching table row short-circuits the progressive formula; the
	// returned amount is still truncated to 10 won.
	table := &stubTable{tax: payroll.Won(123_456), found: true}
	engine := &payroll.DeductionEngine{Table: table}

	set, _ := engine.Compute(context.Background(), fullTimeInput(2_009_923), defaultRules())
	assert.Equal(t, "123450", set.IncomeTax.String())
	assert.Equal(t, "12340", set.LocalTax.String())
	assert.Equal(t, 1, table.calls)
}

func TestIncomeTax_FallsBackWhenNoRowMatches(t *testing.T) {
	table := &stubTable{found: false}
	engine := &payroll.DeductionEngine{Table: table}

	set, _ := engine.Compute(context.Background(), fullTimeInput(2_009_923), defaultRules())
	assert.Equal(t, "177730", set.IncomeTax.String(), "progressive fallback")
	assert.Equal(t, 1, table.calls)
}

func TestIncomeTax_ZeroWhenPersonalDeductionCoversIncome(t *testing.T) {
	// annual 1,200,000 < 1,500,000 personal deduction -> no tax, no local tax
	engine := &payroll.DeductionEngine{}
	set, _ := engine.Compute(context.Background(), fullTimeInput(100_000), defaultRules())
	assert.True(t, set.IncomeTax.IsZero())
	assert.True(t, set.LocalTax.IsZero())
}

func TestIncomeTax_ZeroDependentsTreatedAsSelfOnly(t *testing.T) {
	// The worker always counts, so dependents 0 and 1 tax identically.
	engine := &payroll.DeductionEngine{}
	rules := defaultRules()

	zero := fullTimeInput(2_500_000)
	zero.Dependents = 0
	one := fullTimeInput(2_500_000)

	setZero, _ := engine.Compute(context.Background(), zero, rules)
	setOne, _ := engine.Compute(context.Background(), one, rules)
	assert.Equal(t, setOne.IncomeTax.String(), setZero.IncomeTax.String())
}

func TestCompute_TotalIsMonotonicInIncome(t *testing.T) {
	// More taxable income never deducts less in total.
	engine := &payroll.DeductionEngine{}
	rules := defaultRules()

	prev := payroll.ZeroWon()
	for income := int64(500_000); income <= 12_000_000; income += 250_000 {
		set, _ := engine.Compute(context.Background(), fullTimeInput(income), rules)
		total := set.Total()
		require.False(t, total.LessThan(prev),
			"total regressed at income %d: %s < %s", income, total, prev)
		prev = total
	}
}
