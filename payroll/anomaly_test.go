package payroll_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/payroll-engine/payroll"
)

func findWarning(warnings []payroll.Warning, code string) *payroll.Warning {
	for i := range warnings {
		if warnings[i].Code == code {
			return &warnings[i]
		}
	}
	return nil
}

func cleanContext() payroll.AnomalyContext {
	return payroll.AnomalyContext{
		HourlyRate: decimal.NewFromInt(12_000),
		Hours:      payroll.HourBreakdown{Regular: decimal.NewFromInt(160), DaysWorked: 20},
		GrossPay:   payroll.Won(2_000_000),
	}
}

func TestDetectWarnings_CleanResultHasNone(t *testing.T) {
	warnings := payroll.DetectWarnings(cleanContext(), defaultRules())
	assert.Empty(t, warnings)
}

func TestDetectWarnings_MinimumWage(t *testing.T) {
	ctx := cleanContext()
	ctx.HourlyRate = decimal.NewFromInt(9_000)

	w := findWarning(payroll.DetectWarnings(ctx, defaultRules()), "minimum_wage")
	require.NotNil(t, w)
	assert.Equal(t, payroll.LevelCritical, w.Level)
}

func TestDetectWarnings_MinimumWageExactRateIsClean(t *testing.T) {
	// Paying exactly the minimum is lawful.
	ctx := cleanContext()
	ctx.HourlyRate = decimal.NewFromInt(10_320)

	assert.Nil(t, findWarning(payroll.DetectWarnings(ctx, defaultRules()), "minimum_wage"))
}

func TestDetectWarnings_WeeklyHourLimit(t *testing.T) {
	// 240h / 4.345 weeks = 55.2h avg > 52h ceiling
	ctx := cleanContext()
	ctx.Hours = payroll.HourBreakdown{Regular: decimal.NewFromInt(240), DaysWorked: 26}

	w := findWarning(payroll.DetectWarnings(ctx, defaultRules()), "weekly_hour_limit")
	require.NotNil(t, w)
	assert.Equal(t, payroll.LevelCritical, w.Level)
}

func TestDetectWarnings_PayVolatility(t *testing.T) {
	rules := defaultRules()

	// 2,000,000 -> 2,700,000 is +35%: fires.
	ctx := cleanContext()
	prev := payroll.Won(2_000_000)
	ctx.PreviousGross = &prev
	ctx.GrossPay = payroll.Won(2_700_000)

	w := findWarning(payroll.DetectWarnings(ctx, rules), "pay_volatility")
	require.NotNil(t, w)
	assert.Equal(t, payroll.LevelWarning, w.Level)
	assert.Contains(t, w.Message, "35.0%")

	// A drop of the same magnitude fires too.
	ctx.GrossPay = payroll.Won(1_300_000)
	assert.NotNil(t, findWarning(payroll.DetectWarnings(ctx, rules), "pay_volatility"))

	// Exactly 30% does not fire (strictly greater).
	ctx.GrossPay = payroll.Won(2_600_000)
	assert.Nil(t, findWarning(payroll.DetectWarnings(ctx, rules), "pay_volatility"))

	// A zero previous gross cannot divide; rule is skipped.
	zero := payroll.ZeroWon()
	ctx.PreviousGross = &zero
	assert.Nil(t, findWarning(payroll.DetectWarnings(ctx, rules), "pay_volatility"))
}

func TestDetectWarnings_PensionShortTimeIsInformational(t *testing.T) {
	ctx := cleanContext()
	ctx.PensionShortTime = true

	w := findWarning(payroll.DetectWarnings(ctx, defaultRules()), "pension_short_time")
	require.NotNil(t, w)
	assert.Equal(t, payroll.LevelInfo, w.Level)
}

func TestDetectWarnings_MultipleRulesFireIndependently(t *testing.T) {
	ctx := payroll.AnomalyContext{
		HourlyRate:       decimal.NewFromInt(8_000),
		Hours:            payroll.HourBreakdown{Regular: decimal.NewFromInt(250), DaysWorked: 27},
		GrossPay:         payroll.Won(2_000_000),
		PensionShortTime: false,
	}
	prev := payroll.Won(5_000_000)
	ctx.PreviousGross = &prev

	warnings := payroll.DetectWarnings(ctx, defaultRules())
	assert.NotNil(t, findWarning(warnings, "minimum_wage"))
	assert.NotNil(t, findWarning(warnings, "weekly_hour_limit"))
	assert.NotNil(t, findWarning(warnings, "pay_volatility"))
	assert.Len(t, warnings, 3)
}
