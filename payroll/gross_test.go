package payroll_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/payroll-engine/payroll"
)

// twentyWeekdays returns 8h shifts for the 20 weekdays of January 2026
// between the 5th and the 30th (no Sundays, Saturdays unworked).
func twentyWeekdays() []payroll.AttendanceInterval {
	var intervals []payroll.AttendanceInterval
	day := time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC)
	for len(intervals) < 20 {
		if wd := day.Weekday(); wd != time.Saturday && wd != time.Sunday {
			intervals = append(intervals, shift(
				day.Add(9*time.Hour), day.Add(17*time.Hour)))
		}
		day = day.AddDate(0, 0, 1)
	}
	return intervals
}

func TestCompose_HourlyWorkerReferenceScenario(t *testing.T) {
	// GIVEN: hourly worker at 10,320/h, exactly 8h/day for 20 weekdays
	// THEN: basicPay = 160 x 10,320 = 1,651,200
	//       avg weekly hours = 40 >= 15, so weekly rest pay applies:
	//       floor(8 x 10,320 x 4.345) = 358,723
	rules := defaultRules()
	terms := payroll.CompensationTerms{Basis: payroll.BasisHourly, Amount: payroll.Won(10_320)}

	agg := payroll.NewAggregator(nil)
	hb, err := agg.Aggregate(twentyWeekdays(), rules)
	require.NoError(t, err)

	rate, err := payroll.HourlyRate(terms, rules)
	require.NoError(t, err)

	gross := payroll.Compose(hb, rate, terms, rules)

	assert.Equal(t, "1651200", gross.BasicPay.String())
	assert.Equal(t, "358723", gross.WeeklyRestPay.String())
	assert.Equal(t, "0", gross.OvertimePay.String())
	assert.Equal(t, "0", gross.NightPay.String())
	assert.Equal(t, "0", gross.HolidayPay.String())
	assert.Equal(t, "2009923", gross.GrossPay.String())
	assert.Equal(t, "2009923", gross.TaxableIncome.String())
}

func TestCompose_MonthlySalaryIgnoresRecordedHours(t *testing.T) {
	// Fixed-pay contracts pay the period salary even with zero recorded hours.
	rules := defaultRules()
	terms := payroll.CompensationTerms{Basis: payroll.BasisMonthly, Amount: payroll.Won(3_000_000)}

	rate, err := payroll.HourlyRate(terms, rules)
	require.NoError(t, err)

	gross := payroll.Compose(payroll.HourBreakdown{}, rate, terms, rules)

	assert.Equal(t, "3000000", gross.BasicPay.String())
	assert.Equal(t, "0", gross.WeeklyRestPay.String(), "salaried rest pay is inside the salary")
	assert.Equal(t, "3000000", gross.GrossPay.String())
}

func TestCompose_WeeklyRestBelowThreshold(t *testing.T) {
	// GIVEN: 2h/day over 5 days -> avg weekly 10h < 15h threshold
	// THEN: no weekly rest pay
	rules := defaultRules()
	terms := payroll.CompensationTerms{Basis: payroll.BasisHourly, Amount: payroll.Won(10_320)}

	hb := payroll.HourBreakdown{
		Regular:    decimal.NewFromInt(10),
		DaysWorked: 5,
	}
	gross := payroll.Compose(hb, terms.Amount.Decimal(), terms, rules)
	assert.Equal(t, "0", gross.WeeklyRestPay.String())
}

func TestCompose_PremiumsFlooredIndependently(t *testing.T) {
	// Overtime, night and both holiday legs are floored before summing.
	rules := defaultRules()
	terms := payroll.CompensationTerms{Basis: payroll.BasisHourly, Amount: payroll.Won(10_001)}

	hb := payroll.HourBreakdown{
		Regular:         decimal.NewFromInt(8),
		Overtime:        decimal.RequireFromString("1.25"),
		Night:           decimal.RequireFromString("0.33"),
		HolidayRegular:  decimal.RequireFromString("4.5"),
		HolidayExtended: decimal.RequireFromString("0.75"),
		DaysWorked:      1,
	}
	rate := terms.Amount.Decimal()
	gross := payroll.Compose(hb, rate, terms, rules)

	// overtime: 1.25 x 10001 x 1.5 = 18751.875 -> 18751
	assert.Equal(t, "18751", gross.OvertimePay.String())
	// night surcharge: 0.33 x 10001 x 0.5 = 1650.165 -> 1650
	assert.Equal(t, "1650", gross.NightPay.String())
	// holiday: floor(4.5 x 10001 x 1.5) + floor(0.75 x 10001 x 2.0)
	//        = floor(67506.75) + floor(15001.5) = 67506 + 15001 = 82507
	assert.Equal(t, "82507", gross.HolidayPay.String())
}

func TestCompose_NonTaxableAllowancesCapped(t *testing.T) {
	// Declared 300,000 meal is capped at 200,000; childcare under the cap
	// passes through; taxable income excludes the non-taxable total.
	rules := defaultRules()
	terms := payroll.CompensationTerms{
		Basis:  payroll.BasisMonthly,
		Amount: payroll.Won(2_500_000),
		NonTaxable: payroll.NonTaxableAllowances{
			Meal:      payroll.Won(300_000),
			Childcare: payroll.Won(150_000),
		},
	}

	rate, err := payroll.HourlyRate(terms, rules)
	require.NoError(t, err)
	gross := payroll.Compose(payroll.HourBreakdown{}, rate, terms, rules)

	assert.Equal(t, "350000", gross.NonTaxableTotal.String())
	assert.Equal(t, "2850000", gross.GrossPay.String())
	assert.Equal(t, "2500000", gross.TaxableIncome.String())
}

func TestCompose_DailyBasisExcludesHolidayWorkedDays(t *testing.T) {
	// Daily contracts pay day-count x daily rate for non-holiday days;
	// holiday-worked days are paid through the holiday premium buckets.
	rules := defaultRules()
	terms := payroll.CompensationTerms{Basis: payroll.BasisDaily, Amount: payroll.Won(80_000)}

	hb := payroll.HourBreakdown{
		Regular:           decimal.NewFromInt(32), // 4 weekdays x 8h
		HolidayRegular:    decimal.NewFromInt(8),  // 1 Sunday x 8h
		DaysWorked:        5,
		HolidayDaysWorked: 1,
	}

	rate, err := payroll.HourlyRate(terms, rules)
	require.NoError(t, err)
	gross := payroll.Compose(hb, rate, terms, rules)

	// 4 non-holiday days x 80,000
	assert.Equal(t, "320000", gross.BasicPay.String())
	// holiday leg: 8h x 10,000 x 1.5
	assert.Equal(t, "120000", gross.HolidayPay.String())
}
