package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/payroll/store"
)

func day(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestResolveOverride_PicksMostRecentContainingWindow(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()

	oldWage := int64(10_030)
	newWage := int64(10_650)
	closedTo := day("2026-12-31")

	// Inserted out of order on purpose; the store keeps them sorted.
	mem.AddRuleRecord(store.RuleRecord{
		ID:            "r2",
		EffectiveFrom: day("2027-01-01"),
		Override:      payroll.RuleOverride{MinimumHourlyWage: &newWage},
	})
	mem.AddRuleRecord(store.RuleRecord{
		ID:            "r1",
		EffectiveFrom: day("2026-01-01"),
		EffectiveTo:   &closedTo,
		Override:      payroll.RuleOverride{MinimumHourlyWage: &oldWage},
	})

	override, err := mem.ResolveOverride(ctx, day("2026-06-01"))
	require.NoError(t, err)
	require.NotNil(t, override)
	assert.Equal(t, oldWage, *override.MinimumHourlyWage)

	override, err = mem.ResolveOverride(ctx, day("2027-06-01"))
	require.NoError(t, err)
	require.NotNil(t, override)
	assert.Equal(t, newWage, *override.MinimumHourlyWage)

	// Before any record: no override, no error.
	override, err = mem.ResolveOverride(ctx, day("2025-06-01"))
	require.NoError(t, err)
	assert.Nil(t, override)
}

func TestMonthlyWithholding_ExclusiveUpperBound(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()

	mem.AddWithholdingRow(store.WithholdingRow{
		Year: 2026, Dependents: 1, IncomeMin: 2_000_000, IncomeMax: 2_020_000, Tax: 19_520,
	})

	tax, ok, err := mem.MonthlyWithholding(ctx, 2026, 1, payroll.Won(2_000_000))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "19520", tax.String())

	_, ok, err = mem.MonthlyWithholding(ctx, 2026, 1, payroll.Won(2_020_000))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHistory_DuplicatePeriodAndPreviousGross(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()

	require.NoError(t, mem.SavePayResult(ctx, "emp-1", "2025-11", payroll.Won(1_900_000)))
	require.NoError(t, mem.SavePayResult(ctx, "emp-1", "2025-12", payroll.Won(1_950_000)))

	err := mem.SavePayResult(ctx, "emp-1", "2025-12", payroll.Won(2_000_000))
	assert.ErrorIs(t, err, payroll.ErrDuplicatePeriod)

	gross, ok, err := mem.PreviousGross(ctx, "emp-1", "2026-01")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "1950000", gross.String())

	_, ok, err = mem.PreviousGross(ctx, "emp-1", "2025-11")
	require.NoError(t, err)
	assert.False(t, ok)
}
