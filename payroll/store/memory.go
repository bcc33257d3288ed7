// Package store provides an in-memory implementation of the rule store,
// withholding table and payroll history, for testing and development.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// RECORD TYPES
// =============================================================================

// RuleRecord is one effective-dated rule override. A nil EffectiveTo means
// the record is open-ended.
type RuleRecord struct {
	ID            string
	EffectiveFrom time.Time
	EffectiveTo   *time.Time
	Override      payroll.RuleOverride
}

// WithholdingRow is one simplified-tax-table row: the monthly withholding
// for a (year, dependents, income range) key. IncomeMax is exclusive.
type WithholdingRow struct {
	Year       int
	Dependents int
	IncomeMin  int64
	IncomeMax  int64
	Tax        int64
}

type historyKey struct {
	EmployeeID payroll.EmployeeID
	Period     string // "2006-01"
}

// =============================================================================
// MEMORY STORE
// =============================================================================

// Memory implements payroll.RuleStore and payroll.WithholdingTable plus a
// payroll-history lookup, all in memory.
type Memory struct {
	mu          sync.RWMutex
	rules       []RuleRecord // sorted by EffectiveFrom ascending
	withholding []WithholdingRow
	history     map[historyKey]payroll.Money
}

func NewMemory() *Memory {
	return &Memory{history: make(map[historyKey]payroll.Money)}
}

// AddRuleRecord registers an override record, keeping records sorted.
func (m *Memory) AddRuleRecord(rec RuleRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := sort.Search(len(m.rules), func(i int) bool {
		return m.rules[i].EffectiveFrom.After(rec.EffectiveFrom)
	})
	m.rules = append(m.rules, RuleRecord{})
	copy(m.rules[i+1:], m.rules[i:])
	m.rules[i] = rec
}

// ResolveOverride returns the most recent record whose validity window
// contains the date, or nil when none does (the normal case).
func (m *Memory) ResolveOverride(_ context.Context, date time.Time) (*payroll.RuleOverride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := len(m.rules) - 1; i >= 0; i-- {
		rec := m.rules[i]
		if rec.EffectiveFrom.After(date) {
			continue
		}
		if rec.EffectiveTo != nil && date.After(*rec.EffectiveTo) {
			continue
		}
		override := rec.Override
		return &override, nil
	}
	return nil, nil
}

// AddWithholdingRow registers a tax-table row.
func (m *Memory) AddWithholdingRow(row WithholdingRow) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.withholding = append(m.withholding, row)
}

// MonthlyWithholding implements payroll.WithholdingTable.
func (m *Memory) MonthlyWithholding(_ context.Context, year, dependents int, monthlyTaxable payroll.Money) (payroll.Money, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	income := monthlyTaxable.Int64()
	for _, row := range m.withholding {
		if row.Year == year && row.Dependents == dependents &&
			income >= row.IncomeMin && income < row.IncomeMax {
			return payroll.Won(row.Tax), true, nil
		}
	}
	return payroll.ZeroWon(), false, nil
}

// SavePayResult records the gross for an employee+period. The period is
// unique per employee.
func (m *Memory) SavePayResult(_ context.Context, employeeID payroll.EmployeeID, period string, gross payroll.Money) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := historyKey{EmployeeID: employeeID, Period: period}
	if _, exists := m.history[k]; exists {
		return payroll.ErrDuplicatePeriod
	}
	m.history[k] = gross
	return nil
}

// PreviousGross returns the gross of the latest period strictly before the
// given one, for the volatility warning.
func (m *Memory) PreviousGross(_ context.Context, employeeID payroll.EmployeeID, beforePeriod string) (payroll.Money, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var (
		best      string
		bestGross payroll.Money
		found     bool
	)
	for k, gross := range m.history {
		if k.EmployeeID != employeeID || k.Period >= beforePeriod {
			continue
		}
		if !found || k.Period > best {
			best = k.Period
			bestGross = gross
			found = true
		}
	}
	return bestGross, found, nil
}

// Compile-time interface checks.
var (
	_ payroll.RuleStore        = (*Memory)(nil)
	_ payroll.WithholdingTable = (*Memory)(nil)
)
