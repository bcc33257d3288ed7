/*
Package sqlite provides a SQLite-backed implementation of the rule store,
withholding table and payroll history.

PURPOSE:
  Persists the data surrounding the computation core:
  - rule_records:     effective-dated statutory rule overrides (versioned)
  - withholding_rows: simplified income-tax table keyed (year, dependents,
                      income range)
  - payroll_history:  per-period gross results, unique per employee+period

INTERFACES IMPLEMENTED:
  payroll.RuleStore:        ResolveOverride (most recent containing window)
  payroll.WithholdingTable: MonthlyWithholding

RULE RECORD SEMANTICS:
  A record's payload is a validated payroll.RuleOverride JSON document (see
  the factory package). Records never overwrite defaults wholesale: only the
  fields a record sets override; resolution picks the most recent record
  whose [effective_from, effective_to] window contains the reference date,
  open-ended when effective_to is NULL. An unreadable payload resolves as
  no-override rather than failing a payroll run.

HISTORY SEMANTICS:
  payroll_history is append-only with a UNIQUE(employee_id, period) index:
  concurrent writers of the same employee+period lose with
  payroll.ErrDuplicatePeriod instead of creating duplicates.

WAL MODE:
  SQLite is opened with WAL for better concurrency: multiple readers don't
  block, a single writer at a time, better crash recovery.

USAGE:
  store, err := sqlite.New("./data/payroll.db")
  resolver := payroll.NewResolver(store)

SEE ALSO:
  - payroll/rules.go: resolution and merge semantics
  - payroll/store/memory.go: in-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/payroll-engine/factory"
	"github.com/warp/payroll-engine/payroll"
)

// Store implements the storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a SQLite store at the given path. Use ":memory:" for an
// in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Effective-dated statutory rule overrides (versioned)
	CREATE TABLE IF NOT EXISTS rule_records (
		id TEXT PRIMARY KEY,
		effective_from TEXT NOT NULL,
		effective_to TEXT,
		payload TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	-- Resolution hot path: most recent containing window
	CREATE INDEX IF NOT EXISTS idx_rule_records_window
		ON rule_records(effective_from DESC, effective_to);

	-- Simplified income-tax withholding table
	CREATE TABLE IF NOT EXISTS withholding_rows (
		id TEXT PRIMARY KEY,
		year INTEGER NOT NULL,
		dependents INTEGER NOT NULL,
		income_min INTEGER NOT NULL,
		income_max INTEGER NOT NULL,
		tax INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_withholding_key
		ON withholding_rows(year, dependents, income_min);

	-- Per-period gross results; period is "2006-01"
	CREATE TABLE IF NOT EXISTS payroll_history (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		period TEXT NOT NULL,
		gross INTEGER NOT NULL,
		net INTEGER NOT NULL,
		created_at TEXT NOT NULL,
		UNIQUE(employee_id, period)
	);

	CREATE INDEX IF NOT EXISTS idx_history_employee_period
		ON payroll_history(employee_id, period DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// RULE RECORDS
// =============================================================================

const dateLayout = "2006-01-02"

// AddRuleRecord persists a validated rule record and returns its id.
func (s *Store) AddRuleRecord(ctx context.Context, rec factory.RuleRecord) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(rec.Override)
	if err != nil {
		return "", fmt.Errorf("encode rule record: %w", err)
	}

	id := uuid.NewString()
	var to any
	if rec.EffectiveTo != nil {
		to = rec.EffectiveTo.Format(dateLayout)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO rule_records (id, effective_from, effective_to, payload, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		id, rec.EffectiveFrom.Format(dateLayout), to, string(payload),
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return "", fmt.Errorf("insert rule record: %w", err)
	}
	return id, nil
}

// ResolveOverride implements payroll.RuleStore: the most recent record whose
// validity window contains the date, or nil when none does.
func (s *Store) ResolveOverride(ctx context.Context, date time.Time) (*payroll.RuleOverride, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	day := date.Format(dateLayout)
	row := s.db.QueryRowContext(ctx, `
		SELECT payload FROM rule_records
		WHERE effective_from <= ?
		  AND (effective_to IS NULL OR effective_to >= ?)
		ORDER BY effective_from DESC
		LIMIT 1`, day, day)

	var payload string
	if err := row.Scan(&payload); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("resolve rule record: %w", err)
	}

	override, err := factory.ParseOverride([]byte(payload))
	if err != nil {
		// A corrupt record must not block a payroll run; resolution falls
		// back to defaults.
		return nil, nil
	}
	return override, nil
}

// =============================================================================
// WITHHOLDING TABLE
// =============================================================================

// WithholdingRow is one tax-table row. IncomeMax is exclusive.
type WithholdingRow struct {
	Year       int
	Dependents int
	IncomeMin  int64
	IncomeMax  int64
	Tax        int64
}

// AddWithholdingRows bulk-inserts tax-table rows atomically.
func (s *Store) AddWithholdingRows(ctx context.Context, rows []WithholdingRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO withholding_rows (id, year, dependents, income_min, income_max, tax)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, uuid.NewString(),
			row.Year, row.Dependents, row.IncomeMin, row.IncomeMax, row.Tax); err != nil {
			return fmt.Errorf("insert withholding row: %w", err)
		}
	}
	return tx.Commit()
}

// MonthlyWithholding implements payroll.WithholdingTable.
func (s *Store) MonthlyWithholding(ctx context.Context, year, dependents int, monthlyTaxable payroll.Money) (payroll.Money, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	income := monthlyTaxable.Int64()
	row := s.db.QueryRowContext(ctx, `
		SELECT tax FROM withholding_rows
		WHERE year = ? AND dependents = ? AND income_min <= ? AND income_max > ?
		LIMIT 1`, year, dependents, income, income)

	var tax int64
	if err := row.Scan(&tax); err != nil {
		if err == sql.ErrNoRows {
			return payroll.ZeroWon(), false, nil
		}
		return payroll.ZeroWon(), false, fmt.Errorf("withholding lookup: %w", err)
	}
	return payroll.Won(tax), true, nil
}

// =============================================================================
// PAYROLL HISTORY
// =============================================================================

// SavePayResult records the gross and net for an employee+period. A second
// write for the same employee+period returns payroll.ErrDuplicatePeriod.
func (s *Store) SavePayResult(ctx context.Context, employeeID payroll.EmployeeID, period string, gross, net payroll.Money) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO payroll_history (id, employee_id, period, gross, net, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), string(employeeID), period, gross.Int64(), net.Int64(),
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return payroll.ErrDuplicatePeriod
		}
		return fmt.Errorf("save pay result: %w", err)
	}
	return nil
}

// PreviousGross returns the gross of the latest period strictly before the
// given one, for the volatility warning.
func (s *Store) PreviousGross(ctx context.Context, employeeID payroll.EmployeeID, beforePeriod string) (payroll.Money, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT gross FROM payroll_history
		WHERE employee_id = ? AND period < ?
		ORDER BY period DESC
		LIMIT 1`, string(employeeID), beforePeriod)

	var gross int64
	if err := row.Scan(&gross); err != nil {
		if err == sql.ErrNoRows {
			return payroll.ZeroWon(), false, nil
		}
		return payroll.ZeroWon(), false, fmt.Errorf("previous gross lookup: %w", err)
	}
	return payroll.Won(gross), true, nil
}

// Compile-time interface checks.
var (
	_ payroll.RuleStore        = (*Store)(nil)
	_ payroll.WithholdingTable = (*Store)(nil)
)
