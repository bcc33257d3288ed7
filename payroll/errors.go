/*
errors.go - Centralized error types for the payroll engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  The engine distinguishes input-validation errors (calculation aborted,
  no partial result) from eligibility non-errors (well-defined "not
  applicable" results) and from rule-resolution gaps (never errors,
  resolved via defaults).

USAGE:
  if payroll.IsValidationError(err) {
      // reject the request; nothing was computed
  }

SEE ALSO:
  - calculator.go: Where validation runs
  - rules.go: Rule gaps fall back to defaults instead of erroring
*/
package payroll

import (
	"errors"
	"fmt"
	"time"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrMissingTerms is returned when compensation terms are absent.
	ErrMissingTerms = errors.New("missing compensation terms")

	// ErrInvalidBasis is returned for an unknown compensation basis.
	ErrInvalidBasis = errors.New("invalid compensation basis")

	// ErrMissingHireDate is returned when the hire date is absent.
	ErrMissingHireDate = errors.New("missing hire date")

	// ErrReferenceBeforeHire is returned when the reference date precedes
	// the hire date.
	ErrReferenceBeforeHire = errors.New("reference date precedes hire date")

	// ErrInvalidInterval is returned when a shift ends before it starts.
	// Zero-length shifts are not errors; they contribute zero hours.
	ErrInvalidInterval = errors.New("attendance interval ends before it starts")

	// ErrNonPositiveAmount is returned when the contract amount is zero or
	// negative.
	ErrNonPositiveAmount = errors.New("compensation amount must be positive")

	// ErrDuplicatePeriod is returned by result stores when a payroll result
	// for the same employee and period already exists. Serializing concurrent
	// writes of the same employee+period is the caller's responsibility; the
	// uniqueness constraint backs it.
	ErrDuplicatePeriod = errors.New("payroll result already exists for employee and period")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// IntervalError identifies which attendance interval was malformed.
type IntervalError struct {
	Index int
	Start time.Time
	End   time.Time
}

func (e *IntervalError) Error() string {
	return fmt.Sprintf("interval %d: end %s before start %s",
		e.Index, e.End.Format(time.RFC3339), e.Start.Format(time.RFC3339))
}

func (e *IntervalError) Unwrap() error { return ErrInvalidInterval }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsValidationError reports whether the error is an input-validation failure
// (as opposed to an internal failure). Validation errors mean the calculation
// was aborted with no partial result.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrMissingTerms) ||
		errors.Is(err, ErrInvalidBasis) ||
		errors.Is(err, ErrMissingHireDate) ||
		errors.Is(err, ErrReferenceBeforeHire) ||
		errors.Is(err, ErrInvalidInterval) ||
		errors.Is(err, ErrNonPositiveAmount)
}
