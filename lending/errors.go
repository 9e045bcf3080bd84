/*
errors.go - Centralized error types for the lending engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  The API layer maps these to HTTP statuses.

ERROR CATEGORIES:
  1. Validation errors - Malformed or out-of-range input, detected before
     any computation runs
  2. Persistence errors - The record store rejected or failed a write,
     after a successful computation
  3. Conflict errors - Business rule violations (active loan exists)

USAGE:
  var vErr *lending.ValidationError
  if errors.As(err, &vErr) {
      // 400 with vErr.Field identified
  }

SEE ALSO:
  - eligibility.go, amortize.go: Produce validation errors
  - record.go: Store interface whose failures become persistence errors
*/
package lending

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidInput is the root of all validation failures.
	ErrInvalidInput = errors.New("invalid input")

	// ErrPersistence is the root of all record store write/read failures.
	ErrPersistence = errors.New("persistence failure")

	// ErrActiveLoanExists is returned when an employee already has an
	// active (approved or disbursed) record on file.
	ErrActiveLoanExists = errors.New("employee already has an active loan")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError identifies the offending field and why it was rejected.
// Detected before any computation; nothing is persisted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// PersistenceError wraps a store failure. The computation that preceded the
// write succeeded; callers still hold a valid result.
type PersistenceError struct {
	Op  string // "append" or "list"
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("record store %s failed: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return ErrPersistence }

// ActiveLoanError reports which employee is blocked and by which record.
type ActiveLoanError struct {
	EmployeeID string
	RecordID   RecordID
}

func (e *ActiveLoanError) Error() string {
	return fmt.Sprintf("employee %s already has an active loan (record %d)", e.EmployeeID, e.RecordID)
}

func (e *ActiveLoanError) Unwrap() error { return ErrActiveLoanExists }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input or
// a business-rule conflict, as opposed to an infrastructure failure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrActiveLoanExists)
}

// IsPersistence returns true if the error came from the record store.
func IsPersistence(err error) bool {
	return errors.Is(err, ErrPersistence)
}
