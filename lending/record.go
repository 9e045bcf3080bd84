/*
record.go - Persisted transaction records and the append-only store interface

PURPOSE:
  Defines the record written after every successful computation, and the
  interface between the domain and persistence. The store is APPEND-ONLY:
  records are immutable once written and identified by insertion order.

APPEND-ONLY CONTRACT:
  - Append(): The ONLY write operation. Assigns the next monotonic id.
  - ListAll(): Returns every record in insertion order.
  - NO Update() or Delete() methods exist.

IMPLEMENTATIONS:
  - lending/store:  In-memory, for tests and development
  - store/sqlite:   Embedded table keyed by AUTOINCREMENT id (default)
  - store/csvlog:   Flat sequential CSV log, one row per record

SEE ALSO:
  - store/sqlite/sqlite.go, store/csvlog/csvlog.go, lending/store/memory.go
*/
package lending

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// LOAN RECORD - One persisted transaction
// =============================================================================

// LoanRecord is the persisted result of one advance or loan computation.
// Immutable once written. ID is zero until assigned by Append.
type LoanRecord struct {
	ID         RecordID
	EmployeeID string
	Type       RecordType

	// Input parameters. InterestRate and TermMonths are zero for advances.
	Amount       Money
	InterestRate decimal.Decimal
	TermMonths   int

	// Computed result. MaxAllowed is set for advances; PeriodicPayment and
	// TotalRepayable for loans.
	MaxAllowed      Money
	PeriodicPayment Money
	TotalRepayable  Money

	DisbursementDate  time.Time
	ExpectedRepayment time.Time
	Status            RecordStatus
	CreatedAt         time.Time
}

// HasActiveRecord scans records (as returned by ListAll) for an active loan
// or advance belonging to the employee. Returns the blocking record id.
func HasActiveRecord(records []LoanRecord, employeeID string) (RecordID, bool) {
	for _, r := range records {
		if r.EmployeeID == employeeID && r.Status.IsActive() {
			return r.ID, true
		}
	}
	return 0, false
}

// =============================================================================
// RECORD STORE - Interface for record persistence (append-only)
// =============================================================================

// RecordStore persists LoanRecords.
// IMPORTANT: RecordStore is APPEND-ONLY. No Update, No Delete. Ever.
type RecordStore interface {
	// Append persists a record and returns its assigned id. IDs increase
	// monotonically in insertion order. This is the ONLY write operation.
	Append(ctx context.Context, record LoanRecord) (RecordID, error)

	// ListAll returns every record in insertion order.
	ListAll(ctx context.Context) ([]LoanRecord, error)
}
