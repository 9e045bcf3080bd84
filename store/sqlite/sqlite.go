/*
Package sqlite provides a SQLite-backed implementation of lending.RecordStore.

PURPOSE:
  Persists loan records in an embedded SQLite table keyed by a monotonic
  AUTOINCREMENT id. In production, the same pattern applies to PostgreSQL -
  only minor SQL dialect differences.

APPEND-ONLY ENFORCEMENT:
  - No UPDATE statements on loan_records
  - No DELETE statements on loan_records
  - Record ids come from SQLite's AUTOINCREMENT, which never reuses ids

MONEY COLUMNS:
  Monetary values are stored as TEXT (decimal string form), never REAL.
  Reading them back through decimal.NewFromString preserves exact values.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety within the process. The system assumes
  a single writer; the mutex keeps cooperative callers safe.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging): readers don't block,
  single writer at a time, better crash recovery.

USAGE:
  store, err := sqlite.New("./data/loans.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). The schema is a single table; a
  versioned migration tool would be overkill here.

SEE ALSO:
  - lending/record.go: Interface definition
  - lending/store/memory.go: In-memory implementation for testing
  - store/csvlog: Flat-file implementation
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/payday/lending-engine/lending"
)

// Store implements lending.RecordStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ lending.RecordStore = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
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
	-- Loan records (append-only log)
	CREATE TABLE IF NOT EXISTS loan_records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		employee_id TEXT NOT NULL,
		record_type TEXT NOT NULL,
		amount TEXT NOT NULL,
		interest_rate TEXT NOT NULL,
		term_months INTEGER NOT NULL,
		max_allowed TEXT NOT NULL,
		periodic_payment TEXT NOT NULL,
		total_repayable TEXT NOT NULL,
		disbursement_date TEXT NOT NULL,
		expected_repayment TEXT NOT NULL,
		status TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	-- Active-loan lookups by employee
	CREATE INDEX IF NOT EXISTS idx_loan_records_employee
		ON loan_records(employee_id, status);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Append inserts a record and returns the AUTOINCREMENT-assigned id.
func (s *Store) Append(ctx context.Context, record lending.LoanRecord) (lending.RecordID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO loan_records (
			employee_id, record_type, amount, interest_rate, term_months,
			max_allowed, periodic_payment, total_repayable,
			disbursement_date, expected_repayment, status, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.EmployeeID,
		string(record.Type),
		record.Amount.String(),
		record.InterestRate.String(),
		record.TermMonths,
		record.MaxAllowed.String(),
		record.PeriodicPayment.String(),
		record.TotalRepayable.String(),
		record.DisbursementDate.UTC().Format(time.RFC3339),
		record.ExpectedRepayment.UTC().Format(time.RFC3339),
		string(record.Status),
		record.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, &lending.PersistenceError{Op: "append", Err: err}
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, &lending.PersistenceError{Op: "append", Err: err}
	}
	return lending.RecordID(id), nil
}

// ListAll returns all records in insertion order.
func (s *Store) ListAll(ctx context.Context) ([]lending.LoanRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, employee_id, record_type, amount, interest_rate, term_months,
		       max_allowed, periodic_payment, total_repayable,
		       disbursement_date, expected_repayment, status, created_at
		FROM loan_records
		ORDER BY id ASC`)
	if err != nil {
		return nil, &lending.PersistenceError{Op: "list", Err: err}
	}
	defer rows.Close()

	var records []lending.LoanRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, &lending.PersistenceError{Op: "list", Err: err}
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, &lending.PersistenceError{Op: "list", Err: err}
	}
	return records, nil
}

func scanRecord(rows *sql.Rows) (lending.LoanRecord, error) {
	var (
		record                                         lending.LoanRecord
		recordType, status                             string
		amount, rate, maxAllowed, payment, repayable   string
		disbursementDate, expectedRepayment, createdAt string
	)
	err := rows.Scan(
		&record.ID, &record.EmployeeID, &recordType, &amount, &rate, &record.TermMonths,
		&maxAllowed, &payment, &repayable,
		&disbursementDate, &expectedRepayment, &status, &createdAt,
	)
	if err != nil {
		return lending.LoanRecord{}, err
	}

	record.Type = lending.RecordType(recordType)
	record.Status = lending.RecordStatus(status)

	if record.Amount, err = decimal.NewFromString(amount); err != nil {
		return lending.LoanRecord{}, fmt.Errorf("bad amount %q: %w", amount, err)
	}
	if record.InterestRate, err = decimal.NewFromString(rate); err != nil {
		return lending.LoanRecord{}, fmt.Errorf("bad interest_rate %q: %w", rate, err)
	}
	if record.MaxAllowed, err = decimal.NewFromString(maxAllowed); err != nil {
		return lending.LoanRecord{}, fmt.Errorf("bad max_allowed %q: %w", maxAllowed, err)
	}
	if record.PeriodicPayment, err = decimal.NewFromString(payment); err != nil {
		return lending.LoanRecord{}, fmt.Errorf("bad periodic_payment %q: %w", payment, err)
	}
	if record.TotalRepayable, err = decimal.NewFromString(repayable); err != nil {
		return lending.LoanRecord{}, fmt.Errorf("bad total_repayable %q: %w", repayable, err)
	}
	if record.DisbursementDate, err = time.Parse(time.RFC3339, disbursementDate); err != nil {
		return lending.LoanRecord{}, fmt.Errorf("bad disbursement_date %q: %w", disbursementDate, err)
	}
	if record.ExpectedRepayment, err = time.Parse(time.RFC3339, expectedRepayment); err != nil {
		return lending.LoanRecord{}, fmt.Errorf("bad expected_repayment %q: %w", expectedRepayment, err)
	}
	if record.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return lending.LoanRecord{}, fmt.Errorf("bad created_at %q: %w", createdAt, err)
	}
	return record, nil
}
