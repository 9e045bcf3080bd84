/*
Package csvlog provides a flat-file implementation of lending.RecordStore.

PURPOSE:
  Persists loan records as a sequential CSV log, one row per record, in the
  exact spirit of a loans.csv flat file. Rows are only ever appended; the
  file is never rewritten or compacted.

APPEND DISCIPLINE:
  The file is opened with O_APPEND and every Append flushes and fsyncs
  before returning, so a crash can lose at most the row being written.
  Record ids are recovered from the existing log on Open, so ids stay
  monotonic across restarts.

WHEN TO USE:
  Development and single-writer deployments that want a human-readable log.
  The SQLite store (store/sqlite) is the default backend.

SEE ALSO:
  - lending/record.go: Interface definition
  - store/sqlite/sqlite.go: Embedded-table implementation
*/
package csvlog

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/payday/lending-engine/lending"
)

var header = []string{
	"record_id", "employee_id", "record_type",
	"amount", "interest_rate", "term_months",
	"max_allowed", "periodic_payment", "total_repayable",
	"disbursement_date", "expected_repayment", "status", "created_at",
}

// Store implements lending.RecordStore over a CSV append log.
type Store struct {
	mu     sync.Mutex
	path   string
	file   *os.File
	nextID lending.RecordID
}

var _ lending.RecordStore = (*Store)(nil)

// Open opens (or creates) the log at path and recovers the next record id
// from the last row.
func Open(path string) (*Store, error) {
	records, err := readAll(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read existing log: %w", err)
	}

	nextID := lending.RecordID(1)
	if n := len(records); n > 0 {
		nextID = records[n-1].ID + 1
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log: %w", err)
	}

	store := &Store{path: path, file: file, nextID: nextID}

	// New log: write the header row first.
	if len(records) == 0 {
		info, err := file.Stat()
		if err != nil {
			file.Close()
			return nil, err
		}
		if info.Size() == 0 {
			w := csv.NewWriter(file)
			if err := w.Write(header); err != nil {
				file.Close()
				return nil, err
			}
			w.Flush()
			if err := w.Error(); err != nil {
				file.Close()
				return nil, err
			}
		}
	}

	return store, nil
}

// Close closes the underlying file.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}

// Append writes one row and fsyncs. Append-only.
func (s *Store) Append(_ context.Context, record lending.LoanRecord) (lending.RecordID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record.ID = s.nextID

	w := csv.NewWriter(s.file)
	if err := w.Write(marshalRow(record)); err != nil {
		return 0, &lending.PersistenceError{Op: "append", Err: err}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return 0, &lending.PersistenceError{Op: "append", Err: err}
	}
	if err := s.file.Sync(); err != nil {
		return 0, &lending.PersistenceError{Op: "append", Err: err}
	}

	s.nextID++
	return record.ID, nil
}

// ListAll re-reads the log from disk and returns all records in file order.
func (s *Store) ListAll(_ context.Context) ([]lending.LoanRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := readAll(s.path)
	if err != nil {
		return nil, &lending.PersistenceError{Op: "list", Err: err}
	}
	return records, nil
}

func readAll(path string) ([]lending.LoanRecord, error) {
	file, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = len(header)

	var records []lending.LoanRecord
	first := true
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if first {
			first = false
			if row[0] == header[0] {
				continue
			}
		}
		record, err := unmarshalRow(row)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func marshalRow(record lending.LoanRecord) []string {
	return []string{
		strconv.FormatInt(int64(record.ID), 10),
		record.EmployeeID,
		string(record.Type),
		record.Amount.String(),
		record.InterestRate.String(),
		strconv.Itoa(record.TermMonths),
		record.MaxAllowed.String(),
		record.PeriodicPayment.String(),
		record.TotalRepayable.String(),
		record.DisbursementDate.UTC().Format(time.RFC3339),
		record.ExpectedRepayment.UTC().Format(time.RFC3339),
		string(record.Status),
		record.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func unmarshalRow(row []string) (lending.LoanRecord, error) {
	var record lending.LoanRecord

	id, err := strconv.ParseInt(row[0], 10, 64)
	if err != nil {
		return record, fmt.Errorf("bad record_id %q: %w", row[0], err)
	}
	record.ID = lending.RecordID(id)
	record.EmployeeID = row[1]
	record.Type = lending.RecordType(row[2])

	if record.Amount, err = decimal.NewFromString(row[3]); err != nil {
		return record, fmt.Errorf("bad amount %q: %w", row[3], err)
	}
	if record.InterestRate, err = decimal.NewFromString(row[4]); err != nil {
		return record, fmt.Errorf("bad interest_rate %q: %w", row[4], err)
	}
	if record.TermMonths, err = strconv.Atoi(row[5]); err != nil {
		return record, fmt.Errorf("bad term_months %q: %w", row[5], err)
	}
	if record.MaxAllowed, err = decimal.NewFromString(row[6]); err != nil {
		return record, fmt.Errorf("bad max_allowed %q: %w", row[6], err)
	}
	if record.PeriodicPayment, err = decimal.NewFromString(row[7]); err != nil {
		return record, fmt.Errorf("bad periodic_payment %q: %w", row[7], err)
	}
	if record.TotalRepayable, err = decimal.NewFromString(row[8]); err != nil {
		return record, fmt.Errorf("bad total_repayable %q: %w", row[8], err)
	}
	if record.DisbursementDate, err = time.Parse(time.RFC3339, row[9]); err != nil {
		return record, fmt.Errorf("bad disbursement_date %q: %w", row[9], err)
	}
	if record.ExpectedRepayment, err = time.Parse(time.RFC3339, row[10]); err != nil {
		return record, fmt.Errorf("bad expected_repayment %q: %w", row[10], err)
	}
	record.Status = lending.RecordStatus(row[11])
	if record.CreatedAt, err = time.Parse(time.RFC3339, row[12]); err != nil {
		return record, fmt.Errorf("bad created_at %q: %w", row[12], err)
	}
	return record, nil
}
