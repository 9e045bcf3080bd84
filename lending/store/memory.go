// Package store provides RecordStore implementations.
package store

import (
	"context"
	"sync"

	"github.com/payday/lending-engine/lending"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu      sync.RWMutex
	records []lending.LoanRecord
	nextID  lending.RecordID

	// FailAppends makes every Append return an error. Used by tests to
	// exercise the computed-but-unstored path.
	FailAppends error
}

func NewMemory() *Memory {
	return &Memory{nextID: 1}
}

// Append adds a record and assigns the next monotonic id. Append-only.
func (m *Memory) Append(_ context.Context, record lending.LoanRecord) (lending.RecordID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailAppends != nil {
		return 0, &lending.PersistenceError{Op: "append", Err: m.FailAppends}
	}

	record.ID = m.nextID
	m.nextID++
	m.records = append(m.records, record)
	return record.ID, nil
}

// ListAll returns a copy of all records in insertion order.
func (m *Memory) ListAll(_ context.Context) ([]lending.LoanRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]lending.LoanRecord, len(m.records))
	copy(result, m.records)
	return result, nil
}

var _ lending.RecordStore = (*Memory)(nil)
