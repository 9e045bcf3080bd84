package csvlog_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/payday/lending-engine/lending"
	"github.com/payday/lending-engine/store/csvlog"
)

func testRecord(employeeID string, recordType lending.RecordType) lending.LoanRecord {
	now := time.Date(2026, time.April, 5, 12, 0, 0, 0, time.UTC)
	return lending.LoanRecord{
		EmployeeID:        employeeID,
		Type:              recordType,
		Amount:            lending.MustMoney("2500.50"),
		InterestRate:      lending.MustMoney("0.07"),
		TermMonths:        6,
		MaxAllowed:        lending.MustMoney("3000"),
		PeriodicPayment:   lending.MustMoney("425.93"),
		TotalRepayable:    lending.MustMoney("2589.28"),
		DisbursementDate:  now,
		ExpectedRepayment: now.AddDate(0, 6, 0),
		Status:            lending.StatusApproved,
		CreatedAt:         now,
	}
}

func TestCSVLog_AppendAndList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "loans.csv")
	store, err := csvlog.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()

	id1, err := store.Append(ctx, testRecord("emp-1", lending.RecordLoan))
	require.NoError(t, err)
	id2, err := store.Append(ctx, testRecord("emp-2", lending.RecordAdvance))
	require.NoError(t, err)
	assert.Equal(t, lending.RecordID(1), id1)
	assert.Equal(t, lending.RecordID(2), id2)

	records, err := store.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "emp-1", records[0].EmployeeID)
	assert.Equal(t, lending.RecordLoan, records[0].Type)
	assert.Equal(t, "emp-2", records[1].EmployeeID)
	assert.Equal(t, lending.RecordAdvance, records[1].Type)
	assert.True(t, records[0].Amount.Equal(lending.MustMoney("2500.50")))
	assert.True(t, records[0].PeriodicPayment.Equal(lending.MustMoney("425.93")))
}

func TestCSVLog_IDsSurviveReopen(t *testing.T) {
	// GIVEN: A log with two records
	path := filepath.Join(t.TempDir(), "loans.csv")
	store, err := csvlog.Open(path)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = store.Append(ctx, testRecord("emp-1", lending.RecordLoan))
	require.NoError(t, err)
	_, err = store.Append(ctx, testRecord("emp-2", lending.RecordLoan))
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// WHEN: Reopening and appending again
	store, err = csvlog.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	id3, err := store.Append(ctx, testRecord("emp-3", lending.RecordAdvance))
	require.NoError(t, err)

	// THEN: The id sequence continues; nothing was lost
	assert.Equal(t, lending.RecordID(3), id3)

	records, err := store.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 3)
	for i, record := range records {
		assert.Equal(t, lending.RecordID(i+1), record.ID)
	}
}

func TestCSVLog_RoundTripPreservesFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "loans.csv")
	store, err := csvlog.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	want := testRecord("emp-42", lending.RecordLoan)
	_, err = store.Append(context.Background(), want)
	require.NoError(t, err)

	records, err := store.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)

	got := records[0]
	assert.Equal(t, want.EmployeeID, got.EmployeeID)
	assert.Equal(t, want.TermMonths, got.TermMonths)
	assert.Equal(t, want.Status, got.Status)
	assert.True(t, want.InterestRate.Equal(got.InterestRate))
	assert.True(t, want.TotalRepayable.Equal(got.TotalRepayable))
	assert.True(t, want.DisbursementDate.Equal(got.DisbursementDate))
	assert.True(t, want.ExpectedRepayment.Equal(got.ExpectedRepayment))
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt))
}
