/*
handlers_test.go - Unit tests for API handlers

Tests for:
- Advance evaluation (eligible, over-cap, validation, active-loan block)
- Loan computation (schedule shape, conflict, persistence failure)
- Record listing (order, filter)
*/
package api_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/payday/lending-engine/api"
	"github.com/payday/lending-engine/lending"
	"github.com/payday/lending-engine/lending/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestAPI(t *testing.T) (http.Handler, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	handler := api.NewHandler(mem, lending.DefaultAdvancePolicy(), lending.DefaultScheduleConfig())
	return api.NewRouter(handler), mem
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

// =============================================================================
// ADVANCE ENDPOINT
// =============================================================================

func TestCreateAdvance_Eligible_Persisted(t *testing.T) {
	router, _ := newTestAPI(t)

	rec := doJSON(t, router, http.MethodPost, "/api/advances", api.AdvanceRequest{
		EmployeeID:             "emp-1",
		GrossSalary:            3000,
		PayFrequency:           "monthly",
		RequestedAdvanceAmount: 1000,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[api.AdvanceResponse](t, rec)
	assert.True(t, resp.AdvanceEligible)
	assert.True(t, resp.Persisted)
	require.NotNil(t, resp.ApprovedAdvanceAmount)
	assert.Equal(t, 1000.0, *resp.ApprovedAdvanceAmount)
	assert.Equal(t, 1500.0, resp.EligibilityDetails.MaxEligibleAdvance)
	require.NotNil(t, resp.RecordID)
	assert.Equal(t, int64(1), *resp.RecordID)

	// The record shows up in the listing
	list := doJSON(t, router, http.MethodGet, "/api/records", nil)
	require.Equal(t, http.StatusOK, list.Code)
	records := decode[[]api.RecordDTO](t, list)
	require.Len(t, records, 1)
	assert.Equal(t, "advance", records[0].Type)
	assert.Equal(t, "emp-1", records[0].EmployeeID)
	assert.Equal(t, 1000.0, records[0].Amount)
	assert.Equal(t, 1500.0, records[0].MaxAllowed)
	assert.Equal(t, "approved", records[0].Status)
}

func TestCreateAdvance_OverCap_NotEligible_NotPersisted(t *testing.T) {
	// The literal boundary case: salary 3000, requested 1800, cap 1500.
	router, _ := newTestAPI(t)

	rec := doJSON(t, router, http.MethodPost, "/api/advances", api.AdvanceRequest{
		EmployeeID:             "emp-1",
		GrossSalary:            3000,
		PayFrequency:           "monthly",
		RequestedAdvanceAmount: 1800,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[api.AdvanceResponse](t, rec)
	assert.False(t, resp.AdvanceEligible)
	assert.False(t, resp.Persisted)
	assert.Nil(t, resp.ApprovedAdvanceAmount)
	assert.Equal(t, 1500.0, resp.EligibilityDetails.MaxEligibleAdvance)
	assert.False(t, resp.EligibilityDetails.AdvanceLimitCheck)
	assert.NotEmpty(t, resp.EligibilityDetails.FailedCriteria)

	// Nothing was recorded
	records := decode[[]api.RecordDTO](t, doJSON(t, router, http.MethodGet, "/api/records", nil))
	assert.Empty(t, records)
}

func TestCreateAdvance_InvalidSalary_400WithField(t *testing.T) {
	router, _ := newTestAPI(t)

	rec := doJSON(t, router, http.MethodPost, "/api/advances", api.AdvanceRequest{
		EmployeeID:             "emp-1",
		GrossSalary:            0,
		PayFrequency:           "monthly",
		RequestedAdvanceAmount: 100,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	resp := decode[api.ErrorResponse](t, rec)
	assert.Equal(t, "gross_salary", resp.Field)
}

func TestCreateAdvance_BlockedByActiveLoan(t *testing.T) {
	router, _ := newTestAPI(t)

	// emp-1 takes out a loan first
	loan := doJSON(t, router, http.MethodPost, "/api/loans", api.LoanRequest{
		EmployeeID:         "emp-1",
		LoanAmount:         5000,
		AnnualInterestRate: 0.1,
		LoanTermMonths:     12,
	})
	require.Equal(t, http.StatusOK, loan.Code)

	// A subsequent advance is rejected on the active-loan rule
	rec := doJSON(t, router, http.MethodPost, "/api/advances", api.AdvanceRequest{
		EmployeeID:             "emp-1",
		GrossSalary:            3000,
		PayFrequency:           "monthly",
		RequestedAdvanceAmount: 500,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[api.AdvanceResponse](t, rec)
	assert.False(t, resp.AdvanceEligible)
	assert.False(t, resp.Persisted)
	assert.NotEmpty(t, resp.EligibilityDetails.FailedCriteria)
}

// =============================================================================
// LOAN ENDPOINT
// =============================================================================

func TestCreateLoan_SchedulePersisted(t *testing.T) {
	router, _ := newTestAPI(t)

	rec := doJSON(t, router, http.MethodPost, "/api/loans", api.LoanRequest{
		EmployeeID:         "emp-1",
		LoanAmount:         12000,
		AnnualInterestRate: 0.12,
		LoanTermMonths:     12,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[api.LoanResponse](t, rec)
	assert.Equal(t, 1066.19, resp.PeriodicPayment)
	assert.Equal(t, 13521.90, resp.TotalRepayable)
	assert.True(t, resp.Persisted)
	require.Len(t, resp.Schedule, 12)

	first := resp.Schedule[0]
	assert.Equal(t, 120.0, first.Interest)
	assert.Equal(t, 946.19, first.Principal)
	assert.NotEmpty(t, first.PaymentDate)

	last := resp.Schedule[11]
	assert.Equal(t, 0.0, last.EndingBalance)

	records := decode[[]api.RecordDTO](t, doJSON(t, router, http.MethodGet, "/api/records", nil))
	require.Len(t, records, 1)
	assert.Equal(t, "loan", records[0].Type)
	assert.Equal(t, 12, records[0].TermMonths)
	assert.Equal(t, 1066.19, records[0].PeriodicPayment)
}

func TestCreateLoan_SecondActiveLoan_Conflict(t *testing.T) {
	router, _ := newTestAPI(t)

	req := api.LoanRequest{
		EmployeeID:         "emp-1",
		LoanAmount:         5000,
		AnnualInterestRate: 0.1,
		LoanTermMonths:     6,
	}
	require.Equal(t, http.StatusOK, doJSON(t, router, http.MethodPost, "/api/loans", req).Code)

	rec := doJSON(t, router, http.MethodPost, "/api/loans", req)
	require.Equal(t, http.StatusConflict, rec.Code)

	// Only the first loan was recorded
	records := decode[[]api.RecordDTO](t, doJSON(t, router, http.MethodGet, "/api/records", nil))
	assert.Len(t, records, 1)
}

func TestCreateLoan_NegativeRate_400WithField(t *testing.T) {
	router, _ := newTestAPI(t)

	rec := doJSON(t, router, http.MethodPost, "/api/loans", api.LoanRequest{
		EmployeeID:         "emp-1",
		LoanAmount:         1000,
		AnnualInterestRate: -0.05,
		LoanTermMonths:     12,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	resp := decode[api.ErrorResponse](t, rec)
	assert.Equal(t, "annual_rate", resp.Field)
}

func TestCreateLoan_StoreDown_ComputedButUnstored(t *testing.T) {
	// Spec'd behavior: a persistence failure after a successful computation
	// still returns the result, flagged as unstored.
	router, mem := newTestAPI(t)
	mem.FailAppends = errors.New("disk full")

	rec := doJSON(t, router, http.MethodPost, "/api/loans", api.LoanRequest{
		EmployeeID:         "emp-1",
		LoanAmount:         12000,
		AnnualInterestRate: 0.12,
		LoanTermMonths:     12,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[api.LoanResponse](t, rec)
	assert.False(t, resp.Persisted)
	assert.Contains(t, resp.PersistError, "disk full")
	assert.Nil(t, resp.RecordID)
	assert.Equal(t, 1066.19, resp.PeriodicPayment)
	assert.Len(t, resp.Schedule, 12)
}

func TestCreateLoan_MalformedBody_400(t *testing.T) {
	router, _ := newTestAPI(t)

	req := httptest.NewRequest(http.MethodPost, "/api/loans", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// LISTING ENDPOINT
// =============================================================================

func TestListRecords_OrderAndFilter(t *testing.T) {
	router, _ := newTestAPI(t)

	require.Equal(t, http.StatusOK, doJSON(t, router, http.MethodPost, "/api/loans", api.LoanRequest{
		EmployeeID: "emp-1", LoanAmount: 1000, AnnualInterestRate: 0.1, LoanTermMonths: 6,
	}).Code)
	require.Equal(t, http.StatusOK, doJSON(t, router, http.MethodPost, "/api/advances", api.AdvanceRequest{
		EmployeeID: "emp-2", GrossSalary: 4000, PayFrequency: "monthly", RequestedAdvanceAmount: 800,
	}).Code)
	require.Equal(t, http.StatusOK, doJSON(t, router, http.MethodPost, "/api/loans", api.LoanRequest{
		EmployeeID: "emp-3", LoanAmount: 2000, AnnualInterestRate: 0, LoanTermMonths: 4,
	}).Code)

	all := decode[[]api.RecordDTO](t, doJSON(t, router, http.MethodGet, "/api/records", nil))
	require.Len(t, all, 3)
	for i, record := range all {
		assert.Equal(t, int64(i+1), record.ID, "records must come back in insertion order")
	}

	loans := decode[[]api.RecordDTO](t, doJSON(t, router, http.MethodGet, "/api/records?type=loan", nil))
	require.Len(t, loans, 2)
	for _, record := range loans {
		assert.Equal(t, "loan", record.Type)
	}
}

func TestHealth(t *testing.T) {
	router, _ := newTestAPI(t)
	rec := doJSON(t, router, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
