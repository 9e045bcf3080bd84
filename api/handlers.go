/*
handlers.go - HTTP API handlers for the lending engine

PURPOSE:
  Exposes the eligibility evaluator and amortization engine via REST API.
  Handles HTTP request/response, JSON serialization, and delegates to
  domain logic.

ENDPOINTS:
  POST   /api/advances   Evaluate salary advance; record when eligible
  POST   /api/loans      Compute loan schedule; record the loan
  GET    /api/records    List all persisted records (insertion order)
  GET    /api/health     Liveness probe

REQUEST FLOW:
  1. Parse HTTP request
  2. Delegate validation + computation to the lending package
  3. Append the record (failure here does NOT discard the result)
  4. Serialize response

ERROR HANDLING:
  - 400: Validation errors (offending field identified)
  - 409: Employee already has an active loan (loan endpoint)
  - 500: Record store unavailable for reads
  - 200 with persisted=false: Computation succeeded, append failed.
    The caller gets the result plus the persistence error message.

SECURITY NOTE:
  No authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/payday/lending-engine/lending"
)

// advanceRepaymentDays is how long an advance is expected to be outstanding.
const advanceRepaymentDays = 30

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store     lending.RecordStore
	Evaluator *lending.Evaluator
	Engine    *lending.Engine

	// now is injectable for deterministic tests.
	now func() time.Time
}

// NewHandler creates a handler with the given store and configuration.
func NewHandler(store lending.RecordStore, policy lending.AdvancePolicy, cfg lending.ScheduleConfig) *Handler {
	return &Handler{
		Store:     store,
		Evaluator: lending.NewEvaluator(policy),
		Engine:    lending.NewEngine(cfg),
		now:       time.Now,
	}
}

// =============================================================================
// ADVANCE HANDLER
// =============================================================================

// CreateAdvance evaluates a salary advance request and, when eligible,
// appends an advance record.
func (h *Handler) CreateAdvance(w http.ResponseWriter, r *http.Request) {
	var req AdvanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	decision, err := h.Evaluator.Evaluate(lending.EligibilityInput{
		EmployeeID:   req.EmployeeID,
		GrossSalary:  lending.NewMoney(req.GrossSalary),
		PayFrequency: lending.PayFrequency(req.PayFrequency),
		Requested:    lending.NewMoney(req.RequestedAdvanceAmount),
	})
	if err != nil {
		writeValidationError(w, err)
		return
	}

	resp := AdvanceResponse{
		AdvanceEligible: decision.Eligible,
		EligibilityDetails: EligibilityDetailsDTO{
			IsEligible:         decision.Eligible,
			FailedCriteria:     append([]string{}, decision.FailedCriteria...),
			MaxEligibleAdvance: decision.MaxAllowed.InexactFloat64(),
			SalaryCheck:        decision.SalaryCheck,
			AdvanceLimitCheck:  decision.LimitCheck,
		},
	}

	if !decision.Eligible {
		resp.AdvanceMessage = "Not eligible for salary advance. See details."
		writeJSON(w, http.StatusOK, resp)
		return
	}

	existing, err := h.Store.ListAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to check existing loans", err)
		return
	}
	if blockingID, active := lending.HasActiveRecord(existing, req.EmployeeID); active {
		activeErr := &lending.ActiveLoanError{EmployeeID: req.EmployeeID, RecordID: blockingID}
		resp.AdvanceEligible = false
		resp.AdvanceMessage = "Not eligible for salary advance. See details."
		resp.EligibilityDetails.IsEligible = false
		resp.EligibilityDetails.FailedCriteria = append(resp.EligibilityDetails.FailedCriteria, activeErr.Error())
		writeJSON(w, http.StatusOK, resp)
		return
	}

	now := h.now()
	approved := lending.NewMoney(req.RequestedAdvanceAmount)
	record := lending.LoanRecord{
		EmployeeID:        req.EmployeeID,
		Type:              lending.RecordAdvance,
		Amount:            approved,
		MaxAllowed:        decision.MaxAllowed,
		DisbursementDate:  now,
		ExpectedRepayment: now.AddDate(0, 0, advanceRepaymentDays),
		Status:            lending.StatusApproved,
		CreatedAt:         now,
	}

	resp.AdvanceMessage = "Eligible for salary advance."
	approvedAmount := approved.InexactFloat64()
	resp.ApprovedAdvanceAmount = &approvedAmount

	id, err := h.Store.Append(r.Context(), record)
	if err != nil {
		// The decision stands; the caller is told it was not stored.
		resp.PersistError = err.Error()
		writeJSON(w, http.StatusOK, resp)
		return
	}
	resp.Persisted = true
	recordID := int64(id)
	resp.RecordID = &recordID

	writeJSON(w, http.StatusOK, resp)
}

// =============================================================================
// LOAN HANDLER
// =============================================================================

// CreateLoan computes a loan's payment and amortization schedule and appends
// a loan record.
func (h *Handler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	var req LoanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	now := h.now()
	input := lending.LoanInput{
		EmployeeID:  req.EmployeeID,
		Principal:   lending.NewMoney(req.LoanAmount),
		AnnualRate:  lending.NewMoney(req.AnnualInterestRate),
		TermPeriods: req.LoanTermMonths,
		StartDate:   now,
	}

	schedule, err := h.Engine.Schedule(input)
	if err != nil {
		writeValidationError(w, err)
		return
	}
	totalRepayable, err := h.Engine.TotalRepayable(input)
	if err != nil {
		writeValidationError(w, err)
		return
	}

	existing, err := h.Store.ListAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to check existing loans", err)
		return
	}
	if blockingID, active := lending.HasActiveRecord(existing, req.EmployeeID); active {
		activeErr := &lending.ActiveLoanError{EmployeeID: req.EmployeeID, RecordID: blockingID}
		writeError(w, http.StatusConflict, "Employee already has an active loan", activeErr)
		return
	}

	rows := schedule.Rows()
	resp := LoanResponse{
		PeriodicPayment: schedule.Payment().InexactFloat64(),
		TotalRepayable:  totalRepayable.InexactFloat64(),
		Schedule:        make([]ScheduleRowDTO, len(rows)),
	}
	for i, row := range rows {
		resp.Schedule[i] = toScheduleRowDTO(row)
	}

	record := lending.LoanRecord{
		EmployeeID:        req.EmployeeID,
		Type:              lending.RecordLoan,
		Amount:            input.Principal,
		InterestRate:      input.AnnualRate,
		TermMonths:        req.LoanTermMonths,
		PeriodicPayment:   schedule.Payment(),
		TotalRepayable:    totalRepayable,
		DisbursementDate:  now,
		ExpectedRepayment: now.AddDate(0, req.LoanTermMonths, 0),
		Status:            lending.StatusApproved,
		CreatedAt:         now,
	}

	id, err := h.Store.Append(r.Context(), record)
	if err != nil {
		resp.PersistError = err.Error()
		writeJSON(w, http.StatusOK, resp)
		return
	}
	resp.Persisted = true
	recordID := int64(id)
	resp.RecordID = &recordID

	writeJSON(w, http.StatusOK, resp)
}

// =============================================================================
// LISTING HANDLER
// =============================================================================

// ListRecords returns all persisted records in insertion order.
// Optional ?type=advance|loan filter.
func (h *Handler) ListRecords(w http.ResponseWriter, r *http.Request) {
	records, err := h.Store.ListAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list records", err)
		return
	}

	typeFilter := lending.RecordType(r.URL.Query().Get("type"))

	dtos := make([]RecordDTO, 0, len(records))
	for _, record := range records {
		if typeFilter != "" && record.Type != typeFilter {
			continue
		}
		dtos = append(dtos, toRecordDTO(record))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeValidationError maps a lending validation error to a 400 with the
// offending field identified.
func writeValidationError(w http.ResponseWriter, err error) {
	var vErr *lending.ValidationError
	if errors.As(err, &vErr) {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "Validation failed",
			Field:   vErr.Field,
			Details: vErr.Reason,
		})
		return
	}
	writeError(w, http.StatusBadRequest, "Validation failed", err)
}
