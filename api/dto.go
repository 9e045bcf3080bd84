/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model (decimal.Decimal everywhere) from the external
  API contract (plain JSON numbers and formatted dates).

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation is done in the lending package, not in DTOs. DTOs are pure
  data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - lending/record.go: Domain record these map from
*/
package api

import (
	"time"

	"github.com/payday/lending-engine/lending"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// AdvanceRequest is the request to evaluate (and record) a salary advance.
type AdvanceRequest struct {
	EmployeeID             string  `json:"employee_id"`
	GrossSalary            float64 `json:"gross_salary"`
	PayFrequency           string  `json:"pay_frequency"`
	RequestedAdvanceAmount float64 `json:"requested_advance_amount"`
}

// LoanRequest is the request to compute (and record) a personal loan.
type LoanRequest struct {
	EmployeeID         string  `json:"employee_id"`
	LoanAmount         float64 `json:"loan_amount"`
	AnnualInterestRate float64 `json:"annual_interest_rate"`
	LoanTermMonths     int     `json:"loan_term_months"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// EligibilityDetailsDTO is the per-criterion breakdown of an advance decision.
type EligibilityDetailsDTO struct {
	IsEligible         bool     `json:"is_eligible"`
	FailedCriteria     []string `json:"failed_criteria"`
	MaxEligibleAdvance float64  `json:"max_eligible_advance"`
	SalaryCheck        bool     `json:"salary_check"`
	AdvanceLimitCheck  bool     `json:"advance_limit_check"`
}

// AdvanceResponse is returned by POST /api/advances.
type AdvanceResponse struct {
	AdvanceEligible       bool                  `json:"advance_eligible"`
	AdvanceMessage        string                `json:"advance_message"`
	ApprovedAdvanceAmount *float64              `json:"approved_advance_amount,omitempty"`
	EligibilityDetails    EligibilityDetailsDTO `json:"eligibility_details"`
	Persisted             bool                  `json:"persisted"`
	PersistError          string                `json:"persist_error,omitempty"`
	RecordID              *int64                `json:"record_id,omitempty"`
}

// ScheduleRowDTO is one period of an amortization schedule.
type ScheduleRowDTO struct {
	Period           int     `json:"period"`
	PaymentDate      string  `json:"payment_date,omitempty"`
	BeginningBalance float64 `json:"beginning_balance"`
	Payment          float64 `json:"payment"`
	Interest         float64 `json:"interest"`
	Principal        float64 `json:"principal"`
	EndingBalance    float64 `json:"ending_balance"`
}

// LoanResponse is returned by POST /api/loans.
type LoanResponse struct {
	PeriodicPayment float64          `json:"periodic_payment"`
	TotalRepayable  float64          `json:"total_repayable"`
	Schedule        []ScheduleRowDTO `json:"amortization_schedule"`
	Persisted       bool             `json:"persisted"`
	PersistError    string           `json:"persist_error,omitempty"`
	RecordID        *int64           `json:"record_id,omitempty"`
}

// RecordDTO represents a persisted record in API responses.
type RecordDTO struct {
	ID                int64   `json:"record_id"`
	EmployeeID        string  `json:"employee_id"`
	Type              string  `json:"type"`
	Amount            float64 `json:"amount"`
	InterestRate      float64 `json:"interest_rate"`
	TermMonths        int     `json:"term_months"`
	MaxAllowed        float64 `json:"max_allowed,omitempty"`
	PeriodicPayment   float64 `json:"periodic_payment,omitempty"`
	TotalRepayable    float64 `json:"total_repayable,omitempty"`
	DisbursementDate  string  `json:"disbursement_date"`
	ExpectedRepayment string  `json:"expected_repayment_date"`
	Status            string  `json:"status"`
	CreatedAt         string  `json:"created_at"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Field   string `json:"field,omitempty"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// MAPPERS
// =============================================================================

func toRecordDTO(r lending.LoanRecord) RecordDTO {
	return RecordDTO{
		ID:                int64(r.ID),
		EmployeeID:        r.EmployeeID,
		Type:              string(r.Type),
		Amount:            r.Amount.InexactFloat64(),
		InterestRate:      r.InterestRate.InexactFloat64(),
		TermMonths:        r.TermMonths,
		MaxAllowed:        r.MaxAllowed.InexactFloat64(),
		PeriodicPayment:   r.PeriodicPayment.InexactFloat64(),
		TotalRepayable:    r.TotalRepayable.InexactFloat64(),
		DisbursementDate:  r.DisbursementDate.Format("2006-01-02"),
		ExpectedRepayment: r.ExpectedRepayment.Format("2006-01-02"),
		Status:            string(r.Status),
		CreatedAt:         r.CreatedAt.Format(time.RFC3339),
	}
}

func toScheduleRowDTO(row lending.Row) ScheduleRowDTO {
	dto := ScheduleRowDTO{
		Period:           row.Period,
		BeginningBalance: row.BeginningBalance.InexactFloat64(),
		Payment:          row.Payment.InexactFloat64(),
		Interest:         row.Interest.InexactFloat64(),
		Principal:        row.Principal.InexactFloat64(),
		EndingBalance:    row.EndingBalance.InexactFloat64(),
	}
	if !row.PaymentDate.IsZero() {
		dto.PaymentDate = row.PaymentDate.Format("2006-01-02")
	}
	return dto
}
