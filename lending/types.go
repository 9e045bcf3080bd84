/*
Package lending provides the core salary-advance and loan calculation engine.

PURPOSE:
  This package contains the domain types and algorithms for evaluating
  salary-advance eligibility and generating fixed-rate loan amortization
  schedules. All monetary arithmetic uses decimal.Decimal - never float64 -
  so that rounding is explicit and schedules balance to exactly zero.

KEY CONCEPTS IN THIS FILE (types.go):
  - Money: A monetary quantity (wraps decimal.Decimal)
  - PayFrequency: How often an employee is paid, with monthly normalization
  - RecordID/RecordType: Type-safe identifiers for persisted records

DESIGN PRINCIPLES:
  1. Purity: Evaluator and Engine are side-effect free; the caller persists
  2. Precision: decimal.Decimal with rounding at defined boundaries only
  3. Explicit config: Policy knobs are passed in, never read from ambient state

SEE ALSO:
  - eligibility.go: Advance eligibility rules
  - amortize.go: Annuity payment and schedule generation
  - record.go: Persisted record model and store interface
*/
package lending

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - Monetary quantity with 2-decimal rounding helpers
// =============================================================================

// Money is a monetary amount. It is a thin alias over decimal.Decimal so the
// rest of the package reads naturally; currency is implicit (single-currency
// system).
type Money = decimal.Decimal

// NewMoney builds a Money from a float64 (typically a decoded JSON number).
func NewMoney(v float64) Money {
	return decimal.NewFromFloat(v)
}

// RoundMoney rounds to 2 decimal places, the row-boundary rounding policy.
func RoundMoney(v Money) Money {
	return v.Round(2)
}

// MustMoney parses a decimal string. For tests and constants only.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(fmt.Sprintf("lending: bad money literal %q: %v", s, err))
	}
	return d
}

// =============================================================================
// PAY FREQUENCY - Normalization to monthly gross
// =============================================================================

// PayFrequency is how often an employee receives their salary.
type PayFrequency string

const (
	PayWeekly      PayFrequency = "weekly"
	PayBiWeekly    PayFrequency = "bi-weekly"
	PaySemiMonthly PayFrequency = "semi-monthly"
	PayMonthly     PayFrequency = "monthly"
)

// ParsePayFrequency normalizes user input (case-insensitive) to a known
// frequency. Returns a ValidationError for anything else.
func ParsePayFrequency(s string) (PayFrequency, error) {
	switch PayFrequency(strings.ToLower(strings.TrimSpace(s))) {
	case PayWeekly:
		return PayWeekly, nil
	case PayBiWeekly:
		return PayBiWeekly, nil
	case PaySemiMonthly:
		return PaySemiMonthly, nil
	case PayMonthly:
		return PayMonthly, nil
	default:
		return "", &ValidationError{
			Field:  "pay_frequency",
			Reason: fmt.Sprintf("unsupported pay frequency %q (supported: weekly, bi-weekly, semi-monthly, monthly)", s),
		}
	}
}

// PeriodsPerMonth returns how many pay periods approximately fit in a month.
// Weekly ~4, bi-weekly and semi-monthly ~2, monthly 1.
func (f PayFrequency) PeriodsPerMonth() decimal.Decimal {
	switch f {
	case PayWeekly:
		return decimal.NewFromInt(4)
	case PayBiWeekly, PaySemiMonthly:
		return decimal.NewFromInt(2)
	default:
		return decimal.NewFromInt(1)
	}
}

// MonthlyGross converts a per-period gross salary to its monthly equivalent.
func (f PayFrequency) MonthlyGross(grossSalary Money) Money {
	return grossSalary.Mul(f.PeriodsPerMonth())
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

// RecordID identifies a persisted record. IDs are assigned by the store,
// monotonically increasing in insertion order.
type RecordID int64

// RecordType distinguishes the two kinds of persisted transactions.
type RecordType string

const (
	RecordAdvance RecordType = "advance"
	RecordLoan    RecordType = "loan"
)

// RecordStatus is the lifecycle state of a record. Records are immutable, so
// the status written at creation time is final in this system.
type RecordStatus string

const (
	StatusApproved  RecordStatus = "approved"
	StatusDisbursed RecordStatus = "disbursed"
	StatusRepaid    RecordStatus = "repaid"
)

// activeStatuses are the statuses that block a new loan or advance for the
// same employee.
var activeStatuses = map[RecordStatus]bool{
	StatusApproved:  true,
	StatusDisbursed: true,
}

// IsActive reports whether a record in this status counts against the
// one-active-loan-per-employee rule.
func (s RecordStatus) IsActive() bool {
	return activeStatuses[s]
}
