/*
amortize.go - Fixed-rate loan amortization

PURPOSE:
  Computes the fixed periodic payment for a loan (standard annuity formula)
  and generates the full amortization schedule: per-period interest,
  principal, and remaining balance, driven to exactly zero.

FORMULA:
  i = annual rate / periods per year (monthly compounding by default)
  payment = P x i / (1 - (1+i)^-n)   when i > 0
  payment = P / n                    when i = 0

ROUNDING POLICY:
  All monetary values are rounded to 2 decimal places at each row boundary:
  - payment rounded once, after the closed-form formula
  - interest rounded per row; principal = payment - interest
  - the final period pays off the exact remaining balance and recomputes its
    payment, absorbing residual rounding error so the terminal balance is
    exactly 0 and principal portions sum exactly to P

SCHEDULE ITERATION:
  Schedule is a lazy, finite, restartable iterator: Next() produces one row
  at a time, Reset() rewinds to period 1, Rows() materializes everything.
  Generating a row is O(1); nothing is precomputed.

WORKED EXAMPLE:
  P=12000, r=0.12, n=12 monthly periods:
  payment = 1066.19; row 1 interest = 120.00, principal = 946.19;
  row 12 ending balance = 0.00.

SEE ALSO:
  - types.go: Money and rounding helpers
  - errors.go: ValidationError
*/
package lending

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CONFIGURATION
// =============================================================================

// ScheduleConfig carries the compounding configuration.
type ScheduleConfig struct {
	// PeriodsPerYear is the compounding/repayment frequency. 12 = monthly.
	PeriodsPerYear int
}

// DefaultScheduleConfig returns monthly compounding.
func DefaultScheduleConfig() ScheduleConfig {
	return ScheduleConfig{PeriodsPerYear: 12}
}

// =============================================================================
// INPUT / ROW
// =============================================================================

// LoanInput describes one loan to amortize.
type LoanInput struct {
	EmployeeID string
	Principal  Money
	// AnnualRate is the yearly interest rate as a fraction (0.12 = 12%/yr).
	AnnualRate decimal.Decimal
	// TermPeriods is the number of repayment periods (months by default).
	TermPeriods int
	// StartDate anchors payment dates. Zero value leaves dates unset.
	StartDate time.Time
}

// Row is one period of the amortization schedule.
// Invariant: Interest + Principal = Payment, and EndingBalance of the final
// row is exactly zero.
type Row struct {
	Period           int
	PaymentDate      time.Time
	BeginningBalance Money
	Payment          Money
	Interest         Money
	Principal        Money
	EndingBalance    Money
}

// =============================================================================
// ENGINE
// =============================================================================

// Engine computes payments and schedules under a ScheduleConfig.
type Engine struct {
	Config ScheduleConfig
}

// NewEngine creates an engine with the given config.
func NewEngine(cfg ScheduleConfig) *Engine {
	if cfg.PeriodsPerYear <= 0 {
		cfg = DefaultScheduleConfig()
	}
	return &Engine{Config: cfg}
}

func (e *Engine) validate(in LoanInput) error {
	if !in.Principal.IsPositive() {
		return &ValidationError{Field: "principal", Reason: "must be greater than 0"}
	}
	if in.AnnualRate.IsNegative() {
		return &ValidationError{Field: "annual_rate", Reason: "must not be negative"}
	}
	if in.TermPeriods < 1 {
		return &ValidationError{Field: "term_periods", Reason: "must be at least 1"}
	}
	return nil
}

// periodicRate derives the per-period rate from the annual rate.
func (e *Engine) periodicRate(in LoanInput) decimal.Decimal {
	return in.AnnualRate.Div(decimal.NewFromInt(int64(e.Config.PeriodsPerYear)))
}

// PeriodicPayment computes the fixed payment, rounded to 2 decimals.
func (e *Engine) PeriodicPayment(in LoanInput) (Money, error) {
	if err := e.validate(in); err != nil {
		return decimal.Zero, err
	}
	return e.payment(in), nil
}

func (e *Engine) payment(in LoanInput) Money {
	n := decimal.NewFromInt(int64(in.TermPeriods))
	i := e.periodicRate(in)
	if i.IsZero() {
		return RoundMoney(in.Principal.Div(n))
	}

	// payment = P * i * (1+i)^n / ((1+i)^n - 1)
	one := decimal.NewFromInt(1)
	growth := one.Add(i).Pow(n)
	return RoundMoney(in.Principal.Mul(i).Mul(growth).Div(growth.Sub(one)))
}

// TotalRepayable computes the compound total P * (1+i)^n, rounded to
// 2 decimals. This is the headline figure shown alongside the schedule.
func (e *Engine) TotalRepayable(in LoanInput) (Money, error) {
	if err := e.validate(in); err != nil {
		return decimal.Zero, err
	}
	one := decimal.NewFromInt(1)
	n := decimal.NewFromInt(int64(in.TermPeriods))
	return RoundMoney(in.Principal.Mul(one.Add(e.periodicRate(in)).Pow(n))), nil
}

// Schedule validates the input and returns a restartable schedule iterator
// positioned before period 1.
func (e *Engine) Schedule(in LoanInput) (*Schedule, error) {
	if err := e.validate(in); err != nil {
		return nil, err
	}
	s := &Schedule{
		input:   in,
		rate:    e.periodicRate(in),
		payment: e.payment(in),
	}
	s.Reset()
	return s, nil
}

// =============================================================================
// SCHEDULE - Lazy, finite, restartable row sequence
// =============================================================================

// Schedule iterates the amortization rows of one loan. Not safe for
// concurrent use; each caller should hold its own Schedule.
type Schedule struct {
	input   LoanInput
	rate    decimal.Decimal
	payment Money

	// Cursor state, rewound by Reset.
	period  int
	balance Money
}

// Payment returns the fixed periodic payment (the final period's payment may
// differ by the rounding correction).
func (s *Schedule) Payment() Money { return s.payment }

// Term returns the number of rows the schedule produces.
func (s *Schedule) Term() int { return s.input.TermPeriods }

// Reset rewinds the iterator to period 1.
func (s *Schedule) Reset() {
	s.period = 0
	s.balance = RoundMoney(s.input.Principal)
}

// Next produces the next row. Returns ok=false after the final period.
func (s *Schedule) Next() (Row, bool) {
	if s.period >= s.input.TermPeriods {
		return Row{}, false
	}
	s.period++

	beginning := s.balance
	interest := RoundMoney(beginning.Mul(s.rate))

	row := Row{
		Period:           s.period,
		BeginningBalance: beginning,
		Payment:          s.payment,
		Interest:         interest,
	}
	if !s.input.StartDate.IsZero() {
		row.PaymentDate = s.input.StartDate.AddDate(0, s.period-1, 0)
	}

	if s.period == s.input.TermPeriods {
		// Final period clears the exact remaining balance; the payment
		// absorbs the accumulated rounding residue.
		row.Principal = beginning
		row.Payment = RoundMoney(beginning.Add(interest))
		s.balance = decimal.Zero
	} else {
		row.Principal = s.payment.Sub(interest)
		s.balance = beginning.Sub(row.Principal)
	}
	row.EndingBalance = s.balance

	return row, true
}

// Rows materializes the full schedule. The iterator is reset first, so Rows
// always returns all Term() rows regardless of prior Next calls, and the
// schedule can be iterated again afterwards.
func (s *Schedule) Rows() []Row {
	s.Reset()
	rows := make([]Row, 0, s.input.TermPeriods)
	for {
		row, ok := s.Next()
		if !ok {
			break
		}
		rows = append(rows, row)
	}
	s.Reset()
	return rows
}
