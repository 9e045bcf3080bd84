/*
eligibility.go - Salary advance eligibility evaluation

PURPOSE:
  Decides whether an employee may take a salary advance, and how much. Pure
  function of (input, policy): no storage, no clock, no ambient state. The
  caller decides whether to persist the decision.

RULES (in evaluation order):
  1. Minimum salary: monthly gross must meet the configured floor (if any)
  2. Requested amount must not exceed max allowed
     max allowed = monthly gross x MaxFraction, rounded to 2 decimals

  Salary and requested amount must be positive and the pay frequency must be
  known; those are validation errors, reported before any rule runs.

POLICY:
  AdvancePolicy carries the configurable knobs. Defaults: 50% cap, no
  minimum salary. Passed explicitly so tests are deterministic.

WORKED EXAMPLE:
  Monthly salary 3000, requested 1800, fraction 0.5:
  max allowed = 1500, 1800 > 1500 => not eligible.

SEE ALSO:
  - types.go: PayFrequency normalization
  - errors.go: ValidationError
*/
package lending

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// POLICY CONFIGURATION
// =============================================================================

// AdvancePolicy is the configured advance policy. Zero values are not usable;
// construct via DefaultAdvancePolicy and override.
type AdvancePolicy struct {
	// MaxFraction is the maximum advance as a fraction of monthly gross
	// salary (e.g. 0.5 for 50%).
	MaxFraction decimal.Decimal

	// MinMonthlySalary is the minimum monthly gross required to qualify.
	// Zero disables the check.
	MinMonthlySalary Money
}

// DefaultAdvancePolicy returns the standard policy: 50% cap, no salary floor.
func DefaultAdvancePolicy() AdvancePolicy {
	return AdvancePolicy{
		MaxFraction:      MustMoney("0.5"),
		MinMonthlySalary: decimal.Zero,
	}
}

// =============================================================================
// INPUT / DECISION
// =============================================================================

// EligibilityInput is one advance request to evaluate.
type EligibilityInput struct {
	EmployeeID   string
	GrossSalary  Money // per pay period, before deductions
	PayFrequency PayFrequency
	Requested    Money
}

// EligibilityDecision is the full evaluation result. MaxAllowed is populated
// even when the request is rejected, so callers can tell the employee what
// they could have asked for.
type EligibilityDecision struct {
	Eligible   bool
	MaxAllowed Money

	// Per-criterion breakdown
	SalaryCheck bool // monthly gross meets the minimum
	LimitCheck  bool // requested <= max allowed

	// Human-readable reasons for each failed criterion, empty when eligible.
	FailedCriteria []string
}

// =============================================================================
// EVALUATOR
// =============================================================================

// Evaluator applies an AdvancePolicy to advance requests.
type Evaluator struct {
	Policy AdvancePolicy
}

// NewEvaluator creates an evaluator with the given policy.
func NewEvaluator(policy AdvancePolicy) *Evaluator {
	return &Evaluator{Policy: policy}
}

// Evaluate checks a single advance request against the policy.
// Returns a ValidationError for non-positive amounts; rule failures are not
// errors, they come back in the decision.
func (e *Evaluator) Evaluate(in EligibilityInput) (EligibilityDecision, error) {
	if !in.GrossSalary.IsPositive() {
		return EligibilityDecision{}, &ValidationError{Field: "gross_salary", Reason: "must be greater than 0"}
	}
	if !in.Requested.IsPositive() {
		return EligibilityDecision{}, &ValidationError{Field: "requested_advance_amount", Reason: "must be greater than 0"}
	}
	freq, err := ParsePayFrequency(string(in.PayFrequency))
	if err != nil {
		return EligibilityDecision{}, err
	}

	monthlyGross := freq.MonthlyGross(in.GrossSalary)
	maxAllowed := RoundMoney(monthlyGross.Mul(e.Policy.MaxFraction))

	decision := EligibilityDecision{
		Eligible:    true,
		MaxAllowed:  maxAllowed,
		SalaryCheck: true,
		LimitCheck:  true,
	}

	if e.Policy.MinMonthlySalary.IsPositive() && monthlyGross.LessThan(e.Policy.MinMonthlySalary) {
		decision.Eligible = false
		decision.SalaryCheck = false
		decision.FailedCriteria = append(decision.FailedCriteria,
			fmt.Sprintf("minimum salary requirement not met: required %s monthly, got %s",
				e.Policy.MinMonthlySalary.StringFixed(2), monthlyGross.StringFixed(2)))
	}

	if in.Requested.GreaterThan(maxAllowed) {
		decision.Eligible = false
		decision.LimitCheck = false
		decision.FailedCriteria = append(decision.FailedCriteria,
			fmt.Sprintf("requested amount exceeds maximum eligible advance: maximum %s, requested %s",
				maxAllowed.StringFixed(2), in.Requested.StringFixed(2)))
	}

	return decision, nil
}
