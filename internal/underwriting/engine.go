// internal/underwriting/engine.go

// Package underwriting implements EMI computation and the tiered loan
// approval policy. The policy is a fixed, ordered set of tiers; the first
// tier that applies decides the application.
package underwriting

import (
	"context"
	"fmt"
	"math"
	"time"

	"loan-workers/internal/audit"
	"loan-workers/internal/common/logger"
	"loan-workers/internal/models"
	"loan-workers/internal/similarity"
	"loan-workers/internal/storage"
)

// Application is one loan request to evaluate. Credit score, limit and
// salary default to the customer record when left nil.
type Application struct {
	CustomerID        string
	LoanAmount        float64
	TenureMonths      int
	AnnualRatePercent float64

	CreditScore      *int
	PreApprovedLimit *float64
	MonthlyNetSalary *float64
}

// Policy holds the tier thresholds. Deployments tune these through the
// lending config section.
type Policy struct {
	MinCreditScore    int
	StretchMultiplier float64
	MaxEMIRatio       float64
}

// DefaultPolicy returns the documented underwriting tiers.
func DefaultPolicy() Policy {
	return Policy{
		MinCreditScore:    700,
		StretchMultiplier: 2.0,
		MaxEMIRatio:       0.5,
	}
}

// Engine evaluates applications against the tiered policy and records
// every decision in the audit trail.
type Engine struct {
	directory storage.Directory
	audit     audit.Sink
	policy    Policy
	logger    logger.Logger
}

func NewEngine(directory storage.Directory, sink audit.Sink, log logger.Logger) *Engine {
	return NewEngineWithPolicy(directory, sink, DefaultPolicy(), log)
}

func NewEngineWithPolicy(directory storage.Directory, sink audit.Sink, policy Policy, log logger.Logger) *Engine {
	return &Engine{
		directory: directory,
		audit:     sink,
		policy:    policy,
		logger:    log.WithFields(map[string]interface{}{"component": "underwriting"}),
	}
}

// CalculateEMI computes the monthly installment using the standard
// amortization formula, rounded to the nearest whole currency unit.
// A zero rate degenerates to straight-line principal/tenure.
func CalculateEMI(principal, annualRatePercent float64, tenureMonths int) float64 {
	monthlyRate := annualRatePercent / 12 / 100
	if monthlyRate == 0 {
		return principal / float64(tenureMonths)
	}

	compound := math.Pow(1+monthlyRate, float64(tenureMonths))
	return math.Round(principal * monthlyRate * compound / (compound - 1))
}

// ApplicationScore blends normalized credit, income and limit-coverage
// factors into a single [0,1] risk score. Advisory only; the tiered policy
// alone decides the outcome so decisions stay auditable.
func ApplicationScore(creditScore int, monthlyNetSalary, preApprovedLimit, loanAmount float64) float64 {
	normCredit := math.Min(float64(creditScore)/900, 1.0)
	normSalary := math.Min(monthlyNetSalary/200000, 1.0)
	normCoverage := 1.0
	if loanAmount > 0 {
		normCoverage = math.Min(preApprovedLimit/loanAmount, 1.0)
	}

	return similarity.WeightedScore(
		map[string]float64{
			"credit_score":  normCredit,
			"income":        normSalary,
			"loan_to_value": normCoverage,
		},
		map[string]float64{
			"credit_score":  0.5,
			"income":        0.3,
			"loan_to_value": 0.2,
		},
	)
}

// facts is the resolved input a tier decides on.
type facts struct {
	creditScore      int
	preApprovedLimit float64
	monthlyNetSalary float64
	loanAmount       float64
	emi              float64
}

// outcome is what a tier produces when it applies.
type outcome struct {
	decision       models.Decision
	reason         string
	requiredAction string
	evidence       string
}

// tier is one policy band. applies reports whether this tier decides the
// application; decide is only called when it does.
type tier interface {
	applies(f facts) bool
	decide(f facts) outcome
}

type (
	creditFloor  struct{ min int }
	withinLimit  struct{}
	stretchLimit struct {
		multiplier float64
		maxRatio   float64
	}
	overLimit struct{ multiplier float64 }
)

func (t creditFloor) applies(f facts) bool { return f.creditScore < t.min }

func (t creditFloor) decide(f facts) outcome {
	return outcome{
		decision:       models.DecisionReject,
		reason:         fmt.Sprintf("Credit score (%d) is below the minimum required threshold of %d.", f.creditScore, t.min),
		requiredAction: "Please improve your credit score and reapply.",
		evidence:       fmt.Sprintf("Credit score %d below threshold of %d", f.creditScore, t.min),
	}
}

func (withinLimit) applies(f facts) bool { return f.loanAmount <= f.preApprovedLimit }

func (withinLimit) decide(f facts) outcome {
	return outcome{
		decision:       models.DecisionApprove,
		reason:         fmt.Sprintf("Loan amount (₹%s) is within your pre-approved limit (₹%s).", formatINR(f.loanAmount), formatINR(f.preApprovedLimit)),
		requiredAction: "Your loan has been approved. Please proceed to sanction letter generation.",
		evidence:       fmt.Sprintf("Amount ₹%s within pre-approved limit ₹%s", formatINR(f.loanAmount), formatINR(f.preApprovedLimit)),
	}
}

func (t stretchLimit) applies(f facts) bool {
	return f.loanAmount <= t.multiplier*f.preApprovedLimit
}

func (t stretchLimit) decide(f facts) outcome {
	emiPercentage := f.emi / f.monthlyNetSalary * 100
	maxPercentage := t.maxRatio * 100

	if f.emi <= f.monthlyNetSalary*t.maxRatio {
		return outcome{
			decision:       models.DecisionApprove,
			reason:         fmt.Sprintf("After salary verification, your EMI (₹%s) is %.1f%% of your monthly net salary, which is within acceptable limits.", formatINR(f.emi), emiPercentage),
			requiredAction: "Your loan has been approved. Please proceed to sanction letter generation.",
			evidence:       fmt.Sprintf("EMI ₹%s (%.1f%%) within %.0f%% salary threshold", formatINR(f.emi), emiPercentage, maxPercentage),
		}
	}
	return outcome{
		decision:       models.DecisionReject,
		reason:         fmt.Sprintf("EMI (₹%s) would be %.1f%% of your monthly net salary, exceeding the acceptable limit of %.0f%%.", formatINR(f.emi), emiPercentage, maxPercentage),
		requiredAction: "Consider a lower loan amount or longer tenure to reduce EMI.",
		evidence:       fmt.Sprintf("EMI ₹%s (%.1f%%) exceeds %.0f%% salary threshold", formatINR(f.emi), emiPercentage, maxPercentage),
	}
}

func (overLimit) applies(facts) bool { return true }

func (t overLimit) decide(f facts) outcome {
	maxEligible := t.multiplier * f.preApprovedLimit
	return outcome{
		decision:       models.DecisionReject,
		reason:         fmt.Sprintf("Requested amount (₹%s) exceeds the maximum eligible limit of ₹%s.", formatINR(f.loanAmount), formatINR(maxEligible)),
		requiredAction: fmt.Sprintf("Maximum eligible amount: ₹%s", formatINR(maxEligible)),
		evidence:       fmt.Sprintf("Amount ₹%s exceeds %gx pre-approved limit (₹%s)", formatINR(f.loanAmount), t.multiplier, formatINR(maxEligible)),
	}
}

// policyTiers is the fixed evaluation order; first applicable tier wins.
// overLimit is the catch-all and must stay last.
func policyTiers(p Policy) []tier {
	return []tier{
		creditFloor{min: p.MinCreditScore},
		withinLimit{},
		stretchLimit{multiplier: p.StretchMultiplier, maxRatio: p.MaxEMIRatio},
		overLimit{multiplier: p.StretchMultiplier},
	}
}

// Evaluate runs the application through the tiered policy. A missing
// customer is a rejected application, not an error.
func (e *Engine) Evaluate(ctx context.Context, app Application) (*models.UnderwritingResult, error) {
	customer, err := e.directory.GetCustomer(ctx, app.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("lookup customer %s: %w", app.CustomerID, err)
	}
	if customer == nil && app.CreditScore == nil {
		return &models.UnderwritingResult{
			Decision:       models.DecisionReject,
			Reason:         "Customer not found",
			RequiredAction: "Please register as a customer first",
		}, nil
	}

	f := facts{loanAmount: app.LoanAmount}
	if customer != nil {
		f.creditScore = customer.CreditScore
		f.preApprovedLimit = customer.PreApprovedLimit
		f.monthlyNetSalary = customer.MonthlyNetSalary
	}
	if app.CreditScore != nil {
		f.creditScore = *app.CreditScore
	}
	if app.PreApprovedLimit != nil {
		f.preApprovedLimit = *app.PreApprovedLimit
	}
	if app.MonthlyNetSalary != nil {
		f.monthlyNetSalary = *app.MonthlyNetSalary
	}

	referenceNumber := fmt.Sprintf("UW%d", time.Now().Unix())
	f.emi = CalculateEMI(app.LoanAmount, app.AnnualRatePercent, app.TenureMonths)
	totalAmount := f.emi * float64(app.TenureMonths)

	score := ApplicationScore(f.creditScore, f.monthlyNetSalary, f.preApprovedLimit, f.loanAmount)
	e.appendAudit(ctx, app.CustomerID, "SCORING", "",
		fmt.Sprintf("Calculated weighted score: %.2f", score),
		map[string]interface{}{
			"score":        score,
			"credit_score": f.creditScore,
			"loan_amount":  f.loanAmount,
		})
	e.logger.Info("application scored", map[string]interface{}{
		"customer_id": app.CustomerID,
		"score":       score,
		"emi":         f.emi,
	})

	var decided outcome
	for _, t := range policyTiers(e.policy) {
		if t.applies(f) {
			decided = t.decide(f)
			break
		}
	}

	e.appendAudit(ctx, app.CustomerID, "UNDERWRITING", decided.decision, decided.evidence,
		map[string]interface{}{
			"emi":              f.emi,
			"total_amount":     totalAmount,
			"reference_number": referenceNumber,
		})

	return &models.UnderwritingResult{
		Decision:        decided.decision,
		Reason:          decided.reason,
		RequiredAction:  decided.requiredAction,
		EMI:             f.emi,
		TotalAmount:     totalAmount,
		ReferenceNumber: referenceNumber,
	}, nil
}

func (e *Engine) appendAudit(ctx context.Context, customerID, action string, decision models.Decision, reason string, metadata map[string]interface{}) {
	entry := audit.NewEntry(customerID, action, decision, reason, metadata)
	if err := e.audit.Append(ctx, entry); err != nil {
		e.logger.WithError(err).Warn("audit append failed", map[string]interface{}{
			"customer_id": customerID,
			"action":      action,
		})
	}
}

// formatINR renders an amount with thousands separators and no decimals.
func formatINR(amount float64) string {
	n := int64(math.Round(amount))
	negative := n < 0
	if negative {
		n = -n
	}

	s := fmt.Sprintf("%d", n)
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	if negative {
		return "-" + s
	}
	return s
}
