// internal/models/underwriting.go
package models

// Decision is the outcome of a rules or underwriting evaluation.
type Decision string

const (
	DecisionApprove Decision = "APPROVE"
	DecisionReject  Decision = "REJECT"
	DecisionPending Decision = "PENDING"
)

// UnderwritingResult is produced fresh per evaluation and never mutated.
type UnderwritingResult struct {
	Decision        Decision `json:"decision"`
	Reason          string   `json:"reason"`
	RequiredAction  string   `json:"requiredAction,omitempty"`
	EMI             float64  `json:"emi"`
	TotalAmount     float64  `json:"totalAmount"`
	ReferenceNumber string   `json:"referenceNumber"`
}
