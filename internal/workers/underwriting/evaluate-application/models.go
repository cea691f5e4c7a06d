// internal/workers/underwriting/evaluate-application/models.go
package evaluateapplication

type Input struct {
	CustomerID   string  `json:"customerId"`
	LoanAmount   float64 `json:"loanAmount"`
	TenureMonths int     `json:"tenureMonths"`
	AnnualRate   float64 `json:"annualRate"`

	// Optional fact overrides; when nil the customer record supplies them.
	CreditScore      *int     `json:"creditScore,omitempty"`
	PreApprovedLimit *float64 `json:"preApprovedLimit,omitempty"`
	MonthlyNetSalary *float64 `json:"monthlyNetSalary,omitempty"`
}

type Output struct {
	Decision        string  `json:"decision"`
	Reason          string  `json:"reason"`
	RequiredAction  string  `json:"requiredAction,omitempty"`
	EMI             float64 `json:"emi"`
	TotalAmount     float64 `json:"totalAmount"`
	ReferenceNumber string  `json:"referenceNumber"`
}
