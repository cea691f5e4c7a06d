// internal/workers/rules/evaluate-rules/models.go
package evaluaterules

type Input struct {
	CreditScore         *float64 `json:"creditScore,omitempty"`
	AmountVsPreApproved *float64 `json:"amountVsPreApproved,omitempty"`
	EMIIncomeRatio      *float64 `json:"emiIncomeRatio,omitempty"`
	Age                 *float64 `json:"age,omitempty"`
	EmploymentType      *string  `json:"employmentType,omitempty"`
	ExistingLoan        *string  `json:"existingLoan,omitempty"`
}

type Output struct {
	Decision string `json:"rulesDecision"`
	Reason   string `json:"rulesReason"`
}
