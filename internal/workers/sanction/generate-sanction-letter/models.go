// internal/workers/sanction/generate-sanction-letter/models.go
package sanctionletter

import "time"

type Input struct {
	CustomerID      string  `json:"customerId"`
	LoanAmount      float64 `json:"loanAmount"`
	TenureMonths    int     `json:"tenureMonths"`
	AnnualRate      float64 `json:"annualRate"`
	MonthlyEMI      float64 `json:"monthlyEmi,omitempty"`
	ReferenceNumber string  `json:"referenceNumber,omitempty"`
}

type Output struct {
	ReferenceNumber string    `json:"sanctionReference"`
	GeneratedAt     time.Time `json:"generatedAt"`
	DocumentSize    int       `json:"documentSize"`
}
