// internal/models/customer.go
package models

// Customer is immutable reference data looked up by id; the pipeline never
// creates or mutates customers.
type Customer struct {
	CustomerID        string  `json:"customerId"`
	Name              string  `json:"name"`
	Age               int     `json:"age"`
	City              string  `json:"city"`
	Phone             string  `json:"phone"`
	Email             string  `json:"email"`
	ExistingLoan      string  `json:"existingLoan"` // "yes" / "no"
	ExistingLoanAmt   float64 `json:"existingLoanAmount"`
	CreditScore       int     `json:"creditScore"` // 0-900
	PreApprovedLimit  float64 `json:"preApprovedLimit"`
	EmploymentType    string  `json:"employmentType"`
	MonthlyNetSalary  float64 `json:"monthlyNetSalary"`
}

// CrmRecord holds the identity fields used by KYC fuzzy matching.
type CrmRecord struct {
	CustomerID string `json:"customerId"`
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	Pincode    string `json:"pincode"`
	City       string `json:"city"`
	DOB        string `json:"dob"`
}

// CreditBand is the coarse risk category derived from credit score.
type CreditBand string

const (
	CreditBandExcellent CreditBand = "excellent"
	CreditBandGood      CreditBand = "good"
	CreditBandFair      CreditBand = "fair"
	CreditBandPoor      CreditBand = "poor"
)

// BandForScore maps a 0-900 credit score onto a band.
func BandForScore(score int) CreditBand {
	switch {
	case score >= 750:
		return CreditBandExcellent
	case score >= 700:
		return CreditBandGood
	case score >= 650:
		return CreditBandFair
	default:
		return CreditBandPoor
	}
}
