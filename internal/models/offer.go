// internal/models/offer.go
package models

// LoanOffer is a pre-approved offer from the product catalog.
type LoanOffer struct {
	OfferID       string     `json:"offerId"`
	CustomerID    string     `json:"customerId"`
	CreditBand    CreditBand `json:"creditBand"`
	MaxAmount     float64    `json:"maxAmount"`
	InterestRate  float64    `json:"interestRate"` // annual, percent
	TenureMonths  int        `json:"tenure"`
	ProcessingFee float64    `json:"processingFee"`
}

// LoanProduct names a product family the assistant can select by fuzzy match.
type LoanProduct struct {
	Name         string  `json:"name"`
	MinAmount    float64 `json:"minAmount"`
	MaxAmount    float64 `json:"maxAmount"`
	InterestRate float64 `json:"interestRate"`
	MaxTenure    int     `json:"maxTenure"`
}
