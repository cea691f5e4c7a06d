// internal/workers/kyc/verify-kyc/models.go
package verifykyc

type Input struct {
	CustomerID string `json:"customerId"`
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
}

type Output struct {
	Status     string   `json:"kycStatus"`
	Verified   bool     `json:"kycVerified"`
	Mismatches []string `json:"mismatches,omitempty"`
}
