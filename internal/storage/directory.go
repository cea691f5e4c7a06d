// internal/storage/directory.go

// Package storage provides the reference-data lookups the pipeline depends
// on: customers, CRM records and pre-approved offers. Absence is a domain
// outcome, not a fault; lookups return nil rather than an error when a
// record does not exist.
package storage

import (
	"context"
	"time"

	"loan-workers/internal/models"
)

// Directory is the read-only reference-data contract.
type Directory interface {
	GetCustomer(ctx context.Context, customerID string) (*models.Customer, error)
	GetCrmRecord(ctx context.Context, customerID string) (*models.CrmRecord, error)
	GetOffers(ctx context.Context) ([]models.LoanOffer, error)
	GetOffersByCustomer(ctx context.Context, customerID string) ([]models.LoanOffer, error)
}

// SanctionRecord tracks an issued sanction letter by reference number.
type SanctionRecord struct {
	CustomerID  string    `json:"customerId"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// LetterStore persists issued sanction letters.
type LetterStore interface {
	SaveSanctionLetter(ctx context.Context, customerID, referenceNumber string) error
	GetSanctionLetter(ctx context.Context, referenceNumber string) (*SanctionRecord, error)
}
