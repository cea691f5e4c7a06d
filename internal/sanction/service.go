// internal/sanction/service.go

// Package sanction issues the formal approval artifacts once underwriting
// passes: a reference number, a rendered letter and a customer
// notification.
package sanction

import (
	"context"
	"fmt"
	"time"

	"loan-workers/internal/audit"
	"loan-workers/internal/common/logger"
	"loan-workers/internal/storage"
)

// Letter carries everything the rendering collaborator needs.
type Letter struct {
	CustomerID      string
	CustomerName    string
	LoanAmount      float64
	TenureMonths    int
	AnnualRate      float64
	MonthlyEMI      float64
	ReferenceNumber string
	IssuedAt        time.Time
}

// Renderer produces the letter document. Rendering is an external concern;
// the service only needs the bytes for delivery.
type Renderer interface {
	Render(ctx context.Context, letter Letter) ([]byte, error)
}

// Notifier delivers the sanction notice to the customer.
type Notifier interface {
	NotifySanction(ctx context.Context, letter Letter, document []byte) error
}

// Issued is the result of a successful generation.
type Issued struct {
	ReferenceNumber string    `json:"referenceNumber"`
	GeneratedAt     time.Time `json:"generatedAt"`
	DocumentSize    int       `json:"documentSize"`
}

// Service generates sanction letters and records each issuance.
type Service struct {
	renderer Renderer
	notifier Notifier
	letters  storage.LetterStore
	audit    audit.Sink
	logger   logger.Logger

	now func() time.Time
}

func NewService(renderer Renderer, notifier Notifier, letters storage.LetterStore, sink audit.Sink, log logger.Logger) *Service {
	return &Service{
		renderer: renderer,
		notifier: notifier,
		letters:  letters,
		audit:    sink,
		logger:   log.WithFields(map[string]interface{}{"component": "sanction"}),
		now:      time.Now,
	}
}

// NewReferenceNumber produces the LN-prefixed reference for an issued
// letter.
func NewReferenceNumber(at time.Time) string {
	return "LN" + at.Format("20060102150405")
}

// Generate renders the letter, persists the issuance and notifies the
// customer. A notification failure does not void the issued letter.
func (s *Service) Generate(ctx context.Context, letter Letter) (*Issued, error) {
	issuedAt := s.now().UTC()
	if letter.ReferenceNumber == "" {
		letter.ReferenceNumber = NewReferenceNumber(issuedAt)
	}
	letter.IssuedAt = issuedAt

	document, err := s.renderer.Render(ctx, letter)
	if err != nil {
		return nil, fmt.Errorf("render sanction letter %s: %w", letter.ReferenceNumber, err)
	}

	if err := s.letters.SaveSanctionLetter(ctx, letter.CustomerID, letter.ReferenceNumber); err != nil {
		return nil, fmt.Errorf("persist sanction letter %s: %w", letter.ReferenceNumber, err)
	}

	if s.notifier != nil {
		if err := s.notifier.NotifySanction(ctx, letter, document); err != nil {
			s.logger.WithError(err).Warn("sanction notification failed", map[string]interface{}{
				"customer_id":      letter.CustomerID,
				"reference_number": letter.ReferenceNumber,
			})
		}
	}

	entry := audit.NewEntry(letter.CustomerID, "SANCTION_LETTER", "", "Sanction letter generated", map[string]interface{}{
		"reference_number": letter.ReferenceNumber,
		"loan_amount":      letter.LoanAmount,
		"tenure":           letter.TenureMonths,
	})
	if err := s.audit.Append(ctx, entry); err != nil {
		s.logger.WithError(err).Warn("audit append failed", map[string]interface{}{
			"customer_id": letter.CustomerID,
		})
	}

	s.logger.Info("sanction letter issued", map[string]interface{}{
		"customer_id":      letter.CustomerID,
		"reference_number": letter.ReferenceNumber,
	})

	return &Issued{
		ReferenceNumber: letter.ReferenceNumber,
		GeneratedAt:     issuedAt,
		DocumentSize:    len(document),
	}, nil
}
