// internal/kyc/verifier.go

// Package kyc verifies customer identity against the CRM record using
// deterministic string heuristics. This is a matching layer, not a real
// identity check.
package kyc

import (
	"context"
	"fmt"
	"strings"

	"loan-workers/internal/audit"
	"loan-workers/internal/common/logger"
	"loan-workers/internal/models"
	"loan-workers/internal/similarity"
	"loan-workers/internal/storage"
)

// Status is the outcome of a verification attempt.
type Status string

const (
	StatusVerified Status = "VERIFIED"
	StatusPending  Status = "PENDING"
	StatusFailed   Status = "FAILED"
)

// Details are the identity fields supplied by the customer.
type Details struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// Result reports the verification outcome and every field that did not
// match the CRM record.
type Result struct {
	Status     Status   `json:"status"`
	Verified   bool     `json:"verified"`
	Mismatches []string `json:"mismatches,omitempty"`
}

// defaultNameThreshold is the shared-character ratio a name comparison
// must clear when it is neither equal nor a containment.
const defaultNameThreshold = 0.8

// Verifier checks supplied identity details against CRM reference data.
type Verifier struct {
	directory     storage.Directory
	audit         audit.Sink
	nameThreshold float64
	logger        logger.Logger
}

func NewVerifier(directory storage.Directory, sink audit.Sink, log logger.Logger) *Verifier {
	return NewVerifierWithThreshold(directory, sink, defaultNameThreshold, log)
}

// NewVerifierWithThreshold tunes the name-match strictness; deployments
// set it through the lending KYC config. Zero falls back to the default.
func NewVerifierWithThreshold(directory storage.Directory, sink audit.Sink, nameThreshold float64, log logger.Logger) *Verifier {
	if nameThreshold <= 0 {
		nameThreshold = defaultNameThreshold
	}
	return &Verifier{
		directory:     directory,
		audit:         sink,
		nameThreshold: nameThreshold,
		logger:        log.WithFields(map[string]interface{}{"component": "kyc"}),
	}
}

// Verify matches name, phone and address against the CRM record. All three
// must pass. A missing CRM record is a failed verification, not an error.
func (v *Verifier) Verify(ctx context.Context, customerID string, details Details) (*Result, error) {
	crm, err := v.directory.GetCrmRecord(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("lookup crm record %s: %w", customerID, err)
	}
	if crm == nil {
		return &Result{
			Status:     StatusFailed,
			Mismatches: []string{"Customer not found in CRM"},
		}, nil
	}

	var mismatches []string

	if !similarity.FuzzyMatchThreshold(details.Name, crm.Name, v.nameThreshold) {
		mismatches = append(mismatches,
			fmt.Sprintf("Name mismatch: provided %q, expected %q", details.Name, crm.Name))
	}

	if normalizePhone(details.Phone) != normalizePhone(crm.Phone) {
		mismatches = append(mismatches,
			fmt.Sprintf("Phone mismatch: provided %q", details.Phone))
	}

	if !addressMatches(details.Address, crm) {
		mismatches = append(mismatches,
			fmt.Sprintf("Address must include city (%s) or pincode (%s)", crm.City, crm.Pincode))
	}

	status := StatusVerified
	reason := "All details verified"
	if len(mismatches) > 0 {
		status = StatusPending
		reason = fmt.Sprintf("Mismatches found: %d", len(mismatches))
	}

	entry := audit.NewEntry(customerID, "KYC_VERIFICATION", "", reason, map[string]interface{}{
		"mismatches":       mismatches,
		"provided_name":    details.Name,
		"provided_phone":   details.Phone,
		"provided_address": details.Address,
	})
	if err := v.audit.Append(ctx, entry); err != nil {
		v.logger.WithError(err).Warn("audit append failed", map[string]interface{}{
			"customer_id": customerID,
		})
	}

	v.logger.Info("kyc verification complete", map[string]interface{}{
		"customer_id": customerID,
		"status":      string(status),
		"mismatches":  len(mismatches),
	})

	return &Result{
		Status:     status,
		Verified:   status == StatusVerified,
		Mismatches: mismatches,
	}, nil
}

// normalizePhone strips spaces and dashes; the country-code prefix stays
// significant.
func normalizePhone(phone string) string {
	phone = strings.ReplaceAll(phone, " ", "")
	return strings.ReplaceAll(phone, "-", "")
}

func addressMatches(address string, crm *models.CrmRecord) bool {
	lower := strings.ToLower(address)
	return strings.Contains(lower, strings.ToLower(crm.City)) ||
		strings.Contains(lower, crm.Pincode)
}
