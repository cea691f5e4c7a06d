// internal/kyc/verifier_test.go
package kyc

import (
	"context"
	"testing"

	"loan-workers/internal/audit"
	"loan-workers/internal/common/logger"
	"loan-workers/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestVerifier(t *testing.T) (*Verifier, *audit.MemorySink) {
	t.Helper()
	sink := audit.NewMemorySink()
	return NewVerifier(storage.NewSeededDirectory(), sink, logger.NewNoOpLogger()), sink
}

func validDetails() Details {
	return Details{
		Name:    "Anita Verma",
		Phone:   "+91-9810000001",
		Address: "123 Green Park, South Delhi",
	}
}

func TestVerify(t *testing.T) {
	tests := []struct {
		name         string
		details      Details
		expectStatus Status
		mismatches   int
	}{
		{
			name:         "exact details verify",
			details:      validDetails(),
			expectStatus: StatusVerified,
		},
		{
			name: "case and spacing differences still verify",
			details: Details{
				Name:    "anita  verma",
				Phone:   "+91 98100 00001",
				Address: "green park, DELHI",
			},
			expectStatus: StatusVerified,
		},
		{
			name: "pincode alone satisfies the address check",
			details: Details{
				Name:    "Anita Verma",
				Phone:   "+919810000001",
				Address: "flat 4, 110016",
			},
			expectStatus: StatusVerified,
		},
		{
			name: "wrong name is a mismatch",
			details: Details{
				Name:    "Rahul Mehra",
				Phone:   "+91-9810000001",
				Address: "123 Green Park, South Delhi",
			},
			expectStatus: StatusPending,
			mismatches:   1,
		},
		{
			name: "every field wrong",
			details: Details{
				Name:    "Rahul Mehra",
				Phone:   "+91-9810000002",
				Address: "456 Bandra West, Mumbai",
			},
			expectStatus: StatusPending,
			mismatches:   3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verifier, _ := newTestVerifier(t)

			result, err := verifier.Verify(context.Background(), "CUST001", tt.details)
			require.NoError(t, err)
			assert.Equal(t, tt.expectStatus, result.Status)
			assert.Equal(t, tt.expectStatus == StatusVerified, result.Verified)
			assert.Len(t, result.Mismatches, tt.mismatches)
		})
	}
}

func TestVerify_NameThreshold(t *testing.T) {
	// "Anita Sharma" vs the CRM's "Anita Verma" scores between the
	// lenient and default thresholds, so only the lenient verifier accepts it.
	details := Details{
		Name:    "Anita Sharma",
		Phone:   "+91-9810000001",
		Address: "123 Green Park, South Delhi",
	}

	lenient := NewVerifierWithThreshold(storage.NewSeededDirectory(), audit.NewMemorySink(), 0.5, logger.NewNoOpLogger())
	result, err := lenient.Verify(context.Background(), "CUST001", details)
	require.NoError(t, err)
	assert.Equal(t, StatusVerified, result.Status)

	// A zero threshold falls back to the default, which rejects the same name.
	strict := NewVerifierWithThreshold(storage.NewSeededDirectory(), audit.NewMemorySink(), 0, logger.NewNoOpLogger())
	result, err = strict.Verify(context.Background(), "CUST001", details)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, result.Status)
	assert.Len(t, result.Mismatches, 1)
}

func TestVerify_MissingCrmRecord(t *testing.T) {
	verifier, _ := newTestVerifier(t)

	result, err := verifier.Verify(context.Background(), "CUST999", validDetails())
	require.NoError(t, err, "a missing CRM record is a domain outcome, not a fault")
	assert.Equal(t, StatusFailed, result.Status)
	assert.False(t, result.Verified)
	assert.Contains(t, result.Mismatches, "Customer not found in CRM")
}

func TestVerify_AppendsAudit(t *testing.T) {
	verifier, sink := newTestVerifier(t)

	_, err := verifier.Verify(context.Background(), "CUST001", validDetails())
	require.NoError(t, err)

	entries, err := sink.ForCustomer(context.Background(), "CUST001")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "KYC_VERIFICATION", entries[0].Action)
	assert.Equal(t, "All details verified", entries[0].Reason)
}
