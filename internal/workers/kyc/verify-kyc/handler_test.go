// internal/workers/kyc/verify-kyc/handler_test.go
package verifykyc

import (
	"context"
	"testing"

	"loan-workers/internal/audit"
	"loan-workers/internal/common/logger"
	"loan-workers/internal/kyc"
	"loan-workers/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T) *Handler {
	verifier := kyc.NewVerifier(storage.NewSeededDirectory(), audit.NewMemorySink(), logger.NewTestLogger(t))
	return NewHandler(LoadConfig(), verifier, logger.NewTestLogger(t))
}

func TestExecute_ExactDetailsVerify(t *testing.T) {
	h := newTestHandler(t)

	out, err := h.Execute(context.Background(), &Input{
		CustomerID: "CUST001",
		Name:       "Anita Verma",
		Phone:      "+91-9810000001",
		Address:    "Green Park, Delhi 110016",
	})

	require.NoError(t, err)
	assert.Equal(t, "VERIFIED", out.Status)
	assert.True(t, out.Verified)
	assert.Empty(t, out.Mismatches)
}

func TestExecute_MismatchesReturnPending(t *testing.T) {
	h := newTestHandler(t)

	out, err := h.Execute(context.Background(), &Input{
		CustomerID: "CUST001",
		Name:       "Sunita Sharma",
		Phone:      "+91-9810000001",
		Address:    "Green Park, Delhi 110016",
	})

	require.NoError(t, err)
	assert.Equal(t, "PENDING", out.Status)
	assert.False(t, out.Verified)
	assert.Len(t, out.Mismatches, 1)
}

func TestExecute_UnknownCustomerFails(t *testing.T) {
	h := newTestHandler(t)

	out, err := h.Execute(context.Background(), &Input{
		CustomerID: "CUST999",
		Name:       "Nobody",
		Phone:      "000",
		Address:    "Nowhere",
	})

	require.NoError(t, err)
	assert.Equal(t, "FAILED", out.Status)
	assert.False(t, out.Verified)
	assert.Contains(t, out.Mismatches, "Customer not found in CRM")
}

func TestExecute_MissingCustomerID(t *testing.T) {
	h := newTestHandler(t)

	_, err := h.Execute(context.Background(), &Input{Name: "Anita Verma"})
	assert.ErrorIs(t, err, ErrMissingCustomerID)
}
