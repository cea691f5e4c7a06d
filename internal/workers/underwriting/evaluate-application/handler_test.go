// internal/workers/underwriting/evaluate-application/handler_test.go
package evaluateapplication

import (
	"context"
	"testing"

	"loan-workers/internal/audit"
	commonerrors "loan-workers/internal/common/errors"
	"loan-workers/internal/common/logger"
	"loan-workers/internal/storage"
	"loan-workers/internal/underwriting"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T) *Handler {
	engine := underwriting.NewEngine(storage.NewSeededDirectory(), audit.NewMemorySink(), logger.NewTestLogger(t))
	return NewHandler(LoadConfig(), engine, logger.NewTestLogger(t))
}

func TestExecute_WithinLimitApproves(t *testing.T) {
	h := newTestHandler(t)

	out, err := h.Execute(context.Background(), &Input{
		CustomerID:   "CUST001",
		LoanAmount:   100000,
		TenureMonths: 12,
		AnnualRate:   12,
	})

	require.NoError(t, err)
	assert.Equal(t, "APPROVE", out.Decision)
	assert.Equal(t, float64(8885), out.EMI)
	assert.Contains(t, out.Reason, "pre-approved limit")
	assert.NotEmpty(t, out.ReferenceNumber)
}

func TestExecute_LowCreditScoreRejects(t *testing.T) {
	h := newTestHandler(t)

	out, err := h.Execute(context.Background(), &Input{
		CustomerID:   "CUST006",
		LoanAmount:   100000,
		TenureMonths: 12,
		AnnualRate:   12,
	})

	require.NoError(t, err)
	assert.Equal(t, "REJECT", out.Decision)
	assert.Contains(t, out.Reason, "700")
}

func TestExecute_DefaultsTenureAndRate(t *testing.T) {
	h := newTestHandler(t)

	out, err := h.Execute(context.Background(), &Input{
		CustomerID: "CUST001",
		LoanAmount: 100000,
	})

	require.NoError(t, err)
	// 100000 at 12.5% over 36 months
	assert.Equal(t, float64(3345), out.EMI)
}

func TestExecute_FactOverrides(t *testing.T) {
	h := newTestHandler(t)

	lowScore := 600
	out, err := h.Execute(context.Background(), &Input{
		CustomerID:   "CUST001",
		LoanAmount:   100000,
		TenureMonths: 12,
		AnnualRate:   12,
		CreditScore:  &lowScore,
	})

	require.NoError(t, err)
	assert.Equal(t, "REJECT", out.Decision)
}

func TestExecute_ValidationErrors(t *testing.T) {
	h := newTestHandler(t)

	tests := []struct {
		name  string
		input *Input
	}{
		{name: "missing customer id", input: &Input{LoanAmount: 100000}},
		{name: "non-positive amount", input: &Input{CustomerID: "CUST001"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.Execute(context.Background(), tt.input)
			assert.ErrorIs(t, err, ErrInvalidApplication)

			// The failure path reads the taxonomy off the error chain.
			var stdErr *commonerrors.StandardError
			require.ErrorAs(t, err, &stdErr)
			assert.Equal(t, commonerrors.ErrCodeInvalidLoanApplication, stdErr.Code)
			assert.False(t, stdErr.Retryable)
		})
	}
}

func TestExecute_UnknownCustomerRejectsAsOutcome(t *testing.T) {
	h := newTestHandler(t)

	out, err := h.Execute(context.Background(), &Input{
		CustomerID:   "CUST999",
		LoanAmount:   100000,
		TenureMonths: 12,
		AnnualRate:   12,
	})

	require.NoError(t, err)
	assert.Equal(t, "REJECT", out.Decision)
	assert.Contains(t, out.Reason, "Customer not found")
}
