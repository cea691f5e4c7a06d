// internal/workers/sanction/generate-sanction-letter/handler_test.go
package sanctionletter

import (
	"context"
	"strings"
	"testing"

	"loan-workers/internal/audit"
	"loan-workers/internal/common/logger"
	"loan-workers/internal/sanction"
	"loan-workers/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T) *Handler {
	dir := storage.NewSeededDirectory()
	svc := sanction.NewService(sanction.TextRenderer{}, nil, dir, audit.NewMemorySink(), logger.NewTestLogger(t))
	return NewHandler(LoadConfig(), svc, dir, logger.NewTestLogger(t))
}

func TestExecute_GeneratesLetter(t *testing.T) {
	h := newTestHandler(t)

	out, err := h.Execute(context.Background(), &Input{
		CustomerID:   "CUST001",
		LoanAmount:   100000,
		TenureMonths: 12,
		AnnualRate:   12,
		MonthlyEMI:   8885,
	})

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out.ReferenceNumber, "LN"))
	assert.Greater(t, out.DocumentSize, 0)
	assert.False(t, out.GeneratedAt.IsZero())
}

func TestExecute_ComputesEMIWhenAbsent(t *testing.T) {
	h := newTestHandler(t)

	out, err := h.Execute(context.Background(), &Input{
		CustomerID:   "CUST001",
		LoanAmount:   100000,
		TenureMonths: 12,
		AnnualRate:   12,
	})

	require.NoError(t, err)
	assert.NotEmpty(t, out.ReferenceNumber)
}

func TestExecute_KeepsProvidedReference(t *testing.T) {
	h := newTestHandler(t)

	out, err := h.Execute(context.Background(), &Input{
		CustomerID:      "CUST001",
		LoanAmount:      100000,
		TenureMonths:    12,
		AnnualRate:      12,
		ReferenceNumber: "LN20240101120000",
	})

	require.NoError(t, err)
	assert.Equal(t, "LN20240101120000", out.ReferenceNumber)
}

func TestExecute_UnknownCustomer(t *testing.T) {
	h := newTestHandler(t)

	_, err := h.Execute(context.Background(), &Input{
		CustomerID:   "CUST999",
		LoanAmount:   100000,
		TenureMonths: 12,
	})

	assert.ErrorIs(t, err, ErrCustomerNotFound)
}

func TestExecute_InvalidTerms(t *testing.T) {
	h := newTestHandler(t)

	_, err := h.Execute(context.Background(), &Input{CustomerID: "CUST001"})
	assert.ErrorIs(t, err, ErrInvalidTerms)
}
