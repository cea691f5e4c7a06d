// internal/workers/audit/fetch-audit-trail/handler_test.go
package fetchaudittrail

import (
	"context"
	"testing"

	"loan-workers/internal/audit"
	"loan-workers/internal/common/logger"
	"loan-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T) (*Handler, *audit.MemorySink) {
	sink := audit.NewMemorySink()
	return NewHandler(LoadConfig(), sink, logger.NewTestLogger(t)), sink
}

func seedEntries(t *testing.T, sink *audit.MemorySink) {
	t.Helper()
	ctx := context.Background()

	entries := []models.AuditLogEntry{
		audit.NewEntry("CUST001", "kyc.verification", models.DecisionApprove, "All details verified", nil),
		audit.NewEntry("CUST001", "underwriting.decision", models.DecisionApprove, "Within pre-approved limit", nil),
		audit.NewEntry("CUST001", "sanction.issued", models.DecisionApprove, "Letter generated", nil),
		audit.NewEntry("CUST006", "underwriting.decision", models.DecisionReject, "Credit score below 700", nil),
	}
	for _, e := range entries {
		require.NoError(t, sink.Append(ctx, e))
	}
}

func TestExecute_ReturnsCustomerTrail(t *testing.T) {
	h, sink := newTestHandler(t)
	seedEntries(t, sink)

	out, err := h.Execute(context.Background(), &Input{CustomerID: "CUST001"})

	require.NoError(t, err)
	assert.Equal(t, 3, out.Total)
	require.Len(t, out.Entries, 3)
	for _, e := range out.Entries {
		assert.Equal(t, "CUST001", e.CustomerID)
	}
}

func TestExecute_FiltersByAction(t *testing.T) {
	h, sink := newTestHandler(t)
	seedEntries(t, sink)

	out, err := h.Execute(context.Background(), &Input{
		CustomerID: "CUST001",
		Action:     "underwriting.decision",
	})

	require.NoError(t, err)
	assert.Equal(t, 1, out.Total)
	require.Len(t, out.Entries, 1)
	assert.Equal(t, "underwriting.decision", out.Entries[0].Action)
	assert.Equal(t, "Within pre-approved limit", out.Entries[0].Reason)
}

func TestExecute_LimitCapsEntries(t *testing.T) {
	h, sink := newTestHandler(t)
	seedEntries(t, sink)

	out, err := h.Execute(context.Background(), &Input{CustomerID: "CUST001", Limit: 2})

	require.NoError(t, err)
	assert.Equal(t, 3, out.Total)
	assert.Len(t, out.Entries, 2)
}

func TestExecute_NoEntriesForUnknownCustomer(t *testing.T) {
	h, sink := newTestHandler(t)
	seedEntries(t, sink)

	out, err := h.Execute(context.Background(), &Input{CustomerID: "CUST999"})

	require.NoError(t, err)
	assert.Zero(t, out.Total)
	assert.Empty(t, out.Entries)
}

func TestExecute_MissingCustomerID(t *testing.T) {
	h, _ := newTestHandler(t)

	_, err := h.Execute(context.Background(), &Input{})
	assert.ErrorIs(t, err, ErrMissingCustomerID)
}
