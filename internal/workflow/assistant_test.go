// internal/workflow/assistant_test.go
package workflow

import (
	"context"
	"errors"
	"testing"

	"loan-workers/internal/audit"
	"loan-workers/internal/common/logger"
	"loan-workers/internal/conversation"
	"loan-workers/internal/models"
	"loan-workers/internal/storage"
	"loan-workers/internal/underwriting"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGenerator struct {
	text string
	err  error
}

func (g stubGenerator) Generate(_ context.Context, _ string) (string, error) {
	return g.text, g.err
}

func newTestAssistant(t *testing.T, generator *stubGenerator) (*Assistant, *underwriting.Engine) {
	t.Helper()
	dir := storage.NewSeededDirectory()
	sink := audit.NewMemorySink()
	log := logger.NewNoOpLogger()
	uw := underwriting.NewEngine(dir, sink, log)

	var gen stubGenerator
	if generator != nil {
		gen = *generator
	} else {
		gen = stubGenerator{err: errors.New("unavailable")}
	}
	return NewAssistant(dir, uw, conversation.NewStore(), gen, nil, log), uw
}

func TestAssistant_FallbackWhenGeneratorDown(t *testing.T) {
	assistant, _ := newTestAssistant(t, nil)

	reply, err := assistant.ProcessMessage(context.Background(), "CUST001", "hello", nil)
	require.NoError(t, err)
	assert.Contains(t, reply.Message, "Anita")
	assert.Contains(t, reply.Message, "What type of loan")
}

func TestAssistant_UsesGeneratorWhenAvailable(t *testing.T) {
	assistant, _ := newTestAssistant(t, &stubGenerator{text: "Hello from the model."})

	reply, err := assistant.ProcessMessage(context.Background(), "CUST001", "hello", nil)
	require.NoError(t, err)
	assert.Equal(t, "Hello from the model.", reply.Message)
}

func TestAssistant_RequirementAccumulation(t *testing.T) {
	assistant, _ := newTestAssistant(t, nil)
	ctx := context.Background()

	reply, err := assistant.ProcessMessage(ctx, "CUST001", "I need a personal loan", nil)
	require.NoError(t, err)
	assert.Equal(t, conversation.StageSales, reply.Stage)

	reply, err = assistant.ProcessMessage(ctx, "CUST001", "around 2 lakhs", nil)
	require.NoError(t, err)

	conv, ok := assistant.conversations.Get("CUST001")
	require.True(t, ok)
	assert.Equal(t, "Personal", conv.Requirements.LoanType)
	assert.Equal(t, float64(200000), conv.Requirements.Amount)
	assert.Equal(t, "high", conv.Requirements.Confidence)
}

func TestAssistant_ConfirmationRunsUnderwriting(t *testing.T) {
	assistant, uw := newTestAssistant(t, nil)
	ctx := context.Background()

	_, err := assistant.ProcessMessage(ctx, "CUST001", "personal loan please", nil)
	require.NoError(t, err)
	_, err = assistant.ProcessMessage(ctx, "CUST001", "1 lakh", nil)
	require.NoError(t, err)

	reply, err := assistant.ProcessMessage(ctx, "CUST001", "yes, confirm", nil)
	require.NoError(t, err)
	assert.Contains(t, reply.Message, "approved")

	conv, _ := assistant.conversations.Get("CUST001")
	require.NotNil(t, conv.UnderwritingResult)
	assert.Equal(t, models.DecisionApprove, conv.UnderwritingResult.Decision)

	// Same inputs through the shared contract give the same EMI.
	direct, err := uw.Evaluate(ctx, underwriting.Application{
		CustomerID:        "CUST001",
		LoanAmount:        100000,
		TenureMonths:      36,
		AnnualRatePercent: 12.5,
	})
	require.NoError(t, err)
	assert.Equal(t, direct.EMI, conv.UnderwritingResult.EMI)
	assert.Equal(t, direct.Decision, conv.UnderwritingResult.Decision)
}

func TestAssistant_ProductInjectionShortCircuits(t *testing.T) {
	assistant, _ := newTestAssistant(t, nil)

	product := models.LoanProduct{
		Name: "Education Loan", MinAmount: 100000, MaxAmount: 4000000,
		InterestRate: 10.5, MaxTenure: 120,
	}
	reply, err := assistant.ProcessMessage(context.Background(), "CUST001", "hello", &product)
	require.NoError(t, err)
	assert.Equal(t, conversation.StageSales, reply.Stage)

	conv, _ := assistant.conversations.Get("CUST001")
	assert.Equal(t, "Education Loan", conv.Requirements.SelectedProduct)
	assert.Equal(t, "Education", conv.Requirements.LoanType)
	assert.Equal(t, "high", conv.Requirements.Confidence)
	assert.Equal(t, float64(100000), conv.Requirements.Amount)
}

func TestAssistant_CancelResets(t *testing.T) {
	assistant, _ := newTestAssistant(t, nil)
	ctx := context.Background()

	_, err := assistant.ProcessMessage(ctx, "CUST001", "personal loan", nil)
	require.NoError(t, err)
	_, err = assistant.ProcessMessage(ctx, "CUST001", "3 lakhs", nil)
	require.NoError(t, err)

	reply, err := assistant.ProcessMessage(ctx, "CUST001", "cancel everything", nil)
	require.NoError(t, err)
	assert.Equal(t, conversation.StageGreeting, reply.Stage)

	conv, _ := assistant.conversations.Get("CUST001")
	assert.Zero(t, conv.Requirements)
}

func TestAssistant_ProductFuzzySelection(t *testing.T) {
	assistant, _ := newTestAssistant(t, nil)

	product, ok := assistant.matchProduct("I'd like a home loan for a flat")
	require.True(t, ok)
	assert.Equal(t, "Home Loan", product.Name)
}
