// internal/workflow/engine_test.go
package workflow

import (
	"context"
	"testing"
	"unicode/utf8"

	"loan-workers/internal/audit"
	"loan-workers/internal/common/logger"
	"loan-workers/internal/conversation"
	"loan-workers/internal/kyc"
	"loan-workers/internal/models"
	"loan-workers/internal/sanction"
	"loan-workers/internal/storage"
	"loan-workers/internal/underwriting"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T, dir storage.Directory) *Engine {
	t.Helper()
	sink := audit.NewMemorySink()
	log := logger.NewNoOpLogger()

	letters, ok := dir.(storage.LetterStore)
	if !ok {
		letters = storage.NewSeededDirectory()
	}

	return NewEngine(
		dir,
		underwriting.NewEngine(dir, sink, log),
		kyc.NewVerifier(dir, sink, log),
		sanction.NewService(sanction.TextRenderer{}, nil, letters, sink, log),
		conversation.NewStore(),
		log,
	)
}

func runFlow(t *testing.T, engine *Engine, customerID string, messages []string) []*Reply {
	t.Helper()
	replies := make([]*Reply, 0, len(messages))
	for _, msg := range messages {
		reply, err := engine.Process(context.Background(), customerID, msg)
		require.NoError(t, err)
		replies = append(replies, reply)
	}
	return replies
}

func TestProcess_HappyPathStageOrder(t *testing.T) {
	engine := newTestEngine(t, storage.NewSeededDirectory())

	replies := runFlow(t, engine, "CUST001", []string{
		"hello",    // greeting: identity resolved
		"I am 29",  // sales: age collected, asks employment
		"salaried", // sales: employment collected, asks existing loans
		"no",       // sales: complete, offer prepared
		"confirm",  // kyc: verified
		"ok",       // underwriting: approved
		"thanks",   // sanction: letter issued
	})

	stages := make([]conversation.Stage, len(replies))
	for i, r := range replies {
		stages[i] = r.Stage
	}
	assert.Equal(t, []conversation.Stage{
		conversation.StageSales,
		conversation.StageSales,
		conversation.StageSales,
		conversation.StageKYC,
		conversation.StageUnderwriting,
		conversation.StageSanction,
		conversation.StageClosed,
	}, stages, "stages advance in order without skipping kyc")

	final := replies[len(replies)-1]
	assert.True(t, final.WorkflowComplete)
	assert.Contains(t, final.Message, "Reference Number: LN")
}

func TestProcess_SalesAsksOneQuestionPerTurn(t *testing.T) {
	engine := newTestEngine(t, storage.NewSeededDirectory())

	replies := runFlow(t, engine, "CUST001", []string{"hello", "hm?"})
	assert.Contains(t, replies[1].Message, "age")

	reply, err := engine.Process(context.Background(), "CUST001", "29")
	require.NoError(t, err)
	assert.Contains(t, reply.Message, "Salaried or Self-Employed")

	reply, err = engine.Process(context.Background(), "CUST001", "salaried")
	require.NoError(t, err)
	assert.Contains(t, reply.Message, "existing loans")
}

func TestProcess_LowCreditScoreRejectsAndCloses(t *testing.T) {
	engine := newTestEngine(t, storage.NewSeededDirectory())

	// CUST006 has credit score 650.
	replies := runFlow(t, engine, "CUST006", []string{
		"hello", "38", "self employed", "no", "confirm", "ok",
	})

	final := replies[len(replies)-1]
	assert.Equal(t, conversation.StageClosed, final.Stage)
	assert.False(t, final.WorkflowComplete)
	assert.Contains(t, final.Message, "below the minimum required threshold of 700")

	// Closed is idempotent.
	again, err := engine.Process(context.Background(), "CUST006", "hello?")
	require.NoError(t, err)
	assert.Equal(t, conversation.StageClosed, again.Stage)
}

func TestProcess_UnknownCustomerStaysInGreeting(t *testing.T) {
	engine := newTestEngine(t, storage.NewSeededDirectory())

	reply, err := engine.Process(context.Background(), "CUST999", "hello")
	require.NoError(t, err)
	assert.Equal(t, conversation.StageGreeting, reply.Stage)
	assert.Contains(t, reply.Message, "Customer ID")
}

func TestProcess_CancellationResetsAndRestartWorks(t *testing.T) {
	engine := newTestEngine(t, storage.NewSeededDirectory())

	runFlow(t, engine, "CUST001", []string{"hello", "29", "salaried"})

	reply, err := engine.Process(context.Background(), "CUST001", "cancel")
	require.NoError(t, err)
	assert.Equal(t, conversation.StageGreeting, reply.Stage)
	assert.Contains(t, reply.Message, "cancelled")

	// The greeting flow runs again from scratch.
	reply, err = engine.Process(context.Background(), "CUST001", "hello")
	require.NoError(t, err)
	assert.Equal(t, conversation.StageSales, reply.Stage)
	assert.Contains(t, reply.Message, "Welcome")
}

// crmlessDirectory serves customers but has no CRM records, so every KYC
// check fails.
type crmlessDirectory struct {
	*storage.MemoryDirectory
}

func (d crmlessDirectory) GetCrmRecord(_ context.Context, _ string) (*models.CrmRecord, error) {
	return nil, nil
}

func TestProcess_KYCFailureHaltsWorkflow(t *testing.T) {
	engine := newTestEngine(t, crmlessDirectory{storage.NewSeededDirectory()})

	replies := runFlow(t, engine, "CUST001", []string{
		"hello", "29", "salaried", "no", "confirm",
	})

	final := replies[len(replies)-1]
	assert.Equal(t, conversation.StageKYC, final.Stage, "workflow halts at kyc on failure")
	assert.Contains(t, final.Message, "KYC verification failed")

	// No further progression on subsequent messages either.
	reply, err := engine.Process(context.Background(), "CUST001", "try again")
	require.NoError(t, err)
	assert.Equal(t, conversation.StageKYC, reply.Stage)
}

func TestProcess_AgentStatesReported(t *testing.T) {
	engine := newTestEngine(t, storage.NewSeededDirectory())

	replies := runFlow(t, engine, "CUST001", []string{
		"hello", "29", "salaried", "no", "confirm", "ok", "thanks",
	})

	final := replies[len(replies)-1]
	byType := map[string]conversation.AgentState{}
	for _, state := range final.AgentStates {
		byType[state.AgentType] = state
	}
	assert.Equal(t, conversation.AgentCompleted, byType["sales"].Status)
	assert.Equal(t, conversation.AgentCompleted, byType["sanction"].Status)
	assert.Equal(t, conversation.AgentCompleted, byType["master"].Status)
	assert.Equal(t, 100, byType["master"].Progress)
}

func TestProcess_AssistantSessionsIndependent(t *testing.T) {
	engine := newTestEngine(t, storage.NewSeededDirectory())
	assistant, _ := newTestAssistant(t, nil)

	// Advance the staged engine into sales for CUST001.
	runFlow(t, engine, "CUST001", []string{"hello", "I am 29"})

	// The assistant greets the same customer from scratch in its own store.
	reply, err := assistant.ProcessMessage(context.Background(), "CUST001", "hello", nil)
	require.NoError(t, err)
	assert.Contains(t, reply.Message, "What type of loan")

	// The engine's session is untouched: still mid-sales.
	next, err := engine.Process(context.Background(), "CUST001", "salaried")
	require.NoError(t, err)
	assert.Equal(t, conversation.StageSales, next.Stage)
	assert.Contains(t, next.Message, "existing loans")
}

func TestTruncate_RuneBoundaries(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 60))
	assert.Equal(t, "Message: h", truncate("Message: hello there", 10))

	// Multi-byte text truncates on rune, not byte, boundaries.
	s := "आपकी स्वीकृत राशि ₹1,50,000 है"
	cut := truncate(s, 10)
	assert.Equal(t, string([]rune(s)[:10]), cut)
	assert.True(t, utf8.ValidString(cut))

	// Over the byte cap but under the rune cap stays whole.
	assert.Equal(t, "₹₹₹₹₹", truncate("₹₹₹₹₹", 10))
}
