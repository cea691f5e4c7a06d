// internal/workers/conversation/assist-conversation/handler_test.go
package assistconversation

import (
	"context"
	"errors"
	"testing"

	"loan-workers/internal/audit"
	"loan-workers/internal/common/logger"
	"loan-workers/internal/conversation"
	"loan-workers/internal/storage"
	"loan-workers/internal/underwriting"
	"loan-workers/internal/workflow"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGenerator struct {
	text string
	err  error
}

func (s *stubGenerator) Generate(context.Context, string) (string, error) {
	return s.text, s.err
}

func newTestHandler(t *testing.T, gen *stubGenerator) *Handler {
	dir := storage.NewSeededDirectory()
	assistant := workflow.NewAssistant(
		dir,
		underwriting.NewEngine(dir, audit.NewMemorySink(), logger.NewTestLogger(t)),
		conversation.NewStore(),
		gen,
		nil,
		logger.NewTestLogger(t),
	)
	return NewHandler(LoadConfig(), assistant, logger.NewTestLogger(t))
}

func TestExecute_FallbackWhenGeneratorDown(t *testing.T) {
	h := newTestHandler(t, &stubGenerator{err: errors.New("service down")})

	out, err := h.Execute(context.Background(), &Input{
		CustomerID: "CUST001",
		Message:    "hello",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, out.Reply)
	assert.Contains(t, out.Reply, "Anita")
}

func TestExecute_UsesGeneratedText(t *testing.T) {
	h := newTestHandler(t, &stubGenerator{text: "Namaste! How can I help with your loan today?"})

	out, err := h.Execute(context.Background(), &Input{
		CustomerID: "CUST001",
		Message:    "hello",
	})

	require.NoError(t, err)
	assert.Equal(t, "Namaste! How can I help with your loan today?", out.Reply)
}

func TestExecute_EmptyMessage(t *testing.T) {
	h := newTestHandler(t, &stubGenerator{})

	_, err := h.Execute(context.Background(), &Input{CustomerID: "CUST001"})
	assert.ErrorIs(t, err, ErrEmptyMessage)
}
