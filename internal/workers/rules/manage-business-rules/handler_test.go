// internal/workers/rules/manage-business-rules/handler_test.go
package managerules

import (
	"context"
	"testing"

	"loan-workers/internal/common/logger"
	"loan-workers/internal/rules"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T) *Handler {
	engine, err := rules.NewEngine(context.Background(), rules.NewMemoryStore(), logger.NewTestLogger(t))
	require.NoError(t, err)
	return NewHandler(LoadConfig(), engine, logger.NewTestLogger(t))
}

func ruleNames(out *Output) []string {
	names := make([]string, 0, len(out.Rules))
	for _, r := range out.Rules {
		names = append(names, r.Name)
	}
	return names
}

func TestExecute_ListReturnsDefaults(t *testing.T) {
	h := newTestHandler(t)

	out, err := h.Execute(context.Background(), &Input{Action: "list"})

	require.NoError(t, err)
	assert.True(t, out.OK)
	assert.Contains(t, ruleNames(out), "Min Credit Score")
}

func TestExecute_AddRule(t *testing.T) {
	h := newTestHandler(t)

	out, err := h.Execute(context.Background(), &Input{
		Action: "add",
		Rule: map[string]interface{}{
			"name":      "Salaried Only",
			"ruleType":  "employment_type",
			"operator":  "in",
			"threshold": []string{"Salaried"},
			"action":    "APPROVE",
			"priority":  50,
		},
	})

	require.NoError(t, err)
	assert.Contains(t, ruleNames(out), "Salaried Only")
}

func TestExecute_AddRejectsInvalidPayload(t *testing.T) {
	h := newTestHandler(t)

	_, err := h.Execute(context.Background(), &Input{
		Action: "add",
		Rule: map[string]interface{}{
			"name":     "Broken",
			"ruleType": "not_a_fact",
		},
	})

	assert.ErrorIs(t, err, ErrInvalidRule)
}

func TestExecute_RemoveRule(t *testing.T) {
	h := newTestHandler(t)

	out, err := h.Execute(context.Background(), &Input{
		Action:   "remove",
		RuleName: "Min Credit Score",
	})

	require.NoError(t, err)
	assert.NotContains(t, ruleNames(out), "Min Credit Score")
}

func TestExecute_RemoveUnknownRule(t *testing.T) {
	h := newTestHandler(t)

	_, err := h.Execute(context.Background(), &Input{
		Action:   "remove",
		RuleName: "No Such Rule",
	})

	assert.ErrorIs(t, err, ErrRuleNotFound)
}

func TestExecute_UpdateRuleThreshold(t *testing.T) {
	h := newTestHandler(t)

	enabled := false
	out, err := h.Execute(context.Background(), &Input{
		Action:   "update",
		RuleName: "Min Credit Score",
		Update:   &RuleUpdate{Threshold: 650, Enabled: &enabled},
	})

	require.NoError(t, err)
	for _, r := range out.Rules {
		if r.Name == "Min Credit Score" {
			assert.False(t, r.Enabled)
		}
	}
}

func TestExecute_UnknownAction(t *testing.T) {
	h := newTestHandler(t)

	_, err := h.Execute(context.Background(), &Input{Action: "purge"})
	assert.ErrorIs(t, err, ErrUnknownAction)
}
