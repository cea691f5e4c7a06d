// internal/conversation/context_test.go
package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStageOrder(t *testing.T) {
	assert.True(t, StageGreeting.Before(StageSales))
	assert.True(t, StageSales.Before(StageKYC))
	assert.True(t, StageKYC.Before(StageUnderwriting))
	assert.True(t, StageUnderwriting.Before(StageSanction))
	assert.True(t, StageSanction.Before(StageClosed))
	assert.False(t, StageClosed.Before(StageGreeting))
}

func TestAdvanceNeverMovesBackward(t *testing.T) {
	ctx := NewContext("CUST001")
	ctx.Advance(StageUnderwriting)
	assert.Equal(t, StageUnderwriting, ctx.Stage)

	ctx.Advance(StageSales)
	assert.Equal(t, StageUnderwriting, ctx.Stage, "stages only move forward")
}

func TestNewContextStartsIdle(t *testing.T) {
	ctx := NewContext("CUST001")
	assert.Equal(t, StageGreeting, ctx.Stage)

	states := ctx.AgentStateList()
	require.Len(t, states, 5)
	for _, state := range states {
		assert.Equal(t, AgentIdle, state.Status)
	}
	// Reporting order is fixed.
	assert.Equal(t, "master", states[0].AgentType)
	assert.Equal(t, "sanction", states[4].AgentType)
}

func TestResetClearsProgressKeepsHistory(t *testing.T) {
	ctx := NewContext("CUST001")
	ctx.AddMessage("user", "hello", "user")
	ctx.AddLog("master", "receive", "Message: hello", "info")
	ctx.Advance(StageUnderwriting)
	ctx.Requirements.Amount = 300000
	ctx.KYCVerified = true
	ctx.SetAgentState("sales", AgentCompleted, "Offer prepared", 50)

	ctx.Reset()

	assert.Equal(t, StageGreeting, ctx.Stage)
	assert.Zero(t, ctx.Requirements)
	assert.False(t, ctx.KYCVerified)
	assert.Equal(t, AgentIdle, ctx.AgentStates["sales"].Status)
	assert.Zero(t, ctx.AgentStates["sales"].Progress)

	// History survives cancellation.
	assert.Len(t, ctx.Messages, 1)
	assert.Len(t, ctx.WorkflowLog, 1)
}

func TestRecentMessages(t *testing.T) {
	ctx := NewContext("CUST001")
	for i := 0; i < 8; i++ {
		ctx.AddMessage("user", "msg", "user")
	}

	assert.Len(t, ctx.RecentMessages(5), 5)
	assert.Len(t, ctx.RecentMessages(20), 8)
}

func TestStoreLazyCreation(t *testing.T) {
	store := NewStore()

	_, ok := store.Get("CUST001")
	assert.False(t, ok)

	ctx := store.GetOrCreate("CUST001")
	require.NotNil(t, ctx)

	again := store.GetOrCreate("CUST001")
	assert.Same(t, ctx, again, "one context per customer id")

	other := store.GetOrCreate("CUST002")
	assert.NotSame(t, ctx, other)
}
