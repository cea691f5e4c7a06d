// internal/analytics/tracker_test.go
package analytics

import (
	"testing"

	"loan-workers/internal/conversation"
	"loan-workers/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestSnapshot_ApprovalRate(t *testing.T) {
	tr := New()

	tr.RecordDecision(models.DecisionApprove)
	tr.RecordDecision(models.DecisionApprove)
	tr.RecordDecision(models.DecisionApprove)
	tr.RecordDecision(models.DecisionReject)
	tr.RecordDecision(models.DecisionPending)

	s := tr.Snapshot()
	assert.Equal(t, 5, s.TotalDecisions)
	assert.Equal(t, 3, s.Decisions["APPROVE"])
	assert.InDelta(t, 0.75, s.ApprovalRate, 0.001)
}

func TestSnapshot_EmptyTracker(t *testing.T) {
	s := New().Snapshot()

	assert.Zero(t, s.TotalDecisions)
	assert.Zero(t, s.ApprovalRate)
	assert.Empty(t, s.Decisions)
	assert.Empty(t, s.Agents)
}

func TestRecordAgents(t *testing.T) {
	tr := New()

	tr.RecordAgents([]conversation.AgentState{
		{AgentType: "sales", Progress: 100},
		{AgentType: "verification", Progress: 40},
		{AgentType: "underwriting", Progress: 0},
	})
	tr.RecordAgents([]conversation.AgentState{
		{AgentType: "sales", Progress: 100},
	})

	s := tr.Snapshot()
	assert.Equal(t, AgentStats{Runs: 2, Completed: 2}, s.Agents["sales"])
	assert.Equal(t, AgentStats{Runs: 1, Completed: 0}, s.Agents["verification"])
	assert.Equal(t, AgentStats{Runs: 0, Completed: 0}, s.Agents["underwriting"])
}

func TestRecordStage(t *testing.T) {
	tr := New()

	tr.RecordStage("sales")
	tr.RecordStage("sales")
	tr.RecordStage("kyc")

	s := tr.Snapshot()
	assert.Equal(t, 2, s.StageVisits["sales"])
	assert.Equal(t, 1, s.StageVisits["kyc"])
}

func TestSnapshot_IsACopy(t *testing.T) {
	tr := New()
	tr.RecordDecision(models.DecisionApprove)

	s := tr.Snapshot()
	s.Decisions["APPROVE"] = 99

	assert.Equal(t, 1, tr.Snapshot().Decisions["APPROVE"])
}
