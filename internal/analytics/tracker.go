// internal/analytics/tracker.go

// Package analytics keeps running counters over pipeline activity so the
// health server can report decision and agent statistics without a metrics
// backend. Prometheus counters in common/metrics stay the source of truth
// for scraping; this is the human-readable snapshot.
package analytics

import (
	"sync"

	"loan-workers/internal/conversation"
	"loan-workers/internal/models"
)

// AgentStats accumulates per-agent activity across conversations.
type AgentStats struct {
	Runs      int `json:"runs"`
	Completed int `json:"completed"`
}

// Summary is a point-in-time view of everything the tracker has seen.
type Summary struct {
	Decisions      map[string]int        `json:"decisions"`
	ApprovalRate   float64               `json:"approvalRate"`
	TotalDecisions int                   `json:"totalDecisions"`
	StageVisits    map[string]int        `json:"stageVisits"`
	Agents         map[string]AgentStats `json:"agents"`
}

type Tracker struct {
	mu        sync.Mutex
	decisions map[string]int
	stages    map[string]int
	agents    map[string]AgentStats
}

func New() *Tracker {
	return &Tracker{
		decisions: make(map[string]int),
		stages:    make(map[string]int),
		agents:    make(map[string]AgentStats),
	}
}

func (t *Tracker) RecordDecision(decision models.Decision) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.decisions[string(decision)]++
}

func (t *Tracker) RecordStage(stage string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stages[stage]++
}

// RecordAgents folds one reply's agent states into the running totals. An
// agent counts as run when it has made any progress and completed at 100.
func (t *Tracker) RecordAgents(states []conversation.AgentState) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, s := range states {
		stats := t.agents[s.AgentType]
		if s.Progress > 0 {
			stats.Runs++
		}
		if s.Progress >= 100 {
			stats.Completed++
		}
		t.agents[s.AgentType] = stats
	}
}

func (t *Tracker) Snapshot() Summary {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := Summary{
		Decisions:   make(map[string]int, len(t.decisions)),
		StageVisits: make(map[string]int, len(t.stages)),
		Agents:      make(map[string]AgentStats, len(t.agents)),
	}
	for k, v := range t.decisions {
		s.Decisions[k] = v
		s.TotalDecisions += v
	}
	for k, v := range t.stages {
		s.StageVisits[k] = v
	}
	for k, v := range t.agents {
		s.Agents[k] = v
	}

	approved := t.decisions[string(models.DecisionApprove)]
	rejected := t.decisions[string(models.DecisionReject)]
	if approved+rejected > 0 {
		s.ApprovalRate = float64(approved) / float64(approved+rejected)
	}
	return s
}

// Default is the process-wide tracker the workers feed.
var Default = New()

func RecordDecision(decision models.Decision)       { Default.RecordDecision(decision) }
func RecordStage(stage string)                      { Default.RecordStage(stage) }
func RecordAgents(states []conversation.AgentState) { Default.RecordAgents(states) }
func Snapshot() Summary                             { return Default.Snapshot() }
