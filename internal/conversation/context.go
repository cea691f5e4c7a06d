// internal/conversation/context.go

// Package conversation holds per-customer dialogue state: message history,
// workflow stage, accumulated requirements, agent states and the workflow
// log trail. State lives for the process lifetime only.
package conversation

import (
	"time"

	"loan-workers/internal/models"

	"github.com/google/uuid"
)

// Stage is the workflow position of a conversation. Stages only move
// forward along the fixed order below; cancellation resets to greeting.
type Stage string

const (
	StageGreeting     Stage = "greeting"
	StageSales        Stage = "sales"
	StageKYC          Stage = "kyc"
	StageUnderwriting Stage = "underwriting"
	StageSanction     Stage = "sanction"
	StageClosed       Stage = "closed"
)

var stageRank = map[Stage]int{
	StageGreeting:     0,
	StageSales:        1,
	StageKYC:          2,
	StageUnderwriting: 3,
	StageSanction:     4,
	StageClosed:       5,
}

// Before reports whether s precedes other in the stage order.
func (s Stage) Before(other Stage) bool {
	return stageRank[s] < stageRank[other]
}

// AgentStatus is the lifecycle state of one logical sub-agent.
type AgentStatus string

const (
	AgentIdle      AgentStatus = "idle"
	AgentActive    AgentStatus = "active"
	AgentCompleted AgentStatus = "completed"
	AgentError     AgentStatus = "error"
)

// AgentState tracks one sub-agent's progress through the workflow.
type AgentState struct {
	AgentType  string      `json:"agentType"`
	Status     AgentStatus `json:"status"`
	LastAction string      `json:"lastAction"`
	Progress   int         `json:"progress"` // 0-100
}

// agentTypes is the fixed set of sub-agents, in reporting order.
var agentTypes = []string{"master", "sales", "verification", "underwriting", "sanction"}

// Message is one turn in the dialogue.
type Message struct {
	Role      string    `json:"role"` // "user" or "agent"
	Content   string    `json:"content"`
	Agent     string    `json:"agent,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// LogEntry is one append-only workflow log record.
type LogEntry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	AgentType string    `json:"agentType"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
	Level     string    `json:"level"` // info, success, warning, error
}

// Requirements accumulates what the customer has told us so far.
type Requirements struct {
	LoanType        string  `json:"loanType,omitempty"`
	Amount          float64 `json:"amount,omitempty"`
	TenureMonths    int     `json:"tenure,omitempty"`
	Purpose         string  `json:"purpose,omitempty"`
	SelectedProduct string  `json:"selectedProduct,omitempty"`
	Confidence      string  `json:"confidence,omitempty"` // low, medium, high
}

// Profile carries the identity and financial facts collected during the
// conversation. Pointer fields distinguish "not yet collected" from zero.
type Profile struct {
	Name           string
	Email          string
	Phone          string
	MonthlyIncome  float64
	MonthlyEMI     float64
	Age            *int
	EmploymentType string
	ExistingLoans  string // "yes" / "no", empty until collected
}

// Offer is the negotiated loan the conversation settles on.
type Offer struct {
	Name         string  `json:"name"`
	Amount       float64 `json:"amount"`
	Rate         float64 `json:"rate"`
	TenureMonths int     `json:"tenure"`
}

// Context is the complete state of one customer's conversation. It is not
// safe for concurrent mutation; callers serialize per customer id.
type Context struct {
	CustomerID   string
	Messages     []Message
	WorkflowLog  []LogEntry
	AgentStates  map[string]*AgentState
	Stage        Stage
	Requirements Requirements
	Profile      Profile

	Offer              *Offer
	KYCVerified        bool
	UnderwritingResult *models.UnderwritingResult
	SanctionReference  string
	WorkflowComplete   bool
}

// NewContext creates the initial state for a customer, all agents idle.
func NewContext(customerID string) *Context {
	ctx := &Context{
		CustomerID:  customerID,
		Stage:       StageGreeting,
		AgentStates: make(map[string]*AgentState, len(agentTypes)),
	}
	for _, at := range agentTypes {
		ctx.AgentStates[at] = &AgentState{AgentType: at, Status: AgentIdle}
	}
	return ctx
}

// AddMessage appends one dialogue turn.
func (c *Context) AddMessage(role, content, agent string) {
	c.Messages = append(c.Messages, Message{
		Role:      role,
		Content:   content,
		Agent:     agent,
		Timestamp: time.Now().UTC(),
	})
}

// AddLog appends one workflow log record.
func (c *Context) AddLog(agentType, action, details, level string) {
	c.WorkflowLog = append(c.WorkflowLog, LogEntry{
		ID:        uuid.New().String(),
		Timestamp: time.Now().UTC(),
		AgentType: agentType,
		Action:    action,
		Details:   details,
		Level:     level,
	})
}

// SetAgentState updates one sub-agent's status record.
func (c *Context) SetAgentState(agentType string, status AgentStatus, lastAction string, progress int) {
	state, ok := c.AgentStates[agentType]
	if !ok {
		state = &AgentState{AgentType: agentType}
		c.AgentStates[agentType] = state
	}
	state.Status = status
	state.LastAction = lastAction
	state.Progress = progress
}

// AgentStateList returns agent states in fixed reporting order.
func (c *Context) AgentStateList() []AgentState {
	out := make([]AgentState, 0, len(c.AgentStates))
	for _, at := range agentTypes {
		if state, ok := c.AgentStates[at]; ok {
			out = append(out, *state)
		}
	}
	return out
}

// Advance moves the conversation forward to the given stage. Moving
// backward is ignored; only Reset goes back.
func (c *Context) Advance(to Stage) {
	if c.Stage.Before(to) {
		c.Stage = to
	}
}

// Reset is the cancellation path: back to greeting with requirements and
// progress cleared. Message history and the workflow log are retained.
func (c *Context) Reset() {
	c.Stage = StageGreeting
	c.Requirements = Requirements{}
	c.Profile = Profile{}
	c.Offer = nil
	c.KYCVerified = false
	c.UnderwritingResult = nil
	c.SanctionReference = ""
	c.WorkflowComplete = false
	for _, state := range c.AgentStates {
		state.Status = AgentIdle
		state.LastAction = ""
		state.Progress = 0
	}
}

// RecentMessages returns up to n most recent turns, oldest first.
func (c *Context) RecentMessages(n int) []Message {
	if len(c.Messages) <= n {
		return c.Messages
	}
	return c.Messages[len(c.Messages)-n:]
}
