// internal/workers/conversation/process-message/models.go
package processmessage

import "loan-workers/internal/conversation"

type Input struct {
	CustomerID string `json:"customerId"`
	Message    string `json:"message"`
}

type Output struct {
	Reply            string                    `json:"reply"`
	AgentType        string                    `json:"agentType"`
	Stage            string                    `json:"stage"`
	WorkflowComplete bool                      `json:"workflowComplete"`
	AgentStates      []conversation.AgentState `json:"agentStates"`
}
