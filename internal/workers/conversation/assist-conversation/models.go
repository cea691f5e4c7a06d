// internal/workers/conversation/assist-conversation/models.go
package assistconversation

import "loan-workers/internal/models"

type Input struct {
	CustomerID string              `json:"customerId"`
	Message    string              `json:"message"`
	Product    *models.LoanProduct `json:"product,omitempty"`
}

type Output struct {
	Reply            string `json:"reply"`
	AgentType        string `json:"agentType"`
	Stage            string `json:"stage"`
	WorkflowComplete bool   `json:"workflowComplete"`
}
