// internal/workers/audit/fetch-audit-trail/models.go
package fetchaudittrail

import "loan-workers/internal/models"

type Input struct {
	CustomerID string `json:"customerId"`

	// Action filters entries to one action, e.g. "underwriting.decision".
	Action string `json:"action,omitempty"`

	// Limit caps the returned entries; zero means the worker default.
	Limit int `json:"limit,omitempty"`
}

type Output struct {
	Entries []models.AuditLogEntry `json:"auditEntries"`
	Total   int                    `json:"auditTotal"`
}
