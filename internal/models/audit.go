// internal/models/audit.go
package models

import "time"

// AuditLogEntry is write-once; nothing in the pipeline updates an entry after
// it has been appended.
type AuditLogEntry struct {
	ID         string                 `json:"id"`
	CustomerID string                 `json:"customerId"`
	Timestamp  time.Time              `json:"timestamp"`
	Action     string                 `json:"action"`
	Decision   string                 `json:"decision,omitempty"`
	Reason     string                 `json:"reason"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}
