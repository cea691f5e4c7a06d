// internal/audit/audit.go

// Package audit records every decision the pipeline takes as immutable,
// append-only entries keyed by customer.
package audit

import (
	"context"
	"sync"
	"time"

	"loan-workers/internal/models"

	"github.com/google/uuid"
)

// Sink receives audit entries. Append must never mutate an entry after
// write; entries are write-once.
type Sink interface {
	Append(ctx context.Context, entry models.AuditLogEntry) error
	ForCustomer(ctx context.Context, customerID string) ([]models.AuditLogEntry, error)
}

// NewEntry stamps a fresh audit entry with id and timestamp.
func NewEntry(customerID, action string, decision models.Decision, reason string, metadata map[string]interface{}) models.AuditLogEntry {
	return models.AuditLogEntry{
		ID:         uuid.New().String(),
		CustomerID: customerID,
		Timestamp:  time.Now().UTC(),
		Action:     action,
		Decision:   string(decision),
		Reason:     reason,
		Metadata:   metadata,
	}
}

// MemorySink keeps entries in process memory, in append order.
type MemorySink struct {
	mu      sync.Mutex
	entries []models.AuditLogEntry
}

func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) Append(_ context.Context, entry models.AuditLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return nil
}

func (s *MemorySink) ForCustomer(_ context.Context, customerID string) ([]models.AuditLogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.AuditLogEntry
	for _, e := range s.entries {
		if e.CustomerID == customerID {
			out = append(out, e)
		}
	}
	return out, nil
}

// All returns every entry in append order.
func (s *MemorySink) All() []models.AuditLogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.AuditLogEntry, len(s.entries))
	copy(out, s.entries)
	return out
}
