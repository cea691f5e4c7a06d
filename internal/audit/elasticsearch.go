// internal/audit/elasticsearch.go
package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"loan-workers/internal/common/database"
	"loan-workers/internal/common/logger"
	"loan-workers/internal/models"
)

const auditIndex = "loan-audit"

// ElasticsearchSink indexes audit entries for search and reporting. Index
// failures are logged and swallowed so a down cluster never blocks a loan
// decision; the in-memory trail stays the source of truth for the session.
type ElasticsearchSink struct {
	es     *database.ElasticsearchClient
	logger logger.Logger
}

func NewElasticsearchSink(es *database.ElasticsearchClient, log logger.Logger) *ElasticsearchSink {
	return &ElasticsearchSink{
		es:     es,
		logger: log.WithFields(map[string]interface{}{"component": "audit-es"}),
	}
}

func (s *ElasticsearchSink) Append(ctx context.Context, entry models.AuditLogEntry) error {
	body, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode audit entry: %w", err)
	}

	res, err := s.es.Client.Index(
		auditIndex,
		bytes.NewReader(body),
		s.es.Client.Index.WithDocumentID(entry.ID),
		s.es.Client.Index.WithContext(ctx),
	)
	if err != nil {
		s.logger.WithError(err).Warn("audit index write failed", map[string]interface{}{
			"customer_id": entry.CustomerID,
			"action":      entry.Action,
		})
		return nil
	}
	defer res.Body.Close()

	if res.IsError() {
		s.logger.Warn("audit index write rejected", map[string]interface{}{
			"customer_id": entry.CustomerID,
			"status":      res.Status(),
		})
	}
	return nil
}

func (s *ElasticsearchSink) ForCustomer(ctx context.Context, customerID string) ([]models.AuditLogEntry, error) {
	query := fmt.Sprintf(`{
		"query": {"term": {"customerId": %q}},
		"sort": [{"timestamp": {"order": "asc"}}],
		"size": 1000
	}`, customerID)

	res, err := s.es.Client.Search(
		s.es.Client.Search.WithContext(ctx),
		s.es.Client.Search.WithIndex(auditIndex),
		s.es.Client.Search.WithBody(strings.NewReader(query)),
	)
	if err != nil {
		return nil, fmt.Errorf("audit search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("audit search error: %s", res.Status())
	}

	var payload struct {
		Hits struct {
			Hits []struct {
				Source models.AuditLogEntry `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode audit search: %w", err)
	}

	out := make([]models.AuditLogEntry, 0, len(payload.Hits.Hits))
	for _, hit := range payload.Hits.Hits {
		out = append(out, hit.Source)
	}
	return out, nil
}
