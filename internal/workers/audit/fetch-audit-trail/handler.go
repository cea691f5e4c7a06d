// internal/workers/audit/fetch-audit-trail/handler.go
package fetchaudittrail

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"loan-workers/internal/audit"
	commonerrors "loan-workers/internal/common/errors"
	"loan-workers/internal/common/logger"
)

const (
	TaskType = "fetch-audit-trail"
)

var (
	ErrMissingCustomerID = commonerrors.NewValidationError(commonerrors.ErrCodeCustomerIDRequired, "customerId is required")
	ErrAuditQueryFailed  = commonerrors.NewStandardError(commonerrors.ErrCodeAuditQueryFailed, "audit trail query failed", true)
)

type Handler struct {
	config *Config
	sink   audit.Sink
	errs   *commonerrors.ErrorHandler
	logger logger.Logger
}

func NewHandler(config *Config, sink audit.Sink, log logger.Logger) *Handler {
	scoped := log.With(map[string]interface{}{
		"taskType": TaskType,
	})
	return &Handler{
		config: config,
		sink:   sink,
		errs:   commonerrors.NewErrorHandler(scoped),
		logger: scoped,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.errs.HandleJobError(context.Background(), client, job,
			commonerrors.NewValidationError(commonerrors.ErrCodeInvalidJobVariables, "parse input: "+err.Error()))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.errs.HandleJobError(context.Background(), client, job, err)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.CustomerID == "" {
		return nil, ErrMissingCustomerID
	}

	entries, err := h.sink.ForCustomer(ctx, input.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuditQueryFailed, err)
	}

	if input.Action != "" {
		filtered := entries[:0]
		for _, e := range entries {
			if e.Action == input.Action {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}

	total := len(entries)
	limit := input.Limit
	if limit <= 0 || limit > h.config.MaxEntries {
		limit = h.config.MaxEntries
	}
	if len(entries) > limit {
		entries = entries[:limit]
	}

	h.logger.Info("audit trail fetched", map[string]interface{}{
		"customerId": input.CustomerID,
		"total":      total,
		"returned":   len(entries),
	})

	return &Output{
		Entries: entries,
		Total:   total,
	}, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)

	if err != nil {
		h.logger.Error("Failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}

	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("Failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
	}
}

// Execute method for direct usage
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
