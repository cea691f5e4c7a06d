// internal/workers/kyc/verify-kyc/handler.go
package verifykyc

import (
	"context"
	"encoding/json"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	commonerrors "loan-workers/internal/common/errors"
	"loan-workers/internal/common/logger"
	"loan-workers/internal/common/metrics"
	"loan-workers/internal/kyc"
)

const (
	TaskType = "verify-kyc"
)

var (
	ErrMissingCustomerID = commonerrors.NewValidationError(commonerrors.ErrCodeCustomerIDRequired, "customerId is required")
)

type Handler struct {
	config   *Config
	verifier *kyc.Verifier
	errs     *commonerrors.ErrorHandler
	logger   logger.Logger
}

func NewHandler(config *Config, verifier *kyc.Verifier, log logger.Logger) *Handler {
	scoped := log.With(map[string]interface{}{
		"taskType": TaskType,
	})
	return &Handler{
		config:   config,
		verifier: verifier,
		errs:     commonerrors.NewErrorHandler(scoped),
		logger:   scoped,
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

	result, err := h.verifier.Verify(ctx, input.CustomerID, kyc.Details{
		Name:    input.Name,
		Phone:   input.Phone,
		Address: input.Address,
	})
	if err != nil {
		return nil, commonerrors.NewQueryExecutionFailedError("crm_lookup", err)
	}

	metrics.KycVerifications.WithLabelValues(string(result.Status)).Inc()

	h.logger.Info("kyc verification completed", map[string]interface{}{
		"customerId": input.CustomerID,
		"status":     string(result.Status),
		"mismatches": len(result.Mismatches),
	})

	return &Output{
		Status:     string(result.Status),
		Verified:   result.Verified,
		Mismatches: result.Mismatches,
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
