// internal/workers/underwriting/evaluate-application/handler.go
package evaluateapplication

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"loan-workers/internal/analytics"
	commonerrors "loan-workers/internal/common/errors"
	"loan-workers/internal/common/logger"
	"loan-workers/internal/common/metrics"
	"loan-workers/internal/underwriting"
)

const (
	TaskType = "evaluate-loan-application"
)

var (
	ErrInvalidApplication = commonerrors.NewValidationError(commonerrors.ErrCodeInvalidLoanApplication, "loan application validation failed")
)

type Handler struct {
	config *Config
	engine *underwriting.Engine
	errs   *commonerrors.ErrorHandler
	logger logger.Logger
}

func NewHandler(config *Config, engine *underwriting.Engine, log logger.Logger) *Handler {
	scoped := log.With(map[string]interface{}{
		"taskType": TaskType,
	})
	return &Handler{
		config: config,
		engine: engine,
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
		return nil, fmt.Errorf("%w: customerId is required", ErrInvalidApplication)
	}
	if input.LoanAmount <= 0 {
		return nil, fmt.Errorf("%w: loanAmount must be positive", ErrInvalidApplication)
	}
	if input.TenureMonths <= 0 {
		input.TenureMonths = h.config.DefaultTenure
	}
	if input.AnnualRate <= 0 {
		input.AnnualRate = h.config.DefaultRate
	}

	result, err := h.engine.Evaluate(ctx, underwriting.Application{
		CustomerID:        input.CustomerID,
		LoanAmount:        input.LoanAmount,
		TenureMonths:      input.TenureMonths,
		AnnualRatePercent: input.AnnualRate,
		CreditScore:       input.CreditScore,
		PreApprovedLimit:  input.PreApprovedLimit,
		MonthlyNetSalary:  input.MonthlyNetSalary,
	})
	if err != nil {
		return nil, commonerrors.NewQueryExecutionFailedError("customer_lookup", err)
	}

	metrics.UnderwritingDecisions.WithLabelValues(string(result.Decision)).Inc()
	analytics.RecordDecision(result.Decision)

	h.logger.Info("application evaluated", map[string]interface{}{
		"customerId": input.CustomerID,
		"decision":   string(result.Decision),
		"emi":        result.EMI,
	})

	return &Output{
		Decision:        string(result.Decision),
		Reason:          result.Reason,
		RequiredAction:  result.RequiredAction,
		EMI:             result.EMI,
		TotalAmount:     result.TotalAmount,
		ReferenceNumber: result.ReferenceNumber,
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
