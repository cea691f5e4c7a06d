// internal/workers/sanction/generate-sanction-letter/handler.go
package sanctionletter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	commonerrors "loan-workers/internal/common/errors"
	"loan-workers/internal/common/logger"
	"loan-workers/internal/common/metrics"
	"loan-workers/internal/sanction"
	"loan-workers/internal/storage"
	"loan-workers/internal/underwriting"
)

const (
	TaskType = "generate-sanction-letter"
)

var (
	ErrCustomerNotFound = commonerrors.NewStandardError(commonerrors.ErrCodeCustomerNotFound, "customer not found", false)
	ErrInvalidTerms     = commonerrors.NewValidationError(commonerrors.ErrCodeInvalidSanctionTerms, "invalid sanction terms")
)

type Handler struct {
	config    *Config
	service   *sanction.Service
	directory storage.Directory
	errs      *commonerrors.ErrorHandler
	logger    logger.Logger
}

func NewHandler(config *Config, service *sanction.Service, directory storage.Directory, log logger.Logger) *Handler {
	scoped := log.With(map[string]interface{}{
		"taskType": TaskType,
	})
	return &Handler{
		config:    config,
		service:   service,
		directory: directory,
		errs:      commonerrors.NewErrorHandler(scoped),
		logger:    scoped,
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
	if input.LoanAmount <= 0 || input.TenureMonths <= 0 {
		return nil, fmt.Errorf("%w: amount and tenure must be positive", ErrInvalidTerms)
	}
	if input.AnnualRate <= 0 {
		input.AnnualRate = h.config.DefaultRate
	}

	customer, err := h.directory.GetCustomer(ctx, input.CustomerID)
	if err != nil {
		return nil, commonerrors.NewQueryExecutionFailedError("customer_lookup", err)
	}
	if customer == nil {
		return nil, fmt.Errorf("%w: %s", ErrCustomerNotFound, input.CustomerID)
	}

	emi := input.MonthlyEMI
	if emi <= 0 {
		emi = underwriting.CalculateEMI(input.LoanAmount, input.AnnualRate, input.TenureMonths)
	}

	issued, err := h.service.Generate(ctx, sanction.Letter{
		CustomerID:      input.CustomerID,
		CustomerName:    customer.Name,
		LoanAmount:      input.LoanAmount,
		TenureMonths:    input.TenureMonths,
		AnnualRate:      input.AnnualRate,
		MonthlyEMI:      emi,
		ReferenceNumber: input.ReferenceNumber,
		IssuedAt:        time.Now().UTC(),
	})
	if err != nil {
		return nil, commonerrors.NewSanctionGenerationError(err)
	}

	metrics.SanctionLettersGenerated.Inc()

	h.logger.Info("sanction letter generated", map[string]interface{}{
		"customerId": input.CustomerID,
		"reference":  issued.ReferenceNumber,
	})

	return &Output{
		ReferenceNumber: issued.ReferenceNumber,
		GeneratedAt:     issued.GeneratedAt,
		DocumentSize:    issued.DocumentSize,
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
