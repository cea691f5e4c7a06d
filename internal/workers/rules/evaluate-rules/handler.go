// internal/workers/rules/evaluate-rules/handler.go
package evaluaterules

import (
	"context"
	"encoding/json"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	commonerrors "loan-workers/internal/common/errors"
	"loan-workers/internal/common/logger"
	"loan-workers/internal/common/metrics"
	"loan-workers/internal/rules"
)

const (
	TaskType = "evaluate-business-rules"
)

type Handler struct {
	config *Config
	engine *rules.Engine
	errs   *commonerrors.ErrorHandler
	logger logger.Logger
}

func NewHandler(config *Config, engine *rules.Engine, log logger.Logger) *Handler {
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

	output := h.execute(&input)
	h.completeJob(client, job, output)
}

func (h *Handler) execute(input *Input) *Output {
	decision, reason := h.engine.EvaluateAll(rules.Facts{
		CreditScore:         input.CreditScore,
		AmountVsPreApproved: input.AmountVsPreApproved,
		EMIIncomeRatio:      input.EMIIncomeRatio,
		Age:                 input.Age,
		EmploymentType:      input.EmploymentType,
		ExistingLoan:        input.ExistingLoan,
	})

	metrics.RuleEvaluations.WithLabelValues(string(decision)).Inc()

	h.logger.Info("rules evaluated", map[string]interface{}{
		"decision": string(decision),
	})

	return &Output{
		Decision: string(decision),
		Reason:   reason,
	}
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
func (h *Handler) Execute(input *Input) *Output {
	return h.execute(input)
}
