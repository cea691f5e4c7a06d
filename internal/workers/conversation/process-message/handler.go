// internal/workers/conversation/process-message/handler.go
package processmessage

import (
	"context"
	"encoding/json"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"loan-workers/internal/analytics"
	commonerrors "loan-workers/internal/common/errors"
	"loan-workers/internal/common/logger"
	"loan-workers/internal/workflow"
)

const (
	TaskType = "process-loan-message"
)

var (
	ErrEmptyMessage = commonerrors.NewValidationError(commonerrors.ErrCodeMessageRequired, "message is required")
)

type Handler struct {
	config *Config
	engine *workflow.Engine
	errs   *commonerrors.ErrorHandler
	logger logger.Logger
}

func NewHandler(config *Config, engine *workflow.Engine, log logger.Logger) *Handler {
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
	if input.Message == "" {
		return nil, ErrEmptyMessage
	}

	reply, err := h.engine.Process(ctx, input.CustomerID, input.Message)
	if err != nil {
		return nil, commonerrors.NewQueryExecutionFailedError("conversation_turn", err)
	}

	analytics.RecordStage(string(reply.Stage))
	analytics.RecordAgents(reply.AgentStates)

	h.logger.Info("message processed", map[string]interface{}{
		"customerId": reply.CustomerID,
		"stage":      string(reply.Stage),
		"agentType":  reply.AgentType,
		"complete":   reply.WorkflowComplete,
	})

	return &Output{
		Reply:            reply.Message,
		AgentType:        reply.AgentType,
		Stage:            string(reply.Stage),
		WorkflowComplete: reply.WorkflowComplete,
		AgentStates:      reply.AgentStates,
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
