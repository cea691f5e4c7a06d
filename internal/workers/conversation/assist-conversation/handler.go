// internal/workers/conversation/assist-conversation/handler.go
package assistconversation

import (
	"context"
	"encoding/json"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	commonerrors "loan-workers/internal/common/errors"
	"loan-workers/internal/common/logger"
	"loan-workers/internal/workflow"
)

const (
	TaskType = "assist-loan-conversation"
)

var (
	ErrEmptyMessage = commonerrors.NewValidationError(commonerrors.ErrCodeMessageRequired, "message is required")
)

type Handler struct {
	config    *Config
	assistant *workflow.Assistant
	errs      *commonerrors.ErrorHandler
	logger    logger.Logger
}

func NewHandler(config *Config, assistant *workflow.Assistant, log logger.Logger) *Handler {
	scoped := log.With(map[string]interface{}{
		"taskType": TaskType,
	})
	return &Handler{
		config:    config,
		assistant: assistant,
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
	if input.Message == "" {
		return nil, ErrEmptyMessage
	}

	reply, err := h.assistant.ProcessMessage(ctx, input.CustomerID, input.Message, input.Product)
	if err != nil {
		return nil, commonerrors.NewQueryExecutionFailedError("conversation_turn", err)
	}

	h.logger.Info("message processed", map[string]interface{}{
		"customerId": reply.CustomerID,
		"stage":      string(reply.Stage),
		"agentType":  reply.AgentType,
	})

	return &Output{
		Reply:            reply.Message,
		AgentType:        reply.AgentType,
		Stage:            string(reply.Stage),
		WorkflowComplete: reply.WorkflowComplete,
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
