// internal/workers/rules/manage-business-rules/handler.go
package managerules

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	commonerrors "loan-workers/internal/common/errors"
	"loan-workers/internal/common/logger"
	"loan-workers/internal/models"
	"loan-workers/internal/rules"
)

const (
	TaskType = "manage-business-rules"
)

var (
	ErrInvalidRule    = commonerrors.NewValidationError(commonerrors.ErrCodeInvalidRulePayload, "invalid rule payload")
	ErrUnknownAction  = commonerrors.NewValidationError(commonerrors.ErrCodeUnknownRuleAction, "unknown rule action")
	ErrRuleNotFound   = commonerrors.NewValidationError(commonerrors.ErrCodeRuleNotFound, "rule not found")
	ErrMissingName    = commonerrors.NewValidationError(commonerrors.ErrCodeRuleNameRequired, "ruleName is required")
	ErrMissingPayload = commonerrors.NewValidationError(commonerrors.ErrCodeRulePayloadRequired, "rule payload is required")
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
	switch strings.ToLower(input.Action) {
	case "add":
		if input.Rule == nil {
			return nil, ErrMissingPayload
		}
		rule, err := rules.RuleFromPayload(input.Rule)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRule, err)
		}
		h.engine.AddRule(ctx, rule)
		h.logger.Info("rule added", map[string]interface{}{"rule": rule.Name})

	case "remove":
		if input.RuleName == "" {
			return nil, ErrMissingName
		}
		if !h.engine.RemoveRule(ctx, input.RuleName) {
			return nil, fmt.Errorf("%w: %s", ErrRuleNotFound, input.RuleName)
		}
		h.logger.Info("rule removed", map[string]interface{}{"rule": input.RuleName})

	case "update":
		if input.RuleName == "" {
			return nil, ErrMissingName
		}
		if input.Update == nil {
			return nil, ErrMissingPayload
		}
		update, err := toRuleUpdate(input.Update)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRule, err)
		}
		if !h.engine.UpdateRule(ctx, input.RuleName, update) {
			return nil, fmt.Errorf("%w: %s", ErrRuleNotFound, input.RuleName)
		}
		h.logger.Info("rule updated", map[string]interface{}{"rule": input.RuleName})

	case "list":
		// Fall through to the shared listing below.

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, input.Action)
	}

	return &Output{OK: true, Rules: h.engine.Rules()}, nil
}

func toRuleUpdate(in *RuleUpdate) (rules.RuleUpdate, error) {
	var update rules.RuleUpdate

	if in.Operator != nil {
		op := rules.Operator(*in.Operator)
		update.Operator = &op
	}
	if in.Threshold != nil {
		raw, err := json.Marshal(in.Threshold)
		if err != nil {
			return update, fmt.Errorf("encode threshold: %w", err)
		}
		var threshold rules.Threshold
		if err := json.Unmarshal(raw, &threshold); err != nil {
			return update, err
		}
		update.Threshold = &threshold
	}
	if in.Action != nil {
		decision := models.Decision(*in.Action)
		if decision != models.DecisionApprove && decision != models.DecisionReject {
			return update, fmt.Errorf("action must be APPROVE or REJECT")
		}
		update.Action = &decision
	}
	update.Priority = in.Priority
	update.Enabled = in.Enabled

	return update, nil
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
