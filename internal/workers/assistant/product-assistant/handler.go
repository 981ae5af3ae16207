// internal/workers/assistant/product-assistant/handler.go
package productassistant

import (
	"context"

	"product-assistant/internal/common/camunda"
	apperrors "product-assistant/internal/common/errors"
	"product-assistant/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "product-assistant"
)

type Handler struct {
	config    *Config
	pipeline  *Pipeline
	validator camunda.InputValidator
	errors    *apperrors.ErrorHandler
	logger    logger.Logger
}

func NewHandler(config *Config, pipeline *Pipeline, validator camunda.InputValidator, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:    config,
		pipeline:  pipeline,
		validator: validator,
		errors:    apperrors.NewErrorHandler(l),
		logger:    l,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := camunda.DecodeVariables(job, TaskType, h.validator, &input); err != nil {
		camunda.FailJob(ctx, h.errors, client, job, TaskType, err)
		return
	}

	output, err := h.Execute(ctx, &input)
	if err != nil {
		camunda.FailJob(ctx, h.errors, client, job, TaskType, err)
		return
	}

	if err := camunda.CompleteJob(ctx, client, job, TaskType, output); err != nil {
		h.logger.Error("failed to complete job", map[string]interface{}{"jobKey": job.Key, "error": err})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, apperrors.NewInvalidInputError("input cannot be nil")
	}

	reply, err := h.pipeline.Run(ctx, input.Query)
	if err != nil {
		return nil, err
	}

	h.logger.Info("assistant request completed", map[string]interface{}{
		"state":   string(reply.State),
		"results": len(reply.Results),
	})

	return &Output{
		Results:    reply.Results,
		Message:    reply.Message,
		State:      reply.State,
		Mode:       reply.Mode,
		Attributes: reply.Attributes,
	}, nil
}
