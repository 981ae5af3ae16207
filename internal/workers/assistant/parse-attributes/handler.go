// internal/workers/assistant/parse-attributes/handler.go
package parseattributes

import (
	"context"
	"encoding/json"
	"fmt"

	"product-assistant/internal/common/camunda"
	apperrors "product-assistant/internal/common/errors"
	"product-assistant/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "parse-attributes"
)

type Handler struct {
	config    *Config
	validator camunda.InputValidator
	errors    *apperrors.ErrorHandler
	logger    logger.Logger
}

func NewHandler(config *Config, validator camunda.InputValidator, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:    config,
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

func (h *Handler) Execute(_ context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, apperrors.NewInvalidInputError("input cannot be nil")
	}

	var text string
	if err := json.Unmarshal(input.RawResponse, &text); err != nil {
		return nil, apperrors.NewParseFailedError(fmt.Sprintf("rawResponse is not text: %s", string(input.RawResponse)))
	}

	attrs, err := Parse(text)
	if err != nil {
		return nil, err
	}

	h.logger.Debug("parsed model response", attrs.LogFields())
	return &Output{Attributes: attrs, MoveOn: attrs.MoveOn}, nil
}
