// internal/workers/assistant/extract-attributes/handler.go
package extractattributes

import (
	"context"
	"fmt"
	"strings"

	"product-assistant/internal/common/camunda"
	apperrors "product-assistant/internal/common/errors"
	"product-assistant/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "extract-attributes"
)

// Model is the text-generation capability: one prompt in, one text out.
type Model interface {
	Invoke(ctx context.Context, prompt string) (string, error)
}

type Handler struct {
	config    *Config
	model     Model
	validator camunda.InputValidator
	errors    *apperrors.ErrorHandler
	logger    logger.Logger
}

func NewHandler(config *Config, model Model, validator camunda.InputValidator, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:    config,
		model:     model,
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

	raw, err := Extract(ctx, h.model, input.Query)
	if err != nil {
		h.logger.Error("model invocation failed", map[string]interface{}{"error": err})
		return nil, err
	}

	h.logger.Debug("extractor response", map[string]interface{}{"response": raw})
	return &Output{RawResponse: raw}, nil
}

// Extract renders the prompt for conversation and invokes model exactly once.
// Invocation errors are returned wrapped in ErrExtractionFailed with the
// original error still reachable through errors.Is.
func Extract(ctx context.Context, model Model, conversation string) (string, error) {
	raw, err := model.Invoke(ctx, BuildPrompt(conversation))
	if err != nil {
		return "", fmt.Errorf("%w: %w", apperrors.ErrExtractionFailed, err)
	}
	return strings.TrimSpace(raw), nil
}
