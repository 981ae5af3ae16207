// internal/workers/assistant/search-catalog/handler.go
package searchcatalog

import (
	"context"

	"product-assistant/internal/common/camunda"
	apperrors "product-assistant/internal/common/errors"
	"product-assistant/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "search-catalog"
)

type Handler struct {
	config    *Config
	engine    *Engine
	validator camunda.InputValidator
	errors    *apperrors.ErrorHandler
	logger    logger.Logger
}

func NewHandler(config *Config, engine *Engine, validator camunda.InputValidator, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:    config,
		engine:    engine,
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

// Execute only fails on nil input; catalog failures come back as an empty
// degraded result.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, apperrors.NewInvalidInputError("input cannot be nil")
	}

	collection := input.Collection
	if collection == "" {
		collection = h.config.Collection
	}

	res := h.engine.Search(ctx, collection, input.Filters.Spec())

	h.logger.Info("catalog searched", map[string]interface{}{
		"collection": collection,
		"mode":       string(res.Mode),
		"returned":   len(res.Records),
		"total":      res.Total,
	})

	return &Output{Results: res.Records, Mode: res.Mode, Total: res.Total}, nil
}
