package camunda

import (
	"context"
	"encoding/json"
	"fmt"

	apperrors "product-assistant/internal/common/errors"
	"product-assistant/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

// InputValidator checks decoded job variables for a task type.
type InputValidator interface {
	ValidateInput(taskType string, data interface{}) error
}

// DecodeVariables validates the job variables against the task type's schema
// (when a validator is given) and unmarshals them into dst. Failures are
// INVALID_INPUT errors.
func DecodeVariables(job entities.Job, taskType string, validator InputValidator, dst interface{}) error {
	raw := []byte(job.Variables)
	if len(raw) == 0 {
		raw = []byte("{}")
	}

	if validator != nil {
		var vars map[string]interface{}
		if err := json.Unmarshal(raw, &vars); err != nil {
			return apperrors.NewInvalidInputError(fmt.Sprintf("parse variables: %v", err))
		}
		if err := validator.ValidateInput(taskType, vars); err != nil {
			return apperrors.NewInvalidInputError(err.Error())
		}
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		return apperrors.NewInvalidInputError(fmt.Sprintf("parse variables: %v", err))
	}
	return nil
}

// CompleteJob completes job with output as its variables. Transient gateway
// errors are retried within ctx.
func CompleteJob(ctx context.Context, client worker.JobClient, job entities.Job, taskType string, output interface{}) error {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		return fmt.Errorf("create complete job command: %w", err)
	}
	if _, err := withRetry(ctx, DefaultRetryConfig, "complete job", cmd.Send); err != nil {
		return err
	}
	metrics.WorkerJobsCompleted.WithLabelValues(taskType).Inc()
	return nil
}

// FailJob routes err through the shared error handler and counts it.
func FailJob(ctx context.Context, handler *apperrors.ErrorHandler, client worker.JobClient, job entities.Job, taskType string, err error) {
	stdErr := apperrors.AsStandardError(err)
	metrics.WorkerJobsFailed.WithLabelValues(taskType, string(stdErr.Code)).Inc()
	handler.HandleJobError(ctx, client, job, stdErr)
}
