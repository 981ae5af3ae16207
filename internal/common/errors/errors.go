// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"

	ErrCodeExtractionFailed ErrorCode = "EXTRACTION_FAILED"
	ErrCodeModelTimeout     ErrorCode = "MODEL_TIMEOUT"
	ErrCodeParseFailed      ErrorCode = "PARSE_FAILED"

	ErrCodeSearchDegraded      ErrorCode = "SEARCH_DEGRADED"
	ErrCodeCatalogUnavailable  ErrorCode = "CATALOG_UNAVAILABLE"
	ErrCodeInternalError       ErrorCode = "INTERNAL_ERROR"
	ErrCodeRegistryUnavailable ErrorCode = "REGISTRY_UNAVAILABLE"
	ErrCodeEngineUnavailable   ErrorCode = "ENGINE_UNAVAILABLE"
)

// Stage sentinels. Worker Execute methods return these (wrapped) so callers
// can branch with errors.Is without inspecting messages.
var (
	ErrExtractionFailed = stderrors.New("EXTRACTION_FAILED")
	ErrModelTimeout     = stderrors.New("MODEL_TIMEOUT")
	ErrParseFailed      = stderrors.New("PARSE_FAILED")
	ErrInvalidInput     = stderrors.New("INVALID_INPUT")
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	cause     error
}

// Error includes the details, or the cause when there are none, so callers
// that only print the error still see what failed underneath.
func (e *StandardError) Error() string {
	msg := fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
	switch {
	case e.Details != "":
		return msg + ": " + e.Details
	case e.cause != nil:
		return msg + ": " + e.cause.Error()
	}
	return msg
}

// Unwrap exposes the underlying cause so errors.Is keeps matching sentinels.
func (e *StandardError) Unwrap() error {
	return e.cause
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	for k, v := range e.ErrorVariables {
		vars[k] = v
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewInvalidInputError creates a non-retryable validation error.
func NewInvalidInputError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidInput,
		Message:   "Invalid job input",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     ErrInvalidInput,
	}
}

// NewExtractionFailedError wraps a failed model invocation.
func NewExtractionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeExtractionFailed,
		Message:   "Attribute extraction failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewModelTimeoutError is returned when the model call exceeds its deadline.
func NewModelTimeoutError(timeout time.Duration) *StandardError {
	return &StandardError{
		Code:      ErrCodeModelTimeout,
		Message:   "Model invocation timeout",
		Details:   fmt.Sprintf("model call exceeded %s", timeout),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     ErrModelTimeout,
	}
}

func NewParseFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeParseFailed,
		Message:   "Model response could not be parsed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     ErrParseFailed,
	}
}

// NewSearchDegradedError records a catalog failure that was absorbed into an
// empty result. It is logged, never thrown to the engine.
func NewSearchDegradedError(collection string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchDegraded,
		Message:   "Catalog search degraded to empty result",
		Details:   fmt.Sprintf("collection: %s, error: %s", collection, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewCatalogUnavailableError(backend string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCatalogUnavailable,
		Message:   "Catalog store unavailable",
		Details:   fmt.Sprintf("backend: %s, error: %s", backend, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewRegistryUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeRegistryUnavailable,
		Message:   "Activity registry unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewEngineError wraps a failed workflow engine command.
func NewEngineError(operation string, err error, retryable bool) *StandardError {
	return &StandardError{
		Code:      ErrCodeEngineUnavailable,
		Message:   fmt.Sprintf("Zeebe operation '%s' failed", operation),
		Details:   err.Error(),
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternalError,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to the BPMN error codes caught by
// boundary events in the assistant process.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeInvalidInput:        "INVALID_INPUT",
	ErrCodeExtractionFailed:    "EXTRACTION_FAILED",
	ErrCodeModelTimeout:        "MODEL_TIMEOUT",
	ErrCodeParseFailed:         "PARSE_FAILED",
	ErrCodeSearchDegraded:      "SEARCH_DEGRADED",
	ErrCodeCatalogUnavailable:  "CATALOG_UNAVAILABLE",
	ErrCodeRegistryUnavailable: "REGISTRY_UNAVAILABLE",
	ErrCodeEngineUnavailable:   "ENGINE_UNAVAILABLE",
	ErrCodeInternalError:       "INTERNAL_ERROR",
}

// GetRetryCount returns the recommended engine retry count for a code.
// The model itself is never retried in-process; these are job-level retries.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeCatalogUnavailable,
		ErrCodeRegistryUnavailable,
		ErrCodeEngineUnavailable:
		return 3

	case ErrCodeExtractionFailed:
		return 2

	case ErrCodeModelTimeout:
		return 1

	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "MODEL") || strings.Contains(codeStr, "EXTRACTION"):
		return "AI"
	case strings.Contains(codeStr, "PARSE"):
		return "PARSING"
	case strings.Contains(codeStr, "SEARCH") || strings.Contains(codeStr, "CATALOG"):
		return "SEARCH"
	case strings.Contains(codeStr, "INVALID"):
		return "VALIDATION"
	case strings.Contains(codeStr, "REGISTRY") || strings.Contains(codeStr, "ENGINE"):
		return "CONFIGURATION"
	default:
		return "INTERNAL"
	}
}

// AsStandardError normalizes any error into a StandardError. Known sentinels
// keep their code, everything else becomes INTERNAL_ERROR.
func AsStandardError(err error) *StandardError {
	if err == nil {
		return nil
	}
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	switch {
	case stderrors.Is(err, ErrModelTimeout):
		s := NewModelTimeoutError(0)
		s.Details = err.Error()
		return s
	case stderrors.Is(err, ErrExtractionFailed):
		return NewExtractionFailedError(err)
	case stderrors.Is(err, ErrParseFailed):
		return NewParseFailedError(err.Error())
	case stderrors.Is(err, ErrInvalidInput):
		return NewInvalidInputError(err.Error())
	}
	return NewInternalError(err)
}
