package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Retry Policy
// ==========================

func TestGetRetryCount(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want int
	}{
		{ErrCodeCatalogUnavailable, 3},
		{ErrCodeRegistryUnavailable, 3},
		{ErrCodeExtractionFailed, 2},
		{ErrCodeModelTimeout, 1},
		{ErrCodeParseFailed, 0},
		{ErrCodeInvalidInput, 0},
		{ErrCodeSearchDegraded, 0},
		{ErrorCode("SOMETHING_ELSE"), 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, GetRetryCount(tt.code))
			assert.Equal(t, tt.want > 0, IsRetryableErrorCode(tt.code))
		})
	}
}

func TestConvertToBPMNError(t *testing.T) {
	stdErr := NewExtractionFailedError(fmt.Errorf("status 502"))
	bpmnErr := ConvertToBPMNError(stdErr)

	assert.Equal(t, "EXTRACTION_FAILED", bpmnErr.Code)
	assert.Equal(t, 2, bpmnErr.Retries)
	assert.True(t, bpmnErr.Retryable)

	vars := bpmnErr.ToErrorVariables()
	assert.Equal(t, "EXTRACTION_FAILED", vars["errorCode"])
	assert.Equal(t, "EXTRACTION_FAILED", vars["originalErrorCode"])
	assert.Equal(t, "status 502", vars["errorDetails"])
}

func TestConvertToBPMNError_NonRetryableHasNoRetries(t *testing.T) {
	stdErr := NewCatalogUnavailableError("redis", fmt.Errorf("dial tcp: refused"))
	stdErr.Retryable = false

	bpmnErr := ConvertToBPMNError(stdErr)
	assert.Equal(t, 0, bpmnErr.Retries)
}

// ==========================
// Normalization
// ==========================

func TestAsStandardError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"already standard", NewParseFailedError("empty"), ErrCodeParseFailed},
		{"wrapped standard", fmt.Errorf("stage: %w", NewInvalidInputError("query")), ErrCodeInvalidInput},
		{"timeout sentinel", fmt.Errorf("%w: deadline", ErrModelTimeout), ErrCodeModelTimeout},
		{"extraction sentinel", fmt.Errorf("%w: status 500", ErrExtractionFailed), ErrCodeExtractionFailed},
		{"parse sentinel", ErrParseFailed, ErrCodeParseFailed},
		{"unknown", stderrors.New("boom"), ErrCodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AsStandardError(tt.err)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Code)
		})
	}

	assert.Nil(t, AsStandardError(nil))
}

func TestStandardError_UnwrapKeepsSentinel(t *testing.T) {
	assert.ErrorIs(t, NewModelTimeoutError(60*time.Second), ErrModelTimeout)
	assert.ErrorIs(t, NewInvalidInputError("x"), ErrInvalidInput)

	cause := stderrors.New("connection reset")
	assert.ErrorIs(t, NewSearchDegradedError("fashion", cause), cause)
}

func TestStandardError_MessageCarriesCause(t *testing.T) {
	err := NewExtractionFailedError(stderrors.New("quota exceeded"))
	assert.Equal(t, "StandardError[EXTRACTION_FAILED]: Attribute extraction failed: quota exceeded", err.Error())

	assert.Contains(t, NewInvalidInputError("query must be a string").Error(), "query must be a string")

	bare := &StandardError{Code: ErrCodeInternalError, Message: "Unexpected error", cause: stderrors.New("nil map")}
	assert.Equal(t, "StandardError[INTERNAL_ERROR]: Unexpected error: nil map", bare.Error())

	assert.Equal(t, "StandardError[INTERNAL_ERROR]: Unexpected error", (&StandardError{Code: ErrCodeInternalError, Message: "Unexpected error"}).Error())
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "AI", GetErrorCategory(ErrCodeModelTimeout))
	assert.Equal(t, "AI", GetErrorCategory(ErrCodeExtractionFailed))
	assert.Equal(t, "PARSING", GetErrorCategory(ErrCodeParseFailed))
	assert.Equal(t, "SEARCH", GetErrorCategory(ErrCodeCatalogUnavailable))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeInvalidInput))
	assert.Equal(t, "INTERNAL", GetErrorCategory(ErrCodeInternalError))
}
