package extractattributes

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"product-assistant/internal/common/config"
	apperrors "product-assistant/internal/common/errors"
	"product-assistant/internal/common/genai"
	"product-assistant/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mock Model
// ==========================

type MockModel struct {
	mock.Mock
}

func (m *MockModel) Invoke(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func newTestHandler(t *testing.T, model Model) *Handler {
	return NewHandler(DefaultConfig(), model, nil, logger.NewTestLogger(t))
}

// ==========================
// Prompt Construction
// ==========================

func TestBuildPrompt_Deterministic(t *testing.T) {
	a := BuildPrompt("I need black women jeans")
	b := BuildPrompt("I need black women jeans")
	assert.Equal(t, a, b)
}

func TestBuildPrompt_EmbedsVocabulariesAndConversation(t *testing.T) {
	prompt := BuildPrompt("I need black women jeans")

	assert.Equal(t, 2, strings.Count(prompt, "I need black women jeans"))
	for _, v := range append(append(append([]string{}, Categories...), IndividualCategories...), Colours...) {
		assert.Contains(t, prompt, v)
	}
	assert.Contains(t, prompt, "Women or Men")
	assert.Contains(t, prompt, `"Other"`)
	assert.Contains(t, prompt, `"NA"`)
}

func TestBuildPrompt_OutputFormatKeys(t *testing.T) {
	prompt := BuildPrompt("x")
	for _, key := range []string{KeyCategory, KeyIndividualCategory, KeyGender, KeyColour, KeyMoveOn, KeyFollowUpMessage} {
		assert.Contains(t, prompt, "\n"+key+": ")
	}
}

func TestVocabularySizes(t *testing.T) {
	assert.Len(t, Categories, 6)
	assert.Len(t, IndividualCategories, 14)
	assert.Len(t, Genders, 2)
	assert.Len(t, Colours, 44)
}

// ==========================
// Execute
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	model := &MockModel{}
	model.On("Invoke", mock.Anything, BuildPrompt("black jeans")).
		Return("\n  Category: \"Western\"\nMOVE_ON: \"true\"  \n", nil).Once()

	out, err := newTestHandler(t, model).Execute(context.Background(), &Input{Query: "black jeans"})
	require.NoError(t, err)
	assert.Equal(t, "Category: \"Western\"\nMOVE_ON: \"true\"", out.RawResponse)
	model.AssertExpectations(t)
}

func TestHandler_Execute_ModelFailureIsNotRetried(t *testing.T) {
	cause := errors.New("quota exceeded")
	model := &MockModel{}
	model.On("Invoke", mock.Anything, mock.Anything).Return("", cause).Once()

	_, err := newTestHandler(t, model).Execute(context.Background(), &Input{Query: "x"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrExtractionFailed)
	assert.ErrorIs(t, err, cause)
	model.AssertNumberOfCalls(t, "Invoke", 1)
}

func TestHandler_Execute_NilInput(t *testing.T) {
	_, err := newTestHandler(t, &MockModel{}).Execute(context.Background(), nil)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestHandler_Execute_WithGenAIClient(t *testing.T) {
	tests := []struct {
		name      string
		handler   http.HandlerFunc
		timeoutMs int
		wantErr   error
		wantCode  apperrors.ErrorCode
	}{
		{
			name: "success",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"text":"Category: \"Western\""}`)
			},
			timeoutMs: 1000,
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			},
			timeoutMs: 1000,
			wantErr:   apperrors.ErrExtractionFailed,
			wantCode:  apperrors.ErrCodeExtractionFailed,
		},
		{
			name: "timeout",
			handler: func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-r.Context().Done():
				case <-time.After(2 * time.Second):
				}
			},
			timeoutMs: 50,
			wantErr:   apperrors.ErrModelTimeout,
			wantCode:  apperrors.ErrCodeModelTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			client := genai.NewClient(config.GenAIConfig{BaseURL: server.URL, Timeout: tt.timeoutMs})
			out, err := newTestHandler(t, client).Execute(context.Background(), &Input{Query: "black jeans"})

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, tt.wantCode, apperrors.AsStandardError(err).Code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, `Category: "Western"`, out.RawResponse)
		})
	}
}

// ==========================
// Config
// ==========================

func TestFromAppConfig(t *testing.T) {
	cfg := &config.Config{
		Workers: map[string]config.WorkerConfig{
			TaskType: {Enabled: true, MaxJobsActive: 3, Timeout: 5000},
		},
		APIs: config.APIsConfig{GenAI: config.GenAIConfig{Timeout: 30000}},
	}

	c := FromAppConfig(cfg)
	assert.True(t, c.Enabled)
	assert.Equal(t, 3, c.MaxJobsActive)
	assert.Equal(t, 30*time.Second, c.Timeout)
	assert.NoError(t, c.Validate())

	assert.Error(t, (&Config{MaxJobsActive: 1}).Validate())
}
