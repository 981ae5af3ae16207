package productassistant

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"product-assistant/internal/common/config"
	apperrors "product-assistant/internal/common/errors"
	"product-assistant/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestHandler_Execute(t *testing.T) {
	tests := []struct {
		name     string
		input    *Input
		setup    func(*MockModel)
		wantCode apperrors.ErrorCode
		check    func(t *testing.T, out *Output)
	}{
		{
			name:  "move on",
			input: &Input{Query: "black jeans"},
			setup: func(m *MockModel) {
				m.On("Invoke", mock.Anything, mock.Anything).Return(readyResponse, nil).Once()
			},
			check: func(t *testing.T, out *Output) {
				assert.Equal(t, "Search results for your query", out.Message)
				assert.Len(t, out.Results, 1)

				data, err := json.Marshal(out)
				require.NoError(t, err)
				var body map[string]interface{}
				require.NoError(t, json.Unmarshal(data, &body))
				assert.Equal(t, "ReadyToSearch", body["state"])
				assert.Equal(t, "NA", body["attributes"].(map[string]interface{})["gender"])
			},
		},
		{
			name:  "follow up",
			input: &Input{Query: "something western"},
			setup: func(m *MockModel) {
				m.On("Invoke", mock.Anything, mock.Anything).Return(followUpResponse, nil).Once()
			},
			check: func(t *testing.T, out *Output) {
				assert.Equal(t, "What kind of western wear are you looking for?", out.Message)
				assert.Empty(t, out.Results)
			},
		},
		{
			name:  "model timeout",
			input: &Input{Query: "black jeans"},
			setup: func(m *MockModel) {
				m.On("Invoke", mock.Anything, mock.Anything).Return("", apperrors.ErrModelTimeout).Once()
			},
			wantCode: apperrors.ErrCodeModelTimeout,
		},
		{
			name:  "model failure",
			input: &Input{Query: "black jeans"},
			setup: func(m *MockModel) {
				m.On("Invoke", mock.Anything, mock.Anything).Return("", errors.New("503")).Once()
			},
			wantCode: apperrors.ErrCodeExtractionFailed,
		},
		{
			name:  "blank query goes to the model",
			input: &Input{Query: "   "},
			setup: func(m *MockModel) {
				m.On("Invoke", mock.Anything, mock.Anything).Return(followUpResponse, nil).Once()
			},
			check: func(t *testing.T, out *Output) {
				assert.Equal(t, "What kind of western wear are you looking for?", out.Message)
				assert.Empty(t, out.Results)
			},
		},
		{
			name:     "nil input",
			wantCode: apperrors.ErrCodeInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := new(MockModel)
			if tt.setup != nil {
				tt.setup(model)
			}
			h := NewHandler(DefaultConfig(), newPipeline(t, model, seededStore(t, "Black", "White")), nil, logger.NewTestLogger(t))

			out, err := h.Execute(context.Background(), tt.input)
			if tt.wantCode != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, apperrors.AsStandardError(err).Code)
				return
			}
			require.NoError(t, err)
			tt.check(t, out)
			model.AssertExpectations(t)
		})
	}
}

func TestFromAppConfig(t *testing.T) {
	cfg := &config.Config{
		APIs: config.APIsConfig{GenAI: config.GenAIConfig{Timeout: 240000}},
		Workers: map[string]config.WorkerConfig{
			TaskType: {Enabled: true, MaxJobsActive: 3, Timeout: 60000},
		},
	}

	c := FromAppConfig(cfg)
	assert.True(t, c.Enabled)
	assert.Equal(t, 3, c.MaxJobsActive)
	assert.Equal(t, 4*time.Minute, c.Timeout)
}
