// Package genai is the client for the text-generation endpoint used by the
// attribute extractor.
package genai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"product-assistant/internal/common/config"
	apperrors "product-assistant/internal/common/errors"
	commonhttp "product-assistant/internal/common/http"
)

const generatePath = "/api/ai/generate"

var (
	ErrModelTimeout     = apperrors.ErrModelTimeout
	ErrInvocationFailed = errors.New("MODEL_INVOCATION_FAILED")
)

// Client invokes the model once per call. It never retries.
type Client struct {
	baseURL     string
	model       string
	maxTokens   int
	temperature float64
	timeout     time.Duration
	http        *commonhttp.Client
}

func NewClient(cfg config.GenAIConfig) *Client {
	// deadline comes from the request context only
	httpClient := commonhttp.NewClient(0)
	if cfg.APIKey != "" {
		httpClient.WithHeader("Authorization", "Bearer "+cfg.APIKey)
	}

	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		timeout:     time.Duration(cfg.Timeout) * time.Millisecond,
		http:        httpClient,
	}
}

type generateRequest struct {
	Prompt      string  `json:"prompt"`
	Model       string  `json:"model,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
	Temperature float64 `json:"temperature"`
}

type generateResponse struct {
	Text json.RawMessage `json:"text"`
}

// Invoke sends prompt to the model and returns its trimmed text output.
func (c *Client) Invoke(ctx context.Context, prompt string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req := generateRequest{
		Prompt:      prompt,
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	}

	var resp generateResponse
	if err := c.http.PostJSON(ctx, c.baseURL+generatePath, req, &resp); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: %v", ErrModelTimeout, err)
		}
		return "", fmt.Errorf("%w: %v", ErrInvocationFailed, err)
	}

	return strings.TrimSpace(stringify(resp.Text)), nil
}

// stringify returns JSON strings unquoted and any other JSON value verbatim.
func stringify(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
