// internal/common/genai/client.go

// Package genai is the thin client for the external text-generation
// service. The pipeline only consumes text completion; every caller must
// handle the fallback path, because the service is allowed to be down.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"loan-workers/internal/common/logger"
)

var (
	ErrTimeout     = errors.New("GENAI_TIMEOUT")
	ErrUnavailable = errors.New("GENAI_UNAVAILABLE")
)

// TextGenerator is the capability the workflow depends on. Implementations
// must return an error rather than blocking past the context deadline.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type Config struct {
	BaseURL     string
	Timeout     time.Duration
	MaxRetries  int
	MaxTokens   int
	Temperature float64
}

// Client talks to the generation endpoint with retry and exponential
// backoff. The HTTP client carries no timeout of its own; the context
// deadline governs.
type Client struct {
	config Config
	client *http.Client
	logger logger.Logger
}

func NewClient(config Config, log logger.Logger) *Client {
	return &Client{
		config: config,
		client: &http.Client{},
		logger: log.WithFields(map[string]interface{}{"component": "genai"}),
	}
}

func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	requestBody := map[string]interface{}{
		"prompt":      prompt,
		"max_tokens":  c.config.MaxTokens,
		"temperature": c.config.Temperature,
	}
	body, _ := json.Marshal(requestBody)

	var resp *http.Response
	var lastErr error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", ErrTimeout
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/api/ai/generate", bytes.NewReader(body))
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, lastErr = c.client.Do(req)
		if lastErr == nil {
			if resp.StatusCode == http.StatusOK {
				break
			}
			resp.Body.Close()
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			resp = nil
		}

		if ctx.Err() != nil {
			return "", ErrTimeout
		}
	}

	if lastErr != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", ErrTimeout
		}
		return "", fmt.Errorf("%w: %v", ErrUnavailable, lastErr)
	}
	if resp == nil {
		return "", fmt.Errorf("%w: no successful response after retries", ErrUnavailable)
	}
	defer resp.Body.Close()

	var apiResponse struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return "", fmt.Errorf("%w: decode error: %v", ErrUnavailable, err)
	}

	text := strings.TrimSpace(apiResponse.Text)
	if text == "" {
		return "", fmt.Errorf("%w: empty completion", ErrUnavailable)
	}

	c.logger.Debug("completion received", map[string]interface{}{
		"prompt_len": len(prompt),
		"text_len":   len(text),
	})
	return text, nil
}
