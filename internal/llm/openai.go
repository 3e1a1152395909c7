package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/VanshArora01/anay/internal/config"
)

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// openAIClient talks to any OpenAI-compatible chat-completions endpoint
// (OpenAI, Groq, local proxies). Only rate-limit responses are retried;
// everything else fails immediately.
type openAIClient struct {
	apiKey      string
	baseURL     string
	model       string
	maxTokens   int
	temperature float64
	httpClient  *http.Client
}

func newOpenAIClient(cfg *config.Config) (*openAIClient, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.Provider.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	model := cfg.Assistant.Model
	if model == "" {
		return nil, fmt.Errorf("no model configured")
	}
	return &openAIClient{
		apiKey:      cfg.Provider.APIKey,
		baseURL:     baseURL,
		model:       model,
		maxTokens:   cfg.Assistant.MaxTokens,
		temperature: cfg.Assistant.Temperature,
		httpClient:  &http.Client{Timeout: 60 * time.Second},
	}, nil
}

// rateLimitError marks an HTTP 429 so the retry policy can tell it apart
// from failures that should not be retried.
type rateLimitError struct {
	body string
}

func (e *rateLimitError) Error() string {
	return fmt.Sprintf("rate limited (429): %s", e.body)
}

func (c *openAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	op := func() (string, error) {
		text, err := c.send(ctx, prompt)
		if err != nil {
			if _, ok := err.(*rateLimitError); ok {
				return "", err
			}
			return "", backoff.Permanent(err)
		}
		return text, nil
	}

	return backoff.Retry(ctx, op,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(3))
}

func (c *openAIClient) send(ctx context.Context, prompt string) (string, error) {
	body := map[string]any{
		"model": c.model,
		"messages": []map[string]string{{
			"role":    "user",
			"content": prompt,
		}},
		"temperature": c.temperature,
	}
	if c.maxTokens > 0 {
		body["max_tokens"] = c.maxTokens
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", &rateLimitError{body: strings.TrimSpace(string(respBody))}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("generator http %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var decoded struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return "", fmt.Errorf("empty choices in response")
	}
	content := strings.TrimSpace(decoded.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("empty content in response")
	}
	return content, nil
}
