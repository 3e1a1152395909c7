package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/cenkalti/backoff/v5"
	"google.golang.org/genai"

	"github.com/VanshArora01/anay/internal/config"
)

// geminiClient is the default provider. It also implements VisionDescriber,
// which backs the screen-analysis action.
type geminiClient struct {
	client      *genai.Client
	model       string
	maxTokens   int
	temperature float64
}

func newGeminiClient(cfg *config.Config) (*geminiClient, error) {
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  cfg.Provider.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	model := cfg.Assistant.Model
	if model == "" {
		model = config.DefaultGeminiModel
	}

	return &geminiClient{
		client:      client,
		model:       model,
		maxTokens:   cfg.Assistant.MaxTokens,
		temperature: cfg.Assistant.Temperature,
	}, nil
}

func (c *geminiClient) generateConfig() *genai.GenerateContentConfig {
	gc := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(c.temperature)),
	}
	if c.maxTokens > 0 {
		gc.MaxOutputTokens = int32(c.maxTokens)
	}
	return gc
}

func (c *geminiClient) Complete(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}
	return c.generateWithRetry(ctx, contents)
}

func (c *geminiClient) DescribeImage(ctx context.Context, imagePath string) (string, error) {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}

	mimeType := "image/png"
	if ext := strings.ToLower(filepath.Ext(imagePath)); ext == ".jpg" || ext == ".jpeg" {
		mimeType = "image/jpeg"
	}

	parts := []*genai.Part{
		genai.NewPartFromText("Analyze this screenshot and describe what you see. Include: 1) What application/window is open, 2) What the user is working on, 3) Any important details or context."),
		genai.NewPartFromBytes(data, mimeType),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	return c.generateWithRetry(ctx, contents)
}

func (c *geminiClient) generateWithRetry(ctx context.Context, contents []*genai.Content) (string, error) {
	op := func() (string, error) {
		resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, c.generateConfig())
		if err != nil {
			if isRateLimited(err) {
				return "", err
			}
			return "", backoff.Permanent(err)
		}
		text := strings.TrimSpace(resp.Text())
		if text == "" {
			return "", backoff.Permanent(fmt.Errorf("empty response from model"))
		}
		return text, nil
	}

	return backoff.Retry(ctx, op,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(3))
}

func isRateLimited(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests
	}
	return false
}
