package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/VanshArora01/anay/internal/config"
)

// Generator is the single contract the assistant core has with a language
// model: a prompt goes in, text comes out. Anything else (malformed output,
// transport failures) is the caller's problem to degrade from.
type Generator interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// VisionDescriber is optionally implemented by providers that can look at an
// image. The screen-analysis action degrades gracefully when the configured
// provider does not implement it.
type VisionDescriber interface {
	DescribeImage(ctx context.Context, imagePath string) (string, error)
}

// New builds a Generator from the provider config. Returns an error when no
// API key is configured; callers are expected to continue without a generator
// (rule-based extraction still works) rather than abort.
func New(cfg *config.Config) (Generator, error) {
	if strings.TrimSpace(cfg.Provider.APIKey) == "" {
		return nil, fmt.Errorf("no API key configured (set ANAY_API_KEY, GEMINI_API_KEY or OPENAI_API_KEY)")
	}

	switch cfg.Provider.Type {
	case "openai":
		return newOpenAIClient(cfg)
	default: // "gemini" or empty
		return newGeminiClient(cfg)
	}
}
