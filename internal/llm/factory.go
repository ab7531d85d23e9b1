package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/memoryreel/memoryreel/internal/config"
)

// NewProviderForModel picks the backend from the model name: gpt-* models go
// to OpenAI, everything else (gemini-* and future defaults) goes to Gemini.
func NewProviderForModel(ctx context.Context, cfg *config.Config, model string) (Provider, error) {
	switch {
	case strings.HasPrefix(model, "gpt-"):
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("model %s requires OPENAI_API_KEY", model)
		}
		return NewOpenAIProvider(cfg.OpenAIAPIKey), nil
	default:
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("model %s requires GEMINI_API_KEY", model)
		}
		return NewGeminiProvider(ctx, cfg.GeminiAPIKey)
	}
}
