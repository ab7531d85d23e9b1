// Package llm abstracts the LLM backends used by the analysis and
// evaluation collaborators. All providers MUST support structured output
// (JSON Schema) so responses parse reliably.
package llm

import (
	"context"
)

// Provider is the interface every LLM backend implements.
type Provider interface {
	// Generate runs one generation with structured output enforced by the
	// request's OutputSchema.
	Generate(ctx context.Context, request *GenerationRequest) (*GenerationResponse, error)

	// Name returns the provider name (e.g. "gemini", "openai").
	Name() string
}

// GenerationRequest contains all parameters for one generation.
type GenerationRequest struct {
	Model        string
	SystemPrompt string
	Prompt       string

	// MediaPath optionally attaches a local media file (image or video) for
	// the model to inspect alongside the prompt.
	MediaPath     string
	MediaMIMEType string

	// OutputSchema is required for reliable JSON parsing.
	OutputSchema *OutputSchema
}

// OutputSchema defines the expected JSON output structure.
type OutputSchema struct {
	Name        string
	Description string
	Schema      map[string]any // JSON Schema object
}

// Usage reports token consumption for one generation.
type Usage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
	TotalTokens  int64 `json:"total_tokens"`
}

// GenerationResponse contains the result from the LLM.
type GenerationResponse struct {
	RawOutput string `json:"-"` // raw JSON text, parsed by the caller
	Usage     Usage  `json:"usage"`
}
