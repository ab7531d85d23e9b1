package llm

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"

	"github.com/memoryreel/memoryreel/internal/logger"
)

const providerNameOpenAI = "openai"

// OpenAIProvider implements Provider using OpenAI's Responses API.
type OpenAIProvider struct {
	client *openai.Client
}

// NewOpenAIProvider creates a new OpenAI provider.
func NewOpenAIProvider(apiKey string) *OpenAIProvider {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIProvider{client: &client}
}

// Name returns the provider name.
func (p *OpenAIProvider) Name() string {
	return providerNameOpenAI
}

// Generate runs one generation. OpenAI models here are text-only: media
// attachments are not supported, so requests that carry one are rejected
// instead of silently dropping the file.
func (p *OpenAIProvider) Generate(ctx context.Context, request *GenerationRequest) (*GenerationResponse, error) {
	startTime := time.Now()
	log.Printf("🎞️  OPENAI GENERATION STARTED (model: %s)", request.Model)

	transaction := sentry.StartTransaction(ctx, "openai.generate")
	defer transaction.Finish()
	transaction.SetTag("model", request.Model)
	transaction.SetTag("provider", providerNameOpenAI)

	if request.MediaPath != "" {
		err := fmt.Errorf("openai provider does not support media attachments (model: %s)", request.Model)
		transaction.SetTag("success", "false")
		return nil, err
	}

	inputItems := responses.ResponseInputParam{}
	inputItems = append(inputItems, responses.ResponseInputItemParamOfMessage(
		request.Prompt,
		responses.EasyInputMessageRoleUser,
	))

	params := responses.ResponseNewParams{
		Model: request.Model,
		Input: responses.ResponseNewParamsInputUnion{OfInputItemList: inputItems},
	}
	if request.SystemPrompt != "" {
		params.Instructions = openai.String(request.SystemPrompt)
	}
	if request.OutputSchema != nil {
		params.Text = responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigParamOfJSONSchema(
				request.OutputSchema.Name,
				request.OutputSchema.Schema,
			),
		}
	}

	span := transaction.StartChild("openai.api_call")
	resp, err := p.client.Responses.New(ctx, params)
	span.Finish()

	if err != nil {
		log.Printf("❌ OPENAI REQUEST FAILED after %v: %v", time.Since(startTime), err)
		transaction.SetTag("success", "false")
		sentry.CaptureException(err)
		return nil, fmt.Errorf("openai request failed: %w", err)
	}

	textOutput := resp.OutputText()
	if textOutput == "" {
		return nil, fmt.Errorf("openai response did not include any output text")
	}

	response := &GenerationResponse{
		RawOutput: textOutput,
		Usage: Usage{
			InputTokens:  resp.Usage.InputTokens,
			OutputTokens: resp.Usage.OutputTokens,
			TotalTokens:  resp.Usage.TotalTokens,
		},
	}
	logger.LogGenerationRequest(ctx, request.Model, time.Since(startTime), map[string]interface{}{
		"input_tokens":  response.Usage.InputTokens,
		"output_tokens": response.Usage.OutputTokens,
		"total_tokens":  response.Usage.TotalTokens,
	}, logger.Fields{"provider": providerNameOpenAI})

	transaction.SetTag("success", "true")
	log.Printf("✅ OPENAI GENERATION COMPLETED in %v", time.Since(startTime))
	return response, nil
}
