package observability

import (
	"strconv"
	"strings"

	"github.com/memoryreel/memoryreel/internal/llm"
)

// Pricing constants
const (
	tokensPerKilo       = 1000.0
	costFormatPrecision = 6

	// Gemini 2.0 Flash pricing
	gemini20FlashInputPrice  = 0.0001
	gemini20FlashOutputPrice = 0.0004

	// Gemini 2.5 Pro pricing
	gemini25ProInputPrice  = 0.00125
	gemini25ProOutputPrice = 0.01

	// GPT-4o pricing
	gpt4oInputPrice  = 0.005
	gpt4oOutputPrice = 0.015

	// GPT-4o-mini pricing
	gpt4oMiniInputPrice  = 0.00015
	gpt4oMiniOutputPrice = 0.0006
)

// ModelPricing contains pricing information per 1K tokens
type ModelPricing struct {
	InputPricePer1K  float64 // Price per 1K input tokens in USD
	OutputPricePer1K float64 // Price per 1K output tokens in USD
}

// PricingTable contains pricing for all models. Lookup is by prefix so
// versioned names like gemini-2.0-flash-001 resolve to their base rate.
var PricingTable = map[string]ModelPricing{
	"gemini-2.0-flash": {
		InputPricePer1K:  gemini20FlashInputPrice,
		OutputPricePer1K: gemini20FlashOutputPrice,
	},
	"gemini-2.5-pro": {
		InputPricePer1K:  gemini25ProInputPrice,
		OutputPricePer1K: gemini25ProOutputPrice,
	},
	"gpt-4o-mini": {
		InputPricePer1K:  gpt4oMiniInputPrice,
		OutputPricePer1K: gpt4oMiniOutputPrice,
	},
	"gpt-4o": {
		InputPricePer1K:  gpt4oInputPrice,
		OutputPricePer1K: gpt4oOutputPrice,
	},
}

// CalculateCost calculates the cost in USD for one LLM call. Unknown models
// are billed at Gemini 2.5 Pro rates so estimates err on the high side.
func CalculateCost(modelName string, usage llm.Usage) float64 {
	pricing, exists := lookupPricing(modelName)
	if !exists {
		pricing = PricingTable["gemini-2.5-pro"]
	}

	inputCost := (float64(usage.InputTokens) / tokensPerKilo) * pricing.InputPricePer1K
	outputCost := (float64(usage.OutputTokens) / tokensPerKilo) * pricing.OutputPricePer1K
	return inputCost + outputCost
}

func lookupPricing(modelName string) (ModelPricing, bool) {
	if pricing, ok := PricingTable[modelName]; ok {
		return pricing, true
	}
	// gpt-4o-mini must win over the gpt-4o prefix, so try the longest keys
	// first. The table is small enough that a linear scan is fine.
	best := ""
	for key := range PricingTable {
		if strings.HasPrefix(modelName, key) && len(key) > len(best) {
			best = key
		}
	}
	if best == "" {
		return ModelPricing{}, false
	}
	return PricingTable[best], true
}

// FormatCost formats a cost value as a USD string
func FormatCost(cost float64) string {
	return "$" + strconv.FormatFloat(cost, 'f', costFormatPrecision, 64)
}
