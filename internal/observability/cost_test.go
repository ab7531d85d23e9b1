package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/memoryreel/memoryreel/internal/llm"
)

func TestCalculateCostKnownModel(t *testing.T) {
	usage := llm.Usage{InputTokens: 1000, OutputTokens: 1000, TotalTokens: 2000}

	cost := CalculateCost("gemini-2.0-flash", usage)

	assert.InDelta(t, 0.0005, cost, 1e-9)
}

func TestCalculateCostVersionedModelUsesBaseRate(t *testing.T) {
	usage := llm.Usage{InputTokens: 2000}

	base := CalculateCost("gpt-4o-mini", usage)
	versioned := CalculateCost("gpt-4o-mini-2024-07-18", usage)

	assert.InDelta(t, base, versioned, 1e-12)
	// The longest matching prefix wins: mini pricing, not gpt-4o pricing.
	assert.Less(t, versioned, CalculateCost("gpt-4o", usage))
}

func TestCalculateCostUnknownModelFallsBack(t *testing.T) {
	usage := llm.Usage{InputTokens: 1000, OutputTokens: 1000}

	cost := CalculateCost("mystery-model", usage)

	assert.InDelta(t, 0.01125, cost, 1e-9)
}

func TestFormatCost(t *testing.T) {
	assert.Equal(t, "$0.000500", FormatCost(0.0005))
}
