package pricing

import (
	"unicode/utf8"

	"ai_metering/internal/models"
)

const tokensPerMillion = 1_000_000.0

// estimateCharsPerToken is the rough character-to-token ratio used
// when a provider response carries no usage block.
const estimateCharsPerToken = 4

// Calculator turns token and image counts into USD amounts using a
// pricing table. It is a pure lookup layer: unknown models resolve to
// the provider's default model rather than erroring, because an
// approximate cost beats a missing one.
type Calculator struct {
	table *Table
}

// NewCalculator creates a calculator over a sealed pricing table.
func NewCalculator(table *Table) *Calculator {
	return &Calculator{table: table}
}

// Cost computes the USD cost of a token-priced call:
// tokensIn*rateIn + tokensOut*rateOut. Negative counts are clamped to
// zero so the result is always non-negative.
func (c *Calculator) Cost(provider models.ProviderID, model string, tokensIn, tokensOut int) float64 {
	if tokensIn < 0 {
		tokensIn = 0
	}
	if tokensOut < 0 {
		tokensOut = 0
	}

	rates := c.table.Rates(provider, model)
	return (float64(tokensIn)*rates.InputPer1M + float64(tokensOut)*rates.OutputPer1M) / tokensPerMillion
}

// ImageCost computes the flat per-call cost for an image model at the
// given output size. An unknown size falls back to the model's default
// tier instead of failing.
func (c *Calculator) ImageCost(provider models.ProviderID, model, size string) float64 {
	rates := c.table.Rates(provider, model)
	if len(rates.PerCall) == 0 {
		// Token-priced model asked for flat pricing; nothing to charge per call.
		return 0
	}

	if rate, ok := rates.PerCall[size]; ok {
		return rate
	}
	return rates.PerCall[rates.DefaultTier]
}

// EstimateTokens gives a cheap character-count token estimate for text
// whose exact usage is unknown. It is deterministic and monotonic:
// longer text never estimates fewer tokens.
func EstimateTokens(text string) int {
	chars := utf8.RuneCountInString(text)
	if chars == 0 {
		return 0
	}
	return (chars + estimateCharsPerToken - 1) / estimateCharsPerToken
}
