package pricing

import "ai_metering/internal/models"

// Built-in rates, USD per 1M tokens for token-priced models and USD
// per call for image models. These are the startup defaults; the
// pricing file and the pricing_entries table override them.

// globalFallback is a deliberately conservative rate used when a
// provider has no table at all. Overestimating cost is preferred over
// billing a call at zero.
var globalFallback = ModelRates{
	InputPer1M:  10.0,
	OutputPer1M: 30.0,
}

func defaultRates() map[models.ProviderID]providerRates {
	return map[models.ProviderID]providerRates{
		models.ProviderOpenAI: {
			defaultModel: "gpt-4o-mini",
			models: map[string]ModelRates{
				"gpt-4o":      {InputPer1M: 2.5, OutputPer1M: 10.0},
				"gpt-4o-mini": {InputPer1M: 0.15, OutputPer1M: 0.6},
				"gpt-4.1":     {InputPer1M: 2.0, OutputPer1M: 8.0},
				"gpt-4.1-mini": {InputPer1M: 0.4, OutputPer1M: 1.6},
				"o3":          {InputPer1M: 2.0, OutputPer1M: 8.0},
				"o4-mini":     {InputPer1M: 1.1, OutputPer1M: 4.4},
			},
		},
		models.ProviderAzure: {
			// Azure OpenAI deployments mirror OpenAI list prices.
			defaultModel: "gpt-4o-mini",
			models: map[string]ModelRates{
				"gpt-4o":      {InputPer1M: 2.5, OutputPer1M: 10.0},
				"gpt-4o-mini": {InputPer1M: 0.15, OutputPer1M: 0.6},
				"gpt-35-turbo": {InputPer1M: 0.5, OutputPer1M: 1.5},
			},
		},
		models.ProviderGoogle: {
			defaultModel: "gemini-2.0-flash",
			models: map[string]ModelRates{
				"gemini-2.5-pro":   {InputPer1M: 1.25, OutputPer1M: 10.0},
				"gemini-2.5-flash": {InputPer1M: 0.3, OutputPer1M: 1.2},
				"gemini-2.0-flash": {InputPer1M: 0.1, OutputPer1M: 0.4},
			},
		},
		models.ProviderImageGen: {
			defaultModel: "dall-e-3",
			models: map[string]ModelRates{
				"dall-e-3": {
					DefaultTier: "1024x1024",
					PerCall: map[string]float64{
						"1024x1024": 0.04,
						"1024x1792": 0.08,
						"1792x1024": 0.08,
					},
				},
				"dall-e-2": {
					DefaultTier: "1024x1024",
					PerCall: map[string]float64{
						"256x256":   0.016,
						"512x512":   0.018,
						"1024x1024": 0.02,
					},
				},
			},
		},
	}
}
