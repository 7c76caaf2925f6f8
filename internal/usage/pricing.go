package usage

import (
	"strings"

	"github.com/rs/zerolog/log"
)

// ModelPricing is USD per one million tokens, input and output priced
// independently.
type ModelPricing struct {
	InputPerMillion  float64
	OutputPerMillion float64
}

// knownPricing contains best-effort list prices for common model
// identifiers. These do not need to be exhaustive; unknown models fall back
// to defaultPricing.
var knownPricing = map[string]ModelPricing{
	// OpenAI family
	"gpt-4o":        {InputPerMillion: 2.50, OutputPerMillion: 10.00},
	"gpt-4o-mini":   {InputPerMillion: 0.15, OutputPerMillion: 0.60},
	"gpt-4-turbo":   {InputPerMillion: 10.00, OutputPerMillion: 30.00},
	"gpt-3.5-turbo": {InputPerMillion: 0.50, OutputPerMillion: 1.50},

	// Anthropic
	"claude-3-5-sonnet": {InputPerMillion: 3.00, OutputPerMillion: 15.00},
	"claude-3-5-haiku":  {InputPerMillion: 0.80, OutputPerMillion: 4.00},
	"claude-3-opus":     {InputPerMillion: 15.00, OutputPerMillion: 75.00},
	"claude-3-haiku":    {InputPerMillion: 0.25, OutputPerMillion: 1.25},

	// Gemini
	"gemini-2.0-flash": {InputPerMillion: 0.10, OutputPerMillion: 0.40},
	"gemini-1.5-flash": {InputPerMillion: 0.075, OutputPerMillion: 0.30},
	"gemini-1.5-pro":   {InputPerMillion: 1.25, OutputPerMillion: 5.00},
	"gemini-2.5-flash": {InputPerMillion: 0.15, OutputPerMillion: 0.60},
	"gemini-2.5-pro":   {InputPerMillion: 1.25, OutputPerMillion: 10.00},
}

// defaultPricing is the tier applied when a model is missing from the table.
// A pricing miss must never block extraction, so the fallback only warns.
var defaultPricing = ModelPricing{InputPerMillion: 1.00, OutputPerMillion: 4.00}

// PricingFor returns the pricing for a model, falling back to the default
// tier with a logged warning when the model is unrecognized.
func PricingFor(model string) ModelPricing {
	name := strings.ToLower(strings.TrimSpace(model))
	if p, ok := knownPricing[name]; ok {
		return p
	}
	// Tolerate dated variants like gpt-4o-2024-08-06. Several table keys can
	// prefix the same name (gpt-4o vs gpt-4o-mini), so take the longest
	// match rather than the first the map happens to yield.
	best := ""
	for known := range knownPricing {
		if strings.HasPrefix(name, known) && len(known) > len(best) {
			best = known
		}
	}
	if best != "" {
		return knownPricing[best]
	}
	log.Warn().Str("model", model).Msg("no pricing for model, using default tier")
	return defaultPricing
}

// Cost computes the USD cost of one call under the given pricing.
func Cost(p ModelPricing, inputTokens, outputTokens int) float64 {
	in := float64(inputTokens) / 1_000_000 * p.InputPerMillion
	out := float64(outputTokens) / 1_000_000 * p.OutputPerMillion
	return in + out
}
