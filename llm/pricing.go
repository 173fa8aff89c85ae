// Model pricing table for deriving call cost from token usage.
//
// Providers report token usage but not dollar cost, so cost is derived
// here from published per-million-token rates. Models missing from the
// table report no cost (nil), never zero.

package llm

import "strings"

// modelPricing holds USD per one million tokens.
type modelPricing struct {
	prompt     float64
	completion float64
}

var pricingTable = map[string]modelPricing{
	"gpt-4o":                   {prompt: 2.50, completion: 10.00},
	"gpt-4o-mini":              {prompt: 0.15, completion: 0.60},
	"claude-sonnet-4-20250514": {prompt: 3.00, completion: 15.00},
	"claude-haiku-4-20250514":  {prompt: 0.80, completion: 4.00},
	"gemini-2.5-flash":         {prompt: 0.30, completion: 2.50},
	"gemini-2.5-pro":           {prompt: 1.25, completion: 10.00},
}

// costForUsage derives the cost of a call from its token usage. Returns
// nil when the model is not in the pricing table or usage is unknown.
// OpenRouter-style vendor prefixes ("openai/gpt-4o") are stripped before
// lookup.
func costForUsage(model string, usage *TokenUsage) *float64 {
	if usage == nil {
		return nil
	}
	if idx := strings.LastIndex(model, "/"); idx >= 0 {
		model = model[idx+1:]
	}
	pricing, ok := pricingTable[model]
	if !ok {
		return nil
	}
	cost := float64(usage.PromptTokens)/1e6*pricing.prompt +
		float64(usage.CompletionTokens)/1e6*pricing.completion
	return &cost
}
