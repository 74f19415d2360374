// Package cost estimates the USD cost of a model invocation from token
// usage, with a rough token estimate for providers that report none.
package cost

// Usage holds token counts for one invocation. Estimated is true when the
// counts were derived from text length instead of provider metadata.
type Usage struct {
	InputTokens  int
	OutputTokens int
	Estimated    bool
}

// ModelPricing holds per-token pricing for a model (in USD per token).
type ModelPricing struct {
	InputPerToken  float64
	OutputPerToken float64
}

// defaultPricing provides fallback pricing for common models. Local models
// are intentionally absent: their marginal cost is zero.
var defaultPricing = map[string]ModelPricing{
	"claude-opus-4-1":   {InputPerToken: 15.0 / 1_000_000, OutputPerToken: 75.0 / 1_000_000},
	"claude-sonnet-4-5": {InputPerToken: 3.0 / 1_000_000, OutputPerToken: 15.0 / 1_000_000},
	"claude-haiku-4-5":  {InputPerToken: 0.8 / 1_000_000, OutputPerToken: 4.0 / 1_000_000},
	"gpt-4o":            {InputPerToken: 2.5 / 1_000_000, OutputPerToken: 10.0 / 1_000_000},
	"gpt-4o-mini":       {InputPerToken: 0.15 / 1_000_000, OutputPerToken: 0.6 / 1_000_000},
	"o3-mini":           {InputPerToken: 1.1 / 1_000_000, OutputPerToken: 4.4 / 1_000_000},
}

// PricingFor returns the pricing entry for model, if one is known.
func PricingFor(model string) (ModelPricing, bool) {
	p, ok := defaultPricing[model]
	return p, ok
}

// FromUsage calculates cost from token usage and model pricing. Unknown
// models cost zero rather than failing: a benchmark run must not abort
// because a pricing entry is missing.
func FromUsage(model string, usage Usage) float64 {
	pricing, ok := defaultPricing[model]
	if !ok {
		return 0
	}
	return float64(usage.InputTokens)*pricing.InputPerToken +
		float64(usage.OutputTokens)*pricing.OutputPerToken
}

// EstimateTokens approximates a token count from text length. Four
// characters per token is the usual rule of thumb for English prose; it is
// deliberately crude and callers must mark the result as estimated.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	n := len(text) / 4
	if n == 0 {
		n = 1
	}
	return n
}

// EstimateUsage builds a Usage from prompt and output text when the
// provider reported no token counts.
func EstimateUsage(prompt, output string) Usage {
	return Usage{
		InputTokens:  EstimateTokens(prompt),
		OutputTokens: EstimateTokens(output),
		Estimated:    true,
	}
}
