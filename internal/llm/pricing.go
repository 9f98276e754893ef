package llm

// price is USD per million tokens.
type price struct{ in, out float64 }

// ModelCost prices a model's tokens.
type ModelCost struct {
	InputPerMTok  float64
	OutputPerMTok float64
}

func (c ModelCost) Cost(inputTokens, outputTokens int) float64 {
	return (float64(inputTokens)*c.InputPerMTok + float64(outputTokens)*c.OutputPerMTok) / 1e6
}

// LookupCost returns nil for models without a known price; their usage
// records carry zero cost.
func LookupCost(modelID string) *ModelCost {
	p, ok := prices[modelID]
	if !ok {
		return nil
	}
	return &ModelCost{InputPerMTok: p.in, OutputPerMTok: p.out}
}

// Targets of the alias tables plus common OpenRouter routes.
var prices = map[string]price{
	"claude-haiku-4-5-20251001":  {1, 5},
	"claude-sonnet-4-5-20250929": {3, 15},
	"claude-opus-4-5-20251101":   {5, 25},
	"anthropic/claude-sonnet-4":  {3, 15},

	"gpt-4.1":      {2, 8},
	"gpt-4.1-mini": {0.4, 1.6},
	"gpt-4o-mini":  {0.15, 0.6},

	"gemini-2.5-flash":        {0.3, 2.5},
	"gemini-2.5-pro":          {1.25, 10},
	"google/gemini-2.5-flash": {0.3, 2.5},
}
