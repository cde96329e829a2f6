package llm

import "context"

// Provider defines the interface for analyzer LLM providers.
// All providers MUST support structured output (JSON Schema) so the
// breakdown response can be parsed reliably.
type Provider interface {
	// Analyze asks the model to decompose a music description into
	// weighted components plus generation parameters. The provider
	// MUST enforce the OutputSchema to ensure valid JSON responses.
	Analyze(ctx context.Context, request *AnalysisRequest) (*AnalysisResponse, error)

	// Name returns the provider name (e.g., "openai", "gemini")
	Name() string
}

// AnalysisRequest contains all parameters needed for one breakdown call
type AnalysisRequest struct {
	Model        string
	SystemPrompt string
	Instruction  string // the user's free-text music description
	// Structured output schema - REQUIRED for reliable JSON parsing
	OutputSchema *OutputSchema
}

// OutputSchema defines the expected JSON output structure
type OutputSchema struct {
	Name        string
	Description string
	Schema      map[string]any // JSON Schema object
}

// AnalysisResponse contains the raw result from the LLM. Parsing and
// validation of the breakdown itself is the caller's job - providers
// only guarantee the text came back non-empty.
type AnalysisResponse struct {
	RawOutput string `json:"-"`
	Usage     Usage  `json:"usage"`
}

// Usage carries token accounting in a provider-neutral shape
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}
