package llm

import (
	"fmt"
	"strings"

	"github.com/harmonia-labs/lyria-api/internal/config"
)

// NewProvider creates the appropriate provider for the given model name.
// Gemini models are routed to the Gemini provider, gpt/o-series models
// to OpenAI. Unknown model names fall through to Gemini, which is the
// default analyzer backend.
func NewProvider(cfg *config.Config, model string) (Provider, error) {
	switch {
	case isOpenAIModel(model):
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("model %q requires OPENAI_API_KEY", model)
		}
		return NewOpenAIProvider(cfg.OpenAIAPIKey)
	default:
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("model %q requires GEMINI_API_KEY", model)
		}
		return NewGeminiProvider(cfg.GeminiAPIKey)
	}
}

func isOpenAIModel(model string) bool {
	m := strings.ToLower(model)
	return strings.HasPrefix(m, "gpt-") ||
		strings.HasPrefix(m, "o1") ||
		strings.HasPrefix(m, "o3") ||
		strings.HasPrefix(m, "o4")
}
