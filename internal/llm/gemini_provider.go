package llm

import (
	"context"
	"fmt"

	"github.com/getsentry/sentry-go"
	"google.golang.org/genai"

	"github.com/harmonia-labs/lyria-api/internal/logger"
)

// GeminiProvider implements the Provider interface for Google Gemini models
type GeminiProvider struct {
	client *genai.Client
	apiKey string
}

// NewGeminiProvider creates a new Gemini provider
func NewGeminiProvider(apiKey string) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &GeminiProvider{
		client: client,
		apiKey: apiKey,
	}, nil
}

// Name returns the provider name
func (p *GeminiProvider) Name() string {
	return "gemini"
}

// Analyze sends the breakdown request to Gemini with structured output
// enforced through a response schema.
func (p *GeminiProvider) Analyze(ctx context.Context, request *AnalysisRequest) (*AnalysisResponse, error) {
	span := sentry.StartSpan(ctx, "llm.analyze")
	span.SetTag("provider", "gemini")
	span.SetTag("model", request.Model)
	defer span.Finish()

	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: request.SystemPrompt}},
		},
	}
	if request.OutputSchema != nil {
		config.ResponseMIMEType = "application/json"
		config.ResponseSchema = breakdownResponseSchema()
	}

	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: request.Instruction}},
		},
	}

	result, err := p.client.Models.GenerateContent(span.Context(), request.Model, contents, config)
	if err != nil {
		span.Status = sentry.SpanStatusInternalError
		return nil, fmt.Errorf("gemini generation failed: %w", err)
	}

	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		span.Status = sentry.SpanStatusInternalError
		return nil, fmt.Errorf("gemini returned no candidates")
	}

	raw := result.Candidates[0].Content.Parts[0].Text
	if raw == "" {
		span.Status = sentry.SpanStatusInternalError
		return nil, fmt.Errorf("gemini returned empty output")
	}

	response := &AnalysisResponse{RawOutput: raw}
	if result.UsageMetadata != nil {
		response.Usage = Usage{
			InputTokens:  int(result.UsageMetadata.PromptTokenCount),
			OutputTokens: int(result.UsageMetadata.CandidatesTokenCount),
			TotalTokens:  int(result.UsageMetadata.TotalTokenCount),
		}
	}

	logger.Info("Gemini analysis complete", logger.Fields{
		"model":         request.Model,
		"input_tokens":  response.Usage.InputTokens,
		"output_tokens": response.Usage.OutputTokens,
	})

	span.Status = sentry.SpanStatusOK
	return response, nil
}

// breakdownResponseSchema mirrors GetBreakdownSchema in the genai SDK's
// native schema type. Gemini rejects additionalProperties, so the two
// schemas are maintained by hand rather than converted.
func breakdownResponseSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"components": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"text":   {Type: genai.TypeString},
						"weight": {Type: genai.TypeNumber},
					},
					Required: []string{"text", "weight"},
				},
			},
			"parameters": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"bpm":      {Type: genai.TypeInteger},
					"guidance": {Type: genai.TypeNumber},
					"density":  {Type: genai.TypeNumber},
				},
				Required: []string{"bpm", "guidance", "density"},
			},
		},
		Required: []string{"components", "parameters"},
	}
}
