package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/getsentry/sentry-go"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"

	"github.com/harmonia-labs/lyria-api/internal/logger"
)

// OpenAIProvider implements the Provider interface for OpenAI models
// using the Responses API.
type OpenAIProvider struct {
	client *openai.Client
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(apiKey string) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}

	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIProvider{client: &client}, nil
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// Analyze sends the breakdown request to OpenAI with a strict JSON
// schema response format.
func (p *OpenAIProvider) Analyze(ctx context.Context, request *AnalysisRequest) (*AnalysisResponse, error) {
	span := sentry.StartSpan(ctx, "llm.analyze")
	span.SetTag("provider", "openai")
	span.SetTag("model", request.Model)
	defer span.Finish()

	inputItems := responses.ResponseInputParam{
		responses.ResponseInputItemParamOfMessage(request.Instruction, responses.EasyInputMessageRoleUser),
	}

	params := responses.ResponseNewParams{
		Model:        request.Model,
		Input:        responses.ResponseNewParamsInputUnion{OfInputItemList: inputItems},
		Instructions: openai.String(request.SystemPrompt),
	}

	if request.OutputSchema != nil {
		params.Text = responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigParamOfJSONSchema(
				request.OutputSchema.Name,
				request.OutputSchema.Schema,
			),
		}
	}

	resp, err := p.client.Responses.New(span.Context(), params)
	if err != nil {
		span.Status = sentry.SpanStatusInternalError
		return nil, fmt.Errorf("openai generation failed: %w", err)
	}

	raw := StripMarkdownFences(resp.OutputText())
	if raw == "" {
		span.Status = sentry.SpanStatusInternalError
		return nil, fmt.Errorf("openai returned empty output")
	}

	response := &AnalysisResponse{
		RawOutput: raw,
		Usage: Usage{
			InputTokens:  int(resp.Usage.InputTokens),
			OutputTokens: int(resp.Usage.OutputTokens),
			TotalTokens:  int(resp.Usage.TotalTokens),
		},
	}

	logger.Info("OpenAI analysis complete", logger.Fields{
		"model":         request.Model,
		"input_tokens":  response.Usage.InputTokens,
		"output_tokens": response.Usage.OutputTokens,
	})

	span.Status = sentry.SpanStatusOK
	return response, nil
}

// StripMarkdownFences removes ```json code fences some models wrap
// around structured output even when a schema is requested.
func StripMarkdownFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
