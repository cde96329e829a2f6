// Package services contains the orchestration layer between the HTTP
// handlers and the model backends.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/harmonia-labs/lyria-api/internal/breakdown"
	"github.com/harmonia-labs/lyria-api/internal/llm"
	"github.com/harmonia-labs/lyria-api/internal/logger"
	"github.com/harmonia-labs/lyria-api/internal/observability"
	"github.com/harmonia-labs/lyria-api/internal/prompt"
)

// AnalysisResult is the validated outcome of one analyzer call
type AnalysisResult struct {
	WeightedPrompts []breakdown.WeightedPrompt `json:"weighted_prompts"`
	Params          breakdown.Params           `json:"parameters"`
	IsEdit          bool                       `json:"is_edit"`
	Usage           llm.Usage                  `json:"-"`
}

// TrackContext returns the result as reusable context for a follow-up
// edit request.
func (r *AnalysisResult) TrackContext() *breakdown.TrackContext {
	return &breakdown.TrackContext{
		WeightedPrompts: r.WeightedPrompts,
		Params:          r.Params,
	}
}

// rawBreakdown is the untrusted shape the model returns. Fields stay
// loosely typed until breakdown.Reconcile validates them.
type rawBreakdown struct {
	Components []breakdown.Candidate `json:"components"`
	Parameters breakdown.RawParams   `json:"parameters"`
}

// Analyzer turns free-text music descriptions into validated weighted
// prompts plus generation parameters.
type Analyzer struct {
	provider llm.Provider
	model    string
	builder  *prompt.AnalyzerPromptBuilder
	detector breakdown.EditDetector
}

// NewAnalyzer creates an analyzer backed by the given provider
func NewAnalyzer(provider llm.Provider, model string) *Analyzer {
	return &Analyzer{
		provider: provider,
		model:    model,
		builder:  prompt.NewAnalyzerPromptBuilder(),
		detector: breakdown.NewKeywordDetector(),
	}
}

// Analyze classifies the instruction, runs the breakdown model, then
// validates and reconciles its output. A previous track context makes
// edit instructions incremental; without one every instruction is
// treated as a fresh description.
func (a *Analyzer) Analyze(ctx context.Context, instruction string, previous *breakdown.TrackContext) (*AnalysisResult, error) {
	instruction = strings.TrimSpace(instruction)
	if instruction == "" {
		return nil, breakdown.ErrEmptyInput
	}
	if a.provider == nil {
		return nil, breakdown.ErrUpstreamUnavailable
	}

	isEdit := breakdown.Classify(a.detector, instruction, previous != nil)

	var editContext *breakdown.TrackContext
	if isEdit {
		editContext = previous
	}
	systemPrompt, err := a.builder.BuildPrompt(editContext)
	if err != nil {
		return nil, fmt.Errorf("failed to build analyzer prompt: %w", err)
	}

	trace := observability.GetClient().StartTrace(ctx, "prompt-analysis", map[string]interface{}{
		"model":   a.model,
		"is_edit": isEdit,
	})
	defer trace.Finish()
	generation := trace.Generation("breakdown", nil)
	defer generation.Finish()

	start := time.Now()
	response, err := a.provider.Analyze(ctx, &llm.AnalysisRequest{
		Model:        a.model,
		SystemPrompt: systemPrompt,
		Instruction:  instruction,
		OutputSchema: &llm.OutputSchema{
			Name:        "music_breakdown",
			Description: "Weighted music components and generation parameters",
			Schema:      llm.GetBreakdownSchema(),
		},
	})
	if err != nil {
		generation.SetLevel("ERROR")
		logger.Error("analyzer model call failed", err, logger.Fields{
			"model":   a.model,
			"is_edit": isEdit,
		})
		return nil, fmt.Errorf("%w: %v", breakdown.ErrUpstreamUnavailable, err)
	}

	generation.LogAnalysis(a.model, instruction, response.RawOutput, response.Usage)

	raw := llm.StripMarkdownFences(response.RawOutput)
	var parsed rawBreakdown
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		logger.Error("analyzer returned unparseable output", err, logger.Fields{
			"model":  a.model,
			"output": truncate(raw, 200),
		})
		return nil, fmt.Errorf("%w: %v", breakdown.ErrMalformedUpstream, err)
	}

	components, params, err := breakdown.Reconcile(isEdit, previous, parsed.Components, parsed.Parameters)
	if err != nil {
		// An empty or fully rejected component list at this point came
		// from the model, not the user, so it surfaces as a bad
		// upstream response.
		if errors.Is(err, breakdown.ErrEmptyInput) || errors.Is(err, breakdown.ErrNoValidComponents) {
			return nil, fmt.Errorf("%w: %v", breakdown.ErrMalformedUpstream, err)
		}
		return nil, err
	}

	logger.Info("prompt analysis complete", logger.Fields{
		"model":       a.model,
		"is_edit":     isEdit,
		"components":  len(components),
		"bpm":         params.BPM,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	return &AnalysisResult{
		WeightedPrompts: components,
		Params:          params,
		IsEdit:          isEdit,
		Usage:           response.Usage,
	}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
