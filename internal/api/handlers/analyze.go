package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harmonia-labs/lyria-api/internal/breakdown"
	"github.com/harmonia-labs/lyria-api/internal/logger"
	"github.com/harmonia-labs/lyria-api/internal/metrics"
	"github.com/harmonia-labs/lyria-api/internal/services"
)

// AnalyzerService is the part of the analyzer the handler depends on
type AnalyzerService interface {
	Analyze(ctx context.Context, instruction string, previous *breakdown.TrackContext) (*services.AnalysisResult, error)
}

// AnalyzeRequest is the request body for POST /api/v1/analyze
type AnalyzeRequest struct {
	Prompt          string                  `json:"prompt"`
	PreviousContext *breakdown.TrackContext `json:"previous_context"`
}

// AnalyzeResponse is the response body for POST /api/v1/analyze
type AnalyzeResponse struct {
	RequestID       string                     `json:"request_id"`
	WeightedPrompts []breakdown.WeightedPrompt `json:"weighted_prompts"`
	Parameters      breakdown.Params           `json:"parameters"`
	IsEdit          bool                       `json:"is_edit"`
}

// AnalyzeHandler exposes the prompt breakdown analyzer over HTTP
type AnalyzeHandler struct {
	analyzer AnalyzerService
	model    string
	metrics  *metrics.SentryMetrics
}

// NewAnalyzeHandler creates a new analyze handler
func NewAnalyzeHandler(analyzer AnalyzerService, model string) *AnalyzeHandler {
	return &AnalyzeHandler{
		analyzer: analyzer,
		model:    model,
		metrics:  metrics.NewSentryMetrics(),
	}
}

// Analyze handles POST /api/v1/analyze
func (h *AnalyzeHandler) Analyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      "Invalid request body",
			"details":    err.Error(),
			"request_id": c.GetString("request_id"),
		})
		return
	}

	if h.analyzer == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":      "Prompt analysis is not configured",
			"request_id": c.GetString("request_id"),
		})
		return
	}

	result, err := h.analyzer.Analyze(c.Request.Context(), req.Prompt, req.PreviousContext)
	if err != nil {
		status, message := statusForError(err)
		if status >= http.StatusInternalServerError {
			logger.Error("analysis request failed", err, logger.WithContext(c))
		}
		c.JSON(status, gin.H{
			"error":      message,
			"request_id": c.GetString("request_id"),
		})
		return
	}

	h.metrics.RecordTokenUsage(c.Request.Context(), h.model,
		result.Usage.TotalTokens, result.Usage.InputTokens, result.Usage.OutputTokens)

	c.JSON(http.StatusOK, AnalyzeResponse{
		RequestID:       c.GetString("request_id"),
		WeightedPrompts: result.WeightedPrompts,
		Parameters:      result.Params,
		IsEdit:          result.IsEdit,
	})
}

// statusForError maps the breakdown error taxonomy onto HTTP statuses
func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, breakdown.ErrEmptyInput):
		return http.StatusBadRequest, "Prompt must not be empty"
	case errors.Is(err, breakdown.ErrNoValidComponents), errors.Is(err, breakdown.ErrMalformedUpstream):
		return http.StatusBadGateway, "Upstream model returned an unusable response"
	case errors.Is(err, breakdown.ErrUpstreamUnavailable):
		return http.StatusServiceUnavailable, "Upstream model is not available"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}
