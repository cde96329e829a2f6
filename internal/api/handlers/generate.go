package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/harmonia-labs/lyria-api/internal/breakdown"
	"github.com/harmonia-labs/lyria-api/internal/logger"
	"github.com/harmonia-labs/lyria-api/internal/lyria"
	"github.com/harmonia-labs/lyria-api/internal/metrics"
)

// MusicGenerator is the part of the Lyria client the handler depends on
type MusicGenerator interface {
	Generate(ctx context.Context, req *lyria.Request) (*lyria.Track, error)
}

// GenerateRequest is the request body for POST /api/v1/generate
type GenerateRequest struct {
	Prompt          string                     `json:"prompt"`
	WeightedPrompts []breakdown.WeightedPrompt `json:"weighted_prompts"`
	NegativePrompt  string                     `json:"negative_prompt"`
	Seed            *int                       `json:"seed"`
	Parameters      breakdown.RawParams        `json:"parameters"`
}

// GenerateHandler exposes music generation over HTTP
type GenerateHandler struct {
	generator MusicGenerator
	metrics   *metrics.SentryMetrics
}

// NewGenerateHandler creates a new generate handler
func NewGenerateHandler(generator MusicGenerator) *GenerateHandler {
	return &GenerateHandler{
		generator: generator,
		metrics:   metrics.NewSentryMetrics(),
	}
}

// Generate handles POST /api/v1/generate and serves the generated track
// as a WAV attachment.
func (h *GenerateHandler) Generate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      "Invalid request body",
			"details":    err.Error(),
			"request_id": c.GetString("request_id"),
		})
		return
	}

	if h.generator == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":      "Music generation is not configured",
			"request_id": c.GetString("request_id"),
		})
		return
	}

	genReq := &lyria.Request{
		Prompt:          req.Prompt,
		WeightedPrompts: req.WeightedPrompts,
		NegativePrompt:  req.NegativePrompt,
		Seed:            req.Seed,
	}
	// Explicit parameters get clamped before rendering. Only bpm can be
	// expressed on the batch model, in-prompt.
	if len(req.Parameters) > 0 {
		params := breakdown.ClampParams(req.Parameters)
		genReq.BPM = params.BPM
	}

	fields := logger.WithContext(c)
	fields["prompt"] = req.Prompt
	fields["weighted_prompts"] = len(req.WeightedPrompts)
	logger.Info("generation requested", fields)

	start := time.Now()
	track, err := h.generator.Generate(c.Request.Context(), genReq)
	h.metrics.RecordGenerationDuration(c.Request.Context(), time.Since(start), err == nil)
	if err != nil {
		status, message := statusForError(err)
		if status >= http.StatusInternalServerError {
			logger.Error("generation request failed", err, logger.WithContext(c))
		}
		c.JSON(status, gin.H{
			"error":      message,
			"request_id": c.GetString("request_id"),
		})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", track.Filename))
	c.File(track.Path)
}
