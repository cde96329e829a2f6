// Package handlers implements the HTTP endpoints.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harmonia-labs/lyria-api/internal/config"
)

// HealthHandler reports service and backend configuration status
type HealthHandler struct {
	cfg *config.Config
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(cfg *config.Config) *HealthHandler {
	return &HealthHandler{cfg: cfg}
}

// Root is the plain liveness endpoint at /
func (h *HealthHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "Lyria Backend is running 🚀",
	})
}

// HealthCheck returns the health status of the API and its backends
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	analyzerStatus := "disabled"
	if h.cfg.HasAnalyzer() {
		analyzerStatus = "enabled"
	}
	generatorStatus := "disabled"
	if h.cfg.HasGenerator() {
		generatorStatus = "enabled"
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"analyzer": gin.H{
			"status": analyzerStatus,
			"model":  h.cfg.AnalyzerModel,
		},
		"generator": gin.H{
			"status":   generatorStatus,
			"location": h.cfg.Location,
		},
	})
}
