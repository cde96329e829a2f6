// Package api wires the HTTP router: middleware chain plus endpoints.
package api

import (
	"github.com/gin-gonic/gin"

	"github.com/harmonia-labs/lyria-api/internal/api/handlers"
	"github.com/harmonia-labs/lyria-api/internal/api/middleware"
	"github.com/harmonia-labs/lyria-api/internal/config"
)

// SetupRouter builds the gin engine with the full middleware chain and
// all endpoints. The analyzer and generator may be nil when their
// backends are not configured; the handlers answer 503 in that case.
func SetupRouter(cfg *config.Config, analyzer handlers.AnalyzerService, generator handlers.MusicGenerator, version string) *gin.Engine {
	router := gin.New()

	// Recovery middleware (must be first)
	router.Use(middleware.RecoverWithSentry())

	// Sentry middleware for error tracking
	router.Use(middleware.SentryMiddleware())

	// Request tracking and structured logging
	router.Use(middleware.RequestTracking())

	// CORS middleware
	router.Use(middleware.CORS(cfg.AllowedOrigins))

	// Health checks
	healthHandler := handlers.NewHealthHandler(cfg)
	router.GET("/", healthHandler.Root)
	router.GET("/health", healthHandler.HealthCheck)

	// Metrics endpoint
	metricsHandler := handlers.NewMetricsHandler(version, cfg.AnalyzerModel)
	router.GET("/api/metrics", metricsHandler.GetMetrics)

	v1 := router.Group("/api/v1")
	{
		analyzeHandler := handlers.NewAnalyzeHandler(analyzer, cfg.AnalyzerModel)
		v1.POST("/analyze", analyzeHandler.Analyze)

		generateHandler := handlers.NewGenerateHandler(generator)
		v1.POST("/generate", generateHandler.Generate)
	}

	return router
}
