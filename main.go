package main

import (
	"context"
	"log"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/harmonia-labs/lyria-api/internal/api"
	"github.com/harmonia-labs/lyria-api/internal/api/handlers"
	"github.com/harmonia-labs/lyria-api/internal/config"
	"github.com/harmonia-labs/lyria-api/internal/llm"
	"github.com/harmonia-labs/lyria-api/internal/lyria"
	"github.com/harmonia-labs/lyria-api/internal/observability"
	"github.com/harmonia-labs/lyria-api/internal/services"
)

const (
	sentryFlushTimeout    = 2 * time.Second
	environmentProduction = "production"
)

// releaseVersion is set via ldflags during build
var releaseVersion = "dev"

// GetVersion returns the current release version
func GetVersion() string {
	return releaseVersion
}

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := config.Load()

	// Initialize Sentry
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.Environment,
			Release:          "lyria-api@" + releaseVersion,
			EnableTracing:    true,
			TracesSampleRate: 1.0, // 100% sampling for now, adjust based on volume
			EnableLogs:       true,
			Debug:            cfg.Environment != environmentProduction,
			BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
				// Filter out sensitive data
				if event.Request != nil {
					event.Request.Headers = filterSensitiveHeaders(event.Request.Headers)
				}
				return event
			},
		}); err != nil {
			log.Printf("Failed to initialize Sentry: %v", err)
		} else {
			log.Printf("✅ Sentry initialized (environment: %s, release: %s)", cfg.Environment, releaseVersion)
			// Flush on shutdown
			defer sentry.Flush(sentryFlushTimeout)
		}
	} else {
		log.Println("⚠️  Sentry not configured (SENTRY_DSN not set)")
	}

	ctx := context.Background()

	// Initialize Langfuse for LLM observability
	observability.InitializeLangfuse(ctx, cfg)

	// Analyzer backend (optional - /api/v1/analyze answers 503 without it)
	var analyzer handlers.AnalyzerService
	if cfg.HasAnalyzer() {
		provider, err := llm.NewProvider(cfg, cfg.AnalyzerModel)
		if err != nil {
			sentry.CaptureException(err)
			log.Printf("⚠️  Analyzer provider init failed: %v", err)
		} else {
			analyzer = services.NewAnalyzer(provider, cfg.AnalyzerModel)
			log.Printf("✅ Analyzer initialized (provider: %s, model: %s)", provider.Name(), cfg.AnalyzerModel)
		}
	} else {
		log.Println("⚠️  Analyzer not configured (GEMINI_API_KEY/OPENAI_API_KEY not set)")
	}

	// Lyria backend (optional - /api/v1/generate answers 503 without it)
	var generator handlers.MusicGenerator
	if cfg.HasGenerator() {
		gen, err := lyria.NewGenerator(ctx, cfg)
		if err != nil {
			sentry.CaptureException(err)
			log.Printf("⚠️  Lyria generator init failed: %v", err)
		} else {
			generator = gen
			log.Printf("✅ Lyria generator initialized (project: %s, location: %s)", cfg.ProjectID, cfg.Location)
		}
	} else {
		log.Println("⚠️  Lyria generator not configured (PROJECT_ID not set)")
	}

	// Set Gin mode
	if cfg.Environment == environmentProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize router
	router := api.SetupRouter(cfg, analyzer, generator, GetVersion())

	// Start server
	log.Printf("🚀 Starting server on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		sentry.CaptureException(err)
		log.Fatal("Failed to start server:", err)
	}
}

func filterSensitiveHeaders(headers map[string]string) map[string]string {
	filtered := make(map[string]string)
	sensitiveKeys := map[string]bool{
		"authorization": true,
		"cookie":        true,
		"x-api-key":     true,
	}

	for k, v := range headers {
		if sensitiveKeys[k] {
			filtered[k] = "[REDACTED]"
		} else {
			filtered[k] = v
		}
	}
	return filtered
}
